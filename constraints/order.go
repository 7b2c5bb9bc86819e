package constraints

import (
	"fmt"
	"sort"
)

// Visitation states for the topological sort.
const (
	white = iota // unvisited
	gray         // on the current DFS path
	black        // finished
)

// dependencies returns succ, where succ[i] lists the constraints that read an
// atom constraint i writes: one of i's dependents is their pivot or a
// neighbor. Disabled constraints write nothing and have no edges.
// Each list is sorted and free of duplicates.
// Complexity: O(C + A + E).
func dependencies(cs []*Constraint) [][]int {
	// 1. Index writers by atom
	writers := make(map[int][]int)
	for i, c := range cs {
		if c.state == Disabled {
			continue
		}
		for _, h := range c.dependents {
			writers[h] = append(writers[h], i)
		}
	}

	// 2. Edge i→j for every atom j reads that i writes
	succ := make([][]int, len(cs))
	for j, c := range cs {
		if c.state == Disabled {
			continue
		}
		for _, a := range c.reads() {
			for _, i := range writers[a] {
				if i != j {
					succ[i] = append(succ[i], j)
				}
			}
		}
	}

	// 3. Canonical adjacency
	for i := range succ {
		sort.Ints(succ[i])
		succ[i] = dedupSorted(succ[i])
	}

	return succ
}

func dedupSorted(xs []int) []int {
	if len(xs) < 2 {
		return xs
	}
	out := xs[:1]
	for _, x := range xs[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}

	return out
}

// topoSorter holds the DFS state of one topological sort.
type topoSorter struct {
	succ  [][]int
	state []int
	order []int // post-order
}

// topologicalOrder returns an order in which every constraint comes after
// each constraint it depends on, or ErrCycleDetected.
// Complexity: O(C + E).
func topologicalOrder(succ [][]int) ([]int, error) {
	t := &topoSorter{
		succ:  succ,
		state: make([]int, len(succ)),
		order: make([]int, 0, len(succ)),
	}
	for v := range succ {
		if t.state[v] == white {
			if err := t.visit(v); err != nil {
				return nil, err
			}
		}
	}
	// reverse post-order
	for i, j := 0, len(t.order)-1; i < j; i, j = i+1, j-1 {
		t.order[i], t.order[j] = t.order[j], t.order[i]
	}

	return t.order, nil
}

func (t *topoSorter) visit(v int) error {
	if t.state[v] == gray {
		return fmt.Errorf("%w: through constraint %d", ErrCycleDetected, v)
	}
	if t.state[v] == black {
		return nil
	}
	t.state[v] = gray
	for _, w := range t.succ[v] {
		if err := t.visit(w); err != nil {
			return err
		}
	}
	t.state[v] = black
	t.order = append(t.order, v)

	return nil
}

// levels groups a topological order by longest-path depth. Constraints in
// one level never depend on each other. Each level is sorted ascending.
func levels(order []int, succ [][]int) [][]int {
	depth := make([]int, len(succ))
	maxDepth := -1
	for _, i := range order {
		for _, j := range succ[i] {
			if depth[j] < depth[i]+1 {
				depth[j] = depth[i] + 1
			}
		}
		if depth[i] > maxDepth {
			maxDepth = depth[i]
		}
	}
	out := make([][]int, maxDepth+1)
	for i := range succ {
		out[depth[i]] = append(out[depth[i]], i)
	}

	return out
}

// planOrder computes the dependency levels of cs and their flattening.
func planOrder(cs []*Constraint) (order []int, lv [][]int, err error) {
	succ := dependencies(cs)
	topo, err := topologicalOrder(succ)
	if err != nil {
		return nil, nil, err
	}
	lv = levels(topo, succ)
	order = make([]int, 0, len(cs))
	for _, l := range lv {
		order = append(order, l...)
	}

	return order, lv, nil
}
