package constraints

import (
	"sort"

	"github.com/katalvlaran/riding/xray"
)

// Registry records which constraint owns each dependent atom for one
// refinement context, and the prior flags of atoms whose claim was refused.
type Registry struct {
	owners     map[int]*Constraint
	overridden map[int]xray.Flags
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		owners:     make(map[int]*Constraint),
		overridden: make(map[int]xray.Flags),
	}
}

// Owner returns the constraint that placed atom, if any.
func (r *Registry) Owner(atom int) (*Constraint, bool) {
	c, ok := r.owners[atom]

	return c, ok
}

// Constrained reports whether atom is already owned by a constraint.
func (r *Registry) Constrained(atom int) bool {
	_, ok := r.owners[atom]

	return ok
}

// Atoms returns the owned atoms in ascending order.
func (r *Registry) Atoms() []int {
	out := make([]int, 0, len(r.owners))
	for a := range r.owners {
		out = append(out, a)
	}
	sort.Ints(out)

	return out
}

// Overridden returns a copy of the flags recorded for refused claims.
func (r *Registry) Overridden() map[int]xray.Flags {
	out := make(map[int]xray.Flags, len(r.overridden))
	for a, f := range r.overridden {
		out[a] = f
	}

	return out
}

// Len returns the number of owned atoms.
func (r *Registry) Len() int { return len(r.owners) }

func (r *Registry) claim(atom int, c *Constraint) {
	r.owners[atom] = c
}

// refuse keeps the first flags recorded for atom.
func (r *Registry) refuse(atom int, f xray.Flags) {
	if _, seen := r.overridden[atom]; !seen {
		r.overridden[atom] = f
	}
}
