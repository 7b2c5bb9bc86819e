package constraints

import (
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// SetOption configures a Set.
type SetOption func(*Set)

// WithLogger sets the logger for lifecycle events. A nil logger is ignored.
func WithLogger(l *slog.Logger) SetOption {
	return func(s *Set) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithParallelism runs each dependency level with up to n goroutines.
// n <= 1 keeps the Set sequential.
func WithParallelism(n int) SetOption {
	return func(s *Set) { s.parallelism = n }
}

// Set runs an ordered collection of constraints through the refinement cycle.
type Set struct {
	constraints []*Constraint
	logger      *slog.Logger
	parallelism int

	order    []int
	levels   [][]int
	registry *Registry
	ready    bool
}

// NewSet returns a Set over cs. Nil constraints are rejected.
func NewSet(cs []*Constraint, opts ...SetOption) (*Set, error) {
	for i, c := range cs {
		if c == nil {
			return nil, fmt.Errorf("%w: constraint %d is nil", ErrInvalidConfiguration, i)
		}
	}
	s := &Set{
		constraints: append([]*Constraint(nil), cs...),
		logger:      slog.New(slog.DiscardHandler),
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Len returns the number of constraints.
func (s *Set) Len() int { return len(s.constraints) }

// Constraint returns constraint i in insertion order.
func (s *Set) Constraint(i int) *Constraint { return s.constraints[i] }

// Constraints returns a copy of the constraints in insertion order.
func (s *Set) Constraints() []*Constraint { return append([]*Constraint(nil), s.constraints...) }

// Initialise initialises every constraint against a fresh Registry in
// insertion order, so the first claimant of an atom wins and later ones are
// disabled and logged. The placement order is then computed over the
// constraints that stayed active.
func (s *Set) Initialise(ctx *Context) error {
	s.ready = false

	// 1. Claim in insertion order
	reg := NewRegistry()
	for i, c := range s.constraints {
		if err := c.Initialise(ctx, reg); err != nil {
			return fmt.Errorf("constraints: constraint %d: %w", i, err)
		}
		if c.State() == Disabled {
			s.logger.Warn("constraint disabled: dependent already constrained",
				"constraint", i, "kind", c.Kind().String(), "pivot", c.pivot, "atoms", c.conflictAtoms())
		}
	}

	// 2. Order from the pivot/dependent graph of the active constraints
	order, lv, err := planOrder(s.constraints)
	if err != nil {
		return err
	}

	s.order, s.levels, s.registry, s.ready = order, lv, reg, true
	s.logger.Debug("constraints initialised",
		"constraints", len(s.constraints), "levels", len(lv), "claimed", reg.Len(), "reparams", s.ReparamCount())

	return nil
}

// Place places every constraint, a pivot's own constraint first.
func (s *Set) Place(ctx *Context) error {
	if !s.ready {
		return ErrNotInitialised
	}
	for _, level := range s.levels {
		err := s.forEach(len(level), func(k int) error {
			return s.constraints[level[k]].Place(ctx)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// PropagateGradients folds the dependents' gradients in crystal onto their
// pivots, deepest constraints first, and returns the reparametrization
// gradient vector. crystal is modified in place.
func (s *Set) PropagateGradients(ctx *Context, crystal []float64) ([]float64, error) {
	if !s.ready {
		return nil, ErrNotInitialised
	}
	reparam := make([]float64, 0, s.ReparamCount())
	for l := len(s.levels) - 1; l >= 0; l-- {
		level := s.levels[l]
		last := len(level) - 1

		// 1. Per-constraint contributions; reads only
		contribs := make([]contribution, len(level))
		err := s.forEach(len(level), func(k int) error {
			g, err := s.constraints[level[last-k]].gradients(ctx, crystal)
			contribs[k] = g
			return err
		})
		if err != nil {
			return nil, err
		}

		// 2. Serial reduction in reverse sequential order
		for k, g := range contribs {
			reparam = s.constraints[level[last-k]].commit(crystal, reparam, g)
		}
	}

	return reparam, nil
}

// ApplyShifts shifts every free site by its slice of crystalShifts, then
// applies reparamShifts to each constraint and re-places it in order.
func (s *Set) ApplyShifts(ctx *Context, crystalShifts, reparamShifts []float64) error {
	if !s.ready {
		return ErrNotInitialised
	}

	// 1. Free sites
	for i := range ctx.Scatterers {
		if !ctx.Flags[i].GradSite {
			continue
		}
		slot := ctx.Params.SiteSlot(i)
		if slot < 0 {
			continue
		}
		if slot+3 > len(crystalShifts) {
			return fmt.Errorf("%w: atom %d slot %d, length %d", ErrShiftLength, i, slot, len(crystalShifts))
		}
		site := &ctx.Scatterers[i].Site
		site.X += crystalShifts[slot]
		site.Y += crystalShifts[slot+1]
		site.Z += crystalShifts[slot+2]
	}

	// 2. Auxiliary parameters and dependents
	for _, level := range s.levels {
		err := s.forEach(len(level), func(k int) error {
			return s.constraints[level[k]].ApplyShifts(ctx, reparamShifts)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// Order returns the sequential order computed by Initialise.
func (s *Set) Order() []int { return append([]int(nil), s.order...) }

// Levels returns the dependency levels computed by Initialise.
func (s *Set) Levels() [][]int {
	out := make([][]int, len(s.levels))
	for i, l := range s.levels {
		out[i] = append([]int(nil), l...)
	}

	return out
}

// Disabled returns the indices of disabled constraints in ascending order.
func (s *Set) Disabled() []int {
	var out []int
	for i, c := range s.constraints {
		if c.State() == Disabled {
			out = append(out, i)
		}
	}

	return out
}

// Registry returns the registry of the last Initialise, or nil.
func (s *Set) Registry() *Registry { return s.registry }

// ReparamCount returns the length of the reparametrization vector.
func (s *Set) ReparamCount() int {
	n := 0
	for _, c := range s.constraints {
		if c.State() != Disabled {
			n += len(c.ActiveParams())
		}
	}

	return n
}

// forEach calls fn(0..n-1), concurrently when parallelism allows.
func (s *Set) forEach(n int, fn func(k int) error) error {
	if s.parallelism <= 1 || n < 2 {
		for k := 0; k < n; k++ {
			if err := fn(k); err != nil {
				return err
			}
		}

		return nil
	}
	var g errgroup.Group
	g.SetLimit(s.parallelism)
	for k := 0; k < n; k++ {
		g.Go(func() error { return fn(k) })
	}

	return g.Wait()
}
