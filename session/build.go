package session

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/riding/cell"
	"github.com/katalvlaran/riding/constraints"
	"github.com/katalvlaran/riding/geometry"
	"github.com/katalvlaran/riding/refine"
	"github.com/katalvlaran/riding/restraints"
	"github.com/katalvlaran/riding/xray"
)

// Build validates s and returns an initialised, placed refinement.
func (s *Session) Build(opts ...refine.Option) (*refine.Refinement, error) {
	// 1. Validate and resolve labels
	if err := s.Validate(); err != nil {
		return nil, err
	}
	idx, err := s.labels()
	if err != nil {
		return nil, err
	}

	// 2. Structure
	uc, err := cell.New(s.Cell.A, s.Cell.B, s.Cell.C, s.Cell.Alpha, s.Cell.Beta, s.Cell.Gamma)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	scatterers := make([]xray.Scatterer, len(s.Scatterers))
	for i, sc := range s.Scatterers {
		scatterers[i] = xray.Scatterer{
			Label: sc.Label,
			Site:  r3.Vec{X: sc.Site[0], Y: sc.Site[1], Z: sc.Site[2]},
			Flags: xray.Flags{GradSite: !sc.Fixed},
		}
	}
	st := xray.NewStructure(uc, scatterers)
	for i, sc := range s.Scatterers {
		if sc.Special {
			st.SiteSymmetry.MarkSpecial(i)
		}
	}

	// 3. Constraints
	cs := make([]*constraints.Constraint, len(s.Constraints))
	for i, c := range s.Constraints {
		if cs[i], err = c.build(idx); err != nil {
			return nil, fmt.Errorf("session: constraint %d: %w", i, err)
		}
	}

	// 4. Restraints
	rm := restraints.NewManager()
	for i, r := range s.Restraints {
		p, err := restraints.NewBondProxy(idx[r.Atoms[0]], idx[r.Atoms[1]], r.Ideal, r.Weight)
		if err != nil {
			return nil, fmt.Errorf("session: restraint %d: %w", i, err)
		}
		if err = rm.Add(p); err != nil {
			return nil, err
		}
	}

	return refine.New(st, cs, rm, append([]refine.Option{refine.WithID(s.ID)}, opts...)...)
}

func (c Constraint) build(idx map[string]int) (*constraints.Constraint, error) {
	kind, err := geometry.ParseKind(c.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, c.Kind)
	}
	opts := []constraints.Option{
		constraints.WithStretching(c.Stretching),
		constraints.WithAzimuth(c.Azimuth),
	}
	if c.Rotating != nil {
		opts = append(opts, constraints.WithRotating(*c.Rotating))
	}
	if c.Reference != nil {
		opts = append(opts, constraints.WithReference(r3.Vec{X: c.Reference[0], Y: c.Reference[1], Z: c.Reference[2]}))
	}

	return constraints.New(kind, idx[c.Pivot], indices(idx, c.Neighbors), indices(idx, c.Dependents), c.BondLength, opts...)
}

func indices(idx map[string]int, labels []string) []int {
	out := make([]int, len(labels))
	for i, l := range labels {
		out[i] = idx[l]
	}

	return out
}

// Capture snapshots the current state of ref: sites, auxiliary values and
// the carried frames of terminal groups.
func Capture(ref *refine.Refinement) *Session {
	st := ref.Structure
	p := st.Cell.Parameters()
	s := &Session{
		ID:   ref.ID,
		Cell: Cell{A: p.A, B: p.B, C: p.C, Alpha: p.Alpha, Beta: p.Beta, Gamma: p.Gamma},
	}

	// 1. Scatterers
	label := func(i int) string { return st.Scatterers[i].Label }
	labels := func(is []int) []string {
		out := make([]string, len(is))
		for k, i := range is {
			out[k] = label(i)
		}
		return out
	}
	s.Scatterers = make([]Scatterer, len(st.Scatterers))
	for i, sc := range st.Scatterers {
		s.Scatterers[i] = Scatterer{
			Label:   sc.Label,
			Site:    [3]float64{sc.Site.X, sc.Site.Y, sc.Site.Z},
			Fixed:   !sc.Flags.GradSite,
			Special: st.SiteSymmetry.IsSpecial(i),
		}
	}

	// 2. Constraints
	for _, c := range ref.Set.Constraints() {
		doc := Constraint{
			Kind:       c.Kind().String(),
			Pivot:      label(c.Pivot()),
			Neighbors:  labels(c.Neighbors()),
			Dependents: labels(c.Dependents()),
			BondLength: c.BondLength(),
			Azimuth:    c.Azimuth(),
			Stretching: c.Stretching(),
		}
		if f, ok := c.Frame(); ok {
			rotating := c.Rotating()
			doc.Rotating = &rotating
			if !f.IsZero() {
				doc.Reference = &[3]float64{f.E0.X, f.E0.Y, f.E0.Z}
			}
		}
		s.Constraints = append(s.Constraints, doc)
	}

	// 3. Restraints
	for _, p := range ref.Restraints.Proxies() {
		s.Restraints = append(s.Restraints, Restraint{
			Atoms:  [2]string{label(p.I), label(p.J)},
			Ideal:  p.Ideal,
			Weight: p.Weight,
		})
	}

	return s
}
