package constraints

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/riding/frame"
	"github.com/katalvlaran/riding/geometry"
	"github.com/katalvlaran/riding/xray"
)

// Constraint places the dependent hydrogens of one pivot atom and rides
// their gradients onto it.
type Constraint struct {
	variant    geometry.Variant
	pivot      int
	neighbors  []int
	dependents []int
	params     geometry.Params
	modes      geometry.Mode

	state     State
	offset    int // first reparametrization slot, -1 until propagated
	placement geometry.Placement
	conflicts map[int]xray.Flags
}

// New constructs a constraint of the given kind.
// Terminal groups rotate by default; other kinds never do. Stretching is off
// unless WithStretching(true) is passed.
func New(kind geometry.Kind, pivot int, neighbors, dependents []int, bondLength float64, opts ...Option) (*Constraint, error) {
	// 1. Variant and topology
	v, err := geometry.New(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	if err = v.CheckDependents(len(dependents)); err != nil {
		return nil, err
	}
	if len(neighbors) != v.NeighborCount() {
		return nil, fmt.Errorf("%w: %s needs %d neighbors, got %d",
			ErrInvalidConfiguration, kind, v.NeighborCount(), len(neighbors))
	}

	// 2. Atom indices: non-negative, each atom used once
	seen := make(map[int]bool, 1+len(neighbors)+len(dependents))
	for _, list := range [][]int{{pivot}, neighbors, dependents} {
		for _, a := range list {
			if a < 0 {
				return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, a)
			}
			if seen[a] {
				return nil, fmt.Errorf("%w: atom %d used twice", ErrInvalidConfiguration, a)
			}
			seen[a] = true
		}
	}

	// 3. Bond length
	if !(bondLength > 0) || math.IsInf(bondLength, 0) {
		return nil, fmt.Errorf("%w: bond length %g", ErrInvalidConfiguration, bondLength)
	}

	// 4. Options
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	var modes geometry.Mode
	if o.stretching {
		modes |= geometry.Stretching
	}
	rotating := v.Rotatable()
	if o.rotating != nil {
		if *o.rotating && !v.Rotatable() {
			return nil, fmt.Errorf("%w: %s cannot rotate", ErrInvalidConfiguration, kind)
		}
		rotating = *o.rotating
	}
	if rotating {
		modes |= geometry.Rotating
	}
	if o.reference != nil {
		t, ok := v.(*geometry.TerminalXH3Variant)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no carried frame", ErrInvalidConfiguration, kind)
		}
		t.Seed(*o.reference)
	}

	return &Constraint{
		variant:    v,
		pivot:      pivot,
		neighbors:  append([]int(nil), neighbors...),
		dependents: append([]int(nil), dependents...),
		params:     geometry.Params{BondLength: bondLength, Azimuth: o.azimuth},
		modes:      modes,
		offset:     -1,
	}, nil
}

// NewTerminalXH3 constructs a Y–XH₃ constraint (1–3 hydrogens).
func NewTerminalXH3(pivot, neighbor int, dependents []int, bondLength float64, opts ...Option) (*Constraint, error) {
	return New(geometry.TerminalXH3, pivot, []int{neighbor}, dependents, bondLength, opts...)
}

// NewSecondaryCH2 constructs an X–CH₂–Y constraint.
func NewSecondaryCH2(pivot, x, y, h1, h2 int, bondLength float64, opts ...Option) (*Constraint, error) {
	return New(geometry.SecondaryCH2, pivot, []int{x, y}, []int{h1, h2}, bondLength, opts...)
}

// NewTertiaryCH constructs an X,Y,Z–C–H constraint.
func NewTertiaryCH(pivot, x, y, z, h int, bondLength float64, opts ...Option) (*Constraint, error) {
	return New(geometry.TertiaryCH, pivot, []int{x, y, z}, []int{h}, bondLength, opts...)
}

// NewAromaticOrAmideH constructs an X–C(H)–Y or X–N(H)–Y constraint.
func NewAromaticOrAmideH(pivot, x, y, h int, bondLength float64, opts ...Option) (*Constraint, error) {
	return New(geometry.AromaticOrAmideH, pivot, []int{x, y}, []int{h}, bondLength, opts...)
}

// Kind returns the placement model.
func (c *Constraint) Kind() geometry.Kind { return c.variant.Kind() }

// Pivot returns the pivot atom index.
func (c *Constraint) Pivot() int { return c.pivot }

// Neighbors returns a copy of the pivot's neighbor indices.
func (c *Constraint) Neighbors() []int { return append([]int(nil), c.neighbors...) }

// Dependents returns a copy of the dependent indices.
func (c *Constraint) Dependents() []int { return append([]int(nil), c.dependents...) }

// BondLength returns the current pivot–hydrogen distance in Å.
func (c *Constraint) BondLength() float64 { return c.params.BondLength }

// SetBondLength replaces the bond length; it takes effect at the next Place.
func (c *Constraint) SetBondLength(l float64) error {
	if !(l > 0) || math.IsInf(l, 0) {
		return fmt.Errorf("%w: bond length %g", ErrInvalidConfiguration, l)
	}
	c.params.BondLength = l

	return nil
}

// Azimuth returns the current azimuth in degrees.
func (c *Constraint) Azimuth() float64 { return c.params.Azimuth }

// SetAzimuth replaces the azimuth in degrees.
func (c *Constraint) SetAzimuth(deg float64) { c.params.Azimuth = deg }

// Stretching reports whether the bond length is refined.
func (c *Constraint) Stretching() bool { return c.modes.Has(geometry.Stretching) }

// SetStretching frees or fixes the bond length.
func (c *Constraint) SetStretching(on bool) {
	if on {
		c.modes |= geometry.Stretching
	} else {
		c.modes &^= geometry.Stretching
	}
}

// Rotating reports whether the azimuth is refined.
func (c *Constraint) Rotating() bool { return c.modes.Has(geometry.Rotating) }

// SetRotating frees or fixes the azimuth.
func (c *Constraint) SetRotating(on bool) error {
	if !on {
		c.modes &^= geometry.Rotating
		return nil
	}
	if !c.variant.Rotatable() {
		return fmt.Errorf("%w: %s cannot rotate", ErrInvalidConfiguration, c.Kind())
	}
	c.modes |= geometry.Rotating

	return nil
}

// ActiveParams lists the refined auxiliary parameters, bond length first.
func (c *Constraint) ActiveParams() []geometry.Param { return c.variant.ActiveParams(c.modes) }

// State returns the lifecycle state.
func (c *Constraint) State() State { return c.state }

// ReparamOffset returns the first slot of this constraint's auxiliary
// gradients in the last reparametrization vector, or -1.
func (c *Constraint) ReparamOffset() int { return c.offset }

// Conflicts returns the atoms that disabled this constraint and their flags
// at the time of the refused claim.
func (c *Constraint) Conflicts() map[int]xray.Flags {
	out := make(map[int]xray.Flags, len(c.conflicts))
	for a, f := range c.conflicts {
		out[a] = f
	}

	return out
}

// Frame returns the carried local frame of a terminal group.
func (c *Constraint) Frame() (frame.Frame, bool) {
	t, ok := c.variant.(*geometry.TerminalXH3Variant)
	if !ok {
		return frame.Frame{}, false
	}

	return t.Frame(), true
}

// Sites returns the last placed Cartesian dependent sites.
func (c *Constraint) Sites() []r3.Vec { return append([]r3.Vec(nil), c.placement.Sites...) }

// reads lists the atoms whose positions placement depends on.
func (c *Constraint) reads() []int {
	return append([]int{c.pivot}, c.neighbors...)
}

// Initialise binds the constraint to ctx. If any dependent is already owned
// by another constraint, or has no independent site gradient to give up, the
// constraint is disabled and nothing is claimed. Otherwise every dependent
// is claimed in reg and its GradSite flag cleared.
func (c *Constraint) Initialise(ctx *Context, reg *Registry) error {
	// 1. Validate context and indices
	if ctx == nil || reg == nil || ctx.Cell == nil {
		return ErrNilContext
	}
	n := len(ctx.Scatterers)
	if len(ctx.Flags) != n {
		return fmt.Errorf("%w: %d flags for %d scatterers", ErrIndexOutOfRange, len(ctx.Flags), n)
	}
	for _, a := range append(c.reads(), c.dependents...) {
		if a >= n {
			return fmt.Errorf("%w: %d (structure has %d atoms)", ErrIndexOutOfRange, a, n)
		}
	}
	if ctx.SiteSymmetry != nil {
		for _, h := range c.dependents {
			if ctx.SiteSymmetry.IsSpecial(h) {
				return fmt.Errorf("%w: atom %d", ErrSpecialPosition, h)
			}
		}
	}
	c.offset = -1
	c.conflicts = nil

	// 2. Refuse the whole constraint on any conflict
	var conflicts map[int]xray.Flags
	for _, h := range c.dependents {
		if reg.Constrained(h) || !ctx.Flags[h].GradSite {
			if conflicts == nil {
				conflicts = make(map[int]xray.Flags)
			}
			conflicts[h] = ctx.Flags[h]
		}
	}
	if conflicts != nil {
		for h, f := range conflicts {
			reg.refuse(h, f)
		}
		c.conflicts = conflicts
		c.state = Disabled

		return nil
	}

	// 3. Variant state from the current geometry
	if err := c.variant.Init(ctx.site(c.pivot), c.neighborSites(ctx)); err != nil {
		return fmt.Errorf("constraints: init pivot %d: %w", c.pivot, err)
	}

	// 4. Claim
	for _, h := range c.dependents {
		ctx.Flags[h].GradSite = false
		reg.claim(h, c)
	}
	c.state = Active

	return nil
}

// Place writes the dependents' fractional sites into ctx.
func (c *Constraint) Place(ctx *Context) error {
	switch c.state {
	case Disabled:
		return nil
	case Uninitialized:
		return ErrNotInitialised
	}
	pl, err := c.variant.Place(ctx.site(c.pivot), c.neighborSites(ctx), c.params, len(c.dependents))
	if err != nil {
		return fmt.Errorf("constraints: place pivot %d: %w", c.pivot, err)
	}
	for i, h := range c.dependents {
		ctx.Scatterers[h].Site = ctx.Cell.Fractionalize(pl.Sites[i])
	}
	c.placement = pl
	c.state = Placed

	return nil
}

// PropagateGradients adds every dependent's site gradient to the pivot's
// and appends this constraint's auxiliary gradients to reparam, returning
// the extended slice. crystal is modified in place.
func (c *Constraint) PropagateGradients(ctx *Context, crystal, reparam []float64) ([]float64, error) {
	g, err := c.gradients(ctx, crystal)
	if err != nil {
		return reparam, err
	}

	return c.commit(crystal, reparam, g), nil
}

// contribution is the side-effect-free result of gradients.
type contribution struct {
	skip      bool
	pivotSlot int
	riding    r3.Vec
	aux       []float64
}

// gradients reads crystal and the last placement; it writes nothing.
func (c *Constraint) gradients(ctx *Context, crystal []float64) (contribution, error) {
	switch c.state {
	case Disabled:
		return contribution{skip: true}, nil
	case Uninitialized:
		return contribution{}, ErrNotInitialised
	}

	// 1. Raw fractional gradients of the dependents
	grads := make([]r3.Vec, len(c.dependents))
	out := contribution{pivotSlot: ctx.Params.SiteSlot(c.pivot)}
	if out.pivotSlot >= 0 && out.pivotSlot+3 > len(crystal) {
		return contribution{}, fmt.Errorf("%w: pivot %d slot %d, length %d",
			ErrGradientLength, c.pivot, out.pivotSlot, len(crystal))
	}
	for i, h := range c.dependents {
		slot := ctx.Params.SiteSlot(h)
		if slot < 0 {
			return contribution{}, fmt.Errorf("%w: atom %d", ErrNoSiteSlot, h)
		}
		if slot+3 > len(crystal) {
			return contribution{}, fmt.Errorf("%w: atom %d slot %d, length %d",
				ErrGradientLength, h, slot, len(crystal))
		}
		grads[i] = r3.Vec{X: crystal[slot], Y: crystal[slot+1], Z: crystal[slot+2]}
		out.riding = r3.Add(out.riding, grads[i])
	}

	// 2. Chain rule through the Cartesian placement derivatives
	active := c.ActiveParams()
	if len(active) == 0 {
		return out, nil
	}
	if c.placement.Sites == nil {
		return contribution{}, ErrNotPlaced
	}
	cart := make([]r3.Vec, len(grads))
	for i, g := range grads {
		cart[i] = ctx.Cell.OrthogonalizeGradient(g)
	}
	out.aux = make([]float64, len(active))
	for k, p := range active {
		dx := c.placement.Derivative(p)
		var sum float64
		for i := range cart {
			sum += r3.Dot(dx[i], cart[i])
		}
		out.aux[k] = sum
	}

	return out, nil
}

// commit applies a contribution computed by gradients.
func (c *Constraint) commit(crystal, reparam []float64, g contribution) []float64 {
	if g.skip {
		return reparam
	}
	if g.pivotSlot >= 0 {
		crystal[g.pivotSlot] += g.riding.X
		crystal[g.pivotSlot+1] += g.riding.Y
		crystal[g.pivotSlot+2] += g.riding.Z
	}
	c.offset = -1
	if len(g.aux) > 0 {
		c.offset = len(reparam)
		reparam = append(reparam, g.aux...)
	}
	c.state = GradientPropagated

	return reparam
}

// ApplyShifts adds the shifts found at the recorded offset to the active
// auxiliary parameters, bond length first, and re-places the dependents.
// Pivot and neighbor sites are expected to be shifted already.
func (c *Constraint) ApplyShifts(ctx *Context, reparamShifts []float64) error {
	switch c.state {
	case Disabled:
		return nil
	case Uninitialized:
		return ErrNotInitialised
	}
	active := c.ActiveParams()
	if len(active) > 0 {
		if c.offset < 0 {
			return fmt.Errorf("%w: pivot %d", ErrNoReparamSlice, c.pivot)
		}
		if c.offset+len(active) > len(reparamShifts) {
			return fmt.Errorf("%w: need %d, got %d", ErrShiftLength, c.offset+len(active), len(reparamShifts))
		}
		for k, p := range active {
			c.params.Add(p, reparamShifts[c.offset+k])
		}
	}
	if err := c.Place(ctx); err != nil {
		return err
	}
	c.state = ShiftApplied

	return nil
}

func (c *Constraint) neighborSites(ctx *Context) []r3.Vec {
	out := make([]r3.Vec, len(c.neighbors))
	for i, a := range c.neighbors {
		out[i] = ctx.site(a)
	}

	return out
}

// conflictAtoms returns the conflicting atoms in ascending order.
func (c *Constraint) conflictAtoms() []int {
	out := make([]int, 0, len(c.conflicts))
	for a := range c.conflicts {
		out = append(out, a)
	}
	sort.Ints(out)

	return out
}
