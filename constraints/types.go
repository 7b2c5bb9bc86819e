package constraints

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/riding/xray"
)

// UnitCell converts sites and gradients between fractional and Cartesian frames.
type UnitCell interface {
	Orthogonalize(f r3.Vec) r3.Vec
	Fractionalize(x r3.Vec) r3.Vec
	OrthogonalizeGradient(g r3.Vec) r3.Vec
}

// ParameterMap locates the three site-gradient components of an atom.
type ParameterMap interface {
	// SiteSlot returns the offset of atom i's site gradient, or -1.
	SiteSlot(i int) int
}

// SiteSymmetry reports atoms on special positions.
type SiteSymmetry interface {
	IsSpecial(i int) bool
}

// Context is the refinement context every lifecycle call works on.
// Scatterers are written in place by Place; Flags are the constraint flags
// cleared by Initialise.
type Context struct {
	Cell         UnitCell
	SiteSymmetry SiteSymmetry // optional
	Scatterers   []xray.Scatterer
	Params       ParameterMap
	Flags        []xray.Flags
}

// NewContext builds a Context over s. The parameter map follows the scatterer
// flags; the constraint flags start as a copy of them.
func NewContext(s *xray.Structure, pm *xray.ParameterMap) *Context {
	ctx := &Context{
		Cell:       s.Cell,
		Scatterers: s.Scatterers,
		Params:     pm,
		Flags:      s.ConstraintFlags(),
	}
	if s.SiteSymmetry != nil {
		ctx.SiteSymmetry = s.SiteSymmetry
	}

	return ctx
}

// ReducedFlags returns a copy of the constraint flags: after Initialise,
// GradSite is set only for atoms whose sites remain independent parameters.
func (ctx *Context) ReducedFlags() []xray.Flags {
	return append([]xray.Flags(nil), ctx.Flags...)
}

// site returns atom i's Cartesian position.
func (ctx *Context) site(i int) r3.Vec {
	return ctx.Cell.Orthogonalize(ctx.Scatterers[i].Site)
}

// State is the lifecycle state of a Constraint.
type State int

const (
	// Uninitialized: constructed, not yet bound to a refinement context.
	Uninitialized State = iota
	// Active: initialised, dependents claimed, not yet placed.
	Active
	// Placed: dependents positioned for the current cycle.
	Placed
	// GradientPropagated: gradients folded and reparametrization slice recorded.
	GradientPropagated
	// ShiftApplied: auxiliary parameters shifted and dependents re-placed.
	ShiftApplied
	// Disabled: a dependent was already constrained; every call is a no-op.
	Disabled
)

// String names the state.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	case Placed:
		return "placed"
	case GradientPropagated:
		return "gradient-propagated"
	case ShiftApplied:
		return "shift-applied"
	case Disabled:
		return "disabled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option configures a Constraint at construction.
type Option func(*options)

type options struct {
	stretching bool
	rotating   *bool
	azimuth    float64
	reference  *r3.Vec
}

// WithStretching frees the pivot–hydrogen bond length.
func WithStretching(on bool) Option {
	return func(o *options) { o.stretching = on }
}

// WithRotating frees (or fixes) the azimuth. Only terminal groups rotate;
// asking any other variant to rotate is a configuration error.
func WithRotating(on bool) Option {
	return func(o *options) { o.rotating = &on }
}

// WithAzimuth sets the initial azimuth in degrees.
func WithAzimuth(deg float64) Option {
	return func(o *options) { o.azimuth = deg }
}

// WithReference seeds a terminal group's local frame with a saved E0 so
// the azimuth keeps its origin across sessions.
func WithReference(e0 r3.Vec) Option {
	return func(o *options) { o.reference = &e0 }
}
