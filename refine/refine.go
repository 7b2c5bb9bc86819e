package refine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/katalvlaran/riding/constraints"
	"github.com/katalvlaran/riding/restraints"
	"github.com/katalvlaran/riding/xray"
)

// ErrBadStep indicates an unusable step size or step count.
var ErrBadStep = errors.New("refine: invalid step")

// Option configures a Refinement.
type Option func(*config)

type config struct {
	id          uuid.UUID
	logger      *slog.Logger
	parallelism int
}

// WithID sets the refinement identity; a random one is used otherwise.
func WithID(id uuid.UUID) Option {
	return func(c *config) { c.id = id }
}

// WithLogger sets the logger for the refinement and its constraint set.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithParallelism is passed through to constraints.WithParallelism.
func WithParallelism(n int) Option {
	return func(c *config) { c.parallelism = n }
}

// Refinement binds a structure, its riding constraints and its restraints.
type Refinement struct {
	ID         uuid.UUID
	Structure  *xray.Structure
	Params     *xray.ParameterMap
	Context    *constraints.Context
	Set        *constraints.Set
	Restraints *restraints.Manager

	logger *slog.Logger
}

// Result summarizes one cycle.
type Result struct {
	Cycle    int
	Target   float64 // before the shifts of this cycle
	GradNorm float64 // Euclidean norm of the reduced gradient
}

// New initialises the constraints over s and places the dependents.
func New(s *xray.Structure, cs []*constraints.Constraint, rm *restraints.Manager, opts ...Option) (*Refinement, error) {
	cfg := config{logger: slog.New(slog.DiscardHandler), parallelism: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.id == uuid.Nil {
		cfg.id = uuid.New()
	}
	if rm == nil {
		rm = restraints.NewManager()
	}

	// 1. Parameter map follows the scatterer flags
	pm := s.ParameterMap()
	ctx := constraints.NewContext(s, pm)

	// 2. Constraint set
	set, err := constraints.NewSet(cs,
		constraints.WithLogger(cfg.logger), constraints.WithParallelism(cfg.parallelism))
	if err != nil {
		return nil, err
	}
	if err = set.Initialise(ctx); err != nil {
		return nil, fmt.Errorf("refine: initialise: %w", err)
	}
	if err = set.Place(ctx); err != nil {
		return nil, fmt.Errorf("refine: place: %w", err)
	}

	return &Refinement{
		ID:         cfg.id,
		Structure:  s,
		Params:     pm,
		Context:    ctx,
		Set:        set,
		Restraints: rm,
		logger:     cfg.logger.With("refinement", cfg.id.String()),
	}, nil
}

// Evaluate returns the restraint target, the crystallographic gradients with
// the dependents ridden onto their pivots, and the reparametrization gradients.
func (r *Refinement) Evaluate() (target float64, crystal, reparam []float64, err error) {
	crystal = make([]float64, r.Params.Len())
	target, err = r.Restraints.AddGradients(r.Structure, r.Params, crystal)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("refine: restraints: %w", err)
	}
	reparam, err = r.Set.PropagateGradients(r.Context, crystal)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("refine: propagate: %w", err)
	}

	return target, crystal, reparam, nil
}

// Step runs one steepest-descent cycle with the given step size.
func (r *Refinement) Step(stepSize float64) (Result, error) {
	if !(stepSize > 0) || math.IsInf(stepSize, 0) {
		return Result{}, fmt.Errorf("%w: step size %g", ErrBadStep, stepSize)
	}

	// 1. Target and reduced gradient
	target, crystal, reparam, err := r.Evaluate()
	if err != nil {
		return Result{}, err
	}

	// 2. Shifts along the negative gradient; only free sites move
	var norm2 float64
	crystalShifts := make([]float64, len(crystal))
	for i := range r.Context.Scatterers {
		slot := r.Params.SiteSlot(i)
		if slot < 0 || !r.Context.Flags[i].GradSite {
			continue
		}
		for k := slot; k < slot+3; k++ {
			crystalShifts[k] = -stepSize * crystal[k]
			norm2 += crystal[k] * crystal[k]
		}
	}
	reparamShifts := make([]float64, len(reparam))
	for k, g := range reparam {
		reparamShifts[k] = -stepSize * g
		norm2 += g * g
	}

	// 3. Apply and re-place
	if err = r.Set.ApplyShifts(r.Context, crystalShifts, reparamShifts); err != nil {
		return Result{}, fmt.Errorf("refine: apply shifts: %w", err)
	}

	return Result{Target: target, GradNorm: math.Sqrt(norm2)}, nil
}

// Run performs steps cycles and logs each one. It stops early when ctx is done.
func (r *Refinement) Run(ctx context.Context, steps int, stepSize float64) ([]Result, error) {
	if steps < 0 {
		return nil, fmt.Errorf("%w: %d steps", ErrBadStep, steps)
	}
	out := make([]Result, 0, steps)
	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}
		res, err := r.Step(stepSize)
		if err != nil {
			return out, fmt.Errorf("refine: cycle %d: %w", i, err)
		}
		res.Cycle = i
		out = append(out, res)
		r.logger.Info("cycle", "n", i, "target", res.Target, "gradient_norm", res.GradNorm)
	}

	return out, nil
}

// Target returns the current restraint target without touching gradients.
func (r *Refinement) Target() (float64, error) {
	return r.Restraints.Target(r.Structure)
}
