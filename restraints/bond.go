package restraints

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrIndexOutOfRange indicates an invalid atom pair.
	ErrIndexOutOfRange = errors.New("restraints: atom index out of range")

	// ErrBadWeight indicates a non-positive weight or ideal distance.
	ErrBadWeight = errors.New("restraints: weight and ideal distance must be positive")

	// ErrGradientLength indicates a gradient vector too short for a site slot.
	ErrGradientLength = errors.New("restraints: gradient vector too short")
)

// BondProxy restrains the distance between atoms I and J.
type BondProxy struct {
	I, J   int
	Ideal  float64 // Å
	Weight float64
}

// NewBondProxy validates and returns a proxy.
func NewBondProxy(i, j int, ideal, weight float64) (BondProxy, error) {
	p := BondProxy{I: i, J: j, Ideal: ideal, Weight: weight}

	return p, p.check(-1)
}

// check validates p; n < 0 skips the upper index bound.
func (p BondProxy) check(n int) error {
	if p.I < 0 || p.J < 0 || p.I == p.J || (n >= 0 && (p.I >= n || p.J >= n)) {
		return fmt.Errorf("%w: (%d, %d)", ErrIndexOutOfRange, p.I, p.J)
	}
	if !(p.Weight > 0) || !(p.Ideal > 0) || math.IsInf(p.Weight, 0) || math.IsInf(p.Ideal, 0) {
		return fmt.Errorf("%w: ideal %g, weight %g", ErrBadWeight, p.Ideal, p.Weight)
	}

	return nil
}

// Bond is one evaluated bond restraint.
type Bond struct {
	Sites  [2]r3.Vec // Cartesian
	Ideal  float64
	Weight float64
	Model  float64 // current distance
	Delta  float64 // Ideal − Model
}

// NewBond evaluates the restraint between Cartesian sites x0 and x1.
func NewBond(x0, x1 r3.Vec, ideal, weight float64) Bond {
	model := r3.Norm(r3.Sub(x0, x1))

	return Bond{
		Sites:  [2]r3.Vec{x0, x1},
		Ideal:  ideal,
		Weight: weight,
		Model:  model,
		Delta:  ideal - model,
	}
}

// Residual returns w·δ².
func (b Bond) Residual() float64 {
	return b.Weight * b.Delta * b.Delta
}

// Gradients returns ∂residual/∂x for both sites. Coincident sites have no
// defined direction and get zero gradients.
func (b Bond) Gradients() [2]r3.Vec {
	if b.Model == 0 {
		return [2]r3.Vec{}
	}
	g0 := r3.Scale(-2*b.Weight*b.Delta/b.Model, r3.Sub(b.Sites[0], b.Sites[1]))

	return [2]r3.Vec{g0, r3.Scale(-1, g0)}
}
