package cell

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrBadParameters indicates cell lengths or angles that do not describe a cell.
	ErrBadParameters = errors.New("cell: invalid unit cell parameters")

	// ErrSingularCell indicates the orthogonalization matrix is not invertible.
	ErrSingularCell = errors.New("cell: singular orthogonalization matrix")
)

// Parameters are the six unit cell parameters. Lengths in Å, angles in degrees.
type Parameters struct {
	A, B, C            float64
	Alpha, Beta, Gamma float64
}

// UnitCell holds the orthogonalization matrix O and its inverse F.
// A UnitCell is immutable after New and safe for concurrent use.
type UnitCell struct {
	params Parameters
	volume float64
	orth   *mat.Dense // O: fractional -> Cartesian
	frac   *mat.Dense // F = O⁻¹: Cartesian -> fractional
}

// New builds a UnitCell from a, b, c (Å) and alpha, beta, gamma (degrees).
// Returns ErrBadParameters for non-positive lengths, angles outside (0,180)
// or an angle triple with no real volume, and ErrSingularCell if inversion fails.
func New(a, b, c, alpha, beta, gamma float64) (*UnitCell, error) {
	p := Parameters{A: a, B: b, C: c, Alpha: alpha, Beta: beta, Gamma: gamma}
	// 1. Lengths must be positive and finite
	for _, l := range []float64{a, b, c} {
		if !(l > 0) || math.IsInf(l, 0) {
			return nil, fmt.Errorf("%w: length %v", ErrBadParameters, l)
		}
	}
	// 2. Angles must lie strictly inside (0, 180)
	for _, ang := range []float64{alpha, beta, gamma} {
		if !(ang > 0 && ang < 180) {
			return nil, fmt.Errorf("%w: angle %v", ErrBadParameters, ang)
		}
	}

	ca, cb, cg := cosDeg(alpha), cosDeg(beta), cosDeg(gamma)
	sg := sinDeg(gamma)
	// 3. The squared volume factor must be positive for the angles to close
	v2 := 1 - ca*ca - cb*cb - cg*cg + 2*ca*cb*cg
	if !(v2 > 0) {
		return nil, fmt.Errorf("%w: angles %v/%v/%v do not form a cell",
			ErrBadParameters, alpha, beta, gamma)
	}
	volume := a * b * c * math.Sqrt(v2)

	// 4. O with a along x and b in the xy plane
	orth := mat.NewDense(3, 3, []float64{
		a, b * cg, c * cb,
		0, b * sg, c * (ca - cb*cg) / sg,
		0, 0, volume / (a * b * sg),
	})

	// 5. F = O⁻¹
	var frac mat.Dense
	if err := frac.Inverse(orth); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularCell, err)
	}

	return &UnitCell{params: p, volume: volume, orth: orth, frac: &frac}, nil
}

// Cubic is a convenience constructor for an orthogonal cell with edge a.
func Cubic(a float64) (*UnitCell, error) {
	return New(a, a, a, 90, 90, 90)
}

// Parameters returns the cell parameters the cell was built from.
func (uc *UnitCell) Parameters() Parameters { return uc.params }

// Volume returns the cell volume in Å³.
func (uc *UnitCell) Volume() float64 { return uc.volume }

// Orthogonalize converts a fractional site to Cartesian coordinates.
func (uc *UnitCell) Orthogonalize(f r3.Vec) r3.Vec {
	return mulVec(uc.orth, f, false)
}

// Fractionalize converts a Cartesian site to fractional coordinates.
func (uc *UnitCell) Fractionalize(x r3.Vec) r3.Vec {
	return mulVec(uc.frac, x, false)
}

// OrthogonalizeGradient converts ∂T/∂f into ∂T/∂x, i.e. Fᵀ·g.
func (uc *UnitCell) OrthogonalizeGradient(g r3.Vec) r3.Vec {
	return mulVec(uc.frac, g, true)
}

// FractionalizeGradient converts ∂T/∂x into ∂T/∂f, i.e. Oᵀ·g.
func (uc *UnitCell) FractionalizeGradient(g r3.Vec) r3.Vec {
	return mulVec(uc.orth, g, true)
}

// Distance returns the Cartesian distance between two fractional sites,
// without applying lattice translations.
func (uc *UnitCell) Distance(f1, f2 r3.Vec) float64 {
	return r3.Norm(uc.Orthogonalize(r3.Sub(f1, f2)))
}

// mulVec returns m·v, or mᵀ·v when trans is set.
func mulVec(m *mat.Dense, v r3.Vec, trans bool) r3.Vec {
	var a mat.Matrix = m
	if trans {
		a = m.T()
	}
	in := mat.NewVecDense(3, []float64{v.X, v.Y, v.Z})
	var out mat.VecDense
	out.MulVec(a, in)

	return r3.Vec{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

func cosDeg(d float64) float64 {
	// exact zero for right angles keeps orthogonal cells free of 6e-17 noise
	if d == 90 {
		return 0
	}

	return math.Cos(d * math.Pi / 180)
}

func sinDeg(d float64) float64 {
	if d == 90 {
		return 1
	}

	return math.Sin(d * math.Pi / 180)
}
