package frame

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerate indicates a direction that cannot be normalized.
var ErrDegenerate = errors.New("frame: degenerate direction")

// minNorm is the smallest vector length Unit accepts.
const minNorm = 1e-10

// Frame is a right-handed orthonormal basis.
type Frame struct {
	E0, E1, E2 r3.Vec
}

// Unit normalizes v, failing with ErrDegenerate on near-zero or non-finite input.
func Unit(v r3.Vec) (r3.Vec, error) {
	n := r3.Norm(v)
	if !(n > minNorm) || math.IsInf(n, 0) {
		return r3.Vec{}, ErrDegenerate
	}

	return r3.Scale(1/n, v), nil
}

// Build returns a fresh frame with E2 along axis.
// E1 is e2 × k, normalized, where k is the coordinate axis with the smallest
// |component| of e2; E0 = E1 × E2.
func Build(axis r3.Vec) (Frame, error) {
	e2, err := Unit(axis)
	if err != nil {
		return Frame{}, err
	}
	e1, err := Unit(r3.Cross(e2, referenceAxis(e2)))
	if err != nil {
		return Frame{}, err
	}

	return Frame{E0: r3.Cross(e1, e2), E1: e1, E2: e2}, nil
}

// Update rotates prev so that E2 follows axis.
// If prev.E0 is parallel to the new axis (a jump no refinement step produces),
// the frame is rebuilt from scratch.
func Update(prev Frame, axis r3.Vec) (Frame, error) {
	f2, err := Unit(axis)
	if err != nil {
		return Frame{}, err
	}
	e1, err := Unit(r3.Cross(f2, prev.E0))
	if err != nil {
		return Build(f2)
	}

	return Frame{E0: r3.Cross(e1, f2), E1: e1, E2: f2}, nil
}

// BuildOrUpdate anchors a frame on the bond neighbor→pivot.
// A nil prev builds a fresh frame.
func BuildOrUpdate(pivot, neighbor r3.Vec, prev *Frame) (Frame, error) {
	axis := r3.Sub(pivot, neighbor)
	if prev == nil {
		return Build(axis)
	}

	return Update(*prev, axis)
}

// FromBonds returns the frame of a pivot with two bonded neighbors:
// E0 bisects the unit neighbor→pivot directions u1 and u2,
// E2 = unit(u2 − u1) lies in the bond plane, E1 = E2 × E0 is its normal.
func FromBonds(pivot, n1, n2 r3.Vec) (Frame, error) {
	u1, err := Unit(r3.Sub(pivot, n1))
	if err != nil {
		return Frame{}, err
	}
	u2, err := Unit(r3.Sub(pivot, n2))
	if err != nil {
		return Frame{}, err
	}
	e0, err := Unit(r3.Add(u1, u2))
	if err != nil {
		return Frame{}, err
	}
	e2, err := Unit(r3.Sub(u2, u1))
	if err != nil {
		return Frame{}, err
	}

	return Frame{E0: e0, E1: r3.Cross(e2, e0), E2: e2}, nil
}

// IsOrthonormal reports whether the axes are unit length, mutually orthogonal
// and right-handed, within tol.
func (f Frame) IsOrthonormal(tol float64) bool {
	for _, e := range []r3.Vec{f.E0, f.E1, f.E2} {
		if math.Abs(r3.Norm(e)-1) > tol {
			return false
		}
	}
	if math.Abs(r3.Dot(f.E0, f.E1)) > tol ||
		math.Abs(r3.Dot(f.E0, f.E2)) > tol ||
		math.Abs(r3.Dot(f.E1, f.E2)) > tol {
		return false
	}

	return r3.Dot(r3.Cross(f.E0, f.E1), f.E2) > 1-tol
}

// IsZero reports whether f is the zero Frame (never built).
func (f Frame) IsZero() bool {
	return f == Frame{}
}

// referenceAxis returns the coordinate axis least aligned with u.
func referenceAxis(u r3.Vec) r3.Vec {
	ax, ay, az := math.Abs(u.X), math.Abs(u.Y), math.Abs(u.Z)
	switch {
	case ax <= ay && ax <= az:
		return r3.Vec{X: 1}
	case ay <= az:
		return r3.Vec{Y: 1}
	default:
		return r3.Vec{Z: 1}
	}
}
