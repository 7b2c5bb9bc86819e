package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/riding/frame"
)

// Empirical X–CH₂–Y correction (ShelXL): the H–C–H half-angle shrinks
// linearly with the squared X···Y distance.
const (
	// CH2Theta0 is the half-angle at zero X···Y distance, in radians.
	CH2Theta0 = 1.0376
	// CH2ThetaSlope is the decrease of the half-angle per Å² of X···Y distance.
	CH2ThetaSlope = 0.0349
)

// SecondaryCH2HalfAngle returns θ = θ0 − k·dSq for a squared X···Y distance dSq.
func SecondaryCH2HalfAngle(dSq float64) float64 {
	return CH2Theta0 - CH2ThetaSlope*dSq
}

// unit wraps frame.Unit with the package's degeneracy sentinel.
func unit(v r3.Vec) (r3.Vec, error) {
	u, err := frame.Unit(v)
	if err != nil {
		return r3.Vec{}, fmt.Errorf("%w: %w", ErrDegenerateGeometry, err)
	}

	return u, nil
}

// bondDirections returns unit(pivot − n) for every neighbor n.
func bondDirections(pivot r3.Vec, neighbors []r3.Vec) ([]r3.Vec, error) {
	out := make([]r3.Vec, len(neighbors))
	for i, n := range neighbors {
		u, err := unit(r3.Sub(pivot, n))
		if err != nil {
			return nil, err
		}
		out[i] = u
	}

	return out, nil
}

// singleAlong places one hydrogen at pivot + l·e.
func singleAlong(pivot, e r3.Vec, l float64) Placement {
	return Placement{
		Sites: []r3.Vec{r3.Add(pivot, r3.Scale(l, e))},
		DxDl:  []r3.Vec{e},
	}
}

// TerminalXH3Variant is the Y–XH₃ model. It carries the local frame from one
// placement to the next so the azimuth origin moves with the X–Y bond.
type TerminalXH3Variant struct {
	frame frame.Frame
	axis  r3.Vec // bond vector the frame was last aligned to
	ready bool

	seed   r3.Vec // E0 of a persisted frame, used by the next Init
	seeded bool
}

// Kind implements Variant.
func (*TerminalXH3Variant) Kind() Kind { return TerminalXH3 }

// NeighborCount implements Variant.
func (*TerminalXH3Variant) NeighborCount() int { return 1 }

// Rotatable implements Variant.
func (*TerminalXH3Variant) Rotatable() bool { return true }

// CheckDependents accepts 1, 2 or 3 hydrogens.
func (*TerminalXH3Variant) CheckDependents(n int) error {
	if n < 1 || n > 3 {
		return fmt.Errorf("%w: number of geometric hydrogens must be 1, 2 or 3, got %d",
			ErrInvalidConfiguration, n)
	}

	return nil
}

// ActiveParams implements Variant.
func (*TerminalXH3Variant) ActiveParams(m Mode) []Param { return activeParams(m, true) }

// Frame returns the local frame of the last Init or Place.
func (t *TerminalXH3Variant) Frame() frame.Frame { return t.frame }

// Seed makes the next Init rotate a frame with E0 = e0 onto the bond instead
// of building a fresh one, which restores the azimuth origin of a saved model.
func (t *TerminalXH3Variant) Seed(e0 r3.Vec) {
	t.seed, t.seeded = e0, true
}

// Init builds the frame along the neighbor→pivot bond, from the seed if any.
func (t *TerminalXH3Variant) Init(pivot r3.Vec, neighbors []r3.Vec) error {
	if err := checkNeighbors(TerminalXH3, 1, neighbors); err != nil {
		return err
	}
	axis := r3.Sub(pivot, neighbors[0])
	var f frame.Frame
	var err error
	if t.seeded {
		f, err = frame.Update(frame.Frame{E0: t.seed}, axis)
	} else {
		f, err = frame.Build(axis)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDegenerateGeometry, err)
	}
	t.frame, t.axis, t.ready = f, axis, true

	return nil
}

// Place positions n hydrogens at azimuths φ, φ+120°, φ+240°.
// The frame is only rotated when the bond vector changed since the last call,
// so re-placing unchanged geometry reproduces identical sites.
func (t *TerminalXH3Variant) Place(pivot r3.Vec, neighbors []r3.Vec, p Params, n int) (Placement, error) {
	// 1. Validate shape
	if err := t.CheckDependents(n); err != nil {
		return Placement{}, err
	}
	if err := checkNeighbors(TerminalXH3, 1, neighbors); err != nil {
		return Placement{}, err
	}

	// 2. Follow the X–Y bond with the carried frame
	axis := r3.Sub(pivot, neighbors[0])
	if !t.ready || axis != t.axis {
		var prev *frame.Frame
		if t.ready {
			prev = &t.frame
		}
		f, err := frame.BuildOrUpdate(pivot, neighbors[0], prev)
		if err != nil {
			return Placement{}, fmt.Errorf("%w: %w", ErrDegenerateGeometry, err)
		}
		t.frame, t.axis, t.ready = f, axis, true
	}
	e0, e1, e2 := t.frame.E0, t.frame.E1, t.frame.E2

	// 3. Sites and derivatives; φ is stored in degrees
	l := p.BondLength
	phi := p.Azimuth * degree
	pl := Placement{
		Sites:  make([]r3.Vec, n),
		DxDl:   make([]r3.Vec, n),
		DxDphi: make([]r3.Vec, n),
	}
	for i := 0; i < n; i++ {
		phiI := phi + float64(i)*2*math.Pi/3
		c, s := math.Cos(phiI), math.Sin(phiI)
		radial := r3.Add(r3.Scale(c, e0), r3.Scale(s, e1))
		dir := r3.Add(r3.Scale(sinTetrahedral, radial), r3.Scale(1.0/3, e2))

		pl.Sites[i] = r3.Add(pivot, r3.Scale(l, dir))
		pl.DxDl[i] = dir
		tangent := r3.Add(r3.Scale(-s, e0), r3.Scale(c, e1))
		pl.DxDphi[i] = r3.Scale(l*sinTetrahedral*degree, tangent)
	}

	return pl, nil
}

// SecondaryCH2Variant is the X–CH₂–Y model.
type SecondaryCH2Variant struct{}

// Kind implements Variant.
func (SecondaryCH2Variant) Kind() Kind { return SecondaryCH2 }

// NeighborCount implements Variant.
func (SecondaryCH2Variant) NeighborCount() int { return 2 }

// Rotatable implements Variant.
func (SecondaryCH2Variant) Rotatable() bool { return false }

// CheckDependents accepts exactly 2 hydrogens.
func (SecondaryCH2Variant) CheckDependents(n int) error {
	if n != 2 {
		return fmt.Errorf("%w: secondary CH2 needs 2 hydrogens, got %d", ErrInvalidConfiguration, n)
	}

	return nil
}

// ActiveParams implements Variant.
func (SecondaryCH2Variant) ActiveParams(m Mode) []Param { return activeParams(m, false) }

// Init only validates the neighbor count; the frame is rebuilt at every placement.
func (SecondaryCH2Variant) Init(_ r3.Vec, neighbors []r3.Vec) error {
	return checkNeighbors(SecondaryCH2, 2, neighbors)
}

// Place puts H1, H2 at pivot + l·(cos θ·e0 ± sin θ·e1).
func (v SecondaryCH2Variant) Place(pivot r3.Vec, neighbors []r3.Vec, p Params, n int) (Placement, error) {
	if err := v.CheckDependents(n); err != nil {
		return Placement{}, err
	}
	if err := checkNeighbors(SecondaryCH2, 2, neighbors); err != nil {
		return Placement{}, err
	}
	f, err := frame.FromBonds(pivot, neighbors[0], neighbors[1])
	if err != nil {
		return Placement{}, fmt.Errorf("%w: %w", ErrDegenerateGeometry, err)
	}

	theta := SecondaryCH2HalfAngle(r3.Norm2(r3.Sub(neighbors[1], neighbors[0])))
	c, s := math.Cos(theta), math.Sin(theta)
	d1 := r3.Add(r3.Scale(c, f.E0), r3.Scale(s, f.E1))
	d2 := r3.Sub(r3.Scale(c, f.E0), r3.Scale(s, f.E1))
	l := p.BondLength

	return Placement{
		Sites: []r3.Vec{r3.Add(pivot, r3.Scale(l, d1)), r3.Add(pivot, r3.Scale(l, d2))},
		DxDl:  []r3.Vec{d1, d2},
	}, nil
}

// TertiaryCHVariant is the X,Y,Z–C–H model.
type TertiaryCHVariant struct{}

// Kind implements Variant.
func (TertiaryCHVariant) Kind() Kind { return TertiaryCH }

// NeighborCount implements Variant.
func (TertiaryCHVariant) NeighborCount() int { return 3 }

// Rotatable implements Variant.
func (TertiaryCHVariant) Rotatable() bool { return false }

// CheckDependents accepts exactly 1 hydrogen.
func (TertiaryCHVariant) CheckDependents(n int) error {
	if n != 1 {
		return fmt.Errorf("%w: tertiary CH needs 1 hydrogen, got %d", ErrInvalidConfiguration, n)
	}

	return nil
}

// ActiveParams implements Variant.
func (TertiaryCHVariant) ActiveParams(m Mode) []Param { return activeParams(m, false) }

// Init only validates the neighbor count.
func (TertiaryCHVariant) Init(_ r3.Vec, neighbors []r3.Vec) error {
	return checkNeighbors(TertiaryCH, 3, neighbors)
}

// Place puts H along (u1−u2)×(u2−u3), oriented away from the three bonds.
func (v TertiaryCHVariant) Place(pivot r3.Vec, neighbors []r3.Vec, p Params, n int) (Placement, error) {
	if err := v.CheckDependents(n); err != nil {
		return Placement{}, err
	}
	if err := checkNeighbors(TertiaryCH, 3, neighbors); err != nil {
		return Placement{}, err
	}
	u, err := bondDirections(pivot, neighbors)
	if err != nil {
		return Placement{}, err
	}

	d := r3.Cross(r3.Sub(u[0], u[1]), r3.Sub(u[1], u[2]))
	if r3.Dot(d, r3.Add(r3.Add(u[0], u[1]), u[2])) < 0 {
		d = r3.Scale(-1, d)
	}
	e, err := unit(d)
	if err != nil {
		return Placement{}, err
	}

	return singleAlong(pivot, e, p.BondLength), nil
}

// AromaticOrAmideHVariant is the X–C(H)–Y / X–N(H)–Y model.
type AromaticOrAmideHVariant struct{}

// Kind implements Variant.
func (AromaticOrAmideHVariant) Kind() Kind { return AromaticOrAmideH }

// NeighborCount implements Variant.
func (AromaticOrAmideHVariant) NeighborCount() int { return 2 }

// Rotatable implements Variant.
func (AromaticOrAmideHVariant) Rotatable() bool { return false }

// CheckDependents accepts exactly 1 hydrogen.
func (AromaticOrAmideHVariant) CheckDependents(n int) error {
	if n != 1 {
		return fmt.Errorf("%w: aromatic CH / amide NH needs 1 hydrogen, got %d",
			ErrInvalidConfiguration, n)
	}

	return nil
}

// ActiveParams implements Variant.
func (AromaticOrAmideHVariant) ActiveParams(m Mode) []Param { return activeParams(m, false) }

// Init only validates the neighbor count.
func (AromaticOrAmideHVariant) Init(_ r3.Vec, neighbors []r3.Vec) error {
	return checkNeighbors(AromaticOrAmideH, 2, neighbors)
}

// Place puts H on the external bisector of the two bonds.
func (v AromaticOrAmideHVariant) Place(pivot r3.Vec, neighbors []r3.Vec, p Params, n int) (Placement, error) {
	if err := v.CheckDependents(n); err != nil {
		return Placement{}, err
	}
	if err := checkNeighbors(AromaticOrAmideH, 2, neighbors); err != nil {
		return Placement{}, err
	}
	u, err := bondDirections(pivot, neighbors)
	if err != nil {
		return Placement{}, err
	}
	e, err := unit(r3.Add(u[0], u[1]))
	if err != nil {
		return Placement{}, err
	}

	return singleAlong(pivot, e, p.BondLength), nil
}
