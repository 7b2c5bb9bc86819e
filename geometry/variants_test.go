package geometry_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/riding/frame"
	"github.com/katalvlaran/riding/geometry"
)

const tol = 1e-12

// angle returns the angle a–apex–b in radians.
func angle(a, apex, b r3.Vec) float64 {
	return math.Acos(r3.Cos(r3.Sub(a, apex), r3.Sub(b, apex)))
}

func newVariant(t *testing.T, k geometry.Kind) geometry.Variant {
	t.Helper()
	v, err := geometry.New(k)
	require.NoError(t, err)
	require.Equal(t, k, v.Kind())

	return v
}

// TestTerminalXH3_TetrahedralAngles checks every H–X–H and H–X–Y angle for
// several azimuths and bond orientations.
func TestTerminalXH3_TetrahedralAngles(t *testing.T) {
	geoms := []struct{ pivot, neighbor r3.Vec }{
		{r3.Vec{}, r3.Vec{Z: 1.5}},
		{r3.Vec{X: 2, Y: -1, Z: 0.5}, r3.Vec{X: 3.1, Y: -0.2, Z: 1.4}},
		{r3.Vec{X: -4, Y: 7, Z: 3}, r3.Vec{X: -4.3, Y: 5.6, Z: 3.2}},
	}
	for _, g := range geoms {
		for _, phi := range []float64{0, 17.5, 60, 133, -250} {
			v := newVariant(t, geometry.TerminalXH3)
			pl, err := v.Place(g.pivot, []r3.Vec{g.neighbor}, geometry.Params{BondLength: 0.96, Azimuth: phi}, 3)
			require.NoError(t, err)
			require.Len(t, pl.Sites, 3)

			for i := 0; i < 3; i++ {
				assert.InDelta(t, 0.96, r3.Norm(r3.Sub(pl.Sites[i], g.pivot)), tol)
				assert.InDelta(t, geometry.TetrahedralAngle, angle(pl.Sites[i], g.pivot, g.neighbor), 1e-10)
				for j := i + 1; j < 3; j++ {
					assert.InDelta(t, geometry.TetrahedralAngle, angle(pl.Sites[i], g.pivot, pl.Sites[j]), 1e-10)
				}
			}
		}
	}
}

// TestTerminalXH3_SingleHydrogenOnZAxis is the reference geometry: X at the
// origin, Y at (0,0,1), l = 1, φ = 0.
func TestTerminalXH3_SingleHydrogenOnZAxis(t *testing.T) {
	v := newVariant(t, geometry.TerminalXH3)
	pivot, neighbor := r3.Vec{}, r3.Vec{Z: 1}
	pl, err := v.Place(pivot, []r3.Vec{neighbor}, geometry.Params{BondLength: 1}, 1)
	require.NoError(t, err)

	h := pl.Sites[0]
	assert.InDelta(t, 1.0, r3.Norm(h), tol)
	assert.InDelta(t, geometry.TetrahedralAngle, angle(h, pivot, neighbor), tol)
	assert.InDelta(t, -1.0/3, h.Z, tol)
}

// TestTerminalXH3_Derivatives compares analytic derivatives with central
// differences in l and φ (degrees).
func TestTerminalXH3_Derivatives(t *testing.T) {
	pivot := r3.Vec{X: 0.4, Y: -0.3, Z: 1.1}
	nb := []r3.Vec{{X: 1.2, Y: 0.5, Z: 1.9}}
	p := geometry.Params{BondLength: 0.98, Azimuth: 37}
	const h = 1e-6

	v := newVariant(t, geometry.TerminalXH3)
	pl, err := v.Place(pivot, nb, p, 3)
	require.NoError(t, err)

	for _, param := range []geometry.Param{geometry.BondLength, geometry.Azimuth} {
		plus, minus := p, p
		plus.Add(param, h)
		minus.Add(param, -h)
		pp, err := v.Place(pivot, nb, plus, 3)
		require.NoError(t, err)
		pm, err := v.Place(pivot, nb, minus, 3)
		require.NoError(t, err)

		for i := range pl.Sites {
			fd := r3.Scale(1/(2*h), r3.Sub(pp.Sites[i], pm.Sites[i]))
			an := pl.Derivative(param)[i]
			assert.InDelta(t, fd.X, an.X, 1e-7, "%s site %d", param, i)
			assert.InDelta(t, fd.Y, an.Y, 1e-7, "%s site %d", param, i)
			assert.InDelta(t, fd.Z, an.Z, 1e-7, "%s site %d", param, i)
		}
	}
}

// TestTerminalXH3_ReplaceIsExact verifies that placing twice with unchanged
// inputs yields identical bits.
func TestTerminalXH3_ReplaceIsExact(t *testing.T) {
	v := newVariant(t, geometry.TerminalXH3)
	pivot, nb := r3.Vec{X: 0.1, Y: 0.2, Z: 0.3}, []r3.Vec{{X: 1.1, Y: -0.4, Z: 0.9}}
	require.NoError(t, v.Init(pivot, nb))
	p := geometry.Params{BondLength: 0.97, Azimuth: 12}

	a, err := v.Place(pivot, nb, p, 3)
	require.NoError(t, err)
	b, err := v.Place(pivot, nb, p, 3)
	require.NoError(t, err)
	assert.Equal(t, a.Sites, b.Sites)
}

// TestTerminalXH3_FrameFollowsBond checks the carried frame stays aligned.
func TestTerminalXH3_FrameFollowsBond(t *testing.T) {
	v := &geometry.TerminalXH3Variant{}
	pivot := r3.Vec{}
	require.NoError(t, v.Init(pivot, []r3.Vec{{Z: -1.4}}))
	f0 := v.Frame()
	assert.True(t, f0.IsOrthonormal(tol))

	_, err := v.Place(pivot, []r3.Vec{{X: 0.05, Z: -1.4}}, geometry.Params{BondLength: 1}, 2)
	require.NoError(t, err)
	f1 := v.Frame()
	assert.True(t, f1.IsOrthonormal(tol))
	assert.Greater(t, r3.Dot(f0.E0, f1.E0), 0.99)
	assert.InDelta(t, 1.0, r3.Dot(f1.E2, r3.Unit(r3.Vec{X: -0.05, Z: 1.4})), tol)
}

// TestTerminalXH3_FrameMatchesBuildOrUpdate verifies that the first Place
// builds the frame fresh and later ones carry it as frame.BuildOrUpdate does.
func TestTerminalXH3_FrameMatchesBuildOrUpdate(t *testing.T) {
	v := &geometry.TerminalXH3Variant{}
	pivot, n0, n1 := r3.Vec{X: 0.3}, r3.Vec{X: 0.2, Y: 0.1, Z: 1.5}, r3.Vec{X: 0.25, Y: 0.2, Z: 1.45}

	_, err := v.Place(pivot, []r3.Vec{n0}, geometry.Params{BondLength: 1}, 3)
	require.NoError(t, err)
	fresh, err := frame.BuildOrUpdate(pivot, n0, nil)
	require.NoError(t, err)
	assert.Equal(t, fresh, v.Frame())

	_, err = v.Place(pivot, []r3.Vec{n1}, geometry.Params{BondLength: 1}, 3)
	require.NoError(t, err)
	carried, err := frame.BuildOrUpdate(pivot, n1, &fresh)
	require.NoError(t, err)
	assert.Equal(t, carried, v.Frame())
}

// TestTerminalXH3_SeedRestoresFrame rebuilds a carried frame from its E0.
func TestTerminalXH3_SeedRestoresFrame(t *testing.T) {
	carried := &geometry.TerminalXH3Variant{}
	pivot := r3.Vec{}
	require.NoError(t, carried.Init(pivot, []r3.Vec{{Z: -1.4}}))
	nb := []r3.Vec{{X: 0.3, Y: -0.2, Z: -1.3}}
	p := geometry.Params{BondLength: 0.96, Azimuth: 40}
	for _, x := range []float64{0.1, 0.2, 0.3} {
		_, err := carried.Place(pivot, []r3.Vec{{X: x, Y: -0.2, Z: -1.3}}, p, 3)
		require.NoError(t, err)
	}
	want, err := carried.Place(pivot, nb, p, 3)
	require.NoError(t, err)

	fresh := &geometry.TerminalXH3Variant{}
	fresh.Seed(carried.Frame().E0)
	require.NoError(t, fresh.Init(pivot, nb))
	got, err := fresh.Place(pivot, nb, p, 3)
	require.NoError(t, err)
	for i := range want.Sites {
		assert.InDelta(t, 0, r3.Norm(r3.Sub(want.Sites[i], got.Sites[i])), 1e-14)
	}
}

// TestTerminalXH3_BadCounts rejects 0 and 4 hydrogens and wrong neighbor counts.
func TestTerminalXH3_BadCounts(t *testing.T) {
	v := newVariant(t, geometry.TerminalXH3)
	for _, n := range []int{0, 4} {
		_, err := v.Place(r3.Vec{}, []r3.Vec{{Z: 1}}, geometry.Params{BondLength: 1}, n)
		assert.ErrorIs(t, err, geometry.ErrInvalidConfiguration)
	}
	_, err := v.Place(r3.Vec{}, nil, geometry.Params{BondLength: 1}, 3)
	assert.ErrorIs(t, err, geometry.ErrNeighborCount)
	_, err = v.Place(r3.Vec{}, []r3.Vec{{}}, geometry.Params{BondLength: 1}, 3)
	assert.ErrorIs(t, err, geometry.ErrDegenerateGeometry)
}

// TestSecondaryCH2_HalfAngleLaw verifies θ = θ0 − k·d².
func TestSecondaryCH2_HalfAngleLaw(t *testing.T) {
	assert.Equal(t, 1.0376, geometry.SecondaryCH2HalfAngle(0))
	assert.InDelta(t, 0.836576, geometry.SecondaryCH2HalfAngle(5.76), 1e-12)

	// X···Y = 2.4 Å, so d² = 5.76
	v := newVariant(t, geometry.SecondaryCH2)
	pivot := r3.Vec{}
	nb := []r3.Vec{{X: -1.2, Y: 0.9}, {X: 1.2, Y: 0.9}}
	pl, err := v.Place(pivot, nb, geometry.Params{BondLength: 0.97}, 2)
	require.NoError(t, err)

	bisector := r3.Vec{Y: -1}
	for _, h := range pl.Sites {
		assert.InDelta(t, 0.97, r3.Norm(h), tol)
		assert.InDelta(t, 0.8358, angle(h, pivot, bisector), 1e-3)
		assert.InDelta(t, geometry.SecondaryCH2HalfAngle(5.76), angle(h, pivot, bisector), 1e-12)
	}
	assert.InDelta(t, 2*geometry.SecondaryCH2HalfAngle(5.76), angle(pl.Sites[0], pivot, pl.Sites[1]), 1e-12)
	// both H see X and Y under the same angle
	for _, h := range pl.Sites {
		assert.InDelta(t, angle(h, pivot, nb[0]), angle(h, pivot, nb[1]), 1e-12)
	}
	// H1 and H2 are mirror images through the X–C–Y plane
	assert.InDelta(t, pl.Sites[0].Z, -pl.Sites[1].Z, tol)
	assert.Nil(t, pl.DxDphi)
}

// TestSecondaryCH2_DistanceChangesAngle moves Y outwards and checks θ tracks d².
func TestSecondaryCH2_DistanceChangesAngle(t *testing.T) {
	v := newVariant(t, geometry.SecondaryCH2)
	for _, x := range []float64{0.9, 1.2, 1.35} {
		nb := []r3.Vec{{X: -x, Y: 0.9}, {X: x, Y: 0.9}}
		pl, err := v.Place(r3.Vec{}, nb, geometry.Params{BondLength: 1}, 2)
		require.NoError(t, err)
		want := geometry.SecondaryCH2HalfAngle(4 * x * x)
		assert.InDelta(t, want, angle(pl.Sites[0], r3.Vec{}, r3.Vec{Y: -1}), 1e-12)
	}
}

// TestSecondaryCH2_BadInput covers count and degeneracy checks.
func TestSecondaryCH2_BadInput(t *testing.T) {
	v := newVariant(t, geometry.SecondaryCH2)
	_, err := v.Place(r3.Vec{}, []r3.Vec{{X: 1}, {Y: 1}}, geometry.Params{BondLength: 1}, 1)
	assert.ErrorIs(t, err, geometry.ErrInvalidConfiguration)
	_, err = v.Place(r3.Vec{}, []r3.Vec{{X: 1}}, geometry.Params{BondLength: 1}, 2)
	assert.ErrorIs(t, err, geometry.ErrNeighborCount)
	_, err = v.Place(r3.Vec{}, []r3.Vec{{X: -1}, {X: 1}}, geometry.Params{BondLength: 1}, 2)
	assert.ErrorIs(t, err, geometry.ErrDegenerateGeometry)
}

// TestTertiaryCH_EquiangularAndOutward checks H makes equal angles with the
// three neighbors and points away from them, for a distorted environment.
func TestTertiaryCH_EquiangularAndOutward(t *testing.T) {
	v := newVariant(t, geometry.TertiaryCH)
	pivot := r3.Vec{X: 0.2, Y: 0.1, Z: -0.3}
	nb := []r3.Vec{
		{X: 1.6, Y: 0.1, Z: -0.8},
		{X: -0.5, Y: 1.4, Z: -0.9},
		{X: -0.4, Y: -1.3, Z: -0.7},
	}
	pl, err := v.Place(pivot, nb, geometry.Params{BondLength: 1.08}, 1)
	require.NoError(t, err)
	h := pl.Sites[0]

	assert.InDelta(t, 1.08, r3.Norm(r3.Sub(h, pivot)), tol)
	a0 := angle(h, pivot, nb[0])
	assert.InDelta(t, a0, angle(h, pivot, nb[1]), 1e-10)
	assert.InDelta(t, a0, angle(h, pivot, nb[2]), 1e-10)
	assert.Greater(t, a0, math.Pi/2)
	assert.InDelta(t, 1.0, r3.Norm(pl.DxDl[0]), tol)
}

// TestTertiaryCH_IdealTetrahedron recovers the fourth tetrahedral direction.
func TestTertiaryCH_IdealTetrahedron(t *testing.T) {
	v := newVariant(t, geometry.TertiaryCH)
	s := math.Sin(geometry.TetrahedralAngle)
	var nb []r3.Vec
	for i := 0; i < 3; i++ {
		phi := float64(i) * 2 * math.Pi / 3
		nb = append(nb, r3.Scale(1.54, r3.Vec{X: s * math.Cos(phi), Y: s * math.Sin(phi), Z: -1.0 / 3}))
	}
	pl, err := v.Place(r3.Vec{}, nb, geometry.Params{BondLength: 1}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0, pl.Sites[0].X, 1e-12)
	assert.InDelta(t, 0, pl.Sites[0].Y, 1e-12)
	assert.InDelta(t, 1, pl.Sites[0].Z, 1e-12)
}

// TestTertiaryCH_Planar fails fast when the three bonds are coplanar with
// equal unit directions giving no normal.
func TestTertiaryCH_Planar(t *testing.T) {
	v := newVariant(t, geometry.TertiaryCH)
	nb := []r3.Vec{{X: 1}, {X: 2}, {X: 3}}
	_, err := v.Place(r3.Vec{}, nb, geometry.Params{BondLength: 1}, 1)
	assert.ErrorIs(t, err, geometry.ErrDegenerateGeometry)
	_, err = v.Place(r3.Vec{}, nb, geometry.Params{BondLength: 1}, 2)
	assert.ErrorIs(t, err, geometry.ErrInvalidConfiguration)
}

// TestAromaticOrAmideH_Bisector checks H lies on the external bisector.
func TestAromaticOrAmideH_Bisector(t *testing.T) {
	v := newVariant(t, geometry.AromaticOrAmideH)
	pivot := r3.Vec{X: 1, Y: 1, Z: 1}
	nb := []r3.Vec{{X: 2.39, Y: 1, Z: 1}, {X: 0.305, Y: 2.204, Z: 1}}
	pl, err := v.Place(pivot, nb, geometry.Params{BondLength: 0.93}, 1)
	require.NoError(t, err)
	h := pl.Sites[0]

	assert.InDelta(t, 0.93, r3.Norm(r3.Sub(h, pivot)), tol)
	assert.InDelta(t, angle(h, pivot, nb[0]), angle(h, pivot, nb[1]), 1e-10)
	assert.InDelta(t, 1.0, h.Z, tol, "H stays in the ring plane")
	assert.InDelta(t, 2*math.Pi, angle(h, pivot, nb[0])+angle(h, pivot, nb[1])+angle(nb[0], pivot, nb[1]), 1e-10)

	_, err = v.Place(pivot, []r3.Vec{{X: 2, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1}}, geometry.Params{BondLength: 1}, 1)
	assert.ErrorIs(t, err, geometry.ErrDegenerateGeometry)
}

// TestActiveParams_Order checks stretching is listed before rotation and
// rotation only exists for the terminal group.
func TestActiveParams_Order(t *testing.T) {
	both := geometry.Stretching | geometry.Rotating
	term := newVariant(t, geometry.TerminalXH3)
	assert.Equal(t, []geometry.Param{geometry.BondLength, geometry.Azimuth}, term.ActiveParams(both))
	assert.Equal(t, []geometry.Param{geometry.Azimuth}, term.ActiveParams(geometry.Rotating))
	assert.Empty(t, term.ActiveParams(0))

	for _, k := range []geometry.Kind{geometry.SecondaryCH2, geometry.TertiaryCH, geometry.AromaticOrAmideH} {
		v := newVariant(t, k)
		assert.False(t, v.Rotatable())
		assert.Equal(t, []geometry.Param{geometry.BondLength}, v.ActiveParams(both))
		assert.Empty(t, v.ActiveParams(geometry.Rotating))
	}
}

// TestKind_ParseAndString round-trips kind names.
func TestKind_ParseAndString(t *testing.T) {
	for _, k := range []geometry.Kind{
		geometry.TerminalXH3, geometry.SecondaryCH2, geometry.TertiaryCH, geometry.AromaticOrAmideH,
	} {
		got, err := geometry.ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	got, err := geometry.ParseKind("Terminal_XH3")
	require.NoError(t, err)
	assert.Equal(t, geometry.TerminalXH3, got)

	_, err = geometry.ParseKind("quaternary")
	assert.ErrorIs(t, err, geometry.ErrUnknownKind)
	_, err = geometry.New(geometry.Kind(9))
	assert.ErrorIs(t, err, geometry.ErrUnknownKind)
	assert.Equal(t, "Kind(9)", geometry.Kind(9).String())
	assert.Equal(t, "azimuth", geometry.Azimuth.String())
}

// TestInit_NeighborCounts verifies Init validates neighbors for every model.
func TestInit_NeighborCounts(t *testing.T) {
	for _, k := range []geometry.Kind{
		geometry.TerminalXH3, geometry.SecondaryCH2, geometry.TertiaryCH, geometry.AromaticOrAmideH,
	} {
		v := newVariant(t, k)
		assert.ErrorIs(t, v.Init(r3.Vec{}, make([]r3.Vec, v.NeighborCount()+1)), geometry.ErrNeighborCount, "%s", k)
	}
}
