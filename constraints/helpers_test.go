package constraints_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/riding/cell"
	"github.com/katalvlaran/riding/constraints"
	"github.com/katalvlaran/riding/xray"
)

// structureOf builds a structure over uc from Cartesian sites; every site is refined.
func structureOf(uc *cell.UnitCell, sites ...r3.Vec) *xray.Structure {
	sc := make([]xray.Scatterer, len(sites))
	for i, x := range sites {
		sc[i] = xray.NewScatterer(fmt.Sprintf("A%d", i), uc.Fractionalize(x))
	}

	return xray.NewStructure(uc, sc)
}

func cubicCell(t testing.TB, a float64) *cell.UnitCell {
	t.Helper()
	uc, err := cell.Cubic(a)
	require.NoError(t, err)

	return uc
}

func newContext(s *xray.Structure) *constraints.Context {
	return constraints.NewContext(s, s.ParameterMap())
}

func cart(ctx *constraints.Context, i int) r3.Vec {
	return ctx.Cell.Orthogonalize(ctx.Scatterers[i].Site)
}

// angle returns the angle a–o–b in radians.
func angle(o, a, b r3.Vec) float64 {
	return math.Acos(r3.Cos(r3.Sub(a, o), r3.Sub(b, o)))
}

func sitesOf(ctx *constraints.Context) []r3.Vec {
	out := make([]r3.Vec, len(ctx.Scatterers))
	for i, sc := range ctx.Scatterers {
		out[i] = sc.Site
	}

	return out
}

// methyls builds n independent terminal groups: atom 5j is the pivot,
// 5j+1 its neighbor and 5j+2..5j+4 the hydrogens.
func methyls(t testing.TB, n int, opts ...constraints.Option) (*constraints.Context, []*constraints.Constraint) {
	t.Helper()
	uc := cubicCell(t, 40)
	var sites []r3.Vec
	cs := make([]*constraints.Constraint, n)
	for j := 0; j < n; j++ {
		x := 3 * float64(j)
		sites = append(sites,
			r3.Vec{X: x, Y: 0, Z: 0},
			r3.Vec{X: x + 0.3, Y: 0.4, Z: 1.4},
			r3.Vec{X: x + 1}, r3.Vec{X: x + 1, Y: 1}, r3.Vec{X: x, Y: 1})
		c, err := constraints.NewTerminalXH3(5*j, 5*j+1, []int{5*j + 2, 5*j + 3, 5*j + 4}, 0.96, opts...)
		require.NoError(t, err)
		cs[j] = c
	}

	return newContext(structureOf(uc, sites...)), cs
}
