package constraints_test

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/riding/cell"
	"github.com/katalvlaran/riding/constraints"
	"github.com/katalvlaran/riding/xray"
)

// ExampleSet places a methyl group on C1, bonded to C2 along +z, with a
// fixed bond length of 1 Å and azimuth 0°.
func ExampleSet() {
	uc, _ := cell.Cubic(10)
	s := xray.NewStructure(uc, []xray.Scatterer{
		xray.NewScatterer("C1", r3.Vec{}),
		xray.NewScatterer("C2", r3.Vec{Z: 0.1}),
		xray.NewScatterer("H1", r3.Vec{}),
		xray.NewScatterer("H2", r3.Vec{}),
		xray.NewScatterer("H3", r3.Vec{}),
	})
	ctx := constraints.NewContext(s, s.ParameterMap())

	methyl, _ := constraints.NewTerminalXH3(0, 1, []int{2, 3, 4}, 1, constraints.WithRotating(false))
	set, _ := constraints.NewSet([]*constraints.Constraint{methyl})
	if err := set.Initialise(ctx); err != nil {
		fmt.Println("error:", err)
		return
	}
	if err := set.Place(ctx); err != nil {
		fmt.Println("error:", err)
		return
	}

	for _, h := range methyl.Dependents() {
		x := s.CartesianSite(h)
		fmt.Printf("%s %.4f %.4f %.4f\n", s.Scatterers[h].Label, x.X, x.Y, x.Z)
	}
	fmt.Println("reparameters:", set.ReparamCount())

	// Output:
	// H1 0.9428 0.0000 -0.3333
	// H2 -0.4714 -0.8165 -0.3333
	// H3 -0.4714 0.8165 -0.3333
	// reparameters: 0
}
