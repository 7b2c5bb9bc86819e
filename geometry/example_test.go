package geometry_test

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/riding/geometry"
)

// ExampleAromaticOrAmideHVariant places an aromatic H on the external
// bisector of its two ring bonds.
func ExampleAromaticOrAmideHVariant() {
	v := geometry.AromaticOrAmideHVariant{}
	pivot := r3.Vec{}
	ring := []r3.Vec{{X: -1.2, Y: -0.7}, {X: 1.2, Y: -0.7}}

	pl, err := v.Place(pivot, ring, geometry.Params{BondLength: 0.93}, 1)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	h := pl.Sites[0]
	fmt.Printf("H at (%.3f, %.3f, %.3f)\n", h.X, h.Y, h.Z)

	// Output:
	// H at (0.000, 0.930, 0.000)
}

// ExampleSecondaryCH2HalfAngle shows the H–C–H half-angle shrinking as the
// two heavy neighbors move apart.
func ExampleSecondaryCH2HalfAngle() {
	for _, d := range []float64{0, 2.4} {
		fmt.Printf("d=%.1f θ=%.4f\n", d, geometry.SecondaryCH2HalfAngle(d*d))
	}

	// Output:
	// d=0.0 θ=1.0376
	// d=2.4 θ=0.8366
}
