package cell_test

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/riding/cell"
)

// ExampleUnitCell_Orthogonalize converts a fractional site of a monoclinic
// cell to Cartesian Å and back.
func ExampleUnitCell_Orthogonalize() {
	uc, err := cell.New(5, 6, 7, 90, 100, 90)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	x := uc.Orthogonalize(r3.Vec{X: 0.5, Y: 0.5, Z: 0.5})
	f := uc.Fractionalize(x)
	fmt.Printf("x = (%.3f, %.3f, %.3f)\n", x.X, x.Y, x.Z)
	fmt.Printf("f = (%.3f, %.3f, %.3f)\n", f.X, f.Y, f.Z)
	fmt.Printf("V = %.2f\n", uc.Volume())

	// Output:
	// x = (1.892, 3.000, 3.447)
	// f = (0.500, 0.500, 0.500)
	// V = 206.81
}
