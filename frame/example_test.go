package frame_test

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/riding/frame"
)

// ExampleBuild anchors a frame on the +z axis.
func ExampleBuild() {
	f, err := frame.Build(r3.Vec{Z: 2})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(f.E0, f.E1, f.E2)

	// Output:
	// {1 0 0} {0 1 0} {0 0 1}
}
