package smooth_test

import (
	"fmt"

	"github.com/cwbudde/algo-resp/dsp/smooth"
)

func ExampleSmooth() {
	signal := []float64{0, 0, 0, 5, 0, 0, 0}

	out, _ := smooth.Smooth(signal, 200, smooth.ShapeRectangular, 15)
	for _, v := range out {
		fmt.Printf("%.3f ", v)
	}
	fmt.Println()

	// Output:
	// 0.000 0.000 1.667 1.667 1.667 0.000 0.000
}
