package core_test

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-lockin/dsp/core"
)

func ExampleWrapPhase() {
	fmt.Printf("%.4f\n", core.WrapPhase(-math.Pi))
	fmt.Printf("%.4f\n", core.WrapPhase(1.5*math.Pi))

	// Output:
	// 3.1416
	// -1.5708
}

func ExampleErrInvalidParameter() {
	err := fmt.Errorf("iir: cutoff 80 Hz is not below Nyquist 70 Hz: %w", core.ErrInvalidParameter)
	fmt.Println(errors.Is(err, core.ErrInvalidParameter))

	// Output:
	// true
}
