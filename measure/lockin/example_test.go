package lockin_test

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-lockin/measure/acquire"
	"github.com/cwbudde/algo-lockin/measure/lockin"
)

func ExampleCore_Run() {
	synth, err := acquire.NewSynth(acquire.SynthConfig{SampleRate: 160, Frequency: 4, Amplitude: 1, Phase: 0.5})
	if err != nil {
		panic(err)
	}

	c, err := lockin.New(synth.Reference(), synth.Measured(), 4, 160, lockin.WithSettleDelay(0))
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	if err := c.Connect(ctx); err != nil {
		panic(err)
	}

	var last lockin.Result
	if _, err := c.Run(ctx, 3200, lockin.ResultSinkFunc(func(r lockin.Result) error {
		last = r
		return nil
	})); err != nil {
		panic(err)
	}

	fmt.Printf("magnitude %.2f\n", last.Magnitude)
	fmt.Printf("phase %.2f\n", last.Phase)
	fmt.Println(math.Abs(last.Phase+0.5) < 0.01)
	// Output:
	// magnitude 0.50
	// phase -0.50
	// true
}

func ExampleRecorder() {
	rec := lockin.NewRecorder(os.Stdout)
	_ = rec.WriteResult(lockin.Result{Magnitude: 0.5, Phase: -0.125})
	_ = rec.WriteResult(lockin.Result{Magnitude: 0.25, Phase: math.Pi})
	// Output:
	// 0.5, -0.125
	// 0.25, 3.141592653589793
}
