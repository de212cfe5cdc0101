package iir

import "math"

// StepSettling runs a unit step through a fresh filter built from c and
// returns the first sample index at which the output is within eps of the
// DC gain and its slope is below eps per second. ok is false if that does
// not happen within maxSamples samples or the design has no finite DC gain.
func StepSettling(c Coefficients, eps float64, maxSamples int) (n int, ok bool) {
	var sb, sa float64
	for i := range c.B {
		sb += c.B[i]
		sa += c.A[i]
	}
	if sa == 0 || len(c.B) == 0 {
		return 0, false
	}
	final := sb / sa

	f := &Filter{}
	f.Apply(c)

	prev := 0.0
	for n = 0; n < maxSamples; n++ {
		y, err := f.Filter(1)
		if err != nil {
			return n, false
		}
		slope := (y - prev) * c.Spec.SampleRate
		if math.Abs(y-final) < eps && math.Abs(slope) < eps {
			return n, true
		}
		prev = y
	}
	return maxSamples, false
}
