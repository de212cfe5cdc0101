package pass

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-lockin/dsp/core"
	"github.com/cwbudde/algo-lockin/dsp/filter/biquad"
)

// normalizedRate is the sample rate at which a cutoff in Hz equals the cutoff
// normalized to Nyquist.
const normalizedRate = 2.0

// validCutoff reports whether freq lies strictly between 0 and Nyquist.
func validCutoff(freq, sampleRate float64) bool {
	return core.IsPositiveFinite(sampleRate) && freq > 0 && freq < sampleRate/2
}

// butterworthQ returns the quality factor for a Butterworth filter section.
// index ranges from 0 to (order/2 - 1) for the biquad sections.
func butterworthQ(order, index int) float64 {
	theta := math.Pi * float64(2*index+1) / (2 * float64(order))

	s := math.Sin(theta)
	if s == 0 {
		return 1 / math.Sqrt2
	}

	return 1 / (2 * s)
}

// lowpassRBJ designs a second-order lowpass section with quality factor q.
// It is the bilinear transform of 1/(s^2 + s/q + 1) prewarped at freq.
func lowpassRBJ(freq, q, sampleRate float64) biquad.Coefficients {
	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	norm := 1 / (1 + alpha)
	b0 := (1 - cw) / 2 * norm

	return biquad.Coefficients{
		B0: b0,
		B1: 2 * b0,
		B2: b0,
		A1: -2 * cw * norm,
		A2: (1 - alpha) * norm,
	}
}

// firstOrderLP designs a first-order lowpass section.
func firstOrderLP(freq, sampleRate float64) biquad.Coefficients {
	k := math.Tan(math.Pi * freq / sampleRate)
	norm := 1 / (1 + k)

	return biquad.Coefficients{
		B0: k * norm,
		B1: k * norm,
		A1: (k - 1) * norm,
	}
}

// direct multiplies a designed cascade into transfer-function form.
func direct(family string, sections []biquad.Coefficients) ([]float64, []float64, error) {
	b, a := biquad.Expand(sections)
	for i := range b {
		if !core.IsFinite(b[i]) || !core.IsFinite(a[i]) {
			return nil, nil, fmt.Errorf("pass: %s design produced non-finite coefficients: %w",
				family, core.ErrNumericalInstability)
		}
	}
	return b, a, nil
}

func checkDesignInput(family string, order, maxOrder int, wn float64) error {
	if order <= 0 || (maxOrder > 0 && order > maxOrder) {
		return fmt.Errorf("pass: %s order out of range: %d: %w", family, order, core.ErrInvalidParameter)
	}
	if !(wn > 0 && wn < 1) {
		return fmt.Errorf("pass: %s normalized cutoff must be in (0, 1): %v: %w", family, wn, core.ErrInvalidParameter)
	}
	return nil
}
