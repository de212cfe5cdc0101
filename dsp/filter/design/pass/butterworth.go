package pass

import (
	"github.com/cwbudde/algo-lockin/dsp/filter/biquad"
)

// ButterworthSections designs a lowpass Butterworth cascade.
// Returns nil for a non-positive order or a cutoff outside (0, sampleRate/2).
//
// For odd orders, the final section is first-order (B2=A2=0).
func ButterworthSections(freq float64, order int, sampleRate float64) []biquad.Coefficients {
	if order <= 0 || !validCutoff(freq, sampleRate) {
		return nil
	}
	sections := make([]biquad.Coefficients, 0, (order+1)/2)

	n2 := order / 2
	for i := n2 - 1; i >= 0; i-- {
		q := butterworthQ(order, i)
		sections = append(sections, lowpassRBJ(freq, q, sampleRate))
	}
	if order%2 != 0 {
		sections = append(sections, firstOrderLP(freq, sampleRate))
	}
	return sections
}

// ButterworthLP returns the direct-form coefficients of an order-th Butterworth
// lowpass with cutoff wn relative to Nyquist. The result matches
// scipy.signal.butter(order, wn, 'low').
func ButterworthLP(order int, wn float64) (b, a []float64, err error) {
	if err := checkDesignInput("butterworth", order, 0, wn); err != nil {
		return nil, nil, err
	}
	return direct("butterworth", ButterworthSections(wn, order, normalizedRate))
}
