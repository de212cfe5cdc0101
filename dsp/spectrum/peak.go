package spectrum

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-lockin/dsp/core"
	"github.com/cwbudde/algo-lockin/dsp/window"
)

// MinEstimateSamples is the smallest block EstimateFrequency accepts.
const MinEstimateSamples = 16

// padFactor zero-pads the analysis to refine the bin grid before
// interpolation.
const padFactor = 4

var errNoPeak = errors.New("spectrum: no spectral peak above DC")

// Peak describes the dominant spectral component of a block.
type Peak struct {
	Frequency float64 // Hz, interpolated between bins
	Amplitude float64 // sine amplitude estimate, corrected for window gain
	Magnitude float64 // windowed, unnormalized bin magnitude
	Bin       int     // integer bin of the maximum
	FFTSize   int
}

// Option configures FindPeak.
type Option func(*config)

type config struct {
	window window.Type
}

// WithWindow selects the analysis window. The default is Hann; use
// window.TypeFlatTop for accurate amplitudes.
func WithWindow(t window.Type) Option {
	return func(c *config) {
		c.window = t
	}
}

// FindPeak locates the strongest non-DC component of samples.
//
// The block mean is removed, the analysis window is applied and the block is
// zero-padded before the FFT. The peak position is refined with parabolic
// interpolation on the log magnitudes of the maximum and its two neighbours.
func FindPeak(samples []float64, sampleRate float64, opts ...Option) (Peak, error) {
	cfg := config{window: window.TypeHann}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if len(samples) < MinEstimateSamples {
		return Peak{}, fmt.Errorf("spectrum: need at least %d samples, got %d: %w",
			MinEstimateSamples, len(samples), core.ErrInvalidParameter)
	}
	if !core.IsPositiveFinite(sampleRate) {
		return Peak{}, fmt.Errorf("spectrum: sample rate must be > 0: %v: %w", sampleRate, core.ErrInvalidParameter)
	}

	n := len(samples)
	windowed := make([]float64, n)
	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)
	for i, v := range samples {
		windowed[i] = v - mean
	}
	coeffs, err := window.Generate(cfg.window, n)
	if err != nil {
		return Peak{}, fmt.Errorf("spectrum: %w: %w", err, core.ErrInvalidParameter)
	}
	if err := window.ApplyCoefficientsInPlace(windowed, coeffs); err != nil {
		return Peak{}, fmt.Errorf("spectrum: %w", err)
	}
	gain, err := window.CoherentGain(coeffs)
	if err != nil || gain == 0 {
		return Peak{}, fmt.Errorf("spectrum: window %v has no coherent gain: %w", cfg.window, core.ErrInvalidParameter)
	}

	size := nextPowerOf2(n) * padFactor
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return Peak{}, fmt.Errorf("spectrum: failed to create FFT plan: %w", err)
	}

	in := make([]complex128, size)
	for i, v := range windowed {
		in[i] = complex(v, 0)
	}
	out := make([]complex128, size)
	if err := plan.Forward(out, in); err != nil {
		return Peak{}, fmt.Errorf("spectrum: forward FFT: %w", err)
	}

	half := size/2 + 1
	re := make([]float64, half)
	im := make([]float64, half)
	for i := 0; i < half; i++ {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}
	mag := make([]float64, half)
	vecmath.Magnitude(mag, re, im)

	k := 0
	for i := 1; i < half-1; i++ {
		if mag[i] > mag[k] || k == 0 {
			k = i
		}
	}
	if k == 0 || mag[k] == 0 {
		return Peak{}, errNoPeak
	}

	delta := 0.0
	if a, b, c := mag[k-1], mag[k], mag[k+1]; a > 0 && c > 0 {
		la, lb, lc := math.Log(a), math.Log(b), math.Log(c)
		if den := la - 2*lb + lc; den != 0 {
			delta = 0.5 * (la - lc) / den
		}
	}

	return Peak{
		Frequency: (float64(k) + delta) * sampleRate / float64(size),
		Amplitude: 2 * mag[k] / (float64(n) * gain),
		Magnitude: mag[k],
		Bin:       k,
		FFTSize:   size,
	}, nil
}

// EstimateFrequency returns the frequency of the strongest non-DC component
// of samples, in Hz.
func EstimateFrequency(samples []float64, sampleRate float64, opts ...Option) (float64, error) {
	p, err := FindPeak(samples, sampleRate, opts...)
	if err != nil {
		return 0, err
	}
	return p.Frequency, nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
