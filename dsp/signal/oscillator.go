// Package signal provides streaming test-signal sources.
package signal

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-lockin/dsp/core"
)

// Oscillator produces amplitude*sin(2*pi*freq*n/sampleRate + phase) one
// sample at a time. The phase is derived from the sample index, so long runs
// do not accumulate rounding drift.
type Oscillator struct {
	freq       float64
	sampleRate float64
	amplitude  float64
	phase      float64
	n          int64
}

// NewOscillator returns a sine oscillator starting at sample index 0.
func NewOscillator(freqHz, sampleRate, amplitude, phase float64) (*Oscillator, error) {
	if !core.IsPositiveFinite(sampleRate) {
		return nil, fmt.Errorf("signal: sample rate must be > 0: %v: %w", sampleRate, core.ErrInvalidParameter)
	}
	if freqHz < 0 || !core.IsFinite(freqHz) || freqHz > sampleRate/2 {
		return nil, fmt.Errorf("signal: frequency must be in [0, %v]: %v: %w",
			sampleRate/2, freqHz, core.ErrInvalidParameter)
	}
	if !core.IsFinite(amplitude) || !core.IsFinite(phase) {
		return nil, fmt.Errorf("signal: amplitude and phase must be finite: %w", core.ErrInvalidParameter)
	}
	return &Oscillator{freq: freqHz, sampleRate: sampleRate, amplitude: amplitude, phase: phase}, nil
}

// Next returns the current sample and advances by one.
func (o *Oscillator) Next() float64 {
	x := o.At(o.n)
	o.n++
	return x
}

// At returns the sample at index n without advancing.
func (o *Oscillator) At(n int64) float64 {
	return o.amplitude * math.Sin(2*math.Pi*o.freq*float64(n)/o.sampleRate+o.phase)
}

// Reset rewinds to sample index 0.
func (o *Oscillator) Reset() {
	o.n = 0
}

// Frequency returns the oscillator frequency in Hz.
func (o *Oscillator) Frequency() float64 {
	return o.freq
}

// Noise produces deterministic white noise uniformly distributed in
// [-amplitude, amplitude].
type Noise struct {
	amplitude float64
	seed      int64
	rng       *rand.Rand
}

// NewNoise returns a seeded noise source. A zero amplitude yields silence.
func NewNoise(amplitude float64, seed int64) (*Noise, error) {
	if amplitude < 0 || !core.IsFinite(amplitude) {
		return nil, fmt.Errorf("signal: noise amplitude must be >= 0: %v: %w", amplitude, core.ErrInvalidParameter)
	}
	return &Noise{amplitude: amplitude, seed: seed, rng: rand.New(rand.NewSource(seed))}, nil
}

// Next returns the next noise sample.
func (n *Noise) Next() float64 {
	if n.amplitude == 0 {
		return 0
	}
	return (n.rng.Float64()*2 - 1) * n.amplitude
}

// Reset restarts the sequence from the seed.
func (n *Noise) Reset() {
	n.rng = rand.New(rand.NewSource(n.seed))
}
