package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-lockin/dsp/buffer"
	"github.com/cwbudde/algo-lockin/dsp/core"
)

// DefaultOversamplingFloor is the minimum ratio of sample rate to reference
// frequency accepted when no floor is configured.
const DefaultOversamplingFloor = 4

// ShiftSpec describes a quarter-period phase shifter.
type ShiftSpec struct {
	SampleRate         float64
	ReferenceFrequency float64
	OversamplingFloor  int
}

// HalfPeriod returns floor(SampleRate/ReferenceFrequency/2), the window length.
func (s ShiftSpec) HalfPeriod() int {
	return int(math.Floor(s.SampleRate / s.ReferenceFrequency / 2))
}

// QuarterPeriod returns floor(SampleRate/ReferenceFrequency/4), the read-back
// offset from the newest sample.
func (s ShiftSpec) QuarterPeriod() int {
	return int(math.Floor(s.SampleRate / s.ReferenceFrequency / 4))
}

// Validate checks the spec without building anything.
func (s ShiftSpec) Validate() error {
	if s.OversamplingFloor < 2 {
		return fmt.Errorf("delay: oversampling floor must be >= 2: %d: %w",
			s.OversamplingFloor, core.ErrInvalidParameter)
	}
	if !core.IsPositiveFinite(s.ReferenceFrequency) {
		return fmt.Errorf("delay: reference frequency must be > 0: %v: %w",
			s.ReferenceFrequency, core.ErrInvalidParameter)
	}
	if !core.IsPositiveFinite(s.SampleRate) {
		return fmt.Errorf("delay: sample rate must be > 0: %v: %w",
			s.SampleRate, core.ErrInvalidParameter)
	}
	if s.SampleRate < float64(s.OversamplingFloor)*s.ReferenceFrequency {
		return fmt.Errorf("delay: sample rate %v Hz must be at least %d times the reference frequency %v Hz: %w",
			s.SampleRate, s.OversamplingFloor, s.ReferenceFrequency, core.ErrInvalidParameter)
	}
	return nil
}

// ShiftOption configures a PhaseShifter.
type ShiftOption func(*ShiftSpec)

// WithOversamplingFloor sets the minimum SampleRate/ReferenceFrequency ratio.
// Values below 2 are rejected by NewPhaseShifter.
func WithOversamplingFloor(n int) ShiftOption {
	return func(s *ShiftSpec) {
		s.OversamplingFloor = n
	}
}

// PhaseShifter delays a stream by a quarter of the reference period.
//
// It keeps half a reference period of history and returns, for every pushed
// sample, the value seen QuarterPeriod() samples earlier. After construction
// or any frequency change the window restarts from zeros, so the first
// WarmupSamples() outputs are not a valid 90 degree shift.
//
// PhaseShifter is not safe for concurrent use.
type PhaseShifter struct {
	spec    ShiftSpec
	quarter int
	window  *buffer.Ring
	pushed  int
}

// NewPhaseShifter builds a zero-filled shifter for the given sample rate and
// reference frequency.
func NewPhaseShifter(sampleRate, referenceFrequency float64, opts ...ShiftOption) (*PhaseShifter, error) {
	spec := ShiftSpec{
		SampleRate:         sampleRate,
		ReferenceFrequency: referenceFrequency,
		OversamplingFloor:  DefaultOversamplingFloor,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&spec)
		}
	}

	p := &PhaseShifter{}
	if err := p.apply(spec); err != nil {
		return nil, err
	}
	return p, nil
}

// apply validates spec and swaps in a fresh window. On error p is untouched.
func (p *PhaseShifter) apply(spec ShiftSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	window, err := buffer.NewRing(spec.HalfPeriod())
	if err != nil {
		return fmt.Errorf("delay: %w: %w", err, core.ErrInvalidParameter)
	}

	p.spec = spec
	p.quarter = spec.QuarterPeriod()
	p.window = window
	p.pushed = 0
	return nil
}

// Spec returns the current configuration.
func (p *PhaseShifter) Spec() ShiftSpec {
	return p.spec
}

// WithSampleRate returns the spec that SetSampleRate(fs) would apply.
func (p *PhaseShifter) WithSampleRate(fs float64) ShiftSpec {
	s := p.spec
	s.SampleRate = fs
	return s
}

// WithReferenceFrequency returns the spec that SetReferenceFrequency(fr) would apply.
func (p *PhaseShifter) WithReferenceFrequency(fr float64) ShiftSpec {
	s := p.spec
	s.ReferenceFrequency = fr
	return s
}

// SetSampleRate changes the sample rate and restarts the window.
// Setting the current value keeps the window as it is.
func (p *PhaseShifter) SetSampleRate(fs float64) error {
	if fs == p.spec.SampleRate {
		return nil
	}
	return p.apply(p.WithSampleRate(fs))
}

// SetReferenceFrequency changes the reference frequency and restarts the window.
// Setting the current value keeps the window as it is.
func (p *PhaseShifter) SetReferenceFrequency(fr float64) error {
	if fr == p.spec.ReferenceFrequency {
		return nil
	}
	return p.apply(p.WithReferenceFrequency(fr))
}

// HalfPeriod returns the window length in samples.
func (p *PhaseShifter) HalfPeriod() int {
	return p.window.Len()
}

// QuarterPeriod returns the delay applied by Shift, in samples.
func (p *PhaseShifter) QuarterPeriod() int {
	return p.quarter
}

// WarmupSamples returns how many samples must be pushed after a reset
// before the window holds only real data.
func (p *PhaseShifter) WarmupSamples() int {
	return p.window.Len()
}

// Warm reports whether the window has filled since the last reset.
func (p *PhaseShifter) Warm() bool {
	return p.pushed >= p.window.Len()
}

// Shift pushes x and returns the sample observed QuarterPeriod() samples ago.
func (p *PhaseShifter) Shift(x float64) float64 {
	p.window.Push(x)
	if p.pushed < p.window.Len() {
		p.pushed++
	}
	return p.window.At(p.quarter)
}

// Window copies the current window into dst, oldest first.
func (p *PhaseShifter) Window(dst []float64) []float64 {
	return p.window.Samples(dst)
}

// Reset zero-fills the window and restarts the warm-up period.
func (p *PhaseShifter) Reset() {
	p.window.Reset()
	p.pushed = 0
}
