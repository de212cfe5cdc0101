package iir

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-lockin/dsp/buffer"
	"github.com/cwbudde/algo-lockin/dsp/core"
)

// Designer computes direct-form lowpass coefficients for a filter order and a
// cutoff normalized to Nyquist (0 < normalizedCutoff < 1). Both returned
// slices must hold order+1 values. The filter normalizes a so that a[0] = 1.
type Designer func(order int, normalizedCutoff float64) (b, a []float64, err error)

// Spec is the user-facing description of a lowpass filter.
type Spec struct {
	Order      int
	Cutoff     float64 // Hz
	SampleRate float64 // Hz
}

// NormalizedCutoff returns Cutoff relative to Nyquist.
func (s Spec) NormalizedCutoff() float64 {
	return s.Cutoff / (s.SampleRate / 2)
}

// Validate checks the spec without designing anything.
func (s Spec) Validate() error {
	if s.Order <= 0 {
		return fmt.Errorf("iir: order must be > 0: %d: %w", s.Order, core.ErrInvalidParameter)
	}
	if !core.IsPositiveFinite(s.SampleRate) {
		return fmt.Errorf("iir: sample rate must be > 0: %v: %w", s.SampleRate, core.ErrInvalidParameter)
	}
	if !core.IsPositiveFinite(s.Cutoff) {
		return fmt.Errorf("iir: cutoff must be > 0: %v: %w", s.Cutoff, core.ErrInvalidParameter)
	}
	if s.Cutoff >= s.SampleRate/2 {
		return fmt.Errorf("iir: cutoff %v Hz must be below Nyquist %v Hz: %w",
			s.Cutoff, s.SampleRate/2, core.ErrInvalidParameter)
	}
	return nil
}

// Coefficients is a validated design ready to be installed with Apply.
type Coefficients struct {
	Spec Spec
	B, A []float64
}

// Filter is a per-sample direct-form IIR filter. It is not safe for
// concurrent use.
type Filter struct {
	spec   Spec
	design Designer
	b, a   []float64
	x, y   *buffer.Ring
	err    error
}

// New designs coefficients for spec and returns a filter with zeroed history.
func New(spec Spec, design Designer) (*Filter, error) {
	if design == nil {
		return nil, fmt.Errorf("iir: nil designer: %w", core.ErrInvalidParameter)
	}

	f := &Filter{design: design}
	if err := f.Configure(spec); err != nil {
		return nil, err
	}
	return f, nil
}

// Design validates spec and computes its coefficients without touching the
// filter state.
func (f *Filter) Design(spec Spec) (Coefficients, error) {
	if err := spec.Validate(); err != nil {
		return Coefficients{}, err
	}

	b, a, err := f.design(spec.Order, spec.NormalizedCutoff())
	if err != nil {
		return Coefficients{}, fmt.Errorf("iir: design order %d cutoff %v Hz: %w", spec.Order, spec.Cutoff, err)
	}

	taps := spec.Order + 1
	if len(b) != taps || len(a) != taps {
		return Coefficients{}, fmt.Errorf("iir: designer returned %d/%d coefficients, want %d: %w",
			len(b), len(a), taps, core.ErrInvalidParameter)
	}
	if a[0] == 0 || !core.IsFinite(a[0]) {
		return Coefficients{}, fmt.Errorf("iir: designer returned a[0] = %v: %w", a[0], core.ErrInvalidParameter)
	}

	c := Coefficients{Spec: spec, B: make([]float64, taps), A: make([]float64, taps)}
	for i := range b {
		c.B[i] = b[i] / a[0]
		c.A[i] = a[i] / a[0]
		if !core.IsFinite(c.B[i]) || !core.IsFinite(c.A[i]) {
			return Coefficients{}, fmt.Errorf("iir: designer returned non-finite coefficients: %w",
				core.ErrNumericalInstability)
		}
	}
	return c, nil
}

// Apply installs a design produced by Design. History is kept when the order
// is unchanged and cleared when it changes. The coefficient slices are
// copied, so one design may be applied to several filters.
func (f *Filter) Apply(c Coefficients) {
	resize := f.x == nil || c.Spec.Order != f.spec.Order

	f.spec = c.Spec
	f.b = append(f.b[:0], c.B...)
	f.a = append(f.a[:0], c.A...)

	if resize {
		f.x, _ = buffer.NewRing(c.Spec.Order + 1)
		f.y, _ = buffer.NewRing(c.Spec.Order + 1)
		f.err = nil
	}
}

// Configure replaces the whole spec and clears the history.
func (f *Filter) Configure(spec Spec) error {
	c, err := f.Design(spec)
	if err != nil {
		return err
	}
	f.Apply(c)
	f.Reset()
	return nil
}

// SetSampleRate recomputes the coefficients for a new sample rate.
// The history is kept.
func (f *Filter) SetSampleRate(fs float64) error {
	spec := f.spec
	spec.SampleRate = fs
	return f.update(spec)
}

// SetCutoff recomputes the coefficients for a new cutoff frequency.
// The history is kept.
func (f *Filter) SetCutoff(fc float64) error {
	spec := f.spec
	spec.Cutoff = fc
	return f.update(spec)
}

// SetOrder recomputes the coefficients and clears the history.
func (f *Filter) SetOrder(order int) error {
	spec := f.spec
	spec.Order = order
	c, err := f.Design(spec)
	if err != nil {
		return err
	}
	f.Apply(c)
	f.Reset()
	return nil
}

func (f *Filter) update(spec Spec) error {
	c, err := f.Design(spec)
	if err != nil {
		return err
	}
	f.Apply(c)
	return nil
}

// Filter pushes x, runs one step of the recursion and returns y[n].
//
// A non-finite output is reported as core.ErrNumericalInstability and leaves
// the filter failed: every later call returns the same error until Reset,
// Configure or SetOrder.
func (f *Filter) Filter(x float64) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if !core.IsFinite(x) {
		return 0, fmt.Errorf("iir: non-finite input %v: %w", x, core.ErrInvalidParameter)
	}

	f.x.Push(x)

	y := 0.0
	for i, bi := range f.b {
		y += bi * f.x.At(i)
	}
	// Before the push, y.At(i-1) holds y[n-i].
	for i := 1; i < len(f.a); i++ {
		y -= f.a[i] * f.y.At(i-1)
	}

	if math.IsInf(y, 0) || math.IsNaN(y) {
		f.err = fmt.Errorf("iir: output is %v (order %d, cutoff %v Hz, sample rate %v Hz): %w",
			y, f.spec.Order, f.spec.Cutoff, f.spec.SampleRate, core.ErrNumericalInstability)
		return 0, f.err
	}

	y = core.FlushDenormals(y)
	f.y.Push(y)
	return y, nil
}

// Err returns the sticky instability error, or nil.
func (f *Filter) Err() error {
	return f.err
}

// Reset clears the input and output history and any instability error.
func (f *Filter) Reset() {
	f.x.Reset()
	f.y.Reset()
	f.err = nil
}

// Spec returns the current configuration.
func (f *Filter) Spec() Spec {
	return f.spec
}

// Coefficients returns copies of the current b and a coefficients.
func (f *Filter) Coefficients() (b, a []float64) {
	return append([]float64(nil), f.b...), append([]float64(nil), f.a...)
}

// History returns copies of the input and output history, oldest first.
func (f *Filter) History() (x, y []float64) {
	return f.x.Samples(nil), f.y.Samples(nil)
}

// Response evaluates the transfer function at freqHz.
func (f *Filter) Response(freqHz float64) complex128 {
	w := 2 * math.Pi * freqHz / f.spec.SampleRate
	var num, den complex128
	for k := range f.b {
		z := cmplx.Exp(complex(0, -w*float64(k)))
		num += complex(f.b[k], 0) * z
		den += complex(f.a[k], 0) * z
	}
	return num / den
}
