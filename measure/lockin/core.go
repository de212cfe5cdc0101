package lockin

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-lockin/dsp/core"
	"github.com/cwbudde/algo-lockin/dsp/delay"
	"github.com/cwbudde/algo-lockin/dsp/filter/iir"
)

// Core is a streaming lock-in demodulator bound to a reference and a
// measured Source. It is not safe for concurrent use.
type Core struct {
	reference Source
	measured  Source
	cfg       config

	shifter    *delay.PhaseShifter
	inPhase    *iir.Filter
	quadrature *iir.Filter

	// DemodulateBlock scratch.
	shifted, prodI, prodQ, outI, outQ, mag []float64
}

// New returns a Core with zeroed shifter and filter state. The lowpass
// cutoff is referenceFrequency divided by the cutoff ratio (10 by default).
func New(reference, measured Source, referenceFrequency, sampleRate float64, opts ...Option) (*Core, error) {
	if reference == nil || measured == nil {
		return nil, fmt.Errorf("lockin: reference and measured sources are required: %w", core.ErrInvalidParameter)
	}

	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	shifter, err := delay.NewPhaseShifter(sampleRate, referenceFrequency,
		delay.WithOversamplingFloor(cfg.oversamplingFloor))
	if err != nil {
		return nil, fmt.Errorf("lockin: %w", err)
	}

	spec := iir.Spec{
		Order:      cfg.order,
		Cutoff:     referenceFrequency / cfg.cutoffRatio,
		SampleRate: sampleRate,
	}
	inPhase, err := iir.New(spec, cfg.designer)
	if err != nil {
		return nil, fmt.Errorf("lockin: in-phase filter: %w", err)
	}
	quadrature, err := iir.New(spec, cfg.designer)
	if err != nil {
		return nil, fmt.Errorf("lockin: quadrature filter: %w", err)
	}

	return &Core{
		reference:  reference,
		measured:   measured,
		cfg:        cfg,
		shifter:    shifter,
		inPhase:    inPhase,
		quadrature: quadrature,
	}, nil
}

// SetSampleRate changes the sample rate of the shifter and both filters.
// Nothing is changed unless all three accept the new rate. Setting the
// current rate keeps the shifter window and re-applies the filter design.
func (c *Core) SetSampleRate(fs float64) error {
	if err := c.shifter.WithSampleRate(fs).Validate(); err != nil {
		return fmt.Errorf("lockin: %w", err)
	}
	spec := c.inPhase.Spec()
	spec.SampleRate = fs
	coeffs, err := c.inPhase.Design(spec)
	if err != nil {
		return fmt.Errorf("lockin: %w", err)
	}

	if err := c.shifter.SetSampleRate(fs); err != nil {
		return fmt.Errorf("lockin: %w", err)
	}
	c.inPhase.Apply(coeffs)
	c.quadrature.Apply(coeffs)
	return nil
}

// SetReferenceFrequency retunes the shifter and moves the filter cutoff to
// fr divided by the cutoff ratio. Nothing is changed on error.
func (c *Core) SetReferenceFrequency(fr float64) error {
	if err := c.shifter.WithReferenceFrequency(fr).Validate(); err != nil {
		return fmt.Errorf("lockin: %w", err)
	}
	spec := c.inPhase.Spec()
	spec.Cutoff = fr / c.cfg.cutoffRatio
	coeffs, err := c.inPhase.Design(spec)
	if err != nil {
		return fmt.Errorf("lockin: %w", err)
	}

	if err := c.shifter.SetReferenceFrequency(fr); err != nil {
		return fmt.Errorf("lockin: %w", err)
	}
	c.inPhase.Apply(coeffs)
	c.quadrature.Apply(coeffs)
	return nil
}

// SetFilterOrder redesigns both lowpass filters and clears their history.
// The shifter is left alone. Nothing is changed on error.
func (c *Core) SetFilterOrder(order int) error {
	spec := c.inPhase.Spec()
	spec.Order = order
	coeffs, err := c.inPhase.Design(spec)
	if err != nil {
		return fmt.Errorf("lockin: %w", err)
	}

	c.inPhase.Apply(coeffs)
	c.quadrature.Apply(coeffs)
	c.inPhase.Reset()
	c.quadrature.Reset()
	c.cfg.order = order
	return nil
}

// Connect connects the reference source, then the measured source. Source
// errors are returned unchanged.
func (c *Core) Connect(ctx context.Context) error {
	if err := c.reference.Connect(ctx); err != nil {
		return err
	}
	return c.measured.Connect(ctx)
}

// Acquire reads one reference sample, then one measured sample, then waits
// for the settle delay. If any step fails, including a cancelled wait, no
// pair is returned.
func (c *Core) Acquire(ctx context.Context) (ref, med float64, err error) {
	ref, err = c.reference.Read(ctx)
	if err != nil {
		return 0, 0, err
	}
	med, err = c.measured.Read(ctx)
	if err != nil {
		return 0, 0, err
	}
	if err := c.cfg.sleep(ctx, c.cfg.settle); err != nil {
		return 0, 0, err
	}
	return ref, med, nil
}

// Demodulate advances the shifter and both filters by one sample pair and
// returns the current magnitude and phase.
func (c *Core) Demodulate(ref, med float64) (Result, error) {
	if !core.IsFinite(ref) || !core.IsFinite(med) {
		return Result{}, fmt.Errorf("lockin: non-finite sample pair (%v, %v): %w", ref, med, core.ErrInvalidParameter)
	}

	shifted := c.shifter.Shift(ref)

	i, err := c.inPhase.Filter(med * ref)
	if err != nil {
		return Result{}, fmt.Errorf("lockin: in-phase: %w", err)
	}
	q, err := c.quadrature.Filter(med * shifted)
	if err != nil {
		return Result{}, fmt.Errorf("lockin: quadrature: %w", err)
	}

	return polar(i, q, math.Hypot(i, q)), nil
}

func polar(i, q, magnitude float64) Result {
	return Result{
		Magnitude:  magnitude,
		Phase:      core.WrapPhase(math.Atan2(q, i)),
		InPhase:    i,
		Quadrature: q,
	}
}

// Reset zeroes the shifter window and both filter histories.
func (c *Core) Reset() {
	c.shifter.Reset()
	c.inPhase.Reset()
	c.quadrature.Reset()
}

// Response evaluates the output lowpass filter at freqHz.
func (c *Core) Response(freqHz float64) complex128 {
	return c.inPhase.Response(freqHz)
}

// ReferenceFrequency returns the reference frequency in Hz.
func (c *Core) ReferenceFrequency() float64 { return c.shifter.Spec().ReferenceFrequency }

// SampleRate returns the sample rate in Hz.
func (c *Core) SampleRate() float64 { return c.shifter.Spec().SampleRate }

// FilterOrder returns the order of the output lowpass filters.
func (c *Core) FilterOrder() int { return c.cfg.order }

// Cutoff returns the output lowpass cutoff in Hz.
func (c *Core) Cutoff() float64 { return c.inPhase.Spec().Cutoff }

// SettleDelay returns the wait applied after every acquired pair.
func (c *Core) SettleDelay() time.Duration { return c.cfg.settle }

// Warm reports whether the shifter window has filled since the last reset.
func (c *Core) Warm() bool { return c.shifter.Warm() }

// QuarterPeriod returns the shifter delay in samples.
func (c *Core) QuarterPeriod() int { return c.shifter.QuarterPeriod() }

// Reference returns the reference source.
func (c *Core) Reference() Source { return c.reference }

// Measured returns the measured source.
func (c *Core) Measured() Source { return c.measured }
