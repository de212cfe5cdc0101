package acquire

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-lockin/dsp/core"
	"github.com/cwbudde/algo-lockin/dsp/signal"
)

// SynthConfig describes a synthetic reference/measured pair.
type SynthConfig struct {
	SampleRate float64 // Hz
	Frequency  float64 // reference frequency, Hz

	// ReferenceAmplitude of the reference sine. Zero means 1.
	ReferenceAmplitude float64

	// Measured signal: Amplitude*sin(2*pi*Frequency*n/SampleRate + Phase)
	// plus uniform noise in [-NoiseAmplitude, NoiseAmplitude].
	Amplitude      float64
	Phase          float64
	NoiseAmplitude float64
	Seed           int64
}

// Synth generates a deterministic reference and measured signal. Each
// channel advances one sample per Read, so a Core reading them in turn sees
// both on the same sample clock.
type Synth struct {
	cfg   SynthConfig
	ref   *signal.Oscillator
	med   *signal.Oscillator
	noise *signal.Noise

	reference *SynthChannel
	measured  *SynthChannel
}

// NewSynth validates cfg and builds both channels.
func NewSynth(cfg SynthConfig) (*Synth, error) {
	if cfg.ReferenceAmplitude == 0 {
		cfg.ReferenceAmplitude = 1
	}

	ref, err := signal.NewOscillator(cfg.Frequency, cfg.SampleRate, cfg.ReferenceAmplitude, 0)
	if err != nil {
		return nil, fmt.Errorf("acquire: synth reference: %w", err)
	}
	med, err := signal.NewOscillator(cfg.Frequency, cfg.SampleRate, cfg.Amplitude, cfg.Phase)
	if err != nil {
		return nil, fmt.Errorf("acquire: synth measured: %w", err)
	}
	noise, err := signal.NewNoise(cfg.NoiseAmplitude, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("acquire: synth noise: %w", err)
	}

	s := &Synth{cfg: cfg, ref: ref, med: med, noise: noise}
	s.reference = &SynthChannel{name: "reference", next: ref.Next, rate: cfg.SampleRate, freq: cfg.Frequency}
	s.measured = &SynthChannel{
		name: "measured",
		next: func() float64 { return med.Next() + noise.Next() },
		rate: cfg.SampleRate,
		freq: cfg.Frequency,
	}
	return s, nil
}

// Reference returns the reference channel.
func (s *Synth) Reference() *SynthChannel { return s.reference }

// Measured returns the measured channel.
func (s *Synth) Measured() *SynthChannel { return s.measured }

// Config returns the configuration, with defaults filled in.
func (s *Synth) Config() SynthConfig { return s.cfg }

// Reset rewinds both channels and the noise sequence.
func (s *Synth) Reset() {
	s.ref.Reset()
	s.med.Reset()
	s.noise.Reset()
}

// SynthChannel is one channel of a Synth.
type SynthChannel struct {
	name      string
	next      func() float64
	rate      float64
	freq      float64
	connected bool
}

// Connect marks the channel ready.
func (c *SynthChannel) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.connected = true
	return nil
}

// Read returns the next sample.
func (c *SynthChannel) Read(ctx context.Context) (float64, error) {
	if !c.connected {
		return 0, fmt.Errorf("%w: synth %s not connected", ErrDeviceUnavailable, c.name)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	x := c.next()
	if !core.IsFinite(x) {
		return 0, fmt.Errorf("%w: synth %s produced %v", ErrAcquisition, c.name, x)
	}
	return x, nil
}

// Identify describes the channel.
func (c *SynthChannel) Identify() string {
	return fmt.Sprintf("synth %s %g Hz @ %g Hz", c.name, c.freq, c.rate)
}
