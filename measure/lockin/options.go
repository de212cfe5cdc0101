package lockin

import (
	"context"
	"fmt"
	"time"

	"github.com/cwbudde/algo-lockin/dsp/core"
	"github.com/cwbudde/algo-lockin/dsp/delay"
	"github.com/cwbudde/algo-lockin/dsp/filter/design/pass"
	"github.com/cwbudde/algo-lockin/dsp/filter/iir"
)

const (
	// DefaultSettleDelay is the wait after every acquired pair.
	DefaultSettleDelay = 4 * time.Millisecond
	// DefaultFilterOrder is the order of both output lowpass filters.
	DefaultFilterOrder = 2
	// DefaultCutoffRatio sets the lowpass cutoff to fr/DefaultCutoffRatio.
	DefaultCutoffRatio = 10.0
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Option configures a Core.
type Option func(*config) error

type config struct {
	settle            time.Duration
	order             int
	oversamplingFloor int
	designer          iir.Designer
	cutoffRatio       float64
	sleep             Sleeper
}

func defaultConfig() config {
	return config{
		settle:            DefaultSettleDelay,
		order:             DefaultFilterOrder,
		oversamplingFloor: delay.DefaultOversamplingFloor,
		designer:          pass.ButterworthLP,
		cutoffRatio:       DefaultCutoffRatio,
		sleep:             sleepContext,
	}
}

func applyOptions(opts []Option) (config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return config{}, err
		}
	}
	return cfg, nil
}

// WithSettleDelay sets the wait after every acquired pair. Zero disables it.
func WithSettleDelay(d time.Duration) Option {
	return func(c *config) error {
		if d < 0 {
			return fmt.Errorf("lockin: settle delay must be >= 0: %v: %w", d, core.ErrInvalidParameter)
		}
		c.settle = d
		return nil
	}
}

// WithFilterOrder sets the order of the I and Q lowpass filters.
func WithFilterOrder(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("lockin: filter order must be > 0: %d: %w", n, core.ErrInvalidParameter)
		}
		c.order = n
		return nil
	}
}

// WithOversamplingFloor sets the minimum fs/fr ratio accepted by the phase
// shifter.
func WithOversamplingFloor(n int) Option {
	return func(c *config) error {
		if n < 2 {
			return fmt.Errorf("lockin: oversampling floor must be >= 2: %d: %w", n, core.ErrInvalidParameter)
		}
		c.oversamplingFloor = n
		return nil
	}
}

// WithDesigner replaces the lowpass coefficient designer.
func WithDesigner(d iir.Designer) Option {
	return func(c *config) error {
		if d == nil {
			return fmt.Errorf("lockin: nil designer: %w", core.ErrInvalidParameter)
		}
		c.designer = d
		return nil
	}
}

// WithCutoffRatio sets the lowpass cutoff to fr/ratio.
func WithCutoffRatio(ratio float64) Option {
	return func(c *config) error {
		if !core.IsPositiveFinite(ratio) || ratio <= 1 {
			return fmt.Errorf("lockin: cutoff ratio must be > 1: %v: %w", ratio, core.ErrInvalidParameter)
		}
		c.cutoffRatio = ratio
		return nil
	}
}

// WithSleeper replaces the settle-delay wait, mostly for tests.
func WithSleeper(s Sleeper) Option {
	return func(c *config) error {
		if s == nil {
			return fmt.Errorf("lockin: nil sleeper: %w", core.ErrInvalidParameter)
		}
		c.sleep = s
		return nil
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
