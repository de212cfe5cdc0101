package lockin

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-lockin/dsp/core"
)

// Run repeats acquire, demodulate and write n times, or until ctx is done
// when n <= 0. It stops at the first error and returns the number of
// completed cycles. A failed cycle writes nothing.
func (c *Core) Run(ctx context.Context, n int, sink ResultSink) (int, error) {
	if sink == nil {
		return 0, fmt.Errorf("lockin: nil result sink: %w", core.ErrInvalidParameter)
	}

	done := 0
	for n <= 0 || done < n {
		if err := ctx.Err(); err != nil {
			return done, err
		}

		ref, med, err := c.Acquire(ctx)
		if err != nil {
			return done, err
		}
		res, err := c.Demodulate(ref, med)
		if err != nil {
			return done, err
		}
		if err := sink.WriteResult(res); err != nil {
			return done, err
		}
		done++
	}
	return done, nil
}
