package core

import "errors"

var (
	// ErrInvalidParameter reports a rejected frequency, order, or other
	// configuration value. It is always returned before any state changes.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNumericalInstability reports a non-finite filter output. The
	// instance that produced it must be reconfigured before further use.
	ErrNumericalInstability = errors.New("numerical instability")
)
