package lockin

import "context"

// Source is one acquisition channel delivering a sample per Read.
//
// Implementations live in measure/acquire. Errors are returned to the caller
// unchanged by Core.
type Source interface {
	// Connect opens the underlying device. It is called once before the
	// first Read.
	Connect(ctx context.Context) error
	// Read blocks until a new sample is available.
	Read(ctx context.Context) (float64, error)
	// Identify returns a human-readable description of the channel.
	Identify() string
}
