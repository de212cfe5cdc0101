package lockin

import (
	"fmt"
	"io"
)

// Result is one demodulated output sample.
type Result struct {
	Magnitude  float64 // hypot(I, Q)
	Phase      float64 // atan2(Q, I), radians in (-pi, pi]
	InPhase    float64
	Quadrature float64
}

// ResultSink consumes demodulated results.
type ResultSink interface {
	WriteResult(r Result) error
}

// ResultSinkFunc adapts a function to ResultSink.
type ResultSinkFunc func(r Result) error

// WriteResult calls f(r).
func (f ResultSinkFunc) WriteResult(r Result) error { return f(r) }

// Recorder writes one "magnitude, phase" line per result.
//
// Values use Go's shortest float formatting. No header is written, so a
// Recorder on a file opened for appending extends an earlier measurement.
type Recorder struct {
	w     io.Writer
	lines int
}

// NewRecorder returns a Recorder writing to w.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{w: w}
}

// WriteResult appends r as a single line.
func (r *Recorder) WriteResult(res Result) error {
	if _, err := fmt.Fprintf(r.w, "%v, %v\n", res.Magnitude, res.Phase); err != nil {
		return fmt.Errorf("lockin: write result: %w", err)
	}
	r.lines++
	return nil
}

// Lines returns the number of lines written.
func (r *Recorder) Lines() int {
	return r.lines
}
