package lockin

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestRecorderFormat(t *testing.T) {
	tests := []struct {
		res  Result
		want string
	}{
		{Result{Magnitude: 0.5, Phase: -0.25}, "0.5, -0.25\n"},
		{Result{Magnitude: 1e-07, Phase: math.Pi}, "1e-07, 3.141592653589793\n"},
		{Result{Magnitude: 0, Phase: 0}, "0, 0\n"},
		{Result{Magnitude: 2, Phase: 1, InPhase: 9, Quadrature: 9}, "2, 1\n"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		if err := NewRecorder(&buf).WriteResult(tt.res); err != nil {
			t.Fatal(err)
		}
		if got := buf.String(); got != tt.want {
			t.Fatalf("got %q want %q", got, tt.want)
		}
	}
}

func TestRecorderAppends(t *testing.T) {
	buf := bytes.NewBufferString("0.1, 0.2\n")
	rec := NewRecorder(buf)
	for i := 0; i < 3; i++ {
		if err := rec.WriteResult(Result{Magnitude: 1, Phase: 0}); err != nil {
			t.Fatal(err)
		}
	}
	if got, want := buf.String(), "0.1, 0.2\n1, 0\n1, 0\n1, 0\n"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if rec.Lines() != 3 {
		t.Fatalf("Lines: got %d want 3", rec.Lines())
	}
}

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

func TestRecorderWriteError(t *testing.T) {
	errClosed := errors.New("closed")
	rec := NewRecorder(failingWriter{errClosed})
	if err := rec.WriteResult(Result{}); !errors.Is(err, errClosed) {
		t.Fatalf("expected errClosed, got %v", err)
	}
	if rec.Lines() != 0 {
		t.Fatalf("failed write counted: %d", rec.Lines())
	}
}
