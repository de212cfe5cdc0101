package lockin

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/cwbudde/algo-lockin/dsp/core"
)

func TestRunWritesOneLinePerCycle(t *testing.T) {
	c := newTestCore(t, 4, 140)
	var buf bytes.Buffer
	rec := NewRecorder(&buf)

	done, err := c.Run(context.Background(), 25, rec)
	if err != nil {
		t.Fatal(err)
	}
	if done != 25 || rec.Lines() != 25 {
		t.Fatalf("done=%d lines=%d, want 25", done, rec.Lines())
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 25 {
		t.Fatalf("got %d lines", len(lines))
	}
	for _, line := range lines {
		mag, phase, ok := strings.Cut(line, ", ")
		if !ok {
			t.Fatalf("malformed line %q", line)
		}
		if _, err := strconv.ParseFloat(mag, 64); err != nil {
			t.Fatalf("magnitude in %q: %v", line, err)
		}
		if _, err := strconv.ParseFloat(phase, 64); err != nil {
			t.Fatalf("phase in %q: %v", line, err)
		}
	}
}

func TestRunHaltsOnFirstError(t *testing.T) {
	errGlitch := errors.New("glitch")
	ref := sineSource("ref", 4, 140, 1, 0)
	med := sineSource("med", 4, 140, 1, 0)
	med.failAt, med.readErr = 3, errGlitch

	c, err := New(ref, med, 4, 140, noSleep())
	if err != nil {
		t.Fatal(err)
	}

	var results []Result
	sink := ResultSinkFunc(func(r Result) error {
		results = append(results, r)
		return nil
	})

	done, err := c.Run(context.Background(), 10, sink)
	if !errors.Is(err, errGlitch) {
		t.Fatalf("expected errGlitch, got %v", err)
	}
	if done != 3 || len(results) != 3 {
		t.Fatalf("done=%d results=%d, want 3", done, len(results))
	}
	if ref.n != 4 {
		t.Fatalf("reference reads: got %d want 4", ref.n)
	}
}

func TestRunSinkError(t *testing.T) {
	errFull := errors.New("disk full")
	c := newTestCore(t, 4, 140)

	calls := 0
	done, err := c.Run(context.Background(), 10, ResultSinkFunc(func(Result) error {
		calls++
		if calls == 2 {
			return errFull
		}
		return nil
	}))
	if !errors.Is(err, errFull) || done != 1 {
		t.Fatalf("done=%d err=%v, want 1 and errFull", done, err)
	}
}

func TestRunUntilCancelled(t *testing.T) {
	c := newTestCore(t, 4, 140)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	count := 0
	done, err := c.Run(ctx, 0, ResultSinkFunc(func(Result) error {
		count++
		if count == 7 {
			cancel()
		}
		return nil
	}))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if done != 7 || count != 7 {
		t.Fatalf("done=%d count=%d, want 7", done, count)
	}
}

func TestRunNilSink(t *testing.T) {
	c := newTestCore(t, 4, 140)
	if _, err := c.Run(context.Background(), 1, nil); !errors.Is(err, core.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}
