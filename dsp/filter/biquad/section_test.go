package biquad

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// simpleLowpass is an RBJ lowpass at fs/10 with Q = 1/sqrt(2).
func simpleLowpass() Coefficients {
	return Coefficients{
		B0: 0.0674552738890719,
		B1: 0.1349105477781438,
		B2: 0.0674552738890719,
		A1: -1.1429805025399011,
		A2: 0.4128015980961886,
	}
}

func TestProcessSample_Passthrough(t *testing.T) {
	s := NewSection(Coefficients{B0: 1})
	for _, x := range []float64{1, -2, 0.5, 0} {
		if got := s.ProcessSample(x); got != x {
			t.Fatalf("passthrough: got %v want %v", got, x)
		}
	}
}

// Direct Form II Transposed must agree with the textbook difference equation.
func TestProcessSample_MatchesDifferenceEquation(t *testing.T) {
	c := simpleLowpass()
	s := NewSection(c)

	var x1, x2, y1, y2 float64
	for n := 0; n < 64; n++ {
		x := math.Sin(0.3*float64(n)) + 0.25
		want := c.B0*x + c.B1*x1 + c.B2*x2 - c.A1*y1 - c.A2*y2
		got := s.ProcessSample(x)
		if !almostEqual(got, want, 1e-12) {
			t.Fatalf("n=%d: got %v want %v", n, got, want)
		}
		x2, x1 = x1, x
		y2, y1 = y1, want
	}
}

func TestProcessSample_PureDelay(t *testing.T) {
	s := NewSection(Coefficients{B2: 1})
	out := []float64{s.ProcessSample(1), s.ProcessSample(0), s.ProcessSample(0), s.ProcessSample(0)}
	want := []float64{0, 0, 1, 0}
	for i := range out {
		if out[i] != want[i] {
			t.Fatalf("index %d: got %v want %v", i, out[i], want[i])
		}
	}
}

func TestReset(t *testing.T) {
	s := NewSection(simpleLowpass())
	for i := 0; i < 10; i++ {
		s.ProcessSample(1)
	}
	s.Reset()
	if got := s.ProcessSample(0); got != 0 {
		t.Fatalf("after reset: got %v want 0", got)
	}
}

func TestProcessSample_SimpleLowpassDCGain(t *testing.T) {
	s := NewSection(simpleLowpass())
	var y float64
	for i := 0; i < 2000; i++ {
		y = s.ProcessSample(1)
	}
	if !almostEqual(y, 1, 1e-9) {
		t.Fatalf("DC gain: got %v want 1", y)
	}
}
