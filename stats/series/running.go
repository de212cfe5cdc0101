package series

import "math"

// Stats is a snapshot of a Running accumulator.
type Stats struct {
	Count    int
	Mean     float64
	Variance float64 // population variance
	StdDev   float64
	Min      float64
	MinPos   int
	Max      float64
	MaxPos   int
	RMS      float64
}

// Running accumulates mean and variance with Welford's online algorithm,
// plus extrema and RMS. The zero value is ready to use.
type Running struct {
	n      int
	mean   float64
	m2     float64
	sumSq  float64
	minVal float64
	minPos int
	maxVal float64
	maxPos int
}

// Add accumulates one sample.
func (s *Running) Add(x float64) {
	s.n++
	delta := x - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (x - s.mean)
	s.sumSq += x * x

	if s.n == 1 || x < s.minVal {
		s.minVal, s.minPos = x, s.n-1
	}
	if s.n == 1 || x > s.maxVal {
		s.maxVal, s.maxPos = x, s.n-1
	}
}

// Update accumulates a block of samples.
func (s *Running) Update(samples []float64) {
	for _, x := range samples {
		s.Add(x)
	}
}

// Count returns the number of samples seen.
func (s *Running) Count() int { return s.n }

// Result returns the statistics so far. An empty accumulator yields NaN
// moments and zero extrema.
func (s *Running) Result() Stats {
	if s.n == 0 {
		return Stats{Mean: math.NaN(), Variance: math.NaN(), StdDev: math.NaN(), RMS: math.NaN()}
	}

	nf := float64(s.n)
	variance := s.m2 / nf
	return Stats{
		Count:    s.n,
		Mean:     s.mean,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
		Min:      s.minVal,
		MinPos:   s.minPos,
		Max:      s.maxVal,
		MaxPos:   s.maxPos,
		RMS:      math.Sqrt(s.sumSq / nf),
	}
}

// Reset clears all accumulated data.
func (s *Running) Reset() {
	*s = Running{}
}

// Circular accumulates angles in radians as unit vectors, so a series
// jittering around +-pi averages to pi rather than 0.
type Circular struct {
	n      int
	sumSin float64
	sumCos float64
}

// Add accumulates one angle.
func (c *Circular) Add(theta float64) {
	c.n++
	c.sumSin += math.Sin(theta)
	c.sumCos += math.Cos(theta)
}

// Count returns the number of angles seen.
func (c *Circular) Count() int { return c.n }

// Mean returns the mean direction in (-pi, pi], or NaN when empty.
func (c *Circular) Mean() float64 {
	if c.n == 0 {
		return math.NaN()
	}
	return math.Atan2(c.sumSin, c.sumCos)
}

// Resultant returns the mean resultant length in [0, 1]: 1 for identical
// angles, near 0 for uniformly spread ones.
func (c *Circular) Resultant() float64 {
	if c.n == 0 {
		return math.NaN()
	}
	return math.Hypot(c.sumSin, c.sumCos) / float64(c.n)
}

// StdDev returns the circular standard deviation sqrt(-2 ln R).
func (c *Circular) StdDev() float64 {
	r := c.Resultant()
	if r >= 1 {
		return 0
	}
	return math.Sqrt(-2 * math.Log(r))
}

// Reset clears all accumulated data.
func (c *Circular) Reset() {
	*c = Circular{}
}
