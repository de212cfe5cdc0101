package buffer

import "fmt"

// Ring is a fixed-capacity sliding window over a sample stream.
//
// The window always holds exactly Len() values. It starts zero-filled, and
// every Push drops the oldest value. Ring is not safe for concurrent use.
type Ring struct {
	data []float64
	head int // index of the newest sample
}

// NewRing returns a zero-filled window holding size samples.
func NewRing(size int) (*Ring, error) {
	if size <= 0 {
		return nil, fmt.Errorf("buffer: ring size must be > 0: %d", size)
	}
	return &Ring{data: make([]float64, size), head: size - 1}, nil
}

// Len returns the window capacity.
func (r *Ring) Len() int {
	return len(r.data)
}

// Push appends x as the newest sample and discards the oldest.
func (r *Ring) Push(x float64) {
	r.head++
	if r.head == len(r.data) {
		r.head = 0
	}
	r.data[r.head] = x
}

// At returns the sample k positions before the newest one.
// At(0) is the newest sample and At(Len()-1) the oldest.
// k is reduced modulo Len(), so At(Len()) wraps back to the newest sample.
func (r *Ring) At(k int) float64 {
	size := len(r.data)
	idx := (r.head - k%size + size) % size
	return r.data[idx]
}

// Newest returns the most recently pushed sample.
func (r *Ring) Newest() float64 {
	return r.data[r.head]
}

// Samples copies the window into dst in chronological order (oldest first)
// and returns it. dst is grown when its capacity is too small.
func (r *Ring) Samples(dst []float64) []float64 {
	size := len(r.data)
	if cap(dst) < size {
		dst = make([]float64, size)
	}
	dst = dst[:size]
	oldest := r.head + 1
	n := copy(dst, r.data[oldest%size:])
	copy(dst[n:], r.data[:oldest%size])
	return dst
}

// Reset zero-fills the window.
func (r *Ring) Reset() {
	for i := range r.data {
		r.data[i] = 0
	}
	r.head = len(r.data) - 1
}
