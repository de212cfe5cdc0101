package biquad

// Expand multiplies a cascade of sections into one direct-form transfer
// function B(z)/A(z) with a[0] = 1.
//
// Both returned slices have order+1 entries, where order counts
// first-order sections as one. The cascade of the returned recursion has
// the same response as NewChain(sections). Expand returns nil slices for an
// empty cascade.
func Expand(sections []Coefficients) (b, a []float64) {
	if len(sections) == 0 {
		return nil, nil
	}

	b = []float64{1}
	a = []float64{1}
	for _, s := range sections {
		num := s.Numerator()
		den := s.Denominator()
		if s.FirstOrder() {
			b = convolve(b, num[:2])
			a = convolve(a, den[:2])
			continue
		}
		b = convolve(b, num[:])
		a = convolve(a, den[:])
	}

	return b, a
}

// convolve multiplies two polynomials in z^-1.
func convolve(p, q []float64) []float64 {
	out := make([]float64, len(p)+len(q)-1)
	for i, pv := range p {
		for j, qv := range q {
			out[i+j] += pv * qv
		}
	}
	return out
}
