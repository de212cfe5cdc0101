package lockin

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-lockin/dsp/core"
)

// DemodulateBlock runs Demodulate over a captured block of sample pairs and
// appends one Result per pair to dst[:0].
//
// The whole block is pushed through the shifter before filtering. If a
// filter fails, the results computed so far are returned with the error.
func (c *Core) DemodulateBlock(ref, med []float64, dst []Result) ([]Result, error) {
	if len(ref) != len(med) {
		return dst[:0], fmt.Errorf("lockin: block length mismatch: %d reference, %d measured: %w",
			len(ref), len(med), core.ErrInvalidParameter)
	}
	for k := range ref {
		if !core.IsFinite(ref[k]) || !core.IsFinite(med[k]) {
			return dst[:0], fmt.Errorf("lockin: non-finite sample pair at %d: %w", k, core.ErrInvalidParameter)
		}
	}

	n := len(ref)
	c.shifted = core.EnsureLen(c.shifted, n)
	c.prodI = core.EnsureLen(c.prodI, n)
	c.prodQ = core.EnsureLen(c.prodQ, n)
	c.outI = core.EnsureLen(c.outI, n)
	c.outQ = core.EnsureLen(c.outQ, n)
	c.mag = core.EnsureLen(c.mag, n)

	for k, x := range ref {
		c.shifted[k] = c.shifter.Shift(x)
	}
	vecmath.MulBlock(c.prodI, med, ref)
	vecmath.MulBlock(c.prodQ, med, c.shifted)

	dst = dst[:0]
	for k := 0; k < n; k++ {
		i, err := c.inPhase.Filter(c.prodI[k])
		if err != nil {
			return c.appendPolar(dst, k), fmt.Errorf("lockin: in-phase at %d: %w", k, err)
		}
		q, err := c.quadrature.Filter(c.prodQ[k])
		if err != nil {
			return c.appendPolar(dst, k), fmt.Errorf("lockin: quadrature at %d: %w", k, err)
		}
		c.outI[k] = i
		c.outQ[k] = q
	}
	return c.appendPolar(dst, n), nil
}

func (c *Core) appendPolar(dst []Result, n int) []Result {
	vecmath.Magnitude(c.mag[:n], c.outI[:n], c.outQ[:n])
	for k := 0; k < n; k++ {
		dst = append(dst, polar(c.outI[k], c.outQ[k], c.mag[k]))
	}
	return dst
}
