// Package iir runs a single direct-form IIR recursion one sample at a time.
//
// A [Filter] applies
//
//	y[n] = sum(b[i]*x[n-i], i=0..N) - sum(a[i]*y[n-i], i=1..N)
//
// keeping exactly N+1 samples of input and output history. Coefficients are
// produced by an injected [Designer] (for example pass.ButterworthLP), so the
// recursion does not depend on the design method.
//
// Changing the sample rate or the cutoff recomputes the coefficients and
// keeps the history; changing the order resizes and clears it.
package iir
