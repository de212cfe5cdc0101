// Package pass designs low-pass IIR filters.
//
// Each family comes in two shapes. The *Sections functions return a cascade
// of second-order sections (plus one first-order section for odd orders) at
// an absolute cutoff and sample rate. The *LP functions take a filter order
// and a cutoff normalized to Nyquist (0 < wn < 1) and return a single
// direct-form transfer function b, a with order+1 taps each and a[0] = 1,
// which is the shape consumed by dsp/filter/iir.
package pass
