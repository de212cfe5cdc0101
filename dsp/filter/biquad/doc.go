// Package biquad provides second-order IIR section primitives.
//
// A [Section] runs Direct Form II Transposed processing for one second-order
// section defined by [Coefficients]. Sections can be cascaded with [Chain],
// or multiplied out into a single direct-form transfer function with
// [Expand] for consumers that run one high-order recursion per sample
// (see dsp/filter/iir).
//
// Coefficient design lives in dsp/filter/design/pass.
package biquad
