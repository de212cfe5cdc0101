// Package delay provides sample-delay primitives for streaming signals.
//
// [PhaseShifter] produces a quadrature copy of a periodic reference by
// delaying it one quarter of the reference period. It is the 90 degree
// branch of a lock-in demodulator: the delay is exact only when the sample
// rate is an integer multiple of four times the reference frequency, and the
// output is meaningful once the internal window has filled after a reset.
package delay
