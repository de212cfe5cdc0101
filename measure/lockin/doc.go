// Package lockin implements a software lock-in amplifier.
//
// A Core pulls one reference sample and one measured sample per cycle from
// two Sources, derives a 90 degree shifted copy of the reference with a
// delay.PhaseShifter, multiplies the measured sample by both references and
// low-pass filters the two products. The filtered in-phase (I) and
// quadrature (Q) components give the magnitude hypot(I, Q) and phase
// atan2(Q, I) of the measured signal's component at the reference frequency.
//
// With matching reference and measured sines of amplitude A the magnitude
// settles near A*A/2, since the lowpass removes the 2*fr product term. A
// measured signal leading the reference by phi reports a phase of -phi.
//
// The shift is QuarterPeriod() = floor(fs/fr/4) samples, which is exactly 90
// degrees only when fs/fr is a multiple of four. Otherwise the quadrature
// reference is off by the rounding and the reported phase carries a constant
// bias of atan(cos(2*pi*fr*QuarterPeriod()/fs)).
package lockin
