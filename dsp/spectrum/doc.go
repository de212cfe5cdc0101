// Package spectrum provides FFT-based analysis of captured sample blocks.
//
// The lock-in instrument uses it to find the reference frequency in a block
// of reference-channel samples before the streaming demodulator is set up.
package spectrum
