// Package buffer provides fixed-capacity sample windows for streaming DSP.
//
// A [Ring] keeps the most recent N samples of a stream. Pushing a sample
// discards the oldest one and reads are addressed relative to the newest
// entry, so per-sample processors (recursive filters, delay-based phase
// shifters) can look back into their history in O(1).
package buffer
