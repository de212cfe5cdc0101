// Package series accumulates statistics over a stream of measurements
// without storing the samples.
package series
