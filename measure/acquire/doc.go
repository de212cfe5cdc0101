// Package acquire provides lockin.Source implementations for the supported
// acquisition hardware and a synthetic source for tests and demos.
//
//   - USB1408FS reads one analog input of a Measurement Computing USB-1408FS
//     through a vendor Transport.
//   - Soundcard captures a stereo input with miniaudio; the left channel is
//     the reference and the right channel the measured signal.
//   - Synth generates a reference sine and a noisy, phase-shifted copy.
package acquire
