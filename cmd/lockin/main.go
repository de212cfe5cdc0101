// Command lockin runs a software lock-in amplifier and appends one
// "magnitude, phase" line per sample pair to a CSV file.
//
// Usage:
//
//	lockin [flags]
//
// Examples:
//
//	lockin -source synth -n 3000
//	lockin -source synth -phase 0.7 -noise 0.2 -auto-ref
//	lockin -source usb1408fs -ref-serial 014447D8 -ref-chan 1 -med-serial 014447AC -med-chan 3
//	lockin -fs 140 -fr 4 -order 3 -bode
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/cmplx"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/algo-lockin/dsp/core"
	"github.com/cwbudde/algo-lockin/dsp/filter/design/pass"
	"github.com/cwbudde/algo-lockin/dsp/filter/iir"
	"github.com/cwbudde/algo-lockin/dsp/spectrum"
	"github.com/cwbudde/algo-lockin/dsp/window"
	"github.com/cwbudde/algo-lockin/measure/acquire"
	"github.com/cwbudde/algo-lockin/measure/lockin"
	"github.com/cwbudde/algo-lockin/stats/series"
)

// usbTransport is the vendor binding for the USB-1408FS. None ships with
// this module; builds that link one set it from an init function.
var usbTransport acquire.Transport

type options struct {
	fs, fr      float64
	order       int
	settle      time.Duration
	n           int
	out         string
	source      string
	design      string
	autoRef     bool
	autoRefSize int
	window      string
	bode        bool

	// synth
	amplitude, phase, noise float64
	seed                    int64

	// usb1408fs
	refSerial, medSerial string
	refChan, medChan     int
	gain                 float64

	// soundcard
	rate uint
}

func init() {
	log.SetFlags(log.Lshortfile | log.Lmicroseconds)
}

func main() {
	var o options
	flag.Float64Var(&o.fs, "fs", 140, "sample rate of the acquisition loop in Hz")
	flag.Float64Var(&o.fr, "fr", 4, "reference frequency in Hz")
	flag.IntVar(&o.order, "order", lockin.DefaultFilterOrder, "order of the output lowpass filters")
	flag.DurationVar(&o.settle, "settle", lockin.DefaultSettleDelay, "wait after every sample pair")
	flag.IntVar(&o.n, "n", 3000, "number of sample pairs (0 runs until interrupted)")
	flag.StringVar(&o.out, "out", "measurements.csv", "output file, appended to")
	flag.StringVar(&o.source, "source", "synth", "acquisition source: synth, usb1408fs or soundcard")
	flag.StringVar(&o.design, "design", "butterworth", "lowpass design: butterworth or bessel")
	flag.BoolVar(&o.autoRef, "auto-ref", false, "estimate the reference frequency from a captured block first")
	flag.IntVar(&o.autoRefSize, "auto-ref-samples", 1024, "block length for -auto-ref")
	flag.StringVar(&o.window, "window", "hann", "-auto-ref analysis window: rectangular, hann, hamming, blackman or flat-top")
	flag.BoolVar(&o.bode, "bode", false, "print the lowpass frequency response and exit")
	flag.Float64Var(&o.amplitude, "amp", 1, "synth: measured amplitude")
	flag.Float64Var(&o.phase, "phase", 0, "synth: measured phase in radians")
	flag.Float64Var(&o.noise, "noise", 0.01, "synth: measured noise amplitude")
	flag.Int64Var(&o.seed, "seed", 1, "synth: noise seed")
	flag.StringVar(&o.refSerial, "ref-serial", "014447D8", "usb1408fs: reference device serial")
	flag.IntVar(&o.refChan, "ref-chan", 1, "usb1408fs: reference channel")
	flag.StringVar(&o.medSerial, "med-serial", "014447AC", "usb1408fs: measured device serial")
	flag.IntVar(&o.medChan, "med-chan", 3, "usb1408fs: measured channel")
	flag.Float64Var(&o.gain, "gain", 10, "usb1408fs: input range in volts")
	flag.UintVar(&o.rate, "rate", acquire.DefaultSoundcardRate, "soundcard: capture rate in Hz")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lockin [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a software lock-in amplifier and appends \"magnitude, phase\" lines to -out.\n")
		fmt.Fprintf(os.Stderr, "-fs is the rate at which sample pairs are taken, not the device rate.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  lockin -source synth -n 3000\n")
		fmt.Fprintf(os.Stderr, "  lockin -source synth -phase 0.7 -noise 0.2 -auto-ref\n")
		fmt.Fprintf(os.Stderr, "  lockin -fs 140 -fr 4 -order 3 -bode\n")
	}
	flag.Parse()

	designer, err := parseDesigner(o.design)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if o.bode {
		if err := printBode(os.Stdout, o.fs, o.fr, o.order, designer); err != nil {
			log.Fatal(err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, o, designer); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, o options, designer iir.Designer) error {
	ref, med, closeSources, err := openSources(o)
	if err != nil {
		return err
	}
	defer closeSources()

	c, err := lockin.New(ref, med, o.fr, o.fs,
		lockin.WithFilterOrder(o.order),
		lockin.WithSettleDelay(o.settle),
		lockin.WithDesigner(designer))
	if err != nil {
		return err
	}
	if err := c.Connect(ctx); err != nil {
		return err
	}
	log.Printf("reference: %s", ref.Identify())
	log.Printf("measured:  %s", med.Identify())
	log.Printf("fs=%g Hz fr=%g Hz order=%d cutoff=%g Hz shift=%d samples",
		c.SampleRate(), c.ReferenceFrequency(), c.FilterOrder(), c.Cutoff(), c.QuarterPeriod())

	f, err := os.OpenFile(o.out, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	rec := lockin.NewRecorder(w)

	var magnitude series.Running
	var phase series.Circular
	sink := lockin.ResultSinkFunc(func(r lockin.Result) error {
		if err := rec.WriteResult(r); err != nil {
			return err
		}
		if c.Warm() {
			magnitude.Add(r.Magnitude)
			phase.Add(r.Phase)
		}
		return nil
	})

	if o.autoRef {
		win, err := window.ParseType(o.window)
		if err != nil {
			return errors.Join(err, f.Close())
		}
		if err := autoReference(ctx, c, o.autoRefSize, win, sink); err != nil {
			return errors.Join(err, w.Flush(), f.Close())
		}
	}

	done, runErr := c.Run(ctx, o.n, sink)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	if err := errors.Join(runErr, w.Flush(), f.Close()); err != nil {
		return err
	}
	log.Printf("ran %d cycles, wrote %d lines to %s", done, rec.Lines(), o.out)
	if m := magnitude.Result(); m.Count > 0 {
		log.Printf("magnitude mean %.6g std %.3g (min %.6g max %.6g)", m.Mean, m.StdDev, m.Min, m.Max)
		log.Printf("phase mean %.4f rad std %.3g rad", phase.Mean(), phase.StdDev())
	}
	return nil
}

// autoReference captures a block, retunes c to the strongest reference
// component and primes the filters with the block.
func autoReference(ctx context.Context, c *lockin.Core, n int, win window.Type, sink lockin.ResultSink) error {
	refs := make([]float64, n)
	meds := make([]float64, n)
	for i := range refs {
		r, m, err := c.Acquire(ctx)
		if err != nil {
			return err
		}
		refs[i], meds[i] = r, m
	}

	peak, err := spectrum.FindPeak(refs, c.SampleRate(), spectrum.WithWindow(win))
	if err != nil {
		return err
	}
	log.Printf("estimated reference %.4f Hz, amplitude %.4g (was %g Hz, %v window)",
		peak.Frequency, peak.Amplitude, c.ReferenceFrequency(), win)
	if err := c.SetReferenceFrequency(peak.Frequency); err != nil {
		return err
	}

	results, err := c.DemodulateBlock(refs, meds, nil)
	if err != nil {
		return err
	}
	for _, r := range results {
		if err := sink.WriteResult(r); err != nil {
			return err
		}
	}
	return nil
}

func openSources(o options) (ref, med lockin.Source, closeFn func(), err error) {
	switch o.source {
	case "synth":
		s, err := acquire.NewSynth(acquire.SynthConfig{
			SampleRate:     o.fs,
			Frequency:      o.fr,
			Amplitude:      o.amplitude,
			Phase:          o.phase,
			NoiseAmplitude: o.noise,
			Seed:           o.seed,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return s.Reference(), s.Measured(), func() {}, nil

	case "usb1408fs":
		r, err := acquire.NewUSB1408FS(o.refSerial, o.gain, o.refChan, usbTransport)
		if err != nil {
			return nil, nil, nil, err
		}
		m, err := acquire.NewUSB1408FS(o.medSerial, o.gain, o.medChan, usbTransport)
		if err != nil {
			return nil, nil, nil, err
		}
		return r, m, func() {}, nil

	case "soundcard":
		card := acquire.NewSoundcard(uint32(o.rate))
		r, err := card.Channel(0)
		if err != nil {
			return nil, nil, nil, err
		}
		m, err := card.Channel(1)
		if err != nil {
			return nil, nil, nil, err
		}
		return r, m, func() {
			if err := card.Close(); err != nil {
				log.Print(err)
			}
		}, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown source %q (want synth, usb1408fs or soundcard)", o.source)
}

func parseDesigner(name string) (iir.Designer, error) {
	switch strings.ToLower(name) {
	case "butterworth", "butter":
		return pass.ButterworthLP, nil
	case "bessel":
		return pass.BesselLP, nil
	}
	return nil, fmt.Errorf("unknown design %q (want butterworth or bessel)", name)
}

// printBode writes the magnitude and phase response of the output lowpass
// at log-spaced frequencies up to Nyquist, followed by its step settling
// time.
func printBode(w io.Writer, fs, fr float64, order int, designer iir.Designer) error {
	spec := iir.Spec{Order: order, Cutoff: fr / lockin.DefaultCutoffRatio, SampleRate: fs}
	f, err := iir.New(spec, designer)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "freq [Hz]\tgain [dB]\tphase [deg]\t\n")
	for _, hz := range bodeFrequencies(spec.Cutoff/100, fs/2, 10) {
		h := f.Response(hz)
		fmt.Fprintf(tw, "%.4g\t%.2f\t%.1f\t\n", hz, core.LinearToDB(cmplx.Abs(h)), cmplx.Phase(h)*180/math.Pi)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	b, a := f.Coefficients()
	n, ok := iir.StepSettling(iir.Coefficients{Spec: spec, B: b, A: a}, 1e-4, int(fs*600))
	if !ok {
		_, err = fmt.Fprintf(w, "\nstep response does not settle to 1e-4 within 600 s\n")
		return err
	}
	_, err = fmt.Fprintf(w, "\nstep settling (1e-4): %d samples, %.3f s\n", n, float64(n)/fs)
	return err
}

// bodeFrequencies returns perDecade log-spaced points in [lo, hi].
func bodeFrequencies(lo, hi float64, perDecade int) []float64 {
	if lo <= 0 || hi <= lo || perDecade <= 0 {
		return nil
	}
	var out []float64
	step := math.Pow(10, 1/float64(perDecade))
	for f := lo; f <= hi*(1+1e-9); f *= step {
		out = append(out, f)
	}
	return out
}
