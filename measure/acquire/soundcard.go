package acquire

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
)

const (
	// DefaultSoundcardRate is the capture rate used when none is given.
	DefaultSoundcardRate = 48000

	soundcardChannels = 2
	bytesPerSample    = 4
)

// Soundcard captures the default stereo input as 32-bit float frames.
//
// The capture callback runs on a miniaudio thread and only updates a latch
// holding the most recent frame. Each channel's Read waits for a frame newer
// than the one it returned last.
type Soundcard struct {
	sampleRate uint32

	mu      sync.Mutex
	latest  [soundcardChannels]float64
	frames  uint64
	changed chan struct{}
	stop    func() error

	open func(sampleRate uint32, onData malgo.DataProc) (stop func() error, err error)
}

// NewSoundcard returns an unopened capture device. A zero rate selects
// DefaultSoundcardRate.
func NewSoundcard(sampleRate uint32) *Soundcard {
	if sampleRate == 0 {
		sampleRate = DefaultSoundcardRate
	}
	return &Soundcard{
		sampleRate: sampleRate,
		changed:    make(chan struct{}),
		open:       openMalgoCapture,
	}
}

// SampleRate returns the capture rate in Hz.
func (s *Soundcard) SampleRate() uint32 { return s.sampleRate }

// Channel returns a Source for one input channel: 0 is left (reference),
// 1 is right (measured).
func (s *Soundcard) Channel(i int) (*SoundcardChannel, error) {
	if i < 0 || i >= soundcardChannels {
		return nil, fmt.Errorf("%w: soundcard channel %d (want 0 or 1)", ErrUnsupportedChannel, i)
	}
	return &SoundcardChannel{card: s, index: i}, nil
}

// Frames returns the number of frames captured so far.
func (s *Soundcard) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Close stops the capture device if it is running.
func (s *Soundcard) Close() error {
	s.mu.Lock()
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()

	if stop == nil {
		return nil
	}
	if err := stop(); err != nil {
		return fmt.Errorf("acquire: soundcard close: %w", err)
	}
	return nil
}

// connect starts the device on first use; later calls share it.
func (s *Soundcard) connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return nil
	}

	stop, err := s.open(s.sampleRate, s.onData)
	if err != nil {
		return fmt.Errorf("%w: soundcard: %w", ErrDeviceUnavailable, err)
	}
	s.stop = stop
	return nil
}

// onData is the miniaudio capture callback.
func (s *Soundcard) onData(_, in []byte, frameCount uint32) {
	n := int(frameCount)
	if n == 0 || len(in) < n*soundcardChannels*bytesPerSample {
		return
	}

	var frame [soundcardChannels]float64
	last := (n - 1) * soundcardChannels * bytesPerSample
	for ch := range frame {
		bits := binary.LittleEndian.Uint32(in[last+ch*bytesPerSample:])
		frame[ch] = float64(math.Float32frombits(bits))
	}

	s.mu.Lock()
	s.latest = frame
	s.frames += uint64(n)
	close(s.changed)
	s.changed = make(chan struct{})
	s.mu.Unlock()
}

// read blocks until a frame newer than *seen arrives.
func (s *Soundcard) read(ctx context.Context, ch int, seen *uint64) (float64, error) {
	for {
		s.mu.Lock()
		if s.stop == nil {
			s.mu.Unlock()
			return 0, fmt.Errorf("%w: soundcard not connected", ErrDeviceUnavailable)
		}
		if s.frames > *seen {
			x := s.latest[ch]
			*seen = s.frames
			s.mu.Unlock()
			return x, nil
		}
		wait := s.changed
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-wait:
		}
	}
}

// SoundcardChannel is one input channel of a Soundcard.
type SoundcardChannel struct {
	card  *Soundcard
	index int
	seen  uint64
}

// Connect starts the shared capture device.
func (c *SoundcardChannel) Connect(ctx context.Context) error {
	return c.card.connect(ctx)
}

// Read waits for the next captured frame and returns this channel's sample.
func (c *SoundcardChannel) Read(ctx context.Context) (float64, error) {
	return c.card.read(ctx, c.index, &c.seen)
}

// Identify describes the channel.
func (c *SoundcardChannel) Identify() string {
	side := "left"
	if c.index == 1 {
		side = "right"
	}
	return fmt.Sprintf("soundcard %s @ %d Hz", side, c.card.sampleRate)
}

func openMalgoCapture(sampleRate uint32, onData malgo.DataProc) (func() error, error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, err
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatF32
	cfg.Capture.Channels = soundcardChannels
	cfg.SampleRate = sampleRate

	dev, err := malgo.InitDevice(mctx.Context, cfg, malgo.DeviceCallbacks{Data: onData})
	if err != nil {
		_ = mctx.Uninit()
		mctx.Free()
		return nil, err
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		_ = mctx.Uninit()
		mctx.Free()
		return nil, err
	}

	return func() error {
		err := dev.Stop()
		dev.Uninit()
		if uerr := mctx.Uninit(); err == nil {
			err = uerr
		}
		mctx.Free()
		return err
	}, nil
}
