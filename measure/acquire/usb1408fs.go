package acquire

import (
	"context"
	"fmt"
	"math"
)

// USB1408FSGains lists the bipolar input ranges of the USB-1408FS in volts,
// ascending.
var USB1408FSGains = []float64{1.0, 1.25, 2.0, 2.5, 4.0, 5.0, 10.0, 20.0}

// USB1408FSChannels is the number of single-ended analog inputs.
const USB1408FSChannels = 8

// Transport opens USB-1408FS devices by serial number. It is implemented by
// the vendor driver binding.
type Transport interface {
	Open(serial string) (Device, error)
}

// Device is an opened USB-1408FS.
type Device interface {
	// AIn reads the raw code of one analog input using the given range.
	AIn(channel int, rangeCode string) (uint16, error)
	// Volts converts a raw code read with rangeCode to volts.
	Volts(rangeCode string, raw uint16) float64
}

// USB1408FS is a single analog input channel of a USB-1408FS.
type USB1408FS struct {
	serial    string
	gain      float64
	rangeCode string
	channel   int
	transport Transport
	dev       Device
}

// NewUSB1408FS selects the smallest input range that covers gain volts and
// validates the channel. The device is opened by Connect.
func NewUSB1408FS(serial string, gain float64, channel int, transport Transport) (*USB1408FS, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: nil transport for %s", ErrDeviceUnavailable, serial)
	}

	a := &USB1408FS{serial: serial, transport: transport}
	if err := a.SetGain(gain); err != nil {
		return nil, err
	}
	if err := a.SetChannel(channel); err != nil {
		return nil, err
	}
	return a, nil
}

// SetGain picks the smallest range that is at least gain.
func (a *USB1408FS) SetGain(gain float64) error {
	g, code, err := usb1408fsRange(gain)
	if err != nil {
		return err
	}
	a.gain = g
	a.rangeCode = code
	return nil
}

// SetChannel selects the analog input, 0 to 7.
func (a *USB1408FS) SetChannel(channel int) error {
	if channel < 0 || channel >= USB1408FSChannels {
		return fmt.Errorf("%w: %d (want 0..%d)", ErrUnsupportedChannel, channel, USB1408FSChannels-1)
	}
	a.channel = channel
	return nil
}

// Connect opens the device through the transport.
func (a *USB1408FS) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dev, err := a.transport.Open(a.serial)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrDeviceUnavailable, a.serial, err)
	}
	a.dev = dev
	return nil
}

// Read samples the selected input and returns volts.
func (a *USB1408FS) Read(ctx context.Context) (float64, error) {
	if a.dev == nil {
		return 0, fmt.Errorf("%w: %s not connected", ErrDeviceUnavailable, a.serial)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	raw, err := a.dev.AIn(a.channel, a.rangeCode)
	if err != nil {
		return 0, fmt.Errorf("%w: %s channel %d: %w", ErrAcquisition, a.serial, a.channel, err)
	}
	return a.dev.Volts(a.rangeCode, raw), nil
}

// Identify returns the serial number, channel and range.
func (a *USB1408FS) Identify() string {
	return fmt.Sprintf("USB-1408FS %s ch%d %s", a.serial, a.channel, a.rangeCode)
}

// Gain returns the selected range in volts.
func (a *USB1408FS) Gain() float64 { return a.gain }

// RangeCode returns the vendor range code, e.g. "BP_4_00V".
func (a *USB1408FS) RangeCode() string { return a.rangeCode }

// Channel returns the selected analog input.
func (a *USB1408FS) Channel() int { return a.channel }

func usb1408fsRange(gain float64) (float64, string, error) {
	if !math.IsNaN(gain) {
		for _, g := range USB1408FSGains {
			if gain <= g {
				return g, rangeCode(g), nil
			}
		}
	}
	return 0, "", fmt.Errorf("%w: %v V (max %v V)", ErrUnsupportedRange, gain, USB1408FSGains[len(USB1408FSGains)-1])
}

// rangeCode formats a bipolar range as the vendor constant name, with two
// decimals: 1.25 -> "BP_1_25V", 10 -> "BP_10_00V".
func rangeCode(volts float64) string {
	whole := int(volts)
	cents := int(math.Round((volts - float64(whole)) * 100))
	return fmt.Sprintf("BP_%d_%02dV", whole, cents)
}
