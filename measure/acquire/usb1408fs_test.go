package acquire

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-lockin/measure/lockin"
)

var _ lockin.Source = (*USB1408FS)(nil)

type fakeTransport struct {
	dev     *fakeDevice
	openErr error
	opened  []string
}

func (t *fakeTransport) Open(serial string) (Device, error) {
	t.opened = append(t.opened, serial)
	if t.openErr != nil {
		return nil, t.openErr
	}
	return t.dev, nil
}

type fakeDevice struct {
	raw     uint16
	readErr error
	calls   []string
}

func (d *fakeDevice) AIn(channel int, rangeCode string) (uint16, error) {
	d.calls = append(d.calls, rangeCode)
	if d.readErr != nil {
		return 0, d.readErr
	}
	return d.raw + uint16(channel), nil
}

// Volts maps the 14-bit code onto the symmetric range given by rangeCode.
func (d *fakeDevice) Volts(rangeCode string, raw uint16) float64 {
	full := map[string]float64{"BP_4_00V": 4, "BP_10_00V": 10}[rangeCode]
	return (float64(raw) - 8192) / 8192 * full
}

func TestUSB1408FSGainSelection(t *testing.T) {
	tests := []struct {
		gain     float64
		wantGain float64
		wantCode string
	}{
		{0.1, 1.0, "BP_1_00V"},
		{1.0, 1.0, "BP_1_00V"},
		{1.1, 1.25, "BP_1_25V"},
		{2.0, 2.0, "BP_2_00V"},
		{2.2, 2.5, "BP_2_50V"},
		{3.0, 4.0, "BP_4_00V"},
		{5.0, 5.0, "BP_5_00V"},
		{10, 10, "BP_10_00V"},
		{15, 20, "BP_20_00V"},
		{20, 20, "BP_20_00V"},
	}

	for _, tt := range tests {
		a, err := NewUSB1408FS("014447D8", tt.gain, 1, &fakeTransport{})
		if err != nil {
			t.Fatalf("gain %v: %v", tt.gain, err)
		}
		if a.Gain() != tt.wantGain || a.RangeCode() != tt.wantCode {
			t.Fatalf("gain %v: got %v %q want %v %q", tt.gain, a.Gain(), a.RangeCode(), tt.wantGain, tt.wantCode)
		}
	}
}

func TestUSB1408FSValidation(t *testing.T) {
	tr := &fakeTransport{}
	for _, gain := range []float64{25, 20.01, math.Inf(1), math.NaN()} {
		if _, err := NewUSB1408FS("x", gain, 0, tr); !errors.Is(err, ErrUnsupportedRange) {
			t.Fatalf("gain %v: expected ErrUnsupportedRange, got %v", gain, err)
		}
	}
	for _, ch := range []int{-1, 8, 100} {
		if _, err := NewUSB1408FS("x", 1, ch, tr); !errors.Is(err, ErrUnsupportedChannel) {
			t.Fatalf("channel %d: expected ErrUnsupportedChannel, got %v", ch, err)
		}
	}
	if _, err := NewUSB1408FS("x", 1, 0, nil); !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("nil transport: expected ErrDeviceUnavailable, got %v", err)
	}

	a, err := NewUSB1408FS("x", 3, 7, tr)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.SetGain(50); !errors.Is(err, ErrUnsupportedRange) || a.RangeCode() != "BP_4_00V" {
		t.Fatalf("failed SetGain changed state: %v %q", err, a.RangeCode())
	}
	if err := a.SetChannel(9); !errors.Is(err, ErrUnsupportedChannel) || a.Channel() != 7 {
		t.Fatalf("failed SetChannel changed state: %v %d", err, a.Channel())
	}
}

func TestUSB1408FSRead(t *testing.T) {
	dev := &fakeDevice{raw: 12288}
	tr := &fakeTransport{dev: dev}
	a, err := NewUSB1408FS("014447AC", 3, 0, tr)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if _, err := a.Read(ctx); !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("read before connect: expected ErrDeviceUnavailable, got %v", err)
	}

	if err := a.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	if len(tr.opened) != 1 || tr.opened[0] != "014447AC" {
		t.Fatalf("opened: %v", tr.opened)
	}

	v, err := a.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v != 2 {
		t.Fatalf("volts: got %v want 2", v)
	}
	if len(dev.calls) != 1 || dev.calls[0] != "BP_4_00V" {
		t.Fatalf("AIn range codes: %v", dev.calls)
	}
	if got := a.Identify(); got != "USB-1408FS 014447AC ch0 BP_4_00V" {
		t.Fatalf("Identify: %q", got)
	}

	errUSB := errors.New("usb stall")
	dev.readErr = errUSB
	_, err = a.Read(ctx)
	if !errors.Is(err, ErrAcquisition) || !errors.Is(err, errUSB) {
		t.Fatalf("expected ErrAcquisition wrapping errUSB, got %v", err)
	}
}

func TestUSB1408FSConnectError(t *testing.T) {
	errMissing := errors.New("no such device")
	a, err := NewUSB1408FS("dead", 1, 0, &fakeTransport{openErr: errMissing})
	if err != nil {
		t.Fatal(err)
	}

	err = a.Connect(context.Background())
	if !errors.Is(err, ErrDeviceUnavailable) || !errors.Is(err, errMissing) {
		t.Fatalf("expected ErrDeviceUnavailable wrapping errMissing, got %v", err)
	}
	if _, err := a.Read(context.Background()); !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("read after failed connect: %v", err)
	}
}

func TestRangeCode(t *testing.T) {
	for volts, want := range map[float64]string{
		1: "BP_1_00V", 1.25: "BP_1_25V", 2.5: "BP_2_50V", 20: "BP_20_00V",
	} {
		if got := rangeCode(volts); got != want {
			t.Fatalf("rangeCode(%v) = %q want %q", volts, got, want)
		}
	}
}
