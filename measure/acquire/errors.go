package acquire

import "errors"

var (
	// ErrDeviceUnavailable is returned when a device cannot be opened or is
	// read before Connect.
	ErrDeviceUnavailable = errors.New("acquire: device unavailable")
	// ErrAcquisition is returned when a connected device fails to deliver a
	// sample.
	ErrAcquisition = errors.New("acquire: acquisition failed")
	// ErrUnsupportedRange is returned for a gain above the largest input range.
	ErrUnsupportedRange = errors.New("acquire: unsupported input range")
	// ErrUnsupportedChannel is returned for a channel the device does not have.
	ErrUnsupportedChannel = errors.New("acquire: unsupported channel")
)
