package serial

import "errors"

// Errors returned by Open. Open wraps the underlying errno, so match them
// with errors.Is.
var (
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied opening serial device")
	ErrDeviceInUse      = errors.New("serial device is locked by another process")
	ErrInvalidBaudRate  = errors.New("unsupported baud rate")
	ErrInvalidConfig    = errors.New("invalid serial configuration")
)

// Errors returned by Port I/O
var (
	ErrPortClosed = errors.New("serial port is closed")
	// ErrWriteTimeout means the driver accepted nothing within the write timeout
	ErrWriteTimeout = errors.New("write to serial device timed out")
	// ErrReadTimeout means no byte arrived within the read timeout. It is
	// not a failure; the caller just reads again.
	ErrReadTimeout = errors.New("no data within read timeout")
)

// USB-related errors
var (
	ErrUSBInfoNotAvailable  = errors.New("USB device information not available")
	ErrUSBResetNotAvailable = errors.New("usbreset utility not available")
)
