package serial

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.BaudRate != 115200 {
		t.Errorf("Expected BaudRate 115200, got %d", config.BaudRate)
	}

	if config.DataBits != 8 {
		t.Errorf("Expected DataBits 8, got %d", config.DataBits)
	}

	if config.StopBits != 1 {
		t.Errorf("Expected StopBits 1, got %d", config.StopBits)
	}

	if config.Parity != ParityNone {
		t.Errorf("Expected Parity None, got %v", config.Parity)
	}

	if config.ReadTimeout != 100*time.Millisecond {
		t.Errorf("Expected ReadTimeout 100ms, got %v", config.ReadTimeout)
	}

	if config.WriteTimeout != 5*time.Second {
		t.Errorf("Expected WriteTimeout 5s, got %v", config.WriteTimeout)
	}
}

func TestFunctionalOptions(t *testing.T) {
	config := DefaultConfig()

	// Test WithBaudRate
	err := WithBaudRate(9600)(&config)
	if err != nil {
		t.Errorf("WithBaudRate failed: %v", err)
	}
	if config.BaudRate != 9600 {
		t.Errorf("Expected BaudRate 9600, got %d", config.BaudRate)
	}

	// Test WithDataBits
	err = WithDataBits(7)(&config)
	if err != nil {
		t.Errorf("WithDataBits failed: %v", err)
	}
	if config.DataBits != 7 {
		t.Errorf("Expected DataBits 7, got %d", config.DataBits)
	}

	// Test WithStopBits
	err = WithStopBits(2)(&config)
	if err != nil {
		t.Errorf("WithStopBits failed: %v", err)
	}
	if config.StopBits != 2 {
		t.Errorf("Expected StopBits 2, got %d", config.StopBits)
	}

	// Test WithParity
	err = WithParity(ParityEven)(&config)
	if err != nil {
		t.Errorf("WithParity failed: %v", err)
	}
	if config.Parity != ParityEven {
		t.Errorf("Expected Parity Even, got %v", config.Parity)
	}

	// Test WithWriteTimeout
	err = WithWriteTimeout(0)(&config)
	if err != nil {
		t.Errorf("WithWriteTimeout failed: %v", err)
	}
	if config.WriteTimeout != 0 {
		t.Errorf("Expected WriteTimeout 0, got %v", config.WriteTimeout)
	}

	// Test WithSyncWrite
	err = WithSyncWrite()(&config)
	if err != nil {
		t.Errorf("WithSyncWrite failed: %v", err)
	}
	if config.WriteMode != WriteModeSynced {
		t.Errorf("Expected WriteModeSynced, got %v", config.WriteMode)
	}
}

func TestInvalidBaudRate(t *testing.T) {
	config := DefaultConfig()
	err := WithBaudRate(123456)(&config)
	if err == nil {
		t.Error("Expected error for invalid baud rate")
	}
	if err != ErrInvalidBaudRate {
		t.Errorf("Expected ErrInvalidBaudRate, got %v", err)
	}
}

func TestInvalidDataBits(t *testing.T) {
	config := DefaultConfig()
	err := WithDataBits(9)(&config)
	if err == nil {
		t.Error("Expected error for invalid data bits")
	}
	if err != ErrInvalidConfig {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestInvalidStopBits(t *testing.T) {
	config := DefaultConfig()
	err := WithStopBits(3)(&config)
	if err == nil {
		t.Error("Expected error for invalid stop bits")
	}
	if err != ErrInvalidConfig {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestInvalidWriteTimeout(t *testing.T) {
	config := DefaultConfig()
	if err := WithWriteTimeout(-time.Second)(&config); err != ErrInvalidConfig {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestGetBaudRate(t *testing.T) {
	tests := []struct {
		input    int
		hasError bool
	}{
		{115200, false},
		{9600, false},
		{57600, false},
		{123456, true}, // Invalid baud rate
	}

	for _, test := range tests {
		result, err := getBaudRate(test.input)
		if test.hasError {
			if err == nil {
				t.Errorf("Expected error for baud rate %d", test.input)
			}
			if err != ErrInvalidBaudRate {
				t.Errorf("Expected ErrInvalidBaudRate for %d, got %v", test.input, err)
			}
		} else {
			if err != nil {
				t.Errorf("Unexpected error for baud rate %d: %v", test.input, err)
			}
			if result == 0 {
				t.Errorf("Got zero result for valid baud rate %d", test.input)
			}
		}
	}
}

func TestOpenNonExistentDevice(t *testing.T) {
	_, err := Open("/dev/nonexistent")
	if err == nil {
		t.Fatal("Expected error when opening non-existent device")
	}
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
}

func TestOpenRejectsInvalidOption(t *testing.T) {
	_, err := Open("/dev/nonexistent", WithBaudRate(123456))
	if err != ErrInvalidBaudRate {
		t.Errorf("Expected ErrInvalidBaudRate, got %v", err)
	}
}

func TestClassifyOpenError(t *testing.T) {
	tests := []struct {
		errno    unix.Errno
		expected error
	}{
		{unix.ENOENT, ErrDeviceNotFound},
		{unix.ENXIO, ErrDeviceNotFound},
		{unix.EACCES, ErrPermissionDenied},
		{unix.EBUSY, ErrDeviceInUse},
	}

	for _, tt := range tests {
		err := classifyOpenError("/dev/ttyUSB0", tt.errno)
		if !errors.Is(err, tt.expected) {
			t.Errorf("classifyOpenError(%v) = %v, expected %v", tt.errno, err, tt.expected)
		}
		if !errors.Is(err, tt.errno) {
			t.Errorf("classifyOpenError(%v) lost the errno: %v", tt.errno, err)
		}
	}
}

// openPTY allocates a pseudo-terminal and returns the master fd and the
// slave path. Tests skip when the system has no pty support.
func openPTY(t *testing.T) (int, string) {
	t.Helper()

	master, err := unix.Open("/dev/ptmx", unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err != nil {
		t.Skipf("pty not available: %v", err)
	}
	if err := unix.IoctlSetPointerInt(master, unix.TIOCSPTLCK, 0); err != nil {
		unix.Close(master)
		t.Skipf("failed to unlock pty: %v", err)
	}
	n, err := unix.IoctlGetUint32(master, unix.TIOCGPTN)
	if err != nil {
		unix.Close(master)
		t.Skipf("failed to get pty number: %v", err)
	}
	return master, fmt.Sprintf("/dev/pts/%d", n)
}

// readMaster reads from the pty master until want bytes arrived or the
// deadline passed
func readMaster(t *testing.T, master int, want int) []byte {
	t.Helper()

	var got []byte
	buf := make([]byte, 256)
	deadline := time.Now().Add(2 * time.Second)
	for len(got) < want && time.Now().Before(deadline) {
		ready, err := waitFor(master, unix.POLLIN, 100*time.Millisecond)
		if err != nil {
			t.Fatalf("poll master: %v", err)
		}
		if !ready {
			continue
		}
		n, err := unix.Read(master, buf)
		if err != nil {
			t.Fatalf("read master: %v", err)
		}
		got = append(got, buf[:n]...)
	}
	return got
}

func TestPortOverPTY(t *testing.T) {
	master, slave := openPTY(t)
	defer unix.Close(master)

	p, err := Open(slave, WithBaudRate(9600), WithReadTimeout(100*time.Millisecond))
	if err != nil {
		t.Fatalf("Open(%s) failed: %v", slave, err)
	}
	defer p.Close()

	buf := make([]byte, 64)

	// Nothing queued yet
	if _, err := p.Read(buf); err != ErrReadTimeout {
		t.Errorf("Expected ErrReadTimeout on idle port, got %v", err)
	}

	// Device to host
	if _, err := unix.Write(master, []byte("ping")); err != nil {
		t.Fatalf("write master: %v", err)
	}
	var got []byte
	for i := 0; i < 20 && len(got) < 4; i++ {
		n, err := p.Read(buf)
		if err == ErrReadTimeout {
			continue
		}
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		got = append(got, buf[:n]...)
	}
	if string(got) != "ping" {
		t.Errorf("Read got %q, expected %q", got, "ping")
	}

	// Host to device
	n, err := p.Write([]byte("pong"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != 4 {
		t.Errorf("Write wrote %d bytes, expected 4", n)
	}
	if echoed := readMaster(t, master, 4); string(echoed) != "pong" {
		t.Errorf("Master got %q, expected %q", echoed, "pong")
	}
}

func TestPortHangupIsHardFailure(t *testing.T) {
	master, slave := openPTY(t)

	p, err := Open(slave)
	if err != nil {
		unix.Close(master)
		t.Fatalf("Open(%s) failed: %v", slave, err)
	}
	defer p.Close()

	unix.Close(master)

	_, err = p.Read(make([]byte, 16))
	if err == nil || err == ErrReadTimeout {
		t.Errorf("Expected hard failure after hangup, got %v", err)
	}
}

func TestPortClosed(t *testing.T) {
	master, slave := openPTY(t)
	defer unix.Close(master)

	p, err := Open(slave)
	if err != nil {
		t.Fatalf("Open(%s) failed: %v", slave, err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := p.Close(); err != ErrPortClosed {
		t.Errorf("Second Close: expected ErrPortClosed, got %v", err)
	}
	if _, err := p.Read(make([]byte, 8)); err != ErrPortClosed {
		t.Errorf("Read after Close: expected ErrPortClosed, got %v", err)
	}
	if _, err := p.Write([]byte("x")); err != ErrPortClosed {
		t.Errorf("Write after Close: expected ErrPortClosed, got %v", err)
	}
}
