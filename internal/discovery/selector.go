package discovery

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNoSelector = errors.New("no port, vendor ID or product ID given")
	ErrInvalidID  = errors.New("invalid USB ID")
)

// Selector identifies the device to bridge: an explicit path, or a USB
// vendor and/or product id. A non-empty Path takes precedence.
type Selector struct {
	Path      string
	VendorID  *uint16
	ProductID *uint16
}

// PathSelector selects a device by its path
func PathSelector(path string) Selector {
	return Selector{Path: path}
}

// USBSelector selects the first USB device matching the given ids; either
// may be nil
func USBSelector(vendorID, productID *uint16) Selector {
	return Selector{VendorID: vendorID, ProductID: productID}
}

// IsUSB reports whether resolution needs an enumeration
func (s Selector) IsUSB() bool {
	return s.Path == "" && (s.VendorID != nil || s.ProductID != nil)
}

// Validate checks that the selector names something
func (s Selector) Validate() error {
	if s.Path == "" && s.VendorID == nil && s.ProductID == nil {
		return ErrNoSelector
	}
	return nil
}

func (s Selector) String() string {
	if s.Path != "" {
		return s.Path
	}
	return fmt.Sprintf("usb vid=%s pid=%s", formatID(s.VendorID), formatID(s.ProductID))
}

func formatID(id *uint16) string {
	if id == nil {
		return "*"
	}
	return fmt.Sprintf("%04x", *id)
}

// ParseID parses a 16-bit USB id written in hex, with or without a 0x
// prefix ("2341", "0x2341", "000A")
func ParseID(s string) (uint16, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(strings.TrimPrefix(trimmed, "0x"), "0X")
	if trimmed == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	v, err := strconv.ParseUint(trimmed, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return uint16(v), nil
}
