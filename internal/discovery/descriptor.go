package discovery

import (
	"context"
	"fmt"
)

// Kind classifies an enumerated port
type Kind int

const (
	KindUnknown Kind = iota
	KindUSB
)

func (k Kind) String() string {
	switch k {
	case KindUSB:
		return "USB"
	default:
		return "Unknown"
	}
}

// USBInfo carries the USB identity of a port. SerialNumber, Manufacturer
// and Product are empty when the device does not report them.
type USBInfo struct {
	VendorID     uint16
	ProductID    uint16
	SerialNumber string
	Manufacturer string
	Product      string
}

// Descriptor is one enumerated port. Descriptors are produced fresh on
// every enumeration; a device re-inserted after a disconnect may come
// back under a different path.
type Descriptor struct {
	Path string
	Kind Kind
	USB  *USBInfo
}

func (d Descriptor) String() string {
	if d.Kind == KindUSB && d.USB != nil {
		return fmt.Sprintf("%s (USB %04x:%04x)", d.Path, d.USB.VendorID, d.USB.ProductID)
	}
	return d.Path
}

// Matches reports whether the descriptor satisfies every USB id the
// selector supplies. Non-USB descriptors never match a USB selector.
func (d Descriptor) Matches(sel Selector) bool {
	if d.Kind != KindUSB || d.USB == nil {
		return false
	}
	if sel.VendorID == nil && sel.ProductID == nil {
		return false
	}
	if sel.VendorID != nil && *sel.VendorID != d.USB.VendorID {
		return false
	}
	if sel.ProductID != nil && *sel.ProductID != d.USB.ProductID {
		return false
	}
	return true
}

// Enumerator lists the serial ports currently visible to the host. The
// order is backend defined and not stable across calls.
type Enumerator interface {
	List(ctx context.Context) ([]Descriptor, error)
}

// EnumeratorFunc adapts a function to the Enumerator interface
type EnumeratorFunc func(ctx context.Context) ([]Descriptor, error)

func (f EnumeratorFunc) List(ctx context.Context) ([]Descriptor, error) {
	return f(ctx)
}
