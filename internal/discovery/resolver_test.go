package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/allbin/serialpipe"
	"go.bug.st/serial/enumerator"
)

func id(v uint16) *uint16 { return &v }

func usbPort(path string, vid, pid uint16) Descriptor {
	return Descriptor{
		Path: path,
		Kind: KindUSB,
		USB:  &USBInfo{VendorID: vid, ProductID: pid},
	}
}

func staticEnumerator(ports ...Descriptor) Enumerator {
	return EnumeratorFunc(func(ctx context.Context) ([]Descriptor, error) {
		return ports, nil
	})
}

func TestResolveUSBPair(t *testing.T) {
	ports := []Descriptor{
		{Path: "/dev/ttyS0", Kind: KindUnknown},
		usbPort("/dev/ttyUSB0", 0x0403, 0x6001),
		usbPort("/dev/ttyACM0", 0x2341, 0x0043),
	}
	r := NewResolver(staticEnumerator(ports...), nil)

	got, err := r.Resolve(context.Background(), USBSelector(id(0x2341), id(0x0043)))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.Path != "/dev/ttyACM0" {
		t.Errorf("Resolve got %s, expected /dev/ttyACM0", got.Path)
	}
}

func TestResolveUSBPairNotFound(t *testing.T) {
	r := NewResolver(staticEnumerator(usbPort("/dev/ttyACM0", 0x2341, 0x0043)), nil)

	_, err := r.Resolve(context.Background(), USBSelector(id(0x1a86), id(0x7523)))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestResolvePartialSelectors(t *testing.T) {
	ports := []Descriptor{
		usbPort("/dev/ttyUSB0", 0x0403, 0x6001),
		usbPort("/dev/ttyACM0", 0x2341, 0x0043),
		usbPort("/dev/ttyACM1", 0x2341, 0x8036),
	}

	tests := []struct {
		name     string
		sel      Selector
		expected string
	}{
		{"vendor only takes first match", USBSelector(id(0x2341), nil), "/dev/ttyACM0"},
		{"product only", USBSelector(nil, id(0x8036)), "/dev/ttyACM1"},
		{"both must match", USBSelector(id(0x0403), id(0x6001)), "/dev/ttyUSB0"},
	}

	r := NewResolver(staticEnumerator(ports...), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(context.Background(), tt.sel)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if got.Path != tt.expected {
				t.Errorf("Resolve got %s, expected %s", got.Path, tt.expected)
			}
		})
	}

	// Vendor matches but product does not
	if _, err := r.Resolve(context.Background(), USBSelector(id(0x2341), id(0x6001))); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for mismatched pair, got %v", err)
	}
}

func TestResolvePathSkipsEnumeration(t *testing.T) {
	called := false
	r := NewResolver(EnumeratorFunc(func(ctx context.Context) ([]Descriptor, error) {
		called = true
		return nil, nil
	}), nil)

	got, err := r.Resolve(context.Background(), PathSelector("/dev/ttyUSB3"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.Path != "/dev/ttyUSB3" {
		t.Errorf("Resolve got %s, expected /dev/ttyUSB3", got.Path)
	}
	if called {
		t.Error("Path selector should not enumerate")
	}
}

func TestResolvePathWinsOverIDs(t *testing.T) {
	r := NewResolver(staticEnumerator(usbPort("/dev/ttyACM0", 0x2341, 0x0043)), nil)

	sel := Selector{Path: "/dev/ttyS1", VendorID: id(0x2341)}
	got, err := r.Resolve(context.Background(), sel)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.Path != "/dev/ttyS1" {
		t.Errorf("Resolve got %s, expected /dev/ttyS1", got.Path)
	}
}

func TestResolveEnumerationError(t *testing.T) {
	boom := errors.New("boom")
	r := NewResolver(EnumeratorFunc(func(ctx context.Context) ([]Descriptor, error) {
		return nil, boom
	}), nil)

	_, err := r.Resolve(context.Background(), USBSelector(id(0x2341), nil))
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped enumeration error, got %v", err)
	}
}

func TestResolveEmptySelector(t *testing.T) {
	r := NewResolver(staticEnumerator(), nil)
	if _, err := r.Resolve(context.Background(), Selector{}); !errors.Is(err, ErrNoSelector) {
		t.Errorf("Expected ErrNoSelector, got %v", err)
	}
}

func TestNonUSBDescriptorNeverMatches(t *testing.T) {
	d := Descriptor{Path: "/dev/ttyS0", Kind: KindUnknown}
	if d.Matches(USBSelector(id(0), id(0))) {
		t.Error("Non-USB descriptor should not match a USB selector")
	}
}

func TestSysfsEnumerator(t *testing.T) {
	e := NewSysfsEnumerator(nil)
	e.listPorts = func() ([]string, error) {
		return []string{"/dev/ttyACM0", "/dev/ttyS0", "/dev/ttyUSB9"}, nil
	}
	e.portInfo = func(path string) (*serial.PortInfo, error) {
		switch path {
		case "/dev/ttyACM0":
			return &serial.PortInfo{
				Name: "ttyACM0", Path: path,
				VendorID: "2341", ProductID: "0043",
				SerialNumber: "75830333238351F0A1B1", Manufacturer: "Arduino (www.arduino.cc)",
			}, nil
		case "/dev/ttyS0":
			return &serial.PortInfo{Name: "ttyS0", Path: path}, nil
		default:
			return nil, serial.ErrDeviceNotFound
		}
	}

	ports, err := e.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ports) != 2 {
		t.Fatalf("Expected 2 ports, got %d", len(ports))
	}

	acm := ports[0]
	if acm.Kind != KindUSB || acm.USB == nil {
		t.Fatalf("Expected USB descriptor, got %+v", acm)
	}
	if acm.USB.VendorID != 0x2341 || acm.USB.ProductID != 0x0043 {
		t.Errorf("Got %04x:%04x, expected 2341:0043", acm.USB.VendorID, acm.USB.ProductID)
	}
	if acm.USB.Manufacturer != "Arduino (www.arduino.cc)" {
		t.Errorf("Manufacturer = %q", acm.USB.Manufacturer)
	}
	if ports[1].Kind != KindUnknown {
		t.Errorf("Expected ttyS0 to be unknown, got %v", ports[1].Kind)
	}
}

func TestSysfsEnumeratorBadHex(t *testing.T) {
	d := descriptorFromPortInfo(&serial.PortInfo{Path: "/dev/ttyUSB0", VendorID: "zz", ProductID: "0043"})
	if d.Kind != KindUnknown {
		t.Errorf("Expected unparsable ids to yield KindUnknown, got %v", d.Kind)
	}
}

func TestPortableEnumerator(t *testing.T) {
	e := NewPortableEnumerator(nil)
	e.list = func() ([]*enumerator.PortDetails, error) {
		return []*enumerator.PortDetails{
			{Name: "/dev/ttyS0"},
			{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001", SerialNumber: "A50285BI", Product: "FT232R USB UART"},
		}, nil
	}

	ports, err := e.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ports) != 2 {
		t.Fatalf("Expected 2 ports, got %d", len(ports))
	}
	if ports[0].Kind != KindUnknown {
		t.Errorf("Expected first port unknown, got %v", ports[0].Kind)
	}
	usb := ports[1]
	if usb.Kind != KindUSB || usb.USB.VendorID != 0x0403 || usb.USB.ProductID != 0x6001 {
		t.Errorf("Unexpected USB descriptor %+v", usb)
	}
	if usb.USB.SerialNumber != "A50285BI" {
		t.Errorf("SerialNumber = %q, expected A50285BI", usb.USB.SerialNumber)
	}
}

func TestNewEnumerator(t *testing.T) {
	for _, backend := range []string{BackendAuto, BackendSysfs, BackendPortable, ""} {
		if _, err := NewEnumerator(backend, nil); err != nil {
			t.Errorf("NewEnumerator(%q) failed: %v", backend, err)
		}
	}
	if _, err := NewEnumerator("libusb", nil); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Expected ErrUnknownBackend, got %v", err)
	}
}
