package discovery

import (
	"context"
	"strconv"

	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"
)

// PortableEnumerator lists ports through go.bug.st/serial, which works on
// Linux, macOS and Windows. It does not report manufacturer strings.
type PortableEnumerator struct {
	list   func() ([]*enumerator.PortDetails, error)
	logger *zap.Logger
}

// NewPortableEnumerator creates an enumerator backed by go.bug.st/serial
func NewPortableEnumerator(logger *zap.Logger) *PortableEnumerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortableEnumerator{
		list:   enumerator.GetDetailedPortsList,
		logger: logger.With(zap.String("enumerator", "portable")),
	}
}

func (e *PortableEnumerator) List(ctx context.Context) ([]Descriptor, error) {
	details, err := e.list()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	descriptors := make([]Descriptor, 0, len(details))
	for _, port := range details {
		descriptors = append(descriptors, descriptorFromDetails(port))
	}
	e.logger.Debug("Listed ports", zap.Int("count", len(descriptors)))
	return descriptors, nil
}

func descriptorFromDetails(port *enumerator.PortDetails) Descriptor {
	d := Descriptor{Path: port.Name, Kind: KindUnknown}
	if !port.IsUSB {
		return d
	}

	vid, err := strconv.ParseUint(port.VID, 16, 16)
	if err != nil {
		return d
	}
	pid, err := strconv.ParseUint(port.PID, 16, 16)
	if err != nil {
		return d
	}

	d.Kind = KindUSB
	d.USB = &USBInfo{
		VendorID:     uint16(vid),
		ProductID:    uint16(pid),
		SerialNumber: port.SerialNumber,
		Product:      port.Product,
	}
	return d
}
