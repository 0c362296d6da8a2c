package discovery

import (
	"context"
	"strconv"

	"github.com/allbin/serialpipe"
	"go.uber.org/zap"
)

// SysfsEnumerator lists ports from /dev and reads USB identity from sysfs.
// Linux only.
type SysfsEnumerator struct {
	listPorts func() ([]string, error)
	portInfo  func(string) (*serial.PortInfo, error)
	logger    *zap.Logger
}

// NewSysfsEnumerator creates an enumerator backed by serial.ListPorts
func NewSysfsEnumerator(logger *zap.Logger) *SysfsEnumerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SysfsEnumerator{
		listPorts: serial.ListPorts,
		portInfo:  serial.GetPortInfo,
		logger:    logger.With(zap.String("enumerator", "sysfs")),
	}
}

func (e *SysfsEnumerator) List(ctx context.Context) ([]Descriptor, error) {
	paths, err := e.listPorts()
	if err != nil {
		return nil, err
	}

	descriptors := make([]Descriptor, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := e.portInfo(path)
		if err != nil {
			// Port vanished between listing and inspection
			e.logger.Debug("Skipping port", zap.String("path", path), zap.Error(err))
			continue
		}
		descriptors = append(descriptors, descriptorFromPortInfo(info))
	}
	return descriptors, nil
}

// descriptorFromPortInfo converts sysfs metadata, whose ids are hex
// strings such as "2341"
func descriptorFromPortInfo(info *serial.PortInfo) Descriptor {
	d := Descriptor{Path: info.Path, Kind: KindUnknown}
	if !info.IsUSB() {
		return d
	}

	vid, err := strconv.ParseUint(info.VendorID, 16, 16)
	if err != nil {
		return d
	}
	pid, err := strconv.ParseUint(info.ProductID, 16, 16)
	if err != nil {
		return d
	}

	d.Kind = KindUSB
	d.USB = &USBInfo{
		VendorID:     uint16(vid),
		ProductID:    uint16(pid),
		SerialNumber: info.SerialNumber,
		Manufacturer: info.Manufacturer,
		Product:      info.Product,
	}
	return d
}
