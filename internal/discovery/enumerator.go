package discovery

import (
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

// Enumerator backend names accepted by NewEnumerator
const (
	BackendAuto     = "auto"
	BackendSysfs    = "sysfs"
	BackendPortable = "portable"
)

var ErrUnknownBackend = errors.New("unknown enumerator backend")

// NewEnumerator returns the enumerator for a backend name. "auto" picks
// sysfs on Linux and the portable backend elsewhere.
func NewEnumerator(backend string, logger *zap.Logger) (Enumerator, error) {
	switch backend {
	case BackendAuto, "":
		if runtime.GOOS == "linux" {
			return NewSysfsEnumerator(logger), nil
		}
		return NewPortableEnumerator(logger), nil
	case BackendSysfs:
		return NewSysfsEnumerator(logger), nil
	case BackendPortable:
		return NewPortableEnumerator(logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
