package relay

import (
	"errors"
	"fmt"
)

var (
	ErrHostInput  = errors.New("host input failed")
	ErrHostOutput = errors.New("host output failed")
)

// Kind says how a relay cycle ended
type Kind int

const (
	// Clean: the device reported end of stream
	Clean Kind = iota
	// DeviceFailed: a hard device read or write error; recoverable
	DeviceFailed
	// Fatal: the host input or output failed; the process cannot continue
	Fatal
	// Cancelled: the caller's context ended the cycle
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case Clean:
		return "clean"
	case DeviceFailed:
		return "device failed"
	case Fatal:
		return "fatal"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Outcome is the result of one relay cycle. Err is nil only for Clean.
type Outcome struct {
	Kind Kind
	Err  error
}

func (o Outcome) String() string {
	if o.Err == nil {
		return o.Kind.String()
	}
	return fmt.Sprintf("%s: %v", o.Kind, o.Err)
}
