// Package device owns the open serial handle shared by the two relay paths.
package device

import (
	"errors"
	"io"
	"sync"

	"github.com/allbin/serialpipe"
)

// Handle is the raw device handle. serial.Port satisfies it.
type Handle interface {
	Read(buf []byte) (int, error)
	Write(data []byte) (int, error)
	Close() error
}

// ReadStatus classifies the result of one Session.Read
type ReadStatus int

const (
	ReadData    ReadStatus = iota // 1..N bytes arrived
	ReadEOF                       // device reported end of stream
	ReadTimeout                   // nothing within the read timeout; not an error
	ReadFailed                    // hard I/O failure
)

func (s ReadStatus) String() string {
	switch s {
	case ReadData:
		return "data"
	case ReadEOF:
		return "eof"
	case ReadTimeout:
		return "timeout"
	default:
		return "failed"
	}
}

// ReadOutcome is the result of one Session.Read. N is set for ReadData
// and Err for ReadFailed.
type ReadOutcome struct {
	Status ReadStatus
	N      int
	Err    error
}

// Session is an open device plus the path it was opened from. One reader
// and one writer use it concurrently. Every Read and Write takes the
// session lock for exactly that call, so the handle never sees two
// operations at once and a pending read delays a write by at most the
// read timeout.
type Session struct {
	mu     sync.Mutex
	handle Handle
	path   string
	closed bool
}

// NewSession wraps an already open handle
func NewSession(path string, handle Handle) *Session {
	return &Session{handle: handle, path: path}
}

// Path returns the device path, for diagnostics
func (s *Session) Path() string {
	return s.path
}

// Read performs one bounded read
func (s *Session) Read(buf []byte) ReadOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ReadOutcome{Status: ReadFailed, Err: serial.ErrPortClosed}
	}

	n, err := s.handle.Read(buf)
	switch {
	case n > 0:
		return ReadOutcome{Status: ReadData, N: n}
	case err == nil, errors.Is(err, io.EOF):
		return ReadOutcome{Status: ReadEOF}
	case errors.Is(err, serial.ErrReadTimeout):
		return ReadOutcome{Status: ReadTimeout}
	default:
		return ReadOutcome{Status: ReadFailed, Err: err}
	}
}

// Write performs one write and may accept fewer bytes than given. Writing
// to a closed session returns serial.ErrPortClosed without touching the
// handle.
func (s *Session) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, serial.ErrPortClosed
	}
	return s.handle.Write(data)
}

// Close releases the handle. It waits for an in-flight Read or Write.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return serial.ErrPortClosed
	}
	s.closed = true
	return s.handle.Close()
}
