package relay

import (
	"context"
	"io"
	"sync"
)

// DefaultChunkSize is the largest chunk moved in one step in either direction
const DefaultChunkSize = 512

// HostInput reads the host input stream on one goroutine for the whole
// process and hands chunks to whichever relay cycle is current. A cycle
// that ends never strands a blocked read: the next cycle picks up where
// it left off.
type HostInput struct {
	r         io.Reader
	chunkSize int
	start     sync.Once

	chunks chan []byte
	done   chan struct{}
	err    error // set before done is closed; nil means EOF

	mu      sync.Mutex
	pending []byte
}

// NewHostInput wraps r. Reading starts on the first call to Next.
func NewHostInput(r io.Reader, chunkSize int) *HostInput {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &HostInput{
		r:         r,
		chunkSize: chunkSize,
		chunks:    make(chan []byte),
		done:      make(chan struct{}),
	}
}

func (h *HostInput) pump() {
	defer close(h.done)
	for {
		buf := make([]byte, h.chunkSize)
		n, err := h.r.Read(buf)
		if n > 0 {
			// Unbuffered: blocks until a cycle takes the chunk
			h.chunks <- buf[:n]
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			h.err = err
			return
		}
	}
}

// Next returns the next chunk. It returns io.EOF once the stream ended,
// the read error if the stream failed, or ctx.Err() if ctx is done first.
// Requeued bytes are returned before anything new.
func (h *HostInput) Next(ctx context.Context) ([]byte, error) {
	h.start.Do(func() { go h.pump() })

	h.mu.Lock()
	if len(h.pending) > 0 {
		chunk := h.pending
		h.pending = nil
		h.mu.Unlock()
		return chunk, nil
	}
	h.mu.Unlock()

	select {
	case chunk := <-h.chunks:
		return chunk, nil
	case <-h.done:
		if h.err != nil {
			return nil, h.err
		}
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Requeue hands back bytes that were taken but not delivered, so the next
// call to Next returns them first
func (h *HostInput) Requeue(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending = append(append([]byte(nil), chunk...), h.pending...)
}
