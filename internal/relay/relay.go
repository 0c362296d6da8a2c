// Package relay moves bytes between the host streams and an open device
// session until the session ends.
package relay

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/allbin/serialpipe"
	"github.com/allbin/serialpipe/internal/device"
	"go.uber.org/zap"
)

// Options configures a Relay
type Options struct {
	Input  *HostInput
	Output io.Writer

	// Flush pushes host output after every chunk written to it
	Flush bool

	// BufSize > 0 buffers host output; the buffer is flushed when a
	// cycle ends and after every chunk when Flush is set
	BufSize int

	// ChunkSize bounds a single device read; DefaultChunkSize when zero
	ChunkSize int
}

type flusher interface {
	Flush() error
}

// Relay runs one relay cycle per session. The host streams outlive every
// cycle.
type Relay struct {
	input     *HostInput
	output    io.Writer
	flush     bool
	chunkSize int
	logger    *zap.Logger
}

// New creates a relay over the host streams in opts
func New(opts Options, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	output := opts.Output
	if opts.BufSize > 0 {
		output = bufio.NewWriterSize(output, opts.BufSize)
	}
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Relay{
		input:     opts.Input,
		output:    output,
		flush:     opts.Flush,
		chunkSize: chunkSize,
		logger:    logger.With(zap.String("component", "relay")),
	}
}

// Run forwards bytes in both directions until the device reports end of
// stream, either side fails, or ctx is done. Both paths have returned by
// the time Run does, so the caller may close the session right away.
func (r *Relay) Run(ctx context.Context, s *device.Session) Outcome {
	cycleCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := r.logger.With(zap.String("port", s.Path()))
	log.Debug("Relay started")

	inputDone := make(chan error, 1)
	go func() { inputDone <- r.forwardInput(cycleCtx, s) }()

	outputDone := make(chan Outcome, 1)
	go func() { outputDone <- r.forwardOutput(cycleCtx, s) }()

	var outcome Outcome
	select {
	case outcome = <-outputDone:
		cancel()
		if err := <-inputDone; errors.Is(err, ErrHostInput) && outcome.Kind != Fatal {
			outcome = Outcome{Kind: Fatal, Err: err}
		}
	case err := <-inputDone:
		if err == nil {
			// Host input ended or the cycle was cancelled; the output path
			// decides how the cycle ends
			outcome = <-outputDone
			break
		}
		cancel()
		outcome = <-outputDone
		switch {
		case errors.Is(err, ErrHostInput):
			outcome = Outcome{Kind: Fatal, Err: err}
		case outcome.Kind != Fatal:
			outcome = Outcome{Kind: DeviceFailed, Err: err}
		}
	}

	if err := r.flushOutput(); err != nil && outcome.Kind != Fatal {
		outcome = Outcome{Kind: Fatal, Err: err}
	}

	log.Debug("Relay finished", zap.Stringer("outcome", outcome))
	return outcome
}

// forwardInput copies host input to the device. It returns nil when host
// input is exhausted or the cycle ends, an ErrHostInput error when host
// input fails, and any other error for a device write failure.
func (r *Relay) forwardInput(ctx context.Context, s *device.Session) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		chunk, err := r.input.Next(ctx)
		switch {
		case err == io.EOF:
			r.logger.Debug("Host input closed")
			return nil
		case err != nil && ctx.Err() != nil:
			return nil
		case err != nil:
			return fmt.Errorf("%w: %w", ErrHostInput, err)
		}

		for len(chunk) > 0 {
			if ctx.Err() != nil {
				r.input.Requeue(chunk)
				return nil
			}

			n, err := s.Write(chunk)
			chunk = chunk[n:]
			if err == nil && n == 0 {
				err = io.ErrShortWrite
			}
			if err != nil {
				r.input.Requeue(chunk)
				if ctx.Err() != nil && errors.Is(err, serial.ErrPortClosed) {
					return nil
				}
				r.logger.Warn("Failed to write to port",
					zap.String("port", s.Path()),
					zap.Error(err),
				)
				return fmt.Errorf("write to %s: %w", s.Path(), err)
			}
		}
	}
}

// forwardOutput copies device data to host output until the device ends
// the stream or fails
func (r *Relay) forwardOutput(ctx context.Context, s *device.Session) Outcome {
	buf := make([]byte, r.chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return Outcome{Kind: Cancelled, Err: err}
		}

		res := s.Read(buf)
		switch res.Status {
		case device.ReadTimeout:
			continue
		case device.ReadEOF:
			r.logger.Debug("Port reported end of stream", zap.String("port", s.Path()))
			return Outcome{Kind: Clean}
		case device.ReadFailed:
			r.logger.Warn("Failed to read from port",
				zap.String("port", s.Path()),
				zap.Error(res.Err),
			)
			return Outcome{Kind: DeviceFailed, Err: fmt.Errorf("read from %s: %w", s.Path(), res.Err)}
		}

		if _, err := r.output.Write(buf[:res.N]); err != nil {
			return Outcome{Kind: Fatal, Err: fmt.Errorf("%w: %w", ErrHostOutput, err)}
		}
		if r.flush {
			if err := r.flushOutput(); err != nil {
				return Outcome{Kind: Fatal, Err: err}
			}
		}
	}
}

func (r *Relay) flushOutput() error {
	f, ok := r.output.(flusher)
	if !ok {
		return nil
	}
	if err := f.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrHostOutput, err)
	}
	return nil
}
