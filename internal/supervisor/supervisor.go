// Package supervisor drives the resolve, open, relay and pause cycle and
// decides after every failure whether to try again.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/allbin/serialpipe/internal/device"
	"github.com/allbin/serialpipe/internal/discovery"
	"github.com/allbin/serialpipe/internal/relay"
	"go.uber.org/zap"
)

// DefaultDelay is the pause between reconnect attempts
const DefaultDelay = time.Second

// ErrInterrupted is returned when the run context is cancelled before the
// work is done
var ErrInterrupted = errors.New("interrupted")

// Resolver turns a selector into a concrete device
type Resolver interface {
	Resolve(ctx context.Context, sel discovery.Selector) (discovery.Descriptor, error)
}

// Relayer runs one relay cycle over an open session
type Relayer interface {
	Run(ctx context.Context, s *device.Session) relay.Outcome
}

// Config controls the reconnect policy
type Config struct {
	Selector  discovery.Selector
	Reconnect bool
	Delay     time.Duration

	// ResetAfter > 0 resets a USB device once it failed this many
	// consecutive cycles
	ResetAfter int
}

// Option customizes a Supervisor
type Option func(*Supervisor)

// WithResetter sets the function used to reset a USB device by path
func WithResetter(reset func(path string) error) Option {
	return func(s *Supervisor) {
		s.reset = reset
	}
}

// WithSleep replaces the pause between attempts
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Supervisor) {
		s.sleep = sleep
	}
}

// Supervisor owns at most one device session at a time
type Supervisor struct {
	config   Config
	resolver Resolver
	opener   device.Opener
	relay    Relayer
	reset    func(path string) error
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *zap.Logger

	retries atomic.Int64

	// consecutive failed cycles against one USB device
	streak    int
	streakFor string
	resetDone bool
}

// New creates a supervisor
func New(config Config, resolver Resolver, opener device.Opener, relayer Relayer, logger *zap.Logger, opts ...Option) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Delay <= 0 {
		config.Delay = DefaultDelay
	}
	s := &Supervisor{
		config:   config,
		resolver: resolver,
		opener:   opener,
		relay:    relayer,
		sleep:    sleepContext,
		logger:   logger.With(zap.String("component", "supervisor")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Retries returns how many failed attempts were counted so far. It never
// decreases.
func (s *Supervisor) Retries() int64 {
	return s.retries.Load()
}

// Run cycles until the work is done. It returns nil only when the device
// ended the stream outside reconnect mode. Cancelling ctx returns an error
// wrapping ErrInterrupted; any failure it will not retry is returned as is.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return s.interrupted(ctx.Err())
		}

		desc, err := s.resolver.Resolve(ctx, s.config.Selector)
		if err != nil {
			if ctx.Err() != nil {
				return s.interrupted(ctx.Err())
			}
			if !s.config.Reconnect {
				return err
			}
			s.failed("Failed to find port", discovery.Descriptor{}, err)
			if err := s.pause(ctx); err != nil {
				return s.interrupted(err)
			}
			continue
		}

		session, err := s.opener.Open(desc.Path)
		if err != nil {
			if !s.config.Reconnect {
				return err
			}
			s.failed("Failed to open port", desc, err)
			if err := s.pause(ctx); err != nil {
				return s.interrupted(err)
			}
			continue
		}

		outcome := s.relay.Run(ctx, session)
		if err := session.Close(); err != nil {
			s.logger.Debug("Failed to close port", zap.String("port", desc.Path), zap.Error(err))
		}

		switch outcome.Kind {
		case relay.Clean:
			s.streak = 0
			s.resetDone = false
			if !s.config.Reconnect {
				return nil
			}
			s.logger.Info("Port closed, reconnecting", zap.String("port", desc.Path))
		case relay.Cancelled:
			return s.interrupted(outcome.Err)
		case relay.Fatal:
			return outcome.Err
		case relay.DeviceFailed:
			if !s.config.Reconnect {
				return outcome.Err
			}
			s.failed("Connection lost", desc, outcome.Err)
			if err := s.pause(ctx); err != nil {
				return s.interrupted(err)
			}
		default:
			return fmt.Errorf("unexpected relay outcome: %v", outcome)
		}
	}
}

// failed counts one failed attempt and escalates to a USB reset when the
// same device keeps failing
func (s *Supervisor) failed(msg string, desc discovery.Descriptor, err error) {
	retries := s.retries.Add(1)
	s.logger.Warn(msg,
		zap.String("selector", s.config.Selector.String()),
		zap.Error(err),
		zap.Int64("retries", retries),
	)

	if s.config.ResetAfter <= 0 || s.reset == nil || desc.Path == "" {
		return
	}
	if desc.Path != s.streakFor {
		s.streakFor = desc.Path
		s.streak = 0
		s.resetDone = false
	}
	s.streak++
	if s.streak < s.config.ResetAfter || s.resetDone {
		return
	}

	// One reset per streak
	s.resetDone = true
	s.logger.Warn("Resetting USB device",
		zap.String("port", desc.Path),
		zap.Int("failures", s.streak),
	)
	if err := s.reset(desc.Path); err != nil {
		s.logger.Warn("USB reset failed", zap.String("port", desc.Path), zap.Error(err))
	}
}

func (s *Supervisor) interrupted(cause error) error {
	s.logger.Info("Stopped", zap.Int64("retries", s.retries.Load()))
	if cause == nil {
		return ErrInterrupted
	}
	return fmt.Errorf("%w: %w", ErrInterrupted, cause)
}

func (s *Supervisor) pause(ctx context.Context) error {
	s.logger.Debug("Reconnecting", zap.Duration("delay", s.config.Delay))
	return s.sleep(ctx, s.config.Delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
