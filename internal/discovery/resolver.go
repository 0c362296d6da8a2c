package discovery

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNotFound is returned when no enumerated port matches a USB selector
var ErrNotFound = errors.New("port not found")

// Resolver maps a Selector to the device path to open
type Resolver struct {
	enumerator Enumerator
	logger     *zap.Logger
}

// NewResolver creates a resolver backed by the given enumerator
func NewResolver(enumerator Enumerator, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		enumerator: enumerator,
		logger:     logger.With(zap.String("component", "resolver")),
	}
}

// Resolve returns the descriptor for sel. Path selectors resolve to
// themselves without enumerating. USB selectors enumerate the visible
// ports and take the first match in enumeration order.
func (r *Resolver) Resolve(ctx context.Context, sel Selector) (Descriptor, error) {
	if err := sel.Validate(); err != nil {
		return Descriptor{}, err
	}
	if !sel.IsUSB() {
		return Descriptor{Path: sel.Path, Kind: KindUnknown}, nil
	}

	ports, err := r.enumerator.List(ctx)
	if err != nil {
		return Descriptor{}, fmt.Errorf("failed to enumerate ports: %w", err)
	}
	r.logger.Debug("Enumerated ports", zap.Int("count", len(ports)), zap.Stringer("selector", sel))

	for _, port := range ports {
		if port.Matches(sel) {
			r.logger.Debug("Resolved port", zap.String("path", port.Path))
			return port, nil
		}
	}
	return Descriptor{}, fmt.Errorf("%w: %s", ErrNotFound, sel)
}
