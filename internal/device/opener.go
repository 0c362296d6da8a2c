package device

import (
	"time"

	"github.com/allbin/serialpipe"
	"go.uber.org/zap"
)

// Config holds the transfer parameters applied on every open
type Config struct {
	BaudRate     int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (c Config) options() []serial.Option {
	return []serial.Option{
		serial.WithBaudRate(c.BaudRate),
		serial.WithReadTimeout(c.ReadTimeout),
		serial.WithWriteTimeout(c.WriteTimeout),
	}
}

// Opener opens a device session for a resolved path
type Opener interface {
	Open(path string) (*Session, error)
}

// PortOpener opens sessions on real serial ports. It never retries; a
// failed open is reported to the caller as is.
type PortOpener struct {
	config Config
	open   func(device string, opts ...serial.Option) (serial.Port, error)
	logger *zap.Logger
}

// NewPortOpener creates an opener using serial.Open
func NewPortOpener(config Config, logger *zap.Logger) *PortOpener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortOpener{
		config: config,
		open:   serial.Open,
		logger: logger.With(zap.String("component", "device")),
	}
}

func (o *PortOpener) Open(path string) (*Session, error) {
	o.logger.Info("Opening port",
		zap.String("port", path),
		zap.Int("baud_rate", o.config.BaudRate),
	)

	port, err := o.open(path, o.config.options()...)
	if err != nil {
		return nil, err
	}
	return NewSession(path, port), nil
}
