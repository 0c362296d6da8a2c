// Package config loads serialpipe settings from flags, environment
// variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/allbin/serialpipe/internal/discovery"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment variable, e.g. SERIALPIPE_BAUD_RATE
const EnvPrefix = "SERIALPIPE"

// ErrUsage marks errors caused by invalid command line or configuration
var ErrUsage = errors.New("usage error")

// Settings is the resolved configuration of one run
type Settings struct {
	Port      string `mapstructure:"port"`
	VendorID  string `mapstructure:"vendor-id"`
	ProductID string `mapstructure:"product-id"`
	BaudRate  int    `mapstructure:"baud-rate"`

	Reconnect      bool          `mapstructure:"reconnect"`
	ReconnectDelay time.Duration `mapstructure:"reconnect-delay"`
	USBResetAfter  int           `mapstructure:"usb-reset-after"`

	List       bool   `mapstructure:"list"`
	ListFormat string `mapstructure:"list-format"`
	Enumerator string `mapstructure:"enumerator"`

	BufSize      int           `mapstructure:"buf-size"`
	Flush        bool          `mapstructure:"flush"`
	ReadTimeout  time.Duration `mapstructure:"read-timeout"`
	WriteTimeout time.Duration `mapstructure:"write-timeout"`

	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
	LogFile   string `mapstructure:"log-file"`
}

// RegisterFlags adds the bridge settings to fs with their defaults
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("port", "p", "", "Serial port path (e.g. /dev/ttyUSB0)")
	fs.String("vendor-id", "", "USB vendor ID in hex (e.g. 2341)")
	fs.String("product-id", "", "USB product ID in hex (e.g. 0043)")
	fs.IntP("baud-rate", "b", 115200, "Baud rate")

	fs.BoolP("reconnect", "r", false, "Reconnect automatically when the device goes away")
	fs.Duration("reconnect-delay", time.Second, "Pause between reconnect attempts")
	fs.Int("usb-reset-after", 0, "Reset the USB device after this many consecutive failures (0 disables)")

	fs.BoolP("list", "l", false, "List available serial ports and exit")
	fs.String("list-format", "text", "Port list format: text or table")

	fs.Int("buf-size", 0, "Stdout buffer size in bytes (0 writes through)")
	fs.BoolP("flush", "f", false, "Flush stdout after every chunk")
	fs.Duration("read-timeout", 100*time.Millisecond, "Device read timeout, rounded up to whole milliseconds")
	fs.Duration("write-timeout", 5*time.Second, "Device write timeout")
}

// RegisterPersistentFlags adds the settings shared by every command
func RegisterPersistentFlags(fs *pflag.FlagSet) {
	fs.String("enumerator", discovery.BackendAuto, "Port enumerator: auto, sysfs or portable")
	fs.String("config", "", "Config file (yaml, toml or json)")
	fs.String("log-level", "warn", "Log level: debug, info, warn or error")
	fs.String("log-format", "console", "Log format: console or json")
	fs.String("log-file", "", "Write logs to this file with rotation instead of stderr")
}

// Load merges flags, environment and the config file named by --config,
// then validates the result for running the bridge. Flags set on the
// command line win over the environment, which wins over the config file.
func Load(fs *pflag.FlagSet) (*Settings, error) {
	settings, err := load(fs)
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// LoadCommon is Load for commands that only use the shared settings
func LoadCommon(fs *pflag.FlagSet) (*Settings, error) {
	settings, err := load(fs)
	if err != nil {
		return nil, err
	}
	if err := settings.validateCommon(); err != nil {
		return nil, err
	}
	return settings, nil
}

func load(fs *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: error reading config file: %w", ErrUsage, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("%w: unable to decode config: %w", ErrUsage, err)
	}
	return &settings, nil
}

// Validate checks the settings before any I/O happens. Every error wraps
// ErrUsage.
func (s *Settings) Validate() error {
	if !s.List {
		sel, err := s.Selector()
		if err != nil {
			return err
		}
		if err := sel.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
	}

	if s.BaudRate <= 0 {
		return fmt.Errorf("%w: baud-rate must be positive, got %d", ErrUsage, s.BaudRate)
	}
	if s.ReadTimeout <= 0 {
		return fmt.Errorf("%w: read-timeout must be positive, got %v", ErrUsage, s.ReadTimeout)
	}
	if s.WriteTimeout < 0 {
		return fmt.Errorf("%w: write-timeout must not be negative", ErrUsage)
	}
	if s.ReconnectDelay <= 0 {
		return fmt.Errorf("%w: reconnect-delay must be positive", ErrUsage)
	}
	if s.BufSize < 0 {
		return fmt.Errorf("%w: buf-size must not be negative", ErrUsage)
	}
	if s.USBResetAfter < 0 {
		return fmt.Errorf("%w: usb-reset-after must not be negative", ErrUsage)
	}

	if err := oneOf("list-format", s.ListFormat, "text", "table"); err != nil {
		return err
	}
	return s.validateCommon()
}

func (s *Settings) validateCommon() error {
	if err := oneOf("enumerator", s.Enumerator,
		discovery.BackendAuto, discovery.BackendSysfs, discovery.BackendPortable); err != nil {
		return err
	}
	if err := oneOf("log-format", s.LogFormat, "console", "json"); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return nil
}

// Selector builds the port selector. An explicit port wins over USB ids.
func (s *Settings) Selector() (discovery.Selector, error) {
	if s.Port != "" {
		return discovery.PathSelector(s.Port), nil
	}

	var vid, pid *uint16
	if s.VendorID != "" {
		id, err := discovery.ParseID(s.VendorID)
		if err != nil {
			return discovery.Selector{}, fmt.Errorf("%w: vendor-id: %w", ErrUsage, err)
		}
		vid = &id
	}
	if s.ProductID != "" {
		id, err := discovery.ParseID(s.ProductID)
		if err != nil {
			return discovery.Selector{}, fmt.Errorf("%w: product-id: %w", ErrUsage, err)
		}
		pid = &id
	}
	return discovery.USBSelector(vid, pid), nil
}

// HasPortAndIDs reports whether both a path and USB ids were given; the
// ids are ignored in that case
func (s *Settings) HasPortAndIDs() bool {
	return s.Port != "" && (s.VendorID != "" || s.ProductID != "")
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s must be one of %v, got %q", ErrUsage, key, allowed, value)
}
