/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/allbin/serialpipe"
	"github.com/allbin/serialpipe/internal/config"
	"github.com/allbin/serialpipe/internal/device"
	"github.com/allbin/serialpipe/internal/discovery"
	"github.com/allbin/serialpipe/internal/logging"
	"github.com/allbin/serialpipe/internal/portlist"
	"github.com/allbin/serialpipe/internal/relay"
	"github.com/allbin/serialpipe/internal/supervisor"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Exit codes
const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 2
	exitInterrupted = 130
)

// newEnumerator is replaced in tests
var newEnumerator = discovery.NewEnumerator

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "serialpipe",
		Short: "Bridge stdin and stdout to a serial device",
		Long: `Bridge the standard input and output of this process to a serial device.

Bytes read from stdin are written to the device and bytes read from the
device are written to stdout. Logs go to stderr. The device is chosen by
path or found by USB vendor and/or product ID.

With --reconnect the bridge survives the device going away: it finds the
device again, reopens it and carries on.

Examples:
  serialpipe -p /dev/ttyUSB0
  serialpipe --vendor-id 2341 --product-id 0043 -b 9600
  serialpipe --vendor-id 0x0403 --reconnect --flush
  serialpipe --list
  serialpipe --list --list-format table

Every flag can also be set as SERIALPIPE_<FLAG> in the environment
(e.g. SERIALPIPE_BAUD_RATE=9600) or in the file given with --config.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: unexpected argument %q", config.ErrUsage, args[0])
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBridge,
	}

	config.RegisterFlags(rootCmd.Flags())
	config.RegisterPersistentFlags(rootCmd.PersistentFlags())
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", config.ErrUsage, err)
	})

	rootCmd.AddCommand(newInfoCmd(), newPickCmd(), newResetCmd())
	return rootCmd
}

// Execute runs the command line and returns the process exit code
func Execute() int {
	return execute(newRootCmd(), os.Args[1:])
}

func execute(rootCmd *cobra.Command, args []string) int {
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, config.ErrUsage):
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\nRun '%s --help' for usage.\n", err, rootCmd.Name())
		return exitUsage
	case errors.Is(err, supervisor.ErrInterrupted):
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Interrupted")
		return exitInterrupted
	default:
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return exitFailure
	}
}

func runBridge(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(settings)
	if err != nil {
		return err
	}
	defer logger.Sync()

	enum, err := newEnumerator(settings.Enumerator, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if settings.List {
		return listPorts(ctx, cmd.OutOrStdout(), enum, settings.ListFormat)
	}

	if settings.HasPortAndIDs() {
		logger.Warn("Both a port and USB IDs were given, using the port",
			zap.String("port", settings.Port),
		)
	}
	sel, err := settings.Selector()
	if err != nil {
		return err
	}

	opener := device.NewPortOpener(device.Config{
		BaudRate:     settings.BaudRate,
		ReadTimeout:  settings.ReadTimeout,
		WriteTimeout: settings.WriteTimeout,
	}, logger)

	bridge := relay.New(relay.Options{
		Input:   relay.NewHostInput(cmd.InOrStdin(), relay.DefaultChunkSize),
		Output:  cmd.OutOrStdout(),
		Flush:   settings.Flush,
		BufSize: settings.BufSize,
	}, logger)

	var opts []supervisor.Option
	if settings.USBResetAfter > 0 {
		opts = append(opts, supervisor.WithResetter(serial.ResetUSBDevice))
	}

	sup := supervisor.New(supervisor.Config{
		Selector:   sel,
		Reconnect:  settings.Reconnect,
		Delay:      settings.ReconnectDelay,
		ResetAfter: settings.USBResetAfter,
	}, discovery.NewResolver(enum, logger), opener, bridge, logger, opts...)

	return sup.Run(ctx)
}

func listPorts(ctx context.Context, w io.Writer, enum discovery.Enumerator, format string) error {
	ports, err := enum.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing ports: %w", err)
	}
	if format == "table" {
		return portlist.Table(w, ports)
	}
	return portlist.Text(w, ports)
}

func newLogger(settings *config.Settings) (*zap.Logger, error) {
	return logging.New(logging.Config{
		Level:  settings.LogLevel,
		Format: settings.LogFormat,
		File:   settings.LogFile,
	})
}
