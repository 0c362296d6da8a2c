/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/allbin/serialpipe/internal/config"
	"github.com/allbin/serialpipe/internal/tui/picker"
	"github.com/spf13/cobra"
)

func newPickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Choose a serial port interactively",
		Long: `Show the available serial ports and choose one with the keyboard.

The picker is drawn on stderr and the chosen path is printed on stdout,
so it can feed the bridge directly:

  serialpipe -p "$(serialpipe pick)"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadCommon(cmd.Flags())
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

			ports, err := enum.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("error listing ports: %w", err)
			}

			chosen, err := picker.Run(cmd.Context(), ports, cmd.InOrStdin(), os.Stderr)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), chosen.Path)
			return nil
		},
	}
}
