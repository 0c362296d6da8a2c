/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/allbin/serialpipe"
	"github.com/allbin/serialpipe/internal/config"
	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	resetCmd := &cobra.Command{
		Use:   "reset <port|serial>",
		Short: "Reset a USB serial device",
		Long: `Perform a USB-level reset on a serial device. This can recover devices
that are hung or unresponsive without physically unplugging them.

The device will re-enumerate after reset, which may cause the port path
to change (e.g., /dev/ttyUSB0 might become /dev/ttyUSB1). Selecting the
device with --vendor-id/--product-id keeps working across a reset.

The bridge can do this on its own: --usb-reset-after N resets the device
once it failed N times in a row in reconnect mode.

Requirements:
- usbreset utility must be installed (from usbutils package)
- Root/sudo permissions required for USB operations

Examples:
  sudo serialpipe reset /dev/ttyUSB0          # Reset by port path
  sudo serialpipe reset --serial NC7ILXW1    # Reset by serial number`,
		Args: func(cmd *cobra.Command, args []string) error {
			serialFlag, _ := cmd.Flags().GetString("serial")
			if serialFlag == "" && len(args) != 1 {
				return fmt.Errorf("%w: requires either a port path argument or --serial flag", config.ErrUsage)
			}
			if serialFlag != "" && len(args) > 0 {
				return fmt.Errorf("%w: cannot specify both port path and --serial flag", config.ErrUsage)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !serial.IsUSBResetAvailable() {
				return fmt.Errorf("%w (install with: sudo apt-get install usbutils)", serial.ErrUSBResetNotAvailable)
			}

			out := cmd.OutOrStdout()
			serialFlag, _ := cmd.Flags().GetString("serial")

			var err error
			if serialFlag != "" {
				fmt.Fprintf(out, "Resetting USB device with serial: %s\n", serialFlag)
				err = serial.ResetUSBDeviceBySerial(serialFlag)
			} else {
				fmt.Fprintf(out, "Resetting USB device: %s\n", args[0])
				err = serial.ResetUSBDevice(args[0])
			}

			if err != nil {
				if errors.Is(err, serial.ErrUSBInfoNotAvailable) {
					return fmt.Errorf("%w: this device does not appear to be a USB device", err)
				}
				return err
			}

			fmt.Fprintln(out, "USB device reset successfully")
			fmt.Fprintln(out, "Device will re-enumerate (port path may change)")
			fmt.Fprintln(out, "\nUse 'serialpipe --list' to see updated device list")
			return nil
		},
	}

	resetCmd.Flags().StringP("serial", "s", "", "Reset device by serial number")
	return resetCmd
}
