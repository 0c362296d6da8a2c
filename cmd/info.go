/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/allbin/serialpipe"
	"github.com/spf13/cobra"
)

// getPortInfo is replaced in tests
var getPortInfo = serial.GetPortInfo

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <port>",
		Short: "Display detailed information about a serial port",
		Long: `Display detailed information about a serial port including USB metadata.

Examples:
  serialpipe info /dev/ttyUSB0
  serialpipe info /dev/ttyACM0

For USB devices, this displays vendor/product IDs, serial numbers, interface
numbers, and other USB-specific metadata extracted from sysfs. The vendor
and product IDs shown here are the values --vendor-id and --product-id
expect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := getPortInfo(args[0])
			if err != nil {
				return fmt.Errorf("error getting port info: %w", err)
			}
			printPortInfo(cmd.OutOrStdout(), info)
			return nil
		},
	}
}

func printPortInfo(w io.Writer, info *serial.PortInfo) {
	var b strings.Builder

	fmt.Fprintf(&b, "Port Information: %s\n\n", info.Path)
	fmt.Fprintf(&b, "  Name:        %s\n", info.Name)
	fmt.Fprintf(&b, "  Description: %s\n", info.Description)

	// USB Device Information
	if info.IsUSB() {
		b.WriteString("\nUSB Device Information:\n")
		fields := []struct {
			label string
			value string
		}{
			{"Vendor ID:   ", info.VendorID},
			{"Product ID:  ", info.ProductID},
			{"Serial:      ", info.SerialNumber},
			{"Interface:   ", info.InterfaceNumber},
			{"Bus:         ", info.BusNumber},
			{"Device:      ", info.DeviceNumber},
			{"Manufacturer:", info.Manufacturer},
			{"Product:     ", info.Product},
		}
		for _, f := range fields {
			if f.value != "" {
				fmt.Fprintf(&b, "  %s %s\n", f.label, f.value)
			}
		}
	}

	io.WriteString(w, b.String())
}
