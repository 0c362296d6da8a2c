// Package portlist renders enumerated ports for humans.
package portlist

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/allbin/serialpipe/internal/discovery"
	"github.com/allbin/serialpipe/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

const notAvailable = "N/A"

// Text writes the numbered plain-text listing
func Text(w io.Writer, ports []discovery.Descriptor) error {
	var b strings.Builder

	switch len(ports) {
	case 0:
		b.WriteString("No ports found.\n")
	case 1:
		b.WriteString("Found 1 port:\n")
	default:
		fmt.Fprintf(&b, "Found %d ports:\n", len(ports))
	}

	for i, p := range ports {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Path)
		if p.Kind != discovery.KindUSB || p.USB == nil {
			fmt.Fprintf(&b, "   Type: %s\n", discovery.KindUnknown)
			continue
		}
		fmt.Fprintf(&b, "   Type: %s\n", discovery.KindUSB)
		fmt.Fprintf(&b, "   VID: %04x PID: %04x\n", p.USB.VendorID, p.USB.ProductID)
		fmt.Fprintf(&b, "   Serial Number: %s\n", orNA(p.USB.SerialNumber))
		fmt.Fprintf(&b, "   Manufacturer: %s\n", orNA(p.USB.Manufacturer))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Table writes a styled table with one row per port
func Table(w io.Writer, ports []discovery.Descriptor) error {
	if len(ports) == 0 {
		_, err := io.WriteString(w, "No ports found.\n")
		return err
	}

	// Column widths
	portWidth := 16
	classWidth := 16
	idWidth := 10
	serialWidth := 18
	manufacturerWidth := 20

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(colors.Mauve).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(colors.Surface1)

	cellStyle := lipgloss.NewStyle().
		PaddingRight(2)

	format := fmt.Sprintf("%%-%ds %%-%ds %%-%ds %%-%ds %%-%ds", portWidth, classWidth, idWidth, serialWidth, manufacturerWidth)

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d serial port(s):\n\n", len(ports))
	b.WriteString(headerStyle.Render(fmt.Sprintf(format, "Port", "Type", "VID:PID", "Serial", "Manufacturer")))
	b.WriteString("\n")

	for _, p := range ports {
		ids, serialNumber, manufacturer := "", notAvailable, notAvailable
		if p.USB != nil {
			ids = fmt.Sprintf("%04x:%04x", p.USB.VendorID, p.USB.ProductID)
			serialNumber = orNA(p.USB.SerialNumber)
			manufacturer = orNA(p.USB.Manufacturer)
		}
		row := fmt.Sprintf(format,
			truncate(p.Path, portWidth),
			PortClass(p.Path),
			ids,
			truncate(serialNumber, serialWidth),
			truncate(manufacturer, manufacturerWidth))
		b.WriteString(cellStyle.Render(row))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// PortClass names the kind of serial hardware from the device name
func PortClass(path string) string {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasPrefix(name, "ttyusb"):
		return "USB Serial"
	case strings.HasPrefix(name, "ttyacm"):
		return "USB CDC/ACM"
	case strings.HasPrefix(name, "ttyama"):
		return "ARM Serial"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial"
	case strings.HasPrefix(name, "ttysac"):
		return "Samsung Serial"
	case strings.HasPrefix(name, "ttyths"):
		return "Tegra Serial"
	case strings.HasPrefix(name, "ttyo"):
		return "OMAP Serial"
	case strings.HasPrefix(name, "ttys"):
		return "Standard Serial"
	default:
		return "Serial Port"
	}
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 1 {
		return s[:width]
	}
	return s[:width-1] + "…"
}
