package styles

import (
	"github.com/allbin/serialpipe/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Header styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	// Table styles
	TableBaseStyle = lipgloss.NewStyle().
			Foreground(colors.Text).
			BorderForeground(colors.Surface1).
			Align(lipgloss.Left)

	TableHighlightStyle = lipgloss.NewStyle().
				Foreground(colors.Text).
				Background(colors.Surface1)

	// Port kind styles
	USBStyle = lipgloss.NewStyle().
			Foreground(colors.Green)

	UnknownStyle = lipgloss.NewStyle().
			Foreground(colors.Overlay1)

	// Info styles
	InfoStyle = lipgloss.NewStyle().
			Foreground(colors.Subtext0)
)

// KindStyle returns the style used for a port of the given kind
func KindStyle(usb bool) lipgloss.Style {
	if usb {
		return USBStyle
	}
	return UnknownStyle
}
