package colors

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha colors used by the port listing and picker
var (
	Surface0 = lipgloss.Color("#313244") // Title background
	Surface1 = lipgloss.Color("#45475a") // Borders, highlighted row
	Overlay1 = lipgloss.Color("#7f849c") // Dimmed text
	Subtext0 = lipgloss.Color("#a6adc8")
	Text     = lipgloss.Color("#cdd6f4") // Main text

	Green = lipgloss.Color("#a6e3a1") // USB ports
	Mauve = lipgloss.Color("#cba6f7") // Headers
)
