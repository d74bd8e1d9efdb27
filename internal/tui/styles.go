package tui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent = lipgloss.Color("#00ADD8")
	colorOK     = lipgloss.Color("#00FF00")
	colorWarn   = lipgloss.Color("#FFA500")
	colorError  = lipgloss.Color("#FF0000")
	colorMuted  = lipgloss.Color("#808080")
)

// Theme holds the styles used for console output. Styles are bound to the
// writer they render to, so output that is not a terminal stays plain.
type Theme struct {
	TableHeader lipgloss.Style
	Index       lipgloss.Style
	Marker      lipgloss.Style
	Success     lipgloss.Style
	Skipped     lipgloss.Style
	Error       lipgloss.Style
	Muted       lipgloss.Style
}

// NewTheme returns the default theme for w.
func NewTheme(w io.Writer) Theme {
	r := lipgloss.NewRenderer(w)

	return Theme{
		TableHeader: r.NewStyle().
			Bold(true).
			Underline(true),
		Index: r.NewStyle().
			Foreground(colorAccent),
		Marker: r.NewStyle().
			Foreground(colorWarn).
			Bold(true),
		Success: r.NewStyle().
			Foreground(colorOK),
		Skipped: r.NewStyle().
			Foreground(colorMuted),
		Error: r.NewStyle().
			Foreground(colorError).
			Bold(true),
		Muted: r.NewStyle().
			Foreground(colorMuted),
	}
}
