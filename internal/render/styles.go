// Package render turns analysis and debate results into terminal output.
package render

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	colorSuccess = lipgloss.Color("#10B981") // Green
	colorWarning = lipgloss.Color("#F59E0B") // Amber
	colorError   = lipgloss.Color("#EF4444") // Red
	colorMuted   = lipgloss.Color("#9CA3AF") // Muted gray
)

var (
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning)
	styleError   = lipgloss.NewStyle().Foreground(colorError)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleHeader  = lipgloss.NewStyle().Bold(true)
)

// StatusIcon renders a colored check or cross for liveness listings.
func StatusIcon(ok bool) string {
	if ok {
		return styleSuccess.Render("✓")
	}
	return styleError.Render("✗")
}

// WarnIcon renders a colored warning marker.
func WarnIcon() string {
	return styleWarning.Render("⚠")
}

// Header renders a bold section header.
func Header(s string) string {
	return styleHeader.Render(s)
}

// Muted renders de-emphasized text.
func Muted(s string) string {
	return styleMuted.Render(s)
}
