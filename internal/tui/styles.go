// Package tui provides the live terminal dashboard.
//
// The TUI uses Bubble Tea for the application framework and Lipgloss for
// styling. It renders the stabilized view model: the damped emotion label,
// the stress timeline, active alerts, connection state, and the poll-merged
// blink/lip/voice panels.
package tui

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#06B6D4") // Cyan

	colorSuccess = lipgloss.Color("#10B981") // Green
	colorWarning = lipgloss.Color("#F59E0B") // Amber
	colorError   = lipgloss.Color("#EF4444") // Red

	colorText      = lipgloss.Color("#E5E7EB") // Light gray
	colorTextMuted = lipgloss.Color("#9CA3AF") // Medium gray
	colorBorder    = lipgloss.Color("#374151") // Border gray
)

// =============================================================================
// Styles
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(colorSuccess).
		Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	errStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	alertStyle = lipgloss.NewStyle().
			Foreground(colorWarning)
)

// stateStyle picks a style for a connection state label.
func stateStyle(open, processing bool) lipgloss.Style {
	switch {
	case processing:
		return okStyle
	case open:
		return warnStyle
	default:
		return errStyle
	}
}
