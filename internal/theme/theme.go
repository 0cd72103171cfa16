// Package theme holds the lipgloss styles used for command output.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/bugzilla-recovery/internal/bugmail"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the title of each report block.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// PanelStyle wraps one report block.
var PanelStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// LabelStyle renders the left column of a report row.
var LabelStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Width(24)

// ValueStyle renders the right column of a report row.
var ValueStyle = lipgloss.NewStyle().
	Bold(true).
	Align(lipgloss.Right).
	Width(8)

// HelpStyle is used for hints printed after errors.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// ErrorStyle highlights fatal messages.
var ErrorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// CountStyle colours a counter: zero is muted, and warn marks counters
// that report skipped or damaged input.
func CountStyle(n int, warn bool) lipgloss.Style {
	switch {
	case n == 0:
		return ValueStyle.Foreground(ColorGray)
	case warn:
		return ValueStyle.Foreground(ColorYellow)
	default:
		return ValueStyle.Foreground(ColorGreen)
	}
}

// EligibilityStyle returns a color-coded style for an ingestion policy.
func EligibilityStyle(e bugmail.Eligibility) lipgloss.Style {
	base := lipgloss.NewStyle().Padding(0, 1)

	switch e {
	case bugmail.Authoritative:
		return base.Foreground(ColorGreen)
	case bugmail.BodyOnly:
		return base.Foreground(ColorYellow)
	default:
		return base.Foreground(ColorGray)
	}
}
