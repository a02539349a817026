package tui

import "github.com/charmbracelet/lipgloss"

// Color Palette
// This is the single source of truth for all TUI colors.
var (
	salmonPink  = lipgloss.Color("#FFB3BA") // Soft pastel salmon pink - primary accent, failures
	coralPink   = lipgloss.Color("#FFCCCB") // Lighter coral accent - running step
	mintGreen   = lipgloss.Color("#A8E6CF") // Soft mint green - passed
	amber       = lipgloss.Color("#FDE68A") // Soft amber - skipped
	mutedGray   = lipgloss.Color("#6B7280") // Muted gray - secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // Bright white - primary text
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	tipsStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	stepStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	runningStyle = lipgloss.NewStyle().
			Foreground(coralPink).
			Bold(true)

	passedStyle = lipgloss.NewStyle().
			Foreground(mintGreen)

	skippedStyle = lipgloss.NewStyle().
			Foreground(amber)

	errorStyle = lipgloss.NewStyle().
			Foreground(salmonPink)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	toastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mintGreen).
			Padding(0, 1)

	toastErrorStyle = toastStyle.
			BorderForeground(salmonPink)
)
