package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/cxvoice/pkg/scenario"
)

var (
	salmonPink  = lipgloss.Color("#FFB3BA")
	mintGreen   = lipgloss.Color("#A8E6CF")
	amber       = lipgloss.Color("#FDE68A")
	mutedGray   = lipgloss.Color("#6B7280")
	brightWhite = lipgloss.Color("#F9FAFB")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	stepStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(salmonPink).
			Padding(0, 1)

	statusStyles = map[scenario.Status]lipgloss.Style{
		scenario.StatusPassed:   lipgloss.NewStyle().Foreground(mintGreen).Bold(true),
		scenario.StatusFailed:   lipgloss.NewStyle().Foreground(salmonPink).Bold(true),
		scenario.StatusSkipped:  lipgloss.NewStyle().Foreground(amber),
		scenario.StatusNotRun:   lipgloss.NewStyle().Foreground(mutedGray),
		scenario.StatusFiltered: lipgloss.NewStyle().Foreground(mutedGray).Italic(true),
	}
)

// StatusIcon returns the console glyph for status.
func StatusIcon(status scenario.Status) string {
	switch status {
	case scenario.StatusPassed:
		return "✓"
	case scenario.StatusFailed:
		return "✗"
	case scenario.StatusSkipped:
		return "↷"
	case scenario.StatusFiltered:
		return "·"
	case scenario.StatusRunning:
		return "…"
	default:
		return "-"
	}
}

// StyleStatus renders text in the color of status.
func StyleStatus(status scenario.Status, text string) string {
	style, ok := statusStyles[status]
	if !ok {
		return text
	}
	return style.Render(text)
}

// Summary renders the end-of-run summary box. width bounds the box; zero
// lets it size to content.
func Summary(result *scenario.SuiteResult, width int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Suite %s", result.Suite)))
	b.WriteString(" ")
	b.WriteString(StyleStatus(result.Status, strings.ToUpper(string(result.Status))))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("run %s · %s", result.RunID, result.Duration.Round(time.Millisecond))))
	b.WriteString("\n\n")

	for _, s := range result.Steps {
		icon := StyleStatus(s.Status, StatusIcon(s.Status))
		line := fmt.Sprintf("%s %2d. %s", icon, s.Index, stepStyle.Render(s.Name))
		switch s.Status {
		case scenario.StatusPassed, scenario.StatusFailed:
			line += mutedStyle.Render(fmt.Sprintf("  %s", s.Duration.Round(time.Millisecond)))
		case scenario.StatusSkipped:
			if s.SkipReason != "" {
				line += mutedStyle.Render("  (" + s.SkipReason + ")")
			}
		}
		b.WriteString(line + "\n")
		if s.Status == scenario.StatusFailed {
			b.WriteString(StyleStatus(scenario.StatusFailed, "    "+s.Error) + "\n")
		}
	}

	if result.Error != "" {
		if _, stepFailed := result.Failed(); !stepFailed {
			b.WriteString("\n" + StyleStatus(scenario.StatusFailed, result.Error) + "\n")
		}
	}
	for _, e := range result.TeardownErrors {
		b.WriteString(StyleStatus(scenario.StatusSkipped, "teardown: "+e) + "\n")
	}

	counts := result.Counts()
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d passed · %d failed · %d skipped · %d not run · %d filtered · %d calls",
		counts[scenario.StatusPassed], counts[scenario.StatusFailed], counts[scenario.StatusSkipped],
		counts[scenario.StatusNotRun], counts[scenario.StatusFiltered], len(result.Calls))))

	box := boxStyle
	if width > 4 {
		box = box.Width(width - 2)
	}
	return box.Render(b.String())
}
