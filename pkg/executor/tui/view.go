package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/cxvoice/pkg/report"
	"github.com/entrhq/cxvoice/pkg/scenario"
)

// View renders the run view.
func (m *model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	baseView := lipgloss.JoinVertical(lipgloss.Left,
		m.buildHeader(),
		m.buildTopStatus(),
		m.viewport.View(),
		m.buildBottomBar(),
	)
	return renderToastOverlay(baseView, m.buildToast())
}

func (m *model) buildHeader() string {
	return headerStyle.Render(fmt.Sprintf("cxvoice · %s", m.suite))
}

// buildTopStatus shows what the runner is doing, or the outcome once done.
func (m *model) buildTopStatus() string {
	if m.result != nil {
		counts := m.result.Counts()
		outcome := report.StyleStatus(m.result.Status, strings.ToUpper(string(m.result.Status)))
		return fmt.Sprintf("%s %s", outcome, tipsStyle.Render(fmt.Sprintf("%d passed · %d failed · %d skipped · %s",
			counts[scenario.StatusPassed], counts[scenario.StatusFailed], counts[scenario.StatusSkipped],
			m.result.Duration.Round(time.Millisecond))))
	}
	if m.finished {
		return tipsStyle.Render("run ended")
	}

	switch m.phase {
	case scenario.PhaseSetup:
		return m.spinner.View() + " " + runningStyle.Render("setting up sessions")
	case scenario.PhaseStep:
		for _, row := range m.steps {
			if row.status == scenario.StatusRunning {
				return m.spinner.View() + " " + runningStyle.Render(fmt.Sprintf("step %d/%d", row.index, m.total))
			}
		}
		return m.spinner.View() + " " + runningStyle.Render("running")
	case scenario.PhaseTeardown:
		return m.spinner.View() + " " + runningStyle.Render("releasing sessions")
	default:
		return m.spinner.View() + " " + tipsStyle.Render("starting")
	}
}

// renderSteps renders the step list shown in the viewport.
func (m *model) renderSteps() string {
	var b strings.Builder

	if m.setupErr != "" {
		b.WriteString(errorStyle.Render("✗ "+m.setupErr) + "\n\n")
	}

	for _, row := range m.steps {
		b.WriteString(m.renderRow(row))
		b.WriteString("\n")
		if row.status == scenario.StatusFailed && row.err != "" {
			b.WriteString(errorStyle.Render("     "+row.err) + "\n")
		}
	}

	if m.result != nil {
		for _, e := range m.result.TeardownErrors {
			b.WriteString(skippedStyle.Render("teardown: "+e) + "\n")
		}
	}
	return b.String()
}

func (m *model) renderRow(row stepRow) string {
	label := fmt.Sprintf("%2d. %s", row.index, row.name)
	switch row.status {
	case "":
		return tipsStyle.Render("○ " + label)
	case scenario.StatusRunning:
		return m.spinner.View() + " " + runningStyle.Render(label)
	case scenario.StatusPassed:
		return passedStyle.Render(report.StatusIcon(row.status)) + " " + stepStyle.Render(label) +
			tipsStyle.Render("  "+row.duration.Round(time.Millisecond).String())
	case scenario.StatusFailed:
		return errorStyle.Render(report.StatusIcon(row.status)+" "+label) +
			tipsStyle.Render("  "+row.duration.Round(time.Millisecond).String())
	case scenario.StatusSkipped:
		line := skippedStyle.Render(report.StatusIcon(row.status) + " " + label)
		if row.reason != "" {
			line += tipsStyle.Render("  (" + row.reason + ")")
		}
		return line
	default:
		return tipsStyle.Render(report.StatusIcon(row.status) + " " + label + "  " + strings.ReplaceAll(string(row.status), "_", " "))
	}
}

func (m *model) buildBottomBar() string {
	return statusBarStyle.Render("↑/↓ scroll • c copy failure • q quit")
}

func (m *model) buildToast() string {
	if m.toast == nil {
		return ""
	}
	text := m.toast.message
	if m.toast.details != "" {
		text += "\n" + tipsStyle.Render(m.toast.details)
	}
	if m.toast.isError {
		return toastErrorStyle.Render(text)
	}
	return toastStyle.Render(text)
}
