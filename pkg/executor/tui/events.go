package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/cxvoice/pkg/scenario"
)

// waitForEvent reads the next runner event. It reports eventsClosedMsg once
// the channel is closed.
func waitForEvent(ch <-chan scenario.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{event: e}
	}
}

// handleEvent applies e to the run state.
func (m *model) handleEvent(e scenario.Event) {
	switch e.Type {
	case scenario.EventSuiteStarted:
		m.phase = scenario.PhaseSetup
		if e.Total > 0 {
			m.total = e.Total
		}
	case scenario.EventStepStarted:
		m.phase = scenario.PhaseStep
		if row := m.row(e.Index); row != nil {
			row.status = scenario.StatusRunning
		}
	case scenario.EventStepPassed, scenario.EventStepSkipped:
		if row := m.row(e.Index); row != nil {
			row.status = e.Status
			row.duration = e.Duration
		}
	case scenario.EventStepFailed:
		msg := ""
		if e.Err != nil {
			msg = e.Err.Error()
		}
		if e.Phase == scenario.PhaseSetup {
			m.setupErr = msg
			return
		}
		if row := m.row(e.Index); row != nil {
			row.status = scenario.StatusFailed
			row.duration = e.Duration
			row.err = msg
		}
	case scenario.EventSuiteFinished:
		m.phase = scenario.PhaseTeardown
		m.applyResult(e.Result)
	}
}

// applyResult replaces the row state with the final record, which also
// carries filtered and not-run steps.
func (m *model) applyResult(result *scenario.SuiteResult) {
	if result == nil {
		return
	}
	m.result = result
	m.finished = true
	for _, s := range result.Steps {
		row := m.row(s.Index)
		if row == nil {
			continue
		}
		row.status = s.Status
		row.duration = s.Duration
		row.err = s.Error
		row.reason = s.SkipReason
	}
}

func (m *model) row(index int) *stepRow {
	if index < 1 || index > len(m.steps) {
		return nil
	}
	return &m.steps[index-1]
}

// failureDetail is the text copied to the clipboard: the failing step, its
// error and the diagnostics written for it.
func (m *model) failureDetail() string {
	var b strings.Builder
	if m.result != nil {
		fmt.Fprintf(&b, "suite %s run %s\n", m.result.Suite, m.result.RunID)
		if failed, ok := m.result.Failed(); ok {
			fmt.Fprintf(&b, "step %d: %s\n%s\n", failed.Index, failed.Name, failed.Error)
			for _, d := range failed.Diagnostics {
				fmt.Fprintf(&b, "  %s\n", d)
			}
			return b.String()
		}
		if m.result.Error != "" {
			b.WriteString(m.result.Error + "\n")
			for _, d := range m.result.Diagnostics {
				fmt.Fprintf(&b, "  %s\n", d)
			}
			return b.String()
		}
		return ""
	}

	if m.setupErr != "" {
		return m.setupErr + "\n"
	}
	for _, row := range m.steps {
		if row.status == scenario.StatusFailed {
			return fmt.Sprintf("step %d: %s\n%s\n", row.index, row.name, row.err)
		}
	}
	return ""
}
