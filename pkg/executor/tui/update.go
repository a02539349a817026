package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Init starts the spinner and the event pump.
func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

// Update handles all state updates for the run view.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalculateLayout()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "c":
			cmds = append(cmds, m.copyFailure())
		default:
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			cmds = append(cmds, vpCmd)
		}

	case spinner.TickMsg:
		// Stop ticking once the run is over.
		if !m.finished {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case eventMsg:
		m.handleEvent(msg.event)
		cmds = append(cmds, waitForEvent(m.events))

	case eventsClosedMsg:
		m.finished = true

	case toastMsg:
		m.ShowToast(msg.message, msg.details, msg.isError)
	}

	if m.toast != nil && time.Now().After(m.toast.showUntil) {
		m.toast = nil
	}
	m.refresh()
	return m, tea.Batch(cmds...)
}

// copyFailure copies the failure detail to the clipboard and reports the
// outcome as a toast.
func (m *model) copyFailure() tea.Cmd {
	detail := m.failureDetail()
	copyFn := m.copy
	return func() tea.Msg {
		if detail == "" {
			return toastMsg{message: "No failure to copy"}
		}
		if copyFn == nil {
			return toastMsg{message: "Clipboard unavailable", isError: true}
		}
		if err := copyFn(detail); err != nil {
			return toastMsg{message: "Copy failed", details: err.Error(), isError: true}
		}
		return toastMsg{message: "Copied failure detail"}
	}
}

// recalculateLayout sizes the step viewport between the header and the
// status bar.
func (m *model) recalculateLayout() {
	height := m.height - 4
	if height < 1 {
		height = 1
	}
	if !m.ready {
		m.viewport = viewport.New(m.width, height)
		m.ready = true
		return
	}
	m.viewport.Width = m.width
	m.viewport.Height = height
}

func (m *model) refresh() {
	if m.ready {
		m.viewport.SetContent(m.renderSteps())
	}
}
