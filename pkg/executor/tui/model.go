package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/entrhq/cxvoice/pkg/scenario"
)

// model is the live view of one suite run.
type model struct {
	// Bubble Tea components
	viewport viewport.Model
	spinner  spinner.Model

	// Runner integration
	events <-chan scenario.Event
	copy   func(string) error

	// Run state
	suite     string
	total     int
	steps     []stepRow
	phase     scenario.Phase
	setupErr  string
	result    *scenario.SuiteResult
	finished  bool
	startTime time.Time

	toast *toastNotification

	// Window dimensions
	width  int
	height int
	ready  bool
}

// stepRow is one line of the step list. An empty status means pending.
type stepRow struct {
	index    int
	name     string
	status   scenario.Status
	duration time.Duration
	err      string
	reason   string
}

// eventMsg carries a runner event into the update loop
type eventMsg struct{ event scenario.Event }

// eventsClosedMsg signals that the runner has finished publishing
type eventsClosedMsg struct{}

// toastMsg triggers a toast notification
type toastMsg struct {
	message string
	details string
	isError bool
}

// toastNotification represents a temporary notification message
type toastNotification struct {
	message   string
	details   string
	isError   bool
	showUntil time.Time
}

func newModel(suite scenario.Suite, events <-chan scenario.Event, copyFn func(string) error) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = runningStyle

	rows := make([]stepRow, len(suite.Steps))
	for i, step := range suite.Steps {
		rows[i] = stepRow{index: i + 1, name: step.Name}
	}

	return &model{
		spinner: s,
		events:  events,
		copy:    copyFn,
		suite:   suite.Name,
		total:   len(suite.Steps),
		steps:   rows,
	}
}

// ShowToast displays a toast notification
func (m *model) ShowToast(message, details string, isError bool) {
	m.toast = &toastNotification{
		message:   message,
		details:   details,
		isError:   isError,
		showUntil: time.Now().Add(5 * time.Second),
	}
}
