// Package tui provides a live terminal view of a suite run: a step list
// that fills in as the runner reports progress, the final outcome, and a
// shortcut that copies the failure detail to the clipboard.
//
// The package is split into:
// - executor.go: program lifecycle and the runner event channel
// - model.go: model structure and messages
// - events.go: runner event processing
// - update.go: Bubble Tea Update function
// - view.go: Bubble Tea View function and rendering
// - overlay.go: toast overlay
// - styles.go: colors and styles
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/cxvoice/pkg/scenario"
)

// eventBuffer lets the runner get ahead of rendering by a few events.
const eventBuffer = 64

// RunFunc executes the suite. The context is cancelled if the user quits
// before the run ends.
type RunFunc func(ctx context.Context) (*scenario.SuiteResult, error)

// Executor shows a suite run in the terminal.
type Executor struct {
	suite  scenario.Suite
	events chan scenario.Event
	opts   []tea.ProgramOption
}

// NewExecutor creates a TUI executor for suite.
func NewExecutor(suite scenario.Suite) *Executor {
	return &Executor{
		suite:  suite,
		events: make(chan scenario.Event, eventBuffer),
		opts:   []tea.ProgramOption{tea.WithAltScreen()},
	}
}

// Sink returns the sink the runner must publish to.
func (e *Executor) Sink() scenario.Sink {
	return scenario.ChannelSink(e.events)
}

// Run starts the UI and run, and blocks until the user exits. The run keeps
// its own result; quitting early cancels it and waits for teardown.
func (e *Executor) Run(ctx context.Context, run RunFunc) (*scenario.SuiteResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		result *scenario.SuiteResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		defer close(e.events)
		result, err := run(ctx)
		done <- outcome{result: result, err: err}
	}()

	m := newModel(e.suite, e.events, clipboard.WriteAll)
	program := tea.NewProgram(m, e.opts...)
	_, uiErr := program.Run()

	cancel()
	// Drain so a blocked sink can finish teardown.
	go func() {
		for range e.events {
		}
	}()
	out := <-done

	if uiErr != nil {
		uiErr = fmt.Errorf("failed to run TUI program: %w", uiErr)
	}
	return out.result, errors.Join(out.err, uiErr)
}
