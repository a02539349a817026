// Package scenario runs suites: an ordered chain of named steps sharing one
// Harness that is set up once and torn down once.
//
// Steps execute strictly in declaration order and each assumes every earlier
// step succeeded. The first failing step aborts the rest of the suite. Steps
// may be skipped or filtered out without changing the order of the others.
package scenario

import (
	"context"
	"fmt"
	"time"
)

// StepFunc is the body of a step.
type StepFunc func(ctx context.Context, h *Harness) error

// Step is one named unit of work in a suite.
type Step struct {
	Name string
	// Skip excludes the step from the run; SkipReason is reported.
	Skip       bool
	SkipReason string
	// Timeout overrides the runner's per-step timeout when positive.
	Timeout time.Duration
	Run     StepFunc
}

// Suite is a serial chain of steps with shared setup and teardown.
type Suite struct {
	Name        string
	Description string
	Setup       StepFunc
	Steps       []Step
	// Teardown runs once after setup was attempted. It should release
	// whatever setup acquired even if earlier parts of it fail.
	Teardown StepFunc
}

// Validate checks the suite is runnable.
func (s Suite) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("suite name is required")
	}
	seen := make(map[string]bool, len(s.Steps))
	for i, step := range s.Steps {
		if step.Name == "" {
			return fmt.Errorf("step %d has no name", i+1)
		}
		if seen[step.Name] {
			return fmt.Errorf("duplicate step name %q", step.Name)
		}
		seen[step.Name] = true
		if step.Run == nil && !step.Skip {
			return fmt.Errorf("step %q has no body", step.Name)
		}
	}
	return nil
}

// Phase is where in a suite run an error happened.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseStep     Phase = "step"
	PhaseTeardown Phase = "teardown"
)

// StepError ties an error to the step and phase that produced it.
type StepError struct {
	Step  string
	Phase Phase
	Err   error
}

func (e *StepError) Error() string {
	if e.Phase == PhaseStep {
		return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Phase, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
