package scenario

import (
	"time"

	"github.com/entrhq/cxvoice/pkg/call"
)

// Status is the outcome of a step or a suite.
type Status string

const (
	StatusPassed   Status = "passed"
	StatusFailed   Status = "failed"
	StatusSkipped  Status = "skipped"
	StatusNotRun   Status = "not_run"
	StatusFiltered Status = "filtered"
	StatusRunning  Status = "running"
)

// StepResult records how one step went.
type StepResult struct {
	Index       int           `json:"index"`
	Name        string        `json:"name"`
	Status      Status        `json:"status"`
	Error       string        `json:"error,omitempty"`
	SkipReason  string        `json:"skip_reason,omitempty"`
	StartTime   time.Time     `json:"start_time,omitempty"`
	Duration    time.Duration `json:"duration"`
	CallID      string        `json:"call_id,omitempty"`
	CallState   string        `json:"call_state,omitempty"`
	Diagnostics []string      `json:"diagnostics,omitempty"`
}

// SuiteResult is the complete record of a suite run.
type SuiteResult struct {
	Suite          string        `json:"suite"`
	Description    string        `json:"description,omitempty"`
	RunID          string        `json:"run_id"`
	Status         Status        `json:"status"`
	Error          string        `json:"error,omitempty"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	Duration       time.Duration `json:"duration"`
	SetupDuration  time.Duration `json:"setup_duration"`
	Steps          []StepResult  `json:"steps"`
	TeardownErrors []string      `json:"teardown_errors,omitempty"`
	Diagnostics    []string      `json:"diagnostics,omitempty"`
	Calls          []CallSummary `json:"calls,omitempty"`
}

// CallSummary is the final state and history of one call.
type CallSummary struct {
	ID          string            `json:"id"`
	Dialed      string            `json:"dialed,omitempty"`
	State       call.State        `json:"state"`
	EndPath     call.EndPath      `json:"end_path,omitempty"`
	WrapUps     int               `json:"wrap_up_confirmations"`
	Transitions []call.Transition `json:"transitions"`
}

func summarizeCalls(calls []*call.Call) []CallSummary {
	out := make([]CallSummary, 0, len(calls))
	for _, c := range calls {
		out = append(out, CallSummary{
			ID:          c.ID,
			Dialed:      c.Dialed,
			State:       c.State(),
			EndPath:     c.EndPath(),
			WrapUps:     c.WrapUpConfirmations(),
			Transitions: c.History(),
		})
	}
	return out
}

// Passed reports whether setup and every executed step succeeded.
func (r *SuiteResult) Passed() bool {
	return r.Status == StatusPassed
}

// Counts returns the number of steps per status.
func (r *SuiteResult) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, s := range r.Steps {
		counts[s.Status]++
	}
	return counts
}

// Failed returns the failing step, if any.
func (r *SuiteResult) Failed() (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Status == StatusFailed {
			return s, true
		}
	}
	return StepResult{}, false
}
