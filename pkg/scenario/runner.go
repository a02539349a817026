package scenario

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/entrhq/cxvoice/pkg/logging"
	"github.com/entrhq/cxvoice/pkg/telemetry"
)

// DefaultStepTimeout bounds setup, each step and teardown.
const DefaultStepTimeout = 90 * time.Second

// Options configure a Runner.
type Options struct {
	// RunID labels results and diagnostics.
	RunID string
	// StepTimeout bounds each phase; zero means DefaultStepTimeout.
	StepTimeout time.Duration
	// Filter holds step name globs. When set, only matching steps run and
	// the others are reported as filtered.
	Filter []string
	Sink   Sink
	Logger *logging.Logger

	// DiagnosticsDir receives failure screenshots and DOM snapshots.
	// Empty disables diagnostics.
	DiagnosticsDir string
	Screenshots    bool
	Snapshots      bool
}

// Runner executes suites.
type Runner struct {
	opts    Options
	filters []glob.Glob
	logger  *logging.Logger
	now     func() time.Time
}

// NewRunner creates a runner, compiling the step filter.
func NewRunner(opts Options) (*Runner, error) {
	if opts.StepTimeout <= 0 {
		opts.StepTimeout = DefaultStepTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard("runner")
	}

	r := &Runner{opts: opts, logger: logger, now: time.Now}
	for _, pattern := range opts.Filter {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid step filter %q: %w", pattern, err)
		}
		r.filters = append(r.filters, g)
	}
	return r, nil
}

// Selected reports whether the filter lets name run.
func (r *Runner) Selected(name string) bool {
	if len(r.filters) == 0 {
		return true
	}
	for _, g := range r.filters {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (r *Runner) emit(e Event) {
	if r.opts.Sink != nil {
		r.opts.Sink(e)
	}
}

// Run executes suite against h: setup once, steps in order, teardown once.
// The first failing step aborts the remainder. Run never returns nil.
func (r *Runner) Run(ctx context.Context, suite Suite, h *Harness) *SuiteResult {
	result := &SuiteResult{
		Suite:       suite.Name,
		Description: suite.Description,
		RunID:       r.opts.RunID,
		Status:      StatusRunning,
		StartTime:   r.now(),
		Steps:       make([]StepResult, len(suite.Steps)),
	}
	for i, step := range suite.Steps {
		result.Steps[i] = StepResult{Index: i + 1, Name: step.Name, Status: StatusNotRun}
	}

	ctx, span := telemetry.StartSpan(ctx, "suite "+suite.Name,
		telemetry.AttrSuite.String(suite.Name),
		telemetry.AttrRunID.String(r.opts.RunID),
	)
	defer span.End()

	total := len(suite.Steps)
	r.emit(Event{Type: EventSuiteStarted, Suite: suite.Name, Total: total})
	r.logger.Infof("suite %s started (%d steps)", suite.Name, total)

	if err := suite.Validate(); err != nil {
		r.fail(ctx, result, &StepError{Phase: PhaseSetup, Err: err})
		return r.finish(ctx, span, result)
	}

	setupStart := r.now()
	setupErr := r.phase(ctx, PhaseSetup, "", suite.Setup, h, 0)
	result.SetupDuration = r.now().Sub(setupStart)

	if setupErr != nil {
		stepErr := &StepError{Phase: PhaseSetup, Err: setupErr}
		r.fail(ctx, result, stepErr)
		r.emit(Event{Type: EventStepFailed, Suite: suite.Name, Phase: PhaseSetup, Total: total, Status: StatusFailed, Err: stepErr, Duration: result.SetupDuration})
		result.Diagnostics = r.diagnose(h, "setup")
	} else {
		r.runSteps(ctx, suite, h, result)
	}

	r.teardown(ctx, suite, h, result)
	if h != nil {
		result.Calls = summarizeCalls(h.Calls)
	}
	return r.finish(ctx, span, result)
}

func (r *Runner) runSteps(ctx context.Context, suite Suite, h *Harness, result *SuiteResult) {
	total := len(suite.Steps)
	for i, step := range suite.Steps {
		res := &result.Steps[i]
		base := Event{Suite: suite.Name, Step: step.Name, Phase: PhaseStep, Index: i + 1, Total: total}

		if result.Status == StatusFailed {
			continue
		}
		if !r.Selected(step.Name) {
			res.Status = StatusFiltered
			r.logger.Debugf("step %d %q filtered out", i+1, step.Name)
			continue
		}
		if step.Skip {
			res.Status = StatusSkipped
			res.SkipReason = step.SkipReason
			r.logger.Infof("step %d %q skipped: %s", i+1, step.Name, step.SkipReason)
			ev := base
			ev.Type, ev.Status = EventStepSkipped, StatusSkipped
			r.emit(ev)
			continue
		}

		ev := base
		ev.Type, ev.Status = EventStepStarted, StatusRunning
		r.emit(ev)
		r.logger.Infof("step %d/%d %q started", i+1, total, step.Name)

		res.StartTime = r.now()
		err := r.phase(ctx, PhaseStep, step.Name, step.Run, h, step.Timeout, telemetry.AttrStepIndex.Int(i+1))
		res.Duration = r.now().Sub(res.StartTime)
		if h != nil && h.Call != nil {
			res.CallID = h.Call.ID
			res.CallState = string(h.Call.State())
		}

		ev.Duration = res.Duration
		if err != nil {
			stepErr := &StepError{Step: step.Name, Phase: PhaseStep, Err: err}
			res.Status = StatusFailed
			res.Error = err.Error()
			r.fail(ctx, result, stepErr)
			res.Diagnostics = r.diagnose(h, fmt.Sprintf("%02d-%s", i+1, slug(step.Name)))

			ev.Type, ev.Status, ev.Err = EventStepFailed, StatusFailed, stepErr
			r.emit(ev)
			r.logger.Errorf("step %d %q failed after %s: %v", i+1, step.Name, res.Duration, err)
			continue
		}

		res.Status = StatusPassed
		ev.Type, ev.Status = EventStepPassed, StatusPassed
		r.emit(ev)
		r.logger.Infof("step %d %q passed in %s", i+1, step.Name, res.Duration)
	}
}

// phase runs fn under its own timeout and span. Panics become errors.
func (r *Runner) phase(ctx context.Context, phase Phase, name string, fn StepFunc, h *Harness, timeout time.Duration, attrs ...attribute.KeyValue) (err error) {
	if fn == nil {
		return nil
	}
	if timeout <= 0 {
		timeout = r.opts.StepTimeout
	}

	spanName := string(phase)
	if name != "" {
		spanName = "step " + name
	}
	attrs = append(attrs, telemetry.AttrPhase.String(string(phase)), telemetry.AttrStep.String(name))
	ctx, span := telemetry.StartSpan(ctx, spanName, attrs...)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
				err = fmt.Errorf("%s timed out after %s: %w", phase, timeout, err)
			}
			telemetry.RecordError(ctx, err)
			span.SetAttributes(telemetry.AttrStepStatus.String(string(StatusFailed)))
			return
		}
		if h != nil && h.Call != nil {
			telemetry.AddEvent(ctx, "call", telemetry.AttrCallID.String(h.Call.ID), telemetry.AttrCallState.String(string(h.Call.State())))
		}
		span.SetAttributes(telemetry.AttrStepStatus.String(string(StatusPassed)))
	}()

	return fn(ctx, h)
}

// teardown runs once with a context detached from cancellation so an
// interrupted run still releases its sessions.
func (r *Runner) teardown(ctx context.Context, suite Suite, h *Harness, result *SuiteResult) {
	tctx := context.WithoutCancel(ctx)
	err := r.phase(tctx, PhaseTeardown, "", suite.Teardown, h, 0)
	if err == nil {
		return
	}
	for _, e := range flatten(err) {
		result.TeardownErrors = append(result.TeardownErrors, e.Error())
		r.logger.Warnf("teardown: %v", e)
	}
	r.emit(Event{Type: EventStepFailed, Suite: suite.Name, Phase: PhaseTeardown, Total: len(suite.Steps), Status: StatusFailed, Err: &StepError{Phase: PhaseTeardown, Err: err}})
}

func (r *Runner) fail(ctx context.Context, result *SuiteResult, err *StepError) {
	if result.Status == StatusFailed {
		return
	}
	result.Status = StatusFailed
	result.Error = err.Error()
	telemetry.RecordError(ctx, err)
}

func (r *Runner) finish(ctx context.Context, span trace.Span, result *SuiteResult) *SuiteResult {
	if result.Status != StatusFailed {
		result.Status = StatusPassed
	}
	result.EndTime = r.now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	span.SetAttributes(telemetry.AttrStepStatus.String(string(result.Status)))

	r.logger.Infof("suite %s %s in %s", result.Suite, result.Status, result.Duration)
	r.emit(Event{Type: EventSuiteFinished, Suite: result.Suite, Total: len(result.Steps), Status: result.Status, Duration: result.Duration, Result: result})
	return result
}

func (r *Runner) diagnose(h *Harness, prefix string) []string {
	if h == nil || r.opts.DiagnosticsDir == "" {
		return nil
	}
	return h.Diagnose(r.opts.DiagnosticsDir, prefix, r.opts.Screenshots, r.opts.Snapshots)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slug(name string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if len(s) > 48 {
		s = strings.TrimRight(s[:48], "-")
	}
	return s
}

// flatten splits errors joined with errors.Join.
func flatten(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}
