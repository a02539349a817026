package scenario

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/cxvoice/pkg/browser/browsertest"
	"github.com/entrhq/cxvoice/pkg/call"
	"github.com/entrhq/cxvoice/pkg/config"
	"github.com/entrhq/cxvoice/pkg/pages"
)

func newHarness() *Harness {
	return NewHarness(config.DefaultConfig(), nil, nil)
}

// recorder collects step names and events in execution order.
type recorder struct {
	ran    []string
	events []Event
}

func (r *recorder) step(name string, err error) Step {
	return Step{Name: name, Run: func(context.Context, *Harness) error {
		r.ran = append(r.ran, name)
		return err
	}}
}

func (r *recorder) sink(e Event) {
	r.events = append(r.events, e)
}

func (r *recorder) types() []EventType {
	out := make([]EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func statuses(res *SuiteResult) []Status {
	out := make([]Status, 0, len(res.Steps))
	for _, s := range res.Steps {
		out = append(out, s.Status)
	}
	return out
}

func TestRunner_OrderSkipAndAbort(t *testing.T) {
	rec := &recorder{}
	teardowns := 0
	suite := Suite{
		Name: "ordering",
		Setup: func(context.Context, *Harness) error {
			rec.ran = append(rec.ran, "setup")
			return nil
		},
		Steps: []Step{
			rec.step("first", nil),
			{Name: "skipped", Skip: true, SkipReason: "not supported"},
			rec.step("second", nil),
			rec.step("breaks", errors.New("accept button never appeared")),
			rec.step("after", nil),
		},
		Teardown: func(context.Context, *Harness) error {
			teardowns++
			rec.ran = append(rec.ran, "teardown")
			return nil
		},
	}

	r, err := NewRunner(Options{Sink: rec.sink, RunID: "run-1"})
	require.NoError(t, err)
	res := r.Run(context.Background(), suite, newHarness())

	assert.Equal(t, []string{"setup", "first", "second", "breaks", "teardown"}, rec.ran)
	assert.Equal(t, 1, teardowns)
	assert.Equal(t, StatusFailed, res.Status)
	assert.False(t, res.Passed())
	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, []Status{StatusPassed, StatusSkipped, StatusPassed, StatusFailed, StatusNotRun}, statuses(res))
	assert.Equal(t, "not supported", res.Steps[1].SkipReason)
	assert.Contains(t, res.Error, `step "breaks" failed: accept button never appeared`)

	failed, ok := res.Failed()
	require.True(t, ok)
	assert.Equal(t, 4, failed.Index)

	assert.Equal(t, []EventType{
		EventSuiteStarted,
		EventStepStarted, EventStepPassed,
		EventStepSkipped,
		EventStepStarted, EventStepPassed,
		EventStepStarted, EventStepFailed,
		EventSuiteFinished,
	}, rec.types())

	last := rec.events[len(rec.events)-1]
	assert.Same(t, res, last.Result)

	var stepErr *StepError
	require.ErrorAs(t, rec.events[7].Err, &stepErr)
	assert.Equal(t, "breaks", stepErr.Step)
	assert.Equal(t, PhaseStep, stepErr.Phase)
}

func TestRunner_AllPass(t *testing.T) {
	rec := &recorder{}
	suite := Suite{Name: "green", Steps: []Step{rec.step("a", nil), rec.step("b", nil)}}

	r, err := NewRunner(Options{})
	require.NoError(t, err)
	res := r.Run(context.Background(), suite, newHarness())

	assert.True(t, res.Passed())
	assert.Equal(t, map[Status]int{StatusPassed: 2}, res.Counts())
	assert.False(t, res.EndTime.Before(res.StartTime))
}

func TestRunner_Filter(t *testing.T) {
	rec := &recorder{}
	suite := Suite{Name: "filtered", Steps: []Step{
		rec.step("Agent is ready", nil),
		rec.step("Webphone places call", nil),
		rec.step("End call from webphone", nil),
		rec.step("Hold and resume", nil),
	}}

	r, err := NewRunner(Options{Filter: []string{"*call*", " ", "Agent*"}})
	require.NoError(t, err)
	res := r.Run(context.Background(), suite, newHarness())

	assert.Equal(t, []string{"Agent is ready", "Webphone places call", "End call from webphone"}, rec.ran)
	assert.Equal(t, []Status{StatusPassed, StatusPassed, StatusPassed, StatusFiltered}, statuses(res))
	assert.True(t, res.Passed())
	assert.True(t, r.Selected("End call from webphone"))
	assert.False(t, r.Selected("Hold and resume"))
}

func TestNewRunner_InvalidFilter(t *testing.T) {
	_, err := NewRunner(Options{Filter: []string{"[unclosed"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid step filter")
}

func TestRunner_SetupFailure(t *testing.T) {
	rec := &recorder{}
	teardowns := 0
	suite := Suite{
		Name:  "setup-fails",
		Setup: func(context.Context, *Harness) error { return errors.New("login page unreachable") },
		Steps: []Step{rec.step("a", nil), rec.step("b", nil)},
		Teardown: func(context.Context, *Harness) error {
			teardowns++
			return nil
		},
	}

	r, err := NewRunner(Options{Sink: rec.sink})
	require.NoError(t, err)
	res := r.Run(context.Background(), suite, newHarness())

	assert.Empty(t, rec.ran)
	assert.Equal(t, 1, teardowns, "teardown releases a partial setup")
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, "setup failed: login page unreachable", res.Error)
	assert.Equal(t, []Status{StatusNotRun, StatusNotRun}, statuses(res))
	assert.Contains(t, rec.types(), EventStepFailed)
}

func TestRunner_TeardownErrorsCollected(t *testing.T) {
	suite := Suite{
		Name:  "teardown",
		Steps: []Step{{Name: "a", Run: func(context.Context, *Harness) error { return nil }}},
		Teardown: func(context.Context, *Harness) error {
			return errors.Join(errors.New("logout failed"), errors.New("close webphone failed"))
		},
	}

	r, err := NewRunner(Options{})
	require.NoError(t, err)
	res := r.Run(context.Background(), suite, newHarness())

	assert.True(t, res.Passed(), "teardown errors are reported, not fatal")
	assert.Equal(t, []string{"logout failed", "close webphone failed"}, res.TeardownErrors)
}

func TestRunner_StepTimeout(t *testing.T) {
	suite := Suite{Name: "slow", Steps: []Step{
		{Name: "waits forever", Run: func(ctx context.Context, _ *Harness) error {
			<-ctx.Done()
			return ctx.Err()
		}},
		{Name: "next", Run: func(context.Context, *Harness) error { return nil }},
	}}

	r, err := NewRunner(Options{StepTimeout: 20 * time.Millisecond})
	require.NoError(t, err)
	res := r.Run(context.Background(), suite, newHarness())

	assert.Equal(t, []Status{StatusFailed, StatusNotRun}, statuses(res))
	assert.Contains(t, res.Steps[0].Error, "timed out after 20ms")
}

func TestRunner_StepTimeoutOverride(t *testing.T) {
	suite := Suite{Name: "override", Steps: []Step{
		{Name: "short", Timeout: 10 * time.Millisecond, Run: func(ctx context.Context, _ *Harness) error {
			<-ctx.Done()
			return ctx.Err()
		}},
	}}

	r, err := NewRunner(Options{StepTimeout: time.Hour})
	require.NoError(t, err)
	res := r.Run(context.Background(), suite, newHarness())
	assert.Contains(t, res.Steps[0].Error, "timed out after 10ms")
}

func TestRunner_PanicBecomesFailure(t *testing.T) {
	suite := Suite{Name: "panics", Steps: []Step{
		{Name: "boom", Run: func(context.Context, *Harness) error { panic("nil page") }},
	}}

	r, err := NewRunner(Options{})
	require.NoError(t, err)
	res := r.Run(context.Background(), suite, newHarness())
	assert.Equal(t, StatusFailed, res.Steps[0].Status)
	assert.Contains(t, res.Steps[0].Error, "panic: nil page")
}

func TestRunner_InvalidSuite(t *testing.T) {
	teardowns := 0
	suite := Suite{
		Name:     "dupes",
		Steps:    []Step{{Name: "a", Run: func(context.Context, *Harness) error { return nil }}, {Name: "a", Run: func(context.Context, *Harness) error { return nil }}},
		Teardown: func(context.Context, *Harness) error { teardowns++; return nil },
	}

	r, err := NewRunner(Options{})
	require.NoError(t, err)
	res := r.Run(context.Background(), suite, newHarness())
	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, res.Error, "duplicate step name")
	assert.Zero(t, teardowns)
}

func TestRunner_RecordsCallState(t *testing.T) {
	suite := Suite{Name: "call", Steps: []Step{
		{Name: "dial", Run: func(_ context.Context, h *Harness) error {
			c := h.NewCall()
			return c.Dial("6005")
		}},
	}}

	r, err := NewRunner(Options{})
	require.NoError(t, err)
	h := newHarness()
	res := r.Run(context.Background(), suite, h)

	require.True(t, res.Passed())
	assert.Equal(t, h.Call.ID, res.Steps[0].CallID)
	assert.Equal(t, string(call.StateDialing), res.Steps[0].CallState)
	assert.Len(t, h.Calls, 1)
}

func TestRunner_FailureDiagnostics(t *testing.T) {
	dir := t.TempDir()
	h := newHarness()
	agent := browsertest.New().SetURL("https://desk.example.com/unified-agent")
	phone := browsertest.New().SetURL("https://webphone.example.com/")
	h.Agent = pages.NewAgentDesk(agent, "https://desk.example.com/unified-agent", nil)
	h.Phone = pages.NewWebphone(phone, "https://webphone.example.com/", nil)

	suite := Suite{Name: "diag", Steps: []Step{
		{Name: "Agent accepts the call", Run: func(context.Context, *Harness) error { return errors.New("no accept") }},
	}}

	r, err := NewRunner(Options{DiagnosticsDir: dir, Screenshots: true, Snapshots: true})
	require.NoError(t, err)
	res := r.Run(context.Background(), suite, h)

	want := []string{
		filepath.Join(dir, "screenshots", "01-agent-accepts-the-call-agent.png"),
		filepath.Join(dir, "screenshots", "01-agent-accepts-the-call-webphone.png"),
	}
	assert.Equal(t, want, res.Steps[0].Diagnostics)
	for _, path := range want {
		_, err := os.Stat(path)
		assert.NoError(t, err)
	}
}

func TestHarness_Close(t *testing.T) {
	h := newHarness()
	agent, phone, second := browsertest.New(), browsertest.New(), browsertest.New()
	h.Agent = pages.NewAgentDesk(agent, "https://desk.example.com", nil)
	h.Phone = pages.NewWebphone(phone, "https://webphone.example.com", nil)
	h.Agents = []*pages.AgentDesk{pages.NewAgentDesk(second, "https://desk.example.com", nil)}

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	assert.Equal(t, 1, agent.Closed())
	assert.Equal(t, 1, phone.Closed())
	assert.Equal(t, 1, second.Closed())
}

func TestKitSettings(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.WrapUpEnabled = false
	cfg.AgentDesk.Channel = "CX CHAT"
	cfg.Timeouts.Accept = 15 * time.Second
	cfg.Timeouts.Settle = 0

	s := KitSettings(cfg)
	assert.False(t, s.WrapUpEnabled)
	assert.Equal(t, "CX CHAT", s.Channel)
	assert.Equal(t, 15*time.Second, s.AcceptTimeout)
	assert.Equal(t, 2*time.Second, s.SettleDelay, "zero keeps the default")
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "end-call-by-cross-button", slug("End call by Cross Button!"))
	assert.Equal(t, "mute-unmute", slug("  Mute / Unmute  "))
}
