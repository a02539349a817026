package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/cxvoice/pkg/browser"
	"github.com/entrhq/cxvoice/pkg/browser/browsertest"
	"github.com/entrhq/cxvoice/pkg/config"
	"github.com/entrhq/cxvoice/pkg/pages"
	"github.com/entrhq/cxvoice/pkg/report"
	"github.com/entrhq/cxvoice/pkg/scenario"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func fakeOpener(prepare func(name string, f *browsertest.Fake)) (pages.Opener, map[string]*browsertest.Fake) {
	fakes := make(map[string]*browsertest.Fake)
	return pages.OpenerFunc(func(_ context.Context, name string, _ browser.LaunchOptions) (pages.Handle, error) {
		f := browsertest.New()
		if prepare != nil {
			prepare(name, f)
		}
		fakes[name] = f
		return f, nil
	}), fakes
}

func isolationConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Suite = config.SuiteIsolation
	cfg.Artifacts.OutputDir = t.TempDir()
	return cfg
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"quiet", LogLevelQuiet},
		{"", LogLevelNormal},
		{"Normal", LogLevelNormal},
		{"verbose", LogLevelVerbose},
		{" debug ", LogLevelDebug},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLogLevel("loud")
	assert.ErrorContains(t, err, `invalid verbosity "loud"`)
}

func events(result *scenario.SuiteResult) []scenario.Event {
	return []scenario.Event{
		{Type: scenario.EventSuiteStarted, Suite: "inbound", Total: 3},
		{Type: scenario.EventStepStarted, Suite: "inbound", Step: "WebPhone is logged in", Phase: scenario.PhaseStep, Index: 1, Total: 3},
		{Type: scenario.EventStepPassed, Suite: "inbound", Step: "WebPhone is logged in", Phase: scenario.PhaseStep, Index: 1, Total: 3, Duration: 1200 * time.Millisecond},
		{Type: scenario.EventStepSkipped, Suite: "inbound", Step: "End call by refresh", Phase: scenario.PhaseStep, Index: 2, Total: 3},
		{Type: scenario.EventStepStarted, Suite: "inbound", Step: "Agent accepts", Phase: scenario.PhaseStep, Index: 3, Total: 3},
		{Type: scenario.EventStepFailed, Suite: "inbound", Step: "Agent accepts", Phase: scenario.PhaseStep, Index: 3, Total: 3, Err: errors.New("no inbound call to accept")},
		{Type: scenario.EventSuiteFinished, Suite: "inbound", Status: result.Status, Result: result},
	}
}

func failedResult(snapshot string) *scenario.SuiteResult {
	return &scenario.SuiteResult{
		Suite:  "inbound",
		RunID:  "run-1",
		Status: scenario.StatusFailed,
		Error:  `step "Agent accepts" failed: no inbound call to accept`,
		Steps: []scenario.StepResult{
			{Index: 1, Name: "WebPhone is logged in", Status: scenario.StatusPassed},
			{Index: 2, Name: "End call by refresh", Status: scenario.StatusSkipped},
			{Index: 3, Name: "Agent accepts", Status: scenario.StatusFailed, Error: "no inbound call to accept",
				Diagnostics: []string{snapshot}},
		},
	}
}

func TestLogger_Levels(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "03-agent-accepts-agent.html")
	require.NoError(t, os.WriteFile(snapshot, []byte(`<div class="vg-controls"></div>`), 0600))

	render := func(level LogLevel) string {
		var buf bytes.Buffer
		l := NewWriterLogger(&buf, level)
		sink := l.Sink()
		for _, e := range events(failedResult(snapshot)) {
			sink(e)
		}
		return ansi.ReplaceAllString(buf.String(), "")
	}

	quiet := render(LogLevelQuiet)
	assert.NotContains(t, quiet, "Suite inbound · 3 steps")
	assert.NotContains(t, quiet, "[1/3] WebPhone is logged in 1.2s")
	assert.Contains(t, quiet, "✗ [3/3] Agent accepts")
	assert.Contains(t, quiet, "no inbound call to accept")
	assert.Contains(t, quiet, "1 passed · 1 failed · 1 skipped")

	normal := render(LogLevelNormal)
	assert.Contains(t, normal, "Suite inbound · 3 steps")
	assert.Contains(t, normal, "✓ [1/3] WebPhone is logged in 1.2s")
	assert.Contains(t, normal, "↷ [2/3] End call by refresh skipped")
	assert.NotContains(t, normal, "→ [1/3]")
	assert.NotContains(t, normal, "Diagnostics")

	verbose := render(LogLevelVerbose)
	assert.Contains(t, verbose, "→ [1/3] WebPhone is logged in")
	assert.Contains(t, verbose, "▶ Diagnostics")
	assert.Contains(t, verbose, snapshot)
	assert.Contains(t, verbose, `<div class="vg-controls"></div>`)
}

func TestLogger_SetupFailure(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, LogLevelQuiet)
	l.Handle(scenario.Event{Type: scenario.EventStepFailed, Phase: scenario.PhaseSetup, Err: &scenario.StepError{Phase: scenario.PhaseSetup, Err: errors.New("login page unreachable")}})

	out := ansi.ReplaceAllString(buf.String(), "")
	assert.Equal(t, "✗ setup failed: login page unreachable\n", out)
}

func TestHeadLines(t *testing.T) {
	assert.Equal(t, "a\nb", headLines("a\nb", 2))
	assert.Equal(t, "a\nb\n… 2 more lines", headLines("a\nb\nc\nd", 2))
}

func TestNewExecutor_Validation(t *testing.T) {
	opener, _ := fakeOpener(nil)

	_, err := NewExecutor(Options{Opener: opener, RunID: "r"})
	assert.EqualError(t, err, "config is required")

	_, err = NewExecutor(Options{Config: config.DefaultConfig(), RunID: "r"})
	assert.EqualError(t, err, "session opener is required")

	_, err = NewExecutor(Options{Config: config.DefaultConfig(), Opener: opener})
	assert.EqualError(t, err, "run id is required")

	cfg := config.DefaultConfig()
	cfg.Suite = "outbound"
	_, err = NewExecutor(Options{Config: cfg, Opener: opener, RunID: "r"})
	assert.ErrorContains(t, err, "invalid configuration")

	cfg = config.DefaultConfig()
	cfg.Run = []string{"[unclosed"}
	_, err = NewExecutor(Options{Config: cfg, Opener: opener, RunID: "r"})
	assert.ErrorContains(t, err, "invalid step filter")
}

func TestExecutor_RunWritesArtifacts(t *testing.T) {
	cfg := isolationConfig(t)
	opener, fakes := fakeOpener(nil)

	var seen []scenario.EventType
	exec, err := NewExecutor(Options{
		Config:  cfg,
		Opener:  opener,
		RunID:   "run-42",
		Version: "test",
		Sink:    func(e scenario.Event) { seen = append(seen, e.Type) },
	})
	require.NoError(t, err)
	assert.Equal(t, config.SuiteIsolation, exec.Suite().Name)
	assert.Equal(t, filepath.Join(cfg.Artifacts.OutputDir, "run-42"), exec.RunDir())

	result, err := exec.Run(context.Background())
	require.NoError(t, err)
	require.True(t, result.Passed(), "suite failed: %s", result.Error)
	assert.Equal(t, scenario.EventSuiteStarted, seen[0])
	assert.Equal(t, scenario.EventSuiteFinished, seen[len(seen)-1])
	assert.Len(t, fakes, 2)

	data, err := os.ReadFile(filepath.Join(exec.RunDir(), report.ExecutionFile))
	require.NoError(t, err)
	var decoded scenario.SuiteResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-42", decoded.RunID)
	assert.Equal(t, scenario.StatusPassed, decoded.Status)

	for _, name := range []string{report.SummaryFile, report.JUnitFile, report.MetricsFile, report.TraceFile} {
		_, err := os.Stat(filepath.Join(exec.RunDir(), name))
		assert.NoError(t, err, name)
	}
	trace, err := os.ReadFile(filepath.Join(exec.RunDir(), report.TraceFile))
	require.NoError(t, err)
	assert.Contains(t, string(trace), "run-42")
}

func TestExecutor_FailureDiagnostics(t *testing.T) {
	cfg := isolationConfig(t)
	opener, _ := fakeOpener(func(name string, f *browsertest.Fake) {
		if name == pages.AgentSession {
			f.Show(pages.LoginButton)
		}
	})

	exec, err := NewExecutor(Options{Config: cfg, Opener: opener, RunID: "run-7"})
	require.NoError(t, err)

	result, err := exec.Run(context.Background())
	require.NoError(t, err)
	require.False(t, result.Passed())

	failed, ok := result.Failed()
	require.True(t, ok)
	require.NotEmpty(t, failed.Diagnostics)
	for _, path := range failed.Diagnostics {
		_, err := os.Stat(path)
		assert.NoError(t, err, path)
	}
}

func TestExecutor_ArtifactsDisabled(t *testing.T) {
	cfg := isolationConfig(t)
	cfg.Artifacts.Enabled = false
	opener, _ := fakeOpener(nil)

	exec, err := NewExecutor(Options{Config: cfg, Opener: opener, RunID: "run-0"})
	require.NoError(t, err)
	assert.Empty(t, exec.RunDir())

	result, err := exec.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Passed())

	entries, err := os.ReadDir(cfg.Artifacts.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
