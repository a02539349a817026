package report

import (
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/cxvoice/pkg/call"
	"github.com/entrhq/cxvoice/pkg/config"
	"github.com/entrhq/cxvoice/pkg/scenario"
)

func sampleResult() *scenario.SuiteResult {
	start := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	return &scenario.SuiteResult{
		Suite:     "inbound",
		RunID:     "run-1",
		Status:    scenario.StatusFailed,
		Error:     `step "Agent Desk accepts the ringing call" failed: no inbound call to accept`,
		StartTime: start,
		EndTime:   start.Add(42 * time.Second),
		Duration:  42 * time.Second,
		Steps: []scenario.StepResult{
			{Index: 1, Name: "WebPhone is logged in", Status: scenario.StatusPassed, Duration: 1500 * time.Millisecond},
			{Index: 2, Name: "End call by refresh", Status: scenario.StatusSkipped, SkipReason: "not deterministic"},
			{Index: 3, Name: "Agent Desk accepts the ringing call", Status: scenario.StatusFailed, Error: "no inbound call to accept", Duration: 30 * time.Second,
				Diagnostics: []string{"screenshots/03-agent.png"}},
			{Index: 4, Name: "Hold | resume", Status: scenario.StatusNotRun},
			{Index: 5, Name: "Participants", Status: scenario.StatusFiltered},
		},
		TeardownErrors: []string{"failed to log out agent: timeout"},
		Calls: []scenario.CallSummary{
			{ID: "call-1", Dialed: "6005", State: call.StateRinging},
		},
	}
}

func allFormats() config.ArtifactConfig {
	return config.ArtifactConfig{Enabled: true, JSON: true, Markdown: true, JUnit: true, Metrics: true}
}

func TestArtifactWriter_WriteAll(t *testing.T) {
	dir := RunDir(t.TempDir(), "run-1")
	w := NewArtifactWriter(dir, allFormats())
	require.NoError(t, w.WriteAll(sampleResult()))
	assert.Equal(t, dir, w.OutputDir())

	data, err := os.ReadFile(filepath.Join(dir, ExecutionFile))
	require.NoError(t, err)
	var decoded scenario.SuiteResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "inbound", decoded.Suite)
	assert.Len(t, decoded.Steps, 5)
	assert.Equal(t, scenario.StatusFailed, decoded.Steps[2].Status)
	assert.Equal(t, "6005", decoded.Calls[0].Dialed)

	md, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	require.NoError(t, err)
	assert.Contains(t, string(md), "**Status:** failed")
	assert.Contains(t, string(md), "### Failure: Agent Desk accepts the ringing call")
	assert.Contains(t, string(md), "`screenshots/03-agent.png`")
	assert.Contains(t, string(md), `Hold \| resume`)
	assert.Contains(t, string(md), "Skipped **End call by refresh**: not deterministic")
	assert.Contains(t, string(md), "failed to log out agent: timeout")

	for _, name := range []string{JUnitFile, MetricsFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestArtifactWriter_SelectedFormats(t *testing.T) {
	dir := t.TempDir()
	w := NewArtifactWriter(dir, config.ArtifactConfig{Enabled: true, JSON: true})
	require.NoError(t, w.WriteAll(sampleResult()))

	_, err := os.Stat(filepath.Join(dir, ExecutionFile))
	assert.NoError(t, err)
	for _, name := range []string{SummaryFile, JUnitFile, MetricsFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.True(t, os.IsNotExist(err), name)
	}
}

func TestJUnit(t *testing.T) {
	data, err := JUnit(sampleResult())
	require.NoError(t, err)

	var doc junitSuites
	require.NoError(t, xml.Unmarshal(data, &doc))
	require.Len(t, doc.Suites, 1)

	suite := doc.Suites[0]
	assert.Equal(t, "inbound", suite.Name)
	assert.Equal(t, 5, suite.Tests)
	assert.Equal(t, 1, suite.Failures)
	assert.Equal(t, 3, suite.Skipped)
	assert.Equal(t, 0, suite.Errors)
	assert.Equal(t, "2026-10-18T09:30:00", suite.Timestamp)
	assert.Contains(t, suite.SystemErr, "teardown: failed to log out agent")

	require.NotNil(t, suite.Cases[2].Failure)
	assert.Equal(t, "no inbound call to accept", suite.Cases[2].Failure.Message)
	assert.Equal(t, "30.000", suite.Cases[2].Time)
	assert.Nil(t, suite.Cases[0].Failure)
	assert.Nil(t, suite.Cases[0].Skipped)
}

func TestJUnit_SetupFailure(t *testing.T) {
	result := &scenario.SuiteResult{
		Suite:  "smoke",
		Status: scenario.StatusFailed,
		Error:  "setup failed: login page unreachable",
		Steps:  []scenario.StepResult{{Index: 1, Name: "a", Status: scenario.StatusNotRun}},
	}
	data, err := JUnit(result)
	require.NoError(t, err)

	var doc junitSuites
	require.NoError(t, xml.Unmarshal(data, &doc))
	assert.Equal(t, 1, doc.Suites[0].Errors)
	assert.Equal(t, "setup failed: login page unreachable", doc.Suites[0].SystemErr)
}

func TestMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), MetricsFile)
	m := NewMetrics()
	result := sampleResult()
	result.Calls = append(result.Calls, scenario.CallSummary{ID: "call-2", State: call.StateEnded, EndPath: call.EndFullView, WrapUps: 1})
	m.Observe(result)
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `cxvoice_suite_passed{run_id="run-1",suite="inbound"} 0`)
	assert.Contains(t, out, `cxvoice_suite_duration_seconds{run_id="run-1",suite="inbound"} 42`)
	assert.Contains(t, out, `cxvoice_suite_steps{status="failed",suite="inbound"} 1`)
	assert.Contains(t, out, `cxvoice_suite_steps{status="passed",suite="inbound"} 1`)
	assert.Contains(t, out, `cxvoice_step_duration_seconds{status="passed",step="WebPhone is logged in",suite="inbound"} 1.5`)
	assert.NotContains(t, out, `step="End call by refresh"`)
	assert.Contains(t, out, `cxvoice_call_ended{end_path="full_view",state="ended",suite="inbound"} 1`)
	assert.Contains(t, out, `cxvoice_call_wrap_up_confirmations{suite="inbound"} 1`)
	assert.Contains(t, out, `cxvoice_suite_teardown_errors{suite="inbound"} 1`)
}

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func TestHighlightHTML(t *testing.T) {
	src := "<div class=\"vg-controls\">\n  <button aria-label=\"Chat\">call_end</button>\n</div>"
	out := HighlightHTML(src)
	assert.Equal(t, src, strings.TrimRight(ansi.ReplaceAllString(out, ""), "\n"))
	assert.Empty(t, HighlightHTML(""))
}

func TestSummary(t *testing.T) {
	out := ansi.ReplaceAllString(Summary(sampleResult(), 0), "")

	assert.Contains(t, out, "Suite inbound")
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "Agent Desk accepts the ringing call")
	assert.Contains(t, out, "no inbound call to accept")
	assert.Contains(t, out, "(not deterministic)")
	assert.Contains(t, out, "teardown: failed to log out agent: timeout")
	assert.Contains(t, out, "1 passed · 1 failed · 1 skipped · 1 not run · 1 filtered · 1 calls")
}

func TestStatusIcon(t *testing.T) {
	assert.Equal(t, "✓", StatusIcon(scenario.StatusPassed))
	assert.Equal(t, "✗", StatusIcon(scenario.StatusFailed))
	assert.Equal(t, "-", StatusIcon(scenario.StatusNotRun))
}
