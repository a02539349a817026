// Package report writes suite results as artifacts (JSON, Markdown, JUnit
// XML, Prometheus textfile) and renders them for the console.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/cxvoice/pkg/config"
	"github.com/entrhq/cxvoice/pkg/scenario"
)

// Artifact file names inside a run directory.
const (
	ExecutionFile = "execution.json"
	SummaryFile   = "summary.md"
	JUnitFile     = "junit.xml"
	MetricsFile   = "metrics.prom"
	TraceFile     = "trace.json"
)

// ArtifactWriter handles writing run artifacts
type ArtifactWriter struct {
	outputDir string
	formats   config.ArtifactConfig
}

// NewArtifactWriter creates a writer for outputDir. formats selects which
// files WriteAll produces.
func NewArtifactWriter(outputDir string, formats config.ArtifactConfig) *ArtifactWriter {
	return &ArtifactWriter{
		outputDir: outputDir,
		formats:   formats,
	}
}

// RunDir returns the run directory for runID under root.
func RunDir(root, runID string) string {
	return filepath.Join(root, runID)
}

// OutputDir returns the directory artifacts are written to.
func (w *ArtifactWriter) OutputDir() string {
	return w.outputDir
}

// WriteAll writes all configured artifact formats
func (w *ArtifactWriter) WriteAll(result *scenario.SuiteResult) error {
	if err := os.MkdirAll(w.outputDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if w.formats.JSON {
		if err := w.WriteExecutionJSON(result); err != nil {
			return err
		}
	}
	if w.formats.Markdown {
		if err := w.WriteSummaryMarkdown(result); err != nil {
			return err
		}
	}
	if w.formats.JUnit {
		if err := w.WriteJUnit(result); err != nil {
			return err
		}
	}
	if w.formats.Metrics {
		if err := w.WriteMetrics(result); err != nil {
			return err
		}
	}
	return nil
}

// WriteExecutionJSON writes the full suite result as JSON
func (w *ArtifactWriter) WriteExecutionJSON(result *scenario.SuiteResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal suite result: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.outputDir, ExecutionFile), data, 0600); err != nil {
		return fmt.Errorf("failed to write execution JSON: %w", err)
	}
	return nil
}

// WriteSummaryMarkdown writes a human-readable markdown summary
func (w *ArtifactWriter) WriteSummaryMarkdown(result *scenario.SuiteResult) error {
	if err := os.WriteFile(filepath.Join(w.outputDir, SummaryFile), []byte(Markdown(result)), 0600); err != nil {
		return fmt.Errorf("failed to write summary markdown: %w", err)
	}
	return nil
}

// WriteJUnit writes the result as a JUnit XML report.
func (w *ArtifactWriter) WriteJUnit(result *scenario.SuiteResult) error {
	data, err := JUnit(result)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(w.outputDir, JUnitFile), data, 0600); err != nil {
		return fmt.Errorf("failed to write junit report: %w", err)
	}
	return nil
}

// WriteMetrics writes run metrics in the Prometheus textfile format.
func (w *ArtifactWriter) WriteMetrics(result *scenario.SuiteResult) error {
	m := NewMetrics()
	m.Observe(result)
	if err := m.WriteTextfile(filepath.Join(w.outputDir, MetricsFile)); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

var statusMarks = map[scenario.Status]string{
	scenario.StatusPassed:   "✅",
	scenario.StatusFailed:   "❌",
	scenario.StatusSkipped:  "⏭️",
	scenario.StatusNotRun:   "⏸️",
	scenario.StatusFiltered: "➖",
}

// Markdown renders the result as a markdown document.
func Markdown(result *scenario.SuiteResult) string {
	var md strings.Builder

	md.WriteString("# cxvoice Suite Summary\n\n")
	md.WriteString(fmt.Sprintf("**Suite:** %s\n\n", result.Suite))
	if result.Description != "" {
		md.WriteString(fmt.Sprintf("**Description:** %s\n\n", result.Description))
	}
	md.WriteString(fmt.Sprintf("**Run:** %s\n\n", result.RunID))
	md.WriteString(fmt.Sprintf("**Status:** %s\n\n", result.Status))
	md.WriteString(fmt.Sprintf("**Started:** %s\n\n", result.StartTime.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Duration:** %s\n\n", result.Duration.Round(time.Millisecond)))

	md.WriteString("## Result\n\n")
	if result.Error != "" {
		md.WriteString(fmt.Sprintf("❌ **Error:** %s\n\n", result.Error))
	} else {
		md.WriteString("✅ **Success**\n\n")
	}

	md.WriteString("## Steps\n\n")
	md.WriteString("| # | Step | Status | Duration |\n")
	md.WriteString("|---|---|---|---|\n")
	for _, s := range result.Steps {
		md.WriteString(fmt.Sprintf("| %d | %s | %s %s | %s |\n",
			s.Index, escapeCell(s.Name), statusMarks[s.Status], s.Status, s.Duration.Round(time.Millisecond)))
	}
	md.WriteString("\n")

	for _, s := range result.Steps {
		switch {
		case s.Status == scenario.StatusFailed:
			md.WriteString(fmt.Sprintf("### Failure: %s\n\n```\n%s\n```\n\n", s.Name, s.Error))
			for _, d := range s.Diagnostics {
				md.WriteString(fmt.Sprintf("- `%s`\n", d))
			}
			if len(s.Diagnostics) > 0 {
				md.WriteString("\n")
			}
		case s.Status == scenario.StatusSkipped && s.SkipReason != "":
			md.WriteString(fmt.Sprintf("- Skipped **%s**: %s\n", s.Name, s.SkipReason))
		}
	}

	if len(result.TeardownErrors) > 0 {
		md.WriteString("\n## Teardown\n\n")
		for _, e := range result.TeardownErrors {
			md.WriteString(fmt.Sprintf("- %s\n", e))
		}
	}

	if len(result.Calls) > 0 {
		md.WriteString("\n## Calls\n\n")
		for _, c := range result.Calls {
			line := fmt.Sprintf("- `%s` %s", c.ID, c.State)
			if c.EndPath != "" {
				line += fmt.Sprintf(" via %s", c.EndPath)
			}
			if c.WrapUps > 0 {
				line += fmt.Sprintf(" (wrap-up skipped %d×)", c.WrapUps)
			}
			md.WriteString(line + "\n")
		}
	}

	counts := result.Counts()
	md.WriteString("\n## Metrics\n\n")
	md.WriteString(fmt.Sprintf("- **Passed:** %d\n", counts[scenario.StatusPassed]))
	md.WriteString(fmt.Sprintf("- **Failed:** %d\n", counts[scenario.StatusFailed]))
	md.WriteString(fmt.Sprintf("- **Skipped:** %d\n", counts[scenario.StatusSkipped]))
	md.WriteString(fmt.Sprintf("- **Not run:** %d\n", counts[scenario.StatusNotRun]))
	md.WriteString(fmt.Sprintf("- **Filtered:** %d\n", counts[scenario.StatusFiltered]))
	md.WriteString(fmt.Sprintf("- **Calls:** %d\n", len(result.Calls)))

	return md.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
