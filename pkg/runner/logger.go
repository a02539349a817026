package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/cxvoice/pkg/report"
	"github.com/entrhq/cxvoice/pkg/scenario"
)

// LogLevel represents the console verbosity level
type LogLevel int

const (
	// LogLevelQuiet shows failures and the final summary
	LogLevelQuiet LogLevel = iota
	// LogLevelNormal shows one line per step (default)
	LogLevelNormal
	// LogLevelVerbose adds step starts, diagnostics and DOM snapshots
	LogLevelVerbose
	// LogLevelDebug prints complete snapshots and phase details
	LogLevelDebug
)

// verboseSnapshotLines caps snapshot output below debug level.
const verboseSnapshotLines = 40

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9FAFB")).Bold(true)
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB3BA"))
	grayStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// Logger renders runner events to a console.
type Logger struct {
	level  LogLevel
	writer io.Writer
	width  int

	mu        sync.Mutex
	startTime time.Time
}

// NewLogger creates a console logger writing to stdout.
func NewLogger(level LogLevel) *Logger {
	return NewWriterLogger(os.Stdout, level)
}

// NewWriterLogger creates a console logger writing to w.
func NewWriterLogger(w io.Writer, level LogLevel) *Logger {
	return &Logger{level: level, writer: w}
}

// SetWidth bounds the summary box; zero sizes it to content.
func (l *Logger) SetWidth(width int) {
	l.width = width
}

// Level returns the configured level.
func (l *Logger) Level() LogLevel {
	return l.level
}

// Sink adapts the logger to the runner event stream.
func (l *Logger) Sink() scenario.Sink {
	return l.Handle
}

// Handle prints e according to the log level.
func (l *Logger) Handle(e scenario.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch e.Type {
	case scenario.EventSuiteStarted:
		l.startTime = time.Now()
		if l.level >= LogLevelNormal {
			l.header(fmt.Sprintf("Suite %s · %d steps", e.Suite, e.Total))
		}
	case scenario.EventStepStarted:
		if l.level >= LogLevelVerbose {
			fmt.Fprintln(l.writer, grayStyle.Render(fmt.Sprintf("→ [%d/%d] %s", e.Index, e.Total, e.Step)))
		}
	case scenario.EventStepPassed:
		if l.level >= LogLevelNormal {
			fmt.Fprintf(l.writer, "%s %s %s\n",
				report.StyleStatus(scenario.StatusPassed, report.StatusIcon(scenario.StatusPassed)),
				l.position(e), grayStyle.Render(e.Duration.Round(time.Millisecond).String()))
		}
	case scenario.EventStepSkipped:
		if l.level >= LogLevelNormal {
			fmt.Fprintf(l.writer, "%s %s %s\n",
				report.StyleStatus(scenario.StatusSkipped, report.StatusIcon(scenario.StatusSkipped)),
				l.position(e), grayStyle.Render("skipped"))
		}
	case scenario.EventStepFailed:
		l.failed(e)
	case scenario.EventSuiteFinished:
		l.finished(e)
	}
}

func (l *Logger) position(e scenario.Event) string {
	return fmt.Sprintf("[%d/%d] %s", e.Index, e.Total, e.Step)
}

func (l *Logger) header(message string) {
	rule := strings.Repeat("=", 70)
	fmt.Fprintln(l.writer)
	fmt.Fprintln(l.writer, headerStyle.Render(rule))
	fmt.Fprintln(l.writer, headerStyle.Render("  "+message))
	fmt.Fprintln(l.writer, headerStyle.Render(rule))
}

func (l *Logger) failed(e scenario.Event) {
	icon := report.StyleStatus(scenario.StatusFailed, report.StatusIcon(scenario.StatusFailed))
	msg := "unknown error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Phase != scenario.PhaseStep {
		fmt.Fprintf(l.writer, "%s %s\n", icon, report.StyleStatus(scenario.StatusFailed, msg))
		return
	}
	fmt.Fprintf(l.writer, "%s %s\n", icon, l.position(e))
	fmt.Fprintf(l.writer, "    %s\n", report.StyleStatus(scenario.StatusFailed, msg))
	if l.level >= LogLevelDebug {
		fmt.Fprintln(l.writer, grayStyle.Render(fmt.Sprintf("    [DEBUG] failed after %s", e.Duration)))
	}
}

func (l *Logger) finished(e scenario.Event) {
	result := e.Result
	if result == nil {
		return
	}
	if l.level >= LogLevelVerbose {
		l.diagnostics(result)
	}
	fmt.Fprintln(l.writer)
	fmt.Fprintln(l.writer, report.Summary(result, l.width))
	if l.level >= LogLevelDebug && !l.startTime.IsZero() {
		fmt.Fprintln(l.writer, grayStyle.Render(fmt.Sprintf("[DEBUG] wall time %s", time.Since(l.startTime).Round(time.Millisecond))))
	}
}

// diagnostics lists failure artifacts and prints highlighted DOM snapshots.
func (l *Logger) diagnostics(result *scenario.SuiteResult) {
	paths := append([]string(nil), result.Diagnostics...)
	for _, s := range result.Steps {
		paths = append(paths, s.Diagnostics...)
	}
	if len(paths) == 0 {
		return
	}

	fmt.Fprintln(l.writer)
	fmt.Fprintln(l.writer, sectionStyle.Render("▶ Diagnostics"))
	fmt.Fprintln(l.writer, grayStyle.Render(strings.Repeat("─", 50)))
	for _, path := range paths {
		fmt.Fprintf(l.writer, "  • %s\n", path)
		if filepath.Ext(path) != ".html" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(l.writer, grayStyle.Render(fmt.Sprintf("    unreadable: %v", err)))
			continue
		}
		snapshot := string(data)
		if l.level < LogLevelDebug {
			snapshot = headLines(snapshot, verboseSnapshotLines)
		}
		fmt.Fprintln(l.writer, report.HighlightHTML(snapshot))
	}
}

func headLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n") + fmt.Sprintf("\n… %d more lines", len(lines)-n)
}

// ParseLogLevel converts a verbosity name to a LogLevel.
func ParseLogLevel(level string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "quiet":
		return LogLevelQuiet, nil
	case "", "normal":
		return LogLevelNormal, nil
	case "verbose":
		return LogLevelVerbose, nil
	case "debug":
		return LogLevelDebug, nil
	default:
		return LogLevelNormal, fmt.Errorf("invalid verbosity %q (must be quiet, normal, verbose or debug)", level)
	}
}
