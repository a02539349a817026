// Package runner executes a configured suite end to end: it resolves the
// suite, runs it against the browser sessions, reports progress on the
// console and writes the run artifacts.
//
// Example usage:
//
//	cfg, _ := config.Load("cxvoice.yaml")
//	manager := browser.NewSessionManager(browser.ManagerOptions{Headless: true})
//	_ = manager.Initialize()
//	defer manager.Shutdown()
//
//	exec, _ := runner.NewExecutor(runner.Options{
//		Config: cfg,
//		Opener: pages.FromLauncher(manager),
//		RunID:  uuid.NewString(),
//		Sink:   runner.NewLogger(runner.LogLevelNormal).Sink(),
//	})
//	result, err := exec.Run(ctx)
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/entrhq/cxvoice/pkg/config"
	"github.com/entrhq/cxvoice/pkg/logging"
	"github.com/entrhq/cxvoice/pkg/pages"
	"github.com/entrhq/cxvoice/pkg/report"
	"github.com/entrhq/cxvoice/pkg/scenario"
	"github.com/entrhq/cxvoice/pkg/scenario/suites"
	"github.com/entrhq/cxvoice/pkg/telemetry"
)

// ServiceName labels exported traces.
const ServiceName = "cxvoice"

// Options configure an Executor.
type Options struct {
	Config *config.Config
	Opener pages.Opener
	RunID  string
	// Version is recorded on the trace resource.
	Version string
	Sink    scenario.Sink
	Logger  *logging.Logger
}

// Executor runs one suite and writes its artifacts.
type Executor struct {
	config *config.Config
	opener pages.Opener
	runID  string
	suite  scenario.Suite
	runner *scenario.Runner
	logger *logging.Logger
	runDir string
	ver    string
}

// NewExecutor validates the configuration and resolves the suite.
func NewExecutor(opts Options) (*Executor, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Opener == nil {
		return nil, errors.New("session opener is required")
	}
	if opts.RunID == "" {
		return nil, errors.New("run id is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	suite, err := suites.Lookup(opts.Config.Suite)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard("runner")
	}

	cfg := opts.Config
	e := &Executor{
		config: cfg,
		opener: opts.Opener,
		runID:  opts.RunID,
		suite:  suite,
		logger: logger,
		ver:    opts.Version,
	}

	runOpts := scenario.Options{
		RunID:       opts.RunID,
		StepTimeout: cfg.Timeouts.Step,
		Filter:      cfg.Run,
		Sink:        opts.Sink,
		Logger:      logger,
	}
	if cfg.Artifacts.Enabled {
		e.runDir = report.RunDir(cfg.Artifacts.OutputDir, opts.RunID)
		runOpts.DiagnosticsDir = e.runDir
		runOpts.Screenshots = cfg.Artifacts.Screenshots
		runOpts.Snapshots = cfg.Artifacts.Snapshots
	}

	if e.runner, err = scenario.NewRunner(runOpts); err != nil {
		return nil, err
	}
	return e, nil
}

// Suite returns the resolved suite.
func (e *Executor) Suite() scenario.Suite {
	return e.suite
}

// RunDir returns the artifact directory, empty when artifacts are disabled.
func (e *Executor) RunDir() string {
	return e.runDir
}

// Run executes the suite. The result is always returned; the error reports
// artifact or tracing failures, not test failures.
func (e *Executor) Run(ctx context.Context) (*scenario.SuiteResult, error) {
	var errs []error

	shutdown, err := e.startTracing()
	if err != nil {
		e.logger.Warnf("tracing disabled: %v", err)
	}

	e.logger.Infof("starting suite %s (run %s)", e.suite.Name, e.runID)
	h := scenario.NewHarness(e.config, e.opener, e.logger.With("harness"))
	result := e.runner.Run(ctx, e.suite, h)
	e.logger.Infof("suite %s finished: %s", e.suite.Name, result.Status)

	if shutdown != nil {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			errs = append(errs, err)
		}
	}

	if e.config.Artifacts.Enabled {
		writer := report.NewArtifactWriter(e.runDir, e.config.Artifacts)
		if err := writer.WriteAll(result); err != nil {
			errs = append(errs, fmt.Errorf("failed to write artifacts: %w", err))
		}
	}

	return result, errors.Join(errs...)
}

// startTracing exports spans to the run directory when trace artifacts are
// enabled.
func (e *Executor) startTracing() (func(context.Context) error, error) {
	if !e.config.Artifacts.Enabled || !e.config.Artifacts.Trace {
		return nil, nil
	}
	if err := os.MkdirAll(e.runDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(e.runDir, report.TraceFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	tp, err := telemetry.NewTracerProvider(ServiceName, e.ver, e.runID, f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("failed to flush traces: %w", err)
		}
		return nil
	}, nil
}
