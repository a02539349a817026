// Package main provides the cxvoice harness: it drives the agent desk and the
// webphone through an inbound call suite and reports the outcome for CI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/entrhq/cxvoice/pkg/browser"
	"github.com/entrhq/cxvoice/pkg/config"
	"github.com/entrhq/cxvoice/pkg/executor/tui"
	"github.com/entrhq/cxvoice/pkg/logging"
	"github.com/entrhq/cxvoice/pkg/pages"
	"github.com/entrhq/cxvoice/pkg/report"
	"github.com/entrhq/cxvoice/pkg/runner"
	"github.com/entrhq/cxvoice/pkg/scenario"
	"github.com/entrhq/cxvoice/pkg/scenario/suites"
)

const version = "0.1.0"

// Exit codes.
const (
	exitPassed = 0
	exitFailed = 1
	exitError  = 2
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigFile  string
	Suite       string
	Run         string
	Headless    bool
	SlowMo      time.Duration
	OutputDir   string
	Verbosity   string
	TUI         bool
	List        bool
	ShowVersion bool

	// set records which flags were given explicitly
	set map[string]bool
}

func main() {
	cli, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(exitError)
	}

	if cli.ShowVersion {
		fmt.Printf("cxvoice v%s\n", version)
		return
	}
	if cli.List {
		listSuites(os.Stdout)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\n\nInterrupted, releasing sessions...")
		cancel()
	}()

	code, err := run(ctx, cli)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cxvoice: %v\n", err)
	}
	os.Exit(code)
}

// parseFlags parses command line flags
func parseFlags(args []string, stderr io.Writer) (*CLIConfig, error) {
	cli := &CLIConfig{set: make(map[string]bool)}
	fs := flag.NewFlagSet("cxvoice", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&cli.ConfigFile, "config", "", "Path to configuration file (YAML)")
	fs.StringVar(&cli.Suite, "suite", "", "Suite to run: inbound, smoke or isolation")
	fs.StringVar(&cli.Run, "run", "", "Comma-separated step name globs to run")
	fs.BoolVar(&cli.Headless, "headless", false, "Run the browser without a window")
	fs.DurationVar(&cli.SlowMo, "slow-mo", 0, "Delay every browser operation")
	fs.StringVar(&cli.OutputDir, "output", "", "Artifact directory")
	fs.StringVar(&cli.Verbosity, "verbosity", "", "Console output: quiet, normal, verbose or debug")
	fs.BoolVar(&cli.TUI, "tui", false, "Show the live terminal view")
	fs.BoolVar(&cli.List, "list", false, "List suites and their steps, then exit")
	fs.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "cxvoice - inbound voice call UI harness\n\n")
		fmt.Fprintf(stderr, "Usage: cxvoice [options]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  # Run the inbound suite headless\n")
		fmt.Fprintf(stderr, "  cxvoice -headless\n\n")
		fmt.Fprintf(stderr, "  # Run only the hold and mute steps\n")
		fmt.Fprintf(stderr, "  cxvoice -run '*hold*,*mute*'\n\n")
		fmt.Fprintf(stderr, "  # Watch a smoke run\n")
		fmt.Fprintf(stderr, "  cxvoice -suite smoke -slow-mo 250ms -tui\n\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		cli.set[f.Name] = true
	})
	return cli, nil
}

// applyFlags overrides cfg with the flags given on the command line.
func applyFlags(cfg *config.Config, cli *CLIConfig) {
	if cli.set["suite"] {
		cfg.Suite = cli.Suite
	}
	if cli.set["run"] {
		cfg.Run = splitPatterns(cli.Run)
	}
	if cli.set["headless"] {
		cfg.Browser.Headless = cli.Headless
	}
	if cli.set["slow-mo"] {
		cfg.Browser.SlowMo = cli.SlowMo
	}
	if cli.set["output"] {
		cfg.Artifacts.OutputDir = cli.OutputDir
	}
	if cli.set["verbosity"] {
		cfg.Logging.Verbosity = cli.Verbosity
	}
}

func splitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// listSuites prints every suite with its steps.
func listSuites(w io.Writer) {
	for _, name := range suites.Names() {
		suite, err := suites.Lookup(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", suite.Name, suite.Description)
		for i, step := range suite.Steps {
			line := fmt.Sprintf("  %2d. %s", i+1, step.Name)
			if step.Skip {
				line += fmt.Sprintf(" (skipped: %s)", step.SkipReason)
			}
			fmt.Fprintln(w, line)
		}
	}
}

// run executes the configured suite and returns the process exit code.
func run(ctx context.Context, cli *CLIConfig) (int, error) {
	cfg, err := config.Load(cli.ConfigFile)
	if err != nil {
		return exitError, fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFlags(cfg, cli)
	if err := cfg.Validate(); err != nil {
		return exitError, fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := runner.ParseLogLevel(cfg.Logging.Verbosity)
	if err != nil {
		return exitError, err
	}

	runID := uuid.NewString()
	logging.SetLogDirectory(cfg.Logging.Dir)
	logging.SetRunID(runID)
	logger, err := logging.NewLogger("cxvoice")
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging to stderr: %v\n", err)
	}
	defer logger.Close()

	manager := browser.NewSessionManager(browser.ManagerOptions{
		Headless:    cfg.Browser.Headless,
		SlowMo:      cfg.Browser.SlowMo,
		SkipInstall: cfg.Browser.SkipInstall,
		Verbose:     level >= runner.LogLevelDebug,
	})
	if err := manager.Initialize(); err != nil {
		return exitError, fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if err := manager.Shutdown(); err != nil {
			logger.Warnf("browser shutdown: %v", err)
		}
	}()

	opts := runner.Options{
		Config:  cfg,
		Opener:  pages.FromLauncher(manager),
		RunID:   runID,
		Version: version,
		Logger:  logger,
	}

	var (
		result  *scenario.SuiteResult
		runErr  error
		execDir string
	)
	if cli.TUI {
		suite, err := suites.Lookup(cfg.Suite)
		if err != nil {
			return exitError, err
		}
		ui := tui.NewExecutor(suite)
		opts.Sink = ui.Sink()
		exec, err := runner.NewExecutor(opts)
		if err != nil {
			return exitError, err
		}
		execDir = exec.RunDir()
		result, runErr = ui.Run(ctx, exec.Run)
		if result != nil {
			fmt.Println(report.Summary(result, 0))
		}
	} else {
		console := runner.NewLogger(level)
		opts.Sink = console.Sink()
		exec, err := runner.NewExecutor(opts)
		if err != nil {
			return exitError, err
		}
		execDir = exec.RunDir()
		result, runErr = exec.Run(ctx)
	}

	if runErr != nil {
		logger.Errorf("run %s: %v", runID, runErr)
		fmt.Fprintf(os.Stderr, "warning: %v\n", runErr)
	}
	if execDir != "" {
		fmt.Printf("Artifacts: %s\n", execDir)
	}
	if path := logger.LogPath(); path != "" {
		fmt.Printf("Log: %s\n", path)
	}

	if result == nil || !result.Passed() {
		return exitFailed, nil
	}
	return exitPassed, nil
}
