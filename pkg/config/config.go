// Package config holds the harness configuration: target applications,
// credentials, browser options, timeouts, artifacts and logging.
//
// Values are resolved once at startup with this precedence, lowest first:
// DefaultConfig, YAML file, environment (after loading .env), CLI flags.
// The result is validated and treated as immutable afterwards.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete harness configuration.
type Config struct {
	// Suite to run: inbound, smoke or isolation
	Suite string `yaml:"suite" json:"suite"`

	// Step name globs; empty runs every step
	Run []string `yaml:"run" json:"run"`

	AgentDesk AgentDeskConfig `yaml:"agent_desk" json:"agent_desk"`
	Webphone  WebphoneConfig  `yaml:"webphone" json:"webphone"`

	// ServiceIdentifier is the number the webphone dials (the IVR DN)
	ServiceIdentifier string `yaml:"service_identifier" json:"service_identifier"`

	// WrapUpEnabled requires "Leave Without Wrap-Up" after every call end
	WrapUpEnabled bool `yaml:"wrap_up_enabled" json:"wrap_up_enabled"`

	Browser   BrowserConfig  `yaml:"browser" json:"browser"`
	Timeouts  TimeoutConfig  `yaml:"timeouts" json:"timeouts"`
	Artifacts ArtifactConfig `yaml:"artifacts" json:"artifacts"`
	Logging   LoggingConfig  `yaml:"logging" json:"logging"`

	// ConfigFilePath is the file the config was loaded from, if any
	ConfigFilePath string `yaml:"-" json:"config_file,omitempty"`
}

// AgentDeskConfig identifies the agent console and the agent logging into it.
type AgentDeskConfig struct {
	URL      string `yaml:"url" json:"url"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"-"`
	// Channel is the MRD toggled ready, e.g. "CX VOICE"
	Channel string `yaml:"channel" json:"channel"`
	// SecondUsername is the extra agent logged in by the isolation suite
	SecondUsername string `yaml:"second_username" json:"second_username"`
}

// WebphoneConfig identifies the webphone and its SIP registration.
type WebphoneConfig struct {
	URL       string `yaml:"url" json:"url"`
	Extension string `yaml:"extension" json:"extension"`
	Password  string `yaml:"password" json:"-"`
	SIPServer string `yaml:"sip_server" json:"sip_server"`
	WSSServer string `yaml:"wss_server" json:"wss_server"`
}

// BrowserConfig controls the Chromium process and its contexts.
type BrowserConfig struct {
	Headless          bool          `yaml:"headless" json:"headless"`
	SlowMo            time.Duration `yaml:"slow_mo" json:"slow_mo"`
	SkipInstall       bool          `yaml:"skip_install" json:"skip_install"`
	IgnoreHTTPSErrors bool          `yaml:"ignore_https_errors" json:"ignore_https_errors"`
	ViewportWidth     int           `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight    int           `yaml:"viewport_height" json:"viewport_height"`
	// ActionTimeout is the page default for clicks and fills
	ActionTimeout time.Duration `yaml:"action_timeout" json:"action_timeout"`
}

// TimeoutConfig bounds the waits issued by call actions and the runner.
type TimeoutConfig struct {
	Ready  time.Duration `yaml:"ready" json:"ready"`
	Accept time.Duration `yaml:"accept" json:"accept"`
	Expect time.Duration `yaml:"expect" json:"expect"`
	Settle time.Duration `yaml:"settle" json:"settle"`
	Probe  time.Duration `yaml:"probe" json:"probe"`
	Step   time.Duration `yaml:"step" json:"step"`
}

// ArtifactConfig defines artifact generation configuration
type ArtifactConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// Individual format flags
	JSON        bool `yaml:"json" json:"json"`
	Markdown    bool `yaml:"markdown" json:"markdown"`
	JUnit       bool `yaml:"junit" json:"junit"`
	Metrics     bool `yaml:"metrics" json:"metrics"`
	Trace       bool `yaml:"trace" json:"trace"`
	Screenshots bool `yaml:"screenshots" json:"screenshots"`
	Snapshots   bool `yaml:"snapshots" json:"snapshots"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls console output: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`
	// Dir overrides the log file directory (~/.cxvoice/logs)
	Dir string `yaml:"dir" json:"dir"`
}

// Suite names.
const (
	SuiteInbound   = "inbound"
	SuiteSmoke     = "smoke"
	SuiteIsolation = "isolation"
)

// DefaultConfig returns the configuration for the reference lab deployment.
func DefaultConfig() *Config {
	return &Config{
		Suite: SuiteInbound,
		AgentDesk: AgentDeskConfig{
			URL:            "https://efcx4-voice.expertflow.com/unified-agent",
			Username:       "bilal",
			Password:       "12345",
			Channel:        "CX VOICE",
			SecondUsername: "bilal1",
		},
		Webphone: WebphoneConfig{
			URL:       "https://webphone.expertflow.com/",
			Extension: "2208",
			Password:  "1234",
			SIPServer: "192.168.1.17",
			WSSServer: "wss://192.168.1.17:7443",
		},
		ServiceIdentifier: "6005",
		WrapUpEnabled:     true,
		Browser: BrowserConfig{
			Headless:          true,
			IgnoreHTTPSErrors: true,
			ViewportWidth:     1280,
			ViewportHeight:    900,
			ActionTimeout:     30 * time.Second,
		},
		Timeouts: TimeoutConfig{
			Ready:  10 * time.Second,
			Accept: 30 * time.Second,
			Expect: 5 * time.Second,
			Settle: 2 * time.Second,
			Step:   90 * time.Second,
		},
		Artifacts: ArtifactConfig{
			Enabled:     true,
			OutputDir:   ".cxvoice/artifacts",
			JSON:        true,
			Markdown:    true,
			JUnit:       true,
			Metrics:     true,
			Trace:       true,
			Screenshots: true,
			Snapshots:   true,
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
		},
	}
}

// LoadFile reads a YAML file on top of DefaultConfig.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.ConfigFilePath = path
	return cfg, nil
}

// Load resolves defaults, the optional YAML file at path, .env and the
// process environment. CLI flags are applied by the caller afterwards.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Suite {
	case SuiteInbound, SuiteSmoke, SuiteIsolation:
	default:
		return fmt.Errorf("invalid suite: %s (must be 'inbound', 'smoke' or 'isolation')", c.Suite)
	}

	if c.AgentDesk.URL == "" {
		return fmt.Errorf("agent desk url is required")
	}
	if c.Webphone.URL == "" {
		return fmt.Errorf("webphone url is required")
	}
	if c.AgentDesk.Username == "" {
		return fmt.Errorf("agent username is required")
	}
	if c.AgentDesk.Channel == "" {
		return fmt.Errorf("agent channel is required")
	}
	if c.Webphone.Extension == "" {
		return fmt.Errorf("webphone extension is required")
	}
	if c.ServiceIdentifier == "" {
		return fmt.Errorf("service identifier is required")
	}

	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", c.Browser.ViewportWidth, c.Browser.ViewportHeight)
	}
	if c.Browser.SlowMo < 0 {
		return fmt.Errorf("slow_mo cannot be negative")
	}

	timeouts := map[string]time.Duration{
		"ready":  c.Timeouts.Ready,
		"accept": c.Timeouts.Accept,
		"expect": c.Timeouts.Expect,
		"settle": c.Timeouts.Settle,
		"probe":  c.Timeouts.Probe,
		"step":   c.Timeouts.Step,
	}
	for name, d := range timeouts {
		if d < 0 {
			return fmt.Errorf("timeouts.%s cannot be negative", name)
		}
	}

	if c.Artifacts.Enabled && c.Artifacts.OutputDir == "" {
		return fmt.Errorf("artifacts.output_dir is required when artifacts are enabled")
	}

	// Set default verbosity if not specified
	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}

	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validLevels[c.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	return nil
}
