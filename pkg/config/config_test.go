package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://efcx4-voice.expertflow.com/unified-agent", cfg.AgentDesk.URL)
	assert.Equal(t, "https://webphone.expertflow.com/", cfg.Webphone.URL)
	assert.Equal(t, "6005", cfg.ServiceIdentifier)
	assert.Equal(t, "CX VOICE", cfg.AgentDesk.Channel)
	assert.True(t, cfg.WrapUpEnabled)
	assert.True(t, cfg.Browser.IgnoreHTTPSErrors)
	assert.Equal(t, 1280, cfg.Browser.ViewportWidth)
	assert.Equal(t, 900, cfg.Browser.ViewportHeight)
	assert.Equal(t, 30*time.Second, cfg.Timeouts.Accept)
	assert.Equal(t, 90*time.Second, cfg.Timeouts.Step)
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "credentials and endpoints",
			env: map[string]string{
				EnvAgentUsername: "alice",
				EnvAgentPassword: "s3cret",
				EnvWebphoneUser:  "3001",
				EnvWebphoneHost:  "10.0.0.5",
				EnvWebphoneWSS:   "wss://10.0.0.5:7443",
				EnvIVRDN:         "7007",
				EnvChannel:       "CX CHAT",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "alice", cfg.AgentDesk.Username)
				assert.Equal(t, "s3cret", cfg.AgentDesk.Password)
				assert.Equal(t, "3001", cfg.Webphone.Extension)
				assert.Equal(t, "10.0.0.5", cfg.Webphone.SIPServer)
				assert.Equal(t, "wss://10.0.0.5:7443", cfg.Webphone.WSSServer)
				assert.Equal(t, "7007", cfg.ServiceIdentifier)
				assert.Equal(t, "CX CHAT", cfg.AgentDesk.Channel)
			},
		},
		{
			name: "wrap-up disabled only by false",
			env:  map[string]string{EnvWrapUp: "false"},
			check: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.WrapUpEnabled)
			},
		},
		{
			name: "wrap-up any other value is enabled",
			env:  map[string]string{EnvWrapUp: "0"},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.WrapUpEnabled)
			},
		},
		{
			name: "browser flags",
			env:  map[string]string{EnvHeadless: "false", EnvSlowMo: "250", EnvPreinstalled: "1"},
			check: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.Browser.Headless)
				assert.Equal(t, 250*time.Millisecond, cfg.Browser.SlowMo)
				assert.True(t, cfg.Browser.SkipInstall)
			},
		},
		{
			name: "empty values are ignored",
			env:  map[string]string{EnvAgentUsername: ""},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "bilal", cfg.AgentDesk.Username)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			require.NoError(t, cfg.ApplyEnv(lookupMap(tt.env)))
			tt.check(t, cfg)
		})
	}
}

func TestApplyEnv_InvalidSlowMo(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyEnv(lookupMap(map[string]string{EnvSlowMo: "fast"}))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cxvoice.yaml")
	content := `
suite: smoke
run: ["webphone*"]
agent_desk:
  url: https://desk.lab.local/unified-agent
  username: agent7
webphone:
  extension: "4001"
wrap_up_enabled: false
timeouts:
  accept: 15s
  step: 2m
artifacts:
  output_dir: out
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, SuiteSmoke, cfg.Suite)
	assert.Equal(t, []string{"webphone*"}, cfg.Run)
	assert.Equal(t, "https://desk.lab.local/unified-agent", cfg.AgentDesk.URL)
	assert.Equal(t, "agent7", cfg.AgentDesk.Username)
	assert.Equal(t, "12345", cfg.AgentDesk.Password, "unset fields keep defaults")
	assert.Equal(t, "4001", cfg.Webphone.Extension)
	assert.False(t, cfg.WrapUpEnabled)
	assert.Equal(t, 15*time.Second, cfg.Timeouts.Accept)
	assert.Equal(t, 2*time.Minute, cfg.Timeouts.Step)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.Ready)
	assert.Equal(t, "out", cfg.Artifacts.OutputDir)
	assert.Equal(t, path, cfg.ConfigFilePath)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("suite: [unclosed"), 0600))
	_, err = LoadFile(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown suite", func(c *Config) { c.Suite = "outbound" }, "invalid suite"},
		{"missing desk url", func(c *Config) { c.AgentDesk.URL = "" }, "agent desk url"},
		{"missing service identifier", func(c *Config) { c.ServiceIdentifier = "" }, "service identifier"},
		{"bad viewport", func(c *Config) { c.Browser.ViewportWidth = 0 }, "viewport"},
		{"negative timeout", func(c *Config) { c.Timeouts.Accept = -time.Second }, "timeouts.accept"},
		{"artifacts without dir", func(c *Config) { c.Artifacts.OutputDir = "" }, "output_dir"},
		{"bad verbosity", func(c *Config) { c.Logging.Verbosity = "loud" }, "verbosity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	cfg := DefaultConfig()
	cfg.Logging.Verbosity = ""
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "normal", cfg.Logging.Verbosity)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := `# lab credentials
CXV_TEST_AGENT="carol"
export CXV_TEST_EXT='5005'
CXV_TEST_EXISTING=from-file
not a pair
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	t.Setenv("CXV_TEST_EXISTING", "from-env")
	// Registered with t.Setenv so they are restored after the test.
	t.Setenv("CXV_TEST_AGENT", "")
	t.Setenv("CXV_TEST_EXT", "")
	require.NoError(t, os.Unsetenv("CXV_TEST_AGENT"))
	require.NoError(t, os.Unsetenv("CXV_TEST_EXT"))

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "carol", os.Getenv("CXV_TEST_AGENT"))
	assert.Equal(t, "5005", os.Getenv("CXV_TEST_EXT"))
	assert.Equal(t, "from-env", os.Getenv("CXV_TEST_EXISTING"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
