package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable names.
const (
	EnvAgentDeskURL  = "AGENT_DESK_URL"
	EnvAgentUsername = "AGENT_USERNAME"
	EnvAgentPassword = "AGENT_PASSWORD"
	EnvWebphoneURL   = "WEBPHONE_URL"
	EnvWebphoneUser  = "WEBPHONE_USER"
	EnvWebphonePass  = "WEBPHONE_PASS"
	EnvWebphoneHost  = "WEBPHONE_DOMAIN"
	EnvWebphoneWSS   = "WEBPHONE_WSS"
	EnvIVRDN         = "IVR_DN"
	EnvWrapUp        = "WRAP_UP_ENABLED"
	EnvChannel       = "MRD_CHANNEL"
	EnvHeadless      = "HEADLESS"
	EnvSlowMo        = "SLOW_MO"
	EnvPreinstalled  = "PLAYWRIGHT_PREINSTALLED"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides fields from environment variables that are set.
// WRAP_UP_ENABLED disables wrap-up only for the exact value "false".
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	strs := []struct {
		key string
		dst *string
	}{
		{EnvAgentDeskURL, &c.AgentDesk.URL},
		{EnvAgentUsername, &c.AgentDesk.Username},
		{EnvAgentPassword, &c.AgentDesk.Password},
		{EnvWebphoneURL, &c.Webphone.URL},
		{EnvWebphoneUser, &c.Webphone.Extension},
		{EnvWebphonePass, &c.Webphone.Password},
		{EnvWebphoneHost, &c.Webphone.SIPServer},
		{EnvWebphoneWSS, &c.Webphone.WSSServer},
		{EnvIVRDN, &c.ServiceIdentifier},
		{EnvChannel, &c.AgentDesk.Channel},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok && v != "" {
			*s.dst = v
		}
	}

	if v, ok := lookup(EnvWrapUp); ok {
		c.WrapUpEnabled = v != "false"
	}
	if v, ok := lookup(EnvHeadless); ok && v != "" {
		c.Browser.Headless = v != "false"
	}
	if v, ok := lookup(EnvPreinstalled); ok && v != "" {
		c.Browser.SkipInstall = v == "1" || v == "true"
	}
	if v, ok := lookup(EnvSlowMo); ok && v != "" {
		d, err := parseMillis(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvSlowMo, err)
		}
		c.Browser.SlowMo = d
	}
	return nil
}

// parseMillis accepts a Go duration ("250ms") or a bare millisecond count.
func parseMillis(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

// LoadDotEnv loads simple KEY=VALUE lines from path if it exists.
// Existing environment variables take precedence and are not overwritten.
func LoadDotEnv(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, val, ok := parseDotEnvLine(scanner.Text())
		if !ok {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, val); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

func parseDotEnvLine(line string) (key, val string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")
	i := strings.Index(line, "=")
	if i <= 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:i])
	val = strings.TrimSpace(line[i+1:])
	if len(val) >= 2 {
		if (val[0] == '"' && val[len(val)-1] == '"') || (val[0] == '\'' && val[len(val)-1] == '\'') {
			val = val[1 : len(val)-1]
		}
	}
	return key, val, key != ""
}
