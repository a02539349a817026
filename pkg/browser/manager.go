package browser

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// SessionManager owns the playwright driver and the single browser process.
// Every session it launches is a separate context inside that process.
type SessionManager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	playwright  *playwright.Playwright
	browser     playwright.Browser
	opts        ManagerOptions
	maxSessions int
	initialized bool
}

// NewSessionManager creates a new session manager.
func NewSessionManager(opts ManagerOptions) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		opts:        opts,
		maxSessions: DefaultMaxSessions,
	}
}

// Initialize installs (unless skipped) and starts playwright, then launches Chromium.
// It must be called before Launch. Calling it again is a no-op.
func (m *SessionManager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	runOpts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  m.opts.Verbose,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
	if m.opts.Verbose {
		runOpts.Stdout = os.Stdout
		runOpts.Stderr = os.Stderr
	}

	if !m.opts.SkipInstall {
		if err := playwright.Install(runOpts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(m.opts.Headless),
		// Fake media devices so getUserMedia works once permissions are granted.
		Args: []string{
			"--use-fake-ui-for-media-stream",
			"--use-fake-device-for-media-stream",
		},
	}
	if m.opts.SlowMo > 0 {
		launchOpts.SlowMo = playwright.Float(float64(m.opts.SlowMo.Milliseconds()))
	}

	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	m.playwright = pw
	m.browser = browser
	m.initialized = true
	return nil
}

// Launch creates a new isolated context with one page and registers it under name.
// Context or page creation errors are returned as-is (wrapped); nothing is retried.
func (m *SessionManager) Launch(ctx context.Context, name string, opts LaunchOptions) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[name]; exists {
		return nil, fmt.Errorf("session %q already exists", name)
	}
	if len(m.sessions) >= m.maxSessions {
		return nil, fmt.Errorf("maximum number of sessions (%d) reached", m.maxSessions)
	}
	if !m.initialized {
		return nil, fmt.Errorf("session manager not initialized")
	}

	opts = opts.withDefaults()

	bctx, err := m.browser.NewContext(playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: opts.IgnoreHTTPSErrors,
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(opts.Timeout)

	now := time.Now()
	session := &Session{
		Name:       name,
		Context:    bctx,
		Page:       page,
		CreatedAt:  now,
		LastUsedAt: now,
		CurrentURL: "about:blank",
		manager:    m,
	}

	m.sessions[name] = session
	return session, nil
}

// GetSession retrieves an active session by name.
func (m *SessionManager) GetSession(name string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[name]
	if !exists {
		return nil, fmt.Errorf("session %q not found", name)
	}
	return session, nil
}

// Sessions returns the active sessions ordered by name.
func (m *SessionManager) Sessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CloseSession closes a session's page and context and forgets it.
// Session.Close goes through here for managed sessions.
func (m *SessionManager) CloseSession(name string) error {
	m.mu.Lock()
	session, exists := m.sessions[name]
	if exists {
		delete(m.sessions, name)
	}
	m.mu.Unlock()

	if !exists {
		return fmt.Errorf("session %q not found", name)
	}
	return session.release()
}

// Shutdown closes all sessions, the browser and the playwright driver.
func (m *SessionManager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, session := range m.sessions {
		if err := session.release(); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", name, err))
		}
		delete(m.sessions, name)
	}

	if m.initialized {
		if err := m.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
		if err := m.playwright.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
		m.initialized = false
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}
