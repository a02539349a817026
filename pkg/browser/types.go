package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session is one actor's isolated browser context and the single page open in it.
type Session struct {
	// Name identifies the actor owning this session (e.g. "agent", "webphone")
	Name string

	// Context is the isolated browser context (cookies, storage, permissions)
	Context playwright.BrowserContext

	// Page is the only page opened inside Context
	Page playwright.Page

	// CreatedAt is the timestamp when the session was launched
	CreatedAt time.Time

	// LastUsedAt is the timestamp of the last action issued on this session
	LastUsedAt time.Time

	// CurrentURL is the URL of the page after the last navigation or click
	CurrentURL string

	manager *SessionManager
	closed  bool
}

// LaunchOptions configures a new session's browsing context.
type LaunchOptions struct {
	// IgnoreHTTPSErrors tolerates invalid or self-signed certificates.
	// A nil value means the default (true).
	IgnoreHTTPSErrors *bool

	// Viewport sets the page viewport; nil means DefaultViewportWidth x DefaultViewportHeight
	Viewport *Viewport

	// Timeout sets the default timeout for page actions (in milliseconds)
	Timeout float64
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// ManagerOptions configures the shared browser process.
type ManagerOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// SlowMo delays every browser operation, useful when watching a headed run
	SlowMo time.Duration

	// SkipInstall skips the playwright driver/browser download
	SkipInstall bool

	// Verbose forwards playwright driver output to stdout/stderr
	Verbose bool
}

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	// WaitUntil specifies when to consider navigation successful
	// Valid values: "load", "domcontentloaded", "networkidle", "commit"
	WaitUntil string

	// Timeout in milliseconds (0 means default)
	Timeout float64
}

// Permission is a browser permission that can be granted to an origin.
type Permission string

const (
	PermissionMicrophone Permission = "microphone"
	PermissionCamera     Permission = "camera"
)

// Default values for sessions and actions
const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 900
	DefaultMaxSessions    = 4
	DefaultSnapshotLength = 50000
)

// withDefaults fills unset launch options.
func (o LaunchOptions) withDefaults() LaunchOptions {
	if o.IgnoreHTTPSErrors == nil {
		o.IgnoreHTTPSErrors = playwright.Bool(true)
	}
	if o.Viewport == nil {
		o.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}
