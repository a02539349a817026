package browser

import (
	"context"
	"time"
)

// Surface is the set of page interactions page objects and call actions rely on.
// *Session implements it on top of playwright; browsertest.Fake implements it
// in memory.
//
// Actions against one Surface are issued sequentially by a single caller.
type Surface interface {
	// Goto navigates the page to url.
	Goto(ctx context.Context, url string, opts NavigateOptions) error

	// Reload reloads the current page.
	Reload(ctx context.Context) error

	// URL returns the page's current URL.
	URL() string

	// Click clicks the element identified by t.
	Click(ctx context.Context, t Target, opts ...ClickOption) error

	// Fill replaces the value of an input element.
	Fill(ctx context.Context, t Target, value string) error

	// Press sends a key chord (e.g. "ControlOrMeta+a") to the element.
	Press(ctx context.Context, t Target, key string) error

	// SelectOption selects an <option> by value.
	SelectOption(ctx context.Context, t Target, value string) error

	// WaitVisible blocks until t is visible or timeout elapses, returning
	// a *WaitError on timeout.
	WaitVisible(ctx context.Context, t Target, timeout time.Duration) error

	// IsVisible reports whether t becomes visible within timeout.
	// Failures are swallowed and reported as false.
	IsVisible(ctx context.Context, t Target, timeout time.Duration) bool

	// GrantPermissions grants permissions to origin within this session's context.
	GrantPermissions(ctx context.Context, perms []Permission, origin string) error

	// Settle pauses for d so the remote UI can apply a state change.
	Settle(ctx context.Context, d time.Duration) error
}

// ClickOption adjusts a single click.
type ClickOption func(*clickConfig)

type clickConfig struct {
	force   bool
	timeout time.Duration
}

// Force clicks without waiting for actionability checks (used on overlays).
func Force() ClickOption {
	return func(c *clickConfig) { c.force = true }
}

// ClickTimeout bounds how long the click waits for its target.
func ClickTimeout(d time.Duration) ClickOption {
	return func(c *clickConfig) { c.timeout = d }
}

// ApplyClickOptions resolves opts into a force flag and timeout (0 = default).
func ApplyClickOptions(opts ...ClickOption) (force bool, timeout time.Duration) {
	var c clickConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c.force, c.timeout
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
