package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
)

var _ Surface = (*Session)(nil)

// UpdateLastUsed updates the LastUsedAt timestamp to the current time.
func (s *Session) UpdateLastUsed() {
	s.LastUsedAt = time.Now()
}

// begin guards every action: the session must be open and ctx still live.
func (s *Session) begin(ctx context.Context) error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.UpdateLastUsed()
	return nil
}

// Goto navigates the session's page to url. Failures are returned as *NavigationError.
func (s *Session) Goto(ctx context.Context, url string, opts NavigateOptions) error {
	if err := s.begin(ctx); err != nil {
		return err
	}

	gotoOpts := playwright.PageGotoOptions{}
	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		gotoOpts.WaitUntil = &waitUntil
	}
	if opts.Timeout > 0 {
		gotoOpts.Timeout = playwright.Float(opts.Timeout)
	}

	if _, err := s.Page.Goto(url, gotoOpts); err != nil {
		return &NavigationError{URL: url, Err: err}
	}

	s.CurrentURL = s.Page.URL()
	return nil
}

// Reload reloads the current page.
func (s *Session) Reload(ctx context.Context) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	if _, err := s.Page.Reload(); err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	s.CurrentURL = s.Page.URL()
	return nil
}

// URL returns the page's current URL.
func (s *Session) URL() string {
	return s.Page.URL()
}

// Click clicks the element identified by t.
func (s *Session) Click(ctx context.Context, t Target, opts ...ClickOption) error {
	if err := s.begin(ctx); err != nil {
		return err
	}

	force, timeout := ApplyClickOptions(opts...)
	clickOpts := playwright.LocatorClickOptions{}
	if force {
		clickOpts.Force = playwright.Bool(true)
	}
	if timeout > 0 {
		clickOpts.Timeout = playwright.Float(float64(timeout.Milliseconds()))
	}

	if err := s.locate(t).Click(clickOpts); err != nil {
		return fmt.Errorf("click %s failed: %w", t, err)
	}

	// Update current URL in case click caused navigation
	s.CurrentURL = s.Page.URL()
	return nil
}

// Fill fills an input element with value.
func (s *Session) Fill(ctx context.Context, t Target, value string) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	if err := s.locate(t).Fill(value); err != nil {
		return fmt.Errorf("fill %s failed: %w", t, err)
	}
	return nil
}

// Press sends a key chord to the element.
func (s *Session) Press(ctx context.Context, t Target, key string) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	if err := s.locate(t).Press(key); err != nil {
		return fmt.Errorf("press %s on %s failed: %w", key, t, err)
	}
	return nil
}

// SelectOption selects the <option> whose value is value.
func (s *Session) SelectOption(ctx context.Context, t Target, value string) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	_, err := s.locate(t).SelectOption(playwright.SelectOptionValues{
		Values: playwright.StringSlice(value),
	})
	if err != nil {
		return fmt.Errorf("select %q in %s failed: %w", value, t, err)
	}
	return nil
}

// WaitVisible waits for t to become visible.
func (s *Session) WaitVisible(ctx context.Context, t Target, timeout time.Duration) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	err := s.locate(t).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return &WaitError{Target: t, Timeout: timeout, Err: err}
	}
	return nil
}

// IsVisible probes t for up to timeout. Locator.IsVisible does not wait, so a
// bounded WaitFor is used instead; any failure counts as not visible.
func (s *Session) IsVisible(ctx context.Context, t Target, timeout time.Duration) bool {
	if timeout <= 0 {
		if err := s.begin(ctx); err != nil {
			return false
		}
		visible, err := s.locate(t).IsVisible()
		return err == nil && visible
	}
	return s.WaitVisible(ctx, t, timeout) == nil
}

// GrantPermissions grants perms to origin within the session's context.
func (s *Session) GrantPermissions(ctx context.Context, perms []Permission, origin string) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = string(p)
	}
	opts := playwright.BrowserContextGrantPermissionsOptions{}
	if origin != "" {
		opts.Origin = playwright.String(origin)
	}
	if err := s.Context.GrantPermissions(names, opts); err != nil {
		return fmt.Errorf("failed to grant %v to %s: %w", names, origin, err)
	}
	return nil
}

// Settle pauses for d.
func (s *Session) Settle(ctx context.Context, d time.Duration) error {
	return Sleep(ctx, d)
}

// Screenshot writes a full-page PNG to path, creating parent directories.
func (s *Session) Screenshot(path string) error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	_, err := s.Page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("screenshot failed: %w", err)
	}
	return nil
}

// Snapshot returns the page's DOM with scripts, styles and noise stripped.
func (s *Session) Snapshot(maxLength int) (*CleanedHTML, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if maxLength <= 0 {
		maxLength = DefaultSnapshotLength
	}
	raw, err := s.Page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}
	return cleanHTML(raw, maxLength)
}

// Close releases the page and context. Safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	if s.manager != nil {
		return s.manager.CloseSession(s.Name)
	}
	return s.release()
}

func (s *Session) release() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var pageErr error
	if s.Page != nil {
		pageErr = s.Page.Close()
	}
	if s.Context != nil {
		if err := s.Context.Close(); err != nil {
			return fmt.Errorf("failed to close context: %w", err)
		}
	}
	if pageErr != nil {
		return fmt.Errorf("failed to close page: %w", pageErr)
	}
	return nil
}

// locate resolves a Target into a playwright locator, walking its parent chain.
func (s *Session) locate(t Target) playwright.Locator {
	var loc playwright.Locator
	if t.Parent != nil {
		parent := s.locate(*t.Parent)
		loc = locateIn(parent, t)
	} else {
		loc = locateOnPage(s.Page, t)
	}

	if t.HasText != "" {
		loc = loc.Filter(playwright.LocatorFilterOptions{HasText: t.HasText})
	}
	if t.First {
		loc = loc.First()
	}
	return loc
}

func (t Target) nameMatcher() interface{} {
	if t.Pattern != nil {
		return t.Pattern
	}
	return t.Name
}

func locateOnPage(page playwright.Page, t Target) playwright.Locator {
	switch t.Kind {
	case KindRole:
		opts := playwright.PageGetByRoleOptions{}
		if t.Pattern != nil || t.Name != "" {
			opts.Name = t.nameMatcher()
		}
		if t.Exact {
			opts.Exact = playwright.Bool(true)
		}
		return page.GetByRole(playwright.AriaRole(t.Role), opts)
	case KindText:
		opts := playwright.PageGetByTextOptions{}
		if t.Exact {
			opts.Exact = playwright.Bool(true)
		}
		return page.GetByText(t.nameMatcher(), opts)
	default:
		return page.Locator(t.selectorString())
	}
}

func locateIn(parent playwright.Locator, t Target) playwright.Locator {
	switch t.Kind {
	case KindRole:
		opts := playwright.LocatorGetByRoleOptions{}
		if t.Pattern != nil || t.Name != "" {
			opts.Name = t.nameMatcher()
		}
		if t.Exact {
			opts.Exact = playwright.Bool(true)
		}
		return parent.GetByRole(playwright.AriaRole(t.Role), opts)
	case KindText:
		opts := playwright.LocatorGetByTextOptions{}
		if t.Exact {
			opts.Exact = playwright.Bool(true)
		}
		return parent.GetByText(t.nameMatcher(), opts)
	default:
		return parent.Locator(t.selectorString())
	}
}
