// Package browsertest provides an in-memory browser.Surface for tests that
// exercise page objects and call actions without launching Chromium.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/entrhq/cxvoice/pkg/browser"
)

// ErrNotVisible is the underlying error of WaitErrors produced by Fake.
var ErrNotVisible = errors.New("element not visible")

// Action kinds recorded by Fake.
const (
	ActGoto   = "goto"
	ActReload = "reload"
	ActClick  = "click"
	ActFill   = "fill"
	ActPress  = "press"
	ActSelect = "select"
	ActWait   = "wait"
	ActProbe  = "probe"
	ActGrant  = "grant"
	ActSettle = "settle"
	ActClose  = "close"
	ActShot   = "screenshot"
)

// Action is one recorded interaction.
type Action struct {
	Kind   string
	Target string
	Value  string
}

func (a Action) String() string {
	if a.Value == "" {
		return fmt.Sprintf("%s %s", a.Kind, a.Target)
	}
	return fmt.Sprintf("%s %s %q", a.Kind, a.Target, a.Value)
}

// Fake is a scriptable browser.Surface. Elements are invisible until shown;
// clicks can trigger hooks that change what is visible, which is how tests
// model the remote application's reactions.
type Fake struct {
	mu sync.Mutex

	// Strict makes click, fill, press and select fail on invisible targets.
	Strict bool

	url       string
	actions   []Action
	visible   map[string]bool
	onClick   map[string][]func(*Fake)
	onReload  []func(*Fake)
	gotoErrs  []error
	clickErrs map[string]error
	grants    map[string][]browser.Permission
	values    map[string]string
	closed    int
}

// New returns an empty Fake positioned at about:blank.
func New() *Fake {
	return &Fake{
		url:       "about:blank",
		visible:   make(map[string]bool),
		onClick:   make(map[string][]func(*Fake)),
		clickErrs: make(map[string]error),
		grants:    make(map[string][]browser.Permission),
		values:    make(map[string]string),
	}
}

var _ browser.Surface = (*Fake)(nil)

// Show makes targets visible.
func (f *Fake) Show(targets ...browser.Target) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range targets {
		f.visible[t.String()] = true
	}
	return f
}

// Hide makes targets invisible.
func (f *Fake) Hide(targets ...browser.Target) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range targets {
		delete(f.visible, t.String())
	}
	return f
}

// Visible reports whether t is currently visible.
func (f *Fake) Visible(t browser.Target) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible[t.String()]
}

// OnClick registers fn to run after every successful click on t.
func (f *Fake) OnClick(t browser.Target, fn func(*Fake)) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := t.String()
	f.onClick[key] = append(f.onClick[key], fn)
	return f
}

// OnReload registers fn to run after every reload.
func (f *Fake) OnReload(fn func(*Fake)) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onReload = append(f.onReload, fn)
	return f
}

// FailGoto queues err to be returned by the next Goto.
func (f *Fake) FailGoto(err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotoErrs = append(f.gotoErrs, err)
	return f
}

// FailClick makes every click on t return err.
func (f *Fake) FailClick(t browser.Target, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clickErrs[t.String()] = err
	return f
}

// SetURL positions the fake page at url.
func (f *Fake) SetURL(url string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.url = url
	return f
}

// Actions returns a copy of every recorded action in order.
func (f *Fake) Actions() []Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Action, len(f.actions))
	copy(out, f.actions)
	return out
}

// Count returns how many actions of kind were issued against t.
func (f *Fake) Count(kind string, t browser.Target) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := t.String()
	n := 0
	for _, a := range f.actions {
		if a.Kind == kind && a.Target == key {
			n++
		}
	}
	return n
}

// Clicks returns how many times t was clicked.
func (f *Fake) Clicks(t browser.Target) int {
	return f.Count(ActClick, t)
}

// Value returns the last value filled into t.
func (f *Fake) Value(t browser.Target) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[t.String()]
}

// Granted returns permissions granted to origin.
func (f *Fake) Granted(origin string) []browser.Permission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]browser.Permission(nil), f.grants[origin]...)
}

// Closed returns how many times Close was called.
func (f *Fake) Closed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *Fake) record(kind, target, value string) {
	f.actions = append(f.actions, Action{Kind: kind, Target: target, Value: value})
}

// Goto implements browser.Surface.
func (f *Fake) Goto(ctx context.Context, url string, _ browser.NavigateOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(ActGoto, url, "")
	if len(f.gotoErrs) > 0 {
		err := f.gotoErrs[0]
		f.gotoErrs = f.gotoErrs[1:]
		return &browser.NavigationError{URL: url, Err: err}
	}
	f.url = url
	return nil
}

// Reload implements browser.Surface.
func (f *Fake) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.record(ActReload, f.url, "")
	hooks := slices.Clone(f.onReload)
	f.mu.Unlock()

	for _, fn := range hooks {
		fn(f)
	}
	return nil
}

// URL implements browser.Surface.
func (f *Fake) URL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url
}

// Click implements browser.Surface.
func (f *Fake) Click(ctx context.Context, t browser.Target, opts ...browser.ClickOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := t.String()
	force, _ := browser.ApplyClickOptions(opts...)

	f.mu.Lock()
	f.record(ActClick, key, "")
	if err, ok := f.clickErrs[key]; ok {
		f.mu.Unlock()
		return fmt.Errorf("click %s failed: %w", key, err)
	}
	if f.Strict && !force && !f.visible[key] {
		f.mu.Unlock()
		return &browser.WaitError{Target: t, Err: ErrNotVisible}
	}
	hooks := slices.Clone(f.onClick[key])
	f.mu.Unlock()

	for _, fn := range hooks {
		fn(f)
	}
	return nil
}

// Fill implements browser.Surface.
func (f *Fake) Fill(ctx context.Context, t browser.Target, value string) error {
	return f.input(ctx, ActFill, t, value)
}

// Press implements browser.Surface.
func (f *Fake) Press(ctx context.Context, t browser.Target, key string) error {
	return f.input(ctx, ActPress, t, key)
}

// SelectOption implements browser.Surface.
func (f *Fake) SelectOption(ctx context.Context, t browser.Target, value string) error {
	return f.input(ctx, ActSelect, t, value)
}

func (f *Fake) input(ctx context.Context, kind string, t browser.Target, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := t.String()
	f.record(kind, key, value)
	if f.Strict && !f.visible[key] {
		return &browser.WaitError{Target: t, Err: ErrNotVisible}
	}
	if kind == ActFill {
		f.values[key] = value
	}
	return nil
}

// WaitVisible implements browser.Surface. It never sleeps: the target is
// either visible now or the wait fails immediately.
func (f *Fake) WaitVisible(ctx context.Context, t browser.Target, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := t.String()
	f.record(ActWait, key, timeout.String())
	if !f.visible[key] {
		return &browser.WaitError{Target: t, Timeout: timeout, Err: ErrNotVisible}
	}
	return nil
}

// IsVisible implements browser.Surface.
func (f *Fake) IsVisible(ctx context.Context, t browser.Target, timeout time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := t.String()
	f.record(ActProbe, key, timeout.String())
	return f.visible[key]
}

// GrantPermissions implements browser.Surface.
func (f *Fake) GrantPermissions(ctx context.Context, perms []browser.Permission, origin string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range perms {
		f.record(ActGrant, origin, string(p))
		f.grants[origin] = append(f.grants[origin], p)
	}
	return nil
}

// Settle implements browser.Surface without sleeping.
func (f *Fake) Settle(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(ActSettle, "", d.String())
	return nil
}

// Close records the close; it lets Fake stand in for a page object's handle.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(ActClose, "", "")
	f.closed++
	return nil
}

// Screenshot writes a placeholder image so diagnostics can be exercised.
func (f *Fake) Screenshot(path string) error {
	f.mu.Lock()
	f.record(ActShot, path, "")
	url := f.url
	f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("fake screenshot of "+url), 0600)
}
