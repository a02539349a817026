package scenario

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/entrhq/cxvoice/pkg/actions"
	"github.com/entrhq/cxvoice/pkg/browser"
	"github.com/entrhq/cxvoice/pkg/call"
	"github.com/entrhq/cxvoice/pkg/config"
	"github.com/entrhq/cxvoice/pkg/logging"
	"github.com/entrhq/cxvoice/pkg/pages"
)

// Harness is the context object passed to every step. Setup fills in the
// page objects; steps read them and track the current call.
type Harness struct {
	Config *config.Config
	Opener pages.Opener
	Kit    *actions.Kit
	Logger *logging.Logger

	Agent *pages.AgentDesk
	Phone *pages.Webphone
	// Agents holds extra agent desks opened by multi-agent suites.
	Agents []*pages.AgentDesk

	// Call is the call the current step works on.
	Call *call.Call
	// Calls is every call started during the run, in order.
	Calls []*call.Call
}

// NewHarness builds a harness from cfg. Page objects are created by the
// suite's setup through o.
func NewHarness(cfg *config.Config, o pages.Opener, logger *logging.Logger) *Harness {
	if logger == nil {
		logger = logging.Discard("scenario")
	}
	return &Harness{
		Config: cfg,
		Opener: o,
		Kit:    actions.NewKit(KitSettings(cfg), logger.With("actions")),
		Logger: logger,
	}
}

// KitSettings maps the configuration onto call action settings.
func KitSettings(cfg *config.Config) actions.Settings {
	s := actions.DefaultSettings()
	s.WrapUpEnabled = cfg.WrapUpEnabled
	s.Channel = cfg.AgentDesk.Channel
	if cfg.Timeouts.Ready > 0 {
		s.ReadyTimeout = cfg.Timeouts.Ready
	}
	if cfg.Timeouts.Accept > 0 {
		s.AcceptTimeout = cfg.Timeouts.Accept
	}
	if cfg.Timeouts.Expect > 0 {
		s.ExpectTimeout = cfg.Timeouts.Expect
	}
	if cfg.Timeouts.Settle > 0 {
		s.SettleDelay = cfg.Timeouts.Settle
	}
	s.ProbeTimeout = cfg.Timeouts.Probe
	return s
}

// LaunchOptions returns the browser context options from the configuration.
func (h *Harness) LaunchOptions() browser.LaunchOptions {
	b := h.Config.Browser
	ignore := b.IgnoreHTTPSErrors
	return browser.LaunchOptions{
		IgnoreHTTPSErrors: &ignore,
		Viewport:          &browser.Viewport{Width: b.ViewportWidth, Height: b.ViewportHeight},
		Timeout:           float64(b.ActionTimeout.Milliseconds()),
	}
}

// NewCall starts tracking a new call and makes it current.
func (h *Harness) NewCall() *call.Call {
	c := h.Kit.NewCall()
	h.Call = c
	h.Calls = append(h.Calls, c)
	h.Logger.Debugf("tracking %s", c.ID)
	return c
}

// Credentials returns the configured webphone registration.
func (h *Harness) Credentials() pages.Credentials {
	w := h.Config.Webphone
	return pages.Credentials{
		Extension: w.Extension,
		Password:  w.Password,
		SIPServer: w.SIPServer,
		WSSServer: w.WSSServer,
	}
}

// handles returns every open page handle keyed by a file-safe name.
func (h *Harness) handles() map[string]pages.Handle {
	out := make(map[string]pages.Handle)
	if h.Agent != nil {
		out["agent"] = h.Agent.Handle
	}
	if h.Phone != nil {
		out["webphone"] = h.Phone.Handle
	}
	for i, a := range h.Agents {
		if a != nil {
			out[fmt.Sprintf("agent-%d", i+2)] = a.Handle
		}
	}
	return out
}

// Close releases every page handle once. Errors are collected.
func (h *Harness) Close() error {
	var errs []error
	closeOnce := func(name string, handle pages.Handle) {
		if handle == nil {
			return
		}
		if err := handle.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", name, err))
		}
	}

	if h.Agent != nil {
		closeOnce("agent desk", h.Agent.Handle)
		h.Agent = nil
	}
	if h.Phone != nil {
		closeOnce("webphone", h.Phone.Handle)
		h.Phone = nil
	}
	for i, a := range h.Agents {
		if a != nil {
			closeOnce(fmt.Sprintf("agent desk %d", i+2), a.Handle)
		}
	}
	h.Agents = nil
	return errors.Join(errs...)
}

type screenshotter interface {
	Screenshot(path string) error
}

type snapshotter interface {
	Snapshot(maxLength int) (*browser.CleanedHTML, error)
}

// Diagnose writes a screenshot of every open page and a cleaned DOM snapshot
// of each agent desk into dir, returning the written paths. Pages that
// cannot capture are skipped.
func (h *Harness) Diagnose(dir, prefix string, screenshots, snapshots bool) []string {
	var written []string
	handles := h.handles()
	names := make([]string, 0, len(handles))
	for name := range handles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		handle := handles[name]
		if shot, ok := handle.(screenshotter); ok && screenshots {
			path := filepath.Join(dir, "screenshots", fmt.Sprintf("%s-%s.png", prefix, name))
			if err := shot.Screenshot(path); err != nil {
				h.Logger.Warnf("screenshot of %s failed: %v", name, err)
			} else {
				written = append(written, path)
			}
		}

		if !snapshots || !strings.HasPrefix(name, "agent") {
			continue
		}
		snap, ok := handle.(snapshotter)
		if !ok {
			continue
		}
		cleaned, err := snap.Snapshot(browser.DefaultSnapshotLength)
		if err != nil {
			h.Logger.Warnf("snapshot of %s failed: %v", name, err)
			continue
		}
		path := filepath.Join(dir, "snapshots", fmt.Sprintf("%s-%s.html", prefix, name))
		if err := writeFile(path, cleaned.HTML); err != nil {
			h.Logger.Warnf("failed to write snapshot: %v", err)
			continue
		}
		written = append(written, path)
	}
	return written
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0600)
}

// Settle pauses on the agent desk for the configured settle delay.
func (h *Harness) Settle(ctx context.Context) error {
	return browser.Sleep(ctx, h.Kit.Settings().SettleDelay)
}
