// Package actions implements the call-lifecycle operations shared by every
// scenario: readiness, dialing, accepting, in-call controls and the call
// termination paths.
//
// Operations act on the Surface of the party they drive and keep the call's
// state machine in step with the UI. An operation that the call's current
// state does not allow fails with a *call.TransitionError before touching
// the browser.
package actions

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/entrhq/cxvoice/pkg/browser"
	"github.com/entrhq/cxvoice/pkg/call"
	"github.com/entrhq/cxvoice/pkg/logging"
)

// Settings tune the kit's waits and feature flags.
type Settings struct {
	// WrapUpEnabled makes every call end confirm "Leave Without Wrap-Up".
	WrapUpEnabled bool
	// Channel is the MRD the agent toggles ready.
	Channel string

	ReadyTimeout  time.Duration
	AcceptTimeout time.Duration
	// ExpectTimeout bounds verification waits without their own timeout.
	ExpectTimeout time.Duration
	// SettleDelay is the fixed pause after UI transitions that animate.
	SettleDelay time.Duration
	// ProbeTimeout bounds visibility probes used for branch selection.
	// Zero probes the current state without waiting.
	ProbeTimeout time.Duration
}

// DefaultSettings returns the settings used by the inbound suite.
func DefaultSettings() Settings {
	return Settings{
		WrapUpEnabled: true,
		Channel:       "CX VOICE",
		ReadyTimeout:  10 * time.Second,
		AcceptTimeout: 30 * time.Second,
		ExpectTimeout: 5 * time.Second,
		SettleDelay:   2 * time.Second,
	}
}

// Kit runs call-lifecycle operations with fixed settings.
type Kit struct {
	settings Settings
	logger   *logging.Logger
	seq      atomic.Int64
}

// NewKit creates a kit. A nil logger discards output.
func NewKit(settings Settings, logger *logging.Logger) *Kit {
	if logger == nil {
		logger = logging.Discard("actions")
	}
	return &Kit{settings: settings, logger: logger}
}

// Settings returns the kit's settings.
func (k *Kit) Settings() Settings {
	return k.settings
}

// NewCall starts tracking a new idle call.
func (k *Kit) NewCall() *call.Call {
	return call.New(fmt.Sprintf("call-%d", k.seq.Add(1)))
}

// AllowMicrophone grants microphone access to the page's origin.
func (k *Kit) AllowMicrophone(ctx context.Context, s browser.Surface) error {
	return k.grant(ctx, s, browser.PermissionMicrophone)
}

// AllowCamera grants camera access to the page's origin.
func (k *Kit) AllowCamera(ctx context.Context, s browser.Surface) error {
	return k.grant(ctx, s, browser.PermissionCamera)
}

// ResetPermissions issues an empty grant for the page's origin, leaving
// media access to the browser's prompt.
func (k *Kit) ResetPermissions(ctx context.Context, s browser.Surface) error {
	return k.grant(ctx, s)
}

func (k *Kit) grant(ctx context.Context, s browser.Surface, perms ...browser.Permission) error {
	origin, err := originOf(s.URL())
	if err != nil {
		return err
	}
	if err := s.GrantPermissions(ctx, perms, origin); err != nil {
		return err
	}
	k.logger.Debugf("granted %v to %s", perms, origin)
	return nil
}

func originOf(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse page URL %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("page URL %q has no origin", raw)
	}
	return u.Scheme + "://" + u.Host, nil
}

// expect waits for t with the kit's default verification timeout.
func (k *Kit) expect(ctx context.Context, s browser.Surface, t browser.Target) error {
	return s.WaitVisible(ctx, t, k.settings.ExpectTimeout)
}

func (k *Kit) probe(ctx context.Context, s browser.Surface, t browser.Target) bool {
	return s.IsVisible(ctx, t, k.settings.ProbeTimeout)
}

func (k *Kit) settle(ctx context.Context, s browser.Surface) error {
	return s.Settle(ctx, k.settings.SettleDelay)
}

// clickAll clicks targets in order, stopping at the first failure.
func clickAll(ctx context.Context, s browser.Surface, targets ...browser.Target) error {
	for _, t := range targets {
		if err := s.Click(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func requireState(c *call.Call, cause string, states ...call.State) error {
	if c == nil {
		return nil
	}
	return c.Require(cause, states...)
}
