// Package suites declares the runnable suites: the serial inbound call
// handling flow, a smoke check of login and readiness, and the two-agent
// context isolation check.
package suites

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/entrhq/cxvoice/pkg/config"
	"github.com/entrhq/cxvoice/pkg/pages"
	"github.com/entrhq/cxvoice/pkg/scenario"
)

var registry = map[string]func() scenario.Suite{
	config.SuiteInbound:   Inbound,
	config.SuiteSmoke:     Smoke,
	config.SuiteIsolation: Isolation,
}

// Lookup returns the suite registered under name.
func Lookup(name string) (scenario.Suite, error) {
	build, ok := registry[name]
	if !ok {
		return scenario.Suite{}, fmt.Errorf("unknown suite %q (available: %v)", name, Names())
	}
	return build(), nil
}

// Names lists the registered suites in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// openAgentDesk launches the agent desk session, clears any certificate
// warning and logs in as username.
func openAgentDesk(ctx context.Context, h *scenario.Harness, session, username string) (*pages.AgentDesk, error) {
	cfg := h.Config.AgentDesk
	desk, err := pages.LaunchAgentDesk(ctx, h.Opener, session, h.LaunchOptions(), cfg.URL, h.Logger.With(session))
	if err != nil {
		return nil, err
	}
	if _, err := desk.GotoLoginPage(ctx); err != nil {
		return desk, err
	}
	if err := desk.Login(ctx, username, cfg.Password); err != nil {
		return desk, err
	}
	return desk, nil
}

// openWebphone launches the webphone session and registers the extension.
func openWebphone(ctx context.Context, h *scenario.Harness) error {
	phone, err := pages.LaunchWebphone(ctx, h.Opener, pages.WebphoneSession, h.LaunchOptions(), h.Config.Webphone.URL, h.Logger.With("webphone"))
	if err != nil {
		return err
	}
	h.Phone = phone
	if err := phone.GotoLoginPage(ctx); err != nil {
		return err
	}
	return phone.Login(ctx, h.Credentials())
}

// releaseAll logs every open agent desk out and closes all sessions. A
// failed logout does not stop the sessions from closing.
func releaseAll(ctx context.Context, h *scenario.Harness) error {
	var errs []error
	desks := append([]*pages.AgentDesk{h.Agent}, h.Agents...)
	for _, desk := range desks {
		if desk == nil {
			continue
		}
		if err := h.Kit.LogoutAgent(ctx, desk); err != nil {
			errs = append(errs, fmt.Errorf("failed to log out agent: %w", err))
		}
	}
	if err := h.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// acceptedCall starts a new call from a cleared dialer and has the agent
// accept it.
func acceptedCall(ctx context.Context, h *scenario.Harness) error {
	c := h.NewCall()
	return h.Kit.WebphoneCallAndAgentAccept(ctx, h.Phone, h.Agent, c, h.Config.ServiceIdentifier)
}
