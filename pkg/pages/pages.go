// Package pages holds the page objects for the two applications under test:
// the agent desk console and the customer webphone.
//
// Page objects declare their element targets once and expose short action
// sequences (navigate, authenticate, log out). They never verify outcomes;
// callers assert the resulting UI state.
package pages

import (
	"context"
	"fmt"
	"regexp"

	"github.com/entrhq/cxvoice/pkg/browser"
	"github.com/entrhq/cxvoice/pkg/logging"
)

// Handle is a browser surface the page object can also release.
type Handle interface {
	browser.Surface
	Close() error
}

// Launcher creates isolated browser sessions. *browser.SessionManager implements it.
type Launcher interface {
	Launch(ctx context.Context, name string, opts browser.LaunchOptions) (*browser.Session, error)
}

// Opener opens named page handles.
type Opener interface {
	Open(ctx context.Context, name string, opts browser.LaunchOptions) (Handle, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, name string, opts browser.LaunchOptions) (Handle, error)

// Open implements Opener.
func (f OpenerFunc) Open(ctx context.Context, name string, opts browser.LaunchOptions) (Handle, error) {
	return f(ctx, name, opts)
}

// FromLauncher opens handles as sessions of l.
func FromLauncher(l Launcher) Opener {
	return OpenerFunc(func(ctx context.Context, name string, opts browser.LaunchOptions) (Handle, error) {
		session, err := l.Launch(ctx, name, opts)
		if err != nil {
			return nil, err
		}
		return session, nil
	})
}

// Session names used for the two actors.
const (
	AgentSession    = "agent"
	WebphoneSession = "webphone"
)

var proceedPattern = regexp.MustCompile(`(?i)Proceed to .* \(unsafe\)?`)

// LaunchAgentDesk opens an isolated handle and wraps it in an AgentDesk.
func LaunchAgentDesk(ctx context.Context, o Opener, name string, opts browser.LaunchOptions, url string, logger *logging.Logger) (*AgentDesk, error) {
	if name == "" {
		name = AgentSession
	}
	session, err := o.Open(ctx, name, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch agent desk session: %w", err)
	}
	return NewAgentDesk(session, url, logger), nil
}

// LaunchWebphone opens an isolated handle and wraps it in a Webphone.
func LaunchWebphone(ctx context.Context, o Opener, name string, opts browser.LaunchOptions, url string, logger *logging.Logger) (*Webphone, error) {
	if name == "" {
		name = WebphoneSession
	}
	session, err := o.Open(ctx, name, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch webphone session: %w", err)
	}
	return NewWebphone(session, url, logger), nil
}
