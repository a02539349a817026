package pages

import (
	"context"
	"fmt"

	"github.com/entrhq/cxvoice/pkg/browser"
	"github.com/entrhq/cxvoice/pkg/logging"
)

// Webphone targets.
var (
	ExtensionInput     = browser.XPath(`//input[@placeholder="Extension"]`)
	SIPPasswordInput   = browser.XPath(`//input[@placeholder="Password"]`)
	SIPServerInput     = browser.CSS(`input[placeholder="SIP Server (abc.com)"]`)
	WSSServerInput     = browser.CSS(`input[placeholder="WSS Server (wss://abc.com:7443)"]`)
	ICEPolicySelect    = browser.XPath(`//select[@name="ice_transport_policy"]`)
	WebphoneLoginBtn   = browser.XPath(`//button[@id="loginBtn"]`)
)

const iceTransportPolicy = "all"

// Credentials are the webphone SIP registration fields.
type Credentials struct {
	Extension string
	Password  string
	SIPServer string
	WSSServer string
}

// Webphone is the page object for the customer-side softphone.
type Webphone struct {
	Handle
	url    string
	logger *logging.Logger
}

// NewWebphone wraps h. url is the webphone address.
func NewWebphone(h Handle, url string, logger *logging.Logger) *Webphone {
	if logger == nil {
		logger = logging.Discard("webphone")
	}
	return &Webphone{Handle: h, url: url, logger: logger}
}

// GotoLoginPage opens the webphone. No certificate bypass is attempted.
func (w *Webphone) GotoLoginPage(ctx context.Context) error {
	if err := w.Goto(ctx, w.url, browser.NavigateOptions{}); err != nil {
		w.logger.Errorf("navigation to %s failed: %v", w.url, err)
		return fmt.Errorf("failed to open webphone: %w", err)
	}
	return nil
}

// Login registers the extension against the SIP and WSS servers.
func (w *Webphone) Login(ctx context.Context, creds Credentials) error {
	w.logger.Infof("registering extension %s on %s", creds.Extension, creds.SIPServer)
	fields := []struct {
		what   string
		target browser.Target
		value  string
	}{
		{"extension", ExtensionInput, creds.Extension},
		{"password", SIPPasswordInput, creds.Password},
		{"SIP server", SIPServerInput, creds.SIPServer},
		{"WSS server", WSSServerInput, creds.WSSServer},
	}
	for _, f := range fields {
		if err := w.Fill(ctx, f.target, f.value); err != nil {
			return fmt.Errorf("failed to enter %s: %w", f.what, err)
		}
	}
	if err := w.SelectOption(ctx, ICEPolicySelect, iceTransportPolicy); err != nil {
		return fmt.Errorf("failed to set ICE transport policy: %w", err)
	}
	if err := w.Click(ctx, WebphoneLoginBtn); err != nil {
		return fmt.Errorf("failed to submit webphone login: %w", err)
	}
	return nil
}
