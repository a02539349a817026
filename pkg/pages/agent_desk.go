package pages

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/cxvoice/pkg/browser"
	"github.com/entrhq/cxvoice/pkg/logging"
)

// AgentDesk targets.
var (
	UsernameInput = browser.CSS("#username")
	PasswordInput = browser.CSS("#password")
	LoginButton   = browser.XPath(`//button[@class="button flip-in-ver-right form-control"]`)

	AgentMenuButton  = browser.ByRole(browser.RoleButton, "Agent")
	StateMenuButton  = browser.ByRole(browser.RoleButton, "Ready")
	ShortBreakItem   = browser.ByRole(browser.RoleMenuitem, "Short Break")
	LogoutMenuItem   = browser.ByRole(browser.RoleMenuitem, "Logout")
	LogoutConfirmBtn = browser.ByRole(browser.RoleButton, "Logout")
)

const logoutSettle = 2 * time.Second

// AgentDesk is the page object for the agent desktop console.
type AgentDesk struct {
	Handle
	url    string
	logger *logging.Logger
}

// NewAgentDesk wraps h. url is the login page address.
func NewAgentDesk(h Handle, url string, logger *logging.Logger) *AgentDesk {
	if logger == nil {
		logger = logging.Discard("agent-desk")
	}
	return &AgentDesk{Handle: h, url: url, logger: logger}
}

// LoginURL returns the configured login page address.
func (a *AgentDesk) LoginURL() string {
	return a.url
}

// GotoLoginPage opens the login page, clicking through a certificate warning
// if one is raised as a navigation error or rendered as a page.
func (a *AgentDesk) GotoLoginPage(ctx context.Context) (NavResult, error) {
	result, err := navigateWithBypass(ctx, a.Handle, a.url, browser.NavigateOptions{WaitUntil: "domcontentloaded"})
	if err != nil {
		a.logger.Errorf("navigation to %s failed: %v", a.url, err)
		return result, err
	}
	a.logger.Infof("agent desk login page: %s", result)
	return result, nil
}

// Login fills the credentials and submits. It does not wait for the desk to load.
func (a *AgentDesk) Login(ctx context.Context, username, password string) error {
	a.logger.Infof("logging in agent %s", username)
	if err := a.Fill(ctx, UsernameInput, username); err != nil {
		return fmt.Errorf("failed to enter username: %w", err)
	}
	if err := a.Fill(ctx, PasswordInput, password); err != nil {
		return fmt.Errorf("failed to enter password: %w", err)
	}
	if err := a.Click(ctx, LoginButton); err != nil {
		return fmt.Errorf("failed to submit login: %w", err)
	}
	return nil
}

// Logout moves the agent to Short Break and logs out.
func (a *AgentDesk) Logout(ctx context.Context) error {
	a.logger.Infof("logging out agent")
	steps := []struct {
		what   string
		target browser.Target
	}{
		{"open agent menu", AgentMenuButton},
		{"open state menu", StateMenuButton},
		{"choose short break", ShortBreakItem},
		{"choose logout", LogoutMenuItem},
		{"confirm logout", LogoutConfirmBtn},
	}
	for _, step := range steps {
		if err := a.Click(ctx, step.target); err != nil {
			return fmt.Errorf("failed to %s: %w", step.what, err)
		}
	}
	return a.Settle(ctx, logoutSettle)
}
