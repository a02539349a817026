package actions

import (
	"context"
	"fmt"

	"github.com/entrhq/cxvoice/pkg/browser"
	"github.com/entrhq/cxvoice/pkg/pages"
)

// ReadyOptions adjusts MakeAgentMrdReady.
type ReadyOptions struct {
	// SkipPermissions leaves media permissions untouched.
	SkipPermissions bool
	// SkipWait returns without waiting for the channel-ready label.
	SkipWait bool
}

// OpenCustomerInteractionPanel opens the customer interaction side panel.
func (k *Kit) OpenCustomerInteractionPanel(ctx context.Context, agent browser.Surface) error {
	if err := agent.Click(ctx, InteractionPanelButton); err != nil {
		return fmt.Errorf("failed to open customer interaction panel: %w", err)
	}
	return nil
}

// MakeAgentMrdReady sets the agent Ready, switches the configured channel on,
// grants microphone and camera, and waits for "<channel>(READY)".
func (k *Kit) MakeAgentMrdReady(ctx context.Context, agent browser.Surface, opts ...ReadyOptions) error {
	var o ReadyOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	channel := k.settings.Channel
	k.logger.Infof("making agent ready on %s", channel)

	if err := clickAll(ctx, agent, AgentAvatar, StateToggle, ReadyMenuItem); err != nil {
		return fmt.Errorf("failed to set agent ready: %w", err)
	}
	if err := agent.Click(ctx, ChannelToggle(channel)); err != nil {
		return fmt.Errorf("failed to toggle channel %s: %w", channel, err)
	}

	if !o.SkipPermissions {
		if err := k.AllowMicrophone(ctx, agent); err != nil {
			return err
		}
		if err := k.AllowCamera(ctx, agent); err != nil {
			return err
		}
	}
	if o.SkipWait {
		return nil
	}
	return k.WaitChannelReady(ctx, agent)
}

// WaitChannelReady waits for the channel-ready label.
func (k *Kit) WaitChannelReady(ctx context.Context, agent browser.Surface) error {
	if err := agent.WaitVisible(ctx, ChannelReady(k.settings.Channel), k.settings.ReadyTimeout); err != nil {
		return fmt.Errorf("agent not ready on %s: %w", k.settings.Channel, err)
	}
	return nil
}

// ToggleChannel opens the agent menu and flips the first channel toggle.
func (k *Kit) ToggleChannel(ctx context.Context, agent browser.Surface) error {
	if err := clickAll(ctx, agent, AgentButton, SlideToggleThumb); err != nil {
		return fmt.Errorf("failed to toggle channel: %w", err)
	}
	return nil
}

// VerifyAgentBackToReady checks the agent returned to ready after a call,
// opening the menu through its button rather than the avatar.
func (k *Kit) VerifyAgentBackToReady(ctx context.Context, agent browser.Surface) error {
	if err := agent.Click(ctx, AgentButton); err != nil {
		return fmt.Errorf("failed to open agent menu: %w", err)
	}
	if err := k.expect(ctx, agent, ChannelReady(k.settings.Channel)); err != nil {
		return fmt.Errorf("agent not back to ready on %s: %w", k.settings.Channel, err)
	}
	return nil
}

// DismissOverlay clicks the overlay backdrop if one is showing.
func (k *Kit) DismissOverlay(ctx context.Context, agent browser.Surface) error {
	if !k.probe(ctx, agent, OverlayBackdrop) {
		return nil
	}
	k.logger.Debugf("dismissing overlay backdrop")
	if err := agent.Click(ctx, OverlayBackdrop, browser.Force()); err != nil {
		return fmt.Errorf("failed to dismiss overlay: %w", err)
	}
	return nil
}

// LogoutAgent moves the agent to Short Break and logs out.
func (k *Kit) LogoutAgent(ctx context.Context, desk *pages.AgentDesk) error {
	return desk.Logout(ctx)
}
