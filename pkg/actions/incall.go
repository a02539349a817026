package actions

import (
	"context"
	"fmt"

	"github.com/entrhq/cxvoice/pkg/browser"
	"github.com/entrhq/cxvoice/pkg/call"
)

// HoldCall puts the connected call on hold and waits for the hold timer.
func (k *Kit) HoldCall(ctx context.Context, agent browser.Surface, c *call.Call) error {
	if err := requireState(c, "hold", call.StateConnected); err != nil {
		return err
	}
	if err := agent.Click(ctx, HoldButton); err != nil {
		return fmt.Errorf("failed to hold call: %w", err)
	}
	if err := k.expect(ctx, agent, OnHoldTimer); err != nil {
		return fmt.Errorf("call not shown on hold: %w", err)
	}
	if err := k.settle(ctx, agent); err != nil {
		return err
	}
	if c != nil {
		return c.Hold()
	}
	return nil
}

// ResumeCall takes the call off hold and waits for the live call timer.
func (k *Kit) ResumeCall(ctx context.Context, agent browser.Surface, c *call.Call) error {
	if err := requireState(c, "resume", call.StateHeld); err != nil {
		return err
	}
	if err := agent.Click(ctx, ResumeButton); err != nil {
		return fmt.Errorf("failed to resume call: %w", err)
	}
	if err := k.settle(ctx, agent); err != nil {
		return err
	}
	if err := k.expect(ctx, agent, CallTimer); err != nil {
		return fmt.Errorf("call timer not shown after resume: %w", err)
	}
	if err := k.settle(ctx, agent); err != nil {
		return err
	}
	if c != nil {
		return c.Resume()
	}
	return nil
}

// MuteMicrophone mutes the agent and waits for the mic_off icon.
func (k *Kit) MuteMicrophone(ctx context.Context, agent browser.Surface, c *call.Call) error {
	if err := requireState(c, "mute", call.StateConnected, call.StateHeld); err != nil {
		return err
	}
	if err := k.toggleMic(ctx, agent, MicIcon, MicToggle, MicOffIcon); err != nil {
		return fmt.Errorf("failed to mute: %w", err)
	}
	if c != nil {
		return c.Mute()
	}
	return nil
}

// UnmuteMicrophone unmutes the agent and waits for the mic icon.
func (k *Kit) UnmuteMicrophone(ctx context.Context, agent browser.Surface, c *call.Call) error {
	if err := requireState(c, "unmute", call.StateConnected, call.StateHeld); err != nil {
		return err
	}
	if err := k.toggleMic(ctx, agent, MicOffIcon, MicOffToggle, MicIcon); err != nil {
		return fmt.Errorf("failed to unmute: %w", err)
	}
	if c != nil {
		return c.Unmute()
	}
	return nil
}

func (k *Kit) toggleMic(ctx context.Context, agent browser.Surface, before, toggle, after browser.Target) error {
	if err := k.expect(ctx, agent, before); err != nil {
		return err
	}
	if err := agent.Click(ctx, toggle); err != nil {
		return err
	}
	if err := k.expect(ctx, agent, after); err != nil {
		return err
	}
	return k.settle(ctx, agent)
}

// VerifyParticipantsList opens the participants panel and checks both the
// customer and the agent's own entry are listed.
func (k *Kit) VerifyParticipantsList(ctx context.Context, agent browser.Surface) error {
	if err := agent.Click(ctx, ParticipantsBtn); err != nil {
		return fmt.Errorf("failed to open participants: %w", err)
	}
	for _, t := range []browser.Target{ParticipantsTitle, CustomerEntry, PrimaryEntry} {
		if err := k.expect(ctx, agent, t); err != nil {
			return fmt.Errorf("participants list incomplete: %w", err)
		}
	}
	return nil
}

// ToggleCallView switches between the full and minimized call views.
func (k *Kit) ToggleCallView(ctx context.Context, agent browser.Surface) error {
	if err := agent.Click(ctx, MinimizeToggle); err != nil {
		return fmt.Errorf("failed to toggle call view: %w", err)
	}
	return k.settle(ctx, agent)
}

// ExploreCallViews minimizes and restores the call view, checks the call
// timer, then walks the side panel tabs.
func (k *Kit) ExploreCallViews(ctx context.Context, agent browser.Surface) error {
	if err := k.VerifyCustomerAvatar(ctx, agent); err != nil {
		return err
	}
	for i := 0; i < 2; i++ {
		if err := k.ToggleCallView(ctx, agent); err != nil {
			return err
		}
	}
	if err := k.expect(ctx, agent, CallTimer); err != nil {
		return fmt.Errorf("call timer not shown: %w", err)
	}

	tour := []browser.Target{
		NavigateNext, NavigateBefore,
		ChatTab, NavigateNext, ChatTab, ChatTab,
		CallTab, CallTab,
		ChatTab, NavigateBefore, CallTab,
	}
	for i, t := range tour {
		if err := agent.Click(ctx, t); err != nil {
			return fmt.Errorf("failed at call view control %d (%s): %w", i+1, t, err)
		}
	}
	return nil
}
