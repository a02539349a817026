package actions

import (
	"context"
	"fmt"

	"github.com/entrhq/cxvoice/pkg/browser"
	"github.com/entrhq/cxvoice/pkg/call"
)

var liveStates = []call.State{call.StateDialing, call.StateRinging, call.StateConnected, call.StateHeld}

// EndCallWithoutWrapUp ends the call from the full call view.
func (k *Kit) EndCallWithoutWrapUp(ctx context.Context, agent browser.Surface, c *call.Call) error {
	return k.end(ctx, c, call.EndFullView, func() error {
		if err := agent.Click(ctx, EndCallIcon); err != nil {
			return fmt.Errorf("failed to end call: %w", err)
		}
		return k.leaveWithoutWrapUp(ctx, agent, c, WrapUpSpan)
	})
}

// EndCallFromMinimizedView ends the call from the minimized call bar.
func (k *Kit) EndCallFromMinimizedView(ctx context.Context, agent browser.Surface, c *call.Call) error {
	return k.end(ctx, c, call.EndMinimized, func() error {
		if err := agent.Click(ctx, MinimizeToggle); err != nil {
			return fmt.Errorf("failed to minimize call view: %w", err)
		}
		if err := agent.Click(ctx, MinimizedEndCall); err != nil {
			return fmt.Errorf("failed to end call from minimized view: %w", err)
		}
		return k.leaveWithoutWrapUp(ctx, agent, c, WrapUpSpan)
	})
}

// EndCallFromWebphone hangs up on the customer side, then skips wrap-up on
// the agent desk.
func (k *Kit) EndCallFromWebphone(ctx context.Context, phone, agent browser.Surface, c *call.Call) error {
	return k.end(ctx, c, call.EndWebphone, func() error {
		if err := k.settle(ctx, phone); err != nil {
			return err
		}
		if err := phone.Click(ctx, HangupButton); err != nil {
			return fmt.Errorf("failed to hang up webphone: %w", err)
		}
		return k.leaveWithoutWrapUp(ctx, agent, c, WrapUpButton)
	})
}

// EndCallByCrossButton closes the interaction with the cross icon and
// confirms both prompts.
func (k *Kit) EndCallByCrossButton(ctx context.Context, agent browser.Surface, c *call.Call) error {
	return k.end(ctx, c, call.EndCross, func() error {
		if err := agent.Click(ctx, CloseIcon); err != nil {
			return fmt.Errorf("failed to close interaction: %w", err)
		}
		if err := k.expect(ctx, agent, EndPrompt); err != nil {
			return fmt.Errorf("close prompt not shown: %w", err)
		}
		if err := agent.Click(ctx, EndPromptConfirm); err != nil {
			return fmt.Errorf("failed to confirm close: %w", err)
		}
		if err := k.expect(ctx, agent, InProgressPrompt); err != nil {
			return fmt.Errorf("call in progress prompt not shown: %w", err)
		}
		if err := agent.Click(ctx, ConfirmSpan); err != nil {
			return fmt.Errorf("failed to confirm ending call: %w", err)
		}
		return k.leaveWithoutWrapUp(ctx, agent, c, WrapUpButton)
	})
}

// EndCallByRefresh reloads the agent desk to drop the call. With wrap-up
// enabled it takes whichever confirmation path the desk renders: the wrap-up
// button directly, or close then Confirm then wrap-up. Each control is probed
// and clicked only when visible.
func (k *Kit) EndCallByRefresh(ctx context.Context, agent browser.Surface, c *call.Call) error {
	return k.end(ctx, c, call.EndRefresh, func() error {
		if err := agent.Reload(ctx); err != nil {
			return fmt.Errorf("failed to reload agent desk: %w", err)
		}
		if err := k.settle(ctx, agent); err != nil {
			return err
		}
		if !k.settings.WrapUpEnabled {
			return nil
		}

		if k.probe(ctx, agent, WrapUpButton) {
			return k.leaveWithoutWrapUp(ctx, agent, c, WrapUpButton)
		}
		if !k.probe(ctx, agent, CloseButton) {
			k.logger.Warnf("no wrap-up or close control after refresh")
			return nil
		}
		if err := agent.Click(ctx, CloseButton); err != nil {
			return fmt.Errorf("failed to close interaction: %w", err)
		}
		if k.probe(ctx, agent, ConfirmButton) {
			if err := agent.Click(ctx, ConfirmButton); err != nil {
				return fmt.Errorf("failed to confirm: %w", err)
			}
		}
		if k.probe(ctx, agent, WrapUpButton) {
			return k.leaveWithoutWrapUp(ctx, agent, c, WrapUpButton)
		}
		return nil
	})
}

// end checks the call is live, runs the UI path and records the termination.
func (k *Kit) end(ctx context.Context, c *call.Call, path call.EndPath, ui func() error) error {
	if err := requireState(c, "end via "+string(path), liveStates...); err != nil {
		return err
	}
	if err := ui(); err != nil {
		return err
	}
	k.logger.Infof("call ended via %s", path)
	if c != nil {
		return c.End(path)
	}
	return nil
}

// leaveWithoutWrapUp confirms skipping wrap-up when wrap-up is enabled.
func (k *Kit) leaveWithoutWrapUp(ctx context.Context, agent browser.Surface, c *call.Call, t browser.Target) error {
	if !k.settings.WrapUpEnabled {
		return nil
	}
	if err := agent.Click(ctx, t); err != nil {
		return fmt.Errorf("failed to leave without wrap-up: %w", err)
	}
	if c != nil {
		c.ConfirmWrapUp()
	}
	return nil
}
