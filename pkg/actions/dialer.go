package actions

import (
	"context"
	"fmt"

	"github.com/entrhq/cxvoice/pkg/browser"
	"github.com/entrhq/cxvoice/pkg/call"
)

// VerifyWebphoneReady checks the webphone shows its Call button.
func (k *Kit) VerifyWebphoneReady(ctx context.Context, phone browser.Surface) error {
	if err := k.expect(ctx, phone, CallButton); err != nil {
		return fmt.Errorf("webphone not ready: %w", err)
	}
	return nil
}

// ClearDialer selects and clears whatever is left in the dialer input.
func (k *Kit) ClearDialer(ctx context.Context, phone browser.Surface) error {
	if err := phone.Press(ctx, DialerInput, "ControlOrMeta+a"); err != nil {
		return fmt.Errorf("failed to select dialer input: %w", err)
	}
	if err := phone.Fill(ctx, DialerInput, ""); err != nil {
		return fmt.Errorf("failed to clear dialer input: %w", err)
	}
	return nil
}

// PlaceCall dials number on the webphone keypad and presses Call.
func (k *Kit) PlaceCall(ctx context.Context, phone browser.Surface, c *call.Call, number string) error {
	if number == "" {
		return fmt.Errorf("no number to dial")
	}
	if err := requireState(c, "place call", call.StateIdle); err != nil {
		return err
	}
	k.logger.Infof("dialing %s", number)

	if err := phone.Click(ctx, DialerInput); err != nil {
		return fmt.Errorf("failed to focus dialer: %w", err)
	}
	for _, d := range number {
		if err := phone.Click(ctx, DigitButton(d)); err != nil {
			return fmt.Errorf("failed to press %q: %w", d, err)
		}
	}
	if err := phone.Click(ctx, CallButton); err != nil {
		return fmt.Errorf("failed to press call: %w", err)
	}

	if c != nil {
		return c.Dial(number)
	}
	return nil
}

// SendDtmfZero opens the in-call keypad and sends "0" to the IVR.
func (k *Kit) SendDtmfZero(ctx context.Context, phone browser.Surface, c *call.Call) error {
	if err := requireState(c, "send DTMF", call.StateDialing, call.StateRinging, call.StateConnected); err != nil {
		return err
	}
	if err := clickAll(ctx, phone, KeypadButton, DTMFZero); err != nil {
		return fmt.Errorf("failed to send DTMF 0: %w", err)
	}
	if c != nil && c.State() == call.StateDialing {
		return c.Ring()
	}
	return nil
}

// AcceptInboundCall waits for the Accept button and clicks it. It fails once
// the accept timeout passes without the button appearing.
func (k *Kit) AcceptInboundCall(ctx context.Context, agent browser.Surface, c *call.Call) error {
	if err := requireState(c, "accept call", call.StateDialing, call.StateRinging); err != nil {
		return err
	}
	if err := agent.WaitVisible(ctx, AcceptButton, k.settings.AcceptTimeout); err != nil {
		return fmt.Errorf("no inbound call to accept: %w", err)
	}
	if err := agent.Click(ctx, AcceptButton); err != nil {
		return fmt.Errorf("failed to accept call: %w", err)
	}
	k.logger.Infof("call accepted")

	if c != nil {
		return c.Connect()
	}
	return nil
}

// VerifyConnected checks the agent desk shows the call as live.
func (k *Kit) VerifyConnected(ctx context.Context, agent browser.Surface) error {
	if err := k.expect(ctx, agent, ConnectedText); err != nil {
		return fmt.Errorf("call not shown as connected: %w", err)
	}
	return nil
}

// VerifyCustomerAvatar checks the customer avatar of an accepted call.
func (k *Kit) VerifyCustomerAvatar(ctx context.Context, agent browser.Surface) error {
	if err := k.expect(ctx, agent, CustomerAvatar); err != nil {
		return fmt.Errorf("customer avatar not shown: %w", err)
	}
	return nil
}

// DialWithDTMF clears the dialer, places the call, allows the microphone and
// sends DTMF 0.
func (k *Kit) DialWithDTMF(ctx context.Context, phone browser.Surface, c *call.Call, number string, clear bool) error {
	if clear {
		if err := k.ClearDialer(ctx, phone); err != nil {
			return err
		}
	}
	if err := k.PlaceCall(ctx, phone, c, number); err != nil {
		return err
	}
	if err := k.AllowMicrophone(ctx, phone); err != nil {
		return err
	}
	return k.SendDtmfZero(ctx, phone, c)
}

// WebphoneCallAndAgentAccept places a call from a cleared dialer, lets the
// agent accept it and dismisses the "call connected" overlay if present.
func (k *Kit) WebphoneCallAndAgentAccept(ctx context.Context, phone, agent browser.Surface, c *call.Call, number string) error {
	if err := k.DialWithDTMF(ctx, phone, c, number, true); err != nil {
		return err
	}
	if err := k.AcceptInboundCall(ctx, agent, c); err != nil {
		return err
	}
	return k.DismissOverlay(ctx, agent)
}
