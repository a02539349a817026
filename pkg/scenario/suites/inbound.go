package suites

import (
	"context"

	"github.com/entrhq/cxvoice/pkg/pages"
	"github.com/entrhq/cxvoice/pkg/scenario"
)

// Inbound is the serial inbound voice flow: one agent and one webphone,
// a call per step, each ended through a different path.
func Inbound() scenario.Suite {
	return scenario.Suite{
		Name:        "inbound",
		Description: "Inbound CX-Voice flow",
		Setup:       inboundSetup,
		Teardown:    releaseAll,
		Steps: []scenario.Step{
			{
				Name: "Agent Desk is logged in and MRD READY",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					return h.Kit.WaitChannelReady(ctx, h.Agent)
				},
			},
			{
				Name: "WebPhone is logged in",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					return h.Kit.VerifyWebphoneReady(ctx, h.Phone)
				},
			},
			{
				Name: "WebPhone places a call and sends DTMF 0",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					c := h.NewCall()
					return h.Kit.DialWithDTMF(ctx, h.Phone, c, h.Config.ServiceIdentifier, false)
				},
			},
			{
				Name: "Agent Desk accepts the ringing call",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					if err := h.Kit.AcceptInboundCall(ctx, h.Agent, h.Call); err != nil {
						return err
					}
					return h.Kit.VerifyCustomerAvatar(ctx, h.Agent)
				},
			},
			{
				Name: "Agent ends call from full view and skips wrap-up",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					return h.Kit.EndCallWithoutWrapUp(ctx, h.Agent, h.Call)
				},
			},
			{
				Name: "Agent Desk is back to MRD READY",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					return h.Kit.VerifyAgentBackToReady(ctx, h.Agent)
				},
			},
			{
				Name: "WebPhone is ready for the next call",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					return h.Kit.VerifyWebphoneReady(ctx, h.Phone)
				},
			},
			{
				Name: "WebPhone places another call and Agent Desk accepts it",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					c := h.NewCall()
					if err := h.Kit.DialWithDTMF(ctx, h.Phone, c, h.Config.ServiceIdentifier, true); err != nil {
						return err
					}
					if err := h.Kit.AcceptInboundCall(ctx, h.Agent, c); err != nil {
						return err
					}
					return h.Kit.EndCallWithoutWrapUp(ctx, h.Agent, c)
				},
			},
			{
				Name: "Agent Desk ends call from the minimized call view",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					c := h.NewCall()
					if err := h.Kit.DialWithDTMF(ctx, h.Phone, c, h.Config.ServiceIdentifier, true); err != nil {
						return err
					}
					if err := h.Kit.AcceptInboundCall(ctx, h.Agent, c); err != nil {
						return err
					}
					if err := h.Kit.VerifyCustomerAvatar(ctx, h.Agent); err != nil {
						return err
					}
					return h.Kit.EndCallFromMinimizedView(ctx, h.Agent, c)
				},
			},
			{
				Name:       "Agent Desk ends call by refreshing the page",
				Skip:       true,
				SkipReason: "a reload leaves the desk without a deterministic end-call prompt",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					if err := acceptedCall(ctx, h); err != nil {
						return err
					}
					return h.Kit.EndCallByRefresh(ctx, h.Agent, h.Call)
				},
			},
			{
				Name: "Customer ends call from the WebPhone",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					if err := acceptedCall(ctx, h); err != nil {
						return err
					}
					return h.Kit.EndCallFromWebphone(ctx, h.Phone, h.Agent, h.Call)
				},
			},
			{
				Name: "Agent Desk ends call with the cross button",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					if err := acceptedCall(ctx, h); err != nil {
						return err
					}
					return h.Kit.EndCallByCrossButton(ctx, h.Agent, h.Call)
				},
			},
			{
				Name: "Agent Desk mutes and unmutes the call",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					if err := acceptedCall(ctx, h); err != nil {
						return err
					}
					if err := h.Kit.MuteMicrophone(ctx, h.Agent, h.Call); err != nil {
						return err
					}
					if err := h.Kit.UnmuteMicrophone(ctx, h.Agent, h.Call); err != nil {
						return err
					}
					return h.Kit.EndCallWithoutWrapUp(ctx, h.Agent, h.Call)
				},
			},
			{
				Name: "Agent Desk holds the call and resumes it",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					if err := acceptedCall(ctx, h); err != nil {
						return err
					}
					if err := h.Kit.HoldCall(ctx, h.Agent, h.Call); err != nil {
						return err
					}
					if err := h.Kit.ResumeCall(ctx, h.Agent, h.Call); err != nil {
						return err
					}
					return h.Kit.EndCallWithoutWrapUp(ctx, h.Agent, h.Call)
				},
			},
			{
				Name: "Agent Desk UI in minimized and maximized view",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					if err := acceptedCall(ctx, h); err != nil {
						return err
					}
					if err := h.Kit.ExploreCallViews(ctx, h.Agent); err != nil {
						return err
					}
					return h.Kit.EndCallWithoutWrapUp(ctx, h.Agent, h.Call)
				},
			},
			{
				Name: "Agent Desk verifies the participants list",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					if err := acceptedCall(ctx, h); err != nil {
						return err
					}
					if err := h.Kit.VerifyParticipantsList(ctx, h.Agent); err != nil {
						return err
					}
					if err := h.Kit.DismissOverlay(ctx, h.Agent); err != nil {
						return err
					}
					return h.Kit.EndCallWithoutWrapUp(ctx, h.Agent, h.Call)
				},
			},
			{
				Name:       "Agent Desk ends call and completes wrap-up",
				Skip:       true,
				SkipReason: "the wrap-up form is not automated",
			},
		},
	}
}

func inboundSetup(ctx context.Context, h *scenario.Harness) error {
	desk, err := openAgentDesk(ctx, h, pages.AgentSession, h.Config.AgentDesk.Username)
	h.Agent = desk
	if err != nil {
		return err
	}
	if err := h.Kit.OpenCustomerInteractionPanel(ctx, desk); err != nil {
		return err
	}
	if err := h.Kit.MakeAgentMrdReady(ctx, desk); err != nil {
		return err
	}
	return openWebphone(ctx, h)
}
