package suites

import (
	"context"

	"github.com/entrhq/cxvoice/pkg/actions"
	"github.com/entrhq/cxvoice/pkg/pages"
	"github.com/entrhq/cxvoice/pkg/scenario"
)

// Smoke logs both parties in, walks the agent through a denied then granted
// media permission to READY, and accepts one call.
func Smoke() scenario.Suite {
	return scenario.Suite{
		Name:        "smoke",
		Description: "Login, permission recovery and a single accepted call",
		Setup: func(ctx context.Context, h *scenario.Harness) error {
			if err := openWebphone(ctx, h); err != nil {
				return err
			}
			desk, err := openAgentDesk(ctx, h, pages.AgentSession, h.Config.AgentDesk.Username)
			h.Agent = desk
			return err
		},
		Teardown: releaseAll,
		Steps: []scenario.Step{
			{
				Name: "WebPhone login succeeds",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					return h.Kit.VerifyWebphoneReady(ctx, h.Phone)
				},
			},
			{
				Name: "Agent Desk goes ready without media permissions",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					return h.Kit.MakeAgentMrdReady(ctx, h.Agent, actions.ReadyOptions{SkipPermissions: true, SkipWait: true})
				},
			},
			{
				Name: "Agent Desk dismisses the permission banner",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					if err := h.Kit.DismissOverlay(ctx, h.Agent); err != nil {
						return err
					}
					return h.Kit.ResetPermissions(ctx, h.Agent)
				},
			},
			{
				Name: "Agent Desk allows media and reaches READY",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					if err := h.Kit.AllowMicrophone(ctx, h.Agent); err != nil {
						return err
					}
					if err := h.Kit.AllowCamera(ctx, h.Agent); err != nil {
						return err
					}
					if err := h.Kit.ToggleChannel(ctx, h.Agent); err != nil {
						return err
					}
					return h.Kit.WaitChannelReady(ctx, h.Agent)
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
				Name: "Agent Desk accepts the inbound call",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					if err := h.Kit.AcceptInboundCall(ctx, h.Agent, h.Call); err != nil {
						return err
					}
					return h.Kit.VerifyConnected(ctx, h.Agent)
				},
			},
			{
				Name: "Agent ends the call",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					return h.Kit.EndCallWithoutWrapUp(ctx, h.Agent, h.Call)
				},
			},
		},
	}
}
