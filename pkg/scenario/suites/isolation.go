package suites

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/cxvoice/pkg/pages"
	"github.com/entrhq/cxvoice/pkg/scenario"
)

const isolationHold = 5 * time.Second

// Isolation logs two different agents into two contexts of the same
// browser and checks neither session displaces the other.
func Isolation() scenario.Suite {
	return scenario.Suite{
		Name:        "isolation",
		Description: "Two agents logged in from isolated contexts of one browser",
		Teardown:    releaseAll,
		Steps: []scenario.Step{
			{
				Name: "First agent logs in",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					desk, err := openAgentDesk(ctx, h, pages.AgentSession, h.Config.AgentDesk.Username)
					h.Agent = desk
					return err
				},
			},
			{
				Name: "Second agent logs in from a separate context",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					desk, err := openAgentDesk(ctx, h, pages.AgentSession+"-2", h.Config.AgentDesk.SecondUsername)
					if desk != nil {
						h.Agents = append(h.Agents, desk)
					}
					return err
				},
			},
			{
				Name: "Both agents stay logged in",
				Run: func(ctx context.Context, h *scenario.Harness) error {
					desks := append([]*pages.AgentDesk{h.Agent}, h.Agents...)
					for i, desk := range desks {
						if err := desk.Settle(ctx, isolationHold); err != nil {
							return err
						}
						if desk.IsVisible(ctx, pages.LoginButton, 0) {
							return fmt.Errorf("agent %d was sent back to the login page", i+1)
						}
					}
					return nil
				},
			},
		},
	}
}
