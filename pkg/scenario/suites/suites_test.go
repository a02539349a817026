package suites

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/cxvoice/pkg/actions"
	"github.com/entrhq/cxvoice/pkg/browser"
	"github.com/entrhq/cxvoice/pkg/browser/browsertest"
	"github.com/entrhq/cxvoice/pkg/call"
	"github.com/entrhq/cxvoice/pkg/config"
	"github.com/entrhq/cxvoice/pkg/pages"
	"github.com/entrhq/cxvoice/pkg/scenario"
)

// fakeBrowser opens one Fake per session name.
type fakeBrowser struct {
	fakes   map[string]*browsertest.Fake
	opened  []string
	prepare func(name string, f *browsertest.Fake)
	failOn  string
}

func newFakeBrowser(prepare func(name string, f *browsertest.Fake)) *fakeBrowser {
	return &fakeBrowser{fakes: make(map[string]*browsertest.Fake), prepare: prepare}
}

func (b *fakeBrowser) Open(_ context.Context, name string, _ browser.LaunchOptions) (pages.Handle, error) {
	b.opened = append(b.opened, name)
	if name == b.failOn {
		return nil, errors.New("browser context refused")
	}
	f := browsertest.New()
	if b.prepare != nil {
		b.prepare(name, f)
	}
	b.fakes[name] = f
	return f, nil
}

// liveDesk renders every control the call flows wait for.
func liveDesk(channel string) func(string, *browsertest.Fake) {
	return func(name string, f *browsertest.Fake) {
		if name == pages.WebphoneSession {
			f.Show(actions.CallButton)
			return
		}
		f.Show(
			actions.ChannelReady(channel),
			actions.AcceptButton,
			actions.CustomerAvatar,
			actions.ConnectedText,
			actions.OnHoldTimer,
			actions.CallTimer,
			actions.MicIcon,
			actions.MicOffIcon,
			actions.ParticipantsTitle,
			actions.CustomerEntry,
			actions.PrimaryEntry,
			actions.EndPrompt,
			actions.InProgressPrompt,
			actions.OverlayBackdrop,
		)
	}
}

func run(t *testing.T, suite scenario.Suite, cfg *config.Config, b *fakeBrowser) (*scenario.SuiteResult, *scenario.Harness) {
	t.Helper()
	h := scenario.NewHarness(cfg, b, nil)
	r, err := scenario.NewRunner(scenario.Options{})
	require.NoError(t, err)
	return r.Run(context.Background(), suite, h), h
}

func TestInbound_EndToEnd(t *testing.T) {
	tests := []struct {
		name          string
		wrapUp        bool
		wantSpan      int
		wantButton    int
		wantConfirmed int
	}{
		{name: "wrap-up enabled", wrapUp: true, wantSpan: 7, wantButton: 2, wantConfirmed: 1},
		{name: "wrap-up disabled", wrapUp: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.WrapUpEnabled = tt.wrapUp
			b := newFakeBrowser(liveDesk(cfg.AgentDesk.Channel))

			res, h := run(t, Inbound(), cfg, b)
			require.True(t, res.Passed(), "suite failed: %s", res.Error)
			assert.Equal(t, map[scenario.Status]int{scenario.StatusPassed: 15, scenario.StatusSkipped: 2}, res.Counts())
			assert.Equal(t, []string{pages.AgentSession, pages.WebphoneSession}, b.opened)

			require.Len(t, h.Calls, 9)
			for _, c := range h.Calls {
				assert.Equal(t, call.StateEnded, c.State(), c.ID)
				assert.False(t, c.Muted(), c.ID)
				assert.Equal(t, tt.wantConfirmed, c.WrapUpConfirmations(), c.ID)
			}
			assert.Equal(t, call.EndMinimized, h.Calls[2].EndPath())
			assert.Equal(t, call.EndWebphone, h.Calls[3].EndPath())
			assert.Equal(t, call.EndCross, h.Calls[4].EndPath())

			agent := b.fakes[pages.AgentSession]
			phone := b.fakes[pages.WebphoneSession]
			assert.Equal(t, tt.wantSpan, agent.Clicks(actions.WrapUpSpan))
			assert.Equal(t, tt.wantButton, agent.Clicks(actions.WrapUpButton))
			assert.Equal(t, 9, agent.Clicks(actions.AcceptButton))
			assert.Equal(t, 9, phone.Clicks(actions.CallButton))
			assert.Equal(t, 8, phone.Count(browsertest.ActFill, actions.DialerInput), "dialer cleared before every call after the first")
			for _, a := range agent.Actions() {
				assert.NotEqual(t, browsertest.ActReload, a.Kind, "refresh path stays skipped")
			}

			assert.Equal(t, 1, agent.Clicks(pages.LogoutConfirmBtn))
			assert.Equal(t, 1, agent.Closed())
			assert.Equal(t, 1, phone.Closed())
			assert.Nil(t, h.Agent)
			assert.Nil(t, h.Phone)
		})
	}
}

func TestInbound_AbortsWhenNoCallArrives(t *testing.T) {
	cfg := config.DefaultConfig()
	b := newFakeBrowser(func(name string, f *browsertest.Fake) {
		liveDesk(cfg.AgentDesk.Channel)(name, f)
		f.Hide(actions.AcceptButton)
	})

	res, _ := run(t, Inbound(), cfg, b)
	require.False(t, res.Passed())

	failed, ok := res.Failed()
	require.True(t, ok)
	assert.Equal(t, "Agent Desk accepts the ringing call", failed.Name)
	assert.Contains(t, failed.Error, "no inbound call to accept")
	assert.Equal(t, scenario.StatusNotRun, res.Steps[len(res.Steps)-2].Status)
	assert.Equal(t, 1, b.fakes[pages.AgentSession].Closed(), "teardown still runs")
}

func TestInbound_SetupFailureStillReleases(t *testing.T) {
	cfg := config.DefaultConfig()
	b := newFakeBrowser(liveDesk(cfg.AgentDesk.Channel))
	b.failOn = pages.WebphoneSession

	res, h := run(t, Inbound(), cfg, b)
	assert.False(t, res.Passed())
	assert.Contains(t, res.Error, "failed to launch webphone session")
	assert.Equal(t, 1, b.fakes[pages.AgentSession].Closed())
	assert.Empty(t, h.Calls)
}

func TestInbound_ReadyCheckLeavesAgentMenuAlone(t *testing.T) {
	cfg := config.DefaultConfig()
	b := newFakeBrowser(liveDesk(cfg.AgentDesk.Channel))
	h := scenario.NewHarness(cfg, b, nil)
	suite := Inbound()

	require.NoError(t, suite.Setup(context.Background(), h))
	agent := b.fakes[pages.AgentSession]
	agent.Strict = true
	before := len(agent.Actions())

	require.NoError(t, suite.Steps[0].Run(context.Background(), h))
	for _, a := range agent.Actions()[before:] {
		assert.NotEqual(t, browsertest.ActClick, a.Kind, "ready check must not click: %s", a)
	}
	assert.Equal(t, 0, agent.Clicks(actions.AgentButton))
}

func TestSmoke(t *testing.T) {
	cfg := config.DefaultConfig()
	b := newFakeBrowser(liveDesk(cfg.AgentDesk.Channel))

	res, h := run(t, Smoke(), cfg, b)
	require.True(t, res.Passed(), "suite failed: %s", res.Error)
	assert.Equal(t, []string{pages.WebphoneSession, pages.AgentSession}, b.opened)

	agent := b.fakes[pages.AgentSession]
	assert.Equal(t, 1, agent.Clicks(actions.OverlayBackdrop))
	assert.Equal(t, 1, agent.Clicks(actions.SlideToggleThumb))
	assert.ElementsMatch(t, []browser.Permission{browser.PermissionMicrophone, browser.PermissionCamera}, agent.Granted("https://efcx4-voice.expertflow.com"))

	require.Len(t, h.Calls, 1)
	assert.Equal(t, call.StateEnded, h.Calls[0].State())
}

func TestIsolation(t *testing.T) {
	cfg := config.DefaultConfig()
	b := newFakeBrowser(nil)

	res, _ := run(t, Isolation(), cfg, b)
	require.True(t, res.Passed(), "suite failed: %s", res.Error)
	assert.Equal(t, []string{pages.AgentSession, pages.AgentSession + "-2"}, b.opened)

	first, second := b.fakes[pages.AgentSession], b.fakes[pages.AgentSession+"-2"]
	assert.Equal(t, "bilal", first.Value(pages.UsernameInput))
	assert.Equal(t, "bilal1", second.Value(pages.UsernameInput))
	assert.Equal(t, 1, first.Closed())
	assert.Equal(t, 1, second.Closed())
}

func TestIsolation_SecondLoginDisplacesFirst(t *testing.T) {
	cfg := config.DefaultConfig()
	b := newFakeBrowser(nil)
	b.prepare = func(name string, f *browsertest.Fake) {
		if name == pages.AgentSession {
			// The first desk drops back to its login form.
			f.Show(pages.LoginButton)
		}
	}

	res, _ := run(t, Isolation(), cfg, b)
	require.False(t, res.Passed())
	assert.Contains(t, res.Error, "agent 1 was sent back to the login page")
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{config.SuiteInbound, config.SuiteIsolation, config.SuiteSmoke}, Names())

	for _, name := range Names() {
		suite, err := Lookup(name)
		require.NoError(t, err)
		assert.NoError(t, suite.Validate(), name)
	}

	_, err := Lookup("outbound")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown suite")
}
