package browser

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// track registers a session without a browser behind it.
func track(m *SessionManager, name string) *Session {
	s := &Session{Name: name, manager: m}
	m.sessions[name] = s
	return s
}

func TestSessionManager_SessionCloseForgets(t *testing.T) {
	m := NewSessionManager(ManagerOptions{})
	agent := track(m, "agent")
	track(m, "webphone")

	require.NoError(t, agent.Close())
	_, err := m.GetSession("agent")
	assert.EqualError(t, err, `session "agent" not found`)
	require.Len(t, m.Sessions(), 1)
	assert.Equal(t, "webphone", m.Sessions()[0].Name)

	// A second close is a no-op rather than a lookup failure.
	assert.NoError(t, agent.Close())
	assert.EqualError(t, m.CloseSession("agent"), `session "agent" not found`)
}

func TestSessionManager_CloseSession(t *testing.T) {
	m := NewSessionManager(ManagerOptions{})
	s := track(m, "agent")

	require.NoError(t, m.CloseSession("agent"))
	assert.True(t, s.closed)
	assert.Empty(t, m.Sessions())
}

func TestSessionManager_LaunchLimits(t *testing.T) {
	m := NewSessionManager(ManagerOptions{})
	ctx := context.Background()

	_, err := m.Launch(ctx, "agent", LaunchOptions{})
	assert.EqualError(t, err, "session manager not initialized")

	track(m, "agent")
	_, err = m.Launch(ctx, "agent", LaunchOptions{})
	assert.EqualError(t, err, `session "agent" already exists`)

	for i := 2; i <= DefaultMaxSessions; i++ {
		track(m, fmt.Sprintf("agent-%d", i))
	}
	_, err = m.Launch(ctx, "webphone", LaunchOptions{})
	assert.EqualError(t, err, fmt.Sprintf("maximum number of sessions (%d) reached", DefaultMaxSessions))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = m.Launch(cancelled, "webphone", LaunchOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSessionManager_ShutdownWithoutBrowser(t *testing.T) {
	m := NewSessionManager(ManagerOptions{})
	a := track(m, "agent")
	w := track(m, "webphone")

	require.NoError(t, m.Shutdown())
	assert.True(t, a.closed)
	assert.True(t, w.closed)
	assert.Empty(t, m.Sessions())
}
