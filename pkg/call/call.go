// Package call models the lifecycle of a single inbound call as an explicit
// state machine, updated by the actions that drive the remote UI.
package call

import (
	"fmt"
	"sync"
	"time"
)

// State is a call lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateDialing   State = "dialing"
	StateRinging   State = "ringing"
	StateConnected State = "connected"
	StateHeld      State = "held"
	StateEnded     State = "ended"
)

// EndPath identifies the UI path that terminated a call.
type EndPath string

const (
	EndFullView  EndPath = "full_view"
	EndMinimized EndPath = "minimized_view"
	EndWebphone  EndPath = "webphone"
	EndCross     EndPath = "cross_button"
	EndRefresh   EndPath = "refresh"
)

// transitions lists the legal moves out of each state.
var transitions = map[State][]State{
	StateIdle:      {StateDialing},
	StateDialing:   {StateRinging, StateConnected, StateEnded},
	StateRinging:   {StateConnected, StateEnded},
	StateConnected: {StateHeld, StateEnded},
	StateHeld:      {StateConnected, StateEnded},
}

// Transition is one recorded state change.
type Transition struct {
	From  State     `json:"from"`
	To    State     `json:"to"`
	At    time.Time `json:"at"`
	Cause string    `json:"cause"`
}

// TransitionError is returned when an action is applied in a state that
// does not allow it.
type TransitionError struct {
	From  State
	To    State
	Cause string
}

func (e *TransitionError) Error() string {
	if e.From == e.To {
		return fmt.Sprintf("%s: call already %s", e.Cause, e.From)
	}
	return fmt.Sprintf("%s: cannot move call from %s to %s", e.Cause, e.From, e.To)
}

// Call is the state of one call from dial to hang-up.
type Call struct {
	mu sync.Mutex

	ID     string
	Dialed string

	state   State
	muted   bool
	endPath EndPath
	wrapUps int
	history []Transition
	now     func() time.Time
}

// New returns an idle call.
func New(id string) *Call {
	return &Call{ID: id, state: StateIdle, now: time.Now}
}

// State returns the current state.
func (c *Call) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Muted reports whether the agent microphone is muted.
func (c *Call) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// Active reports whether the call has been dialed and not yet ended.
func (c *Call) Active() bool {
	s := c.State()
	return s != StateIdle && s != StateEnded
}

// EndPath returns how the call ended, or "" while it is still live.
func (c *Call) EndPath() EndPath {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endPath
}

// WrapUpConfirmations returns how many times "Leave Without Wrap-Up" was
// confirmed for this call.
func (c *Call) WrapUpConfirmations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wrapUps
}

// History returns a copy of the recorded transitions.
func (c *Call) History() []Transition {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Transition(nil), c.history...)
}

// Require returns a TransitionError unless the call is in one of states.
// Actions use it to refuse a UI interaction the call cannot be in.
func (c *Call) Require(cause string, states ...State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range states {
		if c.state == s {
			return nil
		}
	}
	want := StateConnected
	if len(states) > 0 {
		want = states[0]
	}
	return &TransitionError{From: c.state, To: want, Cause: cause}
}

// Dial moves idle to dialing and records the dialed number.
func (c *Call) Dial(number string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.move(StateDialing, "dial "+number); err != nil {
		return err
	}
	c.Dialed = number
	return nil
}

// Ring moves dialing to ringing.
func (c *Call) Ring() error {
	return c.to(StateRinging, "ring")
}

// Connect moves a ringing (or still dialing) call to connected.
func (c *Call) Connect() error {
	return c.to(StateConnected, "accept")
}

// Hold moves connected to held.
func (c *Call) Hold() error {
	return c.to(StateHeld, "hold")
}

// Resume moves held back to connected.
func (c *Call) Resume() error {
	return c.to(StateConnected, "resume")
}

// Mute sets the muted flag. Only valid while connected or held.
func (c *Call) Mute() error {
	return c.setMuted(true, "mute")
}

// Unmute clears the muted flag. Only valid while connected or held.
func (c *Call) Unmute() error {
	return c.setMuted(false, "unmute")
}

// End moves a live call to ended via path. Mute is cleared.
func (c *Call) End(path EndPath) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.move(StateEnded, "end via "+string(path)); err != nil {
		return err
	}
	c.endPath = path
	c.muted = false
	return nil
}

// ConfirmWrapUp records a "Leave Without Wrap-Up" confirmation.
func (c *Call) ConfirmWrapUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wrapUps++
}

func (c *Call) to(next State, cause string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.move(next, cause)
}

func (c *Call) setMuted(muted bool, cause string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConnected && c.state != StateHeld {
		return &TransitionError{From: c.state, To: c.state, Cause: cause}
	}
	if c.muted == muted {
		return &TransitionError{From: c.state, To: c.state, Cause: cause + " (no change)"}
	}
	c.muted = muted
	return nil
}

// move must be called with c.mu held.
func (c *Call) move(next State, cause string) error {
	for _, allowed := range transitions[c.state] {
		if allowed == next {
			c.history = append(c.history, Transition{
				From:  c.state,
				To:    next,
				At:    c.now(),
				Cause: cause,
			})
			c.state = next
			return nil
		}
	}
	return &TransitionError{From: c.state, To: next, Cause: cause}
}
