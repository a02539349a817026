package scenario

import "time"

// EventType identifies a runner event.
type EventType string

const (
	EventSuiteStarted  EventType = "suite_started"
	EventStepStarted   EventType = "step_started"
	EventStepPassed    EventType = "step_passed"
	EventStepFailed    EventType = "step_failed"
	EventStepSkipped   EventType = "step_skipped"
	EventSuiteFinished EventType = "suite_finished"
)

// Event reports runner progress to a sink.
type Event struct {
	Type  EventType
	Suite string
	// Step is empty for suite events and for setup and teardown.
	Step  string
	Phase Phase
	// Index is 1-based; Total counts every declared step.
	Index    int
	Total    int
	Status   Status
	Err      error
	Duration time.Duration
	// Result is set on EventSuiteFinished.
	Result *SuiteResult
}

// Sink receives events synchronously on the runner goroutine.
type Sink func(Event)

// Fanout delivers every event to each non-nil sink in order.
func Fanout(sinks ...Sink) Sink {
	return func(e Event) {
		for _, s := range sinks {
			if s != nil {
				s(e)
			}
		}
	}
}

// ChannelSink forwards events to ch. The sink blocks when ch is full so no
// event is dropped.
func ChannelSink(ch chan<- Event) Sink {
	return func(e Event) {
		ch <- e
	}
}
