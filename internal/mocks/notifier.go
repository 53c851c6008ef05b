package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/taskpulse-api/internal/events"
)

// RecordingNotifier implements events.Notifier by remembering every event.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []events.TaskEvent
	calls  int
}

var _ events.Notifier = (*RecordingNotifier)(nil)

// Notify implements events.Notifier.
func (n *RecordingNotifier) Notify(_ context.Context, evs ...events.TaskEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	n.events = append(n.events, evs...)
}

// Events returns a copy of the recorded events in arrival order.
func (n *RecordingNotifier) Events() []events.TaskEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]events.TaskEvent, len(n.events))
	copy(out, n.events)
	return out
}

// Kinds returns the kinds of the recorded events in arrival order.
func (n *RecordingNotifier) Kinds() []events.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]events.Kind, 0, len(n.events))
	for _, ev := range n.events {
		out = append(out, ev.Kind)
	}
	return out
}

// Calls returns how many times Notify was invoked.
func (n *RecordingNotifier) Calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}
