package core

import (
	"time"

	"realtycore/pkg/domain"
)

// Event describes the outcome of a mutation for external notification layers
// (toasts, logs, webhooks). The core emits events and never waits for
// acknowledgement.
type Event struct {
	Entity   domain.EntityType `json:"entity"`
	Action   domain.Action     `json:"action"`
	RecordID string            `json:"record_id,omitempty"`
	OK       bool              `json:"ok"`
	Message  string            `json:"message"`
	At       time.Time         `json:"at"`
}

// Notifier consumes mutation events. Implementations must not block; slow
// sinks should buffer or drop.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Event)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ev Event) { f(ev) }

type noopNotifier struct{}

func (noopNotifier) Notify(Event) {}

// ChannelNotifier forwards events to a buffered channel, dropping events when
// the buffer is full so the service never stalls on a slow consumer.
type ChannelNotifier struct {
	ch chan Event
}

// NewChannelNotifier creates a notifier with the given buffer size.
func NewChannelNotifier(buffer int) *ChannelNotifier {
	if buffer <= 0 {
		buffer = 64
	}
	return &ChannelNotifier{ch: make(chan Event, buffer)}
}

// Events returns the receive side of the notifier.
func (n *ChannelNotifier) Events() <-chan Event { return n.ch }

// Notify implements Notifier with a non-blocking send.
func (n *ChannelNotifier) Notify(ev Event) {
	select {
	case n.ch <- ev:
	default:
	}
}
