package events

import (
	"fmt"

	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers.
// Usage: bus.Publish(ZoneStateChangedEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event dispatches on the concrete type, so each known event
	// type goes through the generic Publish explicitly.
	switch e := ev.(type) {
	case ZoneStateChangedEvent:
		event.Publish(b.dispatcher, e)
	case ThemeAppliedEvent:
		event.Publish(b.dispatcher, e)
	case DeviceDetectedEvent:
		event.Publish(b.dispatcher, e)
	case TransportErrorEvent:
		event.Publish(b.dispatcher, e)
	case LogEntryEvent:
		event.Publish(b.dispatcher, e)
	default:
		// A type missing from this switch would otherwise vanish silently.
		panic(fmt.Sprintf("events: Publish called with unhandled event type %T", ev))
	}
}

// Subscribe subscribes to events with a handler function. The handler's
// parameter type determines which events it receives. Returns an
// unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e ZoneStateChangedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(ZoneStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ThemeAppliedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(DeviceDetectedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(TransportErrorEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LogEntryEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		panic(fmt.Sprintf("events: Subscribe called with unhandled handler type %T", handler))
	}
}
