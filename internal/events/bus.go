package events

import (
	"github.com/kelindar/event"
)

// Bus wraps the kelindar/event dispatcher for in-process event broadcasting.
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
// Usage: bus.Publish(DisplayCreatedEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event dispatches on the concrete type, so fan out through a
	// type switch rather than the interface value.
	switch e := ev.(type) {
	case DisplayCreatedEvent:
		event.Publish(b.dispatcher, e)
	case DisplayDestroyedEvent:
		event.Publish(b.dispatcher, e)
	case DisplayDegradedEvent:
		event.Publish(b.dispatcher, e)
	case DisplayModeChangedEvent:
		event.Publish(b.dispatcher, e)
	case DevicePowerEvent:
		event.Publish(b.dispatcher, e)
	case ConnectorResolvedEvent:
		event.Publish(b.dispatcher, e)
	case LogEntryEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function. The handler's
// parameter type determines which events it receives.
// Returns an unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e DisplayCreatedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(DisplayCreatedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(DisplayDestroyedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(DisplayDegradedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(DisplayModeChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(DevicePowerEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ConnectorResolvedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LogEntryEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		// Unknown handler type gets a no-op unsubscriber.
		return func() {}
	}
}
