package events

import "shellchain/core/types"

// Event represents a structured state change emitted by the world engines.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (e.g. RPC, indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Payload extracts the typed event carried by evt. Events that do not carry a
// payload are reported with their type and no attributes.
func Payload(evt Event) *types.Event {
	if evt == nil {
		return nil
	}
	if carrier, ok := evt.(interface{ Event() *types.Event }); ok {
		if payload := carrier.Event(); payload != nil {
			return payload
		}
	}
	return &types.Event{Type: evt.EventType(), Attributes: map[string]string{}}
}

// MultiEmitter fans events out to every wrapped emitter in order.
type MultiEmitter []Emitter

// Emit implements the Emitter interface.
func (m MultiEmitter) Emit(evt Event) {
	for _, e := range m {
		if e != nil {
			e.Emit(evt)
		}
	}
}
