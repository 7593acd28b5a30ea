package events

import "sync"

// Buffer collects events emitted during a call so they can be released only
// once the call's state changes have been committed.
type Buffer struct {
	mu     sync.Mutex
	events []Event
}

// Emit implements the Emitter interface.
func (b *Buffer) Emit(evt Event) {
	if b == nil || evt == nil {
		return
	}
	b.mu.Lock()
	b.events = append(b.events, evt)
	b.mu.Unlock()
}

// Len reports the number of buffered events.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// Flush forwards every buffered event to dst and empties the buffer. The
// flushed events are returned in emission order.
func (b *Buffer) Flush(dst Emitter) []Event {
	b.mu.Lock()
	pending := b.events
	b.events = nil
	b.mu.Unlock()
	if dst != nil {
		for _, evt := range pending {
			dst.Emit(evt)
		}
	}
	return pending
}

// Reset drops every buffered event.
func (b *Buffer) Reset() {
	b.mu.Lock()
	b.events = nil
	b.mu.Unlock()
}
