package events

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

const hubHistoryLimit = 2048

// Record is a committed event stamped with its position in the stream.
type Record struct {
	Sequence   uint64            `json:"sequence"`
	Cursor     string            `json:"cursor"`
	Call       string            `json:"call,omitempty"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
	Timestamp  int64             `json:"timestamp"`
}

func cloneRecord(rec Record) Record {
	cloned := rec
	if rec.Attributes != nil {
		cloned.Attributes = make(map[string]string, len(rec.Attributes))
		for k, v := range rec.Attributes {
			cloned.Attributes[k] = v
		}
	}
	return cloned
}

// Hub sequences committed events, keeps a bounded history and broadcasts each
// record to live subscribers. Slow subscribers miss records rather than
// blocking the publisher.
type Hub struct {
	mu      sync.Mutex
	seq     uint64
	history []Record
	subs    map[uint64]chan Record
	nextID  uint64
	nowFn   func() time.Time
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]chan Record), nowFn: time.Now}
}

// Publish stamps evt with the next sequence number and broadcasts it.
func (h *Hub) Publish(call string, evt Event) Record {
	payload := Payload(evt)
	h.mu.Lock()
	h.seq++
	rec := Record{
		Sequence:   h.seq,
		Cursor:     strconv.FormatUint(h.seq, 10),
		Call:       call,
		Type:       payload.Type,
		Attributes: payload.Attributes,
		Timestamp:  h.nowFn().Unix(),
	}
	stored := cloneRecord(rec)
	h.history = append(h.history, stored)
	if len(h.history) > hubHistoryLimit {
		excess := len(h.history) - hubHistoryLimit
		trimmed := make([]Record, hubHistoryLimit)
		copy(trimmed, h.history[excess:])
		h.history = trimmed
	}
	// Sends stay under h.mu so cancel cannot close a channel mid-send.
	for _, ch := range h.subs {
		select {
		case ch <- cloneRecord(rec):
		default:
		}
	}
	h.mu.Unlock()
	return rec
}

// Subscribe registers a subscriber for records published after the supplied
// cursor. The returned backlog holds retained records newer than the cursor.
// The cancel function is idempotent and also runs when ctx is done.
func (h *Hub) Subscribe(ctx context.Context, cursor string) (<-chan Record, func(), []Record) {
	updates := make(chan Record, 32)

	var since uint64
	if trimmed := strings.TrimSpace(cursor); trimmed != "" {
		if parsed, err := strconv.ParseUint(trimmed, 10, 64); err == nil {
			since = parsed
		}
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = updates
	backlog := make([]Record, 0, len(h.history))
	for _, rec := range h.history {
		if rec.Sequence > since {
			backlog = append(backlog, cloneRecord(rec))
		}
	}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if sub, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub)
			}
			h.mu.Unlock()
		})
	}
	if ctx != nil && ctx.Done() != nil {
		done := ctx.Done()
		go func() {
			<-done
			cancel()
		}()
	}
	return updates, cancel, backlog
}

// Subscribers reports the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
