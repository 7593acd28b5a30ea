package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"shellchain/core/types"
)

type testEvent struct{ payload *types.Event }

func (e testEvent) EventType() string   { return e.payload.Type }
func (e testEvent) Event() *types.Event { return e.payload }

func newTestEvent(kind string) testEvent {
	return testEvent{&types.Event{Type: kind, Attributes: map[string]string{"k": kind}}}
}

type bareEvent struct{}

func (bareEvent) EventType() string { return "bare" }

type sliceEmitter struct{ got []Event }

func (s *sliceEmitter) Emit(evt Event) { s.got = append(s.got, evt) }

func TestBufferFlushPreservesOrder(t *testing.T) {
	var buf Buffer
	buf.Emit(newTestEvent("a"))
	buf.Emit(newTestEvent("b"))
	buf.Emit(nil)
	if buf.Len() != 2 {
		t.Fatalf("expected 2 buffered events, got %d", buf.Len())
	}
	sink := &sliceEmitter{}
	flushed := buf.Flush(sink)
	if len(flushed) != 2 || len(sink.got) != 2 {
		t.Fatalf("unexpected flush result: %d %d", len(flushed), len(sink.got))
	}
	if sink.got[0].EventType() != "a" || sink.got[1].EventType() != "b" {
		t.Fatalf("unexpected order: %s %s", sink.got[0].EventType(), sink.got[1].EventType())
	}
	if buf.Len() != 0 {
		t.Fatalf("buffer not emptied")
	}
}

func TestBufferReset(t *testing.T) {
	var buf Buffer
	buf.Emit(newTestEvent("a"))
	buf.Reset()
	sink := &sliceEmitter{}
	buf.Flush(sink)
	if len(sink.got) != 0 {
		t.Fatalf("reset buffer should not flush events")
	}
}

func TestPayloadFallsBackToType(t *testing.T) {
	p := Payload(bareEvent{})
	if p.Type != "bare" || p.Attributes == nil {
		t.Fatalf("unexpected payload: %+v", p)
	}
	if Payload(nil) != nil {
		t.Fatalf("nil event should have nil payload")
	}
	if got := Payload(newTestEvent("x")); got.Attributes["k"] != "x" {
		t.Fatalf("payload attributes lost: %+v", got)
	}
}

func TestMultiEmitter(t *testing.T) {
	a, b := &sliceEmitter{}, &sliceEmitter{}
	MultiEmitter{a, nil, b}.Emit(newTestEvent("x"))
	if len(a.got) != 1 || len(b.got) != 1 {
		t.Fatalf("event not fanned out")
	}
}

func TestHubBacklogAndLiveDelivery(t *testing.T) {
	hub := NewHub()
	hub.nowFn = func() time.Time { return time.Unix(100, 0) }
	hub.Publish("call", newTestEvent("one"))
	hub.Publish("call", newTestEvent("two"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates, stop, backlog := hub.Subscribe(ctx, "1")
	defer stop()
	if len(backlog) != 1 || backlog[0].Type != "two" || backlog[0].Sequence != 2 {
		t.Fatalf("unexpected backlog: %+v", backlog)
	}

	rec := hub.Publish("call", newTestEvent("three"))
	if rec.Cursor != "3" || rec.Timestamp != 100 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	select {
	case got := <-updates:
		if got.Type != "three" || got.Call != "call" {
			t.Fatalf("unexpected live record: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("live record not delivered")
	}

	stop()
	stop()
	if hub.Subscribers() != 0 {
		t.Fatalf("subscriber not removed")
	}
	if _, ok := <-updates; ok {
		t.Fatalf("channel should be closed after cancel")
	}
}

func TestHubPublishRacesWithCancel(t *testing.T) {
	hub := NewHub()
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				_, cancel, _ := hub.Subscribe(context.Background(), "")
				cancel()
			}
		}()
	}
	for i := 0; i < 50000; i++ {
		hub.Publish("call", newTestEvent("tick"))
	}
	close(stop)
	wg.Wait()
	if hub.Subscribers() != 0 {
		t.Fatalf("expected no live subscribers, got %d", hub.Subscribers())
	}
}
