package narration

import (
	"testing"

	"github.com/charmbracelet/log"
)

// TestMailbox tests FIFO order and the ready signal
func TestMailbox(t *testing.T) {
	m := newMailbox[int]()
	for i := range 3 {
		m.post(i)
	}

	select {
	case <-m.ready:
	default:
		t.Fatal("ready not signalled after post")
	}

	got := m.drain()
	if len(got) != 3 {
		t.Fatalf("drain() returned %d items, want 3", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Errorf("drain()[%d] = %d, want %d", i, v, i)
		}
	}
	if got := m.drain(); len(got) != 0 {
		t.Errorf("second drain() = %v, want empty", got)
	}
}

// TestFlushPending tests that events the pump was holding at close are
// delivered ahead of the outbox
func TestFlushPending(t *testing.T) {
	s := &Scheduler{
		logger: log.Default(),
		outbox: newMailbox[Event](),
		events: make(chan Event, 4),
		done:   make(chan struct{}),
	}
	close(s.done)

	s.outbox.post(Event{Kind: EventFinished, Index: 2})
	s.flush([]Event{
		{Kind: EventProgress, Index: 0},
		{Kind: EventProgress, Index: 1},
	})
	close(s.events)

	want := []EventKind{EventProgress, EventProgress, EventFinished}
	var i int
	for ev := range s.events {
		if i >= len(want) {
			t.Fatalf("got unexpected event %v", ev)
		}
		if ev.Kind != want[i] || ev.Index != i {
			t.Errorf("event %d = %v/%d, want %v/%d", i, ev.Kind, ev.Index, want[i], i)
		}
		i++
	}
	if i != len(want) {
		t.Errorf("got %d events, want %d", i, len(want))
	}
}
