package toast

import (
	"sync"
	"testing"
	"time"
)

type fakeTimer struct {
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

// fakeClock fires scheduled funcs when Advance passes their deadline.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

func (c *fakeClock) afterFunc(d time.Duration, fn func()) stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.fired && !t.stopped && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

func newTestNotifier() (*Notifier, *fakeClock) {
	clock := &fakeClock{}
	n := NewNotifier()
	n.afterFunc = clock.afterFunc
	return n, clock
}

func TestPush_ExpiresAfterLifetime(t *testing.T) {
	n, clock := newTestNotifier()

	toast := n.Push("Failed to save", Error)
	if toast.ID == "" || toast.Kind != Error {
		t.Fatalf("unexpected toast %+v", toast)
	}
	if got := n.List(); len(got) != 1 {
		t.Fatalf("expected 1 toast, got %d", len(got))
	}

	clock.Advance(3499 * time.Millisecond)
	if got := n.List(); len(got) != 1 {
		t.Fatalf("toast removed too early")
	}
	clock.Advance(time.Millisecond)
	if got := n.List(); len(got) != 0 {
		t.Fatalf("toast should be gone after 3.5s, got %v", got)
	}

	clock.Advance(10 * time.Second)
	if got := n.List(); len(got) != 0 {
		t.Fatalf("toast reappeared: %v", got)
	}
}

func TestPush_IndependentTimers(t *testing.T) {
	n, clock := newTestNotifier()

	first := n.Push("one", OK)
	clock.Advance(2 * time.Second)
	second := n.Push("two", Warning)
	if first.ID == second.ID {
		t.Fatal("tokens must be unique")
	}

	clock.Advance(1500 * time.Millisecond)
	got := n.List()
	if len(got) != 1 || got[0].ID != second.ID {
		t.Fatalf("expected only the second toast, got %v", got)
	}

	clock.Advance(2 * time.Second)
	if len(n.List()) != 0 {
		t.Fatal("second toast should have expired")
	}
}

func TestPush_OrderAndDefaultKind(t *testing.T) {
	n, _ := newTestNotifier()
	n.Push("a", "")
	n.Push("b", Error)
	got := n.List()
	if got[0].Message != "a" || got[1].Message != "b" {
		t.Fatalf("expected insertion order, got %v", got)
	}
	if got[0].Kind != OK {
		t.Fatalf("default kind = %q", got[0].Kind)
	}
}

func TestSubscribeAndDismiss(t *testing.T) {
	n, _ := newTestNotifier()
	var lengths []int
	unsub := n.Subscribe(func(list []Toast) { lengths = append(lengths, len(list)) })

	tt := n.Push("x", OK)
	n.Dismiss(tt.ID)
	n.Dismiss(tt.ID)
	unsub()
	n.Push("y", OK)

	if len(lengths) != 2 || lengths[0] != 1 || lengths[1] != 0 {
		t.Fatalf("unexpected observer calls: %v", lengths)
	}
}

func TestClose(t *testing.T) {
	n, clock := newTestNotifier()
	n.Push("x", OK)
	n.Close()
	if len(n.List()) != 0 {
		t.Fatal("close should drop toasts")
	}
	n.Push("after close", OK)
	clock.Advance(Lifetime)
	if len(n.List()) != 0 {
		t.Fatal("push after close should be ignored")
	}
}
