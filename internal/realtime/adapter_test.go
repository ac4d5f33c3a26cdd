package realtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore/memory"
)

type push struct {
	records []docstore.Record
	err     error
}

func startAdapter(t *testing.T, store docstore.Store) *Adapter {
	t.Helper()
	a := NewAdapter(store)
	ctx, cancel := context.WithCancel(context.Background())
	go a.Run(ctx)
	select {
	case <-a.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("change feed not ready")
	}
	t.Cleanup(func() {
		cancel()
		a.Close()
	})
	return a
}

func collect(t *testing.T) (Callback, <-chan push) {
	t.Helper()
	ch := make(chan push, 32)
	return func(records []docstore.Record, err error) {
		ch <- push{records: records, err: err}
	}, ch
}

func next(t *testing.T, ch <-chan push) push {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for push")
		return push{}
	}
}

// waitFor skips pushes until one satisfies ok; changes may coalesce.
func waitFor(t *testing.T, ch <-chan push, ok func(push) bool) push {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case p := <-ch:
			if ok(p) {
				return p
			}
		case <-deadline:
			t.Fatal("timed out waiting for matching push")
			return push{}
		}
	}
}

func TestListen_InitialAndUpdates(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	store.Create(ctx, "leads", map[string]any{"name": "first"})

	a := startAdapter(t, store)
	cb, ch := collect(t)
	unsub := a.Listen("leads", cb)
	defer unsub()

	p := next(t, ch)
	if p.err != nil || len(p.records) != 1 || p.records[0]["name"] != "first" {
		t.Fatalf("unexpected initial push: %+v", p)
	}
	if p.records[0].ID() == "" {
		t.Fatal("record missing id")
	}

	if _, err := a.Add(ctx, "leads", map[string]any{"name": "second"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	p = waitFor(t, ch, func(p push) bool { return len(p.records) == 2 })
	if p.records[0]["name"] != "second" {
		t.Fatalf("expected newest first, got %v", p.records[0]["name"])
	}
}

func TestListen_OtherCollectionsDoNotWake(t *testing.T) {
	store := memory.New()
	a := startAdapter(t, store)
	cb, ch := collect(t)
	unsub := a.Listen("materials", cb)
	defer unsub()
	next(t, ch)

	a.Add(context.Background(), "leads", map[string]any{"name": "x"})
	select {
	case p := <-ch:
		t.Fatalf("unexpected push for unrelated collection: %+v", p)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestListen_UnindexedOrderFallsBack(t *testing.T) {
	store := memory.New()
	store.Create(context.Background(), "materials", map[string]any{"name": "panel"})
	a := startAdapter(t, store)

	cb, ch := collect(t)
	unsub := a.Listen("materials", cb, OrderBy("name", false))
	defer unsub()

	p := next(t, ch)
	if p.err != nil {
		t.Fatalf("expected fallback instead of error, got %v", p.err)
	}
	if len(p.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(p.records))
	}
}

func TestListen_QueryErrorReachesCallback(t *testing.T) {
	store := memory.New()
	boom := errors.New("permission denied")
	store.FailList(boom)
	a := startAdapter(t, store)

	cb, ch := collect(t)
	unsub := a.Listen("team", cb)
	defer unsub()

	p := next(t, ch)
	if !errors.Is(p.err, boom) || p.records != nil {
		t.Fatalf("expected error push, got %+v", p)
	}
}

func TestUnsubscribe_StopsPushes(t *testing.T) {
	store := memory.New()
	a := startAdapter(t, store)
	cb, ch := collect(t)
	unsub := a.Listen("gallery", cb)
	next(t, ch)

	unsub()
	unsub()
	if n := a.Subscribers("gallery"); n != 0 {
		t.Fatalf("expected no subscribers, got %d", n)
	}

	a.Add(context.Background(), "gallery", map[string]any{"url": "x"})
	select {
	case p := <-ch:
		t.Fatalf("push after unsubscribe: %+v", p)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWrites(t *testing.T) {
	store := memory.New()
	a := startAdapter(t, store)
	ctx := context.Background()

	id, err := a.Add(ctx, "reminders", map[string]any{"status": "Pending"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := a.Update(ctx, "reminders", id, map[string]any{"status": "Sent"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	rec, err := a.Get(ctx, "reminders", id)
	if err != nil || rec["status"] != "Sent" {
		t.Fatalf("get after update: %v %v", rec, err)
	}
	if err := a.Delete(ctx, "reminders", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := a.Delete(ctx, "reminders", id); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
