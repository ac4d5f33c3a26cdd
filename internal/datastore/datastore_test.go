package datastore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore/memory"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/realtime"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/toast"
)

type fakeSource struct {
	mu      sync.Mutex
	cbs     map[string]realtime.Callback
	orders  map[string]int
	unsubs  map[string]int
	listens int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		cbs:    make(map[string]realtime.Callback),
		orders: make(map[string]int),
		unsubs: make(map[string]int),
	}
}

func (f *fakeSource) Listen(collection string, cb realtime.Callback, opts ...realtime.ListenOption) realtime.Unsubscribe {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cbs[collection] = cb
	f.orders[collection] = len(opts)
	f.listens++
	return func() {
		f.mu.Lock()
		f.unsubs[collection]++
		f.mu.Unlock()
	}
}

func (f *fakeSource) push(collection string, recs []docstore.Record, err error) {
	f.mu.Lock()
	cb := f.cbs[collection]
	f.mu.Unlock()
	cb(recs, err)
}

type recordingNotifier struct {
	mu     sync.Mutex
	toasts []toast.Toast
}

func (r *recordingNotifier) Push(msg string, kind toast.Kind) toast.Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := toast.Toast{Message: msg, Kind: kind}
	r.toasts = append(r.toasts, t)
	return t
}

func TestOpenSubscribesEveryCollection(t *testing.T) {
	src := newFakeSource()
	s := New(src, nil, false)
	s.Open()
	if src.listens != 10 {
		t.Fatalf("listens = %d, want 10", src.listens)
	}

	s.Close()
	for _, c := range models.Collections() {
		if src.unsubs[c] != 1 {
			t.Errorf("%s unsubscribed %d times", c, src.unsubs[c])
		}
	}
	if s.Snapshot(models.CollectionLeads) != nil {
		t.Error("close must clear snapshots")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	src := newFakeSource()
	s := New(src, nil, false)
	s.Open()
	defer s.Close()

	src.push(models.CollectionLeads, []docstore.Record{{"id": "1", "name": "Ravi", "tags": []any{"roof"}}}, nil)

	snap := s.Snapshot(models.CollectionLeads)
	snap[0]["name"] = "changed"
	snap[0]["tags"].([]any)[0] = "changed"

	again := s.Snapshot(models.CollectionLeads)
	if again[0]["name"] != "Ravi" || again[0]["tags"].([]any)[0] != "roof" {
		t.Fatalf("snapshot mutated through copy: %v", again[0])
	}
}

func TestErrorStreakKeepsSnapshotAndWarnsOnce(t *testing.T) {
	src := newFakeSource()
	n := &recordingNotifier{}
	s := New(src, n, false)
	s.Open()
	defer s.Close()

	src.push(models.CollectionCustomers, []docstore.Record{{"id": "c1"}}, nil)
	src.push(models.CollectionCustomers, nil, errors.New("permission denied"))
	src.push(models.CollectionCustomers, nil, errors.New("permission denied"))

	if got := s.Snapshot(models.CollectionCustomers); len(got) != 1 {
		t.Fatalf("last snapshot lost: %v", got)
	}
	if s.Err(models.CollectionCustomers) == nil {
		t.Fatal("error not recorded")
	}
	if len(n.toasts) != 1 || n.toasts[0].Kind != toast.Warning {
		t.Fatalf("toasts = %+v, want one warning", n.toasts)
	}

	src.push(models.CollectionCustomers, []docstore.Record{{"id": "c1"}, {"id": "c2"}}, nil)
	if s.Err(models.CollectionCustomers) != nil {
		t.Fatal("error should clear on success")
	}
	src.push(models.CollectionCustomers, nil, errors.New("again"))
	if len(n.toasts) != 2 {
		t.Fatalf("new streak should warn again, got %d toasts", len(n.toasts))
	}
}

func TestOnUpdateAndReady(t *testing.T) {
	src := newFakeSource()
	s := New(src, nil, false)
	s.Open()
	defer s.Close()

	var got []string
	stop := s.OnUpdate(func(c string, recs []docstore.Record) { got = append(got, c) })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := s.Ready(ctx, models.CollectionIncome); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Ready before first push = %v", err)
	}

	src.push(models.CollectionIncome, nil, nil)
	if err := s.Ready(context.Background(), models.CollectionIncome); err != nil {
		t.Fatal(err)
	}
	if !s.Loaded(models.CollectionIncome) {
		t.Fatal("income should be loaded")
	}
	stop()
	src.push(models.CollectionIncome, nil, nil)
	if len(got) != 1 || got[0] != models.CollectionIncome {
		t.Fatalf("observer calls = %v", got)
	}
	if err := s.Ready(context.Background(), "unknown"); !errors.Is(err, docstore.ErrInvalidCollection) {
		t.Fatalf("unknown collection err = %v", err)
	}
}

func TestLazyAcquireRefcounts(t *testing.T) {
	src := newFakeSource()
	s := New(src, nil, true)
	s.Open()
	if src.listens != 0 {
		t.Fatal("lazy store must not subscribe on open")
	}

	r1 := s.Acquire(models.CollectionMaterials)
	r2 := s.Acquire(models.CollectionMaterials)
	if src.listens != 1 {
		t.Fatalf("listens = %d, want 1", src.listens)
	}
	src.push(models.CollectionMaterials, []docstore.Record{{"id": "m"}}, nil)

	r1()
	r1()
	if src.unsubs[models.CollectionMaterials] != 0 {
		t.Fatal("released too early")
	}
	r2()
	if src.unsubs[models.CollectionMaterials] != 1 {
		t.Fatal("last release should unsubscribe")
	}
	if s.Loaded(models.CollectionMaterials) || s.Snapshot(models.CollectionMaterials) != nil {
		t.Fatal("released collection should be cleared")
	}

	s.Acquire(models.CollectionMaterials)
	if src.listens != 2 {
		t.Fatal("re-acquire should subscribe again")
	}
	s.Close()
}

func TestWithRealAdapter(t *testing.T) {
	mem := memory.New()
	adapter := realtime.NewAdapter(mem)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go adapter.Run(ctx)
	defer adapter.Close()
	<-adapter.Ready()

	s := New(adapter, nil, false)
	s.Open()
	defer s.Close()

	if err := s.Ready(ctx, models.Collections()...); err != nil {
		t.Fatal(err)
	}

	updated := make(chan struct{}, 10)
	s.OnUpdate(func(c string, _ []docstore.Record) {
		if c == models.CollectionExpenses {
			updated <- struct{}{}
		}
	})
	if _, err := adapter.Add(ctx, models.CollectionExpenses, map[string]any{"amount": 500.0, "date": "2024-05-01"}); err != nil {
		t.Fatal(err)
	}
	select {
	case <-updated:
	case <-time.After(2 * time.Second):
		t.Fatal("no update after write")
	}
	if got := s.Snapshot(models.CollectionExpenses); len(got) != 1 {
		t.Fatalf("expenses = %v", got)
	}
}
