// Package datastore holds one session's in-memory copy of every business
// collection, kept current by live queries. Pages read snapshots from it;
// only subscription callbacks write to it.
package datastore

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/realtime"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/toast"
)

// Source opens live queries. *realtime.Adapter satisfies it.
type Source interface {
	Listen(collection string, cb realtime.Callback, opts ...realtime.ListenOption) realtime.Unsubscribe
}

// Notifier receives the warning shown when a collection stops updating.
type Notifier interface {
	Push(message string, kind toast.Kind) toast.Toast
}

// UpdateFunc observes every snapshot replacement.
type UpdateFunc func(collection string, records []docstore.Record)

type entry struct {
	records []docstore.Record
	loaded  chan struct{}
	seen    bool
	err     error
	failing bool

	refs  int
	unsub realtime.Unsubscribe
}

// Store is the per-session collection cache.
type Store struct {
	src      Source
	notifier Notifier
	lazy     bool

	mu        sync.Mutex
	entries   map[string]*entry
	observers map[int]UpdateFunc
	nextObs   int
	closed    bool
}

// New returns a store over src. In lazy mode nothing is subscribed until
// Acquire; otherwise call Open to subscribe to every collection.
func New(src Source, notifier Notifier, lazy bool) *Store {
	s := &Store{
		src:       src,
		notifier:  notifier,
		lazy:      lazy,
		entries:   make(map[string]*entry),
		observers: make(map[int]UpdateFunc),
	}
	for _, c := range models.Collections() {
		s.entries[c] = &entry{loaded: make(chan struct{})}
	}
	return s
}

// Lazy reports whether subscriptions follow Acquire/release.
func (s *Store) Lazy() bool { return s.lazy }

// Open subscribes to all ten collections. No-op in lazy mode.
func (s *Store) Open() {
	if s.lazy {
		return
	}
	for _, c := range models.Collections() {
		s.subscribe(c)
	}
}

// Acquire makes sure collection is live and returns the matching release.
// In eager mode it does nothing.
func (s *Store) Acquire(collection string) (release func()) {
	if !s.lazy {
		return func() {}
	}
	s.mu.Lock()
	e, ok := s.entries[collection]
	if !ok || s.closed {
		s.mu.Unlock()
		return func() {}
	}
	e.refs++
	first := e.refs == 1
	s.mu.Unlock()

	if first {
		s.subscribe(collection)
	}

	var once sync.Once
	return func() {
		once.Do(func() { s.release(collection) })
	}
}

func (s *Store) release(collection string) {
	s.mu.Lock()
	e := s.entries[collection]
	if e == nil || e.refs == 0 {
		s.mu.Unlock()
		return
	}
	e.refs--
	var unsub realtime.Unsubscribe
	if e.refs == 0 {
		unsub = e.unsub
		s.entries[collection] = &entry{loaded: make(chan struct{})}
	}
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (s *Store) subscribe(collection string) {
	schema, ok := models.Lookup(collection)
	if !ok {
		return
	}
	order := schema.SubscriptionOrder()

	s.mu.Lock()
	e := s.entries[collection]
	if s.closed || e.unsub != nil {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	unsub := s.src.Listen(collection, func(records []docstore.Record, err error) {
		s.handle(e, collection, records, err)
	}, realtime.OrderBy(order.Field, order.Desc))

	s.mu.Lock()
	if s.closed || s.entries[collection] != e {
		s.mu.Unlock()
		unsub()
		return
	}
	e.unsub = unsub
	s.mu.Unlock()
}

// handle applies one push. Errors keep the last good snapshot and raise a
// single warning per failure streak.
func (s *Store) handle(e *entry, collection string, records []docstore.Record, err error) {
	s.mu.Lock()
	if s.closed || s.entries[collection] != e {
		s.mu.Unlock()
		return
	}

	var warn bool
	if err != nil {
		log.Printf("[DataStore] %s subscription error: %v", collection, err)
		e.err = err
		warn = !e.failing
		e.failing = true
	} else {
		e.records = records
		e.err = nil
		e.failing = false
	}
	if !e.seen {
		e.seen = true
		close(e.loaded)
	}
	var obs []UpdateFunc
	if err == nil {
		obs = make([]UpdateFunc, 0, len(s.observers))
		for _, fn := range s.observers {
			obs = append(obs, fn)
		}
	}
	s.mu.Unlock()

	if warn && s.notifier != nil {
		s.notifier.Push(fmt.Sprintf("Could not refresh %s: %v", collection, err), toast.Warning)
	}
	for _, fn := range obs {
		fn(collection, docstore.CloneRecords(records))
	}
}

// Snapshot returns a deep copy of collection's latest records, nil before
// the first result.
func (s *Store) Snapshot(collection string) []docstore.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[collection]
	if !ok {
		return nil
	}
	return docstore.CloneRecords(e.records)
}

// Loaded reports whether collection has received its first result.
func (s *Store) Loaded(collection string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[collection]
	return ok && e.seen
}

// Err returns the collection's current subscription error, if any.
func (s *Store) Err(collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[collection]; ok {
		return e.err
	}
	return nil
}

// Ready blocks until each collection has delivered a first result (or
// error), or ctx ends.
func (s *Store) Ready(ctx context.Context, collections ...string) error {
	for _, c := range collections {
		s.mu.Lock()
		e, ok := s.entries[c]
		s.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: %s", docstore.ErrInvalidCollection, c)
		}
		select {
		case <-e.loaded:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// OnUpdate registers fn for every successful push and returns its removal.
func (s *Store) OnUpdate(fn UpdateFunc) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Close disposes every subscription and clears the cached data.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	var unsubs []realtime.Unsubscribe
	for c, e := range s.entries {
		if e.unsub != nil {
			unsubs = append(unsubs, e.unsub)
		}
		s.entries[c] = &entry{loaded: make(chan struct{})}
	}
	s.observers = make(map[int]UpdateFunc)
	s.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
}
