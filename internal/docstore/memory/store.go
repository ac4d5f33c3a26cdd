// Package memory implements an in-memory docstore.Store for tests and
// single-process demos. Values are normalized through JSON on write so
// records look exactly like ones read back from the postgres backend.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore"
)

type entry struct {
	doc docstore.Document
	seq int64
}

type watcher struct {
	ch     chan docstore.Change
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

// Store implements docstore.Store backed by process memory.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]*entry
	seq         int64
	watchers    map[*watcher]struct{}
	now         func() time.Time
	failList    error
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		collections: make(map[string]map[string]*entry),
		watchers:    make(map[*watcher]struct{}),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// FailList makes every List call return err until reset with nil.
func (s *Store) FailList(err error) {
	s.mu.Lock()
	s.failList = err
	s.mu.Unlock()
}

// List returns the collection's documents in the requested order.
func (s *Store) List(_ context.Context, collection string, order docstore.Order) ([]docstore.Document, error) {
	if err := docstore.ValidCollection(collection); err != nil {
		return nil, err
	}
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("list %s by %s: %w", collection, order.Field, err)
	}

	s.mu.RLock()
	if s.failList != nil {
		err := s.failList
		s.mu.RUnlock()
		return nil, err
	}
	entries := make([]*entry, 0, len(s.collections[collection]))
	for _, e := range s.collections[collection] {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if !order.IsZero() {
			ai, bi := hasField(entries[i], order.Field), hasField(entries[j], order.Field)
			if ai != bi {
				return ai
			}
			if c := compareField(entries[i], entries[j], order.Field); c != 0 {
				if order.Desc {
					return c > 0
				}
				return c < 0
			}
			if order.Desc {
				return entries[i].seq > entries[j].seq
			}
		}
		return entries[i].seq < entries[j].seq
	})

	out := make([]docstore.Document, len(entries))
	for i, e := range entries {
		out[i] = copyDoc(e.doc)
	}
	return out, nil
}

func hasField(e *entry, field string) bool {
	switch field {
	case docstore.FieldCreatedAt, docstore.FieldUpdatedAt:
		return true
	}
	_, ok := e.doc.Fields[field]
	return ok
}

// compareField orders timestamps chronologically and business fields as
// text. Documents missing the field sort last in either direction.
func compareField(a, b *entry, field string) int {
	switch field {
	case docstore.FieldCreatedAt:
		return a.doc.CreatedAt.Compare(b.doc.CreatedAt)
	case docstore.FieldUpdatedAt:
		return a.doc.UpdatedAt.Compare(b.doc.UpdatedAt)
	}
	as, bs := fmt.Sprint(a.doc.Fields[field]), fmt.Sprint(b.doc.Fields[field])
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}

// Get returns one document.
func (s *Store) Get(_ context.Context, collection, id string) (docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.collections[collection][id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return copyDoc(e.doc), nil
}

// Create stores a new document with a generated id.
func (s *Store) Create(_ context.Context, collection string, fields map[string]any) (docstore.Document, error) {
	if err := docstore.ValidCollection(collection); err != nil {
		return docstore.Document{}, err
	}
	normalized, err := normalize(docstore.StripReserved(fields))
	if err != nil {
		return docstore.Document{}, err
	}

	s.mu.Lock()
	now := s.now()
	s.seq++
	doc := docstore.Document{
		ID:        uuid.NewString(),
		Fields:    normalized,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]*entry)
	}
	s.collections[collection][doc.ID] = &entry{doc: doc, seq: s.seq}
	out := copyDoc(doc)
	s.mu.Unlock()

	s.emit(docstore.Change{Collection: collection, ID: doc.ID, Op: docstore.OpInsert})
	return out, nil
}

// Update merges fields into an existing document and re-stamps updatedAt.
func (s *Store) Update(_ context.Context, collection, id string, fields map[string]any) (docstore.Document, error) {
	normalized, err := normalize(docstore.StripReserved(fields))
	if err != nil {
		return docstore.Document{}, err
	}

	s.mu.Lock()
	e, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return docstore.Document{}, docstore.ErrNotFound
	}
	merged := docstore.CloneFields(e.doc.Fields)
	for k, v := range normalized {
		merged[k] = v
	}
	e.doc.Fields = merged
	e.doc.UpdatedAt = s.now()
	out := copyDoc(e.doc)
	s.mu.Unlock()

	s.emit(docstore.Change{Collection: collection, ID: id, Op: docstore.OpUpdate})
	return out, nil
}

// Delete removes a document.
func (s *Store) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	if _, ok := s.collections[collection][id]; !ok {
		s.mu.Unlock()
		return docstore.ErrNotFound
	}
	delete(s.collections[collection], id)
	s.mu.Unlock()

	s.emit(docstore.Change{Collection: collection, ID: id, Op: docstore.OpDelete})
	return nil
}

// Watch streams every committed write until ctx ends.
func (s *Store) Watch(ctx context.Context) (<-chan docstore.Change, error) {
	w := &watcher{
		ch:   make(chan docstore.Change, 64),
		done: make(chan struct{}),
	}
	s.mu.Lock()
	s.watchers[w] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, w)
		s.mu.Unlock()
		close(w.done)
		w.mu.Lock()
		w.closed = true
		close(w.ch)
		w.mu.Unlock()
	}()
	return w.ch, nil
}

func (s *Store) emit(c docstore.Change) {
	s.mu.RLock()
	ws := make([]*watcher, 0, len(s.watchers))
	for w := range s.watchers {
		ws = append(ws, w)
	}
	s.mu.RUnlock()

	for _, w := range ws {
		w.mu.Lock()
		if !w.closed {
			select {
			case w.ch <- c:
			case <-w.done:
			}
		}
		w.mu.Unlock()
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op; watchers end with their contexts.
func (s *Store) Close() {}

func copyDoc(d docstore.Document) docstore.Document {
	d.Fields = docstore.CloneFields(d.Fields)
	return d
}

// normalize round-trips fields through JSON, matching jsonb storage.
func normalize(fields map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	out := make(map[string]any, len(fields))
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return out, nil
}
