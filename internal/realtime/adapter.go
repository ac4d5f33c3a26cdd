// Package realtime turns the document store's change feed into live
// queries: each Listen call keeps a collection's full ordered result set
// flowing to a callback until it is unsubscribed.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/metrics"
)

// Callback receives the full ordered result set after every change, or a
// non-nil error with nil records when the query or feed fails.
type Callback func(records []docstore.Record, err error)

// Unsubscribe stops a live query. Safe to call more than once.
type Unsubscribe func()

type listenConfig struct {
	order docstore.Order
}

// ListenOption customizes a live query.
type ListenOption func(*listenConfig)

// OrderBy overrides the default createdAt-descending order.
func OrderBy(field string, desc bool) ListenOption {
	return func(c *listenConfig) {
		c.order = docstore.Order{Field: field, Desc: desc}
	}
}

// Adapter multiplexes one store change feed onto many live queries.
type Adapter struct {
	store      docstore.Store
	ctx        context.Context
	cancel     context.CancelFunc
	retryDelay time.Duration

	ready     chan struct{}
	readyOnce sync.Once

	mu   sync.Mutex
	subs map[string]map[*subscription]struct{}
}

// NewAdapter returns an adapter over store. Call Run to start the feed.
func NewAdapter(store docstore.Store) *Adapter {
	ctx, cancel := context.WithCancel(context.Background())
	return &Adapter{
		store:      store,
		ctx:        ctx,
		cancel:     cancel,
		retryDelay: 2 * time.Second,
		ready:      make(chan struct{}),
		subs:       make(map[string]map[*subscription]struct{}),
	}
}

// Run consumes the change feed until ctx ends, reconnecting after failures.
// While the feed is down every subscriber receives the error once; after a
// reconnect every subscription re-queries, since changes may have been
// missed.
func (a *Adapter) Run(ctx context.Context) {
	reconnected := false
	for {
		feed, err := a.store.Watch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[Realtime] change feed unavailable: %v", err)
			a.failAll(fmt.Errorf("live updates unavailable: %w", err))
			if !sleepCtx(ctx, a.retryDelay) {
				return
			}
			reconnected = true
			continue
		}

		a.readyOnce.Do(func() { close(a.ready) })
		if reconnected {
			log.Printf("[Realtime] change feed reconnected")
			a.refreshAll()
		}
		for c := range feed {
			a.notify(c.Collection)
		}
		if ctx.Err() != nil {
			return
		}
		log.Printf("[Realtime] change feed closed, reconnecting")
		reconnected = true
		if !sleepCtx(ctx, a.retryDelay) {
			return
		}
	}
}

// Ready is closed once the change feed has been established.
func (a *Adapter) Ready() <-chan struct{} {
	return a.ready
}

// Close stops every subscription goroutine.
func (a *Adapter) Close() {
	a.cancel()
}

// Listen opens a live query on collection. The first result set is
// delivered as soon as the initial query completes.
func (a *Adapter) Listen(collection string, cb Callback, opts ...ListenOption) Unsubscribe {
	cfg := listenConfig{order: docstore.Newest}
	for _, opt := range opts {
		opt(&cfg)
	}

	sub := &subscription{
		collection: collection,
		order:      cfg.order,
		cb:         cb,
		signal:     make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	sub.dirty = true

	a.mu.Lock()
	if a.subs[collection] == nil {
		a.subs[collection] = make(map[*subscription]struct{})
	}
	a.subs[collection][sub] = struct{}{}
	a.mu.Unlock()
	metrics.ActiveSubscriptions.WithLabelValues(collection).Inc()

	sub.wake()
	go sub.run(a.ctx, a.store)

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.subs[collection], sub)
			if len(a.subs[collection]) == 0 {
				delete(a.subs, collection)
			}
			a.mu.Unlock()
			close(sub.done)
			metrics.ActiveSubscriptions.WithLabelValues(collection).Dec()
		})
	}
}

// Subscribers reports how many live queries are open on collection.
func (a *Adapter) Subscribers(collection string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.subs[collection])
}

func (a *Adapter) snapshot(collection string) []*subscription {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*subscription, 0, len(a.subs[collection]))
	for s := range a.subs[collection] {
		out = append(out, s)
	}
	return out
}

func (a *Adapter) all() []*subscription {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*subscription
	for _, set := range a.subs {
		for s := range set {
			out = append(out, s)
		}
	}
	return out
}

func (a *Adapter) notify(collection string) {
	for _, s := range a.snapshot(collection) {
		s.markDirty()
	}
}

func (a *Adapter) refreshAll() {
	for _, s := range a.all() {
		s.markDirty()
	}
}

func (a *Adapter) failAll(err error) {
	for _, s := range a.all() {
		s.markFailed(err)
	}
}

// Add creates a document and returns its generated id.
func (a *Adapter) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	doc, err := a.store.Create(ctx, collection, fields)
	metrics.DocumentWrites.WithLabelValues(collection, "create", metrics.Result(err)).Inc()
	if err != nil {
		log.Printf("[Realtime] create %s failed: %v", collection, err)
		return "", err
	}
	return doc.ID, nil
}

// Update merges fields into an existing document.
func (a *Adapter) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	_, err := a.store.Update(ctx, collection, id, fields)
	metrics.DocumentWrites.WithLabelValues(collection, "update", metrics.Result(err)).Inc()
	if err != nil {
		log.Printf("[Realtime] update %s/%s failed: %v", collection, id, err)
	}
	return err
}

// Delete removes a document.
func (a *Adapter) Delete(ctx context.Context, collection, id string) error {
	err := a.store.Delete(ctx, collection, id)
	metrics.DocumentWrites.WithLabelValues(collection, "delete", metrics.Result(err)).Inc()
	if err != nil {
		log.Printf("[Realtime] delete %s/%s failed: %v", collection, id, err)
	}
	return err
}

// Get reads one document as a record.
func (a *Adapter) Get(ctx context.Context, collection, id string) (docstore.Record, error) {
	doc, err := a.store.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	return doc.Record(), nil
}

type subscription struct {
	collection string
	order      docstore.Order
	cb         Callback
	signal     chan struct{}
	done       chan struct{}

	mu       sync.Mutex
	dirty    bool
	feedErr  error
	fellBack bool
}

func (s *subscription) wake() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// markDirty coalesces: any number of changes before the next re-query
// produce one re-query.
func (s *subscription) markDirty() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
	s.wake()
}

func (s *subscription) markFailed(err error) {
	s.mu.Lock()
	s.feedErr = err
	s.mu.Unlock()
	s.wake()
}

func (s *subscription) run(ctx context.Context, store docstore.Store) {
	for {
		select {
		case <-s.signal:
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}

		s.mu.Lock()
		dirty, feedErr := s.dirty, s.feedErr
		s.dirty, s.feedErr = false, nil
		s.mu.Unlock()

		if feedErr != nil {
			s.deliver(nil, feedErr)
		}
		if dirty {
			records, err := s.query(ctx, store)
			s.deliver(records, err)
		}
	}
}

func (s *subscription) query(ctx context.Context, store docstore.Store) ([]docstore.Record, error) {
	docs, err := store.List(ctx, s.collection, s.order)
	if errors.Is(err, docstore.ErrUnindexedOrder) && !s.order.IsZero() {
		if !s.fellBack {
			log.Printf("[Realtime] %s: cannot order by %q, using unordered query", s.collection, s.order.Field)
			s.fellBack = true
		}
		s.order = docstore.Unordered
		docs, err = store.List(ctx, s.collection, s.order)
	}
	if err != nil {
		return nil, err
	}
	records := make([]docstore.Record, len(docs))
	for i, d := range docs {
		records[i] = d.Record()
	}
	return records, nil
}

func (s *subscription) deliver(records []docstore.Record, err error) {
	select {
	case <-s.done:
		return
	default:
	}
	metrics.SnapshotPushes.WithLabelValues(s.collection, metrics.Result(err)).Inc()
	s.cb(records, err)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
