// Package toast keeps the short-lived notifications shown after writes.
// Each toast gets a unique token and removes itself after Lifetime,
// independent of every other toast's timer.
package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/metrics"
)

// Lifetime is how long a toast stays listed.
const Lifetime = 3500 * time.Millisecond

// Kind selects the toast style.
type Kind string

const (
	OK      Kind = "ok"
	Error   Kind = "er"
	Warning Kind = "warn"
)

// Toast is one notification.
type Toast struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

type stopper interface {
	Stop() bool
}

// Notifier holds one session's toasts.
type Notifier struct {
	mu        sync.Mutex
	toasts    []Toast
	timers    map[string]stopper
	observers map[int]func([]Toast)
	nextObs   int
	closed    bool

	lifetime  time.Duration
	afterFunc func(time.Duration, func()) stopper
	now       func() time.Time
}

// NewNotifier returns an empty notifier using real timers.
func NewNotifier() *Notifier {
	return &Notifier{
		timers:    make(map[string]stopper),
		observers: make(map[int]func([]Toast)),
		lifetime:  Lifetime,
		afterFunc: func(d time.Duration, f func()) stopper { return time.AfterFunc(d, f) },
		now:       time.Now,
	}
}

// Push appends a toast and schedules its removal.
func (n *Notifier) Push(message string, kind Kind) Toast {
	if kind == "" {
		kind = OK
	}
	t := Toast{
		ID:        uuid.NewString(),
		Message:   message,
		Kind:      kind,
		CreatedAt: n.now(),
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return t
	}
	n.toasts = append(n.toasts, t)
	n.timers[t.ID] = n.afterFunc(n.lifetime, func() { n.remove(t.ID) })
	list, obs := n.snapshotLocked()
	n.mu.Unlock()

	metrics.ToastsPushed.WithLabelValues(string(kind)).Inc()
	notifyAll(obs, list)
	return t
}

// Dismiss removes a toast early.
func (n *Notifier) Dismiss(id string) {
	n.mu.Lock()
	if timer, ok := n.timers[id]; ok {
		timer.Stop()
	}
	n.mu.Unlock()
	n.remove(id)
}

func (n *Notifier) remove(id string) {
	n.mu.Lock()
	delete(n.timers, id)
	idx := -1
	for i, t := range n.toasts {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		n.mu.Unlock()
		return
	}
	n.toasts = append(n.toasts[:idx:idx], n.toasts[idx+1:]...)
	list, obs := n.snapshotLocked()
	n.mu.Unlock()

	notifyAll(obs, list)
}

// List returns the current toasts, oldest first.
func (n *Notifier) List() []Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Toast(nil), n.toasts...)
}

// Subscribe calls fn with the full list after every change. The returned
// func removes the observer.
func (n *Notifier) Subscribe(fn func([]Toast)) func() {
	n.mu.Lock()
	id := n.nextObs
	n.nextObs++
	n.observers[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.observers, id)
		n.mu.Unlock()
	}
}

// Close stops pending timers and drops all toasts and observers.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, timer := range n.timers {
		timer.Stop()
	}
	n.closed = true
	n.timers = make(map[string]stopper)
	n.toasts = nil
	n.observers = make(map[int]func([]Toast))
}

func (n *Notifier) snapshotLocked() ([]Toast, []func([]Toast)) {
	list := append([]Toast(nil), n.toasts...)
	obs := make([]func([]Toast), 0, len(n.observers))
	for _, fn := range n.observers {
		obs = append(obs, fn)
	}
	return list, obs
}

func notifyAll(obs []func([]Toast), list []Toast) {
	for _, fn := range obs {
		fn(list)
	}
}
