// Package workspace ties a session to its data store and toast list. A
// workspace exists exactly while its session is signed in.
package workspace

import (
	"log"
	"sync"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/datastore"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/session"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/toast"
)

// Workspace is everything one signed-in user's pages read and write through.
type Workspace struct {
	Session *session.Session
	Data    *datastore.Store
	Toasts  *toast.Notifier
}

// Close releases subscriptions and pending toast timers.
func (w *Workspace) Close() {
	w.Data.Close()
	w.Toasts.Close()
}

// Registry creates and disposes workspaces as sessions come and go.
type Registry struct {
	src  datastore.Source
	lazy bool

	mu     sync.RWMutex
	spaces map[string]*Workspace
}

func NewRegistry(src datastore.Source, lazy bool) *Registry {
	return &Registry{src: src, lazy: lazy, spaces: make(map[string]*Workspace)}
}

// Attach follows mgr's sign-in and sign-out events. The returned func
// detaches.
func (r *Registry) Attach(mgr *session.Manager) func() {
	return mgr.OnChange(r.handle)
}

func (r *Registry) handle(ev session.Event, s *session.Session) {
	switch ev {
	case session.SignedIn:
		r.open(s)
	case session.SignedOut:
		r.close(s.Token)
	}
}

func (r *Registry) open(s *session.Session) *Workspace {
	r.mu.Lock()
	if w, ok := r.spaces[s.Token]; ok {
		r.mu.Unlock()
		return w
	}
	notifier := toast.NewNotifier()
	w := &Workspace{
		Session: s,
		Data:    datastore.New(r.src, notifier, r.lazy),
		Toasts:  notifier,
	}
	r.spaces[s.Token] = w
	r.mu.Unlock()

	w.Data.Open()
	log.Printf("[Workspace] opened for %s (%s)", s.Email, s.Role)
	return w
}

func (r *Registry) close(token string) {
	r.mu.Lock()
	w, ok := r.spaces[token]
	delete(r.spaces, token)
	r.mu.Unlock()
	if ok {
		w.Close()
		log.Printf("[Workspace] closed for %s", w.Session.Email)
	}
}

// Get returns the workspace for a session token.
func (r *Registry) Get(token string) (*Workspace, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.spaces[token]
	return w, ok
}

// Len returns the number of open workspaces.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.spaces)
}

// CloseAll disposes every workspace, for shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	spaces := r.spaces
	r.spaces = make(map[string]*Workspace)
	r.mu.Unlock()
	for _, w := range spaces {
		w.Close()
	}
}
