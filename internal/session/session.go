// Package session signs users in and out and tracks their role. A session
// is created by Login or restored from a token by Resolve; observers hear
// about both transitions.
package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/auth"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/cache"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/metrics"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/timeutil"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrSessionExpired     = errors.New("auth: session expired")
	ErrAccountDisabled    = errors.New("auth: account disabled")
)

// Users looks up sign-in accounts.
type Users interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Roles reads a user's role.
type Roles interface {
	GetRole(ctx context.Context, userID int) (string, error)
}

// Session is one signed-in user.
type Session struct {
	UserID    int       `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      Role      `json:"role"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Event is a session transition.
type Event int

const (
	SignedIn Event = iota + 1
	SignedOut
)

func (e Event) String() string {
	if e == SignedIn {
		return "signed_in"
	}
	return "signed_out"
}

// Observer is told about every sign-in and sign-out.
type Observer func(Event, *Session)

// Manager owns the live sessions keyed by token.
type Manager struct {
	users Users
	roles Roles
	jwt   *auth.JWTManager
	now   func() time.Time

	mu        sync.Mutex
	sessions  map[string]*Session
	revoked   map[string]time.Time
	observers map[int]Observer
	nextObs   int
}

func NewManager(users Users, roles Roles, jwt *auth.JWTManager) *Manager {
	return &Manager{
		users:     users,
		roles:     roles,
		jwt:       jwt,
		now:       timeutil.Now,
		sessions:  make(map[string]*Session),
		revoked:   make(map[string]time.Time),
		observers: make(map[int]Observer),
	}
}

// OnChange registers an observer and returns its removal func.
func (m *Manager) OnChange(fn Observer) func() {
	m.mu.Lock()
	id := m.nextObs
	m.nextObs++
	m.observers[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.observers, id)
		m.mu.Unlock()
	}
}

// Login verifies credentials and opens a session. The role is read once
// here; a missing or unreadable profile yields DefaultRole.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := m.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		log.Printf("[Session] user lookup failed for %s: %v", email, err)
		return nil, err
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	role := m.lookupRole(ctx, user.ID)
	token, expiresAt, err := m.jwt.GenerateToken(user.ID, user.Email, string(role))
	if err != nil {
		return nil, err
	}

	s := &Session{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      role,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	m.add(s)
	log.Printf("[Session] %s signed in as %s", s.Email, s.Role)
	return s, nil
}

func (m *Manager) lookupRole(ctx context.Context, userID int) Role {
	if m.roles == nil {
		return DefaultRole
	}
	name, err := m.roles.GetRole(ctx, userID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("[Session] role lookup failed for user %d: %v", userID, err)
		}
		return DefaultRole
	}
	return ParseRole(name)
}

// Resolve returns the session for token, restoring it from the token's
// claims when this instance has not seen it (after a restart or on another
// replica).
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionExpired
	}

	m.mu.Lock()
	s, ok := m.sessions[token]
	_, revoked := m.revoked[token]
	m.mu.Unlock()

	if revoked || cache.IsRevoked(ctx, token) {
		return nil, ErrSessionExpired
	}
	if ok {
		if m.now().Before(s.ExpiresAt) {
			return s, nil
		}
		m.remove(token)
		return nil, ErrSessionExpired
	}

	claims, err := m.jwt.ValidateToken(token)
	if err != nil {
		return nil, ErrSessionExpired
	}
	s = &Session{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   ParseRole(claims.Role),
		Token:  token,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return m.add(s), nil
}

// Logout ends the session and revokes its token on every instance.
func (m *Manager) Logout(ctx context.Context, token string) error {
	m.mu.Lock()
	s, ok := m.sessions[token]
	m.mu.Unlock()

	ttl := m.jwt.Expiration()
	if ok {
		ttl = s.ExpiresAt.Sub(m.now())
	}
	m.mu.Lock()
	m.revoked[token] = m.now().Add(ttl)
	m.mu.Unlock()
	if !cache.RevokeToken(ctx, token, ttl) {
		log.Printf("[Session] redis unavailable, token revoked on this instance only")
	}

	if ok {
		m.remove(token)
		log.Printf("[Session] %s signed out", s.Email)
	}
	return nil
}

// Sweep drops sessions and revocations past their expiry.
func (m *Manager) Sweep() {
	now := m.now()
	var expired []string

	m.mu.Lock()
	for token, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			expired = append(expired, token)
		}
	}
	for token, until := range m.revoked {
		if !now.Before(until) {
			delete(m.revoked, token)
		}
	}
	m.mu.Unlock()

	for _, token := range expired {
		m.remove(token)
	}
}

// RunSweeper calls Sweep every interval until ctx ends.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// add stores s unless another goroutine stored the same token first, and
// returns the stored session.
func (m *Manager) add(s *Session) *Session {
	m.mu.Lock()
	if existing, ok := m.sessions[s.Token]; ok {
		m.mu.Unlock()
		return existing
	}
	m.sessions[s.Token] = s
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	obs := m.observersLocked()
	m.mu.Unlock()

	for _, fn := range obs {
		fn(SignedIn, s)
	}
	return s
}

func (m *Manager) remove(token string) {
	m.mu.Lock()
	s, ok := m.sessions[token]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, token)
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	obs := m.observersLocked()
	m.mu.Unlock()

	for _, fn := range obs {
		fn(SignedOut, s)
	}
}

func (m *Manager) observersLocked() []Observer {
	out := make([]Observer, 0, len(m.observers))
	for _, fn := range m.observers {
		out = append(out, fn)
	}
	return out
}

// DisplayMessage strips leading "vendor: " prefixes from an auth error so
// the sign-in form shows only the human part.
func DisplayMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	if msg == "" {
		return "Sign-in failed"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
