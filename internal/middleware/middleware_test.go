package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/auth"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/realtime"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/session"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/workspace"
)

type nopSource struct{}

func (nopSource) Listen(string, realtime.Callback, ...realtime.ListenOption) realtime.Unsubscribe {
	return func() {}
}

type users map[string]*models.User

func (u users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if x, ok := u[email]; ok {
		return x, nil
	}
	return nil, pgx.ErrNoRows
}

type roles map[int]string

func (r roles) GetRole(_ context.Context, id int) (string, error) {
	if x, ok := r[id]; ok {
		return x, nil
	}
	return "", pgx.ErrNoRows
}

func setup(t *testing.T) (*AuthMiddleware, *session.Manager) {
	t.Helper()
	hash, err := auth.HashPassword("pw")
	if err != nil {
		t.Fatal(err)
	}
	mgr := session.NewManager(
		users{
			"admin@x.in": {ID: 1, Email: "admin@x.in", PasswordHash: hash, IsActive: true},
			"asst@x.in":  {ID: 2, Email: "asst@x.in", PasswordHash: hash, IsActive: true},
		},
		roles{1: "admin"},
		auth.NewJWTManager("secret", "pragathi-crm", time.Hour),
	)
	reg := workspace.NewRegistry(nopSource{}, false)
	reg.Attach(mgr)
	t.Cleanup(reg.CloseAll)
	return NewAuthMiddleware(mgr, reg), mgr
}

func login(t *testing.T, mgr *session.Manager, email string) string {
	t.Helper()
	s, err := mgr.Login(context.Background(), email, "pw")
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return s.Token
}

func TestRequireRole(t *testing.T) {
	m, mgr := setup(t)
	adminToken := login(t, mgr, "admin@x.in")
	asstToken := login(t, mgr, "asst@x.in")

	var seen string
	h := m.RequireRole(session.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, ok := GetWorkspaceFromContext(r.Context())
		if ok {
			seen = ws.Session.Email
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"bad scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"assistant", "Bearer " + asstToken, http.StatusForbidden},
		{"admin", "Bearer " + adminToken, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/team/1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("code = %d, want %d", rec.Code, tt.want)
			}
		})
	}
	if seen != "admin@x.in" {
		t.Errorf("workspace in context = %q", seen)
	}
}

func TestAuthenticateAfterLogout(t *testing.T) {
	m, mgr := setup(t)
	token := login(t, mgr, "asst@x.in")
	if err := mgr.Logout(context.Background(), token); err != nil {
		t.Fatal(err)
	}

	h := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for a revoked token")
	}))
	req := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws?token=q", nil)
	if got := BearerToken(req); got != "q" {
		t.Errorf("query token = %q", got)
	}
	req.Header.Set("Authorization", "bearer h")
	if got := BearerToken(req); got != "h" {
		t.Errorf("header token = %q", got)
	}
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(MetricsMiddleware)
	var path string
	r.HandleFunc("/api/{collection}/{id}", func(w http.ResponseWriter, req *http.Request) {
		path = routeTemplate(req)
		w.WriteHeader(http.StatusAccepted)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leads/abc", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("code = %d", rec.Code)
	}
	if path != "/api/{collection}/{id}" {
		t.Errorf("label path = %q", path)
	}
}

func TestPanicRecovery(t *testing.T) {
	h := PanicRecovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d", rec.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:5555"
	if got := getClientIP(req); got != "10.0.0.5" {
		t.Errorf("remote addr ip = %q", got)
	}
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	if got := getClientIP(req); got != "1.2.3.4" {
		t.Errorf("forwarded ip = %q", got)
	}
}
