package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/session"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/workspace"
	"github.com/VyasaPraveen/Pragathi-CRM/pkg/utils"
)

type contextKey string

const WorkspaceKey contextKey = "workspace"

type AuthMiddleware struct {
	sessions   *session.Manager
	workspaces *workspace.Registry
}

func NewAuthMiddleware(sessions *session.Manager, workspaces *workspace.Registry) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:   sessions,
		workspaces: workspaces,
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>". The
// websocket endpoint cannot set headers from a browser, so a "token" query
// parameter is accepted as a fallback.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// Authenticate resolves the session and puts its workspace in the context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			utils.Error(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		s, err := m.sessions.Resolve(r.Context(), token)
		if err != nil {
			utils.Error(w, http.StatusUnauthorized, session.DisplayMessage(err))
			return
		}
		ws, ok := m.workspaces.Get(s.Token)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, "Session expired")
			return
		}

		ctx := context.WithValue(r.Context(), WorkspaceKey, ws)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetWorkspaceFromContext returns the signed-in user's workspace.
func GetWorkspaceFromContext(ctx context.Context) (*workspace.Workspace, bool) {
	ws, ok := ctx.Value(WorkspaceKey).(*workspace.Workspace)
	return ws, ok
}

// RequireRole authenticates and then admits only the given roles.
func (m *AuthMiddleware) RequireRole(allowedRoles ...session.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ws, _ := GetWorkspaceFromContext(r.Context())
			for _, role := range allowedRoles {
				if ws.Session.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			utils.Error(w, http.StatusForbidden, "Forbidden: Insufficient permissions")
		}))
	}
}

// RequireAdmin admits admins only.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireRole(session.RoleAdmin)(next)
}
