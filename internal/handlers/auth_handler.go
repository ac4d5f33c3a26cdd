package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/middleware"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/session"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/views"
	"github.com/VyasaPraveen/Pragathi-CRM/pkg/utils"
)

type AuthHandler struct {
	Sessions *session.Manager
	Views    *views.Service
}

func NewAuthHandler(sessions *session.Manager, v *views.Service) *AuthHandler {
	return &AuthHandler{Sessions: sessions, Views: v}
}

type loginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	Session   *session.Session `json:"session"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s, err := h.Sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		status := utils.StatusFor(err)
		if status == http.StatusInternalServerError {
			log.Printf("[Auth] login for %s failed: %v", req.Email, err)
		}
		utils.Error(w, status, session.DisplayMessage(err))
		return
	}

	utils.JSON(w, http.StatusOK, loginResponse{Token: s.Token, ExpiresAt: s.ExpiresAt, Session: s})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		utils.Error(w, http.StatusUnauthorized, "Authorization header required")
		return
	}
	if err := h.Sessions.Logout(r.Context(), token); err != nil {
		utils.ErrorFrom(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

type sessionResponse struct {
	Session    *session.Session   `json:"session"`
	Navigation []views.NavSection `json:"navigation"`
}

// Session handles GET /api/session: the signed-in user and their sidebar.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	ws, ok := middleware.GetWorkspaceFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	nav, err := h.Views.Sidebar(r.Context(), ws)
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, sessionResponse{Session: ws.Session, Navigation: nav})
}
