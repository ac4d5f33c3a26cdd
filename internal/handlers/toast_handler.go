package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/middleware"
	"github.com/VyasaPraveen/Pragathi-CRM/pkg/utils"
)

type ToastHandler struct{}

// List handles GET /api/toasts
func (ToastHandler) List(w http.ResponseWriter, r *http.Request) {
	ws, ok := middleware.GetWorkspaceFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	utils.JSON(w, http.StatusOK, ws.Toasts.List())
}

// Dismiss handles DELETE /api/toasts/{id}
func (ToastHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	ws, ok := middleware.GetWorkspaceFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	ws.Toasts.Dismiss(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}
