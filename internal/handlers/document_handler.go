package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/middleware"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/views"
	"github.com/VyasaPraveen/Pragathi-CRM/pkg/utils"
)

// DocumentHandler serves create, update and delete for every collection.
type DocumentHandler struct {
	Views *views.Service
}

func NewDocumentHandler(v *views.Service) *DocumentHandler {
	return &DocumentHandler{Views: v}
}

// Create handles POST /api/{collection}
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

// Update handles PUT/PATCH /api/{collection}/{id}
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, mux.Vars(r)["id"])
}

func (h *DocumentHandler) save(w http.ResponseWriter, r *http.Request, id string) {
	ws, ok := middleware.GetWorkspaceFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.Views.Save(r.Context(), ws, mux.Vars(r)["collection"], id, fields)
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}
	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	utils.JSON(w, status, res)
}

// Delete handles DELETE /api/{collection}/{id}
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ws, ok := middleware.GetWorkspaceFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	vars := mux.Vars(r)
	if err := h.Views.Delete(r.Context(), ws, vars["collection"], vars["id"]); err != nil {
		utils.ErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ledgerRequest struct {
	Type   string         `json:"type"`
	Fields map[string]any `json:"fields"`
}

// AddLedger handles POST /api/revenue with {"type": "income"|"expense", "fields": {...}}
func (h *DocumentHandler) AddLedger(w http.ResponseWriter, r *http.Request) {
	ws, ok := middleware.GetWorkspaceFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req ledgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	res, err := h.Views.AddLedger(r.Context(), ws, req.Type, req.Fields)
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, res)
}

// SendReminder handles POST /api/reminders/{id}/send
func (h *DocumentHandler) SendReminder(w http.ResponseWriter, r *http.Request) {
	ws, ok := middleware.GetWorkspaceFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	res, err := h.Views.SendReminder(r.Context(), ws, mux.Vars(r)["id"])
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, res)
}
