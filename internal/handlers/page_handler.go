package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/middleware"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/views"
	"github.com/VyasaPraveen/Pragathi-CRM/pkg/utils"
)

type PageHandler struct {
	Views *views.Service
}

func NewPageHandler(v *views.Service) *PageHandler {
	return &PageHandler{Views: v}
}

// Get handles GET /api/pages/{page}
// Query params: search, status, visible, incomeVisible, expenseVisible
func (h *PageHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws, ok := middleware.GetWorkspaceFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	page, err := h.Views.Render(r.Context(), ws, mux.Vars(r)["page"], paramsFrom(r))
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, page)
}

func paramsFrom(r *http.Request) views.Params {
	q := r.URL.Query()
	return views.Params{
		Search:         q.Get("search"),
		Status:         q.Get("status"),
		Visible:        queryInt(q.Get("visible")),
		IncomeVisible:  queryInt(q.Get("incomeVisible")),
		ExpenseVisible: queryInt(q.Get("expenseVisible")),
	}
}

func queryInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
