package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/middleware"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/reports"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/timeutil"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/views"
	"github.com/VyasaPraveen/Pragathi-CRM/pkg/utils"
)

type ReportHandler struct {
	Views *views.Service
}

func NewReportHandler(v *views.Service) *ReportHandler {
	return &ReportHandler{Views: v}
}

// ExportPDF handles GET /api/reports/export.pdf
func (h *ReportHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "pdf", "application/pdf", reports.PDF)
}

// ExportExcel handles GET /api/reports/export.xlsx
func (h *ReportHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", reports.Excel)
}

func (h *ReportHandler) export(w http.ResponseWriter, r *http.Request, ext, contentType string, render func(reports.Data) ([]byte, error)) {
	ws, ok := middleware.GetWorkspaceFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	summary, customers, err := h.Views.ReportExport(ctx, ws)
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}
	data, err := render(reports.NewData(summary, customers))
	if err != nil {
		log.Printf("[Reports] %s export failed: %v", ext, err)
		utils.Error(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate report: %v", err))
		return
	}

	filename := fmt.Sprintf("pragathi_report_%s.%s", timeutil.Now().Format("2006-01-02"), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Write(data)
}
