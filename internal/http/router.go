package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/handlers"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/middleware"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/session"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Pages    *handlers.PageHandler
	Docs     *handlers.DocumentHandler
	Gallery  *handlers.GalleryHandler
	Reports  *handlers.ReportHandler
	Payments *handlers.PaymentHandler
	Toasts   handlers.ToastHandler
	WS       handlers.WSHandler
	Health   *handlers.HealthHandler
}

func NewRouter(h Handlers, authMiddleware *middleware.AuthMiddleware) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.PanicRecovery)
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.APILogging)

	// Health and metrics (no auth)
	r.HandleFunc("/health", h.Health.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", h.Health.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", h.Health.DetailedHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Public API routes - Authentication
	r.HandleFunc("/api/auth/login", h.Auth.Login).Methods("POST")
	r.HandleFunc("/api/auth/logout", h.Auth.Logout).Methods("POST")

	// Live updates; the token comes in the query string
	r.Handle("/ws", authMiddleware.Authenticate(http.HandlerFunc(h.WS.Serve))).Methods("GET")

	// Reports and gallery management are for admins and managers; these
	// must be registered ahead of the generic /api routes
	managers := authMiddleware.RequireRole(session.RoleAdmin, session.RoleManager)
	r.Handle("/api/reports/export.pdf", managers(http.HandlerFunc(h.Reports.ExportPDF))).Methods("GET")
	r.Handle("/api/reports/export.xlsx", managers(http.HandlerFunc(h.Reports.ExportExcel))).Methods("GET")
	r.Handle("/api/gallery/upload", managers(http.HandlerFunc(h.Gallery.Upload))).Methods("POST")
	r.Handle("/api/gallery/{id}", managers(http.HandlerFunc(h.Gallery.Delete))).Methods("DELETE")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/session", h.Auth.Session).Methods("GET")
	api.HandleFunc("/pages/{page}", h.Pages.Get).Methods("GET")
	api.HandleFunc("/toasts", h.Toasts.List).Methods("GET")
	api.HandleFunc("/toasts/{id}", h.Toasts.Dismiss).Methods("DELETE")

	api.HandleFunc("/revenue", h.Docs.AddLedger).Methods("POST")
	api.HandleFunc("/reminders/{id}/send", h.Docs.SendReminder).Methods("POST")
	api.HandleFunc("/customers/{id}/payment-order", h.Payments.CreateOrder).Methods("POST")
	api.HandleFunc("/payments/verify", h.Payments.Verify).Methods("POST")

	// Generic document writes; per-collection role rules live in views
	api.HandleFunc("/{collection:[a-zA-Z]+}", h.Docs.Create).Methods("POST")
	api.HandleFunc("/{collection:[a-zA-Z]+}/{id}", h.Docs.Update).Methods("PUT", "PATCH")
	api.HandleFunc("/{collection:[a-zA-Z]+}/{id}", h.Docs.Delete).Methods("DELETE")

	return r
}
