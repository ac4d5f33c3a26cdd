package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/config"
)

var (
	defaultMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	defaultHeaders = []string{"Authorization", "Content-Type"}
)

// NewCORS builds the CORS handler from server config. Unset method and
// header lists fall back to what the API uses.
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	methods := cfg.Server.CorsAllowedMethods
	if len(methods) == 0 {
		methods = defaultMethods
	}
	headers := cfg.Server.CorsAllowedHeaders
	if len(headers) == 0 {
		headers = defaultHeaders
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CorsAllowedOrigins,
		AllowedMethods:   methods,
		AllowedHeaders:   headers,
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	return c.Handler
}
