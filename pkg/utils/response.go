package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/payments"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/session"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/storage"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/views"
)

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrInvalidCredentials),
		errors.Is(err, session.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrAccountDisabled),
		errors.Is(err, views.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, docstore.ErrNotFound),
		errors.Is(err, views.ErrUnknownPage):
		return http.StatusNotFound
	case errors.Is(err, views.ErrValidation),
		errors.Is(err, docstore.ErrInvalidCollection),
		errors.Is(err, storage.ErrUnsupportedType),
		errors.Is(err, payments.ErrNothingDue),
		errors.Is(err, payments.ErrInvalidSignature):
		return http.StatusBadRequest
	case errors.Is(err, payments.ErrNotPaid):
		return http.StatusConflict
	case errors.Is(err, storage.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, payments.ErrNotConfigured):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// ErrorFrom writes err with the status StatusFor picks.
func ErrorFrom(w http.ResponseWriter, err error) {
	Error(w, StatusFor(err), err.Error())
}
