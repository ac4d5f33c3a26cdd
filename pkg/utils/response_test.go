package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/payments"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/session"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/storage"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/views"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{session.ErrInvalidCredentials, http.StatusUnauthorized},
		{views.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("update leads/x: %w", docstore.ErrNotFound), http.StatusNotFound},
		{views.ErrValidation, http.StatusBadRequest},
		{storage.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{fmt.Errorf("%w: order o1", payments.ErrNotPaid), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestErrorFrom(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorFrom(rec, views.ErrForbidden)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("code = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != views.ErrForbidden.Error() {
		t.Errorf("body = %v", body)
	}
}
