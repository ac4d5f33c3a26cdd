package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore"
)

func TestListQuery(t *testing.T) {
	tests := []struct {
		order docstore.Order
		want  string
	}{
		{docstore.Unordered, "ORDER BY seq"},
		{docstore.Newest, "ORDER BY created_at DESC NULLS LAST, seq DESC"},
		{docstore.Order{Field: "date", Desc: true}, "ORDER BY data->>'date' DESC NULLS LAST, seq DESC"},
		{docstore.Order{Field: "updatedAt"}, "ORDER BY updated_at ASC NULLS LAST, seq ASC"},
	}
	for _, tt := range tests {
		q, err := listQuery(tt.order)
		if err != nil {
			t.Fatalf("listQuery(%+v): %v", tt.order, err)
		}
		if !strings.HasSuffix(q, tt.want) {
			t.Errorf("listQuery(%+v) = %q, want suffix %q", tt.order, q, tt.want)
		}
	}
}

func TestListQueryRejectsUnindexed(t *testing.T) {
	_, err := listQuery(docstore.Order{Field: "name; DROP TABLE documents"})
	if !errors.Is(err, docstore.ErrUnindexedOrder) {
		t.Fatalf("expected ErrUnindexedOrder, got %v", err)
	}
}

func TestInvalidIDsAreNotFound(t *testing.T) {
	s := New(nil)
	if _, err := s.Get(context.Background(), "leads", "not-a-uuid"); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("Get: %v", err)
	}
	if err := s.Delete(context.Background(), "leads", "not-a-uuid"); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("Delete: %v", err)
	}
}
