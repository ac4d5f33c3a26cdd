package views

import (
	"context"
	"errors"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/workspace"
)

// ReportExport returns the report summary and every customer, for the
// PDF and spreadsheet downloads.
func (s *Service) ReportExport(ctx context.Context, w *workspace.Workspace) (ReportsPage, []models.Customer, error) {
	if !w.Session.Role.CanViewReports() {
		return ReportsPage{}, nil, ErrForbidden
	}
	release, err := acquire(ctx, w, PageCollections[PageReports])
	if err != nil {
		return ReportsPage{}, nil, err
	}
	defer release()

	return s.Reports(w), decoded[models.Customer](w.Data.Snapshot(models.CollectionCustomers)), nil
}

// Customer reads one customer straight from the store.
func (s *Service) Customer(ctx context.Context, id string) (models.Customer, error) {
	rec, err := s.writer.Get(ctx, models.CollectionCustomers, id)
	if err != nil {
		return models.Customer{}, err
	}
	return models.Decode[models.Customer](rec)
}

// DeletePhoto removes a gallery row and returns its storage key, empty
// for photos added by URL.
func (s *Service) DeletePhoto(ctx context.Context, w *workspace.Workspace, id string) (string, error) {
	if !w.Session.Role.CanDelete(models.CollectionGallery) {
		return "", ErrForbidden
	}
	var key string
	rec, err := s.writer.Get(ctx, models.CollectionGallery, id)
	switch {
	case err == nil:
		item, _ := models.Decode[models.GalleryItem](rec)
		key = item.Key
	case !errors.Is(err, docstore.ErrNotFound):
		return "", fail(w, err)
	}
	if err := s.Delete(ctx, w, models.CollectionGallery, id); err != nil {
		return "", err
	}
	return key, nil
}
