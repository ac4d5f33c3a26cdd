package handlers

import (
	"context"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/middleware"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/storage"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/views"
	"github.com/VyasaPraveen/Pragathi-CRM/pkg/utils"
)

// Photos stores gallery images. *storage.Gallery satisfies it.
type Photos interface {
	Upload(ctx context.Context, contentType string, body io.Reader) (storage.Object, error)
	Delete(ctx context.Context, key string) error
}

type GalleryHandler struct {
	Views   *views.Service
	Storage Photos
}

// NewGalleryHandler returns a handler; photos may be nil when no bucket is
// configured, in which case uploads are refused and only URL photos exist.
func NewGalleryHandler(v *views.Service, photos Photos) *GalleryHandler {
	return &GalleryHandler{Views: v, Storage: photos}
}

// Upload handles POST /api/gallery/upload (multipart: file, caption)
func (h *GalleryHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ws, ok := middleware.GetWorkspaceFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if !ws.Session.Role.CanEdit(models.CollectionGallery) {
		utils.ErrorFrom(w, views.ErrForbidden)
		return
	}
	if h.Storage == nil {
		utils.Error(w, http.StatusServiceUnavailable, "Photo storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(storage.MaxUploadBytes); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid upload: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	obj, err := h.Storage.Upload(r.Context(), header.Header.Get("Content-Type"), file)
	if err != nil {
		log.Printf("[Gallery] upload of %s failed: %v", header.Filename, err)
		utils.ErrorFrom(w, err)
		return
	}

	res, err := h.Views.AddPhoto(r.Context(), ws, obj.URL, obj.Key, r.FormValue("caption"))
	if err != nil {
		if derr := h.Storage.Delete(context.WithoutCancel(r.Context()), obj.Key); derr != nil {
			log.Printf("[Gallery] orphaned object %s: %v", obj.Key, derr)
		}
		utils.ErrorFrom(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]string{"id": res.ID, "url": obj.URL})
}

// Delete handles DELETE /api/gallery/{id}, removing the stored image too.
func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ws, ok := middleware.GetWorkspaceFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	key, err := h.Views.DeletePhoto(r.Context(), ws, mux.Vars(r)["id"])
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}
	if key != "" && h.Storage != nil {
		if err := h.Storage.Delete(r.Context(), key); err != nil {
			log.Printf("[Gallery] failed to delete object %s: %v", key, err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
