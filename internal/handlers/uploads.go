package handlers

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/notekeep/apiserver/internal/storage"
)

// UploadHandler serves stored image files. The route is public: image
// URLs are embedded in note payloads and fetched without credentials.
type UploadHandler struct {
	uploads *storage.Storage
}

// NewUploadHandler constructs a handler over the upload store.
func NewUploadHandler(uploads *storage.Storage) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// UploadRouter registers the upload serving route.
func UploadRouter(r chi.Router, uploads *storage.Storage) {
	handler := NewUploadHandler(uploads)

	r.Get("/{filename}", handler.ServeFile)
}

// ServeFile streams a stored object to the client.
func (h *UploadHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	object, err := h.uploads.Open(r.Context(), filename)
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	defer object.Close()

	if contentType := mime.TypeByExtension(filepath.Ext(filename)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	if _, err := io.Copy(w, object); err != nil {
		// Headers are already written; nothing to send the client.
		return
	}
}
