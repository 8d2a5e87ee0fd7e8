package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/notekeep/apiserver/internal/services"
	"github.com/notekeep/apiserver/internal/storage"
	"github.com/notekeep/apiserver/internal/store"
)

const (
	maxMultipartMemory = 8 << 20
	formFieldTitle     = "title"
	formFieldContent   = "content"
	formFieldCategory  = "category"
	formFieldImage     = "image"
)

// NoteHandler provides HTTP handlers for notes.
type NoteHandler struct {
	noteService   *services.NoteService
	uploads       *storage.Storage
	publicBaseURL string
}

// NewNoteHandler constructs a handler with the provided dependencies.
func NewNoteHandler(noteService *services.NoteService, uploads *storage.Storage, publicBaseURL string) *NoteHandler {
	return &NoteHandler{
		noteService:   noteService,
		uploads:       uploads,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// NoteRouter registers note routes on the given router. All routes
// require a valid bearer token.
func NoteRouter(
	r chi.Router,
	noteService *services.NoteService,
	uploads *storage.Storage,
	publicBaseURL string,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewNoteHandler(noteService, uploads, publicBaseURL)

	r.Use(authMiddleware)
	r.Get("/", handler.ListNotes)
	r.Post("/", handler.CreateNote)
	r.Route("/{noteID}", func(r chi.Router) {
		r.Put("/", handler.UpdateNote)
		r.Delete("/", handler.DeleteNote)
	})
}

func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	notes, err := h.noteService.List(r.Context(), category)
	if err != nil {
		writeServerError(w, "list notes", err)
		return
	}

	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	form, err := parseNoteForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input := services.NoteInput{
		Title:    form.Title,
		Content:  form.Content,
		Category: form.Category,
	}

	// The image is stored before the note record exists, so a rejected
	// upload fails the request without any note mutation.
	if form.Image != nil {
		imageURL, err := h.saveImage(r, form.Image)
		if err != nil {
			h.writeUploadError(w, err)
			return
		}
		input.ImageURL = &imageURL
	}

	created, err := h.noteService.Create(r.Context(), input)
	if err != nil {
		h.writeNoteError(w, "create note", err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := parseNoteID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}

	form, err := parseNoteForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input := services.NoteInput{
		Title:    form.Title,
		Content:  form.Content,
		Category: form.Category,
	}

	if form.Image != nil {
		imageURL, err := h.saveImage(r, form.Image)
		if err != nil {
			h.writeUploadError(w, err)
			return
		}
		input.ImageURL = &imageURL
	}

	updated, err := h.noteService.Update(r.Context(), id, input)
	if err != nil {
		h.writeNoteError(w, "update note", err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := parseNoteID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}

	if err := h.noteService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Note not found")
			return
		}
		writeServerError(w, "delete note", err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Note removed"})
}

// noteForm is the parsed multipart payload of a note mutation.
type noteForm struct {
	Title    string
	Content  string
	Category string
	Image    *multipart.FileHeader
}

func parseNoteForm(r *http.Request) (noteForm, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return noteForm{}, errors.New("invalid multipart form")
	}

	form := noteForm{
		Title:    r.FormValue(formFieldTitle),
		Content:  r.FormValue(formFieldContent),
		Category: r.FormValue(formFieldCategory),
	}

	if r.MultipartForm != nil {
		files := r.MultipartForm.File[formFieldImage]
		if len(files) > 1 {
			return noteForm{}, errors.New("only one image is allowed")
		}
		if len(files) == 1 {
			form.Image = files[0]
		}
	}

	return form, nil
}

func parseNoteID(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "noteID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", errors.New("invalid note id")
	}
	return id.String(), nil
}

// saveImage stores the uploaded file and returns its public URL.
func (h *NoteHandler) saveImage(r *http.Request, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	key, err := h.uploads.SaveImage(r.Context(), header.Filename, contentType, file)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/uploads/%s", h.publicBaseURL, key), nil
}

func (h *NoteHandler) writeUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrUnsupportedType), errors.Is(err, storage.ErrFileTooLarge):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeServerError(w, "store upload", err)
	}
}

func (h *NoteHandler) writeNoteError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, services.ErrTitleRequired), errors.Is(err, services.ErrContentRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Note not found")
	default:
		writeServerError(w, op, err)
	}
}
