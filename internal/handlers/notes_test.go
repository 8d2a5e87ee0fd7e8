package handlers_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"regexp"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/notekeep/apiserver/config"
	"github.com/notekeep/apiserver/internal/handlers"
	"github.com/notekeep/apiserver/internal/services"
	"github.com/notekeep/apiserver/internal/storage"
	"github.com/notekeep/apiserver/types"
)

const testBaseURL = "http://localhost:8080"

type notesEnv struct {
	router http.Handler
	repo   *memNoteRepo
	token  string
}

func newNotesEnv(t *testing.T) *notesEnv {
	t.Helper()

	backend, err := storage.NewDiskClient(config.UploadConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("new disk client: %v", err)
	}
	uploads := storage.NewStorage(backend)

	repo := &memNoteRepo{}
	noteService := services.NewNoteService(repo)

	router := chi.NewRouter()
	router.Route("/api/notes", func(r chi.Router) {
		handlers.NoteRouter(r, noteService, uploads, testBaseURL, handlers.RequireAuth(testSecret))
	})
	router.Route("/uploads", func(r chi.Router) {
		handlers.UploadRouter(r, uploads)
	})

	return &notesEnv{router: router, repo: repo, token: mintToken(t)}
}

func mintToken(t *testing.T) string {
	t.Helper()

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "11111111-2222-3333-4444-555555555555",
		"email": "amy@example.com",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

type filePart struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string]string, file *filePart) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if file != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.field, file.filename))
		header.Set("Content-Type", file.contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(file.data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func (e *notesEnv) do(t *testing.T, method, path string, fields map[string]string, file *filePart) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if fields == nil && file == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		body, contentType := multipartBody(t, fields, file)
		req = httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Authorization", "Bearer "+e.token)

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateNote(t *testing.T) {
	env := newNotesEnv(t)

	rec := env.do(t, http.MethodPost, "/api/notes/", map[string]string{
		"title":   "Groceries",
		"content": "milk, eggs",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}

	note := decodeBody[types.Note](t, rec)
	if note.ID == "" {
		t.Fatalf("expected generated id")
	}
	if note.Title != "Groceries" || note.Content != "milk, eggs" {
		t.Fatalf("unexpected note fields: %+v", note)
	}
	if note.Category != "General" {
		t.Fatalf("expected default category, got %q", note.Category)
	}
	if note.Image != nil {
		t.Fatalf("expected null image, got %v", *note.Image)
	}
}

func TestCreateNoteWithImage(t *testing.T) {
	env := newNotesEnv(t)

	rec := env.do(t, http.MethodPost, "/api/notes/", map[string]string{
		"title":    "With picture",
		"content":  "see attached",
		"category": "Photos",
	}, &filePart{
		field:       "image",
		filename:    "cat.png",
		contentType: "image/png",
		data:        []byte("png bytes"),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}

	note := decodeBody[types.Note](t, rec)
	if note.Image == nil {
		t.Fatalf("expected image url")
	}
	pattern := regexp.MustCompile(`uploads/.+\.(jpg|jpeg|png|gif)$`)
	if !pattern.MatchString(*note.Image) {
		t.Fatalf("image url %q does not match expected shape", *note.Image)
	}

	// The URL path must resolve through the public uploads route.
	path := (*note.Image)[len(testBaseURL):]
	serve := env.do(t, http.MethodGet, path, nil, nil)
	if serve.Code != http.StatusOK {
		t.Fatalf("expected stored image to be served, got %d", serve.Code)
	}
	if serve.Body.String() != "png bytes" {
		t.Fatalf("served bytes differ from upload")
	}
}

func TestCreateNoteRejectsBadUploads(t *testing.T) {
	env := newNotesEnv(t)

	cases := []struct {
		name string
		file filePart
	}{
		{"wrong mime type", filePart{field: "image", filename: "doc.pdf", contentType: "application/pdf", data: []byte("%PDF")}},
		{"oversized", filePart{field: "image", filename: "big.png", contentType: "image/png", data: bytes.Repeat([]byte{1}, storage.MaxImageBytes+1)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/notes/", map[string]string{
				"title":   "t",
				"content": "c",
			}, &tc.file)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body)
			}
			if len(env.repo.notes) != 0 {
				t.Fatalf("rejected upload persisted a note")
			}
		})
	}
}

func TestCreateNoteValidation(t *testing.T) {
	env := newNotesEnv(t)

	rec := env.do(t, http.MethodPost, "/api/notes/", map[string]string{"content": "c"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing title: expected 400, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/notes/", map[string]string{"title": "t"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing content: expected 400, got %d", rec.Code)
	}
}

func TestListNotesFilter(t *testing.T) {
	env := newNotesEnv(t)

	for _, category := range []string{"Work", "Home", "Work"} {
		rec := env.do(t, http.MethodPost, "/api/notes/", map[string]string{
			"title": "t", "content": "c", "category": category,
		}, nil)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create: expected 201, got %d", rec.Code)
		}
	}

	all := env.do(t, http.MethodGet, "/api/notes/", nil, nil)
	if all.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", all.Code)
	}
	if notes := decodeBody[[]types.Note](t, all); len(notes) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(notes))
	}

	work := env.do(t, http.MethodGet, "/api/notes/?category=Work", nil, nil)
	notes := decodeBody[[]types.Note](t, work)
	if len(notes) != 2 {
		t.Fatalf("expected 2 Work notes, got %d", len(notes))
	}
	for _, note := range notes {
		if note.Category != "Work" {
			t.Fatalf("filtered list contains category %q", note.Category)
		}
	}
}

func TestUpdateNoteRoundTrip(t *testing.T) {
	env := newNotesEnv(t)

	created := decodeBody[types.Note](t, env.do(t, http.MethodPost, "/api/notes/", map[string]string{
		"title": "Before", "content": "body", "category": "Work",
	}, nil))

	rec := env.do(t, http.MethodPut, "/api/notes/"+created.ID, map[string]string{
		"title": "After", "content": "body", "category": "Work",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body)
	}

	listed := decodeBody[[]types.Note](t, env.do(t, http.MethodGet, "/api/notes/", nil, nil))
	if len(listed) != 1 {
		t.Fatalf("expected 1 note, got %d", len(listed))
	}
	if listed[0].ID != created.ID {
		t.Fatalf("update changed id: %q -> %q", created.ID, listed[0].ID)
	}
	if listed[0].Title != "After" {
		t.Fatalf("expected updated title, got %q", listed[0].Title)
	}
}

func TestUpdateMissingNote(t *testing.T) {
	env := newNotesEnv(t)

	rec := env.do(t, http.MethodPut, "/api/notes/11111111-2222-3333-4444-555555555555", map[string]string{
		"title": "t", "content": "c",
	}, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	// Malformed ids are also a not-found, never a server error.
	rec = env.do(t, http.MethodPut, "/api/notes/not-a-uuid", map[string]string{
		"title": "t", "content": "c",
	}, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("malformed id: expected 404, got %d", rec.Code)
	}
}

func TestDeleteNote(t *testing.T) {
	env := newNotesEnv(t)

	created := decodeBody[types.Note](t, env.do(t, http.MethodPost, "/api/notes/", map[string]string{
		"title": "t", "content": "c",
	}, nil))

	rec := env.do(t, http.MethodDelete, "/api/notes/"+created.ID, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	if msg := decodeBody[handlers.MessageResponse](t, rec); msg.Message != "Note removed" {
		t.Fatalf("unexpected message %q", msg.Message)
	}

	again := env.do(t, http.MethodDelete, "/api/notes/"+created.ID, nil, nil)
	if again.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", again.Code)
	}
}

func TestNotesRequireToken(t *testing.T) {
	env := newNotesEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/notes/", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/notes/", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", rec.Code)
	}
}

func TestServeUploadMissingFile(t *testing.T) {
	env := newNotesEnv(t)

	rec := env.do(t, http.MethodGet, "/uploads/12345-678-missing.png", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
