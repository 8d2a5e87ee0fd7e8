package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/notekeep/apiserver/config"
	"github.com/notekeep/apiserver/internal/db"
	"github.com/notekeep/apiserver/internal/handlers"
	"github.com/notekeep/apiserver/internal/services"
	"github.com/notekeep/apiserver/internal/storage"
	"github.com/notekeep/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	uploads, err := buildUploadStore(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if err := uploads.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	noteRepo := store.NewNoteRepository(dbConn)
	userRepo := store.NewUserRepository(dbConn)

	noteService := services.NewNoteService(noteRepo)
	userService := services.NewUserService(userRepo)

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		_ = dbConn.Close()
		return nil, errors.New("JWT_SECRET is required")
	}

	tokenTTL := time.Duration(cfg.TokenTTLMinutes) * time.Minute
	authMiddleware := handlers.RequireAuth(jwtSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/", handlers.Welcome)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/api/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, jwtSecret, tokenTTL)
	})
	router.Route("/api/notes", func(r chi.Router) {
		handlers.NoteRouter(r, noteService, uploads, cfg.PublicBaseURL, authMiddleware)
	})
	router.Route("/uploads", func(r chi.Router) {
		handlers.UploadRouter(r, uploads)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
	}, nil
}

func buildUploadStore(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	switch cfg.Upload.Backend {
	case "", "disk":
		backend, err := storage.NewDiskClient(cfg.Upload)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(backend), nil
	case "minio":
		backend, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(backend), nil
	case "gcs":
		backend, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(backend), nil
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.Upload.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
