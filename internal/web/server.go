// Package web exposes the evaluation engine over HTTP. Sheets can be
// evaluated statelessly from a JSON snapshot in the request body, or
// uploaded as xlsx workbooks and queried by ID.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/edusuite/gridcalc/internal/config"
)

// Server wires the HTTP routes to an in-memory sheet store
type Server struct {
	cfg    *config.Config
	store  *SheetStore
	router chi.Router
	http   *http.Server
}

func NewServer(cfg *config.Config, store *SheetStore) *Server {
	s := &Server{
		cfg:   cfg,
		store: store,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/evaluate", s.handleEvaluate)

		r.Route("/sheets", func(r chi.Router) {
			r.Post("/", s.handleUploadSheet)
			r.Route("/{sheetID}", func(r chi.Router) {
				r.Put("/", s.handleReplaceSheet)
				r.Delete("/", s.handleDeleteSheet)
				r.Get("/values", s.handleSheetValues)
				r.Get("/cell/{ref}", s.handleSheetCell)
			})
		})
	})

	s.router = r
	s.http = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Handler returns the routed handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens and serves until the listener fails or Shutdown is called
func (s *Server) Start() error {
	slog.Info("server listening", "addr", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests within the context deadline
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
