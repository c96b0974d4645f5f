// Package server wires the upload pipeline into an HTTP server: chi
// routing, ambient middleware, and graceful shutdown.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/padstack/padimg/internal/config"
	"github.com/padstack/padimg/pkg/upload"
)

// shutdownTimeout bounds how long in-flight uploads may finish after
// a shutdown signal.
const shutdownTimeout = 10 * time.Second

// Server owns the HTTP listener and its routes.
type Server struct {
	log  *slog.Logger
	http *http.Server
}

// New builds a Server from the resolved configuration and the chosen
// storage backend.
func New(cfg *config.Config, store upload.Store, log *slog.Logger) *Server {
	return &Server{
		log: log,
		http: &http.Server{
			Addr:    cfg.Listen,
			Handler: newRouter(cfg, store, log),
			// No write/idle deadline: uploads are allowed to stream
			// for as long as the size-limit policy permits.
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// newRouter assembles the route table.
func newRouter(cfg *config.Config, store upload.Store, log *slog.Logger) chi.Router {
	h := upload.NewHandler(&upload.Config{
		FileTypes:   cfg.Upload.FileTypes,
		MaxFileSize: cfg.Upload.MaxFileSize,
		StorageType: cfg.Upload.Storage.Type,
		BaseURL:     cfg.Upload.Storage.BaseURL,
	}, store, log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(tracing("padimg"))

	r.Post("/p/{padID}/pluginfw/ep_image_upload/upload", h.Upload)
	r.Delete("/p/{padID}/pluginfw/ep_image_upload", h.RemovePad)
	r.Get("/pluginfw/ep_image_upload/settings", h.Settings)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down", "timeout", shutdownTimeout)
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
