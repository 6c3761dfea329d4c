// Package server serves the gallery preview and the caption search API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/shashin/internal/config"
	"github.com/hyperjump/shashin/internal/search"
	"github.com/hyperjump/shashin/internal/storage"
	"go.uber.org/zap"
)

// Server is the HTTP server for the gallery preview.
type Server struct {
	mu      sync.RWMutex
	engine  *search.Engine // nil until an embedding index exists
	storage storage.Storage
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server. engine may be nil; search then answers 503.
func NewServer(engine *search.Engine, store storage.Storage, cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:  engine,
		storage: store,
		config:  cfg,
		logger:  logger,
	}
}

// SetEngine swaps the search engine, closing the previous one.
func (s *Server) SetEngine(e *search.Engine) {
	s.mu.Lock()
	old := s.engine
	s.engine = e
	s.mu.Unlock()
	if old != nil && old != e {
		_ = old.Close()
	}
}

func (s *Server) currentEngine() *search.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// Router returns the HTTP handler with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/search", s.handleSearch)
	r.Get("/api/v1/assets/{id}", s.handleGetAsset)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	r.Handle("/*", http.FileServer(http.Dir(s.config.Gallery.SiteDir)))
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr), zap.String("site", s.config.Gallery.SiteDir))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
