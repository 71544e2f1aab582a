// Package web is the networked variant of the recognition core: inbound
// operations arrive as REST calls, outbound events leave on an SSE stream.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/quocbao/facegate/internal/config"
	"github.com/quocbao/facegate/internal/identity"
	"github.com/quocbao/facegate/internal/web/handlers"
	"github.com/quocbao/facegate/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server
	hub        *handlers.Hub
	frames     *handlers.FramesHandler

	workerCancel context.CancelFunc
}

// NewServer creates a new web server around a detector and identity store.
// A nil matcher delegates matching to the event consumers: recognition
// events then carry the raw embedding only.
func NewServer(cfg *config.Config, port int, host string, detector identity.Detector, store identity.Store, matcher *identity.Matcher) *Server {
	r := chi.NewRouter()

	hub := handlers.NewHub()
	session := identity.NewSession(cfg.Identity.EnrollTarget)
	dispatcher := identity.NewDispatcher(detector, store, matcher, session, hub)

	s := &Server{
		config: cfg,
		router: r,
		hub:    hub,
		frames: handlers.NewFramesHandler(dispatcher),
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS())

	s.setupRoutes(dispatcher, store)

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // SSE connections stay open indefinitely
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start runs the frame worker and the HTTP server. Blocks until the
// server stops.
func (s *Server) Start() error {
	workerCtx, cancel := context.WithCancel(context.Background())
	s.workerCancel = cancel
	go s.frames.Run(workerCtx)

	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server and stops the frame worker.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")

	if s.workerCancel != nil {
		s.workerCancel()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Frames returns the frame intake handler, for wiring and tests.
func (s *Server) Frames() *handlers.FramesHandler {
	return s.frames
}
