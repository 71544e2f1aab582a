package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/quocbao/facegate/internal/identity"
	"github.com/quocbao/facegate/internal/web/handlers"
)

func (s *Server) setupRoutes(dispatcher *identity.Dispatcher, store identity.Store) {
	// Create handlers
	enrollHandler := handlers.NewEnrollHandler(dispatcher, s.config.Identity.EnrollTarget)
	identitiesHandler := handlers.NewIdentitiesHandler(store)
	eventsHandler := handlers.NewEventsHandler(s.hub)
	configHandler := handlers.NewConfigHandler(s.config)
	statsHandler := handlers.NewStatsHandler(store, s.frames, s.hub)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Frame intake and enrollment control
		r.Post("/frames", s.frames.Post)
		r.Post("/enroll", enrollHandler.Start)
		r.Get("/enroll", enrollHandler.Status)

		// Outbound event stream (SSE)
		r.Get("/events", eventsHandler.Stream)

		// Identity database
		r.Get("/identities", identitiesHandler.List)
		r.Delete("/identities/{name}", identitiesHandler.Delete)

		// Config & stats
		r.Get("/config", configHandler.Get)
		r.Get("/stats", statsHandler.Get)
	})
}
