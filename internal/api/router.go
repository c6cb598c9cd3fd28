package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)

		// Registered device handles
		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Get("/{identity}", s.handleGetDevice)
			r.Get("/{identity}/payload", s.handleGetDevicePayload)
		})

		// Physical device aggregates
		r.Route("/physical", func(r chi.Router) {
			r.Get("/", s.handleListPhysical)
			r.Get("/{key}", s.handleGetPhysical)
		})

		// Offline identification by USB vendor/product ID
		r.Post("/identify", s.handleIdentify)

		// WebSocket event stream
		r.Get("/events", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"devices": s.registry.Len(),
	})
}

// handleVersion returns the daemon version.
func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version": s.version,
	})
}
