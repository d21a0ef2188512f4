/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     request logging
  2. Recoverer:  panic recovery (500 instead of crash)
  3. RequestID:  unique ID per request for tracing
  4. Metrics:    Prometheus request counters/latencies
  5. CORS:       cross-origin access for the local widget/UI processes

SEE ALSO:
  - handlers.go: handler implementations
  - metrics.go: Prometheus collectors
  - cmd/server/main.go: server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Inbound location signals
		r.Route("/signals", func(r chi.Router) {
			r.Post("/enter", h.EnterSignal)
			r.Post("/exit", h.ExitSignal)
		})

		// Read-only queries
		r.Get("/status", h.GetStatus)
		r.Get("/visits", h.ListVisits)
		r.Get("/progress", h.GetProgress)
		r.Get("/trend", h.GetTrend)
		r.Get("/streak", h.GetStreak)

		// Settings
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.GetSettings)
			r.Put("/", h.UpdateSettings)
		})
		r.Get("/holidays", h.ListHolidays)

		// Admin
		r.Route("/admin", func(r chi.Router) {
			r.Post("/consolidate", h.Consolidate)
		})
	})

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.Handler())

	return r
}
