package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/internal/http/handlers"
	httpmiddleware "github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/internal/http/middleware"
	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	AvailabilityHandler *handlers.AvailabilityHandler
	VisitsHandler       *handlers.VisitsHandler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (health checks, metrics)
	r.Get("/health", handlers.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.AvailabilityHandler != nil {
		r.Get("/prisons/{prisonCode}/prisoners/{prisonerID}/visit-sessions/available",
			cfg.AvailabilityHandler.GetAvailableSessions)
	}

	if cfg.VisitsHandler != nil {
		r.Route("/visits", func(visits chi.Router) {
			visits.Post("/reserve", cfg.VisitsHandler.Reserve)
			visits.Put("/{reference}/book", cfg.VisitsHandler.Book)
			visits.Put("/{reference}/cancel", cfg.VisitsHandler.Cancel)
		})
	}

	return r
}
