package api

import (
	"log/slog"
	"net/http"

	apiMiddleware "github.com/Sniplyy/VibeWall/internal/api/middleware"
	"github.com/Sniplyy/VibeWall/internal/events"
	"github.com/Sniplyy/VibeWall/internal/platform/metrics"
	"github.com/Sniplyy/VibeWall/internal/task"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterDeps are the collaborators the HTTP surface needs.
type RouterDeps struct {
	Emitter events.Emitter
	Store   task.TaskStore
	Metrics *metrics.Metrics
	Breaker BreakerReporter
	Logger  *slog.Logger
}

// NewRouter builds the application router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(deps.Logger))
	if deps.Metrics != nil {
		r.Use(apiMiddleware.NewMetricsMiddleware(deps.Metrics))
	}

	generations := NewGenerationHandler(deps.Emitter, deps.Store, deps.Logger)

	r.Route("/v1/generations", func(r chi.Router) {
		r.Post("/", generations.CreateGeneration)
		r.Get("/{id}", generations.GetGeneration)
		r.Get("/{id}/media/{index}", generations.GetGenerationMedia)
	})

	r.Get("/healthz", HealthHandler(deps.Breaker))
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	return r
}
