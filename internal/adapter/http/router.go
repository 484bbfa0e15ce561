package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/budgetbridge/internal/adapter/http/handler"
	"github.com/iho/budgetbridge/internal/adapter/http/middleware"
	"github.com/iho/budgetbridge/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	Logger             zerolog.Logger
	Metrics            *metrics.Metrics
	Registry           *prometheus.Registry
	CORSAllowedOrigins []string

	Auth        *middleware.AuthMiddleware
	RateLimiter *middleware.RateLimiter

	BudgetHandler *handler.BudgetHandler
	EntryHandler  *handler.EntryHandler
	HealthHandler *handler.HealthHandler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", handler.IdempotencyKeyHeader},
	}))

	// Probes and metrics stay unauthenticated.
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))

	r.Route("/budgets", func(r chi.Router) {
		r.Use(cfg.RateLimiter.Wrap)
		r.Use(cfg.Auth.Wrap)

		r.Get("/", cfg.BudgetHandler.List)
		r.Route("/{budgetId}/entries", func(r chi.Router) {
			r.Get("/", cfg.EntryHandler.List)
			r.Post("/", cfg.EntryHandler.Create)
		})
	})

	return r
}
