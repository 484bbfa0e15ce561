package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/budgetbridge/internal/adapter/http"
	"github.com/iho/budgetbridge/internal/adapter/http/handler"
	"github.com/iho/budgetbridge/internal/adapter/http/middleware"
	"github.com/iho/budgetbridge/internal/infrastructure/config"
	"github.com/iho/budgetbridge/internal/infrastructure/logger"
	"github.com/iho/budgetbridge/internal/infrastructure/metrics"
	"github.com/iho/budgetbridge/internal/upstream"
	"github.com/iho/budgetbridge/internal/upstream/httpdriver"
	"github.com/iho/budgetbridge/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	logr := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = logr

	if len(cfg.APIKeys) == 0 {
		logr.Fatal().Msg("API_KEYS must not be empty")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// Upstream gateway over the HTTP connector
	driver := httpdriver.New(httpdriver.Config{
		BaseURL: cfg.UpstreamURL,
		Timeout: cfg.UpstreamTimeout,
	})
	gateway := upstream.NewGateway(driver, upstream.Config{
		Password:            cfg.UpstreamPassword,
		InitInitialInterval: cfg.UpstreamInitInitialInterval,
		InitMaxInterval:     cfg.UpstreamInitMaxInterval,
		InitMaxElapsedTime:  cfg.UpstreamInitMaxElapsedTime,
	}, logr, m)

	// Initialize use cases
	budgetUC := usecase.NewBudgetUseCase(gateway, cfg.ConfiguredBudgets(), cfg.BudgetDiscoveryMode)
	locks := usecase.NewLockManager(m)
	idempotency := usecase.NewIdempotencyCache(usecase.IdempotencyConfig{
		TTL:        cfg.IdempotencyTTL,
		MaxRecords: cfg.IdempotencyMaxRecords,
	}, m)
	entryUC := usecase.NewEntryUseCase(budgetUC, gateway, locks, idempotency, cfg.BudgetLockTimeout, logr)

	// Abuse guards
	authGuard := middleware.NewAuthGuard(middleware.AuthGuardConfig{
		Window:        cfg.AuthFailureWindow,
		MaxFailures:   cfg.AuthMaxFailures,
		BlockDuration: cfg.AuthBlockDuration,
		MaxClients:    cfg.AuthMaxClients,
	}, m)
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Window:      cfg.RateLimitWindow,
		MaxRequests: cfg.RateLimitMaxRequests,
		MaxClients:  cfg.RateLimitMaxClients,
	}, m)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		Logger:             logr,
		Metrics:            m,
		Registry:           registry,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Auth:               middleware.NewAuthMiddleware(cfg.APIKeys, authGuard, m),
		RateLimiter:        rateLimiter,
		BudgetHandler:      handler.NewBudgetHandler(budgetUC),
		EntryHandler:       handler.NewEntryHandler(entryUC),
		HealthHandler:      handler.NewHealthHandler(gateway, cfg.BudgetDiscoveryMode),
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logr.Info().Str("port", cfg.HTTPPort).Str("upstream", cfg.UpstreamURL).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logr.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := gateway.Shutdown(ctx); err != nil {
		logr.Warn().Err(err).Msg("upstream shutdown failed")
	}

	logr.Info().Msg("server stopped")
}
