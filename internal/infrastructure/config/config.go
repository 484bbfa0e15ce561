package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/iho/budgetbridge/internal/domain"
	"github.com/iho/budgetbridge/internal/usecase"
)

// Config holds all application configuration.
type Config struct {
	// HTTP Server
	HTTPPort            string        `env:"HTTP_PORT"             envDefault:"8080"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"60s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Authentication
	APIKeys []string `env:"API_KEYS" envSeparator:","`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Upstream client
	UpstreamURL                 string        `env:"UPSTREAM_URL"                   envDefault:"http://localhost:5007"`
	UpstreamPassword            string        `env:"UPSTREAM_PASSWORD"`
	UpstreamTimeout             time.Duration `env:"UPSTREAM_TIMEOUT"               envDefault:"30s"`
	UpstreamInitInitialInterval time.Duration `env:"UPSTREAM_INIT_INITIAL_INTERVAL" envDefault:"250ms"`
	UpstreamInitMaxInterval     time.Duration `env:"UPSTREAM_INIT_MAX_INTERVAL"     envDefault:"5s"`
	UpstreamInitMaxElapsedTime  time.Duration `env:"UPSTREAM_INIT_MAX_ELAPSED"      envDefault:"30s"`

	// Budgets. Allowlist entries are "id" or "id=display name".
	BudgetAllowlist     []string `env:"BUDGET_ALLOWLIST"      envSeparator:","`
	BudgetDiscoveryMode string   `env:"BUDGET_DISCOVERY_MODE" envDefault:"auto"`

	// Budget write lock
	BudgetLockTimeout time.Duration `env:"BUDGET_LOCK_TIMEOUT" envDefault:"30s"`

	// Idempotency
	IdempotencyTTL        time.Duration `env:"IDEMPOTENCY_TTL"         envDefault:"24h"`
	IdempotencyMaxRecords int           `env:"IDEMPOTENCY_MAX_RECORDS" envDefault:"10000"`

	// Auth failure guard
	AuthFailureWindow time.Duration `env:"AUTH_FAILURE_WINDOW" envDefault:"15m"`
	AuthMaxFailures   int           `env:"AUTH_MAX_FAILURES"   envDefault:"10"`
	AuthBlockDuration time.Duration `env:"AUTH_BLOCK_DURATION" envDefault:"15m"`
	AuthMaxClients    int           `env:"AUTH_MAX_CLIENTS"    envDefault:"10000"`

	// Request rate limiting
	RateLimitWindow      time.Duration `env:"RATE_LIMIT_WINDOW"       envDefault:"1m"`
	RateLimitMaxRequests int           `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"120"`
	RateLimitMaxClients  int           `env:"RATE_LIMIT_MAX_CLIENTS"  envDefault:"10000"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	switch cfg.BudgetDiscoveryMode {
	case usecase.DiscoveryAuto, usecase.DiscoveryConfiguredOnly:
	default:
		return nil, fmt.Errorf("invalid BUDGET_DISCOVERY_MODE %q", cfg.BudgetDiscoveryMode)
	}

	return cfg, nil
}

// ConfiguredBudgets parses the allowlist entries into budget summaries. An
// entry without a display name uses the id as its name.
func (c *Config) ConfiguredBudgets() []domain.BudgetSummary {
	budgets := make([]domain.BudgetSummary, 0, len(c.BudgetAllowlist))
	for _, entry := range c.BudgetAllowlist {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, name, found := strings.Cut(entry, "=")
		if !found || name == "" {
			name = id
		}
		budgets = append(budgets, domain.BudgetSummary{ID: id, Name: name})
	}
	return budgets
}
