package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Upstream metrics
	UpstreamCalls    *prometheus.CounterVec
	UpstreamInits    prometheus.Counter
	UpstreamFailures *prometheus.CounterVec

	// Budget lock metrics
	LockWaitDuration prometheus.Histogram
	LockTimeouts     prometheus.Counter

	// Idempotency metrics
	IdempotencyHits      prometheus.Counter
	IdempotencyConflicts prometheus.Counter
	IdempotencyEvictions prometheus.Counter

	// Abuse guard metrics
	AuthFailures  *prometheus.CounterVec
	RateLimitHits prometheus.Counter
}

// New creates and registers all Prometheus metrics against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetbridge_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "budgetbridge_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		UpstreamCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetbridge_upstream_calls_total",
				Help: "Total upstream client calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		UpstreamInits: factory.NewCounter(prometheus.CounterOpts{
			Name: "budgetbridge_upstream_inits_total",
			Help: "Total upstream session initializations",
		}),
		UpstreamFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetbridge_upstream_failures_total",
				Help: "Total upstream failures by operation",
			},
			[]string{"operation"},
		),

		LockWaitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "budgetbridge_budget_lock_wait_seconds",
			Help:    "Time spent waiting for a budget write lock",
			Buckets: prometheus.DefBuckets,
		}),
		LockTimeouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "budgetbridge_budget_lock_timeouts_total",
			Help: "Total budget write lock acquisitions abandoned on timeout",
		}),

		IdempotencyHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "budgetbridge_idempotency_hits_total",
			Help: "Total idempotency cache hits",
		}),
		IdempotencyConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "budgetbridge_idempotency_conflicts_total",
			Help: "Total idempotency key conflicts",
		}),
		IdempotencyEvictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "budgetbridge_idempotency_evictions_total",
			Help: "Total idempotency records evicted by the cap",
		}),

		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetbridge_auth_failures_total",
				Help: "Total authentication failures by reason",
			},
			[]string{"reason"},
		),
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "budgetbridge_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),
	}
}
