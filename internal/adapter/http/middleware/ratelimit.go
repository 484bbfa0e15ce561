package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/iho/budgetbridge/internal/adapter/http/dto"
	"github.com/iho/budgetbridge/internal/domain"
	"github.com/iho/budgetbridge/internal/infrastructure/metrics"
)

// RateLimiterConfig holds per-client rate limiting configuration.
type RateLimiterConfig struct {
	Window      time.Duration
	MaxRequests int
	MaxClients  int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-client request budget per window. The client
// map is pruned and capped on every access.
type RateLimiter struct {
	mu      sync.Mutex
	cfg     RateLimiterConfig
	limit   rate.Limit
	clients map[string]*clientLimiter
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewRateLimiter creates a new RateLimiter.
func NewRateLimiter(cfg RateLimiterConfig, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{
		cfg:     cfg,
		limit:   rate.Every(cfg.Window / time.Duration(cfg.MaxRequests)),
		clients: make(map[string]*clientLimiter),
		metrics: m,
		now:     time.Now,
	}
}

// Wrap wraps an http.Handler with rate limiting.
func (rl *RateLimiter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		retryAfter, ok := rl.allow(clientIdentity(r))
		if !ok {
			rl.metrics.RateLimitHits.Inc()
			dto.WriteError(w, GetRequestID(r.Context()), domain.NewRateLimited(
				"rate limit exceeded",
				retryAfter.Milliseconds(),
			))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allow reserves a slot for the client. When the budget is exhausted it
// reports the delay after which a retry may succeed.
func (rl *RateLimiter) allow(client string) (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.pruneLocked(now)

	cl, ok := rl.clients[client]
	if !ok {
		rl.evictToCapLocked()
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.cfg.MaxRequests)}
		rl.clients[client] = cl
	}
	cl.lastSeen = now

	reservation := cl.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return rl.cfg.Window, false
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return delay, false
	}
	return 0, true
}

// Len returns the tracked client count.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// pruneLocked drops clients idle for a full window; their token buckets
// have refilled completely, so the state is equivalent to a fresh one.
func (rl *RateLimiter) pruneLocked(now time.Time) {
	for client, cl := range rl.clients {
		if now.Sub(cl.lastSeen) > rl.cfg.Window {
			delete(rl.clients, client)
		}
	}
}

func (rl *RateLimiter) evictToCapLocked() {
	for len(rl.clients) >= rl.cfg.MaxClients {
		oldest := ""
		var oldestSeen time.Time
		for client, cl := range rl.clients {
			if oldest == "" || cl.lastSeen.Before(oldestSeen) {
				oldest = client
				oldestSeen = cl.lastSeen
			}
		}
		delete(rl.clients, oldest)
	}
}
