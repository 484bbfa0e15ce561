package middleware

import (
	"sync"
	"time"

	"github.com/iho/budgetbridge/internal/infrastructure/metrics"
)

// AuthGuardConfig holds auth failure tracking configuration.
type AuthGuardConfig struct {
	Window        time.Duration
	MaxFailures   int
	BlockDuration time.Duration
	MaxClients    int
}

type failureState struct {
	windowStart  time.Time
	failures     int
	blockedUntil time.Time
	lastSeen     time.Time
}

// AuthGuard tracks authentication failures per client identity and blocks
// clients that exceed the per-window failure budget. The client map is
// pruned and capped on every access.
type AuthGuard struct {
	mu      sync.Mutex
	cfg     AuthGuardConfig
	clients map[string]*failureState
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewAuthGuard creates a new AuthGuard.
func NewAuthGuard(cfg AuthGuardConfig, m *metrics.Metrics) *AuthGuard {
	return &AuthGuard{
		cfg:     cfg,
		clients: make(map[string]*failureState),
		metrics: m,
		now:     time.Now,
	}
}

// BlockedFor returns how long the client remains blocked, zero when the
// client may attempt authentication.
func (g *AuthGuard) BlockedFor(client string) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.pruneLocked(now)

	state, ok := g.clients[client]
	if !ok {
		return 0
	}
	state.lastSeen = now
	if state.blockedUntil.After(now) {
		return state.blockedUntil.Sub(now)
	}
	return 0
}

// RecordFailure counts a failed authentication attempt. Reaching the
// failure budget within the window starts a block.
func (g *AuthGuard) RecordFailure(client string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.pruneLocked(now)

	state, ok := g.clients[client]
	if !ok {
		g.evictToCapLocked()
		state = &failureState{windowStart: now}
		g.clients[client] = state
	}

	if now.Sub(state.windowStart) > g.cfg.Window {
		state.windowStart = now
		state.failures = 0
	}

	state.failures++
	state.lastSeen = now
	if state.failures >= g.cfg.MaxFailures {
		state.blockedUntil = now.Add(g.cfg.BlockDuration)
	}
}

// Len returns the tracked client count.
func (g *AuthGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.clients)
}

// pruneLocked drops clients whose block and window have both lapsed; such
// a state is indistinguishable from a fresh one.
func (g *AuthGuard) pruneLocked(now time.Time) {
	for client, state := range g.clients {
		if now.After(state.blockedUntil) && now.Sub(state.windowStart) > g.cfg.Window {
			delete(g.clients, client)
		}
	}
}

// evictToCapLocked makes room for one more client, dropping the least
// recently seen first.
func (g *AuthGuard) evictToCapLocked() {
	for len(g.clients) >= g.cfg.MaxClients {
		oldest := ""
		var oldestSeen time.Time
		for client, state := range g.clients {
			if oldest == "" || state.lastSeen.Before(oldestSeen) {
				oldest = client
				oldestSeen = state.lastSeen
			}
		}
		delete(g.clients, oldest)
	}
}
