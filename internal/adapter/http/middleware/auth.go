package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/iho/budgetbridge/internal/adapter/http/dto"
	"github.com/iho/budgetbridge/internal/domain"
	"github.com/iho/budgetbridge/internal/infrastructure/metrics"
)

// AuthMiddleware authenticates requests against the configured API keys.
// Failed attempts feed the auth guard, which blocks abusive clients.
type AuthMiddleware struct {
	keys    []string
	guard   *AuthGuard
	metrics *metrics.Metrics
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(keys []string, guard *AuthGuard, m *metrics.Metrics) *AuthMiddleware {
	return &AuthMiddleware{keys: keys, guard: guard, metrics: m}
}

// Wrap wraps an http.Handler with bearer key authentication.
func (m *AuthMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := r.RemoteAddr

		if blocked := m.guard.BlockedFor(client); blocked > 0 {
			m.metrics.RateLimitHits.Inc()
			dto.WriteError(w, GetRequestID(r.Context()), domain.NewRateLimited(
				"too many failed authentication attempts",
				blocked.Milliseconds(),
			))
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			m.guard.RecordFailure(client)
			m.metrics.AuthFailures.WithLabelValues("missing_key").Inc()
			dto.WriteError(w, GetRequestID(r.Context()), domain.NewUnauthorized("missing API key"))
			return
		}

		if !m.validKey(token) {
			m.guard.RecordFailure(client)
			m.metrics.AuthFailures.WithLabelValues("invalid_key").Inc()
			dto.WriteError(w, GetRequestID(r.Context()), domain.NewUnauthorized("invalid API key"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// validKey compares the presented key against every configured key to keep
// the comparison time independent of the match position.
func (m *AuthMiddleware) validKey(token string) bool {
	valid := false
	for _, key := range m.keys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(token)) == 1 {
			valid = true
		}
	}
	return valid
}

// bearerToken extracts the bearer token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// clientIdentity keys rate limiting: the presented API key when one exists,
// else the remote address.
func clientIdentity(r *http.Request) string {
	if token, ok := bearerToken(r); ok {
		return token
	}
	return r.RemoteAddr
}
