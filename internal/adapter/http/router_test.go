package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/budgetbridge/internal/adapter/http/dto"
	"github.com/iho/budgetbridge/internal/adapter/http/handler"
	"github.com/iho/budgetbridge/internal/adapter/http/middleware"
	"github.com/iho/budgetbridge/internal/domain"
	"github.com/iho/budgetbridge/internal/infrastructure/metrics"
	"github.com/iho/budgetbridge/internal/upstream"
	"github.com/iho/budgetbridge/internal/usecase"
	"github.com/iho/budgetbridge/internal/usecase/mocks"
)

const testAPIKey = "test-key"

func newTestRouter(t *testing.T, mutate ...func(*RouterConfig)) (*mocks.MockSessionGateway, http.Handler) {
	t.Helper()

	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockSessionGateway(ctrl)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	budgets := usecase.NewBudgetUseCase(gateway, []domain.BudgetSummary{
		{ID: "b-1", Name: "Household"},
	}, usecase.DiscoveryConfiguredOnly)
	locks := usecase.NewLockManager(m)
	cache := usecase.NewIdempotencyCache(usecase.IdempotencyConfig{TTL: time.Hour, MaxRecords: 100}, m)
	entries := usecase.NewEntryUseCase(budgets, gateway, locks, cache, time.Second, zerolog.Nop())

	guard := middleware.NewAuthGuard(middleware.AuthGuardConfig{
		Window:        time.Minute,
		MaxFailures:   5,
		BlockDuration: time.Minute,
		MaxClients:    100,
	}, m)

	cfg := RouterConfig{
		Logger:             zerolog.Nop(),
		Metrics:            m,
		Registry:           registry,
		CORSAllowedOrigins: []string{"*"},
		Auth:               middleware.NewAuthMiddleware([]string{testAPIKey}, guard, m),
		RateLimiter: middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Window:      time.Minute,
			MaxRequests: 100,
			MaxClients:  100,
		}, m),
		BudgetHandler: handler.NewBudgetHandler(budgets),
		EntryHandler:  handler.NewEntryHandler(entries),
		HealthHandler: handler.NewHealthHandler(gateway, usecase.DiscoveryConfiguredOnly),
	}
	for _, fn := range mutate {
		fn(&cfg)
	}

	return gateway, NewRouter(cfg)
}

func doRequest(router http.Handler, method, target, body, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = "1.2.3.4:1000"
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_HealthAlwaysOK(t *testing.T) {
	gateway, router := newTestRouter(t)
	gateway.EXPECT().Check(gomock.Any()).Return(errors.New("down"))

	rec := doRequest(router, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body dto.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "error", body.ActualConnectivity)
	assert.Equal(t, usecase.DiscoveryConfiguredOnly, body.BudgetDiscoveryMode)
}

func TestRouter_ReadinessReflectsConnectivity(t *testing.T) {
	gateway, router := newTestRouter(t)

	gateway.EXPECT().Check(gomock.Any()).Return(nil)
	rec := doRequest(router, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	gateway.EXPECT().Check(gomock.Any()).Return(errors.New("down"))
	rec = doRequest(router, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_MetricsUnauthenticated(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_BudgetsRequireAuth(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/budgets", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decodeError(t, rec)
	assert.Equal(t, "unauthorized", body.Error.Code)
	assert.NotEmpty(t, body.Error.RequestID)
	assert.Equal(t, body.Error.RequestID, rec.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_ListBudgets(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/budgets", "", testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code)

	var budgets []dto.BudgetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &budgets))
	require.Len(t, budgets, 1)
	assert.Equal(t, "b-1", budgets[0].ID)
	assert.Equal(t, "Household", budgets[0].Name)
}

func TestRouter_ListEntriesValidation(t *testing.T) {
	_, router := newTestRouter(t)

	tests := []struct {
		name   string
		target string
	}{
		{"missing range", "/budgets/b-1/entries"},
		{"from after to", "/budgets/b-1/entries?from=2024-06-02&to=2024-06-01"},
		{"bad flow", "/budgets/b-1/entries?from=2024-06-01&to=2024-06-02&flow=sideways"},
		{"limit too large", "/budgets/b-1/entries?from=2024-06-01&to=2024-06-02&limit=501"},
		{"limit not a number", "/budgets/b-1/entries?from=2024-06-01&to=2024-06-02&limit=abc"},
		{"negative offset", "/budgets/b-1/entries?from=2024-06-01&to=2024-06-02&offset=-1"},
		{"range too long", "/budgets/b-1/entries?from=2020-01-01&to=2024-06-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(router, http.MethodGet, tt.target, "", testAPIKey)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			body := decodeError(t, rec)
			assert.Equal(t, "validation_error", body.Error.Code)
			assert.NotEmpty(t, body.Error.RequestID)
		})
	}
}

func TestRouter_ListEntries(t *testing.T) {
	gateway, router := newTestRouter(t)
	ctrl := gomock.NewController(t)
	session := mocks.NewMockSession(ctrl)

	session.EXPECT().Sync(gomock.Any()).Return(nil)
	session.EXPECT().Accounts(gomock.Any()).Return([]domain.NamedEntity{{ID: "a-1", Name: "Checking"}}, nil)
	session.EXPECT().Categories(gomock.Any()).Return([]domain.NamedEntity{{ID: "c-1", Name: "Groceries"}}, nil)
	session.EXPECT().Payees(gomock.Any()).Return([]domain.NamedEntity{{ID: "p-1", Name: "Market"}}, nil)
	session.EXPECT().Transactions(gomock.Any(), gomock.Any(), "2024-06-01", "2024-06-30").Return([]domain.Transaction{
		{ID: "t-1", AccountID: "a-1", CategoryID: "c-1", PayeeID: "p-1", Date: "2024-06-02", Amount: -1234},
	}, nil)

	gateway.EXPECT().WithBudget(gomock.Any(), "b-1", gomock.Any()).DoAndReturn(
		func(ctx context.Context, budgetID string, fn func(context.Context, upstream.Session) error) error {
			return fn(ctx, session)
		})

	rec := doRequest(router, http.MethodGet, "/budgets/b-1/entries?from=2024-06-01&to=2024-06-30", "", testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code)

	var body dto.EntryListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "t-1", body.Items[0].ID)
	assert.Equal(t, "expense", body.Items[0].Flow)
	assert.Equal(t, "12.34", body.Items[0].Amount.String())
	assert.Equal(t, "Market", body.Items[0].Payee)
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, domain.DefaultLimit, body.Limit)
}

func TestRouter_ListEntriesUnknownBudget(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/budgets/b-404/entries?from=2024-06-01&to=2024-06-30", "", testAPIKey)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error.Code)
}

func TestRouter_CreateEntry(t *testing.T) {
	gateway, router := newTestRouter(t)
	ctrl := gomock.NewController(t)
	session := mocks.NewMockSession(ctrl)

	session.EXPECT().Sync(gomock.Any()).Return(nil).Times(2)
	session.EXPECT().Accounts(gomock.Any()).Return([]domain.NamedEntity{{ID: "a-1", Name: "Checking"}}, nil)
	session.EXPECT().Categories(gomock.Any()).Return([]domain.NamedEntity{{ID: "c-1", Name: "Groceries"}}, nil)
	session.EXPECT().Payees(gomock.Any()).Return([]domain.NamedEntity{{ID: "p-1", Name: "Market"}}, nil)
	session.EXPECT().CreateTransaction(gomock.Any(), upstream.TransactionFields{
		AccountID:  "a-1",
		CategoryID: "c-1",
		PayeeID:    "p-1",
		Date:       "2024-06-02",
		Amount:     -1234,
	}).Return(domain.Transaction{ID: "t-new", Amount: -1234}, nil)

	gateway.EXPECT().WithBudget(gomock.Any(), "b-1", gomock.Any()).DoAndReturn(
		func(ctx context.Context, budgetID string, fn func(context.Context, upstream.Session) error) error {
			return fn(ctx, session)
		})

	body := `{"amount":"12.34","flow":"expense","date":"2024-06-02","payee":"Market","category":"Groceries","account":"Checking"}`
	rec := doRequest(router, http.MethodPost, "/budgets/b-1/entries", body, testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var entry dto.EntryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, "t-new", entry.ID)
	assert.Equal(t, "b-1", entry.BudgetID)
	assert.Equal(t, "expense", entry.Flow)
}

func TestRouter_CreateEntryRejectsBadIdempotencyKey(t *testing.T) {
	_, router := newTestRouter(t)

	body := `{"amount":"12.34","flow":"expense","date":"2024-06-02","payee":"Market","category":"Groceries","account":"Checking"}`
	req := httptest.NewRequest(http.MethodPost, "/budgets/b-1/entries", strings.NewReader(body))
	req.RemoteAddr = "1.2.3.4:1000"
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	req.Header.Set(handler.IdempotencyKeyHeader, "has spaces!")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decodeError(t, rec).Error.Code)
}

func TestRouter_RateLimiterThrottles(t *testing.T) {
	_, router := newTestRouter(t, func(cfg *RouterConfig) {
		cfg.RateLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Window:      time.Minute,
			MaxRequests: 1,
			MaxClients:  10,
		}, metrics.New(prometheus.NewRegistry()))
	})

	rec := doRequest(router, http.MethodGet, "/budgets", "", testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodGet, "/budgets", "", testAPIKey)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	body := decodeError(t, rec)
	assert.Equal(t, "rate_limited", body.Error.Code)
	assert.Contains(t, body.Error.Details, "retryAfterMs")
}
