package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/budgetbridge/internal/adapter/http/dto"
	"github.com/iho/budgetbridge/internal/usecase"
)

const connectivityTimeout = 5 * time.Second

// HealthHandler handles health and readiness probes.
type HealthHandler struct {
	gateway       usecase.SessionGateway
	discoveryMode string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(gateway usecase.SessionGateway, discoveryMode string) *HealthHandler {
	return &HealthHandler{gateway: gateway, discoveryMode: discoveryMode}
}

// Liveness returns 200 always, reporting upstream connectivity in the body.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	dto.WriteJSON(w, http.StatusOK, h.probe(r.Context()))
}

// Readiness returns 200 when upstream connectivity is ok, else 503.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	body := h.probe(r.Context())

	status := http.StatusOK
	if body.ActualConnectivity != "ok" {
		status = http.StatusServiceUnavailable
	}
	dto.WriteJSON(w, status, body)
}

func (h *HealthHandler) probe(ctx context.Context) dto.HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, connectivityTimeout)
	defer cancel()

	body := dto.HealthResponse{
		Status:              "ok",
		ActualConnectivity:  "ok",
		BudgetDiscoveryMode: h.discoveryMode,
	}
	if err := h.gateway.Check(ctx); err != nil {
		body.Status = "degraded"
		body.ActualConnectivity = "error"
	}
	return body
}
