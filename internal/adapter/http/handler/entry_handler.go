package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/budgetbridge/internal/adapter/http/dto"
	"github.com/iho/budgetbridge/internal/domain"
	"github.com/iho/budgetbridge/internal/usecase"
)

// IdempotencyKeyHeader carries the client-supplied idempotency key.
const IdempotencyKeyHeader = "Idempotency-Key"

// EntryHandler handles ledger entry requests.
type EntryHandler struct {
	entries *usecase.EntryUseCase
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entries *usecase.EntryUseCase) *EntryHandler {
	return &EntryHandler{entries: entries}
}

// List returns a page of entries in an inclusive date range.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	budgetID := chi.URLParam(r, "budgetId")
	q := r.URL.Query()

	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		writeError(w, r, domain.NewValidation(
			"from and to are required",
			map[string]any{"from": from, "to": to},
		))
		return
	}
	if err := domain.ValidateDateRange(from, to); err != nil {
		writeError(w, r, err)
		return
	}

	flow, err := domain.ParseFlow(q.Get("flow"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	limit, err := parseIntQuery(r, "limit", domain.DefaultLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	offset, err := parseIntQuery(r, "offset", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := domain.ValidatePagination(limit, offset); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.entries.ListEntries(r.Context(), usecase.ListEntriesInput{
		BudgetID: budgetID,
		From:     from,
		To:       to,
		Flow:     flow,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	dto.WriteJSON(w, http.StatusOK, dto.EntryListFromResult(result))
}

// Create creates a ledger entry.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	budgetID := chi.URLParam(r, "budgetId")

	idempotencyKey := r.Header.Get(IdempotencyKeyHeader)
	if idempotencyKey != "" {
		if err := domain.ValidateIdempotencyKey(idempotencyKey); err != nil {
			writeError(w, r, err)
			return
		}
	}

	var req dto.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, domain.NewValidation("invalid JSON body", nil))
		return
	}

	input, err := req.ToUseCaseInput(budgetID, idempotencyKey)
	if err != nil {
		writeError(w, r, err)
		return
	}

	entry, err := h.entries.CreateEntry(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	dto.WriteJSON(w, http.StatusOK, dto.EntryFromDomain(*entry))
}
