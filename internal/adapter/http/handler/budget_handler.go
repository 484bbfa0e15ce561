package handler

import (
	"net/http"

	"github.com/iho/budgetbridge/internal/adapter/http/dto"
	"github.com/iho/budgetbridge/internal/usecase"
)

// BudgetHandler handles budget listing requests.
type BudgetHandler struct {
	budgets *usecase.BudgetUseCase
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgets *usecase.BudgetUseCase) *BudgetHandler {
	return &BudgetHandler{budgets: budgets}
}

// List returns the budgets visible through the bridge.
func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.budgets.ListBudgets(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	dto.WriteJSON(w, http.StatusOK, dto.BudgetsFromDomain(budgets))
}
