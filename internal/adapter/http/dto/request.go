package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/budgetbridge/internal/domain"
	"github.com/iho/budgetbridge/internal/usecase"
)

// CreateEntryRequest represents a request to create a ledger entry.
type CreateEntryRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Flow     string          `json:"flow"`
	Date     string          `json:"date"`
	Payee    string          `json:"payee"`
	Category string          `json:"category"`
	Account  string          `json:"account"`
	Notes    string          `json:"notes,omitempty"`
}

// ToUseCaseInput validates the request and converts it to use case input.
func (r *CreateEntryRequest) ToUseCaseInput(budgetID, idempotencyKey string) (usecase.CreateEntryInput, error) {
	flow, err := domain.ValidateFlowDirection(r.Flow)
	if err != nil {
		return usecase.CreateEntryInput{}, err
	}
	if err := domain.ValidateAmount(r.Amount); err != nil {
		return usecase.CreateEntryInput{}, err
	}
	if _, err := domain.ParseDate("date", r.Date); err != nil {
		return usecase.CreateEntryInput{}, err
	}
	for field, value := range map[string]string{
		"payee":    r.Payee,
		"category": r.Category,
		"account":  r.Account,
	} {
		if value == "" {
			return usecase.CreateEntryInput{}, domain.NewValidation(
				field+" is required",
				map[string]any{"field": field},
			)
		}
	}

	return usecase.CreateEntryInput{
		BudgetID:       budgetID,
		Amount:         r.Amount,
		Flow:           flow,
		Date:           r.Date,
		Payee:          r.Payee,
		Category:       r.Category,
		Account:        r.Account,
		Notes:          r.Notes,
		IdempotencyKey: idempotencyKey,
	}, nil
}
