package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/budgetbridge/internal/domain"
	"github.com/iho/budgetbridge/internal/usecase"
)

// BudgetResponse represents a budget in API responses.
type BudgetResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BudgetsFromDomain converts budget summaries to responses.
func BudgetsFromDomain(budgets []domain.BudgetSummary) []BudgetResponse {
	result := make([]BudgetResponse, len(budgets))
	for i, b := range budgets {
		result[i] = BudgetResponse{ID: b.ID, Name: b.Name}
	}
	return result
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID       string          `json:"id"`
	BudgetID string          `json:"budgetId"`
	Amount   decimal.Decimal `json:"amount"`
	Flow     string          `json:"flow"`
	Date     string          `json:"date"`
	Payee    string          `json:"payee"`
	Category string          `json:"category"`
	Account  string          `json:"account"`
	Notes    string          `json:"notes,omitempty"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e domain.LedgerEntry) EntryResponse {
	return EntryResponse{
		ID:       e.ID,
		BudgetID: e.BudgetID,
		Amount:   e.Amount,
		Flow:     string(e.Flow),
		Date:     e.Date,
		Payee:    e.Payee,
		Category: e.Category,
		Account:  e.Account,
		Notes:    e.Notes,
	}
}

// EntryListResponse is a page of entries plus the total filtered count.
type EntryListResponse struct {
	Items  []EntryResponse `json:"items"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
	Total  int             `json:"total"`
}

// EntryListFromResult converts a use case listing result to a response.
func EntryListFromResult(result *usecase.ListEntriesResult) EntryListResponse {
	items := make([]EntryResponse, len(result.Items))
	for i, e := range result.Items {
		items[i] = EntryFromDomain(e)
	}
	return EntryListResponse{
		Items:  items,
		Limit:  result.Limit,
		Offset: result.Offset,
		Total:  result.Total,
	}
}

// HealthResponse reports service and upstream connectivity status.
type HealthResponse struct {
	Status              string `json:"status"`
	ActualConnectivity  string `json:"actualConnectivity"`
	BudgetDiscoveryMode string `json:"budgetDiscoveryMode"`
}
