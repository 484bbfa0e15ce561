package usecase

import (
	"context"

	"github.com/iho/budgetbridge/internal/domain"
	"github.com/iho/budgetbridge/internal/upstream"
)

// SessionGateway serializes access into the upstream budgeting client.
type SessionGateway interface {
	// WithBudget opens the budget, runs fn against a session and closes the
	// session, totally ordered with every other gateway operation.
	WithBudget(ctx context.Context, budgetID string, fn func(ctx context.Context, s upstream.Session) error) error
	// ListBudgets returns discovered budgets, or an empty slice when
	// discovery yields nothing.
	ListBudgets(ctx context.Context) ([]domain.BudgetSummary, error)
	// Check probes upstream connectivity.
	Check(ctx context.Context) error
}
