package usecase

import (
	"context"

	"github.com/iho/budgetbridge/internal/domain"
)

// Discovery modes.
const (
	DiscoveryAuto           = "auto"
	DiscoveryConfiguredOnly = "configured-only"
)

// BudgetUseCase resolves the visible set of budgets by merging the configured
// allowlist with optional upstream discovery.
type BudgetUseCase struct {
	gateway       SessionGateway
	configured    []domain.BudgetSummary
	discoveryMode string
}

// NewBudgetUseCase creates a new BudgetUseCase.
func NewBudgetUseCase(gateway SessionGateway, configured []domain.BudgetSummary, discoveryMode string) *BudgetUseCase {
	return &BudgetUseCase{
		gateway:       gateway,
		configured:    configured,
		discoveryMode: discoveryMode,
	}
}

// ListBudgets returns the budgets visible through the bridge. A non-empty
// allowlist filters discovery results as a security boundary, not just a
// default.
func (uc *BudgetUseCase) ListBudgets(ctx context.Context) ([]domain.BudgetSummary, error) {
	if uc.discoveryMode == DiscoveryConfiguredOnly {
		return append([]domain.BudgetSummary(nil), uc.configured...), nil
	}

	discovered, err := uc.gateway.ListBudgets(ctx)
	if err != nil || len(discovered) == 0 {
		if len(uc.configured) > 0 {
			return append([]domain.BudgetSummary(nil), uc.configured...), nil
		}
		if err != nil {
			return nil, err
		}
		return nil, domain.NewUpstream("no budgets available", nil)
	}

	if len(uc.configured) == 0 {
		return discovered, nil
	}

	allowed := make(map[string]bool, len(uc.configured))
	for _, b := range uc.configured {
		allowed[b.ID] = true
	}

	filtered := make([]domain.BudgetSummary, 0, len(discovered))
	for _, b := range discovered {
		if allowed[b.ID] {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

// AssertAccessible fails with a not-found condition when the budget id is not
// in the visible set.
func (uc *BudgetUseCase) AssertAccessible(ctx context.Context, budgetID string) error {
	budgets, err := uc.ListBudgets(ctx)
	if err != nil {
		return err
	}
	for _, b := range budgets {
		if b.ID == budgetID {
			return nil
		}
	}
	return domain.NewNotFound("budget not found")
}
