package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/iho/budgetbridge/internal/domain"
	"github.com/iho/budgetbridge/internal/upstream"
)

// unknownName renders in place of a failed id-to-name lookup.
const unknownName = "Unknown"

// EntryUseCase orchestrates ledger entry reads and writes over the gateway,
// lock manager and idempotency cache.
type EntryUseCase struct {
	budgets     *BudgetUseCase
	gateway     SessionGateway
	locks       *LockManager
	idempotency *IdempotencyCache
	lockTimeout time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(
	budgets *BudgetUseCase,
	gateway SessionGateway,
	locks *LockManager,
	idempotency *IdempotencyCache,
	lockTimeout time.Duration,
	logger zerolog.Logger,
) *EntryUseCase {
	return &EntryUseCase{
		budgets:     budgets,
		gateway:     gateway,
		locks:       locks,
		idempotency: idempotency,
		lockTimeout: lockTimeout,
		logger:      logger.With().Str("component", "entry_engine").Logger(),
		now:         time.Now,
	}
}

// ListEntriesInput represents input for listing entries.
type ListEntriesInput struct {
	BudgetID string
	From     string
	To       string
	Flow     domain.Flow
	Limit    int
	Offset   int
}

// ListEntriesResult is a filtered, sorted page of entries plus the total
// filtered count before pagination.
type ListEntriesResult struct {
	Items  []domain.LedgerEntry
	Limit  int
	Offset int
	Total  int
}

// ListEntries lists transactions in [from, to] inclusive, filtered by flow,
// sorted by date then id, then paginated. Reads take no budget lock.
func (uc *EntryUseCase) ListEntries(ctx context.Context, input ListEntriesInput) (*ListEntriesResult, error) {
	if err := uc.budgets.AssertAccessible(ctx, input.BudgetID); err != nil {
		return nil, err
	}

	var (
		accounts   []domain.NamedEntity
		categories []domain.NamedEntity
		payees     []domain.NamedEntity
		txs        []domain.Transaction
	)

	err := uc.gateway.WithBudget(ctx, input.BudgetID, func(ctx context.Context, s upstream.Session) error {
		if err := s.Sync(ctx); err != nil {
			return err
		}

		// Transactions are fetched per account, so accounts come first; the
		// remaining fetches fan out.
		var err error
		accounts, err = s.Accounts(ctx)
		if err != nil {
			return err
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			categories, err = s.Categories(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			payees, err = s.Payees(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			txs, err = s.Transactions(gctx, accounts, input.From, input.To)
			return err
		})
		return g.Wait()
	})
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Date < input.From || tx.Date > input.To {
			continue
		}
		if !domain.MatchesFlow(tx.Amount, input.Flow) {
			continue
		}
		filtered = append(filtered, tx)
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Date != filtered[j].Date {
			return filtered[i].Date < filtered[j].Date
		}
		return filtered[i].ID < filtered[j].ID
	})

	total := len(filtered)
	page := paginate(filtered, input.Offset, input.Limit)

	accountNames := nameIndex(accounts)
	categoryNames := nameIndex(categories)
	payeeNames := nameIndex(payees)

	items := make([]domain.LedgerEntry, 0, len(page))
	for _, tx := range page {
		amount, flow := domain.FromMinorUnits(tx.Amount)
		items = append(items, domain.LedgerEntry{
			ID:       tx.ID,
			BudgetID: input.BudgetID,
			Amount:   amount,
			Flow:     flow,
			Date:     tx.Date,
			Payee:    lookupName(payeeNames, tx.PayeeID),
			Category: lookupName(categoryNames, tx.CategoryID),
			Account:  lookupName(accountNames, tx.AccountID),
			Notes:    tx.Notes,
		})
	}

	return &ListEntriesResult{
		Items:  items,
		Limit:  input.Limit,
		Offset: input.Offset,
		Total:  total,
	}, nil
}

// CreateEntryInput represents input for creating an entry.
type CreateEntryInput struct {
	BudgetID       string
	Amount         decimal.Decimal
	Flow           domain.Flow
	Date           string
	Payee          string
	Category       string
	Account        string
	Notes          string
	IdempotencyKey string
}

// CreateEntry creates a ledger entry under the per-budget write lock. With an
// idempotency key, a replay of the same payload returns the cached response
// without touching upstream; the same key with a different payload conflicts.
func (uc *EntryUseCase) CreateEntry(ctx context.Context, input CreateEntryInput) (*domain.LedgerEntry, error) {
	if err := uc.budgets.AssertAccessible(ctx, input.BudgetID); err != nil {
		return nil, err
	}

	var result *domain.LedgerEntry
	err := uc.locks.WithBudgetLock(ctx, input.BudgetID, uc.lockTimeout, func(ctx context.Context) error {
		amountMinor := domain.ToMinorUnits(input.Amount, input.Flow)

		var fingerprint string
		if input.IdempotencyKey != "" {
			fingerprint = Fingerprint(amountMinor, input.Date, input.Payee, input.Category, input.Account, input.Notes)

			cached, err := uc.idempotency.Get(input.BudgetID, input.IdempotencyKey, fingerprint, uc.now())
			if err != nil {
				return err
			}
			if cached != nil {
				result = cached
				return nil
			}
		}

		entry, err := uc.createUpstream(ctx, input, amountMinor)
		if err != nil {
			return err
		}

		if input.IdempotencyKey != "" {
			uc.idempotency.Put(input.BudgetID, input.IdempotencyKey, fingerprint, *entry, uc.now())
		}
		result = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *EntryUseCase) createUpstream(ctx context.Context, input CreateEntryInput, amountMinor int64) (*domain.LedgerEntry, error) {
	var created domain.Transaction

	err := uc.gateway.WithBudget(ctx, input.BudgetID, func(ctx context.Context, s upstream.Session) error {
		if err := s.Sync(ctx); err != nil {
			return err
		}

		accounts, err := s.Accounts(ctx)
		if err != nil {
			return err
		}
		account, ok := findByName(accounts, input.Account)
		if !ok {
			return domain.NewNotFound("account not found: " + input.Account)
		}

		categories, err := s.Categories(ctx)
		if err != nil {
			return err
		}
		category, ok := findByName(categories, input.Category)
		if !ok {
			return domain.NewNotFound("category not found: " + input.Category)
		}

		payees, err := s.Payees(ctx)
		if err != nil {
			return err
		}
		payee, ok := findByName(payees, input.Payee)
		if !ok {
			payee, err = s.CreatePayee(ctx, input.Payee)
			if err != nil {
				return err
			}
		}

		created, err = s.CreateTransaction(ctx, upstream.TransactionFields{
			AccountID:  account.ID,
			CategoryID: category.ID,
			PayeeID:    payee.ID,
			Date:       input.Date,
			Amount:     amountMinor,
			Notes:      input.Notes,
		})
		if err != nil {
			return err
		}

		// The write already succeeded upstream and its id is known; a failed
		// post-write sync must not fail the request.
		if err := s.Sync(ctx); err != nil {
			uc.logger.Warn().Err(err).Str("budget_id", input.BudgetID).Str("entry_id", created.ID).
				Msg("post-write sync failed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &domain.LedgerEntry{
		ID:       created.ID,
		BudgetID: input.BudgetID,
		Amount:   input.Amount,
		Flow:     input.Flow,
		Date:     input.Date,
		Payee:    input.Payee,
		Category: input.Category,
		Account:  input.Account,
		Notes:    input.Notes,
	}, nil
}

func paginate(txs []domain.Transaction, offset, limit int) []domain.Transaction {
	if offset >= len(txs) {
		return nil
	}
	end := offset + limit
	if end > len(txs) {
		end = len(txs)
	}
	return txs[offset:end]
}

func nameIndex(entities []domain.NamedEntity) map[string]string {
	m := make(map[string]string, len(entities))
	for _, e := range entities {
		if e.ID != "" {
			m[e.ID] = e.Name
		}
	}
	return m
}

func lookupName(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return unknownName
}

func findByName(entities []domain.NamedEntity, name string) (domain.NamedEntity, bool) {
	for _, e := range entities {
		if e.Name == name {
			return e, true
		}
	}
	return domain.NamedEntity{}, false
}
