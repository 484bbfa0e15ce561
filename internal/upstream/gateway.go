package upstream

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/budgetbridge/internal/domain"
	"github.com/iho/budgetbridge/internal/fifo"
	"github.com/iho/budgetbridge/internal/infrastructure/metrics"
)

// Config holds gateway tunables.
type Config struct {
	Password            string
	InitInitialInterval time.Duration
	InitMaxInterval     time.Duration
	InitMaxElapsedTime  time.Duration
}

// Session is the capability surface an operation gets against an open budget.
type Session interface {
	Sync(ctx context.Context) error
	Accounts(ctx context.Context) ([]domain.NamedEntity, error)
	Categories(ctx context.Context) ([]domain.NamedEntity, error)
	Payees(ctx context.Context) ([]domain.NamedEntity, error)
	CreatePayee(ctx context.Context, name string) (domain.NamedEntity, error)
	Transactions(ctx context.Context, accounts []domain.NamedEntity, from, to string) ([]domain.Transaction, error)
	CreateTransaction(ctx context.Context, fields TransactionFields) (domain.Transaction, error)
}

// Gateway serializes all access to the upstream connector through a single
// FIFO tail. The connector holds one mutable open-budget handle, so ordering
// is process-wide rather than per budget.
type Gateway struct {
	conn    Connector
	cfg     Config
	tail    *fifo.Queue
	logger  zerolog.Logger
	metrics *metrics.Metrics

	// initialized is only touched while holding the tail.
	initialized bool
}

// NewGateway creates a gateway over the given connector. metrics may be nil.
func NewGateway(conn Connector, cfg Config, logger zerolog.Logger, m *metrics.Metrics) *Gateway {
	return &Gateway{
		conn:    conn,
		cfg:     cfg,
		tail:    fifo.New(),
		logger:  logger.With().Str("component", "upstream_gateway").Logger(),
		metrics: m,
	}
}

func (g *Gateway) countCall(operation string, err error) {
	if g.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		g.metrics.UpstreamFailures.WithLabelValues(operation).Inc()
	}
	g.metrics.UpstreamCalls.WithLabelValues(operation, outcome).Inc()
}

// ensureInit runs the at-most-once init/login sequence. Must be called while
// holding the tail; tail ordering is what lets concurrent callers share one
// in-flight initialization.
func (g *Gateway) ensureInit(ctx context.Context) error {
	if g.initialized {
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.cfg.InitInitialInterval
	b.MaxInterval = g.cfg.InitMaxInterval
	b.MaxElapsedTime = g.cfg.InitMaxElapsedTime

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		if err := g.conn.Init(ctx); err != nil {
			if errors.Is(err, ErrNotSupported) {
				return backoff.Permanent(err)
			}
			g.logger.Warn().Err(err).Int("attempt", attempt).Msg("upstream init failed, retrying")
			return err
		}
		if err := g.conn.Login(ctx, g.cfg.Password); err != nil {
			if errors.Is(err, ErrNotSupported) {
				return backoff.Permanent(err)
			}
			g.logger.Warn().Err(err).Int("attempt", attempt).Msg("upstream login failed, retrying")
			return err
		}
		return nil
	}, backoff.WithContext(b, ctx))

	g.countCall("init", err)
	if err != nil {
		return domain.NewUpstream("failed to initialize upstream session", err)
	}

	g.initialized = true
	if g.metrics != nil {
		g.metrics.UpstreamInits.Inc()
	}
	g.logger.Info().Msg("upstream session initialized")
	return nil
}

// WithBudget runs fn against a session for the given budget, strictly
// serialized with every other gateway operation. The budget is opened before
// fn and unconditionally closed afterwards; a close failure is logged, not
// propagated.
func (g *Gateway) WithBudget(ctx context.Context, budgetID string, fn func(ctx context.Context, s Session) error) error {
	release, err := g.tail.Acquire(ctx)
	if err != nil {
		return domain.NewUpstream("timed out waiting for upstream session", err)
	}
	defer release()

	if err := g.ensureInit(ctx); err != nil {
		return err
	}

	err = g.conn.DownloadBudget(ctx, budgetID)
	g.countCall("download_budget", err)
	if err != nil {
		return domain.NewUpstream("failed to open budget", err)
	}

	defer func() {
		if cerr := g.conn.CloseBudget(context.WithoutCancel(ctx)); cerr != nil {
			g.logger.Warn().Err(cerr).Str("budget_id", budgetID).Msg("failed to close budget session")
		}
	}()

	return fn(ctx, &session{gw: g})
}

// ListBudgets tries the discovery calls in priority order and returns the
// first non-empty normalized result, else an empty slice. Individual
// discovery failures are logged and skipped.
func (g *Gateway) ListBudgets(ctx context.Context) ([]domain.BudgetSummary, error) {
	release, err := g.tail.Acquire(ctx)
	if err != nil {
		return nil, domain.NewUpstream("timed out waiting for upstream session", err)
	}
	defer release()

	if err := g.ensureInit(ctx); err != nil {
		return nil, err
	}

	if lister, ok := g.conn.(budgetLister); ok {
		recs, err := lister.ListBudgets(ctx)
		g.countCall("list_budgets", err)
		if err != nil {
			g.logger.Warn().Err(err).Msg("budget discovery call failed")
		} else if budgets := normalizeBudgets(recs); len(budgets) > 0 {
			return budgets, nil
		}
	}

	if lister, ok := g.conn.(budgetFileLister); ok {
		recs, err := lister.BudgetFiles(ctx)
		g.countCall("budget_files", err)
		if err != nil {
			g.logger.Warn().Err(err).Msg("legacy budget discovery call failed")
		} else if budgets := normalizeBudgets(recs); len(budgets) > 0 {
			return budgets, nil
		}
	}

	return []domain.BudgetSummary{}, nil
}

// Check probes upstream connectivity by running the init sequence.
func (g *Gateway) Check(ctx context.Context) error {
	release, err := g.tail.Acquire(ctx)
	if err != nil {
		return domain.NewUpstream("timed out waiting for upstream session", err)
	}
	defer release()

	return g.ensureInit(ctx)
}

// Shutdown closes the upstream session.
func (g *Gateway) Shutdown(ctx context.Context) error {
	release, err := g.tail.Acquire(ctx)
	if err != nil {
		return domain.NewUpstream("timed out waiting for upstream session", err)
	}
	defer release()

	if !g.initialized {
		return nil
	}
	g.initialized = false

	err = g.conn.Shutdown(ctx)
	g.countCall("shutdown", err)
	if err != nil {
		return domain.NewUpstream("failed to shut down upstream session", err)
	}
	return nil
}

// session runs operations against the currently open budget. Calls serialize
// on an internal mutex: the connector holds one open-budget handle and its
// drivers are not concurrency-safe.
type session struct {
	gw *Gateway
	mu sync.Mutex
}

func (s *session) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.gw.conn.Sync(ctx)
	s.gw.countCall("sync", err)
	if err != nil {
		return domain.NewUpstream("failed to sync budget", err)
	}
	return nil
}

func (s *session) Accounts(ctx context.Context) ([]domain.NamedEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.gw.conn.Accounts(ctx)
	s.gw.countCall("accounts", err)
	if err != nil {
		return nil, domain.NewUpstream("failed to list accounts", err)
	}
	return normalizeEntities(recs), nil
}

func (s *session) Categories(ctx context.Context) ([]domain.NamedEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.gw.conn.Categories(ctx)
	s.gw.countCall("categories", err)
	if err != nil {
		return nil, domain.NewUpstream("failed to list categories", err)
	}
	return normalizeEntities(recs), nil
}

func (s *session) Payees(ctx context.Context) ([]domain.NamedEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.gw.conn.Payees(ctx)
	s.gw.countCall("payees", err)
	if err != nil {
		return nil, domain.NewUpstream("failed to list payees", err)
	}
	return normalizeEntities(recs), nil
}

func (s *session) CreatePayee(ctx context.Context, name string) (domain.NamedEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.gw.conn.CreatePayee(ctx, name)
	s.gw.countCall("create_payee", err)
	if err != nil {
		return domain.NamedEntity{}, domain.NewUpstream("failed to create payee", err)
	}
	payee, ok := normalizeEntity(rec)
	if !ok {
		payee = domain.NamedEntity{Name: name}
	}
	if payee.Name == "" {
		payee.Name = name
	}
	return payee, nil
}

// Transactions lists transactions for each account in the date range. For
// each account the primary call signature is tried first; on failure it is
// retried once with the alternate signature before the whole listing fails.
func (s *session) Transactions(ctx context.Context, accounts []domain.NamedEntity, from, to string) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []domain.Transaction
	for _, account := range accounts {
		if account.ID == "" {
			continue
		}

		recs, err := s.gw.conn.AccountTransactions(ctx, account.ID, from, to)
		s.gw.countCall("account_transactions", err)
		if err != nil {
			lister, ok := s.gw.conn.(rangeTransactionLister)
			if !ok {
				return nil, domain.NewUpstream("failed to list transactions", err)
			}
			s.gw.logger.Warn().Err(err).Str("account_id", account.ID).
				Msg("primary transaction listing failed, retrying with alternate signature")

			recs, err = lister.TransactionsInRange(ctx, account.ID, from, to)
			s.gw.countCall("transactions_in_range", err)
			if err != nil {
				return nil, domain.NewUpstream("failed to list transactions", err)
			}
		}
		all = append(all, normalizeTransactions(recs)...)
	}
	return all, nil
}

// CreateTransaction tries the create strategies in priority order and accepts
// the first one returning a normalizable record. Exhausting all strategies is
// an upstream failure carrying the last cause.
func (s *session) CreateTransaction(ctx context.Context, fields TransactionFields) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type strategy struct {
		name string
		call func() (Record, error)
	}

	strategies := []strategy{
		{"import_transaction", func() (Record, error) { return s.gw.conn.ImportTransaction(ctx, fields) }},
	}
	if adder, ok := s.gw.conn.(transactionAdder); ok {
		strategies = append(strategies, strategy{"add_transaction", func() (Record, error) {
			return adder.AddTransaction(ctx, fields)
		}})
	}
	if creator, ok := s.gw.conn.(rawTransactionCreator); ok {
		strategies = append(strategies, strategy{"create_transaction_raw", func() (Record, error) {
			return creator.CreateTransactionRaw(ctx, fields)
		}})
	}

	var lastErr error
	for _, st := range strategies {
		rec, err := st.call()
		s.gw.countCall(st.name, err)
		if err != nil {
			lastErr = err
			s.gw.logger.Warn().Err(err).Str("strategy", st.name).
				Msg("transaction create strategy failed, trying next")
			continue
		}
		if tx, ok := normalizeTransaction(rec); ok {
			return tx, nil
		}
		lastErr = errors.New("strategy " + st.name + " returned an unusable record")
	}

	return domain.Transaction{}, domain.NewUpstream("all transaction create strategies failed", lastErr)
}
