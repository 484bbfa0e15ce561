package upstream_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/budgetbridge/internal/domain"
	"github.com/iho/budgetbridge/internal/upstream"
)

// fakeConnector is a scriptable upstream client driver.
type fakeConnector struct {
	mu    sync.Mutex
	calls []string

	initFailures int
	loginErr     error
	downloadErr  error
	closeErr     error
	syncErr      error

	accounts   []upstream.Record
	categories []upstream.Record
	payees     []upstream.Record

	txByAccount map[string][]upstream.Record
	txErr       error

	importRec upstream.Record
	importErr error
}

func (f *fakeConnector) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeConnector) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeConnector) Init(ctx context.Context) error {
	f.record("init")
	if f.initFailures > 0 {
		f.initFailures--
		return errors.New("connection refused")
	}
	return nil
}

func (f *fakeConnector) Login(ctx context.Context, password string) error {
	f.record("login")
	return f.loginErr
}

func (f *fakeConnector) Shutdown(ctx context.Context) error {
	f.record("shutdown")
	return nil
}

func (f *fakeConnector) DownloadBudget(ctx context.Context, id string) error {
	f.record("download:" + id)
	return f.downloadErr
}

func (f *fakeConnector) CloseBudget(ctx context.Context) error {
	f.record("close")
	return f.closeErr
}

func (f *fakeConnector) Sync(ctx context.Context) error {
	f.record("sync")
	return f.syncErr
}

func (f *fakeConnector) Accounts(ctx context.Context) ([]upstream.Record, error) {
	f.record("accounts")
	return f.accounts, nil
}

func (f *fakeConnector) Categories(ctx context.Context) ([]upstream.Record, error) {
	f.record("categories")
	return f.categories, nil
}

func (f *fakeConnector) Payees(ctx context.Context) ([]upstream.Record, error) {
	f.record("payees")
	return f.payees, nil
}

func (f *fakeConnector) CreatePayee(ctx context.Context, name string) (upstream.Record, error) {
	f.record("create_payee:" + name)
	return upstream.Record{"id": "p-new", "name": name}, nil
}

func (f *fakeConnector) AccountTransactions(ctx context.Context, accountID, from, to string) ([]upstream.Record, error) {
	f.record("transactions:" + accountID)
	if f.txErr != nil {
		return nil, f.txErr
	}
	return f.txByAccount[accountID], nil
}

func (f *fakeConnector) ImportTransaction(ctx context.Context, fields upstream.TransactionFields) (upstream.Record, error) {
	f.record("import_transaction")
	if f.importErr != nil {
		return nil, f.importErr
	}
	return f.importRec, nil
}

// fakeWithDiscovery adds both budget discovery capabilities.
type fakeWithDiscovery struct {
	*fakeConnector
	listBudgets []upstream.Record
	listErr     error
	budgetFiles []upstream.Record
	filesErr    error
}

func (f *fakeWithDiscovery) ListBudgets(ctx context.Context) ([]upstream.Record, error) {
	f.record("list_budgets")
	return f.listBudgets, f.listErr
}

func (f *fakeWithDiscovery) BudgetFiles(ctx context.Context) ([]upstream.Record, error) {
	f.record("budget_files")
	return f.budgetFiles, f.filesErr
}

// fakeWithRangeLister adds the alternate transaction listing signature.
type fakeWithRangeLister struct {
	*fakeConnector
	rangeTx  []upstream.Record
	rangeErr error
}

func (f *fakeWithRangeLister) TransactionsInRange(ctx context.Context, accountID, from, to string) ([]upstream.Record, error) {
	f.record("transactions_in_range:" + accountID)
	return f.rangeTx, f.rangeErr
}

// fakeWithAdder adds the second create strategy.
type fakeWithAdder struct {
	*fakeConnector
	addRec upstream.Record
	addErr error
}

func (f *fakeWithAdder) AddTransaction(ctx context.Context, fields upstream.TransactionFields) (upstream.Record, error) {
	f.record("add_transaction")
	return f.addRec, f.addErr
}

func testConfig() upstream.Config {
	return upstream.Config{
		Password:            "secret",
		InitInitialInterval: time.Millisecond,
		InitMaxInterval:     5 * time.Millisecond,
		InitMaxElapsedTime:  time.Second,
	}
}

func newGateway(conn upstream.Connector) *upstream.Gateway {
	return upstream.NewGateway(conn, testConfig(), zerolog.Nop(), nil)
}

func TestWithBudget_OpensRunsCloses(t *testing.T) {
	conn := &fakeConnector{}
	gw := newGateway(conn)

	err := gw.WithBudget(context.Background(), "b-1", func(ctx context.Context, s upstream.Session) error {
		return s.Sync(ctx)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"init", "login", "download:b-1", "sync", "close"}, conn.callLog())
}

func TestWithBudget_InitHappensOnce(t *testing.T) {
	conn := &fakeConnector{}
	gw := newGateway(conn)

	for i := 0; i < 3; i++ {
		err := gw.WithBudget(context.Background(), "b-1", func(ctx context.Context, s upstream.Session) error {
			return nil
		})
		require.NoError(t, err)
	}

	inits := 0
	for _, c := range conn.callLog() {
		if c == "init" {
			inits++
		}
	}
	assert.Equal(t, 1, inits)
}

func TestWithBudget_InitRetriesWithBackoff(t *testing.T) {
	conn := &fakeConnector{initFailures: 2}
	gw := newGateway(conn)

	err := gw.WithBudget(context.Background(), "b-1", func(ctx context.Context, s upstream.Session) error {
		return nil
	})
	require.NoError(t, err)

	inits := 0
	for _, c := range conn.callLog() {
		if c == "init" {
			inits++
		}
	}
	assert.Equal(t, 3, inits)
}

func TestWithBudget_CloseFailureNotPropagated(t *testing.T) {
	conn := &fakeConnector{closeErr: errors.New("close failed")}
	gw := newGateway(conn)

	err := gw.WithBudget(context.Background(), "b-1", func(ctx context.Context, s upstream.Session) error {
		return nil
	})
	assert.NoError(t, err)
}

func TestWithBudget_OpenFailureIsUpstream(t *testing.T) {
	conn := &fakeConnector{downloadErr: errors.New("no such budget file")}
	gw := newGateway(conn)

	err := gw.WithBudget(context.Background(), "b-1", func(ctx context.Context, s upstream.Session) error {
		t.Fatal("operation must not run when open fails")
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeUpstream, domain.AsError(err).Code)
}

func TestWithBudget_SerializesOperations(t *testing.T) {
	conn := &fakeConnector{}
	gw := newGateway(conn)

	var mu sync.Mutex
	inside, maxInside := 0, 0

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := gw.WithBudget(context.Background(), "b-1", func(ctx context.Context, s upstream.Session) error {
				mu.Lock()
				inside++
				if inside > maxInside {
					maxInside = inside
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside, "gateway operations must be totally ordered")
}

func TestListBudgets_FallsBackToLegacyDiscovery(t *testing.T) {
	conn := &fakeWithDiscovery{
		fakeConnector: &fakeConnector{},
		listErr:       errors.New("not available in this version"),
		budgetFiles:   []upstream.Record{{"id": "b-1", "fileName": "Household"}},
	}
	gw := newGateway(conn)

	budgets, err := gw.ListBudgets(context.Background())
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, "b-1", budgets[0].ID)
	assert.Equal(t, "Household", budgets[0].Name)
}

func TestListBudgets_EmptyWhenNothingDiscovered(t *testing.T) {
	conn := &fakeWithDiscovery{fakeConnector: &fakeConnector{}}
	gw := newGateway(conn)

	budgets, err := gw.ListBudgets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, budgets)
}

func TestListBudgets_NoDiscoveryCapability(t *testing.T) {
	gw := newGateway(&fakeConnector{})

	budgets, err := gw.ListBudgets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, budgets)
}

func TestTransactions_RetriesAlternateSignature(t *testing.T) {
	conn := &fakeWithRangeLister{
		fakeConnector: &fakeConnector{txErr: errors.New("bad signature")},
		rangeTx:       []upstream.Record{{"id": "t-1", "amount": float64(-500)}},
	}
	gw := newGateway(conn)

	var got []domain.Transaction
	err := gw.WithBudget(context.Background(), "b-1", func(ctx context.Context, s upstream.Session) error {
		var err error
		got, err = s.Transactions(ctx, []domain.NamedEntity{{ID: "a-1", Name: "Checking"}}, "2024-01-01", "2024-01-31")
		return err
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t-1", got[0].ID)
}

func TestTransactions_BothSignaturesFailing(t *testing.T) {
	conn := &fakeWithRangeLister{
		fakeConnector: &fakeConnector{txErr: errors.New("bad signature")},
		rangeErr:      errors.New("also broken"),
	}
	gw := newGateway(conn)

	err := gw.WithBudget(context.Background(), "b-1", func(ctx context.Context, s upstream.Session) error {
		_, err := s.Transactions(ctx, []domain.NamedEntity{{ID: "a-1"}}, "2024-01-01", "2024-01-31")
		return err
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeUpstream, domain.AsError(err).Code)
}

func TestCreateTransaction_FallsThroughStrategies(t *testing.T) {
	conn := &fakeWithAdder{
		fakeConnector: &fakeConnector{importErr: upstream.ErrNotSupported},
		addRec:        upstream.Record{"id": "t-9", "amount": int64(-1234)},
	}
	gw := newGateway(conn)

	var got domain.Transaction
	err := gw.WithBudget(context.Background(), "b-1", func(ctx context.Context, s upstream.Session) error {
		var err error
		got, err = s.CreateTransaction(ctx, upstream.TransactionFields{AccountID: "a-1", Amount: -1234})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "t-9", got.ID)

	calls := conn.callLog()
	assert.Contains(t, calls, "import_transaction")
	assert.Contains(t, calls, "add_transaction")
}

func TestCreateTransaction_AllStrategiesExhausted(t *testing.T) {
	conn := &fakeWithAdder{
		fakeConnector: &fakeConnector{importErr: errors.New("import broken")},
		addErr:        errors.New("add broken"),
	}
	gw := newGateway(conn)

	err := gw.WithBudget(context.Background(), "b-1", func(ctx context.Context, s upstream.Session) error {
		_, err := s.CreateTransaction(ctx, upstream.TransactionFields{AccountID: "a-1", Amount: 1})
		return err
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeUpstream, domain.AsError(err).Code)
}

func TestShutdown_ResetsInitialization(t *testing.T) {
	conn := &fakeConnector{}
	gw := newGateway(conn)

	require.NoError(t, gw.Check(context.Background()))
	require.NoError(t, gw.Shutdown(context.Background()))
	require.NoError(t, gw.Check(context.Background()))

	inits := 0
	for _, c := range conn.callLog() {
		if c == "init" {
			inits++
		}
	}
	assert.Equal(t, 2, inits)
}
