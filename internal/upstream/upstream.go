// Package upstream drives the loosely typed budgeting client behind a narrow
// capability surface. The installed client version decides which calls exist;
// optional capabilities are discovered by type assertion and a missing one is
// reported as ErrNotSupported rather than a crash.
package upstream

import (
	"context"
	"errors"
)

// Record is a loosely typed upstream row. Field names vary by client version.
type Record = map[string]any

// ErrNotSupported is returned by a connector for a capability the installed
// upstream version lacks.
var ErrNotSupported = errors.New("operation not supported by upstream client")

// TransactionFields is the payload for creating a transaction upstream.
// Amount is signed minor units.
type TransactionFields struct {
	AccountID  string
	CategoryID string
	PayeeID    string
	Date       string
	Amount     int64
	Notes      string
}

// Connector is the baseline surface every upstream client driver exposes.
// The connector holds a single mutable "current open budget" handle, so all
// calls into it must be externally serialized.
type Connector interface {
	Init(ctx context.Context) error
	Login(ctx context.Context, password string) error
	Shutdown(ctx context.Context) error

	DownloadBudget(ctx context.Context, id string) error
	CloseBudget(ctx context.Context) error
	Sync(ctx context.Context) error

	Accounts(ctx context.Context) ([]Record, error)
	Categories(ctx context.Context) ([]Record, error)
	Payees(ctx context.Context) ([]Record, error)
	CreatePayee(ctx context.Context, name string) (Record, error)

	AccountTransactions(ctx context.Context, accountID, from, to string) ([]Record, error)
	ImportTransaction(ctx context.Context, fields TransactionFields) (Record, error)
}

// Optional capabilities, newest client surface first.

// budgetLister is the primary budget discovery call.
type budgetLister interface {
	ListBudgets(ctx context.Context) ([]Record, error)
}

// budgetFileLister is the legacy budget discovery call.
type budgetFileLister interface {
	BudgetFiles(ctx context.Context) ([]Record, error)
}

// rangeTransactionLister is the alternate transaction listing signature some
// client versions expose.
type rangeTransactionLister interface {
	TransactionsInRange(ctx context.Context, accountID, from, to string) ([]Record, error)
}

// transactionAdder is the second transaction-create strategy.
type transactionAdder interface {
	AddTransaction(ctx context.Context, fields TransactionFields) (Record, error)
}

// rawTransactionCreator is the last-resort transaction-create strategy.
type rawTransactionCreator interface {
	CreateTransactionRaw(ctx context.Context, fields TransactionFields) (Record, error)
}
