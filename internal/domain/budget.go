package domain

import "github.com/shopspring/decimal"

// Flow is the direction of a ledger entry. Externally it is a separate field;
// upstream encodes it as the sign of a minor-unit amount.
type Flow string

const (
	FlowIncome  Flow = "income"
	FlowExpense Flow = "expense"
	FlowAll     Flow = "all"
)

// BudgetSummary identifies a budget visible through the bridge.
type BudgetSummary struct {
	ID   string
	Name string
}

// NamedEntity is an upstream account, category or payee resolved by name.
type NamedEntity struct {
	ID   string
	Name string
}

// LedgerEntry is the external representation of a transaction.
type LedgerEntry struct {
	ID       string
	BudgetID string
	Amount   decimal.Decimal
	Flow     Flow
	Date     string
	Payee    string
	Category string
	Account  string
	Notes    string
}

// Transaction is a normalized upstream transaction row. Amount is signed
// minor units (expense negative, income non-negative).
type Transaction struct {
	ID         string
	AccountID  string
	CategoryID string
	PayeeID    string
	Date       string
	Amount     int64
	Notes      string
}
