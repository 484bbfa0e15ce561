package upstream

import (
	"encoding/json"
	"strconv"

	"github.com/iho/budgetbridge/internal/domain"
)

// Field priority for ids and names. First non-empty match wins.
var (
	idFields   = []string{"id", "uuid", "account", "category", "payee"}
	nameFields = []string{"name", "fileName", "groupName"}
)

func stringField(rec Record, keys ...string) string {
	for _, k := range keys {
		if s, ok := rec[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// normalizeEntity maps a loose upstream row to a NamedEntity. Rows with
// neither a usable id nor name are dropped.
func normalizeEntity(rec Record) (domain.NamedEntity, bool) {
	e := domain.NamedEntity{
		ID:   stringField(rec, idFields...),
		Name: stringField(rec, nameFields...),
	}
	if e.ID == "" && e.Name == "" {
		return domain.NamedEntity{}, false
	}
	return e, true
}

func normalizeEntities(recs []Record) []domain.NamedEntity {
	out := make([]domain.NamedEntity, 0, len(recs))
	for _, rec := range recs {
		if e, ok := normalizeEntity(rec); ok {
			out = append(out, e)
		}
	}
	return out
}

func normalizeBudgets(recs []Record) []domain.BudgetSummary {
	out := make([]domain.BudgetSummary, 0, len(recs))
	for _, rec := range recs {
		e, ok := normalizeEntity(rec)
		if !ok {
			continue
		}
		out = append(out, domain.BudgetSummary{ID: e.ID, Name: e.Name})
	}
	return out
}

// amountValue coerces the several numeric shapes upstream clients emit for
// minor-unit amounts.
func amountValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// normalizeTransaction maps a loose upstream transaction row. Rows without an
// id or without a parseable amount are dropped.
func normalizeTransaction(rec Record) (domain.Transaction, bool) {
	id := stringField(rec, "id", "uuid")
	if id == "" {
		return domain.Transaction{}, false
	}
	amount, ok := amountValue(rec["amount"])
	if !ok {
		return domain.Transaction{}, false
	}
	return domain.Transaction{
		ID:         id,
		AccountID:  stringField(rec, "account"),
		CategoryID: stringField(rec, "category"),
		PayeeID:    stringField(rec, "payee"),
		Date:       stringField(rec, "date"),
		Amount:     amount,
		Notes:      stringField(rec, "notes"),
	}, true
}

func normalizeTransactions(recs []Record) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(recs))
	for _, rec := range recs {
		if tx, ok := normalizeTransaction(rec); ok {
			out = append(out, tx)
		}
	}
	return out
}
