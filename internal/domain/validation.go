package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	DateLayout              = "2006-01-02"
	MaxRangeDays            = 366
	MinLimit                = 1
	MaxLimit                = 500
	DefaultLimit            = 100
	MaxIdempotencyKeyLength = 128
)

var idempotencyKeyRegex = regexp.MustCompile(`^[A-Za-z0-9._:-]+$`)

// ParseDate parses a calendar date in ISO 8601 (YYYY-MM-DD) form.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, NewValidation(
			fmt.Sprintf("%s must be a valid YYYY-MM-DD date", field),
			map[string]any{"field": field, "value": value},
		)
	}
	return t, nil
}

// ValidateDateRange checks that from <= to and the inclusive span does not
// exceed MaxRangeDays.
func ValidateDateRange(from, to string) error {
	fromT, err := ParseDate("from", from)
	if err != nil {
		return err
	}
	toT, err := ParseDate("to", to)
	if err != nil {
		return err
	}
	if fromT.After(toT) {
		return NewValidation("from must not be after to", map[string]any{"from": from, "to": to})
	}
	if toT.Sub(fromT) > MaxRangeDays*24*time.Hour {
		return NewValidation(
			fmt.Sprintf("date range must not exceed %d days", MaxRangeDays),
			map[string]any{"from": from, "to": to},
		)
	}
	return nil
}

// ParseFlow parses a flow filter. Empty input defaults to FlowAll.
func ParseFlow(value string) (Flow, error) {
	switch Flow(value) {
	case "":
		return FlowAll, nil
	case FlowAll, FlowIncome, FlowExpense:
		return Flow(value), nil
	default:
		return "", NewValidation(
			"flow must be one of all, income, expense",
			map[string]any{"field": "flow", "value": value},
		)
	}
}

// ValidateFlowDirection checks a write-side flow, which must be a concrete
// direction rather than a filter.
func ValidateFlowDirection(value string) (Flow, error) {
	switch Flow(value) {
	case FlowIncome, FlowExpense:
		return Flow(value), nil
	default:
		return "", NewValidation(
			"flow must be income or expense",
			map[string]any{"field": "flow", "value": value},
		)
	}
}

// ValidateAmount checks a write-side amount, which must be strictly positive.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return NewValidation("amount must be positive", map[string]any{"field": "amount"})
	}
	return nil
}

// ValidateIdempotencyKey checks the client-supplied idempotency key format.
func ValidateIdempotencyKey(key string) error {
	if len(key) > MaxIdempotencyKeyLength {
		return NewValidation(
			fmt.Sprintf("idempotency key must not exceed %d characters", MaxIdempotencyKeyLength),
			map[string]any{"field": "Idempotency-Key"},
		)
	}
	if !idempotencyKeyRegex.MatchString(key) {
		return NewValidation(
			"idempotency key contains invalid characters",
			map[string]any{"field": "Idempotency-Key"},
		)
	}
	return nil
}

// ValidatePagination checks limit/offset bounds.
func ValidatePagination(limit, offset int) error {
	if limit < MinLimit || limit > MaxLimit {
		return NewValidation(
			fmt.Sprintf("limit must be between %d and %d", MinLimit, MaxLimit),
			map[string]any{"field": "limit", "value": limit},
		)
	}
	if offset < 0 {
		return NewValidation("offset must not be negative", map[string]any{"field": "offset", "value": offset})
	}
	return nil
}
