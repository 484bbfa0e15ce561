package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a positive external amount and flow into the signed
// minor-unit integer the upstream stores. The amount is rounded to cents.
func ToMinorUnits(amount decimal.Decimal, flow Flow) int64 {
	cents := amount.Mul(hundred).Round(0).IntPart()
	if flow == FlowExpense {
		return -cents
	}
	return cents
}

// FromMinorUnits converts a signed minor-unit amount back to the external
// (positive amount, flow) pair, fixed at two decimal places.
func FromMinorUnits(v int64) (decimal.Decimal, Flow) {
	flow := FlowIncome
	if v < 0 {
		flow = FlowExpense
		v = -v
	}
	return decimal.New(v, -2), flow
}

// MatchesFlow reports whether a signed minor-unit amount belongs to the given
// flow filter. FlowAll matches everything; expenses are strictly negative.
func MatchesFlow(v int64, flow Flow) bool {
	switch flow {
	case FlowExpense:
		return v < 0
	case FlowIncome:
		return v >= 0
	default:
		return true
	}
}
