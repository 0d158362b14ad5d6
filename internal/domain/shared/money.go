package shared

import "github.com/shopspring/decimal"

// DefaultMoneyEpsilon is the tolerance applied when comparing settled
// amounts against a receivable total, unless a service is configured with
// another one.
func DefaultMoneyEpsilon() decimal.Decimal {
	return decimal.New(1, -2)
}

// RoundMoney rounds an amount to two decimal places
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// IsPositive reports whether d > 0
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(decimal.Zero)
}
