// Package common — money.go parses the dollar-formatted amount strings
// used by the plan catalog ("$300", "$3.00") into exact decimals.
package common

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a "$"-prefixed amount string to a decimal.
// Returns ErrInvalidReturnAmount for garbage or non-positive values.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, ErrInvalidReturnAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidReturnAmount
	}
	return d, nil
}

// Percent returns pct% of amount, rounded to cents.
func Percent(amount decimal.Decimal, pct int64) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(pct)).Div(decimal.NewFromInt(100)).Round(2)
}
