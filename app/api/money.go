package api

import "github.com/shopspring/decimal"

// Money renders an amount with exactly two fractional digits.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// OptionalMoney renders an absent amount as JSON null.
func OptionalMoney(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := Money(*d)
	return &s
}
