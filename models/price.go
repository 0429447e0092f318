package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// PriceScale is the number of fractional digits stored for a price (decimal(10,2)).
const PriceScale = 2

// priceLimit is the first value that no longer fits in decimal(10,2).
var priceLimit = decimal.New(1, 8)

// Exponent bounds, checked before d is ever rescaled.
const (
	minPriceExponent = -18
	maxPriceExponent = 8
)

var (
	ErrNegativePrice  = errors.New("price must not be negative")
	ErrPricePrecision = errors.New("price must have at most 2 decimal places")
	ErrPriceTooLarge  = errors.New("price must have at most 8 digits before the decimal point")
)

// CheckPrice reports whether d can be stored as a product price.
func CheckPrice(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrNegativePrice
	}
	if d.Exponent() < minPriceExponent {
		return ErrPricePrecision
	}
	if d.Exponent() > maxPriceExponent {
		return ErrPriceTooLarge
	}
	if !d.Equal(d.Round(PriceScale)) {
		return ErrPricePrecision
	}
	if d.GreaterThanOrEqual(priceLimit) {
		return ErrPriceTooLarge
	}
	return nil
}
