// Package types provides common type aliases and coercion rules for catalog values.
package types

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NullMoney is a Money that may be absent (an empty price field in the catalog).
type NullMoney = decimal.NullDecimal

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// ParseNullMoney converts a raw catalog price into NullMoney.
// Nil, empty and non-numeric values are treated as absent.
func ParseNullMoney(raw *string) NullMoney {
	if raw == nil {
		return NullMoney{}
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return NullMoney{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return NullMoney{}
	}
	return NullMoney{Decimal: d, Valid: true}
}

// StockQuantityFromInt coerces a stored stock value to an int. Absent stock is 0;
// values outside the int32 range are clamped.
func StockQuantityFromInt(v *int64) int {
	if v == nil {
		return 0
	}
	return clampInt(*v)
}

func clampInt(n int64) int {
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	if n < math.MinInt32 {
		return math.MinInt32
	}
	return int(n)
}
