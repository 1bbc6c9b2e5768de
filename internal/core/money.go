// Package core provides money parsing and handling utilities.
//
// Amounts are held as float64 in the selected currency. Parsing and
// rounding go through shopspring/decimal so user input like "12,30" or
// "0.1" round-trips without binary drift.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input to an amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Empty,
// non-numeric and negative input is rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.IsNegative() {
		return 0, ErrInvalidAmount
	}
	v, _ := d.Float64()
	if err := ValidateAmount(v); err != nil {
		return 0, err
	}
	return v, nil
}

// ParseLimit parses a budget limit. Anything that is not a non-negative
// finite number coerces to 0, the "no limit" sentinel.
func ParseLimit(s string) float64 {
	v, err := ParseAmount(s)
	if err != nil {
		return 0
	}
	return v
}

// ClampLimit coerces NaN, infinities and negative values to 0.
func ClampLimit(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Fixed2 renders v with exactly two decimals, half away from zero.
func Fixed2(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NaN"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}
