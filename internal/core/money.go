// Package core provides money parsing and handling utilities.
//
// This file contains the amount parser used by every entry point that accepts
// user-typed numbers, so malformed values are rejected before reaching a store.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a non-negative decimal amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs,
// exponents, thousands separators and non-numeric input are rejected with
// ErrInvalidAmount.
//
// Examples:
//	ParseAmount("12.50") -> 12.5, nil
//	ParseAmount("12,50") -> 12.5, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
//	ParseAmount("NaN")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if s == "." {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Sum adds the amounts of the given records.
func Sum(ts []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range ts {
		total = total.Add(t.Amount)
	}
	return total
}
