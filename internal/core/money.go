// Package core holds the SmartExpense domain model: entities, money
// handling, and the validation rules shared by storage and HTTP layers.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and decimal representations. All arithmetic
// is done on int64 cents; floats never touch stored amounts.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is a fixed-point amount with two fraction digits.
type Money struct {
	Cents int64
}

// Validate rejects non-positive amounts. Transaction and subscription
// amounts are always positive; the sign is implied by the type.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return Validation("invalid amount")
	}
	return nil
}

// Add returns m shifted by delta cents. Account balances may go negative.
func (m Money) Add(delta int64) Money {
	return Money{Cents: m.Cents + delta}
}

// String renders the amount as a plain decimal ("12.34", "-0.05").
func (m Money) String() string {
	return FormatCents(m.Cents)
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third fraction digit. It accepts both dot (12.34) and
// comma (12,34) separators and rejects negative or zero amounts.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.346") -> 1235, nil (rounds up)
func ParseDecimalToCents(s string) (int64, error) {
	cents, err := parseSignedCents(s)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, Validation("invalid amount")
	}
	return cents, nil
}

// ParseBalanceToCents parses a decimal that may carry a sign. Used for
// account opening balances, which may legitimately be negative (credit).
func ParseBalanceToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	cents, err := parseSignedCents(s)
	if err != nil {
		return 0, err
	}
	if neg {
		cents = -cents
	}
	return cents, nil
}

func parseSignedCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, Validation("invalid amount")
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, Validation("invalid amount")
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, Validation("invalid amount")
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, Validation("invalid amount")
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, Validation("invalid amount")
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, Validation("invalid amount")
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, Validation("invalid amount")
	}
	// Take first two fractional digits; half-up rounding on the third
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

// FormatCents renders cents as a scale-2 decimal string without currency
// symbol, suitable for JSON payloads ("350.50", "-12.05").
func FormatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
	if neg {
		return "-" + s
	}
	return s
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
