// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and their decimal representation.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotDecimal is returned when an amount is not a decimal number at all,
// as opposed to ErrInvalidAmount for numbers that are out of range.
var ErrNotDecimal = errors.New("amount is not a decimal value")

// MaxAmountCents caps a single amount at 1,000,000,000.00. Month totals are
// summed in int64 cents, so the cap keeps any realistic ledger far from
// overflow.
const MaxAmountCents int64 = 100_000_000_000

// ErrAmountTooLarge is returned for amounts above MaxAmountCents. It wraps
// ErrInvalidAmount.
var ErrAmountTooLarge = fmt.Errorf("%w: larger than %s", ErrInvalidAmount, Money{Cents: MaxAmountCents})

var maxCents = decimal.NewFromInt(MaxAmountCents)

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive cents.
// Returns ErrNotDecimal for unparseable input, ErrInvalidAmount for
// negative or zero amounts and ErrAmountTooLarge above MaxAmountCents.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil (rounds up)
//	ParseDecimalToCents("-5") -> 0, ErrInvalidAmount
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrNotDecimal
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrNotDecimal
	}
	cents := d.Round(2).Shift(2)
	if cents.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	if cents.GreaterThan(maxCents) {
		return 0, ErrAmountTooLarge
	}
	return cents.IntPart(), nil
}

// ParseMoney is ParseDecimalToCents wrapped into a Money value.
func ParseMoney(s string) (Money, error) {
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

// Decimal returns the amount as an exact decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the amount with exactly two decimal places, e.g. "30.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m - o; the result may be negative.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// DivRound divides the amount by n and rounds half-up to whole cents.
func (m Money) DivRound(n int) (Money, error) {
	if n <= 0 {
		return Money{}, fmt.Errorf("divide money by %d", n)
	}
	q := decimal.NewFromInt(m.Cents).Div(decimal.NewFromInt(int64(n))).Round(0)
	return Money{Cents: q.IntPart()}, nil
}
