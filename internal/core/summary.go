package core

import (
	"fmt"
	"strings"
	"time"
)

// MonthLayout is the only accepted format for month keys.
const MonthLayout = "2006-01"

// MonthKey identifies a calendar month, used to group transactions for
// filtering and reporting.
type MonthKey struct {
	Year  int
	Month time.Month
}

// ParseMonthKey parses a strict yyyy-mm month key.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return MonthKey{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return MonthKey{Year: t.Year(), Month: t.Month()}, nil
}

// IsZero reports whether the key is unset.
func (k MonthKey) IsZero() bool {
	return k.Year == 0 && k.Month == 0
}

// String formats the key as yyyy-mm.
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Days returns the number of days in the month, leap years included.
func (k MonthKey) Days() int {
	// Day 0 of the following month normalizes to the last day of this one.
	return time.Date(k.Year, k.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CategoryCount is the number of transactions recorded under one category.
type CategoryCount struct {
	Name  string
	Count int
}
