package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  Kind = "INCOME"
	Expense Kind = "EXPENSE"
)

// DateLayout is the only accepted format for transaction dates.
const DateLayout = "2006-01-02"

type (
	// Kind discriminates incomes from expenses. The zero value matches any kind
	// when used in a Filter.
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Category struct {
		Name string
		Kind Kind
	}

	Transaction struct {
		Kind        Kind
		Amount      Money
		Description string
		Date        Date
		Category    string // normalized category name
	}

	// Snapshot is the full persisted state of a ledger, in list order.
	Snapshot struct {
		Transactions []Transaction
		Categories   []Category
	}

	// Filter selects records by kind and month. Zero fields match everything.
	Filter struct {
		Kind  Kind
		Month MonthKey
	}
)

var (
	ErrInvalidKind   = errors.New("invalid kind")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptyName     = errors.New("empty category name")
	ErrLowercaseName = errors.New("category name must be upper-case")
)

// ParseKind accepts the persisted spelling of a kind, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToUpper(strings.TrimSpace(s))); k {
	case Income, Expense:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

func (k Kind) Validate() error {
	if k != Income && k != Expense {
		return fmt.Errorf("%w: %q", ErrInvalidKind, string(k))
	}
	return nil
}

// Short returns the single-letter tag used when rendering records.
func (k Kind) Short() string {
	if k == Income {
		return "I"
	}
	return "E"
}

// Noun is the lower-case word used in user-facing messages.
func (k Kind) Noun() string {
	return strings.ToLower(string(k))
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a strict yyyy-mm-dd date. Out of range days such as
// 2021-02-30 are rejected.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// String formats the date as yyyy-mm-dd.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MonthKey returns the year-month bucket the date belongs to.
func (d Date) MonthKey() MonthKey {
	return MonthKey{Year: d.Year(), Month: d.Time.Month()}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	if m.Cents > MaxAmountCents {
		return ErrAmountTooLarge
	}
	return nil
}

func (c Category) Validate() error {
	if err := c.Kind.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.Name != strings.ToUpper(c.Name) {
		return ErrLowercaseName
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// MonthKey is shorthand for t.Date.MonthKey().
func (t Transaction) MonthKey() MonthKey {
	return t.Date.MonthKey()
}

// Matches reports whether t satisfies every non-zero field of f.
func (f Filter) Matches(t Transaction) bool {
	if f.Kind != "" && t.Kind != f.Kind {
		return false
	}
	if !f.Month.IsZero() && t.MonthKey() != f.Month {
		return false
	}
	return true
}

// Validate checks every record of the snapshot.
func (s Snapshot) Validate() error {
	for i, c := range s.Categories {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("category %d: %w", i+1, err)
		}
	}
	for i, t := range s.Transactions {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("transaction %d: %w", i+1, err)
		}
	}
	return nil
}
