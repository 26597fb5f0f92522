// Package ledger holds the in-memory record store: the ordered transaction
// and category lists a session works on.
//
// A Ledger is not safe for concurrent use. Every command runs to completion
// before the next one starts, so callers never share it across goroutines.
package ledger

import (
	"errors"
	"fmt"
	"slices"

	"moneytracker/internal/core"
)

var (
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrDuplicateCategory = errors.New("duplicate category")
	ErrCategoryNotFound  = errors.New("category not found")
)

type Ledger struct {
	transactions []core.Transaction
	categories   []core.Category
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// FromSnapshot builds a ledger holding copies of the snapshot lists.
func FromSnapshot(s core.Snapshot) *Ledger {
	return &Ledger{
		transactions: slices.Clone(s.Transactions),
		categories:   slices.Clone(s.Categories),
	}
}

// Snapshot returns copies of both lists in their current order.
func (l *Ledger) Snapshot() core.Snapshot {
	return core.Snapshot{
		Transactions: slices.Clone(l.transactions),
		Categories:   slices.Clone(l.categories),
	}
}

// Reset empties both lists.
func (l *Ledger) Reset() {
	l.transactions = nil
	l.categories = nil
}

// Transactions returns a copy of the transaction list.
func (l *Ledger) Transactions() []core.Transaction {
	return slices.Clone(l.transactions)
}

// Categories returns a copy of the category list.
func (l *Ledger) Categories() []core.Category {
	return slices.Clone(l.categories)
}

func (l *Ledger) TransactionCount() int { return len(l.transactions) }

func (l *Ledger) CategoryCount() int { return len(l.categories) }

// HasCategory reports whether a category with this name and kind exists.
func (l *Ledger) HasCategory(name string, kind core.Kind) bool {
	return l.findCategory(name, kind) >= 0
}

func (l *Ledger) findCategory(name string, kind core.Kind) int {
	return slices.IndexFunc(l.categories, func(c core.Category) bool {
		return c.Name == name && c.Kind == kind
	})
}

// AddTransaction appends t. The referenced category must exist with the same
// kind; later removal of that category does not touch t.
func (l *Ledger) AddTransaction(t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if !l.HasCategory(t.Category, t.Kind) {
		return fmt.Errorf("%w: %s %s", ErrUnknownCategory, t.Kind.Noun(), t.Category)
	}
	l.transactions = append(l.transactions, t)
	return nil
}

// RemoveTransaction deletes the transaction at the zero-based index and
// shifts later entries down by one.
func (l *Ledger) RemoveTransaction(index int) (core.Transaction, error) {
	if index < 0 || index >= len(l.transactions) {
		return core.Transaction{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index+1, len(l.transactions))
	}
	removed := l.transactions[index]
	l.transactions = slices.Delete(l.transactions, index, index+1)
	return removed, nil
}

// AddCategory appends c unless a category with the same name and kind exists.
func (l *Ledger) AddCategory(c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if l.HasCategory(c.Name, c.Kind) {
		return fmt.Errorf("%w: %s %s", ErrDuplicateCategory, c.Kind.Noun(), c.Name)
	}
	l.categories = append(l.categories, c)
	return nil
}

// RemoveCategory deletes the category at the zero-based index. Transactions
// recorded under it are kept.
func (l *Ledger) RemoveCategory(index int) (core.Category, error) {
	if index < 0 || index >= len(l.categories) {
		return core.Category{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index+1, len(l.categories))
	}
	removed := l.categories[index]
	l.categories = slices.Delete(l.categories, index, index+1)
	return removed, nil
}

// CategoryNamed returns the first category called name, of either kind, and
// its zero-based position.
func (l *Ledger) CategoryNamed(name string) (core.Category, int, bool) {
	i := slices.IndexFunc(l.categories, func(c core.Category) bool { return c.Name == name })
	if i < 0 {
		return core.Category{}, -1, false
	}
	return l.categories[i], i, true
}

// RenameCategory replaces the name of the first category called oldName,
// keeping its position and kind. It returns the renamed category's
// zero-based position. Transactions keep the old name.
func (l *Ledger) RenameCategory(oldName, newName string) (core.Category, int, error) {
	old, i, ok := l.CategoryNamed(oldName)
	if !ok {
		return core.Category{}, -1, fmt.Errorf("%w: %s", ErrCategoryNotFound, oldName)
	}
	renamed := core.Category{Name: newName, Kind: old.Kind}
	if err := renamed.Validate(); err != nil {
		return core.Category{}, -1, err
	}
	if oldName != newName && l.HasCategory(newName, renamed.Kind) {
		return core.Category{}, -1, fmt.Errorf("%w: %s %s", ErrDuplicateCategory, renamed.Kind.Noun(), newName)
	}
	l.categories[i] = renamed
	return renamed, i, nil
}
