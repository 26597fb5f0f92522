package ledger

import "moneytracker/internal/core"

// Entry pairs a record with its 1-based position in the underlying list,
// the number users pass to delete and deletecat.
type Entry[T any] struct {
	Position int
	Item     T
}

// View is the result of one list request. It is computed fresh on every call
// and never updated in place.
type View[T any] []Entry[T]

// Empty reports whether nothing matched.
func (v View[T]) Empty() bool { return len(v) == 0 }

// Positions returns the 1-based positions in view order.
func (v View[T]) Positions() []int {
	out := make([]int, len(v))
	for i, e := range v {
		out[i] = e.Position
	}
	return out
}

// Select scans items once, in order, keeping those that satisfy keep.
// A nil keep selects everything.
func Select[T any](items []T, keep func(T) bool) View[T] {
	if len(items) == 0 {
		return View[T]{}
	}
	out := make(View[T], 0, len(items))
	for i, it := range items {
		if keep == nil || keep(it) {
			out = append(out, Entry[T]{Position: i + 1, Item: it})
		}
	}
	return out
}

// ListTransactions returns the transactions matching f.
func (l *Ledger) ListTransactions(f core.Filter) View[core.Transaction] {
	return Select(l.transactions, f.Matches)
}

// ListCategories returns the categories of the given kind, or all of them
// when kind is empty.
func (l *Ledger) ListCategories(kind core.Kind) View[core.Category] {
	return Select(l.categories, func(c core.Category) bool {
		return kind == "" || c.Kind == kind
	})
}
