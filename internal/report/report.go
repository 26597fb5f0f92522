// Package report computes monthly summaries over a transaction list.
package report

import (
	"cmp"
	"slices"

	"moneytracker/internal/core"
)

// Result is the summary of one month. Balance may be negative.
type Result struct {
	Month               core.MonthKey
	DaysInMonth         int
	TotalIncome         core.Money
	TotalExpense        core.Money
	Balance             core.Money
	AverageDailyExpense core.Money

	// Nil when no transaction of that kind falls in the month.
	HighestIncome  *core.Transaction
	HighestExpense *core.Transaction

	IncomeCategories  map[string]int
	ExpenseCategories map[string]int
}

// Monthly aggregates the transactions that fall in month. It returns false
// when txs is empty, which callers report as "no records" rather than as an
// error. A non-empty list without entries for month yields a zero Result.
func Monthly(txs []core.Transaction, month core.MonthKey) (Result, bool) {
	if len(txs) == 0 {
		return Result{}, false
	}

	res := Result{
		Month:             month,
		DaysInMonth:       month.Days(),
		IncomeCategories:  map[string]int{},
		ExpenseCategories: map[string]int{},
	}
	for i := range txs {
		t := &txs[i]
		if t.MonthKey() != month {
			continue
		}
		switch t.Kind {
		case core.Income:
			res.TotalIncome = res.TotalIncome.Add(t.Amount)
			res.HighestIncome = higher(res.HighestIncome, t)
			res.IncomeCategories[t.Category]++
		case core.Expense:
			res.TotalExpense = res.TotalExpense.Add(t.Amount)
			res.HighestExpense = higher(res.HighestExpense, t)
			res.ExpenseCategories[t.Category]++
		}
	}
	res.Balance = res.TotalIncome.Sub(res.TotalExpense)
	// DaysInMonth is always 28..31, so the division cannot fail.
	res.AverageDailyExpense, _ = res.TotalExpense.DivRound(res.DaysInMonth)
	return res, true
}

// higher keeps the current best on ties so the first entry seen wins.
func higher(best, t *core.Transaction) *core.Transaction {
	if best == nil || best.Amount.Cents < t.Amount.Cents {
		c := *t
		return &c
	}
	return best
}

// Ranked returns category counts ordered by count, then name, for stable
// rendering.
func Ranked(freq map[string]int) []core.CategoryCount {
	out := make([]core.CategoryCount, 0, len(freq))
	for name, n := range freq {
		out = append(out, core.CategoryCount{Name: name, Count: n})
	}
	slices.SortFunc(out, func(a, b core.CategoryCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}
