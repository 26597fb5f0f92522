package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneytracker/internal/core"
)

func TestListTransactionsPredicates(t *testing.T) {
	l := seeded(t)
	require.NoError(t, l.AddTransaction(income(10000, 1, "SALARY")))
	require.NoError(t, l.AddTransaction(expense(4000, 9, 10, "FOOD")))
	require.NoError(t, l.AddTransaction(expense(1500, 10, 3, "FOOD")))
	require.NoError(t, l.AddTransaction(income(5000, 15, "BONUS")))
	require.NoError(t, l.AddTransaction(expense(700, 10, 20, "FOOD")))

	sep := core.MonthKey{Year: 2020, Month: time.September}
	oct := core.MonthKey{Year: 2020, Month: time.October}

	cases := []struct {
		name string
		f    core.Filter
		want []int
	}{
		{"all", core.Filter{}, []int{1, 2, 3, 4, 5}},
		{"expense only", core.Filter{Kind: core.Expense}, []int{2, 3, 5}},
		{"income only", core.Filter{Kind: core.Income}, []int{1, 4}},
		{"month only", core.Filter{Month: oct}, []int{3, 5}},
		{"income by month", core.Filter{Kind: core.Income, Month: sep}, []int{1, 4}},
		{"expense by month", core.Filter{Kind: core.Expense, Month: sep}, []int{2}},
		{"no match", core.Filter{Kind: core.Income, Month: oct}, []int{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := l.ListTransactions(tc.f)
			assert.Equal(t, tc.want, v.Positions())
			for _, e := range v {
				assert.Equal(t, l.Transactions()[e.Position-1], e.Item)
			}
		})
	}
}

func TestListIsIdempotent(t *testing.T) {
	l := seeded(t)
	require.NoError(t, l.AddTransaction(income(100, 1, "SALARY")))
	require.NoError(t, l.AddTransaction(expense(200, 9, 2, "FOOD")))

	f := core.Filter{Kind: core.Expense}
	first := l.ListTransactions(f)
	second := l.ListTransactions(f)
	assert.Equal(t, first, second)
	assert.Equal(t, l.ListCategories(""), l.ListCategories(""))
}

func TestListEmptyLedger(t *testing.T) {
	l := New()
	v := l.ListTransactions(core.Filter{})
	assert.True(t, v.Empty())
	assert.NotNil(t, v)
	assert.True(t, l.ListCategories(core.Income).Empty())
}

func TestListCategoriesByKind(t *testing.T) {
	l := seeded(t)
	assert.Equal(t, []int{1, 2, 3}, l.ListCategories("").Positions())
	assert.Equal(t, []int{1, 3}, l.ListCategories(core.Income).Positions())
	assert.Equal(t, []int{2}, l.ListCategories(core.Expense).Positions())
}

func TestSelectNilPredicate(t *testing.T) {
	v := Select([]string{"a", "b"}, nil)
	assert.Equal(t, View[string]{{Position: 1, Item: "a"}, {Position: 2, Item: "b"}}, v)
}
