package google

import (
	"errors"
	"fmt"
	"strings"

	"moneytracker/internal/core"
)

var (
	transactionHeader = []any{"Kind", "Amount", "Date", "Category", "Description"}
	categoryHeader    = []any{"Kind", "Name"}
)

// firstDataRow is the sheet row number of the first record; row 1 is the
// header.
const firstDataRow = 2

var ErrBadRow = errors.New("bad row")

func transactionRows(txs []core.Transaction) [][]any {
	rows := make([][]any, 0, len(txs)+1)
	rows = append(rows, transactionHeader)
	for _, t := range txs {
		rows = append(rows, []any{string(t.Kind), t.Amount.String(), t.Date.String(), t.Category, t.Description})
	}
	return rows
}

func categoryRows(cats []core.Category) [][]any {
	rows := make([][]any, 0, len(cats)+1)
	rows = append(rows, categoryHeader)
	for _, c := range cats {
		rows = append(rows, []any{string(c.Kind), c.Name})
	}
	return rows
}

// parseTransactionRows converts the data rows (header excluded) returned by
// the Sheets API. The API omits trailing empty cells, so short rows are
// padded. Fully blank rows are skipped.
func parseTransactionRows(values [][]any) ([]core.Transaction, error) {
	var out []core.Transaction
	for i, row := range values {
		cols := toStrings(row)
		if blank(cols) {
			continue
		}
		t, err := parseTransaction(cols)
		if err != nil {
			return nil, fmt.Errorf("%w %d: %w", ErrBadRow, i+firstDataRow, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func parseTransaction(cols []string) (core.Transaction, error) {
	kind, err := core.ParseKind(safeGet(cols, 0))
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseMoney(safeGet(cols, 1))
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(safeGet(cols, 2))
	if err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{
		Kind:        kind,
		Amount:      amount,
		Date:        date,
		Category:    safeGet(cols, 3),
		Description: safeGet(cols, 4),
	}
	return t, t.Validate()
}

func parseCategoryRows(values [][]any) ([]core.Category, error) {
	var out []core.Category
	for i, row := range values {
		cols := toStrings(row)
		if blank(cols) {
			continue
		}
		kind, err := core.ParseKind(safeGet(cols, 0))
		if err != nil {
			return nil, fmt.Errorf("%w %d: %w", ErrBadRow, i+firstDataRow, err)
		}
		c := core.Category{Kind: kind, Name: safeGet(cols, 1)}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("%w %d: %w", ErrBadRow, i+firstDataRow, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func blank(cols []string) bool {
	for _, c := range cols {
		if c != "" {
			return false
		}
	}
	return true
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
