// Package command turns raw input lines into validated ledger requests.
package command

import (
	"moneytracker/internal/core"
)

// Op identifies the operation a Request asks for.
type Op int

const (
	OpUnknown Op = iota
	OpHelp
	OpAddIncome
	OpAddExpense
	OpAddIncomeCategory
	OpAddExpenseCategory
	OpList
	OpListCategories
	OpDelete
	OpDeleteCategory
	OpEditCategory
	OpReport
	OpClear
	OpExit
)

var opNames = map[Op]string{
	OpUnknown:            "unknown",
	OpHelp:               "help",
	OpAddIncome:          "add_income",
	OpAddExpense:         "add_expense",
	OpAddIncomeCategory:  "add_income_category",
	OpAddExpenseCategory: "add_expense_category",
	OpList:               "list",
	OpListCategories:     "list_categories",
	OpDelete:             "delete",
	OpDeleteCategory:     "delete_category",
	OpEditCategory:       "edit_category",
	OpReport:             "report",
	OpClear:              "clear",
	OpExit:               "exit",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "unknown"
}

// Mutates reports whether the operation changes the ledger when it succeeds.
func (o Op) Mutates() bool {
	switch o {
	case OpAddIncome, OpAddExpense, OpAddIncomeCategory, OpAddExpenseCategory,
		OpDelete, OpDeleteCategory, OpEditCategory, OpClear:
		return true
	}
	return false
}

// Rename carries the editcat arguments, both upper-cased.
type Rename struct {
	Old string
	New string
}

// Request is a fully validated operation. Only the fields relevant to Op are
// set.
type Request struct {
	Op Op

	// Keyword is the first token of the line as typed.
	Keyword string

	Transaction core.Transaction // OpAddIncome, OpAddExpense
	Category    core.Category    // OpAddIncomeCategory, OpAddExpenseCategory
	Index       int              // zero-based; OpDelete, OpDeleteCategory
	Filter      core.Filter      // OpList
	Kind        core.Kind        // OpListCategories; empty lists both kinds
	Rename      Rename           // OpEditCategory
	Month       core.MonthKey    // OpReport

	// Confirmed must be set by the caller before an OpClear is executed.
	Confirmed bool

	// Suggestion is the closest known keyword for an OpUnknown, if any.
	Suggestion string
}

// ValidationError is a recoverable problem with the command line. Message is
// shown to the user as is.
type ValidationError struct {
	Op      Op
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(op Op, msg string) *ValidationError {
	return &ValidationError{Op: op, Message: msg}
}
