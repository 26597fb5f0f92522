package command

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"moneytracker/internal/core"
)

const (
	paramSeparator = "/"
	editSeparator  = "/n"
)

var keywords = map[string]Op{
	"help":      OpHelp,
	"addi":      OpAddIncome,
	"adde":      OpAddExpense,
	"addcati":   OpAddIncomeCategory,
	"addcate":   OpAddExpenseCategory,
	"list":      OpList,
	"listcat":   OpListCategories,
	"delete":    OpDelete,
	"deletecat": OpDeleteCategory,
	"editcat":   OpEditCategory,
	"report":    OpReport,
	"clear":     OpClear,
	"exit":      OpExit,
}

// Keywords returns the recognised command keywords in alphabetical order.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Interpreter parses command lines. The zero value is not usable; build one
// with NewInterpreter.
type Interpreter struct {
	now func() time.Time
}

type Option func(*Interpreter)

// WithClock sets the clock used to date transactions entered without /d.
func WithClock(now func() time.Time) Option {
	return func(in *Interpreter) {
		in.now = now
	}
}

func NewInterpreter(opts ...Option) *Interpreter {
	in := &Interpreter{now: time.Now}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Interpret resolves line into a Request. Every error it returns is a
// *ValidationError; unknown keywords are not errors.
func (in *Interpreter) Interpret(line string) (Request, error) {
	keyword, rest := splitKeyword(line)
	op, ok := keywords[strings.ToLower(keyword)]
	if !ok {
		return Request{Op: OpUnknown, Keyword: keyword, Suggestion: Suggest(keyword)}, nil
	}

	req := Request{Op: op, Keyword: keyword}
	var err error
	switch op {
	case OpAddIncome:
		req.Transaction, err = in.parseTransaction(op, core.Income, rest)
	case OpAddExpense:
		req.Transaction, err = in.parseTransaction(op, core.Expense, rest)
	case OpAddIncomeCategory:
		req.Category, err = parseCategory(op, core.Income, rest)
	case OpAddExpenseCategory:
		req.Category, err = parseCategory(op, core.Expense, rest)
	case OpDelete, OpDeleteCategory:
		req.Index, err = parseIndex(op, rest)
	case OpEditCategory:
		req.Rename, err = parseRename(rest)
	case OpReport:
		req.Month, err = parseReportMonth(rest)
	case OpList:
		req.Filter, err = parseListFilter(rest)
	case OpListCategories:
		req.Kind, err = parseCategoryKind(rest)
	}
	if err != nil {
		return Request{}, err
	}
	return req, nil
}

// ParseConfirmation reads the answer to the clear prompt.
func ParseConfirmation(answer string) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(answer)) {
	case "Y":
		return true, nil
	case "N":
		return false, nil
	}
	return false, invalid(OpClear, `Sorry, please enter "Y" or "N" only`)
}

func splitKeyword(line string) (string, string) {
	line = strings.TrimSpace(line)
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}

// parseParams splits "a30.50 /cFOOD /eLunch" into single-letter fields.
// Unknown prefixes are ignored and later duplicates win.
func parseParams(s string) map[byte]string {
	params := make(map[byte]string, 4)
	for _, tok := range strings.Split(s, paramSeparator) {
		tok = strings.TrimLeftFunc(tok, unicode.IsSpace)
		if tok == "" {
			continue
		}
		value := strings.TrimSpace(tok[1:])
		switch key := tok[0]; key {
		case 'c':
			params[key] = strings.ToUpper(value)
		case 'a', 'd', 'e':
			params[key] = value
		}
	}
	return params
}

func (in *Interpreter) parseTransaction(op Op, kind core.Kind, rest string) (core.Transaction, error) {
	if rest == "" {
		return core.Transaction{}, invalid(op, "The parameters of the command are missing.")
	}
	params := parseParams(rest)

	amount := params['a']
	if amount == "" {
		return core.Transaction{}, invalid(op, "The amount parameter is missing.")
	}
	category := params['c']
	if category == "" {
		return core.Transaction{}, invalid(op, fmt.Sprintf("The %s category parameter is missing.", kind.Noun()))
	}
	money, err := core.ParseMoney(amount)
	if errors.Is(err, core.ErrNotDecimal) {
		return core.Transaction{}, invalid(op, "The amount must be a decimal value. E.g. 30.50")
	}
	if errors.Is(err, core.ErrAmountTooLarge) {
		return core.Transaction{}, invalid(op, fmt.Sprintf("The amount must not exceed %s.", core.Money{Cents: core.MaxAmountCents}))
	}
	if err != nil {
		return core.Transaction{}, invalid(op, "The amount must be greater than zero.")
	}

	date := core.DateOf(in.now())
	if raw, ok := params['d']; ok {
		date, err = core.ParseDate(raw)
		if err != nil {
			return core.Transaction{}, invalid(op, "Date should be in yyyy-MM-dd format. E.g. 2020-12-25")
		}
	}

	return core.Transaction{
		Kind:        kind,
		Amount:      money,
		Description: params['e'],
		Date:        date,
		Category:    category,
	}, nil
}

func parseCategory(op Op, kind core.Kind, rest string) (core.Category, error) {
	name := strings.ToUpper(strings.TrimSpace(rest))
	if name == "" {
		return core.Category{}, invalid(op, fmt.Sprintf("The %s category name is missing.", kind.Noun()))
	}
	return core.Category{Name: name, Kind: kind}, nil
}

func parseIndex(op Op, rest string) (int, error) {
	if rest == "" {
		return 0, invalid(op, "The index is missing.")
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, invalid(op, "The index is invalid.")
	}
	return n - 1, nil
}

// parseRename accepts exactly "<old>/n<new>" with both names non-empty.
func parseRename(rest string) (Rename, error) {
	if rest == "" {
		return Rename{}, invalid(OpEditCategory, "The category names are missing.")
	}
	parts := strings.Split(rest, editSeparator)
	if len(parts) != 2 {
		return Rename{}, invalid(OpEditCategory, "Use editcat <old name>/n<new name>.")
	}
	r := Rename{
		Old: strings.ToUpper(strings.TrimSpace(parts[0])),
		New: strings.ToUpper(strings.TrimSpace(parts[1])),
	}
	if r.Old == "" || r.New == "" {
		return Rename{}, invalid(OpEditCategory, "Use editcat <old name>/n<new name>.")
	}
	return r, nil
}

func parseReportMonth(rest string) (core.MonthKey, error) {
	if rest == "" {
		return core.MonthKey{}, invalid(OpReport, "The report date is missing, e.g. 2020-09.")
	}
	return parseMonth(OpReport, rest)
}

func parseMonth(op Op, s string) (core.MonthKey, error) {
	k, err := core.ParseMonthKey(s)
	if err != nil {
		return core.MonthKey{}, invalid(op, "Date should be in yyyy-MM format. E.g. 2020-09")
	}
	return k, nil
}

func parseListFilter(rest string) (core.Filter, error) {
	const usage = "Use list [expense|income] [month yyyy-MM]."

	var f core.Filter
	fields := strings.Fields(rest)
	for i := 0; i < len(fields); i++ {
		switch tok := strings.ToLower(fields[i]); tok {
		case "expense", "income":
			if f.Kind != "" {
				return core.Filter{}, invalid(OpList, usage)
			}
			f.Kind = core.Kind(strings.ToUpper(tok))
		case "month":
			if !f.Month.IsZero() {
				return core.Filter{}, invalid(OpList, usage)
			}
			if i+1 >= len(fields) {
				return core.Filter{}, invalid(OpList, "The month is missing, e.g. 2020-09.")
			}
			i++
			m, err := parseMonth(OpList, fields[i])
			if err != nil {
				return core.Filter{}, err
			}
			f.Month = m
		default:
			return core.Filter{}, invalid(OpList, usage)
		}
	}
	return f, nil
}

func parseCategoryKind(rest string) (core.Kind, error) {
	switch strings.ToLower(rest) {
	case "":
		return "", nil
	case "income":
		return core.Income, nil
	case "expense":
		return core.Expense, nil
	}
	return "", invalid(OpListCategories, "Use listcat [expense|income].")
}
