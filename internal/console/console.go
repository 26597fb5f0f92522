// Package console renders ledger results for a terminal.
package console

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"moneytracker/internal/amqp"
	"moneytracker/internal/command"
	"moneytracker/internal/core"
	"moneytracker/internal/report"
	"moneytracker/internal/services"
)

const (
	Line   = "____________________________________________________________________"
	Indent = "   "
	Prompt = "You:  "

	// DisplayDateLayout renders dates as "1 Sep 2020".
	DisplayDateLayout = "2 Jan 2006"
)

const logo = ` __  __                          _______             _
|  \/  |                        |__   __|           | |
| \  / | ___  _ __   ___ _   _     | |_ __ __ _  ___| | _____ _ __
| |\/| |/ _ \| '_ \ / _ \ | | |    | | '__/ _` + "`" + ` |/ __| |/ / _ \ '__|
| |  | | (_) | | | |  __/ |_| |    | | | | (_| | (__|   <  __/ |
|_|  |_|\___/|_| |_|\___|\__, |    |_|_|  \__,_|\___|_|\_\___|_|
                          __/ |
                         |___/
`

// Printer writes user-facing messages. It is not safe for concurrent use.
type Printer struct {
	w      io.Writer
	ok     *color.Color
	oops   *color.Color
	header *color.Color
}

// New returns a Printer writing to w. Colour is used only when noColor is
// false and fatih/color detects a terminal.
func New(w io.Writer, noColor bool) *Printer {
	p := &Printer{
		w:      w,
		ok:     color.New(color.FgGreen),
		oops:   color.New(color.FgRed, color.Bold),
		header: color.New(color.FgCyan, color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{p.ok, p.oops, p.header} {
			c.DisableColor()
		}
	}
	return p
}

// FormatTransaction renders t as "[I][SALARY] $100.00 on 1 Sep 2020 (desc)".
func FormatTransaction(t core.Transaction) string {
	out := fmt.Sprintf("[%s][%s] $%s on %s", t.Kind.Short(), t.Category, t.Amount, t.Date.Format(DisplayDateLayout))
	if t.Description != "" {
		out += " (" + t.Description + ")"
	}
	return out
}

// FormatCategory renders c as "[E] FOOD".
func FormatCategory(c core.Category) string {
	return fmt.Sprintf("[%s] %s", c.Kind.Short(), c.Name)
}

// FormatFrequency renders category counts as "{FOOD=2, BONUS=1}", most
// frequent first.
func FormatFrequency(freq map[string]int) string {
	ranked := report.Ranked(freq)
	parts := make([]string, len(ranked))
	for i, c := range ranked {
		parts[i] = fmt.Sprintf("%s=%d", c.Name, c.Count)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// FormatEvent renders a ledger event on one line.
func FormatEvent(e *amqp.LedgerEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Timestamp.Format("2006-01-02T15:04:05Z07:00"), e.Type)
	if e.Position > 0 {
		fmt.Fprintf(&b, " #%d", e.Position)
	}
	if t := e.Transaction; t != nil {
		fmt.Fprintf(&b, " %s %s $%s on %s", t.Kind, t.Category, t.Amount, t.Date)
		if t.Description != "" {
			fmt.Fprintf(&b, " (%s)", t.Description)
		}
	}
	if c := e.Category; c != nil {
		fmt.Fprintf(&b, " %s %s", c.Kind, c.Name)
	}
	if e.OldName != "" {
		fmt.Fprintf(&b, " from %s to %s", e.OldName, e.NewName)
	}
	return b.String()
}

func (p *Printer) println(a ...any) {
	fmt.Fprintln(p.w, a...)
}

func (p *Printer) indented(s string) {
	fmt.Fprintln(p.w, Indent+s)
}

func (p *Printer) line() {
	fmt.Fprintln(p.w, Line)
}

// Welcome prints the banner and greeting.
func (p *Printer) Welcome() {
	p.header.Fprintln(p.w, logo)
	p.println("Hello! What can I do for you?")
	p.line()
}

// Prompt asks for the next command.
func (p *Printer) Prompt() {
	fmt.Fprint(p.w, Prompt)
}

// ConfirmClear asks whether a clear should go ahead.
func (p *Printer) ConfirmClear() {
	p.println("Are you sure you want to clear all data? Y / N")
}

// Goodbye prints the farewell.
func (p *Printer) Goodbye() {
	p.println("Bye! Hope to see you again soon.")
	p.line()
}

// Error prints a recoverable problem. Validation and execution failures are
// shown by message; anything else is shown as is.
func (p *Printer) Error(err error) {
	msg := err.Error()
	var verr *command.ValidationError
	var failure *services.Failure
	switch {
	case errors.As(err, &verr):
		msg = verr.Message
	case errors.As(err, &failure):
		msg = failure.Message
	}
	p.oops.Fprintln(p.w, "OOPS!! "+msg)
	p.line()
}

// Result prints what req did.
func (p *Printer) Result(req command.Request, res services.Result) {
	switch res.Op {
	case command.OpUnknown:
		p.unknown(res)
	case command.OpHelp:
		p.help(res.Help)
	case command.OpExit:
		p.Goodbye()
	case command.OpAddIncome, command.OpAddExpense:
		p.ok.Fprintf(p.w, "Got it! I have added this %s:\n", res.Transaction.Kind.Noun())
		p.indented(FormatTransaction(res.Transaction))
		p.indented(fmt.Sprintf("Now you have %d transactions in your list.", res.Count))
		p.line()
	case command.OpAddIncomeCategory, command.OpAddExpenseCategory:
		p.ok.Fprintf(p.w, "Got it! I have added this %s category:\n", res.Category.Kind.Noun())
		p.indented(FormatCategory(res.Category))
		p.indented(fmt.Sprintf("Now you have %d categories in your list.", res.Count))
		p.line()
	case command.OpDelete:
		p.ok.Fprintf(p.w, "Noted! I have removed this %s: \n", res.Transaction.Kind.Noun())
		p.indented(FormatTransaction(res.Transaction))
		p.indented(fmt.Sprintf("Now you have %d transactions in the list.", res.Count))
		p.line()
	case command.OpDeleteCategory:
		p.ok.Fprintf(p.w, "Noted! I have removed this %s category: \n", res.Category.Kind.Noun())
		p.indented(FormatCategory(res.Category))
		p.indented(fmt.Sprintf("Now you have %d categories in the list.", res.Count))
		p.line()
	case command.OpEditCategory:
		p.ok.Fprintf(p.w, "Noted! I have edited this %s category: \n", res.Category.Kind.Noun())
		p.indented(fmt.Sprintf("From %s to %s", res.Rename.Old, res.Rename.New))
		p.line()
	case command.OpList:
		p.transactions(req.Filter, res)
	case command.OpListCategories:
		p.categories(req.Kind, res)
	case command.OpReport:
		p.report(res)
	case command.OpClear:
		if res.Cleared {
			p.ok.Fprintln(p.w, "Noted! I have cleared all data.")
		} else {
			p.println("Noted! Your data is untouched.")
		}
		p.line()
	}
}

func (p *Printer) unknown(res services.Result) {
	if res.Keyword == "" {
		p.oops.Fprintln(p.w, "OOPS!! Please enter a command. Type help to see them all.")
		p.line()
		return
	}
	msg := fmt.Sprintf("OOPS!! I don't know what %q means.", res.Keyword)
	if res.Suggestion != "" {
		msg += fmt.Sprintf(" Did you mean %q?", res.Suggestion)
	}
	p.oops.Fprintln(p.w, msg)
	p.line()
}

func (p *Printer) help(usage []string) {
	p.println("Here are the commands you can use:")
	for _, u := range usage {
		p.indented(u)
	}
	p.line()
}

func transactionsHeader(f core.Filter) string {
	switch {
	case f.Month.IsZero() && f.Kind == "":
		return "Here are your transactions:"
	case f.Month.IsZero() && f.Kind == core.Income:
		return "Here are your incomes:"
	case f.Month.IsZero():
		return "Here are your expenses:"
	case f.Kind == "":
		return fmt.Sprintf("Here are your transactions for %s :", f.Month)
	default:
		return fmt.Sprintf("Here are your %s records for %s :", f.Kind.Noun(), f.Month)
	}
}

func (p *Printer) transactions(f core.Filter, res services.Result) {
	if res.NoRecords {
		p.println("Sorry, there is no record in your list.")
		p.line()
		return
	}
	p.header.Fprintln(p.w, transactionsHeader(f))
	for _, e := range res.Transactions {
		p.indented(fmt.Sprintf("%d. %s", e.Position, FormatTransaction(e.Item)))
	}
	p.line()
}

func (p *Printer) categories(kind core.Kind, res services.Result) {
	if res.NoRecords {
		p.println("Sorry, there is no record in your list.")
		p.line()
		return
	}
	switch kind {
	case "":
		p.header.Fprintln(p.w, "Here are your categories:")
	default:
		p.header.Fprintf(p.w, "Here are your %s categories:\n", kind.Noun())
	}
	for _, e := range res.Categories {
		p.indented(fmt.Sprintf("%d. %s", e.Position, FormatCategory(e.Item)))
	}
	p.line()
}

func highest(t *core.Transaction) string {
	if t == nil {
		return "None"
	}
	return FormatTransaction(*t)
}

func (p *Printer) report(res services.Result) {
	p.line()
	if res.NoRecords {
		p.println("Sorry, there is no record in your list.")
		p.line()
		return
	}
	r := res.Report
	p.header.Fprintf(p.w, "Here is your report for %s :\n", r.Month)
	p.println("Total Income: $" + r.TotalIncome.String())
	p.println("Total Expense: $" + r.TotalExpense.String())
	p.println("Balance: $" + r.Balance.String())
	p.println("Average Expense Per Day: $" + r.AverageDailyExpense.String())
	p.println("          *****          ")
	p.println("Highest Income:")
	p.println("  " + highest(r.HighestIncome))
	p.println("Highest Expense:")
	p.println("  " + highest(r.HighestExpense))
	p.println("          *****          ")
	p.println("Frequency of Income Category:")
	p.println("  " + FormatFrequency(r.IncomeCategories))
	p.println("Frequency of Expense Category:")
	p.println("  " + FormatFrequency(r.ExpenseCategories))
	p.line()
}
