package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneytracker/internal/amqp"
	"moneytracker/internal/command"
	"moneytracker/internal/core"
	"moneytracker/internal/ledger"
)

type recordingSaver struct {
	saved []core.Snapshot
	err   error
}

func (r *recordingSaver) Save(_ context.Context, s core.Snapshot) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, s)
	return nil
}

type recordingPublisher struct {
	events []*amqp.LedgerEvent
	err    error
}

func (r *recordingPublisher) PublishLedgerEvent(_ context.Context, e *amqp.LedgerEvent) error {
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingPublisher) types() []amqp.EventType {
	out := make([]amqp.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

var testNow = time.Date(2020, time.September, 20, 9, 0, 0, 0, time.UTC)

type harness struct {
	svc    *LedgerService
	in     *command.Interpreter
	saver  *recordingSaver
	events *recordingPublisher
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		in:     command.NewInterpreter(command.WithClock(func() time.Time { return testNow })),
		saver:  &recordingSaver{},
		events: &recordingPublisher{},
	}
	opts = append([]Option{WithEvents(h.events)}, opts...)
	h.svc = NewLedgerService(ledger.New(), h.saver, opts...)
	return h
}

// run interprets and executes line, failing the test on a validation error.
func (h *harness) run(t *testing.T, line string) (Result, error) {
	t.Helper()
	req, err := h.in.Interpret(line)
	require.NoError(t, err, line)
	return h.svc.Execute(context.Background(), req)
}

func (h *harness) mustRun(t *testing.T, lines ...string) Result {
	t.Helper()
	var res Result
	for _, line := range lines {
		var err error
		res, err = h.run(t, line)
		require.NoError(t, err, line)
	}
	return res
}

func requireFailure(t *testing.T, err error, msg string) *Failure {
	t.Helper()
	var f *Failure
	require.True(t, errors.As(err, &f), "expected *Failure, got %T (%v)", err, err)
	assert.Equal(t, msg, f.Message)
	return f
}

func TestAddTransaction(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "addcati salary")

	res := h.mustRun(t, "addi a30.50/csalary")
	assert.Equal(t, command.OpAddIncome, res.Op)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, core.Transaction{
		Kind:     core.Income,
		Amount:   core.Money{Cents: 3050},
		Date:     core.NewDate(2020, 9, 20),
		Category: "SALARY",
	}, res.Transaction)
	assert.Equal(t, 1, h.svc.Ledger().TransactionCount())

	res = h.mustRun(t, "addi a10/cSALARY/eBonus")
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, []amqp.EventType{
		amqp.EventCategoryAdded,
		amqp.EventTransactionAdded,
		amqp.EventTransactionAdded,
	}, h.events.types())
	assert.Equal(t, 2, h.events.events[2].Position)
}

func TestAddTransactionUnknownCategory(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "addcate food")

	_, err := h.run(t, "addi a10/cFOOD")
	f := requireFailure(t, err, "The income category FOOD does not exist.")
	assert.ErrorIs(t, f, ledger.ErrUnknownCategory)
	assert.Zero(t, h.svc.Ledger().TransactionCount())
	assert.Len(t, h.events.events, 1)
}

func TestAddCategoryDuplicate(t *testing.T) {
	h := newHarness(t)
	res := h.mustRun(t, "addcate food", "addcati food")
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, core.Category{Name: "FOOD", Kind: core.Income}, res.Category)

	_, err := h.run(t, "addcate Food")
	f := requireFailure(t, err, "The expense category FOOD already exists.")
	assert.ErrorIs(t, f, ledger.ErrDuplicateCategory)
	assert.Equal(t, 2, h.svc.Ledger().CategoryCount())
}

func TestDeleteTransaction(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "addcate food", "adde a1/cfood", "adde a2/cfood")

	_, err := h.run(t, "delete 3")
	f := requireFailure(t, err, "The index is out of range.")
	assert.ErrorIs(t, f, ledger.ErrIndexOutOfRange)
	assert.Equal(t, 2, h.svc.Ledger().TransactionCount())

	res := h.mustRun(t, "delete 1")
	assert.Equal(t, int64(100), res.Transaction.Amount.Cents)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, int64(200), h.svc.Ledger().Transactions()[0].Amount.Cents)

	last := h.events.events[len(h.events.events)-1]
	assert.Equal(t, amqp.EventTransactionDeleted, last.Type)
	assert.Equal(t, 1, last.Position)
}

func TestDeleteCategoryKeepsTransactions(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "addcate food", "adde a1/cfood")

	res := h.mustRun(t, "deletecat 1")
	assert.Equal(t, core.Category{Name: "FOOD", Kind: core.Expense}, res.Category)
	assert.Zero(t, res.Count)
	assert.Equal(t, 1, h.svc.Ledger().TransactionCount())

	_, err := h.run(t, "deletecat 1")
	requireFailure(t, err, "The index is out of range.")
}

func TestEditCategory(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "addcati salary", "addcate food", "addcate rent", "adde a5/cfood")

	res := h.mustRun(t, "editcat food/ngroceries")
	assert.Equal(t, command.Rename{Old: "FOOD", New: "GROCERIES"}, res.Rename)
	assert.Equal(t, core.Category{Name: "GROCERIES", Kind: core.Expense}, res.Category)
	assert.Equal(t, "GROCERIES", h.svc.Ledger().Categories()[1].Name)
	assert.Equal(t, "FOOD", h.svc.Ledger().Transactions()[0].Category)

	last := h.events.events[len(h.events.events)-1]
	assert.Equal(t, amqp.EventCategoryRenamed, last.Type)
	assert.Equal(t, "FOOD", last.OldName)
	assert.Equal(t, 2, last.Position)

	_, err := h.run(t, "editcat food/nsnacks")
	requireFailure(t, err, "The category FOOD does not exist.")

	_, err = h.run(t, "editcat rent/ngroceries")
	f := requireFailure(t, err, "The expense category GROCERIES already exists.")
	assert.ErrorIs(t, f, ledger.ErrDuplicateCategory)
	assert.Equal(t, "RENT", h.svc.Ledger().Categories()[2].Name)
}

func TestListViews(t *testing.T) {
	h := newHarness(t)

	res := h.mustRun(t, "list")
	assert.True(t, res.NoRecords)
	assert.True(t, res.Transactions.Empty())

	h.mustRun(t,
		"addcati salary", "addcate food",
		"addi a100/csalary/d2020-09-01",
		"adde a40/cfood/d2020-09-05",
		"adde a7/cfood/d2020-10-01",
	)

	res = h.mustRun(t, "list expense")
	assert.False(t, res.NoRecords)
	assert.Equal(t, []int{2, 3}, res.Transactions.Positions())

	res = h.mustRun(t, "list expense month 2020-09")
	assert.Equal(t, []int{2}, res.Transactions.Positions())

	again := h.mustRun(t, "list expense month 2020-09")
	assert.Equal(t, res.Transactions, again.Transactions)

	res = h.mustRun(t, "listcat income")
	require.Len(t, res.Categories, 1)
	assert.Equal(t, "SALARY", res.Categories[0].Item.Name)
}

func TestReport(t *testing.T) {
	h := newHarness(t)

	res := h.mustRun(t, "report 2020-09")
	assert.True(t, res.NoRecords)

	h.mustRun(t,
		"addcati salary", "addcati bonus", "addcate food",
		"addi a100/cSALARY/d2020-09-01",
		"addi a50/cBONUS/d2020-09-15",
		"adde a40/cFOOD/d2020-09-10",
	)
	res = h.mustRun(t, "report 2020-09")
	require.False(t, res.NoRecords)
	assert.Equal(t, "150.00", res.Report.TotalIncome.String())
	assert.Equal(t, "40.00", res.Report.TotalExpense.String())
	assert.Equal(t, "110.00", res.Report.Balance.String())
	assert.Equal(t, "1.33", res.Report.AverageDailyExpense.String())
	require.NotNil(t, res.Report.HighestIncome)
	assert.Equal(t, "SALARY", res.Report.HighestIncome.Category)
	assert.Equal(t, map[string]int{"SALARY": 1, "BONUS": 1}, res.Report.IncomeCategories)
	assert.Equal(t, map[string]int{"FOOD": 1}, res.Report.ExpenseCategories)
}

func TestReportTotalsOfLargestAmounts(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t,
		"addcati salary", "addcate rent",
		"addi a1000000000/cSALARY/d2020-09-01",
		"addi a1000000000/cSALARY/d2020-09-02",
		"adde a1000000000/cRENT/d2020-09-03",
	)

	req, err := h.in.Interpret("addi a92233720368547758/cSALARY/d2020-09-01")
	require.Error(t, err)
	assert.Zero(t, req)
	assert.Equal(t, 3, h.svc.Ledger().TransactionCount())

	res := h.mustRun(t, "report 2020-09")
	assert.Equal(t, "2000000000.00", res.Report.TotalIncome.String())
	assert.Equal(t, "1000000000.00", res.Report.TotalExpense.String())
	assert.Equal(t, "1000000000.00", res.Report.Balance.String())
	assert.Equal(t, "33333333.33", res.Report.AverageDailyExpense.String())
}

func TestReportCacheInvalidatedByMutation(t *testing.T) {
	reports := NewReportCache(4, time.Hour)
	h := newHarness(t, WithReportCache(reports))
	h.mustRun(t, "addcate food", "adde a40/cfood/d2020-09-10")

	first := h.mustRun(t, "report 2020-09")
	assert.Equal(t, 1, reports.Size())
	cached := h.mustRun(t, "report 2020-09")
	assert.Equal(t, first.Report.TotalExpense, cached.Report.TotalExpense)

	h.mustRun(t, "adde a60/cfood/d2020-09-11")
	assert.Zero(t, reports.Size())

	fresh := h.mustRun(t, "report 2020-09")
	assert.Equal(t, "100.00", fresh.Report.TotalExpense.String())
}

func TestNewReportCacheDisabled(t *testing.T) {
	c := NewReportCache(0, time.Minute)
	c.Set("2020-09", CachedReport{OK: true})
	assert.Zero(t, c.Size())
}

func TestClear(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "addcate food", "adde a1/cfood")

	req, err := h.in.Interpret("clear")
	require.NoError(t, err)

	res, err := h.svc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.Cleared)
	assert.Equal(t, 1, h.svc.Ledger().TransactionCount())
	assert.Empty(t, h.saver.saved)

	req.Confirmed = true
	res, err = h.svc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Cleared)
	assert.Zero(t, h.svc.Ledger().TransactionCount())
	assert.Zero(t, h.svc.Ledger().CategoryCount())
	require.Len(t, h.saver.saved, 1)
	assert.Equal(t, core.Snapshot{}, h.saver.saved[0])
	assert.Equal(t, amqp.EventLedgerCleared, h.events.events[len(h.events.events)-1].Type)
}

func TestClearSaveFailureKeepsLedger(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "addcate food", "adde a1/cfood")
	boom := errors.New("disk full")
	h.saver.err = boom

	_, err := h.svc.Execute(context.Background(), command.Request{Op: command.OpClear, Confirmed: true})
	f := requireFailure(t, err, "Unable to clear the saved data.")
	assert.ErrorIs(t, f, boom)
	assert.Equal(t, 1, h.svc.Ledger().TransactionCount())
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	h := newHarness(t)
	h.events.err = errors.New("broker down")

	res, err := h.run(t, "addcate food")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, 1, h.svc.Ledger().CategoryCount())
}

func TestSimpleOperations(t *testing.T) {
	h := newHarness(t)

	res := h.mustRun(t, "help")
	assert.Equal(t, command.Usage(), res.Help)

	res = h.mustRun(t, "exit")
	assert.True(t, res.Exit)

	res = h.mustRun(t, "reprot 2020-09")
	assert.Equal(t, command.OpUnknown, res.Op)
	assert.Equal(t, "reprot", res.Keyword)
	assert.Equal(t, "report", res.Suggestion)
	assert.Empty(t, h.events.events)
}

func TestSave(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "addcate food", "adde a1/cfood")

	require.NoError(t, h.svc.Save(context.Background()))
	require.Len(t, h.saver.saved, 1)
	assert.Equal(t, h.svc.Ledger().Snapshot(), h.saver.saved[0])

	h.saver.err = errors.New("read-only")
	assert.ErrorIs(t, h.svc.Save(context.Background()), h.saver.err)

	noSaver := NewLedgerService(ledger.New(), nil)
	assert.NoError(t, noSaver.Save(context.Background()))
}
