// Package services executes validated requests against the ledger and
// coordinates the side effects of a mutation: report cache invalidation,
// ledger events and persistence.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"moneytracker/internal/amqp"
	"moneytracker/internal/cache"
	"moneytracker/internal/command"
	"moneytracker/internal/core"
	"moneytracker/internal/ledger"
	"moneytracker/internal/log"
	"moneytracker/internal/report"
)

// Saver persists a full ledger snapshot.
type Saver interface {
	Save(ctx context.Context, s core.Snapshot) error
}

// EventPublisher receives one event per successful mutation.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, e *amqp.LedgerEvent) error
}

// CachedReport is what the report cache stores for a month. OK is false when
// the ledger held no transactions at all.
type CachedReport struct {
	Report report.Result
	OK     bool
}

// NewReportCache returns an LRU cache of monthly reports, or a cache that
// stores nothing when size is not positive.
func NewReportCache(size int, ttl time.Duration) cache.Cache[CachedReport] {
	if size <= 0 {
		return cache.Nop[CachedReport]{}
	}
	return cache.NewLRUCache[CachedReport](size, ttl)
}

// Failure is a recoverable problem executing a well-formed request. Message
// is shown to the user as is; Err is the underlying cause.
type Failure struct {
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Result describes what a request did. Only the fields relevant to Op are
// set.
type Result struct {
	Op command.Op

	Transaction core.Transaction // added or deleted transaction
	Category    core.Category    // added, deleted or renamed category
	Rename      command.Rename

	// Count is the size of the affected list after a mutation.
	Count int

	Transactions ledger.View[core.Transaction]
	Categories   ledger.View[core.Category]

	Report    report.Result
	NoRecords bool

	Keyword    string // unknown keyword as typed
	Suggestion string
	Help       []string

	// Cleared is false when a clear was declined.
	Cleared bool
	Exit    bool
}

// LedgerService runs requests against one ledger, one at a time.
type LedgerService struct {
	ledger  *ledger.Ledger
	saver   Saver
	events  EventPublisher
	reports cache.Cache[CachedReport]
	logger  *log.Logger
}

type Option func(*LedgerService)

// WithEvents publishes an event for every successful mutation.
func WithEvents(p EventPublisher) Option {
	return func(s *LedgerService) {
		s.events = p
	}
}

// WithReportCache memoizes monthly reports until the next mutation.
func WithReportCache(c cache.Cache[CachedReport]) Option {
	return func(s *LedgerService) {
		if c != nil {
			s.reports = c
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *LedgerService) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentLedger)
		}
	}
}

// NewLedgerService wraps l. saver may be nil, in which case nothing is
// persisted.
func NewLedgerService(l *ledger.Ledger, saver Saver, opts ...Option) *LedgerService {
	s := &LedgerService{
		ledger:  l,
		saver:   saver,
		reports: cache.Nop[CachedReport]{},
		logger:  log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ledger returns the ledger the service works on.
func (s *LedgerService) Ledger() *ledger.Ledger {
	return s.ledger
}

// Execute runs req. Every error it returns is a *Failure and leaves the
// ledger unchanged.
func (s *LedgerService) Execute(ctx context.Context, req command.Request) (Result, error) {
	res := Result{Op: req.Op}
	var err error

	switch req.Op {
	case command.OpUnknown:
		res.Keyword = req.Keyword
		res.Suggestion = req.Suggestion
	case command.OpHelp:
		res.Help = command.Usage()
	case command.OpExit:
		res.Exit = true
	case command.OpAddIncome, command.OpAddExpense:
		err = s.addTransaction(ctx, req.Transaction, &res)
	case command.OpAddIncomeCategory, command.OpAddExpenseCategory:
		err = s.addCategory(ctx, req.Category, &res)
	case command.OpDelete:
		err = s.deleteTransaction(ctx, req.Index, &res)
	case command.OpDeleteCategory:
		err = s.deleteCategory(ctx, req.Index, &res)
	case command.OpEditCategory:
		err = s.renameCategory(ctx, req.Rename, &res)
	case command.OpList:
		res.Transactions = s.ledger.ListTransactions(req.Filter)
		res.NoRecords = s.ledger.TransactionCount() == 0
	case command.OpListCategories:
		res.Categories = s.ledger.ListCategories(req.Kind)
		res.NoRecords = s.ledger.CategoryCount() == 0
	case command.OpReport:
		s.monthlyReport(req.Month, &res)
	case command.OpClear:
		err = s.clear(ctx, req.Confirmed, &res)
	default:
		err = &Failure{Message: fmt.Sprintf("Unsupported operation %s.", req.Op)}
	}

	if err != nil {
		s.logger.DebugContext(ctx, "Request failed",
			log.FieldOperation, req.Op.String(),
			log.FieldError, err)
		return Result{Op: req.Op}, err
	}
	return res, nil
}

func (s *LedgerService) addTransaction(ctx context.Context, t core.Transaction, res *Result) error {
	if err := s.ledger.AddTransaction(t); err != nil {
		switch {
		case errors.Is(err, ledger.ErrUnknownCategory):
			return &Failure{
				Message: fmt.Sprintf("The %s category %s does not exist.", t.Kind.Noun(), t.Category),
				Err:     err,
			}
		default:
			return &Failure{Message: err.Error(), Err: err}
		}
	}
	res.Transaction = t
	res.Count = s.ledger.TransactionCount()

	s.logger.InfoContext(ctx, "Transaction added", log.NewFields().
		WithOperation(log.OpAdd).
		WithTransaction(string(t.Kind), t.Amount.Cents, t.Category).
		WithPosition(res.Count).ToSlice()...)
	s.mutated(ctx, amqp.NewLedgerEvent(amqp.EventTransactionAdded).WithTransaction(res.Count, t))
	return nil
}

func (s *LedgerService) addCategory(ctx context.Context, c core.Category, res *Result) error {
	if err := s.ledger.AddCategory(c); err != nil {
		switch {
		case errors.Is(err, ledger.ErrDuplicateCategory):
			return &Failure{
				Message: fmt.Sprintf("The %s category %s already exists.", c.Kind.Noun(), c.Name),
				Err:     err,
			}
		default:
			return &Failure{Message: err.Error(), Err: err}
		}
	}
	res.Category = c
	res.Count = s.ledger.CategoryCount()

	s.logger.InfoContext(ctx, "Category added", log.NewFields().
		WithOperation(log.OpAdd).
		WithCategory(string(c.Kind), c.Name).
		WithPosition(res.Count).ToSlice()...)
	s.mutated(ctx, amqp.NewLedgerEvent(amqp.EventCategoryAdded).WithCategory(res.Count, c))
	return nil
}

func (s *LedgerService) deleteTransaction(ctx context.Context, index int, res *Result) error {
	removed, err := s.ledger.RemoveTransaction(index)
	if err != nil {
		return outOfRange(err)
	}
	res.Transaction = removed
	res.Count = s.ledger.TransactionCount()

	s.logger.InfoContext(ctx, "Transaction deleted", log.NewFields().
		WithOperation(log.OpDelete).
		WithTransaction(string(removed.Kind), removed.Amount.Cents, removed.Category).
		WithPosition(index+1).ToSlice()...)
	s.mutated(ctx, amqp.NewLedgerEvent(amqp.EventTransactionDeleted).WithTransaction(index+1, removed))
	return nil
}

func (s *LedgerService) deleteCategory(ctx context.Context, index int, res *Result) error {
	removed, err := s.ledger.RemoveCategory(index)
	if err != nil {
		return outOfRange(err)
	}
	res.Category = removed
	res.Count = s.ledger.CategoryCount()

	s.logger.InfoContext(ctx, "Category deleted", log.NewFields().
		WithOperation(log.OpDelete).
		WithCategory(string(removed.Kind), removed.Name).
		WithPosition(index+1).ToSlice()...)
	s.mutated(ctx, amqp.NewLedgerEvent(amqp.EventCategoryDeleted).WithCategory(index+1, removed))
	return nil
}

func (s *LedgerService) renameCategory(ctx context.Context, r command.Rename, res *Result) error {
	renamed, index, err := s.ledger.RenameCategory(r.Old, r.New)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrCategoryNotFound):
			return &Failure{Message: fmt.Sprintf("The category %s does not exist.", r.Old), Err: err}
		case errors.Is(err, ledger.ErrDuplicateCategory):
			old, _, _ := s.ledger.CategoryNamed(r.Old)
			return &Failure{
				Message: fmt.Sprintf("The %s category %s already exists.", old.Kind.Noun(), r.New),
				Err:     err,
			}
		default:
			return &Failure{Message: err.Error(), Err: err}
		}
	}
	res.Category = renamed
	res.Rename = r
	res.Count = s.ledger.CategoryCount()

	s.logger.InfoContext(ctx, "Category renamed", log.NewFields().
		WithOperation(log.OpRename).
		WithCategory(string(renamed.Kind), renamed.Name).
		WithPosition(index+1).ToSlice()...)
	s.mutated(ctx, amqp.NewLedgerEvent(amqp.EventCategoryRenamed).
		WithCategory(index+1, renamed).
		WithRename(r.Old, r.New))
	return nil
}

func (s *LedgerService) monthlyReport(month core.MonthKey, res *Result) {
	key := month.String()
	entry, hit := s.reports.Get(key)
	if !hit {
		r, ok := report.Monthly(s.ledger.Transactions(), month)
		entry = CachedReport{Report: r, OK: ok}
		s.reports.Set(key, entry)
	}
	s.logger.Debug("Report computed",
		log.FieldOperation, log.OpReport,
		log.FieldMonth, key,
		"cache_hit", hit)
	res.Report = entry.Report
	res.NoRecords = !entry.OK
}

// clear empties the ledger once the caller has confirmed it. The empty
// snapshot is saved first, so a failed save leaves the ledger intact.
func (s *LedgerService) clear(ctx context.Context, confirmed bool, res *Result) error {
	if !confirmed {
		return nil
	}
	if s.saver != nil {
		if err := s.saver.Save(ctx, core.Snapshot{}); err != nil {
			return &Failure{Message: "Unable to clear the saved data.", Err: err}
		}
	}
	s.ledger.Reset()
	res.Cleared = true

	s.logger.InfoContext(ctx, "Ledger cleared", log.FieldOperation, log.OpClear)
	s.mutated(ctx, amqp.NewLedgerEvent(amqp.EventLedgerCleared))
	return nil
}

// mutated runs after every successful mutation. Publish failures are logged
// and otherwise ignored.
func (s *LedgerService) mutated(ctx context.Context, e *amqp.LedgerEvent) {
	s.reports.Purge()
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerEvent(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			log.FieldOperation, log.OpPublish,
			log.FieldEventID, e.ID,
			log.FieldEventType, string(e.Type),
			log.FieldError, err)
	}
}

// Save persists the current ledger.
func (s *LedgerService) Save(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	start := time.Now()
	snap := s.ledger.Snapshot()
	if err := s.saver.Save(ctx, snap); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	s.logger.InfoContext(ctx, "Ledger saved",
		log.FieldOperation, log.OpSave,
		log.FieldCount, len(snap.Transactions)+len(snap.Categories),
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

func outOfRange(err error) error {
	return &Failure{Message: "The index is out of range.", Err: err}
}
