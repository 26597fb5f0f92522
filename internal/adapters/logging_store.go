package adapters

import (
	"context"
	"time"

	"moneytracker/internal/core"
	"moneytracker/internal/log"
	ports "moneytracker/internal/sheets"
)

// Store is the persistence port every backend implements.
type Store interface {
	ports.SnapshotLoader
	ports.SnapshotSaver
}

// LoggingStore decorates a Store with structured load and save logs, so
// every backend reports the same fields.
type LoggingStore struct {
	next    Store
	backend string
	logger  *log.Logger
}

func NewLoggingStore(next Store, backend string, logger *log.Logger) *LoggingStore {
	if logger == nil {
		logger = log.Discard()
	}
	return &LoggingStore{
		next:    next,
		backend: backend,
		logger:  logger.WithComponent(log.ComponentStorage),
	}
}

// Load implements sheets.SnapshotLoader
func (s *LoggingStore) Load(ctx context.Context) (core.Snapshot, error) {
	start := time.Now()
	snap, err := s.next.Load(ctx)
	fields := s.fields(log.OpLoad, start, err)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load ledger", fields.ToSlice()...)
		return snap, err
	}
	fields[log.FieldCount] = len(snap.Transactions) + len(snap.Categories)
	s.logger.InfoContext(ctx, "Ledger loaded", fields.ToSlice()...)
	return snap, nil
}

// Save implements sheets.SnapshotSaver
func (s *LoggingStore) Save(ctx context.Context, snap core.Snapshot) error {
	start := time.Now()
	err := s.next.Save(ctx, snap)
	fields := s.fields(log.OpSave, start, err)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save ledger", fields.ToSlice()...)
		return err
	}
	fields[log.FieldCount] = len(snap.Transactions) + len(snap.Categories)
	s.logger.InfoContext(ctx, "Ledger saved", fields.ToSlice()...)
	return nil
}

func (s *LoggingStore) fields(op string, start time.Time, err error) log.LogFields {
	f := log.NewFields().WithOperation(op).WithError(err)
	f[log.FieldBackend] = s.backend
	f[log.FieldDuration] = time.Since(start).Milliseconds()
	return f
}
