package memory

import (
	"context"
	"slices"
	"sync"

	"moneytracker/internal/core"
	ports "moneytracker/internal/sheets"
)

var (
	_ ports.SnapshotLoader = (*Store)(nil)
	_ ports.SnapshotSaver  = (*Store)(nil)
)

// Store keeps a snapshot in process memory. Nothing survives a restart.
type Store struct {
	mu    sync.Mutex
	snap  core.Snapshot
	saves int
}

// New returns a store seeded with a copy of seed.
func New(seed core.Snapshot) *Store {
	return &Store{snap: clone(seed)}
}

// Load returns a copy of the stored snapshot.
func (s *Store) Load(_ context.Context) (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.snap), nil
}

// Save replaces the stored snapshot with a copy of snap.
func (s *Store) Save(ctx context.Context, snap core.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = clone(snap)
	s.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func clone(s core.Snapshot) core.Snapshot {
	return core.Snapshot{
		Transactions: slices.Clone(s.Transactions),
		Categories:   slices.Clone(s.Categories),
	}
}
