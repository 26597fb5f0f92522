package sheets

import (
	"context"

	"moneytracker/internal/core"
)

// Ports for outbound adapters.
type (
	// SnapshotLoader reads the persisted ledger. An empty store yields an
	// empty snapshot, not an error.
	SnapshotLoader interface {
		Load(ctx context.Context) (core.Snapshot, error)
	}

	// SnapshotSaver replaces the persisted ledger with s.
	SnapshotSaver interface {
		Save(ctx context.Context, s core.Snapshot) error
	}
)
