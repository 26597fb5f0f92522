package backend

import (
	"context"
	"time"

	"moneytracker/internal/services"
	"moneytracker/internal/sheets"
)

// Backend persists the whole ledger as one snapshot.
type Backend interface {
	sheets.SnapshotLoader
	sheets.SnapshotSaver
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance, the event publisher when
// events are enabled and an optional cleanup function.
type BackendResult struct {
	Backend Backend
	Events  services.EventPublisher
	Cleanup CleanupFunc
}

// Close runs Cleanup if there is one.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// File specific
	LedgerFilePath string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	GoogleTransactionsSheet  string
	GoogleCategoriesSheet    string

	// Ledger events, optional for every backend
	AMQPURL            string
	AMQPExchange       string
	AMQPRoutingKey     string
	AMQPConnectTimeout time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	FileBackend   BackendType = "file"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, FileBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
