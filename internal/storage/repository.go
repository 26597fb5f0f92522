// Package storage persists ledger snapshots on the local disk, either in a
// SQLite database or in a plain line-oriented text file.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"moneytracker/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load reads both lists in position order.
func (r *SQLiteRepository) Load(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot

	categories, err := r.loadCategories(ctx)
	if err != nil {
		return snap, err
	}
	transactions, err := r.loadTransactions(ctx)
	if err != nil {
		return snap, err
	}
	snap.Categories = categories
	snap.Transactions = transactions

	slog.DebugContext(ctx, "Ledger loaded from SQLite",
		"categories", len(categories),
		"transactions", len(transactions))
	return snap, nil
}

func (r *SQLiteRepository) loadCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT kind, name FROM categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var kind, name string
		if err := rows.Scan(&kind, &name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c := core.Category{Name: name, Kind: core.Kind(kind)}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("category %d: %w", len(out)+1, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) loadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT kind, amount_cents, date, category, description
		FROM transactions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			kind, date, category, description string
			cents                             int64
		)
		if err := rows.Scan(&kind, &cents, &date, &category, &description); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", len(out)+1, err)
		}
		t := core.Transaction{
			Kind:        core.Kind(kind),
			Amount:      core.Money{Cents: cents},
			Description: description,
			Date:        d,
			Category:    category,
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", len(out)+1, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Save replaces every stored row with s inside one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, s core.Snapshot) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}

	for i, c := range s.Categories {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO categories (position, kind, name) VALUES (?, ?, ?)`,
			i+1, string(c.Kind), c.Name); err != nil {
			return fmt.Errorf("insert category %d: %w", i+1, err)
		}
	}
	for i, t := range s.Transactions {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO transactions (position, kind, amount_cents, date, category, description)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			i+1, string(t.Kind), t.Amount.Cents, t.Date.String(), t.Category, t.Description); err != nil {
			return fmt.Errorf("insert transaction %d: %w", i+1, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.DebugContext(ctx, "Ledger saved to SQLite",
		"categories", len(s.Categories),
		"transactions", len(s.Transactions))
	return nil
}
