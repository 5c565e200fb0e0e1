// Package storage implements the expense ledger: durable SQLite-backed
// storage and aggregation queries over invoices and category limits.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"

	"expensealert/internal/core"
	"expensealert/internal/log"

	_ "modernc.org/sqlite"
)

// StoredInvoice is an invoice as held by the ledger, with its internal
// monotonically increasing identifier.
type StoredInvoice struct {
	ID int64
	core.Invoice
}

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if necessary) the ledger database
// at dbPath and ensures the schema exists. Initialization is idempotent
// and never drops existing data.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// The first ping may hit a transiently locked file when another
	// process is mid-migration; retry with bounded backoff.
	ping := backoff.NewExponentialBackOff()
	ping.MaxElapsedTime = 10 * time.Second
	if err := backoff.Retry(db.Ping, ping); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

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

// UpsertLimits inserts or replaces the budget limit for each category.
// Each category is committed as its own logical unit: a failure on one
// does not roll back limits already applied, and the failing category's
// previous value is left intact.
func (r *SQLiteRepository) UpsertLimits(ctx context.Context, limits map[string]float64) error {
	const q = `
		INSERT INTO categories (category, budget_limit)
		VALUES (?, ?)
		ON CONFLICT(category) DO UPDATE SET budget_limit = excluded.budget_limit`

	for category, limit := range limits {
		cl := core.CategoryLimit{Category: category, Limit: limit}
		if err := cl.Validate(); err != nil {
			return fmt.Errorf("upsert limit: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, q, category, limit); err != nil {
			return fmt.Errorf("upsert limit for %q: %w", category, err)
		}
	}

	slog.InfoContext(ctx, "Budget limits synchronized", log.FieldCount, len(limits))
	return nil
}

// Append stores a new invoice and returns its assigned ledger id.
// Records are only ever added, never overwritten or merged.
func (r *SQLiteRepository) Append(ctx context.Context, inv core.Invoice) (int64, error) {
	if err := inv.Validate(); err != nil {
		return 0, fmt.Errorf("append invoice: %w", err)
	}

	const q = `INSERT INTO invoices (invoice_id, date, amount, category) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, inv.ExternalID, inv.Date, inv.Amount, inv.Category)
	if err != nil {
		return 0, fmt.Errorf("insert invoice: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted id: %w", err)
	}

	slog.InfoContext(ctx, "Invoice saved",
		log.FieldRecordID, id,
		log.FieldInvoiceID, inv.ExternalID,
		log.FieldAmount, inv.Amount,
		log.FieldCategory, inv.Category)

	return id, nil
}

// TotalSpent returns the sum of amounts for the category, exact match,
// or nil when the ledger holds no records for it.
func (r *SQLiteRepository) TotalSpent(ctx context.Context, category string) (*float64, error) {
	const q = `SELECT SUM(amount) FROM invoices WHERE category = ?`

	var total sql.NullFloat64
	err := r.readWithRetry(ctx, func() error {
		return r.db.QueryRowContext(ctx, q, category).Scan(&total)
	})
	if err != nil {
		return nil, fmt.Errorf("sum invoices for %q: %w", category, err)
	}
	if !total.Valid {
		return nil, nil
	}
	return &total.Float64, nil
}

// LimitFor returns the configured budget limit for the category, or nil
// when no limit is set.
func (r *SQLiteRepository) LimitFor(ctx context.Context, category string) (*float64, error) {
	const q = `SELECT budget_limit FROM categories WHERE category = ?`

	var limit float64
	err := r.readWithRetry(ctx, func() error {
		return r.db.QueryRowContext(ctx, q, category).Scan(&limit)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read limit for %q: %w", category, err)
	}
	return &limit, nil
}

// ListMiscellaneous returns all invoices still in the default category,
// oldest first, for the recategorization workflow.
func (r *SQLiteRepository) ListMiscellaneous(ctx context.Context) ([]StoredInvoice, error) {
	const q = `SELECT id, invoice_id, date, amount, category FROM invoices WHERE category = ? ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, q, core.DefaultCategory)
	if err != nil {
		return nil, fmt.Errorf("list miscellaneous invoices: %w", err)
	}
	defer rows.Close()

	var out []StoredInvoice
	for rows.Next() {
		var si StoredInvoice
		if err := rows.Scan(&si.ID, &si.ExternalID, &si.Date, &si.Amount, &si.Category); err != nil {
			return nil, fmt.Errorf("scan invoice row: %w", err)
		}
		out = append(out, si)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoice rows: %w", err)
	}
	return out, nil
}

// Recategorize rewrites the category of exactly one invoice. Returns
// core.ErrNotFound when no record has the given id.
func (r *SQLiteRepository) Recategorize(ctx context.Context, id int64, newCategory string) error {
	if err := (core.Invoice{Category: newCategory}).Validate(); err != nil {
		return fmt.Errorf("recategorize invoice %d: %w", id, err)
	}

	const q = `UPDATE invoices SET category = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, newCategory, id)
	if err != nil {
		return fmt.Errorf("recategorize invoice %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("recategorize invoice %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("recategorize invoice %d: %w", id, core.ErrNotFound)
	}

	slog.InfoContext(ctx, "Invoice recategorized", log.FieldRecordID, id, log.FieldCategory, newCategory)
	return nil
}

// readWithRetry retries read-only queries on transient failures. Writes
// are never routed through here: an append must apply at most once.
func (r *SQLiteRepository) readWithRetry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxElapsedTime = 2 * time.Second

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if errors.Is(err, sql.ErrNoRows) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(bo, ctx))
}
