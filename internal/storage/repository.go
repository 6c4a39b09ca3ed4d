// Package storage implements the SQLite entity store.
//
// Every record is owned by exactly one user; all queries filter on
// user_id. Budget, expense, and subscription deletion is a soft flag,
// income/savings/analytics rows are hard-deleted or upserted.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bilancio/internal/core"

	_ "modernc.org/sqlite"
)

const (
	timestampFormat = time.RFC3339Nano
	dateFormat      = "2006-01-02"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Tx scopes writes that must commit or roll back together, in particular
// an expense write paired with its budget aggregate adjustment.
type Tx struct {
	tx *sql.Tx
}

// InTx runs fn inside a transaction, rolling back when fn returns an
// error and committing otherwise.
func (r *Repository) InTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&Tx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// AdjustBudgetSpent applies a signed delta to a budget's spent aggregate
// as an atomic add in SQL, so concurrent expense writes against the same
// budget never lose updates. Matching zero rows means the budget is
// missing, foreign, or inactive and the caller must abort.
func (t *Tx) AdjustBudgetSpent(ctx context.Context, userID string, budgetID int64, deltaCents int64) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE budgets
		SET spent_cents = spent_cents + ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND active = 1`,
		deltaCents, now(), budgetID, userID)
	if err != nil {
		return fmt.Errorf("adjust budget spent: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjust budget spent rows: %w", err)
	}
	if affected == 0 {
		return core.ErrBudgetUnavailable
	}
	return nil
}

// InsertExpense stores a new expense and fills in its id and timestamps.
func (t *Tx) InsertExpense(ctx context.Context, e *core.Expense) error {
	ts := now()
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO expenses (user_id, name, amount_cents, date, category, receipt, description, budget_id, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		e.UserID, e.Name, e.Amount.Cents, e.Date.Format(dateFormat), e.Category,
		boolToInt(e.Receipt), e.Description, e.BudgetID, ts, ts)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert expense id: %w", err)
	}
	e.ID = id
	e.Active = true
	e.CreatedAt = mustParseTime(ts)
	e.UpdatedAt = e.CreatedAt
	return nil
}

// GetExpense reads one active expense inside the transaction.
func (t *Tx) GetExpense(ctx context.Context, userID string, id int64) (*core.Expense, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT id, user_id, name, amount_cents, date, category, receipt, description, budget_id, active, created_at, updated_at
		FROM expenses
		WHERE id = ? AND user_id = ? AND active = 1`,
		id, userID)
	return scanExpense(row)
}

// UpdateExpense rewrites an expense's mutable fields.
func (t *Tx) UpdateExpense(ctx context.Context, e *core.Expense) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE expenses
		SET name = ?, amount_cents = ?, date = ?, category = ?, receipt = ?, description = ?, budget_id = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND active = 1`,
		e.Name, e.Amount.Cents, e.Date.Format(dateFormat), e.Category,
		boolToInt(e.Receipt), e.Description, e.BudgetID, now(), e.ID, e.UserID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireAffected(res)
}

// MarkExpenseInactive soft-deletes an expense.
func (t *Tx) MarkExpenseInactive(ctx context.Context, userID string, id int64) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE expenses SET active = 0, updated_at = ? WHERE id = ? AND user_id = ? AND active = 1`,
		now(), id, userID)
	if err != nil {
		return fmt.Errorf("soft delete expense: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(timestampFormat)
}

func mustParseTime(s string) time.Time {
	t, err := time.Parse(timestampFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
