package storage

import (
	"context"
	"fmt"

	"bilancio/internal/core"
)

const analyticsColumns = "id, user_id, category, actual_cents, budget_cents, last_year_cents, description, month, year, created_at, updated_at"

// UpsertExpenseAnalytics writes a full analytics row, replacing any
// existing row for the same (user, category, month, year) cell.
func (r *Repository) UpsertExpenseAnalytics(ctx context.Context, a *core.ExpenseAnalytics) error {
	ts := now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expense_analytics (user_id, category, actual_cents, budget_cents, last_year_cents, description, month, year, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, category, month, year) DO UPDATE SET
			actual_cents = excluded.actual_cents,
			budget_cents = excluded.budget_cents,
			last_year_cents = excluded.last_year_cents,
			description = excluded.description,
			updated_at = excluded.updated_at`,
		a.UserID, a.Category, a.Actual.Cents, a.Budget.Cents, a.LastYear.Cents, a.Description, a.Month, a.Year, ts, ts)
	if err != nil {
		return fmt.Errorf("upsert expense analytics: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+analyticsColumns+` FROM expense_analytics
		WHERE user_id = ? AND category = ? AND month = ? AND year = ?`,
		a.UserID, a.Category, a.Month, a.Year)
	stored, err := scanAnalytics(row)
	if err != nil {
		return err
	}
	*a = *stored
	return nil
}

// ListExpenseAnalytics returns the user's analytics rows for a year,
// ordered by category then month so rollups see a stable sequence.
func (r *Repository) ListExpenseAnalytics(ctx context.Context, userID string, year int) ([]core.ExpenseAnalytics, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+analyticsColumns+` FROM expense_analytics
		WHERE user_id = ? AND year = ? ORDER BY category, month`,
		userID, year)
	if err != nil {
		return nil, fmt.Errorf("list expense analytics: %w", err)
	}
	defer rows.Close()

	var out []core.ExpenseAnalytics
	for rows.Next() {
		a, err := scanAnalytics(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// DeleteExpenseAnalytics removes one analytics row owned by the user.
func (r *Repository) DeleteExpenseAnalytics(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expense_analytics WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense analytics: %w", err)
	}
	return requireAffected(res)
}

// ApplyAnalyticsDelta folds an expense delta into the actual spend of
// the matching analytics cell, creating the cell if it does not exist
// yet. Used by the worker that consumes applied-expense events, so the
// write has to be a single atomic statement.
func (r *Repository) ApplyAnalyticsDelta(ctx context.Context, userID, category string, month, year int, deltaCents int64) error {
	ts := now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expense_analytics (user_id, category, actual_cents, budget_cents, last_year_cents, description, month, year, created_at, updated_at)
		VALUES (?, ?, ?, 0, 0, '', ?, ?, ?, ?)
		ON CONFLICT(user_id, category, month, year) DO UPDATE SET
			actual_cents = actual_cents + excluded.actual_cents,
			updated_at = excluded.updated_at`,
		userID, category, deltaCents, month, year, ts, ts)
	if err != nil {
		return fmt.Errorf("apply analytics delta: %w", err)
	}
	return nil
}
