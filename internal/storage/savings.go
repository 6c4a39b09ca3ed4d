package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bilancio/internal/core"
)

const savingsExpenseColumns = "id, user_id, category, per_month_cents, per_year_cents, created_at, updated_at"

// CreateSavingsExpense stores a new per-category savings target. The
// yearly figure is recomputed from the monthly one on every write.
func (r *Repository) CreateSavingsExpense(ctx context.Context, s *core.SavingsExpense) error {
	s.RecomputePerYear()
	ts := now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO savings_expenses (user_id, category, per_month_cents, per_year_cents, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.UserID, s.Category, s.PerMonth.Cents, s.PerYear.Cents, ts, ts)
	if err != nil {
		return fmt.Errorf("create savings expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create savings expense id: %w", err)
	}
	s.ID = id
	s.CreatedAt = mustParseTime(ts)
	s.UpdatedAt = s.CreatedAt
	return nil
}

// GetSavingsExpense reads one savings target owned by the user.
func (r *Repository) GetSavingsExpense(ctx context.Context, userID string, id int64) (*core.SavingsExpense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+savingsExpenseColumns+` FROM savings_expenses WHERE id = ? AND user_id = ?`,
		id, userID)
	return scanSavingsExpense(row)
}

// ListSavingsExpenses returns the user's savings targets.
func (r *Repository) ListSavingsExpenses(ctx context.Context, userID string) ([]core.SavingsExpense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+savingsExpenseColumns+` FROM savings_expenses WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list savings expenses: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsExpense
	for rows.Next() {
		s, err := scanSavingsExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// UpdateSavingsExpense rewrites a savings target, recomputing the derived
// yearly figure rather than trusting the stored one.
func (r *Repository) UpdateSavingsExpense(ctx context.Context, s *core.SavingsExpense) error {
	s.RecomputePerYear()
	res, err := r.db.ExecContext(ctx, `
		UPDATE savings_expenses SET category = ?, per_month_cents = ?, per_year_cents = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		s.Category, s.PerMonth.Cents, s.PerYear.Cents, now(), s.ID, s.UserID)
	if err != nil {
		return fmt.Errorf("update savings expense: %w", err)
	}
	return requireAffected(res)
}

// DeleteSavingsExpense removes a savings target (hard delete).
func (r *Repository) DeleteSavingsExpense(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM savings_expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete savings expense: %w", err)
	}
	return requireAffected(res)
}

// UpsertSavingsBudget creates or replaces the user's single overall
// savings target.
func (r *Repository) UpsertSavingsBudget(ctx context.Context, s *core.SavingsBudget) error {
	ts := now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO savings_budgets (user_id, monthly_budget_cents, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET monthly_budget_cents = excluded.monthly_budget_cents, updated_at = excluded.updated_at`,
		s.UserID, s.MonthlyBudget.Cents, ts, ts)
	if err != nil {
		return fmt.Errorf("upsert savings budget: %w", err)
	}

	stored, err := r.GetSavingsBudget(ctx, s.UserID)
	if err != nil {
		return err
	}
	*s = *stored
	return nil
}

// GetSavingsBudget reads the user's overall savings target.
func (r *Repository) GetSavingsBudget(ctx context.Context, userID string) (*core.SavingsBudget, error) {
	var (
		s       core.SavingsBudget
		created string
		updated string
	)
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, monthly_budget_cents, created_at, updated_at
		FROM savings_budgets WHERE user_id = ?`, userID)
	if err := row.Scan(&s.ID, &s.UserID, &s.MonthlyBudget.Cents, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("get savings budget: %w", err)
	}
	s.CreatedAt = mustParseTime(created)
	s.UpdatedAt = mustParseTime(updated)
	return &s, nil
}
