package storage

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/core"
)

const budgetColumns = "id, user_id, title, amount_cents, spent_cents, category, icon, color, active, created_at, updated_at"

// CreateBudget stores a new budget and fills in its id and timestamps.
// New budgets start with a zero spent aggregate.
func (r *Repository) CreateBudget(ctx context.Context, b *core.Budget) error {
	ts := now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, title, amount_cents, spent_cents, category, icon, color, active, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?, ?, 1, ?, ?)`,
		b.UserID, b.Title, b.Amount.Cents, b.Category, b.Icon, b.Color, ts, ts)
	if err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create budget id: %w", err)
	}
	b.ID = id
	b.Spent = core.Money{}
	b.Active = true
	b.CreatedAt = mustParseTime(ts)
	b.UpdatedAt = b.CreatedAt
	b.RecomputeRemaining()

	slog.InfoContext(ctx, "Budget created", "id", b.ID, "title", b.Title, "amount_cents", b.Amount.Cents)
	return nil
}

// GetBudget reads one active budget owned by the user.
func (r *Repository) GetBudget(ctx context.Context, userID string, id int64) (*core.Budget, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+budgetColumns+` FROM budgets WHERE id = ? AND user_id = ? AND active = 1`,
		id, userID)
	return scanBudget(row)
}

// ListBudgets returns the user's active budgets, newest first. A limit of
// zero or less disables pagination, which rollup callers rely on to see
// the full collection.
func (r *Repository) ListBudgets(ctx context.Context, userID string, page, limit int) ([]core.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = ? AND active = 1 ORDER BY created_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, (page-1)*limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// UpdateBudget rewrites a budget's user-editable fields. The spent
// aggregate is deliberately not touched here; only the aggregate
// maintainer adjusts it.
func (r *Repository) UpdateBudget(ctx context.Context, b *core.Budget) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE budgets
		SET title = ?, amount_cents = ?, category = ?, icon = ?, color = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND active = 1`,
		b.Title, b.Amount.Cents, b.Category, b.Icon, b.Color, now(), b.ID, b.UserID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return requireAffected(res)
}

// SoftDeleteBudget marks a budget inactive. Expenses keep their weak
// reference; subsequent aggregate adjustments against the budget fail
// validation instead.
func (r *Repository) SoftDeleteBudget(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE budgets SET active = 0, updated_at = ? WHERE id = ? AND user_id = ? AND active = 1`,
		now(), id, userID)
	if err != nil {
		return fmt.Errorf("soft delete budget: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Budget soft-deleted", "id", id)
	return nil
}
