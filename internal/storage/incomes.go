package storage

import (
	"context"
	"fmt"

	"bilancio/internal/core"
)

const incomeColumns = "id, user_id, type, amount_cents, frequency, created_at, updated_at"

// CreateIncome stores a new income source.
func (r *Repository) CreateIncome(ctx context.Context, in *core.Income) error {
	ts := now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO incomes (user_id, type, amount_cents, frequency, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.UserID, in.Type, in.Amount.Cents, string(in.Frequency), ts, ts)
	if err != nil {
		return fmt.Errorf("create income: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create income id: %w", err)
	}
	in.ID = id
	in.CreatedAt = mustParseTime(ts)
	in.UpdatedAt = in.CreatedAt
	return nil
}

// GetIncome reads one income source owned by the user.
func (r *Repository) GetIncome(ctx context.Context, userID string, id int64) (*core.Income, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+incomeColumns+` FROM incomes WHERE id = ? AND user_id = ?`,
		id, userID)
	return scanIncome(row)
}

// ListIncomes returns the user's income sources.
func (r *Repository) ListIncomes(ctx context.Context, userID string) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+incomeColumns+` FROM incomes WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *in)
	}
	return out, rows.Err()
}

// UpdateIncome rewrites an income source.
func (r *Repository) UpdateIncome(ctx context.Context, in *core.Income) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE incomes SET type = ?, amount_cents = ?, frequency = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		in.Type, in.Amount.Cents, string(in.Frequency), now(), in.ID, in.UserID)
	if err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	return requireAffected(res)
}

// DeleteIncome removes an income source. Incomes are hard-deleted, there
// is no soft flag.
func (r *Repository) DeleteIncome(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM incomes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return requireAffected(res)
}
