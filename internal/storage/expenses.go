package storage

import (
	"context"
	"fmt"
	"time"

	"bilancio/internal/core"
)

const expenseColumns = "id, user_id, name, amount_cents, date, category, receipt, description, budget_id, active, created_at, updated_at"

// ExpenseFilter narrows ListExpenses. Zero values mean "no filter";
// pagination is applied around, never inside, rollups.
type ExpenseFilter struct {
	Category string
	Month    int
	Year     int
	Page     int
	Limit    int
}

// GetExpense reads one active expense owned by the user.
func (r *Repository) GetExpense(ctx context.Context, userID string, id int64) (*core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND user_id = ? AND active = 1`,
		id, userID)
	return scanExpense(row)
}

// ListExpenses returns the user's active expenses, newest first.
func (r *Repository) ListExpenses(ctx context.Context, userID string, f ExpenseFilter) ([]core.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE user_id = ? AND active = 1`
	args := []any{userID}

	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Year != 0 && f.Month != 0 {
		monthStart := time.Date(f.Year, time.Month(f.Month), 1, 0, 0, 0, 0, time.UTC)
		monthEnd := monthStart.AddDate(0, 1, -1)
		query += ` AND date >= ? AND date <= ?`
		args = append(args, monthStart.Format(dateFormat), monthEnd.Format(dateFormat))
	} else if f.Year != 0 {
		query += ` AND date >= ? AND date <= ?`
		args = append(args, fmt.Sprintf("%04d-01-01", f.Year), fmt.Sprintf("%04d-12-31", f.Year))
	}

	query += ` ORDER BY date DESC, id DESC`
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, (page-1)*f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// ListExpensesBetween returns the user's active expenses inside the
// closed date range [start, end], used by dashboard and insight rollups.
func (r *Repository) ListExpensesBetween(ctx context.Context, userID string, start, end time.Time) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+expenseColumns+` FROM expenses
		WHERE user_id = ? AND active = 1 AND date >= ? AND date <= ?
		ORDER BY date ASC, id ASC`,
		userID, start.Format(dateFormat), end.Format(dateFormat))
	if err != nil {
		return nil, fmt.Errorf("list expenses between: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}
