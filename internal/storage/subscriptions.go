package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/core"
)

const subscriptionColumns = "id, user_id, name, plan, total_spend_cents, duration_months, recurring, category, color, next_payment_date, active, created_at, updated_at"

// CreateSubscription stores a new subscription.
func (r *Repository) CreateSubscription(ctx context.Context, s *core.Subscription) error {
	ts := now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (user_id, name, plan, total_spend_cents, duration_months, recurring, category, color, next_payment_date, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		s.UserID, s.Name, s.Plan, s.TotalSpend.Cents, s.DurationMonths,
		boolToInt(s.Recurring), s.Category, s.Color, nullableDate(s.NextPaymentDate), ts, ts)
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create subscription id: %w", err)
	}
	s.ID = id
	s.Active = true
	s.CreatedAt = mustParseTime(ts)
	s.UpdatedAt = s.CreatedAt
	return nil
}

// GetSubscription reads one active subscription owned by the user.
func (r *Repository) GetSubscription(ctx context.Context, userID string, id int64) (*core.Subscription, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ? AND user_id = ? AND active = 1`,
		id, userID)
	return scanSubscription(row)
}

// ListSubscriptions returns the user's active subscriptions, newest first.
func (r *Repository) ListSubscriptions(ctx context.Context, userID string, page, limit int) ([]core.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = ? AND active = 1 ORDER BY created_at DESC, id DESC`
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
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []core.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// UpdateSubscription rewrites a subscription's user-editable fields.
func (r *Repository) UpdateSubscription(ctx context.Context, s *core.Subscription) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET name = ?, plan = ?, total_spend_cents = ?, duration_months = ?, recurring = ?, category = ?, color = ?, next_payment_date = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND active = 1`,
		s.Name, s.Plan, s.TotalSpend.Cents, s.DurationMonths, boolToInt(s.Recurring),
		s.Category, s.Color, nullableDate(s.NextPaymentDate), now(), s.ID, s.UserID)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	return requireAffected(res)
}

// SoftDeleteSubscription marks a subscription inactive.
func (r *Repository) SoftDeleteSubscription(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions SET active = 0, updated_at = ? WHERE id = ? AND user_id = ? AND active = 1`,
		now(), id, userID)
	if err != nil {
		return fmt.Errorf("soft delete subscription: %w", err)
	}
	return requireAffected(res)
}

// DueSubscriptions returns, across all users, active recurring
// subscriptions whose next payment date has passed. Used by the renewal
// worker.
func (r *Repository) DueSubscriptions(ctx context.Context, asOf time.Time) ([]core.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE active = 1 AND recurring = 1 AND next_payment_date IS NOT NULL AND next_payment_date <= ?
		ORDER BY next_payment_date ASC`,
		asOf.Format(dateFormat))
	if err != nil {
		return nil, fmt.Errorf("due subscriptions: %w", err)
	}
	defer rows.Close()

	var out []core.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// AdvanceSubscriptionRenewal moves a subscription's next payment date
// forward after the renewal worker has processed it.
func (r *Repository) AdvanceSubscriptionRenewal(ctx context.Context, id int64, next core.Date) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions SET next_payment_date = ?, updated_at = ? WHERE id = ? AND active = 1`,
		next.Format(dateFormat), now(), id)
	if err != nil {
		return fmt.Errorf("advance subscription renewal: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Subscription renewal advanced", "id", id, "next_payment_date", next.Format(dateFormat))
	return nil
}

func nullableDate(d *core.Date) any {
	if d == nil {
		return nil
	}
	return d.Format(dateFormat)
}
