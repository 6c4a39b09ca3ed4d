// Package worker contains the AMQP consumer that keeps the analytics
// table in step with committed expense writes.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/storage"
)

// AnalyticsWorker folds applied-expense deltas into the expense
// analytics table. Messages are idempotent per delivery only in the
// at-least-once sense: the delta upsert is atomic, and a requeued
// message is retried until it lands.
type AnalyticsWorker struct {
	storage *storage.Repository
}

func NewAnalyticsWorker(storage *storage.Repository) *AnalyticsWorker {
	return &AnalyticsWorker{storage: storage}
}

// HandleAppliedMessage processes a single spend delta message from AMQP.
func (w *AnalyticsWorker) HandleAppliedMessage(ctx context.Context, msg *amqp.ExpenseAppliedMessage) error {
	slog.InfoContext(ctx, "Processing applied message",
		"category", msg.Category,
		"month", msg.Month,
		"year", msg.Year,
		"delta_cents", msg.DeltaCents)

	if msg.UserID == "" || msg.Category == "" {
		return fmt.Errorf("%w: missing user or category", amqp.ErrMalformedMessage)
	}
	if msg.Month < 1 || msg.Month > 12 {
		return fmt.Errorf("%w: month %d out of range", amqp.ErrMalformedMessage, msg.Month)
	}

	if err := w.storage.ApplyAnalyticsDelta(ctx, msg.UserID, msg.Category, msg.Month, msg.Year, msg.DeltaCents); err != nil {
		return fmt.Errorf("apply analytics delta: %w", err)
	}

	return nil
}
