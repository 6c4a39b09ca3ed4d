package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// RenewalProcessor advances the next payment date of recurring
// subscriptions whose renewal has come due. Total spend is not touched;
// it stays a user-maintained figure.
type RenewalProcessor struct {
	storage *storage.Repository
}

// NewRenewalProcessor creates a new subscription renewal processor
func NewRenewalProcessor(storage *storage.Repository) *RenewalProcessor {
	return &RenewalProcessor{storage: storage}
}

// ProcessDueRenewals advances every due recurring subscription to its
// next payment date strictly after now. A subscription several cycles
// behind is advanced in one pass.
func (p *RenewalProcessor) ProcessDueRenewals(ctx context.Context, now time.Time) (int, error) {
	if p.storage == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	due, err := p.storage.DueSubscriptions(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to get due subscriptions: %w", err)
	}

	slog.InfoContext(ctx, "Processing subscription renewals",
		"total_due", len(due),
		"processing_date", now.Format("2006-01-02"))

	processedCount := 0

	for _, sub := range due {
		if sub.NextPaymentDate == nil {
			continue
		}

		next := nextRenewalAfter(*sub.NextPaymentDate, sub.DurationMonths, now)

		if err := p.storage.AdvanceSubscriptionRenewal(ctx, sub.ID, next); err != nil {
			slog.ErrorContext(ctx, "Failed to advance subscription renewal",
				"subscription_id", sub.ID,
				"name", sub.Name,
				"error", err)
			continue
		}

		processedCount++
		slog.InfoContext(ctx, "Advanced subscription renewal",
			"subscription_id", sub.ID,
			"name", sub.Name,
			"next_payment_date", next.Format("2006-01-02"))
	}

	slog.InfoContext(ctx, "Subscription renewal processing complete",
		"processed", processedCount,
		"total_due", len(due))

	return processedCount, nil
}

// nextRenewalAfter steps forward by the billing cycle until the date is
// strictly after now. A non-positive duration is treated as monthly so a
// bad row cannot loop forever.
func nextRenewalAfter(current core.Date, durationMonths int, now time.Time) core.Date {
	if durationMonths <= 0 {
		durationMonths = 1
	}
	next := current.Time
	for !next.After(now) {
		next = next.AddDate(0, durationMonths, 0)
	}
	return core.Date{Time: next}
}
