// Package services holds the background processors run by the workers.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"smartexpense/internal/core"
)

// SubscriptionStore is the slice of the store the billing processor needs.
type SubscriptionStore interface {
	DueSubscriptions(ctx context.Context, cutoff time.Time) ([]core.Subscription, error)
	AdvanceSubscription(ctx context.Context, subscriptionID string, from, to time.Time) error
}

// BillingProcessor rolls due subscriptions forward to their next
// billing date.
type BillingProcessor struct {
	store SubscriptionStore
}

func NewBillingProcessor(store SubscriptionStore) *BillingProcessor {
	return &BillingProcessor{store: store}
}

// RollDueSubscriptions advances every active subscription whose next
// billing date has passed. A subscription that has been due for several
// periods is rolled until its next billing date is in the future.
func (p *BillingProcessor) RollDueSubscriptions(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	due, err := p.store.DueSubscriptions(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list due subscriptions: %w", err)
	}

	slog.InfoContext(ctx, "Processing due subscriptions",
		"total_due", len(due),
		"processing_date", now.Format("2006-01-02"))

	processedCount := 0

	for _, sub := range due {
		next := nextBilling(sub.NextBilling, sub.Frequency, now)
		if next.Equal(sub.NextBilling) {
			slog.ErrorContext(ctx, "Unknown subscription frequency",
				"subscription_id", sub.ID,
				"frequency", sub.Frequency)
			continue
		}

		err := p.store.AdvanceSubscription(ctx, sub.ID, sub.NextBilling, next)
		if err != nil {
			// Another run may have advanced it already.
			slog.ErrorContext(ctx, "Failed to advance subscription",
				"subscription_id", sub.ID,
				"error", err)
			continue
		}

		processedCount++
		slog.InfoContext(ctx, "Advanced subscription",
			"subscription_id", sub.ID,
			"name", sub.Name,
			"amount_cents", sub.Amount.Cents,
			"next_billing", next.Format("2006-01-02"))
	}

	slog.InfoContext(ctx, "Subscription billing complete",
		"processed", processedCount,
		"total_due", len(due))

	return processedCount, nil
}

// nextBilling advances from one period past now. Returns from unchanged
// for an unknown frequency.
func nextBilling(from time.Time, freq core.Frequency, now time.Time) time.Time {
	next := from
	for !next.After(now) {
		switch freq {
		case core.Monthly:
			next = next.AddDate(0, 1, 0)
		case core.Yearly:
			next = next.AddDate(1, 0, 0)
		case core.Weekly:
			next = next.AddDate(0, 0, 7)
		default:
			return from
		}
	}
	return next
}
