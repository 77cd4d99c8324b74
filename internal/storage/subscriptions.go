package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"smartexpense/internal/core"
)

const subscriptionColumns = `id, user_id, name, amount_cents, currency, frequency, next_billing, is_active, created_at`

func scanSubscription(row accountScanner) (core.Subscription, error) {
	var s core.Subscription
	var isActive int
	var nextBilling, createdAt string
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Amount.Cents, &s.Currency,
		&s.Frequency, &nextBilling, &isActive, &createdAt)
	if err != nil {
		return core.Subscription{}, err
	}
	s.IsActive = isActive != 0
	s.NextBilling = decodeTime(nextBilling)
	s.CreatedAt = decodeTime(createdAt)
	return s, nil
}

func (r *SQLiteRepository) CreateSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (id, user_id, name, amount_cents, currency, frequency, next_billing, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Name, s.Amount.Cents, s.Currency, s.Frequency,
		encodeTime(s.NextBilling), boolToInt(s.IsActive), encodeTime(s.CreatedAt))
	if err != nil {
		return core.Subscription{}, fmt.Errorf("create subscription: %w", err)
	}

	slog.InfoContext(ctx, "Subscription created",
		"subscription_id", s.ID, "user_id", s.UserID, "name", s.Name, "frequency", s.Frequency)
	return s, nil
}

// UserSubscriptions lists a user's active subscriptions, next billing first.
func (r *SQLiteRepository) UserSubscriptions(ctx context.Context, userID string) ([]core.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE user_id = ? AND is_active = 1
		ORDER BY next_billing, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []core.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateSubscription(ctx context.Context, userID string, s core.Subscription) (core.Subscription, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions SET name = ?, amount_cents = ?, currency = ?, frequency = ?, next_billing = ?, is_active = ?
		WHERE id = ? AND user_id = ?`,
		s.Name, s.Amount.Cents, s.Currency, s.Frequency, encodeTime(s.NextBilling),
		boolToInt(s.IsActive), s.ID, userID)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("update subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Subscription{}, core.NotFound("subscription")
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ?`, s.ID)
	updated, err := scanSubscription(row)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("reload subscription: %w", err)
	}
	return updated, nil
}

func (r *SQLiteRepository) DeactivateSubscription(ctx context.Context, userID, subscriptionID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions SET is_active = 0 WHERE id = ? AND user_id = ?`,
		subscriptionID, userID)
	if err != nil {
		return fmt.Errorf("deactivate subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NotFound("subscription")
	}
	return nil
}

// DueSubscriptions lists active subscriptions whose next billing date is
// at or before the cutoff. Used by the billing worker.
func (r *SQLiteRepository) DueSubscriptions(ctx context.Context, cutoff time.Time) ([]core.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE is_active = 1 AND next_billing <= ?
		ORDER BY next_billing, id`, encodeTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("list due subscriptions: %w", err)
	}
	defer rows.Close()

	var out []core.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AdvanceSubscription moves a subscription's next billing date forward.
// The guard on the previous value keeps two worker runs from advancing
// the same subscription twice.
func (r *SQLiteRepository) AdvanceSubscription(ctx context.Context, subscriptionID string, from, to time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions SET next_billing = ? WHERE id = ? AND next_billing = ?`,
		encodeTime(to), subscriptionID, encodeTime(from))
	if err != nil {
		return fmt.Errorf("advance subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NotFound("subscription")
	}
	return nil
}
