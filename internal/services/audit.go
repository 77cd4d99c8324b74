package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"smartexpense/internal/amqp"
	"smartexpense/internal/core"
)

// AuditStore is the slice of the store the audit recorder needs.
type AuditStore interface {
	AppendAudit(ctx context.Context, e core.AuditEntry) error
}

// AuditRecorder turns consumed transaction events into audit rows.
type AuditRecorder struct {
	store AuditStore
}

func NewAuditRecorder(store AuditStore) *AuditRecorder {
	return &AuditRecorder{store: store}
}

// HandleTransactionPosted records one consumed event in the audit log.
func (r *AuditRecorder) HandleTransactionPosted(ctx context.Context, msg *amqp.TransactionPostedMessage) error {
	if msg.TransactionID == "" || msg.UserID == "" {
		return fmt.Errorf("incomplete transaction event: %+v", msg)
	}

	recordedAt := msg.Timestamp
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	err := r.store.AppendAudit(ctx, core.AuditEntry{
		UserID:        msg.UserID,
		TransactionID: msg.TransactionID,
		AccountID:     msg.AccountID,
		Type:          msg.Type,
		AmountCents:   msg.AmountCents,
		RecordedAt:    recordedAt,
	})
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	slog.InfoContext(ctx, "Recorded transaction audit entry",
		"transaction_id", msg.TransactionID,
		"user_id", msg.UserID,
		"amount_cents", msg.AmountCents)

	return nil
}
