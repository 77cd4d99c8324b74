package storage

import (
	"context"
	"fmt"
	"log/slog"

	"smartexpense/internal/core"
)

func (r *SQLiteRepository) AppendAudit(ctx context.Context, e core.AuditEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (user_id, transaction_id, account_id, type, amount_cents, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.UserID, e.TransactionID, e.AccountID, e.Type, e.AmountCents, encodeTime(e.RecordedAt))
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	slog.DebugContext(ctx, "Audit entry recorded",
		"transaction_id", e.TransactionID, "user_id", e.UserID)
	return nil
}
