package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"smartexpense/internal/core"
)

const transactionColumns = `id, user_id, account_id, type, amount_cents, description, category, date, created_at`

func scanTransaction(row accountScanner) (core.Transaction, error) {
	var t core.Transaction
	var date, createdAt string
	err := row.Scan(&t.ID, &t.UserID, &t.AccountID, &t.Type, &t.Amount.Cents,
		&t.Description, &t.Category, &date, &createdAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Date = decodeTime(date)
	t.CreatedAt = decodeTime(createdAt)
	return t, nil
}

// InsertTransaction persists a transaction and applies delta cents to the
// referenced account inside one SQL transaction. The balance update is
// relative (balance = balance + delta), so two concurrent postings on the
// same account can never lose an update: SQLite serializes the writes and
// each one is applied on top of whatever committed before it.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t core.Transaction, delta int64) (core.Transaction, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin: %w", err)
	}
	defer dbTx.Rollback()

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, account_id, type, amount_cents, description, category, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.AccountID, t.Type, t.Amount.Cents,
		t.Description, t.Category, encodeTime(t.Date), encodeTime(t.CreatedAt))
	if err != nil {
		// A dangling account_id trips the FK constraint before the
		// balance update ever runs.
		if strings.Contains(err.Error(), "FOREIGN KEY") {
			return core.Transaction{}, core.NotFound("account")
		}
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	if delta != 0 {
		res, err := dbTx.ExecContext(ctx, `
			UPDATE accounts SET balance_cents = balance_cents + ?, updated_at = ? WHERE id = ?`,
			delta, encodeTime(nowUTC()), t.AccountID)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("update balance: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return core.Transaction{}, core.NotFound("account")
		}
	}

	if err := dbTx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"transaction_id", t.ID,
		"account_id", t.AccountID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents)
	return t, nil
}

// TransactionsInRange lists a user's transactions with date in [from, to),
// newest first.
func (r *SQLiteRepository) TransactionsInRange(ctx context.Context, userID string, from, to time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = ? AND date >= ? AND date < ?
		ORDER BY date DESC, id`, userID, encodeTime(from), encodeTime(to))
	if err != nil {
		return nil, fmt.Errorf("list transactions in range: %w", err)
	}
	return collectTransactions(rows)
}

// RecentTransactions lists a user's most recent transactions.
func (r *SQLiteRepository) RecentTransactions(ctx context.Context, userID string, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = ?
		ORDER BY date DESC, id
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	return collectTransactions(rows)
}

// TransactionsByCategory lists a user's transactions for one category,
// newest first.
func (r *SQLiteRepository) TransactionsByCategory(ctx context.Context, userID string, category core.Category) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = ? AND category = ?
		ORDER BY date DESC, id`, userID, category)
	if err != nil {
		return nil, fmt.Errorf("list transactions by category: %w", err)
	}
	return collectTransactions(rows)
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	defer rows.Close()
	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
