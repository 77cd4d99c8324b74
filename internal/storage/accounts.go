package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"smartexpense/internal/core"
)

const accountColumns = `id, user_id, name, type, currency, balance_cents, is_active, created_at, updated_at`

type accountScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row accountScanner) (core.Account, error) {
	var a core.Account
	var isActive int
	var createdAt, updatedAt string
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Currency,
		&a.Balance.Cents, &isActive, &createdAt, &updatedAt)
	if err != nil {
		return core.Account{}, err
	}
	a.IsActive = isActive != 0
	a.CreatedAt = decodeTime(createdAt)
	a.UpdatedAt = decodeTime(updatedAt)
	return a, nil
}

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, name, type, currency, balance_cents, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Name, a.Type, a.Currency, a.Balance.Cents,
		boolToInt(a.IsActive), encodeTime(a.CreatedAt), encodeTime(a.UpdatedAt))
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}

	slog.InfoContext(ctx, "Account created",
		"account_id", a.ID, "user_id", a.UserID, "type", a.Type, "currency", a.Currency)
	return a, nil
}

// GetAccount fetches an account by id regardless of active flag.
func (r *SQLiteRepository) GetAccount(ctx context.Context, accountID string) (core.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, accountID)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.NotFound("account")
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// ActiveAccounts lists a user's active accounts, oldest first.
func (r *SQLiteRepository) ActiveAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE user_id = ? AND is_active = 1
		ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateAccount edits the mutable descriptive fields. Balance is cached
// ledger state and changes only through InsertTransaction. The WHERE is
// scoped by owner so users cannot edit foreign accounts.
func (r *SQLiteRepository) UpdateAccount(ctx context.Context, userID string, a core.Account) (core.Account, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET name = ?, type = ?, currency = ?, is_active = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		a.Name, a.Type, a.Currency, boolToInt(a.IsActive), encodeTime(a.UpdatedAt), a.ID, userID)
	if err != nil {
		return core.Account{}, fmt.Errorf("update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Account{}, core.NotFound("account")
	}
	return r.GetAccount(ctx, a.ID)
}

// DeactivateAccount soft-deletes by flipping the active flag. The row and
// its transactions stay behind for history.
func (r *SQLiteRepository) DeactivateAccount(ctx context.Context, userID, accountID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET is_active = 0, updated_at = ? WHERE id = ? AND user_id = ?`,
		encodeTime(nowUTC()), accountID, userID)
	if err != nil {
		return fmt.Errorf("deactivate account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NotFound("account")
	}

	slog.InfoContext(ctx, "Account deactivated", "account_id", accountID, "user_id", userID)
	return nil
}
