// Package storage implements the durable entity store on SQLite. One
// repository instance is shared by the HTTP server and the workers.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"smartexpense/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// busy_timeout makes concurrent writers queue instead of failing,
	// foreign_keys enables the ON DELETE CASCADE behavior the schema
	// relies on for user deletion.
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Timestamps are stored as RFC3339Nano UTC strings so that string
// comparison in SQL matches chronological order.
func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// CreateUser inserts a new user row. A duplicate email surfaces as a
// validation error rather than a bare constraint failure.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	proExpires := sql.NullString{}
	if !u.ProExpiresAt.IsZero() {
		proExpires = sql.NullString{String: encodeTime(u.ProExpiresAt), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, is_pro, pro_expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		boolToInt(u.IsPro), proExpires, encodeTime(u.CreatedAt), encodeTime(u.UpdatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return core.User{}, core.Validation("email already registered")
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", u.ID, "email", u.Email)
	return u, nil
}

const userColumns = `id, email, password_hash, first_name, last_name, is_pro, pro_expires_at, created_at, updated_at`

func scanUser(row *sql.Row) (core.User, error) {
	var u core.User
	var isPro int
	var proExpires sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&isPro, &proExpires, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.NotFound("user")
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.IsPro = isPro != 0
	if proExpires.Valid {
		u.ProExpiresAt = decodeTime(proExpires.String)
	}
	u.CreatedAt = decodeTime(createdAt)
	u.UpdatedAt = decodeTime(updatedAt)
	return u, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (core.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// SetPro flips the user's Pro flag and expiry.
func (r *SQLiteRepository) SetPro(ctx context.Context, userID string, isPro bool, expiresAt time.Time) (core.User, error) {
	proExpires := sql.NullString{}
	if !expiresAt.IsZero() {
		proExpires = sql.NullString{String: encodeTime(expiresAt), Valid: true}
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET is_pro = ?, pro_expires_at = ?, updated_at = ? WHERE id = ?`,
		boolToInt(isPro), proExpires, encodeTime(time.Now()), userID)
	if err != nil {
		return core.User{}, fmt.Errorf("set pro: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.User{}, core.NotFound("user")
	}

	slog.InfoContext(ctx, "User tier updated", "user_id", userID, "is_pro", isPro)
	return r.GetUser(ctx, userID)
}
