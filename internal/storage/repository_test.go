package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"smartexpense/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *SQLiteRepository) core.User {
	t.Helper()
	now := time.Now().UTC()
	u, err := repo.CreateUser(context.Background(), core.User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func seedAccount(t *testing.T, repo *SQLiteRepository, userID string, balanceCents int64) core.Account {
	t.Helper()
	now := time.Now().UTC()
	a, err := repo.CreateAccount(context.Background(), core.Account{
		ID: uuid.NewString(), UserID: userID, Name: "Wallet", Type: core.Cash,
		Currency: "USD", Balance: core.Money{Cents: balanceCents}, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return a
}

func TestUserRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo)

	got, err := repo.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Email != u.Email || got.IsPro {
		t.Fatalf("user mismatch: %+v", got)
	}

	byEmail, err := repo.GetUserByEmail(ctx, u.Email)
	if err != nil || byEmail.ID != u.ID {
		t.Fatalf("get by email: %+v err=%v", byEmail, err)
	}

	if _, err := repo.GetUser(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Duplicate email is a validation error.
	dup := u
	dup.ID = uuid.NewString()
	if _, err := repo.CreateUser(ctx, dup); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected ErrValidation for duplicate email, got %v", err)
	}
}

func TestSetPro(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo)

	expires := time.Now().UTC().AddDate(0, 1, 0).Truncate(time.Second)
	got, err := repo.SetPro(ctx, u.ID, true, expires)
	if err != nil {
		t.Fatalf("set pro: %v", err)
	}
	if !got.IsPro || !got.ProExpiresAt.Equal(expires) {
		t.Fatalf("pro not applied: %+v", got)
	}
}

func TestInsertTransactionUpdatesBalanceAtomically(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo)
	a := seedAccount(t, repo, u.ID, 10000)

	now := time.Now().UTC()
	tx := core.Transaction{
		ID: uuid.NewString(), UserID: u.ID, AccountID: a.ID, Type: core.Expense,
		Amount: core.Money{Cents: 2550}, Description: "lunch", Category: "food",
		Date: now, CreatedAt: now,
	}
	if _, err := repo.InsertTransaction(ctx, tx, -2550); err != nil {
		t.Fatalf("insert transaction: %v", err)
	}

	got, err := repo.GetAccount(ctx, a.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got.Balance.Cents != 7450 {
		t.Fatalf("balance = %d, want 7450", got.Balance.Cents)
	}

	// Posting against a missing account rolls back the insert too.
	bad := tx
	bad.ID = uuid.NewString()
	bad.AccountID = "missing"
	if _, err := repo.InsertTransaction(ctx, bad, -100); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	txs, err := repo.RecentTransactions(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("rolled-back insert leaked: %d rows", len(txs))
	}
}

func TestTransactionsInRange(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo)
	a := seedAccount(t, repo, u.ID, 0)

	post := func(day int, cents int64) {
		t.Helper()
		date := time.Date(2024, 1, day, 12, 0, 0, 0, time.UTC)
		tx := core.Transaction{
			ID: uuid.NewString(), UserID: u.ID, AccountID: a.ID, Type: core.Expense,
			Amount: core.Money{Cents: cents}, Description: "d", Category: "food",
			Date: date, CreatedAt: date,
		}
		if _, err := repo.InsertTransaction(ctx, tx, -cents); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	post(5, 100)
	post(20, 200)
	// Outside January.
	tx := core.Transaction{
		ID: uuid.NewString(), UserID: u.ID, AccountID: a.ID, Type: core.Expense,
		Amount: core.Money{Cents: 300}, Description: "d", Category: "food",
		Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), CreatedAt: time.Now().UTC(),
	}
	if _, err := repo.InsertTransaction(ctx, tx, -300); err != nil {
		t.Fatalf("insert: %v", err)
	}

	r, _ := core.ParseMonth("2024-01")
	got, err := repo.TransactionsInRange(ctx, u.ID, r.Start, r.End)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d transactions, want 2", len(got))
	}
	// Newest first.
	if got[0].Date.Day() != 20 || got[1].Date.Day() != 5 {
		t.Fatalf("wrong order: %v, %v", got[0].Date, got[1].Date)
	}
}

func TestAccountLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo)
	a := seedAccount(t, repo, u.ID, 0)

	a.Name = "Renamed"
	a.UpdatedAt = time.Now().UTC()
	updated, err := repo.UpdateAccount(ctx, u.ID, a)
	if err != nil || updated.Name != "Renamed" {
		t.Fatalf("update: %+v err=%v", updated, err)
	}

	// Foreign owner cannot touch the row.
	if _, err := repo.UpdateAccount(ctx, "other-user", a); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign update, got %v", err)
	}

	if err := repo.DeactivateAccount(ctx, u.ID, a.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	active, err := repo.ActiveAccounts(ctx, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("deactivated account still listed")
	}
	// Soft delete: the row itself survives.
	if _, err := repo.GetAccount(ctx, a.ID); err != nil {
		t.Fatalf("soft-deleted account should still fetch: %v", err)
	}
}

func TestSubscriptionDueAndAdvance(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo)

	now := time.Now().UTC().Truncate(time.Second)
	s, err := repo.CreateSubscription(ctx, core.Subscription{
		ID: uuid.NewString(), UserID: u.ID, Name: "Netflix",
		Amount: core.Money{Cents: 1599}, Currency: "USD", Frequency: core.Monthly,
		NextBilling: now.AddDate(0, 0, -3), IsActive: true, CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}

	due, err := repo.DueSubscriptions(ctx, now)
	if err != nil || len(due) != 1 {
		t.Fatalf("due = %d err=%v", len(due), err)
	}

	next := due[0].NextBilling.AddDate(0, 1, 0)
	if err := repo.AdvanceSubscription(ctx, s.ID, due[0].NextBilling, next); err != nil {
		t.Fatalf("advance: %v", err)
	}
	// Second advance from the stale date must not apply.
	if err := repo.AdvanceSubscription(ctx, s.ID, due[0].NextBilling, next); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("stale advance should fail, got %v", err)
	}
}

func TestBudgetGoalLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo)

	b, err := repo.CreateBudgetGoal(ctx, core.BudgetGoal{
		ID: uuid.NewString(), UserID: u.ID, Category: "food",
		MonthlyLimit: core.Money{Cents: 50000}, Month: "2024-01",
		IsActive: true, CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create budget goal: %v", err)
	}

	b.CurrentSpent = core.Money{Cents: 12345}
	updated, err := repo.UpdateBudgetGoal(ctx, u.ID, b)
	if err != nil || updated.CurrentSpent.Cents != 12345 {
		t.Fatalf("update: %+v err=%v", updated, err)
	}

	if err := repo.DeactivateBudgetGoal(ctx, u.ID, b.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	goals, err := repo.UserBudgetGoals(ctx, u.ID)
	if err != nil || len(goals) != 0 {
		t.Fatalf("goals = %d err=%v", len(goals), err)
	}
}

func TestAppendAudit(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.AppendAudit(context.Background(), core.AuditEntry{
		UserID: "u", TransactionID: "t", AccountID: "a",
		Type: core.Income, AmountCents: 100, RecordedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("append audit: %v", err)
	}
}
