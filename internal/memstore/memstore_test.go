package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"smartexpense/internal/core"
)

func TestInsertTransactionAppliesDelta(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := s.CreateAccount(ctx, core.Account{
		ID: "acc-1", UserID: "u1", Name: "Wallet", Type: core.Cash,
		Currency: "USD", Balance: core.Money{Cents: 5000}, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	tx := core.Transaction{
		ID: "tx-1", UserID: "u1", AccountID: "acc-1", Type: core.Income,
		Amount: core.Money{Cents: 1500}, Description: "gig", Category: "freelance",
		Date: now, CreatedAt: now,
	}
	if _, err := s.InsertTransaction(ctx, tx, 1500); err != nil {
		t.Fatalf("insert: %v", err)
	}

	a, err := s.GetAccount(ctx, "acc-1")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if a.Balance.Cents != 6500 {
		t.Fatalf("balance = %d, want 6500", a.Balance.Cents)
	}

	tx.ID = "tx-2"
	tx.AccountID = "missing"
	if _, err := s.InsertTransaction(ctx, tx, 100); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransactionOrderingNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()
	s.CreateAccount(ctx, core.Account{ID: "a", UserID: "u1", IsActive: true, CreatedAt: now})

	for i, day := range []int{3, 17, 9} {
		tx := core.Transaction{
			ID: string(rune('a' + i)), UserID: "u1", AccountID: "a", Type: core.Expense,
			Amount: core.Money{Cents: 100}, Description: "d", Category: "food",
			Date: time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC), CreatedAt: now,
		}
		if _, err := s.InsertTransaction(ctx, tx, 0); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, err := s.RecentTransactions(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	days := []int{got[0].Date.Day(), got[1].Date.Day(), got[2].Date.Day()}
	if days[0] != 17 || days[1] != 9 || days[2] != 3 {
		t.Fatalf("order = %v, want [17 9 3]", days)
	}
}

func TestOwnershipScoping(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()

	a, _ := s.CreateAccount(ctx, core.Account{ID: "a", UserID: "owner", Name: "x", IsActive: true, CreatedAt: now})
	if _, err := s.UpdateAccount(ctx, "intruder", a); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign update: got %v", err)
	}
	if err := s.DeactivateAccount(ctx, "intruder", "a"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign deactivate: got %v", err)
	}

	sub, _ := s.CreateSubscription(ctx, core.Subscription{ID: "s", UserID: "owner", IsActive: true, NextBilling: now})
	if _, err := s.UpdateSubscription(ctx, "intruder", sub); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign subscription update: got %v", err)
	}

	b, _ := s.CreateBudgetGoal(ctx, core.BudgetGoal{ID: "b", UserID: "owner", IsActive: true})
	if err := s.DeactivateBudgetGoal(ctx, "intruder", b.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign budget deactivate: got %v", err)
	}
}

func TestAdvanceSubscriptionStaleGuard(t *testing.T) {
	s := New()
	ctx := context.Background()
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	s.CreateSubscription(ctx, core.Subscription{ID: "s", UserID: "u1", IsActive: true, NextBilling: due})

	next := due.AddDate(0, 1, 0)
	if err := s.AdvanceSubscription(ctx, "s", due, next); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := s.AdvanceSubscription(ctx, "s", due, next); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("stale advance should fail, got %v", err)
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, core.User{ID: "1", Email: "a@b.c"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := s.CreateUser(ctx, core.User{ID: "2", Email: "a@b.c"}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
