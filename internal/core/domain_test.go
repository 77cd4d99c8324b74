package core

import (
	"errors"
	"testing"
	"time"
)

func validTransaction() Transaction {
	return Transaction{
		Type:        Expense,
		Amount:      Money{Cents: 1500},
		Description: "groceries run",
		Category:    "food",
		Date:        time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestTransactionValidate(t *testing.T) {
	if err := validTransaction().Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
	}{
		{"unknown type", func(tx *Transaction) { tx.Type = "loan" }},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -100} }},
		{"empty description", func(tx *Transaction) { tx.Description = "  " }},
		{"unknown category", func(tx *Transaction) { tx.Category = "lottery" }},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }},
	}
	for _, tc := range cases {
		tx := validTransaction()
		tc.mutate(&tx)
		err := tx.Validate()
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: error %v should wrap ErrValidation", tc.name, err)
		}
	}
}

func TestAccountValidate(t *testing.T) {
	acc := Account{Name: "Wallet", Type: Cash, Currency: "USD"}
	if err := acc.Validate(); err != nil {
		t.Fatalf("valid account rejected: %v", err)
	}
	acc.Type = "offshore"
	if err := acc.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	acc.Type = Cash
	acc.Currency = "BTC"
	if err := acc.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubscriptionValidate(t *testing.T) {
	sub := Subscription{
		Name:        "Netflix",
		Amount:      Money{Cents: 1599},
		Currency:    "USD",
		Frequency:   Monthly,
		NextBilling: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := sub.Validate(); err != nil {
		t.Fatalf("valid subscription rejected: %v", err)
	}
	sub.Frequency = "hourly"
	if err := sub.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBudgetGoalValidate(t *testing.T) {
	goal := BudgetGoal{Category: "food", MonthlyLimit: Money{Cents: 50000}, Month: "2024-01"}
	if err := goal.Validate(); err != nil {
		t.Fatalf("valid goal rejected: %v", err)
	}
	goal.Month = "January"
	if err := goal.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUserProActive(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		user User
		want bool
	}{
		{"free user", User{}, false},
		{"pro without expiry", User{IsPro: true}, true},
		{"pro not expired", User{IsPro: true, ProExpiresAt: now.AddDate(0, 1, 0)}, true},
		{"pro expired", User{IsPro: true, ProExpiresAt: now.AddDate(0, -1, 0)}, false},
	}
	for _, tc := range cases {
		if got := tc.user.ProActive(now); got != tc.want {
			t.Fatalf("%s: ProActive = %v, want %v", tc.name, got, tc.want)
		}
	}
}
