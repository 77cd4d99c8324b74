package ledger

import (
	"testing"
	"time"

	"smartexpense/internal/core"
)

func expense(amountCents int64, category core.Category, day int) core.Transaction {
	return core.Transaction{
		Type:     core.Expense,
		Amount:   core.Money{Cents: amountCents},
		Category: category,
		Date:     time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
	}
}

func TestBalanceDelta(t *testing.T) {
	cases := []struct {
		typ  core.TransactionType
		amt  int64
		want int64
	}{
		{core.Income, 50000, 50000},
		{core.Expense, 2000, -2000},
		{core.Transfer, 999, 0},
	}
	for _, tc := range cases {
		if got := BalanceDelta(tc.typ, core.Money{Cents: tc.amt}); got != tc.want {
			t.Fatalf("BalanceDelta(%s, %d) = %d, want %d", tc.typ, tc.amt, got, tc.want)
		}
	}
}

func TestTotalBalance(t *testing.T) {
	accounts := []core.Account{
		{Balance: core.Money{Cents: 10000}, Currency: "USD"},
		{Balance: core.Money{Cents: 25050}, Currency: "EUR"},
	}
	// Currencies are summed arithmetically, no conversion.
	if got := TotalBalance(accounts); got != 35050 {
		t.Fatalf("TotalBalance = %d, want 35050", got)
	}
	if got := TotalBalance(nil); got != 0 {
		t.Fatalf("TotalBalance(nil) = %d, want 0", got)
	}
}

func TestMonthlyExpenses(t *testing.T) {
	txs := []core.Transaction{
		expense(2000, "food", 5),
		expense(1500, "food", 20),
		expense(3000, "transport", 10),
		{Type: core.Income, Amount: core.Money{Cents: 50000}, Category: "salary",
			Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	if got := MonthlyExpenses(txs); got != 6500 {
		t.Fatalf("MonthlyExpenses = %d, want 6500", got)
	}
	if got := MonthlyExpenses(nil); got != 0 {
		t.Fatalf("MonthlyExpenses(nil) = %d, want 0", got)
	}
}

func TestCategorySpending(t *testing.T) {
	txs := []core.Transaction{
		expense(2000, "food", 5),
		expense(3000, "transport", 10),
		expense(1500, "food", 20),
		{Type: core.Income, Amount: core.Money{Cents: 50000}, Category: "salary",
			Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	got := CategorySpending(txs)
	want := []core.CategoryAmount{
		{Category: "food", Amount: core.Money{Cents: 3500}},
		{Category: "transport", Amount: core.Money{Cents: 3000}},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d categories, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCategorySpendingOmitsZeroCategories(t *testing.T) {
	txs := []core.Transaction{
		{Type: core.Income, Amount: core.Money{Cents: 100}, Category: "salary",
			Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Type: core.Transfer, Amount: core.Money{Cents: 100}, Category: "other",
			Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	if got := CategorySpending(txs); len(got) != 0 {
		t.Fatalf("expected empty breakdown, got %+v", got)
	}
}
