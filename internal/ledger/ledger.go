// Package ledger implements the balance update rule and the read-side
// aggregations over accounts and transactions. The reducers here are pure;
// the Service in service.go wires them to a Store.
package ledger

import (
	"smartexpense/internal/core"
)

// BalanceDelta returns the signed cents a transaction applies to its
// account's cached balance: +amount for income, -amount for expense.
//
// Transfers are recorded but leave the balance untouched.
func BalanceDelta(t core.TransactionType, amount core.Money) int64 {
	switch t {
	case core.Income:
		return amount.Cents
	case core.Expense:
		return -amount.Cents
	default:
		return 0
	}
}

// TotalBalance sums account balances in cents. Callers pass only active
// accounts. Balances are summed arithmetically regardless of per-account
// currency; no conversion is applied.
func TotalBalance(accounts []core.Account) int64 {
	var total int64
	for _, a := range accounts {
		total += a.Balance.Cents
	}
	return total
}

// MonthlyExpenses sums the amounts of expense-type transactions. The
// caller supplies transactions already restricted to the wanted month;
// income and transfer rows are skipped. Returns 0 for an empty slice.
func MonthlyExpenses(txs []core.Transaction) int64 {
	var total int64
	for _, t := range txs {
		if t.Type == core.Expense {
			total += t.Amount.Cents
		}
	}
	return total
}

// CategorySpending groups expense-type transactions by category and sums
// amounts per category. Categories with no expense in the input are
// omitted, never zero-filled. Order is first encounter over the input
// slice, which is deterministic because the store returns transactions
// ordered by date descending, then id.
func CategorySpending(txs []core.Transaction) []core.CategoryAmount {
	sums := make(map[core.Category]int64)
	var order []core.Category
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		if _, seen := sums[t.Category]; !seen {
			order = append(order, t.Category)
		}
		sums[t.Category] += t.Amount.Cents
	}
	out := make([]core.CategoryAmount, 0, len(order))
	for _, c := range order {
		out = append(out, core.CategoryAmount{Category: c, Amount: core.Money{Cents: sums[c]}})
	}
	return out
}
