// Package memstore is an in-memory store with the same method surface
// as the SQLite repository. It backs DATA_BACKEND=memory for local runs
// and the handler tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"smartexpense/internal/core"
)

type Store struct {
	mu            sync.Mutex
	users         map[string]core.User
	accounts      map[string]core.Account
	transactions  map[string]core.Transaction
	subscriptions map[string]core.Subscription
	budgets       map[string]core.BudgetGoal
	audit         []core.AuditEntry
}

func New() *Store {
	return &Store{
		users:         make(map[string]core.User),
		accounts:      make(map[string]core.Account),
		transactions:  make(map[string]core.Transaction),
		subscriptions: make(map[string]core.Subscription),
		budgets:       make(map[string]core.BudgetGoal),
	}
}

func (s *Store) Close() error { return nil }

// Users

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return core.User{}, core.Validation("email already registered")
		}
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, core.NotFound("user")
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, core.NotFound("user")
}

func (s *Store) SetPro(_ context.Context, userID string, isPro bool, expiresAt time.Time) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return core.User{}, core.NotFound("user")
	}
	u.IsPro = isPro
	u.ProExpiresAt = expiresAt
	u.UpdatedAt = time.Now().UTC()
	s.users[userID] = u
	return u, nil
}

// Accounts

func (s *Store) CreateAccount(_ context.Context, a core.Account) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
	return a, nil
}

func (s *Store) GetAccount(_ context.Context, accountID string) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return core.Account{}, core.NotFound("account")
	}
	return a, nil
}

func (s *Store) ActiveAccounts(_ context.Context, userID string) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Account
	for _, a := range s.accounts {
		if a.UserID == userID && a.IsActive {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateAccount(_ context.Context, userID string, a core.Account) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.accounts[a.ID]
	if !ok || cur.UserID != userID {
		return core.Account{}, core.NotFound("account")
	}
	cur.Name = a.Name
	cur.Type = a.Type
	cur.Currency = a.Currency
	cur.IsActive = a.IsActive
	cur.UpdatedAt = a.UpdatedAt
	s.accounts[a.ID] = cur
	return cur, nil
}

func (s *Store) DeactivateAccount(_ context.Context, userID, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok || a.UserID != userID {
		return core.NotFound("account")
	}
	a.IsActive = false
	a.UpdatedAt = time.Now().UTC()
	s.accounts[accountID] = a
	return nil
}

// Transactions

func (s *Store) InsertTransaction(_ context.Context, t core.Transaction, delta int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[t.AccountID]
	if !ok {
		return core.Transaction{}, core.NotFound("account")
	}
	if delta != 0 {
		a.Balance = a.Balance.Add(delta)
		a.UpdatedAt = time.Now().UTC()
		s.accounts[t.AccountID] = a
	}
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) TransactionsInRange(_ context.Context, userID string, from, to time.Time) ([]core.Transaction, error) {
	return s.listTransactions(userID, func(t core.Transaction) bool {
		return !t.Date.Before(from) && t.Date.Before(to)
	}, 0)
}

func (s *Store) RecentTransactions(_ context.Context, userID string, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.listTransactions(userID, func(core.Transaction) bool { return true }, limit)
}

func (s *Store) TransactionsByCategory(_ context.Context, userID string, category core.Category) ([]core.Transaction, error) {
	return s.listTransactions(userID, func(t core.Transaction) bool {
		return t.Category == category
	}, 0)
}

func (s *Store) listTransactions(userID string, keep func(core.Transaction) bool, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.UserID == userID && keep(t) {
			out = append(out, t)
		}
	}
	// Newest first, matching the repository's ORDER BY date DESC, id.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Subscriptions

func (s *Store) CreateSubscription(_ context.Context, sub core.Subscription) (core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[sub.ID] = sub
	return sub, nil
}

func (s *Store) UserSubscriptions(_ context.Context, userID string) ([]core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Subscription
	for _, sub := range s.subscriptions {
		if sub.UserID == userID && sub.IsActive {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NextBilling.Equal(out[j].NextBilling) {
			return out[i].NextBilling.Before(out[j].NextBilling)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateSubscription(_ context.Context, userID string, sub core.Subscription) (core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.subscriptions[sub.ID]
	if !ok || cur.UserID != userID {
		return core.Subscription{}, core.NotFound("subscription")
	}
	cur.Name = sub.Name
	cur.Amount = sub.Amount
	cur.Currency = sub.Currency
	cur.Frequency = sub.Frequency
	cur.NextBilling = sub.NextBilling
	cur.IsActive = sub.IsActive
	s.subscriptions[sub.ID] = cur
	return cur, nil
}

func (s *Store) DeactivateSubscription(_ context.Context, userID, subscriptionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subscriptions[subscriptionID]
	if !ok || sub.UserID != userID {
		return core.NotFound("subscription")
	}
	sub.IsActive = false
	s.subscriptions[subscriptionID] = sub
	return nil
}

func (s *Store) DueSubscriptions(_ context.Context, cutoff time.Time) ([]core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Subscription
	for _, sub := range s.subscriptions {
		if sub.IsActive && !sub.NextBilling.After(cutoff) {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextBilling.Before(out[j].NextBilling) })
	return out, nil
}

func (s *Store) AdvanceSubscription(_ context.Context, subscriptionID string, from, to time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subscriptions[subscriptionID]
	if !ok || !sub.NextBilling.Equal(from) {
		return core.NotFound("subscription")
	}
	sub.NextBilling = to
	s.subscriptions[subscriptionID] = sub
	return nil
}

// Budget goals

func (s *Store) CreateBudgetGoal(_ context.Context, b core.BudgetGoal) (core.BudgetGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[b.ID] = b
	return b, nil
}

func (s *Store) UserBudgetGoals(_ context.Context, userID string) ([]core.BudgetGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.BudgetGoal
	for _, b := range s.budgets {
		if b.UserID == userID && b.IsActive {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month > out[j].Month
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (s *Store) UpdateBudgetGoal(_ context.Context, userID string, b core.BudgetGoal) (core.BudgetGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.budgets[b.ID]
	if !ok || cur.UserID != userID {
		return core.BudgetGoal{}, core.NotFound("budget goal")
	}
	cur.Category = b.Category
	cur.MonthlyLimit = b.MonthlyLimit
	cur.CurrentSpent = b.CurrentSpent
	cur.Month = b.Month
	cur.IsActive = b.IsActive
	s.budgets[b.ID] = cur
	return cur, nil
}

func (s *Store) DeactivateBudgetGoal(_ context.Context, userID, budgetGoalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[budgetGoalID]
	if !ok || b.UserID != userID {
		return core.NotFound("budget goal")
	}
	b.IsActive = false
	s.budgets[budgetGoalID] = b
	return nil
}

// Audit

func (s *Store) AppendAudit(_ context.Context, e core.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, e)
	return nil
}

// AuditEntries returns a copy of the recorded audit trail.
func (s *Store) AuditEntries() []core.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.AuditEntry, len(s.audit))
	copy(out, s.audit)
	return out
}
