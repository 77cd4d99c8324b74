package core

import (
	"strings"
	"time"
)

const (
	Cash       AccountType = "cash"
	Savings    AccountType = "savings"
	Checking   AccountType = "checking"
	Credit     AccountType = "credit"
	Investment AccountType = "investment"
)

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

const (
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
	Weekly  Frequency = "weekly"
)

type (
	AccountType     string
	TransactionType string
	Frequency       string
	Currency        string
	Category        string

	User struct {
		ID           string
		Email        string
		PasswordHash string
		FirstName    string
		LastName     string
		IsPro        bool
		ProExpiresAt time.Time
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	Account struct {
		ID        string
		UserID    string
		Name      string
		Type      AccountType
		Currency  Currency
		Balance   Money
		IsActive  bool
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	Transaction struct {
		ID          string
		UserID      string
		AccountID   string
		Type        TransactionType
		Amount      Money
		Description string
		Category    Category
		Date        time.Time
		CreatedAt   time.Time
	}

	Subscription struct {
		ID          string
		UserID      string
		Name        string
		Amount      Money
		Currency    Currency
		Frequency   Frequency
		NextBilling time.Time
		IsActive    bool
		CreatedAt   time.Time
	}

	BudgetGoal struct {
		ID           string
		UserID       string
		Category     Category
		MonthlyLimit Money
		CurrentSpent Money
		Month        string // YYYY-MM
		IsActive     bool
		CreatedAt    time.Time
	}

	// CategoryAmount is one row of a category spending breakdown.
	CategoryAmount struct {
		Category Category
		Amount   Money
	}

	// AuditEntry is one row of the posting audit trail maintained by
	// the worker from transaction events.
	AuditEntry struct {
		UserID        string
		TransactionID string
		AccountID     string
		Type          TransactionType
		AmountCents   int64
		RecordedAt    time.Time
	}
)

var currencies = map[Currency]struct{}{
	"USD": {}, "PHP": {}, "EUR": {}, "GBP": {}, "JPY": {},
}

var categories = map[Category]struct{}{
	"food": {}, "transport": {}, "shopping": {}, "entertainment": {},
	"bills": {}, "health": {}, "education": {}, "travel": {},
	"groceries": {}, "gas": {}, "other": {}, "salary": {},
	"freelance": {}, "investment": {},
}

func (t AccountType) Valid() bool {
	switch t {
	case Cash, Savings, Checking, Credit, Investment:
		return true
	}
	return false
}

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

func (f Frequency) Valid() bool {
	switch f {
	case Monthly, Yearly, Weekly:
		return true
	}
	return false
}

func (c Currency) Valid() bool {
	_, ok := currencies[c]
	return ok
}

func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return Validation("empty account name")
	}
	if len(a.Name) > 100 {
		return Validation("account name too long (max 100 characters)")
	}
	if !a.Type.Valid() {
		return Validation("unknown account type")
	}
	if !a.Currency.Valid() {
		return Validation("unknown currency")
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return Validation("unknown transaction type")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return Validation("empty description")
	}
	if len(t.Description) > 200 {
		return Validation("description too long (max 200 characters)")
	}
	if !t.Category.Valid() {
		return Validation("unknown category")
	}
	if t.Date.IsZero() {
		return Validation("date cannot be zero")
	}
	return nil
}

func (s Subscription) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return Validation("empty subscription name")
	}
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	if !s.Currency.Valid() {
		return Validation("unknown currency")
	}
	if !s.Frequency.Valid() {
		return Validation("unknown frequency")
	}
	if s.NextBilling.IsZero() {
		return Validation("next billing date cannot be zero")
	}
	return nil
}

func (b BudgetGoal) Validate() error {
	if !b.Category.Valid() {
		return Validation("unknown category")
	}
	if err := b.MonthlyLimit.Validate(); err != nil {
		return err
	}
	if _, err := ParseMonth(b.Month); err != nil {
		return err
	}
	return nil
}

// ProActive reports whether the user currently has Pro access.
// A zero ProExpiresAt means a Pro flag with no recorded expiry; the flag wins.
func (u User) ProActive(now time.Time) bool {
	if !u.IsPro {
		return false
	}
	if u.ProExpiresAt.IsZero() {
		return true
	}
	return now.Before(u.ProExpiresAt)
}
