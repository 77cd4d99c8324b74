package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"smartexpense/internal/core"
)

// Store is the slice of the entity store the ledger needs. The SQLite
// repository and the in-memory store both implement it.
type Store interface {
	// GetAccount fetches a single account by id, active or not.
	GetAccount(ctx context.Context, accountID string) (core.Account, error)

	// ActiveAccounts lists a user's active accounts.
	ActiveAccounts(ctx context.Context, userID string) ([]core.Account, error)

	// InsertTransaction persists the transaction and applies delta cents
	// to the referenced account's balance as a single atomic unit. Either
	// both writes commit or neither does, and concurrent postings against
	// one account must serialize so no balance update is lost.
	InsertTransaction(ctx context.Context, tx core.Transaction, delta int64) (core.Transaction, error)

	// TransactionsInRange lists a user's transactions with date in
	// [from, to), ordered by date descending then id.
	TransactionsInRange(ctx context.Context, userID string, from, to time.Time) ([]core.Transaction, error)
}

// EventPublisher receives a notification after a transaction commits.
// Publishing is best-effort; a publish failure never fails the posting.
type EventPublisher interface {
	PublishTransactionPosted(ctx context.Context, tx core.Transaction) error
}

// CreateTransactionInput carries the caller-supplied fields of a posting.
type CreateTransactionInput struct {
	AccountID   string
	Type        core.TransactionType
	Amount      core.Money
	Description string
	Category    core.Category
	Date        time.Time
}

// Service exposes transaction posting and the analytics aggregations.
type Service struct {
	store  Store
	events EventPublisher
}

func NewService(store Store, events EventPublisher) *Service {
	return &Service{store: store, events: events}
}

// CreateTransaction validates the input, checks account ownership, and
// posts the transaction together with its balance update.
func (s *Service) CreateTransaction(ctx context.Context, userID string, in CreateTransactionInput) (core.Transaction, error) {
	tx := core.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		AccountID:   in.AccountID,
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
		Category:    in.Category,
		Date:        in.Date,
		CreatedAt:   time.Now().UTC(),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	account, err := s.store.GetAccount(ctx, in.AccountID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get account: %w", err)
	}
	if account.UserID != userID {
		// Do not leak existence of other users' accounts.
		return core.Transaction{}, core.NotFound("account")
	}

	delta := BalanceDelta(tx.Type, tx.Amount)
	created, err := s.store.InsertTransaction(ctx, tx, delta)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction posted",
		"transaction_id", created.ID,
		"account_id", created.AccountID,
		"type", created.Type,
		"amount_cents", created.Amount.Cents,
		"balance_delta_cents", delta)

	if s.events != nil {
		if err := s.events.PublishTransactionPosted(ctx, created); err != nil {
			slog.ErrorContext(ctx, "Failed to publish transaction event",
				"transaction_id", created.ID, "error", err)
		}
	}

	return created, nil
}

// TotalBalance sums the user's active-account balances in cents.
func (s *Service) TotalBalance(ctx context.Context, userID string) (int64, error) {
	accounts, err := s.store.ActiveAccounts(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list accounts: %w", err)
	}
	return TotalBalance(accounts), nil
}

// MonthlyExpenses sums expense amounts for one "YYYY-MM" month.
func (s *Service) MonthlyExpenses(ctx context.Context, userID, month string) (int64, error) {
	txs, err := s.monthTransactions(ctx, userID, month)
	if err != nil {
		return 0, err
	}
	return MonthlyExpenses(txs), nil
}

// CategorySpending returns the per-category expense breakdown for one month.
func (s *Service) CategorySpending(ctx context.Context, userID, month string) ([]core.CategoryAmount, error) {
	txs, err := s.monthTransactions(ctx, userID, month)
	if err != nil {
		return nil, err
	}
	return CategorySpending(txs), nil
}

func (s *Service) monthTransactions(ctx context.Context, userID, month string) ([]core.Transaction, error) {
	r, err := core.ParseMonth(month)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.TransactionsInRange(ctx, userID, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("list transactions (month=%s): %w", month, err)
	}
	return txs, nil
}
