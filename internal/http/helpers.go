package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"smartexpense/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps the core sentinels to HTTP statuses; anything else is
// a 500 with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "url", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return core.Validation(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

// parseDate accepts RFC 3339 or a plain calendar date.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, core.Validation(fmt.Sprintf("invalid date %q (want RFC 3339 or YYYY-MM-DD)", s))
}

// monthParam reads the ?month= query parameter, defaulting to the
// current month.
func monthParam(r *http.Request) string {
	if month := r.URL.Query().Get("month"); month != "" {
		return month
	}
	return core.CurrentMonth(time.Now().UTC())
}

// Response shapes. Money travels as scale-2 decimal strings.

type userResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsPro        bool   `json:"is_pro"`
	ProExpiresAt string `json:"pro_expires_at,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func toUserResponse(u core.User) userResponse {
	resp := userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsPro:     u.IsPro,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
	if !u.ProExpiresAt.IsZero() {
		resp.ProExpiresAt = u.ProExpiresAt.Format(time.RFC3339)
	}
	return resp
}

type accountResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Currency  string `json:"currency"`
	Balance   string `json:"balance"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Type:      string(a.Type),
		Currency:  string(a.Currency),
		Balance:   core.FormatCents(a.Balance.Cents),
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
		UpdatedAt: a.UpdatedAt.Format(time.RFC3339),
	}
}

type transactionResponse struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	CreatedAt   string `json:"created_at"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Type:        string(t.Type),
		Amount:      core.FormatCents(t.Amount.Cents),
		Description: t.Description,
		Category:    string(t.Category),
		Date:        t.Date.Format(time.RFC3339),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
}

func toTransactionResponses(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

type subscriptionResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Frequency   string `json:"frequency"`
	NextBilling string `json:"next_billing"`
	IsActive    bool   `json:"is_active"`
}

func toSubscriptionResponse(s core.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:          s.ID,
		Name:        s.Name,
		Amount:      core.FormatCents(s.Amount.Cents),
		Currency:    string(s.Currency),
		Frequency:   string(s.Frequency),
		NextBilling: s.NextBilling.Format(time.RFC3339),
		IsActive:    s.IsActive,
	}
}

type budgetGoalResponse struct {
	ID           string `json:"id"`
	Category     string `json:"category"`
	MonthlyLimit string `json:"monthly_limit"`
	CurrentSpent string `json:"current_spent"`
	Month        string `json:"month"`
	IsActive     bool   `json:"is_active"`
}

func toBudgetGoalResponse(b core.BudgetGoal) budgetGoalResponse {
	return budgetGoalResponse{
		ID:           b.ID,
		Category:     string(b.Category),
		MonthlyLimit: core.FormatCents(b.MonthlyLimit.Cents),
		CurrentSpent: core.FormatCents(b.CurrentSpent.Cents),
		Month:        b.Month,
		IsActive:     b.IsActive,
	}
}
