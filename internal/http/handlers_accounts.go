package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"smartexpense/internal/auth"
	"smartexpense/internal/core"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}

	accounts, err := s.store.ActiveAccounts(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

type createAccountRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}

	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	// The account limit counts active accounts only, so deactivating one
	// frees a slot.
	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !user.ProActive(time.Now().UTC()) {
		active, err := s.store.ActiveAccounts(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if len(active) >= freeAccountLimit {
			writeError(w, r, core.Forbidden(
				fmt.Sprintf("free tier is limited to %d active accounts; upgrade to Pro for unlimited accounts", freeAccountLimit)))
			return
		}
	}

	balanceCents := int64(0)
	if req.Balance != "" {
		balanceCents, err = core.ParseBalanceToCents(req.Balance)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	now := time.Now().UTC()
	account := core.Account{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      strings.TrimSpace(req.Name),
		Type:      core.AccountType(req.Type),
		Currency:  core.Currency(req.Currency),
		Balance:   core.Money{Cents: balanceCents},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := account.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.store.CreateAccount(r.Context(), account)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Account created",
		"account_id", created.ID, "user_id", userID, "type", created.Type)
	writeJSON(w, http.StatusCreated, toAccountResponse(created))
}

type updateAccountRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
	IsActive *bool  `json:"is_active"`
}

// handleUpdateAccount never touches the balance; that only moves
// through transaction postings.
func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}

	var req updateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, err := s.store.GetAccount(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if account.UserID != userID {
		writeError(w, r, core.NotFound("account"))
		return
	}

	if req.Name != "" {
		account.Name = strings.TrimSpace(req.Name)
	}
	if req.Type != "" {
		account.Type = core.AccountType(req.Type)
	}
	if req.Currency != "" {
		account.Currency = core.Currency(req.Currency)
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	account.UpdatedAt = time.Now().UTC()

	if err := account.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.store.UpdateAccount(r.Context(), userID, account)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(updated))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}

	if err := s.store.DeactivateAccount(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Account deactivated",
		"account_id", r.PathValue("id"), "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}
