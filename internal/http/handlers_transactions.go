package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"smartexpense/internal/auth"
	"smartexpense/internal/core"
	"smartexpense/internal/ledger"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, r, core.Validation("invalid limit"))
			return
		}
	}

	txs, err := s.store.RecentTransactions(r.Context(), userID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
}

type createTransactionRequest struct {
	AccountID   string `json:"account_id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Date        string `json:"date"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}

	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	amountCents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	date := time.Now().UTC()
	if req.Date != "" {
		date, err = parseDate(req.Date)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	created, err := s.ledger.CreateTransaction(r.Context(), userID, ledger.CreateTransactionInput{
		AccountID:   req.AccountID,
		Type:        core.TransactionType(req.Type),
		Amount:      core.Money{Cents: amountCents},
		Description: strings.TrimSpace(req.Description),
		Category:    core.Category(req.Category),
		Date:        date,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.metrics.transactionsPosted.Add(1)
	s.invalidateAnalytics(userID)
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleTransactionsByCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}

	category := core.Category(r.PathValue("category"))
	if !category.Valid() {
		writeError(w, r, core.Validation("unknown category"))
		return
	}

	txs, err := s.store.TransactionsByCategory(r.Context(), userID, category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
}
