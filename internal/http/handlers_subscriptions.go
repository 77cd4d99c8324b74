package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"smartexpense/internal/auth"
	"smartexpense/internal/core"
)

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}

	subs, err := s.store.UserSubscriptions(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]subscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		out = append(out, toSubscriptionResponse(sub))
	}
	writeJSON(w, http.StatusOK, out)
}

type subscriptionRequest struct {
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Frequency   string `json:"frequency"`
	NextBilling string `json:"next_billing"`
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}

	var req subscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	sub, err := s.subscriptionFromRequest(userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.store.CreateSubscription(r.Context(), sub)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Subscription created",
		"subscription_id", created.ID, "user_id", userID)
	writeJSON(w, http.StatusCreated, toSubscriptionResponse(created))
}

func (s *Server) subscriptionFromRequest(userID string, req subscriptionRequest) (core.Subscription, error) {
	amountCents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Subscription{}, err
	}
	nextBilling, err := parseDate(req.NextBilling)
	if err != nil {
		return core.Subscription{}, err
	}

	sub := core.Subscription{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Amount:      core.Money{Cents: amountCents},
		Currency:    core.Currency(req.Currency),
		Frequency:   core.Frequency(req.Frequency),
		NextBilling: nextBilling,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}
	return sub, nil
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}

	var req subscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	sub, err := s.subscriptionFromRequest(userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sub.ID = r.PathValue("id")

	updated, err := s.store.UpdateSubscription(r.Context(), userID, sub)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriptionResponse(updated))
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}

	if err := s.store.DeactivateSubscription(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
