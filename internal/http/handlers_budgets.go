package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"smartexpense/internal/auth"
	"smartexpense/internal/core"
)

func (s *Server) handleListBudgetGoals(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}

	goals, err := s.store.UserBudgetGoals(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]budgetGoalResponse, 0, len(goals))
	for _, b := range goals {
		out = append(out, toBudgetGoalResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

type budgetGoalRequest struct {
	Category     string `json:"category"`
	MonthlyLimit string `json:"monthly_limit"`
	CurrentSpent string `json:"current_spent"`
	Month        string `json:"month"`
}

// Budget goals are a Pro feature.
func (s *Server) requirePro(r *http.Request, userID string) error {
	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		return err
	}
	if !user.ProActive(time.Now().UTC()) {
		return core.Forbidden("budget goals require a Pro subscription")
	}
	return nil
}

func (s *Server) handleCreateBudgetGoal(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}
	if err := s.requirePro(r, userID); err != nil {
		writeError(w, r, err)
		return
	}

	var req budgetGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := budgetGoalFromRequest(userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.store.CreateBudgetGoal(r.Context(), goal)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Budget goal created",
		"budget_goal_id", created.ID, "user_id", userID, "category", created.Category)
	writeJSON(w, http.StatusCreated, toBudgetGoalResponse(created))
}

func budgetGoalFromRequest(userID string, req budgetGoalRequest) (core.BudgetGoal, error) {
	limitCents, err := core.ParseDecimalToCents(req.MonthlyLimit)
	if err != nil {
		return core.BudgetGoal{}, err
	}

	spentCents := int64(0)
	if req.CurrentSpent != "" {
		spentCents, err = core.ParseBalanceToCents(req.CurrentSpent)
		if err != nil {
			return core.BudgetGoal{}, err
		}
		if spentCents < 0 {
			return core.BudgetGoal{}, core.Validation("current spent cannot be negative")
		}
	}

	goal := core.BudgetGoal{
		ID:           uuid.NewString(),
		UserID:       userID,
		Category:     core.Category(req.Category),
		MonthlyLimit: core.Money{Cents: limitCents},
		CurrentSpent: core.Money{Cents: spentCents},
		Month:        req.Month,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := goal.Validate(); err != nil {
		return core.BudgetGoal{}, err
	}
	return goal, nil
}

func (s *Server) handleUpdateBudgetGoal(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}
	if err := s.requirePro(r, userID); err != nil {
		writeError(w, r, err)
		return
	}

	var req budgetGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := budgetGoalFromRequest(userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	goal.ID = r.PathValue("id")

	updated, err := s.store.UpdateBudgetGoal(r.Context(), userID, goal)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetGoalResponse(updated))
}

func (s *Server) handleDeleteBudgetGoal(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}

	if err := s.store.DeactivateBudgetGoal(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
