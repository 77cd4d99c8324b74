package http

import (
	"net/http"

	"smartexpense/internal/auth"
	"smartexpense/internal/core"
)

func (s *Server) handleAnalyticsBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}

	// Balance reads the live cached account balances; no TTL cache on top.
	cents, err := s.ledger.TotalBalance(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"total_balance": core.FormatCents(cents),
	})
}

func (s *Server) handleAnalyticsMonthlyExpenses(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}
	month := monthParam(r)
	key := userID + ":" + month

	cents, ok := s.expensesCache.Get(key)
	if ok {
		s.metrics.cacheHits.Add(1)
	} else {
		s.metrics.cacheMisses.Add(1)
		cents, err = s.ledger.MonthlyExpenses(r.Context(), userID, month)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.expensesCache.Set(key, cents)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"month":            month,
		"monthly_expenses": core.FormatCents(cents),
	})
}

type categorySpendingRow struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

func (s *Server) handleAnalyticsCategorySpending(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}
	month := monthParam(r)
	key := userID + ":" + month

	breakdown, ok := s.categoryCache.Get(key)
	if ok {
		s.metrics.cacheHits.Add(1)
	} else {
		s.metrics.cacheMisses.Add(1)
		breakdown, err = s.ledger.CategorySpending(r.Context(), userID, month)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.categoryCache.Set(key, breakdown)
	}

	rows := make([]categorySpendingRow, 0, len(breakdown))
	for _, row := range breakdown {
		rows = append(rows, categorySpendingRow{
			Category: string(row.Category),
			Amount:   core.FormatCents(row.Amount.Cents),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month":      month,
		"categories": rows,
	})
}
