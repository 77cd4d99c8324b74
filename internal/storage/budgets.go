package storage

import (
	"context"
	"fmt"
	"log/slog"

	"smartexpense/internal/core"
)

const budgetColumns = `id, user_id, category, monthly_limit_cents, current_spent_cents, month, is_active, created_at`

func scanBudgetGoal(row accountScanner) (core.BudgetGoal, error) {
	var b core.BudgetGoal
	var isActive int
	var createdAt string
	err := row.Scan(&b.ID, &b.UserID, &b.Category, &b.MonthlyLimit.Cents,
		&b.CurrentSpent.Cents, &b.Month, &isActive, &createdAt)
	if err != nil {
		return core.BudgetGoal{}, err
	}
	b.IsActive = isActive != 0
	b.CreatedAt = decodeTime(createdAt)
	return b, nil
}

func (r *SQLiteRepository) CreateBudgetGoal(ctx context.Context, b core.BudgetGoal) (core.BudgetGoal, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budget_goals (id, user_id, category, monthly_limit_cents, current_spent_cents, month, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Category, b.MonthlyLimit.Cents, b.CurrentSpent.Cents,
		b.Month, boolToInt(b.IsActive), encodeTime(b.CreatedAt))
	if err != nil {
		return core.BudgetGoal{}, fmt.Errorf("create budget goal: %w", err)
	}

	slog.InfoContext(ctx, "Budget goal created",
		"budget_goal_id", b.ID, "user_id", b.UserID, "category", b.Category, "month", b.Month)
	return b, nil
}

// UserBudgetGoals lists a user's active budget goals.
func (r *SQLiteRepository) UserBudgetGoals(ctx context.Context, userID string) ([]core.BudgetGoal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+budgetColumns+` FROM budget_goals
		WHERE user_id = ? AND is_active = 1
		ORDER BY month DESC, category`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budget goals: %w", err)
	}
	defer rows.Close()

	var out []core.BudgetGoal
	for rows.Next() {
		b, err := scanBudgetGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget goal: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateBudgetGoal edits a goal, including its manually tracked current
// spent amount.
func (r *SQLiteRepository) UpdateBudgetGoal(ctx context.Context, userID string, b core.BudgetGoal) (core.BudgetGoal, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE budget_goals SET category = ?, monthly_limit_cents = ?, current_spent_cents = ?, month = ?, is_active = ?
		WHERE id = ? AND user_id = ?`,
		b.Category, b.MonthlyLimit.Cents, b.CurrentSpent.Cents, b.Month,
		boolToInt(b.IsActive), b.ID, userID)
	if err != nil {
		return core.BudgetGoal{}, fmt.Errorf("update budget goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.BudgetGoal{}, core.NotFound("budget goal")
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budget_goals WHERE id = ?`, b.ID)
	updated, err := scanBudgetGoal(row)
	if err != nil {
		return core.BudgetGoal{}, fmt.Errorf("reload budget goal: %w", err)
	}
	return updated, nil
}

func (r *SQLiteRepository) DeactivateBudgetGoal(ctx context.Context, userID, budgetGoalID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE budget_goals SET is_active = 0 WHERE id = ? AND user_id = ?`,
		budgetGoalID, userID)
	if err != nil {
		return fmt.Errorf("deactivate budget goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NotFound("budget goal")
	}
	return nil
}
