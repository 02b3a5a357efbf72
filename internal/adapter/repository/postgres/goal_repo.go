package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duartefn/wealthpilot-backend/internal/domain"
)

// goalRepository implements domain.GoalRepository
type goalRepository struct {
	db *DB
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db *DB) domain.GoalRepository {
	return &goalRepository{db: db}
}

const goalColumns = `id, user_id, name, target_amount, target_date, target_months,
	monthly_contribution, current_amount, created_at, updated_at`

// Create creates a new goal
func (r *goalRepository) Create(ctx context.Context, goal *domain.Goal) error {
	query := `
		INSERT INTO goals (` + goalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		goal.ID,
		goal.UserID,
		goal.Name,
		goal.TargetAmount.String(),
		goal.TargetDate,
		goal.TargetMonths,
		goal.MonthlyContribution.String(),
		goal.CurrentAmount.String(),
		goal.CreatedAt,
		goal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}

	return nil
}

// GetByID retrieves a goal by its ID
func (r *goalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE id = $1
	`

	goal, err := r.scanGoal(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: goal %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}

	return goal, nil
}

// ListByUser retrieves all goals of a user
func (r *goalRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []*domain.Goal
	for rows.Next() {
		goal, err := r.scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goals: %w", err)
	}

	return goals, nil
}

// Update persists a modified goal
func (r *goalRepository) Update(ctx context.Context, goal *domain.Goal) error {
	query := `
		UPDATE goals
		SET name = $2, target_amount = $3, target_date = $4, target_months = $5,
			monthly_contribution = $6, current_amount = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		goal.ID,
		goal.Name,
		goal.TargetAmount.String(),
		goal.TargetDate,
		goal.TargetMonths,
		goal.MonthlyContribution.String(),
		goal.CurrentAmount.String(),
		goal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check goal update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: goal %s", domain.ErrNotFound, goal.ID)
	}

	return nil
}

// Delete removes a goal
func (r *goalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check goal delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: goal %s", domain.ErrNotFound, id)
	}

	return nil
}

func (r *goalRepository) scanGoal(s rowScanner) (*domain.Goal, error) {
	var goal domain.Goal
	var targetAmount, monthlyContribution, currentAmount string
	var targetDate sql.NullTime

	err := s.Scan(
		&goal.ID,
		&goal.UserID,
		&goal.Name,
		&targetAmount,
		&targetDate,
		&goal.TargetMonths,
		&monthlyContribution,
		&currentAmount,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if targetDate.Valid {
		d := targetDate.Time.UTC()
		goal.TargetDate = &d
	}

	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&goal.TargetAmount, targetAmount},
		{&goal.MonthlyContribution, monthlyContribution},
		{&goal.CurrentAmount, currentAmount},
	} {
		v, err := decimal.NewFromString(f.src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse goal decimal column: %w", err)
		}
		*f.dst = v
	}

	return &goal, nil
}
