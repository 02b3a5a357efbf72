package goals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duartefn/wealthpilot-backend/internal/domain"
	"github.com/duartefn/wealthpilot-backend/internal/usecase/projection"
)

// CreateGoalInput represents the input for creating a goal
type CreateGoalInput struct {
	UserID              uuid.UUID
	Name                string
	TargetAmount        decimal.Decimal
	TargetDate          *time.Time
	TargetMonths        int
	MonthlyContribution decimal.Decimal
	CurrentAmount       decimal.Decimal
}

// UpdateGoalInput represents the fields of a goal that may change.
// Nil fields are left untouched.
type UpdateGoalInput struct {
	Name                *string
	TargetAmount        *decimal.Decimal
	TargetDate          *time.Time
	TargetMonths        *int
	MonthlyContribution *decimal.Decimal
	CurrentAmount       *decimal.Decimal
}

// Evaluation bundles the projections derived from a goal snapshot at a
// given expected annual return rate. TimeToGoal is nil when the goal has
// no positive contribution to walk forward with.
type Evaluation struct {
	Goal           *domain.Goal
	AnnualRatePct  float64
	Plan           *projection.ContributionPlan
	TimeToGoal     *projection.TimeToGoal
	GoalProjection *projection.GoalProjection
}

// Service handles goal lifecycle operations and feeds goal snapshots into
// the projection engine. The engine never mutates a goal; evaluations are
// derived values only.
type Service struct {
	GoalRepo domain.GoalRepository
	Engine   *projection.Engine
}

// NewService creates a new goals Service instance
func NewService(goalRepo domain.GoalRepository, engine *projection.Engine) *Service {
	return &Service{
		GoalRepo: goalRepo,
		Engine:   engine,
	}
}

// Create validates and persists a new goal
func (s *Service) Create(ctx context.Context, in CreateGoalInput) (*domain.Goal, error) {
	now := time.Now()
	goal := &domain.Goal{
		ID:                  uuid.New(),
		UserID:              in.UserID,
		Name:                in.Name,
		TargetAmount:        in.TargetAmount,
		TargetDate:          in.TargetDate,
		TargetMonths:        in.TargetMonths,
		MonthlyContribution: in.MonthlyContribution,
		CurrentAmount:       in.CurrentAmount,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := goal.Validate(); err != nil {
		return nil, err
	}

	if err := s.GoalRepo.Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return goal, nil
}

// Get retrieves a goal by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Goal, error) {
	return s.GoalRepo.GetByID(ctx, id)
}

// List retrieves all goals of a user
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*domain.Goal, error) {
	return s.GoalRepo.ListByUser(ctx, userID)
}

// Update applies the non-nil fields of in to the goal and persists it
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateGoalInput) (*domain.Goal, error) {
	goal, err := s.GoalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		goal.Name = *in.Name
	}
	if in.TargetAmount != nil {
		goal.TargetAmount = *in.TargetAmount
	}
	if in.TargetDate != nil {
		goal.TargetDate = in.TargetDate
	}
	if in.TargetMonths != nil {
		goal.TargetMonths = *in.TargetMonths
	}
	if in.MonthlyContribution != nil {
		goal.MonthlyContribution = *in.MonthlyContribution
	}
	if in.CurrentAmount != nil {
		goal.CurrentAmount = *in.CurrentAmount
	}
	goal.UpdatedAt = time.Now()

	if err := goal.Validate(); err != nil {
		return nil, err
	}

	if err := s.GoalRepo.Update(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	return goal, nil
}

// Delete removes a goal
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GoalRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.GoalRepo.Delete(ctx, id)
}

// Evaluate projects a goal snapshot at the given expected annual return:
// the minimum contribution that meets the horizon, how long the goal's
// own contribution takes, and the month-by-month achievability picture.
func (s *Service) Evaluate(ctx context.Context, id uuid.UUID, annualRatePct float64) (*Evaluation, error) {
	goal, err := s.GoalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	months := goal.HorizonMonths(time.Now())
	if months <= 0 {
		return nil, fmt.Errorf("%w: goal horizon has already passed", domain.ErrInvalidParameters)
	}

	current := goal.CurrentAmount.InexactFloat64()
	target := goal.TargetAmount.InexactFloat64()
	contribution := goal.MonthlyContribution.InexactFloat64()

	plan, err := s.Engine.MinimumContributionForTimeframe(current, target, annualRatePct, months)
	if err != nil {
		return nil, err
	}

	evaluation := &Evaluation{
		Goal:          goal,
		AnnualRatePct: annualRatePct,
		Plan:          plan,
	}

	if contribution > 0 || current >= target {
		ttg, err := s.Engine.TimeToGoal(current, target, contribution, annualRatePct)
		if err != nil {
			return nil, err
		}
		evaluation.TimeToGoal = ttg
	}

	// Whole-year horizon for the projection series, rounding partial
	// years up so the series always covers the goal's horizon.
	years := (months + 11) / 12
	goalProjection, err := s.Engine.GoalAchievement(current, target, contribution, annualRatePct, years)
	if err != nil {
		return nil, err
	}
	evaluation.GoalProjection = goalProjection

	return evaluation, nil
}
