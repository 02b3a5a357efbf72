package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Goal represents a savings target. It is a read-only input to the
// projection engine: evaluations compute derived values from a snapshot of
// its fields and never write back.
//
// The horizon is either an explicit number of months (TargetMonths) or a
// calendar date (TargetDate); when both are set the explicit month count
// wins.
type Goal struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	Name                string
	TargetAmount        decimal.Decimal
	TargetDate          *time.Time
	TargetMonths        int
	MonthlyContribution decimal.Decimal
	CurrentAmount       decimal.Decimal
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HorizonMonths returns the number of whole months between now and the
// goal's horizon, rounding partial months up. Returns 0 when the goal has
// no horizon or the horizon has passed.
func (g Goal) HorizonMonths(now time.Time) int {
	if g.TargetMonths > 0 {
		return g.TargetMonths
	}
	if g.TargetDate == nil || !g.TargetDate.After(now) {
		return 0
	}
	days := g.TargetDate.Sub(now).Hours() / 24
	return int(math.Ceil(days / 30))
}

// Validate ensures the goal adheres to domain rules
func (g Goal) Validate() error {
	if g.Name == "" {
		return fmt.Errorf("%w: goal name cannot be empty", ErrInvalidParameters)
	}
	if g.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: goal target amount must be positive", ErrInvalidParameters)
	}
	if g.MonthlyContribution.IsNegative() {
		return fmt.Errorf("%w: goal monthly contribution cannot be negative", ErrInvalidParameters)
	}
	if g.CurrentAmount.IsNegative() {
		return fmt.Errorf("%w: goal current amount cannot be negative", ErrInvalidParameters)
	}
	if g.TargetMonths < 0 {
		return fmt.Errorf("%w: goal target months cannot be negative", ErrInvalidParameters)
	}
	if g.TargetMonths == 0 && g.TargetDate == nil {
		return fmt.Errorf("%w: goal needs a target date or a month count", ErrInvalidParameters)
	}
	return nil
}
