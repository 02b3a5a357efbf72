// Package projection computes deterministic compound-growth futures and
// solves their inverse problems. Every operation is a pure function of
// its numeric inputs.
//
// All schedules use the ordinary-annuity convention: contributions land
// at the end of each month. Intermediate math stays in float64; values
// are rounded to two decimals only at the result boundary so iterative
// loops never accumulate rounding error.
package projection

import (
	"fmt"
	"math"

	"github.com/duartefn/wealthpilot-backend/internal/domain"
)

// maxMonths caps iterative searches at 50 years. Past that a goal is
// reported as not achievable instead of looping unbounded.
const maxMonths = 600

// MonthlyPoint is one step of a month-by-month balance projection
type MonthlyPoint struct {
	Month   int     `json:"month"`
	Balance float64 `json:"balance"`
}

// GoalProjection is the outcome of projecting a contribution schedule
// against a target amount.
type GoalProjection struct {
	FutureValue   float64        `json:"future_value"`
	TargetAmount  float64        `json:"target_amount"`
	Achievable    bool           `json:"achievable"`
	Shortfall     float64        `json:"shortfall"`
	TotalInvested float64        `json:"total_invested"`
	TotalReturns  float64        `json:"total_returns"`
	Projections   []MonthlyPoint `json:"projections"`
}

// ContributionPlan is the outcome of solving for the monthly contribution
// that reaches a target within a fixed timeframe.
type ContributionPlan struct {
	MonthlyContribution float64 `json:"monthly_contribution"`
	TotalToInvest       float64 `json:"total_to_invest"`
	ExpectedReturns     float64 `json:"expected_returns"`
	AlreadyAchieved     bool    `json:"already_achieved"`
}

// TimeToGoal is the outcome of searching for the month in which a
// contribution schedule first reaches its target. Possible is false when
// the 50-year cap is hit; that is an expected business outcome of valid
// inputs, not an error.
type TimeToGoal struct {
	Possible      bool    `json:"possible"`
	Reason        string  `json:"reason,omitempty"`
	Months        int     `json:"months"`
	Years         float64 `json:"years"`
	FinalAmount   float64 `json:"final_amount"`
	TotalInvested float64 `json:"total_invested"`
	TotalReturns  float64 `json:"total_returns"`
}

// RateScenario is one what-if entry over an alternative return rate
type RateScenario struct {
	ReturnRate    float64 `json:"return_rate"`
	FutureValue   float64 `json:"future_value"`
	TotalInvested float64 `json:"total_invested"`
	TotalReturns  float64 `json:"total_returns"`
}

// ContributionScenario is one what-if entry over an alternative monthly
// contribution.
type ContributionScenario struct {
	MonthlyContribution float64 `json:"monthly_contribution"`
	FutureValue         float64 `json:"future_value"`
	Achievable          bool    `json:"achievable"`
	Shortfall           float64 `json:"shortfall"`
}

// Engine computes deterministic projections. It is stateless and safe for
// concurrent use.
type Engine struct{}

// NewEngine creates a new projection Engine instance
func NewEngine() *Engine {
	return &Engine{}
}

// FutureValue compounds a starting amount plus an end-of-month
// contribution schedule over years at annualRatePct.
//
// Zero rate has no annuity closed form and is handled explicitly:
// FV = current + monthly*n. Otherwise, with r = annualRatePct/1200 and
// n = years*12:
//
//	FV = current*(1+r)^n + monthly*(((1+r)^n - 1) / r)
func (e *Engine) FutureValue(currentAmount, monthlyContribution, annualRatePct float64, years int) (float64, error) {
	if err := validateSchedule(currentAmount, monthlyContribution, years); err != nil {
		return 0, err
	}
	return round2(futureValue(currentAmount, monthlyContribution, annualRatePct, years*12)), nil
}

// GoalAchievement projects a schedule against a target and reports
// achievability, shortfall and the last twelve months of the balance
// series.
func (e *Engine) GoalAchievement(currentAmount, targetAmount, monthlyContribution, annualRatePct float64, years int) (*GoalProjection, error) {
	if err := validateSchedule(currentAmount, monthlyContribution, years); err != nil {
		return nil, err
	}
	if targetAmount <= 0 {
		return nil, fmt.Errorf("%w: target amount must be positive", domain.ErrInvalidParameters)
	}

	months := years * 12
	fv := futureValue(currentAmount, monthlyContribution, annualRatePct, months)

	monthlyRate := annualRatePct / 1200
	series := make([]MonthlyPoint, 0, months)
	balance := currentAmount
	for month := 1; month <= months; month++ {
		balance = balance*(1+monthlyRate) + monthlyContribution
		series = append(series, MonthlyPoint{Month: month, Balance: round2(balance)})
	}
	if len(series) > 12 {
		series = series[len(series)-12:]
	}

	invested := currentAmount + monthlyContribution*float64(months)

	return &GoalProjection{
		FutureValue:   round2(fv),
		TargetAmount:  targetAmount,
		Achievable:    fv >= targetAmount,
		Shortfall:     round2(math.Max(0, targetAmount-fv)),
		TotalInvested: round2(invested),
		TotalReturns:  round2(fv - invested),
		Projections:   series,
	}, nil
}

// RequiredMonthlyContribution solves the annuity formula for the payment
// that grows currentAmount to targetAmount over years. Returns 0 when the
// lump sum alone already meets the target.
func (e *Engine) RequiredMonthlyContribution(currentAmount, targetAmount, annualRatePct float64, years int) (float64, error) {
	if years <= 0 {
		return 0, fmt.Errorf("%w: years must be positive", domain.ErrInvalidParameters)
	}
	if targetAmount <= 0 {
		return 0, fmt.Errorf("%w: target amount must be positive", domain.ErrInvalidParameters)
	}
	return requiredContribution(currentAmount, targetAmount, annualRatePct, years*12), nil
}

// MinimumContributionForTimeframe solves the same payment problem over an
// explicit month horizon.
func (e *Engine) MinimumContributionForTimeframe(currentAmount, targetAmount, annualRatePct float64, targetMonths int) (*ContributionPlan, error) {
	if targetMonths <= 0 {
		return nil, fmt.Errorf("%w: target timeframe must be positive", domain.ErrInvalidParameters)
	}
	if targetAmount <= 0 {
		return nil, fmt.Errorf("%w: target amount must be positive", domain.ErrInvalidParameters)
	}

	if currentAmount >= targetAmount {
		return &ContributionPlan{AlreadyAchieved: true}, nil
	}

	monthlyRate := annualRatePct / 1200
	fvCurrent := currentAmount * math.Pow(1+monthlyRate, float64(targetMonths))
	if fvCurrent >= targetAmount {
		// The lump sum grows past the target on its own.
		return &ContributionPlan{
			AlreadyAchieved: true,
			ExpectedReturns: round2(fvCurrent - currentAmount),
		}, nil
	}

	contribution := requiredContribution(currentAmount, targetAmount, annualRatePct, targetMonths)
	totalToInvest := contribution * float64(targetMonths)

	return &ContributionPlan{
		MonthlyContribution: contribution,
		TotalToInvest:       round2(totalToInvest),
		ExpectedReturns:     round2(targetAmount - currentAmount - totalToInvest),
	}, nil
}

// TimeToGoal walks the balance forward month by month until it reaches
// targetAmount or the 50-year cap. The search is iterative rather than a
// logarithm so the contribution schedule and compounding interact exactly
// as FutureValue defines them.
func (e *Engine) TimeToGoal(currentAmount, targetAmount, monthlyContribution, annualRatePct float64) (*TimeToGoal, error) {
	if targetAmount <= 0 {
		return nil, fmt.Errorf("%w: target amount must be positive", domain.ErrInvalidParameters)
	}

	if currentAmount >= targetAmount {
		return &TimeToGoal{
			Possible:      true,
			Months:        0,
			Years:         0,
			FinalAmount:   round2(currentAmount),
			TotalInvested: round2(currentAmount),
		}, nil
	}

	if monthlyContribution <= 0 {
		return nil, fmt.Errorf("%w: monthly contribution must be positive", domain.ErrInvalidParameters)
	}

	monthlyRate := annualRatePct / 1200

	var months int
	balance := currentAmount
	if monthlyRate == 0 {
		months = int(math.Ceil((targetAmount - currentAmount) / monthlyContribution))
		if months > maxMonths {
			return notAchievable(), nil
		}
		balance = currentAmount + monthlyContribution*float64(months)
	} else {
		for balance < targetAmount && months < maxMonths {
			balance = balance*(1+monthlyRate) + monthlyContribution
			months++
		}
		if balance < targetAmount {
			return notAchievable(), nil
		}
	}

	invested := currentAmount + monthlyContribution*float64(months)

	return &TimeToGoal{
		Possible:      true,
		Months:        months,
		Years:         math.Round(float64(months)/12*10) / 10,
		FinalAmount:   round2(balance),
		TotalInvested: round2(invested),
		TotalReturns:  round2(balance - invested),
	}, nil
}

// WhatIfReturnRates evaluates the same schedule under each alternative
// annual rate. Entries are independent of one another.
func (e *Engine) WhatIfReturnRates(currentAmount, monthlyContribution float64, years int, rates []float64) (map[string]RateScenario, error) {
	if err := validateSchedule(currentAmount, monthlyContribution, years); err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("%w: at least one rate is required", domain.ErrInvalidParameters)
	}

	months := years * 12
	scenarios := make(map[string]RateScenario, len(rates))
	for _, rate := range rates {
		fv := futureValue(currentAmount, monthlyContribution, rate, months)
		invested := currentAmount + monthlyContribution*float64(months)
		scenarios[fmt.Sprintf("%g%%", rate)] = RateScenario{
			ReturnRate:    rate,
			FutureValue:   round2(fv),
			TotalInvested: round2(invested),
			TotalReturns:  round2(fv - invested),
		}
	}
	return scenarios, nil
}

// WhatIfContributions evaluates goal achievability under each alternative
// monthly contribution.
func (e *Engine) WhatIfContributions(currentAmount, targetAmount, annualRatePct float64, years int, contributions []float64) (map[string]ContributionScenario, error) {
	if years <= 0 {
		return nil, fmt.Errorf("%w: years must be positive", domain.ErrInvalidParameters)
	}
	if targetAmount <= 0 {
		return nil, fmt.Errorf("%w: target amount must be positive", domain.ErrInvalidParameters)
	}
	if len(contributions) == 0 {
		return nil, fmt.Errorf("%w: at least one contribution is required", domain.ErrInvalidParameters)
	}

	months := years * 12
	scenarios := make(map[string]ContributionScenario, len(contributions))
	for _, contribution := range contributions {
		if contribution < 0 {
			return nil, fmt.Errorf("%w: contribution cannot be negative", domain.ErrInvalidParameters)
		}
		fv := futureValue(currentAmount, contribution, annualRatePct, months)
		scenarios[fmt.Sprintf("%.0f/mo", contribution)] = ContributionScenario{
			MonthlyContribution: contribution,
			FutureValue:         round2(fv),
			Achievable:          fv >= targetAmount,
			Shortfall:           round2(math.Max(0, targetAmount-fv)),
		}
	}
	return scenarios, nil
}

func futureValue(currentAmount, monthlyContribution, annualRatePct float64, months int) float64 {
	monthlyRate := annualRatePct / 1200
	n := float64(months)

	if monthlyRate == 0 {
		return currentAmount + monthlyContribution*n
	}

	growth := math.Pow(1+monthlyRate, n)
	return currentAmount*growth + monthlyContribution*((growth-1)/monthlyRate)
}

func requiredContribution(currentAmount, targetAmount, annualRatePct float64, months int) float64 {
	monthlyRate := annualRatePct / 1200
	n := float64(months)

	fvCurrent := currentAmount * math.Pow(1+monthlyRate, n)
	remaining := targetAmount - fvCurrent
	if remaining <= 0 {
		return 0
	}

	if monthlyRate == 0 {
		return round2(remaining / n)
	}

	annuityFactor := (math.Pow(1+monthlyRate, n) - 1) / monthlyRate
	return round2(remaining / annuityFactor)
}

func notAchievable() *TimeToGoal {
	return &TimeToGoal{
		Possible: false,
		Reason:   "goal requires more than 50 years with the given contribution and rate",
	}
}

func validateSchedule(currentAmount, monthlyContribution float64, years int) error {
	if years <= 0 {
		return fmt.Errorf("%w: years must be positive", domain.ErrInvalidParameters)
	}
	if currentAmount < 0 {
		return fmt.Errorf("%w: current amount cannot be negative", domain.ErrInvalidParameters)
	}
	if monthlyContribution < 0 {
		return fmt.Errorf("%w: monthly contribution cannot be negative", domain.ErrInvalidParameters)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
