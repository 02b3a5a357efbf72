package httpapi

import (
	"net/http"
)

type scheduleRequest struct {
	CurrentAmount       float64 `json:"current_amount"`
	MonthlyContribution float64 `json:"monthly_contribution"`
	TargetAmount        float64 `json:"target_amount"`
	AnnualRatePct       float64 `json:"annual_rate_pct"`
	Years               int     `json:"years"`
	TargetMonths        int     `json:"target_months"`
}

func (s *Server) handleFutureValue(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	fv, err := s.cfg.Projection.FutureValue(req.CurrentAmount, req.MonthlyContribution, req.AnnualRatePct, req.Years)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"future_value": fv,
	})
}

func (s *Server) handleGoalAchievement(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	projection, err := s.cfg.Projection.GoalAchievement(req.CurrentAmount, req.TargetAmount, req.MonthlyContribution, req.AnnualRatePct, req.Years)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, projection)
}

func (s *Server) handleRequiredContribution(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if req.TargetMonths > 0 {
		plan, err := s.cfg.Projection.MinimumContributionForTimeframe(req.CurrentAmount, req.TargetAmount, req.AnnualRatePct, req.TargetMonths)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, plan)
		return
	}

	contribution, err := s.cfg.Projection.RequiredMonthlyContribution(req.CurrentAmount, req.TargetAmount, req.AnnualRatePct, req.Years)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"monthly_contribution": contribution,
	})
}

func (s *Server) handleTimeToGoal(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.cfg.Projection.TimeToGoal(req.CurrentAmount, req.TargetAmount, req.MonthlyContribution, req.AnnualRatePct)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

type whatIfReturnsRequest struct {
	CurrentAmount       float64   `json:"current_amount"`
	MonthlyContribution float64   `json:"monthly_contribution"`
	Years               int       `json:"years"`
	Rates               []float64 `json:"rates"`
}

func (s *Server) handleWhatIfReturns(w http.ResponseWriter, r *http.Request) {
	var req whatIfReturnsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	scenarios, err := s.cfg.Projection.WhatIfReturnRates(req.CurrentAmount, req.MonthlyContribution, req.Years, req.Rates)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"scenarios": scenarios,
	})
}

type whatIfContributionsRequest struct {
	CurrentAmount float64   `json:"current_amount"`
	TargetAmount  float64   `json:"target_amount"`
	AnnualRatePct float64   `json:"annual_rate_pct"`
	Years         int       `json:"years"`
	Contributions []float64 `json:"contributions"`
}

func (s *Server) handleWhatIfContributions(w http.ResponseWriter, r *http.Request) {
	var req whatIfContributionsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	scenarios, err := s.cfg.Projection.WhatIfContributions(req.CurrentAmount, req.TargetAmount, req.AnnualRatePct, req.Years, req.Contributions)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"scenarios": scenarios,
	})
}
