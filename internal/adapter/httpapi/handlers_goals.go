package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duartefn/wealthpilot-backend/internal/usecase/goals"
)

type createGoalRequest struct {
	UserID              uuid.UUID       `json:"user_id"`
	Name                string          `json:"name"`
	TargetAmount        decimal.Decimal `json:"target_amount"`
	TargetDate          *time.Time      `json:"target_date"`
	TargetMonths        int             `json:"target_months"`
	MonthlyContribution decimal.Decimal `json:"monthly_contribution"`
	CurrentAmount       decimal.Decimal `json:"current_amount"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	goal, err := s.cfg.Goals.Create(r.Context(), goals.CreateGoalInput{
		UserID:              req.UserID,
		Name:                req.Name,
		TargetAmount:        req.TargetAmount,
		TargetDate:          req.TargetDate,
		TargetMonths:        req.TargetMonths,
		MonthlyContribution: req.MonthlyContribution,
		CurrentAmount:       req.CurrentAmount,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toGoalJSON(goal))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.queryUserID(w, r)
	if !ok {
		return
	}

	list, err := s.cfg.Goals.List(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	items := make([]*goalJSON, 0, len(list))
	for _, g := range list {
		items = append(items, toGoalJSON(g))
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

// pathGoalID parses the goalID path parameter
func (s *Server) pathGoalID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "goalID"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "goal ID must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathGoalID(w, r)
	if !ok {
		return
	}

	goal, err := s.cfg.Goals.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toGoalJSON(goal))
}

type updateGoalRequest struct {
	Name                *string          `json:"name"`
	TargetAmount        *decimal.Decimal `json:"target_amount"`
	TargetDate          *time.Time       `json:"target_date"`
	TargetMonths        *int             `json:"target_months"`
	MonthlyContribution *decimal.Decimal `json:"monthly_contribution"`
	CurrentAmount       *decimal.Decimal `json:"current_amount"`
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathGoalID(w, r)
	if !ok {
		return
	}

	var req updateGoalRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	goal, err := s.cfg.Goals.Update(r.Context(), id, goals.UpdateGoalInput{
		Name:                req.Name,
		TargetAmount:        req.TargetAmount,
		TargetDate:          req.TargetDate,
		TargetMonths:        req.TargetMonths,
		MonthlyContribution: req.MonthlyContribution,
		CurrentAmount:       req.CurrentAmount,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toGoalJSON(goal))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathGoalID(w, r)
	if !ok {
		return
	}

	if err := s.cfg.Goals.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEvaluateGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathGoalID(w, r)
	if !ok {
		return
	}

	rate := 7.0
	if raw := r.URL.Query().Get("annual_rate"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "annual_rate must be a number")
			return
		}
		rate = parsed
	}

	evaluation, err := s.cfg.Goals.Evaluate(r.Context(), id, rate)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"goal":            toGoalJSON(evaluation.Goal),
		"annual_rate_pct": evaluation.AnnualRatePct,
		"plan":            evaluation.Plan,
		"time_to_goal":    evaluation.TimeToGoal,
		"projection":      evaluation.GoalProjection,
	})
}
