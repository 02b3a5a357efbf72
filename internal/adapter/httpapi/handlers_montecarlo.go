package httpapi

import (
	"net/http"

	"github.com/duartefn/wealthpilot-backend/internal/usecase/montecarlo"
)

type monteCarloRequest struct {
	CurrentAmount           float64 `json:"current_amount"`
	MonthlyContribution     float64 `json:"monthly_contribution"`
	ExpectedAnnualReturnPct float64 `json:"expected_annual_return_pct"`
	AnnualVolatilityPct     float64 `json:"annual_volatility_pct"`
	Years                   int     `json:"years"`
	Trials                  int     `json:"trials"`
}

func (s *Server) handleMonteCarlo(w http.ResponseWriter, r *http.Request) {
	var req monteCarloRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if req.Trials == 0 {
		req.Trials = 1000
	}

	result, err := s.cfg.MonteCarlo.Simulate(r.Context(), montecarlo.Input{
		CurrentAmount:           req.CurrentAmount,
		MonthlyContribution:     req.MonthlyContribution,
		ExpectedAnnualReturnPct: req.ExpectedAnnualReturnPct,
		AnnualVolatilityPct:     req.AnnualVolatilityPct,
		Years:                   req.Years,
		Trials:                  req.Trials,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}
