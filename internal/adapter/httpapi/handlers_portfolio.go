package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duartefn/wealthpilot-backend/internal/domain"
)

type summaryJSON struct {
	TotalPortfolioValue  decimal.Decimal `json:"total_portfolio_value"`
	TotalInvested        decimal.Decimal `json:"total_invested"`
	TotalGainLoss        decimal.Decimal `json:"total_gain_loss"`
	TotalGainLossPercent decimal.Decimal `json:"total_gain_loss_percent"`
	WalletBalance        decimal.Decimal `json:"wallet_balance"`
	NetWorth             decimal.Decimal `json:"net_worth"`
	TotalHoldings        int             `json:"total_holdings"`
}

func (s *Server) handlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.queryUserID(w, r)
	if !ok {
		return
	}

	summary, err := s.cfg.Portfolio.GetSummary(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, summaryJSON{
		TotalPortfolioValue:  summary.TotalPortfolioValue,
		TotalInvested:        summary.TotalInvested,
		TotalGainLoss:        summary.TotalGainLoss,
		TotalGainLossPercent: summary.TotalGainLossPercent,
		WalletBalance:        summary.WalletBalance,
		NetWorth:             summary.NetWorth,
		TotalHoldings:        summary.TotalHoldings,
	})
}

type allocationEntryJSON struct {
	Symbol     string          `json:"symbol"`
	Value      decimal.Decimal `json:"value"`
	Percentage decimal.Decimal `json:"percentage"`
}

func (s *Server) handlePortfolioAllocation(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.queryUserID(w, r)
	if !ok {
		return
	}

	allocation, err := s.cfg.Portfolio.GetAllocation(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	entries := make([]allocationEntryJSON, 0, len(allocation.Entries))
	for _, e := range allocation.Entries {
		entries = append(entries, allocationEntryJSON{
			Symbol:     e.Symbol,
			Value:      e.Value,
			Percentage: e.Percentage,
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_portfolio_value": allocation.TotalPortfolioValue,
		"entries":               entries,
	})
}

func (s *Server) handleListHoldings(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.queryUserID(w, r)
	if !ok {
		return
	}

	holdings, err := s.cfg.Portfolio.HoldingRepo.ListByUser(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	items := make([]*holdingJSON, 0, len(holdings))
	for _, h := range holdings {
		items = append(items, toHoldingJSON(h))
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

func (s *Server) handleGetHolding(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.queryUserID(w, r)
	if !ok {
		return
	}

	assetType := domain.AssetType(r.URL.Query().Get("asset_type"))
	if assetType == "" {
		assetType = domain.AssetTypeStock
	}

	holding, err := s.cfg.Portfolio.HoldingRepo.Get(r.Context(), userID, chi.URLParam(r, "symbol"), assetType)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toHoldingJSON(holding))
}

type refreshRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

func (s *Server) handleRefreshPrices(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	refreshed, err := s.cfg.Portfolio.RefreshPrices(r.Context(), req.UserID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"refreshed": refreshed,
	})
}
