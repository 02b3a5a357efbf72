package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duartefn/wealthpilot-backend/internal/domain"
)

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// decodeJSON parses the request body into dst
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// Wire representations. Domain entities stay free of serialization
// concerns; these DTOs own the JSON shape of the API.

type holdingJSON struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	Symbol        string          `json:"symbol"`
	AssetType     string          `json:"asset_type"`
	Units         decimal.Decimal `json:"units"`
	CostBasis     decimal.Decimal `json:"cost_basis"`
	AvgBuyPrice   decimal.Decimal `json:"avg_buy_price"`
	LastPrice     decimal.Decimal `json:"last_price"`
	LastPriceAt   time.Time       `json:"last_price_at"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	PnLPercent    decimal.Decimal `json:"pnl_percent"`
}

func toHoldingJSON(h *domain.Holding) *holdingJSON {
	if h == nil {
		return nil
	}
	return &holdingJSON{
		ID:            h.ID,
		UserID:        h.UserID,
		Symbol:        h.Symbol,
		AssetType:     string(h.AssetType),
		Units:         h.Units,
		CostBasis:     h.CostBasis,
		AvgBuyPrice:   h.AvgBuyPrice,
		LastPrice:     h.LastPrice,
		LastPriceAt:   h.LastPriceAt,
		CurrentValue:  h.CurrentValue,
		UnrealizedPnL: h.UnrealizedPnL,
		PnLPercent:    h.PnLPercent,
	}
}

type walletJSON struct {
	UserID  uuid.UUID       `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}

func toWalletJSON(w domain.Wallet) walletJSON {
	return walletJSON{UserID: w.UserID, Balance: w.Balance}
}

type transactionJSON struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Kind      string          `json:"kind"`
	Symbol    string          `json:"symbol"`
	AssetType string          `json:"asset_type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Fees      decimal.Decimal `json:"fees"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

func toTransactionJSON(t domain.Transaction) transactionJSON {
	return transactionJSON{
		ID:        t.ID,
		UserID:    t.UserID,
		Kind:      string(t.Kind),
		Symbol:    t.Symbol,
		AssetType: string(t.AssetType),
		Quantity:  t.Quantity,
		Price:     t.Price,
		Fees:      t.Fees,
		Amount:    t.Amount(),
		CreatedAt: t.CreatedAt,
	}
}

type goalJSON struct {
	ID                  uuid.UUID       `json:"id"`
	UserID              uuid.UUID       `json:"user_id"`
	Name                string          `json:"name"`
	TargetAmount        decimal.Decimal `json:"target_amount"`
	TargetDate          *time.Time      `json:"target_date,omitempty"`
	TargetMonths        int             `json:"target_months,omitempty"`
	MonthlyContribution decimal.Decimal `json:"monthly_contribution"`
	CurrentAmount       decimal.Decimal `json:"current_amount"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func toGoalJSON(g *domain.Goal) *goalJSON {
	if g == nil {
		return nil
	}
	return &goalJSON{
		ID:                  g.ID,
		UserID:              g.UserID,
		Name:                g.Name,
		TargetAmount:        g.TargetAmount,
		TargetDate:          g.TargetDate,
		TargetMonths:        g.TargetMonths,
		MonthlyContribution: g.MonthlyContribution,
		CurrentAmount:       g.CurrentAmount,
		CreatedAt:           g.CreatedAt,
		UpdatedAt:           g.UpdatedAt,
	}
}
