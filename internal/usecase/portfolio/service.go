package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duartefn/wealthpilot-backend/internal/domain"
)

// Summary aggregates a user's holdings and wallet into headline numbers
type Summary struct {
	TotalPortfolioValue  decimal.Decimal
	TotalInvested        decimal.Decimal
	TotalGainLoss        decimal.Decimal
	TotalGainLossPercent decimal.Decimal
	WalletBalance        decimal.Decimal
	NetWorth             decimal.Decimal
	TotalHoldings        int
}

// AllocationEntry is one symbol's share of the portfolio value
type AllocationEntry struct {
	Symbol     string
	Value      decimal.Decimal
	Percentage decimal.Decimal
}

// Allocation breaks the portfolio value down by symbol
type Allocation struct {
	TotalPortfolioValue decimal.Decimal
	Entries             []AllocationEntry
}

// Service handles portfolio-level read operations: aggregation across
// holdings and batch revaluation against the price collaborator.
type Service struct {
	HoldingRepo domain.HoldingRepository
	WalletRepo  domain.WalletRepository
	Prices      domain.PriceLookup
}

// NewService creates a new portfolio Service instance
func NewService(holdingRepo domain.HoldingRepository, walletRepo domain.WalletRepository, prices domain.PriceLookup) *Service {
	return &Service{
		HoldingRepo: holdingRepo,
		WalletRepo:  walletRepo,
		Prices:      prices,
	}
}

// GetSummary computes the user's portfolio totals from the holdings'
// last-known valuations and the wallet balance.
func (s *Service) GetSummary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	holdings, err := s.HoldingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}

	wallet, err := s.WalletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	totalValue := decimal.Zero
	totalInvested := decimal.Zero
	for _, h := range holdings {
		totalValue = totalValue.Add(h.CurrentValue)
		totalInvested = totalInvested.Add(h.CostBasis)
	}

	gainLoss := totalValue.Sub(totalInvested)
	gainLossPercent := decimal.Zero
	if totalInvested.IsPositive() {
		gainLossPercent = gainLoss.Div(totalInvested).Mul(decimal.NewFromInt(100))
	}

	return &Summary{
		TotalPortfolioValue:  totalValue.Round(2),
		TotalInvested:        totalInvested.Round(2),
		TotalGainLoss:        gainLoss.Round(2),
		TotalGainLossPercent: gainLossPercent.Round(2),
		WalletBalance:        wallet.Balance.Round(2),
		NetWorth:             totalValue.Add(wallet.Balance).Round(2),
		TotalHoldings:        len(holdings),
	}, nil
}

// GetAllocation computes each symbol's share of the total portfolio value
func (s *Service) GetAllocation(ctx context.Context, userID uuid.UUID) (*Allocation, error) {
	holdings, err := s.HoldingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}

	// Holdings of the same symbol across asset types aggregate into one
	// entry, preserving repository order for a stable response.
	totalValue := decimal.Zero
	bySymbol := make(map[string]decimal.Decimal)
	order := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if _, seen := bySymbol[h.Symbol]; !seen {
			order = append(order, h.Symbol)
		}
		bySymbol[h.Symbol] = bySymbol[h.Symbol].Add(h.CurrentValue)
		totalValue = totalValue.Add(h.CurrentValue)
	}

	entries := make([]AllocationEntry, 0, len(order))
	for _, symbol := range order {
		value := bySymbol[symbol]
		percentage := decimal.Zero
		if totalValue.IsPositive() {
			percentage = value.Div(totalValue).Mul(decimal.NewFromInt(100))
		}
		entries = append(entries, AllocationEntry{
			Symbol:     symbol,
			Value:      value.Round(2),
			Percentage: percentage.Round(2),
		})
	}

	return &Allocation{
		TotalPortfolioValue: totalValue.Round(2),
		Entries:             entries,
	}, nil
}

// RefreshPrices marks every holding of the user to market using the price
// collaborator. Symbols without an available quote are skipped, never
// revalued with a stale or default price. Returns the number of holdings
// refreshed.
func (s *Service) RefreshPrices(ctx context.Context, userID uuid.UUID) (int, error) {
	holdings, err := s.HoldingRepo.ListByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list holdings: %w", err)
	}

	refreshed := 0
	for _, h := range holdings {
		quote, err := s.Prices.Price(ctx, h.Symbol)
		if err != nil {
			if errors.Is(err, domain.ErrPriceUnavailable) {
				continue
			}
			return refreshed, err
		}

		revalued := h.MarkToMarket(quote.Price, quoteTime(quote))
		if err := s.HoldingRepo.UpdateValuation(ctx, &revalued); err != nil {
			return refreshed, fmt.Errorf("failed to persist valuation for %s: %w", h.Symbol, err)
		}
		refreshed++
	}

	return refreshed, nil
}

func quoteTime(q domain.Quote) time.Time {
	if q.AsOf.IsZero() {
		return time.Now()
	}
	return q.AsOf
}
