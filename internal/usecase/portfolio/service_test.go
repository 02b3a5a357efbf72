package portfolio

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/duartefn/wealthpilot-backend/internal/domain"
)

// MockHoldingRepository is a mock implementation of HoldingRepository for testing
type MockHoldingRepository struct {
	mock.Mock
}

func (m *MockHoldingRepository) Get(ctx context.Context, userID uuid.UUID, symbol string, assetType domain.AssetType) (*domain.Holding, error) {
	args := m.Called(ctx, userID, symbol, assetType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Holding), args.Error(1)
}

func (m *MockHoldingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Holding, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Holding), args.Error(1)
}

func (m *MockHoldingRepository) UpdateValuation(ctx context.Context, holding *domain.Holding) error {
	args := m.Called(ctx, holding)
	return args.Error(0)
}

// MockWalletRepository is a mock implementation of WalletRepository for testing
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

// MockPriceLookup is a mock implementation of PriceLookup for testing
type MockPriceLookup struct {
	mock.Mock
}

func (m *MockPriceLookup) Price(ctx context.Context, symbol string) (domain.Quote, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(domain.Quote), args.Error(1)
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func holdingWith(userID uuid.UUID, symbol string, assetType domain.AssetType, units, costBasis, lastPrice string) *domain.Holding {
	h := domain.Holding{
		ID:        uuid.New(),
		UserID:    userID,
		Symbol:    symbol,
		AssetType: assetType,
		Units:     d(units),
		CostBasis: d(costBasis),
	}
	h = h.MarkToMarket(d(lastPrice), time.Now())
	return &h
}

func TestGetSummary_AggregatesHoldingsAndWallet(t *testing.T) {
	ctx := context.Background()
	holdingRepo := new(MockHoldingRepository)
	walletRepo := new(MockWalletRepository)
	service := NewService(holdingRepo, walletRepo, nil)

	userID := uuid.New()
	holdings := []*domain.Holding{
		holdingWith(userID, "VWCE", domain.AssetTypeETF, "10", "1000", "110"),
		holdingWith(userID, "AAPL", domain.AssetTypeStock, "5", "900", "170"),
	}
	holdingRepo.On("ListByUser", ctx, userID).Return(holdings, nil)
	walletRepo.On("GetByUserID", ctx, userID).Return(&domain.Wallet{UserID: userID, Balance: d("250.5")}, nil)

	summary, err := service.GetSummary(ctx, userID)

	require.NoError(t, err)
	// Values: 10*110 + 5*170 = 1950; invested 1900.
	assert.True(t, summary.TotalPortfolioValue.Equal(d("1950")))
	assert.True(t, summary.TotalInvested.Equal(d("1900")))
	assert.True(t, summary.TotalGainLoss.Equal(d("50")))
	assert.True(t, summary.TotalGainLossPercent.Equal(d("2.63")))
	assert.True(t, summary.WalletBalance.Equal(d("250.5")))
	assert.True(t, summary.NetWorth.Equal(d("2200.5")))
	assert.Equal(t, 2, summary.TotalHoldings)

	holdingRepo.AssertExpectations(t)
	walletRepo.AssertExpectations(t)
}

func TestGetSummary_EmptyPortfolio(t *testing.T) {
	ctx := context.Background()
	holdingRepo := new(MockHoldingRepository)
	walletRepo := new(MockWalletRepository)
	service := NewService(holdingRepo, walletRepo, nil)

	userID := uuid.New()
	holdingRepo.On("ListByUser", ctx, userID).Return([]*domain.Holding{}, nil)
	walletRepo.On("GetByUserID", ctx, userID).Return(&domain.Wallet{UserID: userID, Balance: d("100")}, nil)

	summary, err := service.GetSummary(ctx, userID)

	require.NoError(t, err)
	assert.True(t, summary.TotalPortfolioValue.IsZero())
	assert.True(t, summary.TotalGainLossPercent.IsZero())
	assert.True(t, summary.NetWorth.Equal(d("100")))
	assert.Equal(t, 0, summary.TotalHoldings)
}

func TestGetAllocation_PercentagesPerSymbol(t *testing.T) {
	ctx := context.Background()
	holdingRepo := new(MockHoldingRepository)
	service := NewService(holdingRepo, nil, nil)

	userID := uuid.New()
	holdings := []*domain.Holding{
		holdingWith(userID, "VWCE", domain.AssetTypeETF, "10", "1000", "150"),  // 1500
		holdingWith(userID, "AAPL", domain.AssetTypeStock, "5", "400", "100"), // 500
	}
	holdingRepo.On("ListByUser", ctx, userID).Return(holdings, nil)

	allocation, err := service.GetAllocation(ctx, userID)

	require.NoError(t, err)
	assert.True(t, allocation.TotalPortfolioValue.Equal(d("2000")))
	require.Len(t, allocation.Entries, 2)

	assert.Equal(t, "VWCE", allocation.Entries[0].Symbol)
	assert.True(t, allocation.Entries[0].Value.Equal(d("1500")))
	assert.True(t, allocation.Entries[0].Percentage.Equal(d("75")))

	assert.Equal(t, "AAPL", allocation.Entries[1].Symbol)
	assert.True(t, allocation.Entries[1].Percentage.Equal(d("25")))
}

func TestRefreshPrices_MarksHoldingsToMarket(t *testing.T) {
	ctx := context.Background()
	holdingRepo := new(MockHoldingRepository)
	prices := new(MockPriceLookup)
	service := NewService(holdingRepo, nil, prices)

	userID := uuid.New()
	holding := holdingWith(userID, "VWCE", domain.AssetTypeETF, "10", "1000", "100")
	holdingRepo.On("ListByUser", ctx, userID).Return([]*domain.Holding{holding}, nil)
	prices.On("Price", ctx, "VWCE").Return(domain.Quote{Symbol: "VWCE", Price: d("120")}, nil)

	var updated *domain.Holding
	holdingRepo.On("UpdateValuation", ctx, mock.Anything).Run(func(args mock.Arguments) {
		updated = args.Get(1).(*domain.Holding)
	}).Return(nil)

	refreshed, err := service.RefreshPrices(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)
	require.NotNil(t, updated)
	assert.True(t, updated.LastPrice.Equal(d("120")))
	assert.True(t, updated.CurrentValue.Equal(d("1200")))
	// Cost basis is untouched by revaluation.
	assert.True(t, updated.CostBasis.Equal(d("1000")))
}

func TestRefreshPrices_SkipsUnavailableQuotes(t *testing.T) {
	ctx := context.Background()
	holdingRepo := new(MockHoldingRepository)
	prices := new(MockPriceLookup)
	service := NewService(holdingRepo, nil, prices)

	userID := uuid.New()
	holdings := []*domain.Holding{
		holdingWith(userID, "GHOST", domain.AssetTypeStock, "1", "50", "50"),
		holdingWith(userID, "VWCE", domain.AssetTypeETF, "10", "1000", "100"),
	}
	holdingRepo.On("ListByUser", ctx, userID).Return(holdings, nil)
	prices.On("Price", ctx, "GHOST").Return(domain.Quote{}, domain.ErrPriceUnavailable)
	prices.On("Price", ctx, "VWCE").Return(domain.Quote{Symbol: "VWCE", Price: d("110")}, nil)
	holdingRepo.On("UpdateValuation", ctx, mock.Anything).Return(nil)

	refreshed, err := service.RefreshPrices(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)
	holdingRepo.AssertNumberOfCalls(t, "UpdateValuation", 1)
}
