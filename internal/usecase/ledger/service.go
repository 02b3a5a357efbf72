package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duartefn/wealthpilot-backend/internal/domain"
)

// BuyInput represents the input for buying units of an instrument.
// Price is the pre-fetched market price supplied by the caller; the
// ledger itself never talks to the price collaborator.
type BuyInput struct {
	UserID    uuid.UUID
	Symbol    string
	AssetType domain.AssetType
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	Fees      decimal.Decimal
}

// SellInput represents the input for selling units of an instrument
type SellInput struct {
	UserID    uuid.UUID
	Symbol    string
	AssetType domain.AssetType
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	Fees      decimal.Decimal
}

// TradeResult is the state snapshot returned by a buy or a sell.
// Holding is nil when the sell closed the position.
type TradeResult struct {
	Holding     *domain.Holding
	Wallet      domain.Wallet
	Transaction domain.Transaction
}

// CashResult is the state snapshot returned by a contribution or a
// withdrawal.
type CashResult struct {
	Wallet      domain.Wallet
	Transaction domain.Transaction
}

// Service applies transactions to holdings and wallets one atomic unit at
// a time. All validation happens before any state is read or written, and
// every mutation (holding, wallet, transaction log) commits together or
// not at all.
type Service struct {
	Store domain.LedgerStore
}

// NewService creates a new ledger Service instance
func NewService(store domain.LedgerStore) *Service {
	return &Service{Store: store}
}

// Buy purchases quantity units at price, debiting the wallet by
// quantity*price + fees. The holding is created on first buy; subsequent
// buys recompute the weighted-average buy price.
func (s *Service) Buy(ctx context.Context, in BuyInput) (*TradeResult, error) {
	if err := validateTrade(in.Symbol, in.AssetType, in.Quantity, in.Price, in.Fees); err != nil {
		return nil, err
	}

	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin ledger unit: %w", err)
	}
	defer tx.Rollback()

	wallet, err := tx.Wallet(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	totalCost := in.Quantity.Mul(in.Price).Add(in.Fees)
	newWallet, err := wallet.Debit(totalCost)
	if err != nil {
		return nil, err
	}

	var newHolding domain.Holding
	holding, err := tx.Holding(ctx, in.UserID, in.Symbol, in.AssetType)
	switch {
	case err == nil:
		newHolding = holding.ApplyBuy(in.Quantity, in.Price, in.Fees)
	case errors.Is(err, domain.ErrNotFound):
		newHolding = domain.NewHolding(in.UserID, in.Symbol, in.AssetType, in.Quantity, in.Price, in.Fees)
	default:
		return nil, err
	}

	record := domain.NewTradeTransaction(in.UserID, domain.TransactionKindBuy, in.Symbol, in.AssetType, in.Quantity, in.Price, in.Fees)
	if err := record.Validate(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx, &domain.LedgerMutation{
		Holding:     &newHolding,
		Wallet:      &newWallet,
		Transaction: &record,
	}); err != nil {
		return nil, fmt.Errorf("failed to commit buy: %w", err)
	}

	return &TradeResult{Holding: &newHolding, Wallet: newWallet, Transaction: record}, nil
}

// Sell disposes of quantity units at price, crediting the wallet by
// quantity*price. Fees are recorded on the transaction but do not reduce
// the proceeds. Cost basis is removed proportionally, so the average buy
// price of the remaining units is unchanged; selling every unit deletes
// the holding.
func (s *Service) Sell(ctx context.Context, in SellInput) (*TradeResult, error) {
	if err := validateTrade(in.Symbol, in.AssetType, in.Quantity, in.Price, in.Fees); err != nil {
		return nil, err
	}

	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin ledger unit: %w", err)
	}
	defer tx.Rollback()

	// Wallet first, holding second: the same lock order as Buy, so
	// concurrent operations on one user cannot deadlock.
	wallet, err := tx.Wallet(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	holding, err := tx.Holding(ctx, in.UserID, in.Symbol, in.AssetType)
	if err != nil {
		return nil, err
	}

	after, _, closed, err := holding.ApplySell(in.Quantity, in.Price)
	if err != nil {
		return nil, err
	}

	proceeds := in.Quantity.Mul(in.Price)
	newWallet, err := wallet.Credit(proceeds)
	if err != nil {
		return nil, err
	}

	record := domain.NewTradeTransaction(in.UserID, domain.TransactionKindSell, in.Symbol, in.AssetType, in.Quantity, in.Price, in.Fees)
	if err := record.Validate(); err != nil {
		return nil, err
	}

	mutation := &domain.LedgerMutation{
		Wallet:      &newWallet,
		Transaction: &record,
	}

	result := &TradeResult{Wallet: newWallet, Transaction: record}
	if closed {
		id := holding.ID
		mutation.DeleteHoldingID = &id
	} else {
		mutation.Holding = &after
		result.Holding = &after
	}

	if err := tx.Commit(ctx, mutation); err != nil {
		return nil, fmt.Errorf("failed to commit sell: %w", err)
	}

	return result, nil
}

// Contribute credits the wallet by amount. No holding is touched.
func (s *Service) Contribute(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*CashResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: contribution amount must be positive", domain.ErrInvalidParameters)
	}

	return s.applyCash(ctx, userID, domain.TransactionKindContribution, amount, domain.Wallet.Credit)
}

// Withdraw debits the wallet by amount. Fails with ErrInsufficientFunds
// when the balance cannot cover it.
func (s *Service) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*CashResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive", domain.ErrInvalidParameters)
	}

	return s.applyCash(ctx, userID, domain.TransactionKindWithdrawal, amount, domain.Wallet.Debit)
}

// MarkToMarket revalues a holding at price. Pure revaluation: no wallet
// movement and no transaction record.
func (s *Service) MarkToMarket(ctx context.Context, userID uuid.UUID, symbol string, assetType domain.AssetType, price decimal.Decimal) (*domain.Holding, error) {
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrInvalidParameters)
	}

	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin ledger unit: %w", err)
	}
	defer tx.Rollback()

	holding, err := tx.Holding(ctx, userID, symbol, assetType)
	if err != nil {
		return nil, err
	}

	revalued := holding.MarkToMarket(price, time.Now())
	if err := tx.Commit(ctx, &domain.LedgerMutation{Holding: &revalued}); err != nil {
		return nil, fmt.Errorf("failed to commit revaluation: %w", err)
	}

	return &revalued, nil
}

func (s *Service) applyCash(ctx context.Context, userID uuid.UUID, kind domain.TransactionKind, amount decimal.Decimal, move func(domain.Wallet, decimal.Decimal) (domain.Wallet, error)) (*CashResult, error) {
	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin ledger unit: %w", err)
	}
	defer tx.Rollback()

	wallet, err := tx.Wallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	newWallet, err := move(*wallet, amount)
	if err != nil {
		return nil, err
	}

	record := domain.NewCashTransaction(userID, kind, amount)
	if err := record.Validate(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx, &domain.LedgerMutation{
		Wallet:      &newWallet,
		Transaction: &record,
	}); err != nil {
		return nil, fmt.Errorf("failed to commit %s: %w", kind, err)
	}

	return &CashResult{Wallet: newWallet, Transaction: record}, nil
}

func validateTrade(symbol string, assetType domain.AssetType, quantity, price, fees decimal.Decimal) error {
	if symbol == "" || symbol == domain.WalletSymbol {
		return fmt.Errorf("%w: an instrument symbol is required", domain.ErrInvalidParameters)
	}
	if !domain.ValidAssetType(assetType) {
		return fmt.Errorf("%w: unknown asset type %q", domain.ErrInvalidParameters, assetType)
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidParameters)
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: price must be positive", domain.ErrInvalidParameters)
	}
	if fees.IsNegative() {
		return fmt.Errorf("%w: fees cannot be negative", domain.ErrInvalidParameters)
	}
	return nil
}
