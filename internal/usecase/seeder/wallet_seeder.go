package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duartefn/wealthpilot-backend/internal/domain"
)

// DemoUserID is the fixed identity seeded in dev mode so a fresh
// environment has a wallet to trade against.
var DemoUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// DemoOpeningBalance is the starting cash of the demo wallet
var DemoOpeningBalance = decimal.NewFromInt(10000)

// WalletSeeder provisions wallets for users that do not have one yet.
// It goes through the ledger store so a concurrent seed of the same user
// serializes the same way any other wallet mutation does.
type WalletSeeder struct {
	store domain.LedgerStore
}

// NewWalletSeeder creates a new WalletSeeder instance
func NewWalletSeeder(store domain.LedgerStore) *WalletSeeder {
	return &WalletSeeder{store: store}
}

// Seed ensures userID has a wallet, creating one with openingBalance when
// missing. Returns the wallet either way.
func (s *WalletSeeder) Seed(ctx context.Context, userID uuid.UUID, openingBalance decimal.Decimal) (*domain.Wallet, error) {
	if openingBalance.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance cannot be negative", domain.ErrInvalidParameters)
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin ledger unit: %w", err)
	}
	defer tx.Rollback()

	wallet, err := tx.Wallet(ctx, userID)
	switch {
	case err == nil:
		return wallet, nil
	case errors.Is(err, domain.ErrNotFound):
	default:
		return nil, err
	}

	fresh := domain.Wallet{UserID: userID, Balance: openingBalance}
	if err := tx.Commit(ctx, &domain.LedgerMutation{Wallet: &fresh}); err != nil {
		return nil, fmt.Errorf("failed to commit wallet seed: %w", err)
	}

	return &fresh, nil
}

// SeedDemo provisions the fixed demo wallet
func (s *WalletSeeder) SeedDemo(ctx context.Context) (*domain.Wallet, error) {
	return s.Seed(ctx, DemoUserID, DemoOpeningBalance)
}
