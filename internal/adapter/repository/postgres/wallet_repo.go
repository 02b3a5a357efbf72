package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duartefn/wealthpilot-backend/internal/domain"
)

// walletRepository implements domain.WalletRepository
type walletRepository struct {
	db *DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *DB) domain.WalletRepository {
	return &walletRepository{db: db}
}

// GetByUserID retrieves a user's wallet
func (r *walletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	query := `
		SELECT user_id, balance
		FROM wallets
		WHERE user_id = $1
	`

	var wallet domain.Wallet
	var balanceStr string

	err := r.db.QueryRowContext(ctx, query, userID).Scan(&wallet.UserID, &balanceStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: wallet for user %s", domain.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse wallet balance: %w", err)
	}
	wallet.Balance = balance

	return &wallet, nil
}
