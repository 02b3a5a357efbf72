package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HoldingRepository defines read and revaluation access to holdings.
// Mutations that move money go through the LedgerStore instead so they
// commit atomically with the wallet and the transaction log.
type HoldingRepository interface {
	// Get retrieves the holding for a (user, symbol, asset type) triple.
	// Returns ErrNotFound when no such position is open.
	Get(ctx context.Context, userID uuid.UUID, symbol string, assetType AssetType) (*Holding, error)

	// ListByUser retrieves all open holdings for a user
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Holding, error)

	// UpdateValuation persists the derived price fields of a marked-to-market
	// holding. Units and cost basis are never touched by this call.
	UpdateValuation(ctx context.Context, holding *Holding) error
}

// WalletRepository defines read access to wallets
type WalletRepository interface {
	// GetByUserID retrieves a user's wallet. Returns ErrNotFound when the
	// user has no wallet.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Wallet, error)
}

// TransactionRepository defines read access to the append-only
// transaction log. Appends happen inside the LedgerStore commit.
type TransactionRepository interface {
	// List retrieves a paginated list of a user's transactions, newest first
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Transaction, error)

	// Recent retrieves the n most recent transactions for a user
	Recent(ctx context.Context, userID uuid.UUID, n int) ([]*Transaction, error)

	// Count returns the total number of transactions for a user
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}

// GoalRepository defines the interface for goal persistence operations
type GoalRepository interface {
	Create(ctx context.Context, goal *Goal) error
	GetByID(ctx context.Context, id uuid.UUID) (*Goal, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Goal, error)
	Update(ctx context.Context, goal *Goal) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// LedgerMutation is the unit of work produced by one ledger operation.
// Every populated field commits or none does; partial application must
// never be observable.
type LedgerMutation struct {
	// Holding to upsert, or nil when the operation does not touch one
	Holding *Holding

	// DeleteHoldingID removes a fully sold position
	DeleteHoldingID *uuid.UUID

	// Wallet snapshot to persist, or nil for pure revaluations
	Wallet *Wallet

	// Transaction to append to the log, or nil for pure revaluations
	Transaction *Transaction
}

// LedgerTx is one atomic unit of ledger work. Reads lock the rows they
// return until Commit or Rollback, serializing concurrent operations
// against the same wallet or holding.
type LedgerTx interface {
	// Wallet retrieves and locks the user's wallet
	Wallet(ctx context.Context, userID uuid.UUID) (*Wallet, error)

	// Holding retrieves and locks the holding for a (user, symbol, asset
	// type) triple. Returns ErrNotFound when no position is open.
	Holding(ctx context.Context, userID uuid.UUID, symbol string, assetType AssetType) (*Holding, error)

	// Commit applies the mutation and ends the unit of work
	Commit(ctx context.Context, m *LedgerMutation) error

	// Rollback abandons the unit of work. Safe to call after Commit.
	Rollback() error
}

// LedgerStore opens atomic units of ledger work
type LedgerStore interface {
	Begin(ctx context.Context) (LedgerTx, error)
}

// Quote is a point-in-time price for a symbol
type Quote struct {
	Symbol string
	Price  decimal.Decimal
	AsOf   time.Time
}

// PriceLookup is the market-data collaborator. Retrieval, caching, timeout
// and retry policy all live behind this interface; the ledger only ever
// sees a pre-fetched price. Implementations return ErrPriceUnavailable
// when no quote can be obtained.
type PriceLookup interface {
	Price(ctx context.Context, symbol string) (Quote, error)
}
