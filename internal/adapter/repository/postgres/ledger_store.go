package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/duartefn/wealthpilot-backend/internal/domain"
)

// ledgerStore implements domain.LedgerStore on a single SQL transaction.
// Reads use SELECT ... FOR UPDATE so the rows a ledger operation computed
// from stay locked until Commit or Rollback; two operations on the same
// wallet or holding serialize at the database instead of losing updates.
type ledgerStore struct {
	db *DB
}

// NewLedgerStore creates a new ledger store
func NewLedgerStore(db *DB) domain.LedgerStore {
	return &ledgerStore{db: db}
}

// Begin opens a new atomic unit of ledger work
func (s *ledgerStore) Begin(ctx context.Context) (domain.LedgerTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	return &ledgerTx{tx: tx}, nil
}

type ledgerTx struct {
	tx   *sql.Tx
	done bool
}

// Wallet retrieves and locks the user's wallet
func (t *ledgerTx) Wallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	query := `
		SELECT user_id, balance
		FROM wallets
		WHERE user_id = $1
		FOR UPDATE
	`

	var wallet domain.Wallet
	var balanceStr string

	err := t.tx.QueryRowContext(ctx, query, userID).Scan(&wallet.UserID, &balanceStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: wallet for user %s", domain.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}

	balance, err := parseDecimal(balanceStr, "wallet balance")
	if err != nil {
		return nil, err
	}
	wallet.Balance = balance

	return &wallet, nil
}

// Holding retrieves and locks the holding for a (user, symbol, asset type)
// triple.
func (t *ledgerTx) Holding(ctx context.Context, userID uuid.UUID, symbol string, assetType domain.AssetType) (*domain.Holding, error) {
	query := `
		SELECT ` + holdingColumns + `
		FROM holdings
		WHERE user_id = $1 AND symbol = $2 AND asset_type = $3
		FOR UPDATE
	`

	holding, err := scanHolding(t.tx.QueryRowContext(ctx, query, userID, symbol, string(assetType)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no open position in %s", domain.ErrNotFound, symbol)
		}
		return nil, fmt.Errorf("failed to lock holding: %w", err)
	}

	return holding, nil
}

// Commit applies the mutation and ends the unit of work. Either every
// populated field of the mutation lands or none does.
func (t *ledgerTx) Commit(ctx context.Context, m *domain.LedgerMutation) error {
	if m.Holding != nil {
		if err := t.upsertHolding(ctx, m.Holding); err != nil {
			return err
		}
	}

	if m.DeleteHoldingID != nil {
		if err := t.deleteHolding(ctx, *m.DeleteHoldingID); err != nil {
			return err
		}
	}

	if m.Wallet != nil {
		if err := t.updateWallet(ctx, m.Wallet); err != nil {
			return err
		}
	}

	if m.Transaction != nil {
		if err := t.insertTransaction(ctx, m.Transaction); err != nil {
			return err
		}
	}

	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger transaction: %w", err)
	}
	t.done = true

	return nil
}

// Rollback abandons the unit of work. Safe to call after Commit.
func (t *ledgerTx) Rollback() error {
	if t.done {
		return nil
	}
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to roll back ledger transaction: %w", err)
	}
	return nil
}

func (t *ledgerTx) upsertHolding(ctx context.Context, h *domain.Holding) error {
	query := `
		INSERT INTO holdings (` + holdingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id, symbol, asset_type) DO UPDATE
		SET units = EXCLUDED.units, cost_basis = EXCLUDED.cost_basis,
			avg_buy_price = EXCLUDED.avg_buy_price, last_price = EXCLUDED.last_price,
			last_price_at = EXCLUDED.last_price_at, current_value = EXCLUDED.current_value,
			unrealized_pnl = EXCLUDED.unrealized_pnl, pnl_percent = EXCLUDED.pnl_percent
	`

	_, err := t.tx.ExecContext(ctx, query,
		h.ID,
		h.UserID,
		h.Symbol,
		string(h.AssetType),
		h.Units.String(),
		h.CostBasis.String(),
		h.AvgBuyPrice.String(),
		h.LastPrice.String(),
		h.LastPriceAt,
		h.CurrentValue.String(),
		h.UnrealizedPnL.String(),
		h.PnLPercent.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert holding: %w", err)
	}

	return nil
}

func (t *ledgerTx) deleteHolding(ctx context.Context, id uuid.UUID) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM holdings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	return nil
}

func (t *ledgerTx) updateWallet(ctx context.Context, w *domain.Wallet) error {
	query := `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET balance = EXCLUDED.balance
	`

	if _, err := t.tx.ExecContext(ctx, query, w.UserID, w.Balance.String()); err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}

	return nil
}

func (t *ledgerTx) insertTransaction(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := t.tx.ExecContext(ctx, query,
		tx.ID,
		tx.UserID,
		string(tx.Kind),
		tx.Symbol,
		string(tx.AssetType),
		tx.Quantity.String(),
		tx.Price.String(),
		tx.Fees.String(),
		tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}
