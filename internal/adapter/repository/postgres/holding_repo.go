package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/duartefn/wealthpilot-backend/internal/domain"
)

// holdingRepository implements domain.HoldingRepository
type holdingRepository struct {
	db *DB
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(db *DB) domain.HoldingRepository {
	return &holdingRepository{db: db}
}

// Get retrieves the holding for a (user, symbol, asset type) triple
func (r *holdingRepository) Get(ctx context.Context, userID uuid.UUID, symbol string, assetType domain.AssetType) (*domain.Holding, error) {
	query := `
		SELECT ` + holdingColumns + `
		FROM holdings
		WHERE user_id = $1 AND symbol = $2 AND asset_type = $3
	`

	holding, err := scanHolding(r.db.QueryRowContext(ctx, query, userID, symbol, string(assetType)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no open position in %s", domain.ErrNotFound, symbol)
		}
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}

	return holding, nil
}

// ListByUser retrieves all open holdings for a user
func (r *holdingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Holding, error) {
	query := `
		SELECT ` + holdingColumns + `
		FROM holdings
		WHERE user_id = $1
		ORDER BY symbol, asset_type
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*domain.Holding
	for rows.Next() {
		holding, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, holding)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}

	return holdings, nil
}

// UpdateValuation persists the derived price fields of a marked-to-market
// holding. Units and cost basis are left untouched.
func (r *holdingRepository) UpdateValuation(ctx context.Context, holding *domain.Holding) error {
	query := `
		UPDATE holdings
		SET last_price = $2, last_price_at = $3, current_value = $4,
			unrealized_pnl = $5, pnl_percent = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		holding.ID,
		holding.LastPrice.String(),
		holding.LastPriceAt,
		holding.CurrentValue.String(),
		holding.UnrealizedPnL.String(),
		holding.PnLPercent.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update holding valuation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check holding update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: holding %s", domain.ErrNotFound, holding.ID)
	}

	return nil
}
