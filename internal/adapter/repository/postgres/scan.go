package postgres

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/duartefn/wealthpilot-backend/internal/domain"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows, so the same scan
// helpers serve single-row lookups, list queries and the locking reads
// inside a ledger transaction.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func parseDecimal(s, what string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to parse %s: %w", what, err)
	}
	return v, nil
}

const holdingColumns = `id, user_id, symbol, asset_type, units, cost_basis, avg_buy_price,
	last_price, last_price_at, current_value, unrealized_pnl, pnl_percent`

// scanHolding reads one holdings row. DECIMAL columns come back as strings
// and are parsed into decimal values.
func scanHolding(s rowScanner) (*domain.Holding, error) {
	var h domain.Holding
	var units, costBasis, avgBuyPrice, lastPrice, currentValue, unrealizedPnL, pnlPercent string

	err := s.Scan(
		&h.ID,
		&h.UserID,
		&h.Symbol,
		&h.AssetType,
		&units,
		&costBasis,
		&avgBuyPrice,
		&lastPrice,
		&h.LastPriceAt,
		&currentValue,
		&unrealizedPnL,
		&pnlPercent,
	)
	if err != nil {
		return nil, err
	}

	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&h.Units, units},
		{&h.CostBasis, costBasis},
		{&h.AvgBuyPrice, avgBuyPrice},
		{&h.LastPrice, lastPrice},
		{&h.CurrentValue, currentValue},
		{&h.UnrealizedPnL, unrealizedPnL},
		{&h.PnLPercent, pnlPercent},
	} {
		v, err := decimal.NewFromString(f.src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse holding decimal column: %w", err)
		}
		*f.dst = v
	}

	return &h, nil
}

const transactionColumns = `id, user_id, kind, symbol, asset_type, quantity, price, fees, created_at`

// scanTransaction reads one transactions row
func scanTransaction(s rowScanner) (*domain.Transaction, error) {
	var t domain.Transaction
	var quantity, price, fees string

	err := s.Scan(
		&t.ID,
		&t.UserID,
		&t.Kind,
		&t.Symbol,
		&t.AssetType,
		&quantity,
		&price,
		&fees,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if t.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return nil, fmt.Errorf("failed to parse quantity: %w", err)
	}
	if t.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("failed to parse price: %w", err)
	}
	if t.Fees, err = decimal.NewFromString(fees); err != nil {
		return nil, fmt.Errorf("failed to parse fees: %w", err)
	}

	return &t, nil
}
