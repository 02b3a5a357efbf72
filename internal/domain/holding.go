package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetType classifies a holding's underlying instrument
type AssetType string

const (
	AssetTypeStock      AssetType = "stock"
	AssetTypeETF        AssetType = "etf"
	AssetTypeMutualFund AssetType = "mutual_fund"
	AssetTypeBond       AssetType = "bond"
	AssetTypeCash       AssetType = "cash"
)

// ValidAssetType reports whether t is one of the known asset types
func ValidAssetType(t AssetType) bool {
	switch t {
	case AssetTypeStock, AssetTypeETF, AssetTypeMutualFund, AssetTypeBond, AssetTypeCash:
		return true
	}
	return false
}

// Holding represents an open position for a (user, symbol, asset type)
// triple. It is a plain value object: the ledger computes new snapshots
// from old ones and hands them to the store; identity and persistence are
// the adapter's concern.
//
// A holding only exists while Units > 0. Selling the last unit removes the
// entity entirely rather than leaving a zeroed row with a stale average
// buy price behind.
type Holding struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Symbol    string
	AssetType AssetType

	Units       decimal.Decimal
	CostBasis   decimal.Decimal // total paid including fees for the units held
	AvgBuyPrice decimal.Decimal // CostBasis / Units

	LastPrice   decimal.Decimal
	LastPriceAt time.Time

	CurrentValue  decimal.Decimal // Units * LastPrice
	UnrealizedPnL decimal.Decimal // CurrentValue - CostBasis
	PnLPercent    decimal.Decimal
}

// NewHolding creates the holding for a first buy.
// The average buy price of a fresh position is the trade price; fees only
// enter through the cost basis.
func NewHolding(userID uuid.UUID, symbol string, assetType AssetType, quantity, price, fees decimal.Decimal) Holding {
	h := Holding{
		ID:          uuid.New(),
		UserID:      userID,
		Symbol:      symbol,
		AssetType:   assetType,
		Units:       quantity,
		CostBasis:   quantity.Mul(price).Add(fees),
		AvgBuyPrice: price,
	}
	return h.MarkToMarket(price, time.Now())
}

// ApplyBuy returns the holding after buying quantity units at price with
// fees. The average buy price is recomputed as the weighted average of the
// old position and the new lot:
//
//	newCostBasis = costBasis + quantity*price + fees
//	newUnits     = units + quantity
//	avgBuyPrice  = newCostBasis / newUnits
func (h Holding) ApplyBuy(quantity, price, fees decimal.Decimal) Holding {
	totalCost := quantity.Mul(price).Add(fees)

	h.CostBasis = h.CostBasis.Add(totalCost)
	h.Units = h.Units.Add(quantity)
	h.AvgBuyPrice = h.CostBasis.Div(h.Units)

	return h.MarkToMarket(price, time.Now())
}

// ApplySell returns the holding after selling quantity units at price,
// along with the cost removed from the basis and a flag reporting whether
// the position closed completely.
//
// Cost removal is proportional: costPerUnit is taken from the holding
// before mutation, so the average buy price of the remainder is unchanged.
// When every unit is sold the returned holding is the zero value and
// closed is true; the caller must delete the entity instead of persisting
// a zero-unit row.
func (h Holding) ApplySell(quantity, price decimal.Decimal) (after Holding, costRemoved decimal.Decimal, closed bool, err error) {
	if quantity.GreaterThan(h.Units) {
		return h, decimal.Zero, false, fmt.Errorf("%w: have %s units of %s, tried to sell %s",
			ErrInsufficientUnits, h.Units, h.Symbol, quantity)
	}

	costPerUnit := h.CostBasis.Div(h.Units)
	costRemoved = costPerUnit.Mul(quantity)

	h.Units = h.Units.Sub(quantity)
	h.CostBasis = h.CostBasis.Sub(costRemoved)

	if h.Units.IsZero() {
		return Holding{}, costRemoved, true, nil
	}

	h.AvgBuyPrice = h.CostBasis.Div(h.Units)
	return h.MarkToMarket(price, time.Now()), costRemoved, false, nil
}

// MarkToMarket revalues the holding at price. It is a pure recomputation
// of the derived fields and has no wallet or transaction side effect;
// applying the same price twice yields the same holding.
func (h Holding) MarkToMarket(price decimal.Decimal, at time.Time) Holding {
	h.LastPrice = price
	h.LastPriceAt = at
	h.CurrentValue = h.Units.Mul(price)
	h.UnrealizedPnL = h.CurrentValue.Sub(h.CostBasis)

	if h.CostBasis.IsPositive() {
		h.PnLPercent = h.UnrealizedPnL.Div(h.CostBasis).Mul(decimal.NewFromInt(100))
	} else {
		h.PnLPercent = decimal.Zero
	}

	return h
}

// Validate ensures the holding adheres to domain rules
func (h Holding) Validate() error {
	if h.Symbol == "" {
		return fmt.Errorf("%w: holding symbol cannot be empty", ErrInvalidParameters)
	}
	if !ValidAssetType(h.AssetType) {
		return fmt.Errorf("%w: unknown asset type %q", ErrInvalidParameters, h.AssetType)
	}
	if h.Units.IsNegative() {
		return fmt.Errorf("%w: holding units cannot be negative", ErrInvalidParameters)
	}
	if h.CostBasis.IsNegative() {
		return fmt.Errorf("%w: holding cost basis cannot be negative", ErrInvalidParameters)
	}
	// Units and cost basis reach zero together; anything else is a broken
	// cost-basis reduction.
	if h.Units.IsZero() != h.CostBasis.IsZero() {
		return fmt.Errorf("%w: units and cost basis must be zero together", ErrInvalidParameters)
	}
	return nil
}
