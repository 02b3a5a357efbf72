package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind represents the kind of ledger transaction
type TransactionKind string

const (
	TransactionKindBuy          TransactionKind = "buy"
	TransactionKindSell         TransactionKind = "sell"
	TransactionKindContribution TransactionKind = "contribution"
	TransactionKindWithdrawal   TransactionKind = "withdrawal"
)

// WalletSymbol is the placeholder symbol recorded on cash-only
// transactions (contributions and withdrawals).
const WalletSymbol = "WALLET"

// Transaction is an immutable record of one ledger mutation. It is created
// in the same atomic unit as the holding and wallet changes it describes
// and is never modified afterwards; the transaction log is append-only.
//
// Cash transactions carry the wallet placeholder symbol with quantity 1
// and the moved amount as the price, so Amount() is uniform across kinds.
type Transaction struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Kind      TransactionKind
	Symbol    string
	AssetType AssetType
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	Fees      decimal.Decimal
	CreatedAt time.Time
}

// NewTradeTransaction records a buy or a sell of quantity units at price
func NewTradeTransaction(userID uuid.UUID, kind TransactionKind, symbol string, assetType AssetType, quantity, price, fees decimal.Decimal) Transaction {
	return Transaction{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Symbol:    symbol,
		AssetType: assetType,
		Quantity:  quantity,
		Price:     price,
		Fees:      fees,
		CreatedAt: time.Now(),
	}
}

// NewCashTransaction records a contribution or a withdrawal of amount
func NewCashTransaction(userID uuid.UUID, kind TransactionKind, amount decimal.Decimal) Transaction {
	return Transaction{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Symbol:    WalletSymbol,
		AssetType: AssetTypeCash,
		Quantity:  decimal.NewFromInt(1),
		Price:     amount,
		Fees:      decimal.Zero,
		CreatedAt: time.Now(),
	}
}

// Amount is the cash moved by the transaction, fees excluded
func (t Transaction) Amount() decimal.Decimal {
	return t.Quantity.Mul(t.Price)
}

// Validate ensures the transaction adheres to domain rules
func (t Transaction) Validate() error {
	switch t.Kind {
	case TransactionKindBuy, TransactionKindSell:
		if t.Symbol == "" || t.Symbol == WalletSymbol {
			return fmt.Errorf("%w: trade transaction requires an instrument symbol", ErrInvalidParameters)
		}
	case TransactionKindContribution, TransactionKindWithdrawal:
		if t.Symbol != WalletSymbol {
			return fmt.Errorf("%w: cash transaction must use the wallet symbol", ErrInvalidParameters)
		}
	default:
		return fmt.Errorf("%w: unknown transaction kind %q", ErrInvalidParameters, t.Kind)
	}

	if t.Quantity.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: transaction quantity must be positive", ErrInvalidParameters)
	}
	if t.Price.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: transaction price must be positive", ErrInvalidParameters)
	}
	if t.Fees.IsNegative() {
		return fmt.Errorf("%w: transaction fees cannot be negative", ErrInvalidParameters)
	}
	return nil
}
