package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet represents a user's cash balance. Buys and withdrawals debit it,
// sells and contributions credit it. The balance is never negative: any
// operation that would drive it below zero fails before anything is
// persisted.
type Wallet struct {
	UserID  uuid.UUID
	Balance decimal.Decimal
}

// Credit returns the wallet with amount added to the balance
func (w Wallet) Credit(amount decimal.Decimal) (Wallet, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return w, fmt.Errorf("%w: credit amount must be positive", ErrInvalidParameters)
	}
	w.Balance = w.Balance.Add(amount)
	return w, nil
}

// Debit returns the wallet with amount removed from the balance.
// Fails with ErrInsufficientFunds when the balance cannot cover amount.
func (w Wallet) Debit(amount decimal.Decimal) (Wallet, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return w, fmt.Errorf("%w: debit amount must be positive", ErrInvalidParameters)
	}
	if w.Balance.LessThan(amount) {
		return w, fmt.Errorf("%w: balance %s, needed %s", ErrInsufficientFunds, w.Balance, amount)
	}
	w.Balance = w.Balance.Sub(amount)
	return w, nil
}

// Validate ensures the wallet adheres to domain rules
func (w Wallet) Validate() error {
	if w.Balance.IsNegative() {
		return fmt.Errorf("%w: wallet balance cannot be negative", ErrInvalidParameters)
	}
	return nil
}
