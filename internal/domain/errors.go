package domain

import "errors"

// Sentinel errors shared across the ledger and projection services.
// Callers match them with errors.Is; services wrap them with fmt.Errorf
// and %w to add context.
var (
	// ErrInsufficientFunds is returned when a wallet balance cannot cover
	// a buy or a withdrawal.
	ErrInsufficientFunds = errors.New("insufficient wallet balance")

	// ErrInsufficientUnits is returned when a sell quantity exceeds the
	// units currently held.
	ErrInsufficientUnits = errors.New("insufficient units to sell")

	// ErrInvalidParameters is returned when a quantity, price, contribution
	// or timeframe is outside its valid range.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrPriceUnavailable is returned by the price lookup collaborator when
	// no quote can be obtained for a symbol. It is propagated unchanged;
	// the ledger never substitutes a stale or default price.
	ErrPriceUnavailable = errors.New("price unavailable")

	// ErrNotFound is returned when a referenced holding, wallet or goal
	// does not exist.
	ErrNotFound = errors.New("not found")
)
