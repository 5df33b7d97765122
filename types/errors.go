package types

import (
	"cosmossdk.io/errors"
)

// Module error codes. Registered the way x/orderbook/types/errors.go
// registers its codespace so callers can compare with errors.Is instead of
// string matching.
var (
	// Validation
	ErrInvalidPair         = errors.Register("clob", 1, "invalid pair")
	ErrInvalidPrice        = errors.Register("clob", 2, "invalid price")
	ErrInvalidAmount       = errors.Register("clob", 3, "invalid amount")
	ErrBelowMinOrderSize   = errors.Register("clob", 4, "amount below minimum order size")

	// Lookup
	ErrPairNotFound  = errors.Register("clob", 10, "pair not found")
	ErrOrderNotFound = errors.Register("clob", 11, "order not found")

	// Authorization
	ErrUnauthorized = errors.Register("clob", 20, "unauthorized")

	// State
	ErrPairExists    = errors.Register("clob", 30, "pair already exists")
	ErrOrderTerminal = errors.Register("clob", 31, "order is already filled or cancelled")

	// Market
	ErrSlippageExceeded     = errors.Register("clob", 40, "slippage tolerance exceeded")
	ErrInsufficientLiquidity = errors.Register("clob", 41, "insufficient liquidity")
	ErrNoRouteFound         = errors.Register("clob", 42, "no route found between tokens")
	ErrSelfTrade            = errors.Register("clob", 43, "order would cross the trader's own resting order")

	// Internal
	ErrOverflow = errors.Register("clob", 50, "numeric operation overflowed 256 bits")
)
