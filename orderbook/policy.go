package orderbook

import "github.com/openalpha/clobdex/types"

// Policy carries the subset of pool.Config that affects matching
// behavior inside a single book. The pool manager owns the authoritative
// config and passes a Policy snapshot into every call rather than the book
// holding a back-reference to the manager, keeping the two packages
// decoupled (orderbook never imports pool).
type Policy struct {
	MinOrderSize   types.Amount
	AllowSelfTrade bool
}
