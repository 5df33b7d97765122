package pool

import (
	"github.com/openalpha/clobdex/orderbook"
	"github.com/openalpha/clobdex/types"
)

// Config holds the global parameters PoolManager enforces across every
// pair, mirrored field-for-field from original_source/crates/dex/src/config.rs's
// DexConfig including its builder-style With* methods, generalized from
// u128/u32 to the engine's 256-bit Amount.
type Config struct {
	// FeeBps is the fee in basis points applied to a swap's output
	// (default 30 = 0.30%). Resting limit orders are never fee'd.
	FeeBps uint32
	// MaxRoutingHops bounds how many pairs a routed swap may traverse.
	MaxRoutingHops int
	// MinOrderSize is the minimum base amount accepted for a limit order.
	// A market order's amount_in is not checked against it.
	MinOrderSize types.Amount
	// AllowSelfTrade controls whether a taker may match its own resting
	// order (spec.md §4.3; this engine's chosen policy is reject-on-cross
	// when false, see DESIGN.md).
	AllowSelfTrade bool
}

// DefaultConfig returns the engine's default parameters.
func DefaultConfig() Config {
	return Config{
		FeeBps:         30,
		MaxRoutingHops: 3,
		MinOrderSize:   types.NewAmount(1),
		AllowSelfTrade: false,
	}
}

// WithFeeBps returns a copy of c with FeeBps set to bps.
func (c Config) WithFeeBps(bps uint32) Config {
	c.FeeBps = bps
	return c
}

// WithMaxRoutingHops returns a copy of c with MaxRoutingHops set to hops.
func (c Config) WithMaxRoutingHops(hops int) Config {
	c.MaxRoutingHops = hops
	return c
}

// WithMinOrderSize returns a copy of c with MinOrderSize set to size.
func (c Config) WithMinOrderSize(size types.Amount) Config {
	c.MinOrderSize = size
	return c
}

// WithAllowSelfTrade returns a copy of c with AllowSelfTrade set to allow.
func (c Config) WithAllowSelfTrade(allow bool) Config {
	c.AllowSelfTrade = allow
	return c
}

// CalculateFee returns floor(amount * FeeBps / 10_000).
func (c Config) CalculateFee(amount types.Amount) (types.Amount, error) {
	return types.MulDivFloor(amount, types.NewAmount(uint64(c.FeeBps)), types.NewAmount(10_000))
}

// AmountAfterFee returns amount minus CalculateFee(amount).
func (c Config) AmountAfterFee(amount types.Amount) (types.Amount, error) {
	fee, err := c.CalculateFee(amount)
	if err != nil {
		return types.Amount{}, err
	}
	return amount.Sub(fee), nil
}

func (c Config) policy() orderbook.Policy {
	return orderbook.Policy{MinOrderSize: c.MinOrderSize, AllowSelfTrade: c.AllowSelfTrade}
}
