package types

// Pair is a trading pair with its base/quote assignment fixed at creation:
// the lexicographically smaller token is base (spec.md §3, §4.2).
type Pair struct {
	ID    PairId
	Base  TokenId
	Quote TokenId
	Stats PairStats
}

// NewPair normalizes (t0, t1) into a canonical Pair. Returns ErrInvalidPair
// if t0 == t1 (spec.md §4.2).
func NewPair(t0, t1 TokenId) (Pair, error) {
	if t0 == t1 {
		return Pair{}, ErrInvalidPair
	}
	base, quote := SortTokens(t0, t1)
	return Pair{
		ID:    DerivePairID(t0, t1),
		Base:  base,
		Quote: quote,
		Stats: PairStats{TotalBaseVolume: ZeroAmount()},
	}, nil
}

// Contains reports whether the pair involves the given token.
func (p Pair) Contains(token TokenId) bool {
	return p.Base == token || p.Quote == token
}

// OtherToken returns the token on the opposite side of the pair from
// token, or false if token is not part of the pair.
func (p Pair) OtherToken(token TokenId) (TokenId, bool) {
	switch token {
	case p.Base:
		return p.Quote, true
	case p.Quote:
		return p.Base, true
	default:
		return TokenId{}, false
	}
}

// Inverse returns the pair with base and quote swapped, keeping the same
// ID (a Pair's identity is the unordered token set, not which token is
// base) and dropping Stats, which belong to the canonical orientation.
func (p Pair) Inverse() Pair {
	return Pair{ID: p.ID, Base: p.Quote, Quote: p.Base}
}

// PairStats holds cumulative volume and the price of the last trade for a
// pair (spec.md §3). BuyOrderCount/SellOrderCount supplement spec.md §6's
// single open_order_count: their sum is that value.
type PairStats struct {
	TotalBaseVolume Amount
	LastPrice       Price
	HasLastPrice    bool
	BuyOrderCount   int
	SellOrderCount  int
}

// OpenOrderCount returns the total number of resting orders, matching
// spec.md §6's get_pair_stats contract exactly.
func (s PairStats) OpenOrderCount() int {
	return s.BuyOrderCount + s.SellOrderCount
}
