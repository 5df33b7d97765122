package pool

import (
	"math/big"
	"sort"

	"github.com/openalpha/clobdex/types"
)

// Quote wraps GetQuote's core result with an informational price-impact
// estimate, mirroring pool_manager.rs's calculate_price_impact. Unlike
// AmountOut and Route, PriceImpactBps never gates success or failure and
// is not part of the engine's invariant set.
type Quote struct {
	AmountOut      types.Amount
	Route          []types.PairId
	PriceImpactBps int64
}

// Quote is GetQuote's richer counterpart: same amount_out and route, plus
// a basis-point estimate of how far the simulated execution price sits
// from the book's current mid price. Only computed for a direct (single
// pair, no routing) quote: a multi-hop route has no single mid price to
// compare against, so PriceImpactBps is zero for those.
func (m *Manager) Quote(tIn, tOut types.TokenId, amountIn types.Amount) (Quote, error) {
	amountOut, route, err := m.GetQuote(tIn, tOut, amountIn)
	if err != nil {
		return Quote{}, err
	}
	impact := m.priceImpactBps(tIn, tOut, amountIn, amountOut)
	return Quote{AmountOut: amountOut, Route: route, PriceImpactBps: impact}, nil
}

// priceImpactBps estimates execution price vs. mid price, in basis
// points, clamped to zero whenever there's no clean mid price to compare
// against: a routed (multi-book) quote, or a book with no resting bid or
// no resting ask.
func (m *Manager) priceImpactBps(tIn, tOut types.TokenId, amountIn, amountOut types.Amount) int64 {
	book, pair, err := m.resolvePair(tIn, tOut)
	if err != nil || amountOut.IsZero() {
		return 0
	}
	bestBid, hasBid := book.BestBid()
	bestAsk, hasAsk := book.BestAsk()
	if !hasBid || !hasAsk {
		return 0
	}

	mid := new(big.Rat).Add(ratFromPrice(bestBid), ratFromPrice(bestAsk))
	mid.Quo(mid, big.NewRat(2, 1))
	if mid.Sign() == 0 {
		return 0
	}

	var exec *big.Rat
	if directionSide(*pair, tIn) == types.SideSell {
		exec = new(big.Rat).SetFrac(amountOut.BigInt(), amountIn.BigInt())
	} else {
		exec = new(big.Rat).SetFrac(amountIn.BigInt(), amountOut.BigInt())
	}

	diff := new(big.Rat).Sub(exec, mid)
	diff.Abs(diff)
	bps := new(big.Rat).Quo(diff, mid)
	bps.Mul(bps, big.NewRat(10000, 1))
	f, _ := bps.Float64()
	return int64(f)
}

func ratFromPrice(p types.Price) *big.Rat {
	return new(big.Rat).SetFrac(p.Num.BigInt(), p.Denom.BigInt())
}

// PairsForToken returns every pair involving token, sorted by PairId for
// determinism.
func (m *Manager) PairsForToken(token types.TokenId) []types.Pair {
	var out []types.Pair
	for _, pair := range m.pairs {
		if pair.Contains(token) {
			out = append(out, *pair)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Less(out[j].ID) })
	return out
}
