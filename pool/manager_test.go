package pool

import (
	"testing"

	"cosmossdk.io/log"

	"github.com/openalpha/clobdex/types"
)

func token(b byte) types.TokenId {
	var t types.TokenId
	t[0] = b
	return t
}

func trader(b byte) types.Address {
	var a types.Address
	a[0] = b
	return a
}

func price(num, denom uint64) types.Price {
	p, err := types.NewPrice(types.NewAmount(num), types.NewAmount(denom))
	if err != nil {
		panic(err)
	}
	return p
}

func newManagerWithFee(bps uint32) *Manager {
	return NewWithConfig(DefaultConfig().WithFeeBps(bps), log.NewNopLogger())
}

// sellSide returns the side a trader must submit to sell tokenIn for its
// pair partner, regardless of which of the two tokens turned out to be the
// pair's canonical base.
func sellSide(t0, t1, tokenIn types.TokenId) types.Side {
	pair, err := types.NewPair(t0, t1)
	if err != nil {
		panic(err)
	}
	if tokenIn == pair.Base {
		return types.SideSell
	}
	return types.SideBuy
}

func TestCreatePair_SymmetricUnderTokenOrder(t *testing.T) {
	m := New()
	t0, t1 := token(1), token(2)
	if _, _, err := m.CreatePair(t0, t1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.PairExists(t0, t1) {
		t.Fatalf("pair should exist as (t0,t1)")
	}
	if !m.PairExists(t1, t0) {
		t.Fatalf("pair should exist as (t1,t0) too (spec.md §8 invariant 3)")
	}
	if _, _, err := m.CreatePair(t1, t0); err != types.ErrPairExists {
		t.Fatalf("expected ErrPairExists on reversed re-creation, got %v", err)
	}
}

func TestCreatePair_SameTokenRejected(t *testing.T) {
	m := New()
	if _, _, err := m.CreatePair(token(1), token(1)); err != types.ErrInvalidPair {
		t.Fatalf("expected ErrInvalidPair, got %v", err)
	}
}

func TestPlaceLimitOrder_RestsThenCancel(t *testing.T) {
	m := New()
	t0, t1 := token(1), token(2)
	if _, _, err := m.CreatePair(t0, t1); err != nil {
		t.Fatalf("setup: %v", err)
	}
	trader1 := trader(1)
	orderID, evs, status, err := m.PlaceLimitOrder(trader1, t0, t1, types.SideBuy, price(2, 1), types.NewAmount(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != types.OrderStatusOpen {
		t.Fatalf("expected Open, got %v", status)
	}
	if len(evs) != 1 {
		t.Fatalf("expected a single LimitOrderPlaced event, got %d", len(evs))
	}

	ids := m.UserOrders(trader1)
	if len(ids) != 1 || ids[0] != orderID {
		t.Fatalf("expected UserOrders to list the resting order, got %v", ids)
	}

	order, cancelEvs, err := m.CancelOrder(orderID, trader1)
	if err != nil {
		t.Fatalf("unexpected cancel error: %v", err)
	}
	if order.Status != types.OrderStatusCancelled {
		t.Fatalf("expected Cancelled, got %v", order.Status)
	}
	if len(cancelEvs) != 1 {
		t.Fatalf("expected a single OrderCancelled event, got %d", len(cancelEvs))
	}
	if ids := m.UserOrders(trader1); len(ids) != 0 {
		t.Fatalf("cancelled order should no longer be indexed, got %v", ids)
	}
}

// S1: empty-book limit order rests.
func TestScenario_S1_EmptyBookLimitRests(t *testing.T) {
	m := New()
	t0, t1 := token(1), token(2)
	if _, _, err := m.CreatePair(t0, t1); err != nil {
		t.Fatalf("setup: %v", err)
	}
	_, _, status, err := m.PlaceLimitOrder(trader(1), t0, t1, types.SideBuy, price(2, 1), types.NewAmount(500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != types.OrderStatusOpen {
		t.Fatalf("expected Open, got %v", status)
	}
	stats, err := m.PairStats(t0, t1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.BuyOrderCount != 1 || stats.SellOrderCount != 0 {
		t.Fatalf("expected 1 live buy order, got %+v", stats)
	}
}

// S3: a resting buy can only absorb part of an incoming swap, so it must
// revert rather than partially execute. Reproduces spec.md §8's S3 numbers
// (500 in against 400 resting, 800 < 1,000): a swap's net output falling
// below min_amount_out always fails SlippageExceeded, whether the shortfall
// came from price or from the book running out of opposing liquidity
// (testable property 8; see DESIGN.md). ExecuteSwap never returns
// InsufficientLiquidity; a swap with no viable route fails NoRouteFound.
func TestScenario_S3_MarketRevertsOnPartialFill(t *testing.T) {
	m := newManagerWithFee(0)
	base, quote := token(1), token(2)
	if _, _, err := m.CreatePair(base, quote); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, _, _, err := m.PlaceLimitOrder(trader(1), base, quote, types.SideBuy, price(2, 1), types.NewAmount(400)); err != nil {
		t.Fatalf("resting buy: %v", err)
	}

	// A seller spending 500 base can only walk the 400 resting, producing
	// 800 quote, below the requested minimum of 1000.
	_, _, _, err := m.ExecuteSwap(trader(2), base, quote, types.NewAmount(500), types.NewAmount(1000))
	if err != types.ErrSlippageExceeded {
		t.Fatalf("expected ErrSlippageExceeded, got %v", err)
	}

	stats, err := m.PairStats(base, quote)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.BuyOrderCount != 1 {
		t.Fatalf("reverted swap must leave the resting buy untouched, got %+v", stats)
	}
}

// S4: self-trade disallowed by default.
func TestScenario_S4_SelfTradeDisallowed(t *testing.T) {
	m := New()
	t0, t1 := token(1), token(2)
	if _, _, err := m.CreatePair(t0, t1); err != nil {
		t.Fatalf("setup: %v", err)
	}
	me := trader(1)
	if _, _, _, err := m.PlaceLimitOrder(me, t0, t1, types.SideSell, price(1, 1), types.NewAmount(100)); err != nil {
		t.Fatalf("resting sell: %v", err)
	}
	_, _, _, err := m.PlaceLimitOrder(me, t0, t1, types.SideBuy, price(1, 1), types.NewAmount(100))
	if err != types.ErrSelfTrade {
		t.Fatalf("expected ErrSelfTrade, got %v", err)
	}
}

// S5: multi-hop routing picks up an indirect path when no direct pair
// exists. Pairs (A,B) and (B,C) exist, (A,C) does not; a maker rests an
// order selling B for A on (A,B) and C for B on (B,C); the swap threads
// A -> B -> C through both books.
func TestScenario_S5_MultiHopRouting(t *testing.T) {
	m := newManagerWithFee(30)
	a, b, c := token(1), token(2), token(3)

	if _, _, err := m.CreatePair(a, b); err != nil {
		t.Fatalf("create (A,B): %v", err)
	}
	if _, _, err := m.CreatePair(b, c); err != nil {
		t.Fatalf("create (B,C): %v", err)
	}

	maker := trader(9)
	if _, _, _, err := m.PlaceLimitOrder(maker, a, b, sellSide(a, b, b), price(1, 1), types.NewAmount(100)); err != nil {
		t.Fatalf("resting (A,B) order: %v", err)
	}
	if _, _, _, err := m.PlaceLimitOrder(maker, b, c, sellSide(b, c, c), price(1, 1), types.NewAmount(100)); err != nil {
		t.Fatalf("resting (B,C) order: %v", err)
	}

	amountOut, route, _, err := m.ExecuteSwap(trader(2), a, c, types.NewAmount(50), types.NewAmount(49))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(route) != 2 {
		t.Fatalf("expected a 2-hop route, got %v", route)
	}
	// fee_bps=30 on 50 = floor(50*30/10000) = 0, so net_out == 50.
	if amountOut.String() != "50" {
		t.Fatalf("expected amount_out=50, got %s", amountOut)
	}
}

func TestGetQuote_MatchesExecuteSwap(t *testing.T) {
	m := newManagerWithFee(30)
	t0, t1 := token(1), token(2)
	if _, _, err := m.CreatePair(t0, t1); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, _, _, err := m.PlaceLimitOrder(trader(1), t0, t1, sellSide(t0, t1, t0), price(2, 1), types.NewAmount(1000)); err != nil {
		t.Fatalf("resting order: %v", err)
	}

	quoted, _, err := m.GetQuote(t1, t0, types.NewAmount(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	executed, _, _, err := m.ExecuteSwap(trader(2), t1, t0, types.NewAmount(100), types.NewAmount(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !quoted.Equal(executed) {
		t.Fatalf("GetQuote %s diverged from ExecuteSwap %s", quoted, executed)
	}
}

func TestExecuteSwap_NoRouteFound(t *testing.T) {
	m := New()
	if _, _, _, err := m.ExecuteSwap(trader(1), token(1), token(2), types.NewAmount(10), types.NewAmount(0)); err != types.ErrNoRouteFound {
		t.Fatalf("expected ErrNoRouteFound, got %v", err)
	}
}

func TestQuote_PriceImpactZeroWithOneLevel(t *testing.T) {
	m := newManagerWithFee(0)
	t0, t1 := token(1), token(2)
	if _, _, err := m.CreatePair(t0, t1); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, _, _, err := m.PlaceLimitOrder(trader(1), t0, t1, sellSide(t0, t1, t0), price(2, 1), types.NewAmount(1000)); err != nil {
		t.Fatalf("resting order: %v", err)
	}
	// Only one ask level rests; a clean mid price needs both a bid and an
	// ask, so PriceImpactBps must clamp to zero rather than divide against
	// a one-sided book.
	q, err := m.Quote(t1, t0, types.NewAmount(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.PriceImpactBps != 0 {
		t.Fatalf("expected 0 price impact with a one-sided book, got %d", q.PriceImpactBps)
	}
}

func TestQuote_RoutedHasZeroPriceImpact(t *testing.T) {
	m := newManagerWithFee(30)
	a, b, c := token(1), token(2), token(3)
	if _, _, err := m.CreatePair(a, b); err != nil {
		t.Fatalf("create (A,B): %v", err)
	}
	if _, _, err := m.CreatePair(b, c); err != nil {
		t.Fatalf("create (B,C): %v", err)
	}
	maker := trader(9)
	if _, _, _, err := m.PlaceLimitOrder(maker, a, b, sellSide(a, b, b), price(1, 1), types.NewAmount(100)); err != nil {
		t.Fatalf("resting (A,B) order: %v", err)
	}
	if _, _, _, err := m.PlaceLimitOrder(maker, b, c, sellSide(b, c, c), price(1, 1), types.NewAmount(100)); err != nil {
		t.Fatalf("resting (B,C) order: %v", err)
	}
	q, err := m.Quote(a, c, types.NewAmount(50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Route) != 2 {
		t.Fatalf("expected a 2-hop route, got %v", q.Route)
	}
	if q.PriceImpactBps != 0 {
		t.Fatalf("routed quotes have no single mid price, expected 0, got %d", q.PriceImpactBps)
	}
}

func TestPairsForToken(t *testing.T) {
	m := New()
	a, b, c := token(1), token(2), token(3)
	if _, _, err := m.CreatePair(a, b); err != nil {
		t.Fatalf("create (A,B): %v", err)
	}
	if _, _, err := m.CreatePair(b, c); err != nil {
		t.Fatalf("create (B,C): %v", err)
	}
	pairs := m.PairsForToken(b)
	if len(pairs) != 2 {
		t.Fatalf("expected token B to be in 2 pairs, got %d", len(pairs))
	}
	if len(m.PairsForToken(a)) != 1 {
		t.Fatalf("expected token A to be in 1 pair")
	}
}

func TestPlaceMarketOrder_FillsAgainstRestingLimit(t *testing.T) {
	m := newManagerWithFee(0)
	t0, t1 := token(1), token(2)
	if _, _, err := m.CreatePair(t0, t1); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, _, _, err := m.PlaceLimitOrder(trader(1), t0, t1, types.SideSell, price(1, 1), types.NewAmount(100)); err != nil {
		t.Fatalf("resting sell: %v", err)
	}
	totalOut, evs, err := m.PlaceMarketOrder(trader(2), t0, t1, types.SideBuy, types.NewAmount(50), types.NewAmount(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totalOut.String() != "50" {
		t.Fatalf("expected 50 base out, got %s", totalOut)
	}
	if len(evs) != 1 {
		t.Fatalf("expected a single fill event, got %d", len(evs))
	}
}
