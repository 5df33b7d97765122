// Package orderbook implements a single trading pair's central limit order
// book: two price-ordered sides, price-time matching for limit and market
// orders, and cancellation. It has no notion of fees, routing, or multiple
// pairs (those live in the pool and router packages, which compose Books).
package orderbook

import (
	"github.com/openalpha/clobdex/types"
)

// Book is the matching engine for one trading pair. It is not safe for
// concurrent use; callers (pool.Manager) serialize access the way a
// blockchain state-transition function serializes transactions within a
// block.
type Book struct {
	pairID types.PairId
	bids   *side // desc: highest price first
	asks   *side // asc: lowest price first

	ordersByID map[types.OrderId]*types.Order
	nextSeq    uint64
}

// NewBook creates an empty book for pairID.
func NewBook(pairID types.PairId) *Book {
	return &Book{
		pairID:     pairID,
		bids:       newSide(true),
		asks:       newSide(false),
		ordersByID: make(map[types.OrderId]*types.Order),
	}
}

func (b *Book) sideFor(s types.Side) *side {
	if s == types.SideBuy {
		return b.bids
	}
	return b.asks
}

// BestBid returns the highest resting bid price, if any.
func (b *Book) BestBid() (types.Price, bool) {
	l := b.bids.best()
	if l == nil {
		return types.Price{}, false
	}
	return l.price, true
}

// BestAsk returns the lowest resting ask price, if any.
func (b *Book) BestAsk() (types.Price, bool) {
	l := b.asks.best()
	if l == nil {
		return types.Price{}, false
	}
	return l.price, true
}

// GetOrder looks up a resting order by id.
func (b *Book) GetOrder(id types.OrderId) (*types.Order, bool) {
	o, ok := b.ordersByID[id]
	return o, ok
}

// priceAcceptable builds the taker's price-acceptance predicate for limit
// matching: a buy accepts any ask at or below its limit price, a sell
// accepts any bid at or above its limit price (spec.md §4.3).
func priceAcceptable(takerSide types.Side, limit types.Price) func(types.Price) bool {
	if takerSide == types.SideBuy {
		return func(p types.Price) bool { return p.LTE(limit) }
	}
	return func(p types.Price) bool { return p.GTE(limit) }
}

// fillPlanStep is one planned match produced by a read-only simulation pass.
// Applying the plan later re-derives the maker order from MakerOrderID
// rather than carrying a pointer, so the simulate pass never needs to
// mutate anything.
type fillPlanStep struct {
	makerID     types.OrderId
	price       types.Price
	baseAmount  types.Amount
	quoteAmount types.Amount
}

// walkMakers calls visit for every active resting order on opp, in
// price-time priority, stopping as soon as visit returns false or no more
// levels satisfy acceptable.
func walkMakers(opp *side, acceptable func(types.Price) bool, visit func(o *types.Order) bool) {
	opp.walk(func(l *level) bool {
		if !acceptable(l.price) {
			return false
		}
		for _, o := range l.orders {
			if !visit(o) {
				return false
			}
		}
		return true
	})
}

// simulateLimitMatch plans fills for an incoming limit order without
// mutating the book. It stops and reports selfTrade=true the instant the
// next eligible maker shares the taker's trader and self-trade is
// disallowed: the whole order is rejected rather than matched around that
// maker (spec.md's chosen self-trade policy, reject-on-cross, differs from
// the reference engine's skip-the-maker behavior, see DESIGN.md).
func simulateLimitMatch(takerTrader types.Address, takerSide types.Side, limit types.Price, remaining types.Amount, opp *side, allowSelfTrade bool) (plan []fillPlanStep, finalRemaining types.Amount, selfTrade bool, err error) {
	finalRemaining = remaining
	acceptable := priceAcceptable(takerSide, limit)
	var stepErr error
	walkMakers(opp, acceptable, func(o *types.Order) bool {
		if finalRemaining.IsZero() {
			return false
		}
		if !allowSelfTrade && o.Trader == takerTrader {
			selfTrade = true
			return false
		}
		base := types.MinAmount(finalRemaining, o.RemainingAmount)
		if base.IsZero() {
			return false
		}
		quote, e := types.MulDivFloor(base, o.Price.Num, o.Price.Denom)
		if e != nil {
			stepErr = e
			return false
		}
		if quote.IsZero() {
			// Dust: this fill's quote value rounds to zero (spec.md §4.3's
			// dust note). Both sides still move by base: the taker's
			// remaining amount is decremented along with the maker's, so
			// the plan step itself stays conserved rather than handing the
			// taker free base.
			plan = append(plan, fillPlanStep{
				makerID: o.OrderID,
				price: o.Price, baseAmount: base, quoteAmount: types.ZeroAmount(),
			})
			finalRemaining = finalRemaining.Sub(base)
			return true
		}
		plan = append(plan, fillPlanStep{
			makerID: o.OrderID,
			price: o.Price, baseAmount: base, quoteAmount: quote,
		})
		finalRemaining = finalRemaining.Sub(base)
		return true
	})
	if stepErr != nil {
		return nil, remaining, false, stepErr
	}
	if selfTrade {
		return nil, remaining, true, nil
	}
	return plan, finalRemaining, false, nil
}

// applyPlan mutates the real book per plan and the taker's final state and
// builds the Fill records; pair-level volume is left to the caller
// (pool.Manager folds the returned fills into PairStats). It is only ever
// called after a simulate pass has already validated the whole operation,
// so every maker id in plan is guaranteed to still exist and have enough
// remaining quantity.
func (b *Book) applyPlan(taker *types.Order, plan []fillPlanStep, finalRemaining types.Amount) []types.Fill {
	fills := make([]types.Fill, 0, len(plan))
	for _, step := range plan {
		maker := b.ordersByID[step.makerID]
		maker.Fill(step.baseAmount)
		mSide := b.sideFor(maker.Side)
		lvl := mSide.get(step.price)
		if maker.Status == types.OrderStatusFilled {
			lvl.removeByID(maker.OrderID)
			delete(b.ordersByID, maker.OrderID)
		}
		lvl.recomputeQuantity()
		if lvl.isEmpty() {
			mSide.remove(step.price)
		}

		fills = append(fills, types.Fill{
			PairID: b.pairID, MakerOrderID: maker.OrderID, TakerOrderID: taker.OrderID,
			Maker: maker.Trader, Taker: taker.Trader, MakerSide: maker.Side,
			BaseAmount: step.baseAmount, QuoteAmount: step.quoteAmount, Price: step.price,
		})
	}
	taker.RemainingAmount = finalRemaining
	if finalRemaining.IsZero() {
		taker.Status = types.OrderStatusFilled
	} else if len(plan) > 0 {
		taker.Status = types.OrderStatusPartiallyFilled
	}
	return fills
}

// PlaceLimit submits a limit order, matches it immediately against the
// opposite side in price-time priority, and rests any unfilled remainder
// on the book (spec.md §4.3).
func (b *Book) PlaceLimit(trader types.Address, takerSide types.Side, price types.Price, amount types.Amount, policy Policy) (types.OrderId, []types.Fill, types.OrderStatus, error) {
	if !price.Valid() {
		return types.OrderId{}, nil, types.OrderStatusUnspecified, types.ErrInvalidPrice
	}
	if amount.IsZero() {
		return types.OrderId{}, nil, types.OrderStatusUnspecified, types.ErrInvalidAmount
	}
	if amount.LT(policy.MinOrderSize) {
		return types.OrderId{}, nil, types.OrderStatusUnspecified, types.ErrBelowMinOrderSize
	}

	opp := b.sideFor(takerSide.Opposite())
	plan, finalRemaining, selfTrade, err := simulateLimitMatch(trader, takerSide, price, amount, opp, policy.AllowSelfTrade)
	if err != nil {
		return types.OrderId{}, nil, types.OrderStatusUnspecified, err
	}
	if selfTrade {
		return types.OrderId{}, nil, types.OrderStatusUnspecified, types.ErrSelfTrade
	}

	orderID := types.DeriveOrderID(b.pairID, trader, b.nextSeq)
	order := &types.Order{
		OrderID: orderID, PairID: b.pairID, Trader: trader, Side: takerSide, Kind: types.OrderTypeLimit,
		Price: price, OriginalAmount: amount, RemainingAmount: amount, TimestampSeq: b.nextSeq, Status: types.OrderStatusOpen,
	}
	b.nextSeq++

	fills := b.applyPlan(order, plan, finalRemaining)

	if !order.RemainingAmount.IsZero() {
		own := b.sideFor(takerSide)
		lvl := own.getOrCreate(price)
		lvl.push(order)
		b.ordersByID[orderID] = order
	}
	return orderID, fills, order.Status, nil
}

// simulateMarketBuy plans fills for a market buy that spends exactly
// amountInQuote, per spec.md §4.3's asymmetric floor/ceil conversion: each
// maker's full ask costs mul_div_ceil(base, price); if the remaining quote
// budget can't cover that, the last partial fill is sized by
// mul_div_floor(remaining quote, 1/price) so the taker never overspends.
func simulateMarketBuy(amountInQuote types.Amount, opp *side) (plan []fillPlanStep, totalOut types.Amount, remainingIn types.Amount, err error) {
	remainingIn = amountInQuote
	totalOut = types.ZeroAmount()
	var stepErr error
	walkMakers(opp, func(types.Price) bool { return true }, func(o *types.Order) bool {
		if remainingIn.IsZero() {
			return false
		}
		quoteCost, e := types.MulDivCeil(o.RemainingAmount, o.Price.Num, o.Price.Denom)
		if e != nil {
			stepErr = e
			return false
		}
		var baseTaken, quoteSpent types.Amount
		if remainingIn.GTE(quoteCost) {
			baseTaken, quoteSpent = o.RemainingAmount, quoteCost
		} else {
			baseTaken, e = types.MulDivFloor(remainingIn, o.Price.Denom, o.Price.Num)
			if e != nil {
				stepErr = e
				return false
			}
			if baseTaken.IsZero() {
				return false // dust: no further progress possible at this or any worse price
			}
			quoteSpent, e = types.MulDivCeil(baseTaken, o.Price.Num, o.Price.Denom)
			if e != nil {
				stepErr = e
				return false
			}
		}
		plan = append(plan, fillPlanStep{
			makerID: o.OrderID,
			price: o.Price, baseAmount: baseTaken, quoteAmount: quoteSpent,
		})
		remainingIn = remainingIn.Sub(quoteSpent)
		totalOut = totalOut.Add(baseTaken)
		return true
	})
	if stepErr != nil {
		return nil, types.ZeroAmount(), amountInQuote, stepErr
	}
	return plan, totalOut, remainingIn, nil
}

// simulateMarketSell plans fills for a market sell that disposes of exactly
// amountInBase, symmetric to simulateMarketBuy but with the buyer/seller
// roles (and therefore the floor/ceil rounding) reversed.
func simulateMarketSell(amountInBase types.Amount, opp *side) (plan []fillPlanStep, totalOut types.Amount, remainingIn types.Amount, err error) {
	remainingIn = amountInBase
	totalOut = types.ZeroAmount()
	var stepErr error
	walkMakers(opp, func(types.Price) bool { return true }, func(o *types.Order) bool {
		if remainingIn.IsZero() {
			return false
		}
		baseTaken := types.MinAmount(remainingIn, o.RemainingAmount)
		quoteReceived, e := types.MulDivFloor(baseTaken, o.Price.Num, o.Price.Denom)
		if e != nil {
			stepErr = e
			return false
		}
		if quoteReceived.IsZero() {
			return false // dust: selling this little at this or any worse price yields nothing
		}
		plan = append(plan, fillPlanStep{
			makerID: o.OrderID,
			price: o.Price, baseAmount: baseTaken, quoteAmount: quoteReceived,
		})
		remainingIn = remainingIn.Sub(baseTaken)
		totalOut = totalOut.Add(quoteReceived)
		return true
	})
	if stepErr != nil {
		return nil, types.ZeroAmount(), amountInBase, stepErr
	}
	return plan, totalOut, remainingIn, nil
}

// PlaceMarket executes an immediate-or-nothing market order: takerSide=Buy
// spends amountIn quote for base, takerSide=Sell spends amountIn base for
// quote. The whole operation simulates first and is rejected atomically
// (no book mutation at all) if totalOut would fall below minAmountOut, per
// spec.md §7's simulate-then-commit discipline, which this engine also
// relies on for self-trade rejection in PlaceLimit.
func (b *Book) PlaceMarket(trader types.Address, takerSide types.Side, amountIn, minAmountOut types.Amount, policy Policy) (types.Amount, []types.Fill, error) {
	if amountIn.IsZero() {
		return types.ZeroAmount(), nil, types.ErrInvalidAmount
	}
	// min_order_size gates resting limit orders only (spec.md §4.4); a
	// market order's amount_in is never compared against it.

	opp := b.sideFor(takerSide.Opposite())
	if !policy.AllowSelfTrade {
		if blocked, err := marketWouldSelfTrade(trader, takerSide, amountIn, opp); err != nil {
			return types.ZeroAmount(), nil, err
		} else if blocked {
			return types.ZeroAmount(), nil, types.ErrSelfTrade
		}
	}

	var plan []fillPlanStep
	var totalOut, remainingIn types.Amount
	var err error
	if takerSide == types.SideBuy {
		plan, totalOut, remainingIn, err = simulateMarketBuy(amountIn, opp)
	} else {
		plan, totalOut, remainingIn, err = simulateMarketSell(amountIn, opp)
	}
	if err != nil {
		return types.ZeroAmount(), nil, err
	}

	if totalOut.LT(minAmountOut) {
		if !remainingIn.IsZero() {
			return types.ZeroAmount(), nil, types.ErrInsufficientLiquidity
		}
		return types.ZeroAmount(), nil, types.ErrSlippageExceeded
	}

	orderID := types.DeriveOrderID(b.pairID, trader, b.nextSeq)
	order := &types.Order{
		OrderID: orderID, PairID: b.pairID, Trader: trader, Side: takerSide, Kind: types.OrderTypeMarket,
		OriginalAmount: amountIn, RemainingAmount: amountIn, TimestampSeq: b.nextSeq, Status: types.OrderStatusOpen,
	}
	b.nextSeq++

	fills := b.applyPlan(order, plan, remainingIn)
	return totalOut, fills, nil
}

// marketWouldSelfTrade pre-scans the same priority order a market fill would
// walk, reporting whether the taker's own resting order lies within the
// quantity the order would actually consume.
func marketWouldSelfTrade(trader types.Address, takerSide types.Side, amountIn types.Amount, opp *side) (bool, error) {
	remaining := amountIn
	blocked := false
	var stepErr error
	walkMakers(opp, func(types.Price) bool { return true }, func(o *types.Order) bool {
		if remaining.IsZero() {
			return false
		}
		if o.Trader == trader {
			blocked = true
			return false
		}
		if takerSide == types.SideBuy {
			quoteCost, e := types.MulDivCeil(o.RemainingAmount, o.Price.Num, o.Price.Denom)
			if e != nil {
				stepErr = e
				return false
			}
			if remaining.GTE(quoteCost) {
				remaining = remaining.Sub(quoteCost)
			} else {
				remaining = types.ZeroAmount()
			}
		} else {
			base := types.MinAmount(remaining, o.RemainingAmount)
			remaining = remaining.Sub(base)
		}
		return true
	})
	return blocked, stepErr
}

// Cancel removes a resting order, enforcing that only its own trader may
// cancel it.
func (b *Book) Cancel(orderID types.OrderId, caller types.Address) (*types.Order, error) {
	o, ok := b.ordersByID[orderID]
	if !ok {
		return nil, types.ErrOrderNotFound
	}
	if o.Trader != caller {
		return nil, types.ErrUnauthorized
	}
	if o.Status.IsTerminal() {
		return nil, types.ErrOrderTerminal
	}
	s := b.sideFor(o.Side)
	lvl := s.get(o.Price)
	if lvl != nil {
		lvl.removeByID(orderID)
		if lvl.isEmpty() {
			s.remove(o.Price)
		} else {
			lvl.recomputeQuantity()
		}
	}
	delete(b.ordersByID, orderID)
	o.Cancel()
	return o, nil
}

// DepthLevel is one aggregated price level for a depth snapshot.
type DepthLevel struct {
	Price    types.Price
	Quantity types.Amount
}

// Depth returns up to n levels per side, best price first.
func (b *Book) Depth(n int) (bids, asks []DepthLevel) {
	for _, l := range b.bids.levels(n) {
		bids = append(bids, DepthLevel{Price: l.price, Quantity: l.quantity})
	}
	for _, l := range b.asks.levels(n) {
		asks = append(asks, DepthLevel{Price: l.price, Quantity: l.quantity})
	}
	return bids, asks
}

// SimulateMarket runs the market-matching algorithm read-only, reporting
// both the output it would produce and any input left unconsumed because
// the opposing book ran dry. pool.Manager's swap and quote paths read only
// totalOut.
func (b *Book) SimulateMarket(takerSide types.Side, amountIn types.Amount) (totalOut, remainingIn types.Amount, err error) {
	opp := b.sideFor(takerSide.Opposite())
	if takerSide == types.SideBuy {
		_, totalOut, remainingIn, err = simulateMarketBuy(amountIn, opp)
	} else {
		_, totalOut, remainingIn, err = simulateMarketSell(amountIn, opp)
	}
	return totalOut, remainingIn, err
}

// OrderCounts returns the number of resting buy and sell orders.
func (b *Book) OrderCounts() (buyCount, sellCount int) {
	return b.bids.orderCount(), b.asks.orderCount()
}

// QuoteMarket simulates a market order without mutating the book, for
// read-only price discovery (spec.md §6 get_quote).
func (b *Book) QuoteMarket(takerSide types.Side, amountIn types.Amount) (totalOut types.Amount, err error) {
	totalOut, _, err = b.SimulateMarket(takerSide, amountIn)
	return totalOut, err
}

// LiquidityAt returns the resting quantity on side at exactly price, or
// zero if no level exists there. Grounded on the reference engine's
// liquidity_at_price: the book already maintains each level's running
// quantity (level.quantity), so this is an O(log n) lookup rather than a
// re-sum of the FIFO queue.
func (b *Book) LiquidityAt(s types.Side, price types.Price) types.Amount {
	l := b.sideFor(s).get(price)
	if l == nil {
		return types.ZeroAmount()
	}
	return l.quantity
}

// BidLiquidity returns the total resting bid quantity across every price
// level.
func (b *Book) BidLiquidity() types.Amount {
	return aggregateLiquidity(b.bids)
}

// AskLiquidity returns the total resting ask quantity across every price
// level.
func (b *Book) AskLiquidity() types.Amount {
	return aggregateLiquidity(b.asks)
}

func aggregateLiquidity(s *side) types.Amount {
	total := types.ZeroAmount()
	s.walk(func(l *level) bool {
		total = total.Add(l.quantity)
		return true
	})
	return total
}
