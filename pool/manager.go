// Package pool implements the multi-pair pool manager: it owns every
// trading pair's orderbook, enforces the global Config, derives routed
// swaps via the router package, and emits the event stream spec.md §6
// defines. Grounded on original_source/crates/dex/src/pool_manager.rs's
// PoolManager, adapted to Go's error-return idiom and this module's
// cosmossdk.io/errors-based error registry in place of an enum.
package pool

import (
	"math/big"
	"sort"

	"cosmossdk.io/log"

	"github.com/openalpha/clobdex/events"
	"github.com/openalpha/clobdex/metrics"
	"github.com/openalpha/clobdex/orderbook"
	"github.com/openalpha/clobdex/router"
	"github.com/openalpha/clobdex/types"
)

// Manager is the top-level entry point a host embeds in its state
// transition function. It is not safe for concurrent use (spec.md §5): the
// host must serialize calls the way a block-building loop serializes
// transactions.
type Manager struct {
	config Config
	logger log.Logger

	books       map[types.PairId]*orderbook.Book
	pairs       map[types.PairId]*types.Pair
	orderToPair map[types.OrderId]types.PairId
	userOrders  map[types.Address]map[types.OrderId]struct{}
	router      *router.Router
	metrics     *metrics.Collector
}

// EnableMetrics attaches the process-wide Prometheus collector to m. Calls
// made before this are simply not observed; nothing about matching, routing,
// or fee logic depends on whether metrics are enabled.
func (m *Manager) EnableMetrics() {
	m.metrics = metrics.GetCollector()
}

// New creates a Manager with DefaultConfig and a no-op logger.
func New() *Manager {
	return NewWithConfig(DefaultConfig(), log.NewNopLogger())
}

// NewWithConfig creates a Manager with explicit config and logger.
func NewWithConfig(config Config, logger log.Logger) *Manager {
	return &Manager{
		config:      config,
		logger:      logger.With("module", "pool"),
		books:       make(map[types.PairId]*orderbook.Book),
		pairs:       make(map[types.PairId]*types.Pair),
		orderToPair: make(map[types.OrderId]types.PairId),
		userOrders:  make(map[types.Address]map[types.OrderId]struct{}),
		router:      router.New(),
	}
}

// Config returns the manager's current configuration.
func (m *Manager) Config() Config { return m.config }

// SetConfig replaces the manager's configuration, effective for every call
// made afterward.
func (m *Manager) SetConfig(c Config) { m.config = c }

// CreatePair registers a new trading pair (spec.md §4.2). t0 and t1 may be
// given in either order; the canonical (base, quote) assignment is fixed by
// NewPair.
func (m *Manager) CreatePair(t0, t1 types.TokenId) (types.Pair, []events.Event, error) {
	defer m.recordStateTransition(metrics.NewTimer())
	pair, err := types.NewPair(t0, t1)
	if err != nil {
		return types.Pair{}, nil, err
	}
	if _, exists := m.books[pair.ID]; exists {
		return types.Pair{}, nil, types.ErrPairExists
	}

	m.books[pair.ID] = orderbook.NewBook(pair.ID)
	m.pairs[pair.ID] = &pair
	m.router.AddPair(pair)

	if m.metrics != nil {
		m.metrics.SetPairsActive(len(m.pairs))
	}
	m.logger.Info("pair created", "pair_id", pair.ID.String(), "base", pair.Base.String(), "quote", pair.Quote.String())

	rec := events.NewRecorder()
	rec.Emit(events.PairCreated{Base: pair.Base, Quote: pair.Quote, PairID: pair.ID})
	return pair, rec.Events(), nil
}

// PairExists reports whether a pair between t0 and t1 has been created.
func (m *Manager) PairExists(t0, t1 types.TokenId) bool {
	_, ok := m.books[types.DerivePairID(t0, t1)]
	return ok
}

func (m *Manager) resolvePair(t0, t1 types.TokenId) (*orderbook.Book, *types.Pair, error) {
	pairID := types.DerivePairID(t0, t1)
	book, ok := m.books[pairID]
	if !ok {
		return nil, nil, types.ErrPairNotFound
	}
	return book, m.pairs[pairID], nil
}

// PlaceLimitOrder resolves the (t0, t1) pair and delegates to its book,
// mirroring pool_manager.rs's place_limit_order: side is already expressed
// relative to the pair's canonical base token, not t0/t1 order.
func (m *Manager) PlaceLimitOrder(trader types.Address, t0, t1 types.TokenId, side types.Side, price types.Price, amount types.Amount) (types.OrderId, []events.Event, types.OrderStatus, error) {
	timer := metrics.NewTimer()
	defer m.recordStateTransition(timer)
	book, pair, err := m.resolvePair(t0, t1)
	if err != nil {
		m.recordRejected("place_limit_order", err)
		return types.OrderId{}, nil, types.OrderStatusUnspecified, err
	}

	orderID, fills, status, err := book.PlaceLimit(trader, side, price, amount, m.config.policy())
	if err != nil {
		m.recordRejected("place_limit_order", err)
		return types.OrderId{}, nil, types.OrderStatusUnspecified, err
	}

	m.recordOrder(orderID, pair.ID, trader, status)
	m.applyFillsToStats(pair, fills)
	if m.metrics != nil {
		m.metrics.RecordOrder(pair.ID.String(), side.String(), "limit", status.String())
		m.metrics.RecordOrderLatency(pair.ID.String(), "limit", timer.ElapsedUs())
		m.recordFillMetrics(pair.ID, fills)
	}

	rec := events.NewRecorder()
	inTok, outTok := legDirection(*pair, side)
	rec.Emit(events.LimitOrderPlaced{
		OrderID: orderID, Trader: trader, TokenIn: inTok, TokenOut: outTok,
		IsBuy: side == types.SideBuy, Amount: amount, PriceNum: price.Num, PriceDenom: price.Denom,
	})
	for _, f := range fills {
		rec.Emit(events.FillToEvent(f))
	}

	m.logger.Debug("limit order placed", "order_id", orderID.String(), "fills", len(fills), "status", status.String())
	return orderID, rec.Events(), status, nil
}

// legDirection reports the (token_in, token_out) a side represents: Buy
// spends quote for base, Sell spends base for quote.
func legDirection(pair types.Pair, side types.Side) (tokenIn, tokenOut types.TokenId) {
	if side == types.SideBuy {
		return pair.Quote, pair.Base
	}
	return pair.Base, pair.Quote
}

// directionSide is legDirection's inverse: given the token a swap spends,
// report which side of the pair that represents.
func directionSide(pair types.Pair, tokenIn types.TokenId) types.Side {
	if tokenIn == pair.Base {
		return types.SideSell
	}
	return types.SideBuy
}

// PlaceMarketOrder resolves the (t0, t1) pair and delegates to its book,
// mirroring PlaceLimitOrder but for an immediate-or-nothing market order.
func (m *Manager) PlaceMarketOrder(trader types.Address, t0, t1 types.TokenId, side types.Side, amountIn, minAmountOut types.Amount) (types.Amount, []events.Event, error) {
	timer := metrics.NewTimer()
	defer m.recordStateTransition(timer)
	book, pair, err := m.resolvePair(t0, t1)
	if err != nil {
		m.recordRejected("place_market_order", err)
		return types.ZeroAmount(), nil, err
	}

	totalOut, fills, err := book.PlaceMarket(trader, side, amountIn, minAmountOut, m.config.policy())
	if err != nil {
		m.recordRejected("place_market_order", err)
		return types.ZeroAmount(), nil, err
	}

	m.applyFillsToStats(pair, fills)
	if m.metrics != nil {
		m.metrics.RecordOrder(pair.ID.String(), side.String(), "market", "filled")
		m.metrics.RecordOrderLatency(pair.ID.String(), "market", timer.ElapsedUs())
		m.recordFillMetrics(pair.ID, fills)
	}

	rec := events.NewRecorder()
	for _, f := range fills {
		rec.Emit(events.FillToEvent(f))
	}
	m.logger.Debug("market order placed", "trader", trader.String(), "pair_id", pair.ID.String(), "total_out", totalOut.String())
	return totalOut, rec.Events(), nil
}

// recordStateTransition observes one call's total latency as a state
// transition the host's block-building loop would pay for, independent of
// whether the call ultimately succeeded or was rejected.
func (m *Manager) recordStateTransition(timer *metrics.Timer) {
	if m.metrics != nil {
		m.metrics.RecordStateTransition(timer.ElapsedUs())
	}
}

// recordRejected observes an operation that returned a non-nil error,
// keyed by the error's registered message so a dashboard can break down
// rejections by kind without string-matching arbitrary Go errors.
func (m *Manager) recordRejected(op string, err error) {
	if m.metrics == nil || err == nil {
		return
	}
	m.metrics.RecordRejectedOp(op, err.Error())
}

// recordFillMetrics folds a batch of fills into the matching-latency-and-
// volume metrics for pairID. Latency is not measured: it passes a latency
// of 0 to RecordMatching along with the batch's fill count and volumes.
func (m *Manager) recordFillMetrics(pairID types.PairId, fills []types.Fill) {
	if len(fills) == 0 {
		return
	}
	var base, quote types.Amount = types.ZeroAmount(), types.ZeroAmount()
	for _, f := range fills {
		base = base.Add(f.BaseAmount)
		quote = quote.Add(f.QuoteAmount)
	}
	m.metrics.RecordMatching(pairID.String(), 0, len(fills), amountToFloat64(base), amountToFloat64(quote))
}

// recordFillMetricsByPair groups a routed swap's fills by the pair they
// occurred on, since a single routed swap touches multiple books at once.
func (m *Manager) recordFillMetricsByPair(fills []types.Fill) {
	byPair := make(map[types.PairId][]types.Fill)
	for _, f := range fills {
		byPair[f.PairID] = append(byPair[f.PairID], f)
	}
	for pairID, pairFills := range byPair {
		m.recordFillMetrics(pairID, pairFills)
	}
}

// amountToFloat64 approximates an Amount as a float64 for metrics export
// only; nothing in the engine's matching or fee arithmetic uses this
// conversion, which can lose precision for very large amounts.
func amountToFloat64(a types.Amount) float64 {
	f, _ := new(big.Float).SetInt(a.BigInt()).Float64()
	return f
}

func (m *Manager) recordOrder(orderID types.OrderId, pairID types.PairId, trader types.Address, status types.OrderStatus) {
	if status.IsTerminal() && status != types.OrderStatusCancelled {
		// Fully filled on entry: nothing rests, no index entry needed.
		return
	}
	m.orderToPair[orderID] = pairID
	if m.userOrders[trader] == nil {
		m.userOrders[trader] = make(map[types.OrderId]struct{})
	}
	m.userOrders[trader][orderID] = struct{}{}
}

// applyFillsToStats folds a batch of fills into the pair's cumulative stats
// and drops every maker order the batch filled completely from the
// OrderId -> PairId and per-trader indexes.
// BuyOrderCount/SellOrderCount are not tracked here: PairStats computes those
// live from the book's resting orders instead, to avoid drift across
// partial fills and cancels.
func (m *Manager) applyFillsToStats(pair *types.Pair, fills []types.Fill) {
	for _, f := range fills {
		pair.Stats.TotalBaseVolume = pair.Stats.TotalBaseVolume.Add(f.BaseAmount)
		pair.Stats.LastPrice = f.Price
		pair.Stats.HasLastPrice = true
		if _, resting := m.books[pair.ID].GetOrder(f.MakerOrderID); !resting {
			delete(m.orderToPair, f.MakerOrderID)
			if set := m.userOrders[f.Maker]; set != nil {
				delete(set, f.MakerOrderID)
			}
		}
	}
}

// CancelOrder cancels a resting order wherever it lives, using the global
// OrderId -> PairId index (spec.md §4.4).
func (m *Manager) CancelOrder(orderID types.OrderId, caller types.Address) (*types.Order, []events.Event, error) {
	defer m.recordStateTransition(metrics.NewTimer())
	pairID, ok := m.orderToPair[orderID]
	if !ok {
		m.recordRejected("cancel_order", types.ErrOrderNotFound)
		return nil, nil, types.ErrOrderNotFound
	}
	book := m.books[pairID]
	order, err := book.Cancel(orderID, caller)
	if err != nil {
		m.recordRejected("cancel_order", err)
		return nil, nil, err
	}

	delete(m.orderToPair, orderID)
	if set := m.userOrders[caller]; set != nil {
		delete(set, orderID)
	}
	if m.metrics != nil {
		m.metrics.RecordCancel(pairID.String())
	}

	rec := events.NewRecorder()
	rec.Emit(events.OrderCancelled{OrderID: orderID, Trader: caller})
	m.logger.Debug("order cancelled", "order_id", orderID.String())
	return order, rec.Events(), nil
}

// GetOrder looks up a resting order anywhere in the pool.
func (m *Manager) GetOrder(orderID types.OrderId) (*types.Order, error) {
	pairID, ok := m.orderToPair[orderID]
	if !ok {
		return nil, types.ErrOrderNotFound
	}
	book := m.books[pairID]
	o, ok := book.GetOrder(orderID)
	if !ok {
		return nil, types.ErrOrderNotFound
	}
	return o, nil
}

// UserOrders returns every resting order id belonging to trader, sorted for
// determinism.
func (m *Manager) UserOrders(trader types.Address) []types.OrderId {
	set := m.userOrders[trader]
	out := make([]types.OrderId, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return lessOrderId(out[i], out[j]) })
	return out
}

func lessOrderId(a, b types.OrderId) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// Depth returns up to n resting levels per side for the (t0, t1) pair.
func (m *Manager) Depth(t0, t1 types.TokenId, n int) ([]orderbook.DepthLevel, []orderbook.DepthLevel, error) {
	book, pair, err := m.resolvePair(t0, t1)
	if err != nil {
		return nil, nil, err
	}
	bids, asks := book.Depth(n)
	if m.metrics != nil {
		m.recordDepthMetrics(pair.ID, book, bids, asks)
	}
	return bids, asks, nil
}

// recordDepthMetrics observes the book's current touch and level counts.
// spreadBps is left at zero whenever either side of the book is empty,
// matching priceImpactBps's own no-mid-price clamp.
func (m *Manager) recordDepthMetrics(pairID types.PairId, book *orderbook.Book, bids, asks []orderbook.DepthLevel) {
	bestBid, hasBid := book.BestBid()
	bestAsk, hasAsk := book.BestAsk()
	var bestBidF, bestAskF, spreadBps float64
	if hasBid {
		bestBidF = priceToFloat64(bestBid)
	}
	if hasAsk {
		bestAskF = priceToFloat64(bestAsk)
	}
	if hasBid && hasAsk {
		mid := new(big.Rat).Add(ratFromPrice(bestBid), ratFromPrice(bestAsk))
		mid.Quo(mid, big.NewRat(2, 1))
		if mid.Sign() != 0 {
			spread := new(big.Rat).Sub(ratFromPrice(bestAsk), ratFromPrice(bestBid))
			spread.Quo(spread, mid)
			spread.Mul(spread, big.NewRat(10000, 1))
			spreadBps, _ = spread.Float64()
		}
	}
	m.metrics.RecordDepth(pairID.String(), len(bids), len(asks), bestBidF, bestAskF, spreadBps)
}

func priceToFloat64(p types.Price) float64 {
	f, _ := ratFromPrice(p).Float64()
	return f
}

// PairStats returns the (t0, t1) pair's cumulative stats, with
// BuyOrderCount/SellOrderCount computed live from the book's resting orders.
func (m *Manager) PairStats(t0, t1 types.TokenId) (types.PairStats, error) {
	book, pair, err := m.resolvePair(t0, t1)
	if err != nil {
		return types.PairStats{}, err
	}
	stats := pair.Stats
	stats.BuyOrderCount, stats.SellOrderCount = book.OrderCounts()
	return stats, nil
}

// ExecuteSwap resolves a swap from tIn to tOut for amountIn, trying the
// direct pair first and falling back to the router, per spec.md §4.4. The
// fee is applied once, on the route's final output, regardless of hop
// count (unlike original_source/crates/dex/src/router.rs's evaluate_route,
// which accumulates a fee per hop); this engine's config.fee_bps is defined
// as "applied on output of a swap" (singular), so a three-hop swap pays the
// same 30bps as a direct one (see DESIGN.md).
//
// The whole operation simulates read-only first; nothing is mutated, no fee
// is withheld, and no event is emitted unless the simulated net output
// clears minAmountOut (spec.md §7's simulate-then-commit discipline).
func (m *Manager) ExecuteSwap(trader types.Address, tIn, tOut types.TokenId, amountIn, minAmountOut types.Amount) (types.Amount, []types.PairId, []events.Event, error) {
	defer m.recordStateTransition(metrics.NewTimer())
	if amountIn.IsZero() {
		return types.ZeroAmount(), nil, nil, types.ErrInvalidAmount
	}

	if book, pair, err := m.resolvePair(tIn, tOut); err == nil {
		return m.executeDirectSwap(trader, book, pair, tIn, amountIn, minAmountOut)
	}
	return m.executeRoutedSwap(trader, tIn, tOut, amountIn, minAmountOut)
}

func (m *Manager) executeDirectSwap(trader types.Address, book *orderbook.Book, pair *types.Pair, tIn types.TokenId, amountIn, minAmountOut types.Amount) (types.Amount, []types.PairId, []events.Event, error) {
	side := directionSide(*pair, tIn)
	simOut, _, err := book.SimulateMarket(side, amountIn)
	if err != nil {
		m.recordSwapRejected("direct", tIn, err)
		return types.ZeroAmount(), nil, nil, err
	}
	netOut, err := m.config.AmountAfterFee(simOut)
	if err != nil {
		m.recordSwapRejected("direct", tIn, err)
		return types.ZeroAmount(), nil, nil, err
	}
	if netOut.LT(minAmountOut) {
		m.recordSwapRejected("direct", tIn, types.ErrSlippageExceeded)
		return types.ZeroAmount(), nil, nil, types.ErrSlippageExceeded
	}

	actualOut, fills, err := book.PlaceMarket(trader, side, amountIn, types.ZeroAmount(), m.config.policy())
	if err != nil {
		m.recordSwapRejected("direct", tIn, err)
		return types.ZeroAmount(), nil, nil, err
	}
	actualNetOut, err := m.config.AmountAfterFee(actualOut)
	if err != nil {
		m.recordSwapRejected("direct", tIn, err)
		return types.ZeroAmount(), nil, nil, err
	}
	m.applyFillsToStats(pair, fills)
	if m.metrics != nil {
		m.metrics.RecordSwap("direct", "ok", tIn.String(), amountToFloat64(amountIn))
		m.recordFillMetrics(pair.ID, fills)
		if fee, err := m.config.CalculateFee(actualOut); err == nil {
			tOutForFee, _ := pair.OtherToken(tIn)
			m.metrics.RecordFee(tOutForFee.String(), amountToFloat64(fee))
		}
	}

	tOut, _ := pair.OtherToken(tIn)
	rec := events.NewRecorder()
	rec.Emit(events.Swap{Trader: trader, TokenIn: tIn, TokenOut: tOut, AmountIn: amountIn, AmountOut: actualNetOut, Pairs: []types.PairId{pair.ID}})
	for _, f := range fills {
		rec.Emit(events.FillToEvent(f))
	}
	m.logger.Debug("swap executed", "trader", trader.String(), "pair_id", pair.ID.String(), "amount_out", actualNetOut.String())
	return actualNetOut, []types.PairId{pair.ID}, rec.Events(), nil
}

// recordSwapRejected observes a swap attempt (of the given kind: direct or
// routed) that failed, both as a generic rejected-op and as a failed swap.
func (m *Manager) recordSwapRejected(kind string, tokenIn types.TokenId, err error) {
	if m.metrics == nil {
		return
	}
	m.metrics.RecordSwap(kind, "rejected", tokenIn.String(), 0)
	m.recordRejected("execute_swap", err)
}

func (m *Manager) executeRoutedSwap(trader types.Address, tIn, tOut types.TokenId, amountIn, minAmountOut types.Amount) (types.Amount, []types.PairId, []events.Event, error) {
	routeTimer := metrics.NewTimer()
	routes := m.router.FindRoutes(tIn, tOut, m.config.MaxRoutingHops)
	if len(routes) == 0 {
		if m.metrics != nil {
			m.metrics.RecordNoRoute()
		}
		m.recordSwapRejected("routed", tIn, types.ErrNoRouteFound)
		return types.ZeroAmount(), nil, nil, types.ErrNoRouteFound
	}

	best, bestOut, err := m.bestRoute(routes, amountIn)
	if err != nil {
		m.recordSwapRejected("routed", tIn, err)
		return types.ZeroAmount(), nil, nil, err
	}
	if m.metrics != nil {
		m.metrics.RecordRoute(best.Len(), routeTimer.ElapsedUs())
	}

	netOut, err := m.config.AmountAfterFee(bestOut)
	if err != nil {
		m.recordSwapRejected("routed", tIn, err)
		return types.ZeroAmount(), nil, nil, err
	}
	if netOut.LT(minAmountOut) {
		m.recordSwapRejected("routed", tIn, types.ErrSlippageExceeded)
		return types.ZeroAmount(), nil, nil, types.ErrSlippageExceeded
	}

	actualOut, allFills, err := m.commitRoute(trader, best, amountIn)
	if err != nil {
		m.recordSwapRejected("routed", tIn, err)
		return types.ZeroAmount(), nil, nil, err
	}
	actualNetOut, err := m.config.AmountAfterFee(actualOut)
	if err != nil {
		m.recordSwapRejected("routed", tIn, err)
		return types.ZeroAmount(), nil, nil, err
	}

	pairIDs := best.PairIDs()
	if m.metrics != nil {
		m.metrics.RecordSwap("routed", "ok", tIn.String(), amountToFloat64(amountIn))
		m.recordFillMetricsByPair(allFills)
		if fee, err := m.config.CalculateFee(actualOut); err == nil {
			m.metrics.RecordFee(tOut.String(), amountToFloat64(fee))
		}
	}

	rec := events.NewRecorder()
	rec.Emit(events.Swap{Trader: trader, TokenIn: tIn, TokenOut: tOut, AmountIn: amountIn, AmountOut: actualNetOut, Pairs: pairIDs})
	for _, f := range allFills {
		rec.Emit(events.FillToEvent(f))
	}
	m.logger.Debug("routed swap executed", "trader", trader.String(), "hops", len(pairIDs), "amount_out", actualNetOut.String())
	return actualNetOut, pairIDs, rec.Events(), nil
}

// bestRoute picks the route with the greatest simulated output for
// amountIn, ties broken by Route.LessTieBreak (spec.md §4.5). A route whose
// simulation errors is skipped rather than failing the whole swap, since
// another candidate route may still be viable.
func (m *Manager) bestRoute(routes []router.Route, amountIn types.Amount) (router.Route, types.Amount, error) {
	var best router.Route
	var bestOut types.Amount
	var haveBest bool

	for _, route := range routes {
		out, err := m.simulateRoute(route, amountIn)
		if err != nil {
			continue
		}
		if !haveBest || out.GT(bestOut) || (out.Equal(bestOut) && route.LessTieBreak(best)) {
			best, bestOut, haveBest = route, out, true
		}
	}
	if !haveBest {
		return router.Route{}, types.ZeroAmount(), types.ErrNoRouteFound
	}
	return best, bestOut, nil
}

// simulateRoute threads amountIn through route hop-by-hop using each
// book's read-only SimulateMarket, exactly as execute_swap's real walk
// would (spec.md §4.5).
func (m *Manager) simulateRoute(route router.Route, amountIn types.Amount) (totalOut types.Amount, err error) {
	amount := amountIn
	for _, hop := range route.Hops {
		book, ok := m.books[hop.Pair.ID]
		if !ok {
			return types.ZeroAmount(), types.ErrPairNotFound
		}
		side := directionSide(hop.Pair, hop.TokenIn)
		out, _, err := book.SimulateMarket(side, amount)
		if err != nil {
			return types.ZeroAmount(), err
		}
		amount = out
		if amount.IsZero() {
			break
		}
	}
	return amount, nil
}

// commitRoute actually executes route hop-by-hop, threading each hop's real
// output into the next hop's input. Called only after bestRoute/simulateRoute
// has already validated the swap clears minAmountOut, so every hop here is
// expected to reproduce its simulated result exactly (spec.md §5: no
// interleaved mutation is possible between simulate and commit). A hop
// whose input has been reduced to dust by the previous hop's rounding is
// skipped rather than passed to PlaceMarket, which rejects a zero amount_in.
func (m *Manager) commitRoute(trader types.Address, route router.Route, amountIn types.Amount) (types.Amount, []types.Fill, error) {
	amount := amountIn
	var allFills []types.Fill
	for _, hop := range route.Hops {
		if amount.IsZero() {
			break
		}
		book := m.books[hop.Pair.ID]
		side := directionSide(hop.Pair, hop.TokenIn)
		out, fills, err := book.PlaceMarket(trader, side, amount, types.ZeroAmount(), m.config.policy())
		if err != nil {
			return types.ZeroAmount(), nil, err
		}
		m.applyFillsToStats(m.pairs[hop.Pair.ID], fills)
		allFills = append(allFills, fills...)
		amount = out
	}
	return amount, allFills, nil
}

// GetQuote is the read-only counterpart of ExecuteSwap: it walks the same
// direct-pair-or-router logic and must produce the identical amount_out
// ExecuteSwap would compute for the same state (spec.md §4.4), without
// mutating anything or applying minAmountOut.
func (m *Manager) GetQuote(tIn, tOut types.TokenId, amountIn types.Amount) (types.Amount, []types.PairId, error) {
	if amountIn.IsZero() {
		return types.ZeroAmount(), nil, types.ErrInvalidAmount
	}

	if book, pair, err := m.resolvePair(tIn, tOut); err == nil {
		side := directionSide(*pair, tIn)
		simOut, _, err := book.SimulateMarket(side, amountIn)
		if err != nil {
			return types.ZeroAmount(), nil, err
		}
		netOut, err := m.config.AmountAfterFee(simOut)
		if err != nil {
			return types.ZeroAmount(), nil, err
		}
		return netOut, []types.PairId{pair.ID}, nil
	}

	routes := m.router.FindRoutes(tIn, tOut, m.config.MaxRoutingHops)
	if len(routes) == 0 {
		return types.ZeroAmount(), nil, types.ErrNoRouteFound
	}
	best, bestOut, err := m.bestRoute(routes, amountIn)
	if err != nil {
		return types.ZeroAmount(), nil, err
	}
	netOut, err := m.config.AmountAfterFee(bestOut)
	if err != nil {
		return types.ZeroAmount(), nil, err
	}
	return netOut, best.PairIDs(), nil
}
