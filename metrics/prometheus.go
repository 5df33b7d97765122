package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Orderbook engine metrics collector.
// Exposed purely for observation: nothing here feeds back into matching,
// routing, or fee logic, so collecting it never affects determinism.

var (
	collector     *Collector
	collectorOnce sync.Once
)

// Collector holds all engine metrics.
type Collector struct {
	// Order metrics
	OrdersTotal   *prometheus.CounterVec
	OrdersActive  *prometheus.GaugeVec
	OrderLatency  *prometheus.HistogramVec
	CancelsTotal  *prometheus.CounterVec

	// Matching metrics
	MatchingLatency *prometheus.HistogramVec
	FillsTotal      *prometheus.CounterVec
	FillBaseVolume  *prometheus.CounterVec
	FillQuoteVolume *prometheus.CounterVec

	// Orderbook state metrics
	OrderbookDepth *prometheus.GaugeVec
	SpreadBps      *prometheus.GaugeVec
	BestBid        *prometheus.GaugeVec
	BestAsk        *prometheus.GaugeVec

	// Swap / routing metrics
	SwapsTotal       *prometheus.CounterVec
	SwapVolume       *prometheus.CounterVec
	SwapHops         prometheus.Histogram
	RouteFindLatency prometheus.Histogram
	FeeCollected     *prometheus.CounterVec
	NoRouteTotal     prometheus.Counter

	// Pool metrics
	PairsActive prometheus.Gauge

	// State-transition metrics: the engine runs once per block inside the
	// chain's state-transition function, so "request latency" here means
	// the time spent inside that call, not a network round trip.
	StateTransitionLatency prometheus.Histogram
	RejectedOpsTotal       *prometheus.CounterVec
}

// GetCollector returns the singleton metrics collector.
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = newCollector()
	})
	return collector
}

func newCollector() *Collector {
	c := &Collector{}

	c.OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clobdex",
			Subsystem: "orders",
			Name:      "total",
			Help:      "Total number of orders submitted",
		},
		[]string{"pair_id", "side", "type", "status"},
	)

	c.OrdersActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "clobdex",
			Subsystem: "orders",
			Name:      "active",
			Help:      "Number of resting orders",
		},
		[]string{"pair_id", "side"},
	)

	c.OrderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clobdex",
			Subsystem: "orders",
			Name:      "latency_us",
			Help:      "Order placement latency in microseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"pair_id", "type"},
	)

	c.CancelsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clobdex",
			Subsystem: "orders",
			Name:      "cancels_total",
			Help:      "Total number of order cancellations",
		},
		[]string{"pair_id"},
	)

	c.MatchingLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clobdex",
			Subsystem: "matching",
			Name:      "latency_us",
			Help:      "Matching pass latency in microseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"pair_id"},
	)

	c.FillsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clobdex",
			Subsystem: "matching",
			Name:      "fills_total",
			Help:      "Total number of fills produced",
		},
		[]string{"pair_id"},
	)

	c.FillBaseVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clobdex",
			Subsystem: "matching",
			Name:      "fill_base_volume",
			Help:      "Total base asset volume filled",
		},
		[]string{"pair_id"},
	)

	c.FillQuoteVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clobdex",
			Subsystem: "matching",
			Name:      "fill_quote_volume",
			Help:      "Total quote asset volume filled",
		},
		[]string{"pair_id"},
	)

	c.OrderbookDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "clobdex",
			Subsystem: "orderbook",
			Name:      "depth",
			Help:      "Orderbook depth (number of resting price levels)",
		},
		[]string{"pair_id", "side"},
	)

	c.SpreadBps = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "clobdex",
			Subsystem: "orderbook",
			Name:      "spread_bps",
			Help:      "Bid-ask spread in basis points",
		},
		[]string{"pair_id"},
	)

	c.BestBid = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "clobdex",
			Subsystem: "orderbook",
			Name:      "best_bid",
			Help:      "Current best bid price (quote per base, scaled)",
		},
		[]string{"pair_id"},
	)

	c.BestAsk = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "clobdex",
			Subsystem: "orderbook",
			Name:      "best_ask",
			Help:      "Current best ask price (quote per base, scaled)",
		},
		[]string{"pair_id"},
	)

	c.SwapsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clobdex",
			Subsystem: "swaps",
			Name:      "total",
			Help:      "Total number of executed swaps",
		},
		[]string{"kind", "status"}, // kind: direct|routed
	)

	c.SwapVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clobdex",
			Subsystem: "swaps",
			Name:      "volume_in",
			Help:      "Total swap input volume, keyed by input token",
		},
		[]string{"token_in"},
	)

	c.SwapHops = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clobdex",
			Subsystem: "swaps",
			Name:      "hops",
			Help:      "Number of pairs crossed by a routed swap",
			Buckets:   []float64{1, 2, 3, 4, 5},
		},
	)

	c.RouteFindLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clobdex",
			Subsystem: "swaps",
			Name:      "route_find_latency_us",
			Help:      "Time spent enumerating candidate routes, in microseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250},
		},
	)

	c.FeeCollected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clobdex",
			Subsystem: "swaps",
			Name:      "fee_collected",
			Help:      "Total fee collected, keyed by output token",
		},
		[]string{"token_out"},
	)

	c.NoRouteTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clobdex",
			Subsystem: "swaps",
			Name:      "no_route_total",
			Help:      "Total swap attempts that found no route",
		},
	)

	c.PairsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "clobdex",
			Subsystem: "pool",
			Name:      "pairs_active",
			Help:      "Number of pairs currently registered",
		},
	)

	c.StateTransitionLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clobdex",
			Subsystem: "engine",
			Name:      "state_transition_latency_us",
			Help:      "Latency of one engine call within the block state transition, in microseconds",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500},
		},
	)

	c.RejectedOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clobdex",
			Subsystem: "engine",
			Name:      "rejected_ops_total",
			Help:      "Total operations rejected, keyed by error kind",
		},
		[]string{"op", "error_kind"},
	)

	c.registerAll()
	return c
}

func (c *Collector) registerAll() {
	prometheus.MustRegister(
		c.OrdersTotal,
		c.OrdersActive,
		c.OrderLatency,
		c.CancelsTotal,
		c.MatchingLatency,
		c.FillsTotal,
		c.FillBaseVolume,
		c.FillQuoteVolume,
		c.OrderbookDepth,
		c.SpreadBps,
		c.BestBid,
		c.BestAsk,
		c.SwapsTotal,
		c.SwapVolume,
		c.SwapHops,
		c.RouteFindLatency,
		c.FeeCollected,
		c.NoRouteTotal,
		c.PairsActive,
		c.StateTransitionLatency,
		c.RejectedOpsTotal,
	)
}

// ============ Recording Helpers ============

// RecordOrder records an order submission outcome.
func (c *Collector) RecordOrder(pairID, side, orderType, status string) {
	c.OrdersTotal.WithLabelValues(pairID, side, orderType, status).Inc()
}

// RecordOrderLatency records order placement latency.
func (c *Collector) RecordOrderLatency(pairID, orderType string, latencyUs float64) {
	c.OrderLatency.WithLabelValues(pairID, orderType).Observe(latencyUs)
}

// RecordCancel records an order cancellation.
func (c *Collector) RecordCancel(pairID string) {
	c.CancelsTotal.WithLabelValues(pairID).Inc()
}

// RecordMatching records one matching pass: its latency and the fills it produced.
func (c *Collector) RecordMatching(pairID string, latencyUs float64, fillCount int, baseVolume, quoteVolume float64) {
	c.MatchingLatency.WithLabelValues(pairID).Observe(latencyUs)
	if fillCount == 0 {
		return
	}
	c.FillsTotal.WithLabelValues(pairID).Add(float64(fillCount))
	c.FillBaseVolume.WithLabelValues(pairID).Add(baseVolume)
	c.FillQuoteVolume.WithLabelValues(pairID).Add(quoteVolume)
}

// RecordDepth records the current book depth and touch for a pair.
func (c *Collector) RecordDepth(pairID string, bidLevels, askLevels int, bestBid, bestAsk, spreadBps float64) {
	c.OrderbookDepth.WithLabelValues(pairID, "bid").Set(float64(bidLevels))
	c.OrderbookDepth.WithLabelValues(pairID, "ask").Set(float64(askLevels))
	c.BestBid.WithLabelValues(pairID).Set(bestBid)
	c.BestAsk.WithLabelValues(pairID).Set(bestAsk)
	c.SpreadBps.WithLabelValues(pairID).Set(spreadBps)
}

// RecordSwap records a completed swap attempt.
func (c *Collector) RecordSwap(kind, status, tokenIn string, amountIn float64) {
	c.SwapsTotal.WithLabelValues(kind, status).Inc()
	if status == "ok" {
		c.SwapVolume.WithLabelValues(tokenIn).Add(amountIn)
	}
}

// RecordRoute records the hop count and search latency for a routed swap.
func (c *Collector) RecordRoute(hops int, findLatencyUs float64) {
	c.SwapHops.Observe(float64(hops))
	c.RouteFindLatency.Observe(findLatencyUs)
}

// RecordNoRoute records a swap attempt that found no viable route.
func (c *Collector) RecordNoRoute() {
	c.NoRouteTotal.Inc()
}

// RecordFee records fee collected on a swap's final output.
func (c *Collector) RecordFee(tokenOut string, amount float64) {
	c.FeeCollected.WithLabelValues(tokenOut).Add(amount)
}

// RecordRejectedOp records an operation rejected by the engine, keyed by the
// error kind it failed with (e.g. insufficient_liquidity, slippage_exceeded).
func (c *Collector) RecordRejectedOp(op, errorKind string) {
	c.RejectedOpsTotal.WithLabelValues(op, errorKind).Inc()
}

// SetPairsActive sets the current number of registered pairs.
func (c *Collector) SetPairsActive(n int) {
	c.PairsActive.Set(float64(n))
}

// RecordStateTransition records the latency of one engine call inside a
// block's state transition.
func (c *Collector) RecordStateTransition(latencyUs float64) {
	c.StateTransitionLatency.Observe(latencyUs)
}

// ============ HTTP Handler ============

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures elapsed time for a single call.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ElapsedUs returns the elapsed time in microseconds.
func (t *Timer) ElapsedUs() float64 {
	return float64(time.Since(t.start).Nanoseconds()) / 1000.0
}
