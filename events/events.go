// Package events defines the structured records every mutating PoolManager
// call emits, alongside its result value, per spec.md §6. The host process
// turns these into log lines; within this engine they are plain data the
// caller can serialize or hand to metrics.Collector.
package events

import "github.com/openalpha/clobdex/types"

// PairCreated is emitted once when create_pair succeeds.
type PairCreated struct {
	Base   types.TokenId
	Quote  types.TokenId
	PairID types.PairId
}

// LimitOrderPlaced is emitted for every accepted place_limit_order call,
// whether or not it matched immediately.
type LimitOrderPlaced struct {
	OrderID    types.OrderId
	Trader     types.Address
	TokenIn    types.TokenId
	TokenOut   types.TokenId
	IsBuy      bool
	Amount     types.Amount
	PriceNum   types.Amount
	PriceDenom types.Amount
}

// OrderCancelled is emitted when cancel_order succeeds.
type OrderCancelled struct {
	OrderID types.OrderId
	Trader  types.Address
}

// OrderFilled is emitted once per match produced by any matching call
// (limit or market, direct or as one hop of a routed swap).
type OrderFilled struct {
	MakerOrderID types.OrderId
	TakerOrderID types.OrderId
	BaseAmount   types.Amount
	QuoteAmount  types.Amount
	PriceNum     types.Amount
	PriceDenom   types.Amount
}

// Swap is emitted once per execute_swap call, summarizing the whole route.
type Swap struct {
	Trader    types.Address
	TokenIn   types.TokenId
	TokenOut  types.TokenId
	AmountIn  types.Amount
	AmountOut types.Amount
	Pairs     []types.PairId
}

// Event is the union of every record kind a call can emit, in the exact
// order they occurred: event ordering is part of the external contract
// (spec.md §6) so callers must preserve Recorder's slice order verbatim
// when serializing or forwarding to a log sink.
type Event interface {
	isEvent()
}

func (PairCreated) isEvent()      {}
func (LimitOrderPlaced) isEvent() {}
func (OrderCancelled) isEvent()   {}
func (OrderFilled) isEvent()      {}
func (Swap) isEvent()             {}

// Recorder accumulates the events produced by a single call. pool.Manager
// creates one per call and returns its contents alongside the call's result
// value; it is never shared across calls, so ordering is simply append
// order.
type Recorder struct {
	events []Event
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit appends ev to the recorded sequence.
func (r *Recorder) Emit(ev Event) {
	r.events = append(r.events, ev)
}

// Events returns the recorded sequence in emission order.
func (r *Recorder) Events() []Event {
	return r.events
}

// FillToEvent converts an orderbook-level Fill into the OrderFilled event
// record spec.md §6 defines.
func FillToEvent(f types.Fill) OrderFilled {
	return OrderFilled{
		MakerOrderID: f.MakerOrderID,
		TakerOrderID: f.TakerOrderID,
		BaseAmount:   f.BaseAmount,
		QuoteAmount:  f.QuoteAmount,
		PriceNum:     f.Price.Num,
		PriceDenom:   f.Price.Denom,
	}
}
