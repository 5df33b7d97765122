package orderbook

import (
	"github.com/openalpha/clobdex/types"
)

// level is a single price level: a FIFO queue of open orders plus the
// running sum of their remaining amounts, grounded on the teacher's
// PriceLevelV2 (x/orderbook/keeper/orderbook_v2.go) which keeps the same
// pair of fields for O(1) depth queries instead of resumming the queue.
type level struct {
	price    types.Price
	orders   []*types.Order // FIFO: orders[0] is the oldest (time priority)
	quantity types.Amount   // sum of orders[i].RemainingAmount
}

func newLevel(price types.Price) *level {
	return &level{price: price, quantity: types.ZeroAmount()}
}

func (l *level) push(o *types.Order) {
	l.orders = append(l.orders, o)
	l.quantity = l.quantity.Add(o.RemainingAmount)
}

// removeAt deletes the order at index i, preserving FIFO order of the rest.
func (l *level) removeAt(i int) {
	l.orders = append(l.orders[:i], l.orders[i+1:]...)
}

// removeByID removes the order with the given id, if present, and returns
// it along with whether it was found.
func (l *level) removeByID(id types.OrderId) (*types.Order, bool) {
	for i, o := range l.orders {
		if o.OrderID == id {
			l.removeAt(i)
			return o, true
		}
	}
	return nil, false
}

func (l *level) isEmpty() bool {
	return len(l.orders) == 0
}

// recomputeQuantity resums remaining amounts. Used after a fill decrements
// an order in place so the level's running total stays consistent.
func (l *level) recomputeQuantity() {
	total := types.ZeroAmount()
	for _, o := range l.orders {
		total = total.Add(o.RemainingAmount)
	}
	l.quantity = total
}
