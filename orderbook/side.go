package orderbook

import (
	"github.com/google/btree"

	"github.com/openalpha/clobdex/types"
)

// btreeDegree matches the teacher's x/orderbook/keeper/orderbook_btree.go,
// which picked 32 for node cache-friendliness.
const btreeDegree = 32

// levelItem adapts a *level to btree.Item. spec.md §9 calls for an ordered
// map keyed by Price with O(log n) insert/delete/best-price access and
// explicitly rejects a heap because cancellation needs O(log n) removal by
// id; google/btree is the teacher's own choice for exactly this structure
// (see orderbook_btree.go's priceLevelItem).
type levelItem struct {
	lvl *level
}

func (a levelItem) Less(b btree.Item) bool {
	return a.lvl.price.LT(b.(levelItem).lvl.price)
}

// side is one side of the book (bids or asks). desc controls iteration
// direction: bids iterate from highest price, asks from lowest.
type side struct {
	tree *btree.BTree
	desc bool
}

func newSide(desc bool) *side {
	return &side{tree: btree.New(btreeDegree), desc: desc}
}

func (s *side) get(price types.Price) *level {
	item := s.tree.Get(levelItem{lvl: &level{price: price}})
	if item == nil {
		return nil
	}
	return item.(levelItem).lvl
}

func (s *side) getOrCreate(price types.Price) *level {
	if l := s.get(price); l != nil {
		return l
	}
	l := newLevel(price)
	s.tree.ReplaceOrInsert(levelItem{lvl: l})
	return l
}

func (s *side) remove(price types.Price) {
	s.tree.Delete(levelItem{lvl: &level{price: price}})
}

// best returns the price level with priority for this side: highest price
// for bids, lowest for asks.
func (s *side) best() *level {
	var item btree.Item
	if s.desc {
		item = s.tree.Max()
	} else {
		item = s.tree.Min()
	}
	if item == nil {
		return nil
	}
	return item.(levelItem).lvl
}

func (s *side) len() int {
	return s.tree.Len()
}

// walk visits levels in matching priority order (best price first),
// stopping early if fn returns false.
func (s *side) walk(fn func(*level) bool) {
	visit := func(item btree.Item) bool {
		return fn(item.(levelItem).lvl)
	}
	if s.desc {
		s.tree.Descend(visit)
	} else {
		s.tree.Ascend(visit)
	}
}

// orderCount sums the number of resting orders across every level.
func (s *side) orderCount() int {
	total := 0
	s.walk(func(l *level) bool {
		total += len(l.orders)
		return true
	})
	return total
}

// levels returns up to n levels in priority order, for depth queries.
func (s *side) levels(n int) []*level {
	out := make([]*level, 0, n)
	s.walk(func(l *level) bool {
		if len(out) >= n {
			return false
		}
		out = append(out, l)
		return true
	})
	return out
}
