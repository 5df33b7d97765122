package router

import (
	"testing"

	"github.com/openalpha/clobdex/types"
)

func token(b byte) types.TokenId {
	var t types.TokenId
	t[0] = b
	return t
}

func mustPair(t *testing.T, a, b types.TokenId) types.Pair {
	p, err := types.NewPair(a, b)
	if err != nil {
		t.Fatalf("NewPair: %v", err)
	}
	return p
}

func TestAddPair_CreatesBidirectionalEdges(t *testing.T) {
	r := New()
	eth, usdc := token(1), token(2)
	r.AddPair(mustPair(t, eth, usdc))

	if !r.HasPath(eth, usdc) || !r.HasPath(usdc, eth) {
		t.Fatalf("expected a direct path in both directions")
	}
}

func TestHasPath_MultiHop(t *testing.T) {
	r := New()
	eth, usdc, wbtc, dai := token(1), token(2), token(3), token(4)
	r.AddPair(mustPair(t, eth, usdc))
	r.AddPair(mustPair(t, usdc, wbtc))

	if !r.HasPath(eth, usdc) {
		t.Fatalf("expected direct path eth->usdc")
	}
	if !r.HasPath(eth, wbtc) {
		t.Fatalf("expected path eth->usdc->wbtc")
	}
	if r.HasPath(eth, dai) {
		t.Fatalf("dai is unconnected, expected no path")
	}
}

func TestFindRoutes_PrefersShorterFirst(t *testing.T) {
	r := New()
	eth, usdc, wbtc := token(1), token(2), token(3)
	r.AddPair(mustPair(t, eth, usdc))
	r.AddPair(mustPair(t, usdc, wbtc))
	r.AddPair(mustPair(t, eth, wbtc))

	routes := r.FindRoutes(eth, wbtc, 2)
	if len(routes) < 2 {
		t.Fatalf("expected at least 2 routes (direct + via usdc), got %d", len(routes))
	}
	if routes[0].Len() != 1 {
		t.Fatalf("expected the direct route first, got length %d", routes[0].Len())
	}
}

func TestFindRoutes_RespectsMaxHops(t *testing.T) {
	r := New()
	eth, usdc, wbtc := token(1), token(2), token(3)
	r.AddPair(mustPair(t, eth, usdc))
	r.AddPair(mustPair(t, usdc, wbtc))

	routes := r.FindRoutes(eth, wbtc, 1)
	if len(routes) != 0 {
		t.Fatalf("2-hop route should be excluded by a 1-hop cap, got %+v", routes)
	}

	routes = r.FindRoutes(eth, wbtc, 2)
	if len(routes) != 1 || routes[0].Len() != 2 {
		t.Fatalf("expected exactly one 2-hop route, got %+v", routes)
	}
}

func TestFindRoutes_Deterministic(t *testing.T) {
	r := New()
	eth, usdc, wbtc, dai := token(1), token(2), token(3), token(4)
	r.AddPair(mustPair(t, eth, usdc))
	r.AddPair(mustPair(t, eth, wbtc))
	r.AddPair(mustPair(t, eth, dai))
	r.AddPair(mustPair(t, usdc, wbtc))
	r.AddPair(mustPair(t, wbtc, dai))

	first := r.FindRoutes(eth, dai, 3)
	for i := 0; i < 20; i++ {
		again := r.FindRoutes(eth, dai, 3)
		if len(again) != len(first) {
			t.Fatalf("route count varied across identical calls: %d vs %d", len(again), len(first))
		}
		for j := range first {
			if first[j].Len() != again[j].Len() {
				t.Fatalf("route ordering varied across identical calls at index %d", j)
			}
			for k := range first[j].Hops {
				if first[j].Hops[k].TokenIn != again[j].Hops[k].TokenIn || first[j].Hops[k].TokenOut != again[j].Hops[k].TokenOut {
					t.Fatalf("hop sequence varied across identical calls")
				}
			}
		}
	}
}

func TestReachableTokens_ExcludesSelfAndDisconnected(t *testing.T) {
	r := New()
	eth, usdc, wbtc, dai := token(1), token(2), token(3), token(4)
	r.AddPair(mustPair(t, eth, usdc))
	r.AddPair(mustPair(t, usdc, wbtc))

	reachable := r.ReachableTokens(eth)
	found := map[types.TokenId]bool{}
	for _, tk := range reachable {
		found[tk] = true
	}
	if !found[usdc] || !found[wbtc] {
		t.Fatalf("expected usdc and wbtc reachable, got %+v", reachable)
	}
	if found[dai] {
		t.Fatalf("dai should not be reachable")
	}
	if found[eth] {
		t.Fatalf("a token should not be reachable from itself")
	}
}
