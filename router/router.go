// Package router finds multi-hop paths between tokens over the graph of
// trading pairs a pool.Manager has created. It holds no liquidity state of
// its own, only the token adjacency graph, so route discovery never needs
// to touch an orderbook.
package router

import (
	"sort"

	"github.com/openalpha/clobdex/types"
)

// Hop is one leg of a Route: trade token_in for token_out across pair.
type Hop struct {
	Pair     types.Pair
	TokenIn  types.TokenId
	TokenOut types.TokenId
}

// Route is a sequence of hops connecting an input token to an output token.
type Route struct {
	Hops []Hop
}

// Len reports the number of hops.
func (r Route) Len() int { return len(r.Hops) }

// TokenIn returns the route's overall input token.
func (r Route) TokenIn() (types.TokenId, bool) {
	if len(r.Hops) == 0 {
		return types.TokenId{}, false
	}
	return r.Hops[0].TokenIn, true
}

// TokenOut returns the route's overall output token.
func (r Route) TokenOut() (types.TokenId, bool) {
	if len(r.Hops) == 0 {
		return types.TokenId{}, false
	}
	return r.Hops[len(r.Hops)-1].TokenOut, true
}

// PairIDs returns the route's hops as an ordered sequence of PairIds, for
// tie-breaking and for the Swap event's route field (spec.md §4.4, §4.5).
func (r Route) PairIDs() []types.PairId {
	out := make([]types.PairId, len(r.Hops))
	for i, h := range r.Hops {
		out[i] = h.Pair.ID
	}
	return out
}

// LessTieBreak reports whether r sorts before other when both have equal
// simulated output: shorter path first, then, for routes of equal length,
// lexicographic comparison of their pair-id sequence.
func (r Route) LessTieBreak(other Route) bool {
	if r.Len() != other.Len() {
		return r.Len() < other.Len()
	}
	a, b := r.PairIDs(), other.PairIDs()
	for i := range a {
		if a[i] != b[i] {
			return a[i].Less(b[i])
		}
	}
	return false
}

// Router holds the token adjacency graph built from created pairs. Grounded
// on original_source/crates/dex/src/router.rs's Router, adapted from Rust's
// HashMap/HashSet (whose iteration order is not consensus-safe) to a
// structure that always walks edges in a fixed, sorted order, required here
// because this engine's routing runs inside a deterministic state
// transition, unlike the reference implementation.
type Router struct {
	graph map[types.TokenId]map[types.TokenId]struct{}
	pairs map[types.TokenId]map[types.TokenId]types.Pair
}

// New creates an empty router.
func New() *Router {
	return &Router{
		graph: make(map[types.TokenId]map[types.TokenId]struct{}),
		pairs: make(map[types.TokenId]map[types.TokenId]types.Pair),
	}
}

// AddPair registers a pair's two tokens as directly connected.
func (r *Router) AddPair(pair types.Pair) {
	r.addEdge(pair.Base, pair.Quote, pair)
	r.addEdge(pair.Quote, pair.Base, pair)
}

func (r *Router) addEdge(from, to types.TokenId, pair types.Pair) {
	if r.graph[from] == nil {
		r.graph[from] = make(map[types.TokenId]struct{})
	}
	r.graph[from][to] = struct{}{}
	if r.pairs[from] == nil {
		r.pairs[from] = make(map[types.TokenId]types.Pair)
	}
	r.pairs[from][to] = pair
}

// RemovePair undoes AddPair.
func (r *Router) RemovePair(pair types.Pair) {
	delete(r.graph[pair.Base], pair.Quote)
	delete(r.graph[pair.Quote], pair.Base)
	delete(r.pairs[pair.Base], pair.Quote)
	delete(r.pairs[pair.Quote], pair.Base)
}

// sortedNeighbors returns token's adjacent tokens in a fixed, deterministic
// order (lexicographic on the raw bytes).
func (r *Router) sortedNeighbors(token types.TokenId) []types.TokenId {
	neighbors := r.graph[token]
	out := make([]types.TokenId, 0, len(neighbors))
	for n := range neighbors {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// FindRoutes returns every simple path from tokenIn to tokenOut of at most
// maxHops hops, shortest first, via BFS (spec.md §5). Within a hop count,
// routes appear in the deterministic order produced by sortedNeighbors
// expansion.
func (r *Router) FindRoutes(tokenIn, tokenOut types.TokenId, maxHops int) []Route {
	type queued struct {
		current types.TokenId
		path    []types.TokenId
	}
	var routes []Route
	queue := []queued{{current: tokenIn, path: []types.TokenId{tokenIn}}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if len(item.path) > maxHops+1 {
			continue
		}
		if item.current == tokenOut && len(item.path) > 1 {
			if route, ok := r.pathToRoute(item.path); ok {
				routes = append(routes, route)
			}
			continue
		}
		for _, neighbor := range r.sortedNeighbors(item.current) {
			if containsToken(item.path, neighbor) {
				continue
			}
			newPath := make([]types.TokenId, len(item.path), len(item.path)+1)
			copy(newPath, item.path)
			newPath = append(newPath, neighbor)
			queue = append(queue, queued{current: neighbor, path: newPath})
		}
	}

	sort.SliceStable(routes, func(i, j int) bool { return routes[i].Len() < routes[j].Len() })
	return routes
}

func containsToken(path []types.TokenId, t types.TokenId) bool {
	for _, p := range path {
		if p == t {
			return true
		}
	}
	return false
}

func (r *Router) pathToRoute(path []types.TokenId) (Route, bool) {
	if len(path) < 2 {
		return Route{}, false
	}
	hops := make([]Hop, 0, len(path)-1)
	for i := 0; i+1 < len(path); i++ {
		tokenIn, tokenOut := path[i], path[i+1]
		pair, ok := r.pairs[tokenIn][tokenOut]
		if !ok {
			return Route{}, false
		}
		hops = append(hops, Hop{Pair: pair, TokenIn: tokenIn, TokenOut: tokenOut})
	}
	return Route{Hops: hops}, true
}

// AllTokens returns every token with at least one pair.
func (r *Router) AllTokens() []types.TokenId {
	out := make([]types.TokenId, 0, len(r.graph))
	for t := range r.graph {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// ReachableTokens returns every token reachable from "from" (excluding
// itself), via BFS over the full graph regardless of hop limit.
func (r *Router) ReachableTokens(from types.TokenId) []types.TokenId {
	visited := make(map[types.TokenId]struct{})
	queue := []types.TokenId{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, ok := visited[current]; ok {
			continue
		}
		visited[current] = struct{}{}
		for _, neighbor := range r.sortedNeighbors(current) {
			if _, ok := visited[neighbor]; !ok {
				queue = append(queue, neighbor)
			}
		}
	}
	delete(visited, from)
	out := make([]types.TokenId, 0, len(visited))
	for t := range visited {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// HasPath reports whether any path connects from to to.
func (r *Router) HasPath(from, to types.TokenId) bool {
	if from == to {
		return true
	}
	for _, t := range r.ReachableTokens(from) {
		if t == to {
			return true
		}
	}
	return false
}
