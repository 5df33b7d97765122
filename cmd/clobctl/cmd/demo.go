package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openalpha/clobdex/pool"
	"github.com/openalpha/clobdex/types"
)

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted walkthrough: create a pair, rest orders, cross them, route a multi-hop swap",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runDemo()
			return nil
		},
	}
}

func runDemo() {
	s := newSession(pool.DefaultConfig().WithFeeBps(30))
	m := s.manager

	btc, usd, eth := tokenFromName("BTC"), tokenFromName("USD"), tokenFromName("ETH")
	alice, bob, carol := addressFromName("alice"), addressFromName("bob"), addressFromName("carol")

	fmt.Println("-- create_pair(BTC, USD)")
	_, evs, err := m.CreatePair(btc, usd)
	must(err)
	printEvents(evs)

	fmt.Println("-- create_pair(USD, ETH)")
	_, evs, err = m.CreatePair(usd, eth)
	must(err)
	printEvents(evs)

	// tokenFromName("USD") sorts before both "BTC" and "ETH", so USD is the
	// base of both pairs and their prices are BTC (or ETH) per USD.
	fmt.Println("-- alice rests a sell: 10 BTC @ 20000 USD (a bid for 200000 USD @ 1/20000 BTC per USD)")
	_, evs, _, err = m.PlaceLimitOrder(alice, btc, usd, sideFor(btc, usd, btc), price(1, 20000), types.NewAmount(200000))
	must(err)
	printEvents(evs)

	fmt.Println("-- bob market-buys 3 BTC worth of USD")
	out, evs, err := m.PlaceMarketOrder(bob, btc, usd, sideFor(btc, usd, usd), types.NewAmount(60000), types.NewAmount(1))
	must(err)
	fmt.Printf("   total_out=%s\n", out)
	printEvents(evs)

	fmt.Println("-- carol rests a buy: 1 BTC @ 19000 USD (an ask for 19000 USD @ 1/19000 BTC per USD)")
	_, evs, _, err = m.PlaceLimitOrder(carol, btc, usd, sideFor(btc, usd, usd), price(1, 19000), types.NewAmount(19000))
	must(err)
	printEvents(evs)

	fmt.Println("-- carol rests a sell: 100 ETH @ 1/1 USD on (USD,ETH)")
	_, evs, _, err = m.PlaceLimitOrder(carol, usd, eth, sideFor(usd, eth, eth), price(1, 1), types.NewAmount(100))
	must(err)
	printEvents(evs)

	fmt.Println("-- bob routes a swap BTC -> ETH (no direct pair, routes via USD)")
	amountOut, route, evs, err := m.ExecuteSwap(bob, btc, eth, types.NewAmount(1), types.NewAmount(1))
	must(err)
	fmt.Printf("   amount_out=%s route=%v\n", amountOut, route)
	printEvents(evs)

	fmt.Println("-- depth(BTC, USD)")
	bids, asks, err := m.Depth(btc, usd, 5)
	must(err)
	for _, lvl := range bids {
		fmt.Printf("   bid %s @ %s\n", lvl.Quantity, lvl.Price)
	}
	for _, lvl := range asks {
		fmt.Printf("   ask %s @ %s\n", lvl.Quantity, lvl.Price)
	}

	fmt.Println("-- pair_stats(BTC, USD)")
	stats, err := m.PairStats(btc, usd)
	must(err)
	fmt.Printf("   total_base_volume=%s buy_orders=%d sell_orders=%d\n", stats.TotalBaseVolume, stats.BuyOrderCount, stats.SellOrderCount)
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// sideFor returns the side a trader submits on the (t0,t1) pair to act on
// tokenIn, matching the engine's canonical base/quote assignment regardless
// of which literal argument order the caller used.
func sideFor(t0, t1, tokenIn types.TokenId) types.Side {
	pair, err := types.NewPair(t0, t1)
	must(err)
	if tokenIn == pair.Base {
		return types.SideSell
	}
	return types.SideBuy
}

func price(num, denom uint64) types.Price {
	p, err := types.NewPrice(types.NewAmount(num), types.NewAmount(denom))
	must(err)
	return p
}
