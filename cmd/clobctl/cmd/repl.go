package cmd

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openalpha/clobdex/pool"
	"github.com/openalpha/clobdex/types"
)

const replHelp = `commands:
  create-pair <t0> <t1>
  place-limit <trader> <t0> <t1> <buy|sell> <price-num> <price-denom> <amount>
  place-market <trader> <t0> <t1> <buy|sell> <amount-in> <min-amount-out>
  cancel <trader> <order-id-hex>
  swap <trader> <t-in> <t-out> <amount-in> <min-amount-out>
  quote <t-in> <t-out> <amount-in>
  depth <t0> <t1>
  stats <t0> <t1>
  help
  exit`

func newReplCmd() *cobra.Command {
	var feeBps uint32
	var maxHops int
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session against one in-memory engine instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := pool.DefaultConfig().WithFeeBps(feeBps).WithMaxRoutingHops(maxHops)
			runRepl(newSession(config))
			return nil
		},
	}
	cmd.Flags().Uint32Var(&feeBps, "fee-bps", 30, "swap fee in basis points")
	cmd.Flags().IntVar(&maxHops, "max-hops", 3, "maximum routing hops")
	return cmd
}

func runRepl(s *session) {
	fmt.Println(replHelp)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("clobctl> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if err := s.dispatch(fields); err != nil {
			if err == errExit {
				return
			}
			fmt.Println("error:", err)
		}
	}
}

var errExit = fmt.Errorf("exit")

func (s *session) dispatch(fields []string) error {
	switch fields[0] {
	case "help":
		fmt.Println(replHelp)
	case "exit", "quit":
		return errExit
	case "create-pair":
		return s.cmdCreatePair(fields[1:])
	case "place-limit":
		return s.cmdPlaceLimit(fields[1:])
	case "place-market":
		return s.cmdPlaceMarket(fields[1:])
	case "cancel":
		return s.cmdCancel(fields[1:])
	case "swap":
		return s.cmdSwap(fields[1:])
	case "quote":
		return s.cmdQuote(fields[1:])
	case "depth":
		return s.cmdDepth(fields[1:])
	case "stats":
		return s.cmdStats(fields[1:])
	default:
		return fmt.Errorf("unknown command %q (try 'help')", fields[0])
	}
	return nil
}

func (s *session) cmdCreatePair(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: create-pair <t0> <t1>")
	}
	pair, evs, err := s.manager.CreatePair(tokenFromName(args[0]), tokenFromName(args[1]))
	if err != nil {
		return err
	}
	fmt.Printf("pair_id=%s\n", pair.ID)
	printEvents(evs)
	return nil
}

func (s *session) cmdPlaceLimit(args []string) error {
	if len(args) != 7 {
		return fmt.Errorf("usage: place-limit <trader> <t0> <t1> <buy|sell> <price-num> <price-denom> <amount>")
	}
	side, err := parseSide(args[3])
	if err != nil {
		return err
	}
	priceNum, err := parseAmount(args[4])
	if err != nil {
		return err
	}
	priceDenom, err := parseAmount(args[5])
	if err != nil {
		return err
	}
	amount, err := parseAmount(args[6])
	if err != nil {
		return err
	}
	p, err := types.NewPrice(priceNum, priceDenom)
	if err != nil {
		return err
	}
	orderID, evs, status, err := s.manager.PlaceLimitOrder(addressFromName(args[0]), tokenFromName(args[1]), tokenFromName(args[2]), side, p, amount)
	if err != nil {
		return err
	}
	fmt.Printf("order_id=%s status=%s\n", orderID, status)
	printEvents(evs)
	return nil
}

func (s *session) cmdPlaceMarket(args []string) error {
	if len(args) != 6 {
		return fmt.Errorf("usage: place-market <trader> <t0> <t1> <buy|sell> <amount-in> <min-amount-out>")
	}
	side, err := parseSide(args[3])
	if err != nil {
		return err
	}
	amountIn, err := parseAmount(args[4])
	if err != nil {
		return err
	}
	minOut, err := parseAmount(args[5])
	if err != nil {
		return err
	}
	totalOut, evs, err := s.manager.PlaceMarketOrder(addressFromName(args[0]), tokenFromName(args[1]), tokenFromName(args[2]), side, amountIn, minOut)
	if err != nil {
		return err
	}
	fmt.Printf("total_out=%s\n", totalOut)
	printEvents(evs)
	return nil
}

func (s *session) cmdCancel(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: cancel <trader> <order-id-hex>")
	}
	raw, err := hex.DecodeString(args[1])
	if err != nil || len(raw) != 32 {
		return fmt.Errorf("order-id must be 32 bytes of hex")
	}
	var orderID types.OrderId
	copy(orderID[:], raw)
	order, evs, err := s.manager.CancelOrder(orderID, addressFromName(args[0]))
	if err != nil {
		return err
	}
	fmt.Printf("cancelled order_id=%s status=%s\n", order.OrderID, order.Status)
	printEvents(evs)
	return nil
}

func (s *session) cmdSwap(args []string) error {
	if len(args) != 5 {
		return fmt.Errorf("usage: swap <trader> <t-in> <t-out> <amount-in> <min-amount-out>")
	}
	amountIn, err := parseAmount(args[3])
	if err != nil {
		return err
	}
	minOut, err := parseAmount(args[4])
	if err != nil {
		return err
	}
	amountOut, route, evs, err := s.manager.ExecuteSwap(addressFromName(args[0]), tokenFromName(args[1]), tokenFromName(args[2]), amountIn, minOut)
	if err != nil {
		return err
	}
	fmt.Printf("amount_out=%s hops=%d\n", amountOut, len(route))
	printEvents(evs)
	return nil
}

func (s *session) cmdQuote(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: quote <t-in> <t-out> <amount-in>")
	}
	amountIn, err := parseAmount(args[2])
	if err != nil {
		return err
	}
	quote, err := s.manager.Quote(tokenFromName(args[0]), tokenFromName(args[1]), amountIn)
	if err != nil {
		return err
	}
	fmt.Printf("amount_out=%s hops=%d price_impact_bps=%d\n", quote.AmountOut, len(quote.Route), quote.PriceImpactBps)
	return nil
}

func (s *session) cmdDepth(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: depth <t0> <t1>")
	}
	bids, asks, err := s.manager.Depth(tokenFromName(args[0]), tokenFromName(args[1]), 10)
	if err != nil {
		return err
	}
	for _, lvl := range bids {
		fmt.Printf("bid %s @ %s\n", lvl.Quantity, lvl.Price)
	}
	for _, lvl := range asks {
		fmt.Printf("ask %s @ %s\n", lvl.Quantity, lvl.Price)
	}
	return nil
}

func (s *session) cmdStats(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: stats <t0> <t1>")
	}
	stats, err := s.manager.PairStats(tokenFromName(args[0]), tokenFromName(args[1]))
	if err != nil {
		return err
	}
	fmt.Printf("total_base_volume=%s buy_orders=%d sell_orders=%d last_price_set=%v\n",
		stats.TotalBaseVolume, stats.BuyOrderCount, stats.SellOrderCount, stats.HasLastPrice)
	return nil
}

func parseSide(s string) (types.Side, error) {
	switch s {
	case "buy":
		return types.SideBuy, nil
	case "sell":
		return types.SideSell, nil
	default:
		return types.SideUnspecified, fmt.Errorf("side must be 'buy' or 'sell', got %q", s)
	}
}

func parseAmount(s string) (types.Amount, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return types.ZeroAmount(), fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return types.NewAmount(v), nil
}
