package cmd

import (
	"fmt"
	"os"

	"cosmossdk.io/log"
	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"

	"github.com/openalpha/clobdex/events"
	"github.com/openalpha/clobdex/pool"
	"github.com/openalpha/clobdex/types"
)

// session wraps a pool.Manager with human-friendly name -> id resolution,
// since the engine's TokenId/Address are opaque 20-byte digests and a demo
// user naturally wants to type "BTC" and "alice" instead. Names are hashed
// deterministically with the same keccak256 primitive types.DeriveOrderID
// uses, so the same name always resolves to the same id within a session
// and across runs.
type session struct {
	manager *pool.Manager
}

func newSession(config pool.Config) *session {
	logger := log.NewLogger(os.Stderr).With("session", uuid.New().String())
	m := pool.NewWithConfig(config, logger)
	m.EnableMetrics()
	return &session{manager: m}
}

// tokenFromName derives a deterministic TokenId from a human-readable
// token symbol.
func tokenFromName(name string) types.TokenId {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte("token:"))
	h.Write([]byte(name))
	var t types.TokenId
	copy(t[:], h.Sum(nil))
	return t
}

// addressFromName derives a deterministic Address from a human-readable
// trader name.
func addressFromName(name string) types.Address {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte("trader:"))
	h.Write([]byte(name))
	var a types.Address
	copy(a[:], h.Sum(nil))
	return a
}

func printEvents(evs []events.Event) {
	for _, ev := range evs {
		switch e := ev.(type) {
		case events.PairCreated:
			fmt.Printf("  event PairCreated pair=%s base=%s quote=%s\n", e.PairID, e.Base, e.Quote)
		case events.LimitOrderPlaced:
			fmt.Printf("  event LimitOrderPlaced order=%s buy=%v amount=%s price=%s/%s\n", e.OrderID, e.IsBuy, e.Amount, e.PriceNum, e.PriceDenom)
		case events.OrderCancelled:
			fmt.Printf("  event OrderCancelled order=%s\n", e.OrderID)
		case events.OrderFilled:
			fmt.Printf("  event OrderFilled maker=%s taker=%s base=%s quote=%s\n", e.MakerOrderID, e.TakerOrderID, e.BaseAmount, e.QuoteAmount)
		case events.Swap:
			fmt.Printf("  event Swap in=%s out=%s amount_in=%s amount_out=%s hops=%d\n", e.TokenIn, e.TokenOut, e.AmountIn, e.AmountOut, len(e.Pairs))
		}
	}
}
