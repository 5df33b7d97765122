package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the clobctl command tree: repl for an interactive
// session against one in-memory engine, demo for a scripted walkthrough.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "clobctl",
		Short: "Drive the orderbook engine directly, without a node",
		Long: `clobctl exercises pool.Manager in-process: no consensus, no gRPC,
no keyring. Token symbols and trader names are hashed into the engine's
opaque ids, so "clobctl repl" can work with "BTC", "alice" directly.`,
	}

	root.AddCommand(newReplCmd())
	root.AddCommand(newDemoCmd())
	return root
}
