// Command clobctl is a demo driver for the engine: it runs an interactive
// session or a scripted demo directly against a pool.Manager, with no
// consensus, gRPC, or keyring machinery attached.
package main

import (
	"os"

	"cosmossdk.io/log"

	"github.com/openalpha/clobdex/cmd/clobctl/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		log.NewLogger(os.Stderr).Error("clobctl failed", "err", err)
		os.Exit(1)
	}
}
