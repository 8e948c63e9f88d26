// Command bulkscroll is both the bulk-by-scroll control-plane server and
// its own client: `bulkscroll serve` runs the gRPC/REST control plane and
// the recurring-schedule worker; `bulkscroll run/status/cancel/apikey`
// drive a running instance from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bulkscroll",
		Short:         "Bulk-by-scroll reindex/update/delete control plane",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("endpoint", "localhost:9090", "control-plane gRPC endpoint")
	root.PersistentFlags().String("api-key", "", "admin API key (overrides BULKSCROLL_API_KEY)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newCancelCmd())
	root.AddCommand(newAPIKeyCmd())

	return root
}
