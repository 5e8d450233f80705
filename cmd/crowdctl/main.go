// Command crowdctl generates, summarizes, and validates crowd-safety
// snapshots offline.
//
// Usage:
//
//	crowdctl generate --seed 7 --format yaml --out snapshot.yaml
//	crowdctl stats --seed 7 --generations 5000
//	crowdctl validate --in snapshot.yaml
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "crowdctl",
		Short:        "Offline tooling for synthetic crowd-safety snapshots",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(validateCmd())
	return rootCmd
}
