// Command promoctl runs promotion maintenance tasks against the configured store.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "promoctl",
		Short: "Operate the promotion and discovery engine.",
		Long: `promoctl runs one-off maintenance against the promotion service's store:
a manual sweep pass, a promotion status lookup, or a listing of report reasons.
Configuration is read from the same environment variables as the server.`,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		SilenceUsage:      true,
	}
	root.AddCommand(newSweepCmd(), newStatusCmd(), newReasonsCmd())
	return root
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
