package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
)

func newReasonsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reasons",
		Short: "List the report reasons with their labels and severity.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tLABEL\tSEVERITY")
			for _, r := range domain.Reasons() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r, r.Label(), domain.SeverityFor(r))
			}
			return w.Flush()
		},
	}
}
