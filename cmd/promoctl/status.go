package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/promotion"
)

func newStatusCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status <listing-id>",
		Short: "Show the effective tier, countdown and presence of a listing.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			d, err := openDeps(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			l, err := d.listings.FindByID(ctx, args[0])
			if err != nil {
				return err
			}
			st := d.manager.Status(l)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			printStatus(cmd.OutOrStdout(), st)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the status as JSON")
	return cmd
}

func printStatus(out io.Writer, st promotion.PromotionStatus) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "listing\t%s\n", st.ListingID)
	fmt.Fprintf(w, "tier\t%s\n", st.Tier)
	if st.ExpiresAt != nil {
		fmt.Fprintf(w, "plan\t%s (%s)\n", st.Plan, st.State)
		fmt.Fprintf(w, "expires\t%s\n", st.ExpiresAt.Format(time.RFC3339))
		fmt.Fprintf(w, "days remaining\t%d\n", st.DaysRemaining)
		fmt.Fprintf(w, "countdown\t%s\n", st.Countdown.Round(time.Second))
		fmt.Fprintf(w, "progress\t%.0f%%\n", st.Progress*100)
		fmt.Fprintf(w, "bumps\t%d of %d remaining\n", st.BumpsRemaining, st.TotalBumps)
		if st.NextBumpAt != nil {
			fmt.Fprintf(w, "next bump\t%s\n", st.NextBumpAt.Format(time.RFC3339))
		}
	}
	fmt.Fprintf(w, "presence\t%t\n", st.PresenceActive)
	_ = w.Flush()
}
