package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	natsAdapter "github.com/Abdurahmanit/GroupProject/promotion-service/internal/adapter/messaging/nats"
	redisAdapter "github.com/Abdurahmanit/GroupProject/promotion-service/internal/adapter/redis"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/promotion"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/usecase"
)

func newSweepCmd() *cobra.Command {
	var (
		dryRun  bool
		noLease bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one sweep pass: apply due bumps and expire windows and presence flags.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			d, err := openDeps(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			if dryRun {
				listings, err := d.listings.FindPromoted(ctx)
				if err != nil {
					return err
				}
				report, err := d.manager.Sweep(ctx, listings)
				if err != nil {
					return err
				}
				printSweepReport(cmd.OutOrStdout(), report, true)
				return nil
			}

			var (
				cache     usecase.ListingCache
				lease     usecase.SweepLease
				publisher usecase.EventPublisher
			)
			if rdb, err := redisAdapter.NewClient(ctx, redisAdapter.Options{Addr: d.cfg.RedisAddr, Password: d.cfg.RedisPassword, DB: d.cfg.RedisDB}); err != nil {
				if !noLease {
					return fmt.Errorf("redis is required for the sweep lease (use --no-lease to skip): %w", err)
				}
				d.log.Warn("Redis unavailable; cached category snapshots will expire on their own", zap.Error(err))
			} else {
				defer func() { _ = rdb.Close() }()
				cache = redisAdapter.NewListingCache(rdb, d.log)
				if !noLease {
					lease = redisAdapter.NewSweepLease(rdb)
				}
			}
			if conn, err := natsAdapter.Connect(d.cfg.NATSURL, d.log, "promoctl"); err != nil {
				d.log.Warn("NATS unavailable; transitions will not be published", zap.Error(err))
			} else {
				p := natsAdapter.NewPublisher(conn, d.log)
				defer p.Close()
				publisher = p
			}

			uc := usecase.NewPromotionUsecase(d.listings, cache, publisher, lease, d.cfg.SweepLeaseTTL, d.manager, nil, d.log)
			report, ran, err := uc.RunSweep(ctx)
			if err != nil {
				return err
			}
			if !ran {
				fmt.Fprintln(cmd.OutOrStdout(), "Another replica holds the sweep lease; nothing done.")
				return nil
			}
			printSweepReport(cmd.OutOrStdout(), report, false)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute transitions without saving or publishing them")
	cmd.Flags().BoolVar(&noLease, "no-lease", false, "skip the cross-replica sweep lease")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline for the pass")
	return cmd
}

func printSweepReport(w io.Writer, r promotion.SweepReport, dryRun bool) {
	mode := "applied"
	if dryRun {
		mode = "dry run"
	}
	fmt.Fprintf(w, "Sweep at %s (%s)\n", r.At.Format(time.RFC3339), mode)
	fmt.Fprintf(w, "  scanned:          %d\n", r.Scanned)
	fmt.Fprintf(w, "  bumped:           %d\n", r.Bumped)
	fmt.Fprintf(w, "  expired:          %d\n", r.Expired)
	fmt.Fprintf(w, "  presence expired: %d\n", r.PresenceExpired)
	if r.Conflicts > 0 {
		fmt.Fprintf(w, "  skipped (changed concurrently): %d\n", r.Conflicts)
	}
	for _, t := range r.Transitions {
		fmt.Fprintf(w, "  - %s %s\n", t.ListingID, t.Kind)
	}
}
