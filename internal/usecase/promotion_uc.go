package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/promotion"
)

// PromotionUsecase applies purchases, presence changes and sweeps to stored listings.
type PromotionUsecase struct {
	repo      domain.ListingRepository
	cache     ListingCache
	publisher EventPublisher
	lease     SweepLease
	leaseTTL  time.Duration
	manager   *promotion.Manager
	metrics   *metrics.MetricsManager
	logger    *logger.Logger
}

func NewPromotionUsecase(
	repo domain.ListingRepository,
	cache ListingCache,
	publisher EventPublisher,
	lease SweepLease,
	leaseTTL time.Duration,
	manager *promotion.Manager,
	m *metrics.MetricsManager,
	log *logger.Logger,
) *PromotionUsecase {
	return &PromotionUsecase{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		lease:     lease,
		leaseTTL:  leaseTTL,
		manager:   manager,
		metrics:   m,
		logger:    log.Named("PromotionUsecase"),
	}
}

// maxSaveAttempts bounds the reload-and-retry loop of owner and billing writes
// that lose a race against another writer of the same window.
const maxSaveAttempts = 3

// PurchaseBoost activates the boost window described by a billing purchase.
// A purchase always replaces the stored window, so a write that races a sweep
// is retried on freshly loaded state.
func (uc *PromotionUsecase) PurchaseBoost(ctx context.Context, req promotion.PurchaseRequest) (promotion.PromotionStatus, error) {
	ctx, span := tracer.Start(ctx, "PromotionUsecase.PurchaseBoost")
	defer span.End()

	p, err := promotion.ParsePurchase(req)
	if err != nil {
		return promotion.PromotionStatus{}, err
	}
	if p.ListingID == "" {
		return promotion.PromotionStatus{}, fmt.Errorf("%w: listing id is required", domain.ErrValidation)
	}
	span.SetAttributes(attribute.String("listing_id", p.ListingID), attribute.String("plan", string(p.Plan)))

	var (
		l    *domain.Listing
		snap domain.BoostSnapshot
	)
	for attempt := 1; ; attempt++ {
		l, err = uc.repo.FindByID(ctx, p.ListingID)
		if err != nil {
			return promotion.PromotionStatus{}, err
		}
		snap, err = uc.manager.Activate(l, p)
		if err != nil {
			uc.logger.Warn("Rejected boost purchase", zap.String("listing_id", p.ListingID), zap.Error(err))
			return promotion.PromotionStatus{}, err
		}
		err = uc.repo.SaveBoost(ctx, l.ID, snap)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrConflict) && attempt < maxSaveAttempts {
			uc.logger.Debug("Boost window changed concurrently, retrying purchase",
				zap.String("listing_id", l.ID), zap.Int("attempt", attempt))
			continue
		}
		span.RecordError(err)
		return promotion.PromotionStatus{}, wrapRepo("save boost", err)
	}
	uc.invalidate(ctx, l.Category)

	t := domain.Transition{
		ListingID:      l.ID,
		Kind:           domain.TransitionBoostActivated,
		At:             uc.manager.Now(),
		Plan:           snap.Plan,
		BumpsRemaining: snap.BumpsRemaining,
		NextBumpAt:     snap.NextBumpAt,
		ExpiresAt:      snap.ExpiresAt,
	}
	uc.publish(ctx, t)
	if uc.metrics != nil {
		uc.metrics.BoostActivated.WithLabelValues(string(snap.Plan)).Inc()
	}

	uc.logger.Info("Boost window activated",
		zap.String("listing_id", l.ID),
		zap.String("plan", string(snap.Plan)),
		zap.Time("expires_at", snap.ExpiresAt),
		zap.Int("total_bumps", snap.TotalBumps))
	return uc.manager.Status(l), nil
}

// SetPresence sets the owner's presence flag to the requested state.
func (uc *PromotionUsecase) SetPresence(ctx context.Context, listingID, userID string, active bool) (promotion.PromotionStatus, error) {
	return uc.changePresence(ctx, listingID, userID, func(l *domain.Listing) (domain.Transition, error) {
		return uc.manager.SetPresence(l, active)
	})
}

// TogglePresence flips the owner's presence flag.
func (uc *PromotionUsecase) TogglePresence(ctx context.Context, listingID, userID string) (promotion.PromotionStatus, error) {
	return uc.changePresence(ctx, listingID, userID, uc.manager.TogglePresence)
}

// changePresence applies an owner action to freshly loaded state. On a
// concurrent write the action is re-applied to the new state.
func (uc *PromotionUsecase) changePresence(ctx context.Context, listingID, userID string, apply func(*domain.Listing) (domain.Transition, error)) (promotion.PromotionStatus, error) {
	ctx, span := tracer.Start(ctx, "PromotionUsecase.changePresence")
	defer span.End()
	span.SetAttributes(attribute.String("listing_id", listingID))

	var (
		l *domain.Listing
		t domain.Transition
	)
	for attempt := 1; ; attempt++ {
		var err error
		l, err = uc.repo.FindByID(ctx, listingID)
		if err != nil {
			return promotion.PromotionStatus{}, err
		}
		if l.OwnerID == "" || l.OwnerID != userID {
			uc.logger.Warn("User forbidden to change presence",
				zap.String("listing_id", listingID),
				zap.String("owner_id", l.OwnerID),
				zap.String("requesting_user", userID))
			return promotion.PromotionStatus{}, fmt.Errorf("%w: only the owner can change presence", domain.ErrForbidden)
		}

		t, err = apply(l)
		if err != nil {
			return promotion.PromotionStatus{}, err
		}
		err = uc.repo.SavePresence(ctx, l.ID, l.Presence.Snapshot())
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrConflict) && attempt < maxSaveAttempts {
			uc.logger.Debug("Presence changed concurrently, retrying",
				zap.String("listing_id", l.ID), zap.Int("attempt", attempt))
			continue
		}
		span.RecordError(err)
		return promotion.PromotionStatus{}, wrapRepo("save presence", err)
	}
	uc.invalidate(ctx, l.Category)
	uc.publish(ctx, t)
	if uc.metrics != nil {
		uc.metrics.PresenceChange.WithLabelValues(string(t.Kind)).Inc()
	}

	uc.logger.Info("Presence changed", zap.String("listing_id", l.ID), zap.String("kind", string(t.Kind)))
	return uc.manager.Status(l), nil
}

// GetStatus returns the promotion read model of one listing.
func (uc *PromotionUsecase) GetStatus(ctx context.Context, listingID string) (promotion.PromotionStatus, error) {
	l, err := uc.repo.FindByID(ctx, listingID)
	if err != nil {
		return promotion.PromotionStatus{}, err
	}
	return uc.manager.Status(l), nil
}

// RunSweep performs one sweep pass over all promoted listings while holding
// the sweep lease. It reports ran=false when another replica holds the lease.
func (uc *PromotionUsecase) RunSweep(ctx context.Context) (report promotion.SweepReport, ran bool, err error) {
	ctx, span := tracer.Start(ctx, "PromotionUsecase.RunSweep")
	defer span.End()
	start := time.Now()

	if uc.lease != nil {
		ok, err := uc.lease.Acquire(ctx, uc.leaseTTL)
		if err != nil {
			uc.countSweep("failed")
			return promotion.SweepReport{}, false, fmt.Errorf("acquire sweep lease: %w", err)
		}
		if !ok {
			uc.logger.Debug("Sweep lease held elsewhere, skipping pass")
			uc.countSweep("skipped")
			return promotion.SweepReport{}, false, nil
		}
		defer func() {
			// Release on a fresh context so a cancelled pass still frees the lease.
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := uc.lease.Release(rctx); err != nil {
				uc.logger.Warn("Failed to release sweep lease", zap.Error(err))
			}
		}()
		stop := uc.keepLease(ctx)
		defer stop()
	}

	listings, err := uc.repo.FindPromoted(ctx)
	if err != nil {
		uc.countSweep("failed")
		return promotion.SweepReport{}, true, wrapRepo("load promoted listings", err)
	}

	computed, sweepErr := uc.manager.Sweep(ctx, listings)
	applied, conflicts, persistErr := uc.persistTransitions(ctx, listings, computed.Transitions)
	report = computed.Applied(applied, conflicts)
	if err := errors.Join(sweepErr, persistErr); err != nil {
		uc.countSweep("failed")
		span.RecordError(err)
		uc.logger.Error("Sweep pass incomplete", zap.Error(err), zap.Int("transitions", len(report.Transitions)))
		return report, true, err
	}

	uc.countSweep("completed")
	if uc.metrics != nil {
		uc.metrics.SweepDuration.Observe(time.Since(start).Seconds())
		uc.metrics.BoostBumps.Add(float64(report.Bumped))
		uc.metrics.BoostExpired.Add(float64(report.Expired))
		uc.metrics.PresenceChange.WithLabelValues(string(domain.TransitionPresenceExpired)).Add(float64(report.PresenceExpired))
	}
	uc.logger.Info("Sweep pass completed",
		zap.Time("at", report.At),
		zap.Int("scanned", report.Scanned),
		zap.Int("bumped", report.Bumped),
		zap.Int("expired", report.Expired),
		zap.Int("presence_expired", report.PresenceExpired),
		zap.Int("conflicts", report.Conflicts))
	return report, true, nil
}

// keepLease renews the sweep lease every third of its TTL until the returned
// stop func is called, so a long pass keeps exclusive ownership.
func (uc *PromotionUsecase) keepLease(ctx context.Context) (stop func()) {
	if uc.leaseTTL <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(uc.leaseTTL / 3)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				held, err := uc.lease.Extend(ctx, uc.leaseTTL)
				if err != nil {
					uc.logger.Warn("Failed to extend sweep lease", zap.Error(err))
					continue
				}
				if !held {
					// Writes stay revision-checked, so an overlapping pass cannot clobber state.
					uc.logger.Warn("Sweep lease lost during pass")
					return
				}
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}

// persistTransitions writes each changed sub-object and publishes the transitions
// that were stored. A transition whose window changed in storage since it was
// loaded is dropped; the next pass re-evaluates the new state.
func (uc *PromotionUsecase) persistTransitions(ctx context.Context, listings []*domain.Listing, transitions []domain.Transition) ([]domain.Transition, int, error) {
	if len(transitions) == 0 {
		return nil, 0, nil
	}
	byID := make(map[string]*domain.Listing, len(listings))
	for _, l := range listings {
		if l != nil {
			byID[l.ID] = l
		}
	}

	var (
		errs      []error
		applied   []domain.Transition
		conflicts int
	)
	categories := map[domain.Category]struct{}{}
	for _, t := range transitions {
		l, ok := byID[t.ListingID]
		if !ok {
			continue
		}
		var err error
		switch t.Kind {
		case domain.TransitionBoostBumped, domain.TransitionBoostExpired:
			err = uc.repo.SaveBoost(ctx, l.ID, l.Boost.Snapshot())
		case domain.TransitionPresenceExpired:
			err = uc.repo.SavePresence(ctx, l.ID, l.Presence.Snapshot())
		}
		if errors.Is(err, domain.ErrConflict) {
			conflicts++
			uc.logger.Info("Skipped transition on concurrently changed listing",
				zap.String("listing_id", t.ListingID),
				zap.String("kind", string(t.Kind)))
			continue
		}
		if err != nil {
			uc.logger.Error("Failed to persist transition",
				zap.String("listing_id", t.ListingID),
				zap.String("kind", string(t.Kind)),
				zap.Error(err))
			errs = append(errs, wrapRepo("persist "+string(t.Kind), err))
			continue
		}
		applied = append(applied, t)
		categories[l.Category] = struct{}{}
		uc.publish(ctx, t)
	}
	for c := range categories {
		uc.invalidate(ctx, c)
	}
	return applied, conflicts, errors.Join(errs...)
}

func (uc *PromotionUsecase) publish(ctx context.Context, t domain.Transition) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.PublishTransition(ctx, t); err != nil {
		uc.logger.Warn("Failed to publish promotion event",
			zap.String("listing_id", t.ListingID),
			zap.String("kind", string(t.Kind)),
			zap.Error(err))
	}
}

func (uc *PromotionUsecase) invalidate(ctx context.Context, c domain.Category) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.InvalidateCategory(ctx, c); err != nil {
		uc.logger.Warn("Failed to invalidate listing cache", zap.String("category", string(c)), zap.Error(err))
	}
}

func (uc *PromotionUsecase) countSweep(outcome string) {
	if uc.metrics != nil {
		uc.metrics.SweepPasses.WithLabelValues(outcome).Inc()
	}
}
