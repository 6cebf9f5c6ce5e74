package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/clock"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/promotion"
)

type promoDeps struct {
	repo  *MockListingRepository
	cache *MockListingCache
	pub   *MockEventPublisher
	lease *MockSweepLease
	clock *clock.Manual
	uc    *PromotionUsecase
}

func newPromoDeps() *promoDeps {
	d := &promoDeps{
		repo:  new(MockListingRepository),
		cache: new(MockListingCache),
		pub:   new(MockEventPublisher),
		lease: new(MockSweepLease),
		clock: clock.NewManual(now),
	}
	manager := promotion.NewManager(d.clock, promotion.Config{})
	d.uc = NewPromotionUsecase(d.repo, d.cache, d.pub, d.lease, 30*time.Second, manager, metrics.NewMetricsManager("test"), logger.NewNop())
	return d
}

func TestPurchaseBoost(t *testing.T) {
	d := newPromoDeps()
	l := vehicleListing(t, "1", 100)
	d.repo.On("FindByID", mock.Anything, "1").Return(l, nil)
	d.repo.On("SaveBoost", mock.Anything, "1", mock.MatchedBy(func(s domain.BoostSnapshot) bool {
		return s.State == domain.BoostActive && s.Plan == domain.TierAdvanced && s.BumpsRemaining == 4
	})).Return(nil).Once()
	d.cache.On("InvalidateCategory", mock.Anything, domain.CategoryVehicle).Return(nil).Once()
	d.pub.On("PublishTransition", mock.Anything, mock.MatchedBy(func(tr domain.Transition) bool {
		return tr.Kind == domain.TransitionBoostActivated && tr.ListingID == "1"
	})).Return(nil).Once()

	st, err := d.uc.PurchaseBoost(context.Background(), promotion.PurchaseRequest{
		ListingID:   "1",
		Plan:        "advanced",
		ActivatedAt: now.Format(time.RFC3339),
		ExpiresAt:   now.Add(20 * 24 * time.Hour).Format(time.RFC3339),
		TotalBumps:  4,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TierAdvanced, st.Tier)
	assert.Equal(t, 20, st.DaysRemaining)

	d.repo.AssertExpectations(t)
	d.cache.AssertExpectations(t)
	d.pub.AssertExpectations(t)
}

func TestPurchaseBoost_Errors(t *testing.T) {
	d := newPromoDeps()
	d.repo.On("FindByID", mock.Anything, "missing").Return(nil, domain.ErrNotFound)
	d.repo.On("FindByID", mock.Anything, "1").Return(vehicleListing(t, "1", 1), nil)

	_, err := d.uc.PurchaseBoost(context.Background(), promotion.PurchaseRequest{
		ListingID: "missing", Plan: "basic", TotalBumps: 1,
		ActivatedAt: now.Format(time.RFC3339), ExpiresAt: now.Add(time.Hour).Format(time.RFC3339),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = d.uc.PurchaseBoost(context.Background(), promotion.PurchaseRequest{
		ListingID: "1", Plan: "basic", TotalBumps: 1,
		ActivatedAt: now.Format(time.RFC3339), ExpiresAt: now.Format(time.RFC3339),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)

	_, err = d.uc.PurchaseBoost(context.Background(), promotion.PurchaseRequest{ListingID: "1", Plan: "basic", ActivatedAt: "soon"})
	assert.ErrorIs(t, err, domain.ErrInvalidTimestamp)

	d.repo.AssertNotCalled(t, "SaveBoost", mock.Anything, mock.Anything, mock.Anything)
}

func TestTogglePresence_OwnerOnly(t *testing.T) {
	d := newPromoDeps()
	l := vehicleListing(t, "1", 1)
	d.repo.On("FindByID", mock.Anything, "1").Return(l, nil)

	_, err := d.uc.TogglePresence(context.Background(), "1", "someone-else")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.False(t, l.Presence.Snapshot().Active)

	d.repo.On("SavePresence", mock.Anything, "1", mock.MatchedBy(func(p domain.PresenceSnapshot) bool { return p.Active })).Return(nil).Once()
	d.cache.On("InvalidateCategory", mock.Anything, domain.CategoryVehicle).Return(nil)
	d.pub.On("PublishTransition", mock.Anything, mock.Anything).Return(errors.New("nats unavailable"))

	st, err := d.uc.TogglePresence(context.Background(), "1", l.OwnerID)
	require.NoError(t, err, "publish failures are logged only")
	assert.True(t, st.PresenceActive)
	d.repo.AssertExpectations(t)
}

func TestSetPresence_SaveFailure(t *testing.T) {
	d := newPromoDeps()
	l := vehicleListing(t, "1", 1)
	d.repo.On("FindByID", mock.Anything, "1").Return(l, nil)
	d.repo.On("SavePresence", mock.Anything, "1", mock.Anything).Return(errors.New("write conflict"))

	_, err := d.uc.SetPresence(context.Background(), "1", l.OwnerID, true)
	assert.ErrorIs(t, err, domain.ErrRepository)
}

func TestRunSweep_LeaseHeldElsewhere(t *testing.T) {
	d := newPromoDeps()
	d.lease.On("Acquire", mock.Anything, 30*time.Second).Return(false, nil)

	_, ran, err := d.uc.RunSweep(context.Background())
	require.NoError(t, err)
	assert.False(t, ran)
	d.repo.AssertNotCalled(t, "FindPromoted", mock.Anything)
}

func TestRunSweep_RenewsLeaseDuringLongPass(t *testing.T) {
	d := newPromoDeps()
	ttl := 30 * time.Millisecond
	d.uc = NewPromotionUsecase(d.repo, d.cache, d.pub, d.lease, ttl, promotion.NewManager(d.clock, promotion.Config{}), nil, logger.NewNop())

	d.lease.On("Acquire", mock.Anything, ttl).Return(true, nil).Once()
	d.lease.On("Extend", mock.Anything, ttl).Return(true, nil)
	d.lease.On("Release", mock.Anything).Return(nil).Once()
	d.repo.On("FindPromoted", mock.Anything).
		Run(func(mock.Arguments) { time.Sleep(100 * time.Millisecond) }).
		Return([]*domain.Listing{}, nil)

	_, ran, err := d.uc.RunSweep(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
	d.lease.AssertCalled(t, "Extend", mock.Anything, ttl)
	d.lease.AssertExpectations(t)

	// No renewals once the pass has returned and the lease is released.
	calls := len(d.lease.Calls)
	time.Sleep(60 * time.Millisecond)
	assert.Len(t, d.lease.Calls, calls)
}

func TestRunSweep_PersistsAndPublishes(t *testing.T) {
	d := newPromoDeps()
	manager := promotion.NewManager(d.clock, promotion.Config{})

	bumping := vehicleListing(t, "bump", 1)
	_, err := manager.Activate(bumping, promotion.Purchase{Plan: domain.TierPremium, ActivatedAt: now, ExpiresAt: now.Add(30 * 24 * time.Hour), TotalBumps: 2})
	require.NoError(t, err)
	expiring := vehicleListing(t, "exp", 1)
	_, err = manager.Activate(expiring, promotion.Purchase{Plan: domain.TierBasic, ActivatedAt: now, ExpiresAt: now.Add(24 * time.Hour), TotalBumps: 1})
	require.NoError(t, err)
	d.clock.Advance(72 * time.Hour)

	d.lease.On("Acquire", mock.Anything, 30*time.Second).Return(true, nil).Once()
	d.lease.On("Release", mock.Anything).Return(nil).Once()
	d.repo.On("FindPromoted", mock.Anything).Return([]*domain.Listing{bumping, expiring}, nil)
	d.repo.On("SaveBoost", mock.Anything, "bump", mock.MatchedBy(func(s domain.BoostSnapshot) bool { return s.BumpsRemaining == 1 })).Return(nil).Once()
	d.repo.On("SaveBoost", mock.Anything, "exp", mock.MatchedBy(func(s domain.BoostSnapshot) bool { return s.State == domain.BoostExpired })).Return(nil).Once()
	d.pub.On("PublishTransition", mock.Anything, mock.Anything).Return(nil).Twice()
	d.cache.On("InvalidateCategory", mock.Anything, domain.CategoryVehicle).Return(nil).Once()

	report, ran, err := d.uc.RunSweep(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 1, report.Bumped)
	assert.Equal(t, 1, report.Expired)

	d.lease.AssertExpectations(t)
	d.repo.AssertExpectations(t)
	d.pub.AssertExpectations(t)
	d.cache.AssertExpectations(t)
}

func TestRunSweep_PersistFailureIsReported(t *testing.T) {
	d := newPromoDeps()
	manager := promotion.NewManager(d.clock, promotion.Config{})
	l := vehicleListing(t, "exp", 1)
	_, err := manager.Activate(l, promotion.Purchase{Plan: domain.TierBasic, ActivatedAt: now, ExpiresAt: now.Add(time.Hour), TotalBumps: 1})
	require.NoError(t, err)
	d.clock.Advance(2 * time.Hour)

	d.lease.On("Acquire", mock.Anything, mock.Anything).Return(true, nil)
	d.lease.On("Release", mock.Anything).Return(nil)
	d.repo.On("FindPromoted", mock.Anything).Return([]*domain.Listing{l}, nil)
	d.repo.On("SaveBoost", mock.Anything, "exp", mock.Anything).Return(errors.New("timeout"))

	_, ran, err := d.uc.RunSweep(context.Background())
	assert.True(t, ran)
	assert.ErrorIs(t, err, domain.ErrRepository)
	d.pub.AssertNotCalled(t, "PublishTransition", mock.Anything, mock.Anything)
}
