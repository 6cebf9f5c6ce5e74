package promotion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/clock"
)

var t0 = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func newTestManager(now time.Time) (*Manager, *clock.Manual) {
	c := clock.NewManual(now)
	return NewManager(c, Config{BumpInterval: DefaultBumpInterval}), c
}

func newTestListing(t *testing.T, id string) *domain.Listing {
	t.Helper()
	l, err := domain.NewListing(id, domain.CategoryVehicle, "listing "+id, 1000)
	require.NoError(t, err)
	return l
}

func purchase(plan domain.Tier, activated time.Time, d time.Duration, bumps int) Purchase {
	return Purchase{Plan: plan, ActivatedAt: activated, ExpiresAt: activated.Add(d), TotalBumps: bumps}
}

func TestActivate_SchedulesFirstBump(t *testing.T) {
	m, _ := newTestManager(t0)
	l := newTestListing(t, "1")

	snap, err := m.Activate(l, purchase(domain.TierPremium, t0, 30*day, 5))
	require.NoError(t, err)

	assert.Equal(t, domain.BoostActive, snap.State)
	assert.Equal(t, 5, snap.BumpsRemaining)
	require.NotNil(t, snap.NextBumpAt)
	assert.Equal(t, t0.Add(72*time.Hour), *snap.NextBumpAt)
	assert.Equal(t, domain.TierPremium, m.EffectiveTier(l))
}

func TestActivate_ShortWindowHasNoBump(t *testing.T) {
	m, _ := newTestManager(t0)
	l := newTestListing(t, "1")

	snap, err := m.Activate(l, purchase(domain.TierBasic, t0, 2*day, 1))
	require.NoError(t, err)
	assert.Nil(t, snap.NextBumpAt)
}

func TestActivate_Errors(t *testing.T) {
	m, _ := newTestManager(t0)

	tests := []struct {
		name string
		p    Purchase
		want error
	}{
		{"expiration equals activation", purchase(domain.TierBasic, t0, 0, 1), domain.ErrInvalidWindow},
		{"expiration before activation", purchase(domain.TierBasic, t0, -time.Hour, 1), domain.ErrInvalidWindow},
		{"no bumps", purchase(domain.TierBasic, t0, day, 0), domain.ErrInvalidWindow},
		{"zero activation", Purchase{Plan: domain.TierBasic, ExpiresAt: t0, TotalBumps: 1}, domain.ErrInvalidTimestamp},
		{"no plan", purchase(domain.TierNone, t0, day, 1), domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestListing(t, "1")
			_, err := m.Activate(l, tt.p)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, domain.BoostAbsent, l.Boost.Snapshot().State, "failed purchase must not touch the window")
		})
	}

	_, err := m.Activate(nil, purchase(domain.TierBasic, t0, day, 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestActivate_ReplacesPreviousWindow(t *testing.T) {
	m, _ := newTestManager(t0)
	l := newTestListing(t, "1")

	_, err := m.Activate(l, purchase(domain.TierPremium, t0, 30*day, 5))
	require.NoError(t, err)
	_, err = m.Activate(l, purchase(domain.TierBasic, t0, 7*day, 1))
	require.NoError(t, err)

	snap := l.Boost.Snapshot()
	assert.Equal(t, domain.TierBasic, snap.Plan)
	assert.Equal(t, 1, snap.TotalBumps)
}

func TestActivate_KeepsLoadedRevision(t *testing.T) {
	m, _ := newTestManager(t0)
	l := newTestListing(t, "1")
	l.Boost = domain.NewBoostWindow(domain.BoostSnapshot{
		State:          domain.BoostExpired,
		Plan:           domain.TierBasic,
		ActivatedAt:    t0.Add(-10 * day),
		ExpiresAt:      t0.Add(-day),
		TotalBumps:     1,
		BumpsRemaining: 0,
		Revision:       7,
	})

	snap, err := m.Activate(l, purchase(domain.TierPremium, t0, 30*day, 5))
	require.NoError(t, err)
	assert.Equal(t, int64(7), snap.Revision)
	assert.Equal(t, domain.TierPremium, snap.Plan)
}

func TestParsePurchase(t *testing.T) {
	p, err := ParsePurchase(PurchaseRequest{
		ListingID:   " 42 ",
		Plan:        "Premium",
		ActivatedAt: "2025-03-10T09:30:00Z",
		ExpiresAt:   "2025-04-09T09:30:00+02:00",
		TotalBumps:  3,
	})
	require.NoError(t, err)
	assert.Equal(t, "42", p.ListingID)
	assert.Equal(t, domain.TierPremium, p.Plan)
	assert.Equal(t, t0, p.ActivatedAt)
	assert.Equal(t, time.UTC, p.ExpiresAt.Location())

	_, err = ParsePurchase(PurchaseRequest{ActivatedAt: "yesterday", ExpiresAt: "2025-04-09T09:30:00Z"})
	assert.ErrorIs(t, err, domain.ErrInvalidTimestamp)

	_, err = ParsePurchase(PurchaseRequest{ActivatedAt: "2025-03-10T09:30:00Z"})
	assert.ErrorIs(t, err, domain.ErrInvalidTimestamp)
}

func TestEffectiveTier_ExpiredButNotSwept(t *testing.T) {
	m, c := newTestManager(t0)
	l := newTestListing(t, "1")
	_, err := m.Activate(l, purchase(domain.TierPremium, t0, day, 1))
	require.NoError(t, err)

	c.Advance(day + time.Second)

	assert.Equal(t, domain.TierPremium, l.Boost.Snapshot().Plan, "stored plan is untouched")
	assert.Equal(t, domain.BoostActive, l.Boost.Snapshot().State)
	assert.Equal(t, domain.TierNone, m.EffectiveTier(l))
}

func TestEffectiveTier_AbsentAndUnknownPlans(t *testing.T) {
	m, _ := newTestManager(t0)

	assert.Equal(t, domain.TierNone, m.EffectiveTier(newTestListing(t, "1")))
	assert.Equal(t, domain.TierNone, m.EffectiveTier(nil))

	l := newTestListing(t, "2")
	l.Boost = domain.NewBoostWindow(domain.BoostSnapshot{
		State: domain.BoostActive, Plan: domain.Tier("gold"),
		ActivatedAt: t0, ExpiresAt: t0.Add(day), TotalBumps: 1, BumpsRemaining: 1,
	})
	assert.Equal(t, domain.TierBasic, m.EffectiveTier(l))
}

func TestDaysRemaining(t *testing.T) {
	m, c := newTestManager(t0)
	l := newTestListing(t, "1")
	_, err := m.Activate(l, purchase(domain.TierBasic, t0, 25*time.Hour, 1))
	require.NoError(t, err)

	assert.Equal(t, 2, m.DaysRemaining(l))

	c.Advance(time.Hour)
	assert.Equal(t, 1, m.DaysRemaining(l))

	c.Advance(48 * time.Hour)
	assert.Equal(t, 0, m.DaysRemaining(l))
	assert.Equal(t, time.Duration(0), m.Countdown(l))
}

func TestProgress(t *testing.T) {
	m, c := newTestManager(t0)
	l := newTestListing(t, "1")
	// 2 bumps at 3 days each spans 6 days.
	_, err := m.Activate(l, purchase(domain.TierAdvanced, t0, 6*day, 2))
	require.NoError(t, err)

	assert.InDelta(t, 1.0, m.Progress(l), 1e-9)

	c.Advance(3 * day)
	assert.InDelta(t, 0.5, m.Progress(l), 1e-9)

	c.Advance(10 * day)
	assert.InDelta(t, 0.0, m.Progress(l), 1e-9)
}

func TestStatus_ConsistentReadModel(t *testing.T) {
	m, c := newTestManager(t0)
	l := newTestListing(t, "1")
	_, err := m.Activate(l, purchase(domain.TierPremium, t0, 10*day, 3))
	require.NoError(t, err)
	_, err = m.ActivatePresence(l)
	require.NoError(t, err)

	c.Advance(12 * time.Hour)
	st := m.Status(l)

	assert.Equal(t, "1", st.ListingID)
	assert.Equal(t, domain.TierPremium, st.Tier)
	assert.Equal(t, 10, st.DaysRemaining)
	assert.Equal(t, int64((10*day-12*time.Hour)/time.Second), st.CountdownSeconds)
	assert.Equal(t, 3, st.BumpsRemaining)
	assert.True(t, st.PresenceActive)
	require.NotNil(t, st.PresenceExpiresAt)
	assert.Equal(t, c.Now(), st.EvaluatedAt)
}
