package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Real-Estate ")
	require.NoError(t, err)
	assert.Equal(t, CategoryRealEstate, c)

	_, err = ParseCategory("boats")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewListing_Validation(t *testing.T) {
	_, err := NewListing("", CategoryVehicle, "x", 1)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = NewListing("l-1", "boats", "x", 1)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = NewListing("l-1", CategoryVehicle, "x", -1)
	assert.ErrorIs(t, err, ErrValidation)

	l, err := NewListing("l-1", CategoryVehicle, "x", 0)
	require.NoError(t, err)
	assert.NotNil(t, l.Boost)
	assert.NotNil(t, l.Presence)
	_, ok := l.Attribute("features")
	assert.False(t, ok)
}

func TestTierPriority(t *testing.T) {
	assert.Greater(t, TierPremium.Priority(), TierAdvanced.Priority())
	assert.Greater(t, TierAdvanced.Priority(), TierBasic.Priority())
	assert.Greater(t, TierBasic.Priority(), TierNone.Priority())
	assert.Equal(t, TierBasic.Priority(), Tier("gold").Priority())
	assert.Equal(t, TierNone, NormalizeTier("  "))
	assert.Equal(t, TierPremium, NormalizeTier(" PREMIUM "))
}

func TestParseReason(t *testing.T) {
	r, err := ParseReason("already_sold")
	require.NoError(t, err)
	assert.Equal(t, ReasonAlreadySold, r)
	assert.Equal(t, SeverityMedium, SeverityFor(r))
	assert.Equal(t, SeverityHigh, SeverityFor(ReasonInappropriateContent))

	_, err = ParseReason("spam")
	assert.ErrorIs(t, err, ErrUnknownReason)
}

func TestReasons_LabelsAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range Reasons() {
		label := r.Label()
		assert.NotEqual(t, string(r), label)
		assert.False(t, seen[label], label)
		seen[label] = true
	}
	assert.Len(t, seen, 7)
}

func TestReport_ResolveIsTerminal(t *testing.T) {
	at := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	r := &Report{ID: "r-1", Reason: ReasonOther, Severity: SeverityMedium, Status: ReportStatusPending}
	assert.True(t, r.SeverityConsistent())

	require.NoError(t, r.Resolve(ResolutionDismissed, "mod-1", at))
	assert.Equal(t, ReportStatusResolved, r.Status)
	require.NotNil(t, r.ResolvedAt)

	err := r.Resolve(ResolutionApproved, "mod-2", at)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, ResolutionDismissed, r.Resolution)
}

func TestBoostSnapshot_Validate(t *testing.T) {
	at := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	valid := BoostSnapshot{State: BoostActive, Plan: TierBasic, ActivatedAt: at, ExpiresAt: at.Add(time.Hour), TotalBumps: 1, BumpsRemaining: 1}
	assert.NoError(t, valid.Validate())
	assert.NoError(t, BoostSnapshot{}.Validate())

	same := valid
	same.ExpiresAt = at
	assert.ErrorIs(t, same.Validate(), ErrInvalidWindow)

	missing := valid
	missing.ActivatedAt = time.Time{}
	assert.ErrorIs(t, missing.Validate(), ErrInvalidTimestamp)

	over := valid
	over.BumpsRemaining = 2
	assert.ErrorIs(t, over.Validate(), ErrInvalidWindow)
}

func TestBoostWindow_TransitionCommitsOnlyOnTrue(t *testing.T) {
	w := NewBoostWindow(BoostSnapshot{State: BoostActive, TotalBumps: 3, BumpsRemaining: 3})

	_, changed := w.Transition(func(s *BoostSnapshot) bool {
		s.BumpsRemaining = 0
		return false
	})
	assert.False(t, changed)
	assert.Equal(t, 3, w.Snapshot().BumpsRemaining)

	next, changed := w.Transition(func(s *BoostSnapshot) bool {
		s.BumpsRemaining--
		return true
	})
	assert.True(t, changed)
	assert.Equal(t, 2, next.BumpsRemaining)
	assert.Equal(t, 2, w.Snapshot().BumpsRemaining)
}

func TestBoostWindow_SnapshotIsDetached(t *testing.T) {
	next := time.Date(2025, 7, 4, 10, 0, 0, 0, time.UTC)
	w := NewBoostWindow(BoostSnapshot{State: BoostActive, NextBumpAt: &next})

	s := w.Snapshot()
	*s.NextBumpAt = s.NextBumpAt.Add(time.Hour)
	assert.True(t, w.Snapshot().NextBumpAt.Equal(next))
}

func TestPresenceSnapshot_ActiveAt(t *testing.T) {
	at := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	p := PresenceSnapshot{Active: true, ExpiresAt: at.Add(time.Hour)}
	assert.True(t, p.ActiveAt(at))
	assert.False(t, p.ActiveAt(at.Add(time.Hour)))
	assert.False(t, PresenceSnapshot{Active: true}.ActiveAt(at))
}
