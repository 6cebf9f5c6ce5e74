package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
)

func TestToDomainListing_AttachesEmptyPromotionState(t *testing.T) {
	l := toDomainListing(&listingDocument{Category: "vehicle", Title: "Sedan"})
	require.NotNil(t, l.Boost)
	require.NotNil(t, l.Presence)
	assert.Equal(t, domain.BoostAbsent, l.Boost.Snapshot().State)
	assert.False(t, l.Presence.Snapshot().Active)
	assert.NotNil(t, l.Attributes)
}

func TestToDomainListing_CarriesRevisions(t *testing.T) {
	l := toDomainListing(&listingDocument{
		Category:         "vehicle",
		Boost:            &boostDocument{State: "active", Plan: "basic"},
		BoostRevision:    4,
		PresenceRevision: 2,
	})
	assert.Equal(t, int64(4), l.Boost.Snapshot().Revision)
	assert.Equal(t, int64(2), l.Presence.Snapshot().Revision)
}

func TestRevisionFilter(t *testing.T) {
	assert.Equal(t, int64(3), revisionFilter(3))
	assert.Equal(t, bson.M{"$in": bson.A{int64(0), nil}}, revisionFilter(0))
}

func TestBoostDocument_PreservesNextBump(t *testing.T) {
	at := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	next := at.Add(72 * time.Hour)
	snap := domain.BoostSnapshot{
		State:          domain.BoostActive,
		Plan:           domain.TierBasic,
		ActivatedAt:    at,
		ExpiresAt:      at.Add(7 * 24 * time.Hour),
		TotalBumps:     2,
		BumpsRemaining: 1,
		NextBumpAt:     &next,
	}
	doc := toBoostDocument(snap)
	require.NotNil(t, doc)

	back := doc.toSnapshot()
	assert.Equal(t, snap.State, back.State)
	assert.Equal(t, snap.BumpsRemaining, back.BumpsRemaining)
	require.NotNil(t, back.NextBumpAt)
	assert.True(t, back.NextBumpAt.Equal(next))

	assert.Nil(t, toBoostDocument(domain.BoostSnapshot{}))
}

func TestToListingDocument_RejectsNonHexID(t *testing.T) {
	_, err := toListingDocument(&domain.Listing{ID: "listing-1"})
	assert.Error(t, err)
}

func TestReportDocument_Converts(t *testing.T) {
	at := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	r := &domain.Report{
		ID: "r-1", TargetType: domain.TargetUser, TargetID: "u-1", Reason: domain.ReasonOther,
		Severity: domain.SeverityMedium, Status: domain.ReportStatusResolved,
		Resolution: domain.ResolutionDismissed, ResolvedBy: "mod", CreatedAt: at, ResolvedAt: &at,
	}
	back := fromDomainReport(r).toDomainReport()
	assert.Equal(t, r.Resolution, back.Resolution)
	assert.Equal(t, r.TargetType, back.TargetType)
	require.NotNil(t, back.ResolvedAt)
	assert.True(t, back.ResolvedAt.Equal(at))
}
