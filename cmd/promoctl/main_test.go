package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/promotion"
)

func TestReasonsCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"reasons"})
	require.NoError(t, root.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(domain.Reasons())+1)
	assert.Contains(t, lines[1], "fraud_or_scam")
	assert.Contains(t, lines[1], "high")
	assert.Contains(t, lines[len(lines)-1], "other")
}

func TestStatusCmd_RequiresListingID(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"status"})
	assert.Error(t, root.Execute())
}

func TestPrintStatus(t *testing.T) {
	exp := time.Date(2025, 7, 3, 10, 0, 0, 0, time.UTC)
	var out bytes.Buffer
	printStatus(&out, promotion.PromotionStatus{
		ListingID:      "l-1",
		Tier:           domain.TierPremium,
		State:          domain.BoostActive,
		Plan:           domain.TierPremium,
		ExpiresAt:      &exp,
		DaysRemaining:  2,
		Countdown:      49 * time.Hour,
		Progress:       0.5,
		TotalBumps:     10,
		BumpsRemaining: 4,
	})
	s := out.String()
	assert.Contains(t, s, "premium")
	assert.Contains(t, s, "4 of 10 remaining")
	assert.Contains(t, s, "50%")
	assert.NotContains(t, s, "next bump")
}

func TestPrintSweepReport(t *testing.T) {
	var out bytes.Buffer
	printSweepReport(&out, promotion.SweepReport{
		At:      time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC),
		Scanned: 3,
		Bumped:  1,
		Transitions: []domain.Transition{
			{ListingID: "l-1", Kind: domain.TransitionBoostBumped},
		},
	}, true)
	assert.Contains(t, out.String(), "dry run")
	assert.Contains(t, out.String(), "l-1 boost_bumped")
	assert.NotContains(t, out.String(), "skipped")

	out.Reset()
	printSweepReport(&out, promotion.SweepReport{Scanned: 2, Conflicts: 2}, false)
	assert.Contains(t, out.String(), "skipped (changed concurrently): 2")
}
