package promotion

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
)

// PromotionStatus is the read model rendered by presentation layers.
// All values are derived from one snapshot at one instant.
type PromotionStatus struct {
	ListingID         string            `json:"listing_id"`
	Tier              domain.Tier       `json:"tier"`
	State             domain.BoostState `json:"state,omitempty"`
	Plan              domain.Tier       `json:"plan,omitempty"`
	ExpiresAt         *time.Time        `json:"expires_at,omitempty"`
	DaysRemaining     int               `json:"days_remaining"`
	Countdown         time.Duration     `json:"-"`
	CountdownSeconds  int64             `json:"countdown_seconds"`
	Progress          float64           `json:"progress"`
	TotalBumps        int               `json:"total_bumps"`
	BumpsRemaining    int               `json:"bumps_remaining"`
	NextBumpAt        *time.Time        `json:"next_bump_at,omitempty"`
	PresenceActive    bool              `json:"presence_active"`
	PresenceExpiresAt *time.Time        `json:"presence_expires_at,omitempty"`
	EvaluatedAt       time.Time         `json:"evaluated_at"`
}

func (m *Manager) Status(l *domain.Listing) PromotionStatus {
	now := m.clock.Now()
	if l == nil {
		return PromotionStatus{Tier: domain.TierNone, EvaluatedAt: now}
	}
	b := l.Boost.Snapshot()
	p := l.Presence.Snapshot()

	st := PromotionStatus{
		ListingID:      l.ID,
		Tier:           effectiveTier(b, now),
		State:          b.State,
		Plan:           b.Plan,
		DaysRemaining:  daysRemaining(b, now),
		Countdown:      countdown(b, now),
		Progress:       m.progress(b, now),
		TotalBumps:     b.TotalBumps,
		BumpsRemaining: b.BumpsRemaining,
		NextBumpAt:     b.NextBumpAt,
		PresenceActive: p.ActiveAt(now),
		EvaluatedAt:    now,
	}
	st.CountdownSeconds = int64(st.Countdown / time.Second)
	if !b.ExpiresAt.IsZero() {
		exp := b.ExpiresAt
		st.ExpiresAt = &exp
	}
	if st.PresenceActive {
		exp := p.ExpiresAt
		st.PresenceExpiresAt = &exp
	}
	return st
}
