package promotion

import (
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
)

// Purchase is a validated paid-plan event.
type Purchase struct {
	ListingID   string
	Plan        domain.Tier
	ActivatedAt time.Time
	ExpiresAt   time.Time
	TotalBumps  int
}

// PurchaseRequest is the wire form of a purchase as sent by billing.
type PurchaseRequest struct {
	ListingID   string `json:"listing_id"`
	Plan        string `json:"plan"`
	ActivatedAt string `json:"activated_at"`
	ExpiresAt   string `json:"expires_at"`
	TotalBumps  int    `json:"total_bumps"`
}

// ParsePurchase converts RFC 3339 timestamps and normalizes the plan name.
func ParsePurchase(req PurchaseRequest) (Purchase, error) {
	activated, err := parseTimestamp("activated_at", req.ActivatedAt)
	if err != nil {
		return Purchase{}, err
	}
	expires, err := parseTimestamp("expires_at", req.ExpiresAt)
	if err != nil {
		return Purchase{}, err
	}
	return Purchase{
		ListingID:   strings.TrimSpace(req.ListingID),
		Plan:        domain.NormalizeTier(req.Plan),
		ActivatedAt: activated,
		ExpiresAt:   expires,
		TotalBumps:  req.TotalBumps,
	}, nil
}

func parseTimestamp(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", domain.ErrInvalidTimestamp, field)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q: %v", domain.ErrInvalidTimestamp, field, raw, err)
	}
	return t.UTC(), nil
}

// Validate checks the purchase without touching any listing.
func (p Purchase) Validate() error {
	if p.ActivatedAt.IsZero() || p.ExpiresAt.IsZero() {
		return fmt.Errorf("%w: activation and expiration are required", domain.ErrInvalidTimestamp)
	}
	if !p.ExpiresAt.After(p.ActivatedAt) {
		return fmt.Errorf("%w: expiration %s is not after activation %s",
			domain.ErrInvalidWindow, p.ExpiresAt.Format(time.RFC3339), p.ActivatedAt.Format(time.RFC3339))
	}
	if p.TotalBumps < 1 {
		return fmt.Errorf("%w: total bumps must be at least 1, got %d", domain.ErrInvalidWindow, p.TotalBumps)
	}
	if p.Plan == "" || p.Plan == domain.TierNone {
		return fmt.Errorf("%w: purchase must name a paid plan", domain.ErrValidation)
	}
	return nil
}

// Activate starts a new boost window on l, replacing any previous one.
// The first bump is scheduled one interval after activation if that falls before expiration.
func (m *Manager) Activate(l *domain.Listing, p Purchase) (domain.BoostSnapshot, error) {
	if l == nil || l.Boost == nil {
		return domain.BoostSnapshot{}, fmt.Errorf("%w: listing %q", domain.ErrNotFound, p.ListingID)
	}
	if err := p.Validate(); err != nil {
		return domain.BoostSnapshot{}, err
	}

	fresh := domain.BoostSnapshot{
		State:          domain.BoostActive,
		Plan:           p.Plan,
		ActivatedAt:    p.ActivatedAt,
		ExpiresAt:      p.ExpiresAt,
		TotalBumps:     p.TotalBumps,
		BumpsRemaining: p.TotalBumps,
	}
	if next := p.ActivatedAt.Add(m.cfg.BumpInterval); next.Before(p.ExpiresAt) {
		fresh.NextBumpAt = &next
	}
	if err := fresh.Validate(); err != nil {
		return domain.BoostSnapshot{}, err
	}

	snap, _ := l.Boost.Transition(func(s *domain.BoostSnapshot) bool {
		fresh.Revision = s.Revision
		*s = fresh
		return true
	})
	return snap, nil
}
