// Package promotion owns the lifecycle of boost windows and presence flags.
//
// Every time-dependent decision reads the injected clock, and every mutation
// goes through the per-listing Transition of the window or flag, so readers
// never observe a half-applied change.
package promotion

import (
	"math"
	"time"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/clock"
)

const (
	DefaultBumpInterval     = 72 * time.Hour
	DefaultSweepConcurrency = 8

	day = 24 * time.Hour
)

// Config holds the product constants of the lifecycle.
type Config struct {
	BumpInterval time.Duration
	// PresenceDuration of zero means presence lasts until the end of the current day.
	PresenceDuration time.Duration
	SweepConcurrency int
}

func (c Config) withDefaults() Config {
	if c.BumpInterval <= 0 {
		c.BumpInterval = DefaultBumpInterval
	}
	if c.PresenceDuration < 0 {
		c.PresenceDuration = 0
	}
	if c.SweepConcurrency <= 0 {
		c.SweepConcurrency = DefaultSweepConcurrency
	}
	return c
}

type Manager struct {
	clock clock.Clock
	cfg   Config
}

func NewManager(c clock.Clock, cfg Config) *Manager {
	return &Manager{clock: c, cfg: cfg.withDefaults()}
}

func (m *Manager) Config() Config { return m.cfg }

func (m *Manager) Now() time.Time { return m.clock.Now() }

// EffectiveTier derives the tier from the current window state and clock.
// An absent, expired or past-expiration window yields none regardless of the stored plan.
func (m *Manager) EffectiveTier(l *domain.Listing) domain.Tier {
	if l == nil {
		return domain.TierNone
	}
	return effectiveTier(l.Boost.Snapshot(), m.clock.Now())
}

func effectiveTier(s domain.BoostSnapshot, now time.Time) domain.Tier {
	if s.State != domain.BoostActive || !now.Before(s.ExpiresAt) {
		return domain.TierNone
	}
	switch {
	case s.Plan == "" || s.Plan == domain.TierNone:
		return domain.TierNone
	case !s.Plan.IsKnown():
		return domain.TierBasic
	}
	return s.Plan
}

// DaysRemaining is ceil((expiration - now) / 1 day), never negative.
func (m *Manager) DaysRemaining(l *domain.Listing) int {
	if l == nil {
		return 0
	}
	return daysRemaining(l.Boost.Snapshot(), m.clock.Now())
}

func daysRemaining(s domain.BoostSnapshot, now time.Time) int {
	left := countdown(s, now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(float64(left) / float64(day)))
}

// Countdown is the display value expiration - now, floored at zero.
func (m *Manager) Countdown(l *domain.Listing) time.Duration {
	if l == nil {
		return 0
	}
	return countdown(l.Boost.Snapshot(), m.clock.Now())
}

func countdown(s domain.BoostSnapshot, now time.Time) time.Duration {
	if s.State != domain.BoostActive {
		return 0
	}
	left := s.ExpiresAt.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Progress is daysRemaining / (totalBumps * intervalDays), clamped to [0, 1].
func (m *Manager) Progress(l *domain.Listing) float64 {
	if l == nil {
		return 0
	}
	return m.progress(l.Boost.Snapshot(), m.clock.Now())
}

func (m *Manager) progress(s domain.BoostSnapshot, now time.Time) float64 {
	span := float64(s.TotalBumps) * m.cfg.BumpInterval.Hours() / 24
	if span <= 0 {
		return 0
	}
	p := float64(daysRemaining(s, now)) / span
	return math.Max(0, math.Min(1, p))
}
