package promotion

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
)

// SweepReport summarizes one sweep pass.
type SweepReport struct {
	At              time.Time
	Scanned         int
	Bumped          int
	Expired         int
	PresenceExpired int
	// Conflicts counts transitions dropped because the stored state changed during the pass.
	Conflicts       int
	Transitions     []domain.Transition
}

// Applied returns a copy of r that counts only the given transitions.
func (r SweepReport) Applied(ts []domain.Transition, conflicts int) SweepReport {
	out := SweepReport{At: r.At, Scanned: r.Scanned, Conflicts: conflicts}
	out.add(ts)
	return out
}

func (r *SweepReport) add(ts []domain.Transition) {
	for _, t := range ts {
		switch t.Kind {
		case domain.TransitionBoostBumped:
			r.Bumped++
		case domain.TransitionBoostExpired:
			r.Expired++
		case domain.TransitionPresenceExpired:
			r.PresenceExpired++
		}
	}
	r.Transitions = append(r.Transitions, ts...)
}

// SweepListing applies the due transitions of one listing at the current instant.
func (m *Manager) SweepListing(l *domain.Listing) []domain.Transition {
	return m.sweepAt(l, m.clock.Now())
}

// Sweep applies due transitions to every listing. All listings are evaluated
// against a single instant, so repeating a pass at that instant changes nothing.
// Listings are processed concurrently, each under its own window lock.
// On cancellation the report covers the listings already swept.
func (m *Manager) Sweep(ctx context.Context, listings []*domain.Listing) (SweepReport, error) {
	now := m.clock.Now()
	results := make([][]domain.Transition, len(listings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.SweepConcurrency)
	for i, l := range listings {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = m.sweepAt(l, now)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	report := SweepReport{At: now, Scanned: len(listings)}
	for _, ts := range results {
		report.add(ts)
	}
	return report, err
}

func (m *Manager) sweepAt(l *domain.Listing, now time.Time) []domain.Transition {
	if l == nil {
		return nil
	}
	var out []domain.Transition
	if t, ok := m.sweepBoost(l, now); ok {
		out = append(out, t)
	}
	if t, ok := sweepPresence(l, now); ok {
		out = append(out, t)
	}
	return out
}

func (m *Manager) sweepBoost(l *domain.Listing, now time.Time) (domain.Transition, bool) {
	if l.Boost == nil {
		return domain.Transition{}, false
	}
	var kind domain.TransitionKind
	snap, changed := l.Boost.Transition(func(s *domain.BoostSnapshot) bool {
		if s.State != domain.BoostActive {
			return false
		}
		if !now.Before(s.ExpiresAt) {
			s.State = domain.BoostExpired
			s.NextBumpAt = nil
			kind = domain.TransitionBoostExpired
			return true
		}
		if s.BumpsRemaining <= 0 || s.NextBumpAt == nil || now.Before(*s.NextBumpAt) {
			return false
		}
		s.BumpsRemaining--
		s.NextBumpAt = nil
		if s.BumpsRemaining > 0 {
			if next := now.Add(m.cfg.BumpInterval); next.Before(s.ExpiresAt) {
				s.NextBumpAt = &next
			}
		}
		kind = domain.TransitionBoostBumped
		return true
	})
	if !changed {
		return domain.Transition{}, false
	}
	return domain.Transition{
		ListingID:      l.ID,
		Kind:           kind,
		At:             now,
		Plan:           snap.Plan,
		BumpsRemaining: snap.BumpsRemaining,
		NextBumpAt:     snap.NextBumpAt,
		ExpiresAt:      snap.ExpiresAt,
	}, true
}

func sweepPresence(l *domain.Listing, now time.Time) (domain.Transition, bool) {
	if l.Presence == nil {
		return domain.Transition{}, false
	}
	var expiredAt time.Time
	_, changed := l.Presence.Transition(func(s *domain.PresenceSnapshot) bool {
		if !s.Active || s.ActiveAt(now) {
			return false
		}
		expiredAt = s.ExpiresAt
		s.Active = false
		s.ExpiresAt = time.Time{}
		return true
	})
	if !changed {
		return domain.Transition{}, false
	}
	return domain.Transition{
		ListingID: l.ID,
		Kind:      domain.TransitionPresenceExpired,
		At:        now,
		ExpiresAt: expiredAt,
	}, true
}
