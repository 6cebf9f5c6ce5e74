package promotion

import (
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
)

// PresenceActive applies the lazy expiry rule, so a flag past its expiration
// reads inactive even before a sweep clears it.
func (m *Manager) PresenceActive(l *domain.Listing) bool {
	if l == nil {
		return false
	}
	return l.Presence.Snapshot().ActiveAt(m.clock.Now())
}

// ActivatePresence turns the flag on, or extends it when already on.
func (m *Manager) ActivatePresence(l *domain.Listing) (domain.Transition, error) {
	return m.setPresence(l, func(domain.PresenceSnapshot, time.Time) bool { return true })
}

// DeactivatePresence turns the flag off. Deactivating an inactive flag is not an error.
func (m *Manager) DeactivatePresence(l *domain.Listing) (domain.Transition, error) {
	return m.setPresence(l, func(domain.PresenceSnapshot, time.Time) bool { return false })
}

// TogglePresence flips the flag as seen at the current instant.
func (m *Manager) TogglePresence(l *domain.Listing) (domain.Transition, error) {
	return m.setPresence(l, func(s domain.PresenceSnapshot, now time.Time) bool { return !s.ActiveAt(now) })
}

// SetPresence sets the flag to the requested state.
func (m *Manager) SetPresence(l *domain.Listing, active bool) (domain.Transition, error) {
	if active {
		return m.ActivatePresence(l)
	}
	return m.DeactivatePresence(l)
}

func (m *Manager) setPresence(l *domain.Listing, want func(domain.PresenceSnapshot, time.Time) bool) (domain.Transition, error) {
	if l == nil || l.Presence == nil {
		return domain.Transition{}, fmt.Errorf("%w: listing has no presence flag", domain.ErrNotFound)
	}
	now := m.clock.Now()
	snap, _ := l.Presence.Transition(func(s *domain.PresenceSnapshot) bool {
		if want(*s, now) {
			s.Active = true
			s.ExpiresAt = m.presenceExpiry(now)
			return true
		}
		if !s.Active && s.ExpiresAt.IsZero() {
			return false
		}
		s.Active = false
		s.ExpiresAt = time.Time{}
		return true
	})

	t := domain.Transition{ListingID: l.ID, At: now, ExpiresAt: snap.ExpiresAt, Kind: domain.TransitionPresenceOff}
	if snap.Active {
		t.Kind = domain.TransitionPresenceOn
	}
	return t, nil
}

func (m *Manager) presenceExpiry(now time.Time) time.Time {
	if m.cfg.PresenceDuration > 0 {
		return now.Add(m.cfg.PresenceDuration)
	}
	y, mo, d := now.Date()
	return time.Date(y, mo, d+1, 0, 0, 0, 0, now.Location())
}
