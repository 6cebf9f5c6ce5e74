package domain

import (
	"fmt"
	"sync"
	"time"
)

// BoostState is the lifecycle state of a boost window instance.
type BoostState string

const (
	BoostAbsent  BoostState = ""
	BoostActive  BoostState = "active"
	BoostExpired BoostState = "expired"
)

// BoostSnapshot is a plain copy of a boost window taken under its lock.
type BoostSnapshot struct {
	State          BoostState
	Plan           Tier
	ActivatedAt    time.Time
	ExpiresAt      time.Time
	TotalBumps     int
	BumpsRemaining int
	NextBumpAt     *time.Time
	// Revision is the stored version the snapshot was loaded at. Saves are
	// conditional on it, so a write based on stale state is refused.
	Revision int64
}

func (s BoostSnapshot) clone() BoostSnapshot {
	if s.NextBumpAt != nil {
		next := *s.NextBumpAt
		s.NextBumpAt = &next
	}
	return s
}

// Validate checks the structural invariants of an active window.
func (s BoostSnapshot) Validate() error {
	if s.State == BoostAbsent {
		return nil
	}
	if s.ActivatedAt.IsZero() || s.ExpiresAt.IsZero() {
		return fmt.Errorf("%w: activation and expiration are required", ErrInvalidTimestamp)
	}
	if !s.ExpiresAt.After(s.ActivatedAt) {
		return fmt.Errorf("%w: expiration %s is not after activation %s",
			ErrInvalidWindow, s.ExpiresAt.Format(time.RFC3339), s.ActivatedAt.Format(time.RFC3339))
	}
	if s.TotalBumps < 1 {
		return fmt.Errorf("%w: total bumps must be positive", ErrInvalidWindow)
	}
	if s.BumpsRemaining < 0 || s.BumpsRemaining > s.TotalBumps {
		return fmt.Errorf("%w: bumps remaining %d outside [0, %d]", ErrInvalidWindow, s.BumpsRemaining, s.TotalBumps)
	}
	if s.NextBumpAt != nil && !s.NextBumpAt.Before(s.ExpiresAt) {
		return fmt.Errorf("%w: next bump is not before expiration", ErrInvalidWindow)
	}
	return nil
}

// BoostWindow is the lockable promotion window attached to a listing.
// Every field change happens inside Transition so readers never see a torn state.
type BoostWindow struct {
	mu    sync.Mutex
	state BoostSnapshot
}

// NewBoostWindow wraps a snapshot loaded from storage.
func NewBoostWindow(s BoostSnapshot) *BoostWindow {
	return &BoostWindow{state: s.clone()}
}

// Snapshot returns a consistent copy of the window.
func (w *BoostWindow) Snapshot() BoostSnapshot {
	if w == nil {
		return BoostSnapshot{}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.clone()
}

// Transition applies fn to a working copy under the window lock and commits it
// when fn returns true. It returns the committed state and whether it changed.
func (w *BoostWindow) Transition(fn func(s *BoostSnapshot) bool) (BoostSnapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	next := w.state.clone()
	if !fn(&next) {
		return w.state.clone(), false
	}
	w.state = next
	return next.clone(), true
}

// PresenceSnapshot is a plain copy of a presence flag.
type PresenceSnapshot struct {
	Active    bool
	ExpiresAt time.Time
	Revision  int64
}

// ActiveAt applies the lazy expiry rule: a flag past its expiration is inactive.
func (p PresenceSnapshot) ActiveAt(now time.Time) bool {
	return p.Active && !p.ExpiresAt.IsZero() && now.Before(p.ExpiresAt)
}

// PresenceFlag is the lockable "live now" marker of a listing.
type PresenceFlag struct {
	mu    sync.Mutex
	state PresenceSnapshot
}

func NewPresenceFlag(s PresenceSnapshot) *PresenceFlag {
	return &PresenceFlag{state: s}
}

func (p *PresenceFlag) Snapshot() PresenceSnapshot {
	if p == nil {
		return PresenceSnapshot{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Transition has the same contract as BoostWindow.Transition.
func (p *PresenceFlag) Transition(fn func(s *PresenceSnapshot) bool) (PresenceSnapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	next := p.state
	if !fn(&next) {
		return p.state, false
	}
	p.state = next
	return next, true
}

// TransitionKind names a lifecycle change produced by the promotion manager.
type TransitionKind string

const (
	TransitionBoostActivated  TransitionKind = "boost_activated"
	TransitionBoostBumped     TransitionKind = "boost_bumped"
	TransitionBoostExpired    TransitionKind = "boost_expired"
	TransitionPresenceOn      TransitionKind = "presence_activated"
	TransitionPresenceOff     TransitionKind = "presence_deactivated"
	TransitionPresenceExpired TransitionKind = "presence_expired"
)

// Transition records one lifecycle change for the persistence collaborator.
type Transition struct {
	ListingID      string
	Kind           TransitionKind
	At             time.Time
	Plan           Tier
	BumpsRemaining int
	NextBumpAt     *time.Time
	ExpiresAt      time.Time
}
