// Package clock provides the time source used by the promotion and moderation
// logic. Core packages never call time.Now directly; they receive a Clock.
package clock

import (
	"sync"
	"time"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// Real returns the system time in UTC.
type Real struct{}

func (Real) Now() time.Time {
	return time.Now().UTC()
}

// NewReal returns the system clock. Only cmd/* should construct it.
func NewReal() Clock {
	return Real{}
}

// Fixed always returns T.
type Fixed struct {
	T time.Time
}

func (c Fixed) Now() time.Time {
	return c.T
}

func NewFixed(t time.Time) Clock {
	return Fixed{T: t}
}

// Manual is a settable clock for tests that move time forward.
type Manual struct {
	mu sync.Mutex
	t  time.Time
}

func NewManual(t time.Time) *Manual {
	return &Manual{t: t}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t
}

// Advance moves the clock forward by d and returns the new time.
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t = m.t.Add(d)
	return m.t
}

func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t = t
}
