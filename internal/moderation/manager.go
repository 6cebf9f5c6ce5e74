// Package moderation creates moderation reports with derived severity.
package moderation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/clock"
)

const DefaultDescriptionLimit = 500

// ReportInput is what a reporter submits. Severity is never part of it.
type ReportInput struct {
	TargetType        string
	TargetID          string
	TargetDisplayName string
	Reason            string
	Description       string
	ReporterID        string
}

type Manager struct {
	clock            clock.Clock
	descriptionLimit int
	newID            func() string
}

type Option func(*Manager)

// WithDescriptionLimit overrides the maximum description length in characters.
func WithDescriptionLimit(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.descriptionLimit = n
		}
	}
}

// WithIDGenerator replaces the UUID generator, mainly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		if fn != nil {
			m.newID = fn
		}
	}
}

func NewManager(c clock.Clock, opts ...Option) *Manager {
	m := &Manager{
		clock:            c,
		descriptionLimit: DefaultDescriptionLimit,
		newID:            func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) DescriptionLimit() int { return m.descriptionLimit }

// FileReport validates the input and returns a pending report.
// Nothing is returned on failure; oversized descriptions are rejected, not truncated.
func (m *Manager) FileReport(in ReportInput) (*domain.Report, error) {
	target, err := domain.ParseTargetType(in.TargetType)
	if err != nil {
		return nil, err
	}
	targetID := strings.TrimSpace(in.TargetID)
	if targetID == "" {
		return nil, fmt.Errorf("%w: target id is required", domain.ErrValidation)
	}
	reason, err := domain.ParseReason(in.Reason)
	if err != nil {
		return nil, err
	}
	if n := utf8.RuneCountInString(in.Description); n > m.descriptionLimit {
		return nil, fmt.Errorf("%w: description has %d characters, limit is %d", domain.ErrValidation, n, m.descriptionLimit)
	}

	return &domain.Report{
		ID:                m.newID(),
		TargetType:        target,
		TargetID:          targetID,
		TargetDisplayName: strings.TrimSpace(in.TargetDisplayName),
		Reason:            reason,
		Description:       in.Description,
		ReporterID:        in.ReporterID,
		Severity:          domain.SeverityFor(reason),
		Status:            domain.ReportStatusPending,
		CreatedAt:         m.clock.Now(),
	}, nil
}
