package domain

import (
	"fmt"
	"strings"
	"time"
)

// --- Report Reason Enum ---

// Reason is the closed set of grounds a report can be filed on.
type Reason string

const (
	ReasonFraudOrScam          Reason = "fraud_or_scam"
	ReasonInappropriateContent Reason = "inappropriate_or_offensive_content"
	ReasonAlreadySold          Reason = "already_sold"
	ReasonFalseOrAbusivePrice  Reason = "false_or_abusive_price"
	ReasonWrongCategory        Reason = "wrong_category"
	ReasonPhotosDoNotMatch     Reason = "photos_do_not_match"
	ReasonOther                Reason = "other"
)

// Reasons lists the reason set in display order.
func Reasons() []Reason {
	return []Reason{
		ReasonFraudOrScam,
		ReasonInappropriateContent,
		ReasonAlreadySold,
		ReasonFalseOrAbusivePrice,
		ReasonWrongCategory,
		ReasonPhotosDoNotMatch,
		ReasonOther,
	}
}

// ParseReason maps a raw reason code onto the closed set.
func ParseReason(s string) (Reason, error) {
	r := Reason(strings.TrimSpace(s))
	for _, known := range Reasons() {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownReason, s)
}

// Label is the text shown to users picking a reason.
func (r Reason) Label() string {
	switch r {
	case ReasonFraudOrScam:
		return "Fraud or scam"
	case ReasonInappropriateContent:
		return "Inappropriate or offensive content"
	case ReasonAlreadySold:
		return "Item already sold"
	case ReasonFalseOrAbusivePrice:
		return "False or abusive price"
	case ReasonWrongCategory:
		return "Wrong category"
	case ReasonPhotosDoNotMatch:
		return "Photos do not match the item"
	case ReasonOther:
		return "Other"
	}
	return string(r)
}

// --- Severity ---

type Severity string

const (
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// SeverityFor derives severity from the reason alone, so stored reports can be re-checked.
func SeverityFor(r Reason) Severity {
	switch r {
	case ReasonFraudOrScam, ReasonInappropriateContent:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

// --- Target / Status ---

type TargetType string

const (
	TargetListing TargetType = "listing"
	TargetUser    TargetType = "user"
)

func ParseTargetType(s string) (TargetType, error) {
	switch t := TargetType(strings.ToLower(strings.TrimSpace(s))); t {
	case TargetListing, TargetUser:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown report target type %q", ErrValidation, s)
}

type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusResolved ReportStatus = "resolved"
)

// Resolution is the moderator outcome recorded on a resolved report.
type Resolution string

const (
	ResolutionApproved  Resolution = "approved"
	ResolutionDismissed Resolution = "dismissed"
)

func ParseResolution(s string) (Resolution, error) {
	switch r := Resolution(strings.ToLower(strings.TrimSpace(s))); r {
	case ResolutionApproved, ResolutionDismissed:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown resolution %q", ErrValidation, s)
}

// --- Report Entity ---

// Report is a moderation request against a listing or a user.
type Report struct {
	ID                string
	TargetType        TargetType
	TargetID          string
	TargetDisplayName string
	Reason            Reason
	Description       string
	ReporterID        string
	Severity          Severity
	Status            ReportStatus
	Resolution        Resolution
	ResolvedBy        string
	CreatedAt         time.Time
	ResolvedAt        *time.Time
}

// Resolve moves a pending report to resolved. Resolved is terminal.
func (r *Report) Resolve(resolution Resolution, moderatorID string, at time.Time) error {
	if r.Status != ReportStatusPending {
		return fmt.Errorf("%w: report %s is already %s", ErrValidation, r.ID, r.Status)
	}
	if resolution != ResolutionApproved && resolution != ResolutionDismissed {
		return fmt.Errorf("%w: unknown resolution %q", ErrValidation, resolution)
	}
	if at.IsZero() {
		return fmt.Errorf("%w: resolution time is required", ErrInvalidTimestamp)
	}
	r.Status = ReportStatusResolved
	r.Resolution = resolution
	r.ResolvedBy = moderatorID
	r.ResolvedAt = &at
	return nil
}

// SeverityConsistent reports whether the stored severity matches the reason.
func (r *Report) SeverityConsistent() bool {
	return r.Severity == SeverityFor(r.Reason)
}
