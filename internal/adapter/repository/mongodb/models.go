package mongodb

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
)

type listingDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID     string             `bson:"user_id"`
	Category    string             `bson:"category"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	Location    string             `bson:"location"`
	Condition   string             `bson:"condition,omitempty"`
	Attributes  map[string]string  `bson:"attributes,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
	Boost       *boostDocument     `bson:"boost,omitempty"`
	Presence    *presenceDocument  `bson:"presence,omitempty"`

	// Bumped on every promotion write; a missing field reads as revision 0.
	BoostRevision    int64 `bson:"boost_revision,omitempty"`
	PresenceRevision int64 `bson:"presence_revision,omitempty"`
}

type boostDocument struct {
	State          string     `bson:"state"`
	Plan           string     `bson:"plan"`
	ActivatedAt    time.Time  `bson:"activated_at"`
	ExpiresAt      time.Time  `bson:"expires_at"`
	TotalBumps     int        `bson:"total_bumps"`
	BumpsRemaining int        `bson:"bumps_remaining"`
	NextBumpAt     *time.Time `bson:"next_bump_at,omitempty"`
}

type presenceDocument struct {
	Active    bool      `bson:"active"`
	ExpiresAt time.Time `bson:"expires_at"`
}

type reportDocument struct {
	ID                string     `bson:"_id"`
	TargetType        string     `bson:"target_type"`
	TargetID          string     `bson:"target_id"`
	TargetDisplayName string     `bson:"target_display_name,omitempty"`
	Reason            string     `bson:"reason"`
	Description       string     `bson:"description"`
	ReporterID        string     `bson:"reporter_id"`
	Severity          string     `bson:"severity"`
	Status            string     `bson:"status"`
	Resolution        string     `bson:"resolution,omitempty"`
	ResolvedBy        string     `bson:"resolved_by,omitempty"`
	CreatedAt         time.Time  `bson:"created_at"`
	ResolvedAt        *time.Time `bson:"resolved_at,omitempty"`
}

// --- Listing converters ---

func toListingDocument(l *domain.Listing) (*listingDocument, error) {
	if l == nil {
		return nil, nil
	}
	var id primitive.ObjectID
	if l.ID != "" {
		oid, err := primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			return nil, fmt.Errorf("toListingDocument: invalid ID format '%s': %w", l.ID, err)
		}
		id = oid
	}
	return &listingDocument{
		ID:          id,
		OwnerID:     l.OwnerID,
		Category:    string(l.Category),
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Location:    l.Location,
		Condition:   string(l.Condition),
		Attributes:  l.Attributes,
		CreatedAt:   l.CreatedAt,
		Boost:       toBoostDocument(l.Boost.Snapshot()),
		Presence:    toPresenceDocument(l.Presence.Snapshot()),

		BoostRevision:    l.Boost.Snapshot().Revision,
		PresenceRevision: l.Presence.Snapshot().Revision,
	}, nil
}

// toDomainListing always attaches promotion sub-objects, empty when the document has none.
func toDomainListing(d *listingDocument) *domain.Listing {
	if d == nil {
		return nil
	}
	attrs := d.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	boost := d.Boost.toSnapshot()
	boost.Revision = d.BoostRevision
	presence := d.Presence.toSnapshot()
	presence.Revision = d.PresenceRevision
	return &domain.Listing{
		ID:          d.ID.Hex(),
		OwnerID:     d.OwnerID,
		Category:    domain.Category(d.Category),
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Location:    d.Location,
		Condition:   domain.Condition(d.Condition),
		Attributes:  attrs,
		CreatedAt:   d.CreatedAt,
		Boost:       domain.NewBoostWindow(boost),
		Presence:    domain.NewPresenceFlag(presence),
	}
}

func toDomainListings(docs []*listingDocument) []*domain.Listing {
	out := make([]*domain.Listing, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDomainListing(doc))
	}
	return out
}

func toBoostDocument(s domain.BoostSnapshot) *boostDocument {
	if s.State == domain.BoostAbsent {
		return nil
	}
	return &boostDocument{
		State:          string(s.State),
		Plan:           string(s.Plan),
		ActivatedAt:    s.ActivatedAt,
		ExpiresAt:      s.ExpiresAt,
		TotalBumps:     s.TotalBumps,
		BumpsRemaining: s.BumpsRemaining,
		NextBumpAt:     s.NextBumpAt,
	}
}

func (d *boostDocument) toSnapshot() domain.BoostSnapshot {
	if d == nil {
		return domain.BoostSnapshot{}
	}
	s := domain.BoostSnapshot{
		State:          domain.BoostState(d.State),
		Plan:           domain.Tier(d.Plan),
		ActivatedAt:    d.ActivatedAt.UTC(),
		ExpiresAt:      d.ExpiresAt.UTC(),
		TotalBumps:     d.TotalBumps,
		BumpsRemaining: d.BumpsRemaining,
	}
	if d.NextBumpAt != nil {
		next := d.NextBumpAt.UTC()
		s.NextBumpAt = &next
	}
	return s
}

func toPresenceDocument(p domain.PresenceSnapshot) *presenceDocument {
	if !p.Active && p.ExpiresAt.IsZero() {
		return nil
	}
	return &presenceDocument{Active: p.Active, ExpiresAt: p.ExpiresAt}
}

func (d *presenceDocument) toSnapshot() domain.PresenceSnapshot {
	if d == nil {
		return domain.PresenceSnapshot{}
	}
	return domain.PresenceSnapshot{Active: d.Active, ExpiresAt: d.ExpiresAt.UTC()}
}

// --- Report converters ---

func fromDomainReport(r *domain.Report) *reportDocument {
	return &reportDocument{
		ID:                r.ID,
		TargetType:        string(r.TargetType),
		TargetID:          r.TargetID,
		TargetDisplayName: r.TargetDisplayName,
		Reason:            string(r.Reason),
		Description:       r.Description,
		ReporterID:        r.ReporterID,
		Severity:          string(r.Severity),
		Status:            string(r.Status),
		Resolution:        string(r.Resolution),
		ResolvedBy:        r.ResolvedBy,
		CreatedAt:         r.CreatedAt,
		ResolvedAt:        r.ResolvedAt,
	}
}

func (d *reportDocument) toDomainReport() *domain.Report {
	r := &domain.Report{
		ID:                d.ID,
		TargetType:        domain.TargetType(d.TargetType),
		TargetID:          d.TargetID,
		TargetDisplayName: d.TargetDisplayName,
		Reason:            domain.Reason(d.Reason),
		Description:       d.Description,
		ReporterID:        d.ReporterID,
		Severity:          domain.Severity(d.Severity),
		Status:            domain.ReportStatus(d.Status),
		Resolution:        domain.Resolution(d.Resolution),
		ResolvedBy:        d.ResolvedBy,
		CreatedAt:         d.CreatedAt.UTC(),
	}
	if d.ResolvedAt != nil {
		at := d.ResolvedAt.UTC()
		r.ResolvedAt = &at
	}
	return r
}
