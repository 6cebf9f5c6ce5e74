package domain

import "context"

// ListingRepository supplies listings to the engine and stores promotion changes.
// Implementations always attach non-nil Boost and Presence sub-objects.
type ListingRepository interface {
	FindByID(ctx context.Context, id string) (*Listing, error)
	FindByCategory(ctx context.Context, category Category) ([]*Listing, error)
	// FindPromoted returns listings with an active boost window or an active presence flag.
	FindPromoted(ctx context.Context) ([]*Listing, error)
	// SaveBoost and SavePresence write one promotion sub-object each, leaving the rest of the listing untouched.
	// The write only applies when the stored revision still equals the snapshot's Revision;
	// otherwise they return ErrConflict.
	SaveBoost(ctx context.Context, listingID string, boost BoostSnapshot) error
	SavePresence(ctx context.Context, listingID string, presence PresenceSnapshot) error
}

// ReportRepository stores moderation reports.
type ReportRepository interface {
	Create(ctx context.Context, report *Report) error
	GetByID(ctx context.Context, id string) (*Report, error)
	// SaveResolution stores the resolution of a report that is still pending in storage.
	// A report resolved concurrently yields ErrValidation.
	SaveResolution(ctx context.Context, report *Report) error
	FindByStatus(ctx context.Context, status ReportStatus, limit int64) ([]*Report, error)
}
