package usecase

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
)

var tracer = otel.Tracer("promotion-service/usecase")

// ErrCacheMiss is returned by a ListingCache when no snapshot is stored.
var ErrCacheMiss = errors.New("cache miss")

// ListingCache holds short-lived per-category listing snapshots.
type ListingCache interface {
	GetCategory(ctx context.Context, category domain.Category) ([]*domain.Listing, error)
	SetCategory(ctx context.Context, category domain.Category, listings []*domain.Listing, ttl time.Duration) error
	InvalidateCategory(ctx context.Context, category domain.Category) error
}

// EventPublisher announces promotion and moderation changes.
type EventPublisher interface {
	PublishTransition(ctx context.Context, t domain.Transition) error
	PublishReportFiled(ctx context.Context, r *domain.Report) error
	PublishReportResolved(ctx context.Context, r *domain.Report) error
}

// ReportAlerter notifies moderators about high-severity reports.
type ReportAlerter interface {
	SendReportAlert(ctx context.Context, r *domain.Report) error
}

// SweepLease is a cross-replica mutex around a sweep pass.
type SweepLease interface {
	// Acquire returns false without error when another holder owns the lease.
	Acquire(ctx context.Context, ttl time.Duration) (bool, error)
	// Extend renews a held lease; false means it is no longer held.
	Extend(ctx context.Context, ttl time.Duration) (bool, error)
	Release(ctx context.Context) error
}
