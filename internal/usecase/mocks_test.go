package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
)

type MockListingRepository struct{ mock.Mock }

func (m *MockListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingRepository) FindByCategory(ctx context.Context, category domain.Category) ([]*domain.Listing, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}
func (m *MockListingRepository) FindPromoted(ctx context.Context) ([]*domain.Listing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}
func (m *MockListingRepository) SaveBoost(ctx context.Context, listingID string, boost domain.BoostSnapshot) error {
	args := m.Called(ctx, listingID, boost)
	return args.Error(0)
}
func (m *MockListingRepository) SavePresence(ctx context.Context, listingID string, presence domain.PresenceSnapshot) error {
	args := m.Called(ctx, listingID, presence)
	return args.Error(0)
}

type MockReportRepository struct{ mock.Mock }

func (m *MockReportRepository) Create(ctx context.Context, report *domain.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}
func (m *MockReportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}
func (m *MockReportRepository) SaveResolution(ctx context.Context, report *domain.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}
func (m *MockReportRepository) FindByStatus(ctx context.Context, status domain.ReportStatus, limit int64) ([]*domain.Report, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Report), args.Error(1)
}

type MockListingCache struct{ mock.Mock }

func (m *MockListingCache) GetCategory(ctx context.Context, category domain.Category) ([]*domain.Listing, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}
func (m *MockListingCache) SetCategory(ctx context.Context, category domain.Category, listings []*domain.Listing, ttl time.Duration) error {
	args := m.Called(ctx, category, listings, ttl)
	return args.Error(0)
}
func (m *MockListingCache) InvalidateCategory(ctx context.Context, category domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) PublishTransition(ctx context.Context, t domain.Transition) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}
func (m *MockEventPublisher) PublishReportFiled(ctx context.Context, r *domain.Report) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockEventPublisher) PublishReportResolved(ctx context.Context, r *domain.Report) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

type MockReportAlerter struct{ mock.Mock }

func (m *MockReportAlerter) SendReportAlert(ctx context.Context, r *domain.Report) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

type MockSweepLease struct{ mock.Mock }

func (m *MockSweepLease) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, ttl)
	return args.Bool(0), args.Error(1)
}
func (m *MockSweepLease) Extend(ctx context.Context, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, ttl)
	return args.Bool(0), args.Error(1)
}
func (m *MockSweepLease) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
