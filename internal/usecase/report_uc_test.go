package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/moderation"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/clock"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/metrics"
)

type reportDeps struct {
	repo    *MockReportRepository
	pub     *MockEventPublisher
	alerter *MockReportAlerter
	uc      *ReportUsecase
}

func newReportDeps() *reportDeps {
	d := &reportDeps{
		repo:    new(MockReportRepository),
		pub:     new(MockEventPublisher),
		alerter: new(MockReportAlerter),
	}
	c := clock.NewFixed(now)
	d.uc = NewReportUsecase(d.repo, moderation.NewManager(c), d.pub, d.alerter, c, metrics.NewMetricsManager("test"), logger.NewNop())
	return d
}

func reportInput(reason string) moderation.ReportInput {
	return moderation.ReportInput{
		TargetType: "listing",
		TargetID:   "listing-1",
		Reason:     reason,
		ReporterID: "user-1",
	}
}

func TestFileReport_HighSeverityAlerts(t *testing.T) {
	d := newReportDeps()
	d.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Report")).Return(nil).Once()
	d.pub.On("PublishReportFiled", mock.Anything, mock.Anything).Return(nil).Once()
	d.alerter.On("SendReportAlert", mock.Anything, mock.MatchedBy(func(r *domain.Report) bool {
		return r.Severity == domain.SeverityHigh
	})).Return(errors.New("smtp down")).Once()

	r, err := d.uc.FileReport(context.Background(), reportInput("fraud_or_scam"))
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityHigh, r.Severity)
	assert.Equal(t, domain.ReportStatusPending, r.Status)

	d.repo.AssertExpectations(t)
	d.pub.AssertExpectations(t)
	d.alerter.AssertExpectations(t)
}

func TestFileReport_MediumSeverityDoesNotAlert(t *testing.T) {
	d := newReportDeps()
	d.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.pub.On("PublishReportFiled", mock.Anything, mock.Anything).Return(nil)

	r, err := d.uc.FileReport(context.Background(), reportInput("wrong_category"))
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityMedium, r.Severity)
	d.alerter.AssertNotCalled(t, "SendReportAlert", mock.Anything, mock.Anything)
}

func TestFileReport_InvalidCreatesNothing(t *testing.T) {
	d := newReportDeps()

	_, err := d.uc.FileReport(context.Background(), reportInput("spam"))
	assert.ErrorIs(t, err, domain.ErrUnknownReason)
	d.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFileReport_RepositoryFailure(t *testing.T) {
	d := newReportDeps()
	d.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("duplicate key"))

	_, err := d.uc.FileReport(context.Background(), reportInput("other"))
	assert.ErrorIs(t, err, domain.ErrRepository)
	d.pub.AssertNotCalled(t, "PublishReportFiled", mock.Anything, mock.Anything)
}

func TestResolveReport(t *testing.T) {
	d := newReportDeps()
	stored := &domain.Report{ID: "r1", Reason: domain.ReasonOther, Severity: domain.SeverityMedium, Status: domain.ReportStatusPending}
	d.repo.On("GetByID", mock.Anything, "r1").Return(stored, nil)
	d.repo.On("SaveResolution", mock.Anything, stored).Return(nil).Once()
	d.pub.On("PublishReportResolved", mock.Anything, stored).Return(nil).Once()

	r, err := d.uc.ResolveReport(context.Background(), "r1", "approved", "mod-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusResolved, r.Status)
	assert.Equal(t, now, *r.ResolvedAt)

	_, err = d.uc.ResolveReport(context.Background(), "r1", "dismissed", "mod-2")
	assert.ErrorIs(t, err, domain.ErrValidation)
	d.repo.AssertExpectations(t)

	_, err = d.uc.ResolveReport(context.Background(), "r1", "maybe", "mod-2")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestResolveReport_ResolvedConcurrently(t *testing.T) {
	d := newReportDeps()
	stored := &domain.Report{ID: "r1", Reason: domain.ReasonOther, Severity: domain.SeverityMedium, Status: domain.ReportStatusPending}
	d.repo.On("GetByID", mock.Anything, "r1").Return(stored, nil)
	d.repo.On("SaveResolution", mock.Anything, stored).
		Return(fmt.Errorf("%w: report r1 is already resolved", domain.ErrValidation)).Once()

	_, err := d.uc.ResolveReport(context.Background(), "r1", "dismissed", "mod-2")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.NotErrorIs(t, err, domain.ErrRepository)
	d.pub.AssertNotCalled(t, "PublishReportResolved", mock.Anything, mock.Anything)
}

func TestListPending(t *testing.T) {
	d := newReportDeps()
	d.repo.On("FindByStatus", mock.Anything, domain.ReportStatusPending, int64(50)).Return([]*domain.Report{{ID: "a"}}, nil)

	got, err := d.uc.ListPending(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
