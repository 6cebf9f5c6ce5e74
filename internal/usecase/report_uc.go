package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/moderation"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/clock"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/metrics"
)

const defaultPendingLimit = 50

// ReportUsecase files, stores and resolves moderation reports.
type ReportUsecase struct {
	repo      domain.ReportRepository
	manager   *moderation.Manager
	publisher EventPublisher
	alerter   ReportAlerter
	clock     clock.Clock
	metrics   *metrics.MetricsManager
	logger    *logger.Logger
}

func NewReportUsecase(
	repo domain.ReportRepository,
	manager *moderation.Manager,
	publisher EventPublisher,
	alerter ReportAlerter,
	c clock.Clock,
	m *metrics.MetricsManager,
	log *logger.Logger,
) *ReportUsecase {
	return &ReportUsecase{
		repo:      repo,
		manager:   manager,
		publisher: publisher,
		alerter:   alerter,
		clock:     c,
		metrics:   m,
		logger:    log.Named("ReportUsecase"),
	}
}

// FileReport validates and stores a report. Publishing and alerting failures
// are logged; the report is already durable at that point.
func (uc *ReportUsecase) FileReport(ctx context.Context, in moderation.ReportInput) (*domain.Report, error) {
	ctx, span := tracer.Start(ctx, "ReportUsecase.FileReport")
	defer span.End()

	report, err := uc.manager.FileReport(in)
	if err != nil {
		uc.logger.Info("Rejected report", zap.String("reporter_id", in.ReporterID), zap.Error(err))
		return nil, err
	}
	span.SetAttributes(attribute.String("report_id", report.ID), attribute.String("severity", string(report.Severity)))

	if err := uc.repo.Create(ctx, report); err != nil {
		uc.logger.Error("Failed to save report to repository", zap.Error(err))
		return nil, wrapRepo("create report", err)
	}
	if uc.metrics != nil {
		uc.metrics.ReportsFiled.WithLabelValues(string(report.Severity)).Inc()
	}

	if uc.publisher != nil {
		if err := uc.publisher.PublishReportFiled(ctx, report); err != nil {
			uc.logger.Warn("Failed to publish report.filed event", zap.String("report_id", report.ID), zap.Error(err))
		}
	}
	if report.Severity == domain.SeverityHigh && uc.alerter != nil {
		if err := uc.alerter.SendReportAlert(ctx, report); err != nil {
			uc.logger.Warn("Failed to send moderation alert", zap.String("report_id", report.ID), zap.Error(err))
		}
	}

	uc.logger.Info("Report filed",
		zap.String("report_id", report.ID),
		zap.String("target_type", string(report.TargetType)),
		zap.String("target_id", report.TargetID),
		zap.String("reason", string(report.Reason)),
		zap.String("severity", string(report.Severity)))
	return report, nil
}

// ResolveReport records a moderator decision. Resolved reports cannot be resolved again.
func (uc *ReportUsecase) ResolveReport(ctx context.Context, reportID, resolution, moderatorID string) (*domain.Report, error) {
	ctx, span := tracer.Start(ctx, "ReportUsecase.ResolveReport")
	defer span.End()

	res, err := domain.ParseResolution(resolution)
	if err != nil {
		return nil, err
	}
	report, err := uc.repo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if err := report.Resolve(res, moderatorID, uc.clock.Now()); err != nil {
		return nil, err
	}
	if err := uc.repo.SaveResolution(ctx, report); err != nil {
		uc.logger.Error("Failed to save report resolution", zap.String("report_id", reportID), zap.Error(err))
		return nil, wrapRepo("save report resolution", err)
	}
	if uc.metrics != nil {
		uc.metrics.ReportsClosed.WithLabelValues(string(res)).Inc()
	}
	if uc.publisher != nil {
		if err := uc.publisher.PublishReportResolved(ctx, report); err != nil {
			uc.logger.Warn("Failed to publish report.resolved event", zap.String("report_id", report.ID), zap.Error(err))
		}
	}

	uc.logger.Info("Report resolved",
		zap.String("report_id", report.ID),
		zap.String("resolution", string(res)),
		zap.String("moderator_id", moderatorID))
	return report, nil
}

func (uc *ReportUsecase) GetReport(ctx context.Context, reportID string) (*domain.Report, error) {
	return uc.repo.GetByID(ctx, reportID)
}

// ListPending returns pending reports, oldest first.
func (uc *ReportUsecase) ListPending(ctx context.Context, limit int) ([]*domain.Report, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPendingLimit
	}
	reports, err := uc.repo.FindByStatus(ctx, domain.ReportStatusPending, int64(limit))
	if err != nil {
		return nil, wrapRepo("list pending reports", err)
	}
	return reports, nil
}

func wrapRepo(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrRepository),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrValidation):
		return err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrRepository, op, err)
}
