package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
)

const reportCollectionName = "reports"

// ReportRepository implements domain.ReportRepository using MongoDB.
type ReportRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewReportRepository(db *mongo.Database, log *logger.Logger) *ReportRepository {
	collection := db.Collection(reportCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "target_type", Value: 1}, {Key: "target_id", Value: 1}}},
		{Keys: bson.D{{Key: "reporter_id", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for reports collection", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for reports collection")
	}

	return &ReportRepository{
		collection: collection,
		logger:     log.Named("ReportRepository"),
	}
}

func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	r.logger.Info("Creating report in DB",
		zap.String("report_id", report.ID),
		zap.String("target_type", string(report.TargetType)),
		zap.String("target_id", report.TargetID))

	if _, err := r.collection.InsertOne(ctx, fromDomainReport(report)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: report %s already exists", domain.ErrValidation, report.ID)
		}
		r.logger.Error("Failed to insert report", zap.Error(err))
		return fmt.Errorf("%w: db insert failed: %v", domain.ErrRepository, err)
	}
	return nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	var doc reportDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: report %q", domain.ErrNotFound, id)
		}
		r.logger.Error("Failed to find report by ID", zap.String("report_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: db findone failed: %v", domain.ErrRepository, err)
	}
	return doc.toDomainReport(), nil
}

// SaveResolution writes the resolution fields only while the stored report is still pending.
func (r *ReportRepository) SaveResolution(ctx context.Context, report *domain.Report) error {
	filter := bson.M{"_id": report.ID, "status": string(domain.ReportStatusPending)}
	update := bson.M{"$set": bson.M{
		"status":      string(report.Status),
		"resolution":  string(report.Resolution),
		"resolved_by": report.ResolvedBy,
		"resolved_at": report.ResolvedAt,
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to save report resolution", zap.String("report_id", report.ID), zap.Error(err))
		return fmt.Errorf("%w: db update failed: %v", domain.ErrRepository, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": report.ID})
	if err != nil {
		return fmt.Errorf("%w: db count failed: %v", domain.ErrRepository, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: report %q", domain.ErrNotFound, report.ID)
	}
	r.logger.Warn("Report already resolved by another moderator", zap.String("report_id", report.ID))
	return fmt.Errorf("%w: report %s is already resolved", domain.ErrValidation, report.ID)
}

// FindByStatus returns the oldest reports first so moderators work the queue in filing order.
func (r *ReportRepository) FindByStatus(ctx context.Context, status domain.ReportStatus, limit int64) ([]*domain.Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"status": string(status)}, opts)
	if err != nil {
		r.logger.Error("Failed to query reports", zap.String("status", string(status)), zap.Error(err))
		return nil, fmt.Errorf("%w: db find failed: %v", domain.ErrRepository, err)
	}
	defer cursor.Close(ctx)

	var docs []*reportDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: db cursor decode failed: %v", domain.ErrRepository, err)
	}
	out := make([]*domain.Report, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomainReport())
	}
	return out, nil
}
