package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
)

const listingCollectionName = "listings"

// ListingRepository implements domain.ListingRepository on the shared listings collection.
type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewListingRepository(db *mongo.Database, log *logger.Logger) *ListingRepository {
	collection := db.Collection(listingCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "boost.state", Value: 1}}},
		{Keys: bson.D{{Key: "presence.active", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Indexes may already exist or be managed by the listing owner service.
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for listings collection", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for listings collection")
	}

	return &ListingRepository{
		collection: collection,
		logger:     log.Named("ListingRepository"),
	}
}

// Insert stores a listing and fills in its generated ID. Used by seeding tools and tests.
func (r *ListingRepository) Insert(ctx context.Context, l *domain.Listing) error {
	doc, err := toListingDocument(l)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert listing", zap.Error(err))
		return fmt.Errorf("%w: db insert failed: %v", domain.ErrRepository, err)
	}
	l.ID = doc.ID.Hex()
	l.CreatedAt = doc.CreatedAt
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %q", domain.ErrNotFound, id)
	}

	var doc listingDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: listing %q", domain.ErrNotFound, id)
		}
		r.logger.Error("Failed to find listing by ID", zap.String("listing_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: db findone failed: %v", domain.ErrRepository, err)
	}
	return toDomainListing(&doc), nil
}

func (r *ListingRepository) FindByCategory(ctx context.Context, category domain.Category) ([]*domain.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"category": string(category)}, opts)
}

// FindPromoted returns the sweep population: stored-active windows and stored-active presence flags.
func (r *ListingRepository) FindPromoted(ctx context.Context) ([]*domain.Listing, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"boost.state": string(domain.BoostActive)},
		bson.M{"presence.active": true},
	}}
	return r.find(ctx, filter, options.Find())
}

func (r *ListingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Listing, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to query listings", zap.Any("filter", filter), zap.Error(err))
		return nil, fmt.Errorf("%w: db find failed: %v", domain.ErrRepository, err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode listings", zap.Error(err))
		return nil, fmt.Errorf("%w: db cursor decode failed: %v", domain.ErrRepository, err)
	}
	return toDomainListings(docs), nil
}

func (r *ListingRepository) SaveBoost(ctx context.Context, listingID string, boost domain.BoostSnapshot) error {
	now := time.Now().UTC()
	update := bson.M{"$inc": bson.M{"boost_revision": 1}}
	if boost.State == domain.BoostAbsent {
		update["$unset"] = bson.M{"boost": ""}
		update["$set"] = bson.M{"updated_at": now}
	} else {
		update["$set"] = bson.M{"boost": toBoostDocument(boost), "updated_at": now}
	}
	return r.update(ctx, listingID, "boost", boost.Revision, update)
}

func (r *ListingRepository) SavePresence(ctx context.Context, listingID string, presence domain.PresenceSnapshot) error {
	return r.update(ctx, listingID, "presence", presence.Revision, bson.M{
		"$set": bson.M{
			"presence":   &presenceDocument{Active: presence.Active, ExpiresAt: presence.ExpiresAt},
			"updated_at": time.Now().UTC(),
		},
		"$inc": bson.M{"presence_revision": 1},
	})
}

// revisionFilter matches the stored revision a snapshot was loaded at.
// Revision 0 also matches documents that were never written by this service.
func revisionFilter(rev int64) interface{} {
	if rev == 0 {
		return bson.M{"$in": bson.A{int64(0), nil}}
	}
	return rev
}

// update applies a promotion write only if field's revision is unchanged since load.
func (r *ListingRepository) update(ctx context.Context, listingID, field string, rev int64, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(listingID)
	if err != nil {
		return fmt.Errorf("%w: listing %q", domain.ErrNotFound, listingID)
	}

	filter := bson.M{"_id": oid, field + "_revision": revisionFilter(rev)}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to update listing", zap.String("listing_id", listingID), zap.String("field", field), zap.Error(err))
		return fmt.Errorf("%w: db update failed: %v", domain.ErrRepository, err)
	}
	if res.MatchedCount == 0 {
		n, err := r.collection.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return fmt.Errorf("%w: db count failed: %v", domain.ErrRepository, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: listing %q", domain.ErrNotFound, listingID)
		}
		r.logger.Debug("Stale promotion write refused",
			zap.String("listing_id", listingID), zap.String("field", field), zap.Int64("revision", rev))
		return fmt.Errorf("%w: listing %q %s changed since revision %d", domain.ErrConflict, listingID, field, rev)
	}
	r.logger.Debug("Listing promotion state saved", zap.String("listing_id", listingID), zap.String("field", field))
	return nil
}
