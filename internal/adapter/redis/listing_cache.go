package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/usecase"
)

const categoryCacheKeyPrefix = "promotion:category:"

// cachedListing carries a listing together with the promotion state it had when cached.
type cachedListing struct {
	ID          string            `json:"id"`
	OwnerID     string            `json:"owner_id"`
	Category    string            `json:"category"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Price       float64           `json:"price"`
	Location    string            `json:"location,omitempty"`
	Condition   string            `json:"condition,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`

	Boost    domain.BoostSnapshot    `json:"boost"`
	Presence domain.PresenceSnapshot `json:"presence"`
}

// ListingCache implements usecase.ListingCache with one JSON document per category.
type ListingCache struct {
	client *redis.Client
	logger *logger.Logger
}

func NewListingCache(client *redis.Client, log *logger.Logger) *ListingCache {
	return &ListingCache{client: client, logger: log.Named("ListingCache")}
}

func categoryKey(c domain.Category) string {
	return categoryCacheKeyPrefix + string(c)
}

func (c *ListingCache) GetCategory(ctx context.Context, category domain.Category) ([]*domain.Listing, error) {
	key := categoryKey(category)
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, usecase.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get category %s from redis: %w", category, err)
	}

	listings, err := decodeListings(val)
	if err != nil {
		c.logger.Warn("Dropping undecodable category snapshot", zap.String("key", key), zap.Error(err))
		_ = c.InvalidateCategory(ctx, category)
		return nil, usecase.ErrCacheMiss
	}
	return listings, nil
}

func (c *ListingCache) SetCategory(ctx context.Context, category domain.Category, listings []*domain.Listing, ttl time.Duration) error {
	data, err := encodeListings(listings)
	if err != nil {
		return fmt.Errorf("failed to marshal category %s snapshot: %w", category, err)
	}
	if err := c.client.Set(ctx, categoryKey(category), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set category %s to redis: %w", category, err)
	}
	return nil
}

func (c *ListingCache) InvalidateCategory(ctx context.Context, category domain.Category) error {
	if err := c.client.Del(ctx, categoryKey(category)).Err(); err != nil {
		return fmt.Errorf("failed to delete category %s from redis: %w", category, err)
	}
	return nil
}

func encodeListings(listings []*domain.Listing) ([]byte, error) {
	out := make([]cachedListing, 0, len(listings))
	for _, l := range listings {
		if l == nil {
			continue
		}
		out = append(out, cachedListing{
			ID:          l.ID,
			OwnerID:     l.OwnerID,
			Category:    string(l.Category),
			Title:       l.Title,
			Description: l.Description,
			Price:       l.Price,
			Location:    l.Location,
			Condition:   string(l.Condition),
			Attributes:  l.Attributes,
			CreatedAt:   l.CreatedAt,
			Boost:       l.Boost.Snapshot(),
			Presence:    l.Presence.Snapshot(),
		})
	}
	return json.Marshal(out)
}

func decodeListings(data []byte) ([]*domain.Listing, error) {
	var cached []cachedListing
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	out := make([]*domain.Listing, 0, len(cached))
	for _, c := range cached {
		attrs := c.Attributes
		if attrs == nil {
			attrs = map[string]string{}
		}
		out = append(out, &domain.Listing{
			ID:          c.ID,
			OwnerID:     c.OwnerID,
			Category:    domain.Category(c.Category),
			Title:       c.Title,
			Description: c.Description,
			Price:       c.Price,
			Location:    c.Location,
			Condition:   domain.Condition(c.Condition),
			Attributes:  attrs,
			CreatedAt:   c.CreatedAt,
			Boost:       domain.NewBoostWindow(c.Boost),
			Presence:    domain.NewPresenceFlag(c.Presence),
		})
	}
	return out, nil
}
