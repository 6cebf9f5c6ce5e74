package usecase

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/discovery"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/discovery/filter"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/discovery/ranking"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/promotion"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// SearchInput is a discovery query as received from a presentation layer.
type SearchInput struct {
	Category string
	Filter   filter.Params
	Sort     string
	Page     int
	Limit    int
}

// SearchHit is one ranked listing with the promotion values shown next to it.
type SearchHit struct {
	Listing        *domain.Listing
	Tier           domain.Tier
	DaysRemaining  int
	PresenceActive bool
}

type SearchResult struct {
	Hits  []SearchHit
	Total int
	Page  int
	Limit int
}

// DiscoveryUsecase loads a category's listings and runs the discovery engine over them.
type DiscoveryUsecase struct {
	repo     domain.ListingRepository
	cache    ListingCache
	promo    *promotion.Manager
	engine   *discovery.Engine
	metrics  *metrics.MetricsManager
	cacheTTL time.Duration
	logger   *logger.Logger
}

func NewDiscoveryUsecase(repo domain.ListingRepository, cache ListingCache, promo *promotion.Manager, m *metrics.MetricsManager, cacheTTL time.Duration, log *logger.Logger) *DiscoveryUsecase {
	return &DiscoveryUsecase{
		repo:     repo,
		cache:    cache,
		promo:    promo,
		engine:   discovery.NewEngine(promo),
		metrics:  m,
		cacheTTL: cacheTTL,
		logger:   log.Named("DiscoveryUsecase"),
	}
}

// Search filters and ranks the listings of one category, then pages the result.
func (uc *DiscoveryUsecase) Search(ctx context.Context, in SearchInput) (*SearchResult, error) {
	start := time.Now()
	category, err := domain.ParseCategory(in.Category)
	if err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "DiscoveryUsecase.Search")
	defer span.End()
	span.SetAttributes(attribute.String("category", string(category)))

	spec, err := filter.NewSpec(in.Filter)
	if err != nil {
		return nil, err
	}
	sortKey, err := ranking.ParseSortKey(in.Sort)
	if err != nil {
		return nil, err
	}

	listings, err := uc.loadCategory(ctx, category)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	ranked := uc.engine.Search(category, spec, listings, ranking.WithSortKey(sortKey))
	page, limit := normalizePage(in.Page, in.Limit)
	result := &SearchResult{Hits: []SearchHit{}, Total: len(ranked), Page: page, Limit: limit}
	// Compare against the page count first; page comes from the query string
	// and (page-1)*limit can overflow.
	if pages := (len(ranked) + limit - 1) / limit; page <= pages {
		from := (page - 1) * limit
		to := min(from+limit, len(ranked))
		for _, l := range ranked[from:to] {
			result.Hits = append(result.Hits, SearchHit{
				Listing:        l,
				Tier:           uc.promo.EffectiveTier(l),
				DaysRemaining:  uc.promo.DaysRemaining(l),
				PresenceActive: uc.promo.PresenceActive(l),
			})
		}
	}

	if uc.metrics != nil {
		uc.metrics.SearchesTotal.WithLabelValues(string(category)).Inc()
		uc.metrics.SearchResults.WithLabelValues(string(category)).Observe(float64(len(ranked)))
		uc.metrics.SearchLatency.WithLabelValues(string(category)).Observe(time.Since(start).Seconds())
	}
	uc.logger.Debug("Search completed",
		zap.String("category", string(category)),
		zap.Int("scanned", len(listings)),
		zap.Int("matched", len(ranked)),
		zap.Int("page", page))
	return result, nil
}

func (uc *DiscoveryUsecase) loadCategory(ctx context.Context, category domain.Category) ([]*domain.Listing, error) {
	if uc.cache != nil {
		listings, err := uc.cache.GetCategory(ctx, category)
		if err == nil {
			return listings, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			uc.logger.Warn("Listing cache read failed, falling back to repository", zap.String("category", string(category)), zap.Error(err))
		}
	}

	listings, err := uc.repo.FindByCategory(ctx, category)
	if err != nil {
		uc.logger.Error("Failed to load listings", zap.String("category", string(category)), zap.Error(err))
		return nil, wrapRepo("load listings", err)
	}

	if uc.cache != nil {
		if err := uc.cache.SetCategory(ctx, category, listings, uc.cacheTTL); err != nil {
			uc.logger.Warn("Failed to store listing snapshot", zap.String("category", string(category)), zap.Error(err))
		}
	}
	return listings, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}
