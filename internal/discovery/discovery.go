// Package discovery composes filtering and ranking into a single search.
package discovery

import (
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/discovery/filter"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/discovery/ranking"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
)

// Engine searches within one category. Tiers are derived from the source on
// every call, never cached alongside the listings.
type Engine struct {
	tiers ranking.TierSource
}

func NewEngine(tiers ranking.TierSource) *Engine {
	return &Engine{tiers: tiers}
}

// Search scopes spec to category, keeps the matching listings and ranks them.
// No match is a normal outcome and yields an empty, non-nil slice.
func (e *Engine) Search(category domain.Category, spec filter.Spec, listings []*domain.Listing, opts ...ranking.Option) []*domain.Listing {
	spec = spec.WithCategory(category)

	matched := make([]*domain.Listing, 0, len(listings))
	for _, l := range listings {
		if filter.Matches(l, spec) {
			matched = append(matched, l)
		}
	}
	return ranking.Rank(matched, e.tiers, opts...)
}
