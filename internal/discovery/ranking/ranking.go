// Package ranking orders listings by effective promotion tier.
package ranking

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
)

// TierSource derives the tier of a listing at call time.
type TierSource interface {
	EffectiveTier(l *domain.Listing) domain.Tier
}

// SortKey is an optional secondary ordering applied within a tier.
type SortKey string

const (
	SortNone      SortKey = ""
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortNewest    SortKey = "newest"
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortNone, SortPriceAsc, SortPriceDesc, SortNewest:
		return k, nil
	}
	return SortNone, fmt.Errorf("%w: unknown sort key %q", domain.ErrValidation, s)
}

type options struct {
	key SortKey
}

type Option func(*options)

// WithSortKey appends k after the tier key.
func WithSortKey(k SortKey) Option {
	return func(o *options) { o.key = k }
}

type ranked struct {
	listing  *domain.Listing
	priority int
}

// Rank returns a new slice ordered by effective tier priority, highest first.
// The sort is stable, so equal keys keep their input order. The input is not modified.
func Rank(listings []*domain.Listing, tiers TierSource, opts ...Option) []*domain.Listing {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	items := make([]ranked, 0, len(listings))
	for _, l := range listings {
		if l == nil {
			continue
		}
		items = append(items, ranked{listing: l, priority: tiers.EffectiveTier(l).Priority()})
	}

	slices.SortStableFunc(items, func(a, b ranked) int {
		if c := cmp.Compare(b.priority, a.priority); c != 0 {
			return c
		}
		return secondary(o.key, a.listing, b.listing)
	})

	out := make([]*domain.Listing, len(items))
	for i, it := range items {
		out[i] = it.listing
	}
	return out
}

func secondary(k SortKey, a, b *domain.Listing) int {
	switch k {
	case SortPriceAsc:
		return cmp.Compare(a.Price, b.Price)
	case SortPriceDesc:
		return cmp.Compare(b.Price, a.Price)
	case SortNewest:
		return b.CreatedAt.Compare(a.CreatedAt)
	}
	return 0
}
