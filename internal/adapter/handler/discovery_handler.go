package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/discovery/filter"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/usecase"
)

type listingView struct {
	ID             string            `json:"id"`
	OwnerID        string            `json:"owner_id"`
	Category       domain.Category   `json:"category"`
	Title          string            `json:"title"`
	Description    string            `json:"description,omitempty"`
	Price          float64           `json:"price"`
	Location       string            `json:"location,omitempty"`
	Condition      domain.Condition  `json:"condition,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	Tier           domain.Tier       `json:"tier"`
	DaysRemaining  int               `json:"days_remaining"`
	PresenceActive bool              `json:"presence_active"`
}

type searchResponse struct {
	Listings []listingView `json:"listings"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	Limit    int           `json:"limit"`
}

func toSearchResponse(res *usecase.SearchResult) searchResponse {
	out := searchResponse{Listings: make([]listingView, 0, len(res.Hits)), Total: res.Total, Page: res.Page, Limit: res.Limit}
	for _, hit := range res.Hits {
		l := hit.Listing
		out.Listings = append(out.Listings, listingView{
			ID:             l.ID,
			OwnerID:        l.OwnerID,
			Category:       l.Category,
			Title:          l.Title,
			Description:    l.Description,
			Price:          l.Price,
			Location:       l.Location,
			Condition:      l.Condition,
			Attributes:     l.Attributes,
			CreatedAt:      l.CreatedAt,
			Tier:           hit.Tier,
			DaysRemaining:  hit.DaysRemaining,
			PresenceActive: hit.PresenceActive,
		})
	}
	return out
}

// HandleSearch serves GET /api/discovery/{category}/search.
// condition and tag may repeat; price bounds accept locale-formatted decimals.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const method = "Search"
	start := time.Now()
	q := r.URL.Query()

	in := usecase.SearchInput{
		Category: chi.URLParam(r, "category"),
		Filter: filter.Params{
			Term:          q.Get("q"),
			MinPrice:      q.Get("min_price"),
			MaxPrice:      q.Get("max_price"),
			Location:      q.Get("location"),
			Conditions:    q["condition"],
			Tags:          q["tag"],
			Compatibility: q.Get("compat"),
		},
		Sort:  q.Get("sort"),
		Page:  parseIntQueryParam(r, "page", 1),
		Limit: parseIntQueryParam(r, "limit", 0),
	}

	res, err := h.discovery.Search(r.Context(), in)
	if err != nil {
		h.handleError(w, method, start, err)
		return
	}
	h.ok(w, method, start, http.StatusOK, toSearchResponse(res))
}
