package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category is the closed set of catalog sections a listing can belong to.
type Category string

const (
	CategoryVehicle        Category = "vehicle"
	CategoryRealEstate     Category = "real_estate"
	CategoryPartsOrService Category = "parts_or_service"
)

// IsValid checks if the Category is one of the defined constants.
func (c Category) IsValid() bool {
	switch c {
	case CategoryVehicle, CategoryRealEstate, CategoryPartsOrService:
		return true
	}
	return false
}

// ParseCategory accepts the canonical names plus the hyphenated spellings used by older clients.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: unknown category %q", ErrValidation, s)
	}
	return c, nil
}

// TagAttribute names the category-specific attribute searched by tag filters.
func (c Category) TagAttribute() string {
	switch c {
	case CategoryVehicle:
		return "features"
	case CategoryRealEstate:
		return "amenities"
	case CategoryPartsOrService:
		return "part_type"
	}
	return ""
}

// Condition of the advertised item. The empty value means no condition was recorded.
type Condition string

const (
	ConditionUnknown Condition = ""
	ConditionNew     Condition = "new"
	ConditionUsed    Condition = "used"
)

func ParseCondition(s string) (Condition, error) {
	switch c := Condition(strings.ToLower(strings.TrimSpace(s))); c {
	case ConditionNew, ConditionUsed:
		return c, nil
	}
	return ConditionUnknown, fmt.Errorf("%w: unknown condition %q", ErrValidation, s)
}

// Listing is a catalog entry. Category and ID are fixed at creation; Boost and
// Presence are independently lockable sub-objects owned by the promotion manager.
type Listing struct {
	ID          string
	OwnerID     string
	Category    Category
	Title       string
	Description string
	Price       float64
	Location    string
	Condition   Condition
	Attributes  map[string]string
	CreatedAt   time.Time

	Boost    *BoostWindow
	Presence *PresenceFlag
}

// NewListing validates the immutable parts of a listing and attaches empty promotion state.
func NewListing(id string, category Category, title string, price float64) (*Listing, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: listing id cannot be empty", ErrValidation)
	}
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}
	if price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	return &Listing{
		ID:         id,
		Category:   category,
		Title:      title,
		Price:      price,
		Attributes: map[string]string{},
		Boost:      &BoostWindow{},
		Presence:   &PresenceFlag{},
	}, nil
}

// Attribute returns a category-specific attribute and whether it is recorded.
func (l *Listing) Attribute(key string) (string, bool) {
	if l.Attributes == nil {
		return "", false
	}
	v, ok := l.Attributes[key]
	return v, ok
}
