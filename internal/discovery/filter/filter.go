// Package filter evaluates listing filter specifications.
package filter

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
)

// Params is the raw, caller-supplied form of a filter specification.
// Price bounds are kept as strings so locale formats can be normalized here.
type Params struct {
	Category      domain.Category
	Term          string
	MinPrice      string
	MaxPrice      string
	Location      string
	Conditions    []string
	Tags          []string
	Compatibility string
}

// Spec is an immutable filter specification. The zero value matches every listing.
type Spec struct {
	category   domain.Category
	term       string
	location   string
	compat     string
	min, max   float64
	hasMin     bool
	hasMax     bool
	conditions []domain.Condition
	tags       []string
}

// NewSpec validates params and builds a Spec. Malformed price bounds are left
// unset; a minimum above the maximum is rejected.
func NewSpec(p Params) (Spec, error) {
	var s Spec
	if p.Category != "" {
		if !p.Category.IsValid() {
			return Spec{}, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, p.Category)
		}
		s.category = p.Category
	}

	s.term = fold(p.Term)
	s.location = fold(p.Location)
	s.compat = fold(p.Compatibility)
	s.min, s.hasMin = ParseDecimal(p.MinPrice)
	s.max, s.hasMax = ParseDecimal(p.MaxPrice)
	if s.hasMin && s.hasMax && s.min > s.max {
		return Spec{}, fmt.Errorf("%w: min price %v exceeds max price %v", domain.ErrValidation, s.min, s.max)
	}

	for _, raw := range p.Conditions {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		c, err := domain.ParseCondition(raw)
		if err != nil {
			return Spec{}, err
		}
		s.conditions = append(s.conditions, c)
	}
	for _, t := range p.Tags {
		if t = fold(t); t != "" {
			s.tags = append(s.tags, t)
		}
	}
	return s, nil
}

// Category returns the category restriction, empty when unset.
func (s Spec) Category() domain.Category { return s.category }

// WithCategory returns a copy of s scoped to c.
func (s Spec) WithCategory(c domain.Category) Spec {
	s.category = c
	return s
}

// PriceRange returns the parsed bounds and whether each is set.
func (s Spec) PriceRange() (lo float64, hasLo bool, hi float64, hasHi bool) {
	return s.min, s.hasMin, s.max, s.hasMax
}

// IsEmpty reports whether no clause other than the category is active.
func (s Spec) IsEmpty() bool {
	return s.term == "" && s.location == "" && s.compat == "" && !s.hasMin && !s.hasMax &&
		len(s.conditions) == 0 && len(s.tags) == 0
}

// Matches is the conjunction of every active clause of spec against l.
// A clause that references an attribute the listing lacks fails.
func Matches(l *domain.Listing, spec Spec) bool {
	if l == nil {
		return false
	}
	if spec.category != "" && l.Category != spec.category {
		return false
	}
	if spec.term != "" && !contains(l.Title, spec.term) && !contains(l.Location, spec.term) {
		return false
	}
	if spec.hasMin && l.Price < spec.min {
		return false
	}
	if spec.hasMax && l.Price > spec.max {
		return false
	}
	if spec.location != "" && !contains(l.Location, spec.location) {
		return false
	}
	if len(spec.conditions) > 0 && !hasCondition(spec.conditions, l.Condition) {
		return false
	}
	if len(spec.tags) > 0 && !matchesAnyTag(l, spec.tags) {
		return false
	}
	if spec.compat != "" && !contains(l.Title, spec.compat) && !contains(l.Description, spec.compat) {
		return false
	}
	return true
}

func hasCondition(set []domain.Condition, c domain.Condition) bool {
	if c == domain.ConditionUnknown {
		return false
	}
	for _, want := range set {
		if want == c {
			return true
		}
	}
	return false
}

func matchesAnyTag(l *domain.Listing, tags []string) bool {
	attr, ok := l.Attribute(l.Category.TagAttribute())
	if !ok || attr == "" {
		return false
	}
	folded := fold(attr)
	for _, t := range tags {
		if strings.Contains(folded, t) {
			return true
		}
	}
	return false
}

// contains reports whether the folded needle occurs in haystack.
func contains(haystack, foldedNeedle string) bool {
	if haystack == "" {
		return false
	}
	return strings.Contains(fold(haystack), foldedNeedle)
}

// fold applies Unicode case folding. A Caser holds state, so one is built per call.
func fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return cases.Fold().String(s)
}
