package domain

import "strings"

// Tier is the paid placement plan of a boost window, ordered none < basic < advanced < premium.
type Tier string

const (
	TierNone     Tier = "none"
	TierBasic    Tier = "basic"
	TierAdvanced Tier = "advanced"
	TierPremium  Tier = "premium"
)

// IsKnown reports whether t is one of the four plan tiers.
func (t Tier) IsKnown() bool {
	switch t {
	case TierNone, TierBasic, TierAdvanced, TierPremium:
		return true
	}
	return false
}

// Priority is the ranking weight of a tier. Any unrecognized non-empty plan counts as basic.
func (t Tier) Priority() int {
	switch t {
	case TierPremium:
		return 3
	case TierAdvanced:
		return 2
	case TierBasic:
		return 1
	case TierNone, "":
		return 0
	}
	return 1
}

// NormalizeTier lower-cases a plan name coming from billing. Unknown names are kept verbatim.
func NormalizeTier(s string) Tier {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return TierNone
	}
	return t
}
