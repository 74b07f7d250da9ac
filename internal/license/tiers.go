// Package license provides license key generation, validation, and
// tier-based entitlement defaults for devhealth.
package license

import "strings"

// Tier represents the subscription level.
type Tier string

const (
	// TierCommunity is the free tier with basic analytics.
	TierCommunity Tier = "community"
	// TierTeam unlocks team dashboards and custom integrations.
	TierTeam Tier = "team"
	// TierEnterprise unlocks all features including SSO and audit logging.
	TierEnterprise Tier = "enterprise"
)

// ValidTiers returns all valid license tiers in rank order.
func ValidTiers() []Tier {
	return []Tier{TierCommunity, TierTeam, TierEnterprise}
}

// IsValid checks if the tier is a recognized value.
func (t Tier) IsValid() bool {
	return t.Rank() >= 0
}

// Rank returns the ordinal rank of the tier, or -1 for unknown tiers.
// Higher ranks unlock everything lower ranks do.
func (t Tier) Rank() int {
	switch t {
	case TierCommunity:
		return 0
	case TierTeam:
		return 1
	case TierEnterprise:
		return 2
	default:
		return -1
	}
}

// ParseTier parses a tier from an arbitrary string, case-insensitively.
// Returns an *InvalidTierError naming the valid values on failure.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(s))
	if !t.IsValid() {
		return "", &InvalidTierError{Tier: s}
	}
	return t, nil
}

// Unlimited is a sentinel limit value indicating no cap on a resource.
const Unlimited = -1

// Limits defines the numeric quantities enforced by a license.
// A value of -1 means unlimited; all other values are non-negative.
type Limits struct {
	Users   int `json:"users"`
	Repos   int `json:"repos"`
	APIRate int `json:"api_rate"`
}

// Get returns the named limit value. The second return is false for
// unknown limit names.
func (l Limits) Get(name string) (int, bool) {
	switch name {
	case "users":
		return l.Users, true
	case "repos":
		return l.Repos, true
	case "api_rate":
		return l.APIRate, true
	default:
		return 0, false
	}
}

// AsMap returns the limits as a name-keyed map.
func (l Limits) AsMap() map[string]int {
	return map[string]int{
		"users":    l.Users,
		"repos":    l.Repos,
		"api_rate": l.APIRate,
	}
}

// IsUnlimited returns true if the named limit is the unlimited sentinel.
func (l Limits) IsUnlimited(name string) bool {
	v, ok := l.Get(name)
	return ok && v == Unlimited
}

// tierFeatures maps each tier to its default feature availability.
// Keys absent for a tier are false, never true.
var tierFeatures = map[Tier]map[string]bool{
	TierCommunity: {
		"basic_analytics":     true,
		"investment_view":     true,
		"team_dashboard":      false,
		"sso":                 false,
		"audit_log":           false,
		"ip_allowlist":        false,
		"retention_policies":  false,
		"custom_integrations": false,
		"priority_support":    false,
	},
	TierTeam: {
		"basic_analytics":     true,
		"investment_view":     true,
		"team_dashboard":      true,
		"sso":                 false,
		"audit_log":           false,
		"ip_allowlist":        false,
		"retention_policies":  false,
		"custom_integrations": true,
		"priority_support":    false,
	},
	TierEnterprise: {
		"basic_analytics":     true,
		"investment_view":     true,
		"team_dashboard":      true,
		"sso":                 true,
		"audit_log":           true,
		"ip_allowlist":        true,
		"retention_policies":  true,
		"custom_integrations": true,
		"priority_support":    true,
	},
}

// tierLimits maps each tier to its default limits.
var tierLimits = map[Tier]Limits{
	TierCommunity:  {Users: 5, Repos: 3, APIRate: 60},
	TierTeam:       {Users: 25, Repos: 20, APIRate: 300},
	TierEnterprise: {Users: Unlimited, Repos: Unlimited, APIRate: Unlimited},
}

// tierGraceDays maps each tier to its post-expiry grace window in days.
var tierGraceDays = map[Tier]int{
	TierCommunity:  0,
	TierTeam:       14,
	TierEnterprise: 30,
}

// DefaultFeatures returns a copy of the default feature set for the tier.
// Unknown tiers get the community defaults (fail closed).
func DefaultFeatures(tier Tier) map[string]bool {
	src, ok := tierFeatures[tier]
	if !ok {
		src = tierFeatures[TierCommunity]
	}
	out := make(map[string]bool, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// DefaultLimits returns the default limits for the tier.
// Unknown tiers get the community defaults (fail closed).
func DefaultLimits(tier Tier) Limits {
	limits, ok := tierLimits[tier]
	if !ok {
		return tierLimits[TierCommunity]
	}
	return limits
}

// GraceDays returns the default grace period length in days for the tier.
func GraceDays(tier Tier) int {
	days, ok := tierGraceDays[tier]
	if !ok {
		return tierGraceDays[TierCommunity]
	}
	return days
}
