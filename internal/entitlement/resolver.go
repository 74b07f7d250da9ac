package entitlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fullchaos-studio/devhealth/internal/license"
	"github.com/fullchaos-studio/devhealth/internal/models"
)

// OrgState bundles the read-only inputs for one organization's resolution:
// the org's tier string, its validated license payload (nil when
// unlicensed), and the live per-org overrides maintained by the
// surrounding system.
type OrgState struct {
	OrgID            uuid.UUID
	Tier             string
	Payload          *license.Payload
	InGracePeriod    bool
	FeatureOverrides []models.OrgFeatureOverride
	LimitOverrides   map[string]int
}

// Snapshot is the authoritative entitlement set for one organization at
// one point in time. Ephemeral: recompute on demand or cache with explicit
// invalidation.
type Snapshot struct {
	Tier          license.Tier    `json:"tier"`
	Features      map[string]bool `json:"features"`
	Limits        map[string]int  `json:"limits"`
	Licensed      bool            `json:"is_licensed"`
	InGracePeriod bool            `json:"in_grace_period"`
}

// Resolver computes entitlement snapshots. It holds only the catalog and a
// logger, performs no I/O, and is safe for concurrent use.
type Resolver struct {
	catalog *Catalog
	logger  zerolog.Logger
}

// NewResolver creates a resolver over the given feature catalog.
func NewResolver(catalog *Catalog, logger zerolog.Logger) *Resolver {
	return &Resolver{
		catalog: catalog,
		logger:  logger.With().Str("component", "entitlement_resolver").Logger(),
	}
}

// resolveTier parses the org's tier string, defaulting unknown values to
// community rather than propagating the error (fail closed).
func (r *Resolver) resolveTier(st OrgState) license.Tier {
	tier, err := license.ParseTier(st.Tier)
	if err != nil {
		r.logger.Warn().
			Str("org_id", st.OrgID.String()).
			Str("tier", st.Tier).
			Msg("unknown org tier, defaulting to community")
		return license.TierCommunity
	}
	return tier
}

// Snapshot resolves the full entitlement set for an organization.
func (r *Resolver) Snapshot(st OrgState, now time.Time) Snapshot {
	tier := r.resolveTier(st)

	features := make(map[string]bool, len(r.catalog.order))
	for _, key := range r.catalog.Keys() {
		features[key] = r.resolveFlag(st, tier, key, now)
	}

	return Snapshot{
		Tier:          tier,
		Features:      features,
		Limits:        r.resolveLimits(st, tier),
		Licensed:      st.Payload != nil,
		InGracePeriod: st.InGracePeriod,
	}
}

// HasFeature answers "does org X have feature Y". Keys not in the catalog
// resolve to false with a warning, never an error.
func (r *Resolver) HasFeature(st OrgState, key string, now time.Time) bool {
	if _, ok := r.catalog.Get(key); !ok {
		r.logger.Warn().
			Str("org_id", st.OrgID.String()).
			Str("feature", key).
			Msg("unknown feature requested")
		return false
	}
	return r.resolveFlag(st, r.resolveTier(st), key, now)
}

// resolveFlag layers the three sources for one catalog flag, highest
// precedence last: tier-rank default, payload feature override, unexpired
// org override. An expired org override falls through to the previous
// layer; it never reads as "disabled".
func (r *Resolver) resolveFlag(st OrgState, tier license.Tier, key string, now time.Time) bool {
	flag, ok := r.catalog.Get(key)
	if !ok {
		return false
	}
	// Global kill switch wins over every layer.
	if !flag.Enabled {
		return false
	}

	enabled := tier.Rank() >= flag.MinTier.Rank()

	if st.Payload != nil {
		if v, ok := st.Payload.Features[key]; ok {
			enabled = v
		}
	}

	for i := range st.FeatureOverrides {
		o := &st.FeatureOverrides[i]
		if o.FeatureKey != key || o.Expired(now) {
			continue
		}
		enabled = o.Enabled
	}

	return enabled
}

// FeatureAccess is the detailed result of a single feature check, with
// enough context for callers to render an upgrade prompt.
type FeatureAccess struct {
	Allowed      bool         `json:"allowed"`
	Reason       string       `json:"reason,omitempty"`
	CurrentTier  license.Tier `json:"current_tier"`
	RequiredTier license.Tier `json:"required_tier,omitempty"`
}

// CheckFeatureAccess resolves one feature with denial context attached.
func (r *Resolver) CheckFeatureAccess(st OrgState, key string, now time.Time) FeatureAccess {
	tier := r.resolveTier(st)

	flag, ok := r.catalog.Get(key)
	if !ok {
		r.logger.Warn().
			Str("org_id", st.OrgID.String()).
			Str("feature", key).
			Msg("unknown feature requested")
		return FeatureAccess{CurrentTier: tier, Reason: "Unknown feature: " + key}
	}
	if !flag.Enabled {
		return FeatureAccess{CurrentTier: tier, Reason: "Feature is globally disabled"}
	}

	access := FeatureAccess{
		CurrentTier:  tier,
		RequiredTier: flag.MinTier,
	}
	if r.resolveFlag(st, tier, key, now) {
		access.Allowed = true
		return access
	}
	access.Reason = "Requires " + string(flag.MinTier) + " tier or higher"
	return access
}

// resolveLimits merges the limit layers: tier defaults, then the payload's
// limits record, then org-level overrides. Org limit overrides carry no
// expiry; only feature overrides do.
func (r *Resolver) resolveLimits(st OrgState, tier license.Tier) map[string]int {
	limits := license.DefaultLimits(tier).AsMap()

	if st.Payload != nil {
		for name, v := range st.Payload.Limits.AsMap() {
			limits[name] = v
		}
	}
	for name, v := range st.LimitOverrides {
		limits[name] = v
	}

	return limits
}

// Limit returns the resolved value of one named limit. The second return
// is false for names unknown to every layer.
func (r *Resolver) Limit(st OrgState, name string) (int, bool) {
	if v, ok := st.LimitOverrides[name]; ok {
		return v, true
	}
	if st.Payload != nil {
		if v, ok := st.Payload.Limits.Get(name); ok {
			return v, true
		}
	}
	return license.DefaultLimits(r.resolveTier(st)).Get(name)
}

// CheckLimit answers "is org X within limit Z given current value V".
// Unknown limit names fail closed with a warning; a -1 limit always
// passes.
func (r *Resolver) CheckLimit(st OrgState, name string, current int) bool {
	limit, ok := r.Limit(st, name)
	if !ok {
		r.logger.Warn().
			Str("org_id", st.OrgID.String()).
			Str("limit", name).
			Msg("unknown limit requested")
		return false
	}
	if limit == license.Unlimited {
		return true
	}
	return current <= limit
}
