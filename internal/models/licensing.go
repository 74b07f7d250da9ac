// Package models defines the data records exchanged with the surrounding
// platform. The persistence layer owns these records; the licensing
// subsystem treats them as read-only inputs.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fullchaos-studio/devhealth/internal/license"
)

// Organization is the minimal org record the gating engine consumes.
type Organization struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Tier string    `json:"tier"`
}

// FeatureCategory groups catalog features for display.
type FeatureCategory string

const (
	CategoryCore         FeatureCategory = "core"
	CategoryAnalytics    FeatureCategory = "analytics"
	CategoryIntegrations FeatureCategory = "integrations"
	CategorySecurity     FeatureCategory = "security"
	CategoryCompliance   FeatureCategory = "compliance"
	CategoryAdmin        FeatureCategory = "admin"
)

// FeatureFlag is a catalog entry: one gated feature with the minimum tier
// that unlocks it by default and a global kill switch.
type FeatureFlag struct {
	Key         string          `json:"key"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    FeatureCategory `json:"category"`
	MinTier     license.Tier    `json:"min_tier"`
	Enabled     bool            `json:"is_enabled"`
	Beta        bool            `json:"is_beta,omitempty"`
	Deprecated  bool            `json:"is_deprecated,omitempty"`
}

// OrgFeatureOverride force-enables or force-disables one feature for one
// organization, optionally until ExpiresAt. An expired override no longer
// applies at all; it does not read as "disabled".
type OrgFeatureOverride struct {
	OrgID      uuid.UUID  `json:"org_id"`
	FeatureKey string     `json:"feature_key"`
	Enabled    bool       `json:"is_enabled"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	CreatedBy  *uuid.UUID `json:"created_by,omitempty"`
}

// Expired reports whether the override has lapsed at the given time.
// Overrides without an expiry never lapse.
func (o *OrgFeatureOverride) Expired(now time.Time) bool {
	return o.ExpiresAt != nil && o.ExpiresAt.Before(now)
}

// OrgLicense is the stored license record for an organization. The
// surrounding system caches Valid and ValidationError, but consumers must
// re-validate LicenseKey on every load rather than trust the cached flags.
type OrgLicense struct {
	OrgID            uuid.UUID       `json:"org_id"`
	LicenseKey       string          `json:"license_key,omitempty"`
	Tier             string          `json:"tier"`
	IssuedAt         *time.Time      `json:"issued_at,omitempty"`
	ExpiresAt        *time.Time      `json:"expires_at,omitempty"`
	Valid            bool            `json:"is_valid"`
	ValidationError  string          `json:"validation_error,omitempty"`
	LastValidatedAt  *time.Time      `json:"last_validated_at,omitempty"`
	CustomerID       string          `json:"customer_id,omitempty"`
	FeaturesOverride map[string]bool `json:"features_override,omitempty"`
	LimitsOverride   map[string]int  `json:"limits_override,omitempty"`
}
