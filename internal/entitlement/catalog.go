// Package entitlement resolves the authoritative feature and limit set
// for an organization by layering tier defaults, license payload
// overrides, and per-organization overrides.
package entitlement

import (
	"github.com/fullchaos-studio/devhealth/internal/license"
	"github.com/fullchaos-studio/devhealth/internal/models"
)

// Catalog is an indexed view over the feature flag catalog. The catalog
// itself is externally maintained; this subsystem only reads it.
type Catalog struct {
	flags map[string]models.FeatureFlag
	order []string
}

// NewCatalog builds a catalog from flag records. Later duplicates of a key
// replace earlier ones.
func NewCatalog(flags []models.FeatureFlag) *Catalog {
	c := &Catalog{flags: make(map[string]models.FeatureFlag, len(flags))}
	for _, f := range flags {
		if _, seen := c.flags[f.Key]; !seen {
			c.order = append(c.order, f.Key)
		}
		c.flags[f.Key] = f
	}
	return c
}

// Get returns the flag for a key.
func (c *Catalog) Get(key string) (models.FeatureFlag, bool) {
	f, ok := c.flags[key]
	return f, ok
}

// Keys returns the catalog keys in registration order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys
}

// StandardFlags returns the built-in feature catalog. Deployments may
// extend or replace it with an externally maintained catalog.
func StandardFlags() []models.FeatureFlag {
	return []models.FeatureFlag{
		{Key: "git_sync", Name: "Git Sync", Category: models.CategoryCore, MinTier: license.TierCommunity, Enabled: true, Description: "Sync git commits and PRs"},
		{Key: "work_items_sync", Name: "Work Items Sync", Category: models.CategoryCore, MinTier: license.TierCommunity, Enabled: true, Description: "Sync work items from providers"},
		{Key: "basic_analytics", Name: "Basic Analytics", Category: models.CategoryAnalytics, MinTier: license.TierCommunity, Enabled: true, Description: "Basic metrics and dashboards"},
		{Key: "team_management", Name: "Team Management", Category: models.CategoryCore, MinTier: license.TierCommunity, Enabled: true, Description: "Basic team configuration"},
		{Key: "investment_view", Name: "Investment View", Category: models.CategoryAnalytics, MinTier: license.TierCommunity, Enabled: true, Description: "Investment categorization view"},
		{Key: "github_integration", Name: "GitHub Integration", Category: models.CategoryIntegrations, MinTier: license.TierTeam, Enabled: true, Description: "GitHub provider integration"},
		{Key: "gitlab_integration", Name: "GitLab Integration", Category: models.CategoryIntegrations, MinTier: license.TierTeam, Enabled: true, Description: "GitLab provider integration"},
		{Key: "jira_integration", Name: "Jira Integration", Category: models.CategoryIntegrations, MinTier: license.TierTeam, Enabled: true, Description: "Jira provider integration"},
		{Key: "team_dashboard", Name: "Team Dashboard", Category: models.CategoryAnalytics, MinTier: license.TierTeam, Enabled: true, Description: "Team-level dashboards"},
		{Key: "api_access", Name: "API Access", Category: models.CategoryCore, MinTier: license.TierTeam, Enabled: true, Description: "REST and GraphQL API access"},
		{Key: "capacity_forecast", Name: "Capacity Forecast", Category: models.CategoryAnalytics, MinTier: license.TierTeam, Enabled: true, Description: "Capacity planning forecasts"},
		{Key: "work_graph", Name: "Work Graph", Category: models.CategoryAnalytics, MinTier: license.TierTeam, Enabled: true, Description: "Work graph analysis"},
		{Key: "quadrant_analysis", Name: "Quadrant Analysis", Category: models.CategoryAnalytics, MinTier: license.TierTeam, Enabled: true, Description: "Quadrant metrics analysis"},
		{Key: "llm_categorization", Name: "LLM Categorization", Category: models.CategoryAnalytics, MinTier: license.TierTeam, Enabled: true, Description: "AI-powered work categorization"},
		{Key: "webhooks", Name: "Webhooks", Category: models.CategoryIntegrations, MinTier: license.TierTeam, Enabled: true, Description: "Webhook ingestion"},
		{Key: "scheduled_jobs", Name: "Scheduled Jobs", Category: models.CategoryCore, MinTier: license.TierTeam, Enabled: true, Description: "Automated scheduled sync jobs"},
		{Key: "custom_integrations", Name: "Custom Integrations", Category: models.CategoryIntegrations, MinTier: license.TierTeam, Enabled: true, Description: "Custom provider integrations"},
		{Key: "sso", Name: "Single Sign-On", Category: models.CategorySecurity, MinTier: license.TierEnterprise, Enabled: true, Description: "SAML and OIDC single sign-on"},
		{Key: "audit_log", Name: "Audit Log", Category: models.CategoryCompliance, MinTier: license.TierEnterprise, Enabled: true, Description: "Audit logging"},
		{Key: "retention_policies", Name: "Retention Policies", Category: models.CategoryCompliance, MinTier: license.TierEnterprise, Enabled: true, Description: "Custom data retention policies"},
		{Key: "ip_allowlist", Name: "IP Allowlist", Category: models.CategorySecurity, MinTier: license.TierEnterprise, Enabled: true, Description: "IP address allowlisting"},
		{Key: "data_export", Name: "Data Export", Category: models.CategoryCompliance, MinTier: license.TierEnterprise, Enabled: true, Description: "Bulk data export"},
		{Key: "multi_org", Name: "Multi-Organization", Category: models.CategoryAdmin, MinTier: license.TierEnterprise, Enabled: true, Description: "Multiple organization support"},
		{Key: "custom_branding", Name: "Custom Branding", Category: models.CategoryAdmin, MinTier: license.TierEnterprise, Enabled: true, Description: "Custom branding and white-label"},
		{Key: "priority_support", Name: "Priority Support", Category: models.CategoryAdmin, MinTier: license.TierEnterprise, Enabled: true, Description: "Priority support SLA"},
	}
}

// StandardCatalog returns a catalog built from the built-in flags.
func StandardCatalog() *Catalog {
	return NewCatalog(StandardFlags())
}
