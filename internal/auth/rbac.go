// Package auth provides role-based access control for devhealth.
package auth

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fullchaos-studio/devhealth/internal/models"
)

// Permission defines an action that can be performed.
type Permission string

const (
	// Analytics permissions
	PermAnalyticsRead   Permission = "analytics:read"
	PermAnalyticsExport Permission = "analytics:export"

	// Metrics permissions
	PermMetricsRead    Permission = "metrics:read"
	PermMetricsCompute Permission = "metrics:compute"

	// Work item permissions
	PermWorkItemsRead Permission = "work_items:read"
	PermWorkItemsSync Permission = "work_items:sync"

	// Git data permissions
	PermGitRead Permission = "git:read"
	PermGitSync Permission = "git:sync"

	// Team permissions
	PermTeamsRead  Permission = "teams:read"
	PermTeamsWrite Permission = "teams:write"

	// Settings permissions
	PermSettingsRead  Permission = "settings:read"
	PermSettingsWrite Permission = "settings:write"

	// Integration permissions
	PermIntegrationsRead  Permission = "integrations:read"
	PermIntegrationsWrite Permission = "integrations:write"

	// Member management permissions
	PermMembersRead   Permission = "members:read"
	PermMembersInvite Permission = "members:invite"
	PermMembersManage Permission = "members:manage"

	// Organization permissions
	PermOrgRead   Permission = "org:read"
	PermOrgWrite  Permission = "org:write"
	PermOrgDelete Permission = "org:delete"

	// Superuser-only administration
	PermAdminUsers Permission = "admin:users"
	PermAdminOrgs  Permission = "admin:orgs"
)

// AllPermissions returns the full permission catalog.
func AllPermissions() []Permission {
	return []Permission{
		PermAnalyticsRead, PermAnalyticsExport,
		PermMetricsRead, PermMetricsCompute,
		PermWorkItemsRead, PermWorkItemsSync,
		PermGitRead, PermGitSync,
		PermTeamsRead, PermTeamsWrite,
		PermSettingsRead, PermSettingsWrite,
		PermIntegrationsRead, PermIntegrationsWrite,
		PermMembersRead, PermMembersInvite, PermMembersManage,
		PermOrgRead, PermOrgWrite, PermOrgDelete,
		PermAdminUsers, PermAdminOrgs,
	}
}

// roleGrants maps each role to the permissions it adds on top of the roles
// below it in the hierarchy. Effective permissions are cumulative.
var roleGrants = map[models.MemberRole][]Permission{
	models.RoleViewer: {
		PermAnalyticsRead,
		PermMetricsRead,
		PermWorkItemsRead,
		PermGitRead,
		PermTeamsRead,
		PermSettingsRead,
		PermMembersRead,
		PermOrgRead,
	},
	models.RoleMember: {
		PermAnalyticsExport,
	},
	models.RoleAdmin: {
		PermMetricsCompute,
		PermWorkItemsSync,
		PermGitSync,
		PermTeamsWrite,
		PermSettingsWrite,
		PermIntegrationsRead,
		PermIntegrationsWrite,
		PermMembersInvite,
		PermMembersManage,
		PermOrgWrite,
	},
	models.RoleOwner: {
		PermOrgDelete,
	},
}

// ErrPermissionDenied is returned when a user lacks a required permission.
var ErrPermissionDenied = errors.New("permission denied")

// RBAC resolves effective permission sets from roles. Permission sets are
// a function of role alone, so results are memoized per role; the cache
// only ever holds the four known roles and is invalidated explicitly when
// the role-to-permission mapping changes, never per user or org mutation.
type RBAC struct {
	mu      sync.RWMutex
	cache   map[models.MemberRole]map[Permission]struct{}
	catalog map[Permission]struct{}
	logger  zerolog.Logger
}

// NewRBAC creates a new RBAC engine.
func NewRBAC(logger zerolog.Logger) *RBAC {
	return &RBAC{
		cache:  make(map[models.MemberRole]map[Permission]struct{}, len(models.ValidRoles())),
		logger: logger.With().Str("component", "rbac").Logger(),
	}
}

// PermissionsForRole returns the effective permission set for a role: the
// union of the role's grants and every role below it. Unknown roles yield
// an empty set and a warning, never an error.
func (r *RBAC) PermissionsForRole(role models.MemberRole) map[Permission]struct{} {
	if !role.IsValid() {
		r.logger.Warn().Str("role", string(role)).Msg("unknown role")
		return map[Permission]struct{}{}
	}

	r.mu.RLock()
	if perms, ok := r.cache[role]; ok {
		r.mu.RUnlock()
		return perms
	}
	r.mu.RUnlock()

	perms := make(map[Permission]struct{})
	for _, lower := range models.ValidRoles() {
		for _, p := range roleGrants[lower] {
			perms[p] = struct{}{}
		}
		if lower == role {
			break
		}
	}

	r.mu.Lock()
	r.cache[role] = perms
	r.mu.Unlock()
	return perms
}

// allPermissions returns the cached catalog set.
func (r *RBAC) allPermissions() map[Permission]struct{} {
	r.mu.RLock()
	if r.catalog != nil {
		defer r.mu.RUnlock()
		return r.catalog
	}
	r.mu.RUnlock()

	catalog := make(map[Permission]struct{})
	for _, p := range AllPermissions() {
		catalog[p] = struct{}{}
	}

	r.mu.Lock()
	r.catalog = catalog
	r.mu.Unlock()
	return catalog
}

// HasPermission checks if the user has the given permission. Unknown
// permission names resolve to false with a warning so a typo in a caller
// denies rather than grants. A superuser bypasses the hierarchy entirely.
func (r *RBAC) HasPermission(user *models.User, perm Permission) bool {
	if user == nil {
		return false
	}
	if user.IsSuperuser {
		return true
	}
	if _, known := r.allPermissions()[perm]; !known {
		r.logger.Warn().Str("permission", string(perm)).Msg("unknown permission requested")
		return false
	}
	_, ok := r.PermissionsForRole(user.Role)[perm]
	return ok
}

// HasAnyPermission checks if the user has at least one of the permissions.
func (r *RBAC) HasAnyPermission(user *models.User, perms ...Permission) bool {
	for _, p := range perms {
		if r.HasPermission(user, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions checks if the user has every one of the permissions.
func (r *RBAC) HasAllPermissions(user *models.User, perms ...Permission) bool {
	for _, p := range perms {
		if !r.HasPermission(user, p) {
			return false
		}
	}
	return true
}

// UserPermissions returns the user's full permission set. Superusers get
// the entire catalog.
func (r *RBAC) UserPermissions(user *models.User) []Permission {
	if user == nil {
		return nil
	}
	var src map[Permission]struct{}
	if user.IsSuperuser {
		src = r.allPermissions()
	} else {
		src = r.PermissionsForRole(user.Role)
	}
	perms := make([]Permission, 0, len(src))
	for p := range src {
		perms = append(perms, p)
	}
	return perms
}

// RequirePermission returns ErrPermissionDenied if the user lacks the
// permission.
func (r *RBAC) RequirePermission(user *models.User, perm Permission) error {
	if !r.HasPermission(user, perm) {
		return ErrPermissionDenied
	}
	return nil
}

// InvalidateCache drops the memoized role and catalog sets. Call after
// changing the role-to-permission mapping.
func (r *RBAC) InvalidateCache() {
	r.mu.Lock()
	r.cache = make(map[models.MemberRole]map[Permission]struct{}, len(models.ValidRoles()))
	r.catalog = nil
	r.mu.Unlock()
}
