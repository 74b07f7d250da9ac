package models

import "github.com/google/uuid"

// MemberRole is an organization membership role. Roles form a fixed
// hierarchy: viewer < member < admin < owner. Higher roles inherit every
// permission granted below them.
type MemberRole string

const (
	// RoleViewer has read-only access.
	RoleViewer MemberRole = "viewer"
	// RoleMember has standard access.
	RoleMember MemberRole = "member"
	// RoleAdmin manages members, settings, and integrations.
	RoleAdmin MemberRole = "admin"
	// RoleOwner has full control including org deletion.
	RoleOwner MemberRole = "owner"
)

// ValidRoles returns the role hierarchy from lowest to highest.
func ValidRoles() []MemberRole {
	return []MemberRole{RoleViewer, RoleMember, RoleAdmin, RoleOwner}
}

// IsValid checks if the role is a recognized value.
func (r MemberRole) IsValid() bool {
	for _, valid := range ValidRoles() {
		if r == valid {
			return true
		}
	}
	return false
}

// User is the authenticated principal the permission engine consumes.
type User struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Role        MemberRole `json:"role"`
	IsSuperuser bool       `json:"is_superuser"`
	OrgID       uuid.UUID  `json:"org_id"`
}
