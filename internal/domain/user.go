package domain

import "time"

// RoleSuperAdmin is granted internally and never exposed in session responses.
const RoleSuperAdmin = "superadmin"

// User is the domain model for repository users. Users live inside a tenant
// schema and are owned by the user directory.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// VisibleRoles returns the user's role names with duplicates and the internal
// super-admin role removed, preserving first-seen order.
func (u *User) VisibleRoles() []string {
	visible := make([]string, 0, len(u.Roles))
	seen := make(map[string]struct{}, len(u.Roles))
	for _, role := range u.Roles {
		if role == RoleSuperAdmin {
			continue
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		visible = append(visible, role)
	}
	return visible
}

// HasRole reports whether the user carries the named role.
func (u *User) HasRole(name string) bool {
	for _, role := range u.Roles {
		if role == name {
			return true
		}
	}
	return false
}
