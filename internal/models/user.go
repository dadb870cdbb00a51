package models

// RoleLecturer can create bookings for themselves and request cancellation of
// their own approved bookings.
const RoleLecturer = "lecturer"

// RoleAdmin can approve/reject/cancel bookings, manage rooms, and book on
// behalf of an occupant.
const RoleAdmin = "admin"

// RoleSuperAdmin additionally manages user roles and reads the audit trail.
const RoleSuperAdmin = "superadmin"

// IsAuthority reports whether the role may act on bookings it does not own.
func IsAuthority(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	IsActive     bool   `json:"is_active"`
}

// Snapshot returns the user state for audit old/new values. The password hash
// never appears in the audit trail.
func (u *User) Snapshot() map[string]any {
	return map[string]any{
		"id":        u.ID,
		"username":  u.Username,
		"name":      u.Name,
		"role":      u.Role,
		"is_active": u.IsActive,
	}
}
