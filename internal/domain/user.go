package domain

import "time"

// Role enumerates the authorization tiers.
type Role string

const (
	RoleUser  Role = "user"
	RoleTech  Role = "tech"
	RoleAdmin Role = "admin"
)

// ValidRole reports whether r is a known role value.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleTech, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role carries tech or admin powers.
func (r Role) IsStaff() bool {
	return r == RoleTech || r == RoleAdmin
}

// User is the domain model for anyone who can log in.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
