package domain

import "fmt"

// Role is a user role.
type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

// ValidRoles returns the set of valid user roles.
func ValidRoles() []Role {
	return []Role{RoleBuyer, RoleSeller, RoleAdmin}
}

// ParseRole converts a string into a Role.
func ParseRole(s string) (Role, error) {
	for _, r := range ValidRoles() {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid role: %q", s)
}

// Status is a user account status.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

// ParseStatus converts a string into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusInactive, StatusSuspended:
		return Status(s), nil
	default:
		return "", fmt.Errorf("invalid status: %q", s)
	}
}
