package domain

import "time"

// Role enumerates the account types known to the service.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"
	RoleAdmin    Role = "admin"
)

// IsAgent reports whether the role is eligible for ticket assignment.
func (r Role) IsAgent() bool {
	return r == RoleAgent || r == RoleAdmin
}

// Valid reports whether the role is a known value.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// User is the domain model for customers and support staff alike.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
