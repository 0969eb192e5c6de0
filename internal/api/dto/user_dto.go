package dto

import (
	"time"

	"github.com/spec-kit/customer-care-api/internal/domain"
)

// CreateUserRequest payload. The password is hashed before persistence
// and never echoed back.
type CreateUserRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
	IsActive *bool       `json:"is_active"`
}

// UpdateUserRequest payload. Empty fields are left unchanged.
type UpdateUserRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
	IsActive *bool       `json:"is_active"`
}

// UserSummary response. No password material.
type UserSummary struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
