package dto

import (
	"time"

	"github.com/spec-kit/customer-care-api/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	UserID      string                `json:"user_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    string                `json:"category"`
}

// UpdateTicketRequest payload.
type UpdateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    string                `json:"category"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AgentID string `json:"agent_id"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// TicketSummary response.
type TicketSummary struct {
	ID          string                `json:"id"`
	UserID      string                `json:"user_id"`
	AgentID     *string               `json:"agent_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    string                `json:"category"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info with related records.
type TicketDetailResponse struct {
	TicketSummary
	User      *UserSummary      `json:"user,omitempty"`
	Agent     *UserSummary      `json:"agent,omitempty"`
	Responses []ResponseSummary `json:"responses"`
}

// PageMeta carries pagination totals for list envelopes.
type PageMeta struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
}
