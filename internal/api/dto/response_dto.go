package dto

import "time"

// CreateResponseRequest payload.
type CreateResponseRequest struct {
	UserID     string `json:"user_id"`
	Content    string `json:"content"`
	IsInternal bool   `json:"is_internal"`
}

// UpdateResponseRequest payload.
type UpdateResponseRequest struct {
	Content    string `json:"content"`
	IsInternal *bool  `json:"is_internal"`
}

// ResponseSummary represents a thread entry.
type ResponseSummary struct {
	ID         string       `json:"id"`
	TicketID   string       `json:"ticket_id"`
	UserID     string       `json:"user_id"`
	Content    string       `json:"content"`
	IsInternal bool         `json:"is_internal"`
	Author     *UserSummary `json:"author,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
