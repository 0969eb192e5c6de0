package domain

import "time"

// Response is a threaded message attached to a ticket. Internal responses
// are agent-only notes: hidden from customer-facing listings and never a
// trigger for lifecycle transitions.
type Response struct {
	ID         string
	TicketID   string
	UserID     string
	Content    string
	IsInternal bool
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Author is populated by read paths that join the authoring user.
	Author *User
}
