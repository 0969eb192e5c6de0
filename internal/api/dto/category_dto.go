package dto

import "time"

// CategoryRequest payload for create and update.
type CategoryRequest struct {
	Name string `json:"name"`
}

// CategorySummary response.
type CategorySummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
