package domain

import "time"

// Category is reference data for classifying tickets. Tickets carry the
// category by name rather than by foreign key.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
