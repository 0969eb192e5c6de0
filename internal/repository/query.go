package repository

import (
	"fmt"
	"strings"
)

// Page describes offset/limit pagination. Size defaults are applied by
// the HTTP layer; the repository only guards against nonsense values.
type Page struct {
	Number int
	Size   int
}

// Limit returns the row cap for the page.
func (p Page) Limit() int {
	if p.Size <= 0 {
		return 15
	}
	return p.Size
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	if p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit()
}

// Sort selects a single order-by field and direction. Fields are checked
// against a per-entity allow-list before reaching SQL; anything else falls
// back to creation time descending.
type Sort struct {
	Field     string
	Direction string
}

func orderClause(sort Sort, allowed map[string]string, fallback string) string {
	column, ok := allowed[sort.Field]
	if !ok {
		return fallback
	}
	direction := "DESC"
	if strings.EqualFold(sort.Direction, "asc") {
		direction = "ASC"
	}
	return fmt.Sprintf("%s %s", column, direction)
}
