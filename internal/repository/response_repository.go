package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/customer-care-api/internal/domain"
)

// ResponseRepository manages ticket response persistence.
type ResponseRepository interface {
	Create(ctx context.Context, response *domain.Response) error
	Update(ctx context.Context, response *domain.Response) error
	GetByID(ctx context.Context, id string) (*domain.Response, error)
	Delete(ctx context.Context, id string) error
	// ListByTicket returns responses ordered by creation time ascending,
	// with the authoring user joined. Internal responses are excluded
	// unless includeInternal is set.
	ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.Response, error)
}

type responseRepository struct {
	pool *pgxpool.Pool
}

// NewResponseRepository builds repository.
func NewResponseRepository(pool *pgxpool.Pool) ResponseRepository {
	return &responseRepository{pool: pool}
}

func (r *responseRepository) Create(ctx context.Context, response *domain.Response) error {
	const query = `
        INSERT INTO responses (ticket_id, user_id, content, is_internal)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		response.TicketID,
		response.UserID,
		response.Content,
		response.IsInternal,
	).Scan(&response.ID, &response.CreatedAt, &response.UpdatedAt)
}

func (r *responseRepository) Update(ctx context.Context, response *domain.Response) error {
	const query = `
        UPDATE responses SET content=$1, is_internal=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		response.Content,
		response.IsInternal,
		response.ID,
	).Scan(&response.UpdatedAt)
}

func (r *responseRepository) GetByID(ctx context.Context, id string) (*domain.Response, error) {
	const query = `
        SELECT id, ticket_id, user_id, content, is_internal, created_at, updated_at
        FROM responses WHERE id=$1`
	var response domain.Response
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&response.ID,
		&response.TicketID,
		&response.UserID,
		&response.Content,
		&response.IsInternal,
		&response.CreatedAt,
		&response.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *responseRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM responses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *responseRepository) ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.Response, error) {
	query := `
        SELECT r.id, r.ticket_id, r.user_id, r.content, r.is_internal, r.created_at, r.updated_at,
               u.id, u.name, u.email, u.role, u.is_active
        FROM responses r
        JOIN users u ON u.id = r.user_id
        WHERE r.ticket_id=$1`
	if !includeInternal {
		query += ` AND r.is_internal = FALSE`
	}
	query += ` ORDER BY r.created_at ASC`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Response
	for rows.Next() {
		var response domain.Response
		var author domain.User
		if err := rows.Scan(
			&response.ID,
			&response.TicketID,
			&response.UserID,
			&response.Content,
			&response.IsInternal,
			&response.CreatedAt,
			&response.UpdatedAt,
			&author.ID,
			&author.Name,
			&author.Email,
			&author.Role,
			&author.IsActive,
		); err != nil {
			return nil, err
		}
		response.Author = &author
		result = append(result, response)
	}
	return result, rows.Err()
}
