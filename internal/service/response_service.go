package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/customer-care-api/internal/domain"
	"github.com/spec-kit/customer-care-api/internal/events"
	"github.com/spec-kit/customer-care-api/internal/lifecycle"
	"github.com/spec-kit/customer-care-api/internal/repository"
	apperrors "github.com/spec-kit/customer-care-api/pkg/util"
)

// ResponseService manages ticket response threads and drives the
// automatic lifecycle transitions that response activity causes.
type ResponseService struct {
	responses  repository.ResponseRepository
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// ResponseDependencies bundles repositories for response service.
type ResponseDependencies struct {
	ResponseRepo repository.ResponseRepository
	TicketRepo   repository.TicketRepository
	UserRepo     repository.UserRepository
	Dispatcher   events.Dispatcher
}

// NewResponseService constructs the service.
func NewResponseService(deps ResponseDependencies) *ResponseService {
	return &ResponseService{
		responses:  deps.ResponseRepo,
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// ResponseCreateInput describes response creation payload.
type ResponseCreateInput struct {
	TicketID   string
	UserID     string
	Content    string
	IsInternal bool
}

// ResponseUpdateInput describes the mutable response fields.
type ResponseUpdateInput struct {
	Content    string
	IsInternal *bool
}

// ListForTicket returns the response thread for a ticket in creation
// order. Internal notes are excluded unless includeInternal is set.
func (s *ResponseService) ListForTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.Response, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	responses, err := s.responses.ListByTicket(ctx, ticketID, includeInternal)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return responses, nil
}

// CreateResponse persists a response and, for non-internal responses,
// applies the automatic transition rules: a customer reply reopens a
// resolved ticket; an agent reply moves an open ticket to in_progress.
// The transition is a single conditional write keyed on the observed
// status, so a racing response cannot cause a lost update — whichever
// write loses the race simply skips its transition.
func (s *ResponseService) CreateResponse(ctx context.Context, input ResponseCreateInput) (*domain.Response, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	ticket, err := s.tickets.GetByID(ctx, input.TicketID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": input.TicketID})
	}
	author, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, apperrors.NewValidationError("user_id does not reference an existing user", map[string]any{"user_id": input.UserID})
	}

	response := &domain.Response{
		TicketID:   ticket.ID,
		UserID:     author.ID,
		Content:    strings.TrimSpace(input.Content),
		IsInternal: input.IsInternal,
	}
	if err := s.responses.Create(ctx, response); err != nil {
		return nil, apperrors.MapError(err)
	}
	response.Author = author

	if next, ok := lifecycle.TransitionOnResponse(author.Role, response.IsInternal, ticket.Status); ok {
		applied, err := s.tickets.UpdateStatusIf(ctx, ticket.ID, ticket.Status, next)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if applied {
			s.publishEvent(ctx, events.Event{
				Type:     events.EventTicketStatusChanged,
				TicketID: ticket.ID,
				ActorID:  author.ID,
				Payload: events.TicketStatusChangedPayload{
					OldStatus: ticket.Status,
					NewStatus: next,
					Automatic: true,
				},
			})
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventResponseAdded,
		TicketID: ticket.ID,
		ActorID:  author.ID,
		Payload: events.ResponseAddedPayload{
			ResponseID: response.ID,
			AuthorID:   author.ID,
			IsInternal: response.IsInternal,
		},
	})
	return response, nil
}

// UpdateResponse edits a response in place. No lifecycle side effects.
func (s *ResponseService) UpdateResponse(ctx context.Context, responseID string, input ResponseUpdateInput) (*domain.Response, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	response, err := s.responses.GetByID(ctx, responseID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "response", map[string]any{"response_id": responseID})
	}
	response.Content = strings.TrimSpace(input.Content)
	if input.IsInternal != nil {
		response.IsInternal = *input.IsInternal
	}
	if err := s.responses.Update(ctx, response); err != nil {
		return nil, apperrors.NotFoundOr(err, "response", map[string]any{"response_id": responseID})
	}
	return response, nil
}

// DeleteResponse removes a response. No lifecycle side effects.
func (s *ResponseService) DeleteResponse(ctx context.Context, responseID string) error {
	if err := s.responses.Delete(ctx, responseID); err != nil {
		return apperrors.NotFoundOr(err, "response", map[string]any{"response_id": responseID})
	}
	return nil
}

func (s *ResponseService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
