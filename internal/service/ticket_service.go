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

const (
	minTitleLen       = 6
	maxDescriptionLen = 255
)

// Paginated wraps a page of results with its total count.
type Paginated[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	responses  repository.ResponseRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	UserRepo     repository.UserRepository
	ResponseRepo repository.ResponseRepository
	Dispatcher   events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		responses:  deps.ResponseRepo,
		dispatcher: deps.Dispatcher,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	UserID      string
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    string
}

// TicketUpdateInput describes the mutable ticket fields.
type TicketUpdateInput struct {
	Title       string
	Description string
	Status      domain.TicketStatus
	Priority    domain.TicketPriority
	Category    string
}

// TicketListInput describes listing filters for the global view.
type TicketListInput struct {
	Status   *domain.TicketStatus
	Priority *domain.TicketPriority
	Category *string
	Search   *string
	Sort     repository.Sort
	Page     repository.Page
}

// TicketDetail is a ticket with its related records preloaded.
type TicketDetail struct {
	Ticket    *domain.Ticket
	User      *domain.User
	Agent     *domain.User
	Responses []domain.Response
}

// CreateTicket opens a new ticket for a customer. New tickets start open
// and unassigned; priority defaults to medium.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	if details := validateTicketFields(input.UserID, input.Title, input.Description); len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid ticket payload", details)
	}
	if input.Priority != "" && !input.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": input.Priority})
	}
	if _, err := s.users.GetByID(ctx, input.UserID); err != nil {
		return nil, apperrors.NewValidationError("user_id does not reference an existing user", map[string]any{"user_id": input.UserID})
	}

	ticket := &domain.Ticket{
		UserID:      input.UserID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusOpen,
		Priority:    input.Priority,
		Category:    strings.TrimSpace(input.Category),
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  ticket.UserID,
		Payload: events.TicketCreatedPayload{
			UserID:   ticket.UserID,
			Priority: ticket.Priority,
			Category: ticket.Category,
			Title:    ticket.Title,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket with its owner, agent and response thread.
// Internal responses are omitted unless includeInternal is set.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string, includeInternal bool) (*TicketDetail, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	owner, err := s.users.GetByID(ctx, ticket.UserID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	detail := &TicketDetail{Ticket: ticket, User: owner}
	if ticket.AgentID != nil {
		agent, err := s.users.GetByID(ctx, *ticket.AgentID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		detail.Agent = agent
	}
	responses, err := s.responses.ListByTicket(ctx, ticket.ID, includeInternal)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	detail.Responses = responses
	return detail, nil
}

// UpdateTicket overwrites the mutable ticket fields.
func (s *TicketService) UpdateTicket(ctx context.Context, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	details := map[string]any{}
	if len(strings.TrimSpace(input.Title)) < minTitleLen {
		details["title"] = "must be at least 6 characters"
	}
	if input.Description == "" || len(input.Description) > maxDescriptionLen {
		details["description"] = "required, at most 255 characters"
	}
	if !input.Status.Valid() {
		details["status"] = "must be one of open, in_progress, resolved, closed"
	}
	if !input.Priority.Valid() {
		details["priority"] = "must be one of low, medium, high, urgent"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid ticket payload", details)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	oldStatus := ticket.Status
	ticket.Title = strings.TrimSpace(input.Title)
	ticket.Description = strings.TrimSpace(input.Description)
	ticket.Status = input.Status
	ticket.Priority = input.Priority
	ticket.Category = strings.TrimSpace(input.Category)
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if oldStatus != ticket.Status {
		s.publishStatusChange(ctx, ticket.ID, "", oldStatus, ticket.Status, false)
	}
	return ticket, nil
}

// DeleteTicket removes a ticket. Responses go with it via the schema's
// cascade.
func (s *TicketService) DeleteTicket(ctx context.Context, ticketID string) error {
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	return nil
}

// ListTickets returns the global (admin) ticket view.
func (s *TicketService) ListTickets(ctx context.Context, input TicketListInput) (*Paginated[domain.Ticket], error) {
	filter := repository.TicketFilter{
		Status:   input.Status,
		Priority: input.Priority,
		Category: input.Category,
		Search:   input.Search,
		Sort:     input.Sort,
		Page:     input.Page,
	}
	return s.list(ctx, filter)
}

// ListUserTickets returns tickets owned by a customer. Ownership is a
// mandatory pre-filter; category and search are global-view only.
func (s *TicketService) ListUserTickets(ctx context.Context, userID string, input TicketListInput) (*Paginated[domain.Ticket], error) {
	filter := repository.TicketFilter{
		UserID:   &userID,
		Status:   input.Status,
		Priority: input.Priority,
		Sort:     input.Sort,
		Page:     input.Page,
	}
	return s.list(ctx, filter)
}

// ListAgentTickets returns tickets assigned to an agent.
func (s *TicketService) ListAgentTickets(ctx context.Context, agentID string, input TicketListInput) (*Paginated[domain.Ticket], error) {
	filter := repository.TicketFilter{
		AgentID:  &agentID,
		Status:   input.Status,
		Priority: input.Priority,
		Sort:     input.Sort,
		Page:     input.Page,
	}
	return s.list(ctx, filter)
}

func (s *TicketService) list(ctx context.Context, filter repository.TicketFilter) (*Paginated[domain.Ticket], error) {
	tickets, total, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	page := filter.Page.Number
	if page <= 0 {
		page = 1
	}
	return &Paginated[domain.Ticket]{
		Items:   tickets,
		Total:   total,
		Page:    page,
		PerPage: filter.Page.Limit(),
	}, nil
}

// AssignAgent assigns a support agent to a ticket. The target user must
// hold the agent capability; assignment forces the ticket to in_progress
// whatever its prior status.
func (s *TicketService) AssignAgent(ctx context.Context, ticketID, agentID string) (*domain.Ticket, error) {
	agent, err := s.users.GetByID(ctx, agentID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "user", map[string]any{"agent_id": agentID})
	}
	if !lifecycle.CanAssign(agent.Role) {
		return nil, apperrors.NewRuleViolation("user is not an agent", map[string]any{"agent_id": agentID, "role": agent.Role})
	}

	current, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	oldStatus := current.Status

	ticket, err := s.tickets.AssignAgent(ctx, ticketID, agentID, lifecycle.StatusOnAssignment())
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		ActorID:  agentID,
		Payload:  events.TicketAssignedPayload{AgentID: agentID},
	})
	if oldStatus != ticket.Status {
		s.publishStatusChange(ctx, ticket.ID, agentID, oldStatus, ticket.Status, true)
	}
	return ticket, nil
}

// ChangeStatus sets a ticket status directly. Any member of the valid set
// is accepted; unknown values are rejected as a rule violation.
func (s *TicketService) ChangeStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	if !status.Valid() {
		return nil, apperrors.NewRuleViolation("invalid status", map[string]any{"status": status})
	}
	current, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	ticket, err := s.tickets.UpdateStatus(ctx, ticketID, status)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if current.Status != ticket.Status {
		s.publishStatusChange(ctx, ticket.ID, "", current.Status, ticket.Status, false)
	}
	return ticket, nil
}

func validateTicketFields(userID, title, description string) map[string]any {
	details := map[string]any{}
	if userID == "" {
		details["user_id"] = "required"
	}
	if len(strings.TrimSpace(title)) < minTitleLen {
		details["title"] = "must be at least 6 characters"
	}
	if description == "" || len(description) > maxDescriptionLen {
		details["description"] = "required, at most 255 characters"
	}
	return details
}

func (s *TicketService) publishStatusChange(ctx context.Context, ticketID, actorID string, oldStatus, newStatus domain.TicketStatus, automatic bool) {
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticketID,
		ActorID:  actorID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Automatic: automatic,
		},
	})
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
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
