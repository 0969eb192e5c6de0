package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/customer-care-api/internal/api/dto"
	"github.com/spec-kit/customer-care-api/internal/config"
	"github.com/spec-kit/customer-care-api/internal/domain"
	"github.com/spec-kit/customer-care-api/internal/service"
	apperrors "github.com/spec-kit/customer-care-api/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
	query   config.QueryConfig
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, query config.QueryConfig) *TicketsHandler {
	return &TicketsHandler{service: ticketService, query: query}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	input := h.parseListQuery(c, true)
	result, err := h.service.ListTickets(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.JSON(ticketPageResponse(result))
}

// ListUserTickets GET /users/:id/tickets.
func (h *TicketsHandler) ListUserTickets(c *fiber.Ctx) error {
	input := h.parseListQuery(c, false)
	result, err := h.service.ListUserTickets(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(ticketPageResponse(result))
}

// ListAgentTickets GET /agents/:id/tickets.
func (h *TicketsHandler) ListAgentTickets(c *fiber.Ctx) error {
	input := h.parseListQuery(c, false)
	result, err := h.service.ListAgentTickets(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(ticketPageResponse(result))
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	includeInternal := c.QueryBool("include_internal", false)
	detail, err := h.service.GetTicket(c.UserContext(), c.Params("id"), includeInternal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(detail)})
}

// UpdateTicket PUT /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateTicket(c.UserContext(), c.Params("id"), service.TicketUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.service.DeleteTicket(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// AssignTicket POST /tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AgentID == "" {
		return apperrors.NewValidationError("agent_id required", nil)
	}
	ticket, err := h.service.AssignAgent(c.UserContext(), c.Params("id"), req.AgentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ChangeStatus POST /tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	ticket, err := h.service.ChangeStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

func (h *TicketsHandler) parseListQuery(c *fiber.Ctx, global bool) service.TicketListInput {
	input := service.TicketListInput{
		Sort: parseSort(c),
		Page: parsePage(c, h.query),
	}
	if status := c.Query("status"); status != "" {
		val := domain.TicketStatus(status)
		input.Status = &val
	}
	if priority := c.Query("priority"); priority != "" {
		val := domain.TicketPriority(priority)
		input.Priority = &val
	}
	if global {
		input.Category = optionalQuery(c, "category")
		input.Search = optionalQuery(c, "search")
	}
	return input
}

func ticketPageResponse(result *service.Paginated[domain.Ticket]) fiber.Map {
	items := make([]dto.TicketSummary, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, ticketSummary(&result.Items[i]))
	}
	return fiber.Map{
		"data": items,
		"meta": dto.PageMeta{
			Total:   result.Total,
			Page:    result.Page,
			PerPage: result.PerPage,
		},
	}
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:          ticket.ID,
		UserID:      ticket.UserID,
		AgentID:     ticket.AgentID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		Category:    ticket.Category,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

func ticketDetail(detail *service.TicketDetail) dto.TicketDetailResponse {
	resp := dto.TicketDetailResponse{
		TicketSummary: ticketSummary(detail.Ticket),
		Responses:     make([]dto.ResponseSummary, 0, len(detail.Responses)),
	}
	if detail.User != nil {
		summary := userSummary(detail.User)
		resp.User = &summary
	}
	if detail.Agent != nil {
		summary := userSummary(detail.Agent)
		resp.Agent = &summary
	}
	for i := range detail.Responses {
		resp.Responses = append(resp.Responses, responseSummary(&detail.Responses[i]))
	}
	return resp
}
