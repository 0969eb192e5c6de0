package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/customer-care-api/internal/api/dto"
	"github.com/spec-kit/customer-care-api/internal/domain"
	"github.com/spec-kit/customer-care-api/internal/service"
	apperrors "github.com/spec-kit/customer-care-api/pkg/util"
)

// ResponsesHandler manages ticket response endpoints.
type ResponsesHandler struct {
	service *service.ResponseService
}

// NewResponsesHandler constructs handler.
func NewResponsesHandler(responseService *service.ResponseService) *ResponsesHandler {
	return &ResponsesHandler{service: responseService}
}

// CreateResponse POST /tickets/:id/responses.
func (h *ResponsesHandler) CreateResponse(c *fiber.Ctx) error {
	var req dto.CreateResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" {
		return apperrors.NewValidationError("user_id required", nil)
	}
	response, err := h.service.CreateResponse(c.UserContext(), service.ResponseCreateInput{
		TicketID:   c.Params("id"),
		UserID:     req.UserID,
		Content:    req.Content,
		IsInternal: req.IsInternal,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": responseSummary(response)})
}

// ListResponses GET /tickets/:id/responses.
func (h *ResponsesHandler) ListResponses(c *fiber.Ctx) error {
	includeInternal := c.QueryBool("include_internal", false)
	responses, err := h.service.ListForTicket(c.UserContext(), c.Params("id"), includeInternal)
	if err != nil {
		return err
	}
	items := make([]dto.ResponseSummary, 0, len(responses))
	for i := range responses {
		items = append(items, responseSummary(&responses[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateResponse PUT /responses/:id.
func (h *ResponsesHandler) UpdateResponse(c *fiber.Ctx) error {
	var req dto.UpdateResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	response, err := h.service.UpdateResponse(c.UserContext(), c.Params("id"), service.ResponseUpdateInput{
		Content:    req.Content,
		IsInternal: req.IsInternal,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": responseSummary(response)})
}

// DeleteResponse DELETE /responses/:id.
func (h *ResponsesHandler) DeleteResponse(c *fiber.Ctx) error {
	if err := h.service.DeleteResponse(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

func responseSummary(response *domain.Response) dto.ResponseSummary {
	summary := dto.ResponseSummary{
		ID:         response.ID,
		TicketID:   response.TicketID,
		UserID:     response.UserID,
		Content:    response.Content,
		IsInternal: response.IsInternal,
		CreatedAt:  response.CreatedAt,
		UpdatedAt:  response.UpdatedAt,
	}
	if response.Author != nil {
		author := userSummary(response.Author)
		summary.Author = &author
	}
	return summary
}
