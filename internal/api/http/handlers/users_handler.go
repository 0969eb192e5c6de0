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

// UsersHandler manages user endpoints.
type UsersHandler struct {
	service *service.UserService
	query   config.QueryConfig
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService, query config.QueryConfig) *UsersHandler {
	return &UsersHandler{service: userService, query: query}
}

// CreateUser POST /users.
func (h *UsersHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.service.CreateUser(c.UserContext(), service.UserCreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": userSummary(user)})
}

// ListUsers GET /users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	input := service.UserListInput{
		Search: optionalQuery(c, "search"),
		Sort:   parseSort(c),
		Page:   parsePage(c, h.query),
	}
	if role := c.Query("role"); role != "" {
		val := domain.Role(role)
		input.Role = &val
	}
	if active := c.Query("is_active"); active != "" {
		val := c.QueryBool("is_active")
		input.IsActive = &val
	}

	result, err := h.service.ListUsers(c.UserContext(), input)
	if err != nil {
		return err
	}
	items := make([]dto.UserSummary, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, userSummary(&result.Items[i]))
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": dto.PageMeta{
			Total:   result.Total,
			Page:    result.Page,
			PerPage: result.PerPage,
		},
	})
}

// ListAgents GET /agents.
func (h *UsersHandler) ListAgents(c *fiber.Ctx) error {
	agents, err := h.service.ListAgents(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.UserSummary, 0, len(agents))
	for i := range agents {
		items = append(items, userSummary(&agents[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetUser GET /users/:id.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.service.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userSummary(user)})
}

// UpdateUser PUT /users/:id.
func (h *UsersHandler) UpdateUser(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.service.UpdateUser(c.UserContext(), c.Params("id"), service.UserUpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userSummary(user)})
}

// DeleteUser DELETE /users/:id.
func (h *UsersHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.service.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

func userSummary(user *domain.User) dto.UserSummary {
	return dto.UserSummary{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
