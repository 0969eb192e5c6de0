package service

import (
	"context"
	"strings"

	"github.com/spec-kit/customer-care-api/internal/auth"
	"github.com/spec-kit/customer-care-api/internal/domain"
	"github.com/spec-kit/customer-care-api/internal/repository"
	apperrors "github.com/spec-kit/customer-care-api/pkg/util"
)

// UserService manages user accounts. Passwords are one-way hashed before
// persistence; plaintext never reaches the store.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

// NewUserService constructs the service.
func NewUserService(userRepo repository.UserRepository, bcryptCost int) *UserService {
	return &UserService{users: userRepo, bcryptCost: bcryptCost}
}

// UserCreateInput describes user creation payload.
type UserCreateInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	IsActive *bool
}

// UserUpdateInput describes the mutable user fields. Password is optional
// and re-hashed only when supplied.
type UserUpdateInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	IsActive *bool
}

// UserListInput describes user listing filters.
type UserListInput struct {
	Role     *domain.Role
	IsActive *bool
	Search   *string
	Sort     repository.Sort
	Page     repository.Page
}

// CreateUser registers a new account. Role defaults to customer.
func (s *UserService) CreateUser(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	details := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "required"
	}
	if strings.TrimSpace(input.Email) == "" {
		details["email"] = "required"
	}
	if input.Password == "" {
		details["password"] = "required"
	}
	if input.Role != "" && !input.Role.Valid() {
		details["role"] = "must be one of customer, agent, admin"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid user payload", details)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		Role:         input.Role,
		IsActive:     true,
	}
	if user.Role == "" {
		user.Role = domain.RoleCustomer
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// GetUser fetches a user by id.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "user", map[string]any{"user_id": userID})
	}
	return user, nil
}

// UpdateUser mutates a user in place, re-hashing the password when a new
// one is supplied.
func (s *UserService) UpdateUser(ctx context.Context, userID string, input UserUpdateInput) (*domain.User, error) {
	if input.Role != "" && !input.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "user", map[string]any{"user_id": userID})
	}

	if strings.TrimSpace(input.Name) != "" {
		user.Name = strings.TrimSpace(input.Name)
	}
	if strings.TrimSpace(input.Email) != "" {
		user.Email = strings.ToLower(strings.TrimSpace(input.Email))
	}
	if input.Role != "" {
		user.Role = input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.NotFoundOr(err, "user", map[string]any{"user_id": userID})
	}
	return user, nil
}

// DeleteUser removes an account.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return apperrors.NotFoundOr(err, "user", map[string]any{"user_id": userID})
	}
	return nil
}

// ListUsers returns a filtered, paginated user listing.
func (s *UserService) ListUsers(ctx context.Context, input UserListInput) (*Paginated[domain.User], error) {
	filter := repository.UserFilter{
		Role:     input.Role,
		IsActive: input.IsActive,
		Search:   input.Search,
		Sort:     input.Sort,
		Page:     input.Page,
	}
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	page := input.Page.Number
	if page <= 0 {
		page = 1
	}
	return &Paginated[domain.User]{
		Items:   users,
		Total:   total,
		Page:    page,
		PerPage: input.Page.Limit(),
	}, nil
}

// ListAgents returns the active users eligible for ticket assignment.
func (s *UserService) ListAgents(ctx context.Context) ([]domain.User, error) {
	agents, err := s.users.ListAgents(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return agents, nil
}
