package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/customer-care-api/internal/domain"
	"github.com/spec-kit/customer-care-api/internal/persistence"
	"github.com/spec-kit/customer-care-api/internal/repository"
	apperrors "github.com/spec-kit/customer-care-api/pkg/util"
)

const categoryListCacheKey = "categories:list"

// CategoryService manages ticket categories. The alphabetical listing is
// read-heavy reference data and is cached in Redis with a short TTL;
// cache failures fall through to Postgres.
type CategoryService struct {
	categories repository.CategoryRepository
	cache      *persistence.Redis
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewCategoryService constructs the service.
func NewCategoryService(categoryRepo repository.CategoryRepository, cache *persistence.Redis, cacheTTL time.Duration, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		categories: categoryRepo,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// ListCategories returns all categories ordered by name.
func (s *CategoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if cached, ok := s.cachedList(ctx); ok {
		return cached, nil
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.storeList(ctx, categories)
	return categories, nil
}

// GetCategory fetches a category by id.
func (s *CategoryService) GetCategory(ctx context.Context, categoryID string) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "category", map[string]any{"category_id": categoryID})
	}
	return category, nil
}

// CreateCategory adds a category.
func (s *CategoryService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	category := &domain.Category{Name: strings.TrimSpace(name)}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.invalidateList(ctx)
	return category, nil
}

// UpdateCategory renames a category.
func (s *CategoryService) UpdateCategory(ctx context.Context, categoryID, name string) (*domain.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "category", map[string]any{"category_id": categoryID})
	}
	category.Name = strings.TrimSpace(name)
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, apperrors.NotFoundOr(err, "category", map[string]any{"category_id": categoryID})
	}
	s.invalidateList(ctx)
	return category, nil
}

// DeleteCategory removes a category.
func (s *CategoryService) DeleteCategory(ctx context.Context, categoryID string) error {
	if err := s.categories.Delete(ctx, categoryID); err != nil {
		return apperrors.NotFoundOr(err, "category", map[string]any{"category_id": categoryID})
	}
	s.invalidateList(ctx)
	return nil
}

func (s *CategoryService) cachedList(ctx context.Context) ([]domain.Category, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, found, err := s.cache.GetString(ctx, categoryListCacheKey)
	if err != nil {
		s.logger.Warn("category cache read failed", zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	var categories []domain.Category
	if err := json.Unmarshal([]byte(raw), &categories); err != nil {
		s.logger.Warn("category cache decode failed", zap.Error(err))
		return nil, false
	}
	return categories, true
}

func (s *CategoryService) storeList(ctx context.Context, categories []domain.Category) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(categories)
	if err != nil {
		return
	}
	if err := s.cache.SetString(ctx, categoryListCacheKey, string(raw), s.cacheTTL); err != nil {
		s.logger.Warn("category cache write failed", zap.Error(err))
	}
}

func (s *CategoryService) invalidateList(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, categoryListCacheKey); err != nil {
		s.logger.Warn("category cache invalidation failed", zap.Error(err))
	}
}
