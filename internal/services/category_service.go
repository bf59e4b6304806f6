package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/psgpraveen/PolicyPilot/internal/store"
	"github.com/psgpraveen/PolicyPilot/pkg/metrics"
)

type CategoryInput struct {
	Name string
}

// CategoryService mirrors ClientService for policy categories.
type CategoryService struct {
	categories store.CategoryStore
	logger     *zap.Logger
	metrics    *metrics.MetricsCollector
}

func NewCategoryService(categories store.CategoryStore, logger *zap.Logger, metricsCollector *metrics.MetricsCollector) *CategoryService {
	return &CategoryService{
		categories: categories,
		logger:     logger.With(zap.String("service", "categories")),
		metrics:    metricsCollector,
	}
}

func validateCategory(input CategoryInput) error {
	var v violations
	if !minLength(input.Name, 2) {
		v.add("name", "Category name must be at least 2 characters")
	}
	return v.err()
}

func (s *CategoryService) Create(ctx context.Context, ownerID string, input CategoryInput) (string, error) {
	if err := validateCategory(input); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	category := &store.Category{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(input.Name),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.categories.CreateCategory(ctx, category); err != nil {
		return "", err
	}

	s.metrics.IncrementCounter("categories.created", nil)
	return category.ID, nil
}

func (s *CategoryService) List(ctx context.Context, ownerID string) ([]store.Category, error) {
	return s.categories.CategoriesByOwner(ctx, ownerID)
}

func (s *CategoryService) Update(ctx context.Context, id, ownerID string, input CategoryInput) (bool, error) {
	existing, err := s.categories.CategoryByID(ctx, id)
	if err != nil {
		return false, err
	}
	if existing.OwnerID != ownerID {
		s.logger.Warn("Cross-owner category update blocked",
			zap.String("category_id", id),
			zap.String("caller_id", ownerID))
		return false, ErrForbidden
	}
	if err := validateCategory(input); err != nil {
		return false, err
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.UpdatedAt = time.Now().UTC()

	changed, err := s.categories.UpdateCategory(ctx, existing)
	if err != nil {
		return false, err
	}
	s.metrics.IncrementCounter("categories.updated", nil)
	return changed, nil
}

func (s *CategoryService) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	existing, err := s.categories.CategoryByID(ctx, id)
	if err != nil {
		return false, err
	}
	if existing.OwnerID != ownerID {
		s.logger.Warn("Cross-owner category delete blocked",
			zap.String("category_id", id),
			zap.String("caller_id", ownerID))
		return false, ErrForbidden
	}

	removed, err := s.categories.DeleteCategory(ctx, id)
	if err != nil {
		return false, err
	}
	s.metrics.IncrementCounter("categories.deleted", nil)
	return removed, nil
}
