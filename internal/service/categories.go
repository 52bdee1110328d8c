package service

import (
	"context"

	"github.com/pinee-app/pinee-api/internal/domain"
	"github.com/pinee-app/pinee-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var catTracer = otel.Tracer("service/categories")

// CategoriesService manages the per-user category catalog.
// Transactions reference categories by name, so deleting one never
// cascades.
type CategoriesService struct {
	store  port.CategoryStore
	logger *zap.Logger
}

// NewCategoriesService creates a new categories service.
func NewCategoriesService(store port.CategoryStore, logger *zap.Logger) *CategoriesService {
	return &CategoriesService{store: store, logger: logger}
}

func (s *CategoriesService) List(ctx context.Context, userID string) ([]domain.Category, error) {
	ctx, span := catTracer.Start(ctx, "CategoriesService.List")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	return s.store.ListCategories(ctx, userID)
}

func (s *CategoriesService) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	ctx, span := catTracer.Start(ctx, "CategoriesService.Create")
	defer span.End()

	if category.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "name is required"}
	}
	return s.store.CreateCategory(ctx, category)
}

func (s *CategoriesService) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	ctx, span := catTracer.Start(ctx, "CategoriesService.Update")
	defer span.End()

	if category.ID == "" {
		return nil, &domain.ErrValidation{Field: "id", Message: "id is required"}
	}
	if category.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "name is required"}
	}
	return s.store.UpdateCategory(ctx, category)
}

func (s *CategoriesService) Delete(ctx context.Context, userID, categoryID string) error {
	ctx, span := catTracer.Start(ctx, "CategoriesService.Delete")
	defer span.End()

	return s.store.DeleteCategory(ctx, userID, categoryID)
}
