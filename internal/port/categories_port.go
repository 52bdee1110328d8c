package port

import (
	"context"

	"github.com/pinee-app/pinee-api/internal/domain"
)

// CategoryStore handles category data operations.
type CategoryStore interface {
	ListCategories(ctx context.Context, userID string) ([]domain.Category, error)
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, userID, categoryID string) error
}
