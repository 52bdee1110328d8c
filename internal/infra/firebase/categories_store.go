package firebase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/pinee-app/pinee-api/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type rtdbCategory struct {
	Name      string `json:"name"`
	Icon      string `json:"icon,omitempty"`
	Color     string `json:"color,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func categoriesPath(userID string) string {
	return fmt.Sprintf("users/%s/categories", userID)
}

func categoryPath(userID, categoryID string) string {
	return fmt.Sprintf("users/%s/categories/%s", userID, categoryID)
}

func fromWireCategory(id, userID string, w rtdbCategory) domain.Category {
	createdAt, _ := time.Parse(time.RFC3339, w.CreatedAt)
	return domain.Category{
		ID:        id,
		UserID:    userID,
		Name:      w.Name,
		Icon:      w.Icon,
		Color:     w.Color,
		CreatedAt: createdAt,
	}
}

// ListCategories fetches all categories for a user, sorted by name.
func (c *Client) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Firebase.ListCategories")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var categories []domain.Category

	err := c.execute(ctx, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, categoriesPath(userID), nil, nil)
		if err != nil {
			return err
		}
		if body == nil {
			categories = []domain.Category{}
			return nil
		}

		var nodes map[string]rtdbCategory
		if err := json.Unmarshal(body, &nodes); err != nil {
			return fmt.Errorf("failed to decode categories: %w", err)
		}

		categories = make([]domain.Category, 0, len(nodes))
		for id, w := range nodes {
			categories = append(categories, fromWireCategory(id, userID, w))
		}
		sort.Slice(categories, func(i, j int) bool {
			return categories[i].Name < categories[j].Name
		})
		return nil
	})

	if err != nil {
		return nil, storeError("firebase/categories", err)
	}
	return categories, nil
}

// CreateCategory writes a new category. Names are unique per user.
func (c *Client) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Firebase.CreateCategory")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", category.UserID))

	existing, err := c.ListCategories(ctx, category.UserID)
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if e.Name == category.Name {
			return nil, &domain.ErrConflict{Message: fmt.Sprintf("category %q already exists", category.Name)}
		}
	}

	stored := *category
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	err = c.execute(ctx, func() error {
		_, err := c.doRequest(ctx, http.MethodPut, categoryPath(stored.UserID, stored.ID), nil, rtdbCategory{
			Name:      stored.Name,
			Icon:      stored.Icon,
			Color:     stored.Color,
			CreatedAt: stored.CreatedAt.UTC().Format(time.RFC3339),
		})
		return err
	})

	if err != nil {
		return nil, storeError("firebase/categories", err)
	}
	return &stored, nil
}

// UpdateCategory replaces an existing category.
func (c *Client) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Firebase.UpdateCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", category.ID))

	var current rtdbCategory
	err := c.execute(ctx, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, categoryPath(category.UserID, category.ID), nil, nil)
		if err != nil {
			return err
		}
		if body == nil {
			return &domain.ErrNotFound{Resource: "category", ID: category.ID}
		}
		return json.Unmarshal(body, &current)
	})
	if err != nil {
		return nil, storeError("firebase/categories", err)
	}

	stored := *category
	createdAt, _ := time.Parse(time.RFC3339, current.CreatedAt)
	stored.CreatedAt = createdAt

	err = c.execute(ctx, func() error {
		_, err := c.doRequest(ctx, http.MethodPut, categoryPath(stored.UserID, stored.ID), nil, rtdbCategory{
			Name:      stored.Name,
			Icon:      stored.Icon,
			Color:     stored.Color,
			CreatedAt: current.CreatedAt,
		})
		return err
	})

	if err != nil {
		return nil, storeError("firebase/categories", err)
	}
	return &stored, nil
}

// DeleteCategory removes a category. Transactions referencing it keep
// their category string; it just stops resolving to icon and color.
func (c *Client) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	ctx, span := tracer.Start(ctx, "Firebase.DeleteCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", categoryID))

	err := c.execute(ctx, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, categoryPath(userID, categoryID), nil, nil)
		if err != nil {
			return err
		}
		if body == nil {
			return &domain.ErrNotFound{Resource: "category", ID: categoryID}
		}
		_, err = c.doRequest(ctx, http.MethodDelete, categoryPath(userID, categoryID), nil, nil)
		return err
	})

	if err != nil {
		return storeError("firebase/categories", err)
	}
	return nil
}
