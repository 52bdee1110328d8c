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
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

type rtdbGoal struct {
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"targetAmount"`
	SavedAmount  decimal.Decimal `json:"savedAmount"`
	Deadline     string          `json:"deadline,omitempty"`
	CreatedAt    string          `json:"createdAt,omitempty"`
}

func goalsPath(userID string) string {
	return fmt.Sprintf("users/%s/goals", userID)
}

func goalPath(userID, goalID string) string {
	return fmt.Sprintf("users/%s/goals/%s", userID, goalID)
}

func toWireGoal(g *domain.SavingsGoal) rtdbGoal {
	return rtdbGoal{
		Name:         g.Name,
		TargetAmount: g.TargetAmount,
		SavedAmount:  g.SavedAmount,
		Deadline:     g.Deadline,
		CreatedAt:    g.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func fromWireGoal(id, userID string, w rtdbGoal) domain.SavingsGoal {
	createdAt, _ := time.Parse(time.RFC3339, w.CreatedAt)
	return domain.SavingsGoal{
		ID:           id,
		UserID:       userID,
		Name:         w.Name,
		TargetAmount: w.TargetAmount,
		SavedAmount:  w.SavedAmount,
		Deadline:     w.Deadline,
		CreatedAt:    createdAt,
	}
}

// ListGoals fetches all savings goals for a user, oldest first.
func (c *Client) ListGoals(ctx context.Context, userID string) ([]domain.SavingsGoal, error) {
	ctx, span := tracer.Start(ctx, "Firebase.ListGoals")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var goals []domain.SavingsGoal

	err := c.execute(ctx, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, goalsPath(userID), nil, nil)
		if err != nil {
			return err
		}
		if body == nil {
			goals = []domain.SavingsGoal{}
			return nil
		}

		var nodes map[string]rtdbGoal
		if err := json.Unmarshal(body, &nodes); err != nil {
			return fmt.Errorf("failed to decode goals: %w", err)
		}

		goals = make([]domain.SavingsGoal, 0, len(nodes))
		for id, w := range nodes {
			goals = append(goals, fromWireGoal(id, userID, w))
		}
		sort.Slice(goals, func(i, j int) bool {
			if !goals[i].CreatedAt.Equal(goals[j].CreatedAt) {
				return goals[i].CreatedAt.Before(goals[j].CreatedAt)
			}
			return goals[i].ID < goals[j].ID
		})
		return nil
	})

	if err != nil {
		return nil, storeError("firebase/goals", err)
	}
	return goals, nil
}

// GetGoal fetches a single savings goal.
func (c *Client) GetGoal(ctx context.Context, userID, goalID string) (*domain.SavingsGoal, error) {
	ctx, span := tracer.Start(ctx, "Firebase.GetGoal")
	defer span.End()
	span.SetAttributes(attribute.String("goal.id", goalID))

	var goal *domain.SavingsGoal

	err := c.execute(ctx, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, goalPath(userID, goalID), nil, nil)
		if err != nil {
			return err
		}
		if body == nil {
			return &domain.ErrNotFound{Resource: "goal", ID: goalID}
		}

		var w rtdbGoal
		if err := json.Unmarshal(body, &w); err != nil {
			return fmt.Errorf("failed to decode goal: %w", err)
		}
		g := fromWireGoal(goalID, userID, w)
		goal = &g
		return nil
	})

	if err != nil {
		return nil, storeError("firebase/goals", err)
	}
	return goal, nil
}

// CreateGoal writes a new savings goal.
func (c *Client) CreateGoal(ctx context.Context, goal *domain.SavingsGoal) (*domain.SavingsGoal, error) {
	ctx, span := tracer.Start(ctx, "Firebase.CreateGoal")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", goal.UserID))

	stored := *goal
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	err := c.execute(ctx, func() error {
		_, err := c.doRequest(ctx, http.MethodPut, goalPath(stored.UserID, stored.ID), nil, toWireGoal(&stored))
		return err
	})

	if err != nil {
		return nil, storeError("firebase/goals", err)
	}
	return &stored, nil
}

// UpdateGoal replaces an existing savings goal.
func (c *Client) UpdateGoal(ctx context.Context, goal *domain.SavingsGoal) (*domain.SavingsGoal, error) {
	ctx, span := tracer.Start(ctx, "Firebase.UpdateGoal")
	defer span.End()
	span.SetAttributes(attribute.String("goal.id", goal.ID))

	existing, err := c.GetGoal(ctx, goal.UserID, goal.ID)
	if err != nil {
		return nil, err
	}

	stored := *goal
	stored.CreatedAt = existing.CreatedAt

	err = c.execute(ctx, func() error {
		_, err := c.doRequest(ctx, http.MethodPut, goalPath(stored.UserID, stored.ID), nil, toWireGoal(&stored))
		return err
	})

	if err != nil {
		return nil, storeError("firebase/goals", err)
	}
	return &stored, nil
}

// DeleteGoal removes a savings goal.
func (c *Client) DeleteGoal(ctx context.Context, userID, goalID string) error {
	ctx, span := tracer.Start(ctx, "Firebase.DeleteGoal")
	defer span.End()
	span.SetAttributes(attribute.String("goal.id", goalID))

	if _, err := c.GetGoal(ctx, userID, goalID); err != nil {
		return err
	}

	err := c.execute(ctx, func() error {
		_, err := c.doRequest(ctx, http.MethodDelete, goalPath(userID, goalID), nil, nil)
		return err
	})

	if err != nil {
		return storeError("firebase/goals", err)
	}
	return nil
}
