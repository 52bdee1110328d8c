package port

import (
	"context"

	"github.com/pinee-app/pinee-api/internal/domain"
)

// GoalStore handles savings goal data operations.
type GoalStore interface {
	ListGoals(ctx context.Context, userID string) ([]domain.SavingsGoal, error)
	GetGoal(ctx context.Context, userID, goalID string) (*domain.SavingsGoal, error)
	CreateGoal(ctx context.Context, goal *domain.SavingsGoal) (*domain.SavingsGoal, error)
	UpdateGoal(ctx context.Context, goal *domain.SavingsGoal) (*domain.SavingsGoal, error)
	DeleteGoal(ctx context.Context, userID, goalID string) error
}
