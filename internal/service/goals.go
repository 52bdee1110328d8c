package service

import (
	"context"

	"github.com/pinee-app/pinee-api/internal/domain"
	"github.com/pinee-app/pinee-api/internal/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var goalTracer = otel.Tracer("service/goals")

// GoalsService manages savings goals and deposits against them.
type GoalsService struct {
	store  port.GoalStore
	logger *zap.Logger
}

// NewGoalsService creates a new goals service.
func NewGoalsService(store port.GoalStore, logger *zap.Logger) *GoalsService {
	return &GoalsService{store: store, logger: logger}
}

func (s *GoalsService) List(ctx context.Context, userID string) ([]domain.SavingsGoal, error) {
	ctx, span := goalTracer.Start(ctx, "GoalsService.List")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	return s.store.ListGoals(ctx, userID)
}

func (s *GoalsService) Get(ctx context.Context, userID, goalID string) (*domain.SavingsGoal, error) {
	ctx, span := goalTracer.Start(ctx, "GoalsService.Get")
	defer span.End()

	return s.store.GetGoal(ctx, userID, goalID)
}

func validateGoal(g *domain.SavingsGoal) error {
	if g.Name == "" {
		return &domain.ErrValidation{Field: "name", Message: "name is required"}
	}
	if g.TargetAmount.Sign() <= 0 {
		return &domain.ErrValidation{Field: "target_amount", Message: "target must be positive"}
	}
	if g.SavedAmount.IsNegative() {
		return &domain.ErrValidation{Field: "saved_amount", Message: "saved amount must not be negative"}
	}
	return nil
}

func (s *GoalsService) Create(ctx context.Context, goal *domain.SavingsGoal) (*domain.SavingsGoal, error) {
	ctx, span := goalTracer.Start(ctx, "GoalsService.Create")
	defer span.End()

	if err := validateGoal(goal); err != nil {
		return nil, err
	}
	return s.store.CreateGoal(ctx, goal)
}

func (s *GoalsService) Update(ctx context.Context, goal *domain.SavingsGoal) (*domain.SavingsGoal, error) {
	ctx, span := goalTracer.Start(ctx, "GoalsService.Update")
	defer span.End()

	if goal.ID == "" {
		return nil, &domain.ErrValidation{Field: "id", Message: "id is required"}
	}
	if err := validateGoal(goal); err != nil {
		return nil, err
	}
	return s.store.UpdateGoal(ctx, goal)
}

func (s *GoalsService) Delete(ctx context.Context, userID, goalID string) error {
	ctx, span := goalTracer.Start(ctx, "GoalsService.Delete")
	defer span.End()

	return s.store.DeleteGoal(ctx, userID, goalID)
}

// Deposit adds an amount to a goal's saved total.
func (s *GoalsService) Deposit(ctx context.Context, userID, goalID string, amount decimal.Decimal) (*domain.SavingsGoal, error) {
	ctx, span := goalTracer.Start(ctx, "GoalsService.Deposit")
	defer span.End()
	span.SetAttributes(attribute.String("goal.id", goalID))

	if amount.Sign() <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "amount must be positive"}
	}

	goal, err := s.store.GetGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	goal.SavedAmount = goal.SavedAmount.Add(amount)

	updated, err := s.store.UpdateGoal(ctx, goal)
	if err != nil {
		return nil, err
	}
	s.logger.Info("goal deposit",
		zap.String("goal_id", goalID),
		zap.String("amount", amount.String()),
	)
	return updated, nil
}
