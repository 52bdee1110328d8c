package handler

import (
	"encoding/json"
	"net/http"

	"github.com/pinee-app/pinee-api/internal/domain"
	"github.com/pinee-app/pinee-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// goalResponse adds the derived progress ratio to the stored goal.
type goalResponse struct {
	domain.SavingsGoal
	Progress decimal.Decimal `json:"progress"`
}

func toGoalResponse(g *domain.SavingsGoal) goalResponse {
	return goalResponse{SavingsGoal: *g, Progress: g.Progress()}
}

// GET /v1/goals
func listGoalsHandler(goalSvc *service.GoalsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/goals")
		defer span.End()

		userID := UserIDFromContext(ctx)
		span.SetAttributes(attribute.String("user.id", userID))

		goals, err := goalSvc.List(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		resp := make([]goalResponse, 0, len(goals))
		for i := range goals {
			resp = append(resp, toGoalResponse(&goals[i]))
		}
		writeJSON(w, http.StatusOK, map[string]any{"goals": resp})
	}
}

// GET /v1/goals/{goalId}
func getGoalHandler(goalSvc *service.GoalsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/goals/{goalId}")
		defer span.End()

		userID := UserIDFromContext(ctx)
		goalID := chi.URLParam(r, "goalId")

		goal, err := goalSvc.Get(ctx, userID, goalID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, toGoalResponse(goal))
	}
}

// POST /v1/goals
func createGoalHandler(goalSvc *service.GoalsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/goals")
		defer span.End()

		userID := UserIDFromContext(ctx)

		var goal domain.SavingsGoal
		if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		goal.UserID = userID
		goal.ID = ""

		created, err := goalSvc.Create(ctx, &goal)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, toGoalResponse(created))
	}
}

// PUT /v1/goals/{goalId}
func updateGoalHandler(goalSvc *service.GoalsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/goals/{goalId}")
		defer span.End()

		userID := UserIDFromContext(ctx)

		var goal domain.SavingsGoal
		if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		goal.UserID = userID
		goal.ID = chi.URLParam(r, "goalId")

		updated, err := goalSvc.Update(ctx, &goal)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, toGoalResponse(updated))
	}
}

// DELETE /v1/goals/{goalId}
func deleteGoalHandler(goalSvc *service.GoalsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/goals/{goalId}")
		defer span.End()

		userID := UserIDFromContext(ctx)
		goalID := chi.URLParam(r, "goalId")

		if err := goalSvc.Delete(ctx, userID, goalID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /v1/goals/{goalId}/deposit
func depositGoalHandler(goalSvc *service.GoalsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/goals/{goalId}/deposit")
		defer span.End()

		userID := UserIDFromContext(ctx)
		goalID := chi.URLParam(r, "goalId")

		var req struct {
			Amount decimal.Decimal `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		updated, err := goalSvc.Deposit(ctx, userID, goalID, req.Amount)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, toGoalResponse(updated))
	}
}
