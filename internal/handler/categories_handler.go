package handler

import (
	"encoding/json"
	"net/http"

	"github.com/pinee-app/pinee-api/internal/domain"
	"github.com/pinee-app/pinee-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// GET /v1/categories
func listCategoriesHandler(catSvc *service.CategoriesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/categories")
		defer span.End()

		userID := UserIDFromContext(ctx)
		span.SetAttributes(attribute.String("user.id", userID))

		categories, err := catSvc.List(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
	}
}

// POST /v1/categories
func createCategoryHandler(catSvc *service.CategoriesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/categories")
		defer span.End()

		userID := UserIDFromContext(ctx)

		var category domain.Category
		if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		category.UserID = userID
		category.ID = ""

		created, err := catSvc.Create(ctx, &category)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// PUT /v1/categories/{categoryId}
func updateCategoryHandler(catSvc *service.CategoriesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/categories/{categoryId}")
		defer span.End()

		userID := UserIDFromContext(ctx)

		var category domain.Category
		if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		category.UserID = userID
		category.ID = chi.URLParam(r, "categoryId")

		updated, err := catSvc.Update(ctx, &category)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// DELETE /v1/categories/{categoryId}
func deleteCategoryHandler(catSvc *service.CategoriesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/categories/{categoryId}")
		defer span.End()

		userID := UserIDFromContext(ctx)
		categoryID := chi.URLParam(r, "categoryId")

		if err := catSvc.Delete(ctx, userID, categoryID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
