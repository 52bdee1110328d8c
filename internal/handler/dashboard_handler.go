package handler

import (
	"net/http"
	"time"

	"github.com/pinee-app/pinee-api/internal/domain"
	"github.com/pinee-app/pinee-api/internal/infra/observability"
	"github.com/pinee-app/pinee-api/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// parseDashboardQuery reads ?mode= and ?date= with today as the default
// reference date. A malformed date is a client error.
func parseDashboardQuery(r *http.Request) (domain.PeriodMode, time.Time, error) {
	mode := domain.ParsePeriodMode(r.URL.Query().Get("mode"))

	ref := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(domain.DateLayout, raw)
		if err != nil {
			return mode, ref, &domain.ErrValidation{Field: "date", Message: "must be yyyy-MM-dd"}
		}
		ref = parsed
	}
	return mode, ref, nil
}

// GET /v1/dashboard?mode=monthly&date=2024-03-15
func getDashboardHandler(dashSvc *service.DashboardService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard")
		defer span.End()

		userID := UserIDFromContext(ctx)
		span.SetAttributes(attribute.String("user.id", userID))

		mode, ref, err := parseDashboardQuery(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		start := time.Now()
		view, err := dashSvc.GetDashboard(ctx, userID, mode, ref)
		metrics.RecordRequestDuration("dashboard", time.Since(start))
		if err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}
		metrics.IncrRequest("success")

		writeJSON(w, http.StatusOK, view)
	}
}

// GET /v1/dashboard/chart.png?mode=monthly&date=2024-03-15
func getDashboardChartHandler(dashSvc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard/chart.png")
		defer span.End()

		userID := UserIDFromContext(ctx)
		mode, ref, err := parseDashboardQuery(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		png, err := dashSvc.RenderChart(ctx, userID, mode, ref)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(png)
	}
}
