package handler

import (
	"net/http"
	"time"

	"github.com/pinee-app/pinee-api/internal/domain"
	"github.com/pinee-app/pinee-api/internal/infra/observability"
	"github.com/pinee-app/pinee-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles everything the router needs.
type Services struct {
	Dashboard    *service.DashboardService
	Transactions *service.TransactionsService
	Categories   *service.CategoriesService
	Goals        *service.GoalsService
	Auth         *service.AuthService
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// NewRouter creates the HTTP router with all routes and middleware.
// Everything under /v1 except /v1/auth requires a bearer token.
func NewRouter(svcs Services) http.Handler {
	logger := svcs.Logger
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.Dashboard, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(svcs.Metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Authentication (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/google", authGoogleHandler(svcs.Auth, logger))
			r.Post("/refresh", authRefreshHandler(svcs.Auth, logger))
		})

		// Everything else requires a verified bearer token
		r.Group(func(r chi.Router) {
			r.Use(BearerAuthMiddleware(svcs.Auth, logger))

			// Dashboard
			r.Get("/dashboard", getDashboardHandler(svcs.Dashboard, svcs.Metrics, logger))
			r.Get("/dashboard/chart.png", getDashboardChartHandler(svcs.Dashboard, logger))

			// Transactions
			r.Get("/transactions", listTransactionsHandler(svcs.Transactions, logger))
			r.Post("/transactions", createTransactionHandler(svcs.Transactions, svcs.Metrics, logger))
			r.Get("/transactions/{transactionId}", getTransactionHandler(svcs.Transactions, logger))
			r.Put("/transactions/{transactionId}", updateTransactionHandler(svcs.Transactions, svcs.Metrics, logger))
			r.Delete("/transactions/{transactionId}", deleteTransactionHandler(svcs.Transactions, svcs.Metrics, logger))
			r.Post("/transactions/{transactionId}/invest", investTransactionHandler(svcs.Transactions, logger))

			// Categories
			r.Get("/categories", listCategoriesHandler(svcs.Categories, logger))
			r.Post("/categories", createCategoryHandler(svcs.Categories, logger))
			r.Put("/categories/{categoryId}", updateCategoryHandler(svcs.Categories, logger))
			r.Delete("/categories/{categoryId}", deleteCategoryHandler(svcs.Categories, logger))

			// Savings goals
			r.Get("/goals", listGoalsHandler(svcs.Goals, logger))
			r.Post("/goals", createGoalHandler(svcs.Goals, logger))
			r.Get("/goals/{goalId}", getGoalHandler(svcs.Goals, logger))
			r.Put("/goals/{goalId}", updateGoalHandler(svcs.Goals, logger))
			r.Delete("/goals/{goalId}", deleteGoalHandler(svcs.Goals, logger))
			r.Post("/goals/{goalId}/deposit", depositGoalHandler(svcs.Goals, logger))

			// Ops metrics snapshot
			r.Get("/metrics/summary", opsMetricsHandler(svcs.Metrics))
		})
	})

	return r
}

// ============================================================
// Health
// ============================================================

func healthzHandler(dashSvc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "pinee-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if dashSvc != nil {
			start := time.Now()
			_, err := dashSvc.GetDashboard(ctx, "health-check", domain.PeriodMonthly, time.Now().UTC())
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "firebase", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func opsMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetOpsSnapshot())
	}
}
