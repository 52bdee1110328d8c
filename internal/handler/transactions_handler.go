package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pinee-app/pinee-api/internal/domain"
	"github.com/pinee-app/pinee-api/internal/finance"
	"github.com/pinee-app/pinee-api/internal/infra/observability"
	"github.com/pinee-app/pinee-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// GET /v1/transactions?from=2024-03-01&to=2024-03-31
// Without explicit bounds, the current month's selection is used.
func listTransactionsHandler(txSvc *service.TransactionsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/transactions")
		defer span.End()

		userID := UserIDFromContext(ctx)
		span.SetAttributes(attribute.String("user.id", userID))

		from := r.URL.Query().Get("from")
		to := r.URL.Query().Get("to")
		if from == "" || to == "" {
			sel, _ := finance.ResolveRange(time.Now().UTC(), domain.PeriodMonthly)
			if from == "" {
				from = sel.StartISO()
			}
			if to == "" {
				to = sel.EndISO()
			}
		}

		records, err := txSvc.List(ctx, userID, from, to)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"transactions": records})
	}
}

// GET /v1/transactions/{transactionId}
func getTransactionHandler(txSvc *service.TransactionsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/transactions/{transactionId}")
		defer span.End()

		userID := UserIDFromContext(ctx)
		txID := chi.URLParam(r, "transactionId")

		record, err := txSvc.Get(ctx, userID, txID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

// POST /v1/transactions
func createTransactionHandler(txSvc *service.TransactionsService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transactions")
		defer span.End()

		userID := UserIDFromContext(ctx)
		span.SetAttributes(attribute.String("user.id", userID))

		var record domain.TransactionRecord
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		record.UserID = userID
		record.ID = ""

		created, err := txSvc.Create(ctx, &record)
		if err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}
		metrics.IncrRequest("success")
		writeJSON(w, http.StatusCreated, created)
	}
}

// PUT /v1/transactions/{transactionId}
func updateTransactionHandler(txSvc *service.TransactionsService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/transactions/{transactionId}")
		defer span.End()

		userID := UserIDFromContext(ctx)
		txID := chi.URLParam(r, "transactionId")

		var record domain.TransactionRecord
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		record.UserID = userID
		record.ID = txID

		updated, err := txSvc.Update(ctx, &record)
		if err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}
		metrics.IncrRequest("success")
		writeJSON(w, http.StatusOK, updated)
	}
}

// DELETE /v1/transactions/{transactionId}
func deleteTransactionHandler(txSvc *service.TransactionsService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/transactions/{transactionId}")
		defer span.End()

		userID := UserIDFromContext(ctx)
		txID := chi.URLParam(r, "transactionId")

		if err := txSvc.Delete(ctx, userID, txID); err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}
		metrics.IncrRequest("success")
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /v1/transactions/{transactionId}/invest
func investTransactionHandler(txSvc *service.TransactionsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transactions/{transactionId}/invest")
		defer span.End()

		userID := UserIDFromContext(ctx)
		incomeID := chi.URLParam(r, "transactionId")

		var req struct {
			Amount decimal.Decimal `json:"amount"`
			Title  string          `json:"title,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		investment, err := txSvc.TransferToInvestment(ctx, userID, incomeID, req.Amount, req.Title)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, investment)
	}
}
