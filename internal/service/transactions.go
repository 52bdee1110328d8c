package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pinee-app/pinee-api/internal/domain"
	"github.com/pinee-app/pinee-api/internal/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var txTracer = otel.Tracer("service/transactions")

// maxRecurringOccurrences caps expansion of a recurring template so a
// distant end date cannot flood the store.
const maxRecurringOccurrences = 60

// TransactionsService manages transaction records: CRUD, recurring
// expansion and income-to-investment transfers. Writes are reflected
// into the dashboard's cached selections.
type TransactionsService struct {
	store      port.TransactionStore
	dashboards *DashboardService
	logger     *zap.Logger
}

// NewTransactionsService creates a new transactions service.
func NewTransactionsService(store port.TransactionStore, dashboards *DashboardService, logger *zap.Logger) *TransactionsService {
	return &TransactionsService{store: store, dashboards: dashboards, logger: logger}
}

// List returns one user's records with dates inside [from, to].
func (s *TransactionsService) List(ctx context.Context, userID, from, to string) ([]domain.TransactionRecord, error) {
	ctx, span := txTracer.Start(ctx, "TransactionsService.List")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if _, err := time.Parse(domain.DateLayout, from); err != nil {
		return nil, &domain.ErrValidation{Field: "from", Message: "must be yyyy-MM-dd"}
	}
	if _, err := time.Parse(domain.DateLayout, to); err != nil {
		return nil, &domain.ErrValidation{Field: "to", Message: "must be yyyy-MM-dd"}
	}
	return s.store.ListTransactions(ctx, userID, from, to)
}

// Get returns a single record.
func (s *TransactionsService) Get(ctx context.Context, userID, txID string) (*domain.TransactionRecord, error) {
	ctx, span := txTracer.Start(ctx, "TransactionsService.Get")
	defer span.End()

	return s.store.GetTransaction(ctx, userID, txID)
}

func validateRecord(r *domain.TransactionRecord) error {
	if r.Title == "" {
		return &domain.ErrValidation{Field: "title", Message: "title is required"}
	}
	if r.Amount.IsNegative() {
		return &domain.ErrValidation{Field: "amount", Message: "amount must not be negative"}
	}
	if _, err := r.ParseDate(); err != nil {
		return &domain.ErrValidation{Field: "date", Message: "must be yyyy-MM-dd"}
	}

	// legacy clients send only the boolean flag
	if r.Type == "" {
		if r.IsIncome {
			r.Type = domain.TypeIncome
		} else {
			r.Type = domain.TypeExpense
		}
	}
	r.IsIncome = r.Type == domain.TypeIncome

	if r.Status == "" {
		switch r.Type {
		case domain.TypeIncome:
			r.Status = domain.StatusPending
		case domain.TypeExpense:
			r.Status = domain.StatusUnpaid
		case domain.TypeInvestment:
			r.Status = domain.StatusInvested
		}
	}
	if !r.ValidStatus() {
		return &domain.ErrValidation{
			Field:   "status",
			Message: fmt.Sprintf("%q is not valid for type %q", r.Status, r.Type),
		}
	}

	if r.IsRecurring {
		if r.RecurringFrequency != domain.FrequencyWeekly && r.RecurringFrequency != domain.FrequencyMonthly {
			return &domain.ErrValidation{Field: "recurring_frequency", Message: "must be weekly or monthly"}
		}
		if r.RecurringEndDate != "" {
			if _, err := time.Parse(domain.DateLayout, r.RecurringEndDate); err != nil {
				return &domain.ErrValidation{Field: "recurring_end_date", Message: "must be yyyy-MM-dd"}
			}
		}
	}
	return nil
}

// Create validates and persists a record. A recurring template is
// expanded into materialized records, one per occurrence; the first
// occurrence is returned.
func (s *TransactionsService) Create(ctx context.Context, record *domain.TransactionRecord) (*domain.TransactionRecord, error) {
	ctx, span := txTracer.Start(ctx, "TransactionsService.Create")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", record.UserID))

	if err := validateRecord(record); err != nil {
		return nil, err
	}

	if !record.IsRecurring {
		created, err := s.store.CreateTransaction(ctx, record)
		if err != nil {
			return nil, err
		}
		s.dashboards.PatchCached(*created)
		return created, nil
	}

	occurrences := expandRecurring(record)
	var first *domain.TransactionRecord
	for i := range occurrences {
		created, err := s.store.CreateTransaction(ctx, &occurrences[i])
		if err != nil {
			if first != nil {
				// partial expansion; what was written stays written
				s.logger.Warn("recurring expansion interrupted",
					zap.String("user_id", record.UserID),
					zap.Int("written", i),
					zap.Error(err),
				)
				return first, nil
			}
			return nil, err
		}
		s.dashboards.PatchCached(*created)
		if first == nil {
			first = created
		}
	}
	s.logger.Info("recurring template expanded",
		zap.String("user_id", record.UserID),
		zap.String("frequency", record.RecurringFrequency),
		zap.Int("occurrences", len(occurrences)),
	)
	return first, nil
}

// expandRecurring materializes a recurring template into dated records
// from the start date through the end date inclusive, stepping by the
// frequency. Without an end date a single occurrence is produced.
func expandRecurring(template *domain.TransactionRecord) []domain.TransactionRecord {
	start, _ := template.ParseDate()
	end := start
	if template.RecurringEndDate != "" {
		if parsed, err := time.Parse(domain.DateLayout, template.RecurringEndDate); err == nil {
			end = parsed
		}
	}

	out := make([]domain.TransactionRecord, 0, 4)
	for d := start; !d.After(end) && len(out) < maxRecurringOccurrences; {
		occ := *template
		occ.ID = ""
		occ.Date = d.Format(domain.DateLayout)
		out = append(out, occ)

		if template.RecurringFrequency == domain.FrequencyWeekly {
			d = d.AddDate(0, 0, 7)
		} else {
			d = d.AddDate(0, 1, 0)
		}
	}
	return out
}

// Update validates and replaces a record.
func (s *TransactionsService) Update(ctx context.Context, record *domain.TransactionRecord) (*domain.TransactionRecord, error) {
	ctx, span := txTracer.Start(ctx, "TransactionsService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", record.ID))

	if record.ID == "" {
		return nil, &domain.ErrValidation{Field: "id", Message: "id is required"}
	}
	if err := validateRecord(record); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateTransaction(ctx, record)
	if err != nil {
		return nil, err
	}
	s.dashboards.PatchCached(*updated)
	return updated, nil
}

// Delete removes a record and drops the cached selections that could
// still contain it.
func (s *TransactionsService) Delete(ctx context.Context, userID, txID string) error {
	ctx, span := txTracer.Start(ctx, "TransactionsService.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", txID))

	existing, err := s.store.GetTransaction(ctx, userID, txID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, userID, txID); err != nil {
		return err
	}

	if day, err := existing.ParseDate(); err == nil {
		s.dashboards.DropCached(userID, day)
	} else {
		s.dashboards.DropCached(userID, time.Now().UTC())
	}
	return nil
}

// TransferToInvestment moves part of a confirmed income into a new
// investment record. The investment carries the income's ID as its
// source so aggregation subtracts the moved amount from both balances,
// and the income itself is marked consolidated.
func (s *TransactionsService) TransferToInvestment(ctx context.Context, userID, incomeID string, amount decimal.Decimal, title string) (*domain.TransactionRecord, error) {
	ctx, span := txTracer.Start(ctx, "TransactionsService.TransferToInvestment")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", incomeID))

	income, err := s.store.GetTransaction(ctx, userID, incomeID)
	if err != nil {
		return nil, err
	}
	if income.Type != domain.TypeIncome {
		return nil, &domain.ErrValidation{Field: "id", Message: "source must be an income"}
	}
	if amount.Sign() <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "amount must be positive"}
	}
	if amount.GreaterThan(income.Amount) {
		return nil, &domain.ErrValidation{Field: "amount", Message: "amount exceeds the income"}
	}

	if title == "" {
		title = fmt.Sprintf("Invested from %s", income.Title)
	}
	investment := &domain.TransactionRecord{
		UserID:              userID,
		Title:               title,
		Amount:              amount,
		Category:            income.Category,
		Date:                time.Now().UTC().Format(domain.DateLayout),
		Type:                domain.TypeInvestment,
		Status:              domain.StatusInvested,
		SourceTransactionID: income.ID,
	}

	created, err := s.store.CreateTransaction(ctx, investment)
	if err != nil {
		return nil, err
	}
	s.dashboards.PatchCached(*created)

	settled := *income
	settled.Status = domain.StatusConsolidated
	if updated, err := s.store.UpdateTransaction(ctx, &settled); err != nil {
		// the investment is already written; surface the half-applied
		// state in logs but return the created record
		s.logger.Error("transfer: income not marked consolidated",
			zap.String("transaction.id", income.ID),
			zap.Error(err),
		)
	} else {
		s.dashboards.PatchCached(*updated)
	}

	return created, nil
}
