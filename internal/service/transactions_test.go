package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pinee-app/pinee-api/internal/domain"
	"github.com/pinee-app/pinee-api/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func newTransactionsService(store *mockTxStore) *service.TransactionsService {
	dash, _ := newDashboardService(store)
	return service.NewTransactionsService(store, dash, zap.NewNop())
}

func TestCreateDefaultsTypeAndStatus(t *testing.T) {
	store := newMockTxStore()
	svc := newTransactionsService(store)

	rec := domain.TransactionRecord{
		UserID:   "u1",
		Title:    "salary",
		Amount:   mustAmount("1000"),
		Date:     "2024-03-05",
		IsIncome: true,
	}
	created, err := svc.Create(context.Background(), &rec)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Type != domain.TypeIncome {
		t.Errorf("type = %q, want income", created.Type)
	}
	if created.Status != domain.StatusPending {
		t.Errorf("status = %q, want pending", created.Status)
	}
}

func TestCreateValidation(t *testing.T) {
	store := newMockTxStore()
	svc := newTransactionsService(store)

	cases := []struct {
		name string
		rec  domain.TransactionRecord
	}{
		{"missing title", domain.TransactionRecord{UserID: "u1", Amount: mustAmount("10"), Date: "2024-03-05"}},
		{"negative amount", domain.TransactionRecord{UserID: "u1", Title: "x", Amount: mustAmount("-1"), Date: "2024-03-05"}},
		{"bad date", domain.TransactionRecord{UserID: "u1", Title: "x", Amount: mustAmount("10"), Date: "05/03/2024"}},
		{"status wrong for type", domain.TransactionRecord{UserID: "u1", Title: "x", Amount: mustAmount("10"), Date: "2024-03-05", Type: domain.TypeExpense, Status: domain.StatusReceived}},
		{"bad frequency", domain.TransactionRecord{UserID: "u1", Title: "x", Amount: mustAmount("10"), Date: "2024-03-05", Type: domain.TypeExpense, IsRecurring: true, RecurringFrequency: "daily"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := tc.rec
			_, err := svc.Create(context.Background(), &rec)
			var verr *domain.ErrValidation
			if !errors.As(err, &verr) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}

func TestCreateRecurringWeekly(t *testing.T) {
	store := newMockTxStore()
	svc := newTransactionsService(store)

	rec := domain.TransactionRecord{
		UserID:             "u1",
		Title:              "gym",
		Amount:             mustAmount("25"),
		Date:               "2024-03-01",
		Type:               domain.TypeExpense,
		Status:             domain.StatusUnpaid,
		IsRecurring:        true,
		RecurringFrequency: domain.FrequencyWeekly,
		RecurringEndDate:   "2024-03-22",
	}
	first, err := svc.Create(context.Background(), &rec)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 03-01, 03-08, 03-15, 03-22
	if len(store.byID) != 4 {
		t.Fatalf("stored records = %d, want 4", len(store.byID))
	}
	if first.Date != "2024-03-01" {
		t.Errorf("first occurrence date = %q, want 2024-03-01", first.Date)
	}
}

func TestCreateRecurringMonthlyWithoutEndDate(t *testing.T) {
	store := newMockTxStore()
	svc := newTransactionsService(store)

	rec := domain.TransactionRecord{
		UserID:             "u1",
		Title:              "rent",
		Amount:             mustAmount("900"),
		Date:               "2024-03-01",
		Type:               domain.TypeExpense,
		Status:             domain.StatusUnpaid,
		IsRecurring:        true,
		RecurringFrequency: domain.FrequencyMonthly,
	}
	if _, err := svc.Create(context.Background(), &rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(store.byID) != 1 {
		t.Errorf("stored records = %d, want 1", len(store.byID))
	}
}

func TestUpdateRequiresID(t *testing.T) {
	store := newMockTxStore()
	svc := newTransactionsService(store)

	rec := domain.TransactionRecord{UserID: "u1", Title: "x", Amount: mustAmount("10"), Date: "2024-03-05", Type: domain.TypeExpense, Status: domain.StatusPaid}
	_, err := svc.Update(context.Background(), &rec)
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestDeleteMissingRecord(t *testing.T) {
	store := newMockTxStore()
	svc := newTransactionsService(store)

	err := svc.Delete(context.Background(), "u1", "nope")
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestTransferToInvestment(t *testing.T) {
	store := newMockTxStore()
	income := txRec("i1", domain.TypeIncome, domain.StatusReceived, "1000", "2024-03-05")
	store.byID["i1"] = income

	svc := newTransactionsService(store)
	created, err := svc.TransferToInvestment(context.Background(), "u1", "i1", mustAmount("200"), "")
	if err != nil {
		t.Fatalf("TransferToInvestment: %v", err)
	}

	if created.Type != domain.TypeInvestment || created.Status != domain.StatusInvested {
		t.Errorf("created type/status = %q/%q", created.Type, created.Status)
	}
	if created.SourceTransactionID != "i1" {
		t.Errorf("source = %q, want i1", created.SourceTransactionID)
	}
	if !created.Amount.Equal(mustAmount("200")) {
		t.Errorf("amount = %s, want 200", created.Amount)
	}
	if created.Title != "Invested from rec i1" {
		t.Errorf("title = %q", created.Title)
	}
	if got := store.byID["i1"].Status; got != domain.StatusConsolidated {
		t.Errorf("income status = %q, want consolidated", got)
	}
}

func TestTransferToInvestmentRejections(t *testing.T) {
	store := newMockTxStore()
	store.byID["i1"] = txRec("i1", domain.TypeIncome, domain.StatusReceived, "1000", "2024-03-05")
	store.byID["e1"] = txRec("e1", domain.TypeExpense, domain.StatusPaid, "50", "2024-03-05")

	svc := newTransactionsService(store)

	cases := []struct {
		name   string
		id     string
		amount decimal.Decimal
	}{
		{"not an income", "e1", mustAmount("10")},
		{"zero amount", "i1", decimal.Zero},
		{"exceeds income", "i1", mustAmount("1001")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.TransferToInvestment(context.Background(), "u1", tc.id, tc.amount, "")
			var verr *domain.ErrValidation
			if !errors.As(err, &verr) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}

func TestListValidatesBounds(t *testing.T) {
	store := newMockTxStore()
	svc := newTransactionsService(store)

	_, err := svc.List(context.Background(), "u1", "March 1st", "2024-03-31")
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Errorf("err = %v, want validation error", err)
	}
}
