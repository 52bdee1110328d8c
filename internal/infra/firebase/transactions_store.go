package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/pinee-app/pinee-api/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// rtdbTransaction maps the database node layout to our domain. The user
// ID is implicit in the node path, not stored on the record.
type rtdbTransaction struct {
	Title               string          `json:"title"`
	Amount              decimal.Decimal `json:"amount"`
	Category            string          `json:"category,omitempty"`
	Date                string          `json:"date"`
	IsIncome            bool            `json:"isIncome"`
	Type                string          `json:"type,omitempty"`
	Status              string          `json:"status,omitempty"`
	CreatedAt           string          `json:"createdAt,omitempty"`
	IsRecurring         bool            `json:"isRecurring,omitempty"`
	RecurringFrequency  string          `json:"recurringFrequency,omitempty"`
	RecurringEndDate    string          `json:"recurringEndDate,omitempty"`
	SourceTransactionID string          `json:"sourceTransactionId,omitempty"`
}

func transactionsPath(userID string) string {
	return fmt.Sprintf("users/%s/transactions", userID)
}

func transactionPath(userID, txID string) string {
	return fmt.Sprintf("users/%s/transactions/%s", userID, txID)
}

func toWireTransaction(r *domain.TransactionRecord) rtdbTransaction {
	return rtdbTransaction{
		Title:               r.Title,
		Amount:              r.Amount,
		Category:            r.Category,
		Date:                r.Date,
		IsIncome:            r.IsIncome,
		Type:                string(r.Type),
		Status:              r.Status,
		CreatedAt:           r.CreatedAt.UTC().Format(time.RFC3339),
		IsRecurring:         r.IsRecurring,
		RecurringFrequency:  r.RecurringFrequency,
		RecurringEndDate:    r.RecurringEndDate,
		SourceTransactionID: r.SourceTransactionID,
	}
}

func fromWireTransaction(id, userID string, w rtdbTransaction) domain.TransactionRecord {
	createdAt, _ := time.Parse(time.RFC3339, w.CreatedAt)
	return domain.TransactionRecord{
		ID:                  id,
		UserID:              userID,
		Title:               w.Title,
		Amount:              w.Amount,
		Category:            w.Category,
		Date:                w.Date,
		IsIncome:            w.IsIncome,
		Type:                domain.TransactionType(w.Type),
		Status:              w.Status,
		CreatedAt:           createdAt,
		IsRecurring:         w.IsRecurring,
		RecurringFrequency:  w.RecurringFrequency,
		RecurringEndDate:    w.RecurringEndDate,
		SourceTransactionID: w.SourceTransactionID,
	}
}

// storeError keeps not-found as-is and wraps everything else as an
// external service failure.
func storeError(service string, err error) error {
	var nf *domain.ErrNotFound
	if errors.As(err, &nf) {
		return nf
	}
	return &domain.ErrExternalService{Service: service, Err: err}
}

// ListTransactions fetches one user's records with dates in [from, to].
// The server-side filter needs an .indexOn rule for "date" on the
// transactions node.
func (c *Client) ListTransactions(ctx context.Context, userID, from, to string) ([]domain.TransactionRecord, error) {
	ctx, span := tracer.Start(ctx, "Firebase.ListTransactions")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("range.from", from),
		attribute.String("range.to", to),
	)

	var records []domain.TransactionRecord

	err := c.execute(ctx, func() error {
		query := url.Values{}
		query.Set("orderBy", `"date"`)
		query.Set("startAt", fmt.Sprintf("%q", from))
		query.Set("endAt", fmt.Sprintf("%q", to))

		body, err := c.doRequest(ctx, http.MethodGet, transactionsPath(userID), query, nil)
		if err != nil {
			return err
		}
		if body == nil {
			records = []domain.TransactionRecord{}
			return nil
		}

		var nodes map[string]rtdbTransaction
		if err := json.Unmarshal(body, &nodes); err != nil {
			return fmt.Errorf("failed to decode transactions: %w", err)
		}

		records = make([]domain.TransactionRecord, 0, len(nodes))
		for id, w := range nodes {
			records = append(records, fromWireTransaction(id, userID, w))
		}
		// map iteration order is random; keep output deterministic
		sort.Slice(records, func(i, j int) bool {
			if records[i].Date != records[j].Date {
				return records[i].Date < records[j].Date
			}
			return records[i].ID < records[j].ID
		})
		return nil
	})

	if err != nil {
		return nil, storeError("firebase/transactions", err)
	}
	return records, nil
}

// GetTransaction fetches a single record.
func (c *Client) GetTransaction(ctx context.Context, userID, txID string) (*domain.TransactionRecord, error) {
	ctx, span := tracer.Start(ctx, "Firebase.GetTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", txID))

	var record *domain.TransactionRecord

	err := c.execute(ctx, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, transactionPath(userID, txID), nil, nil)
		if err != nil {
			return err
		}
		if body == nil {
			return &domain.ErrNotFound{Resource: "transaction", ID: txID}
		}

		var w rtdbTransaction
		if err := json.Unmarshal(body, &w); err != nil {
			return fmt.Errorf("failed to decode transaction: %w", err)
		}
		r := fromWireTransaction(txID, userID, w)
		record = &r
		return nil
	})

	if err != nil {
		return nil, storeError("firebase/transactions", err)
	}
	return record, nil
}

// CreateTransaction writes a new record under an ID of our choosing.
func (c *Client) CreateTransaction(ctx context.Context, record *domain.TransactionRecord) (*domain.TransactionRecord, error) {
	ctx, span := tracer.Start(ctx, "Firebase.CreateTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", record.UserID))

	stored := *record
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	err := c.execute(ctx, func() error {
		_, err := c.doRequest(ctx, http.MethodPut, transactionPath(stored.UserID, stored.ID), nil, toWireTransaction(&stored))
		return err
	})

	if err != nil {
		return nil, storeError("firebase/transactions", err)
	}
	return &stored, nil
}

// UpdateTransaction replaces an existing record. Writing through PUT
// rather than PATCH keeps cleared optional fields cleared.
func (c *Client) UpdateTransaction(ctx context.Context, record *domain.TransactionRecord) (*domain.TransactionRecord, error) {
	ctx, span := tracer.Start(ctx, "Firebase.UpdateTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", record.ID))

	existing, err := c.GetTransaction(ctx, record.UserID, record.ID)
	if err != nil {
		return nil, err
	}

	stored := *record
	stored.CreatedAt = existing.CreatedAt

	err = c.execute(ctx, func() error {
		_, err := c.doRequest(ctx, http.MethodPut, transactionPath(stored.UserID, stored.ID), nil, toWireTransaction(&stored))
		return err
	})

	if err != nil {
		return nil, storeError("firebase/transactions", err)
	}
	return &stored, nil
}

// DeleteTransaction removes a record. Deleting an absent record is
// reported as not found.
func (c *Client) DeleteTransaction(ctx context.Context, userID, txID string) error {
	ctx, span := tracer.Start(ctx, "Firebase.DeleteTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", txID))

	if _, err := c.GetTransaction(ctx, userID, txID); err != nil {
		return err
	}

	err := c.execute(ctx, func() error {
		_, err := c.doRequest(ctx, http.MethodDelete, transactionPath(userID, txID), nil, nil)
		return err
	})

	if err != nil {
		return storeError("firebase/transactions", err)
	}
	return nil
}
