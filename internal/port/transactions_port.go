package port

import (
	"context"

	"github.com/pinee-app/pinee-api/internal/domain"
)

// TransactionStore handles transaction record persistence.
// Implemented by the Firebase adapter (or any other persistence layer).
type TransactionStore interface {
	ListTransactions(ctx context.Context, userID, from, to string) ([]domain.TransactionRecord, error)
	GetTransaction(ctx context.Context, userID, txID string) (*domain.TransactionRecord, error)
	CreateTransaction(ctx context.Context, record *domain.TransactionRecord) (*domain.TransactionRecord, error)
	UpdateTransaction(ctx context.Context, record *domain.TransactionRecord) (*domain.TransactionRecord, error)
	DeleteTransaction(ctx context.Context, userID, txID string) error
}
