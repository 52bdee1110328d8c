// Package domain defines the core entities of the PINEE personal-finance API.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used on the wire and in records.
// Transaction dates carry no time component.
const DateLayout = "2006-01-02"

// TransactionType classifies a financial event.
type TransactionType string

const (
	TypeIncome     TransactionType = "income"
	TypeExpense    TransactionType = "expense"
	TypeInvestment TransactionType = "investment"
)

// Transaction statuses. Which values are valid depends on the type:
// expense uses paid/unpaid, income uses received/pending/consolidated,
// investment uses invested/pending.
const (
	StatusPaid         = "paid"
	StatusUnpaid       = "unpaid"
	StatusReceived     = "received"
	StatusPending      = "pending"
	StatusConsolidated = "consolidated"
	StatusInvested     = "invested"
)

// RecurringFrequency values for recurring templates.
const (
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// TransactionRecord is an immutable snapshot of one financial event.
// The aggregation engine only ever reads these; all writes go through
// the transaction store.
type TransactionRecord struct {
	ID       string          `json:"id,omitempty"` // absent before first persist
	UserID   string          `json:"user_id"`
	Title    string          `json:"title"`
	Amount   decimal.Decimal `json:"amount"` // non-negative, currency-agnostic
	Category string          `json:"category"`
	Date     string          `json:"date"` // yyyy-MM-dd, no time component
	IsIncome bool            `json:"is_income"`
	Type     TransactionType `json:"type"`
	Status   string          `json:"status"`
	CreatedAt time.Time      `json:"created_at"`

	// Recurring templates are expanded into individual records by the
	// transaction service; the engine only sees materialized records.
	IsRecurring        bool   `json:"is_recurring"`
	RecurringFrequency string `json:"recurring_frequency,omitempty"`
	RecurringEndDate   string `json:"recurring_end_date,omitempty"`

	// Set when this investment record was created by transferring funds
	// out of an income record. Changes balance aggregation.
	SourceTransactionID string `json:"source_transaction_id,omitempty"`
}

// ParseDate parses the record's calendar date. A failure here only
// excludes the record from chart bucketing, never from scalar totals.
func (t *TransactionRecord) ParseDate() (time.Time, error) {
	return time.Parse(DateLayout, t.Date)
}

// ValidStatus reports whether the record's status is one of the values
// allowed for its type.
func (t *TransactionRecord) ValidStatus() bool {
	switch t.Type {
	case TypeExpense:
		return t.Status == StatusPaid || t.Status == StatusUnpaid
	case TypeIncome:
		return t.Status == StatusReceived || t.Status == StatusPending || t.Status == StatusConsolidated
	case TypeInvestment:
		return t.Status == StatusInvested || t.Status == StatusPending
	}
	return false
}
