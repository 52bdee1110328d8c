package finance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pinee-app/pinee-api/internal/domain"
)

// Statuses that count an income as confirmed money. Anything else on
// an income is pending.
func incomeConfirmed(status string) bool {
	switch status {
	case domain.StatusConsolidated, domain.StatusPaid, domain.StatusReceived:
		return true
	}
	return false
}

// Aggregate folds a set of transaction records into dashboard totals.
//
// Classification is per record, on the Type field alone; the legacy
// IsIncome flag is never consulted here (the write path normalizes it
// into Type before records are stored):
//
//   - investment: always added to InvestedTotal, regardless of status.
//   - income: confirmed statuses (consolidated, paid, received) go to
//     IncomeConfirmed; any other status goes to IncomePending.
//   - expense: paid to ExpensePaid, unpaid to ExpensePending. Any other
//     status contributes to neither bucket.
//
// Investment records carrying a SourceTransactionID represent money
// moved out of an income; their amounts accumulate separately and are
// subtracted from both balances so the transfer is not double counted.
// The check is scoped to investments only, never other record types.
//
// Balances over the same input:
//
//	projected    = (IncomeConfirmed + IncomePending) - (ExpensePaid + ExpensePending) - transferred
//	consolidated = IncomeConfirmed - ExpensePaid - transferred
//
// Callers showing a consolidated balance over a wider window than the
// selection aggregate that window separately and take its
// ConsolidatedBalance.
//
// Malformed records never fail the fold: an unknown type is a no-op and
// an unparsable date only drops the record from the chart series, not
// from the sums.
func Aggregate(records []domain.TransactionRecord) domain.DashboardTotals {
	totals := domain.DashboardTotals{
		IncomeConfirmed:     decimal.Zero,
		IncomePending:       decimal.Zero,
		ExpensePaid:         decimal.Zero,
		ExpensePending:      decimal.Zero,
		InvestedTotal:       decimal.Zero,
		ConsolidatedBalance: decimal.Zero,
		ProjectedBalance:    decimal.Zero,
	}
	transferred := decimal.Zero

	days := make(map[time.Time]*dayBucket)
	bucket := func(r domain.TransactionRecord) *dayBucket {
		day, err := r.ParseDate()
		if err != nil {
			return nil
		}
		b, ok := days[day]
		if !ok {
			b = &dayBucket{income: decimal.Zero, expense: decimal.Zero}
			days[day] = b
		}
		return b
	}

	for _, r := range records {
		switch r.Type {
		case domain.TypeInvestment:
			totals.InvestedTotal = totals.InvestedTotal.Add(r.Amount)
			if r.SourceTransactionID != "" {
				transferred = transferred.Add(r.Amount)
			}

		case domain.TypeIncome:
			if incomeConfirmed(r.Status) {
				totals.IncomeConfirmed = totals.IncomeConfirmed.Add(r.Amount)
			} else {
				totals.IncomePending = totals.IncomePending.Add(r.Amount)
			}
			if b := bucket(r); b != nil {
				b.income = b.income.Add(r.Amount)
			}

		case domain.TypeExpense:
			switch r.Status {
			case domain.StatusPaid:
				totals.ExpensePaid = totals.ExpensePaid.Add(r.Amount)
			case domain.StatusUnpaid:
				totals.ExpensePending = totals.ExpensePending.Add(r.Amount)
			}
			if b := bucket(r); b != nil {
				b.expense = b.expense.Add(r.Amount)
			}
		}
		// unknown or empty type: no-op
	}

	totals.ProjectedBalance = totals.IncomeConfirmed.Add(totals.IncomePending).
		Sub(totals.ExpensePaid).Sub(totals.ExpensePending).
		Sub(transferred)
	totals.ConsolidatedBalance = totals.IncomeConfirmed.
		Sub(totals.ExpensePaid).
		Sub(transferred)

	totals.RecentTransactions = recentTransactions(records, 5)
	totals.ChartSeries = chartSeries(days)
	return totals
}

// recentTransactions returns the n most recently created records,
// newest first. The sort is stable so records created at the same
// instant keep their input order.
func recentTransactions(records []domain.TransactionRecord, n int) []domain.TransactionRecord {
	recent := make([]domain.TransactionRecord, len(records))
	copy(recent, records)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > n {
		recent = recent[:n]
	}
	return recent
}

type dayBucket struct {
	income  decimal.Decimal
	expense decimal.Decimal
}

func chartSeries(days map[time.Time]*dayBucket) []domain.ChartPoint {
	series := make([]domain.ChartPoint, 0, len(days))
	for day, b := range days {
		series = append(series, domain.ChartPoint{Date: day, Income: b.income, Expense: b.expense})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series
}
