package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardTotals is the aggregation engine's output: the scalar
// figures behind the dashboard plus the recent list and chart series.
// No rounding is applied; formatting belongs to the client.
type DashboardTotals struct {
	IncomeConfirmed decimal.Decimal `json:"income_confirmed"`
	IncomePending   decimal.Decimal `json:"income_pending"`
	ExpensePaid     decimal.Decimal `json:"expense_paid"`
	ExpensePending  decimal.Decimal `json:"expense_pending"`
	InvestedTotal   decimal.Decimal `json:"invested_total"`

	// ConsolidatedBalance is settled-only: confirmed income minus paid
	// expenses minus amounts moved into investments. Computed over the
	// consolidated range's record set.
	ConsolidatedBalance decimal.Decimal `json:"consolidated_balance"`

	// ProjectedBalance includes pending amounts on both sides: what the
	// balance will be if everything settles. Computed over the
	// selection range's record set.
	ProjectedBalance decimal.Decimal `json:"projected_balance"`

	RecentTransactions []TransactionRecord `json:"recent_transactions"`
	ChartSeries        []ChartPoint        `json:"chart_series"`
}

// ChartPoint is one day's income/expense sums. Days with no income or
// expense records are not synthesized.
type ChartPoint struct {
	Date    time.Time       `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// DashboardView is what the dashboard endpoint returns: the totals plus
// the two resolved ranges so the client can render period labels and
// navigation state.
type DashboardView struct {
	Mode              PeriodMode      `json:"mode"`
	SelectionRange    DateRange       `json:"selection_range"`
	ConsolidatedRange DateRange       `json:"consolidated_range"`
	Totals            DashboardTotals `json:"totals"`
}
