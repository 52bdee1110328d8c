package domain

import "time"

// PeriodMode is the granularity governing range resolution and
// previous/next navigation on the dashboard.
type PeriodMode string

const (
	PeriodMonthly PeriodMode = "monthly"
	PeriodYearly  PeriodMode = "yearly"
	PeriodAllTime PeriodMode = "all_time"
)

// ParsePeriodMode maps a query-string value to a PeriodMode.
// Unknown values default to monthly, the app's home view.
func ParsePeriodMode(s string) PeriodMode {
	switch s {
	case string(PeriodYearly):
		return PeriodYearly
	case string(PeriodAllTime), "allTime":
		return PeriodAllTime
	default:
		return PeriodMonthly
	}
}

// DateRange is an inclusive calendar-date window. Label text is a
// presentation concern; the resolver leaves it empty and the handler
// fills in the raw ISO bounds.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label,omitempty"`
}

// Contains reports whether day falls inside the range, inclusive on
// both ends. Only the calendar date is compared.
func (r DateRange) Contains(day time.Time) bool {
	d := day.Truncate(24 * time.Hour)
	return !d.Before(r.Start) && !d.After(r.End)
}

// StartISO returns the range start formatted as yyyy-MM-dd.
func (r DateRange) StartISO() string { return r.Start.Format(DateLayout) }

// EndISO returns the range end formatted as yyyy-MM-dd.
func (r DateRange) EndISO() string { return r.End.Format(DateLayout) }
