// Package finance is the pure computational core of PINEE: period
// resolution and transaction aggregation. No I/O and no locking; every
// function is deterministic over its inputs and safe to call from any
// goroutine.
package finance

import (
	"time"

	"github.com/pinee-app/pinee-api/internal/domain"
)

// Aggregation windows are bounded by a fixed far-past epoch and a
// far-future cap rather than open intervals, so every range can be
// serialized as two plain dates for the store's date filters.
var (
	epochStart = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	futureCap  = time.Date(2100, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// ResolveRange computes the two date windows behind one dashboard
// refresh: the selection range (what is fetched and shown, and what the
// projected figures cover) and the consolidated range (what the
// settled-only balance covers).
//
// monthly: selection is the calendar month of ref; consolidated reaches
// from the epoch through the end of that month, covering everything
// settled up to and including the month on screen.
//
// yearly: both ranges are the calendar year of ref. The consolidated
// figure is scoped to the year only, unlike monthly; the asymmetry is
// intentional.
//
// all-time: selection is the full epoch..cap window; consolidated ends
// at ref, which callers pass as today (the mode has no navigation).
func ResolveRange(ref time.Time, mode domain.PeriodMode) (selection, consolidated domain.DateRange) {
	switch mode {
	case domain.PeriodYearly:
		start := time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(ref.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
		selection = domain.DateRange{Start: start, End: end}
		consolidated = selection

	case domain.PeriodAllTime:
		selection = domain.DateRange{Start: epochStart, End: futureCap}
		consolidated = domain.DateRange{Start: epochStart, End: dateOnly(ref)}

	default: // monthly
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, -1) // last day of the month, leap-safe
		selection = domain.DateRange{Start: start, End: end}
		consolidated = domain.DateRange{Start: epochStart, End: end}
	}
	return selection, consolidated
}

// Advance shifts the reference date by one navigation step: ±1 month in
// monthly mode, ±1 year in yearly mode. All-time has no navigation and
// returns ref unchanged; callers disable the prev/next controls there.
func Advance(mode domain.PeriodMode, direction int, ref time.Time) time.Time {
	if direction > 0 {
		direction = 1
	} else if direction < 0 {
		direction = -1
	}
	switch mode {
	case domain.PeriodMonthly:
		return ref.AddDate(0, direction, 0)
	case domain.PeriodYearly:
		return ref.AddDate(direction, 0, 0)
	}
	return ref
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
