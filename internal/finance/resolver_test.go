package finance

import (
	"testing"
	"time"

	"github.com/pinee-app/pinee-api/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveRangeMonthly(t *testing.T) {
	ref := day(2024, time.February, 15)
	sel, cons := ResolveRange(ref, domain.PeriodMonthly)

	if !sel.Start.Equal(day(2024, time.February, 1)) {
		t.Errorf("selection start = %v, want 2024-02-01", sel.Start)
	}
	// 2024 is a leap year
	if !sel.End.Equal(day(2024, time.February, 29)) {
		t.Errorf("selection end = %v, want 2024-02-29", sel.End)
	}
	if !cons.Start.Equal(day(2000, time.January, 1)) {
		t.Errorf("consolidated start = %v, want 2000-01-01", cons.Start)
	}
	if !cons.End.Equal(sel.End) {
		t.Errorf("consolidated end = %v, want selection end %v", cons.End, sel.End)
	}
}

func TestResolveRangeMonthlyNonLeap(t *testing.T) {
	sel, _ := ResolveRange(day(2023, time.February, 10), domain.PeriodMonthly)
	if !sel.End.Equal(day(2023, time.February, 28)) {
		t.Errorf("selection end = %v, want 2023-02-28", sel.End)
	}
}

func TestResolveRangeYearly(t *testing.T) {
	sel, cons := ResolveRange(day(2024, time.June, 3), domain.PeriodYearly)

	if !sel.Start.Equal(day(2024, time.January, 1)) || !sel.End.Equal(day(2024, time.December, 31)) {
		t.Errorf("selection = %v..%v, want full 2024", sel.Start, sel.End)
	}
	// yearly consolidated is scoped to the year, not epoch-to-date
	if !cons.Start.Equal(sel.Start) || !cons.End.Equal(sel.End) {
		t.Errorf("consolidated = %v..%v, want same as selection", cons.Start, cons.End)
	}
}

func TestResolveRangeAllTime(t *testing.T) {
	today := day(2024, time.June, 3)
	sel, cons := ResolveRange(today, domain.PeriodAllTime)

	if !sel.Start.Equal(day(2000, time.January, 1)) || !sel.End.Equal(day(2100, time.December, 31)) {
		t.Errorf("selection = %v..%v, want 2000-01-01..2100-12-31", sel.Start, sel.End)
	}
	if !cons.Start.Equal(day(2000, time.January, 1)) || !cons.End.Equal(today) {
		t.Errorf("consolidated = %v..%v, want 2000-01-01..today", cons.Start, cons.End)
	}
}

func TestAdvance(t *testing.T) {
	ref := day(2024, time.January, 15)

	tests := []struct {
		name      string
		mode      domain.PeriodMode
		direction int
		want      time.Time
	}{
		{"monthly forward", domain.PeriodMonthly, 1, day(2024, time.February, 15)},
		{"monthly back", domain.PeriodMonthly, -1, day(2023, time.December, 15)},
		{"yearly forward", domain.PeriodYearly, 1, day(2025, time.January, 15)},
		{"yearly back", domain.PeriodYearly, -1, day(2023, time.January, 15)},
		{"all time is fixed", domain.PeriodAllTime, 1, ref},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Advance(tt.mode, tt.direction, ref)
			if !got.Equal(tt.want) {
				t.Errorf("Advance(%s, %d) = %v, want %v", tt.mode, tt.direction, got, tt.want)
			}
		})
	}
}

func TestAdvanceClampsDirection(t *testing.T) {
	ref := day(2024, time.January, 15)
	got := Advance(domain.PeriodMonthly, 5, ref)
	if !got.Equal(day(2024, time.February, 15)) {
		t.Errorf("Advance with direction 5 = %v, want a single month step", got)
	}
}
