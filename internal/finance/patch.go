package finance

import "github.com/pinee-app/pinee-api/internal/domain"

// ApplyLocalPatch reconciles an in-memory record list with a single
// changed record without refetching the store. Rules, in order:
//
//  1. If the changed record's date falls outside the selection range
//     (or does not parse), any record with the same ID is removed.
//  2. If a record with the same ID exists, it is replaced in place.
//  3. Otherwise the record is appended.
//
// The input slice is never mutated; callers re-aggregate the result.
func ApplyLocalPatch(current []domain.TransactionRecord, changed domain.TransactionRecord, selection domain.DateRange) []domain.TransactionRecord {
	day, err := changed.ParseDate()
	if err != nil || !selection.Contains(day) {
		out := make([]domain.TransactionRecord, 0, len(current))
		for _, r := range current {
			if r.ID != changed.ID {
				out = append(out, r)
			}
		}
		return out
	}

	out := make([]domain.TransactionRecord, len(current))
	copy(out, current)
	for i, r := range out {
		if r.ID == changed.ID {
			out[i] = changed
			return out
		}
	}
	return append(out, changed)
}
