package retrieval

import (
	"math"

	"github.com/papercomputeco/clerk/pkg/records"
)

// AmountTolerance is the inclusive absolute distance allowed between a
// requested amount and a record's total.
const AmountTolerance = 20.0

// Approximate holds the constraints applied after ranking. A nil field
// imposes nothing.
type Approximate struct {
	Amount *float64
	Date   *DateFilter
}

// Empty reports whether no approximate constraint is active.
func (a Approximate) Empty() bool {
	return a.Amount == nil && a.Date == nil
}

// Apply keeps the results satisfying every active constraint, preserving
// order. A record whose stored date cannot be parsed is dropped when a date
// constraint is active.
func (a Approximate) Apply(results []records.Result) []records.Result {
	if a.Empty() {
		return results
	}

	kept := make([]records.Result, 0, len(results))
	for _, r := range results {
		if a.Keep(r) {
			kept = append(kept, r)
		}
	}
	return kept
}

// Keep reports whether a single result passes the active constraints.
func (a Approximate) Keep(r records.Result) bool {
	if a.Amount != nil && math.Abs(r.Metadata.TotalAmount-*a.Amount) > AmountTolerance {
		return false
	}
	if a.Date != nil {
		stored, err := ParseStoredDate(r.Metadata.Date)
		if err != nil || !a.Date.Matches(stored) {
			return false
		}
	}
	return true
}
