// Package timeline builds the merged, deduplicated, truncated date lists the
// protection-leg and fee-leg integrators walk segment by segment. A
// timeline is the union of a curve's own pillar dates, the counterparty
// curve's pillar dates, and the accrual period's own start/end dates,
// clipped to [periodStart, periodEnd] — exactly the list JpmcdsContingentLegPV
// builds once per accrual period in the reference implementation.
package timeline

import (
	"sort"
	"time"

	"github.com/meenmo/cdscore/utils"
)

// Build returns the sorted, deduplicated union of every date in sets that
// falls strictly between start and end, with start and end themselves
// always present as the first and last elements.
func Build(start, end time.Time, sets ...[]time.Time) []time.Time {
	seen := make(map[int64]struct{})
	result := []time.Time{start, end}
	seen[start.Unix()] = struct{}{}
	seen[end.Unix()] = struct{}{}

	for _, set := range sets {
		for _, d := range set {
			if d.Before(start) || d.After(end) {
				continue
			}
			key := d.Unix()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			result = append(result, d)
		}
	}
	utils.SortDates(result)
	return result
}

// Bracket returns the index idx such that dates[idx] <= target < dates[idx+1],
// using binary search. If target is at or before dates[0], it returns 0; if
// target is at or after the last date, it returns len(dates)-2. dates must
// have at least two elements and be sorted ascending.
func Bracket(dates []time.Time, target time.Time) int {
	if len(dates) < 2 {
		panic("timeline.Bracket: need at least 2 dates")
	}
	idx := sort.Search(len(dates), func(i int) bool {
		return dates[i].After(target)
	})
	if idx == 0 {
		return 0
	}
	if idx >= len(dates) {
		return len(dates) - 2
	}
	return idx - 1
}

// Truncate returns the subsequence of dates lying within [start, end]
// inclusive, assuming dates is sorted ascending.
func Truncate(dates []time.Time, start, end time.Time) []time.Time {
	var out []time.Time
	for _, d := range dates {
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, d)
	}
	return out
}
