// Package cashflow provides the dated-amount representation
// CashFlow/List spec.md's data model names, generalizing the teacher's
// instruments/bonds CashflowCents integer-minor-unit pattern from bond
// coupons to any dated cash amount (fee-leg coupons, accrual flows,
// contingent payments).
package cashflow

import (
	"sort"
	"time"
)

// CashFlow is a single dated amount.
type CashFlow struct {
	Date   time.Time
	Amount float64
}

// List is a chronologically-sorted sequence of cash flows.
type List []CashFlow

// Sort orders the list by date ascending, stable with respect to insertion
// order for same-day flows.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool { return l[i].Date.Before(l[j].Date) })
}

// Total sums every flow's amount.
func (l List) Total() float64 {
	var sum float64
	for _, cf := range l {
		sum += cf.Amount
	}
	return sum
}

// Merge returns the chronologically-sorted concatenation of multiple lists,
// without combining same-day entries (callers that want same-day netting
// do it themselves — netting a coupon against a contingent payment on the
// same day is a pricing decision, not a plumbing one).
func Merge(lists ...List) List {
	var out List
	for _, l := range lists {
		out = append(out, l...)
	}
	out.Sort()
	return out
}
