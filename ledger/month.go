package ledger

import "iter"

// Months yields the calendar months from leaseStart's month through the
// month containing asOf, in ascending order. Day-of-month is discarded.
//
// The sequence is lazy and can be ranged over any number of times. It is
// empty when leaseStart is after asOf.
func Months(leaseStart, asOf Date) iter.Seq[Month] {
	return func(yield func(Month) bool) {
		if leaseStart.After(asOf) {
			return
		}
		last := MonthOf(asOf)
		for m := MonthOf(leaseStart); !m.After(last); m = m.Next() {
			if !yield(m) {
				return
			}
		}
	}
}

// ElapsedMonths counts calendar-month boundaries crossed between from and
// to, ignoring the day of month. Never negative.
//
//	ElapsedMonths(2024-01-31, 2024-02-01) == 1
//	ElapsedMonths(2024-01-01, 2024-01-31) == 0
func ElapsedMonths(from, to Date) int {
	n := MonthOf(to).index() - MonthOf(from).index()
	if n < 0 {
		return 0
	}
	return n
}
