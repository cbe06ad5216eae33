package ledger

import "github.com/shopspring/decimal"

// Buckets groups dated payments by the calendar month of their payment date.
// Within a bucket, records keep their input order.
type Buckets map[Month][]PaymentRecord

// Bucketize groups payments by month. Records without a payment date are
// skipped: they are pending obligations, not money received.
func Bucketize(payments []PaymentRecord) Buckets {
	b := make(Buckets)
	for _, p := range payments {
		if !p.Dated() {
			continue
		}
		m := MonthOf(*p.PaymentDate)
		b[m] = append(b[m], p)
	}
	return b
}

// Total sums the payments bucketed in m. Zero for an empty month.
func (b Buckets) Total(m Month) decimal.Decimal {
	return sumAmounts(b[m])
}
