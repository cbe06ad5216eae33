package ledger

import "github.com/shopspring/decimal"

// =============================================================================
// ROW - One month of the ledger
// =============================================================================

type Row struct {
	Month          Month
	ExpectedAmount decimal.Decimal
	Payments       []PaymentRecord
	TotalPaid      decimal.Decimal

	// RunningBalance is cumulative expected-minus-paid across every month up
	// to and including this one. Negative means the tenant is in credit.
	RunningBalance decimal.Decimal
	Status         MonthStatus
}

// Accumulate walks the months from tenant.LeaseStart through asOf and folds
// the bucketed payments into one row per month.
//
// The running balance is never reset: a shortfall in month N carries into
// month N+1, and an overpayment carries forward as credit.
func Accumulate(tenant Tenant, buckets Buckets, asOf Date) []Row {
	var rows []Row
	balance := decimal.Zero
	for m := range Months(tenant.LeaseStart, asOf) {
		paid := buckets.Total(m)
		balance = balance.Add(tenant.RentAmount).Sub(paid)
		rows = append(rows, Row{
			Month:          m,
			ExpectedAmount: tenant.RentAmount,
			Payments:       buckets[m],
			TotalPaid:      paid,
			RunningBalance: balance,
			Status:         Classify(paid, tenant.RentAmount, balance),
		})
	}
	return rows
}

// =============================================================================
// LEDGER - Reconciliation result with the records that did not fit a month
// =============================================================================

type Ledger struct {
	TenantID string
	AsOf     Date
	Rows     []Row

	// Undated holds pending records (no payment date). They count toward
	// nothing in the monthly view.
	Undated []PaymentRecord

	// OutOfRange holds dated records whose month is outside the ledger:
	// before the lease start month, or after the evaluation month.
	OutOfRange []PaymentRecord

	TotalExpected decimal.Decimal
	TotalPaid     decimal.Decimal

	// Balance is the running balance of the last row (zero without rows).
	Balance decimal.Decimal
}

// Reconcile validates the inputs and builds the monthly ledger.
func Reconcile(tenant Tenant, payments []PaymentRecord, asOf Date) (Ledger, error) {
	if err := tenant.Validate(); err != nil {
		return Ledger{}, err
	}
	if asOf.IsZero() {
		return Ledger{}, invalid("as_of", nil, "evaluation date is required")
	}
	if err := validatePayments(payments); err != nil {
		return Ledger{}, err
	}

	buckets := Bucketize(payments)
	rows := Accumulate(tenant, buckets, asOf)

	l := Ledger{
		TenantID:      tenant.ID,
		AsOf:          asOf,
		Rows:          rows,
		TotalExpected: decimal.Zero,
		TotalPaid:     decimal.Zero,
		Balance:       decimal.Zero,
	}
	for _, r := range rows {
		l.TotalExpected = l.TotalExpected.Add(r.ExpectedAmount)
		l.TotalPaid = l.TotalPaid.Add(r.TotalPaid)
	}
	if len(rows) > 0 {
		l.Balance = rows[len(rows)-1].RunningBalance
	}

	inRange := make(map[Month]bool, len(rows))
	for _, r := range rows {
		inRange[r.Month] = true
	}
	for _, p := range payments {
		switch {
		case !p.Dated():
			l.Undated = append(l.Undated, p)
		case !inRange[MonthOf(*p.PaymentDate)]:
			l.OutOfRange = append(l.OutOfRange, p)
		}
	}
	return l, nil
}
