package ledger

import "github.com/shopspring/decimal"

// Summary is the tenant-level aggregate shown in list views.
//
// It is computed independently of the monthly ledger: the amount due is
// rent times the elapsed whole months, and every payment counts toward the
// total regardless of its date. The two views can disagree for the same
// tenant (the ledger charges the current month, the summary does not).
type Summary struct {
	TenantID        string
	AsOf            Date
	MonthsActive    int
	TotalRentDue    decimal.Decimal
	TotalPaid       decimal.Decimal
	Balance         decimal.Decimal
	LastPaymentDate *Date
	Status          SummaryStatus
}

func Summarize(tenant Tenant, payments []PaymentRecord, asOf Date) (Summary, error) {
	if err := tenant.Validate(); err != nil {
		return Summary{}, err
	}
	if asOf.IsZero() {
		return Summary{}, invalid("as_of", nil, "evaluation date is required")
	}
	if err := validatePayments(payments); err != nil {
		return Summary{}, err
	}

	months := ElapsedMonths(tenant.LeaseStart, asOf)
	due := tenant.RentAmount.Mul(decimal.NewFromInt(int64(months)))
	paid := sumAmounts(payments)
	balance := due.Sub(paid)

	return Summary{
		TenantID:        tenant.ID,
		AsOf:            asOf,
		MonthsActive:    months,
		TotalRentDue:    due,
		TotalPaid:       paid,
		Balance:         balance,
		LastPaymentDate: lastPaymentDate(payments),
		Status:          classifySummary(paid, balance),
	}, nil
}

func lastPaymentDate(payments []PaymentRecord) *Date {
	var last *Date
	for _, p := range payments {
		if !p.Dated() {
			continue
		}
		if last == nil || p.PaymentDate.After(*last) {
			d := *p.PaymentDate
			last = &d
		}
	}
	return last
}
