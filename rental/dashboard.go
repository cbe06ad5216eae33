package rental

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/rent-ledger/ledger"
)

// StatusTotals counts payments recorded with one status.
type StatusTotals struct {
	Count  int
	Amount decimal.Decimal
}

// MonthTotals groups payment amounts by the month they were due.
type MonthTotals struct {
	Month ledger.Month
	Total decimal.Decimal
	Paid  decimal.Decimal
}

// Dashboard aggregates payments by their recorded status. Unlike the
// ledger it trusts the stored status field rather than reconciling.
type Dashboard struct {
	TotalPayments int
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
	ByStatus      map[PaymentStatus]StatusTotals
	ByMonth       []MonthTotals
}

func BuildDashboard(payments []Payment) Dashboard {
	d := Dashboard{
		TotalAmount: decimal.Zero,
		PaidAmount:  decimal.Zero,
		ByStatus:    make(map[PaymentStatus]StatusTotals),
	}
	months := make(map[ledger.Month]*MonthTotals)

	for _, p := range payments {
		d.TotalPayments++
		d.TotalAmount = d.TotalAmount.Add(p.Amount)

		st := d.ByStatus[p.Status]
		st.Count++
		st.Amount = st.Amount.Add(p.Amount)
		d.ByStatus[p.Status] = st

		m := ledger.MonthOf(p.DueDate)
		mt, ok := months[m]
		if !ok {
			mt = &MonthTotals{Month: m, Total: decimal.Zero, Paid: decimal.Zero}
			months[m] = mt
		}
		mt.Total = mt.Total.Add(p.Amount)
		if p.Status == PaymentPaid {
			mt.Paid = mt.Paid.Add(p.Amount)
			d.PaidAmount = d.PaidAmount.Add(p.Amount)
		}
	}

	for _, mt := range months {
		d.ByMonth = append(d.ByMonth, *mt)
	}
	sort.Slice(d.ByMonth, func(i, j int) bool {
		return d.ByMonth[i].Month.Before(d.ByMonth[j].Month)
	})
	return d
}
