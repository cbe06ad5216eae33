package rental

import (
	"strings"

	"github.com/warp/rent-ledger/ledger"
)

// TenantLedger reconciles one tenant's payments month by month.
func TenantLedger(t Tenant, payments []Payment, asOf ledger.Date) (ledger.Ledger, error) {
	lt, err := t.LedgerTenant()
	if err != nil {
		return ledger.Ledger{}, err
	}
	return ledger.Reconcile(lt, LedgerRecords(payments), asOf)
}

// TenantSummary computes the list-view aggregate for one tenant.
func TenantSummary(t Tenant, payments []Payment, asOf ledger.Date) (ledger.Summary, error) {
	lt, err := t.LedgerTenant()
	if err != nil {
		return ledger.Summary{}, err
	}
	return ledger.Summarize(lt, LedgerRecords(payments), asOf)
}

// PaymentSummary pairs a tenant with its aggregate for list views.
type PaymentSummary struct {
	Tenant     Tenant
	UnitNumber string
	Summary    ledger.Summary
}

// SummaryFilter narrows the payment-summary list. Zero value matches all.
type SummaryFilter struct {
	// Query matches tenant name or unit number, case-insensitively.
	Query  string
	Status ledger.SummaryStatus
}

func (f SummaryFilter) matches(s PaymentSummary) bool {
	if f.Status != "" && s.Summary.Status != f.Status {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	return strings.Contains(strings.ToLower(s.Tenant.Name), q) ||
		strings.Contains(strings.ToLower(s.UnitNumber), q)
}

// PaymentSummaries builds one summary per tenant, in tenant order, and
// applies the filter. A tenant whose record fails validation aborts the
// whole list: a silently missing row would misreport arrears.
func PaymentSummaries(tenants []Tenant, units []Unit, payments []Payment, asOf ledger.Date, f SummaryFilter) ([]PaymentSummary, error) {
	unitNumbers := make(map[string]string, len(units))
	for _, u := range units {
		unitNumbers[u.ID] = u.UnitNumber
	}
	byTenant := make(map[string][]Payment)
	for _, p := range payments {
		byTenant[p.TenantID] = append(byTenant[p.TenantID], p)
	}

	var out []PaymentSummary
	for _, t := range tenants {
		s, err := TenantSummary(t, byTenant[t.ID], asOf)
		if err != nil {
			return nil, err
		}
		ps := PaymentSummary{Tenant: t, UnitNumber: unitNumbers[t.UnitID], Summary: s}
		if f.matches(ps) {
			out = append(out, ps)
		}
	}
	return out, nil
}
