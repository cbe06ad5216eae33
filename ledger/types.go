/*
Package ledger reconciles a tenant's rent against the payments received.

PURPOSE:
  Given a lease start, a fixed monthly rent and a snapshot of payment
  records, the package walks month-by-month from the lease start to an
  evaluation date and produces one ledger row per month, each carrying
  the cumulative arrears (running balance) and a paid/partial/unpaid
  status. A second, independent aggregate summarizes the tenant for list
  views.

KEY CONCEPTS:
  - Tenant:        the lease terms being reconciled (start date, rent)
  - PaymentRecord: an immutable observation of money received
  - Row:           one month of the ledger (expected vs paid vs balance)
  - Summary:       tenant-level totals computed from elapsed months

DESIGN PRINCIPLES:
  1. Pure: no I/O, no clock reads. The evaluation date is always a parameter.
  2. Precision: all money is decimal.Decimal.
  3. Read-only inputs: payment records are never modified.
  4. Derived, never stored: rows are recomputed on every request.

USAGE:
  l, err := ledger.Reconcile(tenant, payments, ledger.DateOf(time.Now()))
  for _, row := range l.Rows {
      fmt.Println(row.Month.Label(), row.TotalPaid, row.RunningBalance, row.Status)
  }

SEE ALSO:
  - month.go:      month sequence generation
  - bucket.go:     grouping payments by calendar month
  - accumulate.go: running balance and the Ledger envelope
  - status.go:     month and summary classification
  - summary.go:    tenant-level aggregate
  - parse.go:      validation of loosely-typed rows
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// TENANT - Lease terms under reconciliation
// =============================================================================

type Tenant struct {
	ID         string
	UnitID     string
	LeaseStart Date
	RentAmount decimal.Decimal
}

// Validate checks the lease terms the reconciliation depends on.
func (t Tenant) Validate() error {
	if t.LeaseStart.IsZero() {
		return invalid("lease_start", nil, "lease start date is required")
	}
	if t.RentAmount.IsNegative() {
		return invalid("rent_amount", t.RentAmount, "rent must not be negative")
	}
	return nil
}

// =============================================================================
// PAYMENT RECORD - Money received (or scheduled) for a tenant
// =============================================================================

type PaymentRecord struct {
	ID     string
	Amount decimal.Decimal

	// PaymentDate is nil for pending records. Pending records are never
	// bucketed into a month.
	PaymentDate *Date

	Method            string
	Notes             string
	ExternalReference string // e.g. a mobile-money transaction code
}

func (p PaymentRecord) Dated() bool { return p.PaymentDate != nil }

func (p PaymentRecord) Validate() error {
	if p.Amount.IsNegative() {
		return invalid("amount", p.Amount, "payment amount must not be negative")
	}
	return nil
}

func validatePayments(payments []PaymentRecord) error {
	for _, p := range payments {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func sumAmounts(payments []PaymentRecord) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
