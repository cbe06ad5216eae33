/*
Package rental holds the persisted property-management records and the
interfaces that load and save them.

PURPOSE:
  Properties contain units, units are leased to tenants, tenants make
  payments. These records are what the HTTP API creates and lists; the
  reconciliation itself lives in package ledger and only ever sees the
  typed values produced by Tenant.LedgerTenant and Payment.LedgerRecord.

KEY TYPES:
  - Property, Unit, Tenant, Payment, Reminder: persisted records
  - Store:  persistence interface (store/sqlite implements it)
  - Cache:  read-through query cache with explicit per-type invalidation

SEE ALSO:
  - ledger/: reconciliation core
  - store/sqlite/sqlite.go: Store implementation
*/
package rental

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/rent-ledger/ledger"
)

// EntityType names a kind of record for cache invalidation.
type EntityType string

const (
	EntityProperties EntityType = "properties"
	EntityUnits      EntityType = "units"
	EntityTenants    EntityType = "tenants"
	EntityPayments   EntityType = "payments"
	EntityReminders  EntityType = "reminders"
)

// =============================================================================
// PROPERTY
// =============================================================================

type Property struct {
	ID        string
	Name      string
	Address   string
	City      string
	State     string
	ZipCode   string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// UNIT
// =============================================================================

type UnitStatus string

const (
	UnitAvailable   UnitStatus = "available"
	UnitOccupied    UnitStatus = "occupied"
	UnitMaintenance UnitStatus = "maintenance"
)

type Unit struct {
	ID         string
	PropertyID string
	UnitNumber string
	FloorPlan  string
	SquareFeet *int
	RentAmount decimal.Decimal
	Status     UnitStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ExpectedRent sums the rent of the units belonging to propertyID.
func ExpectedRent(propertyID string, units []Unit) decimal.Decimal {
	total := decimal.Zero
	for _, u := range units {
		if u.PropertyID == propertyID {
			total = total.Add(u.RentAmount)
		}
	}
	return total
}

// =============================================================================
// TENANT
// =============================================================================

type Tenant struct {
	ID              string
	UnitID          string
	LeaseStart      ledger.Date
	LeaseEnd        ledger.Date
	RentAmount      decimal.Decimal
	SecurityDeposit *decimal.Decimal
	PaymentDueDay   int
	Name            string
	Email           string
	Phone           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LedgerTenant converts the record into the reconciliation model.
func (t Tenant) LedgerTenant() (ledger.Tenant, error) {
	lt := ledger.Tenant{
		ID:         t.ID,
		UnitID:     t.UnitID,
		LeaseStart: t.LeaseStart,
		RentAmount: t.RentAmount,
	}
	if err := lt.Validate(); err != nil {
		return ledger.Tenant{}, err
	}
	return lt, nil
}

// =============================================================================
// PAYMENT
// =============================================================================

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentOverdue PaymentStatus = "overdue"
	PaymentPartial PaymentStatus = "partial"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentOverdue, PaymentPartial:
		return true
	}
	return false
}

type Payment struct {
	ID          string
	TenantID    string
	Amount      decimal.Decimal
	DueDate     ledger.Date
	PaymentDate *ledger.Date
	Status      PaymentStatus
	Method      string
	MpesaCode   string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DefaultPaymentStatus is paid once money has a date, pending otherwise.
func DefaultPaymentStatus(paymentDate *ledger.Date) PaymentStatus {
	if paymentDate != nil {
		return PaymentPaid
	}
	return PaymentPending
}

func (p Payment) LedgerRecord() ledger.PaymentRecord {
	return ledger.PaymentRecord{
		ID:                p.ID,
		Amount:            p.Amount,
		PaymentDate:       p.PaymentDate,
		Method:            p.Method,
		Notes:             p.Notes,
		ExternalReference: p.MpesaCode,
	}
}

func LedgerRecords(payments []Payment) []ledger.PaymentRecord {
	out := make([]ledger.PaymentRecord, len(payments))
	for i, p := range payments {
		out[i] = p.LedgerRecord()
	}
	return out
}

// PaymentsFor filters payments down to one tenant, keeping order.
func PaymentsFor(tenantID string, payments []Payment) []Payment {
	var out []Payment
	for _, p := range payments {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out
}

// =============================================================================
// REMINDER
// =============================================================================

type ReminderFrequency string

const (
	ReminderWeekly  ReminderFrequency = "weekly"
	ReminderMonthly ReminderFrequency = "monthly"
	ReminderCustom  ReminderFrequency = "custom"
)

type Reminder struct {
	ID            string
	TenantID      string
	Frequency     ReminderFrequency
	DaysBeforeDue int
	LastSent      *time.Time
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
