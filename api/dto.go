/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the rental and ledger models from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY AND DATES:
  Amounts are decimal.Decimal, which encodes as a JSON string ("25000.50")
  and decodes from either a string or a number. Dates are "YYYY-MM-DD"
  strings; audit timestamps are RFC 3339.

VALIDATION:
  Request types carry `validate` tags checked by go-playground/validator
  before the handler touches the store. Domain rules (negative rent, bad
  dates) are still enforced by package ledger.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/accumulate.go: Ledger rows rendered by LedgerDTO
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/rent-ledger/ledger"
	"github.com/warp/rent-ledger/rental"
)

// =============================================================================
// PROPERTIES & UNITS
// =============================================================================

type PropertyDTO struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Address      string          `json:"address"`
	City         string          `json:"city"`
	State        string          `json:"state"`
	ZipCode      string          `json:"zip_code"`
	UnitCount    int             `json:"unit_count"`
	ExpectedRent decimal.Decimal `json:"expected_rent"`
	Units        []UnitDTO       `json:"units,omitempty"`
	CreatedAt    string          `json:"created_at,omitempty"`
}

type CreatePropertyRequest struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name" validate:"required,max=200"`
	Address   string `json:"address" validate:"max=500"`
	City      string `json:"city" validate:"max=100"`
	State     string `json:"state" validate:"max=100"`
	ZipCode   string `json:"zip_code" validate:"max=20"`
	CreatedBy string `json:"created_by,omitempty"`
}

type UnitDTO struct {
	ID         string          `json:"id"`
	PropertyID string          `json:"property_id"`
	UnitNumber string          `json:"unit_number"`
	FloorPlan  string          `json:"floor_plan,omitempty"`
	SquareFeet *int            `json:"square_feet,omitempty"`
	RentAmount decimal.Decimal `json:"rent_amount"`
	Status     string          `json:"status"`
}

type CreateUnitRequest struct {
	ID         string           `json:"id,omitempty"`
	PropertyID string           `json:"property_id" validate:"required"`
	UnitNumber string           `json:"unit_number" validate:"required,max=50"`
	FloorPlan  string           `json:"floor_plan,omitempty"`
	SquareFeet *int             `json:"square_feet,omitempty" validate:"omitempty,gte=0"`
	RentAmount *decimal.Decimal `json:"rent_amount" validate:"required"`
	Status     string           `json:"status,omitempty" validate:"omitempty,oneof=available occupied maintenance"`
}

// =============================================================================
// TENANTS
// =============================================================================

type TenantDTO struct {
	ID              string           `json:"id"`
	UnitID          string           `json:"unit_id"`
	UnitNumber      string           `json:"unit_number,omitempty"`
	Name            string           `json:"tenant_name,omitempty"`
	Email           string           `json:"tenant_email,omitempty"`
	Phone           string           `json:"tenant_phone,omitempty"`
	LeaseStart      string           `json:"lease_start"`
	LeaseEnd        string           `json:"lease_end,omitempty"`
	RentAmount      decimal.Decimal  `json:"rent_amount"`
	SecurityDeposit *decimal.Decimal `json:"security_deposit,omitempty"`
	PaymentDueDay   int              `json:"payment_due_day"`
	CreatedAt       string           `json:"created_at,omitempty"`
}

type CreateTenantRequest struct {
	ID     string `json:"id,omitempty"`
	UnitID string `json:"unit_id" validate:"required"`
	UpdateTenantRequest
}

// UpdateTenantRequest carries the editable lease fields. The unit cannot
// be changed through an update.
type UpdateTenantRequest struct {
	Name            string           `json:"tenant_name" validate:"max=200"`
	Email           string           `json:"tenant_email" validate:"omitempty,email"`
	Phone           string           `json:"tenant_phone" validate:"max=50"`
	LeaseStart      string           `json:"lease_start" validate:"required"`
	LeaseEnd        string           `json:"lease_end,omitempty"`
	RentAmount      *decimal.Decimal `json:"rent_amount" validate:"required"`
	SecurityDeposit *decimal.Decimal `json:"security_deposit,omitempty"`
	PaymentDueDay   int              `json:"payment_due_day" validate:"omitempty,min=1,max=31"`
}

// =============================================================================
// PAYMENTS
// =============================================================================

type PaymentDTO struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenant_id"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       string          `json:"due_date"`
	PaymentDate   *string         `json:"payment_date"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	MpesaCode     string          `json:"mpesa_code,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     string          `json:"created_at,omitempty"`
}

type PaymentRequest struct {
	ID            string           `json:"id,omitempty"`
	TenantID      string           `json:"tenant_id" validate:"required"`
	Amount        *decimal.Decimal `json:"amount" validate:"required"`
	DueDate       string           `json:"due_date" validate:"required"`
	PaymentDate   *string          `json:"payment_date,omitempty"`
	Status        string           `json:"status,omitempty" validate:"omitempty,oneof=pending paid overdue partial"`
	PaymentMethod string           `json:"payment_method,omitempty" validate:"max=50"`
	MpesaCode     string           `json:"mpesa_code,omitempty" validate:"max=50"`
	Notes         string           `json:"notes,omitempty" validate:"max=1000"`
}

// =============================================================================
// LEDGER & SUMMARY
// =============================================================================

type PaymentRecordDTO struct {
	ID            string          `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   *string         `json:"payment_date"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	MpesaCode     string          `json:"mpesa_code,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

type LedgerRowDTO struct {
	Month          string             `json:"month"`
	Label          string             `json:"label"`
	ExpectedAmount decimal.Decimal    `json:"expected_amount"`
	Payments       []PaymentRecordDTO `json:"payments"`
	TotalPaid      decimal.Decimal    `json:"total_paid"`
	RunningBalance decimal.Decimal    `json:"running_balance"`
	Status         string             `json:"status"`
}

type LedgerDTO struct {
	TenantID      string             `json:"tenant_id"`
	AsOf          string             `json:"as_of"`
	Rows          []LedgerRowDTO     `json:"rows"`
	Undated       []PaymentRecordDTO `json:"undated"`
	OutOfRange    []PaymentRecordDTO `json:"out_of_range"`
	TotalExpected decimal.Decimal    `json:"total_expected"`
	TotalPaid     decimal.Decimal    `json:"total_paid"`
	Balance       decimal.Decimal    `json:"balance"`
}

type SummaryDTO struct {
	TenantID        string          `json:"tenant_id"`
	AsOf            string          `json:"as_of"`
	MonthsActive    int             `json:"months_active"`
	TotalRentDue    decimal.Decimal `json:"total_rent_due"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	Balance         decimal.Decimal `json:"balance"`
	LastPaymentDate *string         `json:"last_payment_date"`
	Status          string          `json:"status"`
}

// PaymentSummaryDTO is one row of the payment history list.
type PaymentSummaryDTO struct {
	TenantName string `json:"tenant_name"`
	UnitNumber string `json:"unit_number"`
	SummaryDTO
}

type StatusTotalsDTO struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type MonthTotalsDTO struct {
	Month string          `json:"month"`
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
	Paid  decimal.Decimal `json:"paid"`
}

type DashboardDTO struct {
	TotalPayments int                        `json:"total_payments"`
	TotalAmount   decimal.Decimal            `json:"total_amount"`
	PaidAmount    decimal.Decimal            `json:"paid_amount"`
	ByStatus      map[string]StatusTotalsDTO `json:"by_status"`
	ByMonth       []MonthTotalsDTO           `json:"by_month"`
}

// =============================================================================
// IMPORT
// =============================================================================

// ImportRequest carries rows as exported by the hosted database. Values are
// loosely typed; each row goes through ledger.ParseTenantRow or
// ledger.ParsePaymentRow before anything is written.
type ImportRequest struct {
	Tenants  []map[string]any `json:"tenants"`
	Payments []map[string]any `json:"payments"`
}

type ImportRowError struct {
	Kind   string `json:"kind"`
	Index  int    `json:"index"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

type ImportResultDTO struct {
	TenantsImported  int              `json:"tenants_imported"`
	PaymentsImported int              `json:"payments_imported"`
	Errors           []ImportRowError `json:"errors,omitempty"`
}

// =============================================================================
// REMINDERS
// =============================================================================

type ReminderDTO struct {
	ID            string  `json:"id"`
	TenantID      string  `json:"tenant_id"`
	Frequency     string  `json:"frequency"`
	DaysBeforeDue int     `json:"days_before_due"`
	LastSent      *string `json:"last_sent"`
	IsActive      bool    `json:"is_active"`
}

type ReminderRequest struct {
	ID            string `json:"id,omitempty"`
	TenantID      string `json:"tenant_id" validate:"required"`
	Frequency     string `json:"frequency" validate:"required,oneof=weekly monthly custom"`
	DaysBeforeDue int    `json:"days_before_due" validate:"gte=0,lte=28"`
	IsActive      *bool  `json:"is_active,omitempty"`
}

type FiredReminderDTO struct {
	ReminderID string          `json:"reminder_id"`
	TenantID   string          `json:"tenant_id"`
	TenantName string          `json:"tenant_name,omitempty"`
	Frequency  string          `json:"frequency"`
	Balance    decimal.Decimal `json:"balance"`
	NextDue    string          `json:"next_due"`
}

type ReminderRunDTO struct {
	RanAt     string             `json:"ran_at"`
	Evaluated int                `json:"evaluated"`
	Fired     []FiredReminderDTO `json:"fired"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toUnitDTO(u rental.Unit) UnitDTO {
	return UnitDTO{
		ID:         u.ID,
		PropertyID: u.PropertyID,
		UnitNumber: u.UnitNumber,
		FloorPlan:  u.FloorPlan,
		SquareFeet: u.SquareFeet,
		RentAmount: u.RentAmount,
		Status:     string(u.Status),
	}
}

func toTenantDTO(t rental.Tenant, unitNumber string) TenantDTO {
	dto := TenantDTO{
		ID:              t.ID,
		UnitID:          t.UnitID,
		UnitNumber:      unitNumber,
		Name:            t.Name,
		Email:           t.Email,
		Phone:           t.Phone,
		LeaseStart:      t.LeaseStart.String(),
		RentAmount:      t.RentAmount,
		SecurityDeposit: t.SecurityDeposit,
		PaymentDueDay:   t.PaymentDueDay,
		CreatedAt:       formatTimestamp(t.CreatedAt),
	}
	if !t.LeaseEnd.IsZero() {
		dto.LeaseEnd = t.LeaseEnd.String()
	}
	return dto
}

func toPaymentDTO(p rental.Payment) PaymentDTO {
	return PaymentDTO{
		ID:            p.ID,
		TenantID:      p.TenantID,
		Amount:        p.Amount,
		DueDate:       p.DueDate.String(),
		PaymentDate:   datePtr(p.PaymentDate),
		Status:        string(p.Status),
		PaymentMethod: p.Method,
		MpesaCode:     p.MpesaCode,
		Notes:         p.Notes,
		CreatedAt:     formatTimestamp(p.CreatedAt),
	}
}

func toRecordDTOs(records []ledger.PaymentRecord) []PaymentRecordDTO {
	out := make([]PaymentRecordDTO, len(records))
	for i, r := range records {
		out[i] = PaymentRecordDTO{
			ID:            r.ID,
			Amount:        r.Amount,
			PaymentDate:   datePtr(r.PaymentDate),
			PaymentMethod: r.Method,
			MpesaCode:     r.ExternalReference,
			Notes:         r.Notes,
		}
	}
	return out
}

func toLedgerDTO(l ledger.Ledger) LedgerDTO {
	rows := make([]LedgerRowDTO, len(l.Rows))
	for i, r := range l.Rows {
		rows[i] = LedgerRowDTO{
			Month:          r.Month.String(),
			Label:          r.Month.Label(),
			ExpectedAmount: r.ExpectedAmount,
			Payments:       toRecordDTOs(r.Payments),
			TotalPaid:      r.TotalPaid,
			RunningBalance: r.RunningBalance,
			Status:         string(r.Status),
		}
	}
	return LedgerDTO{
		TenantID:      l.TenantID,
		AsOf:          l.AsOf.String(),
		Rows:          rows,
		Undated:       toRecordDTOs(l.Undated),
		OutOfRange:    toRecordDTOs(l.OutOfRange),
		TotalExpected: l.TotalExpected,
		TotalPaid:     l.TotalPaid,
		Balance:       l.Balance,
	}
}

func toSummaryDTO(s ledger.Summary) SummaryDTO {
	return SummaryDTO{
		TenantID:        s.TenantID,
		AsOf:            s.AsOf.String(),
		MonthsActive:    s.MonthsActive,
		TotalRentDue:    s.TotalRentDue,
		TotalPaid:       s.TotalPaid,
		Balance:         s.Balance,
		LastPaymentDate: datePtr(s.LastPaymentDate),
		Status:          string(s.Status),
	}
}

func toDashboardDTO(d rental.Dashboard) DashboardDTO {
	dto := DashboardDTO{
		TotalPayments: d.TotalPayments,
		TotalAmount:   d.TotalAmount,
		PaidAmount:    d.PaidAmount,
		ByStatus:      make(map[string]StatusTotalsDTO, len(d.ByStatus)),
		ByMonth:       make([]MonthTotalsDTO, len(d.ByMonth)),
	}
	for status, totals := range d.ByStatus {
		dto.ByStatus[string(status)] = StatusTotalsDTO{Count: totals.Count, Amount: totals.Amount}
	}
	for i, m := range d.ByMonth {
		dto.ByMonth[i] = MonthTotalsDTO{
			Month: m.Month.String(),
			Label: m.Month.Label(),
			Total: m.Total,
			Paid:  m.Paid,
		}
	}
	return dto
}

func toReminderDTO(r rental.Reminder) ReminderDTO {
	dto := ReminderDTO{
		ID:            r.ID,
		TenantID:      r.TenantID,
		Frequency:     string(r.Frequency),
		DaysBeforeDue: r.DaysBeforeDue,
		IsActive:      r.IsActive,
	}
	if r.LastSent != nil {
		s := r.LastSent.UTC().Format(time.RFC3339)
		dto.LastSent = &s
	}
	return dto
}

func datePtr(d *ledger.Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
