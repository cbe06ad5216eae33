/*
demo.go - Demo data loader

PURPOSE:
  Populates the database with a small, realistic portfolio so the ledger,
  summary and dashboard views have something to show. Dates are relative
  to the handler clock, so the demo always covers the last few months.

WHAT IT CREATES:
  Riverside Apartments (Nairobi), four units, three tenants:
    A-1  Amina Odhiambo   leased three months ago, partial arrears
    A-2  Brian Mwangi     overpaid the first month, credit carried forward
    B-1  Caro Njeri       pays in full every month, one pending record
    B-2  (vacant)
  Plus one monthly and one weekly reminder.

USAGE VIA API:
  POST /api/demo/load

NOTE:
  Loading resets the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: CRUD endpoints used to inspect the data
*/
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/rent-ledger/ledger"
	"github.com/warp/rent-ledger/rental"
)

// DemoResult reports what LoadDemoData created.
type DemoResult struct {
	Status     string `json:"status"`
	Properties int    `json:"properties"`
	Units      int    `json:"units"`
	Tenants    int    `json:"tenants"`
	Payments   int    `json:"payments"`
	Reminders  int    `json:"reminders"`
}

// LoadDemo handles POST /api/demo/load.
func (h *Handler) LoadDemo(w http.ResponseWriter, r *http.Request) {
	result, err := h.LoadDemoData(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to load demo data", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// LoadDemoData resets the store and seeds the demo portfolio.
func (h *Handler) LoadDemoData(ctx context.Context) (DemoResult, error) {
	defer h.Cache.InvalidateAll()

	if err := h.Store.Reset(ctx); err != nil {
		return DemoResult{}, err
	}

	result := DemoResult{Status: "loaded"}
	current := ledger.MonthOf(h.today())
	start := monthsBefore(current, 2)
	on := func(m ledger.Month, day int) *ledger.Date {
		d := ledger.NewDate(m.Year, m.Month, day)
		return &d
	}
	kes := func(amount int64) decimal.Decimal { return decimal.NewFromInt(amount) }

	// =========================================================================
	// PROPERTY & UNITS
	// =========================================================================

	property := rental.Property{
		ID:      "prop-riverside",
		Name:    "Riverside Apartments",
		Address: "14 Riverside Drive",
		City:    "Nairobi",
		State:   "Nairobi County",
		ZipCode: "00100",
	}
	if err := h.Store.SaveProperty(ctx, property); err != nil {
		return result, err
	}
	result.Properties++

	sqft := func(n int) *int { return &n }
	units := []rental.Unit{
		{ID: "unit-a1", UnitNumber: "A-1", FloorPlan: "2BR", SquareFeet: sqft(850), RentAmount: kes(10000)},
		{ID: "unit-a2", UnitNumber: "A-2", FloorPlan: "Studio", SquareFeet: sqft(400), RentAmount: kes(1000)},
		{ID: "unit-b1", UnitNumber: "B-1", FloorPlan: "1BR", SquareFeet: sqft(600), RentAmount: kes(25000)},
		{ID: "unit-b2", UnitNumber: "B-2", FloorPlan: "1BR", SquareFeet: sqft(600), RentAmount: kes(25000)},
	}
	for _, u := range units {
		u.PropertyID = property.ID
		u.Status = rental.UnitAvailable
		if err := h.Store.SaveUnit(ctx, u); err != nil {
			return result, err
		}
		result.Units++
	}

	// =========================================================================
	// TENANTS
	// =========================================================================

	tenants := []rental.Tenant{
		{ID: "tenant-amina", UnitID: "unit-a1", Name: "Amina Odhiambo", Email: "amina@example.com", Phone: "+254711000001", RentAmount: kes(10000), PaymentDueDay: 5},
		{ID: "tenant-brian", UnitID: "unit-a2", Name: "Brian Mwangi", Email: "brian@example.com", Phone: "+254711000002", RentAmount: kes(1000), PaymentDueDay: 1},
		{ID: "tenant-caro", UnitID: "unit-b1", Name: "Caro Njeri", Email: "caro@example.com", Phone: "+254711000003", RentAmount: kes(25000), PaymentDueDay: 10},
	}
	for _, t := range tenants {
		t.LeaseStart = start.Start()
		if err := h.Store.CreateTenant(ctx, t); err != nil {
			return result, err
		}
		result.Tenants++
	}

	// =========================================================================
	// PAYMENTS
	// =========================================================================

	second := start.Next()
	payments := []rental.Payment{
		// Amina: full first month, half the second, nothing yet this month
		{ID: "pay-amina-1", TenantID: "tenant-amina", Amount: kes(10000), PaymentDate: on(start, 15), MpesaCode: "QK15AMINA1", Method: "mpesa"},
		{ID: "pay-amina-2", TenantID: "tenant-amina", Amount: kes(5000), PaymentDate: on(second, 10), MpesaCode: "QK10AMINA2", Method: "mpesa"},

		// Brian: three months in one go
		{ID: "pay-brian-1", TenantID: "tenant-brian", Amount: kes(3000), PaymentDate: on(start, 1), Method: "bank_transfer", Notes: "Paid three months upfront"},

		// Caro: every month on time, plus a pending record for next month
		{ID: "pay-caro-1", TenantID: "tenant-caro", Amount: kes(25000), PaymentDate: on(start, 8), MpesaCode: "QK08CARO01", Method: "mpesa"},
		{ID: "pay-caro-2", TenantID: "tenant-caro", Amount: kes(25000), PaymentDate: on(second, 9), MpesaCode: "QK09CARO02", Method: "mpesa"},
		{ID: "pay-caro-3", TenantID: "tenant-caro", Amount: kes(25000), PaymentDate: on(current, 1), MpesaCode: "QK01CARO03", Method: "mpesa"},
		{ID: "pay-caro-4", TenantID: "tenant-caro", Amount: kes(25000), Notes: "Standing order"},
	}
	for _, p := range payments {
		if p.PaymentDate != nil {
			p.DueDate = *p.PaymentDate
		} else {
			p.DueDate = current.Next().Start()
		}
		p.Status = rental.DefaultPaymentStatus(p.PaymentDate)
		if err := h.Store.SavePayment(ctx, p); err != nil {
			return result, err
		}
		result.Payments++
	}

	// =========================================================================
	// REMINDERS
	// =========================================================================

	reminders := []rental.Reminder{
		{ID: "rem-amina-weekly", TenantID: "tenant-amina", Frequency: rental.ReminderWeekly, IsActive: true},
		{ID: "rem-caro-monthly", TenantID: "tenant-caro", Frequency: rental.ReminderMonthly, DaysBeforeDue: 3, IsActive: true},
	}
	for _, rem := range reminders {
		if err := h.Store.SaveReminder(ctx, rem); err != nil {
			return result, err
		}
		result.Reminders++
	}

	h.Logger.WithField("as_of", h.Now().Format(time.DateOnly)).Info("Demo data loaded")
	return result, nil
}

func monthsBefore(m ledger.Month, n int) ledger.Month {
	t := m.Start().Time.AddDate(0, -n, 0)
	return ledger.Month{Year: t.Year(), Month: t.Month()}
}
