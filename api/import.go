package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/rent-ledger/ledger"
	"github.com/warp/rent-ledger/logging"
	"github.com/warp/rent-ledger/rental"
)

// =============================================================================
// IMPORT - Raw rows from the hosted database export
// =============================================================================
//
// Every row is parsed before anything is written. If any row fails, the
// response lists all failures and the database is untouched. Writes then
// happen row by row (tenants first, so payments can reference them); a
// store error part-way leaves the earlier rows in place.

// Import handles POST /api/import.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		h.fail(w, r, "Invalid request body", badRequest("invalid JSON: %v", err))
		return
	}

	tenants, payments, rowErrs := parseImport(req, h.today())
	if len(rowErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, ImportResultDTO{Errors: rowErrs})
		return
	}

	ctx := r.Context()
	result := ImportResultDTO{}
	defer func() {
		if result.TenantsImported > 0 {
			h.Cache.Invalidate(rental.EntityTenants, rental.EntityUnits)
		}
		if result.PaymentsImported > 0 {
			h.Cache.Invalidate(rental.EntityPayments)
		}
	}()

	for _, t := range tenants {
		if err := h.Store.CreateTenant(ctx, t); err != nil {
			h.fail(w, r, fmt.Sprintf("Failed to import tenant %s", t.ID), err)
			return
		}
		result.TenantsImported++
	}
	for _, p := range payments {
		if err := h.Store.SavePayment(ctx, p); err != nil {
			h.fail(w, r, fmt.Sprintf("Failed to import payment %s", p.ID), err)
			return
		}
		result.PaymentsImported++
	}

	h.Logger.WithFields(logging.Fields{
		"tenants":  result.TenantsImported,
		"payments": result.PaymentsImported,
	}).Info("Import completed")

	writeJSON(w, http.StatusOK, result)
}

// parseImport validates every row and converts it into rental records.
func parseImport(req ImportRequest, today ledger.Date) ([]rental.Tenant, []rental.Payment, []ImportRowError) {
	var (
		tenants  []rental.Tenant
		payments []rental.Payment
		rowErrs  []ImportRowError
	)

	for i, row := range req.Tenants {
		t, err := parseTenantImport(row)
		if err != nil {
			rowErrs = append(rowErrs, importError("tenant", i, err))
			continue
		}
		tenants = append(tenants, t)
	}
	for i, row := range req.Payments {
		p, err := parsePaymentImport(row, today)
		if err != nil {
			rowErrs = append(rowErrs, importError("payment", i, err))
			continue
		}
		payments = append(payments, p)
	}
	return tenants, payments, rowErrs
}

func parseTenantImport(row map[string]any) (rental.Tenant, error) {
	lt, err := ledger.ParseTenantRow(row)
	if err != nil {
		return rental.Tenant{}, err
	}
	if lt.UnitID == "" {
		return rental.Tenant{}, &ledger.InvalidInputError{Field: "unit_id", Reason: "unit is required"}
	}

	t := rental.Tenant{
		ID:            newID(lt.ID),
		UnitID:        lt.UnitID,
		LeaseStart:    lt.LeaseStart,
		RentAmount:    lt.RentAmount,
		PaymentDueDay: 1,
		Name:          stringField(row, "tenant_name"),
		Email:         stringField(row, "tenant_email"),
		Phone:         stringField(row, "tenant_phone"),
	}

	if s := stringField(row, "lease_end"); s != "" {
		if t.LeaseEnd, err = ledger.ParseDate(s); err != nil {
			return rental.Tenant{}, &ledger.InvalidInputError{Field: "lease_end", Value: s, Reason: err.Error()}
		}
	}
	if v, ok := row["security_deposit"]; ok && v != nil {
		d, err := ledger.ParseAmount(v)
		if err != nil {
			return rental.Tenant{}, &ledger.InvalidInputError{Field: "security_deposit", Value: v, Reason: err.Error()}
		}
		t.SecurityDeposit = &d
	}
	if v, ok := row["payment_due_day"]; ok && v != nil {
		d, err := ledger.ParseAmount(v)
		if err != nil || !d.IsInteger() || d.LessThan(decimal.NewFromInt(1)) || d.GreaterThan(decimal.NewFromInt(31)) {
			return rental.Tenant{}, &ledger.InvalidInputError{Field: "payment_due_day", Value: v, Reason: "expected a day between 1 and 31"}
		}
		t.PaymentDueDay = int(d.IntPart())
	}
	return t, nil
}

// parsePaymentImport converts a raw payment row. due_date falls back to the
// payment date, then to today for pending rows without one.
func parsePaymentImport(row map[string]any, today ledger.Date) (rental.Payment, error) {
	rec, err := ledger.ParsePaymentRow(row)
	if err != nil {
		return rental.Payment{}, err
	}
	tenantID := stringField(row, "tenant_id")
	if tenantID == "" {
		return rental.Payment{}, &ledger.InvalidInputError{Field: "tenant_id", Reason: "tenant is required"}
	}

	p := rental.Payment{
		ID:          newID(rec.ID),
		TenantID:    tenantID,
		Amount:      rec.Amount,
		PaymentDate: rec.PaymentDate,
		Method:      rec.Method,
		MpesaCode:   rec.ExternalReference,
		Notes:       rec.Notes,
	}

	switch s := stringField(row, "due_date"); {
	case s != "":
		if p.DueDate, err = ledger.ParseDate(s); err != nil {
			return rental.Payment{}, &ledger.InvalidInputError{Field: "due_date", Value: s, Reason: err.Error()}
		}
	case rec.PaymentDate != nil:
		p.DueDate = *rec.PaymentDate
	default:
		p.DueDate = today
	}

	p.Status = rental.PaymentStatus(strings.ToLower(stringField(row, "status")))
	if p.Status == "" {
		p.Status = rental.DefaultPaymentStatus(p.PaymentDate)
	} else if !p.Status.Valid() {
		return rental.Payment{}, &ledger.InvalidInputError{Field: "status", Value: string(p.Status), Reason: "unknown payment status"}
	}
	return p, nil
}

func importError(kind string, index int, err error) ImportRowError {
	e := ImportRowError{Kind: kind, Index: index, Reason: err.Error()}
	var inv *ledger.InvalidInputError
	if errors.As(err, &inv) {
		e.Field = inv.Field
		e.Reason = inv.Reason
	}
	return e
}

// stringField reads an optional string value; non-strings read as "".
func stringField(row map[string]any, key string) string {
	s, _ := row[key].(string)
	return strings.TrimSpace(s)
}
