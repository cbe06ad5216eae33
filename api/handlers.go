/*
handlers.go - HTTP API handlers for the rent ledger service

PURPOSE:
  Exposes properties, units, tenants and payments via REST, and feeds the
  stored records into the reconciliation core for the ledger and summary
  views. Handles HTTP request/response and JSON; the accounting lives in
  package ledger.

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store:    Database access (store/sqlite)
  - Cache:    List-query cache, invalidated after every write
  - Logger:   logrus logger
  - Metrics:  Prometheus collectors
  - Now:      Clock, replaceable in tests

REQUEST FLOW:
  1. Decode and validate the request body (validator tags)
  2. Convert to rental records (dates and amounts checked by ledger)
  3. Write through the Store, then invalidate the touched cache entries
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (occupied unit, duplicate unit number, dependent rows)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - reports.go: Ledger, summaries and dashboard
  - errors.go: Error mapping
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/rent-ledger/ledger"
	"github.com/warp/rent-ledger/logging"
	"github.com/warp/rent-ledger/rental"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the persistence the API needs: the rental records plus the
// maintenance operations used by health checks and the demo loader.
type Store interface {
	rental.Store
	Ping(ctx context.Context) error
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   Store
	Cache   *rental.Cache
	Logger  logging.Logger
	Metrics *Metrics

	// Now is the clock used for default evaluation dates and reminders.
	Now func() time.Time

	validate *validator.Validate
}

// NewHandler creates a new handler with the given store.
func NewHandler(store Store, logger logging.Logger, metrics *Metrics) *Handler {
	if logger == nil {
		logger = logging.New("info", "json")
	}
	if metrics == nil {
		metrics = NewMetrics()
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		Store:    store,
		Cache:    rental.NewCache(store),
		Logger:   logger,
		Metrics:  metrics,
		Now:      time.Now,
		validate: v,
	}
}

func (h *Handler) today() ledger.Date {
	return ledger.DateOf(h.Now())
}

func newID(requested string) string {
	if requested != "" {
		return requested
	}
	return uuid.NewString()
}

// Health reports liveness and database reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// PROPERTY HANDLERS
// =============================================================================

// ListProperties returns all properties with unit counts and expected rent.
func (h *Handler) ListProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := h.Cache.Properties(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list properties", err)
		return
	}
	units, err := h.Cache.Units(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list units", err)
		return
	}

	dtos := make([]PropertyDTO, len(properties))
	for i, p := range properties {
		dtos[i] = toPropertyDTO(p, units, false)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProperty returns a property with its units.
func (h *Handler) GetProperty(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetProperty(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get property", err)
		return
	}
	units, err := h.Cache.Units(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list units", err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyDTO(p, units, true))
}

func (h *Handler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var req CreatePropertyRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	p := rental.Property{
		ID:        newID(req.ID),
		Name:      req.Name,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		CreatedBy: req.CreatedBy,
	}
	if err := h.Store.SaveProperty(r.Context(), p); err != nil {
		h.fail(w, r, "Failed to create property", err)
		return
	}
	h.Cache.Invalidate(rental.EntityProperties)

	writeJSON(w, http.StatusCreated, toPropertyDTO(p, nil, false))
}

// DeleteProperty removes a property and its units.
func (h *Handler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteProperty(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "Failed to delete property", err)
		return
	}
	h.Cache.Invalidate(rental.EntityProperties, rental.EntityUnits)
	w.WriteHeader(http.StatusNoContent)
}

func toPropertyDTO(p rental.Property, units []rental.Unit, withUnits bool) PropertyDTO {
	dto := PropertyDTO{
		ID:           p.ID,
		Name:         p.Name,
		Address:      p.Address,
		City:         p.City,
		State:        p.State,
		ZipCode:      p.ZipCode,
		ExpectedRent: rental.ExpectedRent(p.ID, units),
		CreatedAt:    formatTimestamp(p.CreatedAt),
	}
	for _, u := range units {
		if u.PropertyID != p.ID {
			continue
		}
		dto.UnitCount++
		if withUnits {
			dto.Units = append(dto.Units, toUnitDTO(u))
		}
	}
	return dto
}

// =============================================================================
// UNIT HANDLERS
// =============================================================================

// ListUnits returns all units, optionally filtered by ?property_id=.
func (h *Handler) ListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.Cache.Units(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list units", err)
		return
	}

	propertyID := r.URL.Query().Get("property_id")
	dtos := make([]UnitDTO, 0, len(units))
	for _, u := range units {
		if propertyID != "" && u.PropertyID != propertyID {
			continue
		}
		dtos = append(dtos, toUnitDTO(u))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateUnit adds a unit to a property. Status defaults to available.
func (h *Handler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	var req CreateUnitRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	if req.RentAmount.IsNegative() {
		h.fail(w, r, "Invalid request body", badRequest("rent_amount must not be negative"))
		return
	}
	if _, err := h.Store.GetProperty(r.Context(), req.PropertyID); err != nil {
		h.fail(w, r, "Unknown property", err)
		return
	}

	u := rental.Unit{
		ID:         newID(req.ID),
		PropertyID: req.PropertyID,
		UnitNumber: req.UnitNumber,
		FloorPlan:  req.FloorPlan,
		SquareFeet: req.SquareFeet,
		RentAmount: *req.RentAmount,
		Status:     rental.UnitStatus(req.Status),
	}
	if u.Status == "" {
		u.Status = rental.UnitAvailable
	}
	if err := h.Store.SaveUnit(r.Context(), u); err != nil {
		h.fail(w, r, "Failed to create unit", err)
		return
	}
	h.Cache.Invalidate(rental.EntityUnits)

	writeJSON(w, http.StatusCreated, toUnitDTO(u))
}

// DeleteUnit removes a unit. Units with a tenant cannot be deleted.
func (h *Handler) DeleteUnit(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteUnit(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "Failed to delete unit", err)
		return
	}
	h.Cache.Invalidate(rental.EntityUnits)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TENANT HANDLERS
// =============================================================================

func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.Cache.Tenants(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list tenants", err)
		return
	}
	unitNumbers, err := h.unitNumbers(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list units", err)
		return
	}

	dtos := make([]TenantDTO, len(tenants))
	for i, t := range tenants {
		dtos[i] = toTenantDTO(t, unitNumbers[t.UnitID])
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := h.Store.GetTenant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get tenant", err)
		return
	}
	unitNumbers, err := h.unitNumbers(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list units", err)
		return
	}
	writeJSON(w, http.StatusOK, toTenantDTO(t, unitNumbers[t.UnitID]))
}

// CreateTenant leases a unit. The unit is marked occupied.
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	t := rental.Tenant{ID: newID(req.ID), UnitID: req.UnitID}
	if err := applyTenantFields(&t, req.UpdateTenantRequest); err != nil {
		h.fail(w, r, "Invalid tenant", err)
		return
	}
	if err := h.Store.CreateTenant(r.Context(), t); err != nil {
		h.fail(w, r, "Failed to create tenant", err)
		return
	}
	h.Cache.Invalidate(rental.EntityTenants, rental.EntityUnits)

	h.Logger.WithFields(logging.Fields{
		"tenant_id": t.ID,
		"unit_id":   t.UnitID,
	}).Info("Tenant created")

	writeJSON(w, http.StatusCreated, toTenantDTO(t, ""))
}

// UpdateTenant rewrites a tenant's lease fields.
func (h *Handler) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	var req UpdateTenantRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	t, err := h.Store.GetTenant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get tenant", err)
		return
	}
	if err := applyTenantFields(&t, req); err != nil {
		h.fail(w, r, "Invalid tenant", err)
		return
	}
	if err := h.Store.UpdateTenant(r.Context(), t); err != nil {
		h.fail(w, r, "Failed to update tenant", err)
		return
	}
	h.Cache.Invalidate(rental.EntityTenants)

	writeJSON(w, http.StatusOK, toTenantDTO(t, ""))
}

// DeleteTenant ends a lease: payments and reminders go with the tenant and
// the unit becomes available.
func (h *Handler) DeleteTenant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteTenant(r.Context(), id); err != nil {
		h.fail(w, r, "Failed to delete tenant", err)
		return
	}
	h.Cache.Invalidate(rental.EntityTenants, rental.EntityUnits, rental.EntityPayments, rental.EntityReminders)

	h.Logger.WithField("tenant_id", id).Info("Tenant deleted")
	w.WriteHeader(http.StatusNoContent)
}

// applyTenantFields copies request fields onto t and checks them with the
// same rules the ledger applies.
func applyTenantFields(t *rental.Tenant, req UpdateTenantRequest) error {
	leaseStart, err := ledger.ParseDate(req.LeaseStart)
	if err != nil {
		return &ledger.InvalidInputError{Field: "lease_start", Value: req.LeaseStart, Reason: err.Error()}
	}
	var leaseEnd ledger.Date
	if req.LeaseEnd != "" {
		if leaseEnd, err = ledger.ParseDate(req.LeaseEnd); err != nil {
			return &ledger.InvalidInputError{Field: "lease_end", Value: req.LeaseEnd, Reason: err.Error()}
		}
		if leaseEnd.Before(leaseStart) {
			return &ledger.InvalidInputError{Field: "lease_end", Value: req.LeaseEnd, Reason: "lease ends before it starts"}
		}
	}
	if req.SecurityDeposit != nil && req.SecurityDeposit.IsNegative() {
		return &ledger.InvalidInputError{Field: "security_deposit", Value: req.SecurityDeposit.String(), Reason: "must not be negative"}
	}

	t.Name = req.Name
	t.Email = req.Email
	t.Phone = req.Phone
	t.LeaseStart = leaseStart
	t.LeaseEnd = leaseEnd
	t.RentAmount = *req.RentAmount
	t.SecurityDeposit = req.SecurityDeposit
	t.PaymentDueDay = req.PaymentDueDay
	if t.PaymentDueDay == 0 {
		t.PaymentDueDay = 1
	}

	_, err = t.LedgerTenant()
	return err
}

func (h *Handler) unitNumbers(ctx context.Context) (map[string]string, error) {
	units, err := h.Cache.Units(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(units))
	for _, u := range units {
		out[u.ID] = u.UnitNumber
	}
	return out, nil
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// ListPayments returns all payments, optionally filtered by ?tenant_id=.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Cache.Payments(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list payments", err)
		return
	}
	if tenantID := r.URL.Query().Get("tenant_id"); tenantID != "" {
		payments = rental.PaymentsFor(tenantID, payments)
	}

	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePayment records a payment. Status defaults to paid when a payment
// date is given, pending otherwise.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	if _, err := h.Store.GetTenant(r.Context(), req.TenantID); err != nil {
		h.fail(w, r, "Unknown tenant", err)
		return
	}

	p, err := paymentFromRequest(newID(req.ID), req)
	if err != nil {
		h.fail(w, r, "Invalid payment", err)
		return
	}
	if err := h.Store.SavePayment(r.Context(), p); err != nil {
		h.fail(w, r, "Failed to create payment", err)
		return
	}
	h.Cache.Invalidate(rental.EntityPayments)

	writeJSON(w, http.StatusCreated, toPaymentDTO(p))
}

// UpdatePayment replaces a payment's fields. The tenant cannot change.
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	existing, err := h.Store.GetPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get payment", err)
		return
	}
	if req.TenantID != existing.TenantID {
		h.fail(w, r, "Invalid payment", badRequest("tenant_id cannot change (payment belongs to %s)", existing.TenantID))
		return
	}

	p, err := paymentFromRequest(existing.ID, req)
	if err != nil {
		h.fail(w, r, "Invalid payment", err)
		return
	}
	if err := h.Store.SavePayment(r.Context(), p); err != nil {
		h.fail(w, r, "Failed to update payment", err)
		return
	}
	h.Cache.Invalidate(rental.EntityPayments)

	writeJSON(w, http.StatusOK, toPaymentDTO(p))
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeletePayment(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "Failed to delete payment", err)
		return
	}
	h.Cache.Invalidate(rental.EntityPayments)
	w.WriteHeader(http.StatusNoContent)
}

func paymentFromRequest(id string, req PaymentRequest) (rental.Payment, error) {
	dueDate, err := ledger.ParseDate(req.DueDate)
	if err != nil {
		return rental.Payment{}, &ledger.InvalidInputError{Field: "due_date", Value: req.DueDate, Reason: err.Error()}
	}

	var paymentDate *ledger.Date
	if req.PaymentDate != nil && strings.TrimSpace(*req.PaymentDate) != "" {
		d, err := ledger.ParseDate(*req.PaymentDate)
		if err != nil {
			return rental.Payment{}, &ledger.InvalidInputError{Field: "payment_date", Value: *req.PaymentDate, Reason: err.Error()}
		}
		paymentDate = &d
	}

	p := rental.Payment{
		ID:          id,
		TenantID:    req.TenantID,
		Amount:      decimalOrZero(req.Amount),
		DueDate:     dueDate,
		PaymentDate: paymentDate,
		Status:      rental.PaymentStatus(req.Status),
		Method:      req.PaymentMethod,
		MpesaCode:   req.MpesaCode,
		Notes:       req.Notes,
	}
	if p.Status == "" {
		p.Status = rental.DefaultPaymentStatus(paymentDate)
	}
	if err := p.LedgerRecord().Validate(); err != nil {
		return rental.Payment{}, err
	}
	return p, nil
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
