/*
handlers_test.go - HTTP tests for the rent ledger API

Tests for:
- Property/unit/tenant lifecycle and unit occupancy
- Request validation and error mapping (400/404/409)
- Cache invalidation after writes
- Health and metrics endpoints
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rent-ledger/ledger"
	"github.com/warp/rent-ledger/logging"
	"github.com/warp/rent-ledger/rental"
	"github.com/warp/rent-ledger/store/sqlite"
)

var testNow = time.Date(2024, time.March, 20, 10, 0, 0, 0, time.UTC)

func setupTestHandler(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := logging.New("error", "json")
	logger.SetOutput(io.Discard)

	h := NewHandler(store, logger, NewMetrics())
	h.Now = func() time.Time { return testNow }
	return h, NewRouter(h, nil)
}

// doJSON sends body (a string is sent verbatim) and returns the recorder.
func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// seedUnit stores a property with one available unit.
func seedUnit(t *testing.T, h *Handler, unitID string) {
	t.Helper()
	ctx := context.Background()
	_, err := h.Store.GetProperty(ctx, "prop-1")
	if rental.IsNotFound(err) {
		require.NoError(t, h.Store.SaveProperty(ctx, rental.Property{ID: "prop-1", Name: "Riverside"}))
	}
	require.NoError(t, h.Store.SaveUnit(ctx, rental.Unit{
		ID: unitID, PropertyID: "prop-1", UnitNumber: "No-" + unitID,
		RentAmount: decimal.NewFromInt(10000), Status: rental.UnitAvailable,
	}))
}

// seedTenant stores a tenant on a fresh unit.
func seedTenant(t *testing.T, h *Handler, id, name string, rent int64, leaseStart ledger.Date) {
	t.Helper()
	seedUnit(t, h, "unit-"+id)
	require.NoError(t, h.Store.CreateTenant(context.Background(), rental.Tenant{
		ID: id, UnitID: "unit-" + id, Name: name, LeaseStart: leaseStart,
		RentAmount: decimal.NewFromInt(rent), PaymentDueDay: 5,
	}))
}

func seedPayment(t *testing.T, h *Handler, id, tenantID string, amount int64, paid ledger.Date) {
	t.Helper()
	require.NoError(t, h.Store.SavePayment(context.Background(), rental.Payment{
		ID: id, TenantID: tenantID, Amount: decimal.NewFromInt(amount),
		DueDate: paid, PaymentDate: &paid, Status: rental.PaymentPaid,
	}))
}

func TestHealth(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestPropertyUnitTenantLifecycle(t *testing.T) {
	_, router := setupTestHandler(t)

	// GIVEN: a property with one unit
	rec := doJSON(t, router, http.MethodPost, "/api/properties", map[string]any{
		"id": "prop-1", "name": "Kilimani Court", "city": "Nairobi",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/units", map[string]any{
		"id": "u1", "property_id": "prop-1", "unit_number": "A1", "rent_amount": "25000.50",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	unit := decodeBody[UnitDTO](t, rec)
	assert.Equal(t, "available", unit.Status)
	assert.Equal(t, "25000.5", unit.RentAmount.String())

	// WHEN: a tenant leases it
	tenantBody := map[string]any{
		"id": "t1", "unit_id": "u1", "tenant_name": "Wanjiru", "tenant_email": "wanjiru@example.com",
		"lease_start": "2024-01-01", "rent_amount": 25000, "payment_due_day": 5,
	}
	rec = doJSON(t, router, http.MethodPost, "/api/tenants", tenantBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// THEN: the unit is occupied, and a second lease conflicts
	rec = doJSON(t, router, http.MethodGet, "/api/units?property_id=prop-1", nil)
	units := decodeBody[[]UnitDTO](t, rec)
	require.Len(t, units, 1)
	assert.Equal(t, "occupied", units[0].Status)

	tenantBody["id"] = "t2"
	rec = doJSON(t, router, http.MethodPost, "/api/tenants", tenantBody)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decodeBody[ErrorResponse](t, rec).Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/units/u1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Property detail carries its units and expected rent
	rec = doJSON(t, router, http.MethodGet, "/api/properties/prop-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	prop := decodeBody[PropertyDTO](t, rec)
	assert.Equal(t, 1, prop.UnitCount)
	assert.Equal(t, "25000.5", prop.ExpectedRent.String())
	require.Len(t, prop.Units, 1)

	// WHEN: the tenant leaves
	rec = doJSON(t, router, http.MethodDelete, "/api/tenants/t1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// THEN: the unit is available again
	rec = doJSON(t, router, http.MethodGet, "/api/units", nil)
	units = decodeBody[[]UnitDTO](t, rec)
	require.Len(t, units, 1)
	assert.Equal(t, "available", units[0].Status)

	rec = doJSON(t, router, http.MethodGet, "/api/tenants/t1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateTenant_Validation(t *testing.T) {
	h, router := setupTestHandler(t)
	seedUnit(t, h, "u1")

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{"malformed json", `{"unit_id":`, ""},
		{"missing rent", map[string]any{"unit_id": "u1", "lease_start": "2024-01-01"}, "rent_amount"},
		{"missing lease start", map[string]any{"unit_id": "u1", "rent_amount": 100}, "lease_start"},
		{"bad email", map[string]any{"unit_id": "u1", "lease_start": "2024-01-01", "rent_amount": 100, "tenant_email": "nope"}, "tenant_email"},
		{"due day out of range", map[string]any{"unit_id": "u1", "lease_start": "2024-01-01", "rent_amount": 100, "payment_due_day": 40}, "payment_due_day"},
		{"unparseable lease start", map[string]any{"unit_id": "u1", "lease_start": "01/02/2024", "rent_amount": 100}, "lease_start"},
		{"negative rent", map[string]any{"unit_id": "u1", "lease_start": "2024-01-01", "rent_amount": "-1"}, "rent_amount"},
		{"lease ends before start", map[string]any{"unit_id": "u1", "lease_start": "2024-01-01", "lease_end": "2023-12-31", "rent_amount": 100}, "lease_end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/tenants", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			resp := decodeBody[ErrorResponse](t, rec)
			assert.Equal(t, "invalid_input", resp.Code)
			if tt.field != "" {
				assert.Contains(t, resp.Details, tt.field)
			}
		})
	}

	// Nothing was written, the unit is still free
	u, err := h.Store.GetUnit(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, rental.UnitAvailable, u.Status)
}

func TestCreateUnit_UnknownProperty(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := doJSON(t, router, http.MethodPost, "/api/units", map[string]any{
		"property_id": "missing", "unit_number": "A1", "rent_amount": 100,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateTenant(t *testing.T) {
	h, router := setupTestHandler(t)
	seedTenant(t, h, "t1", "Otieno", 10000, ledger.NewDate(2024, time.January, 1))

	rec := doJSON(t, router, http.MethodPut, "/api/tenants/t1", map[string]any{
		"tenant_name": "Otieno Ouma", "lease_start": "2024-01-01", "rent_amount": "12000", "payment_due_day": 10,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/tenants/t1", nil)
	got := decodeBody[TenantDTO](t, rec)
	assert.Equal(t, "Otieno Ouma", got.Name)
	assert.Equal(t, "12000", got.RentAmount.String())
	assert.Equal(t, 10, got.PaymentDueDay)
	assert.Equal(t, "No-unit-t1", got.UnitNumber)

	rec = doJSON(t, router, http.MethodPut, "/api/tenants/ghost", map[string]any{
		"lease_start": "2024-01-01", "rent_amount": "1",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPayments_CRUDAndCacheInvalidation(t *testing.T) {
	h, router := setupTestHandler(t)
	seedTenant(t, h, "t1", "Otieno", 10000, ledger.NewDate(2024, time.January, 1))

	// GIVEN: the payment list has been read (and cached)
	rec := doJSON(t, router, http.MethodGet, "/api/payments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]PaymentDTO](t, rec))
	assert.True(t, h.Cache.Cached(rental.EntityPayments))

	// WHEN: payments are recorded
	rec = doJSON(t, router, http.MethodPost, "/api/payments", map[string]any{
		"id": "p1", "tenant_id": "t1", "amount": "10000", "due_date": "2024-01-05",
		"payment_date": "2024-01-04", "mpesa_code": "QWE123RTY",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "paid", decodeBody[PaymentDTO](t, rec).Status)

	rec = doJSON(t, router, http.MethodPost, "/api/payments", map[string]any{
		"id": "p2", "tenant_id": "t1", "amount": 10000, "due_date": "2024-02-05",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pending := decodeBody[PaymentDTO](t, rec)
	assert.Equal(t, "pending", pending.Status)
	assert.Nil(t, pending.PaymentDate)

	// THEN: the list reflects the writes
	rec = doJSON(t, router, http.MethodGet, "/api/payments?tenant_id=t1", nil)
	assert.Len(t, decodeBody[[]PaymentDTO](t, rec), 2)

	// Update marks the pending payment paid
	rec = doJSON(t, router, http.MethodPut, "/api/payments/p2", map[string]any{
		"tenant_id": "t1", "amount": 10000, "due_date": "2024-02-05", "payment_date": "2024-02-06",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "paid", decodeBody[PaymentDTO](t, rec).Status)

	rec = doJSON(t, router, http.MethodPut, "/api/payments/p2", map[string]any{
		"tenant_id": "someone-else", "amount": 1, "due_date": "2024-02-05",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/payments/p1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, router, http.MethodDelete, "/api/payments/p1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/payments", nil)
	assert.Len(t, decodeBody[[]PaymentDTO](t, rec), 1)
}

func TestCreatePayment_Rejects(t *testing.T) {
	h, router := setupTestHandler(t)
	seedTenant(t, h, "t1", "Otieno", 10000, ledger.NewDate(2024, time.January, 1))

	rec := doJSON(t, router, http.MethodPost, "/api/payments", map[string]any{
		"tenant_id": "t1", "amount": "-50", "due_date": "2024-01-05",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/payments", map[string]any{
		"tenant_id": "t1", "amount": "50", "due_date": "2024-01-05", "status": "refunded",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/payments", map[string]any{
		"tenant_id": "nobody", "amount": "50", "due_date": "2024-01-05",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h, router := setupTestHandler(t)
	seedTenant(t, h, "t1", "Otieno", 10000, ledger.NewDate(2024, time.January, 1))

	doJSON(t, router, http.MethodGet, "/api/tenants/t1/ledger", nil)

	rec := doJSON(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `rent_ledger_http_requests_total{endpoint="/api/tenants/{id}/ledger",method="GET",status="200"} 1`)
	assert.Contains(t, body, `rent_ledger_reconciliations_total{view="ledger"} 1`)
}
