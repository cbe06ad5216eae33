package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDemo(t *testing.T) {
	// GIVEN: some prior data that the demo replaces
	h, router := setupTestHandler(t)
	seedUnit(t, h, "old-unit")

	// WHEN
	rec := doJSON(t, router, http.MethodPost, "/api/demo/load", nil)

	// THEN
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decodeBody[DemoResult](t, rec)
	assert.Equal(t, DemoResult{Status: "loaded", Properties: 1, Units: 4, Tenants: 3, Payments: 7, Reminders: 2}, result)

	rec = doJSON(t, router, http.MethodGet, "/api/units", nil)
	assert.Len(t, decodeBody[[]UnitDTO](t, rec), 4)

	// Amina: January paid, February half, March nothing
	rec = doJSON(t, router, http.MethodGet, "/api/tenants/tenant-amina/ledger", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ledgerDTO := decodeBody[LedgerDTO](t, rec)
	require.Len(t, ledgerDTO.Rows, 3)
	assert.Equal(t, "Fully Paid", ledgerDTO.Rows[0].Status)
	assert.Equal(t, "Partial", ledgerDTO.Rows[1].Status)
	assert.Equal(t, "Unpaid", ledgerDTO.Rows[2].Status)
	assert.Equal(t, "15000", ledgerDTO.Balance.String())

	// Brian: credit carried forward
	rec = doJSON(t, router, http.MethodGet, "/api/tenants/tenant-brian/ledger", nil)
	brian := decodeBody[LedgerDTO](t, rec)
	require.Len(t, brian.Rows, 3)
	assert.Equal(t, "0", brian.Balance.String())

	// Caro: fully paid, the standing order is pending and undated
	rec = doJSON(t, router, http.MethodGet, "/api/tenants/tenant-caro/ledger", nil)
	caro := decodeBody[LedgerDTO](t, rec)
	assert.Equal(t, "0", caro.Balance.String())
	assert.Len(t, caro.Undated, 1)

	rec = doJSON(t, router, http.MethodGet, "/api/payment-summaries?status=paid", nil)
	paid := decodeBody[[]PaymentSummaryDTO](t, rec)
	names := make([]string, len(paid))
	for i, s := range paid {
		names[i] = s.TenantName
	}
	assert.ElementsMatch(t, []string{"Brian Mwangi", "Caro Njeri"}, names)
}
