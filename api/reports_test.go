package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rent-ledger/ledger"
)

func TestTenantLedger_PartialThenUnpaid(t *testing.T) {
	// GIVEN: rent 10000 from January, 10000 paid Jan 15 and 5000 paid Feb 10
	h, router := setupTestHandler(t)
	seedTenant(t, h, "t1", "Amina", 10000, ledger.NewDate(2024, time.January, 1))
	seedPayment(t, h, "p1", "t1", 10000, ledger.NewDate(2024, time.January, 15))
	seedPayment(t, h, "p2", "t1", 5000, ledger.NewDate(2024, time.February, 10))

	// WHEN: the ledger is evaluated in March
	rec := doJSON(t, router, http.MethodGet, "/api/tenants/t1/ledger?as_of=2024-03-20", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody[LedgerDTO](t, rec)

	// THEN
	require.Len(t, got.Rows, 3)
	want := []struct {
		month, label, paid, balance, status string
	}{
		{"2024-01", "January 2024", "10000", "0", "Fully Paid"},
		{"2024-02", "February 2024", "5000", "5000", "Partial"},
		{"2024-03", "March 2024", "0", "15000", "Unpaid"},
	}
	for i, w := range want {
		row := got.Rows[i]
		assert.Equal(t, w.month, row.Month)
		assert.Equal(t, w.label, row.Label)
		assert.Equal(t, w.paid, row.TotalPaid.String(), w.month)
		assert.Equal(t, w.balance, row.RunningBalance.String(), w.month)
		assert.Equal(t, w.status, row.Status, w.month)
	}
	require.Len(t, got.Rows[0].Payments, 1)
	assert.Equal(t, "p1", got.Rows[0].Payments[0].ID)
	assert.Equal(t, "15000", got.Balance.String())
	assert.Equal(t, "30000", got.TotalExpected.String())
	assert.Equal(t, "2024-03-20", got.AsOf)
}

func TestTenantLedger_OverpaymentCarriesCredit(t *testing.T) {
	h, router := setupTestHandler(t)
	seedTenant(t, h, "t1", "Brian", 1000, ledger.NewDate(2024, time.January, 1))
	seedPayment(t, h, "p1", "t1", 3000, ledger.NewDate(2024, time.January, 1))

	rec := doJSON(t, router, http.MethodGet, "/api/tenants/t1/ledger?as_of=2024-02-28", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[LedgerDTO](t, rec)

	require.Len(t, got.Rows, 2)
	assert.Equal(t, "-2000", got.Rows[0].RunningBalance.String())
	assert.Equal(t, "Fully Paid", got.Rows[0].Status)
	assert.Equal(t, "-1000", got.Rows[1].RunningBalance.String())
	// No money arrived in February, so the month reads Unpaid despite the credit.
	assert.Equal(t, "Unpaid", got.Rows[1].Status)
}

func TestTenantLedger_DefaultsToToday(t *testing.T) {
	h, router := setupTestHandler(t)
	seedTenant(t, h, "t1", "Amina", 10000, ledger.NewDate(2024, time.February, 1))

	rec := doJSON(t, router, http.MethodGet, "/api/tenants/t1/ledger", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[LedgerDTO](t, rec)
	assert.Equal(t, testNow.Format(time.DateOnly), got.AsOf)
	assert.Len(t, got.Rows, 2)
}

func TestTenantLedger_FutureLeaseIsEmpty(t *testing.T) {
	h, router := setupTestHandler(t)
	seedTenant(t, h, "t1", "Amina", 10000, ledger.NewDate(2024, time.June, 1))

	rec := doJSON(t, router, http.MethodGet, "/api/tenants/t1/ledger?as_of=2024-03-20", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[LedgerDTO](t, rec)
	assert.Empty(t, got.Rows)
	assert.Equal(t, "0", got.Balance.String())
}

func TestTenantLedger_Errors(t *testing.T) {
	h, router := setupTestHandler(t)
	seedTenant(t, h, "t1", "Amina", 10000, ledger.NewDate(2024, time.January, 1))

	rec := doJSON(t, router, http.MethodGet, "/api/tenants/ghost/ledger", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/tenants/t1/ledger?as_of=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, rec).Details, "as_of")
}

func TestTenantSummary(t *testing.T) {
	h, router := setupTestHandler(t)
	seedTenant(t, h, "t1", "Amina", 10000, ledger.NewDate(2024, time.January, 1))
	seedPayment(t, h, "p1", "t1", 10000, ledger.NewDate(2024, time.January, 15))
	seedPayment(t, h, "p2", "t1", 5000, ledger.NewDate(2024, time.February, 10))

	rec := doJSON(t, router, http.MethodGet, "/api/tenants/t1/summary?as_of=2024-03-20", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody[SummaryDTO](t, rec)

	// Two whole months have elapsed; March is not yet charged in this view.
	assert.Equal(t, 2, got.MonthsActive)
	assert.Equal(t, "20000", got.TotalRentDue.String())
	assert.Equal(t, "15000", got.TotalPaid.String())
	assert.Equal(t, "5000", got.Balance.String())
	assert.Equal(t, "Partial", got.Status)
	require.NotNil(t, got.LastPaymentDate)
	assert.Equal(t, "2024-02-10", *got.LastPaymentDate)
}

func TestPaymentSummaries_SearchAndFilter(t *testing.T) {
	h, router := setupTestHandler(t)
	jan := ledger.NewDate(2024, time.January, 1)
	seedTenant(t, h, "t1", "Amina Odhiambo", 10000, jan)
	seedTenant(t, h, "t2", "Brian Mwangi", 10000, jan)
	seedTenant(t, h, "t3", "Caro Njeri", 10000, jan)
	seedPayment(t, h, "p1", "t1", 5000, ledger.NewDate(2024, time.January, 5))
	seedPayment(t, h, "p3", "t3", 20000, ledger.NewDate(2024, time.January, 5))

	rec := doJSON(t, router, http.MethodGet, "/api/payment-summaries?as_of=2024-03-20", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	all := decodeBody[[]PaymentSummaryDTO](t, rec)
	require.Len(t, all, 3)

	statuses := map[string]string{}
	for _, s := range all {
		statuses[s.TenantID] = s.Status
	}
	assert.Equal(t, map[string]string{"t1": "Partial", "t2": "Unpaid", "t3": "Paid"}, statuses)

	rec = doJSON(t, router, http.MethodGet, "/api/payment-summaries?as_of=2024-03-20&status=unpaid", nil)
	unpaid := decodeBody[[]PaymentSummaryDTO](t, rec)
	require.Len(t, unpaid, 1)
	assert.Equal(t, "Brian Mwangi", unpaid[0].TenantName)

	rec = doJSON(t, router, http.MethodGet, "/api/payment-summaries?as_of=2024-03-20&q=no-unit-t3", nil)
	byUnit := decodeBody[[]PaymentSummaryDTO](t, rec)
	require.Len(t, byUnit, 1)
	assert.Equal(t, "t3", byUnit[0].TenantID)
	assert.Equal(t, "No-unit-t3", byUnit[0].UnitNumber)

	rec = doJSON(t, router, http.MethodGet, "/api/payment-summaries?status=all&q=AMINA", nil)
	assert.Len(t, decodeBody[[]PaymentSummaryDTO](t, rec), 1)

	rec = doJSON(t, router, http.MethodGet, "/api/payment-summaries?status=late", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboard(t *testing.T) {
	h, router := setupTestHandler(t)
	seedTenant(t, h, "t1", "Amina", 10000, ledger.NewDate(2024, time.January, 1))
	seedPayment(t, h, "p1", "t1", 10000, ledger.NewDate(2024, time.January, 15))
	seedPayment(t, h, "p2", "t1", 5000, ledger.NewDate(2024, time.February, 10))

	rec := doJSON(t, router, http.MethodPost, "/api/payments", map[string]any{
		"tenant_id": "t1", "amount": "10000", "due_date": "2024-03-05", "status": "overdue",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[DashboardDTO](t, rec)

	assert.Equal(t, 3, got.TotalPayments)
	assert.Equal(t, "25000", got.TotalAmount.String())
	assert.Equal(t, "15000", got.PaidAmount.String())
	assert.Equal(t, 2, got.ByStatus["paid"].Count)
	assert.Equal(t, "10000", got.ByStatus["overdue"].Amount.String())
	require.Len(t, got.ByMonth, 3)
	assert.Equal(t, "2024-01", got.ByMonth[0].Month)
	assert.Equal(t, "March 2024", got.ByMonth[2].Label)
	assert.Equal(t, "0", got.ByMonth[2].Paid.String())
}
