package rental_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rent-ledger/ledger"
	"github.com/warp/rent-ledger/rental"
)

func paidPayment(id, tenantID string, amount int64, d ledger.Date) rental.Payment {
	return rental.Payment{
		ID:          id,
		TenantID:    tenantID,
		Amount:      decimal.NewFromInt(amount),
		DueDate:     d,
		PaymentDate: &d,
		Status:      rental.PaymentPaid,
	}
}

func summaryFixture() ([]rental.Tenant, []rental.Unit, []rental.Payment) {
	tenants := []rental.Tenant{
		{ID: "t1", UnitID: "u1", Name: "Amina Odhiambo", LeaseStart: ledger.NewDate(2024, time.January, 1), RentAmount: decimal.NewFromInt(1000)},
		{ID: "t2", UnitID: "u2", Name: "Brian Mwangi", LeaseStart: ledger.NewDate(2024, time.January, 1), RentAmount: decimal.NewFromInt(1000)},
		{ID: "t3", UnitID: "u3", Name: "Caro Njeri", LeaseStart: ledger.NewDate(2024, time.March, 1), RentAmount: decimal.NewFromInt(1000)},
	}
	units := []rental.Unit{
		{ID: "u1", UnitNumber: "A1"},
		{ID: "u2", UnitNumber: "B7"},
		{ID: "u3", UnitNumber: "C2"},
	}
	payments := []rental.Payment{
		paidPayment("p1", "t1", 1000, ledger.NewDate(2024, time.January, 5)),
	}
	return tenants, units, payments
}

func TestPaymentSummaries(t *testing.T) {
	tenants, units, payments := summaryFixture()
	asOf := ledger.NewDate(2024, time.March, 10)

	got, err := rental.PaymentSummaries(tenants, units, payments, asOf, rental.SummaryFilter{})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "A1", got[0].UnitNumber)
	assert.Equal(t, 2, got[0].Summary.MonthsActive)
	assert.Equal(t, "1000", got[0].Summary.Balance.String())
	assert.Equal(t, ledger.SummaryPartial, got[0].Summary.Status)

	assert.Equal(t, ledger.SummaryUnpaid, got[1].Summary.Status)
	assert.Nil(t, got[1].Summary.LastPaymentDate)

	// Lease started this month: nothing is due yet.
	assert.Equal(t, 0, got[2].Summary.MonthsActive)
	assert.Equal(t, ledger.SummaryPaid, got[2].Summary.Status)
}

func TestPaymentSummaries_Filter(t *testing.T) {
	tenants, units, payments := summaryFixture()
	asOf := ledger.NewDate(2024, time.March, 10)

	byName, err := rental.PaymentSummaries(tenants, units, payments, asOf, rental.SummaryFilter{Query: "brian"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "t2", byName[0].Tenant.ID)

	byUnit, err := rental.PaymentSummaries(tenants, units, payments, asOf, rental.SummaryFilter{Query: "c2"})
	require.NoError(t, err)
	require.Len(t, byUnit, 1)
	assert.Equal(t, "t3", byUnit[0].Tenant.ID)

	byStatus, err := rental.PaymentSummaries(tenants, units, payments, asOf, rental.SummaryFilter{Status: ledger.SummaryPartial})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "t1", byStatus[0].Tenant.ID)

	none, err := rental.PaymentSummaries(tenants, units, payments, asOf, rental.SummaryFilter{Query: "a1", Status: ledger.SummaryPaid})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPaymentSummaries_InvalidTenantFailsList(t *testing.T) {
	tenants, units, payments := summaryFixture()
	tenants[1].LeaseStart = ledger.Date{}

	_, err := rental.PaymentSummaries(tenants, units, payments, ledger.NewDate(2024, time.March, 10), rental.SummaryFilter{})
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
}

func TestTenantLedger_UsesOnlyGivenPayments(t *testing.T) {
	tenants, _, payments := summaryFixture()

	l, err := rental.TenantLedger(tenants[0], rental.PaymentsFor("t1", payments), ledger.NewDate(2024, time.March, 10))
	require.NoError(t, err)
	require.Len(t, l.Rows, 3)
	assert.Equal(t, ledger.MonthFullyPaid, l.Rows[0].Status)
	assert.Equal(t, ledger.MonthUnpaid, l.Rows[2].Status)
	assert.Equal(t, "2000", l.Balance.String())
}

func TestExpectedRent(t *testing.T) {
	units := []rental.Unit{
		{ID: "u1", PropertyID: "p1", RentAmount: decimal.RequireFromString("25000.50")},
		{ID: "u2", PropertyID: "p1", RentAmount: decimal.RequireFromString("18000")},
		{ID: "u3", PropertyID: "p2", RentAmount: decimal.RequireFromString("99999")},
	}
	assert.Equal(t, "43000.5", rental.ExpectedRent("p1", units).String())
	assert.True(t, rental.ExpectedRent("none", units).IsZero())
}
