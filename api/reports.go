package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/warp/rent-ledger/ledger"
	"github.com/warp/rent-ledger/rental"
)

// =============================================================================
// LEDGER & SUMMARY ENDPOINTS
// =============================================================================
//
// All reconciliation endpoints accept ?as_of=YYYY-MM-DD and default to
// today. The ledger and the summary are separate views and can disagree:
// the ledger charges the current month, the summary only whole elapsed
// months.

// asOf reads the evaluation date from the query string.
func (h *Handler) asOf(r *http.Request) (ledger.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("as_of"))
	if raw == "" {
		return h.today(), nil
	}
	d, err := ledger.ParseDate(raw)
	if err != nil {
		return ledger.Date{}, &ledger.InvalidInputError{Field: "as_of", Value: raw, Reason: err.Error()}
	}
	return d, nil
}

// GetTenantLedger returns the month-by-month breakdown for one tenant.
func (h *Handler) GetTenantLedger(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		h.fail(w, r, "Invalid as_of", err)
		return
	}

	t, err := h.Store.GetTenant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get tenant", err)
		return
	}
	payments, err := h.Store.ListTenantPayments(r.Context(), t.ID)
	if err != nil {
		h.fail(w, r, "Failed to load payments", err)
		return
	}

	l, err := rental.TenantLedger(t, payments, asOf)
	if err != nil {
		h.fail(w, r, "Failed to reconcile tenant", err)
		return
	}
	h.Metrics.observeReconciliation("ledger", 1)

	if n := len(l.OutOfRange); n > 0 {
		h.Logger.WithField("tenant_id", t.ID).WithField("records", n).
			Debug("Payments outside the lease months left unreconciled")
	}

	writeJSON(w, http.StatusOK, toLedgerDTO(l))
}

// GetTenantSummary returns the tenant-level aggregate.
func (h *Handler) GetTenantSummary(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		h.fail(w, r, "Invalid as_of", err)
		return
	}

	t, err := h.Store.GetTenant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get tenant", err)
		return
	}
	payments, err := h.Store.ListTenantPayments(r.Context(), t.ID)
	if err != nil {
		h.fail(w, r, "Failed to load payments", err)
		return
	}

	s, err := rental.TenantSummary(t, payments, asOf)
	if err != nil {
		h.fail(w, r, "Failed to summarize tenant", err)
		return
	}
	h.Metrics.observeReconciliation("summary", 1)

	writeJSON(w, http.StatusOK, toSummaryDTO(s))
}

// ListPaymentSummaries returns one summary per tenant.
//
// Query params:
//
//	as_of    evaluation date (default today)
//	q        case-insensitive match on tenant name or unit number
//	status   Paid | Partial | Unpaid
func (h *Handler) ListPaymentSummaries(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		h.fail(w, r, "Invalid as_of", err)
		return
	}

	filter := rental.SummaryFilter{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	if raw := r.URL.Query().Get("status"); raw != "" && !strings.EqualFold(raw, "all") {
		if filter.Status, err = ledger.ParseSummaryStatus(raw); err != nil {
			h.fail(w, r, "Invalid status filter", err)
			return
		}
	}

	ctx := r.Context()
	tenants, err := h.Cache.Tenants(ctx)
	if err != nil {
		h.fail(w, r, "Failed to list tenants", err)
		return
	}
	units, err := h.Cache.Units(ctx)
	if err != nil {
		h.fail(w, r, "Failed to list units", err)
		return
	}
	payments, err := h.Cache.Payments(ctx)
	if err != nil {
		h.fail(w, r, "Failed to list payments", err)
		return
	}

	summaries, err := rental.PaymentSummaries(tenants, units, payments, asOf, filter)
	if err != nil {
		h.fail(w, r, "Failed to summarize payments", err)
		return
	}
	h.Metrics.observeReconciliation("summary", len(tenants))

	dtos := make([]PaymentSummaryDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = PaymentSummaryDTO{
			TenantName: s.Tenant.Name,
			UnitNumber: s.UnitNumber,
			SummaryDTO: toSummaryDTO(s.Summary),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetDashboard returns payment totals by recorded status and due month.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Cache.Payments(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list payments", err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardDTO(rental.BuildDashboard(payments)))
}
