package api

import (
	"net/http"

	"github.com/warp/rent-ledger/rental"
)

// =============================================================================
// REMINDER HANDLERS
// =============================================================================

func (h *Handler) ListReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.Cache.Reminders(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list reminders", err)
		return
	}
	if tenantID := r.URL.Query().Get("tenant_id"); tenantID != "" {
		filtered := reminders[:0]
		for _, rem := range reminders {
			if rem.TenantID == tenantID {
				filtered = append(filtered, rem)
			}
		}
		reminders = filtered
	}

	dtos := make([]ReminderDTO, len(reminders))
	for i, rem := range reminders {
		dtos[i] = toReminderDTO(rem)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveReminder creates or updates reminder settings. is_active defaults
// to true.
func (h *Handler) SaveReminder(w http.ResponseWriter, r *http.Request) {
	var req ReminderRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	if _, err := h.Store.GetTenant(r.Context(), req.TenantID); err != nil {
		h.fail(w, r, "Unknown tenant", err)
		return
	}

	rem := rental.Reminder{
		ID:            newID(req.ID),
		TenantID:      req.TenantID,
		Frequency:     rental.ReminderFrequency(req.Frequency),
		DaysBeforeDue: req.DaysBeforeDue,
		IsActive:      req.IsActive == nil || *req.IsActive,
	}
	if err := h.Store.SaveReminder(r.Context(), rem); err != nil {
		h.fail(w, r, "Failed to save reminder", err)
		return
	}
	h.Cache.Invalidate(rental.EntityReminders)

	writeJSON(w, http.StatusCreated, toReminderDTO(rem))
}

// RunRemindersNow evaluates every reminder immediately.
func (h *Handler) RunRemindersNow(w http.ResponseWriter, r *http.Request) {
	run, err := h.RunReminders(r.Context(), h.Now())
	if err != nil {
		h.fail(w, r, "Failed to run reminders", err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
