package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rent-ledger/ledger"
	"github.com/warp/rent-ledger/rental"
)

func seedReminders(t *testing.T, h *Handler) {
	t.Helper()
	jan := ledger.NewDate(2024, time.January, 1)
	seedTenant(t, h, "t-owing", "Owing", 10000, jan)
	seedTenant(t, h, "t-current", "Current", 10000, jan)
	seedPayment(t, h, "p1", "t-current", 20000, ledger.NewDate(2024, time.January, 5))

	ctx := context.Background()
	require.NoError(t, h.Store.SaveReminder(ctx, rental.Reminder{
		ID: "r-weekly-owing", TenantID: "t-owing", Frequency: rental.ReminderWeekly, IsActive: true,
	}))
	require.NoError(t, h.Store.SaveReminder(ctx, rental.Reminder{
		ID: "r-weekly-current", TenantID: "t-current", Frequency: rental.ReminderWeekly, IsActive: true,
	}))
	// Due day 5, three days ahead: the April window opens April 2nd.
	require.NoError(t, h.Store.SaveReminder(ctx, rental.Reminder{
		ID: "r-monthly", TenantID: "t-current", Frequency: rental.ReminderMonthly, DaysBeforeDue: 3, IsActive: true,
	}))
}

func TestRunReminders(t *testing.T) {
	// GIVEN: one tenant in arrears, one settled
	h, router := setupTestHandler(t)
	seedReminders(t, h)

	// WHEN: reminders run on March 20th
	rec := doJSON(t, router, http.MethodPost, "/api/reminders/run", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	run := decodeBody[ReminderRunDTO](t, rec)

	// THEN: only the arrears reminder fires
	assert.Equal(t, 3, run.Evaluated)
	require.Len(t, run.Fired, 1)
	assert.Equal(t, "r-weekly-owing", run.Fired[0].ReminderID)
	assert.Equal(t, "20000", run.Fired[0].Balance.String())
	assert.Equal(t, "2024-04-05", run.Fired[0].NextDue)

	rec = doJSON(t, router, http.MethodGet, "/api/reminders?tenant_id=t-owing", nil)
	reminders := decodeBody[[]ReminderDTO](t, rec)
	require.Len(t, reminders, 1)
	require.NotNil(t, reminders[0].LastSent)

	// A second run in the same week fires nothing
	rec = doJSON(t, router, http.MethodPost, "/api/reminders/run", nil)
	assert.Empty(t, decodeBody[ReminderRunDTO](t, rec).Fired)

	// By April 2nd the monthly window is open and the settled tenant owes March
	h.Now = func() time.Time { return time.Date(2024, time.April, 2, 8, 0, 0, 0, time.UTC) }
	rec = doJSON(t, router, http.MethodPost, "/api/reminders/run", nil)
	fired := decodeBody[ReminderRunDTO](t, rec).Fired
	ids := make([]string, len(fired))
	for i, f := range fired {
		ids[i] = f.ReminderID
	}
	assert.ElementsMatch(t, []string{"r-weekly-owing", "r-weekly-current", "r-monthly"}, ids)
}

func TestSaveReminder(t *testing.T) {
	h, router := setupTestHandler(t)
	seedTenant(t, h, "t1", "Amina", 10000, ledger.NewDate(2024, time.January, 1))

	rec := doJSON(t, router, http.MethodPost, "/api/reminders", map[string]any{
		"tenant_id": "t1", "frequency": "monthly", "days_before_due": 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decodeBody[ReminderDTO](t, rec)
	assert.True(t, got.IsActive)
	assert.Nil(t, got.LastSent)

	rec = doJSON(t, router, http.MethodPost, "/api/reminders", map[string]any{
		"tenant_id": "t1", "frequency": "daily",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/reminders", map[string]any{
		"tenant_id": "ghost", "frequency": "weekly",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReminderScheduler_StartRunsImmediately(t *testing.T) {
	h, _ := setupTestHandler(t)
	seedReminders(t, h)

	scheduler := NewReminderScheduler(h)
	scheduler.CheckInterval = time.Hour
	scheduler.Start()
	scheduler.Start() // no-op while running
	scheduler.Stop()
	scheduler.Stop() // no-op once stopped

	reminders, err := h.Store.ListReminders(context.Background())
	require.NoError(t, err)
	sent := map[string]bool{}
	for _, r := range reminders {
		sent[r.ID] = r.LastSent != nil
	}
	assert.Equal(t, map[string]bool{"r-weekly-owing": true, "r-weekly-current": false, "r-monthly": false}, sent)
}

func TestReminderScheduler_Disabled(t *testing.T) {
	h, _ := setupTestHandler(t)
	seedReminders(t, h)

	scheduler := NewReminderScheduler(h)
	scheduler.Enabled = false
	scheduler.Start()
	scheduler.Stop()

	reminders, err := h.Store.ListReminders(context.Background())
	require.NoError(t, err)
	for _, r := range reminders {
		assert.Nil(t, r.LastSent, r.ID)
	}

	scheduler.RunNow()
	reminders, err = h.Store.ListReminders(context.Background())
	require.NoError(t, err)
	fired := 0
	for _, r := range reminders {
		if r.LastSent != nil {
			fired++
		}
	}
	assert.Equal(t, 1, fired)
}
