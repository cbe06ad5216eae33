/*
scheduler.go - Automated payment reminder scheduler

PURPOSE:
  Periodically evaluates every payment reminder against its tenant's
  summary and records the reminders that came due. Delivery (SMS, email)
  is outside this service: a fired reminder is logged, counted in
  metrics and stamped with last_sent.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on start
  - Reminder.Due decides firing (rental/reminder.go); last_sent keeps a
    reminder from firing twice in the same window

CONFIGURATION:
  - CheckInterval: How often to check (REMINDER_INTERVAL, default 1 hour)
  - Enabled: Whether scheduler is active (REMINDERS_ENABLED, default true)

USAGE:
  scheduler := NewReminderScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - reminders.go: POST /api/reminders/run (manual run)
  - rental/reminder.go: Due-window rules
*/
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/warp/rent-ledger/ledger"
	"github.com/warp/rent-ledger/logging"
	"github.com/warp/rent-ledger/rental"
)

// ReminderScheduler runs reminder evaluation on a ticker.
type ReminderScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewReminderScheduler creates a new scheduler.
func NewReminderScheduler(handler *Handler) *ReminderScheduler {
	return &ReminderScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
	}
}

// Start begins the scheduler. Calling Start on a running scheduler is a no-op.
func (rs *ReminderScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	log := rs.Handler.Logger.WithField("component", "scheduler")
	if !rs.Enabled {
		log.Info("Reminder scheduler disabled, not starting")
		return
	}
	if rs.ticker != nil {
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.stop = make(chan struct{})
	rs.wg.Add(1)

	go rs.run(rs.ticker, rs.stop)

	log.WithField("interval", rs.CheckInterval.String()).Info("Reminder scheduler started")
}

// Stop stops the scheduler and waits for an in-flight run to finish.
func (rs *ReminderScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.ticker = nil
		rs.Handler.Logger.WithField("component", "scheduler").Info("Reminder scheduler stopped")
	}
}

func (rs *ReminderScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer rs.wg.Done()

	// Run immediately on start
	rs.checkAndProcess()

	for {
		select {
		case <-ticker.C:
			rs.checkAndProcess()
		case <-stop:
			return
		}
	}
}

func (rs *ReminderScheduler) checkAndProcess() {
	h := rs.Handler
	run, err := h.RunReminders(context.Background(), h.Now())
	log := h.Logger.WithField("component", "scheduler")
	if err != nil {
		log.WithError(err).Error("Reminder run failed")
		return
	}
	if len(run.Fired) > 0 {
		log.WithFields(logging.Fields{
			"evaluated": run.Evaluated,
			"fired":     len(run.Fired),
		}).Info("Reminder run completed")
	}
}

// RunNow triggers an immediate check (for testing/admin).
func (rs *ReminderScheduler) RunNow() {
	rs.checkAndProcess()
}

// RunReminders evaluates every reminder at now and stamps the ones that
// fire. Reminders whose tenant is gone or fails validation are skipped
// with a warning; a store failure aborts the run.
func (h *Handler) RunReminders(ctx context.Context, now time.Time) (ReminderRunDTO, error) {
	run := ReminderRunDTO{RanAt: now.UTC().Format(time.RFC3339), Fired: []FiredReminderDTO{}}

	reminders, err := h.Cache.Reminders(ctx)
	if err != nil {
		return run, fmt.Errorf("failed to list reminders: %w", err)
	}
	tenants, err := h.Cache.Tenants(ctx)
	if err != nil {
		return run, fmt.Errorf("failed to list tenants: %w", err)
	}
	payments, err := h.Cache.Payments(ctx)
	if err != nil {
		return run, fmt.Errorf("failed to list payments: %w", err)
	}

	byID := make(map[string]rental.Tenant, len(tenants))
	for _, t := range tenants {
		byID[t.ID] = t
	}
	today := ledger.DateOf(now)

	defer func() {
		if len(run.Fired) > 0 {
			h.Cache.Invalidate(rental.EntityReminders)
		}
	}()

	for _, rem := range reminders {
		run.Evaluated++
		log := h.Logger.WithFields(logging.Fields{"reminder_id": rem.ID, "tenant_id": rem.TenantID})

		t, ok := byID[rem.TenantID]
		if !ok {
			log.Warn("Reminder references unknown tenant")
			continue
		}
		summary, err := rental.TenantSummary(t, rental.PaymentsFor(t.ID, payments), today)
		if err != nil {
			log.WithError(err).Warn("Skipping reminder for invalid tenant")
			continue
		}
		h.Metrics.observeReconciliation("reminder", 1)

		if !rem.Due(t, summary, now) {
			continue
		}
		if err := h.Store.MarkReminderSent(ctx, rem.ID, now); err != nil {
			return run, fmt.Errorf("failed to mark reminder %s sent: %w", rem.ID, err)
		}
		h.Metrics.remindersFired.Inc()

		fired := FiredReminderDTO{
			ReminderID: rem.ID,
			TenantID:   t.ID,
			TenantName: t.Name,
			Frequency:  string(rem.Frequency),
			Balance:    summary.Balance,
			NextDue:    rental.NextDueDate(t.PaymentDueDay, today).String(),
		}
		run.Fired = append(run.Fired, fired)

		log.WithFields(logging.Fields{
			"balance":  summary.Balance.StringFixed(2),
			"next_due": fired.NextDue,
		}).Info("Payment reminder due")
	}
	return run, nil
}
