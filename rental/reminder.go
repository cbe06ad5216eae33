package rental

import (
	"time"

	"github.com/warp/rent-ledger/ledger"
)

// NextDueDate returns the first rent due date on or after today. Due days
// past the end of a short month fall on its last day.
func NextDueDate(dueDay int, today ledger.Date) ledger.Date {
	if dueDay < 1 {
		dueDay = 1
	}
	m := ledger.MonthOf(today)
	due := dueDateIn(m, dueDay)
	if due.Before(today) {
		due = dueDateIn(m.Next(), dueDay)
	}
	return due
}

func dueDateIn(m ledger.Month, dueDay int) ledger.Date {
	if d := m.Days(); dueDay > d {
		dueDay = d
	}
	return ledger.NewDate(m.Year, m.Month, dueDay)
}

// Due decides whether the reminder should fire at now.
//
//	weekly:          every 7 days while the tenant's summary balance is positive
//	monthly, custom: once per due window, which opens DaysBeforeDue days
//	                 before the next due date
//
// Inactive reminders and tenants outside their lease never fire.
func (r Reminder) Due(t Tenant, s ledger.Summary, now time.Time) bool {
	if !r.IsActive {
		return false
	}
	today := ledger.DateOf(now)
	if today.Before(t.LeaseStart) {
		return false
	}
	if !t.LeaseEnd.IsZero() && today.After(t.LeaseEnd) {
		return false
	}

	switch r.Frequency {
	case ReminderWeekly:
		if !s.Balance.IsPositive() {
			return false
		}
		return r.LastSent == nil || now.Sub(*r.LastSent) >= 7*24*time.Hour
	default:
		windowStart := NextDueDate(t.PaymentDueDay, today).AddDays(-r.DaysBeforeDue)
		if today.Before(windowStart) {
			return false
		}
		return r.LastSent == nil || ledger.DateOf(*r.LastSent).Before(windowStart)
	}
}
