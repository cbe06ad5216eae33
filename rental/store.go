package rental

import (
	"context"
	"time"
)

// =============================================================================
// STORE - Persistence of rental records
// =============================================================================

// Store persists properties, units, tenants, payments and reminders.
// Get* methods return an error matching ErrNotFound for unknown IDs.
type Store interface {
	ListProperties(ctx context.Context) ([]Property, error)
	GetProperty(ctx context.Context, id string) (Property, error)
	SaveProperty(ctx context.Context, p Property) error
	// DeleteProperty removes the property and its units.
	DeleteProperty(ctx context.Context, id string) error

	ListUnits(ctx context.Context) ([]Unit, error)
	GetUnit(ctx context.Context, id string) (Unit, error)
	SaveUnit(ctx context.Context, u Unit) error
	DeleteUnit(ctx context.Context, id string) error

	ListTenants(ctx context.Context) ([]Tenant, error)
	GetTenant(ctx context.Context, id string) (Tenant, error)

	// CreateTenant inserts the tenant and marks its unit occupied, atomically.
	// Fails with ErrConflict if the unit is already occupied.
	CreateTenant(ctx context.Context, t Tenant) error
	UpdateTenant(ctx context.Context, t Tenant) error

	// DeleteTenant removes the tenant and its payments and reminders, and
	// marks its unit available, atomically.
	DeleteTenant(ctx context.Context, id string) error

	ListPayments(ctx context.Context) ([]Payment, error)
	ListTenantPayments(ctx context.Context, tenantID string) ([]Payment, error)
	GetPayment(ctx context.Context, id string) (Payment, error)
	SavePayment(ctx context.Context, p Payment) error
	DeletePayment(ctx context.Context, id string) error

	ListReminders(ctx context.Context) ([]Reminder, error)
	SaveReminder(ctx context.Context, r Reminder) error
	MarkReminderSent(ctx context.Context, id string, at time.Time) error
}
