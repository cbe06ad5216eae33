/*
Package sqlite provides a SQLite-backed implementation of rental.Store.

PURPOSE:
  Persists properties, units, tenants, payments and payment reminders.
  The reconciliation never reads the database directly: handlers load
  records through this store (usually via rental.Cache) and hand the
  typed values to package ledger.

KEY TABLES:
  properties:         buildings under management
  units:              rentable units, status available/occupied/maintenance
  tenants:            leases (lease_start, rent_amount, payment_due_day)
  payments:           money received or scheduled (payment_date NULL = pending)
  payment_reminders:  reminder settings per tenant

MONEY AND DATES:
  Amounts are stored as TEXT decimal strings so nothing passes through a
  float. Calendar dates are TEXT "YYYY-MM-DD"; audit timestamps are RFC 3339.

REFERENTIAL RULES:
  - Deleting a property deletes its units (ON DELETE CASCADE).
  - A unit with a tenant cannot be deleted (foreign key → rental.ErrConflict).
  - Deleting a tenant deletes its payments and reminders and frees the unit.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, and a single open connection so
  ":memory:" databases are shared by every query.

USAGE:
  store, err := sqlite.New("./data/rent.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - rental/store.go: Interface definition
  - rental/cache.go: Query cache in front of this store
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/rent-ledger/ledger"
	"github.com/warp/rent-ledger/rental"
)

// Store implements rental.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ rental.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS properties (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		zip_code TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS units (
		id TEXT PRIMARY KEY,
		property_id TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		unit_number TEXT NOT NULL,
		floor_plan TEXT,
		square_feet INTEGER,
		rent_amount TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'available',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(property_id, unit_number)
	);

	CREATE INDEX IF NOT EXISTS idx_units_property
		ON units(property_id);

	CREATE TABLE IF NOT EXISTS tenants (
		id TEXT PRIMARY KEY,
		unit_id TEXT NOT NULL REFERENCES units(id),
		lease_start TEXT NOT NULL,
		lease_end TEXT,
		rent_amount TEXT NOT NULL,
		security_deposit TEXT,
		payment_due_day INTEGER NOT NULL DEFAULT 1,
		tenant_name TEXT,
		tenant_email TEXT,
		tenant_phone TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tenants_unit
		ON tenants(unit_id);

	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		amount TEXT NOT NULL,
		due_date TEXT NOT NULL,
		payment_date TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		payment_method TEXT,
		mpesa_code TEXT,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Ledger reads load one tenant's payments (hot path)
	CREATE INDEX IF NOT EXISTS idx_payments_tenant_date
		ON payments(tenant_id, payment_date);
	CREATE INDEX IF NOT EXISTS idx_payments_status
		ON payments(status);

	CREATE TABLE IF NOT EXISTS payment_reminders (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		frequency TEXT NOT NULL,
		days_before_due INTEGER NOT NULL DEFAULT 0,
		last_sent TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reminders_tenant
		ON payment_reminders(tenant_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Reset deletes all data. Used by the demo loader.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"payment_reminders", "payments", "tenants", "units", "properties"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// PROPERTIES
// =============================================================================

const propertyColumns = `id, name, address, city, state, zip_code, created_by, created_at, updated_at`

func (s *Store) ListProperties(ctx context.Context) ([]rental.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+propertyColumns+" FROM properties ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	var properties []rental.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

func (s *Store) GetProperty(ctx context.Context, id string) (rental.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+propertyColumns+" FROM properties WHERE id = ?", id)
	p, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return rental.Property{}, rental.NotFound(rental.EntityProperties, id)
	}
	return p, err
}

// SaveProperty inserts or updates a property.
func (s *Store) SaveProperty(ctx context.Context, p rental.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO properties (id, name, address, city, state, zip_code, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			city = excluded.city,
			state = excluded.state,
			zip_code = excluded.zip_code,
			updated_at = excluded.updated_at
	`

	now := timestamp(time.Now())
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Address, p.City, p.State, p.ZipCode, p.CreatedBy, now, now,
	)
	return wrapWriteError("save property", err)
}

func (s *Store) DeleteProperty(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteByID(ctx, "properties", rental.EntityProperties, id)
}

func scanProperty(row scanner) (rental.Property, error) {
	var p rental.Property
	var createdAt, updatedAt string
	err := row.Scan(&p.ID, &p.Name, &p.Address, &p.City, &p.State, &p.ZipCode, &p.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return p, err
	}
	p.CreatedAt = parseTimestamp(createdAt)
	p.UpdatedAt = parseTimestamp(updatedAt)
	return p, nil
}

// =============================================================================
// UNITS
// =============================================================================

const unitColumns = `id, property_id, unit_number, floor_plan, square_feet, rent_amount, status, created_at, updated_at`

func (s *Store) ListUnits(ctx context.Context) ([]rental.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+unitColumns+" FROM units ORDER BY property_id, unit_number")
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	var units []rental.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (s *Store) GetUnit(ctx context.Context, id string) (rental.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, err := scanUnit(s.db.QueryRowContext(ctx, "SELECT "+unitColumns+" FROM units WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return rental.Unit{}, rental.NotFound(rental.EntityUnits, id)
	}
	return u, err
}

func (s *Store) SaveUnit(ctx context.Context, u rental.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Status == "" {
		u.Status = rental.UnitAvailable
	}

	query := `
		INSERT INTO units (id, property_id, unit_number, floor_plan, square_feet, rent_amount, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			unit_number = excluded.unit_number,
			floor_plan = excluded.floor_plan,
			square_feet = excluded.square_feet,
			rent_amount = excluded.rent_amount,
			status = excluded.status,
			updated_at = excluded.updated_at
	`

	var squareFeet sql.NullInt64
	if u.SquareFeet != nil {
		squareFeet = sql.NullInt64{Int64: int64(*u.SquareFeet), Valid: true}
	}

	now := timestamp(time.Now())
	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.PropertyID, u.UnitNumber, nullString(u.FloorPlan), squareFeet,
		u.RentAmount.String(), string(u.Status), now, now,
	)
	return wrapWriteError("save unit", err)
}

func (s *Store) DeleteUnit(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteByID(ctx, "units", rental.EntityUnits, id)
}

func scanUnit(row scanner) (rental.Unit, error) {
	var (
		u          rental.Unit
		floorPlan  sql.NullString
		squareFeet sql.NullInt64
		rent       string
		status     string
		createdAt  string
		updatedAt  string
	)
	err := row.Scan(&u.ID, &u.PropertyID, &u.UnitNumber, &floorPlan, &squareFeet, &rent, &status, &createdAt, &updatedAt)
	if err != nil {
		return u, err
	}
	u.FloorPlan = floorPlan.String
	if squareFeet.Valid {
		n := int(squareFeet.Int64)
		u.SquareFeet = &n
	}
	if u.RentAmount, err = decimal.NewFromString(rent); err != nil {
		return u, fmt.Errorf("unit %s: bad rent_amount %q: %w", u.ID, rent, err)
	}
	u.Status = rental.UnitStatus(status)
	u.CreatedAt = parseTimestamp(createdAt)
	u.UpdatedAt = parseTimestamp(updatedAt)
	return u, nil
}

// =============================================================================
// TENANTS
// =============================================================================

const tenantColumns = `id, unit_id, lease_start, lease_end, rent_amount, security_deposit, payment_due_day,
	tenant_name, tenant_email, tenant_phone, created_at, updated_at`

func (s *Store) ListTenants(ctx context.Context) ([]rental.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+tenantColumns+" FROM tenants ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants: %w", err)
	}
	defer rows.Close()

	var tenants []rental.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (s *Store) GetTenant(ctx context.Context, id string) (rental.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := scanTenant(s.db.QueryRowContext(ctx, "SELECT "+tenantColumns+" FROM tenants WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return rental.Tenant{}, rental.NotFound(rental.EntityTenants, id)
	}
	return t, err
}

// CreateTenant inserts the tenant and marks its unit occupied in one
// transaction.
func (s *Store) CreateTenant(ctx context.Context, t rental.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	var status string
	err = sqlTx.QueryRowContext(ctx, "SELECT status FROM units WHERE id = ?", t.UnitID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return rental.NotFound(rental.EntityUnits, t.UnitID)
	}
	if err != nil {
		return fmt.Errorf("failed to read unit: %w", err)
	}
	if rental.UnitStatus(status) == rental.UnitOccupied {
		return fmt.Errorf("unit %s is already occupied: %w", t.UnitID, rental.ErrConflict)
	}

	query := `
		INSERT INTO tenants (` + tenantColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := timestamp(time.Now())
	_, err = sqlTx.ExecContext(ctx, query,
		t.ID, t.UnitID, t.LeaseStart.String(), nullDate(t.LeaseEnd), t.RentAmount.String(),
		nullDecimal(t.SecurityDeposit), t.PaymentDueDay,
		nullString(t.Name), nullString(t.Email), nullString(t.Phone), now, now,
	)
	if err != nil {
		return wrapWriteError("create tenant", err)
	}

	if err := setUnitStatus(ctx, sqlTx, t.UnitID, rental.UnitOccupied); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// UpdateTenant rewrites the lease fields. Moving a tenant between units is
// not supported here; the unit_id is left untouched.
func (s *Store) UpdateTenant(ctx context.Context, t rental.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE tenants SET
			lease_start = ?, lease_end = ?, rent_amount = ?, security_deposit = ?,
			payment_due_day = ?, tenant_name = ?, tenant_email = ?, tenant_phone = ?,
			updated_at = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		t.LeaseStart.String(), nullDate(t.LeaseEnd), t.RentAmount.String(), nullDecimal(t.SecurityDeposit),
		t.PaymentDueDay, nullString(t.Name), nullString(t.Email), nullString(t.Phone),
		timestamp(time.Now()), t.ID,
	)
	if err != nil {
		return wrapWriteError("update tenant", err)
	}
	return requireAffected(res, rental.EntityTenants, t.ID)
}

// DeleteTenant removes the tenant (payments and reminders cascade) and
// frees the unit.
func (s *Store) DeleteTenant(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	var unitID string
	err = sqlTx.QueryRowContext(ctx, "SELECT unit_id FROM tenants WHERE id = ?", id).Scan(&unitID)
	if errors.Is(err, sql.ErrNoRows) {
		return rental.NotFound(rental.EntityTenants, id)
	}
	if err != nil {
		return fmt.Errorf("failed to read tenant: %w", err)
	}

	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM tenants WHERE id = ?", id); err != nil {
		return wrapWriteError("delete tenant", err)
	}
	if err := setUnitStatus(ctx, sqlTx, unitID, rental.UnitAvailable); err != nil {
		return err
	}
	return sqlTx.Commit()
}

func setUnitStatus(ctx context.Context, tx *sql.Tx, unitID string, status rental.UnitStatus) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE units SET status = ?, updated_at = ? WHERE id = ?",
		string(status), timestamp(time.Now()), unitID,
	)
	if err != nil {
		return fmt.Errorf("failed to update unit status: %w", err)
	}
	return nil
}

func scanTenant(row scanner) (rental.Tenant, error) {
	var (
		t          rental.Tenant
		leaseStart string
		leaseEnd   sql.NullString
		rent       string
		deposit    sql.NullString
		name       sql.NullString
		email      sql.NullString
		phone      sql.NullString
		createdAt  string
		updatedAt  string
	)
	err := row.Scan(&t.ID, &t.UnitID, &leaseStart, &leaseEnd, &rent, &deposit, &t.PaymentDueDay,
		&name, &email, &phone, &createdAt, &updatedAt)
	if err != nil {
		return t, err
	}

	if t.LeaseStart, err = ledger.ParseDate(leaseStart); err != nil {
		return t, fmt.Errorf("tenant %s: bad lease_start: %w", t.ID, err)
	}
	if leaseEnd.Valid && leaseEnd.String != "" {
		if t.LeaseEnd, err = ledger.ParseDate(leaseEnd.String); err != nil {
			return t, fmt.Errorf("tenant %s: bad lease_end: %w", t.ID, err)
		}
	}
	if t.RentAmount, err = decimal.NewFromString(rent); err != nil {
		return t, fmt.Errorf("tenant %s: bad rent_amount %q: %w", t.ID, rent, err)
	}
	if deposit.Valid {
		d, err := decimal.NewFromString(deposit.String)
		if err != nil {
			return t, fmt.Errorf("tenant %s: bad security_deposit %q: %w", t.ID, deposit.String, err)
		}
		t.SecurityDeposit = &d
	}
	t.Name, t.Email, t.Phone = name.String, email.String, phone.String
	t.CreatedAt = parseTimestamp(createdAt)
	t.UpdatedAt = parseTimestamp(updatedAt)
	return t, nil
}

// =============================================================================
// PAYMENTS
// =============================================================================

const paymentColumns = `id, tenant_id, amount, due_date, payment_date, status, payment_method, mpesa_code,
	notes, created_at, updated_at`

func (s *Store) ListPayments(ctx context.Context) ([]rental.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryPayments(ctx, "SELECT "+paymentColumns+" FROM payments ORDER BY created_at DESC, id")
}

// ListTenantPayments returns one tenant's payments in insertion order,
// which is the order the ledger keeps within a month.
func (s *Store) ListTenantPayments(ctx context.Context, tenantID string) ([]rental.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryPayments(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE tenant_id = ? ORDER BY rowid ASC",
		tenantID,
	)
}

func (s *Store) GetPayment(ctx context.Context, id string) (rental.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := scanPayment(s.db.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM payments WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return rental.Payment{}, rental.NotFound(rental.EntityPayments, id)
	}
	return p, err
}

// SavePayment inserts or updates a payment.
func (s *Store) SavePayment(ctx context.Context, p rental.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Status == "" {
		p.Status = rental.DefaultPaymentStatus(p.PaymentDate)
	}

	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			amount = excluded.amount,
			due_date = excluded.due_date,
			payment_date = excluded.payment_date,
			status = excluded.status,
			payment_method = excluded.payment_method,
			mpesa_code = excluded.mpesa_code,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`

	var paymentDate sql.NullString
	if p.PaymentDate != nil {
		paymentDate = sql.NullString{String: p.PaymentDate.String(), Valid: true}
	}

	now := timestamp(time.Now())
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.TenantID, p.Amount.String(), p.DueDate.String(), paymentDate, string(p.Status),
		nullString(p.Method), nullString(p.MpesaCode), nullString(p.Notes), now, now,
	)
	return wrapWriteError("save payment", err)
}

func (s *Store) DeletePayment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteByID(ctx, "payments", rental.EntityPayments, id)
}

func (s *Store) queryPayments(ctx context.Context, query string, args ...any) ([]rental.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []rental.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func scanPayment(row scanner) (rental.Payment, error) {
	var (
		p           rental.Payment
		amount      string
		dueDate     string
		paymentDate sql.NullString
		status      string
		method      sql.NullString
		mpesaCode   sql.NullString
		notes       sql.NullString
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(&p.ID, &p.TenantID, &amount, &dueDate, &paymentDate, &status, &method, &mpesaCode,
		&notes, &createdAt, &updatedAt)
	if err != nil {
		return p, err
	}

	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return p, fmt.Errorf("payment %s: bad amount %q: %w", p.ID, amount, err)
	}
	if p.DueDate, err = ledger.ParseDate(dueDate); err != nil {
		return p, fmt.Errorf("payment %s: bad due_date: %w", p.ID, err)
	}
	if paymentDate.Valid && paymentDate.String != "" {
		d, err := ledger.ParseDate(paymentDate.String)
		if err != nil {
			return p, fmt.Errorf("payment %s: bad payment_date: %w", p.ID, err)
		}
		p.PaymentDate = &d
	}
	p.Status = rental.PaymentStatus(status)
	p.Method, p.MpesaCode, p.Notes = method.String, mpesaCode.String, notes.String
	p.CreatedAt = parseTimestamp(createdAt)
	p.UpdatedAt = parseTimestamp(updatedAt)
	return p, nil
}

// =============================================================================
// REMINDERS
// =============================================================================

func (s *Store) ListReminders(ctx context.Context) ([]rental.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, frequency, days_before_due, last_sent, is_active, created_at, updated_at
		FROM payment_reminders ORDER BY tenant_id, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []rental.Reminder
	for rows.Next() {
		var (
			r         rental.Reminder
			frequency string
			lastSent  sql.NullString
			createdAt string
			updatedAt string
		)
		if err := rows.Scan(&r.ID, &r.TenantID, &frequency, &r.DaysBeforeDue, &lastSent, &r.IsActive, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		r.Frequency = rental.ReminderFrequency(frequency)
		if lastSent.Valid && lastSent.String != "" {
			t := parseTimestamp(lastSent.String)
			r.LastSent = &t
		}
		r.CreatedAt = parseTimestamp(createdAt)
		r.UpdatedAt = parseTimestamp(updatedAt)
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

func (s *Store) SaveReminder(ctx context.Context, r rental.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO payment_reminders (id, tenant_id, frequency, days_before_due, last_sent, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			frequency = excluded.frequency,
			days_before_due = excluded.days_before_due,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at
	`

	var lastSent sql.NullString
	if r.LastSent != nil {
		lastSent = sql.NullString{String: timestamp(*r.LastSent), Valid: true}
	}

	now := timestamp(time.Now())
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.TenantID, string(r.Frequency), r.DaysBeforeDue, lastSent, r.IsActive, now, now,
	)
	return wrapWriteError("save reminder", err)
}

func (s *Store) MarkReminderSent(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE payment_reminders SET last_sent = ?, updated_at = ? WHERE id = ?",
		timestamp(at), timestamp(time.Now()), id,
	)
	if err != nil {
		return wrapWriteError("mark reminder sent", err)
	}
	return requireAffected(res, rental.EntityReminders, id)
}

// =============================================================================
// HELPERS
// =============================================================================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) deleteByID(ctx context.Context, table string, entity rental.EntityType, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return wrapWriteError("delete "+string(entity), err)
	}
	return requireAffected(res, entity, id)
}

func requireAffected(res sql.Result, entity rental.EntityType, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return rental.NotFound(entity, id)
	}
	return nil
}

// wrapWriteError maps constraint violations to rental.ErrConflict.
func wrapWriteError(op string, err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("failed to %s: %v: %w", op, sqliteErr, rental.ErrConflict)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// timestampLayout is fixed width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDate(d ledger.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}
