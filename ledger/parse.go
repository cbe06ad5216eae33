package ledger

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RAW ROW PARSING - Loosely-typed data into the typed model
// =============================================================================
//
// Rows exported from the hosted database arrive as JSON objects whose
// values may be strings, numbers or null. Nothing loosely typed reaches
// Reconcile or Summarize; it goes through these parsers first.

// Row keys as exported by the hosted database.
const (
	keyID          = "id"
	keyUnitID      = "unit_id"
	keyLeaseStart  = "lease_start"
	keyRentAmount  = "rent_amount"
	keyAmount      = "amount"
	keyPaymentDate = "payment_date"
	keyMethod      = "payment_method"
	keyNotes       = "notes"
	keyReference   = "mpesa_code"
)

// ParseTenantRow validates a raw tenant row.
func ParseTenantRow(row map[string]any) (Tenant, error) {
	var t Tenant
	var err error

	if t.ID, err = optionalString(row, keyID); err != nil {
		return Tenant{}, err
	}
	if t.UnitID, err = optionalString(row, keyUnitID); err != nil {
		return Tenant{}, err
	}

	raw, ok := row[keyLeaseStart]
	if !ok || raw == nil {
		return Tenant{}, invalid(keyLeaseStart, nil, "lease start date is required")
	}
	s, ok := raw.(string)
	if !ok {
		return Tenant{}, invalid(keyLeaseStart, raw, "expected a date string")
	}
	if t.LeaseStart, err = ParseDate(s); err != nil {
		return Tenant{}, invalid(keyLeaseStart, s, err.Error())
	}

	if t.RentAmount, err = requiredAmount(row, keyRentAmount); err != nil {
		return Tenant{}, err
	}
	if err := t.Validate(); err != nil {
		return Tenant{}, err
	}
	return t, nil
}

// ParsePaymentRow validates a raw payment row. A missing or null
// payment_date yields a pending record, not an error.
func ParsePaymentRow(row map[string]any) (PaymentRecord, error) {
	var p PaymentRecord
	var err error

	if p.ID, err = optionalString(row, keyID); err != nil {
		return PaymentRecord{}, err
	}
	if p.Amount, err = requiredAmount(row, keyAmount); err != nil {
		return PaymentRecord{}, err
	}

	if raw, ok := row[keyPaymentDate]; ok && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return PaymentRecord{}, invalid(keyPaymentDate, raw, "expected a date string")
		}
		if strings.TrimSpace(s) != "" {
			d, err := ParseDate(s)
			if err != nil {
				return PaymentRecord{}, invalid(keyPaymentDate, s, err.Error())
			}
			p.PaymentDate = &d
		}
	}

	if p.Method, err = optionalString(row, keyMethod); err != nil {
		return PaymentRecord{}, err
	}
	if p.Notes, err = optionalString(row, keyNotes); err != nil {
		return PaymentRecord{}, err
	}
	if p.ExternalReference, err = optionalString(row, keyReference); err != nil {
		return PaymentRecord{}, err
	}
	if err := p.Validate(); err != nil {
		return PaymentRecord{}, err
	}
	return p, nil
}

// ParseAmount converts a JSON-ish value into a decimal.
func ParseAmount(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(x))
	case json.Number:
		return decimal.NewFromString(x.String())
	case float64:
		return decimal.NewFromFloat(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case int32:
		return decimal.NewFromInt32(x), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported amount type %T", v)
	}
}

func requiredAmount(row map[string]any, key string) (decimal.Decimal, error) {
	raw, ok := row[key]
	if !ok || raw == nil {
		return decimal.Zero, invalid(key, nil, "amount is required")
	}
	d, err := ParseAmount(raw)
	if err != nil {
		return decimal.Zero, invalid(key, raw, err.Error())
	}
	return d, nil
}

func optionalString(row map[string]any, key string) (string, error) {
	raw, ok := row[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", invalid(key, raw, "expected a string")
	}
	return s, nil
}
