package ledger

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DATE - Calendar date without time-of-day or zone
// =============================================================================

// Date is a civil calendar date. The wrapped time is always midnight UTC so
// two Dates built from the same year/month/day compare equal regardless of
// where they came from.
type Date struct {
	Time time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf takes the calendar date of t as seen in t's own location.
// No zone conversion happens: 2024-02-01T01:00+03:00 is February 1st.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("unrecognized date %q (use YYYY-MM-DD)", s)
	}
	return DateOf(t), nil
}

func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool  { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool  { return d.Time.Equal(other.Time) }
func (d Date) IsZero() bool           { return d.Time.IsZero() }
func (d Date) AddDays(n int) Date     { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) Year() int              { return d.Time.Year() }
func (d Date) Month() time.Month      { return d.Time.Month() }
func (d Date) Day() int               { return d.Time.Day() }
func (d Date) String() string         { return d.Time.Format(dateLayout) }

// DaysBetween counts calendar days from -> to (negative when to is earlier).
func DaysBetween(from, to Date) int {
	return int(to.Time.Sub(from.Time).Hours() / 24)
}

// =============================================================================
// MONTH - Year + month key used for bucketing and ledger rows
// =============================================================================

type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(d Date) Month { return Month{Year: d.Year(), Month: d.Month()} }

func (m Month) index() int { return m.Year*12 + int(m.Month) - 1 }

func (m Month) Next() Month {
	i := m.index() + 1
	return Month{Year: i / 12, Month: time.Month(i%12 + 1)}
}

func (m Month) Before(other Month) bool { return m.index() < other.index() }
func (m Month) After(other Month) bool  { return m.index() > other.index() }

// Start is the first day of the month.
func (m Month) Start() Date { return NewDate(m.Year, m.Month, 1) }

// Days is the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// String renders the month as "2024-01".
func (m Month) String() string { return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)) }

// Label renders the month for display, e.g. "January 2024".
func (m Month) Label() string { return fmt.Sprintf("%s %d", m.Month, m.Year) }

func (m Month) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Month) UnmarshalText(b []byte) error {
	t, err := time.Parse("2006-01", string(b))
	if err != nil {
		return fmt.Errorf("invalid month %q: %w", b, err)
	}
	*m = Month{Year: t.Year(), Month: t.Month()}
	return nil
}
