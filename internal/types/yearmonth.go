package types

import (
	"database/sql/driver"
	"fmt"
	"time"

	ierr "github.com/flexprice/partnerbilling/internal/errors"
)

const yearMonthLayout = "2006-01"

// YearMonth is a billing period in YYYY-MM form. It is stored as the first day
// of the month in DATE columns.
type YearMonth string

// NewYearMonth returns the period containing t
func NewYearMonth(t time.Time) YearMonth {
	return YearMonth(t.UTC().Format(yearMonthLayout))
}

// ParseYearMonth accepts YYYY-MM or a full YYYY-MM-DD date
func ParseYearMonth(s string) (YearMonth, error) {
	if len(s) >= 10 {
		t, err := time.Parse(time.DateOnly, s[:10])
		if err == nil {
			return NewYearMonth(t), nil
		}
	}
	t, err := time.Parse(yearMonthLayout, s)
	if err != nil {
		return "", ierr.WithError(err).
			WithHintf("invalid month %q, expected YYYY-MM", s).
			Mark(ierr.ErrValidation)
	}
	return NewYearMonth(t), nil
}

func (m YearMonth) String() string {
	return string(m)
}

func (m YearMonth) Validate() error {
	_, err := ParseYearMonth(string(m))
	return err
}

// Start returns midnight UTC of the first day of the month
func (m YearMonth) Start() time.Time {
	t, err := time.Parse(yearMonthLayout, string(m))
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// End returns the last day of the month at midnight UTC
func (m YearMonth) End() time.Time {
	return m.Start().AddDate(0, 1, -1)
}

// Contains reports whether the date of t falls inside the month
func (m YearMonth) Contains(t time.Time) bool {
	return NewYearMonth(t) == m
}

// Value implements driver.Valuer
func (m YearMonth) Value() (driver.Value, error) {
	if m == "" {
		return nil, nil
	}
	start := m.Start()
	if start.IsZero() {
		return nil, fmt.Errorf("invalid year month %q", string(m))
	}
	return start, nil
}

// Scan implements sql.Scanner
func (m *YearMonth) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = ""
	case time.Time:
		*m = NewYearMonth(v)
	case []byte:
		ym, err := ParseYearMonth(string(v))
		if err != nil {
			return err
		}
		*m = ym
	case string:
		ym, err := ParseYearMonth(v)
		if err != nil {
			return err
		}
		*m = ym
	default:
		return fmt.Errorf("cannot scan %T into YearMonth", src)
	}
	return nil
}
