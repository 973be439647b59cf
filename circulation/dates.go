package circulation

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the yyyyMMdd layout used for borrow and due dates in requests.
	DateLayout = "20060102"

	// DefaultLoanPeriod is added to the borrow date when a BORROW request carries no due date.
	DefaultLoanPeriod = 4 * 7 * 24 * time.Hour
)

// ParseDate parses a yyyyMMdd string into a UTC midnight time.
func ParseDate(value string) (time.Time, error) {
	if len(value) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("%w: %q is not in yyyyMMdd format", ErrInvalidDate, value)
	}

	day, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not in yyyyMMdd format", ErrInvalidDate, value)
	}

	return day, nil
}

// FormatDate renders a time as yyyyMMdd.
func FormatDate(day time.Time) string {
	return day.UTC().Format(DateLayout)
}

// TruncateToDay drops the time of day, keeping the calendar date in UTC.
func TruncateToDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
