// Package billing computes the derived fields of an enrollment: the end
// date of the subscription window and its total price. It is pure and
// has no failure modes; inputs are validated by callers.
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Derive computes the enrollment end date and total price.
//
// The start date is normalized to start-of-day before adding the plan
// duration in calendar months, so time-of-day never leaks into the
// subscription boundary. The total is monthly * months with exact
// decimal arithmetic.
func Derive(start time.Time, monthly decimal.Decimal, months int) (time.Time, decimal.Decimal) {
	end := AddMonths(StartOfDay(start), months)
	total := monthly.Mul(decimal.NewFromInt(int64(months)))
	return end, total
}

// StartOfDay truncates a timestamp to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AddMonths advances t by the given number of calendar months, clamping
// to the last day of the target month when the source day does not
// exist there (Jan 31 + 1 month = Feb 28, or Feb 29 in leap years).
// time.Time.AddDate is not used because it normalizes overflow days
// into the following month instead of clamping.
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	idx := int(month) - 1 + months
	year += idx / 12
	idx %= 12
	if idx < 0 {
		idx += 12
		year--
	}
	month = time.Month(idx + 1)

	if last := daysIn(year, month); day > last {
		day = last
	}

	h, m, s := t.Clock()
	return time.Date(year, month, day, h, m, s, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
