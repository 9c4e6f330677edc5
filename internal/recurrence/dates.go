// Package recurrence materializes recurring expense templates into concrete
// transactions.
package recurrence

import (
	"fmt"
	"time"

	"github.com/Veraticus/household-ledger/internal/model"
)

// AdvanceDate returns the occurrence after d for the given frequency.
//
// Monthly steps keep the day of month and clamp to the last day of the target
// month when that day does not exist: Jan 31 advances to Feb 29 (leap year) or
// Feb 28. Each step starts from the previous occurrence, so a clamped
// schedule keeps the clamped day afterwards (Feb 29 -> Mar 29).
func AdvanceDate(d time.Time, freq model.Frequency) (time.Time, error) {
	switch freq {
	case model.FrequencyWeekly:
		return d.AddDate(0, 0, 7), nil
	case model.FrequencyMonthly:
		return addMonthClamped(d), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", model.ErrInvalidFrequency, freq)
	}
}

// addMonthClamped adds one calendar month without overflowing into the month
// after. time.AddDate would normalize Jan 31 + 1 month to Mar 2.
func addMonthClamped(d time.Time) time.Time {
	year, month, day := d.Date()
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, d.Location())
	if last := daysIn(firstOfNext); day > last {
		day = last
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day,
		d.Hour(), d.Minute(), d.Second(), d.Nanosecond(), d.Location())
}

func daysIn(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}
