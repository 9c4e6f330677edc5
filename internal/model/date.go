package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// DateOf returns the calendar date of t as observed in loc, expressed as
// midnight UTC. All dates in the ledger use this representation so that
// comparisons never depend on the host time zone.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a calendar date. RFC 3339 timestamps are accepted and
// truncated to their date part in their own offset.
func ParseDate(s string) (time.Time, error) {
	return ParseDateIn(s, nil)
}

// ParseDateIn is ParseDate for values written elsewhere: an RFC 3339
// timestamp is first moved into loc, so 2024-02-29T18:00:00Z read in
// Asia/Dhaka is 2024-03-01. Plain dates are taken as they are. A nil loc
// keeps the timestamp's own offset.
func ParseDateIn(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d, nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		if loc == nil {
			loc = ts.Location()
		}
		return DateOf(ts, loc), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected %s", s, DateLayout)
}

// FormatDate formats a calendar date.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// MonthLabel is the human label for the month containing d, e.g. "January 2024".
func MonthLabel(d time.Time) string {
	return d.Format("January 2006")
}
