package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Frequency is how often a recurring template repeats.
type Frequency string

const (
	// FrequencyWeekly repeats every seven days.
	FrequencyWeekly Frequency = "weekly"
	// FrequencyMonthly repeats on the same day of the following month.
	FrequencyMonthly Frequency = "monthly"
)

// ErrInvalidFrequency is returned for frequencies other than weekly or monthly.
var ErrInvalidFrequency = errors.New("invalid recurrence frequency")

// ParseFrequency parses a frequency name.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(s))); f {
	case FrequencyWeekly, FrequencyMonthly:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
	}
}

// Recurrence describes how a transaction repeats.
// An active recurrence always has a NextDue; generated instances are inactive
// and carry no NextDue.
type Recurrence struct {
	NextDue   *time.Time
	Frequency Frequency
	Active    bool
}

// Validate checks the active/next-due invariant.
func (r *Recurrence) Validate() error {
	if r == nil {
		return nil
	}
	if r.Active {
		if _, err := ParseFrequency(string(r.Frequency)); err != nil {
			return err
		}
		if r.NextDue == nil {
			return errors.New("active recurrence requires a next due date")
		}
		return nil
	}
	if r.NextDue != nil {
		return errors.New("inactive recurrence cannot have a next due date")
	}
	return nil
}
