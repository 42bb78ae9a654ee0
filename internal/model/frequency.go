package model

import (
	"fmt"
	"strings"
	"time"
)

type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// Frequencies lists the recognised cadences in display order.
var Frequencies = []Frequency{Daily, Weekly, Monthly}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly:
		return true
	}
	return false
}

func (f Frequency) String() string {
	return string(f)
}

// ParseFrequency normalises user input and rejects unknown cadences.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
	}
	return f, nil
}

// periodIndex is the zero-based period of day d counted from anchor.
// Weekly periods are seven-day blocks starting at the anchor, monthly
// periods are calendar months.
func (f Frequency) periodIndex(anchor, d time.Time) int {
	switch f {
	case Weekly:
		return daysBetween(anchor, d) / 7
	case Monthly:
		return (d.Year()-anchor.Year())*12 + int(d.Month()) - int(anchor.Month())
	default:
		return daysBetween(anchor, d)
	}
}

// periodDate is the inverse of periodIndex for legacy marks: the day that
// represents period i of a habit started on anchor.
func (f Frequency) periodDate(anchor time.Time, i int) time.Time {
	switch f {
	case Weekly:
		return anchor.AddDate(0, 0, 7*i)
	case Monthly:
		if i == 0 {
			return anchor
		}
		return time.Date(anchor.Year(), anchor.Month()+time.Month(i), 1, 0, 0, 0, 0, time.UTC)
	default:
		return anchor.AddDate(0, 0, i)
	}
}
