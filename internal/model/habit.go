package model

import (
	"fmt"
	"slices"
	"time"
)

// Habit is a tracked habit together with its completion history.
// Progress holds unique completion days in ascending order.
type Habit struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	StartDate   time.Time   `json:"start_date"`
	EndDate     time.Time   `json:"end_date"`
	Frequency   Frequency   `json:"frequency"`
	Progress    []time.Time `json:"progress"`

	clock func() time.Time
}

func NewHabit(name, description string, start, end time.Time, frequency Frequency) *Habit {
	return &Habit{
		Name:        name,
		Description: description,
		StartDate:   Day(start),
		EndDate:     Day(end),
		Frequency:   frequency,
		Progress:    []time.Time{},
	}
}

// WithClock replaces the source of "today" used by CheckStreak.
func (h *Habit) WithClock(clock func() time.Time) *Habit {
	h.clock = clock
	return h
}

func (h *Habit) today() time.Time {
	if h.clock != nil {
		return Day(h.clock())
	}
	return Day(time.Now())
}

// MarkComplete records a completion on the given day. Recording a day that
// is already present leaves Progress unchanged. The returned flag reports
// whether the habit is on streak after the update. A zero date is rejected
// and leaves Progress untouched.
func (h *Habit) MarkComplete(date time.Time) (bool, error) {
	if date.IsZero() {
		return false, ErrMissingDate
	}
	day := Day(date)
	if !slices.ContainsFunc(h.Progress, day.Equal) {
		h.Progress = append(h.Progress, day)
		slices.SortFunc(h.Progress, time.Time.Compare)
	}
	return h.CheckStreak()
}

// CheckStreak reports whether the habit is currently on streak relative to
// today. An unrecognised frequency is an error regardless of history.
func (h *Habit) CheckStreak() (bool, error) {
	if !h.Frequency.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidFrequency, string(h.Frequency))
	}
	if h.StartDate.IsZero() || len(h.Progress) == 0 {
		return false, nil
	}

	today := h.today()
	first := h.Progress[0]
	last := h.Progress[len(h.Progress)-1]

	switch h.Frequency {
	case Daily:
		// contiguous run ending today or yesterday
		if daysBetween(last, today) > 1 {
			return false, nil
		}
		return daysBetween(first, last) == len(h.Progress)-1, nil

	case Weekly:
		if len(h.Progress) < 7 {
			return false, nil
		}
		if daysBetween(last, today) > 7 {
			return false, nil
		}
		offset := (int(today.Weekday()) + 6) % 7
		return distinctSince(h.Progress, today.AddDate(0, 0, -offset)), nil

	default: // Monthly
		if len(h.Progress) < daysBetween(h.StartDate, today)+1 {
			return false, nil
		}
		if daysBetween(last, today) > 30 {
			return false, nil
		}
		monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return distinctSince(h.Progress, monthStart), nil
	}
}

// Marks derives one completion mark per period, from the anchor period
// through the period of the last completion. The anchor is the start date,
// or the first completion when that comes earlier or no start is set.
func (h *Habit) Marks() []bool {
	if len(h.Progress) == 0 || !h.Frequency.Valid() {
		return nil
	}

	anchor := h.Progress[0]
	if !h.StartDate.IsZero() && h.StartDate.Before(anchor) {
		anchor = h.StartDate
	}

	marks := make([]bool, h.Frequency.periodIndex(anchor, h.Progress[len(h.Progress)-1])+1)
	for _, d := range h.Progress {
		marks[h.Frequency.periodIndex(anchor, d)] = true
	}
	return marks
}

// LongestStreak is the longest run of consecutive completed periods in the
// habit's whole history.
func (h *Habit) LongestStreak() int {
	return LongestStreak(h.Marks())
}

func distinctSince(dates []time.Time, from time.Time) bool {
	seen := make(map[time.Time]struct{})
	for _, d := range dates {
		if d.Before(from) {
			continue
		}
		if _, ok := seen[d]; ok {
			return false
		}
		seen[d] = struct{}{}
	}
	return true
}
