package model

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateHabit   = errors.New("habit already exists")
	ErrHabitNotFound    = errors.New("habit not found")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrDecode           = errors.New("malformed progress data")
	ErrMissingDate      = errors.New("completion date is required")
)

// DecodeError reports persisted progress that could not be parsed.
type DecodeError struct {
	Raw    string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("%s: %s (raw %q)", ErrDecode, e.Reason, truncate(e.Raw, 64))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
