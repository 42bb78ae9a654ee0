package model

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
	"time"
)

// EncodeProgress renders completion days as a JSON array of YYYY-MM-DD
// strings. The result is what the habits.progress column stores. Zero
// dates have no textual form and are left out.
func EncodeProgress(dates []time.Time) string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		out = append(out, FormatDate(d))
	}
	b, _ := json.Marshal(out)
	return string(b)
}

// DecodeProgress parses a stored progress column. Two array forms are
// accepted: YYYY-MM-DD strings, and legacy per-period marks (0/1 or
// true/false) which are expanded into days counted from start under the
// given frequency. The result is sorted and free of duplicates.
func DecodeProgress(raw string, start time.Time, frequency Frequency) ([]time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return []time.Time{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
		return nil, &DecodeError{Raw: raw, Reason: "not a JSON array", Err: err}
	}
	if len(items) == 0 {
		return []time.Time{}, nil
	}

	if bytes.HasPrefix(bytes.TrimSpace(items[0]), []byte(`"`)) {
		return decodeDates(raw, items)
	}

	marks, err := decodeMarkItems(raw, items)
	if err != nil {
		return nil, err
	}
	if start.IsZero() {
		return nil, &DecodeError{Raw: raw, Reason: "marks require a start date"}
	}
	if !frequency.Valid() {
		return nil, &DecodeError{Raw: raw, Reason: "marks require a known frequency", Err: ErrInvalidFrequency}
	}

	anchor := Day(start)
	dates := make([]time.Time, 0, len(marks))
	for i, done := range marks {
		if done {
			dates = append(dates, frequency.periodDate(anchor, i))
		}
	}
	return dates, nil
}

// EncodeMarks renders marks in the legacy 0/1 array form.
func EncodeMarks(marks []bool) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, done := range marks {
		if i > 0 {
			sb.WriteString(", ")
		}
		if done {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

// DecodeMarks parses a 0/1 (or boolean) JSON array.
func DecodeMarks(raw string) ([]bool, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, &DecodeError{Raw: raw, Reason: "not a JSON array", Err: err}
	}
	return decodeMarkItems(raw, items)
}

func decodeDates(raw string, items []json.RawMessage) ([]time.Time, error) {
	dates := make([]time.Time, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return nil, &DecodeError{Raw: raw, Reason: "mixed element types", Err: err}
		}
		d, err := time.Parse(DateLayout, s)
		if err != nil {
			return nil, &DecodeError{Raw: raw, Reason: "bad date " + s, Err: err}
		}
		dates = append(dates, d)
	}
	slices.SortFunc(dates, time.Time.Compare)
	return slices.CompactFunc(dates, time.Time.Equal), nil
}

func decodeMarkItems(raw string, items []json.RawMessage) ([]bool, error) {
	marks := make([]bool, 0, len(items))
	for _, item := range items {
		switch string(bytes.TrimSpace(item)) {
		case "1", "true":
			marks = append(marks, true)
		case "0", "false":
			marks = append(marks, false)
		default:
			return nil, &DecodeError{Raw: raw, Reason: "mark must be 0 or 1, got " + string(item)}
		}
	}
	return marks, nil
}
