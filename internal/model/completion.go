package model

import "time"

// CompletionEvent is one row of the append-only tracker log.
type CompletionEvent struct {
	ID        int64     `json:"id"`
	HabitName string    `json:"habit_name"`
	EventDate time.Time `json:"event_date"`
	Completed bool      `json:"completed"`
}
