package repository

import (
	"database/sql"
	"time"

	"habittracker/internal/model"
)

const habitColumns = "name, description, start_date, end_date, frequency, progress"

type habitRow struct {
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	StartDate   sql.NullString `db:"start_date"`
	EndDate     sql.NullString `db:"end_date"`
	Frequency   string         `db:"frequency"`
	Progress    sql.NullString `db:"progress"`
}

func (r habitRow) toModel() (*model.Habit, error) {
	start, err := parseStoredDate(r.StartDate, "start_date")
	if err != nil {
		return nil, err
	}
	end, err := parseStoredDate(r.EndDate, "end_date")
	if err != nil {
		return nil, err
	}

	frequency := model.Frequency(r.Frequency)
	progress, err := model.DecodeProgress(r.Progress.String, start, frequency)
	if err != nil {
		return nil, err
	}

	return &model.Habit{
		Name:        r.Name,
		Description: r.Description.String,
		StartDate:   start,
		EndDate:     end,
		Frequency:   frequency,
		Progress:    progress,
	}, nil
}

func parseStoredDate(v sql.NullString, column string) (time.Time, error) {
	d, err := model.ParseDate(v.String)
	if err != nil {
		return time.Time{}, &model.DecodeError{Raw: v.String, Reason: "bad " + column, Err: err}
	}
	return d, nil
}

type trackerRow struct {
	ID        int64  `db:"id"`
	HabitName string `db:"habit_name"`
	EventDate string `db:"event_date"`
	Completed bool   `db:"completed"`
}

func (r trackerRow) toModel() (model.CompletionEvent, error) {
	d, err := model.ParseDate(r.EventDate)
	if err != nil {
		return model.CompletionEvent{}, &model.DecodeError{Raw: r.EventDate, Reason: "bad event_date", Err: err}
	}
	return model.CompletionEvent{
		ID:        r.ID,
		HabitName: r.HabitName,
		EventDate: d,
		Completed: r.Completed,
	}, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
