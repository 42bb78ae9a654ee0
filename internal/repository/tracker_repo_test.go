package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habittracker/internal/model"
)

func TestRecordCompletionMarksProgress(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, date(2020, 1, 6))

	require.NoError(t, store.Create(ctx, model.NewHabit("Test 43", "Test habit", date(2020, 1, 1), date(2020, 1, 31), model.Daily)))

	h, err := store.RecordCompletion(ctx, "Test 43", date(2020, 1, 5), true)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date(2020, 1, 5)}, h.Progress)

	h, err = store.RecordCompletion(ctx, "Test 43", date(2020, 1, 4), true)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date(2020, 1, 4), date(2020, 1, 5)}, h.Progress)

	onStreak, err := h.CheckStreak()
	require.NoError(t, err)
	assert.True(t, onStreak)

	stored, _, err := store.Get(ctx, "Test 43")
	require.NoError(t, err)
	assert.Equal(t, h.Progress, stored.Progress)
}

func TestRecordCompletionSameDayTwice(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, date(2020, 1, 6))

	require.NoError(t, store.Create(ctx, model.NewHabit("Walk", "", date(2020, 1, 1), date(2020, 1, 31), model.Daily)))

	_, err := store.RecordCompletion(ctx, "Walk", date(2020, 1, 5), true)
	require.NoError(t, err)
	h, err := store.RecordCompletion(ctx, "Walk", date(2020, 1, 5), true)
	require.NoError(t, err)
	assert.Len(t, h.Progress, 1)

	events, found, err := store.CompletionLog(ctx, "Walk")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, events, 2, "the log keeps every event")
}

func TestRecordMissedCompletion(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, date(2020, 1, 6))

	require.NoError(t, store.Create(ctx, model.NewHabit("Walk", "", date(2020, 1, 1), date(2020, 1, 31), model.Daily)))

	h, err := store.RecordCompletion(ctx, "Walk", date(2020, 1, 5), false)
	require.NoError(t, err)
	assert.Empty(t, h.Progress)

	events, _, err := store.CompletionLog(ctx, "Walk")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.CompletionEvent{
		ID:        events[0].ID,
		HabitName: "Walk",
		EventDate: date(2020, 1, 5),
		Completed: false,
	}, events[0])
}

func TestRecordCompletionUnknownHabit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, date(2020, 1, 6))

	_, err := store.RecordCompletion(ctx, "ghost", date(2020, 1, 5), true)
	assert.ErrorIs(t, err, model.ErrHabitNotFound)

	_, found, err := store.CompletionLog(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, found, "no event was written")
}

func TestRecordCompletionInvalidFrequencyStillRecords(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, date(2020, 1, 6))

	require.NoError(t, store.Create(ctx, model.NewHabit("Taxes", "", date(2020, 1, 1), date(2020, 12, 31), "yearly")))

	h, err := store.RecordCompletion(ctx, "Taxes", date(2020, 1, 5), true)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date(2020, 1, 5)}, h.Progress)
}

func TestRecordCompletionRejectsZeroDate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, date(2020, 1, 6))

	require.NoError(t, store.Create(ctx, model.NewHabit("x", "", date(2020, 1, 1), date(2020, 1, 31), model.Daily)))
	require.NoError(t, store.Create(ctx, model.NewHabit("y", "", date(2020, 1, 1), date(2020, 1, 31), model.Daily)))

	_, err := store.RecordCompletion(ctx, "x", time.Time{}, true)
	assert.ErrorIs(t, err, model.ErrMissingDate)

	got, found, err := store.Get(ctx, "x")
	require.NoError(t, err)
	require.True(t, found)
	assert.Empty(t, got.Progress)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	events, found, err := store.CompletionLog(ctx, "x")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, events, "no event was written")
}

func TestCompletionLogReadsInOneTransaction(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM tracker WHERE habit_name = ?").
		WithArgs("read").
		WillReturnRows(sqlmock.NewRows([]string{"id", "habit_name", "event_date", "completed"}))
	mock.ExpectQuery("SELECT COUNT(.+) FROM habits WHERE name = ?").
		WithArgs("read").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	events, found, err := store.CompletionLog(context.Background(), "read")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, events)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestCompletionLogRollsBackOnFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM tracker WHERE habit_name = ?").
		WithArgs("read").
		WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	_, found, err := store.CompletionLog(context.Background(), "read")
	require.Error(t, err)
	assert.False(t, found)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestCompletionLogOrderAndFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, date(2020, 1, 10))

	require.NoError(t, store.Create(ctx, model.NewHabit("Test 42", "Test habit", date(2020, 1, 1), date(2020, 1, 31), model.Daily)))

	events, found, err := store.CompletionLog(ctx, "Test 42")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, events)

	for _, d := range []int{5, 3, 4} {
		_, err := store.RecordCompletion(ctx, "Test 42", date(2020, 1, d), true)
		require.NoError(t, err)
	}

	events, found, err = store.CompletionLog(ctx, "Test 42")
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, events, 3)
	assert.Equal(t, date(2020, 1, 5), events[0].EventDate)
	assert.Equal(t, date(2020, 1, 3), events[1].EventDate)
	assert.Equal(t, date(2020, 1, 4), events[2].EventDate)
	assert.Equal(t, []time.Time{date(2020, 1, 3), date(2020, 1, 4), date(2020, 1, 5)}, CompletedDays(events))

	_, found, err = store.CompletionLog(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRecordCompletionRollsBackOnInsertFailure(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"name", "description", "start_date", "end_date", "frequency", "progress"}).
		AddRow("read", "read 30 mins", "2020-01-01", "2020-01-05", "daily", "[]")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM habits WHERE name = ?").WithArgs("read").WillReturnRows(rows)
	mock.ExpectExec("INSERT INTO tracker").
		WithArgs("read", "2020-01-03", true).
		WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	_, err := store.RecordCompletion(context.Background(), "read", date(2020, 1, 3), true)
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrHabitNotFound)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestRecordCompletionCommitsProgress(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"name", "description", "start_date", "end_date", "frequency", "progress"}).
		AddRow("read", "read 30 mins", "2020-01-01", "2020-01-05", "daily", `["2020-01-02"]`)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM habits WHERE name = ?").WithArgs("read").WillReturnRows(rows)
	mock.ExpectExec("INSERT INTO tracker").
		WithArgs("read", "2020-01-03", true).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("UPDATE habits SET progress").
		WithArgs(`["2020-01-02","2020-01-03"]`, "read").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	h, err := store.RecordCompletion(context.Background(), "read", date(2020, 1, 3), true)
	require.NoError(t, err)
	assert.Len(t, h.Progress, 2)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
