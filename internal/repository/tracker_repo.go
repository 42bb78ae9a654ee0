package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"habittracker/internal/model"
	"habittracker/pkg/metrics"
)

// RecordCompletion appends an event to the tracker log. When completed is
// true the day is also marked on the habit and the new progress is stored
// in the same transaction. The returned habit reflects the stored state.
func (s *HabitStore) RecordCompletion(ctx context.Context, name string, eventDate time.Time, completed bool) (h *model.Habit, err error) {
	start := time.Now()
	defer func() { s.observe("record_completion", "tracker", start, err) }()

	log := s.log(ctx).With(zap.String("name", name), zap.String("event_date", model.FormatDate(eventDate)))
	log.Debug("Recording completion", zap.Bool("completed", completed))

	if eventDate.IsZero() {
		return nil, fmt.Errorf("record completion for %q: %w", name, model.ErrMissingDate)
	}

	err = s.withTx(ctx, func(tx *sqlx.Tx) error {
		var row habitRow
		query := `SELECT ` + habitColumns + ` FROM habits WHERE name = ?`
		if err := tx.GetContext(ctx, &row, tx.Rebind(query), name); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.ErrHabitNotFound
			}
			return err
		}

		var err error
		h, err = row.toModel()
		if err != nil {
			return err
		}
		h.WithClock(s.clock)

		insert := `INSERT INTO tracker (habit_name, event_date, completed) VALUES (?, ?, ?)`
		if _, err := tx.ExecContext(ctx, tx.Rebind(insert), name, model.FormatDate(eventDate), completed); err != nil {
			return err
		}

		if !completed {
			return nil
		}

		before := len(h.Progress)
		onStreak, streakErr := h.MarkComplete(eventDate)
		s.reportStreak(log, h, onStreak, streakErr)
		if len(h.Progress) == before {
			return nil
		}

		update := `UPDATE habits SET progress = ? WHERE name = ?`
		_, err = tx.ExecContext(ctx, tx.Rebind(update), model.EncodeProgress(h.Progress), name)
		return err
	})
	if err != nil {
		if !errors.Is(err, model.ErrHabitNotFound) {
			log.Error("Failed to record completion", zap.Error(err))
		}
		return nil, fmt.Errorf("record completion for %q: %w", name, err)
	}

	metrics.IncrementCompletion(completed)
	log.Info("Completion recorded", zap.Bool("completed", completed), zap.Int("progress", len(h.Progress)))
	return h, nil
}

// reportStreak surfaces the on-streak signal of a completion. It never
// fails the write.
func (s *HabitStore) reportStreak(log *zap.Logger, h *model.Habit, onStreak bool, err error) {
	frequency := h.Frequency.String()
	switch {
	case err != nil:
		metrics.IncrementStreakCheck(frequency, "error")
		log.Warn("Streak check failed", zap.Error(err))
	case onStreak:
		metrics.IncrementStreakCheck(frequency, "on_streak")
		log.Info("Streak!")
	default:
		metrics.IncrementStreakCheck(frequency, "broken")
		log.Info("Habit breaker")
	}
}

// CompletionLog returns every tracker event for name in insertion order.
// found is false when neither the habit nor any event exists; events of a
// deleted habit are still returned.
func (s *HabitStore) CompletionLog(ctx context.Context, name string) (events []model.CompletionEvent, found bool, err error) {
	start := time.Now()
	defer func() { s.observe("completion_log", "tracker", start, err) }()

	var (
		rows   []trackerRow
		exists int
	)
	err = s.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `SELECT id, habit_name, event_date, completed FROM tracker WHERE habit_name = ? ORDER BY id`
		if err := tx.SelectContext(ctx, &rows, tx.Rebind(query), name); err != nil {
			return err
		}
		if len(rows) > 0 {
			return nil
		}
		return tx.GetContext(ctx, &exists, tx.Rebind(`SELECT COUNT(*) FROM habits WHERE name = ?`), name)
	})
	if err != nil {
		s.log(ctx).Error("Failed to read completion log", zap.String("name", name), zap.Error(err))
		return nil, false, fmt.Errorf("completion log for %q: %w", name, err)
	}

	if len(rows) == 0 {
		return []model.CompletionEvent{}, exists > 0, nil
	}

	events = make([]model.CompletionEvent, 0, len(rows))
	for _, row := range rows {
		ev, err := row.toModel()
		if err != nil {
			return nil, false, fmt.Errorf("completion log for %q: %w", name, err)
		}
		events = append(events, ev)
	}
	return events, true, nil
}

// CompletedDays is the distinct set of days the log marks as completed,
// ascending. It lets callers compare the log with stored progress.
func CompletedDays(events []model.CompletionEvent) []time.Time {
	days := make([]time.Time, 0, len(events))
	for _, ev := range events {
		if ev.Completed {
			days = append(days, model.Day(ev.EventDate))
		}
	}
	slices.SortFunc(days, time.Time.Compare)
	return slices.CompactFunc(days, time.Time.Equal)
}
