package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"habittracker/internal/model"
	"habittracker/pkg/util"
)

// Create inserts a new habit with empty progress. Any progress already on h
// is ignored and reset.
func (s *HabitStore) Create(ctx context.Context, h *model.Habit) (err error) {
	start := time.Now()
	defer func() { s.observe("create", "habits", start, err) }()

	log := s.log(ctx)
	log.Debug("Inserting habit",
		zap.String("name", h.Name),
		zap.String("frequency", h.Frequency.String()),
	)

	query := `
        INSERT INTO habits (name, description, start_date, end_date, frequency, progress)
        VALUES (?, ?, ?, ?, ?, ?)
    `
	err = s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(query),
			h.Name,
			nullable(h.Description),
			model.FormatDate(h.StartDate),
			model.FormatDate(h.EndDate),
			string(h.Frequency),
			model.EncodeProgress(nil),
		)
		return err
	})
	if err != nil {
		if util.IsUniqueViolation(err) {
			log.Info("Habit already exists", zap.String("name", h.Name))
			return fmt.Errorf("create %q: %w", h.Name, model.ErrDuplicateHabit)
		}
		log.Error("Failed to insert habit", zap.Error(err))
		return fmt.Errorf("create %q: %w", h.Name, err)
	}

	h.Progress = []time.Time{}
	log.Info("Habit inserted successfully", zap.String("name", h.Name))
	return nil
}

// Get loads a habit by name. A missing habit yields found == false and a
// nil error.
func (s *HabitStore) Get(ctx context.Context, name string) (h *model.Habit, found bool, err error) {
	start := time.Now()
	defer func() { s.observe("get", "habits", start, err) }()

	query := `SELECT ` + habitColumns + ` FROM habits WHERE name = ?`

	var row habitRow
	if err := s.db.GetContext(ctx, &row, s.db.Rebind(query), name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.log(ctx).Debug("Habit not found", zap.String("name", name))
			return nil, false, nil
		}
		s.log(ctx).Error("Failed to get habit", zap.String("name", name), zap.Error(err))
		return nil, false, fmt.Errorf("get %q: %w", name, err)
	}

	h, err = row.toModel()
	if err != nil {
		s.log(ctx).Error("Failed to decode habit", zap.String("name", name), zap.Error(err))
		return nil, false, fmt.Errorf("get %q: %w", name, err)
	}
	h.WithClock(s.clock)
	return h, true, nil
}

// Update overwrites description, dates and frequency. Progress is left as
// stored.
func (s *HabitStore) Update(ctx context.Context, h *model.Habit) (err error) {
	start := time.Now()
	defer func() { s.observe("update", "habits", start, err) }()

	log := s.log(ctx)
	log.Debug("Updating habit", zap.String("name", h.Name))

	query := `
        UPDATE habits
        SET description = ?, start_date = ?, end_date = ?, frequency = ?
        WHERE name = ?
    `
	err = s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(query),
			nullable(h.Description),
			model.FormatDate(h.StartDate),
			model.FormatDate(h.EndDate),
			string(h.Frequency),
			h.Name,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return model.ErrHabitNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, model.ErrHabitNotFound) {
			log.Error("Failed to update habit", zap.String("name", h.Name), zap.Error(err))
		}
		return fmt.Errorf("update %q: %w", h.Name, err)
	}

	log.Info("Habit updated successfully", zap.String("name", h.Name))
	return nil
}

// Delete removes the habit row and reports whether it existed. Tracker
// rows for the habit are kept.
func (s *HabitStore) Delete(ctx context.Context, name string) (deleted bool, err error) {
	start := time.Now()
	defer func() { s.observe("delete", "habits", start, err) }()

	err = s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM habits WHERE name = ?`), name)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		s.log(ctx).Error("Failed to delete habit", zap.String("name", name), zap.Error(err))
		return false, fmt.Errorf("delete %q: %w", name, err)
	}

	s.log(ctx).Info("Habit deleted", zap.String("name", name), zap.Bool("existed", deleted))
	return deleted, nil
}

// List returns every habit ordered by name.
func (s *HabitStore) List(ctx context.Context) (habits []*model.Habit, err error) {
	start := time.Now()
	defer func() { s.observe("list", "habits", start, err) }()

	query := `SELECT ` + habitColumns + ` FROM habits ORDER BY name`
	return s.selectHabits(ctx, query)
}

// ListByFrequency returns the habits whose frequency equals f, ordered by
// name. No match is an empty result.
func (s *HabitStore) ListByFrequency(ctx context.Context, f model.Frequency) (habits []*model.Habit, err error) {
	start := time.Now()
	defer func() { s.observe("list_by_frequency", "habits", start, err) }()

	query := `SELECT ` + habitColumns + ` FROM habits WHERE frequency = ? ORDER BY name`
	return s.selectHabits(ctx, query, string(f))
}

func (s *HabitStore) selectHabits(ctx context.Context, query string, args ...interface{}) ([]*model.Habit, error) {
	var rows []habitRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		s.log(ctx).Error("Failed to list habits", zap.Error(err))
		return nil, fmt.Errorf("list habits: %w", err)
	}

	habits := make([]*model.Habit, 0, len(rows))
	for _, row := range rows {
		h, err := row.toModel()
		if err != nil {
			s.log(ctx).Error("Failed to decode habit", zap.String("name", row.Name), zap.Error(err))
			return nil, fmt.Errorf("decode %q: %w", row.Name, err)
		}
		habits = append(habits, h.WithClock(s.clock))
	}

	s.log(ctx).Debug("Listed habits", zap.Int("count", len(habits)))
	return habits, nil
}
