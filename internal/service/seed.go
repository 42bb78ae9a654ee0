package service

import (
	"context"
	"errors"
	"time"

	"habittracker/internal/model"
)

// HabitCreator is the write side needed for seeding.
type HabitCreator interface {
	Create(ctx context.Context, h *model.Habit) error
}

// PredefinedHabits returns the starter set offered to new users.
func PredefinedHabits() []*model.Habit {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 1, 28, 0, 0, 0, 0, time.UTC)

	return []*model.Habit{
		model.NewHabit("Exercise", "Workout for 30 minutes", start, end, model.Daily),
		model.NewHabit("Meditate", "Meditate for 10 minutes", start, end, model.Weekly),
		model.NewHabit("Journal", "Write in journal for 5 minutes", start, end, model.Daily),
		model.NewHabit("Read", "Read for 15 minutes", start, end, model.Weekly),
		model.NewHabit("Drink Water", "Drink 8 glasses of water", start, end, model.Daily),
	}
}

// SeedPredefined creates the predefined habits that do not exist yet and
// returns the names it created.
func SeedPredefined(ctx context.Context, store HabitCreator) ([]string, error) {
	var created []string
	for _, h := range PredefinedHabits() {
		err := store.Create(ctx, h)
		if errors.Is(err, model.ErrDuplicateHabit) {
			continue
		}
		if err != nil {
			return created, err
		}
		created = append(created, h.Name)
	}
	return created, nil
}
