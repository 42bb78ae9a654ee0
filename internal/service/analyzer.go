package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"habittracker/internal/model"
	"habittracker/pkg/logger"
	"habittracker/pkg/metrics"
)

// HabitSource is the read side of the habit store.
type HabitSource interface {
	List(ctx context.Context) ([]*model.Habit, error)
	ListByFrequency(ctx context.Context, f model.Frequency) ([]*model.Habit, error)
	Get(ctx context.Context, name string) (*model.Habit, bool, error)
}

// HabitSummary is one line of the analyzer's overview.
type HabitSummary struct {
	Name          string
	Frequency     model.Frequency
	Completions   int
	LongestStreak int
	OnStreak      bool
}

// HabitAnalyzer answers read-only questions across all stored habits.
type HabitAnalyzer struct {
	source HabitSource
	logger *zap.Logger
}

func NewHabitAnalyzer(source HabitSource, logger *zap.Logger) *HabitAnalyzer {
	return &HabitAnalyzer{
		source: source,
		logger: logger,
	}
}

// ListAll returns the names of all habits in name order.
func (a *HabitAnalyzer) ListAll(ctx context.Context) ([]string, error) {
	habits, err := a.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	names := make([]string, 0, len(habits))
	for _, h := range habits {
		names = append(names, h.Name)
	}
	return names, nil
}

// ListByFrequency returns the habits tracked at frequency f. An unknown
// frequency simply matches nothing.
func (a *HabitAnalyzer) ListByFrequency(ctx context.Context, f model.Frequency) ([]*model.Habit, error) {
	habits, err := a.source.ListByFrequency(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list %s habits: %w", f, err)
	}
	if habits == nil {
		habits = []*model.Habit{}
	}
	return habits, nil
}

// LongestStreakOverall is the longest streak of any habit, 0 with no habits.
func (a *HabitAnalyzer) LongestStreakOverall(ctx context.Context) (int, error) {
	habits, err := a.source.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list habits: %w", err)
	}

	longest := 0
	for _, h := range habits {
		if streak := h.LongestStreak(); streak > longest {
			longest = streak
		}
	}

	logger.WithTrace(ctx, a.logger).Debug("Computed longest streak overall",
		zap.Int("habits", len(habits)),
		zap.Int("longest_streak", longest),
	)
	return longest, nil
}

// LongestStreakFor is the longest streak of the named habit. A missing habit
// counts as 0 rather than an error.
func (a *HabitAnalyzer) LongestStreakFor(ctx context.Context, name string) (int, error) {
	h, found, err := a.source.Get(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("get %q: %w", name, err)
	}
	if !found {
		logger.WithTrace(ctx, a.logger).Debug("Longest streak for missing habit", zap.String("name", name))
		return 0, nil
	}
	return h.LongestStreak(), nil
}

// Summaries reports completions, longest streak and current streak state
// for every habit. A habit with an unrecognised frequency is reported as
// not on streak.
func (a *HabitAnalyzer) Summaries(ctx context.Context) ([]HabitSummary, error) {
	habits, err := a.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	log := logger.WithTrace(ctx, a.logger)
	summaries := make([]HabitSummary, 0, len(habits))
	for _, h := range habits {
		onStreak, err := h.CheckStreak()
		switch {
		case errors.Is(err, model.ErrInvalidFrequency):
			metrics.IncrementStreakCheck(h.Frequency.String(), "error")
			log.Warn("Skipping streak check", zap.String("name", h.Name), zap.Error(err))
		case err != nil:
			return nil, fmt.Errorf("check streak for %q: %w", h.Name, err)
		case onStreak:
			metrics.IncrementStreakCheck(h.Frequency.String(), "on_streak")
		default:
			metrics.IncrementStreakCheck(h.Frequency.String(), "broken")
		}

		summaries = append(summaries, HabitSummary{
			Name:          h.Name,
			Frequency:     h.Frequency,
			Completions:   len(h.Progress),
			LongestStreak: h.LongestStreak(),
			OnStreak:      onStreak,
		})
	}
	return summaries, nil
}
