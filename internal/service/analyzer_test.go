package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"habittracker/internal/model"
	"habittracker/internal/repository"
	"habittracker/pkg/config"
	"habittracker/pkg/db"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fakeSource struct {
	habits []*model.Habit
	err    error
}

func (f *fakeSource) List(ctx context.Context) ([]*model.Habit, error) {
	return f.habits, f.err
}

func (f *fakeSource) ListByFrequency(ctx context.Context, freq model.Frequency) ([]*model.Habit, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.Habit
	for _, h := range f.habits {
		if h.Frequency == freq {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeSource) Get(ctx context.Context, name string) (*model.Habit, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	for _, h := range f.habits {
		if h.Name == name {
			return h, true, nil
		}
	}
	return nil, false, nil
}

func habitWith(name string, start, end time.Time, f model.Frequency, progress ...time.Time) *model.Habit {
	h := model.NewHabit(name, "", start, end, f)
	h.Progress = progress
	return h
}

func sampleHabits() []*model.Habit {
	return []*model.Habit{
		habitWith("gym", date(2020, 1, 6), date(2020, 2, 14), model.Weekly,
			date(2020, 1, 6), date(2020, 1, 13), date(2020, 1, 27), date(2020, 2, 3)),
		habitWith("read", date(2020, 1, 1), date(2020, 1, 5), model.Daily,
			date(2020, 1, 1), date(2020, 1, 2), date(2020, 1, 3), date(2020, 1, 4), date(2020, 1, 5)),
	}
}

func TestListAll(t *testing.T) {
	a := NewHabitAnalyzer(&fakeSource{habits: sampleHabits()}, zap.NewNop())

	names, err := a.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gym", "read"}, names)
}

func TestListAllEmpty(t *testing.T) {
	a := NewHabitAnalyzer(&fakeSource{}, zap.NewNop())

	names, err := a.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestListByFrequency(t *testing.T) {
	a := NewHabitAnalyzer(&fakeSource{habits: sampleHabits()}, zap.NewNop())

	daily, err := a.ListByFrequency(context.Background(), model.Daily)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, "read", daily[0].Name)

	monthly, err := a.ListByFrequency(context.Background(), model.Monthly)
	require.NoError(t, err)
	assert.NotNil(t, monthly)
	assert.Empty(t, monthly)
}

func TestLongestStreakOverall(t *testing.T) {
	a := NewHabitAnalyzer(&fakeSource{habits: sampleHabits()}, zap.NewNop())

	longest, err := a.LongestStreakOverall(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, longest)

	empty := NewHabitAnalyzer(&fakeSource{}, zap.NewNop())
	longest, err = empty.LongestStreakOverall(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, longest)
}

func TestLongestStreakFor(t *testing.T) {
	a := NewHabitAnalyzer(&fakeSource{habits: sampleHabits()}, zap.NewNop())

	tests := []struct {
		name string
		want int
	}{
		{"read", 5},
		{"gym", 2},
		{"missing", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.LongestStreakFor(context.Background(), tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnalyzerPropagatesSourceErrors(t *testing.T) {
	boom := errors.New("database is locked")
	a := NewHabitAnalyzer(&fakeSource{err: boom}, zap.NewNop())
	ctx := context.Background()

	_, err := a.ListAll(ctx)
	assert.ErrorIs(t, err, boom)

	_, err = a.ListByFrequency(ctx, model.Daily)
	assert.ErrorIs(t, err, boom)

	_, err = a.LongestStreakOverall(ctx)
	assert.ErrorIs(t, err, boom)

	_, err = a.LongestStreakFor(ctx, "read")
	assert.ErrorIs(t, err, boom)

	_, err = a.Summaries(ctx)
	assert.ErrorIs(t, err, boom)
}

func TestSummaries(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	habits := append(sampleHabits(),
		habitWith("taxes", date(2020, 1, 1), date(2020, 12, 31), "yearly", date(2020, 4, 15)),
	)
	a := NewHabitAnalyzer(&fakeSource{habits: habits}, zap.New(core))

	summaries, err := a.Summaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Equal(t, HabitSummary{Name: "gym", Frequency: model.Weekly, Completions: 4, LongestStreak: 2}, summaries[0])
	assert.Equal(t, HabitSummary{Name: "read", Frequency: model.Daily, Completions: 5, LongestStreak: 5}, summaries[1])
	assert.Equal(t, HabitSummary{Name: "taxes", Frequency: "yearly", Completions: 1}, summaries[2])

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "taxes", logs.All()[0].ContextMap()["name"])
}

func TestSummariesOnStreak(t *testing.T) {
	today := date(2024, 3, 14)
	h := habitWith("walk", date(2024, 3, 10), date(2024, 4, 10), model.Daily,
		date(2024, 3, 11), date(2024, 3, 12), date(2024, 3, 13))
	h.WithClock(func() time.Time { return today })

	a := NewHabitAnalyzer(&fakeSource{habits: []*model.Habit{h}}, zap.NewNop())

	summaries, err := a.Summaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].OnStreak)
	assert.Equal(t, 3, summaries[0].LongestStreak)
}

func TestAnalyzerOverSQLiteStore(t *testing.T) {
	ctx := context.Background()

	conn, err := db.NewConnection(config.DBConfig{
		Driver: db.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "habits.db"),
	}, zap.NewNop())
	require.NoError(t, err)

	store := repository.NewHabitStore(conn, zap.NewNop())
	require.NoError(t, store.EnsureSchema(ctx))
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Create(ctx, model.NewHabit("read", "read 30 mins", date(2020, 1, 1), date(2020, 1, 5), model.Daily)))
	require.NoError(t, store.Create(ctx, model.NewHabit("gym", "go to gym", date(2020, 1, 6), date(2020, 2, 14), model.Weekly)))

	for d := 1; d <= 5; d++ {
		_, err := store.RecordCompletion(ctx, "read", date(2020, 1, d), true)
		require.NoError(t, err)
	}
	for _, d := range []time.Time{date(2020, 1, 6), date(2020, 1, 13), date(2020, 1, 27), date(2020, 2, 3)} {
		_, err := store.RecordCompletion(ctx, "gym", d, true)
		require.NoError(t, err)
	}

	a := NewHabitAnalyzer(store, zap.NewNop())

	names, err := a.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"gym", "read"}, names)

	longest, err := a.LongestStreakOverall(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, longest)

	gym, err := a.LongestStreakFor(ctx, "gym")
	require.NoError(t, err)
	assert.Equal(t, 2, gym)

	missing, err := a.LongestStreakFor(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, 0, missing)
}
