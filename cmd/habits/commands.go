package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"habittracker/internal/model"
	"habittracker/internal/repository"
	"habittracker/internal/service"
)

type habitFlags struct {
	description string
	start       string
	end         string
	frequency   string
}

func (f *habitFlags) register(cmd *cobra.Command, defaultFrequency string) {
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "what the habit is about")
	cmd.Flags().StringVar(&f.start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&f.frequency, "frequency", "f", defaultFrequency, "daily, weekly or monthly")
}

// apply copies the flags that were set on cmd onto h, validating dates and
// frequency on the way.
func (f *habitFlags) apply(cmd *cobra.Command, h *model.Habit) error {
	flags := cmd.Flags()
	if flags.Changed("description") {
		h.Description = f.description
	}
	if flags.Changed("start") {
		d, err := model.ParseDate(f.start)
		if err != nil {
			return fmt.Errorf("--start: %w", err)
		}
		h.StartDate = d
	}
	if flags.Changed("end") {
		d, err := model.ParseDate(f.end)
		if err != nil {
			return fmt.Errorf("--end: %w", err)
		}
		h.EndDate = d
	}
	if flags.Changed("frequency") || h.Frequency == "" {
		freq, err := model.ParseFrequency(f.frequency)
		if err != nil {
			return fmt.Errorf("--frequency: %w", err)
		}
		h.Frequency = freq
	}
	if !h.StartDate.IsZero() && !h.EndDate.IsZero() && h.EndDate.Before(h.StartDate) {
		return fmt.Errorf("end date %s is before start date %s", model.FormatDate(h.EndDate), model.FormatDate(h.StartDate))
	}
	return nil
}

func newAddCmd(a *app) *cobra.Command {
	var flags habitFlags
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a new habit",
		Example: `  habits add read -d "read 30 mins" --start 2020-01-01 --end 2020-01-05
  habits add gym --frequency weekly --start 2020-01-06`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := model.NewHabit(args[0], "", time.Time{}, time.Time{}, "")
			if err := flags.apply(cmd, h); err != nil {
				return err
			}
			if h.StartDate.IsZero() {
				h.StartDate = model.Day(a.now())
			}

			return a.run(cmd, func(ctx context.Context, store *repository.HabitStore, _ *zap.Logger) error {
				if err := store.Create(ctx, h); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s habit %q starting %s\n", h.Frequency, h.Name, model.FormatDate(h.StartDate))
				return nil
			})
		},
	}
	flags.register(cmd, string(model.Daily))
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Show a habit and its progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, store *repository.HabitStore, _ *zap.Logger) error {
				h, found, err := store.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("%w: %q", model.ErrHabitNotFound, args[0])
				}
				renderHabit(cmd.OutOrStdout(), h)
				return nil
			})
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	var flags habitFlags
	cmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Change a habit's description, dates or frequency",
		Long:  "Only the flags given are changed. Recorded progress is kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, store *repository.HabitStore, _ *zap.Logger) error {
				h, found, err := store.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("%w: %q", model.ErrHabitNotFound, args[0])
				}
				if err := flags.apply(cmd, h); err != nil {
					return err
				}
				if err := store.Update(ctx, h); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated habit %q\n", h.Name)
				return nil
			})
		},
	}
	flags.register(cmd, "")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a habit, keeping its completion log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, store *repository.HabitStore, _ *zap.Logger) error {
				deleted, err := store.Delete(ctx, args[0])
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("%w: %q", model.ErrHabitNotFound, args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted habit %q\n", args[0])
				return nil
			})
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	var (
		on     string
		missed bool
	)
	cmd := &cobra.Command{
		Use:   "check NAME",
		Short: "Record a completion (or a miss) for a habit",
		Example: `  habits check read
  habits check gym --date 2020-01-13
  habits check read --date 2020-01-04 --missed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventDate := model.Day(a.now())
			if cmd.Flags().Changed("date") {
				d, err := model.ParseDate(on)
				if err != nil {
					return fmt.Errorf("--date: %w", err)
				}
				if d.IsZero() {
					return fmt.Errorf("--date: %w", model.ErrMissingDate)
				}
				eventDate = d
			}

			return a.run(cmd, func(ctx context.Context, store *repository.HabitStore, _ *zap.Logger) error {
				h, err := store.RecordCompletion(ctx, args[0], eventDate, !missed)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if missed {
					fmt.Fprintf(out, "Recorded a miss for %q on %s\n", h.Name, model.FormatDate(eventDate))
					return nil
				}
				fmt.Fprintf(out, "Checked %q on %s (%d completions)\n", h.Name, model.FormatDate(eventDate), len(h.Progress))
				if onStreak, err := h.CheckStreak(); err == nil && onStreak {
					fmt.Fprintln(out, "Streak!")
				} else if err == nil {
					fmt.Fprintln(out, "Habit breaker")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&on, "date", "", "event date (YYYY-MM-DD), defaults to today")
	cmd.Flags().BoolVar(&missed, "missed", false, "record the day as not completed")
	return cmd
}

func newLogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "log NAME",
		Short: "Show every recorded event for a habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, store *repository.HabitStore, _ *zap.Logger) error {
				events, found, err := store.CompletionLog(ctx, args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("%w: %q", model.ErrHabitNotFound, args[0])
				}
				renderEvents(cmd.OutOrStdout(), events)
				return nil
			})
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var frequency string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List habit names, optionally by frequency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, store *repository.HabitStore, log *zap.Logger) error {
				analyzer := service.NewHabitAnalyzer(store, log)
				out := cmd.OutOrStdout()

				if frequency == "" {
					names, err := analyzer.ListAll(ctx)
					if err != nil {
						return err
					}
					renderNames(out, names)
					return nil
				}

				freq, err := model.ParseFrequency(frequency)
				if err != nil {
					return fmt.Errorf("--frequency: %w", err)
				}
				habits, err := analyzer.ListByFrequency(ctx, freq)
				if err != nil {
					return err
				}
				names := make([]string, 0, len(habits))
				for _, h := range habits {
					names = append(names, h.Name)
				}
				renderNames(out, names)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&frequency, "frequency", "f", "", "only habits with this frequency")
	return cmd
}

func newStreakCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "streak",
		Short: "Show the longest streak overall or for one habit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, store *repository.HabitStore, log *zap.Logger) error {
				analyzer := service.NewHabitAnalyzer(store, log)

				var (
					longest int
					err     error
				)
				if name == "" {
					longest, err = analyzer.LongestStreakOverall(ctx)
				} else {
					longest, err = analyzer.LongestStreakFor(ctx, name)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), longest)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "habit", "", "habit name, all habits when empty")
	return cmd
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show completions and streaks for every habit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, store *repository.HabitStore, log *zap.Logger) error {
				summaries, err := service.NewHabitAnalyzer(store, log).Summaries(ctx)
				if err != nil {
					return err
				}
				renderSummaries(cmd.OutOrStdout(), summaries)
				return nil
			})
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add the predefined starter habits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, store *repository.HabitStore, log *zap.Logger) error {
				created, err := service.SeedPredefined(ctx, store)
				if err != nil {
					return err
				}
				log.Info("Seeded predefined habits", zap.Strings("created", created))
				if len(created) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "All predefined habits already exist")
					return nil
				}
				renderNames(cmd.OutOrStdout(), created)
				return nil
			})
		},
	}
}
