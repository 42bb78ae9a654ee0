package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"habittracker/internal/model"
	"habittracker/internal/service"
)

func dateOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func renderHabit(w io.Writer, h *model.Habit) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "Name:\t%s\n", h.Name)
	fmt.Fprintf(tw, "Description:\t%s\n", h.Description)
	fmt.Fprintf(tw, "Frequency:\t%s\n", h.Frequency)
	fmt.Fprintf(tw, "Start:\t%s\n", dateOrDash(model.FormatDate(h.StartDate)))
	fmt.Fprintf(tw, "End:\t%s\n", dateOrDash(model.FormatDate(h.EndDate)))
	fmt.Fprintf(tw, "Completions:\t%d\n", len(h.Progress))
	fmt.Fprintf(tw, "Marks:\t%s\n", model.EncodeMarks(h.Marks()))
	fmt.Fprintf(tw, "Longest streak:\t%d\n", h.LongestStreak())
}

func renderEvents(w io.Writer, events []model.CompletionEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events recorded")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tDATE\tCOMPLETED")
	for _, ev := range events {
		fmt.Fprintf(tw, "%d\t%s\t%t\n", ev.ID, model.FormatDate(ev.EventDate), ev.Completed)
	}
}

func renderNames(w io.Writer, names []string) {
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
}

func renderSummaries(w io.Writer, summaries []service.HabitSummary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No habits yet")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "NAME\tFREQUENCY\tCOMPLETIONS\tLONGEST\tON STREAK")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%t\n", s.Name, s.Frequency, s.Completions, s.LongestStreak, s.OnStreak)
	}
}
