package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/roomwatch/roomwatch-go/pkg/log"
)

// Stats holds aggregate statistics about a journal.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	Added            int
	Removed          int
	Messages         int
	FailedMessages   int
	Relocations      map[log.RelocationOutcome]int
	Errors           map[string]int
	Destinations     map[string]int
	Correlations     int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// RunStats analyzes the journal and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	events, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read event: %w", err)
	}

	printStats(w, collectStats(events))
	return nil
}

func collectStats(events []log.Event) *Stats {
	stats := &Stats{
		EventsByCategory: make(map[log.Category]int),
		Relocations:      make(map[log.RelocationOutcome]int),
		Errors:           make(map[string]int),
		Destinations:     make(map[string]int),
	}
	ids := make(map[string]bool)

	for _, event := range events {
		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++
		if event.EventID != "" {
			ids[event.EventID] = true
		}

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		switch {
		case event.Subscription != nil:
			if event.Subscription.Action == log.ActionAdded {
				stats.Added++
			} else {
				stats.Removed += event.Subscription.Count
			}
		case event.Notification != nil:
			stats.Messages++
			if event.Notification.Failed {
				stats.FailedMessages++
			}
			stats.Destinations[event.Destination]++
		case event.Relocation != nil:
			stats.Relocations[event.Relocation.Outcome]++
		case event.Error != nil:
			stats.Errors[event.Error.Kind]++
		}
	}
	stats.Correlations = len(ids)
	return stats
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Roomwatch Journal Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d (%d correlated operations)\n", stats.TotalEvents, stats.Correlations)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryPresence, log.CategorySubscription, log.CategoryNotification, log.CategoryRelocation, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Subscriptions: %d added, %d removed\n", stats.Added, stats.Removed)
	fmt.Fprintf(w, "Messages:      %d", stats.Messages)
	if stats.FailedMessages > 0 {
		fmt.Fprintf(w, " (%d failed)", stats.FailedMessages)
	}
	fmt.Fprintln(w)

	if len(stats.Destinations) > 0 {
		dests := make([]string, 0, len(stats.Destinations))
		for d := range stats.Destinations {
			dests = append(dests, d)
		}
		sort.Strings(dests)
		for _, d := range dests {
			fmt.Fprintf(w, "  #%-13s %d\n", d, stats.Destinations[d])
		}
	}

	if len(stats.Relocations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Relocations:")
		for _, o := range []log.RelocationOutcome{log.RelocationMoved, log.RelocationSkipped, log.RelocationFailed} {
			if count := stats.Relocations[o]; count > 0 {
				fmt.Fprintf(w, "  %-14s %d\n", o.String()+":", count)
			}
		}
	}

	if len(stats.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Errors:")
		kinds := make([]string, 0, len(stats.Errors))
		for k := range stats.Errors {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(w, "  %-22s %d\n", k+":", stats.Errors[k])
		}
	}
}
