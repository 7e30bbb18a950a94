package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/statesub/statesub-go/pkg/log"
)

// Stats holds aggregate statistics about a journal file.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	Containers       map[string]*ContainerStats
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// ContainerStats holds statistics for a single container.
type ContainerStats struct {
	Name          string
	Kind          log.Kind
	FirstSeen     time.Time
	LastSeen      time.Time
	Updates       int
	Notifications int
	Subscribes    int
	Unsubscribes  int
}

// CollectStats reads the journal and aggregates its events.
func CollectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory: make(map[log.Category]int),
		Containers:       make(map[string]*ContainerStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		c, ok := stats.Containers[event.ContainerID]
		if !ok {
			c = &ContainerStats{
				Kind:      event.Kind,
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
			}
			stats.Containers[event.ContainerID] = c
		}
		if c.Name == "" {
			c.Name = event.ContainerName
		}
		if event.Timestamp.After(c.LastSeen) {
			c.LastSeen = event.Timestamp
		}

		switch event.Category {
		case log.CategoryUpdate:
			c.Updates++
			c.Notifications += event.Listeners
		case log.CategorySubscribe:
			c.Subscribes++
		case log.CategoryUnsubscribe:
			c.Unsubscribes++
		}
	}

	return stats, nil
}

// RunStats analyzes the journal and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== statesub Journal Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryCreate, log.CategorySubscribe, log.CategoryUnsubscribe, log.CategoryUpdate} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-13s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Containers: %d\n", len(stats.Containers))
	ids := make([]string, 0, len(stats.Containers))
	for id := range stats.Containers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return stats.Containers[ids[i]].FirstSeen.Before(stats.Containers[ids[j]].FirstSeen)
	})
	for _, id := range ids {
		c := stats.Containers[id]
		label := c.Name
		if label == "" {
			label = id
		}
		live := c.Subscribes - c.Unsubscribes
		fmt.Fprintf(w, "  %-20s %-5s updates=%d notified=%d listeners=%d\n",
			label, c.Kind, c.Updates, c.Notifications, live)
	}
}
