// Package commands implements the statesub-log CLI commands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/statesub/statesub-go/pkg/log"
)

// ParseCategoryFlag parses a --category flag value.
func ParseCategoryFlag(s string) (log.Category, error) {
	c, ok := log.ParseCategory(s)
	if !ok {
		return 0, fmt.Errorf("unknown category: %s (use: create, subscribe, unsubscribe, update)", s)
	}
	return c, nil
}

// RunView prints every event matching filter in human-readable form.
func RunView(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [container] KIND CATEGORY
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [%s] %-5s %s\n", ts, containerLabel(event), event.Kind, event.Category)

	switch event.Category {
	case log.CategoryCreate:
		fmt.Fprintf(w, "  initial: %s\n", formatPayload(event.Payload))
	case log.CategorySubscribe:
		fmt.Fprintf(w, "  sub: %d", event.SubscriptionID)
		if len(event.Keys) > 0 {
			fmt.Fprintf(w, "  keys: %s", strings.Join(event.Keys, ","))
		}
		fmt.Fprintf(w, "  listeners: %d\n", event.Listeners)
	case log.CategoryUnsubscribe:
		fmt.Fprintf(w, "  sub: %d  listeners: %d\n", event.SubscriptionID, event.Listeners)
	case log.CategoryUpdate:
		fmt.Fprintf(w, "  update: %s  notified: %d\n", formatPayload(event.Payload), event.Listeners)
	}

	fmt.Fprintln(w)
}

// containerLabel returns the container name, or the first 8 characters of
// its ID for unnamed containers.
func containerLabel(event log.Event) string {
	if event.ContainerName != "" {
		return event.ContainerName
	}
	if len(event.ContainerID) >= 8 {
		return event.ContainerID[:8]
	}
	return event.ContainerID
}

// formatPayload renders a payload as compact JSON, falling back to %v for
// values JSON cannot represent.
func formatPayload(v any) string {
	if v == nil {
		return "null"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
