package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/statesub/statesub-go/pkg/log"
)

// exportRecord is the JSON shape of an exported event.
type exportRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	ContainerID    string    `json:"container_id"`
	ContainerName  string    `json:"container_name,omitempty"`
	Kind           string    `json:"kind"`
	Category       string    `json:"category"`
	SubscriptionID uint64    `json:"subscription_id,omitempty"`
	Keys           []string  `json:"keys,omitempty"`
	Payload        any       `json:"payload,omitempty"`
	Listeners      int       `json:"listeners,omitempty"`
}

// RunExport exports the journal to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	return export(reader, format, w)
}

func export(reader *log.Reader, format string, w io.Writer) error {
	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func toRecord(e log.Event) exportRecord {
	return exportRecord{
		Timestamp:      e.Timestamp,
		ContainerID:    e.ContainerID,
		ContainerName:  e.ContainerName,
		Kind:           e.Kind.String(),
		Category:       e.Category.String(),
		SubscriptionID: e.SubscriptionID,
		Keys:           e.Keys,
		Payload:        e.Payload,
		Listeners:      e.Listeners,
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(toRecord(event)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "container_id", "container_name", "kind", "category", "subscription_id", "keys", "listeners", "payload"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		subID := ""
		if event.SubscriptionID != 0 {
			subID = strconv.FormatUint(event.SubscriptionID, 10)
		}
		payload := ""
		if event.Payload != nil {
			payload = formatPayload(event.Payload)
		}

		row := []string{
			event.Timestamp.UTC().Format(time.RFC3339Nano),
			event.ContainerID,
			event.ContainerName,
			event.Kind.String(),
			event.Category.String(),
			subID,
			strings.Join(event.Keys, ";"),
			strconv.Itoa(event.Listeners),
			payload,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
}
