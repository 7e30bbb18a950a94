package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func newJSONSlogger(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level}))
}

func TestSlogAdapterLogsUpdateEvent(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(newJSONSlogger(&buf, slog.LevelDebug))

	adapter.Log(Event{
		Timestamp:     time.Now(),
		ContainerID:   "c-123",
		ContainerName: "counter",
		Kind:          KindMap,
		Category:      CategoryUpdate,
		Keys:          []string{"count"},
		Payload:       map[string]any{"count": 1},
		Listeners:     3,
	})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if entry["msg"] != "journal" {
		t.Errorf("msg: got %v, want journal", entry["msg"])
	}
	if entry["container_id"] != "c-123" {
		t.Errorf("container_id: got %v, want c-123", entry["container_id"])
	}
	if entry["container"] != "counter" {
		t.Errorf("container: got %v, want counter", entry["container"])
	}
	if entry["category"] != "UPDATE" {
		t.Errorf("category: got %v, want UPDATE", entry["category"])
	}
	if entry["notified"] != float64(3) {
		t.Errorf("notified: got %v, want 3", entry["notified"])
	}
	update, ok := entry["update"].(map[string]any)
	if !ok || update["count"] != float64(1) {
		t.Errorf("update: got %v, want {count:1}", entry["update"])
	}
}

func TestSlogAdapterLogsSubscribeEvent(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(newJSONSlogger(&buf, slog.LevelDebug))

	adapter.Log(Event{
		ContainerID:    "c-9",
		Category:       CategorySubscribe,
		SubscriptionID: 42,
		Listeners:      1,
	})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["sub_id"] != float64(42) {
		t.Errorf("sub_id: got %v, want 42", entry["sub_id"])
	}
	if entry["listeners"] != float64(1) {
		t.Errorf("listeners: got %v, want 1", entry["listeners"])
	}
	if _, ok := entry["container"]; ok {
		t.Error("container attribute should be omitted for unnamed containers")
	}
}

func TestSlogAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(newJSONSlogger(&buf, slog.LevelInfo))

	adapter.Log(Event{ContainerID: "c", Category: CategoryCreate})

	if buf.Len() != 0 {
		t.Errorf("expected no output at info level, got %q", buf.String())
	}
}
