package log

// Logger is the interface applications implement to receive journal events.
// Pass nil or NoopLogger to disable journaling.
type Logger interface {
	// Log records a container event. Implementations must be thread-safe.
	// Log is called on the goroutine performing the container operation,
	// so it should return quickly.
	Log(event Event)
}

// NoopLogger discards all events. Use when journaling is disabled.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
