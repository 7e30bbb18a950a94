package log

import (
	"bufio"
	"os"
	"sync"
)

// fileBufferSize is the write buffer of a FileLogger. Events are flushed
// when it fills, on Sync and on Close.
const fileBufferSize = 32 * 1024

// FileLogger writes journal events to a file in CBOR format.
// It is safe for concurrent use from multiple goroutines.
//
// Writes are buffered. Call Sync to make every event logged so far durable,
// and Close when done; events still buffered when the process dies without
// either are lost.
type FileLogger struct {
	mu      sync.Mutex
	file    *os.File
	buf     *bufio.Writer
	closed  bool
	dropped uint64
}

// NewFileLogger creates a new FileLogger that writes to the specified path.
// If the file exists, new events are appended. The file is created with
// permissions 0644 if it doesn't exist.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{
		file: f,
		buf:  bufio.NewWriterSize(f, fileBufferSize),
	}, nil
}

// Log appends an event to the journal. Events that cannot be encoded, such
// as updates whose payload holds a func or channel, are skipped and counted
// in Dropped; the journal stays a valid event stream.
func (l *FileLogger) Log(event Event) {
	data, err := EncodeEvent(event)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	if err != nil {
		l.dropped++
		return
	}
	if _, err := l.buf.Write(data); err != nil {
		l.dropped++
	}
}

// Dropped returns the number of events that could not be written.
func (l *FileLogger) Dropped() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// Sync flushes buffered events and commits the file to stable storage.
func (l *FileLogger) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	return l.flush()
}

func (l *FileLogger) flush() error {
	if err := l.buf.Flush(); err != nil {
		return err
	}
	return l.file.Sync()
}

// Close flushes buffered events and closes the journal file.
// It is safe to call Close multiple times.
// After Close is called, subsequent Log calls are silently ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	flushErr := l.flush()
	if err := l.file.Close(); err != nil {
		return err
	}
	return flushErr
}

// Compile-time interface satisfaction check.
var _ Logger = (*FileLogger)(nil)
