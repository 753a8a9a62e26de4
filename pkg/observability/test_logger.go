package observability

import (
	"context"
	"sync"
	"time"

	"github.com/theory-cloud/hosttheory/pkg/sanitization"
)

type testLoggerCore struct {
	mu      sync.Mutex
	entries []LogEntry
}

// TestLogger is an in-memory logger implementation for deterministic unit
// tests.
//
// Derived loggers (via With* calls) share the same underlying core.
type TestLogger struct {
	core *testLoggerCore

	fields   map[string]any
	sanitize SanitizerFunc
}

var _ StructuredLogger = (*TestLogger)(nil)

func NewTestLogger() *TestLogger {
	return &TestLogger{
		core:     &testLoggerCore{},
		fields:   map[string]any{},
		sanitize: sanitization.SanitizeFieldValue,
	}
}

// Entries returns a copy of everything logged through this logger's core.
func (l *TestLogger) Entries() []LogEntry {
	if l == nil || l.core == nil {
		return nil
	}
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	out := make([]LogEntry, len(l.core.entries))
	copy(out, l.core.entries)
	return out
}

// Messages returns only the logged messages, in order.
func (l *TestLogger) Messages() []string {
	entries := l.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}

// Reset discards recorded entries.
func (l *TestLogger) Reset() {
	l.core.mu.Lock()
	l.core.entries = nil
	l.core.mu.Unlock()
}

func (l *TestLogger) log(level, message string, fields []map[string]any) {
	entry := LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Message:   message,
		Fields:    mergeFields(l.fields, fields, l.sanitize),
	}
	l.core.mu.Lock()
	l.core.entries = append(l.core.entries, entry)
	l.core.mu.Unlock()
}

func (l *TestLogger) Debug(message string, fields ...map[string]any) {
	l.log("debug", message, fields)
}

func (l *TestLogger) Info(message string, fields ...map[string]any) {
	l.log("info", message, fields)
}

func (l *TestLogger) Warn(message string, fields ...map[string]any) {
	l.log("warn", message, fields)
}

func (l *TestLogger) Error(message string, fields ...map[string]any) {
	l.log("error", message, fields)
}

func (l *TestLogger) WithField(key string, value any) StructuredLogger {
	return l.WithFields(map[string]any{key: value})
}

func (l *TestLogger) WithFields(fields map[string]any) StructuredLogger {
	derived := &TestLogger{
		core:     l.core,
		fields:   mergeFields(l.fields, []map[string]any{fields}, nil),
		sanitize: l.sanitize,
	}
	return derived
}

func (l *TestLogger) Flush(_ context.Context) error { return nil }
func (l *TestLogger) Close() error                  { return nil }
