package observability

import (
	"context"
	"time"
)

// SanitizerFunc rewrites a field value before it is logged.
type SanitizerFunc func(key string, value any) any

// LogEntry represents a structured log entry.
//
// This type is intentionally small and stable so implementations can adapt
// it to their backend.
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// StructuredLogger is the logging surface the host and its services write
// to. Implementations must be safe for concurrent use; With* methods return
// derived loggers and leave the receiver untouched.
type StructuredLogger interface {
	Debug(message string, fields ...map[string]any)
	Info(message string, fields ...map[string]any)
	Warn(message string, fields ...map[string]any)
	Error(message string, fields ...map[string]any)

	WithField(key string, value any) StructuredLogger
	WithFields(fields map[string]any) StructuredLogger

	Flush(ctx context.Context) error
	Close() error
}

func mergeFields(base map[string]any, extra []map[string]any, sanitize SanitizerFunc) map[string]any {
	out := make(map[string]any, len(base)+4)
	for k, v := range base {
		out[k] = v
	}
	for _, m := range extra {
		for k, v := range m {
			out[k] = v
		}
	}
	if sanitize != nil {
		for k, v := range out {
			out[k] = sanitize(k, v)
		}
	}
	return out
}
