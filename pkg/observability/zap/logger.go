// Package zap implements observability.StructuredLogger on go.uber.org/zap.
package zap

import (
	"context"
	"strings"

	ubzap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/theory-cloud/hosttheory/pkg/observability"
	"github.com/theory-cloud/hosttheory/pkg/sanitization"
)

// Config controls the underlying zap logger when no prebuilt logger is
// supplied.
type Config struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Encoding is json or console. Empty means json.
	Encoding string
}

type Option func(*loggerOptions)

type loggerOptions struct {
	zapLogger *ubzap.Logger
	sanitizer observability.SanitizerFunc
}

// WithZapLogger supplies a prebuilt zap logger instead of building one from
// Config.
func WithZapLogger(logger *ubzap.Logger) Option {
	return func(opts *loggerOptions) {
		opts.zapLogger = logger
	}
}

func WithSanitizer(fn observability.SanitizerFunc) Option {
	return func(opts *loggerOptions) {
		opts.sanitizer = fn
	}
}

// Logger adapts zap to the StructuredLogger surface. Derived loggers share
// the same zap core.
type Logger struct {
	log      *ubzap.Logger
	fields   map[string]any
	sanitize observability.SanitizerFunc
}

var _ observability.StructuredLogger = (*Logger)(nil)

func NewLogger(config Config, options ...Option) (observability.StructuredLogger, error) {
	opts := &loggerOptions{
		sanitizer: sanitization.SanitizeFieldValue,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(opts)
	}

	base := opts.zapLogger
	if base == nil {
		built, err := buildZapLogger(config)
		if err != nil {
			return nil, err
		}
		base = built
	}

	return &Logger{
		log:      base,
		fields:   map[string]any{},
		sanitize: opts.sanitizer,
	}, nil
}

func buildZapLogger(config Config) (*ubzap.Logger, error) {
	level := zapcore.InfoLevel
	switch strings.ToLower(config.Level) {
	case "", "info":
		level = zapcore.InfoLevel
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	encoding := config.Encoding
	if encoding == "" {
		encoding = "json"
	}

	cfg := ubzap.Config{
		Level:            ubzap.NewAtomicLevelAt(level),
		Encoding:         encoding,
		EncoderConfig:    ubzap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return cfg.Build()
}

func (l *Logger) zapFields(fields []map[string]any) []ubzap.Field {
	merged := l.mergedFields(fields)
	out := make([]ubzap.Field, 0, len(merged))
	for k, v := range merged {
		out = append(out, ubzap.Any(k, v))
	}
	return out
}

func (l *Logger) mergedFields(fields []map[string]any) map[string]any {
	merged := make(map[string]any, len(l.fields)+4)
	for k, v := range l.fields {
		merged[k] = v
	}
	for _, m := range fields {
		for k, v := range m {
			merged[k] = v
		}
	}
	if l.sanitize != nil {
		for k, v := range merged {
			merged[k] = l.sanitize(k, v)
		}
	}
	return merged
}

func (l *Logger) Debug(message string, fields ...map[string]any) {
	l.log.Debug(message, l.zapFields(fields)...)
}

func (l *Logger) Info(message string, fields ...map[string]any) {
	l.log.Info(message, l.zapFields(fields)...)
}

func (l *Logger) Warn(message string, fields ...map[string]any) {
	l.log.Warn(message, l.zapFields(fields)...)
}

func (l *Logger) Error(message string, fields ...map[string]any) {
	l.log.Error(message, l.zapFields(fields)...)
}

func (l *Logger) WithField(key string, value any) observability.StructuredLogger {
	return l.WithFields(map[string]any{key: value})
}

func (l *Logger) WithFields(fields map[string]any) observability.StructuredLogger {
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{
		log:      l.log,
		fields:   merged,
		sanitize: l.sanitize,
	}
}

func (l *Logger) Flush(_ context.Context) error {
	return l.log.Sync()
}

func (l *Logger) Close() error {
	return l.log.Sync()
}
