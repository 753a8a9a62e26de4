package zap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	ubzap "go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func newObservedLogger(t *testing.T) (*Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger, err := NewLogger(Config{}, WithZapLogger(ubzap.New(core)))
	require.NoError(t, err)
	return logger.(*Logger), logs
}

func TestLogger_WritesThroughZap(t *testing.T) {
	logger, logs := newObservedLogger(t)

	logger.Info("host started", map[string]any{"app": "ordersvc"})

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "host started", entries[0].Message)
	require.Equal(t, zapcore.InfoLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	require.Equal(t, "ordersvc", fields["app"])
}

func TestLogger_Levels(t *testing.T) {
	logger, logs := newObservedLogger(t)

	logger.Debug("d")
	logger.Warn("w")
	logger.Error("e")

	entries := logs.All()
	require.Len(t, entries, 3)
	require.Equal(t, zapcore.DebugLevel, entries[0].Level)
	require.Equal(t, zapcore.WarnLevel, entries[1].Level)
	require.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestLogger_WithFieldsBindsToDerived(t *testing.T) {
	logger, logs := newObservedLogger(t)

	derived := logger.WithField("host_id", "01H").WithFields(map[string]any{"env": "staging"})
	derived.Info("msg")
	logger.Info("bare")

	entries := logs.All()
	require.Len(t, entries, 2)

	bound := entries[0].ContextMap()
	require.Equal(t, "01H", bound["host_id"])
	require.Equal(t, "staging", bound["env"])

	require.Empty(t, entries[1].ContextMap())
}

func TestLogger_SanitizesFields(t *testing.T) {
	logger, logs := newObservedLogger(t)

	logger.Info("connecting", map[string]any{"password": "hunter2"})

	fields := logs.All()[0].ContextMap()
	require.Equal(t, "[REDACTED]", fields["password"])
}

func TestNewLogger_BuildsFromConfig(t *testing.T) {
	logger, err := NewLogger(Config{Level: "debug", Encoding: "console"})
	require.NoError(t, err)
	require.NotNil(t, logger)
	// Sync against stderr can legitimately fail on some platforms.
	_ = logger.Flush(context.Background())
}
