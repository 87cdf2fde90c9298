package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		want  slog.Level
		valid bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"Error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			level, ok := ParseLevel(tc.name)
			assert.Equal(t, tc.want, level)
			assert.Equal(t, tc.valid, ok)
		})
	}
}

func TestSetupFiltersBelowLevel(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &TestLogBuffer{}
	l := setup("warn", buf)

	l.Info("hidden")
	l.Warn("shown", slog.String("component", "test"))
	slog.Error("via default")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "shown", entries[0]["msg"])
	assert.Equal(t, "test", entries[0]["component"])
	assert.Equal(t, "via default", entries[1]["msg"])
}

func TestContextLogger(t *testing.T) {
	fallback, _ := GetTestLogger(t)
	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))

	scoped, buf := GetTestLogger(t)
	ctx := WithLogger(context.Background(), scoped)
	ctx = WithTraceID(ctx, "trace-123")

	assert.Equal(t, "trace-123", TraceIDFromContext(ctx))
	FromContextOrDefault(ctx, fallback).Info("request handled")

	AssertLogContains(t, buf, `"trace_id":"trace-123"`)
	AssertLogContains(t, buf, "request handled")

	assert.Empty(t, TraceIDFromContext(context.Background()))
}
