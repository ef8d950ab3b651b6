package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestWithContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := Get()
	defaultLogger = New(&buf, "info", "json")
	t.Cleanup(func() { defaultLogger = prev })

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithActorID(ctx, "admin-7")
	WithContext(ctx).Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "admin-7", line["actor_id"])
	assert.Equal(t, "hello", line["msg"])
}
