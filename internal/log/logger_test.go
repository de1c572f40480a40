package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/smartplan/internal/errors"
)

func newBufferLogger(buf *bytes.Buffer, level Level) *Logger {
	return New(Config{
		Level:          level,
		Format:         FormatJSON,
		Output:         buf,
		ServiceName:    "smartplan",
		ServiceVersion: "test",
	})
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	return entry
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"Warning", LevelWarn},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat("console"))
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatJSON, ParseFormat("unknown"))
	assert.Equal(t, "text", FormatText.String())
}

func TestLoggerAddsServiceAttributes(t *testing.T) {
	var buf bytes.Buffer
	newBufferLogger(&buf, LevelInfo).Info("plan created", "tasks", 6)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "plan created", entry["msg"])
	assert.Equal(t, "smartplan", entry["service"])
	assert.Equal(t, "test", entry["version"])
	assert.EqualValues(t, 6, entry["tasks"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelWarn)

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
	logger.Debug("also dropped")
	assert.NotContains(t, buf.String(), "also dropped")
}

func TestWithErrorPlannerError(t *testing.T) {
	var buf bytes.Buffer
	err := errors.Wrap(errors.ErrCodeCatalogUnreadable, "catalog unreadable", fmt.Errorf("permission denied")).
		WithSuggestion("check the path")

	newBufferLogger(&buf, LevelInfo).WithError(err).Error("startup failed")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "CATALOG-001", entry["error_code"])
	assert.Equal(t, "catalog unreadable", entry["error"])
	assert.Equal(t, "permission denied", entry["cause"])
	assert.NotNil(t, entry["suggestions"])
}

func TestWithErrorPlainAndNil(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelInfo)

	assert.Same(t, logger, logger.WithError(nil))

	logger.WithError(fmt.Errorf("plain failure")).Error("failed")
	entry := decodeLine(t, &buf)
	assert.Equal(t, "plain failure", entry["error"])
	assert.Nil(t, entry["error_code"])
}

func TestWithContextAddsCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelInfo)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})

	ctx := ContextWithRequestID(context.Background(), "req-123")
	ctx = trace.ContextWithSpanContext(ctx, sc)

	logger.WithContext(ctx).Info("handled")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
}

func TestWithContextEmpty(t *testing.T) {
	logger := Discard()
	assert.Same(t, logger, logger.WithContext(context.Background()))
}

func TestLogErrorSkipsNil(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelInfo)
	logger.LogError(context.Background(), "ignored", nil)
	assert.Empty(t, buf.String())

	logger.LogError(context.Background(), "plan failed", errors.NewEmptyTemplateError("event"))
	entry := decodeLine(t, &buf)
	assert.Equal(t, "plan failed", entry["msg"])
	assert.Equal(t, "PLAN-006", entry["error_code"])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "héé...", Truncate("hééllo", 3))
}

func TestDefaultLoggerLifecycle(t *testing.T) {
	original := defaultLogger
	defer func() { defaultLogger = original }()

	defaultLogger = nil
	first := DefaultLogger()
	require.NotNil(t, first)
	assert.Same(t, first, DefaultLogger())

	custom := Discard()
	SetDefaultLogger(custom)
	assert.Same(t, custom, DefaultLogger())
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Format: FormatText, Output: &buf})
	logger.Debug("catalog loaded", "categories", 5)
	assert.Contains(t, buf.String(), "msg=\"catalog loaded\"")
	assert.Contains(t, buf.String(), "categories=5")
}
