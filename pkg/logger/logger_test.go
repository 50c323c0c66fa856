package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelInfo, Service: "portal-test"})

	log.With(StudentID("STU-001")).Info("history generated", SemesterKey("sem3"), Err(errors.New("boom")))

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "portal-test", entry.Service)
	assert.Equal(t, "history generated", entry.Message)
	assert.Equal(t, "STU-001", entry.Fields["student_id"])
	assert.Equal(t, "sem3", entry.Fields["semester"])
	assert.Equal(t, "boom", entry.Fields["error"])
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelWarn})

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")
	log.Error("shown")

	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

func TestLogger_WithDoesNotLeakFields(t *testing.T) {
	var buf bytes.Buffer
	parent := New(Options{Output: &buf})
	_ = parent.With(TeacherID("FAC-001"))

	parent.Info("plain")
	assert.NotContains(t, buf.String(), "FAC-001")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, LevelError, ParseLevel("ERROR"))
	assert.Equal(t, LevelInfo, ParseLevel("chatty"))
}

func TestContextPropagation(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf}).WithRequestID("req-42")

	ctx := WithContext(context.Background(), log)
	FromContext(ctx).Info("handled")

	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
	assert.NotNil(t, FromContext(context.Background()))
}

func TestAttrs(t *testing.T) {
	attrs := Attrs(StudentID("STU-002"), Latency(0))
	require.Len(t, attrs, 2)
	a, ok := attrs[0].(slog.Attr)
	require.True(t, ok)
	assert.Equal(t, "student_id", a.Key)
}
