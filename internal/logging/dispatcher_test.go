package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	buf.Reset()
	return entry
}

func TestDispatcherLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(NewZerolog(&buf, "debug", "dispatcher"))

	dl.Debug("handling event", "command", "frame", "size", 42)
	entry := decodeLine(t, &buf)
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "handling event", entry["message"])
	assert.Equal(t, "frame", entry["command"])
	assert.Equal(t, float64(42), entry["size"])
	assert.Equal(t, "dispatcher", entry["component"])

	dl.Info("ready")
	assert.Equal(t, "info", decodeLine(t, &buf)["level"])

	dl.Error("event failed", "error", "boom")
	entry = decodeLine(t, &buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "boom", entry["error"])
}

func TestNewZerolog_Level(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(NewZerolog(&buf, "WARN", "db"))
	dl.Info("hidden")
	assert.Empty(t, buf.String())

	buf.Reset()
	dl = NewDispatcherLogger(NewZerolog(&buf, "nonsense", "db"))
	dl.Debug("hidden")
	dl.Info("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.NotContains(t, buf.String(), "hidden")
}
