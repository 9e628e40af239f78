package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warn"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestLogger_JSONOutputIncludesFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{Level: LevelDebug, Format: "json", Output: &buf})

	log.WithComponent("lifecycle").Info(context.Background(), "phase complete", "phase", "enter", "tasks", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "phase complete", entry["msg"])
	assert.Equal(t, "enter", entry["phase"])
	assert.Equal(t, "lifecycle", entry["component"])
	assert.Equal(t, float64(3), entry["tasks"])
}

func TestLogger_ErrorFieldAttached(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{Level: LevelDebug, Format: "json", Output: &buf})

	log.Error(context.Background(), errors.New("boom"), "failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["error"])
}

func TestLogger_LevelFiltersOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{Level: LevelWarn, Format: "text", Output: &buf})

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "hidden too")
	assert.Zero(t, buf.Len())

	log.Warn(context.Background(), nil, "visible")
	assert.NotZero(t, buf.Len())
}

func TestLogger_WithAccumulatesFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{Level: LevelInfo, Format: "json", Output: &buf})

	log.With("nav", "abc123").Info(context.Background(), "queued")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc123", entry["nav"])
}
