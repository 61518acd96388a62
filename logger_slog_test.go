package authgate_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/goliatone/go-authgate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := authgate.NewSlogLoggerFor(&buf, "info", "json")

	logger.Debug("hidden %d", 1)
	logger.Info("login ok for %q", "johndoe")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, `login ok for "johndoe"`, entry["msg"])
	assert.Equal(t, "authgate", entry["component"])
}

func TestSlogLogger_TextLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := authgate.NewSlogLoggerFor(&buf, "warn", "text")

	logger.Info("skip")
	logger.Warn("careful")
	logger.Error("broken: %v", "disk")

	out := buf.String()
	assert.NotContains(t, out, "skip")
	assert.Contains(t, out, "careful")
	assert.Contains(t, out, "broken: disk")
	assert.NotNil(t, logger.Slog())
}
