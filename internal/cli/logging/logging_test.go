package logging

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/conduit-lang/tref/internal/cli/config"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LogConfig{Level: "info", Format: "json"}, false, &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("generated", zap.String("dir", "./shapes"))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "generated", entry["msg"])
	assert.Equal(t, "./shapes", entry["dir"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_ConsoleVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LogConfig{Level: "error", Format: "console"}, true, &buf)
	require.NoError(t, err)

	logger.Debug("extracting")
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "extracting")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud", Format: "console"}, false, nil)
	assert.Error(t, err)

	assert.NotNil(t, MustNew(config.LogConfig{Level: "loud"}, false, nil))
}
