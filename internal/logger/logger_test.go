package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	log, err := New(Config{Level: "debug", Encoding: "xml", OutputPath: path})
	require.NoError(t, err)

	log.Debug("turn resolved", zap.Int("turn", 3))
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(raw))), &line))
	assert.Equal(t, "DEBUG", line["level"])
	assert.Equal(t, "turn resolved", line["msg"])
	assert.EqualValues(t, 3, line["turn"])
	assert.Contains(t, line, "timestamp")
}

func TestNew_BadLevelFallsBack(t *testing.T) {
	log, err := New(Config{Level: "chatty"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.InfoLevel))
	assert.False(t, log.Core().Enabled(zap.DebugLevel))
}
