package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, err := NewLogger(Config{Level: "debug", Format: "json", OutputPath: path, Service: "dashboard"})
	require.NoError(t, err)
	logger.Debug("workbook loaded", zap.Int("kinds", 9))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "workbook loaded", entry["msg"])
	assert.Equal(t, "dashboard", entry["service"])
	assert.EqualValues(t, 9, entry["kinds"])
}

func TestNewLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(Config{Level: "verbose", OutputPath: filepath.Join(t.TempDir(), "x.log")})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestNewDefaultLogger(t *testing.T) {
	assert.NotNil(t, NewDefaultLogger("dashboard"))
}
