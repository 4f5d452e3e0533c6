package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.log")

	logger, err := Build(Config{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)
	logger.Named("engine").Debug("quote computed", zap.String("product", "kayak"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"logger":"engine"`)
	assert.Contains(t, string(data), `"product":"kayak"`)
}

func TestBuildRespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.log")

	logger, err := Build(Config{Level: "warn", Format: "json", Output: path})
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestBuildFailsOnUnwritableOutput(t *testing.T) {
	_, err := Build(Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "engine.log")})
	assert.Error(t, err)
}

func TestBuildRejectsUnknownSettings(t *testing.T) {
	_, err := Build(Config{Level: "loud"})
	assert.ErrorContains(t, err, "log level")

	_, err = Build(Config{Format: "xml"})
	assert.ErrorContains(t, err, "xml")
}

func TestInitializeKeepsLoggerOnError(t *testing.T) {
	before := Logger
	require.Error(t, Initialize(Config{Level: "loud"}))
	assert.Same(t, before, Logger)
	assert.NotNil(t, Named("engine"))
}
