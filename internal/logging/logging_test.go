package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jask/frontfrend/internal/config"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "frontfrend.log")
	log, err := FromConfig(config.LogConfig{Path: path, Level: "warn"}, false)
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("kept", zap.String("repo", "acme/site"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "dropped")
	require.Contains(t, string(data), `"msg":"kept"`)
	require.Contains(t, string(data), `"repo":"acme/site"`)
}

func TestVerboseForcesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	log, err := New(path, "error", true)
	require.NoError(t, err)
	require.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestBadLevel(t *testing.T) {
	_, err := New(Stderr, "loud", false)
	require.Error(t, err)
}
