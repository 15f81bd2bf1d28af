package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FRONTFREND_CONFIG", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:5001", cfg.API.BaseURL)
	require.Equal(t, 15*time.Second, cfg.API.Timeout)
	require.Equal(t, "GITHUB_TOKEN", cfg.API.TokenEnv)
	require.Equal(t, 2*time.Second, cfg.Poll.Interval)
	require.InDelta(t, 5.0, cfg.Poll.Step, 0.001)
	require.Equal(t, time.Second, cfg.UI.SubmitDelay)
	require.Equal(t, 4*time.Second, cfg.UI.ToastTTL)
	require.True(t, cfg.History.Enabled)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	data := []byte(`
[api]
base_url = "http://backend.local:9000/"

[poll]
interval = "500ms"

[history]
enabled = false
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	t.Setenv("FRONTFREND_POLL_STEP", "10")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://backend.local:9000", cfg.API.BaseURL, "trailing slash trimmed")
	require.Equal(t, 500*time.Millisecond, cfg.Poll.Interval)
	require.InDelta(t, 10.0, cfg.Poll.Step, 0.001)
	require.False(t, cfg.History.Enabled)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.API.BaseURL = "http://example.test"
	cfg.Poll.Interval = 3 * time.Second
	require.NoError(t, Save(path, cfg))

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://example.test", reloaded.API.BaseURL)
	require.Equal(t, 3*time.Second, reloaded.Poll.Interval)
}
