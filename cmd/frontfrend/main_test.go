package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	onStatus func()
	api      string
	config   string
	history  string
	export   string
}

func newFixture(t *testing.T, status string) *fixture {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GITHUB_TOKEN", "")

	f := &fixture{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/workflow/start", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"message":"started"}`)
	})
	mux.HandleFunc("GET /api/workflow/status", func(w http.ResponseWriter, r *http.Request) {
		if f.onStatus != nil {
			f.onStatus()
		}
		_, _ = fmt.Fprint(w, status)
	})
	mux.HandleFunc("GET /api/workflow/results", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"improvements":["Raised contrast on buttons"],
			"files":[{"path":"index.html","before":"<div>\n","after":"<main>\n"}]}`)
	})
	mux.HandleFunc("GET /api/live_preview", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "<html>preview</html>")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	f.api = srv.URL
	f.config = filepath.Join(dir, "config.toml")
	f.history = filepath.Join(dir, "history.db")
	f.export = filepath.Join(dir, "out")
	cfg := fmt.Sprintf(`[poll]
interval = "1ms"

[history]
enabled = true
path = %q

[log]
level = "error"
`, f.history)
	require.NoError(t, os.WriteFile(f.config, []byte(cfg), 0o600))
	return f
}

func (f *fixture) exec(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return f.execContext(t, context.Background(), args...)
}

func (f *fixture) execContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", f.config, "--api", f.api}, args...))
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestRunPrintsSummaryAndExports(t *testing.T) {
	f := newFixture(t, `{"status":"completed","messages":["done"]}`)

	out, err := f.exec(t, "run", "--repo", "https://github.com/acme/site",
		"--improve", "accessibility, performance", "--export", f.export, "--diff")
	require.NoError(t, err)
	require.Contains(t, out, "Improvements for site")
	require.Contains(t, out, "Raised contrast on buttons")
	require.Contains(t, out, "index.html")
	require.Contains(t, out, "+<main>")

	data, err := os.ReadFile(filepath.Join(f.export, "site", "index.html"))
	require.NoError(t, err)
	require.Equal(t, "<main>\n", string(data))

	out, err = f.exec(t, "history")
	require.NoError(t, err)
	require.Contains(t, out, "https://github.com/acme/site")
	require.Contains(t, out, "completed")
}

func TestRunFailsOnJobError(t *testing.T) {
	f := newFixture(t, `{"status":"error","messages":[],"message":"clone failed"}`)

	_, err := f.exec(t, "run", "--repo", "https://github.com/acme/site")
	require.ErrorContains(t, err, "clone failed")

	out, err := f.exec(t, "history")
	require.NoError(t, err)
	require.Contains(t, out, "error")

	out, err = f.exec(t, "history", "--clear")
	require.NoError(t, err)
	require.Contains(t, out, "removed 1 runs")
}

func TestInterruptedRunIsRecorded(t *testing.T) {
	f := newFixture(t, `{"status":"processing","messages":[]}`)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.onStatus = cancel

	_, err := f.execContext(t, ctx, "run", "--repo", "https://github.com/acme/site")
	require.ErrorIs(t, err, context.Canceled)

	out, err := f.exec(t, "history")
	require.NoError(t, err)
	require.Contains(t, out, "error")
	require.Contains(t, out, "context canceled")
	require.NotContains(t, out, "processing")
}

func TestRunRejectsBadInput(t *testing.T) {
	f := newFixture(t, `{"status":"completed","messages":[]}`)

	_, err := f.exec(t, "run", "--repo", "https://gitlab.com/acme/site")
	require.ErrorContains(t, err, "GitHub")

	_, err = f.exec(t, "run", "--repo", "https://github.com/acme/site", "--theme", "drak")
	require.ErrorContains(t, err, `did you mean "dark"`)
}

func TestPreviewWritesFile(t *testing.T) {
	f := newFixture(t, `{"status":"completed","messages":[]}`)

	out, err := f.exec(t, "preview")
	require.NoError(t, err)
	require.Equal(t, "<html>preview</html>", out)

	path := filepath.Join(t.TempDir(), "preview.html")
	_, err = f.exec(t, "preview", "--out", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "<html>preview</html>", string(data))
}
