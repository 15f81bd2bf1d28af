// Package logging builds the zap loggers used by the TUI and the headless
// commands. The TUI owns the terminal, so it logs to a file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jask/frontfrend/internal/config"
)

// Stderr is the output path for headless commands.
const Stderr = "stderr"

// New returns a production JSON logger writing to path at level.
// verbose forces debug.
func New(path, level string, verbose bool) (*zap.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	if path == "" {
		path = Stderr
	}
	if path != Stderr && path != "stdout" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("log dir: %w", err)
		}
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{path}
	zc.ErrorOutputPaths = []string{path}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Sampling = nil
	return zc.Build()
}

// FromConfig builds the TUI logger from cfg.Log.
func FromConfig(cfg config.LogConfig, verbose bool) (*zap.Logger, error) {
	return New(cfg.Path, cfg.Level, verbose)
}

func parseLevel(s string) (zapcore.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return lvl, fmt.Errorf("log level %q: %w", s, err)
	}
	return lvl, nil
}
