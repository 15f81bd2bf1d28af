package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jask/frontfrend/internal/workflow"
)

// ErrUnsafePath is returned for result paths that would land outside the export dir.
var ErrUnsafePath = errors.New("unsafe export path")

// ExportFiles writes the improved version of every file under dir and
// returns the written paths. Nothing is written if any path is unsafe.
func ExportFiles(dir string, files []workflow.FileChange) ([]string, error) {
	targets := make([]string, len(files))
	for i, f := range files {
		target, err := exportPath(dir, f.Path)
		if err != nil {
			return nil, err
		}
		targets[i] = target
	}

	written := make([]string, 0, len(files))
	for i, f := range files {
		if err := os.MkdirAll(filepath.Dir(targets[i]), 0o755); err != nil {
			return written, fmt.Errorf("export %s: %w", f.Path, err)
		}
		if err := os.WriteFile(targets[i], []byte(f.After), 0o644); err != nil {
			return written, fmt.Errorf("export %s: %w", f.Path, err)
		}
		written = append(written, targets[i])
	}
	return written, nil
}

func exportPath(dir, name string) (string, error) {
	if name == "" || filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return filepath.Join(dir, clean), nil
}
