package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/frontfrend/internal/workflow"
)

func TestExportFilesWritesAfterContent(t *testing.T) {
	dir := t.TempDir()
	files := []workflow.FileChange{
		{Path: "index.html", Before: "<div>", After: "<main>"},
		{Path: "src/css/site.css", After: "body{}"},
	}

	written, err := ExportFiles(dir, files)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "index.html"),
		filepath.Join(dir, "src", "css", "site.css"),
	}, written)

	data, err := os.ReadFile(filepath.Join(dir, "src", "css", "site.css"))
	require.NoError(t, err)
	require.Equal(t, "body{}", string(data))
}

func TestExportFilesRejectsEscapes(t *testing.T) {
	for _, bad := range []string{"../etc/passwd", "/etc/passwd", "a/../../x", ""} {
		dir := t.TempDir()
		_, err := ExportFiles(dir, []workflow.FileChange{{Path: "ok.txt", After: "x"}, {Path: bad}})
		require.ErrorIs(t, err, ErrUnsafePath, bad)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Empty(t, entries, "nothing written when any path is unsafe")
	}
}
