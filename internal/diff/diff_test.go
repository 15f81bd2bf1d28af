package diff

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeSingleHunk(t *testing.T) {
	before := "line1\nline2\nline3\n"
	after := "line1\nline2\nline2.5\nline3\n"

	fd := Compute("index.html", before, after)
	require.Len(t, fd.Hunks, 1)
	require.False(t, fd.IsNew)
	require.Equal(t, Stats{Added: 1}, fd.Stats())

	h := fd.Hunks[0]
	require.Equal(t, 1, h.OldStart)
	require.Equal(t, 3, h.OldCount)
	require.Equal(t, 1, h.NewStart)
	require.Equal(t, 4, h.NewCount)
}

func TestComputeIdenticalHasNoHunks(t *testing.T) {
	fd := Compute("a.css", "x\ny\n", "x\ny\n")
	require.Empty(t, fd.Hunks)
	require.Equal(t, Stats{}, fd.Stats())
	require.Empty(t, fd.Unified())
}

func TestDistantChangesSplitIntoHunks(t *testing.T) {
	var before, after []string
	for i := 0; i < 20; i++ {
		line := "l" + string(rune('a'+i))
		before = append(before, line)
		switch i {
		case 1:
			after = append(after, "changed-b")
		case 18:
			after = append(after, "changed-s")
		default:
			after = append(after, line)
		}
	}
	fd := Compute("f.txt", strings.Join(before, "\n")+"\n", strings.Join(after, "\n")+"\n")
	require.Len(t, fd.Hunks, 2)
	require.Equal(t, Stats{Added: 2, Removed: 2}, fd.Stats())
	require.Equal(t, 1, fd.Hunks[0].OldStart)
	require.Equal(t, 16, fd.Hunks[1].OldStart)

	out := fd.Unified()
	require.Contains(t, out, "-lb\n+changed-b\n")
	require.Contains(t, out, "-ls\n+changed-s\n")
	require.NotContains(t, out, " lb\n")
}

func TestWholeLinesAreCompared(t *testing.T) {
	var before, after []string
	for i := 1; i <= 30; i++ {
		line := fmt.Sprintf("row %d", i)
		before = append(before, line)
		if i == 12 {
			line = "row twelve"
		}
		after = append(after, line)
	}
	fd := Compute("rows.txt", strings.Join(before, "\n")+"\n", strings.Join(after, "\n")+"\n")
	require.Equal(t, Stats{Added: 1, Removed: 1}, fd.Stats())
	require.Len(t, fd.Hunks, 1)

	var removed, added []Line
	for _, l := range fd.Hunks[0].Lines {
		switch l.Type {
		case LineRemoved:
			removed = append(removed, l)
		case LineAdded:
			added = append(added, l)
		}
	}
	require.Equal(t, []Line{{Type: LineRemoved, Old: 12, Content: "row 12"}}, removed)
	require.Equal(t, []Line{{Type: LineAdded, New: 12, Content: "row twelve"}}, added)
	require.Equal(t, 9, fd.Hunks[0].OldStart)
}

func TestUnifiedFormat(t *testing.T) {
	fd := Compute("index.html", "<div>\n<h1>Hi</h1>\n</div>\n", "<header>\n<h1>Hi</h1>\n</header>\n")
	out := fd.Unified()
	require.True(t, strings.HasPrefix(out, "--- a/index.html\n+++ b/index.html\n@@ -1,3 +1,3 @@\n"), out)
	require.Contains(t, out, "-<div>\n")
	require.Contains(t, out, "+<header>\n")
	require.Contains(t, out, " <h1>Hi</h1>\n")
}

func TestNewFile(t *testing.T) {
	fd := Compute("new.css", "", "a\nb\n")
	require.True(t, fd.IsNew)
	require.Equal(t, Stats{Added: 2}, fd.Stats())
	require.True(t, strings.HasPrefix(fd.Unified(), "--- /dev/null\n"))
}

func TestSideBySidePairsReplacements(t *testing.T) {
	fd := Compute("a", "keep\nold1\nold2\nkeep2\n", "keep\nnew1\nkeep2\n")
	rows := fd.SideBySide()
	require.Len(t, rows, 4)

	require.Equal(t, "keep", rows[0].Left.Content)
	require.Equal(t, "keep", rows[0].Right.Content)

	require.Equal(t, "old1", rows[1].Left.Content)
	require.Equal(t, "new1", rows[1].Right.Content)

	require.Equal(t, "old2", rows[2].Left.Content)
	require.Nil(t, rows[2].Right)

	require.Equal(t, "keep2", rows[3].Left.Content)
}
