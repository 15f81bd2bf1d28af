// Package diff turns a file's before/after content into line hunks using
// sergi/go-diff, for the code comparison view and run summaries.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineType marks a diff line.
type LineType int

const (
	LineContext LineType = iota
	LineAdded
	LineRemoved
)

// Line is one line of a hunk. Old/New are 1-based; 0 means absent on that side.
type Line struct {
	Type    LineType
	Old     int
	New     int
	Content string
}

// Hunk is a group of changes with surrounding context.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// FileDiff is the comparison of one file.
type FileDiff struct {
	Path  string
	Hunks []Hunk
	IsNew bool
}

// Stats counts changed lines.
type Stats struct {
	Added   int
	Removed int
}

const defaultContext = 3

// Compute diffs before against after with three lines of context.
func Compute(path, before, after string) *FileDiff {
	return ComputeContext(path, before, after, defaultContext)
}

// ComputeContext is Compute with a custom context size.
func ComputeContext(path, before, after string, context int) *FileDiff {
	fd := &FileDiff{Path: path, IsNew: before == "" && after != ""}
	ops := lineOps(before, after)
	fd.Hunks = group(ops, context)
	return fd
}

// Stats totals added and removed lines across all hunks.
func (f *FileDiff) Stats() Stats {
	var s Stats
	for _, h := range f.Hunks {
		for _, l := range h.Lines {
			switch l.Type {
			case LineAdded:
				s.Added++
			case LineRemoved:
				s.Removed++
			}
		}
	}
	return s
}

// Unified renders the diff in unified format.
func (f *FileDiff) Unified() string {
	if len(f.Hunks) == 0 {
		return ""
	}
	var b strings.Builder
	old := "a/" + f.Path
	if f.IsNew {
		old = "/dev/null"
	}
	fmt.Fprintf(&b, "--- %s\n+++ b/%s\n", old, f.Path)
	for _, h := range f.Hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		for _, l := range h.Lines {
			b.WriteString(prefix(l.Type))
			b.WriteString(l.Content)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func prefix(t LineType) string {
	switch t {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	default:
		return " "
	}
}

// lineBase keeps line ids in the supplementary planes so every id is a valid
// rune and survives go-diff's conversion of rune runs back to strings.
const lineBase = 0x10000

// lineOps diffs line by line. Each distinct line becomes one rune, so go-diff
// compares whole lines and never matches fragments of two different ones.
func lineOps(before, after string) []Line {
	var lines []string
	ids := make(map[string]rune)
	encode := func(text string) []rune {
		split := splitLines(text)
		out := make([]rune, len(split))
		for i, l := range split {
			id, ok := ids[l]
			if !ok {
				id = rune(lineBase + len(lines))
				ids[l] = id
				lines = append(lines, l)
			}
			out[i] = id
		}
		return out
	}
	a, b := encode(before), encode(after)

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	diffs := dmp.DiffMainRunes(a, b, false)

	var ops []Line
	oldLine, newLine := 1, 1
	for _, d := range diffs {
		for _, r := range d.Text {
			text := lines[r-lineBase]
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				ops = append(ops, Line{Type: LineContext, Old: oldLine, New: newLine, Content: text})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				ops = append(ops, Line{Type: LineRemoved, Old: oldLine, Content: text})
				oldLine++
			case diffmatchpatch.DiffInsert:
				ops = append(ops, Line{Type: LineAdded, New: newLine, Content: text})
				newLine++
			}
		}
	}
	return ops
}

// splitLines splits on newlines, dropping the empty tail after a final newline.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func group(ops []Line, context int) []Hunk {
	var hunks []Hunk
	var cur *Hunk
	lastChange := -1

	for i, op := range ops {
		if op.Type == LineContext {
			continue
		}
		if cur != nil && i-lastChange-1 <= 2*context {
			cur.Lines = append(cur.Lines, ops[lastChange+1:i+1]...)
			lastChange = i
			continue
		}
		if cur != nil {
			closeHunk(cur, ops, lastChange, context)
			hunks = append(hunks, *cur)
		}
		cur = &Hunk{Lines: append([]Line(nil), ops[max(i-context, 0):i+1]...)}
		lastChange = i
	}
	if cur != nil {
		closeHunk(cur, ops, lastChange, context)
		hunks = append(hunks, *cur)
	}
	for i := range hunks {
		count(&hunks[i])
	}
	return hunks
}

func closeHunk(h *Hunk, ops []Line, lastChange, context int) {
	end := min(lastChange+context, len(ops)-1)
	h.Lines = append(h.Lines, ops[lastChange+1:end+1]...)
}

func count(h *Hunk) {
	for _, l := range h.Lines {
		if l.Type != LineAdded {
			h.OldCount++
			if h.OldStart == 0 {
				h.OldStart = l.Old
			}
		}
		if l.Type != LineRemoved {
			h.NewCount++
			if h.NewStart == 0 {
				h.NewStart = l.New
			}
		}
	}
}

// Row pairs the two sides of a side-by-side view. A nil side is blank.
type Row struct {
	Left  *Line
	Right *Line
}

// SideBySide lays hunk lines out in two columns, pairing each run of
// removals with the run of additions that follows it.
func (f *FileDiff) SideBySide() []Row {
	var rows []Row
	for _, h := range f.Hunks {
		var removed, added []Line
		flush := func() {
			for i := 0; i < max(len(removed), len(added)); i++ {
				var r Row
				if i < len(removed) {
					r.Left = &removed[i]
				}
				if i < len(added) {
					r.Right = &added[i]
				}
				rows = append(rows, r)
			}
			removed, added = nil, nil
		}
		for _, l := range h.Lines {
			switch l.Type {
			case LineRemoved:
				if len(added) > 0 {
					flush()
				}
				removed = append(removed, l)
			case LineAdded:
				added = append(added, l)
			default:
				flush()
				l := l
				rows = append(rows, Row{Left: &l, Right: &l})
			}
		}
		flush()
	}
	return rows
}
