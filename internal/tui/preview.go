package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jask/frontfrend/internal/diff"
	"github.com/jask/frontfrend/internal/flow"
	"github.com/jask/frontfrend/internal/workflow"
)

type previewTab int

const (
	tabImprovements previewTab = iota
	tabCode
	tabLive
	tabMetrics
	tabCount
)

var tabTitles = [tabCount]string{"Improvements", "Code Changes", "Live Preview", "Metrics"}

func (a *App) loadResults(res workflow.Results, html string, previewErr error) {
	a.diffs = make([]*diff.FileDiff, 0, len(res.Files))
	for _, f := range res.Files {
		a.diffs = append(a.diffs, diff.Compute(f.Path, f.Before, f.After))
	}
	a.improvementsDoc = ""
	a.livePreview = html
	a.previewErr = previewErr
	a.fileIdx = 0
	a.setTab(tabImprovements)
}

func (a *App) setTab(t previewTab) {
	a.tab = (t + tabCount) % tabCount
	a.resize(a.width, a.height)
	a.view.GotoTop()
}

func (a *App) updatePreview(action string) (tea.Model, tea.Cmd) {
	switch action {
	case actTabNext:
		a.setTab(a.tab + 1)
	case actTabPrev:
		a.setTab(a.tab - 1)
	case actNext, actPrev:
		if len(a.diffs) > 0 {
			delta := 1
			if action == actPrev {
				delta = -1
			}
			a.fileIdx = (a.fileIdx + delta + len(a.diffs)) % len(a.diffs)
			a.refreshView()
			a.view.GotoTop()
		}
	case actDiffMode:
		a.unified = !a.unified
		a.refreshView()
	case actPageDown:
		a.view.SetYOffset(a.view.YOffset + a.view.Height)
	case actPageUp:
		a.view.SetYOffset(a.view.YOffset - a.view.Height)
	case actExport:
		return a, a.exportCmd()
	case actCreatePR:
		if err := a.session.CreatePR(); err != nil {
			return a, a.notify(err.Error(), true)
		}
		a.log.Info("pull request created", zap.String("repo", a.session.RepoURL))
		return a, a.notify("Pull request created", false)
	case actBack:
		if err := a.session.Back(); err != nil {
			return a, a.notify(err.Error(), true)
		}
		return a, a.form.focus()
	}
	return a, nil
}

// refreshView fills the viewport with the active tab's content.
func (a *App) refreshView() {
	var content string
	switch a.tab {
	case tabImprovements:
		if a.improvementsDoc == "" {
			a.improvementsDoc = renderMarkdown(improvementsMarkdown(a.session.Results), a.view.Width)
		}
		content = a.improvementsDoc
	case tabCode:
		if len(a.diffs) == 0 {
			content = mutedStyle.Render("No files changed.")
			break
		}
		content = renderDiff(a.diffs[a.fileIdx], a.unified, a.view.Width)
	case tabLive:
		content = a.livePreviewContent()
	case tabMetrics:
		content = a.metricsContent()
	}
	a.view.SetContent(content)
}

func improvementsMarkdown(res *workflow.Results) string {
	if res == nil || len(res.Improvements) == 0 {
		return "_No improvements were reported._"
	}
	var b strings.Builder
	b.WriteString("## Applied improvements\n\n")
	for _, imp := range res.Improvements {
		b.WriteString("- ")
		if imp.Type != "" {
			fmt.Fprintf(&b, "**%s**: ", imp.Type)
		}
		b.WriteString(imp.Description)
		if imp.Impact != "" {
			fmt.Fprintf(&b, " _(impact: %s)_", imp.Impact)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) livePreviewContent() string {
	if a.previewErr != nil {
		return warnStyle.Render("Live preview unavailable: " + a.previewErr.Error())
	}
	if strings.TrimSpace(a.livePreview) == "" {
		return mutedStyle.Render("The backend returned an empty preview.")
	}
	header := mutedStyle.Render(fmt.Sprintf("HTML document, %d bytes", len(a.livePreview)))
	return header + "\n\n" + lipgloss.NewStyle().Width(a.view.Width).Render(a.livePreview)
}

func (a *App) metricsContent() string {
	var total diff.Stats
	for _, d := range a.diffs {
		s := d.Stats()
		total.Added += s.Added
		total.Removed += s.Removed
	}
	improvements := 0
	if a.session.Results != nil {
		improvements = len(a.session.Results.Improvements)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-16s %d\n", "Files changed", len(a.diffs))
	fmt.Fprintf(&b, "%-16s %d\n", "Improvements", improvements)
	fmt.Fprintf(&b, "%-16s %s\n", "Lines added", addedStyle.Render(fmt.Sprintf("+%d", total.Added)))
	fmt.Fprintf(&b, "%-16s %s\n", "Lines removed", removedStyle.Render(fmt.Sprintf("-%d", total.Removed)))
	if len(a.diffs) > 0 {
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render("Per file"))
		b.WriteString("\n")
		for _, d := range a.diffs {
			s := d.Stats()
			fmt.Fprintf(&b, "  %s %s %s\n", fit(d.Path, 40),
				addedStyle.Render(fmt.Sprintf("+%-4d", s.Added)),
				removedStyle.Render(fmt.Sprintf("-%d", s.Removed)))
		}
	}
	return b.String()
}

func renderDiff(fd *diff.FileDiff, unified bool, width int) string {
	if len(fd.Hunks) == 0 {
		return mutedStyle.Render("No changes in " + fd.Path)
	}
	if unified {
		return renderUnified(fd, width)
	}
	return renderSplit(fd, width)
}

func renderUnified(fd *diff.FileDiff, width int) string {
	lines := strings.Split(strings.TrimRight(fd.Unified(), "\n"), "\n")
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "@@"):
			lines[i] = hunkStyle.Render(fit(l, width))
		case strings.HasPrefix(l, "+++"), strings.HasPrefix(l, "---"):
			lines[i] = mutedStyle.Render(fit(l, width))
		case strings.HasPrefix(l, "+"):
			lines[i] = addedStyle.Render(fit(l, width))
		case strings.HasPrefix(l, "-"):
			lines[i] = removedStyle.Render(fit(l, width))
		default:
			lines[i] = fit(l, width)
		}
	}
	return strings.Join(lines, "\n")
}

func renderSplit(fd *diff.FileDiff, width int) string {
	col := max((width-3)/2, 10)
	var b strings.Builder
	b.WriteString(mutedStyle.Render(fit("Before", col)) + " │ " + mutedStyle.Render(fit("After", col)))
	b.WriteString("\n")
	for _, row := range fd.SideBySide() {
		b.WriteString(splitCell(row.Left, row.Left != nil && row.Left.Type == diff.LineRemoved, col, true))
		b.WriteString(" │ ")
		b.WriteString(splitCell(row.Right, row.Right != nil && row.Right.Type == diff.LineAdded, col, false))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func splitCell(l *diff.Line, changed bool, width int, left bool) string {
	if l == nil {
		return strings.Repeat(" ", width)
	}
	n := l.New
	if left {
		n = l.Old
	}
	cell := fit(fmt.Sprintf("%4d %s", n, l.Content), width)
	switch {
	case changed && left:
		return removedStyle.Render(cell)
	case changed:
		return addedStyle.Render(cell)
	}
	return cell
}

func (a *App) renderTabs() string {
	parts := make([]string, 0, tabCount)
	for i, title := range tabTitles {
		if previewTab(i) == a.tab {
			parts = append(parts, activeTabStyle.Render(title))
		} else {
			parts = append(parts, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a *App) viewPreview() string {
	var b strings.Builder
	b.WriteString(a.renderTabs())
	b.WriteString("\n\n")
	if a.tab != tabCode {
		b.WriteString(a.view.View())
		return b.String()
	}

	mode := "side by side"
	if a.unified {
		mode = "unified"
	}
	var title string
	if len(a.diffs) > 0 {
		d := a.diffs[a.fileIdx]
		s := d.Stats()
		title = fmt.Sprintf("%s  %s %s  %s", d.Path,
			addedStyle.Render(fmt.Sprintf("+%d", s.Added)),
			removedStyle.Render(fmt.Sprintf("-%d", s.Removed)),
			mutedStyle.Render(mode))
	}
	right := title + "\n" + a.view.View()
	return b.String() + lipgloss.JoinHorizontal(lipgloss.Top, a.renderFileList(), "  ", right)
}

func (a *App) renderFileList() string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Files (%d)", len(a.diffs))))
	for i, d := range a.diffs {
		b.WriteString("\n")
		name := fit(d.Path, fileListCol-2)
		if d.IsNew {
			name = fit(d.Path+" (new)", fileListCol-2)
		}
		if i == a.fileIdx {
			b.WriteString(focusStyle.Render("▸ " + name))
		} else {
			b.WriteString("  " + name)
		}
	}
	return lipgloss.NewStyle().Width(fileListCol).Render(b.String())
}

func (a *App) updateSuccess(action string) (tea.Model, tea.Cmd) {
	if action != actStartNew {
		return a, nil
	}
	a.session.StartNew()
	a.repoInput.Reset()
	a.form = newPrefsForm(a.defaults)
	a.resize(a.width, a.height)
	a.diffs = nil
	a.improvementsDoc = ""
	a.livePreview = ""
	a.previewErr = nil
	a.messages = nil
	a.tab = tabImprovements
	return a, a.loadRecentCmd()
}

// prBranch is the branch name shown on the mock pull request.
const prBranch = "frontfrend/ui-improvements"

func (a *App) viewSuccess() string {
	url := strings.TrimRight(a.session.RepoURL, "/")
	files := 0
	if a.session.Results != nil {
		files = len(a.session.Results.Files)
	}
	var b strings.Builder
	b.WriteString(successStyle.Bold(true).Render("✔ Pull request created"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Your improvements are ready for review."))
	b.WriteString("\n\n")

	rows := [][2]string{
		{"Repository", flow.RepoName(url)},
		{"Branch", prBranch},
		{"Files changed", fmt.Sprintf("%d", files)},
		{"Link", url + "/pulls"},
	}
	var details strings.Builder
	for i, r := range rows {
		if i > 0 {
			details.WriteString("\n")
		}
		fmt.Fprintf(&details, "%s %s", mutedStyle.Render(fmt.Sprintf("%-14s", r[0])), r[1])
	}
	b.WriteString(panelStyle.Render(details.String()))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("Press n to improve another repository."))
	return b.String()
}
