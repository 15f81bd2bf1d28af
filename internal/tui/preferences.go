package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/frontfrend/internal/flow"
	"github.com/jask/frontfrend/internal/prefs"
)

type formGroup int

const (
	groupImprovements formGroup = iota
	groupTheme
	groupPriority
	groupDetails
)

var groupTitles = map[formGroup]string{
	groupImprovements: "What would you like to improve?",
	groupTheme:        "Theme preference",
	groupPriority:     "Improvement priority",
	groupDetails:      "Additional details",
}

type formRow struct {
	group formGroup
	opt   prefs.Option
}

// prefsForm is the preferences step: checkboxes, two radio groups and a
// free-text box, navigated as one list of rows.
type prefsForm struct {
	value   prefs.Preferences
	rows    []formRow
	cursor  int
	details textarea.Model
}

func newPrefsForm(p prefs.Preferences) prefsForm {
	var rows []formRow
	for _, o := range prefs.ImprovementOptions {
		rows = append(rows, formRow{group: groupImprovements, opt: o})
	}
	for _, o := range prefs.ThemeOptions {
		rows = append(rows, formRow{group: groupTheme, opt: o})
	}
	for _, o := range prefs.PriorityOptions {
		rows = append(rows, formRow{group: groupPriority, opt: o})
	}
	rows = append(rows, formRow{group: groupDetails})

	ta := textarea.New()
	ta.Placeholder = "Any specific requirements or areas of focus…"
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetHeight(4)
	ta.SetValue(p.AdditionalDetails)
	ta.Blur()

	p.Improvements = append([]string(nil), p.Improvements...)
	return prefsForm{value: p, rows: rows, details: ta}
}

func (f *prefsForm) setWidth(w int) {
	f.details.SetWidth(max(w-4, 10))
}

func (f *prefsForm) onDetails() bool {
	return f.rows[f.cursor].group == groupDetails
}

// focus gives the details box the keyboard when the cursor is on it.
func (f *prefsForm) focus() tea.Cmd {
	if f.onDetails() {
		return f.details.Focus()
	}
	f.details.Blur()
	return nil
}

func (f *prefsForm) move(delta int) tea.Cmd {
	f.cursor = min(max(f.cursor+delta, 0), len(f.rows)-1)
	return f.focus()
}

// jump moves to the first row of the next or previous group, wrapping.
func (f *prefsForm) jump(forward bool) tea.Cmd {
	cur := f.rows[f.cursor].group
	n := int(groupDetails) + 1
	next := (int(cur) + n - 1) % n
	if forward {
		next = (int(cur) + 1) % n
	}
	for i, r := range f.rows {
		if int(r.group) == next {
			f.cursor = i
			break
		}
	}
	return f.focus()
}

func (f *prefsForm) toggle() {
	row := f.rows[f.cursor]
	switch row.group {
	case groupImprovements:
		f.value = f.value.Toggle(row.opt.ID)
	case groupTheme:
		f.value.Theme = row.opt.ID
	case groupPriority:
		f.value.Priority = row.opt.ID
	}
}

// Preferences returns the current selection including the details text.
func (f *prefsForm) Preferences() prefs.Preferences {
	p := f.value
	p.Improvements = append([]string{}, f.value.Improvements...)
	p.AdditionalDetails = strings.TrimSpace(f.details.Value())
	return p
}

func (f *prefsForm) selected(row formRow) bool {
	switch row.group {
	case groupImprovements:
		return f.value.Has(row.opt.ID)
	case groupTheme:
		return f.value.Theme == row.opt.ID
	case groupPriority:
		return f.value.Priority == row.opt.ID
	}
	return false
}

func (f *prefsForm) View() string {
	var b strings.Builder
	group := formGroup(-1)
	for i, row := range f.rows {
		if row.group != group {
			group = row.group
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(subtitleStyle.Render(groupTitles[group]))
			b.WriteString("\n")
		}
		if row.group == groupDetails {
			b.WriteString(f.details.View())
			b.WriteString("\n")
			continue
		}

		mark := checkMark(row.group == groupImprovements, f.selected(row))
		cursor := "  "
		label := row.opt.Label
		if i == f.cursor {
			cursor = focusStyle.Render("▸ ")
			label = focusStyle.Render(label)
		}
		fmt.Fprintf(&b, "%s%s %s  %s\n", cursor, mark, label, mutedStyle.Render(row.opt.Description))
	}
	return b.String()
}

func checkMark(checkbox, on bool) string {
	switch {
	case checkbox && on:
		return "[x]"
	case checkbox:
		return "[ ]"
	case on:
		return "(•)"
	}
	return "( )"
}

func (a *App) updatePrefs(action string, m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch action {
	case actSubmitForm:
		return a.submitPrefs()
	case actBack:
		if err := a.session.Back(); err != nil {
			return a, a.notify(err.Error(), true)
		}
		a.form.details.Blur()
		return a, a.repoInput.Focus()
	case actPrev:
		return a, a.form.move(-1)
	case actNext:
		return a, a.form.move(1)
	case actFieldNext, actFieldPrev:
		return a, a.form.jump(action == actFieldNext)
	case actToggle:
		a.form.toggle()
		return a, nil
	}
	if a.form.onDetails() {
		var cmd tea.Cmd
		a.form.details, cmd = a.form.details.Update(m)
		return a, cmd
	}
	return a, nil
}

// submitPrefs enters processing and starts a new workflow generation.
func (a *App) submitPrefs() (tea.Model, tea.Cmd) {
	p := a.form.Preferences()
	if err := p.Validate(); err != nil {
		return a, a.notify(err.Error(), true)
	}
	if err := a.session.SubmitPreferences(p); err != nil {
		return a, a.notify(err.Error(), true)
	}
	a.form.details.Blur()
	a.pollGen++
	a.messages = nil
	a.runID = ""
	a.log.Info("submit preferences",
		zap.String("repo", a.session.RepoURL),
		zap.Strings("improvements", p.Improvements),
		zap.String("theme", p.Theme),
		zap.String("priority", p.Priority))
	return a, tea.Batch(
		a.startCmd(a.pollGen, a.session.RepoURL, p),
		a.spinner.Tick,
		a.savePrefsCmd(p),
	)
}

func (a *App) viewPrefs() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Customize your improvements"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Repository: " + flow.RepoName(a.session.RepoURL)))
	b.WriteString("\n\n")
	b.WriteString(a.form.View())
	return b.String()
}
