package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/frontfrend/internal/flow"
)

const recentLimit = 5

func (a *App) updateRepo(action string, m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.tokenPrompt {
		return a.updateTokenPrompt(action, m)
	}
	if a.analyzing {
		return a, nil
	}
	switch action {
	case actSubmit:
		url, err := flow.ValidateRepoURL(a.repoInput.Value())
		if err != nil {
			return a, a.notify(err.Error(), true)
		}
		a.analyzing = true
		delay := a.cfg.UI.SubmitDelay
		return a, tea.Batch(
			a.spinner.Tick,
			tea.Tick(delay, func(time.Time) tea.Msg { return repoAcceptedMsg{url: url} }),
		)
	case actBack:
		if err := a.session.Back(); err != nil {
			return a, a.notify(err.Error(), true)
		}
		a.repoInput.Blur()
		return a, nil
	case actToken:
		a.tokenPrompt = true
		a.tokenInput.Reset()
		a.repoInput.Blur()
		return a, a.tokenInput.Focus()
	case actPrev, actNext:
		a.cycleRecent(action == actNext)
		return a, nil
	}
	var cmd tea.Cmd
	a.repoInput, cmd = a.repoInput.Update(m)
	return a, cmd
}

func (a *App) updateTokenPrompt(action string, m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch action {
	case actSubmit:
		token := strings.TrimSpace(a.tokenInput.Value())
		a.closeTokenPrompt()
		return a, tea.Batch(a.repoInput.Focus(), a.saveTokenCmd(token))
	case actCancel:
		a.closeTokenPrompt()
		return a, a.repoInput.Focus()
	}
	var cmd tea.Cmd
	a.tokenInput, cmd = a.tokenInput.Update(m)
	return a, cmd
}

func (a *App) closeTokenPrompt() {
	a.tokenPrompt = false
	a.tokenInput.Reset()
	a.tokenInput.Blur()
}

// cycleRecent fills the input from the recent repositories list.
func (a *App) cycleRecent(forward bool) {
	n := min(len(a.recent), recentLimit)
	if n == 0 {
		return
	}
	switch {
	case forward:
		a.recentIdx = (a.recentIdx + 1) % n
	case a.recentIdx <= 0:
		a.recentIdx = n - 1
	default:
		a.recentIdx--
	}
	a.repoInput.SetValue(a.recent[a.recentIdx].RepoURL)
	a.repoInput.CursorEnd()
}

func (a *App) acceptRepo(url string) (tea.Model, tea.Cmd) {
	a.analyzing = false
	if a.session.Step != flow.StepRepoInput {
		return a, nil
	}
	if err := a.session.SubmitRepo(url); err != nil {
		return a, a.notify(err.Error(), true)
	}
	a.log.Debug("repository accepted")
	a.repoInput.Blur()
	return a, a.form.focus()
}

func (a *App) viewRepo() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Connect your repository"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Enter the URL of the GitHub repository you want to improve."))
	b.WriteString("\n\n")
	b.WriteString(panelStyle.Render(a.repoInput.View()))
	b.WriteString("\n")

	if a.analyzing {
		b.WriteString(a.spinner.View() + " " + focusStyle.Render("Analyzing Repository…"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if a.tokenPrompt {
		b.WriteString(titleStyle.Render("Connect with GitHub"))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Paste a personal access token. Leave empty to remove the stored one."))
		b.WriteString("\n")
		b.WriteString(panelStyle.Render(a.tokenInput.View()))
		b.WriteString("\n")
		return b.String()
	}
	if a.hasToken {
		b.WriteString(successStyle.Render("✔ Connected with GitHub"))
	} else {
		b.WriteString(mutedStyle.Render("Private repository? Press ctrl+g to connect with GitHub."))
	}
	b.WriteString("\n")

	if n := min(len(a.recent), recentLimit); n > 0 {
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render("Recent repositories"))
		b.WriteString("\n")
		for i, run := range a.recent[:n] {
			line := fmt.Sprintf("%s  %s", run.RepoURL, mutedStyle.Render(run.Status))
			if i == a.recentIdx {
				b.WriteString(focusStyle.Render("▸ ") + line)
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
