package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/frontfrend/internal/flow"
	"github.com/jask/frontfrend/internal/workflow"
)

const visibleMessages = 6

func (a *App) updateWorkflow(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case startedMsg:
		if m.gen != a.pollGen {
			return a, nil
		}
		a.runID = m.runID
		// first poll right away, then on the timer
		return a, a.statusCmd(m.gen)
	case pollTickMsg:
		if m.gen != a.pollGen || a.session.Step != flow.StepProcessing {
			return a, nil
		}
		return a, a.statusCmd(m.gen)
	case statusMsg:
		if m.gen != a.pollGen {
			return a, nil
		}
		return a.applyStatus(m)
	case resultsMsg:
		if m.gen != a.pollGen {
			return a, nil
		}
		return a.applyResults(m)
	case workflowErrMsg:
		if m.gen != a.pollGen {
			return a, nil
		}
		return a, a.failWorkflow(m.err)
	}
	return a, nil
}

func (a *App) applyStatus(m statusMsg) (tea.Model, tea.Cmd) {
	a.messages = m.resp.Messages
	step := a.cfg.Poll.Step
	if step <= 0 {
		step = workflow.DefaultStep
	}
	pct := workflow.EstimateProgress(a.session.Progress, m.resp, step)
	if err := a.session.UpdateProgress(pct); err != nil {
		return a, nil
	}
	a.log.Debug("workflow status",
		zap.String("status", string(m.resp.Status)),
		zap.Int("messages", len(m.resp.Messages)),
		zap.Float64("progress", a.session.Progress))

	switch m.resp.Status {
	case workflow.StatusCompleted:
		return a, a.fetchResultsCmd(m.gen)
	case workflow.StatusError:
		return a, a.failWorkflow(&workflow.JobError{Message: m.resp.Message})
	}
	return a, a.pollTickCmd(m.gen)
}

func (a *App) applyResults(m resultsMsg) (tea.Model, tea.Cmd) {
	if err := a.session.Complete(m.results); err != nil {
		return a, nil
	}
	if m.previewErr != nil {
		a.log.Warn("live preview", zap.Error(m.previewErr))
	}
	a.log.Info("workflow completed",
		zap.Int("files", len(m.results.Files)),
		zap.Int("improvements", len(m.results.Improvements)))
	a.loadResults(m.results, m.preview, m.previewErr)

	finish := a.finishRunCmd(a.runID, workflow.StatusCompleted, "", len(m.results.Files))
	a.runID = ""
	return a, tea.Batch(finish, a.notify("Analysis complete", false))
}

// failWorkflow stops polling, reports err and returns to preferences.
func (a *App) failWorkflow(err error) tea.Cmd {
	a.log.Warn("workflow failed", zap.Error(err))
	a.pollGen++
	_ = a.session.Fail()
	finish := a.finishRunCmd(a.runID, workflow.StatusError, err.Error(), 0)
	a.runID = ""
	return tea.Batch(finish, a.notify(failureMessage(err), true), a.form.focus())
}

func (a *App) viewProcessing() string {
	var b strings.Builder
	progress := a.session.Progress
	idx := flow.PhaseIndex(progress)
	phase := flow.Phases[idx]

	b.WriteString(a.spinner.View() + " " + titleStyle.Render("AI is analyzing your repository"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(a.session.RepoURL))
	b.WriteString("\n\n")

	b.WriteString(a.bar.ViewAs(progress / 100))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s  %s\n", focusStyle.Render(fmt.Sprintf("Phase %d of %d", idx+1, len(flow.Phases))),
		phase.Icon+" "+phase.Name)
	b.WriteString(a.phaseBar.ViewAs(flow.PhaseProgress(progress) / 100))
	b.WriteString("\n\n")

	for i, p := range flow.Phases {
		switch {
		case i < idx:
			b.WriteString(successStyle.Render("  ✔ " + p.Name))
		case i == idx:
			b.WriteString(focusStyle.Render("  ▸ " + p.Name))
		default:
			b.WriteString(mutedStyle.Render("  · " + p.Name))
		}
		b.WriteString("\n")
	}

	if len(a.messages) > 0 {
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render("Latest activity"))
		b.WriteString("\n")
		start := max(len(a.messages)-visibleMessages, 0)
		for _, msg := range a.messages[start:] {
			b.WriteString(mutedStyle.Render("  " + msg))
			b.WriteString("\n")
		}
	}
	return b.String()
}
