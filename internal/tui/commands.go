package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/frontfrend/internal/flow"
	"github.com/jask/frontfrend/internal/prefs"
	"github.com/jask/frontfrend/internal/secrets"
	"github.com/jask/frontfrend/internal/service"
	"github.com/jask/frontfrend/internal/workflow"
)

func (a *App) loadRecentCmd() tea.Cmd {
	runs, ctx := a.deps.Runs, a.ctx
	return func() tea.Msg {
		list, err := runs.Recent(ctx, recentLimit)
		if err != nil {
			return errMsg{fmt.Errorf("load history: %w", err)}
		}
		return recentMsg(list)
	}
}

func (a *App) saveTokenCmd(token string) tea.Cmd {
	store := a.deps.Secrets
	return func() tea.Msg {
		if store != nil {
			if err := store.StoreToken(secrets.GitHub, token); err != nil {
				return errMsg{fmt.Errorf("save token: %w", err)}
			}
		}
		return tokenSavedMsg{token: token}
	}
}

func (a *App) savePrefsCmd(p prefs.Preferences) tea.Cmd {
	store, log := a.deps.Prefs, a.log
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		if err := store.Save(p); err != nil {
			log.Warn("save preferences", zap.Error(err))
		}
		return nil
	}
}

func (a *App) startCmd(gen int, repoURL string, p prefs.Preferences) tea.Cmd {
	runs, ctx := a.deps.Runs, a.ctx
	return func() tea.Msg {
		id, err := runs.Begin(ctx, repoURL, p)
		if err != nil {
			return workflowErrMsg{gen: gen, err: err}
		}
		return startedMsg{gen: gen, runID: id}
	}
}

func (a *App) pollTickCmd(gen int) tea.Cmd {
	interval := a.cfg.Poll.Interval
	if interval <= 0 {
		interval = workflow.DefaultInterval
	}
	return tea.Tick(interval, func(time.Time) tea.Msg { return pollTickMsg{gen: gen} })
}

func (a *App) statusCmd(gen int) tea.Cmd {
	client, ctx := a.deps.Client, a.ctx
	return func() tea.Msg {
		st, err := client.Status(ctx)
		if err != nil {
			return workflowErrMsg{gen: gen, err: err}
		}
		return statusMsg{gen: gen, resp: st}
	}
}

// fetchResultsCmd loads the results and the live preview concurrently.
func (a *App) fetchResultsCmd(gen int) tea.Cmd {
	client, ctx := a.deps.Client, a.ctx
	return func() tea.Msg {
		out, err := client.Collect(ctx)
		if err != nil {
			return workflowErrMsg{gen: gen, err: err}
		}
		return resultsMsg{gen: gen, results: out.Results, preview: out.Preview, previewErr: out.PreviewErr}
	}
}

// finishRunCmd records the outcome even after the client context was
// cancelled by quitting.
func (a *App) finishRunCmd(id string, status workflow.Status, message string, files int) tea.Cmd {
	if id == "" {
		return nil
	}
	runs, ctx := a.deps.Runs, context.WithoutCancel(a.ctx)
	return func() tea.Msg {
		runs.Finish(ctx, id, status, message, files)
		return nil
	}
}

func (a *App) exportCmd() tea.Cmd {
	dir := filepath.Join(a.cfg.Export.Dir, flow.RepoName(a.session.RepoURL))
	var files []workflow.FileChange
	if a.session.Results != nil {
		files = a.session.Results.Files
	}
	return func() tea.Msg {
		paths, err := service.ExportFiles(dir, files)
		if err != nil {
			return errMsg{fmt.Errorf("download: %w", err)}
		}
		return exportedMsg{dir: dir, paths: paths}
	}
}

func exportSummary(m exportedMsg) string {
	if len(m.paths) == 1 {
		return "Downloaded 1 file to " + m.dir
	}
	return fmt.Sprintf("Downloaded %d files to %s", len(m.paths), m.dir)
}

// failureMessage phrases a workflow error for the status line.
func failureMessage(err error) string {
	var jobErr *workflow.JobError
	var apiErr *workflow.APIError
	switch {
	case errors.As(err, &jobErr):
		if jobErr.Message != "" {
			return "Analysis failed: " + jobErr.Message
		}
		return "Analysis failed"
	case errors.As(err, &apiErr):
		return fmt.Sprintf("Server error (%d): %s", apiErr.StatusCode, apiErr.Message)
	case errors.Is(err, context.Canceled):
		return "Cancelled"
	default:
		return "Network error: " + err.Error()
	}
}
