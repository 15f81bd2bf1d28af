package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/frontfrend/internal/diff"
	"github.com/jask/frontfrend/internal/flow"
	"github.com/jask/frontfrend/internal/prefs"
	"github.com/jask/frontfrend/internal/service"
	"github.com/jask/frontfrend/internal/workflow"
)

type runOptions struct {
	repo     string
	improve  string
	theme    string
	priority string
	details  string
	export   string
	diff     bool
}

func runCmd(g *globals) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one analysis without the interactive client",
		Example: `  frontfrend run --repo https://github.com/acme/site
  frontfrend run --repo https://github.com/acme/site --improve accessibility,performance --theme dark --export ./out`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.setup(true)
			if err != nil {
				return err
			}
			defer e.close()
			return e.runHeadless(cmd, opts)
		},
	}
	def := prefs.Default()
	f := cmd.Flags()
	f.StringVar(&opts.repo, "repo", "", "GitHub repository URL")
	f.StringVar(&opts.improve, "improve", strings.Join(def.Improvements, ","), "comma-separated improvement ids")
	f.StringVar(&opts.theme, "theme", def.Theme, "theme preference: light, dark or neutral")
	f.StringVar(&opts.priority, "priority", def.Priority, "conservative, balanced or aggressive")
	f.StringVar(&opts.details, "details", "", "additional details for the analysis")
	f.StringVar(&opts.export, "export", "", "write the improved files under this directory")
	f.BoolVar(&opts.diff, "diff", false, "print unified diffs of every changed file")
	_ = cmd.MarkFlagRequired("repo")
	return cmd
}

func (o *runOptions) preferences() (prefs.Preferences, error) {
	p := prefs.Preferences{
		Improvements:      prefs.ParseImprovements(o.improve),
		Theme:             strings.ToLower(strings.TrimSpace(o.theme)),
		Priority:          strings.ToLower(strings.TrimSpace(o.priority)),
		AdditionalDetails: strings.TrimSpace(o.details),
	}
	if p.Improvements == nil {
		p.Improvements = []string{}
	}
	return p, p.Validate()
}

// runHeadless walks the same steps as the interactive client.
func (e *env) runHeadless(cmd *cobra.Command, o *runOptions) error {
	ctx := cmd.Context()
	p, err := o.preferences()
	if err != nil {
		return err
	}

	s := flow.New()
	if err := s.GetStarted(); err != nil {
		return err
	}
	if err := s.SubmitRepo(o.repo); err != nil {
		return err
	}
	if err := s.SubmitPreferences(p); err != nil {
		return err
	}

	id, err := e.runs.Begin(ctx, s.RepoURL, p)
	if err != nil {
		return err
	}

	poller := &workflow.Poller{Client: e.client, Interval: e.cfg.Poll.Interval, Step: e.cfg.Poll.Step}
	_, err = poller.Run(ctx, func(u workflow.Update) {
		_ = s.UpdateProgress(u.Progress)
		idx := flow.PhaseIndex(s.Progress)
		e.log.Info("progress",
			zap.Float64("percent", s.Progress),
			zap.String("phase", flow.Phases[idx].Name),
			zap.String("latest", u.Status.Latest()))
	})
	if err == nil {
		var out workflow.Outcome
		out, err = e.client.Collect(ctx)
		if err == nil {
			if out.PreviewErr != nil {
				e.log.Warn("live preview", zap.Error(out.PreviewErr))
			}
			err = s.Complete(out.Results)
		}
	}
	// the outcome is recorded even when ctx was cancelled by an interrupt
	finishCtx := context.WithoutCancel(ctx)
	if err != nil {
		_ = s.Fail()
		e.runs.Finish(finishCtx, id, workflow.StatusError, err.Error(), 0)
		return err
	}
	e.runs.Finish(finishCtx, id, workflow.StatusCompleted, "", len(s.Results.Files))

	diffs := make([]*diff.FileDiff, 0, len(s.Results.Files))
	for _, f := range s.Results.Files {
		diffs = append(diffs, diff.Compute(f.Path, f.Before, f.After))
	}
	w := cmd.OutOrStdout()
	if err := printSummary(w, s.RepoURL, s.Results.Improvements, diffs, e.cfg.UI.WordWrap); err != nil {
		return err
	}
	if o.diff {
		for _, d := range diffs {
			fmt.Fprint(w, d.Unified())
		}
	}
	if o.export != "" {
		dir := filepath.Join(o.export, flow.RepoName(s.RepoURL))
		paths, err := service.ExportFiles(dir, s.Results.Files)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		for _, path := range paths {
			fmt.Fprintln(w, path)
		}
	}
	return nil
}

func summaryMarkdown(repoURL string, imps []workflow.Improvement, diffs []*diff.FileDiff) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Improvements for %s\n\n", flow.RepoName(repoURL))
	if len(imps) == 0 {
		b.WriteString("_No improvements were reported._\n")
	}
	for _, imp := range imps {
		fmt.Fprintf(&b, "- %s\n", imp.String())
	}
	b.WriteString("\n## Changed files\n\n")
	if len(diffs) == 0 {
		b.WriteString("_No files changed._\n")
		return b.String()
	}
	b.WriteString("| File | Added | Removed |\n|---|---:|---:|\n")
	for _, d := range diffs {
		st := d.Stats()
		name := d.Path
		if d.IsNew {
			name += " (new)"
		}
		fmt.Fprintf(&b, "| %s | +%d | -%d |\n", name, st.Added, st.Removed)
	}
	return b.String()
}

func printSummary(w io.Writer, repoURL string, imps []workflow.Improvement, diffs []*diff.FileDiff, wrap int) error {
	md := summaryMarkdown(repoURL, imps, diffs)
	if wrap <= 0 {
		wrap = 80
	}
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("notty"), glamour.WithWordWrap(wrap))
	if err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
