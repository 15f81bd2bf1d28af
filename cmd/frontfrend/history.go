package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jask/frontfrend/internal/database/repository"
	"github.com/jask/frontfrend/internal/service"
)

func historyCmd(g *globals) *cobra.Command {
	var (
		limit int
		wipe  bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent analysis runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.setup(true)
			if err != nil {
				return err
			}
			defer e.close()
			if e.db == nil {
				return errors.New("history is disabled (history.enabled = false)")
			}

			if wipe {
				n, err := (&service.MaintenanceService{DB: e.db}).ClearHistory(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d runs\n", n)
				return nil
			}

			runs, err := e.runs.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs yet")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRuns(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	cmd.Flags().BoolVar(&wipe, "clear", false, "delete all recorded runs")
	return cmd
}

func renderRuns(runs []repository.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		finished := "-"
		if r.FinishedAt != nil {
			finished = r.FinishedAt.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.RepoURL,
			r.Status,
			fmt.Sprintf("%d", r.FilesChanged),
			finished,
			r.Message,
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("STARTED", "REPOSITORY", "STATUS", "FILES", "FINISHED", "MESSAGE").
		Rows(rows...).
		String()
}
