package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func previewCmd(g *globals) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Fetch the live preview HTML of the last completed analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.setup(true)
			if err != nil {
				return err
			}
			defer e.close()

			html, err := e.client.LivePreview(cmd.Context())
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = io.WriteString(cmd.OutOrStdout(), html)
				return err
			}
			if err := os.WriteFile(out, []byte(html), 0o644); err != nil {
				return fmt.Errorf("write preview: %w", err)
			}
			e.log.Info("preview written", zap.String("path", out), zap.Int("bytes", len(html)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")
	return cmd
}
