package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tradercopilot/swingdash/internal/app"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Archive your accessible signal history",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	return withState(cmd, true, func(ctx context.Context, a *app.App, st *app.State) error {
		path, exp, err := a.Export(ctx, st)
		if err != nil {
			return expire(ctx, st, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d signals (%d-day window) to %s\n",
			len(exp.Signals), exp.HistoryDays, path)
		return nil
	})
}
