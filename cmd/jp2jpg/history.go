package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/jp2jpg/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded conversion runs",
	Long: `History reads the SQLite database written by "convert --history-db" and
lists recent runs, newest first. With --run it lists the failed files of a
single run instead.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("db", "", "history database (default: history_db from config)")
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.Flags().Int64("run", 0, "list failures of this run ID")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = viper.GetString("history_db")
	}
	if path == "" {
		return fmt.Errorf("no history database: pass --db or set history_db")
	}

	l, err := ledger.Open(path)
	if err != nil {
		return err
	}
	defer l.Close()

	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if runID, _ := cmd.Flags().GetInt64("run"); runID > 0 {
		failures, err := l.Failures(ctx, runID)
		if err != nil {
			return err
		}
		if len(failures) == 0 {
			fmt.Fprintf(out, "run %d: no failures\n", runID)
			return nil
		}
		for _, f := range failures {
			detail := fmt.Sprintf("status: %d", f.Status)
			if f.Error != "" {
				detail = f.Error
			}
			fmt.Fprintf(out, "%-5s %s\t%s\n", f.Severity, f.SourcePath, detail)
		}
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := l.Runs(ctx, limit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%d  %s  %s -> %s  %d converted, %d copied, %d failed\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Source, r.Target,
			r.Converted, r.Copied, r.Failed)
	}
	return nil
}
