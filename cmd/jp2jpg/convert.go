package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/jp2jpg/internal/convert"
	"github.com/pdiddy/jp2jpg/internal/ledger"
	"github.com/pdiddy/jp2jpg/internal/magick"
	"github.com/pdiddy/jp2jpg/internal/report"
	"github.com/pdiddy/jp2jpg/pkg/types"
)

// newRunner builds the command runner for the conversion tool. Tests swap
// it for a fake.
var newRunner = magick.OSRunner

var convertCmd = &cobra.Command{
	Use:   "convert SOURCE [TARGET]",
	Short: "Convert .jp2 files in SOURCE to .jpg files in TARGET",
	Long: `Convert snapshots SOURCE once, converts every .jp2 entry to a .jpg of the
same base name in TARGET, and copies every other entry verbatim. TARGET
defaults to a sibling directory named SOURCE_conv and is created if missing.

Failures are logged to TARGET/log.txt. A converter exit status whose leading
digit is 3 is logged as WARN, 4 as ERROR, 5 as FATAL, anything else as ERROR.
Files are always reconverted; nothing is skipped on a re-run.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConvert,
}

func init() {
	def := types.DefaultConversionConfig()
	flags := convertCmd.Flags()
	flags.String("tool", def.Tool, "external conversion command")
	flags.Bool("preflight", def.Preflight, "check that the tool runs before touching any file")
	flags.Bool("detailed-status", def.DetailedStatus, "bucket failures into warn/error/fatal by exit status")
	flags.Bool("strict-copy", def.StrictCopy, "abort on the first pass-through copy failure")
	flags.String("history-db", "", "SQLite database recording each run (disabled when empty)")
	flags.String("report", "", "write a YAML run report to this path (\"-\" for stdout)")
	flags.BoolP("verbose", "v", false, "print per-file status and a batch summary")

	for key, flag := range map[string]string{
		"tool":            "tool",
		"preflight":       "preflight",
		"detailed_status": "detailed-status",
		"strict_copy":     "strict-copy",
		"history_db":      "history-db",
		"report":          "report",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(convertCmd)
}

// configFromArgs merges positional arguments with flag, file, and
// environment settings resolved by viper.
func configFromArgs(args []string) types.ConversionConfig {
	cfg := types.ConversionConfig{
		Source:         args[0],
		Tool:           viper.GetString("tool"),
		Preflight:      viper.GetBool("preflight"),
		DetailedStatus: viper.GetBool("detailed_status"),
		StrictCopy:     viper.GetBool("strict_copy"),
		HistoryDB:      viper.GetString("history_db"),
		Report:         viper.GetString("report"),
	}
	if len(args) > 1 {
		cfg.Target = args[1]
	}
	if cfg.Tool == "" {
		cfg.Tool = types.DefaultTool
	}
	return cfg
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := configFromArgs(args)

	var w io.Writer = io.Discard
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		w = cmd.OutOrStdout()
	}

	batch, err := convert.New(cfg, magick.New(cfg.Tool, newRunner()))
	if err != nil {
		return err
	}
	defer batch.Close()

	result, runErr := batch.Run(cmd.Context(), w)
	summary := batch.Summary(result)

	if cfg.Report != "" {
		if err := report.Write(cfg.Report, summary); err != nil {
			return err
		}
	}
	if cfg.HistoryDB != "" {
		if err := recordHistory(cmd.Context(), cfg.HistoryDB, summary); err != nil {
			return err
		}
	}
	return runErr
}

func recordHistory(ctx context.Context, path string, summary types.RunSummary) error {
	l, err := ledger.Open(path)
	if err != nil {
		return err
	}
	defer l.Close()

	if _, err := l.Record(context.WithoutCancel(ctx), summary); err != nil {
		return fmt.Errorf("recording history: %w", err)
	}
	return nil
}
