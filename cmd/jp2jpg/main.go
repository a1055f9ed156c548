// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the jp2jpg CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/jp2jpg/internal/convert"
	"github.com/pdiddy/jp2jpg/internal/magick"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the jp2jpg CLI.
var rootCmd = &cobra.Command{
	Use:   "jp2jpg",
	Short: "Batch-convert JPEG2000 images to JPEG",
	Long: `jp2jpg converts every .jp2 file in a source directory to .jpg with an
external image tool (ImageMagick's magick by default) and copies every other
file through unchanged. Conversion failures are written to log.txt in the
target directory; they do not stop the run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./jp2jpg.yaml or ~/.config/jp2jpg/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("jp2jpg")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "jp2jpg"))
		}
	}

	viper.SetEnvPrefix("JP2JPG")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// exitCode maps the error returned by a command to the process exit status
// and prints the operator-facing message. A missing source directory is a
// clean exit; a failed preflight exits with the tool's own status.
func exitCode(err error, stdout, stderr io.Writer) int {
	if err == nil {
		return 0
	}

	var missing *convert.SourceMissingError
	if errors.As(err, &missing) {
		fmt.Fprintln(stdout, missing.Error())
		return 0
	}

	var preflight *magick.PreflightError
	if errors.As(err, &preflight) {
		fmt.Fprintln(stdout, preflight.Message())
		return preflight.ExitCode()
	}

	fmt.Fprintln(stderr, "Error:", err)
	return 1
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err, os.Stdout, os.Stderr))
}
