// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/jp2jpg/internal/convert"
	"github.com/pdiddy/jp2jpg/internal/magick"
	"github.com/pdiddy/jp2jpg/internal/report"
)

// scriptedRunner returns a fixed status for every call and writes the
// destination file on success.
type scriptedRunner struct {
	versionStatus int
	convertStatus int
}

func (s *scriptedRunner) Run(name string, args ...string) (int, error) {
	if len(args) == 1 && args[0] == "--version" {
		return s.versionStatus, nil
	}
	if s.convertStatus == 0 && len(args) == 2 {
		if err := os.WriteFile(args[1], []byte("jpeg"), 0o644); err != nil {
			return 1, nil
		}
	}
	return s.convertStatus, nil
}

func useRunner(t *testing.T, r magick.Runner) {
	t.Helper()
	prev := newRunner
	newRunner = func() magick.Runner { return r }
	t.Cleanup(func() { newRunner = prev })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Flag values persist across Execute calls on the shared command tree.
	for name, def := range map[string]string{"report": "", "history-db": "", "verbose": "false", "tool": "magick"} {
		require.NoError(t, convertCmd.Flags().Set(name, def))
	}
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  string
		wantErr  string
	}{
		{name: "success", err: nil, wantCode: 0},
		{
			name:     "source missing exits cleanly",
			err:      &convert.SourceMissingError{Path: "/nope"},
			wantCode: 0,
			wantOut:  "Source directory does not exist at /nope\n",
		},
		{
			name:     "tool missing",
			err:      &magick.PreflightError{Tool: "magick", Status: 127},
			wantCode: 127,
			wantOut:  "requires ImageMagick to be installed",
		},
		{
			name:     "tool error",
			err:      fmt.Errorf("wrapped: %w", &magick.PreflightError{Tool: "magick", Status: 4}),
			wantCode: 4,
			wantOut:  "Status code returned: 4",
		},
		{
			name:     "other error",
			err:      errors.New("disk full"),
			wantCode: 1,
			wantErr:  "Error: disk full",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, tt.wantCode, exitCode(tt.err, &stdout, &stderr))
			assert.Contains(t, stdout.String(), tt.wantOut)
			assert.Contains(t, stderr.String(), tt.wantErr)
		})
	}
}

func TestConvertCommand(t *testing.T) {
	useRunner(t, &scriptedRunner{})
	dir := t.TempDir()
	src := filepath.Join(dir, "scans")
	require.NoError(t, os.Mkdir(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.jp2"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "b.txt"), []byte("y"), 0o644))
	reportPath := filepath.Join(dir, "report.yaml")
	dbPath := filepath.Join(dir, "history.db")

	out, err := execute(t, "convert", src, "--report", reportPath, "--history-db", dbPath, "--verbose")
	require.NoError(t, err)

	assert.Contains(t, out, "Batch summary: 1 converted, 1 copied, 0 failed")
	assert.FileExists(t, filepath.Join(src+"_conv", "a.jpg"))
	assert.FileExists(t, filepath.Join(src+"_conv", "b.txt"))

	summary, err := report.Read(reportPath)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Converted)
	assert.Equal(t, "magick", summary.Tool)

	out, err = execute(t, "history", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, src+" -> "+src+"_conv")
}

func TestConvertCommandSourceMissing(t *testing.T) {
	useRunner(t, &scriptedRunner{})
	src := filepath.Join(t.TempDir(), "missing")

	_, err := execute(t, "convert", src)

	var stdout bytes.Buffer
	assert.Equal(t, 0, exitCode(err, &stdout, &stdout))
	assert.Contains(t, stdout.String(), "does not exist")
	assert.NoDirExists(t, src+"_conv")
}

func TestConvertCommandPreflightMissingTool(t *testing.T) {
	useRunner(t, &scriptedRunner{versionStatus: magick.StatusNotFound})
	dir := t.TempDir()
	src := filepath.Join(dir, "scans")
	require.NoError(t, os.Mkdir(src, 0o755))
	target := filepath.Join(dir, "out")

	_, err := execute(t, "convert", src, target)

	var stdout bytes.Buffer
	assert.Equal(t, 127, exitCode(err, &stdout, &stdout))
	assert.Contains(t, stdout.String(), "command available on your PATH")
	assert.NoDirExists(t, target)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "jp2jpg dev\n", out)
}
