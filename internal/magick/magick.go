// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package magick runs the external image conversion command (ImageMagick's
// magick by default) and reports its exit status.
package magick

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
)

// StatusNotFound is the exit status a shell reports for a missing command.
const StatusNotFound = 127

// Runner executes a command and reports its exit status. err is non-nil only
// when the process could not be started for a reason other than the command
// being absent; a non-zero exit is reported through status alone.
type Runner interface {
	Run(name string, args ...string) (status int, err error)
}

// osRunner is the production Runner backed by os/exec. Output of the child
// process is discarded.
type osRunner struct{}

func (osRunner) Run(name string, args ...string) (int, error) {
	err := exec.Command(name, args...).Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return StatusNotFound, nil
	}
	return -1, fmt.Errorf("starting %s: %w", name, err)
}

// OSRunner returns the Runner used in production.
func OSRunner() Runner { return osRunner{} }

// Tool invokes a single conversion binary through a Runner.
type Tool struct {
	bin    string
	runner Runner
}

// New returns a Tool for bin. A nil runner selects the os/exec runner.
func New(bin string, runner Runner) *Tool {
	if runner == nil {
		runner = osRunner{}
	}
	return &Tool{bin: bin, runner: runner}
}

// Name returns the binary name.
func (t *Tool) Name() string { return t.bin }

// Preflight runs "<bin> --version" and returns a *PreflightError unless the
// command exits 0.
func (t *Tool) Preflight() error {
	status, err := t.runner.Run(t.bin, "--version")
	if err != nil {
		return &PreflightError{Tool: t.bin, Status: 1, Err: err}
	}
	if status != 0 {
		return &PreflightError{Tool: t.bin, Status: status}
	}
	return nil
}

// Convert runs "<bin> <src> <dst>". Paths are passed as separate arguments
// with no quoting or escaping.
func (t *Tool) Convert(src, dst string) (int, error) {
	return t.runner.Run(t.bin, src, dst)
}

// PreflightError reports that the conversion tool is missing or broken.
type PreflightError struct {
	Tool   string
	Status int
	Err    error
}

func (e *PreflightError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("preflight %s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("preflight %s: exit status %d", e.Tool, e.Status)
}

func (e *PreflightError) Unwrap() error { return e.Err }

// Message returns the text shown to the operator.
func (e *PreflightError) Message() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("Unknown error calling %s: %v", e.Tool, e.Err)
	case e.Status == StatusNotFound:
		return fmt.Sprintf("Using this command requires ImageMagick to be installed and the `%s` command available on your PATH", e.Tool)
	default:
		return fmt.Sprintf("Unknown error calling %s. Status code returned: %d", e.Tool, e.Status)
	}
}

// ExitCode is the process exit status the CLI should terminate with. A
// status outside 1..255, such as -1 for a signal-killed tool, maps to 1.
func (e *PreflightError) ExitCode() int {
	if e.Status < 1 || e.Status > 255 {
		return 1
	}
	return e.Status
}
