// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"os"
	"path/filepath"
)

// targetSuffix is appended to the source basename when no target is given.
const targetSuffix = "_conv"

// SourceMissingError reports that the source directory does not exist. The
// CLI treats it as a clean early exit rather than a failure.
type SourceMissingError struct {
	// Path is the source as the operator supplied it.
	Path string
}

func (e *SourceMissingError) Error() string {
	return fmt.Sprintf("Source directory does not exist at %s", e.Path)
}

// ResolveSource returns the absolute form of source, or a *SourceMissingError
// when it is not an existing directory.
func ResolveSource(source string) (string, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return "", fmt.Errorf("resolving source %s: %w", source, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", &SourceMissingError{Path: source}
	}
	return abs, nil
}

// ResolveTarget returns the absolute target directory. An empty target is
// derived from the already-resolved source as "<dir>/<base>_conv".
func ResolveTarget(source, target string) (string, error) {
	if target == "" {
		return filepath.Join(filepath.Dir(source), filepath.Base(source)+targetSuffix), nil
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("resolving target %s: %w", target, err)
	}
	return abs, nil
}
