// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes and reads YAML summaries of batch runs.
package report

import (
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/jp2jpg/pkg/types"
)

// Stdout is the path value that sends the report to standard output.
const Stdout = "-"

// Write marshals summary as YAML to path, or to stdout when path is "-".
func Write(path string, summary types.RunSummary) error {
	if path == Stdout {
		return Encode(os.Stdout, summary)
	}
	data, err := yaml.Marshal(&summary)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// Encode writes summary as YAML to w.
func Encode(w io.Writer, summary types.RunSummary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&summary); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return enc.Close()
}

// Read loads a report previously written by Write.
func Read(path string) (types.RunSummary, error) {
	var s types.RunSummary
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("reading report %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return s, nil
}
