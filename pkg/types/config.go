// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Default values for ConversionConfig fields.
const (
	DefaultTool = "magick"
)

// ConversionConfig holds settings for a jp2-to-jpg batch run.
type ConversionConfig struct {
	// Source is the directory holding the .jp2 files. Required.
	Source string `json:"source" yaml:"source"`

	// Target is the output directory. When empty it is derived as a sibling
	// of Source named "<basename>_conv".
	Target string `json:"target,omitempty" yaml:"target,omitempty"`

	// Tool is the external conversion command (default "magick").
	Tool string `json:"tool" yaml:"tool"`

	// Preflight runs "<tool> --version" before touching any file and aborts
	// the run when it fails.
	Preflight bool `json:"preflight" yaml:"preflight"`

	// DetailedStatus buckets failures by exit status into warn/error/fatal.
	// When false every failure is logged at error with the source path only.
	DetailedStatus bool `json:"detailed_status" yaml:"detailed_status"`

	// StrictCopy aborts the run on the first pass-through copy failure
	// instead of logging it and moving on.
	StrictCopy bool `json:"strict_copy" yaml:"strict_copy"`

	// HistoryDB is an optional SQLite database that records every run.
	HistoryDB string `json:"history_db,omitempty" yaml:"history_db,omitempty"`

	// Report is an optional path for a YAML run report ("-" for stdout).
	Report string `json:"report,omitempty" yaml:"report,omitempty"`
}

// DefaultConversionConfig returns the configuration used when nothing is
// overridden: magick with preflight and detailed status logging.
func DefaultConversionConfig() ConversionConfig {
	return ConversionConfig{
		Tool:           DefaultTool,
		Preflight:      true,
		DetailedStatus: true,
	}
}
