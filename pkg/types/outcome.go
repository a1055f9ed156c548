// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Severity is the log level assigned to a failed file.
type Severity string

const (
	SeverityNone  Severity = ""
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
	SeverityFatal Severity = "fatal"
)

// FileKind says how an entry of the source directory is handled.
type FileKind string

const (
	KindConvertible FileKind = "convertible"
	KindPassThrough FileKind = "pass-through"
)

// FileOutcome records what happened to one source directory entry.
type FileOutcome struct {
	// Name is the entry name as listed in the source directory.
	Name string `json:"name" yaml:"name"`

	// Kind is convertible for .jp2 entries and pass-through otherwise.
	Kind FileKind `json:"kind" yaml:"kind"`

	// SourcePath and TargetPath are absolute paths.
	SourcePath string `json:"source_path" yaml:"source_path"`
	TargetPath string `json:"target_path" yaml:"target_path"`

	// Status is the converter exit status. Always 0 for pass-through files.
	Status int `json:"status" yaml:"status"`

	// Severity is empty when the entry was handled successfully.
	Severity Severity `json:"severity,omitempty" yaml:"severity,omitempty"`

	// Error holds the spawn or copy error text, if any.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the outcome was logged as a failure.
func (o FileOutcome) Failed() bool {
	return o.Severity != SeverityNone
}

// RunSummary describes one complete batch run.
type RunSummary struct {
	Source     string        `json:"source" yaml:"source"`
	Target     string        `json:"target" yaml:"target"`
	Tool       string        `json:"tool" yaml:"tool"`
	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time     `json:"finished_at" yaml:"finished_at"`
	Converted  int           `json:"converted" yaml:"converted"`
	Copied     int           `json:"copied" yaml:"copied"`
	Failed     int           `json:"failed" yaml:"failed"`
	Outcomes   []FileOutcome `json:"outcomes" yaml:"outcomes"`
}
