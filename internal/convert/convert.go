// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements the jp2-to-jpg batch pipeline: it snapshots a
// source directory, converts every .jp2 entry with an external tool, copies
// every other entry verbatim, and records failures to <target>/log.txt.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/jp2jpg/pkg/types"
)

// Converter turns one .jp2 file into a .jpg. *magick.Tool implements it.
type Converter interface {
	// Name identifies the tool in reports.
	Name() string

	// Preflight checks that the tool is installed and working.
	Preflight() error

	// Convert writes dst from src and returns the tool's exit status.
	// A non-nil error means the tool could not be started at all.
	Convert(src, dst string) (int, error)
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Converted  int
	Copied     int
	Failed     int
	Outcomes   []types.FileOutcome
	StartedAt  time.Time
	FinishedAt time.Time
}

// Total returns the number of entries processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Copied + r.Failed
}

// HasFailures reports whether any entry was logged as a failure.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

func (r *BatchResult) add(o types.FileOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch {
	case o.Failed():
		r.Failed++
	case o.Kind == types.KindConvertible:
		r.Converted++
	default:
		r.Copied++
	}
}

// Batch is one prepared conversion run. Create it with New, execute it with
// Run, and release the log file with Close.
type Batch struct {
	cfg     types.ConversionConfig
	conv    Converter
	source  string
	target  string
	entries []string
	log     *Logger
}

// New resolves the source and target directories, snapshots the source
// listing, runs the preflight check when enabled, and then creates the
// target directory and opens its log file. A missing source yields a
// *SourceMissingError and a failed preflight yields the converter's error;
// in both cases nothing is created on disk.
func New(cfg types.ConversionConfig, conv Converter) (*Batch, error) {
	source, err := ResolveSource(cfg.Source)
	if err != nil {
		return nil, err
	}
	target, err := ResolveTarget(source, cfg.Target)
	if err != nil {
		return nil, err
	}
	if target == source {
		return nil, fmt.Errorf("target directory %s is the source directory", target)
	}

	dirEntries, err := os.ReadDir(source)
	if err != nil {
		return nil, fmt.Errorf("reading source directory %s: %w", source, err)
	}
	entries := make([]string, len(dirEntries))
	for i, e := range dirEntries {
		entries[i] = e.Name()
	}

	if cfg.Preflight {
		if err := conv.Preflight(); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, fmt.Errorf("creating target directory %s: %w", target, err)
	}
	logger, err := OpenLog(filepath.Join(target, logFile))
	if err != nil {
		return nil, err
	}

	return &Batch{
		cfg:     cfg,
		conv:    conv,
		source:  source,
		target:  target,
		entries: entries,
		log:     logger,
	}, nil
}

// Source returns the absolute source directory.
func (b *Batch) Source() string { return b.source }

// Target returns the absolute target directory.
func (b *Batch) Target() string { return b.target }

// Entries returns the snapshot of source entry names taken by New.
func (b *Batch) Entries() []string { return b.entries }

// Close releases the log file.
func (b *Batch) Close() error {
	return b.log.Close()
}

// Run converts every .jp2 entry and then copies every other entry, writing
// per-file status lines to w. Conversion failures are logged and never stop
// the run. Copy failures are logged the same way unless StrictCopy is set,
// in which case the first one is returned. The context is checked between
// files; a running conversion is never interrupted.
func (b *Batch) Run(ctx context.Context, w io.Writer) (BatchResult, error) {
	if w == nil {
		w = io.Discard
	}
	result := BatchResult{StartedAt: time.Now().UTC()}
	convertible, passThrough := Partition(b.entries)

	for _, name := range convertible {
		if err := ctx.Err(); err != nil {
			return b.finish(result), err
		}
		result.add(b.convertFile(name, w))
	}

	for _, name := range passThrough {
		if err := ctx.Err(); err != nil {
			return b.finish(result), err
		}
		o, err := b.copyEntry(name, w)
		result.add(o)
		if err != nil && b.cfg.StrictCopy {
			return b.finish(result), err
		}
	}

	result = b.finish(result)
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d copied, %d failed (total: %d)\n",
		result.Converted, result.Copied, result.Failed, result.Total())
	return result, nil
}

func (b *Batch) finish(r BatchResult) BatchResult {
	r.FinishedAt = time.Now().UTC()
	return r
}

// convertFile runs the converter for one entry and logs any failure.
func (b *Batch) convertFile(name string, w io.Writer) types.FileOutcome {
	src := filepath.Join(b.source, name)
	dst := filepath.Join(b.target, TargetName(name))
	o := types.FileOutcome{
		Name:       name,
		Kind:       types.KindConvertible,
		SourcePath: src,
		TargetPath: dst,
	}

	status, err := b.conv.Convert(src, dst)
	o.Status = status
	switch {
	case err != nil:
		o.Severity = types.SeverityFatal
		o.Error = err.Error()
	case status == 0:
		fmt.Fprintf(w, "converted: %s\n", name)
		return o
	default:
		o.Severity, _ = ClassifyStatus(status)
	}

	if b.cfg.DetailedStatus {
		b.log.Log(o.Severity, fmt.Sprintf("%s\tstatus: %d", src, status))
	} else {
		o.Severity = types.SeverityError
		b.log.Error(src)
	}
	fmt.Fprintf(w, "failed:  %s (status %d)\n", name, status)
	return o
}

// copyEntry copies one pass-through entry. A failure is always logged; the
// error is returned so the caller can decide whether to stop.
func (b *Batch) copyEntry(name string, w io.Writer) (types.FileOutcome, error) {
	src := filepath.Join(b.source, name)
	dst := filepath.Join(b.target, name)
	o := types.FileOutcome{
		Name:       name,
		Kind:       types.KindPassThrough,
		SourcePath: src,
		TargetPath: dst,
	}

	var err error
	if name == logFile {
		err = fmt.Errorf("%s would overwrite the run log", src)
	} else {
		err = copyFile(src, dst)
	}
	if err != nil {
		o.Severity = types.SeverityError
		o.Error = err.Error()
		b.log.Error(fmt.Sprintf("%s\tcopy: %v", src, err))
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
		return o, err
	}
	fmt.Fprintf(w, "copied: %s\n", name)
	return o, nil
}

// copyFile copies a regular file byte for byte, keeping its permission bits.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(info, dstInfo) {
		return fmt.Errorf("%s and %s are the same file", src, dst)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}

// Summary converts a result into the report form shared by the YAML report
// and the history ledger.
func (b *Batch) Summary(r BatchResult) types.RunSummary {
	return types.RunSummary{
		Source:     b.source,
		Target:     b.target,
		Tool:       b.conv.Name(),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Converted:  r.Converted,
		Copied:     r.Copied,
		Failed:     r.Failed,
		Outcomes:   r.Outcomes,
	}
}
