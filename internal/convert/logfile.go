// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/pdiddy/jp2jpg/pkg/types"
)

// logFile is the name of the per-run log inside the target directory.
const logFile = "log.txt"

// Logger writes leveled entries to the run log. Each line carries a
// timestamp, the upper-cased level, and the message.
type Logger struct {
	out    *log.Logger
	closer io.Closer
}

// OpenLog opens path for appending, creating it if needed.
func OpenLog(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log %s: %w", path, err)
	}
	l := NewLogger(f)
	l.closer = f
	return l, nil
}

// NewLogger returns a Logger writing to w. Close is a no-op for it.
func NewLogger(w io.Writer) *Logger {
	return &Logger{out: log.New(w, "", log.LstdFlags|log.Lmicroseconds)}
}

// Log writes msg at sev. Entries with an empty severity are dropped.
func (l *Logger) Log(sev types.Severity, msg string) {
	if sev == types.SeverityNone {
		return
	}
	l.out.Printf("%s: %s", strings.ToUpper(string(sev)), msg)
}

func (l *Logger) Warn(msg string)  { l.Log(types.SeverityWarn, msg) }
func (l *Logger) Error(msg string) { l.Log(types.SeverityError, msg) }
func (l *Logger) Fatal(msg string) { l.Log(types.SeverityFatal, msg) }

// Close closes the underlying file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
