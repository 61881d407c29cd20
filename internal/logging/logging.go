package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/prasmono/adb-to-local-copier/pkg/models"
	"github.com/prasmono/adb-to-local-copier/pkg/utils"
)

// Logger writes run output to out and errors to errOut. Quiet mode
// suppresses everything except errors and summaries that contain failures.
type Logger struct {
	out    io.Writer
	errOut io.Writer
	quiet  bool
}

// New creates a logger on the standard streams.
func New(quiet bool) *Logger {
	return NewWithWriters(os.Stdout, os.Stderr, quiet)
}

// NewWithWriters creates a logger on explicit streams.
func NewWithWriters(out, errOut io.Writer, quiet bool) *Logger {
	return &Logger{out: out, errOut: errOut, quiet: quiet}
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	if !l.quiet {
		fmt.Fprintf(l.out, format+"\n", args...)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.errOut, "ERROR: "+format+"\n", args...)
}

// RootSummary prints the one-line outcome for a single remote root.
func (l *Logger) RootSummary(root string, s *models.RunSummary) {
	if l.quiet && s.Errors == 0 {
		return
	}
	line := fmt.Sprintf("copied %s: %d successes and %d errors in %s (skipped %d, overwritten %d",
		root, s.Successes, s.Errors, utils.FormatDuration(s.Elapsed), s.Skipped, s.Overwritten)
	if s.BytesPulled > 0 {
		line += ", " + utils.FormatSize(s.BytesPulled)
	}
	fmt.Fprintln(l.out, line+")")
}

// RunTotals prints the final block once every root is done.
func (l *Logger) RunTotals(rootCount int, s *models.RunSummary) {
	if l.quiet && s.Errors == 0 {
		return
	}
	fmt.Fprintln(l.out)
	fmt.Fprintln(l.out, "=== Summary ===")
	fmt.Fprintf(l.out, "Roots: %d\n", rootCount)
	fmt.Fprintf(l.out, "Copied: %d files (%s)\n", s.Successes, utils.FormatSize(s.BytesPulled))
	fmt.Fprintf(l.out, "Skipped: %d files\n", s.Skipped)
	fmt.Fprintf(l.out, "Overwritten: %d files\n", s.Overwritten)
	if s.Errors > 0 {
		fmt.Fprintf(l.out, "Errors: %d\n", s.Errors)
	}
	fmt.Fprintf(l.out, "Duration: %s\n", utils.FormatDuration(s.Elapsed))
}
