// Package adb drives the external device-bridge tool. Every operation is a
// blocking subprocess invocation whose text output is parsed; the tool's
// own error reporting is a marker string in that output, so failures are
// classified by exit status first and by marker as a fallback.
package adb

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

const (
	remoteBase    = "/sdcard"
	androidDir    = remoteBase + "/Android"
	whatsappMedia = androidDir + "/media/com.whatsapp"

	// errorMarker is how adb reports copy failures in its output even when
	// the process exits zero.
	errorMarker = "adb: error:"
)

// pulledBytesPattern matches the transfer report of a successful pull,
// e.g. "1 file pulled, 0 skipped. 24.8 MB/s (2097152 bytes in 0.081s)".
var pulledBytesPattern = regexp.MustCompile(`\((\d+) bytes`)

// Runner executes one bridge-tool invocation and captures its output.
type Runner interface {
	Run(ctx context.Context, args ...string) (stdout string, stderr string, err error)
}

type execRunner struct {
	path string
}

// NewRunner returns a Runner that invokes the bridge executable at path.
func NewRunner(path string) Runner {
	return &execRunner{path: path}
}

func (r *execRunner) Run(ctx context.Context, args ...string) (string, string, error) {
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, r.path, args...)
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	if err := cmd.Run(); err != nil {
		return stdoutBuf.String(), stderrBuf.String(),
			fmt.Errorf("%s %s: %w", r.path, strings.Join(args, " "), err)
	}
	return stdoutBuf.String(), stderrBuf.String(), nil
}

// CopyError is a failed copy-from-device operation. Output carries the
// bridge tool's own message so it can be echoed to the error stream.
type CopyError struct {
	RemotePath string
	Output     string
	Err        error
}

func (e *CopyError) Error() string {
	if msg := strings.TrimSpace(e.Output); msg != "" {
		return msg
	}
	if e.Err != nil {
		return fmt.Sprintf("pull %s: %v", e.RemotePath, e.Err)
	}
	return fmt.Sprintf("pull %s failed", e.RemotePath)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// Bridge wraps a Runner with the optional device serial and exposes the
// operations the sync loop needs.
type Bridge struct {
	runner Runner
	device string
}

// NewBridge creates a bridge for the given runner. A non-empty device
// serial is passed to every invocation as "-s SERIAL".
func NewBridge(runner Runner, device string) *Bridge {
	return &Bridge{runner: runner, device: device}
}

func (b *Bridge) args(op ...string) []string {
	if b.device == "" {
		return op
	}
	return append([]string{"-s", b.device}, op...)
}

// ListRoots discovers the top-level sync roots on the device: the entries
// under /sdcard, minus /sdcard/Android, plus the WhatsApp media directory
// buried inside it. A bridge failure here is returned as a hard error so
// that a missing device is not mistaken for an empty one.
func (b *Bridge) ListRoots(ctx context.Context) ([]string, error) {
	stdout, stderr, err := b.runner.Run(ctx, b.args("shell", "ls", "-d", remoteBase+"/*")...)
	if err != nil {
		return nil, opError("list remote roots", err, stderr)
	}
	entries := splitList(stdout)
	roots := entries[:0]
	for _, entry := range entries {
		if entry != androidDir {
			roots = append(roots, entry)
		}
	}
	return append(roots, whatsappMedia), nil
}

// FindFiles recursively lists the files under root, in device order.
func (b *Bridge) FindFiles(ctx context.Context, root string) ([]string, error) {
	stdout, stderr, err := b.runner.Run(ctx, b.args("shell", "find", root, "-type", "f")...)
	if err != nil {
		return nil, opError("list files under "+root, err, stderr)
	}
	return splitLines(stdout), nil
}

// StatMtime queries a remote file's modification time and returns it as
// whole Unix seconds. The bridge reports sub-second precision; anything
// that does not parse as seconds with an optional fraction is an error,
// which callers treat as "do not overwrite".
func (b *Bridge) StatMtime(ctx context.Context, remotePath string) (int64, error) {
	stdout, _, err := b.runner.Run(ctx, b.args("shell", "stat", remotePath, "-c", "%.9Y")...)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", remotePath, err)
	}
	return parseEpochSeconds(stdout)
}

// Pull copies one remote file to localPath, preserving attributes and
// timestamps. On success it returns the transferred byte count when the
// bridge reports one. Failures come back as *CopyError.
func (b *Bridge) Pull(ctx context.Context, remotePath, localPath string) (int64, error) {
	stdout, stderr, err := b.runner.Run(ctx, b.args("pull", "-a", "-p", remotePath, localPath)...)
	combined := stdout + stderr
	if err != nil {
		return 0, &CopyError{RemotePath: remotePath, Output: combined, Err: err}
	}
	if strings.Contains(combined, errorMarker) {
		return 0, &CopyError{RemotePath: remotePath, Output: combined}
	}
	return parsePulledBytes(stdout), nil
}

// opError describes a failed bridge invocation, carrying captured stderr
// when the tool produced any.
func opError(op string, err error, stderr string) error {
	if msg := strings.TrimSpace(stderr); msg != "" {
		return fmt.Errorf("%s: %w (%s)", op, err, msg)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// splitList breaks ls -d output into entries, discarding empty strings.
// ls -d separates with tabs or newlines depending on the device shell.
func splitList(out string) []string {
	return strings.FieldsFunc(out, func(r rune) bool {
		return r == '\t' || r == '\n' || r == '\r'
	})
}

// splitLines breaks find output into one entry per line, newline or CR
// terminated. Tabs are legal in file names and stay in the entry.
func splitLines(out string) []string {
	return strings.FieldsFunc(out, func(r rune) bool {
		return r == '\n' || r == '\r'
	})
}

func parseEpochSeconds(out string) (int64, error) {
	value := strings.TrimSpace(out)
	if dot := strings.IndexByte(value, '.'); dot >= 0 {
		value = value[:dot]
	}
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable remote timestamp %q", strings.TrimSpace(out))
	}
	return seconds, nil
}

func parsePulledBytes(out string) int64 {
	match := pulledBytesPattern.FindStringSubmatch(out)
	if match == nil {
		return 0
	}
	n, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
