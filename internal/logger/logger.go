// Package logger writes diagnostic lines to stderr. Debug, info and warning
// lines only appear with --verbose; errors are always written. Each line
// carries a level tag and, for a Scoped logger, the scope tag (usually a
// chat request id) so concurrent requests can be told apart.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level tags a log line.
type Level string

// Levels in increasing severity.
const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose turns verbose output on or off.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose output is on.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects all log lines. Tests pass a buffer; nil restores stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	output = w
}

// write emits one line under the write lock so lines never interleave.
// Lines below LevelError are dropped unless verbose.
func write(level Level, tag, format string, args []any) {
	mu.Lock()
	defer mu.Unlock()
	if level != LevelError && !verbose {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if tag != "" {
		fmt.Fprintf(output, "[%s] [%s] %s\n", level, tag, msg)
		return
	}
	fmt.Fprintf(output, "[%s] %s\n", level, msg)
}

// Section writes a blank line and a header, verbose only.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

func Debug(format string, args ...any) { write(LevelDebug, "", format, args) }

func Info(format string, args ...any) { write(LevelInfo, "", format, args) }

func Warn(format string, args ...any) { write(LevelWarn, "", format, args) }

// Error is written regardless of verbose mode.
func Error(format string, args ...any) { write(LevelError, "", format, args) }

// Scoped prefixes every line with a fixed tag.
type Scoped struct {
	tag string
}

// For returns a logger whose lines carry tag, e.g. a request id.
func For(tag string) Scoped {
	return Scoped{tag: tag}
}

// Tag returns the scope tag.
func (s Scoped) Tag() string { return s.tag }

func (s Scoped) Debug(format string, args ...any) { write(LevelDebug, s.tag, format, args) }

func (s Scoped) Info(format string, args ...any) { write(LevelInfo, s.tag, format, args) }

func (s Scoped) Warn(format string, args ...any) { write(LevelWarn, s.tag, format, args) }

func (s Scoped) Error(format string, args ...any) { write(LevelError, s.tag, format, args) }
