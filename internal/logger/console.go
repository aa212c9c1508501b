// Package logger provides the console logging and rendering used by the
// organizer commands. The engine packages never log; they return reports
// and warnings for the commands to present here.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Log level constants for filtering
const (
	levelDebug int = iota
	levelInfo
	levelWarn
	levelError
)

// Console logs timestamped lines to a writer with level filtering. It is
// safe for concurrent use. Color output is enabled automatically when the
// writer is a terminal.
type Console struct {
	writer io.Writer
	level  int
	mu     sync.Mutex
	color  bool
}

// NewConsole creates a Console writing to w at the given level
// (debug, info, warn, error; empty or unknown defaults to info).
func NewConsole(w io.Writer, level string) *Console {
	return &Console{
		writer: w,
		level:  parseLevel(level),
		color:  isTerminal(w),
	}
}

func parseLevel(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// isTerminal reports whether w is a TTY that supports colors.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Debugf logs a debug-level message.
func (c *Console) Debugf(format string, args ...any) {
	c.logf(levelDebug, nil, format, args...)
}

// Infof logs an info-level message.
func (c *Console) Infof(format string, args ...any) {
	c.logf(levelInfo, nil, format, args...)
}

// Warnf logs a warning.
func (c *Console) Warnf(format string, args ...any) {
	c.logf(levelWarn, color.New(color.FgYellow), format, args...)
}

// Errorf logs an error.
func (c *Console) Errorf(format string, args ...any) {
	c.logf(levelError, color.New(color.FgRed), format, args...)
}

// Printf writes directly without a timestamp or level filter. Used for
// plan previews and report tables.
func (c *Console) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.writer, format, args...)
}

func (c *Console) logf(level int, col *color.Color, format string, args ...any) {
	if c.writer == nil || level < c.level {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	line := fmt.Sprintf("[%s] %s\n", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	if c.color && col != nil {
		col.Fprint(c.writer, line)
		return
	}
	fmt.Fprint(c.writer, line)
}
