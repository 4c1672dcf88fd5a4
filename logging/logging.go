// ABOUTME: Structured logger construction for the TUI, CLI and MCP entry points
// ABOUTME: Logs to a file under the XDG state dir while the TUI owns the terminal
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// AppName is the directory name used under the XDG base dirs.
const AppName = "crmtui"

// DefaultPath returns $XDG_STATE_HOME/crmtui/crmtui.log.
func DefaultPath() string {
	return filepath.Join(xdg.StateHome, AppName, AppName+".log")
}

// ParseLevel maps a config string to a level, defaulting to info.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// New builds a logger writing to w.
func New(w io.Writer, level string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(level),
		Prefix:          AppName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
}

// OpenFile creates the log file's directory and returns a logger appending to it.
// The returned closer must be closed on shutdown.
func OpenFile(path, level string) (*log.Logger, io.Closer, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, err
	}
	return New(f, level), f, nil
}

// Discard returns a logger that drops everything. Packages use it when no logger is supplied.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// OrDiscard returns l, or a discard logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
