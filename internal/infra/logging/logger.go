// Package logging provides file-based logging for tpaws.
// Every run appends to <config dir>/tpaws/logs/tpaws.log; in debug mode
// records are mirrored to stderr as well.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LogFileName is the name of the log file inside the logs directory.
const LogFileName = "tpaws.log"

// DebugEnv enables debug logging when set to a truthy value.
const DebugEnv = "TPAWS_DEBUG"

// Logger owns the log file and the slog.Logger writing to it.
type Logger struct {
	*slog.Logger
	file *os.File
}

// Options configure a Logger.
type Options struct {
	Stderr io.Writer  // Debug mirror; defaults to os.Stderr
	Dir    string     // Logs directory; empty disables the file sink
	Level  slog.Level // Minimum level for the file sink
	Debug  bool       // Mirror debug records to Stderr
}

// New creates a logger. A log file that cannot be opened is not fatal:
// the logger falls back to the stderr sink (or discards).
func New(opts Options) *Logger {
	var handlers []slog.Handler
	l := &Logger{}

	if opts.Dir != "" {
		if f, err := openLogFile(opts.Dir); err == nil {
			l.file = f
			level := opts.Level
			if opts.Debug {
				level = slog.LevelDebug
			}
			handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
		}
	}

	if opts.Debug {
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	switch len(handlers) {
	case 0:
		l.Logger = slog.New(slog.DiscardHandler)
	case 1:
		l.Logger = slog.New(handlers[0])
	default:
		l.Logger = slog.New(fanout(handlers))
	}
	return l
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func openLogFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	path := filepath.Join(dir, LogFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec // path is built from the user config dir
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DebugFromEnv reports whether TPAWS_DEBUG asks for debug output.
func DebugFromEnv() bool {
	return ParseBool(os.Getenv(DebugEnv))
}

// ParseBool treats anything but an empty or explicit false value as true.
func ParseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}

// fanout sends every record to all handlers.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
