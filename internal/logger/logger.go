// Package logger is the process-wide structured logger. It wraps log/slog
// with a handler that can be retargeted at runtime: level changes go through
// a slog.LevelVar without a rebuild, format and output changes swap the
// handler in place.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Config holds logger configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or a file path
}

var state struct {
	mu     sync.RWMutex
	level  *slog.LevelVar
	format string // "text" or "json"
	out    io.Writer
	color  bool
	log    *slog.Logger
}

func init() {
	state.level = new(slog.LevelVar)
	state.format = "text"
	state.out = os.Stdout
	state.color = isTerminal(os.Stdout.Fd())

	state.mu.Lock()
	rebuild()
	state.mu.Unlock()
}

// rebuild swaps the logger for one matching the current fields. The caller
// must hold state.mu for writing.
func rebuild() {
	opts := &slog.HandlerOptions{Level: state.level}
	if state.format == "json" {
		state.log = slog.New(slog.NewJSONHandler(state.out, opts))
		return
	}
	state.log = slog.New(newTextHandler(state.out, opts, state.color))
}

// Init applies cfg to the process logger. Output may be "stdout", "stderr"
// or a file path, which is opened for append.
func Init(cfg Config) error {
	if cfg.Output != "" {
		var out io.Writer
		var color bool
		switch strings.ToLower(cfg.Output) {
		case "stdout":
			out, color = os.Stdout, isTerminal(os.Stdout.Fd())
		case "stderr":
			out, color = os.Stderr, isTerminal(os.Stderr.Fd())
		default:
			f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
			}
			out, color = f, false
		}
		state.mu.Lock()
		state.out = out
		state.color = color
		rebuild()
		state.mu.Unlock()
	}
	SetLevel(cfg.Level)
	SetFormat(cfg.Format)
	return nil
}

// InitWithWriter points the logger at w. Tests use it to capture output.
func InitWithWriter(w io.Writer, level, format string, color bool) {
	state.mu.Lock()
	state.out = w
	state.color = color
	rebuild()
	state.mu.Unlock()
	SetLevel(level)
	SetFormat(format)
}

// SetLevel adjusts the minimum level in place. Unknown names are ignored so
// a bad config value cannot silence the server.
func SetLevel(level string) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		state.level.Set(slog.LevelDebug)
	case "INFO":
		state.level.Set(slog.LevelInfo)
	case "WARN":
		state.level.Set(slog.LevelWarn)
	case "ERROR":
		state.level.Set(slog.LevelError)
	}
}

// SetFormat switches between "text" and "json" lines. Anything else is
// ignored.
func SetFormat(format string) {
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return
	}
	state.mu.Lock()
	if state.format != format {
		state.format = format
		rebuild()
	}
	state.mu.Unlock()
}

func current() *slog.Logger {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.log
}

// Debug logs at debug level with alternating key, value fields.
func Debug(msg string, args ...any) { current().Debug(msg, args...) }

// Info logs at info level.
func Info(msg string, args ...any) { current().Info(msg, args...) }

// Warn logs at warn level.
func Warn(msg string, args ...any) { current().Warn(msg, args...) }

// Error logs at error level.
func Error(msg string, args ...any) { current().Error(msg, args...) }

// DebugCtx is Debug with the request fields carried by ctx prepended.
func DebugCtx(ctx context.Context, msg string, args ...any) {
	current().Debug(msg, prependCtx(ctx, args)...)
}

// InfoCtx is Info with request fields.
func InfoCtx(ctx context.Context, msg string, args ...any) {
	current().Info(msg, prependCtx(ctx, args)...)
}

// WarnCtx is Warn with request fields.
func WarnCtx(ctx context.Context, msg string, args ...any) {
	current().Warn(msg, prependCtx(ctx, args)...)
}

// ErrorCtx is Error with request fields.
func ErrorCtx(ctx context.Context, msg string, args ...any) {
	current().Error(msg, prependCtx(ctx, args)...)
}

// prependCtx puts the LogContext fields before args so they lead the line.
func prependCtx(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}
	return append(lc.fields(), args...)
}

// With returns a slog.Logger carrying args on every record.
func With(args ...any) *slog.Logger {
	return current().With(args...)
}

// Duration converts the time since start to fractional milliseconds for
// the duration_ms field.
func Duration(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
