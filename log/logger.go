// Package log implements ledgerengine's structured logging, built the
// way the teacher's own log package is: a thin Logger facade over the
// standard library's log/slog, with a Handler chain (terminal, logfmt,
// JSON, glog-style per-file verbosity) rather than a third-party
// logging framework. The domain packages never touch slog directly —
// they call log.Info/log.Warn/... the way the teacher's stages call
// log.Info("message", "key", val, ...).
package log

import (
	"context"
	"log/slog"
	"os"
)

// The level constants extend slog's four levels with Trace (below
// Debug) and Crit (above Error), matching the teacher's scale.
const (
	LevelCrit  slog.Level = 10
	LevelError            = slog.LevelError
	LevelWarn             = slog.LevelWarn
	LevelInfo              = slog.LevelInfo
	LevelDebug             = slog.LevelDebug
	LevelTrace slog.Level = -8
)

// Logger writes structured key/value log lines.
type Logger interface {
	With(ctx ...interface{}) Logger
	New(ctx ...interface{}) Logger

	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})

	Handler() slog.Handler
}

type logger struct {
	inner *slog.Logger
}

// NewLogger returns a Logger backed by the given handler.
func NewLogger(h slog.Handler) Logger {
	return &logger{inner: slog.New(h)}
}

func (l *logger) write(level slog.Level, msg string, ctx ...interface{}) {
	l.inner.Log(context.Background(), level, msg, ctx...)
}

func (l *logger) With(ctx ...interface{}) Logger { return &logger{inner: l.inner.With(ctx...)} }
func (l *logger) New(ctx ...interface{}) Logger  { return l.With(ctx...) }

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(LevelTrace, msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(LevelDebug, msg, ctx...) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(LevelInfo, msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(LevelWarn, msg, ctx...) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(LevelError, msg, ctx...) }
func (l *logger) Crit(msg string, ctx ...interface{})  { l.write(LevelCrit, msg, ctx...); os.Exit(1) }

func (l *logger) Handler() slog.Handler { return l.inner.Handler() }

var root = NewLogger(NewTerminalHandler(os.Stderr, false))

// SetDefault sets the package-level logger used by the free functions below.
func SetDefault(l Logger) { root = l }

func Trace(msg string, ctx ...interface{}) { root.Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { root.Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { root.Crit(msg, ctx...) }

// New creates a new Logger with the given context prepended to every line.
func New(ctx ...interface{}) Logger { return root.New(ctx...) }
