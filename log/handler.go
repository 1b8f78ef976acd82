package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"time"
)

const termTimeFormat = "01-02|15:04:05.000"

func writeTimeTermFormat(w io.Writer, t time.Time) {
	fmt.Fprint(w, t.Format(termTimeFormat))
}

var levelLabel = map[slog.Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelCrit:  "CRIT",
}

func labelFor(l slog.Level) string {
	if s, ok := levelLabel[l]; ok {
		return s
	}
	return l.String()
}

// terminalHandler renders human-readable lines: "LEVEL [mm-dd|hh:mm:ss.sss] msg  k=v k=v".
type terminalHandler struct {
	mu       *sync.Mutex
	w        io.Writer
	useColor bool
	attrs    []slog.Attr
	level    slog.Level
}

// NewTerminalHandler returns a slog.Handler that renders in the
// teacher's terminal format. Color output is accepted for interface
// parity with the teacher, but useColor is stored and never read: no
// ANSI codes are emitted.
func NewTerminalHandler(w io.Writer, useColor bool) slog.Handler {
	return &terminalHandler{mu: new(sync.Mutex), w: w, useColor: useColor, level: LevelTrace}
}

// NewTerminalHandlerWithLevel is NewTerminalHandler plus a minimum level filter.
func NewTerminalHandlerWithLevel(w io.Writer, level slog.Level, useColor bool) slog.Handler {
	return &terminalHandler{mu: new(sync.Mutex), w: w, useColor: useColor, level: level}
}

func (h *terminalHandler) Enabled(_ context.Context, level slog.Level) bool { return level >= h.level }

func (h *terminalHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintf(h.w, "%-5s ", labelFor(r.Level))
	fmt.Fprint(h.w, "[")
	writeTimeTermFormat(h.w, r.Time)
	fmt.Fprint(h.w, "] ")
	fmt.Fprintf(h.w, "%-40s", r.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(h.w, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(h.w, " %s=%v", a.Key, formatValue(a.Value))
		return true
	})
	fmt.Fprint(h.w, "\n")
	return nil
}

func formatValue(v slog.Value) interface{} {
	return v.Any()
}

func (h *terminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := &terminalHandler{mu: h.mu, w: h.w, useColor: h.useColor, level: h.level}
	n.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return n
}

func (h *terminalHandler) WithGroup(string) slog.Handler { return h }

// JSONHandler returns a slog.Handler that writes one JSON object per line.
func JSONHandler(w io.Writer) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: LevelTrace})
}

// JSONHandlerWithLevel is JSONHandler plus a minimum level filter.
func JSONHandlerWithLevel(w io.Writer, level slog.Leveler) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

// LogfmtHandler returns a slog.Handler writing logfmt-style key=value lines.
func LogfmtHandler(w io.Writer) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: LevelTrace})
}

// GlogHandler wraps another handler and adds glog-style -v / -vmodule
// filtering: a global verbosity floor plus optional per-source-file
// overrides, matching the teacher's log.GlogHandler.
type GlogHandler struct {
	mu        sync.RWMutex
	orig      slog.Handler
	verbosity slog.Level
	patterns  []vmodulePattern
}

type vmodulePattern struct {
	re    *regexp.Regexp
	level slog.Level
}

// NewGlogHandler wraps h with vmodule/verbosity filtering.
func NewGlogHandler(h slog.Handler) *GlogHandler {
	return &GlogHandler{orig: h, verbosity: LevelTrace}
}

// Verbosity sets the global verbosity floor.
func (g *GlogHandler) Verbosity(level slog.Level) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verbosity = level
}

// Vmodule sets per-file verbosity overrides, e.g. "foo_test.go=5"
// mapped onto this package's Level scale (5 ~= LevelTrace).
func (g *GlogHandler) Vmodule(spec string) error {
	// format: pattern=level[,pattern=level...]
	g.mu.Lock()
	defer g.mu.Unlock()
	g.patterns = nil
	pairs := splitComma(spec)
	for _, p := range pairs {
		name, lvl, ok := splitEquals(p)
		if !ok {
			continue
		}
		re, err := globToRegexp(name)
		if err != nil {
			return err
		}
		g.patterns = append(g.patterns, vmodulePattern{re: re, level: vlevelToSlog(lvl)})
	}
	return nil
}

func (g *GlogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(g.patterns) == 0 {
		return level >= g.verbosity
	}
	file := callerFile()
	for _, p := range g.patterns {
		if p.re.MatchString(file) {
			return level >= p.level
		}
	}
	return level >= g.verbosity
}

func (g *GlogHandler) Handle(ctx context.Context, r slog.Record) error { return g.orig.Handle(ctx, r) }
func (g *GlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &GlogHandler{orig: g.orig.WithAttrs(attrs), verbosity: g.verbosity, patterns: g.patterns}
}
func (g *GlogHandler) WithGroup(name string) slog.Handler {
	return &GlogHandler{orig: g.orig.WithGroup(name), verbosity: g.verbosity, patterns: g.patterns}
}
