package log

import (
	"log/slog"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

func splitComma(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitEquals(s string) (name string, level int, ok bool) {
	idx := strings.LastIndex(s, "=")
	if idx < 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return "", 0, false
	}
	return s[:idx], n, true
}

// globToRegexp turns a glog-style file glob ("foo_test.go", "foo*") into
// an anchored regexp matched against the caller's base filename.
func globToRegexp(glob string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '.':
			b.WriteString(`\.`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

// vlevelToSlog maps glog's 0(quiet)..9(chatty) scale onto this
// package's slog-based Level scale, where higher glog verbosity means
// a lower (more permissive) threshold.
func vlevelToSlog(v int) slog.Level {
	switch {
	case v <= 0:
		return LevelCrit
	case v == 1:
		return LevelError
	case v == 2:
		return LevelWarn
	case v == 3:
		return LevelInfo
	case v == 4:
		return LevelDebug
	default:
		return LevelTrace
	}
}

// callerFile returns the base filename of the log call site, walking
// past this package's own frames.
func callerFile() string {
	var pcs [32]uintptr
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	frame, more := frames.Next()
	for more && (strings.HasPrefix(frame.Function, "log/slog.") ||
		strings.HasPrefix(frame.Function, "github.com/lumeranet/ledgerengine/log.") && !strings.HasSuffix(frame.File, "_test.go")) {
		frame, more = frames.Next()
	}
	if frame.File == "" {
		return ""
	}
	if idx := strings.LastIndexByte(frame.File, '/'); idx >= 0 {
		return frame.File[idx+1:]
	}
	return frame.File
}
