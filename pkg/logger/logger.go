// Package logger holds the process-wide zerolog logger shared by the API and
// web binaries. Call Init once in main and hand the returned logger to
// constructors; Get exists for code that cannot take it as a dependency.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type Options struct {
	// Level is one of trace, debug, info, warn, error. Anything else is info.
	Level string
	// Pretty switches to zerolog's console writer instead of JSON lines.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service is stamped on every line, e.g. "api" or "web".
	Service string
}

var (
	mu      sync.Mutex
	current atomic.Pointer[zerolog.Logger]
)

// Init builds the logger on first use. Later calls return the existing
// logger and ignore opts.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if l := current.Load(); l != nil {
		return *l
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	lvl := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(lvl)

	ctx := zerolog.New(out).Level(lvl).With().Timestamp().Caller()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	l := ctx.Logger()
	current.Store(&l)
	return l
}

// Get returns the logger built by Init and panics when Init has not run.
func Get() zerolog.Logger {
	l := current.Load()
	if l == nil {
		panic("logger: Get called before Init")
	}
	return *l
}

// Reset forgets the logger so the next Init builds a new one. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current.Store(nil)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}

// PrettyFor reports whether env is a developer environment where console
// output beats JSON.
func PrettyFor(env string) bool {
	switch strings.ToLower(env) {
	case "development", "dev", "local":
		return true
	}
	return false
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
