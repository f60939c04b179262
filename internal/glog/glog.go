// Package glog holds the logger shared by every backend.
package glog

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

// nopHandler discards every record. Enabled returns false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.New(nopHandler{}))
}

// Set replaces the shared logger. Nil restores silent logging.
func Set(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	logger.Store(l)
}

// Logger returns the shared logger.
func Logger() *slog.Logger {
	return logger.Load()
}

// Or returns l, or the shared logger when l is nil.
func Or(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return Logger()
}

// DebugChecksEnv names the environment variable that turns on the
// "surface must be current" assertions of every backend.
const DebugChecksEnv = "GLCTX_DEBUG"

// DebugChecks reports whether DebugChecksEnv is set to anything other than
// "", "0" or "false".
func DebugChecks() bool {
	switch os.Getenv(DebugChecksEnv) {
	case "", "0", "false":
		return false
	}
	return true
}
