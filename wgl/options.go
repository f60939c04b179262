package wgl

import (
	"log/slog"

	"github.com/tinyrange/glctx/internal/glog"
)

// Option configures a Display.
type Option func(*options)

type options struct {
	debug  bool
	logger *slog.Logger
}

func defaultOptions() options {
	return options{debug: glog.DebugChecks()}
}

// WithDebugChecks enables checks that a surface is current before it is
// swapped. The default follows the GLCTX_DEBUG environment variable.
func WithDebugChecks(v bool) Option {
	return func(o *options) { o.debug = v }
}

// WithLogger sets the logger of the display, overriding the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}
