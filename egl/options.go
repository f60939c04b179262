package egl

import (
	"log/slog"

	"github.com/tinyrange/glctx/internal/glog"
	"github.com/tinyrange/glctx/internal/x11"
)

// Option configures a Display.
type Option func(*options)

type options struct {
	debug   bool
	logger  *slog.Logger
	visuals x11.Visuals
	wayland WaylandEGL
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

// WithX11Visuals sets the visual lookup used for transparency checks and
// X11Visual on Xlib displays. By default libX11 is loaded on first use.
func WithX11Visuals(v x11.Visuals) Option {
	return func(o *options) { o.visuals = v }
}

// WithWaylandEGL sets the wl_egl_window implementation used for Wayland
// window surfaces. By default libwayland-egl is loaded on first use.
func WithWaylandEGL(w WaylandEGL) Option {
	return func(o *options) { o.wayland = w }
}
