// Package glctx negotiates OpenGL and OpenGL ES contexts across EGL, GLX
// and WGL behind one set of types.
//
// A Platform holds the native function tables that could be loaded. A
// Display is opened on one backend, chosen by a Preference; every config,
// context and surface derived from it carries the same backend and cannot
// be mixed with objects of another.
//
//	p, err := glctx.LoadPlatform()
//	if err != nil {
//		return err
//	}
//	d, err := glctx.NewDisplay(p, rawhandle.XlibDisplay{Display: dpy}, glctx.EGLThenGLX)
//
// Contexts are current on an OS thread: pin the goroutine with
// runtime.LockOSThread before making a context current.
package glctx

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/tinyrange/glctx/egl"
	"github.com/tinyrange/glctx/glcontext"
	"github.com/tinyrange/glctx/glerr"
	"github.com/tinyrange/glctx/glx"
	"github.com/tinyrange/glctx/internal/glog"
	"github.com/tinyrange/glctx/wgl"
)

// SetLogger sets the logger every backend writes debug records to. Nil
// silences them again, which is the default.
func SetLogger(l *slog.Logger) { glog.Set(l) }

// Platform holds the native function tables of each backend. A nil table
// means the backend is unavailable.
type Platform struct {
	EGL egl.Lib
	GLX glx.Lib
	WGL wgl.Lib
}

// LoadPlatform loads every backend library present on the system. It
// fails only when none could be loaded.
func LoadPlatform() (Platform, error) {
	var (
		p    Platform
		errs error
	)
	if lib, err := egl.Load(); err == nil {
		p.EGL = lib
	} else {
		errs = glerr.Append(errs, err)
	}
	if lib, err := glx.Load(); err == nil {
		p.GLX = lib
	} else {
		errs = glerr.Append(errs, err)
	}
	if lib, err := wgl.Load(); err == nil {
		p.WGL = lib
	} else {
		errs = glerr.Append(errs, err)
	}
	if p.EGL == nil && p.GLX == nil && p.WGL == nil {
		return p, &glerr.Error{Kind: glerr.NotSupported, Op: "glctx.LoadPlatform", Reason: "no OpenGL platform library could be loaded", Err: errs}
	}
	glog.Logger().Debug("glctx platform loaded", "egl", p.EGL != nil, "glx", p.GLX != nil, "wgl", p.WGL != nil, "skipped", errs)
	return p, nil
}

func (p Platform) has(b glcontext.Backend) bool {
	switch b {
	case glcontext.BackendEGL:
		return p.EGL != nil
	case glcontext.BackendGLX:
		return p.GLX != nil
	case glcontext.BackendWGL:
		return p.WGL != nil
	}
	return false
}

// Preference selects the backends NewDisplay tries, in order.
type Preference int

const (
	EGL Preference = iota
	GLX
	WGL
	EGLThenGLX
	GLXThenEGL
	EGLThenWGL
	WGLThenEGL
)

var preferenceOrder = [...][]glcontext.Backend{
	EGL:        {glcontext.BackendEGL},
	GLX:        {glcontext.BackendGLX},
	WGL:        {glcontext.BackendWGL},
	EGLThenGLX: {glcontext.BackendEGL, glcontext.BackendGLX},
	GLXThenEGL: {glcontext.BackendGLX, glcontext.BackendEGL},
	EGLThenWGL: {glcontext.BackendEGL, glcontext.BackendWGL},
	WGLThenEGL: {glcontext.BackendWGL, glcontext.BackendEGL},
}

var preferenceNames = [...]string{
	EGL:        "egl",
	GLX:        "glx",
	WGL:        "wgl",
	EGLThenGLX: "egl-then-glx",
	GLXThenEGL: "glx-then-egl",
	EGLThenWGL: "egl-then-wgl",
	WGLThenEGL: "wgl-then-egl",
}

// Backends returns the backends tried, primary first.
func (p Preference) Backends() []glcontext.Backend {
	if p < 0 || int(p) >= len(preferenceOrder) {
		return nil
	}
	return preferenceOrder[p]
}

func (p Preference) String() string {
	if p < 0 || int(p) >= len(preferenceNames) {
		return fmt.Sprintf("preference(%d)", int(p))
	}
	return preferenceNames[p]
}

// ParsePreference parses the String form of a Preference.
func ParsePreference(s string) (Preference, error) {
	for p, name := range preferenceNames {
		if name == s {
			return Preference(p), nil
		}
	}
	return 0, glerr.BadAPIUsagef("unknown display preference %q", s)
}

// DefaultPreference is the usual choice for the running OS: EGL with a GLX
// fallback on Unix, WGL with an EGL (ANGLE) fallback on Windows.
func DefaultPreference() Preference {
	if runtime.GOOS == "windows" {
		return WGLThenEGL
	}
	return EGLThenGLX
}

// Option configures a Display on whichever backend opens it.
type Option func(*options)

type options struct {
	debug   *bool
	logger  *slog.Logger
	wayland egl.WaylandEGL
}

// WithDebugChecks enables checks that a surface is current before it is
// swapped. The default follows the GLCTX_DEBUG environment variable.
func WithDebugChecks(v bool) Option {
	return func(o *options) { o.debug = &v }
}

// WithLogger sets the logger of the display, overriding SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithWaylandEGL sets the wl_egl_window implementation EGL uses for
// Wayland window surfaces.
func WithWaylandEGL(w egl.WaylandEGL) Option {
	return func(o *options) { o.wayland = w }
}

func (o options) egl() []egl.Option {
	var out []egl.Option
	if o.debug != nil {
		out = append(out, egl.WithDebugChecks(*o.debug))
	}
	if o.logger != nil {
		out = append(out, egl.WithLogger(o.logger))
	}
	if o.wayland != nil {
		out = append(out, egl.WithWaylandEGL(o.wayland))
	}
	return out
}

func (o options) glx() []glx.Option {
	var out []glx.Option
	if o.debug != nil {
		out = append(out, glx.WithDebugChecks(*o.debug))
	}
	if o.logger != nil {
		out = append(out, glx.WithLogger(o.logger))
	}
	return out
}

func (o options) wgl() []wgl.Option {
	var out []wgl.Option
	if o.debug != nil {
		out = append(out, wgl.WithDebugChecks(*o.debug))
	}
	if o.logger != nil {
		out = append(out, wgl.WithLogger(o.logger))
	}
	return out
}
