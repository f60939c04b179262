package glx

import (
	"fmt"
	"log/slog"

	"github.com/tinyrange/glctx/caps"
	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/glcontext"
	"github.com/tinyrange/glctx/glerr"
	"github.com/tinyrange/glctx/internal/glog"
	"github.com/tinyrange/glctx/rawhandle"
)

// swapControl is the extension used to set swap intervals.
type swapControl int

const (
	swapNone swapControl = iota
	swapEXT
	swapMESA
	swapSGI
)

func (s swapControl) String() string {
	switch s {
	case swapEXT:
		return "GLX_EXT_swap_control"
	case swapMESA:
		return "GLX_MESA_swap_control"
	case swapSGI:
		return "GLX_SGI_swap_control"
	}
	return "none"
}

// Display is a GLX-capable X display. The Display* stays owned by the
// caller.
type Display struct {
	lib      Lib
	raw      uintptr
	screen   int32
	native   rawhandle.XlibDisplay
	major    int32
	minor    int32
	vendor   string
	exts     caps.Extensions
	features caps.Features
	swap     swapControl
	debug    bool
	log      *slog.Logger
}

// NewDisplay checks that native supports GLX 1.3 and records its
// extensions.
func NewDisplay(lib Lib, native rawhandle.Display, opts ...Option) (*Display, error) {
	const op = "glx.NewDisplay"
	xd, ok := native.(rawhandle.XlibDisplay)
	if !ok {
		return nil, &glerr.Error{Kind: glerr.NotSupported, Op: op, Reason: fmt.Sprintf("GLX needs an Xlib display, got %s", native)}
	}
	if xd.Display == 0 {
		return nil, glerr.New(glerr.BadNativeDisplay, op, "Display* is NULL")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	d := &Display{lib: lib, raw: xd.Display, native: xd, debug: o.debug, log: o.logger}

	lib.TrapErrors()
	major, minor, ok := lib.QueryVersion(xd.Display)
	if !ok {
		return nil, glerr.New(glerr.NotSupported, "glXQueryVersion", "the X server has no GLX extension")
	}
	if major < 1 || (major == 1 && minor < 3) {
		return nil, &glerr.Error{Kind: glerr.NotSupported, Op: op, Reason: fmt.Sprintf("GLX %d.%d is older than 1.3", major, minor)}
	}
	d.major, d.minor = major, minor

	if xd.Screen != nil {
		d.screen = *xd.Screen
	} else {
		d.screen = lib.DefaultScreen(xd.Display)
	}
	d.exts = caps.ParseExtensions(lib.QueryExtensionsString(xd.Display, d.screen))
	d.vendor = lib.GetClientString(xd.Display, _GLX_VENDOR)
	d.features, d.swap = deriveFeatures(d.exts, lib.Has)

	d.logger().Debug("glx display initialized",
		"native", native.String(),
		"version", fmt.Sprintf("%d.%d", major, minor),
		"vendor", d.vendor,
		"swap", d.swap.String(),
		"features", d.features.String())
	return d, nil
}

// deriveFeatures maps the extension string to features. Extensions whose
// entry point the library lacks are treated as absent.
func deriveFeatures(exts caps.Extensions, has func(string) bool) (caps.Features, swapControl) {
	var f caps.Features
	set := func(flag caps.Features, ok bool) {
		if ok {
			f |= flag
		}
	}
	arb := exts.Has("GLX_ARB_create_context") && has(FnCreateContextAttribsARB)
	set(caps.CreateContextWithAttribs, arb)
	// glXMakeContextCurrent with no drawable is allowed for contexts made
	// through GLX_ARB_create_context.
	set(caps.SurfacelessContext, arb)
	set(caps.ContextProfile, arb && exts.Has("GLX_ARB_create_context_profile"))
	set(caps.CreateESContext, arb && exts.HasAny("GLX_EXT_create_context_es2_profile", "GLX_EXT_create_context_es_profile"))
	set(caps.ContextRobustness, arb && exts.Has("GLX_ARB_create_context_robustness"))
	set(caps.ContextNoError, arb && exts.Has("GLX_ARB_create_context_no_error"))
	set(caps.FlushControl, arb && exts.Has("GLX_ARB_context_flush_control"))
	set(caps.Multisampling, exts.Has("GLX_ARB_multisample"))
	set(caps.FloatPixelFormat, exts.Has("GLX_ARB_fbconfig_float"))
	set(caps.SRGBFramebuffers, exts.HasAny("GLX_ARB_framebuffer_sRGB", "GLX_EXT_framebuffer_sRGB"))

	swap := swapNone
	switch {
	case exts.Has("GLX_EXT_swap_control") && has(FnSwapIntervalEXT):
		swap = swapEXT
	case exts.Has("GLX_MESA_swap_control") && has(FnSwapIntervalMESA):
		swap = swapMESA
	case exts.Has("GLX_SGI_swap_control") && has(FnSwapIntervalSGI):
		swap = swapSGI
	}
	set(caps.SwapControl, swap != swapNone)
	return f, swap
}

// swapRange is the swap interval range every config of the display
// accepts, fixed by the swap-control extension.
func (d *Display) swapRange() config.SwapIntervalRange {
	switch d.swap {
	case swapEXT, swapMESA:
		return config.SwapIntervalRange{Min: 0, Max: config.UnboundedMax}
	case swapSGI:
		// glXSwapIntervalSGI rejects 0.
		return config.SwapIntervalRange{Min: 1, Max: config.UnboundedMax}
	}
	return config.SwapIntervalRange{Min: 1, Max: 2}
}

func (d *Display) logger() *slog.Logger { return glog.Or(d.log) }

// Raw returns the Display*.
func (d *Display) Raw() uintptr { return d.raw }

// Screen returns the X screen configs are chosen on.
func (d *Display) Screen() int32 { return d.screen }

// Native returns the handle the display was created from.
func (d *Display) Native() rawhandle.Display { return d.native }

// Lib returns the function table of the display.
func (d *Display) Lib() Lib { return d.lib }

// Backend reports glcontext.BackendGLX.
func (d *Display) Backend() glcontext.Backend { return glcontext.BackendGLX }

// Version returns the GLX version of the server and client.
func (d *Display) Version() (major, minor int) { return int(d.major), int(d.minor) }

// Vendor returns the GLX client vendor string.
func (d *Display) Vendor() string { return d.vendor }

// Extensions returns the GLX extensions in lexical order.
func (d *Display) Extensions() []string { return d.exts.Sorted() }

// HasExtension reports whether the display advertises name.
func (d *Display) HasExtension(name string) bool { return d.exts.Has(name) }

// Features returns the capability set of the display.
func (d *Display) Features() caps.Features { return d.features }

// DebugChecks reports whether swap paths verify the surface is current.
func (d *Display) DebugChecks() bool { return d.debug }

// GetProcAddress resolves a GL or GLX entry point.
func (d *Display) GetProcAddress(name string) uintptr { return d.lib.GetProcAddress(name) }

// Destroy does nothing: the X connection belongs to the caller.
func (d *Display) Destroy() {}

func (d *Display) String() string {
	return fmt.Sprintf("glx %d.%d on %s", d.major, d.minor, d.native)
}
