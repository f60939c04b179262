package wgl

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

// Display is the WGL state of the desktop: the extensions of the ICD and
// the device context pixel formats are enumerated on.
type Display struct {
	lib    Lib
	native rawhandle.Win32Display

	// hwnd and hdc are queried for pixel formats. They are the caller's
	// window when one was supplied, else the helper window.
	hwnd, hdc uintptr
	// helper is the hidden window extensions were loaded with.
	helper, helperDC uintptr

	exts      caps.Extensions
	features  caps.Features
	debug     bool
	log       *slog.Logger
	destroyed bool
}

// basicFormat is the pixel format the helper window uses to host the
// context extensions are loaded with.
var basicFormat = PixelFormatDescriptor{
	Flags:     _PFD_DRAW_TO_WINDOW | _PFD_SUPPORT_OPENGL | _PFD_DOUBLEBUFFER,
	PixelType: _PFD_TYPE_RGBA,
	ColorBits: 24,
}

// NewDisplay loads the WGL extensions through a hidden helper window. A
// window in native is used to enumerate pixel formats; it is never given
// a pixel format by the display.
func NewDisplay(lib Lib, native rawhandle.Display, opts ...Option) (*Display, error) {
	const op = "wgl.NewDisplay"
	wd, ok := native.(rawhandle.Win32Display)
	if !ok {
		return nil, &glerr.Error{Kind: glerr.NotSupported, Op: op, Reason: fmt.Sprintf("WGL needs a Win32 display, got %s", native)}
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	d := &Display{lib: lib, native: wd, debug: o.debug, log: o.logger}

	helper, err := lib.CreateHelperWindow()
	if err != nil {
		return nil, &glerr.Error{Kind: glerr.OSError, Op: op, Reason: "creating the helper window", Err: err}
	}
	d.helper = helper
	d.helperDC = lib.GetDC(helper)
	if d.helperDC == 0 {
		code := lib.LastError()
		d.Destroy()
		return nil, winError("GetDC", code)
	}
	if err := d.loadExtensions(); err != nil {
		d.Destroy()
		return nil, err
	}

	d.hwnd, d.hdc = d.helper, d.helperDC
	if wd.HWND != 0 {
		hdc := lib.GetDC(wd.HWND)
		if hdc == 0 {
			code := lib.LastError()
			d.Destroy()
			return nil, &glerr.Error{Kind: glerr.BadNativeDisplay, Op: "GetDC", Code: int64(code), CodeName: errorName(code)}
		}
		d.hwnd, d.hdc = wd.HWND, hdc
	}

	d.logger().Debug("wgl display initialized",
		"native", native.String(),
		"features", d.features.String())
	return d, nil
}

// loadExtensions makes a legacy context current on the helper window,
// which WGL requires before it hands out extension entry points.
func (d *Display) loadExtensions() error {
	lib, dc := d.lib, d.helperDC
	format := lib.ChoosePixelFormat(dc, basicFormat)
	if format == 0 {
		return winError("ChoosePixelFormat", lib.LastError())
	}
	if !lib.SetPixelFormat(dc, format) {
		return winError("SetPixelFormat", lib.LastError())
	}
	ctx := lib.CreateContext(dc)
	if ctx == 0 {
		return winError("wglCreateContext", lib.LastError())
	}
	defer lib.DeleteContext(ctx)

	prev := d.current()
	if !lib.MakeCurrent(dc, ctx) {
		return winError("wglMakeCurrent", lib.LastError())
	}
	defer d.restore(prev)

	lib.LoadExtensions()
	var s string
	switch {
	case lib.Has(FnGetExtensionsStringARB):
		s = lib.GetExtensionsStringARB(dc)
	case lib.Has(FnGetExtensionsStringEXT):
		s = lib.GetExtensionsStringEXT()
	}
	d.exts = caps.ParseExtensions(s)
	d.features = deriveFeatures(d.exts, lib.Has)
	return nil
}

// deriveFeatures maps the extension string to features. Extensions whose
// entry points the ICD did not return are treated as absent.
func deriveFeatures(exts caps.Extensions, has func(string) bool) caps.Features {
	var f caps.Features
	set := func(flag caps.Features, ok bool) {
		if ok {
			f |= flag
		}
	}
	pf := exts.Has("WGL_ARB_pixel_format") && has(FnChoosePixelFormatARB) && has(FnGetPixelFormatAttribivARB)
	arb := exts.Has("WGL_ARB_create_context") && has(FnCreateContextAttribsARB)
	set(caps.PixelFormatARB, pf)
	set(caps.CreateContextWithAttribs, arb)
	set(caps.ContextProfile, arb && exts.Has("WGL_ARB_create_context_profile"))
	set(caps.CreateESContext, arb && exts.HasAny("WGL_EXT_create_context_es2_profile", "WGL_EXT_create_context_es_profile"))
	set(caps.ContextRobustness, arb && exts.Has("WGL_ARB_create_context_robustness"))
	set(caps.ContextNoError, arb && exts.Has("WGL_ARB_create_context_no_error"))
	set(caps.FlushControl, arb && exts.Has("WGL_ARB_context_flush_control"))
	// Multisampled, float and sRGB formats are only reachable through
	// WGL_ARB_pixel_format.
	set(caps.Multisampling, pf && exts.Has("WGL_ARB_multisample"))
	set(caps.FloatPixelFormat, pf && exts.Has("WGL_ARB_pixel_format_float"))
	set(caps.SRGBFramebuffers, pf && exts.HasAny("WGL_ARB_framebuffer_sRGB", "WGL_EXT_framebuffer_sRGB"))
	set(caps.SwapControl, exts.Has("WGL_EXT_swap_control") && has(FnSwapIntervalEXT))
	return f
}

// swapRange is the swap interval range of every pixel format.
func (d *Display) swapRange() config.SwapIntervalRange {
	if d.features.Has(caps.SwapControl) {
		return config.SwapIntervalRange{Min: 0, Max: config.UnboundedMax}
	}
	return config.SwapIntervalRange{Min: 1, Max: 2}
}

func (d *Display) logger() *slog.Logger { return glog.Or(d.log) }

// Raw returns the device context pixel formats are enumerated on.
func (d *Display) Raw() uintptr { return d.hdc }

// Native returns the handle the display was created from.
func (d *Display) Native() rawhandle.Display { return d.native }

// Lib returns the function table of the display.
func (d *Display) Lib() Lib { return d.lib }

// Backend reports glcontext.BackendWGL.
func (d *Display) Backend() glcontext.Backend { return glcontext.BackendWGL }

// Extensions returns the WGL extensions in lexical order.
func (d *Display) Extensions() []string { return d.exts.Sorted() }

// HasExtension reports whether the ICD advertises name.
func (d *Display) HasExtension(name string) bool { return d.exts.Has(name) }

// Features returns the capability set of the display.
func (d *Display) Features() caps.Features { return d.features }

// DebugChecks reports whether swap paths verify the surface is current.
func (d *Display) DebugChecks() bool { return d.debug }

// GetProcAddress resolves a GL entry point. wglGetProcAddress only knows
// post-1.1 functions; the loader falls back to opengl32.dll exports.
func (d *Display) GetProcAddress(name string) uintptr { return d.lib.GetProcAddress(name) }

// Destroy releases the device contexts and the helper window the display
// created. The caller's window is left alone.
func (d *Display) Destroy() {
	if d.destroyed {
		return
	}
	d.destroyed = true
	if d.hwnd != 0 && d.hwnd != d.helper {
		d.lib.ReleaseDC(d.hwnd, d.hdc)
	}
	if d.helperDC != 0 {
		d.lib.ReleaseDC(d.helper, d.helperDC)
	}
	if d.helper != 0 {
		d.lib.DestroyWindow(d.helper)
	}
}

func (d *Display) String() string { return fmt.Sprintf("wgl on %s", d.native) }
