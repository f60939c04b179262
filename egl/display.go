package egl

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/tinyrange/glctx/caps"
	"github.com/tinyrange/glctx/glcontext"
	"github.com/tinyrange/glctx/glerr"
	"github.com/tinyrange/glctx/internal/glog"
	"github.com/tinyrange/glctx/internal/x11"
	"github.com/tinyrange/glctx/rawhandle"
)

// displayPath is the entry point a display was obtained through. Surface
// creation follows the same path.
type displayPath int

const (
	pathLegacy displayPath = iota
	pathKHR
	pathEXT
)

func (p displayPath) String() string {
	switch p {
	case pathKHR:
		return "eglGetPlatformDisplay"
	case pathEXT:
		return "eglGetPlatformDisplayEXT"
	}
	return "eglGetDisplay"
}

// Display is an initialized EGL display and the capabilities derived from
// it. It is never terminated: other users in the process may share the
// same EGLDisplay.
type Display struct {
	lib        Lib
	raw        uintptr
	native     rawhandle.Display
	path       displayPath
	major      int32
	minor      int32
	vendor     string
	clientAPIs string
	exts       caps.Extensions
	features   caps.Features
	debug      bool

	log     *slog.Logger
	visuals x11.Visuals
	wayland WaylandEGL

	visualsOnce sync.Once
	waylandOnce sync.Once
	waylandErr  error
}

// NewDisplay resolves native to an EGLDisplay, initializes it and records
// its capabilities.
func NewDisplay(lib Lib, native rawhandle.Display, opts ...Option) (*Display, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	d := &Display{
		lib:     lib,
		native:  native,
		debug:   o.debug,
		log:     o.logger,
		visuals: o.visuals,
		wayland: o.wayland,
	}

	client := clientInfoFor(lib)
	raw, path, err := resolveDisplay(lib, client, native, d.logger())
	if err != nil {
		return nil, err
	}
	d.raw, d.path = raw, path

	major, minor, ok := lib.Initialize(raw)
	if !ok {
		return nil, lastError(lib, "eglInitialize")
	}
	d.major, d.minor = major, minor

	extensions, _ := lib.QueryString(raw, _EGL_EXTENSIONS)
	d.exts = caps.ParseExtensions(extensions)
	d.vendor, _ = lib.QueryString(raw, _EGL_VENDOR)
	d.clientAPIs, _ = lib.QueryString(raw, _EGL_CLIENT_APIS)
	d.features = deriveFeatures(d.exts, d.clientAPIs, major, minor)

	d.logger().Debug("egl display initialized",
		"native", native.String(),
		"path", path.String(),
		"version", fmt.Sprintf("%d.%d", major, minor),
		"vendor", d.vendor,
		"features", d.features.String())
	return d, nil
}

func (d *Display) logger() *slog.Logger { return glog.Or(d.log) }

// Raw returns the EGLDisplay.
func (d *Display) Raw() uintptr { return d.raw }

// Native returns the handle the display was created from.
func (d *Display) Native() rawhandle.Display { return d.native }

// Lib returns the function table of the display.
func (d *Display) Lib() Lib { return d.lib }

// Backend reports glcontext.BackendEGL.
func (d *Display) Backend() glcontext.Backend { return glcontext.BackendEGL }

// Version returns the EGL version reported by eglInitialize.
func (d *Display) Version() (major, minor int) { return int(d.major), int(d.minor) }

func (d *Display) atLeast(major, minor int32) bool {
	return d.major > major || (d.major == major && d.minor >= minor)
}

// Vendor returns EGL_VENDOR.
func (d *Display) Vendor() string { return d.vendor }

// Extensions returns the display extensions in lexical order.
func (d *Display) Extensions() []string { return d.exts.Sorted() }

// HasExtension reports whether the display advertises name.
func (d *Display) HasExtension(name string) bool { return d.exts.Has(name) }

// Features returns the capability set of the display.
func (d *Display) Features() caps.Features { return d.features }

// DebugChecks reports whether swap paths verify the surface is current.
func (d *Display) DebugChecks() bool { return d.debug }

// GetProcAddress returns the address of a GL or EGL function, or 0.
func (d *Display) GetProcAddress(name string) uintptr {
	return d.lib.GetProcAddress(name)
}

// Destroy releases nothing. EGL displays are process wide and may be in
// use by other libraries, so eglTerminate is never called.
func (d *Display) Destroy() {}

func (d *Display) String() string {
	return fmt.Sprintf("egl %d.%d (%s) on %s", d.major, d.minor, d.vendor, d.native)
}

func (d *Display) x11Visuals() x11.Visuals {
	d.visualsOnce.Do(func() {
		if d.visuals != nil {
			return
		}
		if _, ok := d.native.(rawhandle.XlibDisplay); !ok {
			return
		}
		xlib, err := x11.Load()
		if err != nil {
			d.logger().Debug("egl: libX11 unavailable, skipping visual checks", "err", err)
			return
		}
		d.visuals = xlib
	})
	return d.visuals
}

func (d *Display) waylandEGL() (WaylandEGL, error) {
	d.waylandOnce.Do(func() {
		if d.wayland != nil {
			return
		}
		d.wayland, d.waylandErr = loadWaylandEGL()
	})
	return d.wayland, d.waylandErr
}

// bindAPI selects the client API that current-context queries and context
// creation apply to on this thread.
func (d *Display) bindAPI(api glcontext.API) error {
	native := uint32(_EGL_OPENGL_API)
	if api == glcontext.GLES {
		native = _EGL_OPENGL_ES_API
	}
	if !d.lib.BindAPI(native) {
		return lastError(d.lib, "eglBindAPI")
	}
	return nil
}

func deriveFeatures(exts caps.Extensions, clientAPIs string, major, minor int32) caps.Features {
	is15 := major > 1 || (major == 1 && minor >= 5)

	f := caps.Multisampling | caps.SwapControl
	// EGL before 1.2 reports no client APIs and supports only ES.
	if clientAPIs == "" || strings.Contains(clientAPIs, "OpenGL_ES") {
		f |= caps.CreateESContext
	}
	if exts.Has("EGL_EXT_pixel_format_float") {
		f |= caps.FloatPixelFormat
	}
	if is15 || exts.Has("EGL_KHR_gl_colorspace") {
		f |= caps.SRGBFramebuffers
	}
	if is15 || exts.Has("EGL_EXT_create_context_robustness") {
		f |= caps.ContextRobustness
	}
	if exts.Has("EGL_KHR_create_context_no_error") {
		f |= caps.ContextNoError
	}
	if is15 || exts.Has("EGL_KHR_create_context") {
		f |= caps.CreateContextWithAttribs | caps.ContextProfile
	}
	if exts.Has("EGL_KHR_context_flush_control") {
		f |= caps.FlushControl
	}
	if is15 || exts.Has("EGL_KHR_surfaceless_context") {
		f |= caps.SurfacelessContext
	}
	if exts.Has("EGL_KHR_swap_buffers_with_damage") {
		f |= caps.SwapBuffersWithDamageKHR
	}
	if exts.Has("EGL_EXT_swap_buffers_with_damage") {
		f |= caps.SwapBuffersWithDamageEXT
	}
	if exts.Has("EGL_EXT_buffer_age") {
		f |= caps.BufferAge
	}
	if exts.Has("EGL_IMG_context_priority") {
		f |= caps.ContextPriority
	}
	return f
}

// clientInfo is what EGL reports without a display: client extensions and
// the library version. Both are fixed for the life of the process.
type clientInfo struct {
	exts  caps.Extensions
	major int32
	minor int32
}

func (c *clientInfo) atLeast(major, minor int32) bool {
	return c.major > major || (c.major == major && c.minor >= minor)
}

var clientInfos sync.Map // Lib -> *clientInfo

func clientInfoFor(lib Lib) *clientInfo {
	if v, ok := clientInfos.Load(lib); ok {
		return v.(*clientInfo)
	}
	info := &clientInfo{}
	exts, ok := lib.QueryString(0, _EGL_EXTENSIONS)
	if !ok {
		// Implementations without EGL_EXT_client_extensions flag
		// EGL_BAD_DISPLAY here.
		lib.GetError()
	}
	info.exts = caps.ParseExtensions(exts)
	if version, ok := lib.QueryString(0, _EGL_VERSION); ok {
		fmt.Sscanf(version, "%d.%d", &info.major, &info.minor)
	} else {
		lib.GetError()
	}
	v, _ := clientInfos.LoadOrStore(lib, info)
	return v.(*clientInfo)
}

// ClientExtensions returns the extensions lib advertises without a
// display, in lexical order.
func ClientExtensions(lib Lib) []string {
	return clientInfoFor(lib).exts.Sorted()
}

// resolveDisplay tries the KHR platform entry point, then the EXT one,
// then eglGetDisplay. A BadAttribute failure stops the search: the
// attributes are wrong and another path will not fix them.
func resolveDisplay(lib Lib, client *clientInfo, native rawhandle.Display, log *slog.Logger) (uintptr, displayPath, error) {
	var errs error
	for _, path := range []displayPath{pathKHR, pathEXT, pathLegacy} {
		raw, err := getDisplay(lib, client, native, path)
		if err == nil {
			return raw, path, nil
		}
		if glerr.KindOf(err) == glerr.BadAttribute {
			return 0, path, err
		}
		log.Debug("egl display path failed", "path", path.String(), "err", err)
		errs = glerr.Append(errs, err)
	}
	kind := glerr.NotSupported
	for _, err := range glerr.Errors(errs) {
		if k := glerr.KindOf(err); k != glerr.NotSupported {
			kind = k
			break
		}
	}
	return 0, pathLegacy, &glerr.Error{
		Kind:   kind,
		Op:     "egl.NewDisplay",
		Reason: fmt.Sprintf("no EGL display for %s", native),
		Err:    errs,
	}
}

func getDisplay(lib Lib, client *clientInfo, native rawhandle.Display, path displayPath) (uintptr, error) {
	var raw uintptr
	switch path {
	case pathKHR:
		if !lib.Has(FnGetPlatformDisplay) || !(client.atLeast(1, 5) || client.exts.Has("EGL_KHR_platform_base")) {
			return 0, glerr.NotSupportedf("eglGetPlatformDisplay is not available")
		}
		platform, handle, attribs, ok := khrPlatform(client.exts, native)
		if !ok {
			return 0, glerr.NotSupportedf("no KHR platform for %s", native)
		}
		raw = lib.GetPlatformDisplay(platform, handle, attribs)
	case pathEXT:
		if !lib.Has(FnGetPlatformDisplayEXT) || !client.exts.Has("EGL_EXT_platform_base") {
			return 0, glerr.NotSupportedf("eglGetPlatformDisplayEXT is not available")
		}
		platform, handle, attribs, ok := extPlatform(client.exts, native)
		if !ok {
			return 0, glerr.NotSupportedf("no EXT platform for %s", native)
		}
		raw = lib.GetPlatformDisplayEXT(platform, handle, attribs)
	default:
		var handle uintptr
		switch n := native.(type) {
		case rawhandle.XlibDisplay:
			handle = n.Display
		case rawhandle.WaylandDisplay:
			handle = n.Display
		case rawhandle.GbmDisplay:
			handle = n.Device
		case rawhandle.AndroidDisplay, rawhandle.Win32Display:
			// EGL_DEFAULT_DISPLAY
		default:
			return 0, glerr.NotSupportedf("eglGetDisplay cannot open %s", native)
		}
		raw = lib.GetDisplay(handle)
	}
	if raw == 0 {
		code := lib.GetError()
		if code == _EGL_SUCCESS {
			return 0, &glerr.Error{Kind: glerr.BadNativeDisplay, Op: path.String(), Reason: "returned EGL_NO_DISPLAY"}
		}
		return 0, nativeError(path.String(), code)
	}
	return raw, nil
}

func khrPlatform(exts caps.Extensions, native rawhandle.Display) (platform int32, handle uintptr, attribs []uintptr, ok bool) {
	switch n := native.(type) {
	case rawhandle.XlibDisplay:
		if !exts.Has("EGL_KHR_platform_x11") {
			return 0, 0, nil, false
		}
		if n.Screen != nil {
			attribs = append(attribs, _EGL_PLATFORM_X11_SCREEN, uintptr(*n.Screen))
		}
		return _EGL_PLATFORM_X11, n.Display, append(attribs, _EGL_NONE), true
	case rawhandle.WaylandDisplay:
		return _EGL_PLATFORM_WAYLAND, n.Display, []uintptr{_EGL_NONE}, exts.Has("EGL_KHR_platform_wayland")
	case rawhandle.GbmDisplay:
		return _EGL_PLATFORM_GBM, n.Device, []uintptr{_EGL_NONE}, exts.Has("EGL_KHR_platform_gbm")
	case rawhandle.AndroidDisplay:
		return _EGL_PLATFORM_ANDROID, 0, []uintptr{_EGL_NONE}, exts.Has("EGL_KHR_platform_android")
	}
	return 0, 0, nil, false
}

func extPlatform(exts caps.Extensions, native rawhandle.Display) (platform int32, handle uintptr, attribs []int32, ok bool) {
	switch n := native.(type) {
	case rawhandle.XlibDisplay:
		if !exts.Has("EGL_EXT_platform_x11") {
			return 0, 0, nil, false
		}
		if n.Screen != nil {
			attribs = append(attribs, _EGL_PLATFORM_X11_SCREEN, *n.Screen)
		}
		return _EGL_PLATFORM_X11, n.Display, append(attribs, _EGL_NONE), true
	case rawhandle.WaylandDisplay:
		return _EGL_PLATFORM_WAYLAND, n.Display, []int32{_EGL_NONE}, exts.Has("EGL_EXT_platform_wayland")
	case rawhandle.GbmDisplay:
		return _EGL_PLATFORM_GBM, n.Device, []int32{_EGL_NONE}, exts.Has("EGL_MESA_platform_gbm")
	case rawhandle.Win32Display:
		return _EGL_PLATFORM_ANGLE_ANGLE, 0, []int32{_EGL_NONE}, exts.Has("EGL_ANGLE_platform_angle")
	case rawhandle.EGLDeviceDisplay:
		return _EGL_PLATFORM_DEVICE_EXT, n.Device, []int32{_EGL_NONE}, exts.Has("EGL_EXT_platform_device")
	case rawhandle.SurfacelessDisplay:
		return _EGL_PLATFORM_SURFACELESS, 0, []int32{_EGL_NONE}, exts.Has("EGL_MESA_platform_surfaceless")
	}
	return 0, 0, nil, false
}
