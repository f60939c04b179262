package egl

import (
	"unsafe"

	"github.com/tinyrange/glctx/caps"
	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/glcontext"
	"github.com/tinyrange/glctx/glerr"
	"github.com/tinyrange/glctx/rawhandle"
	"github.com/tinyrange/glctx/surface"
)

type surfaceState struct {
	display *Display
	config  *Config
	raw     uintptr
	kind    surface.Type
	attrs   surface.Attributes

	// wlWindow is the wl_egl_window owned by a Wayland window surface.
	wlWindow uintptr
	// xid keeps the Window or Pixmap XID alive while the platform path
	// holds a pointer to it.
	xid *uint64

	hasBeenCurrent bool
	destroyed      bool
}

// Surface is an EGLSurface of kind K: surface.Window, surface.PBuffer or
// surface.Pixmap.
type Surface[K surface.Kind] struct {
	s *surfaceState
}

func (s *Surface[K]) state() *surfaceState {
	if s == nil {
		return nil
	}
	return s.s
}

// stateOf returns the state behind d, or nil for a nil surface.
func stateOf(d Drawable) *surfaceState {
	if d == nil {
		return nil
	}
	return d.state()
}

// Raw returns the EGLSurface.
func (s *Surface[K]) Raw() uintptr { return s.s.raw }

// Config returns the config the surface was created with.
func (s *Surface[K]) Config() *Config { return s.s.config }

// Kind returns the runtime form of K.
func (s *Surface[K]) Kind() surface.Type { return s.s.kind }

// Backend reports glcontext.BackendEGL.
func (s *Surface[K]) Backend() glcontext.Backend { return glcontext.BackendEGL }

// CreateWindowSurface creates a surface rendering into win.
func (d *Display) CreateWindowSurface(cfg *Config, win rawhandle.Window, attrs surface.Attributes) (*Surface[surface.Window], error) {
	s, err := d.createSurface(cfg, surface.WindowType, attrs, func(st *surfaceState, list []int32) (uintptr, error) {
		return d.createWindow(st, win, list)
	})
	if err != nil {
		return nil, err
	}
	return &Surface[surface.Window]{s: s}, nil
}

// CreatePBufferSurface creates an offscreen pbuffer of attrs.Width by
// attrs.Height.
func (d *Display) CreatePBufferSurface(cfg *Config, attrs surface.Attributes) (*Surface[surface.PBuffer], error) {
	s, err := d.createSurface(cfg, surface.PBufferType, attrs, func(_ *surfaceState, list []int32) (uintptr, error) {
		raw := d.lib.CreatePbufferSurface(d.raw, cfg.raw, list)
		if raw == 0 {
			return 0, lastError(d.lib, "eglCreatePbufferSurface")
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return &Surface[surface.PBuffer]{s: s}, nil
}

// CreatePixmapSurface creates a surface rendering into pix.
func (d *Display) CreatePixmapSurface(cfg *Config, pix rawhandle.Pixmap, attrs surface.Attributes) (*Surface[surface.Pixmap], error) {
	s, err := d.createSurface(cfg, surface.PixmapType, attrs, func(st *surfaceState, list []int32) (uintptr, error) {
		return d.createPixmap(st, pix, list)
	})
	if err != nil {
		return nil, err
	}
	return &Surface[surface.Pixmap]{s: s}, nil
}

func (d *Display) createSurface(cfg *Config, kind surface.Type, attrs surface.Attributes, create func(*surfaceState, []int32) (uintptr, error)) (*surfaceState, error) {
	if cfg == nil || cfg.display != d {
		return nil, glerr.BadAPIUsagef("config does not belong to this display")
	}
	if !cfg.attribs.SurfaceTypes.Has(kind.SurfaceTypes()) {
		return nil, &glerr.Error{Kind: glerr.BadConfig, Op: "egl.Create" + kind.String() + "Surface", Reason: "config does not support " + kind.String() + " surfaces"}
	}
	st := &surfaceState{display: d, config: cfg, kind: kind, attrs: attrs}
	raw, err := create(st, d.surfaceAttribs(cfg, kind, attrs))
	if err != nil {
		return nil, err
	}
	st.raw = raw
	return st, nil
}

// surfaceAttribs builds the EGL_NONE terminated surface attribute list.
func (d *Display) surfaceAttribs(cfg *Config, kind surface.Type, attrs surface.Attributes) []int32 {
	var a []int32
	add := func(k, v int32) { a = append(a, k, v) }

	switch kind {
	case surface.WindowType:
		if attrs.SingleBuffer || !cfg.attribs.DoubleBuffer {
			add(_EGL_RENDER_BUFFER, _EGL_SINGLE_BUFFER)
		} else {
			add(_EGL_RENDER_BUFFER, _EGL_BACK_BUFFER)
		}
	case surface.PBufferType:
		add(_EGL_WIDTH, int32(attrs.Width))
		add(_EGL_HEIGHT, int32(attrs.Height))
		if attrs.LargestPBuffer {
			add(_EGL_LARGEST_PBUFFER, _EGL_TRUE)
		}
	}
	if cfg.srgbSet {
		srgb := cfg.attribs.SRGB
		if attrs.SRGB != nil {
			srgb = *attrs.SRGB
		}
		if srgb {
			add(_EGL_GL_COLORSPACE, _EGL_GL_COLORSPACE_SRGB)
		} else {
			add(_EGL_GL_COLORSPACE, _EGL_GL_COLORSPACE_LINEAR)
		}
	}
	return append(a, _EGL_NONE)
}

func widen(a []int32) []uintptr {
	out := make([]uintptr, len(a))
	for i, v := range a {
		out[i] = uintptr(v)
	}
	return out
}

func (d *Display) createWindow(st *surfaceState, win rawhandle.Window, list []int32) (uintptr, error) {
	cfg := st.config
	var handle, platformHandle uintptr
	switch w := win.(type) {
	case rawhandle.XlibWindow:
		if _, ok := d.native.(rawhandle.XlibDisplay); !ok {
			return 0, glerr.BadAPIUsagef("xlib window on a %s display", d.native)
		}
		// The platform entry points take a pointer to the XID, the legacy
		// one the XID itself.
		st.xid = new(uint64)
		*st.xid = w.Window
		handle = uintptr(w.Window)
		platformHandle = uintptr(unsafe.Pointer(st.xid))
	case rawhandle.WaylandWindow:
		if _, ok := d.native.(rawhandle.WaylandDisplay); !ok {
			return 0, glerr.BadAPIUsagef("wayland window on a %s display", d.native)
		}
		wl, err := d.waylandEGL()
		if err != nil {
			return 0, &glerr.Error{Kind: glerr.NotSupported, Op: "wl_egl_window_create", Err: err}
		}
		width, height := int32(st.attrs.Width), int32(st.attrs.Height)
		if width <= 0 || height <= 0 {
			width, height = 1, 1
		}
		st.wlWindow = wl.CreateWindow(w.Surface, width, height)
		if st.wlWindow == 0 {
			return 0, glerr.New(glerr.BadNativeWindow, "wl_egl_window_create", "returned NULL")
		}
		handle, platformHandle = st.wlWindow, st.wlWindow
	case rawhandle.GbmWindow:
		handle, platformHandle = w.Surface, w.Surface
	case rawhandle.AndroidWindow:
		handle, platformHandle = w.Window, w.Window
	case rawhandle.Win32Window:
		handle, platformHandle = w.HWND, w.HWND
	default:
		return 0, glerr.NotSupportedf("unsupported window %T", win)
	}

	var raw uintptr
	op := "eglCreateWindowSurface"
	switch {
	case d.path == pathKHR && d.lib.Has(FnCreatePlatformWindowSurface):
		op = FnCreatePlatformWindowSurface
		raw = d.lib.CreatePlatformWindowSurface(d.raw, cfg.raw, platformHandle, widen(list))
	case d.path == pathEXT && d.lib.Has(FnCreatePlatformWindowSurfaceEXT):
		op = FnCreatePlatformWindowSurfaceEXT
		raw = d.lib.CreatePlatformWindowSurfaceEXT(d.raw, cfg.raw, platformHandle, list)
	default:
		raw = d.lib.CreateWindowSurface(d.raw, cfg.raw, handle, list)
	}
	if raw == 0 {
		err := lastError(d.lib, op)
		st.releaseNative()
		return 0, err
	}
	return raw, nil
}

func (d *Display) createPixmap(st *surfaceState, pix rawhandle.Pixmap, list []int32) (uintptr, error) {
	cfg := st.config
	p, ok := pix.(rawhandle.XlibPixmap)
	if !ok {
		return 0, glerr.NotSupportedf("unsupported pixmap %T", pix)
	}
	st.xid = new(uint64)
	*st.xid = p.Pixmap

	var raw uintptr
	op := "eglCreatePixmapSurface"
	switch {
	case d.path == pathKHR && d.lib.Has(FnCreatePlatformPixmapSurface):
		op = FnCreatePlatformPixmapSurface
		raw = d.lib.CreatePlatformPixmapSurface(d.raw, cfg.raw, uintptr(unsafe.Pointer(st.xid)), widen(list))
	case d.path == pathEXT && d.lib.Has(FnCreatePlatformPixmapSurfaceEXT):
		op = FnCreatePlatformPixmapSurfaceEXT
		raw = d.lib.CreatePlatformPixmapSurfaceEXT(d.raw, cfg.raw, uintptr(unsafe.Pointer(st.xid)), list)
	default:
		raw = d.lib.CreatePixmapSurface(d.raw, cfg.raw, uintptr(p.Pixmap), list)
	}
	if raw == 0 {
		return 0, lastError(d.lib, op)
	}
	return raw, nil
}

// isCurrentDraw reports whether ctx is current with s as its draw surface.
func (s *surfaceState) isCurrentDraw(ctx *contextState) bool {
	d := s.display
	if d.bindAPI(ctx.api) != nil {
		return false
	}
	return d.lib.GetCurrentContext() == ctx.raw && d.lib.GetCurrentSurface(_EGL_DRAW) == s.raw
}

func (s *surfaceState) checkSwap(ctx *PossiblyCurrentContext, op string) error {
	if s.kind != surface.WindowType {
		return glerr.BadAPIUsagef("%s on a %s surface", op, s.kind)
	}
	if s.destroyed {
		return glerr.BadAPIUsagef("%s on a destroyed surface", op)
	}
	if ctx == nil || ctx.s.display != s.display {
		return glerr.BadAPIUsagef("%s needs a context of the same display", op)
	}
	if s.raw == 0 {
		return glerr.New(glerr.ContextLost, op, "surface is EGL_NO_SURFACE")
	}
	if s.display.debug && !s.isCurrentDraw(ctx.s) {
		return glerr.BadAPIUsagef("%s: surface is not current with the context", op)
	}
	return nil
}

// SwapBuffers presents the back buffer. Only window surfaces can be
// swapped.
func (s *Surface[K]) SwapBuffers(ctx *PossiblyCurrentContext) error {
	st := s.s
	if err := st.checkSwap(ctx, "eglSwapBuffers"); err != nil {
		return err
	}
	d := st.display
	if !d.lib.SwapBuffers(d.raw, st.raw) {
		return currentError(d.lib, "eglSwapBuffers")
	}
	return nil
}

// SwapBuffersWithDamage presents the back buffer, telling the compositor
// only rects changed. Without a damage extension it swaps the whole
// surface.
func (s *Surface[K]) SwapBuffersWithDamage(ctx *PossiblyCurrentContext, rects []surface.Rect) error {
	st := s.s
	if err := st.checkSwap(ctx, "eglSwapBuffersWithDamage"); err != nil {
		return err
	}
	d := st.display
	flat := surface.Flatten(rects)
	var ok bool
	op := FnSwapBuffersWithDamageKHR
	switch {
	case d.features.Has(caps.SwapBuffersWithDamageKHR) && d.lib.Has(FnSwapBuffersWithDamageKHR):
		ok = d.lib.SwapBuffersWithDamageKHR(d.raw, st.raw, flat)
	case d.features.Has(caps.SwapBuffersWithDamageEXT) && d.lib.Has(FnSwapBuffersWithDamageEXT):
		op = FnSwapBuffersWithDamageEXT
		ok = d.lib.SwapBuffersWithDamageEXT(d.raw, st.raw, flat)
	default:
		d.logger().Debug("egl: no damage extension, swapping the full surface")
		op = "eglSwapBuffers"
		ok = d.lib.SwapBuffers(d.raw, st.raw)
	}
	if !ok {
		return currentError(d.lib, op)
	}
	return nil
}

// SetSwapInterval sets the swap interval of the surface, which must be
// current with ctx.
func (s *Surface[K]) SetSwapInterval(ctx *PossiblyCurrentContext, interval config.SwapInterval) error {
	st := s.s
	const op = "eglSwapInterval"
	if st.kind != surface.WindowType {
		return glerr.BadAPIUsagef("%s on a %s surface", op, st.kind)
	}
	if ctx == nil || ctx.s.display != st.display || !st.isCurrentDraw(ctx.s) {
		return glerr.BadAPIUsagef("%s: surface is not current with the context", op)
	}
	r, err := st.config.SwapIntervalRange()
	if err != nil {
		return err
	}
	if !r.Contains(interval) {
		return &glerr.Error{Kind: glerr.NotSupported, Op: op, Reason: interval.String() + " is outside " + r.String()}
	}
	d := st.display
	if !d.lib.SwapInterval(d.raw, interval.Native()) {
		return lastError(d.lib, op)
	}
	return nil
}

// Size returns the current size of the surface, or zeros when the driver
// cannot report it.
func (s *Surface[K]) Size() (width, height uint32) {
	d := s.s.display
	w, ok := d.lib.QuerySurface(d.raw, s.s.raw, _EGL_WIDTH)
	if !ok {
		d.lib.GetError()
		return 0, 0
	}
	h, ok := d.lib.QuerySurface(d.raw, s.s.raw, _EGL_HEIGHT)
	if !ok {
		d.lib.GetError()
		return 0, 0
	}
	return uint32(w), uint32(h)
}

// BufferAge returns the age of the back buffer in frames, or 0 when its
// contents are undefined or EGL_EXT_buffer_age is missing.
func (s *Surface[K]) BufferAge() uint32 {
	d := s.s.display
	if !d.features.Has(caps.BufferAge) {
		return 0
	}
	age, ok := d.lib.QuerySurface(d.raw, s.s.raw, _EGL_BUFFER_AGE_EXT)
	if !ok || age < 0 {
		d.lib.GetError()
		return 0
	}
	return uint32(age)
}

// IsSingleBuffered reports whether rendering goes straight to the front
// buffer.
func (s *Surface[K]) IsSingleBuffered() bool {
	d := s.s.display
	v, ok := d.lib.QuerySurface(d.raw, s.s.raw, _EGL_RENDER_BUFFER)
	if !ok {
		d.lib.GetError()
		return false
	}
	return v == _EGL_SINGLE_BUFFER
}

// Resize resizes the native window of a Wayland surface. Other window
// systems resize with the window and need nothing.
func (s *Surface[K]) Resize(ctx *PossiblyCurrentContext, width, height uint32) {
	st := s.s
	if st.wlWindow == 0 || width == 0 || height == 0 {
		return
	}
	if wl, err := st.display.waylandEGL(); err == nil {
		wl.ResizeWindow(st.wlWindow, int32(width), int32(height), 0, 0)
	}
}

// Destroy destroys the surface, first releasing the thread's binding if
// the surface is bound as its draw or read surface.
func (s *Surface[K]) Destroy() {
	st := s.s
	if st.destroyed {
		return
	}
	st.destroyed = true
	d := st.display
	if st.raw != 0 {
		d.releaseIfBound(0, st.raw)
		if !d.lib.DestroySurface(d.raw, st.raw) {
			d.logger().Debug("egl: destroying surface failed", "err", lastError(d.lib, "eglDestroySurface"))
		}
	}
	st.releaseNative()
}

func (s *surfaceState) releaseNative() {
	if s.wlWindow != 0 {
		if wl, err := s.display.waylandEGL(); err == nil {
			wl.DestroyWindow(s.wlWindow)
		}
		s.wlWindow = 0
	}
	s.xid = nil
}
