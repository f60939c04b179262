package wgl

import (
	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/glcontext"
	"github.com/tinyrange/glctx/glerr"
	"github.com/tinyrange/glctx/rawhandle"
	"github.com/tinyrange/glctx/surface"
)

type surfaceState struct {
	display *Display
	config  *Config
	hwnd    uintptr
	hdc     uintptr
	attrs   surface.Attributes

	hasBeenCurrent bool
	destroyed      bool
}

// Surface is the device context of a window. WGL has no pbuffer or
// pixmap surfaces, so K is always surface.Window for surfaces this
// package creates.
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

// Raw returns the HDC.
func (s *Surface[K]) Raw() uintptr { return s.s.hdc }

// HWND returns the window.
func (s *Surface[K]) HWND() uintptr { return s.s.hwnd }

// Config returns the config the surface was created with.
func (s *Surface[K]) Config() *Config { return s.s.config }

// Kind reports surface.WindowType.
func (s *Surface[K]) Kind() surface.Type { return surface.WindowType }

// Backend reports glcontext.BackendWGL.
func (s *Surface[K]) Backend() glcontext.Backend { return glcontext.BackendWGL }

// CreateWindowSurface takes a device context of win and gives it cfg's
// pixel format. A window whose pixel format was already set to another
// format is a BadMatch.
func (d *Display) CreateWindowSurface(cfg *Config, win rawhandle.Window, attrs surface.Attributes) (*Surface[surface.Window], error) {
	w, ok := win.(rawhandle.Win32Window)
	if !ok {
		return nil, glerr.BadAPIUsagef("WGL needs a Win32 window, got %T", win)
	}
	if cfg == nil || cfg.display != d {
		return nil, glerr.BadAPIUsagef("config does not belong to this display")
	}
	if attrs.SRGB != nil && *attrs.SRGB != cfg.attribs.SRGB {
		d.logger().Debug("wgl: sRGB is fixed by the pixel format, ignoring surface override")
	}
	if attrs.SingleBuffer == cfg.attribs.DoubleBuffer {
		d.logger().Debug("wgl: buffering is fixed by the pixel format, ignoring surface override")
	}
	hdc := d.lib.GetDC(w.HWND)
	if hdc == 0 {
		code := d.lib.LastError()
		return nil, &glerr.Error{Kind: glerr.BadNativeWindow, Op: "GetDC", Code: int64(code), CodeName: errorName(code)}
	}
	if err := d.setPixelFormat(hdc, cfg); err != nil {
		d.lib.ReleaseDC(w.HWND, hdc)
		return nil, err
	}
	return &Surface[surface.Window]{s: &surfaceState{display: d, config: cfg, hwnd: w.HWND, hdc: hdc, attrs: attrs}}, nil
}

// CreatePBufferSurface reports NotSupported.
func (d *Display) CreatePBufferSurface(cfg *Config, attrs surface.Attributes) (*Surface[surface.PBuffer], error) {
	return nil, glerr.NotSupportedf("WGL supports window surfaces only")
}

// CreatePixmapSurface reports NotSupported.
func (d *Display) CreatePixmapSurface(cfg *Config, pix rawhandle.Pixmap, attrs surface.Attributes) (*Surface[surface.Pixmap], error) {
	return nil, glerr.NotSupportedf("WGL supports window surfaces only")
}

func (s *surfaceState) isCurrentWith(ctx *contextState) bool {
	lib := s.display.lib
	return lib.GetCurrentContext() == ctx.raw && lib.GetCurrentDC() == s.hdc
}

func (s *surfaceState) checkSwap(ctx *PossiblyCurrentContext, op string) error {
	if s.destroyed {
		return glerr.BadAPIUsagef("%s on a destroyed surface", op)
	}
	if ctx == nil || ctx.s.display != s.display {
		return glerr.BadAPIUsagef("%s needs a context of the same display", op)
	}
	if s.display.debug && !s.isCurrentWith(ctx.s) {
		return glerr.BadAPIUsagef("%s: surface is not current with the context", op)
	}
	return nil
}

// SwapBuffers presents the back buffer.
func (s *Surface[K]) SwapBuffers(ctx *PossiblyCurrentContext) error {
	st := s.s
	if err := st.checkSwap(ctx, "SwapBuffers"); err != nil {
		return err
	}
	if !st.display.lib.SwapBuffers(st.hdc) {
		return winError("SwapBuffers", st.display.lib.LastError())
	}
	return nil
}

// SwapBuffersWithDamage swaps the whole surface: WGL has no damage
// extension.
func (s *Surface[K]) SwapBuffersWithDamage(ctx *PossiblyCurrentContext, rects []surface.Rect) error {
	s.s.display.logger().Debug("wgl: no damage extension, swapping the full surface", "rects", len(rects))
	return s.SwapBuffers(ctx)
}

// SetSwapInterval sets the swap interval of the surface, which must be
// current with ctx.
func (s *Surface[K]) SetSwapInterval(ctx *PossiblyCurrentContext, interval config.SwapInterval) error {
	st := s.s
	if ctx == nil || ctx.s.display != st.display || !st.isCurrentWith(ctx.s) {
		return glerr.BadAPIUsagef("wgl.SetSwapInterval: surface is not current with the context")
	}
	return st.display.setSwapInterval(interval)
}

// Size returns the client area size of the window.
func (s *Surface[K]) Size() (width, height uint32) { return s.s.display.lib.ClientSize(s.s.hwnd) }

// BufferAge returns 0: back buffer contents are always undefined.
func (s *Surface[K]) BufferAge() uint32 { return 0 }

// IsSingleBuffered reports whether the pixel format lacks a back buffer.
func (s *Surface[K]) IsSingleBuffered() bool { return !s.s.config.attribs.DoubleBuffer }

// Resize does nothing: the device context follows the window.
func (s *Surface[K]) Resize(ctx *PossiblyCurrentContext, width, height uint32) {}

// Destroy releases the device context, first releasing the thread's
// binding if it uses it.
func (s *Surface[K]) Destroy() {
	st := s.s
	if st.destroyed {
		return
	}
	st.destroyed = true
	st.display.releaseIfBound(0, st.hdc)
	st.display.lib.ReleaseDC(st.hwnd, st.hdc)
}
