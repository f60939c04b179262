package glx

import (
	"fmt"

	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/glcontext"
	"github.com/tinyrange/glctx/glerr"
	"github.com/tinyrange/glctx/internal/x11"
	"github.com/tinyrange/glctx/rawhandle"
	"github.com/tinyrange/glctx/surface"
)

type surfaceState struct {
	display *Display
	config  *Config
	raw     uintptr
	kind    surface.Type
	attrs   surface.Attributes

	hasBeenCurrent bool
	destroyed      bool
}

// Surface is a GLXDrawable of kind K: a GLXWindow, GLXPbuffer or
// GLXPixmap.
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

// Raw returns the GLXDrawable.
func (s *Surface[K]) Raw() uintptr { return s.s.raw }

// Config returns the config the surface was created with.
func (s *Surface[K]) Config() *Config { return s.s.config }

// Kind returns the runtime form of K.
func (s *Surface[K]) Kind() surface.Type { return s.s.kind }

// Backend reports glcontext.BackendGLX.
func (s *Surface[K]) Backend() glcontext.Backend { return glcontext.BackendGLX }

// CreateWindowSurface creates a GLXWindow for win. The window must have
// been created with the config's visual.
func (d *Display) CreateWindowSurface(cfg *Config, win rawhandle.Window, attrs surface.Attributes) (*Surface[surface.Window], error) {
	xw, ok := win.(rawhandle.XlibWindow)
	if !ok {
		return nil, glerr.BadAPIUsagef("GLX needs an Xlib window, got %T", win)
	}
	if cfg != nil && xw.VisualID != 0 && cfg.hasVisual && xw.VisualID != cfg.visual.ID {
		return nil, &glerr.Error{Kind: glerr.BadMatch, Op: "glXCreateWindow",
			Reason: fmt.Sprintf("window visual 0x%x, config visual 0x%x", xw.VisualID, cfg.visual.ID)}
	}
	s, err := d.createSurface(cfg, surface.WindowType, attrs, "glXCreateWindow", func() uintptr {
		return d.lib.CreateWindow(d.raw, cfg.raw, xw.Window, []int32{_None})
	})
	if err != nil {
		return nil, err
	}
	return &Surface[surface.Window]{s: s}, nil
}

// CreatePBufferSurface creates a GLXPbuffer of attrs.Width by attrs.Height.
func (d *Display) CreatePBufferSurface(cfg *Config, attrs surface.Attributes) (*Surface[surface.PBuffer], error) {
	s, err := d.createSurface(cfg, surface.PBufferType, attrs, "glXCreatePbuffer", func() uintptr {
		list := []int32{
			_GLX_PBUFFER_WIDTH, int32(attrs.Width),
			_GLX_PBUFFER_HEIGHT, int32(attrs.Height),
			_GLX_LARGEST_PBUFFER, boolAttr(attrs.LargestPBuffer),
			_None,
		}
		return d.lib.CreatePbuffer(d.raw, cfg.raw, list)
	})
	if err != nil {
		return nil, err
	}
	return &Surface[surface.PBuffer]{s: s}, nil
}

// CreatePixmapSurface creates a GLXPixmap for pix.
func (d *Display) CreatePixmapSurface(cfg *Config, pix rawhandle.Pixmap, attrs surface.Attributes) (*Surface[surface.Pixmap], error) {
	xp, ok := pix.(rawhandle.XlibPixmap)
	if !ok {
		return nil, glerr.BadAPIUsagef("GLX needs an Xlib pixmap, got %T", pix)
	}
	s, err := d.createSurface(cfg, surface.PixmapType, attrs, "glXCreatePixmap", func() uintptr {
		return d.lib.CreatePixmap(d.raw, cfg.raw, xp.Pixmap, []int32{_None})
	})
	if err != nil {
		return nil, err
	}
	return &Surface[surface.Pixmap]{s: s}, nil
}

// createSurface runs create under the X error trap.
func (d *Display) createSurface(cfg *Config, kind surface.Type, attrs surface.Attributes, op string, create func() uintptr) (*surfaceState, error) {
	if cfg == nil || cfg.display != d {
		return nil, glerr.BadAPIUsagef("config does not belong to this display")
	}
	if !cfg.attribs.SurfaceTypes.Has(kind.SurfaceTypes()) {
		return nil, &glerr.Error{Kind: glerr.BadConfig, Op: "glx.Create" + kind.String() + "Surface", Reason: "config does not support " + kind.String() + " surfaces"}
	}
	if attrs.SRGB != nil && *attrs.SRGB != cfg.attribs.SRGB {
		d.logger().Debug("glx: sRGB is fixed by the config, ignoring surface override")
	}
	var raw uintptr
	code := d.trap(func() { raw = create() })
	if raw == 0 || code != x11.Success {
		if raw != 0 {
			destroyDrawable(d, kind, raw)
		}
		return nil, xError(op, code)
	}
	return &surfaceState{display: d, config: cfg, raw: raw, kind: kind, attrs: attrs}, nil
}

func destroyDrawable(d *Display, kind surface.Type, raw uintptr) {
	switch kind {
	case surface.WindowType:
		d.lib.DestroyWindow(d.raw, raw)
	case surface.PBufferType:
		d.lib.DestroyPbuffer(d.raw, raw)
	case surface.PixmapType:
		d.lib.DestroyPixmap(d.raw, raw)
	}
}

func (s *surfaceState) isCurrentDraw(ctx *contextState) bool {
	lib := s.display.lib
	return lib.GetCurrentContext() == ctx.raw && lib.GetCurrentDrawable() == s.raw
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
	if s.display.debug && !s.isCurrentDraw(ctx.s) {
		return glerr.BadAPIUsagef("%s: surface is not current with the context", op)
	}
	return nil
}

// SwapBuffers presents the back buffer of a window surface.
func (s *Surface[K]) SwapBuffers(ctx *PossiblyCurrentContext) error {
	st := s.s
	if err := st.checkSwap(ctx, "glXSwapBuffers"); err != nil {
		return err
	}
	st.display.lib.SwapBuffers(st.display.raw, st.raw)
	return nil
}

// SwapBuffersWithDamage swaps the whole surface: GLX has no damage
// extension.
func (s *Surface[K]) SwapBuffersWithDamage(ctx *PossiblyCurrentContext, rects []surface.Rect) error {
	st := s.s
	if err := st.checkSwap(ctx, "glXSwapBuffers"); err != nil {
		return err
	}
	st.display.logger().Debug("glx: no damage extension, swapping the full surface", "rects", len(rects))
	st.display.lib.SwapBuffers(st.display.raw, st.raw)
	return nil
}

// SetSwapInterval sets the swap interval of the surface, which must be
// current with ctx.
func (s *Surface[K]) SetSwapInterval(ctx *PossiblyCurrentContext, interval config.SwapInterval) error {
	st := s.s
	const op = "glx.SetSwapInterval"
	if st.kind != surface.WindowType {
		return glerr.BadAPIUsagef("%s on a %s surface", op, st.kind)
	}
	if ctx == nil || ctx.s.display != st.display || !st.isCurrentDraw(ctx.s) {
		return glerr.BadAPIUsagef("%s: surface is not current with the context", op)
	}
	return st.display.setSwapInterval(st.raw, interval)
}

// Size returns the current size of the drawable.
func (s *Surface[K]) Size() (width, height uint32) {
	d := s.s.display
	return d.lib.QueryDrawable(d.raw, s.s.raw, _GLX_WIDTH), d.lib.QueryDrawable(d.raw, s.s.raw, _GLX_HEIGHT)
}

// BufferAge returns 0: back buffer contents are always undefined.
func (s *Surface[K]) BufferAge() uint32 { return 0 }

// IsSingleBuffered reports whether the config renders to the front
// buffer.
func (s *Surface[K]) IsSingleBuffered() bool { return !s.s.config.attribs.DoubleBuffer }

// Resize does nothing: GLX drawables follow their X window.
func (s *Surface[K]) Resize(ctx *PossiblyCurrentContext, width, height uint32) {}

// Destroy destroys the drawable, first releasing the thread's binding if
// it is bound.
func (s *Surface[K]) Destroy() {
	st := s.s
	if st.destroyed {
		return
	}
	st.destroyed = true
	st.display.releaseIfBound(0, st.raw)
	destroyDrawable(st.display, st.kind, st.raw)
}
