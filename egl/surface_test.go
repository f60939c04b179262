package egl

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/glcontext"
	"github.com/tinyrange/glctx/glerr"
	"github.com/tinyrange/glctx/rawhandle"
	"github.com/tinyrange/glctx/surface"
)

func windowAttrs() surface.Attributes { return surface.WindowAttributes(640, 480) }

// windowSetup returns a context and a Wayland window surface on a fresh
// fake display.
func windowSetup(t *testing.T, f *fakeLib, attrs surface.Attributes, opts ...Option) (*NotCurrentContext, *Surface[surface.Window]) {
	t.Helper()
	d := newTestDisplay(t, f, opts...)
	cfg := firstConfig(t, d, config.DefaultTemplate())
	ctx, err := d.CreateContext(cfg, glcontext.Attributes{})
	require.NoError(t, err)
	win, err := d.CreateWindowSurface(cfg, rawhandle.WaylandWindow{Surface: 0x7}, attrs)
	require.NoError(t, err)
	return ctx, win
}

func TestFirstWindowBindDisablesVsync(t *testing.T) {
	f := newFake()
	ctx, win := windowSetup(t, f, windowAttrs())
	f.calls = nil

	cur, err := ctx.MakeCurrent(win)
	require.NoError(t, err)
	bind := fmt.Sprintf("MakeCurrent %#x %#x %#x", win.Raw(), win.Raw(), ctx.Raw())
	assert.Equal(t, []string{
		bind,
		"SwapInterval 0",
		"MakeCurrent 0x0 0x0 0x0",
		bind,
	}, f.filter("MakeCurrent", "SwapInterval"))

	f.calls = nil
	require.NoError(t, cur.MakeCurrent(win))
	assert.Equal(t, []string{bind}, f.filter("MakeCurrent", "SwapInterval"))
}

func TestFirstWindowBindRestoresPreviousBinding(t *testing.T) {
	f := newFake()
	d := newTestDisplay(t, f)
	cfg := firstConfig(t, d, config.DefaultTemplate())
	other, err := d.CreateContext(cfg, glcontext.Attributes{})
	require.NoError(t, err)
	_, err = other.MakeCurrentSurfaceless()
	require.NoError(t, err)

	ctx, err := d.CreateContext(cfg, glcontext.Attributes{})
	require.NoError(t, err)
	win, err := d.CreateWindowSurface(cfg, rawhandle.WaylandWindow{Surface: 0x7}, windowAttrs())
	require.NoError(t, err)
	f.calls = nil

	_, err = ctx.MakeCurrent(win)
	require.NoError(t, err)
	calls := f.filter("MakeCurrent")
	require.Len(t, calls, 3)
	assert.Equal(t, fmt.Sprintf("MakeCurrent 0x0 0x0 %#x", other.Raw()), calls[1])
	assert.Equal(t, ctx.Raw(), f.cur.ctx)
}

func TestFirstWindowBindAppliesRequestedInterval(t *testing.T) {
	f := newFake()
	ctx, win := windowSetup(t, f, windowAttrs().WithSwapInterval(config.Wait(2)))
	f.calls = nil

	_, err := ctx.MakeCurrent(win)
	require.NoError(t, err)
	assert.Equal(t, []string{
		fmt.Sprintf("MakeCurrent %#x %#x %#x", win.Raw(), win.Raw(), ctx.Raw()),
		"SwapInterval 2",
	}, f.filter("MakeCurrent", "SwapInterval"))
}

func TestSwapChecksCurrentSurfaceInDebugMode(t *testing.T) {
	f := newFake()
	f.acceptContext = acceptOnly(3, 3)
	d := newTestDisplay(t, f, WithDebugChecks(true))
	cfg := firstConfig(t, d, config.DefaultTemplate())

	ctx, err := d.CreateContext(cfg, glcontext.Attributes{})
	require.NoError(t, err)
	assert.Equal(t, glcontext.V(3, 3), ctx.Version())

	a, err := d.CreateWindowSurface(cfg, rawhandle.WaylandWindow{Surface: 0x7}, windowAttrs())
	require.NoError(t, err)
	b, err := d.CreateWindowSurface(cfg, rawhandle.WaylandWindow{Surface: 0x8}, windowAttrs())
	require.NoError(t, err)
	cur, err := ctx.MakeCurrent(a)
	require.NoError(t, err)
	f.calls = nil

	err = b.SwapBuffers(cur)
	assert.True(t, errors.Is(err, glerr.BadAPIUsage))
	assert.Zero(t, f.count("SwapBuffers"))

	require.NoError(t, a.SwapBuffers(cur))
	assert.Equal(t, []string{fmt.Sprintf("SwapBuffers %#x", a.Raw())}, f.filter("SwapBuffers"))
}

func TestSwapSkipsCurrentCheckWithoutDebug(t *testing.T) {
	f := newFake()
	d := newTestDisplay(t, f)
	cfg := firstConfig(t, d, config.DefaultTemplate())
	ctx, err := d.CreateContext(cfg, glcontext.Attributes{})
	require.NoError(t, err)
	win, err := d.CreateWindowSurface(cfg, rawhandle.WaylandWindow{Surface: 0x7}, windowAttrs())
	require.NoError(t, err)

	// The driver, not the library, reports misuse here.
	require.NoError(t, win.SwapBuffers(ctx.TreatAsPossiblyCurrent()))
	assert.Equal(t, 1, f.count("SwapBuffers"))
}

func TestSwapFailureClassification(t *testing.T) {
	f := newFake()
	ctx, win := windowSetup(t, f, windowAttrs())
	cur, err := ctx.MakeCurrent(win)
	require.NoError(t, err)

	f.swapErr = _EGL_CONTEXT_LOST
	err = win.SwapBuffers(cur)
	assert.True(t, errors.Is(err, glerr.ContextLost))

	f.swapErr = _EGL_BAD_ALLOC
	assert.Panics(t, func() { win.SwapBuffers(cur) })
}

func TestSwapOnPBufferRejected(t *testing.T) {
	f := newFake()
	d := newTestDisplay(t, f)
	cfg := firstConfig(t, d, config.NewTemplateBuilder().WithSurfaceTypes(config.PBufferSurface).Build())
	ctx, err := d.CreateContext(cfg, glcontext.Attributes{})
	require.NoError(t, err)
	pb, err := d.CreatePBufferSurface(cfg, surface.PBufferAttributes(64, 64, true))
	require.NoError(t, err)
	cur, err := ctx.MakeCurrent(pb)
	require.NoError(t, err)

	assert.True(t, errors.Is(pb.SwapBuffers(cur), glerr.BadAPIUsage))
	assert.True(t, errors.Is(pb.SetSwapInterval(cur, config.DontWait), glerr.BadAPIUsage))
	assert.Zero(t, f.count("SwapBuffers"))

	list := f.surfaceAttribs[pb.Raw()]
	v, _ := attribValue(list, _EGL_WIDTH)
	assert.Equal(t, int32(64), v)
	v, _ = attribValue(list, _EGL_LARGEST_PBUFFER)
	assert.Equal(t, int32(_EGL_TRUE), v)
}

func TestSwapBuffersWithDamage(t *testing.T) {
	rects := []surface.Rect{{X: 0, Y: 0, Width: 10, Height: 10}}

	f := newFake()
	ctx, win := windowSetup(t, f, windowAttrs())
	cur, err := ctx.MakeCurrent(win)
	require.NoError(t, err)
	f.calls = nil
	require.NoError(t, win.SwapBuffersWithDamage(cur, rects))
	assert.Equal(t, []string{fmt.Sprintf("SwapBuffers %#x", win.Raw())}, f.filter("SwapBuffers"))

	f = newFake()
	f.displayExts += " EGL_KHR_swap_buffers_with_damage"
	f.has[FnSwapBuffersWithDamageKHR] = true
	ctx, win = windowSetup(t, f, windowAttrs())
	cur, err = ctx.MakeCurrent(win)
	require.NoError(t, err)
	f.calls = nil
	require.NoError(t, win.SwapBuffersWithDamage(cur, rects))
	assert.Equal(t, []string{fmt.Sprintf("SwapBuffersWithDamageKHR %#x [0 0 10 10]", win.Raw())}, f.filter("SwapBuffers"))
}

func TestSetSwapInterval(t *testing.T) {
	f := newFake()
	ctx, win := windowSetup(t, f, windowAttrs())

	err := win.SetSwapInterval(ctx.TreatAsPossiblyCurrent(), config.Wait(1))
	assert.True(t, errors.Is(err, glerr.BadAPIUsage))

	cur, err := ctx.MakeCurrent(win)
	require.NoError(t, err)
	f.calls = nil

	err = win.SetSwapInterval(cur, config.Wait(5))
	assert.Equal(t, glerr.NotSupported, glerr.KindOf(err))
	assert.Zero(t, f.count("SwapInterval"))

	require.NoError(t, win.SetSwapInterval(cur, config.Wait(2)))
	assert.Equal(t, []string{"SwapInterval 2"}, f.filter("SwapInterval"))
}

func TestWaylandWindowOwnership(t *testing.T) {
	f := newFake()
	ctx, win := windowSetup(t, f, surface.Attributes{})
	assert.Equal(t, 1, f.count("wl_egl_window_create 0x7 1x1"))

	cur, err := ctx.MakeCurrent(win)
	require.NoError(t, err)
	f.calls = nil

	win.Resize(cur, 800, 600)
	win.Resize(cur, 0, 600)
	assert.Equal(t, []string{"wl_egl_window_resize 0x3007 800x600"}, f.filter("wl_egl_window"))

	f.calls = nil
	win.Destroy()
	win.Destroy()
	assert.Equal(t, []string{
		"MakeCurrent 0x0 0x0 0x0",
		fmt.Sprintf("DestroySurface %#x", win.Raw()),
		"wl_egl_window_destroy 0x3007",
	}, f.filter("MakeCurrent", "DestroySurface", "wl_egl_window"))
}

func TestDestroyUnboundSurfaceSkipsRelease(t *testing.T) {
	f := newFake()
	_, win := windowSetup(t, f, windowAttrs())
	f.calls = nil

	win.Destroy()
	assert.Zero(t, f.count("MakeCurrent"))
	assert.Equal(t, 1, f.count("DestroySurface"))
}

func TestSurfaceQueries(t *testing.T) {
	f := newFake()
	_, win := windowSetup(t, f, windowAttrs())
	w, h := win.Size()
	assert.Equal(t, uint32(640), w)
	assert.Equal(t, uint32(480), h)
	assert.Zero(t, win.BufferAge())
	assert.False(t, win.IsSingleBuffered())
	assert.Equal(t, surface.WindowType, win.Kind())

	f = newFake()
	f.displayExts += " EGL_EXT_buffer_age"
	_, win = windowSetup(t, f, windowAttrs())
	assert.Equal(t, uint32(2), win.BufferAge())
}

func TestSingleBufferRequest(t *testing.T) {
	f := newFake()
	attrs := windowAttrs()
	attrs.SingleBuffer = true
	_, win := windowSetup(t, f, attrs)

	v, _ := attribValue(f.surfaceAttribs[win.Raw()], _EGL_RENDER_BUFFER)
	assert.Equal(t, int32(_EGL_SINGLE_BUFFER), v)
	assert.True(t, win.IsSingleBuffered())
}

func TestCreateWindowSurfaceChecks(t *testing.T) {
	f := newFake()
	pbOnly := rgbaConfig(1)
	pbOnly[_EGL_SURFACE_TYPE] = _EGL_PBUFFER_BIT
	f.configs = []map[int32]int32{pbOnly}
	d := newTestDisplay(t, f)
	cfg := firstConfig(t, d, config.NewTemplateBuilder().WithSurfaceTypes(config.PBufferSurface).Build())

	_, err := d.CreateWindowSurface(cfg, rawhandle.WaylandWindow{Surface: 0x7}, windowAttrs())
	assert.Equal(t, glerr.BadConfig, glerr.KindOf(err))

	f = newFake()
	d = newTestDisplay(t, f)
	cfg = firstConfig(t, d, config.DefaultTemplate())
	_, err = d.CreateWindowSurface(cfg, rawhandle.XlibWindow{Window: 0x400001}, windowAttrs())
	assert.True(t, errors.Is(err, glerr.BadAPIUsage))
	assert.Zero(t, f.count("wl_egl_window_create"))
}

func TestWindowSurfaceUsesPlatformEntryPoint(t *testing.T) {
	f := newFake()
	_, win := windowSetup(t, f, windowAttrs())
	assert.Equal(t, []string{fmt.Sprintf("CreatePlatformWindowSurface %#x", win.Raw())}, f.filter("CreatePlatformWindowSurface", "CreateWindowSurface"))

	f = newFake()
	delete(f.has, FnGetPlatformDisplay)
	_, win = windowSetup(t, f, windowAttrs())
	assert.Equal(t, []string{fmt.Sprintf("CreatePlatformWindowSurfaceEXT %#x", win.Raw())}, f.filter("CreatePlatformWindowSurface", "CreateWindowSurface"))
}
