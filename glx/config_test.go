package glx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/glerr"
	"github.com/tinyrange/glctx/internal/x11"
)

func TestFindConfigsRequest(t *testing.T) {
	f := newFake()
	d := newTestDisplay(t, f)
	tmpl := config.NewTemplateBuilder().
		WithColorBuffer(config.RGB(8, 8, 8)).
		WithAlphaSize(8).
		WithDepthSize(24).
		WithMultisampling(4).
		WithDoubleBuffer(true).
		PreferHardwareAccelerated(true).
		Build()

	_, err := d.FindConfigs(tmpl)
	require.NoError(t, err)
	assert.Equal(t, []int32{
		_GLX_X_RENDERABLE, 1,
		_GLX_DRAWABLE_TYPE, _GLX_WINDOW_BIT,
		_GLX_RENDER_TYPE, _GLX_RGBA_BIT,
		_GLX_RED_SIZE, 8,
		_GLX_GREEN_SIZE, 8,
		_GLX_BLUE_SIZE, 8,
		_GLX_ALPHA_SIZE, 8,
		_GLX_DEPTH_SIZE, 24,
		_GLX_DOUBLEBUFFER, 1,
		_GLX_SAMPLE_BUFFERS, 1,
		_GLX_SAMPLES, 4,
		_GLX_CONFIG_CAVEAT, _GLX_NONE,
		_None,
	}, f.chooseRequest)
}

func TestFindConfigsPBufferOnlyIsNotRenderable(t *testing.T) {
	f := newFake()
	d := newTestDisplay(t, f)
	_, err := d.FindConfigs(config.NewTemplateBuilder().WithSurfaceTypes(config.PBufferSurface).Build())
	require.NoError(t, err)
	_, ok := attribValue(f.chooseRequest, _GLX_X_RENDERABLE)
	assert.False(t, ok)
	v, _ := attribValue(f.chooseRequest, _GLX_DRAWABLE_TYPE)
	assert.Equal(t, int32(_GLX_PBUFFER_BIT), v)
}

func TestFindConfigsReadsAttributes(t *testing.T) {
	d := newTestDisplay(t, newFake())
	c := firstConfig(t, d, config.DefaultTemplate())
	a := c.Attribs()

	assert.Equal(t, int32(1), a.ID)
	assert.Equal(t, config.RGB(8, 8, 8), a.ColorBuffer)
	assert.Equal(t, uint8(24), a.DepthSize)
	assert.True(t, a.DoubleBuffer)
	assert.True(t, a.HardwareAccelerated)
	assert.True(t, a.Transparency)
	assert.Equal(t, config.OpenGL|config.GLES2|config.GLES3, a.API)
	assert.Equal(t, config.WindowSurface|config.PBufferSurface|config.PixmapSurface, a.SurfaceTypes)
	assert.Equal(t, uint32(0x21), a.NativeVisual)
	assert.Equal(t, config.SwapIntervalRange{Min: 0, Max: config.UnboundedMax}, a.SwapInterval)

	vi, ok := c.X11Visual()
	require.True(t, ok)
	assert.Equal(t, uint32(0x21), vi.ID)
}

func TestFindConfigsRejectsLuminance(t *testing.T) {
	f := newFake()
	d := newTestDisplay(t, f)
	_, err := d.FindConfigs(config.NewTemplateBuilder().WithColorBuffer(config.Luminance(8)).Build())
	require.Error(t, err)
	assert.Equal(t, glerr.NotSupported, glerr.KindOf(err))
	assert.Zero(t, f.count("ChooseFBConfig"))
}

func TestFindConfigsFloatNeedsExtension(t *testing.T) {
	d := newTestDisplay(t, newFake())
	_, err := d.FindConfigs(config.NewTemplateBuilder().WithFloatPixels(true).Build())
	require.Error(t, err)
	assert.Equal(t, glerr.NotSupported, glerr.KindOf(err))
}

func TestFindConfigsEmpty(t *testing.T) {
	f := newFake()
	f.configs = nil
	d := newTestDisplay(t, f)
	_, err := d.FindConfigs(config.DefaultTemplate())
	require.Error(t, err)
	assert.Equal(t, glerr.NoAvailableConfig, glerr.KindOf(err))
}

func TestFindConfigsFiltersTransparency(t *testing.T) {
	f := newFake()
	f.configs = []map[int32]int32{rgbaConfig(1), rgbaConfig(2)}
	f.visuals[0] = x11.VisualInfo{ID: 0x20, Class: x11.TrueColor, Depth: 24, RedMask: 0xff0000, GreenMask: 0xff00, BlueMask: 0xff}
	f.visuals[1] = argbVisual(0x21)
	d := newTestDisplay(t, f)

	configs, err := d.FindConfigs(config.NewTemplateBuilder().WithTransparency(true).Build())
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, int32(2), configs[0].Attribs().ID)
	v, _ := attribValue(f.chooseRequest, _GLX_X_VISUAL_TYPE)
	assert.Equal(t, int32(_GLX_TRUE_COLOR), v)
}

func TestFindConfigsWindowNeedsVisual(t *testing.T) {
	f := newFake()
	delete(f.visuals, 0)
	d := newTestDisplay(t, f)

	_, err := d.FindConfigs(config.DefaultTemplate())
	require.Error(t, err)
	assert.Equal(t, glerr.NoAvailableConfig, glerr.KindOf(err))
	assert.Contains(t, err.Error(), "no X visual")

	configs, err := d.FindConfigs(config.NewTemplateBuilder().WithSurfaceTypes(config.PBufferSurface).Build())
	require.NoError(t, err)
	assert.Len(t, configs, 1)
}

func TestFindConfigsSwapIntervalCover(t *testing.T) {
	f := newFake()
	f.exts = "GLX_ARB_create_context GLX_SGI_swap_control"
	d := newTestDisplay(t, f)

	_, err := d.FindConfigs(config.NewTemplateBuilder().
		WithSwapInterval(config.SwapIntervalRange{Min: 0, Max: 2}).Build())
	require.Error(t, err)
	assert.Equal(t, glerr.NoAvailableConfig, glerr.KindOf(err))

	c := firstConfig(t, d, config.NewTemplateBuilder().
		WithSwapInterval(config.SwapIntervalRange{Min: 1, Max: 2}).Build())
	r, err := c.SwapIntervalRange()
	require.NoError(t, err)
	assert.Equal(t, config.SwapIntervalRange{Min: 1, Max: config.UnboundedMax}, r)
}

func TestFindConfigsGLESNeedsProfileExtension(t *testing.T) {
	f := newFake()
	f.exts = "GLX_ARB_create_context"
	d := newTestDisplay(t, f)
	_, err := d.FindConfigs(config.NewTemplateBuilder().WithAPI(config.GLES2).Build())
	require.Error(t, err)
	assert.Equal(t, glerr.NotSupported, glerr.KindOf(err))
}

func TestFindConfigsAnyESGeneration(t *testing.T) {
	d := newTestDisplay(t, newFake())

	configs, err := d.FindConfigs(config.NewTemplateBuilder().WithAPI(config.GLES).Build())
	require.NoError(t, err)
	assert.Len(t, configs, 1)

	configs, err = d.FindConfigs(config.NewTemplateBuilder().WithAPI(config.OpenGL | config.GLES).Build())
	require.NoError(t, err)
	assert.Len(t, configs, 1)

	_, err = d.FindConfigs(config.NewTemplateBuilder().WithAPI(config.GLES1).Build())
	assert.Equal(t, glerr.NoAvailableConfig, glerr.KindOf(err))
}
