package wgl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/glerr"
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
		_WGL_DRAW_TO_WINDOW_ARB, 1,
		_WGL_SUPPORT_OPENGL_ARB, 1,
		_WGL_PIXEL_TYPE_ARB, _WGL_TYPE_RGBA_ARB,
		_WGL_RED_BITS_ARB, 8,
		_WGL_GREEN_BITS_ARB, 8,
		_WGL_BLUE_BITS_ARB, 8,
		_WGL_ALPHA_BITS_ARB, 8,
		_WGL_DEPTH_BITS_ARB, 24,
		_WGL_DOUBLE_BUFFER_ARB, 1,
		_WGL_SAMPLE_BUFFERS_ARB, 1,
		_WGL_SAMPLES_ARB, 4,
		_WGL_ACCELERATION_ARB, _WGL_FULL_ACCELERATION_ARB,
		0,
	}, f.chooseRequest)
	assert.Equal(t, 1, f.count("ChoosePixelFormatARB 0x15001"))
}

func TestFindConfigsReadsAttributes(t *testing.T) {
	d := newTestDisplay(t, newFake())
	c := firstConfig(t, d, config.DefaultTemplate())
	a := c.Attribs()

	assert.Equal(t, int32(1), c.Raw())
	assert.Equal(t, config.RGB(8, 8, 8), a.ColorBuffer)
	assert.Equal(t, uint8(8), a.AlphaSize)
	assert.Equal(t, uint8(24), a.DepthSize)
	assert.Equal(t, uint8(8), a.StencilSize)
	assert.True(t, a.DoubleBuffer)
	assert.True(t, a.HardwareAccelerated)
	assert.True(t, a.SRGB)
	assert.True(t, a.Transparency)
	assert.False(t, a.FloatPixels)
	assert.Equal(t, config.WindowSurface, a.SurfaceTypes)
	assert.Equal(t, config.OpenGL|config.GLES2|config.GLES3, a.API)
	assert.Equal(t, config.SwapIntervalRange{Min: 0, Max: config.UnboundedMax}, a.SwapInterval)
}

func TestFindConfigsAttributeQueryFailure(t *testing.T) {
	f := newFake()
	f.attribFail = true
	d := newTestDisplay(t, f)
	_, err := d.FindConfigs(config.DefaultTemplate())
	require.Error(t, err)
	assert.Equal(t, glerr.BadConfig, glerr.KindOf(err))
}

func TestFindConfigsLegacy(t *testing.T) {
	f := newFake()
	f.exts = "WGL_EXT_swap_control"
	single := rgbaDescriptor()
	single.Flags &^= _PFD_DOUBLEBUFFER
	software := rgbaDescriptor()
	software.Flags |= _PFD_GENERIC_FORMAT
	noAlpha := rgbaDescriptor()
	noAlpha.AlphaBits = 0
	f.pfds = []PixelFormatDescriptor{single, software, noAlpha, rgbaDescriptor()}
	d := newTestDisplay(t, f)

	configs, err := d.FindConfigs(config.NewTemplateBuilder().
		WithColorBuffer(config.RGB(8, 8, 8)).
		WithAlphaSize(8).
		WithDoubleBuffer(true).
		PreferHardwareAccelerated(true).
		Build())
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, int32(4), configs[0].Raw())
	assert.Zero(t, f.count("ChoosePixelFormatARB"))
	assert.Equal(t, config.OpenGL, configs[0].Attribs().API)
}

func TestFindConfigsLegacyNoFormats(t *testing.T) {
	f := newFake()
	f.exts = ""
	f.pfds = nil
	d := newTestDisplay(t, f)
	_, err := d.FindConfigs(config.DefaultTemplate())
	require.Error(t, err)
}

func TestFindConfigsWindowOnly(t *testing.T) {
	d := newTestDisplay(t, newFake())
	for _, tmpl := range []config.Template{
		config.NewTemplateBuilder().WithSurfaceTypes(config.PBufferSurface).Build(),
		config.NewTemplateBuilder().WithSurfaceTypes(config.WindowSurface | config.PixmapSurface).Build(),
		config.NewTemplateBuilder().WithMaxPBufferSize(64, 64).Build(),
		config.NewTemplateBuilder().WithColorBuffer(config.Luminance(8)).Build(),
	} {
		_, err := d.FindConfigs(tmpl)
		require.Error(t, err)
		assert.Equal(t, glerr.NotSupported, glerr.KindOf(err))
	}
}

func TestFindConfigsFeatureGating(t *testing.T) {
	f := newFake()
	f.exts = "WGL_ARB_pixel_format WGL_ARB_create_context"
	d := newTestDisplay(t, f)
	for _, tmpl := range []config.Template{
		config.NewTemplateBuilder().WithFloatPixels(true).Build(),
		config.NewTemplateBuilder().WithSRGB(true).Build(),
		config.NewTemplateBuilder().WithMultisampling(4).Build(),
		config.NewTemplateBuilder().WithAPI(config.GLES2).Build(),
	} {
		_, err := d.FindConfigs(tmpl)
		require.Error(t, err)
		assert.Equal(t, glerr.NotSupported, glerr.KindOf(err))
	}
}

func TestFindConfigsEmpty(t *testing.T) {
	f := newFake()
	f.formats = nil
	d := newTestDisplay(t, f)
	_, err := d.FindConfigs(config.DefaultTemplate())
	require.Error(t, err)
	assert.Equal(t, glerr.NoAvailableConfig, glerr.KindOf(err))
}

func TestFindConfigsTransparencyNeedsAlpha(t *testing.T) {
	f := newFake()
	opaque := rgbaFormat()
	opaque[_WGL_ALPHA_BITS_ARB] = 0
	f.formats = []map[int32]int32{opaque, rgbaFormat()}
	d := newTestDisplay(t, f)

	configs, err := d.FindConfigs(config.NewTemplateBuilder().WithTransparency(true).Build())
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, int32(2), configs[0].Raw())

	f.formats = []map[int32]int32{opaque}
	_, err = d.FindConfigs(config.NewTemplateBuilder().WithTransparency(true).Build())
	require.Error(t, err)
	assert.Equal(t, glerr.NoAvailableConfig, glerr.KindOf(err))
	assert.Contains(t, err.Error(), "no alpha channel")
}

func TestFindConfigsSwapIntervalFilter(t *testing.T) {
	f := newFake()
	f.exts = "WGL_ARB_pixel_format"
	d := newTestDisplay(t, f)
	_, err := d.FindConfigs(config.NewTemplateBuilder().
		WithSwapInterval(config.SwapIntervalRange{Min: 0, Max: 1}).
		Build())
	require.Error(t, err)
	assert.Equal(t, glerr.NoAvailableConfig, glerr.KindOf(err))
}
