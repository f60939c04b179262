package egl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/glerr"
	"github.com/tinyrange/glctx/rawhandle"
)

func TestFindConfigsRequestAndReadback(t *testing.T) {
	f := newFake()
	cfg := rgbaConfig(7)
	cfg[_EGL_SAMPLES] = 4
	cfg[_EGL_SAMPLE_BUFFERS] = 1
	f.configs = []map[int32]int32{cfg}
	d := newTestDisplay(t, f)

	tmpl := config.NewTemplateBuilder().
		WithColorBits(24).
		WithAlphaSize(8).
		WithDepthSize(24).
		WithStencilSize(8).
		WithMultisampling(4).
		WithAPI(config.OpenGL).
		PreferHardwareAccelerated(true).
		Build()
	configs, err := d.FindConfigs(tmpl)
	require.NoError(t, err)
	require.Len(t, configs, 1)

	for key, want := range map[int32]int32{
		_EGL_COLOR_BUFFER_TYPE: _EGL_RGB_BUFFER,
		_EGL_RED_SIZE:          8,
		_EGL_GREEN_SIZE:        8,
		_EGL_BLUE_SIZE:         8,
		_EGL_ALPHA_SIZE:        8,
		_EGL_DEPTH_SIZE:        24,
		_EGL_STENCIL_SIZE:      8,
		_EGL_SAMPLE_BUFFERS:    1,
		_EGL_SAMPLES:           4,
		_EGL_SURFACE_TYPE:      _EGL_WINDOW_BIT,
		_EGL_RENDERABLE_TYPE:   _EGL_OPENGL_BIT,
		_EGL_CONFIG_CAVEAT:     _EGL_NONE,
	} {
		got, ok := attribValue(f.chooseRequest, key)
		assert.True(t, ok, "attribute %#x missing", key)
		assert.Equal(t, want, got, "attribute %#x", key)
	}
	assert.Equal(t, int32(_EGL_NONE), f.chooseRequest[len(f.chooseRequest)-1])
	_, hasSwap := attribValue(f.chooseRequest, _EGL_MIN_SWAP_INTERVAL)
	assert.False(t, hasSwap)

	a := configs[0].Attribs()
	assert.Equal(t, config.RGB(8, 8, 8), a.ColorBuffer)
	assert.Equal(t, uint8(8), a.AlphaSize)
	assert.Equal(t, uint8(24), a.DepthSize)
	assert.Equal(t, uint8(8), a.StencilSize)
	assert.Equal(t, uint8(4), a.NumSamples)
	assert.Equal(t, int32(7), a.ID)
	assert.True(t, a.HardwareAccelerated)
	assert.True(t, a.DoubleBuffer)
	assert.Equal(t, config.WindowSurface|config.PBufferSurface, a.SurfaceTypes)
	assert.Equal(t, config.OpenGL|config.GLES2|config.GLES3, a.API)
	assert.Equal(t, config.SwapIntervalRange{Min: 0, Max: 5}, a.SwapInterval)
	assert.Equal(t, config.Size{Width: 4096, Height: 4096}, a.MaxPBufferSize)
	assert.Equal(t, uint32(0x21), a.NativeVisual)
}

func TestFindConfigsUnsetFieldsOmitted(t *testing.T) {
	f := newFake()
	d := newTestDisplay(t, f)

	_, err := d.FindConfigs(config.NewTemplateBuilder().Build())
	require.NoError(t, err)
	assert.Equal(t, []int32{_EGL_SURFACE_TYPE, _EGL_WINDOW_BIT, _EGL_NONE}, f.chooseRequest)
}

func TestFindConfigsLuminance(t *testing.T) {
	f := newFake()
	lum := rgbaConfig(3)
	lum[_EGL_COLOR_BUFFER_TYPE] = _EGL_LUMINANCE_BUFFER
	lum[_EGL_LUMINANCE_SIZE] = 8
	f.configs = []map[int32]int32{lum}
	d := newTestDisplay(t, f)

	cfg := firstConfig(t, d, config.NewTemplateBuilder().WithColorBuffer(config.Luminance(8)).Build())
	v, _ := attribValue(f.chooseRequest, _EGL_LUMINANCE_SIZE)
	assert.Equal(t, int32(8), v)
	assert.Equal(t, config.Luminance(8), cfg.Attribs().ColorBuffer)
}

func TestFindConfigsNoMatch(t *testing.T) {
	f := newFake()
	f.configs = nil
	d := newTestDisplay(t, f)

	_, err := d.FindConfigs(config.DefaultTemplate())
	require.Error(t, err)
	assert.True(t, errors.Is(err, glerr.NoAvailableConfig))
	assert.Equal(t, []string{"ChooseConfig fill=false"}, f.filter("ChooseConfig"))
}

func TestFindConfigsSwapIntervalFilter(t *testing.T) {
	f := newFake()
	narrow := rgbaConfig(1)
	narrow[_EGL_MIN_SWAP_INTERVAL] = 1
	narrow[_EGL_MAX_SWAP_INTERVAL] = 1
	f.configs = []map[int32]int32{narrow, rgbaConfig(2)}
	d := newTestDisplay(t, f)

	want := config.SwapIntervalFromNative(0, 2)
	configs, err := d.FindConfigs(config.NewTemplateBuilder().WithSwapInterval(want).Build())
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, int32(2), configs[0].Attribs().ID)
}

func TestFindConfigsRejectionReasonsAccumulate(t *testing.T) {
	f := newFake()
	a, b := rgbaConfig(1), rgbaConfig(2)
	a[_EGL_NATIVE_VISUAL_ID] = 0x30
	b[_EGL_NATIVE_VISUAL_ID] = 0x31
	f.configs = []map[int32]int32{a, b}
	d := newTestDisplay(t, f)

	_, err := d.FindConfigs(config.NewTemplateBuilder().WithNativeVisual(0x40).Build())
	require.Error(t, err)
	assert.Equal(t, glerr.NoAvailableConfig, glerr.KindOf(err))
	var e *glerr.Error
	require.True(t, errors.As(err, &e))
	assert.Len(t, glerr.Errors(e.Err), 2)
}

func TestFindConfigsES3Conformance(t *testing.T) {
	f := newFake()
	nonConformant := rgbaConfig(1)
	nonConformant[_EGL_CONFORMANT] = _EGL_OPENGL_BIT | _EGL_OPENGL_ES2_BIT
	f.configs = []map[int32]int32{nonConformant, rgbaConfig(2)}
	d := newTestDisplay(t, f)

	configs, err := d.FindConfigs(config.NewTemplateBuilder().WithAPI(config.GLES3).Build())
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, int32(2), configs[0].Attribs().ID)
}

func TestFindConfigsTransparencyNeedsARGBVisual(t *testing.T) {
	f := newFake()
	opaque := rgbaConfig(2)
	opaque[_EGL_NATIVE_VISUAL_ID] = 0x22
	f.configs = []map[int32]int32{opaque, rgbaConfig(1)}
	d, err := NewDisplay(f, rawhandle.XlibDisplay{Display: 0xd}, WithX11Visuals(fakeVisuals{}))
	require.NoError(t, err)

	configs, err := d.FindConfigs(config.NewTemplateBuilder().WithAlphaSize(8).WithTransparency(true).Build())
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, int32(1), configs[0].Attribs().ID)
	vi, ok := configs[0].X11Visual()
	require.True(t, ok)
	assert.True(t, vi.SupportsTransparency())
}

func TestFindConfigsMaxPBufferFilter(t *testing.T) {
	f := newFake()
	small := rgbaConfig(1)
	small[_EGL_MAX_PBUFFER_WIDTH] = 256
	f.configs = []map[int32]int32{small, rgbaConfig(2)}
	d := newTestDisplay(t, f)

	configs, err := d.FindConfigs(config.NewTemplateBuilder().WithMaxPBufferSize(1024, 1024).Build())
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, int32(2), configs[0].Attribs().ID)
}

func TestFindConfigsUnsupportedRequests(t *testing.T) {
	f := newFake()
	f.major, f.minor = 1, 4
	d := newTestDisplay(t, f)
	before := len(f.calls)

	for _, tmpl := range []config.Template{
		config.NewTemplateBuilder().WithSRGB(true).Build(),
		config.NewTemplateBuilder().WithFloatPixels(true).Build(),
		config.NewTemplateBuilder().WithStereoscopy(true).Build(),
	} {
		_, err := d.FindConfigs(tmpl)
		assert.Equal(t, glerr.NotSupported, glerr.KindOf(err))
	}
	assert.Len(t, f.calls, before)
}

func TestFindConfigsSynthesizesVariants(t *testing.T) {
	f := newFake()
	d := newTestDisplay(t, f)

	plain, err := d.FindConfigs(config.DefaultTemplate())
	require.NoError(t, err)
	require.Len(t, plain, 1)
	assert.False(t, plain[0].Attribs().SRGB)
	assert.True(t, plain[0].Attribs().DoubleBuffer)

	configs, err := d.FindConfigs(config.NewTemplateBuilder().WithSynthesizedVariants(true).Build())
	require.NoError(t, err)
	require.Len(t, configs, 4)
	type variant struct{ double, srgb bool }
	var got []variant
	for _, c := range configs {
		assert.Equal(t, configs[0].Raw(), c.Raw())
		got = append(got, variant{c.Attribs().DoubleBuffer, c.Attribs().SRGB})
	}
	assert.Equal(t, []variant{{true, false}, {true, true}, {false, false}, {false, true}}, got)

	fixed, err := d.FindConfigs(config.NewTemplateBuilder().WithSynthesizedVariants(true).WithSRGB(true).Build())
	require.NoError(t, err)
	assert.Len(t, fixed, 2)
}

func TestSynthesizedVariantAppliedAtSurfaceCreation(t *testing.T) {
	f := newFake()
	d := newTestDisplay(t, f)
	configs, err := d.FindConfigs(config.NewTemplateBuilder().WithSynthesizedVariants(true).Build())
	require.NoError(t, err)

	// Variant 3 is single buffered and sRGB.
	cfg := configs[3]
	win, err := d.CreateWindowSurface(cfg, rawhandle.WaylandWindow{Surface: 0x7}, windowAttrs())
	require.NoError(t, err)

	list := f.surfaceAttribs[win.Raw()]
	v, ok := attribValue(list, _EGL_GL_COLORSPACE)
	require.True(t, ok)
	assert.Equal(t, int32(_EGL_GL_COLORSPACE_SRGB), v)
	v, ok = attribValue(list, _EGL_RENDER_BUFFER)
	require.True(t, ok)
	assert.Equal(t, int32(_EGL_SINGLE_BUFFER), v)
	assert.True(t, win.IsSingleBuffered())
}

func TestConfigSwapIntervalRangeRequeries(t *testing.T) {
	f := newFake()
	d := newTestDisplay(t, f)
	cfg := firstConfig(t, d, config.DefaultTemplate())

	f.configs[0][_EGL_MAX_SWAP_INTERVAL] = 1
	r, err := cfg.SwapIntervalRange()
	require.NoError(t, err)
	assert.Equal(t, config.SwapIntervalRange{Min: 0, Max: 2}, r)
}

func TestFindConfigsAnyESGeneration(t *testing.T) {
	f := newFake()
	d := newTestDisplay(t, f)

	configs, err := d.FindConfigs(config.NewTemplateBuilder().WithAPI(config.GLES).Build())
	require.NoError(t, err)
	assert.Len(t, configs, 1)
	_, ok := attribValue(f.chooseRequest, _EGL_RENDERABLE_TYPE)
	assert.False(t, ok, "several ES generations are filtered after choosing")
}
