package egl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyrange/glctx/caps"
	"github.com/tinyrange/glctx/glerr"
	"github.com/tinyrange/glctx/rawhandle"
)

func TestNewDisplayPrefersKHRPlatform(t *testing.T) {
	f := newFake()
	screen := int32(1)
	d, err := NewDisplay(f, rawhandle.XlibDisplay{Display: 0xd, Screen: &screen}, WithX11Visuals(fakeVisuals{}))
	require.NoError(t, err)

	assert.Equal(t, pathKHR, d.path)
	assert.Equal(t, []uintptr{_EGL_PLATFORM_X11_SCREEN, 1, _EGL_NONE}, f.platformAttribs)
	assert.Zero(t, f.count("GetPlatformDisplayEXT"))
	assert.Zero(t, f.count("GetDisplay"))
	major, minor := d.Version()
	assert.Equal(t, 1, major)
	assert.Equal(t, 5, minor)
}

func TestNewDisplayFallsThroughPaths(t *testing.T) {
	f := newFake()
	delete(f.has, FnGetPlatformDisplay)
	f.platformEXTErr = _EGL_BAD_PARAMETER

	d, err := NewDisplay(f, rawhandle.WaylandDisplay{Display: 0xd})
	require.NoError(t, err)

	assert.Equal(t, pathLegacy, d.path)
	assert.Equal(t, []string{
		"GetPlatformDisplayEXT 0x31d8 0xd",
		"GetDisplay 0xd",
	}, f.filter("GetPlatformDisplay", "GetDisplay"))
}

func TestNewDisplayStopsOnBadAttribute(t *testing.T) {
	f := newFake()
	f.platformErr = _EGL_BAD_ATTRIBUTE

	_, err := NewDisplay(f, rawhandle.WaylandDisplay{Display: 0xd})
	require.Error(t, err)
	assert.True(t, errors.Is(err, glerr.BadAttribute))
	assert.Zero(t, f.count("GetPlatformDisplayEXT"))
	assert.Zero(t, f.count("GetDisplay"))
}

func TestNewDisplaySurfacelessNeedsExtension(t *testing.T) {
	f := newFake()
	_, err := NewDisplay(f, rawhandle.SurfacelessDisplay{})
	require.Error(t, err)
	assert.Equal(t, glerr.NotSupported, glerr.KindOf(err))
	assert.Zero(t, f.count("Initialize"))

	f = newFake()
	f.clientExts += " EGL_MESA_platform_surfaceless"
	d, err := NewDisplay(f, rawhandle.SurfacelessDisplay{})
	require.NoError(t, err)
	assert.Equal(t, pathEXT, d.path)
	assert.Equal(t, 1, f.count("GetPlatformDisplayEXT 0x31dd"))
}

func TestNewDisplayAllPathsFail(t *testing.T) {
	f := newFake()
	f.platformErr = _EGL_BAD_PARAMETER
	f.platformEXTErr = _EGL_BAD_PARAMETER
	f.legacyErr = _EGL_BAD_DISPLAY

	_, err := NewDisplay(f, rawhandle.WaylandDisplay{Display: 0xd})
	require.Error(t, err)
	var e *glerr.Error
	require.True(t, errors.As(err, &e))
	assert.Len(t, glerr.Errors(e.Err), 3)
}

func TestClientExtensionsQueriedOncePerLib(t *testing.T) {
	f := newFake()
	newTestDisplay(t, f)
	newTestDisplay(t, f)
	assert.Equal(t, 1, f.count("QueryString 0x0 0x3055"))
	assert.Contains(t, ClientExtensions(f), "EGL_KHR_platform_wayland")
	assert.Equal(t, 1, f.count("QueryString 0x0 0x3055"))
}

func TestClientExtensionsMissing(t *testing.T) {
	f := newFake()
	f.noClientExts = true
	f.clientVersion = ""
	assert.Empty(t, ClientExtensions(f))
}

func TestDeriveFeatures(t *testing.T) {
	tests := []struct {
		name         string
		exts         string
		apis         string
		major, minor int32
		want         caps.Features
		absent       caps.Features
	}{
		{
			name:  "egl 1.5 core",
			apis:  "OpenGL OpenGL_ES",
			major: 1, minor: 5,
			want: caps.CreateESContext | caps.SRGBFramebuffers | caps.ContextRobustness |
				caps.CreateContextWithAttribs | caps.SurfacelessContext,
			absent: caps.ContextNoError | caps.FlushControl | caps.FloatPixelFormat,
		},
		{
			name:  "egl 1.4 without extensions",
			apis:  "OpenGL_ES",
			major: 1, minor: 4,
			want:   caps.CreateESContext | caps.Multisampling | caps.SwapControl,
			absent: caps.SRGBFramebuffers | caps.ContextRobustness | caps.CreateContextWithAttribs,
		},
		{
			name: "egl 1.4 with extensions",
			exts: "EGL_KHR_gl_colorspace EGL_EXT_create_context_robustness EGL_KHR_create_context_no_error " +
				"EGL_KHR_context_flush_control EGL_EXT_buffer_age EGL_KHR_swap_buffers_with_damage EGL_EXT_pixel_format_float",
			apis:  "OpenGL",
			major: 1, minor: 4,
			want: caps.SRGBFramebuffers | caps.ContextRobustness | caps.ContextNoError | caps.FlushControl |
				caps.BufferAge | caps.SwapBuffersWithDamageKHR | caps.FloatPixelFormat,
			absent: caps.CreateESContext,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveFeatures(caps.ParseExtensions(tt.exts), tt.apis, tt.major, tt.minor)
			assert.True(t, got.Has(tt.want), "got %s", got)
			assert.False(t, got.Any(tt.absent), "got %s", got)
		})
	}
}

func TestDisplayAccessors(t *testing.T) {
	f := newFake()
	d := newTestDisplay(t, f)
	assert.Equal(t, "fake", d.Vendor())
	assert.True(t, d.HasExtension("EGL_KHR_create_context"))
	assert.Equal(t, []string{"EGL_KHR_create_context", "EGL_KHR_surfaceless_context"}, d.Extensions())
	assert.Equal(t, uintptr(0), d.GetProcAddress("glClear"))

	d.Destroy()
	assert.Zero(t, f.count("Terminate"))
}

func TestDevices(t *testing.T) {
	f := newFake()
	_, err := Devices(f)
	assert.Equal(t, glerr.NotSupported, glerr.KindOf(err))

	f = newFake()
	f.clientExts += " EGL_EXT_device_enumeration"
	f.has[FnQueryDevicesEXT] = true
	f.has[FnQueryDeviceStringEXT] = true
	f.devices = []uintptr{0x501, 0x502}

	devices, err := Devices(f)
	require.NoError(t, err)
	require.Len(t, devices, 2)
	file, ok := devices[1].DRMDeviceFile()
	assert.True(t, ok)
	assert.Equal(t, "/dev/dri/card2", file)
	assert.Equal(t, rawhandle.EGLDeviceDisplay{Device: 0x501}, devices[0].Display())
	assert.Equal(t, []string{"QueryDevicesEXT fill=false", "QueryDevicesEXT fill=true"}, f.filter("QueryDevicesEXT"))
}
