package glx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyrange/glctx/caps"
	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/glerr"
	"github.com/tinyrange/glctx/rawhandle"
)

func TestNewDisplayNeedsXlib(t *testing.T) {
	_, err := NewDisplay(newFake(), rawhandle.WaylandDisplay{Display: 0xd})
	require.Error(t, err)
	assert.Equal(t, glerr.NotSupported, glerr.KindOf(err))

	_, err = NewDisplay(newFake(), rawhandle.XlibDisplay{})
	require.Error(t, err)
	assert.Equal(t, glerr.BadNativeDisplay, glerr.KindOf(err))
}

func TestNewDisplayRejectsOldGLX(t *testing.T) {
	f := newFake()
	f.minor = 2
	_, err := NewDisplay(f, rawhandle.XlibDisplay{Display: fakeDpy})
	require.Error(t, err)
	assert.Equal(t, glerr.NotSupported, glerr.KindOf(err))
	assert.Contains(t, err.Error(), "1.2")
}

func TestNewDisplayWithoutGLXExtension(t *testing.T) {
	f := newFake()
	f.major = 0
	_, err := NewDisplay(f, rawhandle.XlibDisplay{Display: fakeDpy})
	require.Error(t, err)
	assert.Equal(t, glerr.NotSupported, glerr.KindOf(err))
}

func TestNewDisplayUsesRequestedScreen(t *testing.T) {
	f := newFake()
	screen := int32(2)
	d, err := NewDisplay(f, rawhandle.XlibDisplay{Display: fakeDpy, Screen: &screen})
	require.NoError(t, err)
	assert.Equal(t, int32(2), d.Screen())
	assert.Equal(t, []string{"TrapErrors", "QueryVersion 0xd", "QueryExtensionsString 0xd 2"}, f.calls)
	assert.Equal(t, "fake", d.Vendor())
}

func TestNewDisplayFeatures(t *testing.T) {
	d := newTestDisplay(t, newFake())
	f := d.Features()
	assert.True(t, f.Has(caps.CreateContextWithAttribs|caps.ContextProfile|caps.CreateESContext))
	assert.True(t, f.Has(caps.Multisampling|caps.SRGBFramebuffers|caps.SwapControl|caps.SurfacelessContext))
	assert.False(t, f.Any(caps.ContextRobustness|caps.ContextNoError|caps.FlushControl|caps.FloatPixelFormat))
	assert.True(t, d.HasExtension("GLX_EXT_swap_control"))
	assert.Equal(t, swapEXT, d.swap)
}

func TestFeaturesNeedEntryPoints(t *testing.T) {
	exts := caps.ParseExtensions("GLX_ARB_create_context GLX_ARB_create_context_profile GLX_ARB_create_context_robustness")
	f, swap := deriveFeatures(exts, func(string) bool { return false })
	assert.False(t, f.Any(caps.CreateContextWithAttribs|caps.ContextProfile|caps.ContextRobustness))
	assert.Equal(t, swapNone, swap)
}

func TestSwapControlPreference(t *testing.T) {
	all := func(string) bool { return true }
	for _, tc := range []struct {
		exts string
		swap swapControl
		rng  config.SwapIntervalRange
	}{
		{"GLX_SGI_swap_control GLX_MESA_swap_control GLX_EXT_swap_control", swapEXT, config.SwapIntervalRange{Min: 0, Max: config.UnboundedMax}},
		{"GLX_SGI_swap_control GLX_MESA_swap_control", swapMESA, config.SwapIntervalRange{Min: 0, Max: config.UnboundedMax}},
		{"GLX_SGI_swap_control", swapSGI, config.SwapIntervalRange{Min: 1, Max: config.UnboundedMax}},
		{"", swapNone, config.SwapIntervalRange{Min: 1, Max: 2}},
	} {
		t.Run(tc.swap.String(), func(t *testing.T) {
			_, swap := deriveFeatures(caps.ParseExtensions(tc.exts), all)
			assert.Equal(t, tc.swap, swap)
			d := &Display{swap: swap}
			assert.Equal(t, tc.rng, d.swapRange())
		})
	}
}
