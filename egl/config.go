package egl

import (
	"fmt"

	"github.com/tinyrange/glctx/caps"
	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/glcontext"
	"github.com/tinyrange/glctx/glerr"
	"github.com/tinyrange/glctx/internal/x11"
	"github.com/tinyrange/glctx/rawhandle"
)

// Config is an EGLConfig of a Display, with the attributes read back from
// the driver. Synthesized variants share the EGLConfig and differ in the
// sRGB and buffering choices applied at surface creation.
type Config struct {
	display *Display
	raw     uintptr
	attribs config.Attribs
	// srgbSet records whether surface creation passes EGL_GL_COLORSPACE.
	srgbSet bool
}

// Raw returns the EGLConfig.
func (c *Config) Raw() uintptr { return c.raw }

// Display returns the display the config belongs to.
func (c *Config) Display() *Display { return c.display }

// Attribs returns the attributes of the config.
func (c *Config) Attribs() config.Attribs { return c.attribs }

// Backend reports glcontext.BackendEGL.
func (c *Config) Backend() glcontext.Backend { return glcontext.BackendEGL }

func (c *Config) String() string { return "egl " + c.attribs.String() }

// X11Visual returns the X visual of the config on Xlib displays.
func (c *Config) X11Visual() (x11.VisualInfo, bool) {
	xd, ok := c.display.native.(rawhandle.XlibDisplay)
	if !ok || c.attribs.NativeVisual == 0 {
		return x11.VisualInfo{}, false
	}
	visuals := c.display.x11Visuals()
	if visuals == nil {
		return x11.VisualInfo{}, false
	}
	return visuals.FindVisual(xd.Display, c.attribs.NativeVisual)
}

// SwapIntervalRange queries the driver for the swap intervals the config
// accepts now. Drivers may change it after window creation.
func (c *Config) SwapIntervalRange() (config.SwapIntervalRange, error) {
	lib, dpy := c.display.lib, c.display.raw
	lo, ok := lib.GetConfigAttrib(dpy, c.raw, _EGL_MIN_SWAP_INTERVAL)
	if !ok {
		return config.SwapIntervalRange{}, lastError(lib, "eglGetConfigAttrib(EGL_MIN_SWAP_INTERVAL)")
	}
	hi, ok := lib.GetConfigAttrib(dpy, c.raw, _EGL_MAX_SWAP_INTERVAL)
	if !ok {
		return config.SwapIntervalRange{}, lastError(lib, "eglGetConfigAttrib(EGL_MAX_SWAP_INTERVAL)")
	}
	return config.SwapIntervalFromNative(lo, hi), nil
}

// FindConfigs returns the configs matching t, in the order the driver
// ranked them. When every candidate is filtered out the error lists the
// reason each was rejected.
func (d *Display) FindConfigs(t config.Template) ([]*Config, error) {
	const op = "egl.FindConfigs"
	if err := d.checkTemplate(t); err != nil {
		err.Op = op
		return nil, err
	}
	request := d.configAttribs(t)

	n, ok := d.lib.ChooseConfig(d.raw, request, nil)
	if !ok {
		return nil, lastError(d.lib, "eglChooseConfig")
	}
	if n == 0 {
		return nil, &glerr.Error{Kind: glerr.NoAvailableConfig, Op: op, Reason: "eglChooseConfig matched nothing"}
	}
	raws := make([]uintptr, n)
	n, ok = d.lib.ChooseConfig(d.raw, request, raws)
	if !ok {
		return nil, lastError(d.lib, "eglChooseConfig")
	}
	raws = raws[:n]

	var (
		out      []*Config
		rejected error
	)
	for _, raw := range raws {
		attribs, err := d.readAttribs(raw)
		if err != nil {
			return nil, err
		}
		if reason := d.reject(t, raw, attribs); reason != "" {
			d.logger().Debug("egl config rejected", "id", attribs.ID, "reason", reason)
			rejected = glerr.Append(rejected, fmt.Errorf("config 0x%x: %s", attribs.ID, reason))
			continue
		}
		out = append(out, d.variants(t, raw, attribs)...)
	}
	if len(out) == 0 {
		return nil, &glerr.Error{Kind: glerr.NoAvailableConfig, Op: op, Reason: "every candidate was rejected", Err: rejected}
	}
	return out, nil
}

// checkTemplate rejects requests EGL cannot express before any native
// call.
func (d *Display) checkTemplate(t config.Template) *glerr.Error {
	if t.FloatPixels && !d.features.Has(caps.FloatPixelFormat) {
		return glerr.NotSupportedf("float pixel formats need EGL_EXT_pixel_format_float")
	}
	if t.SRGB != nil && *t.SRGB && !d.features.Has(caps.SRGBFramebuffers) {
		return glerr.NotSupportedf("sRGB framebuffers need EGL 1.5 or EGL_KHR_gl_colorspace")
	}
	if t.Stereoscopy != nil && *t.Stereoscopy {
		return glerr.NotSupportedf("EGL has no stereoscopic configs")
	}
	if t.API&config.GLES != 0 && !d.features.Has(caps.CreateESContext) {
		return glerr.NotSupportedf("display does not support OpenGL ES")
	}
	return nil
}

// configAttribs builds the EGL_NONE terminated eglChooseConfig request.
// Unset template fields are left out. Swap interval, transparency and the
// native visual are not chooser criteria and are filtered afterwards.
func (d *Display) configAttribs(t config.Template) []int32 {
	var a []int32
	add := func(k, v int32) { a = append(a, k, v) }

	if cb := t.ColorBuffer; cb != nil {
		switch cb.Kind {
		case config.LuminanceBuffer:
			add(_EGL_COLOR_BUFFER_TYPE, _EGL_LUMINANCE_BUFFER)
			add(_EGL_LUMINANCE_SIZE, int32(cb.Luminance))
		default:
			add(_EGL_COLOR_BUFFER_TYPE, _EGL_RGB_BUFFER)
			add(_EGL_RED_SIZE, int32(cb.R))
			add(_EGL_GREEN_SIZE, int32(cb.G))
			add(_EGL_BLUE_SIZE, int32(cb.B))
		}
	}
	if d.features.Has(caps.FloatPixelFormat) {
		if t.FloatPixels {
			add(_EGL_COLOR_COMPONENT_TYPE_EXT, _EGL_COLOR_COMPONENT_TYPE_FLOAT_EXT)
		} else {
			add(_EGL_COLOR_COMPONENT_TYPE_EXT, _EGL_COLOR_COMPONENT_TYPE_FIXED_EXT)
		}
	}
	if t.AlphaSize != nil {
		add(_EGL_ALPHA_SIZE, int32(*t.AlphaSize))
	}
	if t.DepthSize != nil {
		add(_EGL_DEPTH_SIZE, int32(*t.DepthSize))
	}
	if t.StencilSize != nil {
		add(_EGL_STENCIL_SIZE, int32(*t.StencilSize))
	}
	if t.NumSamples != nil {
		if n := *t.NumSamples; n > 0 {
			add(_EGL_SAMPLE_BUFFERS, 1)
			add(_EGL_SAMPLES, int32(n))
		} else {
			add(_EGL_SAMPLE_BUFFERS, 0)
		}
	}
	if st := surfaceTypeBits(t.SurfaceTypes); st != 0 {
		add(_EGL_SURFACE_TYPE, st)
	}
	if api := renderableBits(t.API.Required()); api != 0 {
		add(_EGL_RENDERABLE_TYPE, api)
	}
	if t.HardwareAccelerated != nil && *t.HardwareAccelerated {
		add(_EGL_CONFIG_CAVEAT, _EGL_NONE)
	}
	return append(a, _EGL_NONE)
}

// readAttribs reads every attribute of a config back from the driver.
func (d *Display) readAttribs(raw uintptr) (config.Attribs, error) {
	var err error
	get := func(attrib int32) int32 {
		if err != nil {
			return 0
		}
		v, ok := d.lib.GetConfigAttrib(d.raw, raw, attrib)
		if !ok {
			err = lastError(d.lib, fmt.Sprintf("eglGetConfigAttrib(0x%x)", attrib))
		}
		return v
	}

	var a config.Attribs
	a.ID = get(_EGL_CONFIG_ID)
	if get(_EGL_COLOR_BUFFER_TYPE) == _EGL_LUMINANCE_BUFFER {
		a.ColorBuffer = config.Luminance(uint8(get(_EGL_LUMINANCE_SIZE)))
	} else {
		a.ColorBuffer = config.RGB(uint8(get(_EGL_RED_SIZE)), uint8(get(_EGL_GREEN_SIZE)), uint8(get(_EGL_BLUE_SIZE)))
	}
	a.AlphaSize = uint8(get(_EGL_ALPHA_SIZE))
	a.DepthSize = uint8(get(_EGL_DEPTH_SIZE))
	a.StencilSize = uint8(get(_EGL_STENCIL_SIZE))
	a.NumSamples = uint8(get(_EGL_SAMPLES))
	a.HardwareAccelerated = get(_EGL_CONFIG_CAVEAT) != _EGL_SLOW_CONFIG
	a.SurfaceTypes = surfaceTypesFromBits(get(_EGL_SURFACE_TYPE))
	a.API = apiFromBits(get(_EGL_RENDERABLE_TYPE))
	lo, hi := get(_EGL_MIN_SWAP_INTERVAL), get(_EGL_MAX_SWAP_INTERVAL)
	a.NativeVisual = uint32(get(_EGL_NATIVE_VISUAL_ID))
	a.MaxPBufferSize = config.Size{
		Width:  uint32(get(_EGL_MAX_PBUFFER_WIDTH)),
		Height: uint32(get(_EGL_MAX_PBUFFER_HEIGHT)),
	}
	if d.features.Has(caps.FloatPixelFormat) {
		a.FloatPixels = get(_EGL_COLOR_COMPONENT_TYPE_EXT) == _EGL_COLOR_COMPONENT_TYPE_FLOAT_EXT
	}
	if err != nil {
		return config.Attribs{}, err
	}
	a.SwapInterval = config.SwapIntervalFromNative(lo, hi)
	// EGL window surfaces are double buffered unless created otherwise.
	a.DoubleBuffer = true
	a.Transparency = a.AlphaSize > 0
	if a.Transparency {
		if xd, ok := d.native.(rawhandle.XlibDisplay); ok {
			if visuals := d.x11Visuals(); visuals != nil {
				vi, ok := visuals.FindVisual(xd.Display, a.NativeVisual)
				a.Transparency = ok && vi.SupportsTransparency()
			}
		}
	}
	return a, nil
}

// conformance returns the EGL_CONFORMANT bits of a config.
func (d *Display) conformance(raw uintptr) config.API {
	v, ok := d.lib.GetConfigAttrib(d.raw, raw, _EGL_CONFORMANT)
	if !ok {
		d.lib.GetError()
		return 0
	}
	return apiFromBits(v)
}

// reject returns why a candidate fails the post-filters, or "".
func (d *Display) reject(t config.Template, raw uintptr, a config.Attribs) string {
	if t.SwapInterval != nil && !a.SwapInterval.Covers(*t.SwapInterval) {
		return fmt.Sprintf("swap interval %s does not cover %s", a.SwapInterval, *t.SwapInterval)
	}
	if t.NativeVisual != nil && a.NativeVisual != *t.NativeVisual {
		return fmt.Sprintf("native visual 0x%x, want 0x%x", a.NativeVisual, *t.NativeVisual)
	}
	if t.API != 0 {
		if missing := a.API.Missing(t.API); missing != 0 {
			return fmt.Sprintf("does not render %s", missing)
		}
		// A config can list an API as renderable without being conformant
		// for it; ES3 contexts on such configs fail at creation.
		if t.API&config.GLES3 != 0 {
			if missing := d.conformance(raw).Missing(t.API); missing != 0 {
				return fmt.Sprintf("not conformant for %s", missing)
			}
		}
	}
	if t.Transparency && !a.Transparency {
		return "no transparent visual"
	}
	if m := t.MaxPBufferSize; m != nil {
		if a.MaxPBufferSize.Width < m.Width || a.MaxPBufferSize.Height < m.Height {
			return fmt.Sprintf("max pbuffer %dx%d, want %dx%d",
				a.MaxPBufferSize.Width, a.MaxPBufferSize.Height, m.Width, m.Height)
		}
	}
	if t.FloatPixels != a.FloatPixels && d.features.Has(caps.FloatPixelFormat) {
		return "float pixel mismatch"
	}
	return ""
}

// variants returns the configs a candidate yields. Without synthesis this
// is one config with the template's choices; with it, each unspecified
// surface-time choice doubles the candidate.
func (d *Display) variants(t config.Template, raw uintptr, a config.Attribs) []*Config {
	srgbSupported := d.features.Has(caps.SRGBFramebuffers)
	srgbs := []bool{false}
	srgbSet := srgbSupported
	switch {
	case t.SRGB != nil:
		srgbs = []bool{*t.SRGB && srgbSupported}
	case t.SynthesizeVariants && srgbSupported:
		srgbs = []bool{false, true}
	}
	doubles := []bool{true}
	switch {
	case t.DoubleBuffer != nil:
		doubles = []bool{*t.DoubleBuffer}
	case t.SynthesizeVariants && a.SurfaceTypes.Has(config.WindowSurface):
		doubles = []bool{true, false}
	}

	var out []*Config
	for _, double := range doubles {
		for _, srgb := range srgbs {
			v := a
			v.DoubleBuffer = double
			v.SRGB = srgb
			out = append(out, &Config{display: d, raw: raw, attribs: v, srgbSet: srgbSet})
		}
	}
	return out
}

func surfaceTypeBits(s config.SurfaceTypes) int32 {
	var bits int32
	if s.Has(config.WindowSurface) {
		bits |= _EGL_WINDOW_BIT
	}
	if s.Has(config.PBufferSurface) {
		bits |= _EGL_PBUFFER_BIT
	}
	if s.Has(config.PixmapSurface) {
		bits |= _EGL_PIXMAP_BIT
	}
	return bits
}

func surfaceTypesFromBits(bits int32) config.SurfaceTypes {
	var s config.SurfaceTypes
	if bits&_EGL_WINDOW_BIT != 0 {
		s |= config.WindowSurface
	}
	if bits&_EGL_PBUFFER_BIT != 0 {
		s |= config.PBufferSurface
	}
	if bits&_EGL_PIXMAP_BIT != 0 {
		s |= config.PixmapSurface
	}
	return s
}

func renderableBits(api config.API) int32 {
	var bits int32
	if api.Has(config.OpenGL) {
		bits |= _EGL_OPENGL_BIT
	}
	if api.Has(config.GLES1) {
		bits |= _EGL_OPENGL_ES_BIT
	}
	if api.Has(config.GLES2) {
		bits |= _EGL_OPENGL_ES2_BIT
	}
	if api.Has(config.GLES3) {
		bits |= _EGL_OPENGL_ES3_BIT
	}
	return bits
}

func apiFromBits(bits int32) config.API {
	var api config.API
	if bits&_EGL_OPENGL_BIT != 0 {
		api |= config.OpenGL
	}
	if bits&_EGL_OPENGL_ES_BIT != 0 {
		api |= config.GLES1
	}
	if bits&_EGL_OPENGL_ES2_BIT != 0 {
		api |= config.GLES2
	}
	if bits&_EGL_OPENGL_ES3_BIT != 0 {
		api |= config.GLES3
	}
	return api
}
