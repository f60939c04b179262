package glx

import (
	"fmt"

	"github.com/tinyrange/glctx/caps"
	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/glcontext"
	"github.com/tinyrange/glctx/glerr"
	"github.com/tinyrange/glctx/internal/x11"
)

// Config is a GLXFBConfig of a Display.
type Config struct {
	display *Display
	raw     uintptr
	attribs config.Attribs
	visual  x11.VisualInfo
	// hasVisual is false for configs without an X visual, which cannot
	// back windows.
	hasVisual bool
}

// Raw returns the GLXFBConfig.
func (c *Config) Raw() uintptr { return c.raw }

// Display returns the display the config belongs to.
func (c *Config) Display() *Display { return c.display }

// Attribs returns the attributes of the config.
func (c *Config) Attribs() config.Attribs { return c.attribs }

// Backend reports glcontext.BackendGLX.
func (c *Config) Backend() glcontext.Backend { return glcontext.BackendGLX }

// X11Visual returns the visual windows for this config must be created
// with.
func (c *Config) X11Visual() (x11.VisualInfo, bool) { return c.visual, c.hasVisual }

// SwapIntervalRange returns the swap intervals the config accepts. On GLX
// the range depends only on the swap-control extension.
func (c *Config) SwapIntervalRange() (config.SwapIntervalRange, error) {
	return c.display.swapRange(), nil
}

func (c *Config) String() string { return "glx " + c.attribs.String() }

// FindConfigs returns the configs matching t, in the order
// glXChooseFBConfig ranked them.
func (d *Display) FindConfigs(t config.Template) ([]*Config, error) {
	const op = "glx.FindConfigs"
	if err := d.checkTemplate(t); err != nil {
		err.Op = op
		return nil, err
	}
	raws := d.lib.ChooseFBConfig(d.raw, d.screen, d.configAttribs(t))
	if len(raws) == 0 {
		return nil, &glerr.Error{Kind: glerr.NoAvailableConfig, Op: op, Reason: "glXChooseFBConfig matched nothing"}
	}

	var (
		out      []*Config
		rejected error
	)
	for _, raw := range raws {
		c, err := d.readConfig(raw)
		if err != nil {
			return nil, err
		}
		if reason := d.reject(t, c); reason != "" {
			d.logger().Debug("glx config rejected", "id", c.attribs.ID, "reason", reason)
			rejected = glerr.Append(rejected, fmt.Errorf("fbconfig 0x%x: %s", c.attribs.ID, reason))
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, &glerr.Error{Kind: glerr.NoAvailableConfig, Op: op, Reason: "every candidate was rejected", Err: rejected}
	}
	return out, nil
}

func (d *Display) checkTemplate(t config.Template) *glerr.Error {
	if t.ColorBuffer != nil && t.ColorBuffer.Kind == config.LuminanceBuffer {
		return glerr.NotSupportedf("GLX has no luminance configs")
	}
	if t.FloatPixels && !d.features.Has(caps.FloatPixelFormat) {
		return glerr.NotSupportedf("float pixel formats need GLX_ARB_fbconfig_float")
	}
	if t.SRGB != nil && *t.SRGB && !d.features.Has(caps.SRGBFramebuffers) {
		return glerr.NotSupportedf("sRGB framebuffers need GLX_ARB_framebuffer_sRGB")
	}
	if t.NumSamples != nil && *t.NumSamples > 0 && !d.features.Has(caps.Multisampling) {
		return glerr.NotSupportedf("multisampling needs GLX_ARB_multisample")
	}
	if t.API&config.GLES != 0 && !d.features.Has(caps.CreateESContext) {
		return glerr.NotSupportedf("OpenGL ES needs GLX_EXT_create_context_es2_profile")
	}
	return nil
}

// configAttribs builds the None terminated glXChooseFBConfig request.
// GLX selects on the visual ID itself; swap intervals, transparency and
// API are filtered afterwards.
func (d *Display) configAttribs(t config.Template) []int32 {
	var a []int32
	add := func(k, v int32) { a = append(a, k, v) }

	if t.SurfaceTypes.Has(config.WindowSurface) || t.SurfaceTypes.Has(config.PixmapSurface) {
		add(_GLX_X_RENDERABLE, 1)
	}
	if bits := drawableBits(t.SurfaceTypes); bits != 0 {
		add(_GLX_DRAWABLE_TYPE, bits)
	}
	if t.FloatPixels {
		add(_GLX_RENDER_TYPE, _GLX_RGBA_FLOAT_BIT)
	} else {
		add(_GLX_RENDER_TYPE, _GLX_RGBA_BIT)
	}
	if t.Transparency {
		add(_GLX_X_VISUAL_TYPE, _GLX_TRUE_COLOR)
	}
	if cb := t.ColorBuffer; cb != nil {
		add(_GLX_RED_SIZE, int32(cb.R))
		add(_GLX_GREEN_SIZE, int32(cb.G))
		add(_GLX_BLUE_SIZE, int32(cb.B))
	}
	if t.AlphaSize != nil {
		add(_GLX_ALPHA_SIZE, int32(*t.AlphaSize))
	}
	if t.DepthSize != nil {
		add(_GLX_DEPTH_SIZE, int32(*t.DepthSize))
	}
	if t.StencilSize != nil {
		add(_GLX_STENCIL_SIZE, int32(*t.StencilSize))
	}
	if t.DoubleBuffer != nil {
		add(_GLX_DOUBLEBUFFER, boolAttr(*t.DoubleBuffer))
	}
	if t.NumSamples != nil && d.features.Has(caps.Multisampling) {
		if n := *t.NumSamples; n > 0 {
			add(_GLX_SAMPLE_BUFFERS, 1)
			add(_GLX_SAMPLES, int32(n))
		} else {
			add(_GLX_SAMPLE_BUFFERS, 0)
		}
	}
	if t.Stereoscopy != nil {
		add(_GLX_STEREO, boolAttr(*t.Stereoscopy))
	}
	if t.SRGB != nil && d.features.Has(caps.SRGBFramebuffers) {
		add(_GLX_FRAMEBUFFER_SRGB_CAPABLE, boolAttr(*t.SRGB))
	}
	if t.HardwareAccelerated != nil && *t.HardwareAccelerated {
		add(_GLX_CONFIG_CAVEAT, _GLX_NONE)
	}
	if t.NativeVisual != nil {
		add(_GLX_VISUAL_ID, int32(*t.NativeVisual))
	}
	return append(a, _None)
}

func boolAttr(v bool) int32 {
	if v {
		return 1
	}
	return 0
}

func (d *Display) readConfig(raw uintptr) (*Config, error) {
	var err error
	get := func(attrib int32) int32 {
		if err != nil {
			return 0
		}
		v, ok := d.lib.GetFBConfigAttrib(d.raw, raw, attrib)
		if !ok {
			err = glerr.New(glerr.BadConfig, fmt.Sprintf("glXGetFBConfigAttrib(0x%x)", attrib), "attribute query failed")
		}
		return v
	}

	var a config.Attribs
	a.ID = get(_GLX_FBCONFIG_ID)
	a.ColorBuffer = config.RGB(uint8(get(_GLX_RED_SIZE)), uint8(get(_GLX_GREEN_SIZE)), uint8(get(_GLX_BLUE_SIZE)))
	a.AlphaSize = uint8(get(_GLX_ALPHA_SIZE))
	a.DepthSize = uint8(get(_GLX_DEPTH_SIZE))
	a.StencilSize = uint8(get(_GLX_STENCIL_SIZE))
	if d.features.Has(caps.Multisampling) {
		a.NumSamples = uint8(get(_GLX_SAMPLES))
	}
	a.DoubleBuffer = get(_GLX_DOUBLEBUFFER) != 0
	a.Stereoscopy = get(_GLX_STEREO) != 0
	a.HardwareAccelerated = get(_GLX_CONFIG_CAVEAT) != _GLX_SLOW_CONFIG
	a.FloatPixels = get(_GLX_RENDER_TYPE)&_GLX_RGBA_FLOAT_BIT != 0
	if d.features.Has(caps.SRGBFramebuffers) {
		a.SRGB = get(_GLX_FRAMEBUFFER_SRGB_CAPABLE) != 0
	}
	a.SurfaceTypes = surfaceTypesFromBits(get(_GLX_DRAWABLE_TYPE))
	a.NativeVisual = uint32(get(_GLX_VISUAL_ID))
	a.MaxPBufferSize = config.Size{
		Width:  uint32(get(_GLX_MAX_PBUFFER_WIDTH)),
		Height: uint32(get(_GLX_MAX_PBUFFER_HEIGHT)),
	}
	if err != nil {
		return nil, err
	}
	a.API = config.OpenGL
	if d.features.Has(caps.CreateESContext) {
		a.API |= config.GLES2 | config.GLES3
	}
	a.SwapInterval = d.swapRange()

	c := &Config{display: d, raw: raw}
	c.visual, c.hasVisual = d.lib.GetVisualFromFBConfig(d.raw, raw)
	a.Transparency = a.AlphaSize > 0 && c.hasVisual && c.visual.SupportsTransparency()
	c.attribs = a
	return c, nil
}

// reject returns why a candidate fails the post-filters, or "".
func (d *Display) reject(t config.Template, c *Config) string {
	a := c.attribs
	if t.SwapInterval != nil && !a.SwapInterval.Covers(*t.SwapInterval) {
		return fmt.Sprintf("swap interval %s does not cover %s", a.SwapInterval, *t.SwapInterval)
	}
	if missing := a.API.Missing(t.API); missing != 0 {
		return fmt.Sprintf("does not render %s", missing)
	}
	if t.Transparency && !a.Transparency {
		return "no transparent visual"
	}
	if t.SurfaceTypes.Has(config.WindowSurface) && !c.hasVisual {
		return "no X visual"
	}
	if m := t.MaxPBufferSize; m != nil {
		if a.MaxPBufferSize.Width < m.Width || a.MaxPBufferSize.Height < m.Height {
			return fmt.Sprintf("max pbuffer %dx%d, want %dx%d",
				a.MaxPBufferSize.Width, a.MaxPBufferSize.Height, m.Width, m.Height)
		}
	}
	return ""
}

func drawableBits(s config.SurfaceTypes) int32 {
	var bits int32
	if s.Has(config.WindowSurface) {
		bits |= _GLX_WINDOW_BIT
	}
	if s.Has(config.PBufferSurface) {
		bits |= _GLX_PBUFFER_BIT
	}
	if s.Has(config.PixmapSurface) {
		bits |= _GLX_PIXMAP_BIT
	}
	return bits
}

func surfaceTypesFromBits(bits int32) config.SurfaceTypes {
	var s config.SurfaceTypes
	if bits&_GLX_WINDOW_BIT != 0 {
		s |= config.WindowSurface
	}
	if bits&_GLX_PBUFFER_BIT != 0 {
		s |= config.PBufferSurface
	}
	if bits&_GLX_PIXMAP_BIT != 0 {
		s |= config.PixmapSurface
	}
	return s
}
