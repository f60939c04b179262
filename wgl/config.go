package wgl

import (
	"fmt"

	"github.com/tinyrange/glctx/caps"
	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/glcontext"
	"github.com/tinyrange/glctx/glerr"
)

// Config is a pixel format of a Display.
type Config struct {
	display *Display
	format  int32
	attribs config.Attribs
}

// Raw returns the pixel format index.
func (c *Config) Raw() int32 { return c.format }

// Display returns the display the config belongs to.
func (c *Config) Display() *Display { return c.display }

// Attribs returns the attributes of the pixel format.
func (c *Config) Attribs() config.Attribs { return c.attribs }

// Backend reports glcontext.BackendWGL.
func (c *Config) Backend() glcontext.Backend { return glcontext.BackendWGL }

// SwapIntervalRange returns the swap intervals the config accepts, fixed
// by WGL_EXT_swap_control.
func (c *Config) SwapIntervalRange() (config.SwapIntervalRange, error) {
	return c.display.swapRange(), nil
}

func (c *Config) String() string { return "wgl " + c.attribs.String() }

// FindConfigs returns the pixel formats matching t. With
// WGL_ARB_pixel_format they come in the driver's order; otherwise every
// format is described and filtered in index order.
func (d *Display) FindConfigs(t config.Template) ([]*Config, error) {
	const op = "wgl.FindConfigs"
	if err := d.checkTemplate(t); err != nil {
		err.Op = op
		return nil, err
	}
	if t.NativeVisual != nil {
		d.logger().Debug("wgl: native visual ignored", "visual", *t.NativeVisual)
	}

	var (
		candidates []*Config
		err        error
	)
	if d.features.Has(caps.PixelFormatARB) {
		candidates, err = d.findARB(t)
	} else {
		candidates, err = d.findLegacy(t)
	}
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, &glerr.Error{Kind: glerr.NoAvailableConfig, Op: op, Reason: "no pixel format matched"}
	}

	var (
		out      []*Config
		rejected error
	)
	for _, c := range candidates {
		if reason := d.reject(t, c); reason != "" {
			d.logger().Debug("wgl pixel format rejected", "format", c.format, "reason", reason)
			rejected = glerr.Append(rejected, fmt.Errorf("pixel format %d: %s", c.format, reason))
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
	if t.SurfaceTypes&^config.WindowSurface != 0 {
		return glerr.NotSupportedf("WGL supports window surfaces only")
	}
	if t.MaxPBufferSize != nil {
		return glerr.NotSupportedf("WGL has no pbuffers")
	}
	if t.ColorBuffer != nil && t.ColorBuffer.Kind == config.LuminanceBuffer {
		return glerr.NotSupportedf("WGL has no luminance pixel formats")
	}
	if t.FloatPixels && !d.features.Has(caps.FloatPixelFormat) {
		return glerr.NotSupportedf("float pixel formats need WGL_ARB_pixel_format_float")
	}
	if t.SRGB != nil && *t.SRGB && !d.features.Has(caps.SRGBFramebuffers) {
		return glerr.NotSupportedf("sRGB framebuffers need WGL_ARB_framebuffer_sRGB")
	}
	if t.NumSamples != nil && *t.NumSamples > 0 && !d.features.Has(caps.Multisampling) {
		return glerr.NotSupportedf("multisampling needs WGL_ARB_multisample")
	}
	if t.API&config.GLES != 0 && !d.features.Has(caps.CreateESContext) {
		return glerr.NotSupportedf("OpenGL ES needs WGL_EXT_create_context_es2_profile")
	}
	return nil
}

// formatAttribs builds the zero terminated wglChoosePixelFormatARB
// request.
func (d *Display) formatAttribs(t config.Template) []int32 {
	var a []int32
	add := func(k, v int32) { a = append(a, k, v) }

	add(_WGL_DRAW_TO_WINDOW_ARB, 1)
	add(_WGL_SUPPORT_OPENGL_ARB, 1)
	if t.FloatPixels {
		add(_WGL_PIXEL_TYPE_ARB, _WGL_TYPE_RGBA_FLOAT_ARB)
	} else {
		add(_WGL_PIXEL_TYPE_ARB, _WGL_TYPE_RGBA_ARB)
	}
	if cb := t.ColorBuffer; cb != nil {
		add(_WGL_RED_BITS_ARB, int32(cb.R))
		add(_WGL_GREEN_BITS_ARB, int32(cb.G))
		add(_WGL_BLUE_BITS_ARB, int32(cb.B))
	}
	if t.AlphaSize != nil {
		add(_WGL_ALPHA_BITS_ARB, int32(*t.AlphaSize))
	}
	if t.DepthSize != nil {
		add(_WGL_DEPTH_BITS_ARB, int32(*t.DepthSize))
	}
	if t.StencilSize != nil {
		add(_WGL_STENCIL_BITS_ARB, int32(*t.StencilSize))
	}
	if t.DoubleBuffer != nil {
		add(_WGL_DOUBLE_BUFFER_ARB, boolAttr(*t.DoubleBuffer))
	}
	if t.NumSamples != nil && d.features.Has(caps.Multisampling) {
		if n := *t.NumSamples; n > 0 {
			add(_WGL_SAMPLE_BUFFERS_ARB, 1)
			add(_WGL_SAMPLES_ARB, int32(n))
		} else {
			add(_WGL_SAMPLE_BUFFERS_ARB, 0)
		}
	}
	if t.Stereoscopy != nil {
		add(_WGL_STEREO_ARB, boolAttr(*t.Stereoscopy))
	}
	if t.SRGB != nil && d.features.Has(caps.SRGBFramebuffers) {
		add(_WGL_FRAMEBUFFER_SRGB_CAPABLE_ARB, boolAttr(*t.SRGB))
	}
	if t.HardwareAccelerated != nil && *t.HardwareAccelerated {
		add(_WGL_ACCELERATION_ARB, _WGL_FULL_ACCELERATION_ARB)
	}
	return append(a, 0)
}

func boolAttr(v bool) int32 {
	if v {
		return 1
	}
	return 0
}

func (d *Display) findARB(t config.Template) ([]*Config, error) {
	formats := d.lib.ChoosePixelFormatARB(d.hdc, d.formatAttribs(t))
	if len(formats) > maxFormats {
		formats = formats[:maxFormats]
	}
	query := []int32{
		_WGL_DRAW_TO_WINDOW_ARB,
		_WGL_ACCELERATION_ARB,
		_WGL_DOUBLE_BUFFER_ARB,
		_WGL_STEREO_ARB,
		_WGL_PIXEL_TYPE_ARB,
		_WGL_RED_BITS_ARB,
		_WGL_GREEN_BITS_ARB,
		_WGL_BLUE_BITS_ARB,
		_WGL_ALPHA_BITS_ARB,
		_WGL_DEPTH_BITS_ARB,
		_WGL_STENCIL_BITS_ARB,
	}
	ms, srgb := d.features.Has(caps.Multisampling), d.features.Has(caps.SRGBFramebuffers)
	if ms {
		query = append(query, _WGL_SAMPLES_ARB)
	}
	if srgb {
		query = append(query, _WGL_FRAMEBUFFER_SRGB_CAPABLE_ARB)
	}

	out := make([]*Config, 0, len(formats))
	for _, format := range formats {
		v, ok := d.lib.GetPixelFormatAttribivARB(d.hdc, format, query)
		if !ok || len(v) != len(query) {
			return nil, winError(FnGetPixelFormatAttribivARB, d.lib.LastError())
		}
		var a config.Attribs
		a.ID = format
		if v[0] != 0 {
			a.SurfaceTypes = config.WindowSurface
		}
		a.HardwareAccelerated = v[1] != _WGL_NO_ACCELERATION_ARB
		a.DoubleBuffer = v[2] != 0
		a.Stereoscopy = v[3] != 0
		a.FloatPixels = v[4] == _WGL_TYPE_RGBA_FLOAT_ARB
		a.ColorBuffer = config.RGB(uint8(v[5]), uint8(v[6]), uint8(v[7]))
		a.AlphaSize = uint8(v[8])
		a.DepthSize = uint8(v[9])
		a.StencilSize = uint8(v[10])
		i := 11
		if ms {
			a.NumSamples = uint8(v[i])
			i++
		}
		if srgb {
			a.SRGB = v[i] != 0
		}
		out = append(out, d.newConfig(format, a))
	}
	return out, nil
}

// findLegacy walks every format DescribePixelFormat knows, keeping those
// meeting the template's minimum sizes.
func (d *Display) findLegacy(t config.Template) ([]*Config, error) {
	_, n := d.lib.DescribePixelFormat(d.hdc, 1)
	if n == 0 {
		return nil, winError("DescribePixelFormat", d.lib.LastError())
	}
	var out []*Config
	for i := int32(1); i <= n; i++ {
		pfd, count := d.lib.DescribePixelFormat(d.hdc, i)
		if count == 0 || !matchDescriptor(t, pfd) {
			continue
		}
		out = append(out, d.newConfig(i, descriptorAttribs(i, pfd)))
	}
	return out, nil
}

const requiredFlags = _PFD_DRAW_TO_WINDOW | _PFD_SUPPORT_OPENGL

func matchDescriptor(t config.Template, pfd PixelFormatDescriptor) bool {
	if pfd.Flags&requiredFlags != requiredFlags || pfd.PixelType != _PFD_TYPE_RGBA {
		return false
	}
	if cb := t.ColorBuffer; cb != nil && (pfd.RedBits < cb.R || pfd.GreenBits < cb.G || pfd.BlueBits < cb.B) {
		return false
	}
	atLeast := func(want *uint8, got uint8) bool { return want == nil || got >= *want }
	if !atLeast(t.AlphaSize, pfd.AlphaBits) || !atLeast(t.DepthSize, pfd.DepthBits) || !atLeast(t.StencilSize, pfd.StencilBits) {
		return false
	}
	if t.DoubleBuffer != nil && *t.DoubleBuffer != (pfd.Flags&_PFD_DOUBLEBUFFER != 0) {
		return false
	}
	if t.Stereoscopy != nil && *t.Stereoscopy != (pfd.Flags&_PFD_STEREO != 0) {
		return false
	}
	if t.HardwareAccelerated != nil && *t.HardwareAccelerated && !descriptorAccelerated(pfd) {
		return false
	}
	return true
}

// descriptorAccelerated reports whether pfd is served by an ICD or MCD
// rather than the GDI software renderer.
func descriptorAccelerated(pfd PixelFormatDescriptor) bool {
	return pfd.Flags&_PFD_GENERIC_FORMAT == 0 || pfd.Flags&_PFD_GENERIC_ACCELERATED != 0
}

func descriptorAttribs(format int32, pfd PixelFormatDescriptor) config.Attribs {
	a := config.Attribs{
		ID:                  format,
		ColorBuffer:         config.RGB(pfd.RedBits, pfd.GreenBits, pfd.BlueBits),
		AlphaSize:           pfd.AlphaBits,
		DepthSize:           pfd.DepthBits,
		StencilSize:         pfd.StencilBits,
		DoubleBuffer:        pfd.Flags&_PFD_DOUBLEBUFFER != 0,
		Stereoscopy:         pfd.Flags&_PFD_STEREO != 0,
		HardwareAccelerated: descriptorAccelerated(pfd),
	}
	if pfd.Flags&_PFD_DRAW_TO_WINDOW != 0 {
		a.SurfaceTypes = config.WindowSurface
	}
	return a
}

func (d *Display) newConfig(format int32, a config.Attribs) *Config {
	a.API = config.OpenGL
	if d.features.Has(caps.CreateESContext) {
		a.API |= config.GLES2 | config.GLES3
	}
	a.SwapInterval = d.swapRange()
	// DWM composites windows with per-pixel alpha.
	a.Transparency = a.AlphaSize > 0
	return &Config{display: d, format: format, attribs: a}
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
		return "no alpha channel"
	}
	if !a.SurfaceTypes.Has(config.WindowSurface) {
		return "cannot draw to windows"
	}
	return ""
}

// setPixelFormat gives hdc the config's format. A window's pixel format
// can be set once; a different existing format is a mismatch.
func (d *Display) setPixelFormat(hdc uintptr, c *Config) error {
	switch cur := d.lib.GetPixelFormat(hdc); {
	case cur == c.format:
		return nil
	case cur != 0:
		return &glerr.Error{Kind: glerr.BadMatch, Op: "SetPixelFormat",
			Reason: fmt.Sprintf("window already has pixel format %d, config is %d", cur, c.format)}
	}
	if !d.lib.SetPixelFormat(hdc, c.format) {
		return winError("SetPixelFormat", d.lib.LastError())
	}
	return nil
}
