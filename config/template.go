// Package config describes framebuffer configurations: the Template a caller
// asks for and the Attribs a backend reads back from the native system.
package config

// Size is a width/height pair in pixels.
type Size struct {
	Width, Height uint32
}

// Template describes the desired framebuffer attributes. Nil fields are left
// out of the native request and mean "don't care".
type Template struct {
	ColorBuffer         *ColorBuffer
	AlphaSize           *uint8
	DepthSize           *uint8
	StencilSize         *uint8
	NumSamples          *uint8
	SurfaceTypes        SurfaceTypes
	API                 API
	HardwareAccelerated *bool
	FloatPixels         bool
	Transparency        bool
	DoubleBuffer        *bool
	SRGB                *bool
	Stereoscopy         *bool

	// SwapInterval, when set, must be covered by a candidate's range.
	SwapInterval *SwapIntervalRange

	// MaxPBufferSize, when set, requires candidates to support pbuffers at
	// least this large.
	MaxPBufferSize *Size

	// NativeVisual restricts candidates to one X11 visual ID.
	NativeVisual *uint32

	// SynthesizeVariants lets backends that decide sRGB or double
	// buffering at surface creation emit one config per variant when the
	// template leaves the attribute unspecified.
	SynthesizeVariants bool
}

// DefaultTemplate returns the template used when a caller has no
// preference: 24-bit RGB with 8 bits of alpha, for window surfaces.
func DefaultTemplate() Template {
	return NewTemplateBuilder().
		WithColorBuffer(RGB(8, 8, 8)).
		WithAlphaSize(8).
		Build()
}

// TemplateFor returns a template that selects configs at least as capable
// as a. Swap interval ranges and visual IDs are left out so the template
// stays portable between machines.
func TemplateFor(a Attribs) Template {
	b := NewTemplateBuilder().
		WithColorBuffer(a.ColorBuffer).
		WithAlphaSize(a.AlphaSize).
		WithDepthSize(a.DepthSize).
		WithStencilSize(a.StencilSize).
		WithSurfaceTypes(a.SurfaceTypes).
		WithAPI(a.API).
		WithDoubleBuffer(a.DoubleBuffer).
		WithFloatPixels(a.FloatPixels).
		WithTransparency(a.Transparency)
	if a.NumSamples > 0 {
		b.WithMultisampling(a.NumSamples)
	}
	if a.SRGB {
		b.WithSRGB(true)
	}
	if a.HardwareAccelerated {
		b.PreferHardwareAccelerated(true)
	}
	return b.Build()
}

// TemplateBuilder builds a Template.
type TemplateBuilder struct {
	t Template
}

// NewTemplateBuilder returns a builder for a window-capable template with
// every other attribute unspecified.
func NewTemplateBuilder() *TemplateBuilder {
	return &TemplateBuilder{t: Template{SurfaceTypes: WindowSurface}}
}

func (b *TemplateBuilder) WithColorBuffer(c ColorBuffer) *TemplateBuilder {
	b.t.ColorBuffer = &c
	return b
}

// WithColorBits requests an RGB buffer of n total bits.
func (b *TemplateBuilder) WithColorBits(n uint8) *TemplateBuilder {
	return b.WithColorBuffer(RGBBits(n))
}

func (b *TemplateBuilder) WithAlphaSize(n uint8) *TemplateBuilder {
	b.t.AlphaSize = &n
	return b
}

func (b *TemplateBuilder) WithDepthSize(n uint8) *TemplateBuilder {
	b.t.DepthSize = &n
	return b
}

func (b *TemplateBuilder) WithStencilSize(n uint8) *TemplateBuilder {
	b.t.StencilSize = &n
	return b
}

// WithMultisampling requests n samples per pixel. Zero disables
// multisampling explicitly.
func (b *TemplateBuilder) WithMultisampling(n uint8) *TemplateBuilder {
	b.t.NumSamples = &n
	return b
}

func (b *TemplateBuilder) WithSurfaceTypes(s SurfaceTypes) *TemplateBuilder {
	b.t.SurfaceTypes = s
	return b
}

func (b *TemplateBuilder) WithAPI(a API) *TemplateBuilder {
	b.t.API = a
	return b
}

func (b *TemplateBuilder) PreferHardwareAccelerated(v bool) *TemplateBuilder {
	b.t.HardwareAccelerated = &v
	return b
}

func (b *TemplateBuilder) WithFloatPixels(v bool) *TemplateBuilder {
	b.t.FloatPixels = v
	return b
}

func (b *TemplateBuilder) WithTransparency(v bool) *TemplateBuilder {
	b.t.Transparency = v
	return b
}

func (b *TemplateBuilder) WithDoubleBuffer(v bool) *TemplateBuilder {
	b.t.DoubleBuffer = &v
	return b
}

func (b *TemplateBuilder) WithSRGB(v bool) *TemplateBuilder {
	b.t.SRGB = &v
	return b
}

func (b *TemplateBuilder) WithStereoscopy(v bool) *TemplateBuilder {
	b.t.Stereoscopy = &v
	return b
}

func (b *TemplateBuilder) WithSwapInterval(r SwapIntervalRange) *TemplateBuilder {
	b.t.SwapInterval = &r
	return b
}

func (b *TemplateBuilder) WithMaxPBufferSize(width, height uint32) *TemplateBuilder {
	b.t.MaxPBufferSize = &Size{Width: width, Height: height}
	return b
}

func (b *TemplateBuilder) WithNativeVisual(id uint32) *TemplateBuilder {
	b.t.NativeVisual = &id
	return b
}

func (b *TemplateBuilder) WithSynthesizedVariants(v bool) *TemplateBuilder {
	b.t.SynthesizeVariants = v
	return b
}

// Build returns a copy of the template; later builder calls do not affect it.
func (b *TemplateBuilder) Build() Template {
	return b.t.clone()
}

func (t Template) clone() Template {
	c := t
	c.ColorBuffer = clonePtr(t.ColorBuffer)
	c.AlphaSize = clonePtr(t.AlphaSize)
	c.DepthSize = clonePtr(t.DepthSize)
	c.StencilSize = clonePtr(t.StencilSize)
	c.NumSamples = clonePtr(t.NumSamples)
	c.HardwareAccelerated = clonePtr(t.HardwareAccelerated)
	c.DoubleBuffer = clonePtr(t.DoubleBuffer)
	c.SRGB = clonePtr(t.SRGB)
	c.Stereoscopy = clonePtr(t.Stereoscopy)
	c.SwapInterval = clonePtr(t.SwapInterval)
	c.MaxPBufferSize = clonePtr(t.MaxPBufferSize)
	c.NativeVisual = clonePtr(t.NativeVisual)
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
