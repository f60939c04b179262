package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// templateFile is the on-disk form of a Template.
//
//	color_bits = 24
//	alpha = 8
//	depth = 24
//	surfaces = ["window", "pbuffer"]
//	api = ["gl"]
//	double_buffer = true
type templateFile struct {
	ColorBits           *uint8   `toml:"color_bits,omitempty"`
	Red                 *uint8   `toml:"red,omitempty"`
	Green               *uint8   `toml:"green,omitempty"`
	Blue                *uint8   `toml:"blue,omitempty"`
	Luminance           *uint8   `toml:"luminance,omitempty"`
	Alpha               *uint8   `toml:"alpha,omitempty"`
	Depth               *uint8   `toml:"depth,omitempty"`
	Stencil             *uint8   `toml:"stencil,omitempty"`
	Samples             *uint8   `toml:"samples,omitempty"`
	Surfaces            []string `toml:"surfaces,omitempty"`
	API                 []string `toml:"api,omitempty"`
	HardwareAccelerated *bool    `toml:"hardware_accelerated,omitempty"`
	FloatPixels         bool     `toml:"float_pixels,omitempty"`
	Transparency        bool     `toml:"transparency,omitempty"`
	DoubleBuffer        *bool    `toml:"double_buffer,omitempty"`
	SRGB                *bool    `toml:"srgb,omitempty"`
	Stereo              *bool    `toml:"stereo,omitempty"`
	SwapIntervalMin     *uint32  `toml:"swap_interval_min,omitempty"`
	SwapIntervalMax     *uint32  `toml:"swap_interval_max,omitempty"`
	MaxPBufferWidth     *uint32  `toml:"max_pbuffer_width,omitempty"`
	MaxPBufferHeight    *uint32  `toml:"max_pbuffer_height,omitempty"`
	VisualID            *uint32  `toml:"visual_id,omitempty"`
	SynthesizeVariants  bool     `toml:"synthesize_variants,omitempty"`
}

// LoadTemplate reads a TOML template file.
func LoadTemplate(path string) (Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return Template{}, err
	}
	defer f.Close()
	t, err := DecodeTemplate(f)
	if err != nil {
		return Template{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// DecodeTemplate parses a TOML template.
func DecodeTemplate(r io.Reader) (Template, error) {
	var f templateFile
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return Template{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Template{}, fmt.Errorf("unknown template key %q", undecoded[0].String())
	}
	return f.template()
}

// EncodeTemplate writes t as TOML.
func EncodeTemplate(w io.Writer, t Template) error {
	return toml.NewEncoder(w).Encode(fileFromTemplate(t))
}

func (f *templateFile) template() (Template, error) {
	b := NewTemplateBuilder()
	rgb := f.Red != nil || f.Green != nil || f.Blue != nil
	switch {
	case f.ColorBits != nil && (rgb || f.Luminance != nil):
		return Template{}, fmt.Errorf("color_bits conflicts with explicit channel sizes")
	case rgb && f.Luminance != nil:
		return Template{}, fmt.Errorf("luminance conflicts with red/green/blue")
	case f.ColorBits != nil:
		b.WithColorBits(*f.ColorBits)
	case rgb:
		b.WithColorBuffer(RGB(deref(f.Red), deref(f.Green), deref(f.Blue)))
	case f.Luminance != nil:
		b.WithColorBuffer(Luminance(*f.Luminance))
	}
	if f.Alpha != nil {
		b.WithAlphaSize(*f.Alpha)
	}
	if f.Depth != nil {
		b.WithDepthSize(*f.Depth)
	}
	if f.Stencil != nil {
		b.WithStencilSize(*f.Stencil)
	}
	if f.Samples != nil {
		b.WithMultisampling(*f.Samples)
	}
	if len(f.Surfaces) > 0 {
		s, ok := ParseSurfaceTypes(f.Surfaces)
		if !ok {
			return Template{}, fmt.Errorf("invalid surfaces %q", f.Surfaces)
		}
		b.WithSurfaceTypes(s)
	}
	if len(f.API) > 0 {
		a, ok := ParseAPI(f.API)
		if !ok {
			return Template{}, fmt.Errorf("invalid api %q", f.API)
		}
		b.WithAPI(a)
	}
	if f.HardwareAccelerated != nil {
		b.PreferHardwareAccelerated(*f.HardwareAccelerated)
	}
	b.WithFloatPixels(f.FloatPixels)
	b.WithTransparency(f.Transparency)
	if f.DoubleBuffer != nil {
		b.WithDoubleBuffer(*f.DoubleBuffer)
	}
	if f.SRGB != nil {
		b.WithSRGB(*f.SRGB)
	}
	if f.Stereo != nil {
		b.WithStereoscopy(*f.Stereo)
	}
	if f.SwapIntervalMin != nil || f.SwapIntervalMax != nil {
		r := SwapIntervalRange{Min: deref(f.SwapIntervalMin), Max: UnboundedMax}
		if f.SwapIntervalMax != nil {
			// The file uses an inclusive maximum like the native APIs.
			r.Max = *f.SwapIntervalMax + 1
		}
		if r.Min >= r.Max {
			return Template{}, fmt.Errorf("empty swap interval range %s", r)
		}
		b.WithSwapInterval(r)
	}
	if f.MaxPBufferWidth != nil || f.MaxPBufferHeight != nil {
		b.WithMaxPBufferSize(deref(f.MaxPBufferWidth), deref(f.MaxPBufferHeight))
	}
	if f.VisualID != nil {
		b.WithNativeVisual(*f.VisualID)
	}
	b.WithSynthesizedVariants(f.SynthesizeVariants)
	return b.Build(), nil
}

func fileFromTemplate(t Template) templateFile {
	f := templateFile{
		Alpha:               t.AlphaSize,
		Depth:               t.DepthSize,
		Stencil:             t.StencilSize,
		Samples:             t.NumSamples,
		HardwareAccelerated: t.HardwareAccelerated,
		FloatPixels:         t.FloatPixels,
		Transparency:        t.Transparency,
		DoubleBuffer:        t.DoubleBuffer,
		SRGB:                t.SRGB,
		Stereo:              t.Stereoscopy,
		VisualID:            t.NativeVisual,
		SynthesizeVariants:  t.SynthesizeVariants,
	}
	if c := t.ColorBuffer; c != nil {
		if c.Kind == LuminanceBuffer {
			f.Luminance = &c.Luminance
		} else {
			f.Red, f.Green, f.Blue = &c.R, &c.G, &c.B
		}
	}
	if t.SurfaceTypes != 0 {
		f.Surfaces = strings.Split(t.SurfaceTypes.String(), "|")
	}
	if t.API != 0 {
		f.API = strings.Split(t.API.String(), "|")
	}
	if r := t.SwapInterval; r != nil {
		lo, hi := r.Min, r.Max-1
		f.SwapIntervalMin = &lo
		if r.Max != UnboundedMax {
			f.SwapIntervalMax = &hi
		}
	}
	if s := t.MaxPBufferSize; s != nil {
		f.MaxPBufferWidth, f.MaxPBufferHeight = &s.Width, &s.Height
	}
	return f
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
