// Package surface holds the backend-independent surface vocabulary: kind
// markers, creation attributes and damage rectangles.
package surface

import "github.com/tinyrange/glctx/config"

// Type is the runtime form of a surface kind.
type Type int

const (
	WindowType Type = iota
	PBufferType
	PixmapType
)

func (t Type) String() string {
	switch t {
	case WindowType:
		return "window"
	case PBufferType:
		return "pbuffer"
	case PixmapType:
		return "pixmap"
	}
	return "unknown"
}

// SurfaceTypes returns the config capability bit a surface of this type
// needs.
func (t Type) SurfaceTypes() config.SurfaceTypes {
	switch t {
	case PBufferType:
		return config.PBufferSurface
	case PixmapType:
		return config.PixmapSurface
	}
	return config.WindowSurface
}

// Kind is implemented by the zero-size markers Window, PBuffer and Pixmap,
// used as the type parameter of backend surfaces.
type Kind interface {
	Type() Type
}

type (
	Window  struct{}
	PBuffer struct{}
	Pixmap  struct{}
)

func (Window) Type() Type  { return WindowType }
func (PBuffer) Type() Type { return PBufferType }
func (Pixmap) Type() Type  { return PixmapType }

// TypeOf returns the Type of the marker K.
func TypeOf[K Kind]() Type {
	var k K
	return k.Type()
}

// Attributes configure surface creation.
type Attributes struct {
	// Width and Height size pbuffers, and the initial size of window
	// systems that need one (Wayland).
	Width, Height uint32
	// SingleBuffer requests rendering straight to the front buffer.
	SingleBuffer bool
	// SRGB overrides the config's sRGB choice when set.
	SRGB *bool
	// LargestPBuffer accepts the largest available pbuffer when the
	// requested size cannot be allocated.
	LargestPBuffer bool
	// SwapInterval is applied on the first bind of a window surface. When
	// nil, vsync is disabled on first bind.
	SwapInterval *config.SwapInterval
}

// WindowAttributes returns attributes for a window of the given size.
func WindowAttributes(width, height uint32) Attributes {
	return Attributes{Width: width, Height: height}
}

// PBufferAttributes returns attributes for a pbuffer of the given size.
func PBufferAttributes(width, height uint32, largest bool) Attributes {
	return Attributes{Width: width, Height: height, LargestPBuffer: largest}
}

// WithSwapInterval returns a copy of a applying s on first bind.
func (a Attributes) WithSwapInterval(s config.SwapInterval) Attributes {
	a.SwapInterval = &s
	return a
}

// Rect is a damage rectangle with its origin at the bottom left.
type Rect struct {
	X, Y, Width, Height int32
}

// Flatten returns rects as the x, y, width, height quadruples native
// damage calls take.
func Flatten(rects []Rect) []int32 {
	out := make([]int32, 0, 4*len(rects))
	for _, r := range rects {
		out = append(out, r.X, r.Y, r.Width, r.Height)
	}
	return out
}
