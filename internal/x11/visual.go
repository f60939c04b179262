// Package x11 resolves X11 visuals and traps X protocol errors for the
// backends that run on an Xlib display.
package x11

// Visual classes.
const (
	StaticGray  = 0
	GrayScale   = 1
	StaticColor = 2
	PseudoColor = 3
	TrueColor   = 4
	DirectColor = 5
)

// X protocol error codes the backends classify.
const (
	Success   = 0
	BadValue  = 2
	BadWindow = 3
	BadPixmap = 4
	BadMatch  = 8
	BadAccess = 10
	BadAlloc  = 11
	// FirstExtensionError is the lowest code extensions such as GLX use.
	FirstExtensionError = 128
)

// VisualInfo mirrors the parts of XVisualInfo the backends need.
type VisualInfo struct {
	// Visual is the Visual* used to create windows and colormaps.
	Visual    uintptr
	ID        uint32
	Screen    int32
	Depth     int32
	Class     int32
	RedMask   uint64
	GreenMask uint64
	BlueMask  uint64
}

// AlphaMask returns the pixel bits not covered by the color masks.
func (v VisualInfo) AlphaMask() uint64 {
	if v.Depth <= 0 || v.Depth >= 64 {
		return 0
	}
	all := uint64(1)<<uint(v.Depth) - 1
	return all &^ (v.RedMask | v.GreenMask | v.BlueMask)
}

// SupportsTransparency reports whether windows using the visual can be
// composited with per-pixel alpha.
func (v VisualInfo) SupportsTransparency() bool {
	return v.Depth == 32 && v.Class == TrueColor && v.AlphaMask() != 0
}

// Visuals looks up visuals of an Xlib display.
type Visuals interface {
	FindVisual(display uintptr, id uint32) (VisualInfo, bool)
}
