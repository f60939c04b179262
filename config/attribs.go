package config

import (
	"fmt"
	"strings"
)

// Attribs are the attributes a native config actually provides, read back
// from the native system after selection.
type Attribs struct {
	ColorBuffer         ColorBuffer
	AlphaSize           uint8
	DepthSize           uint8
	StencilSize         uint8
	NumSamples          uint8
	DoubleBuffer        bool
	Stereoscopy         bool
	HardwareAccelerated bool
	FloatPixels         bool
	SRGB                bool
	Transparency        bool
	SurfaceTypes        SurfaceTypes
	SwapInterval        SwapIntervalRange
	API                 API
	NativeVisual        uint32
	MaxPBufferSize      Size
	// ID is the native config identifier (EGL_CONFIG_ID, GLX_FBCONFIG_ID,
	// WGL pixel format index).
	ID int32
}

// ColorBits returns the total color bits, alpha excluded.
func (a Attribs) ColorBits() int { return a.ColorBuffer.Bits() }

func (a Attribs) String() string {
	var flags []string
	if a.DoubleBuffer {
		flags = append(flags, "double")
	}
	if a.SRGB {
		flags = append(flags, "srgb")
	}
	if a.FloatPixels {
		flags = append(flags, "float")
	}
	if a.Transparency {
		flags = append(flags, "transparent")
	}
	if !a.HardwareAccelerated {
		flags = append(flags, "slow")
	}
	return fmt.Sprintf("id=%d %s A%d D%d S%d samples=%d api=%s surfaces=%s swap=%s [%s]",
		a.ID, a.ColorBuffer, a.AlphaSize, a.DepthSize, a.StencilSize, a.NumSamples,
		a.API, a.SurfaceTypes, a.SwapInterval, strings.Join(flags, ","))
}

// Scorer ranks Attribs; larger is better.
type Scorer func(Attribs) int

// DefaultScore prefers hardware acceleration, then more samples, then
// alpha, then sRGB. Each criterion owns its own bits so a larger value of
// a lesser one never outranks a greater one.
func DefaultScore(a Attribs) int {
	score := int(a.NumSamples)<<9 | int(a.AlphaSize)<<1
	if a.SRGB {
		score |= 1
	}
	if a.HardwareAccelerated {
		score |= 1 << 17
	}
	return score
}

// Best returns the index of the highest scoring attributes, or -1 when
// attrs is empty. Ties keep the earliest entry, preserving native order.
func Best(attrs []Attribs, score Scorer) int {
	if score == nil {
		score = DefaultScore
	}
	best, bestScore := -1, 0
	for i, a := range attrs {
		if s := score(a); best < 0 || s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}
