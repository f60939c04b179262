package config

import "fmt"

// ColorBufferKind selects between RGB and luminance color buffers.
type ColorBufferKind uint8

const (
	RGBBuffer ColorBufferKind = iota
	LuminanceBuffer
)

// ColorBuffer describes the color channels of a framebuffer. Alpha is
// tracked separately.
type ColorBuffer struct {
	Kind      ColorBufferKind
	R, G, B   uint8
	Luminance uint8
}

// RGB returns an RGB color buffer with the given channel sizes.
func RGB(r, g, b uint8) ColorBuffer {
	return ColorBuffer{Kind: RGBBuffer, R: r, G: g, B: b}
}

// RGBBits returns an RGB color buffer of n total bits split by
// SplitColorBits.
func RGBBits(n uint8) ColorBuffer {
	r, g, b := SplitColorBits(n)
	return RGB(r, g, b)
}

// Luminance returns a single-channel luminance color buffer.
func Luminance(l uint8) ColorBuffer {
	return ColorBuffer{Kind: LuminanceBuffer, Luminance: l}
}

// Bits returns the total number of color bits, alpha excluded.
func (c ColorBuffer) Bits() int {
	if c.Kind == LuminanceBuffer {
		return int(c.Luminance)
	}
	return int(c.R) + int(c.G) + int(c.B)
}

func (c ColorBuffer) String() string {
	if c.Kind == LuminanceBuffer {
		return fmt.Sprintf("L%d", c.Luminance)
	}
	return fmt.Sprintf("R%dG%dB%d", c.R, c.G, c.B)
}

// SplitColorBits divides n color bits over red, green and blue. Remainder
// bits go to green first, then blue: 16 splits as 5/6/5 and 25 as 8/9/8.
func SplitColorBits(n uint8) (r, g, b uint8) {
	third := n / 3
	r, g, b = third, third, third
	switch n % 3 {
	case 1:
		g++
	case 2:
		g++
		b++
	}
	return r, g, b
}
