// Package graphics runs a present loop on a glctx context: it opens a
// native window, negotiates a config, context and window surface for it,
// then clears and swaps once per frame.
package graphics

import (
	"image"
	"log/slog"

	"github.com/tinyrange/glctx"
	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/glcontext"
	"github.com/tinyrange/glctx/internal/gl"
	"github.com/tinyrange/glctx/internal/window"
)

// Color is an RGBA color with components in [0, 1].
type Color [4]float32

var (
	ColorBlack  = Color{0, 0, 0, 1}
	ColorWhite  = Color{1, 1, 1, 1}
	ColorYellow = Color{1, 1, 0, 1}
)

// Options configure New.
type Options struct {
	Title         string
	Width, Height int

	Preference glctx.Preference
	Template   config.Template
	Context    glcontext.Attributes
	// SwapInterval is applied when the surface is first bound. Nil
	// leaves vsync disabled.
	SwapInterval *config.SwapInterval

	Debug  bool
	Logger *slog.Logger
}

type Frame interface {
	// Index counts frames from 0.
	Index() int
	WindowSize() (width, height int)
	CursorPos() (x, y float32)
	GL() gl.OpenGL

	// Screenshot reads back the frame rendered so far, top row first.
	Screenshot() (image.Image, error)
}

type Window interface {
	// PlatformWindow returns the native window.
	PlatformWindow() window.Window
	Display() *glctx.Display
	Config() *glctx.Config
	Context() *glctx.PossiblyCurrentContext
	Scale() float32

	SetClear(enabled bool)
	SetClearColor(c Color)

	// Loop calls f for each frame until the window closes or f returns
	// an error. The window is closed when Loop returns.
	Loop(f func(f Frame) error) error
	Close()
}
